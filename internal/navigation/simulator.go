package navigation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/roadwatch/service-navigation/internal/domain/route"
	"github.com/roadwatch/service-navigation/internal/domain/trip"
	"github.com/roadwatch/service-navigation/internal/platform/domain"
)

// Config tunes the simulated trip.
type Config struct {
	Interval           time.Duration
	ProgressStep       float64
	TotalDistance      float64
	MinSpeedKmh        float64
	MaxSpeedKmh        float64
	ProximityThreshold float64
}

// DefaultConfig ticks once per second, one percent per tick, over 100 units
// at 20 to 120 km/h, warning 5 units ahead of a hazard.
func DefaultConfig() Config {
	return Config{
		Interval:           time.Second,
		ProgressStep:       1,
		TotalDistance:      100,
		MinSpeedKmh:        20,
		MaxSpeedKmh:        120,
		ProximityThreshold: 5,
	}
}

// WithDefaults replaces unset or invalid fields with DefaultConfig values.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.ProgressStep <= 0 {
		c.ProgressStep = d.ProgressStep
	}
	if c.TotalDistance <= 0 {
		c.TotalDistance = d.TotalDistance
	}
	if c.MaxSpeedKmh <= 0 {
		c.MinSpeedKmh, c.MaxSpeedKmh = d.MinSpeedKmh, d.MaxSpeedKmh
	}
	if c.MinSpeedKmh < 0 || c.MinSpeedKmh > c.MaxSpeedKmh {
		c.MinSpeedKmh = 0
	}
	if c.ProximityThreshold < 0 {
		c.ProximityThreshold = d.ProximityThreshold
	}
	return c
}

// State is the lifecycle of a simulation.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
	StateStopped   State = "stopped"
)

// IsFinal reports whether the simulation has ended.
func (s State) IsFinal() bool { return s == StateCompleted || s == StateStopped }

// WarningKind distinguishes driver warnings.
type WarningKind string

const (
	WarningSpeedLimit WarningKind = "speed_limit"
	WarningProximity  WarningKind = "proximity"
)

// Warning is raised on a tick when the driver approaches a hazard or drives
// faster than it recommends.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Hazard  string      `json:"hazard"`
	Message string      `json:"message"`
}

// Checkpoint is a hazard placed at a progress position along the trip.
type Checkpoint struct {
	Location route.Location `json:"location"`
	Position float64        `json:"position"`
}

// Telemetry is one frame of the simulation.
type Telemetry struct {
	State      State       `json:"state"`
	Stats      trip.Stats  `json:"stats"`
	NextHazard *Checkpoint `json:"next_hazard,omitempty"`
	Warnings   []Warning   `json:"warnings,omitempty"`
	At         time.Time   `json:"at"`
}

// FinishFunc is called once when a simulation ends. completed is true only
// when progress reached 100.
type FinishFunc func(stats trip.Stats, completed bool)

// SimulatorOption configures a Simulator.
type SimulatorOption func(*Simulator)

// WithRand sets the speed source.
func WithRand(r *rand.Rand) SimulatorOption {
	return func(s *Simulator) { s.rng = r }
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) SimulatorOption {
	return func(s *Simulator) { s.now = now }
}

// WithOnFinish registers the completion callback.
func WithOnFinish(fn FinishFunc) SimulatorOption {
	return func(s *Simulator) { s.onFinish = fn }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) SimulatorOption {
	return func(s *Simulator) { s.logger = l }
}

const subscriberBuffer = 16

// Simulator fabricates telemetry for a trip along a route. Telemetry is
// produced by a single goroutine driven by a ticker; every exported method
// is safe for concurrent use.
type Simulator struct {
	cfg         Config
	checkpoints []Checkpoint
	rng         *rand.Rand
	now         func() time.Time
	onFinish    FinishFunc
	logger      *zap.Logger

	mu       sync.Mutex
	state    State
	stats    trip.Stats
	warnings []Warning
	passed   int
	subs     map[int]chan Telemetry
	nextSub  int
	cancel   context.CancelFunc

	finishOnce sync.Once
	done       chan struct{}
}

// NewSimulator creates an idle simulator for the located hazards of locations.
func NewSimulator(cfg Config, locations []route.Location, opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		cfg:         cfg.WithDefaults(),
		checkpoints: placeCheckpoints(locations),
		now:         time.Now,
		logger:      zap.NewNop(),
		state:       StateIdle,
		subs:        make(map[int]chan Telemetry),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.stats.RemainingDistance = s.cfg.TotalDistance
	return s
}

// placeCheckpoints spreads the located hazards evenly over 0..100; a lone
// hazard sits at 50. Route endpoints are not checkpoints.
func placeCheckpoints(locations []route.Location) []Checkpoint {
	valid := route.HazardPoints(locations)
	out := make([]Checkpoint, len(valid))
	for i, vp := range valid {
		pos := 50.0
		if len(valid) > 1 {
			pos = float64(i) / float64(len(valid)-1) * 100
		}
		out[i] = Checkpoint{Location: vp.Location, Position: pos}
	}
	return out
}

// Checkpoints returns the hazard positions.
func (s *Simulator) Checkpoints() []Checkpoint {
	out := make([]Checkpoint, len(s.checkpoints))
	copy(out, s.checkpoints)
	return out
}

// Start begins ticking. The loop ends when progress reaches 100, on Stop, or
// when ctx is cancelled.
func (s *Simulator) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		st := s.state
		s.mu.Unlock()
		return domain.NewInvalidStateError(string(st), string(StateRunning))
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = StateRunning
	s.stats.StartedAt = s.now()
	frame := s.frameLocked()
	s.mu.Unlock()

	s.broadcast(frame)
	s.logger.Debug("simulation started", zap.Int("hazards", len(s.checkpoints)))

	go s.run(loopCtx)
	return nil
}

func (s *Simulator) run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			s.finish(StateStopped)
			return
		case <-ticker.C:
			frame, ok := s.advance()
			if !ok {
				continue
			}
			s.broadcast(frame)
			if frame.State == StateCompleted {
				s.finish(StateCompleted)
				return
			}
		}
	}
}

// advance applies one tick. It is a no-op unless the simulator is running.
func (s *Simulator) advance() (Telemetry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return Telemetry{}, false
	}

	st := &s.stats
	st.Progress = min(st.Progress+s.cfg.ProgressStep, 100)

	speed := s.cfg.MinSpeedKmh + s.randomUnit()*(s.cfg.MaxSpeedKmh-s.cfg.MinSpeedKmh)
	st.CurrentSpeed = speed
	st.AverageSpeed = (st.AverageSpeed + speed) / 2
	st.MaxSpeed = max(st.MaxSpeed, speed)
	st.RemainingDistance = s.cfg.TotalDistance * (1 - st.Progress/100)
	if st.AverageSpeed > 0 {
		st.RemainingTime = st.RemainingDistance / st.AverageSpeed
	}

	for s.passed < len(s.checkpoints) && s.checkpoints[s.passed].Position <= st.Progress {
		s.passed++
		st.HazardsAvoided++
	}

	s.warnings = s.warningsLocked()
	if st.Progress >= 100 {
		s.state = StateCompleted
	}
	return s.frameLocked(), true
}

func (s *Simulator) randomUnit() float64 {
	if s.rng != nil {
		return s.rng.Float64()
	}
	return rand.Float64()
}

func (s *Simulator) warningsLocked() []Warning {
	next, ok := s.nextLocked()
	if !ok {
		return nil
	}
	var out []Warning
	if rec := next.Location.RecommendedSpeedKmh; rec != nil && s.stats.CurrentSpeed > float64(*rec) {
		out = append(out, Warning{
			Kind:    WarningSpeedLimit,
			Hazard:  next.Location.Label,
			Message: fmt.Sprintf("Slow down to %d km/h for %s", *rec, next.Location.Label),
		})
	}
	distance := (next.Position - s.stats.Progress) / 100 * s.cfg.TotalDistance
	if distance <= s.cfg.ProximityThreshold {
		out = append(out, Warning{
			Kind:    WarningProximity,
			Hazard:  next.Location.Label,
			Message: fmt.Sprintf("%s ahead in %.1f", next.Location.Label, distance),
		})
	}
	return out
}

// nextLocked returns the first checkpoint strictly ahead of progress.
func (s *Simulator) nextLocked() (Checkpoint, bool) {
	for _, c := range s.checkpoints {
		if c.Position > s.stats.Progress {
			return c, true
		}
	}
	return Checkpoint{}, false
}

func (s *Simulator) frameLocked() Telemetry {
	f := Telemetry{
		State: s.state,
		Stats: s.stats,
		At:    s.now(),
	}
	if next, ok := s.nextLocked(); ok {
		f.NextHazard = &next
	}
	if len(s.warnings) > 0 {
		f.Warnings = append([]Warning(nil), s.warnings...)
	}
	return f
}

// Pause suspends ticking; paused time is excluded from the trip duration.
func (s *Simulator) Pause() error {
	s.mu.Lock()
	if s.state != StateRunning {
		st := s.state
		s.mu.Unlock()
		return domain.NewInvalidStateError(string(st), string(StatePaused))
	}
	s.state = StatePaused
	s.stats.PausedAt = s.now()
	frame := s.frameLocked()
	s.mu.Unlock()

	s.broadcast(frame)
	return nil
}

// Resume continues a paused simulation.
func (s *Simulator) Resume() error {
	s.mu.Lock()
	if s.state != StatePaused {
		st := s.state
		s.mu.Unlock()
		return domain.NewInvalidStateError(string(st), string(StateRunning))
	}
	s.state = StateRunning
	s.stats.PausedFor += s.now().Sub(s.stats.PausedAt)
	s.stats.PausedAt = time.Time{}
	frame := s.frameLocked()
	s.mu.Unlock()

	s.broadcast(frame)
	return nil
}

// Stop ends the simulation early. Stopping a finished simulation is a no-op.
func (s *Simulator) Stop() {
	s.finish(StateStopped)
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// finish moves to a final state, closes subscriptions and fires the
// completion callback. Only the first call has any effect.
func (s *Simulator) finish(final State) {
	s.finishOnce.Do(func() {
		s.mu.Lock()
		if s.state == StateCompleted {
			final = StateCompleted
		}
		started := !s.stats.StartedAt.IsZero()
		now := s.now()
		if !s.stats.PausedAt.IsZero() {
			s.stats.PausedFor += now.Sub(s.stats.PausedAt)
			s.stats.PausedAt = time.Time{}
		}
		if started {
			s.stats.EndedAt = now
		}
		s.state = final
		frame := s.frameLocked()
		stats := s.stats
		subs := s.subs
		s.subs = make(map[int]chan Telemetry)
		s.mu.Unlock()

		for _, ch := range subs {
			select {
			case ch <- frame:
			default:
			}
			close(ch)
		}
		if !started {
			close(s.done)
		}

		s.logger.Debug("simulation finished",
			zap.String("state", string(final)),
			zap.Float64("progress", stats.Progress),
			zap.Int("hazards_avoided", stats.HazardsAvoided),
		)
		if s.onFinish != nil && started {
			s.onFinish(stats, final == StateCompleted)
		}
	})
}

// Subscribe returns a channel of telemetry frames and a function to cancel
// the subscription. Frames are dropped for subscribers that fall behind. The
// channel is closed when the simulation finishes.
func (s *Simulator) Subscribe() (<-chan Telemetry, func()) {
	ch := make(chan Telemetry, subscriberBuffer)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.IsFinal() {
		ch <- s.frameLocked()
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.frameLocked()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

func (s *Simulator) broadcast(frame Telemetry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- frame:
		default:
		}
	}
}

// Snapshot returns the current frame.
func (s *Simulator) Snapshot() Telemetry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameLocked()
}

// State returns the lifecycle state.
func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the simulation has finished and its goroutine exited.
func (s *Simulator) Done() <-chan struct{} { return s.done }
