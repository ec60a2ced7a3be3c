package main

import (
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"

	"github.com/roadwatch/service-navigation/internal/domain/route"
	"github.com/roadwatch/service-navigation/internal/domain/trip"
	"github.com/roadwatch/service-navigation/internal/navigation"
)

// renderOutput is what `navsim render` prints.
type renderOutput struct {
	Label    string                     `json:"label"`
	Fallback bool                       `json:"fallback"`
	Markers  int                        `json:"markers"`
	Metrics  *route.Metrics             `json:"metrics,omitempty"`
	Scene    *geojson.FeatureCollection `json:"scene"`
}

func newRenderCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Draw the fixture route and print it as GeoJSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := loadFixture(opts.fixture)
			if err != nil {
				return err
			}
			scene := renderFixture(cmd.Context(), opts, f)
			return writeJSON(cmd.OutOrStdout(), renderOutput{
				Label:    f.Label,
				Fallback: scene.Fallback,
				Markers:  len(scene.Markers),
				Metrics:  scene.Metrics,
				Scene:    scene.FeatureCollection(),
			})
		},
	}
}

func newSimulateCmd(opts *options) *cobra.Command {
	cfg := navigation.DefaultConfig()
	var seed uint64

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a trip along the fixture route, one JSON frame per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := loadFixture(opts.fixture)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			summary, err := simulate(ctx, cmd.OutOrStdout(), opts, f, cfg, seed)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}

	flags := cmd.Flags()
	flags.DurationVar(&cfg.Interval, "interval", cfg.Interval, "time between ticks")
	flags.Float64Var(&cfg.ProgressStep, "step", cfg.ProgressStep, "progress added per tick")
	flags.Float64Var(&cfg.MinSpeedKmh, "min-speed", cfg.MinSpeedKmh, "lowest simulated speed (km/h)")
	flags.Float64Var(&cfg.MaxSpeedKmh, "max-speed", cfg.MaxSpeedKmh, "highest simulated speed (km/h)")
	flags.Float64Var(&cfg.ProximityThreshold, "proximity", cfg.ProximityThreshold, "warn this many progress points before a hazard")
	flags.Uint64Var(&seed, "seed", 0, "speed seed; 0 picks a random one")
	return cmd
}

func renderFixture(ctx context.Context, opts *options, f *routeFixture) *navigation.Scene {
	scene := navigation.NewScene()
	navigation.NewRenderer(opts.provider(), opts.logger).Render(ctx, scene, f.Locations)
	return scene
}

type finishedTrip struct {
	stats     trip.Stats
	completed bool
}

// simulate renders the fixture for its length, runs the simulator to the end
// and writes every frame it sees to out. Cancelling ctx stops the trip early.
func simulate(ctx context.Context, out io.Writer, opts *options, f *routeFixture, cfg navigation.Config, seed uint64) (trip.Summary, error) {
	var routeMeters float64
	if scene := renderFixture(ctx, opts, f); scene.Metrics != nil {
		routeMeters = scene.Metrics.DistanceMeters
	}

	finished := make(chan finishedTrip, 1)
	simOpts := []navigation.SimulatorOption{
		navigation.WithLogger(opts.logger),
		navigation.WithOnFinish(func(stats trip.Stats, completed bool) {
			finished <- finishedTrip{stats: stats, completed: completed}
		}),
	}
	if seed != 0 {
		simOpts = append(simOpts, navigation.WithRand(rand.New(rand.NewPCG(seed, seed))))
	}

	sim := navigation.NewSimulator(cfg, f.Locations, simOpts...)
	frames, cancel := sim.Subscribe()
	defer cancel()

	if err := sim.Start(ctx); err != nil {
		return trip.Summary{}, err
	}

	enc := json.NewEncoder(out)
	for frame := range frames {
		if err := enc.Encode(frame); err != nil {
			sim.Stop()
			<-sim.Done()
			return trip.Summary{}, err
		}
	}

	res := <-finished
	return trip.Summarize(res.stats, routeMeters, cfg.WithDefaults().TotalDistance, res.completed, time.Now()), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
