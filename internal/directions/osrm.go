package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

const (
	defaultOSRMBaseURL = "https://router.project-osrm.org"
	defaultProfile     = "driving"
	defaultTimeout     = 10 * time.Second
)

type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64           `json:"distance"`
	Duration float64           `json:"duration"`
	Geometry *geojson.Geometry `json:"geometry"`
	Legs     []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"legs"`
}

// OSRMClient talks to an OSRM-compatible /route/v1 endpoint.
type OSRMClient struct {
	baseURL    string
	profile    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOSRMClient creates a client. Empty values fall back to the public demo server,
// the driving profile and a 10s timeout.
func NewOSRMClient(baseURL, profile string, timeout time.Duration, logger *zap.Logger) *OSRMClient {
	if baseURL == "" {
		baseURL = defaultOSRMBaseURL
	}
	if profile == "" {
		profile = defaultProfile
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OSRMClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		profile:    profile,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Route requests directions through every point of req in order.
func (c *OSRMClient) Route(ctx context.Context, req Request) (*Result, error) {
	endpoint := c.buildURL(req)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create directions request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call directions service: %w", err)
	}
	defer resp.Body.Close()

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode directions response (status %d): %w", resp.StatusCode, err)
	}

	// OSRM answers 400 with code NoRoute/NoSegment when nothing is drivable.
	switch body.Code {
	case "Ok":
	case "NoRoute", "NoSegment":
		return nil, ErrNoRoute
	default:
		return nil, fmt.Errorf("directions service returned %d %s: %s", resp.StatusCode, body.Code, body.Message)
	}
	if len(body.Routes) == 0 {
		return nil, ErrNoRoute
	}

	result := &Result{Routes: make([]Route, 0, len(body.Routes))}
	for i, r := range body.Routes {
		line, ok := lineOf(r.Geometry)
		if !ok {
			return nil, fmt.Errorf("route %d has no line geometry", i)
		}
		route := Route{
			Geometry:        line,
			DistanceMeters:  r.Distance,
			DurationSeconds: r.Duration,
			Legs:            make([]Leg, 0, len(r.Legs)),
		}
		for _, l := range r.Legs {
			route.Legs = append(route.Legs, Leg{DistanceMeters: l.Distance, DurationSeconds: l.Duration})
		}
		result.Routes = append(result.Routes, route)
	}

	c.logger.Debug("directions resolved",
		zap.Int("points", len(req.Waypoints)+2),
		zap.Int("routes", len(result.Routes)),
		zap.Float64("distance_m", result.Routes[0].DistanceMeters),
	)
	return result, nil
}

func (c *OSRMClient) buildURL(req Request) string {
	pts := req.Points()
	coords := make([]string, len(pts))
	for i, p := range pts {
		coords[i] = strconv.FormatFloat(p.Lon(), 'f', 6, 64) + "," + strconv.FormatFloat(p.Lat(), 'f', 6, 64)
	}

	q := url.Values{}
	q.Set("alternatives", strconv.FormatBool(req.Alternatives))
	q.Set("overview", "full")
	q.Set("geometries", "geojson")
	q.Set("steps", "false")

	return fmt.Sprintf("%s/route/v1/%s/%s?%s", c.baseURL, c.profile, strings.Join(coords, ";"), q.Encode())
}

func lineOf(g *geojson.Geometry) (orb.LineString, bool) {
	if g == nil || g.Coordinates == nil {
		return nil, false
	}
	line, ok := g.Coordinates.(orb.LineString)
	return line, ok && len(line) >= 2
}
