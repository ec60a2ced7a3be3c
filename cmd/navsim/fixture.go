package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roadwatch/service-navigation/internal/directions"
	"github.com/roadwatch/service-navigation/internal/domain/route"
)

// routeFixture is the YAML form of a route.
type routeFixture struct {
	Label           string           `yaml:"label"`
	DepartureCity   string           `yaml:"departure_city"`
	DestinationCity string           `yaml:"destination_city"`
	Locations       []route.Location `yaml:"locations"`
}

func loadFixture(path string) (*routeFixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var f routeFixture
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	if len(f.Locations) == 0 {
		return nil, fmt.Errorf("fixture %s has no locations", path)
	}
	if f.Label == "" {
		f.Label = f.DepartureCity + " → " + f.DestinationCity
	}
	return &f, nil
}

type offlineProvider struct{}

func (offlineProvider) Route(context.Context, directions.Request) (*directions.Result, error) {
	return nil, directions.ErrNoRoute
}
