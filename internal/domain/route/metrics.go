package route

import (
	"fmt"
	"math"
	"time"
)

// FallbackSpeedKmh is the average speed assumed when no directions are available.
const FallbackSpeedKmh = 50.0

// Metrics is a value object describing the length and timing of a rendered route.
type Metrics struct {
	DistanceMeters  float64   `json:"distance_meters"`
	DurationSeconds float64   `json:"duration_seconds"`
	DistanceText    string    `json:"distance_text"`
	DurationText    string    `json:"duration_text"`
	ETA             time.Time `json:"eta"`
	ETAText         string    `json:"eta_text"`
	Estimated       bool      `json:"estimated"`
}

// NewMetrics formats distance and duration and derives the ETA from now.
func NewMetrics(distanceMeters, durationSeconds float64, now time.Time) Metrics {
	duration := time.Duration(durationSeconds * float64(time.Second))
	eta := now.Add(duration)
	return Metrics{
		DistanceMeters:  distanceMeters,
		DurationSeconds: durationSeconds,
		DistanceText:    FormatDistance(distanceMeters),
		DurationText:    FormatDuration(duration),
		ETA:             eta,
		ETAText:         eta.Format("15:04"),
	}
}

// EstimateMetrics derives metrics from a straight-line length at FallbackSpeedKmh.
func EstimateMetrics(distanceMeters float64, now time.Time) Metrics {
	seconds := distanceMeters / (FallbackSpeedKmh * 1000 / 3600)
	m := NewMetrics(distanceMeters, seconds, now)
	m.Estimated = true
	return m
}

// FormatDistance renders meters as "850 m" or "12.3 km".
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", int(math.Round(meters)))
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

// FormatDuration renders a duration as "12 min" or "1 h 5 min".
func FormatDuration(d time.Duration) string {
	minutes := int(math.Round(d.Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	hours, rest := minutes/60, minutes%60
	if rest == 0 {
		return fmt.Sprintf("%d h", hours)
	}
	return fmt.Sprintf("%d h %d min", hours, rest)
}
