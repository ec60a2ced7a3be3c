package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/roadwatch/service-navigation/internal/platform/database"
)

const envPrefix = "ROADWATCH"

// JWTConfig holds token verification settings.
type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// KafkaConfig holds broker and consumer-group settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// DirectionsConfig points at the OSRM-compatible directions service.
type DirectionsConfig struct {
	BaseURL string
	Profile string
	Timeout time.Duration
}

// UploadConfig controls where hazard photos are stored.
type UploadConfig struct {
	Dir          string
	PublicPrefix string
	MaxBytes     int64
}

// MapConfig is handed to clients when they bootstrap their map.
type MapConfig struct {
	TileURL     string
	Attribution string
	DefaultLat  float64
	DefaultLng  float64
	DefaultZoom int
}

// NavigationConfig tunes the navigation simulator.
type NavigationConfig struct {
	TickInterval       time.Duration
	ProgressStep       float64
	TotalDistance      float64
	MinSpeedKmh        float64
	MaxSpeedKmh        float64
	ProximityThreshold float64
}

// ServiceConfig holds all configuration for the navigation service.
type ServiceConfig struct {
	Port       string
	AppEnv     string
	DBConfig   database.PostgresConfig
	JWTConfig  JWTConfig
	Kafka      KafkaConfig
	Directions DirectionsConfig
	Uploads    UploadConfig
	Map        MapConfig
	Navigation NavigationConfig
}

// Load reads configuration from ROADWATCH_* environment variables and an
// optional config.yaml in the working directory.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &ServiceConfig{
		Port:   normalizePort(v.GetString("service_port")),
		AppEnv: v.GetString("app_env"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetString("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
			SSLMode:  v.GetString("db.sslmode"),
		},
		JWTConfig: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			AccessTTL:  v.GetDuration("jwt.access_ttl"),
			RefreshTTL: v.GetDuration("jwt.refresh_ttl"),
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(v.GetString("kafka.brokers")),
			GroupPrefix: v.GetString("kafka.group_prefix"),
		},
		Directions: DirectionsConfig{
			BaseURL: strings.TrimRight(v.GetString("directions.base_url"), "/"),
			Profile: v.GetString("directions.profile"),
			Timeout: v.GetDuration("directions.timeout"),
		},
		Uploads: UploadConfig{
			Dir:          v.GetString("uploads.dir"),
			PublicPrefix: v.GetString("uploads.public_prefix"),
			MaxBytes:     v.GetInt64("uploads.max_bytes"),
		},
		Map: MapConfig{
			TileURL:     v.GetString("map.tile_url"),
			Attribution: v.GetString("map.attribution"),
			DefaultLat:  v.GetFloat64("map.default_lat"),
			DefaultLng:  v.GetFloat64("map.default_lng"),
			DefaultZoom: v.GetInt("map.default_zoom"),
		},
		Navigation: NavigationConfig{
			TickInterval:       v.GetDuration("nav.tick_interval"),
			ProgressStep:       v.GetFloat64("nav.progress_step"),
			TotalDistance:      v.GetFloat64("nav.total_distance"),
			MinSpeedKmh:        v.GetFloat64("nav.min_speed_kmh"),
			MaxSpeedKmh:        v.GetFloat64("nav.max_speed_kmh"),
			ProximityThreshold: v.GetFloat64("nav.proximity_threshold"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_port", ":8084")
	v.SetDefault("app_env", "development")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "roadwatch_navigation")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("jwt.secret", "dev-secret-change-me")
	v.SetDefault("jwt.access_ttl", 15*time.Minute)
	v.SetDefault("jwt.refresh_ttl", 7*24*time.Hour)

	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.group_prefix", "roadwatch-")

	v.SetDefault("directions.base_url", "https://router.project-osrm.org")
	v.SetDefault("directions.profile", "driving")
	v.SetDefault("directions.timeout", 10*time.Second)

	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.public_prefix", "/uploads")
	v.SetDefault("uploads.max_bytes", 5<<20)

	v.SetDefault("map.tile_url", "https://tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("map.attribution", "© OpenStreetMap contributors")
	v.SetDefault("map.default_lat", 33.5731)
	v.SetDefault("map.default_lng", -7.5898)
	v.SetDefault("map.default_zoom", 12)

	v.SetDefault("nav.tick_interval", time.Second)
	v.SetDefault("nav.progress_step", 1.0)
	v.SetDefault("nav.total_distance", 100.0)
	v.SetDefault("nav.min_speed_kmh", 20.0)
	v.SetDefault("nav.max_speed_kmh", 120.0)
	v.SetDefault("nav.proximity_threshold", 5.0)
}

func (c *ServiceConfig) validate() error {
	if c.AppEnv == "production" && (c.JWTConfig.Secret == "" || c.JWTConfig.Secret == "dev-secret-change-me") {
		return fmt.Errorf("ROADWATCH_JWT_SECRET must be set in production")
	}
	if c.Navigation.TickInterval <= 0 {
		return fmt.Errorf("nav.tick_interval must be positive")
	}
	if c.Navigation.MinSpeedKmh > c.Navigation.MaxSpeedKmh {
		return fmt.Errorf("nav.min_speed_kmh must not exceed nav.max_speed_kmh")
	}
	if c.Uploads.MaxBytes <= 0 {
		return fmt.Errorf("uploads.max_bytes must be positive")
	}
	return nil
}

func normalizePort(p string) string {
	if p != "" && !strings.Contains(p, ":") {
		return ":" + p
	}
	return p
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
