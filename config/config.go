package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Fleet     FleetConfig     `yaml:"fleet"`
	Streams   StreamsConfig   `yaml:"streams"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// FleetConfig describes the simulated machine population and its static
// axis limits.
type FleetConfig struct {
	MachineCount    int     `yaml:"machine_count"`
	StartMachineID  int64   `yaml:"start_machine_id"`
	ToolCapacity    int     `yaml:"tool_capacity"`
	MaxAcceleration float64 `yaml:"max_acceleration"`
	MaxVelocity     float64 `yaml:"max_velocity"`
}

// StreamsConfig holds the cadence of each telemetry stream. Intervals are
// configured in milliseconds because the axis stream runs well below one
// second.
type StreamsConfig struct {
	ToolIntervalMS      int `yaml:"tool_interval_ms"`
	ToolUsageIntervalMS int `yaml:"tool_usage_interval_ms"`
	AxisIntervalMS      int `yaml:"axis_interval_ms"`

	ToolInterval      time.Duration `yaml:"-"`
	ToolUsageInterval time.Duration `yaml:"-"`
	AxisInterval      time.Duration `yaml:"-"`
}

// BroadcastConfig holds the subscriber push cadence.
type BroadcastConfig struct {
	PushIntervalMS int           `yaml:"push_interval_ms"`
	PushInterval   time.Duration `yaml:"-"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with all defaults applied, for running
// without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 5
	}

	if cfg.Fleet.MachineCount <= 0 {
		cfg.Fleet.MachineCount = 20
	}
	if cfg.Fleet.StartMachineID <= 0 {
		cfg.Fleet.StartMachineID = 81258856
	}
	if cfg.Fleet.ToolCapacity <= 0 {
		cfg.Fleet.ToolCapacity = 24
	}
	if cfg.Fleet.MaxAcceleration <= 0 {
		cfg.Fleet.MaxAcceleration = 200
	}
	if cfg.Fleet.MaxVelocity <= 0 {
		cfg.Fleet.MaxVelocity = 60
	}

	if cfg.Streams.ToolIntervalMS <= 0 {
		cfg.Streams.ToolIntervalMS = 10000
	}
	if cfg.Streams.ToolUsageIntervalMS <= 0 {
		cfg.Streams.ToolUsageIntervalMS = 5000
	}
	if cfg.Streams.AxisIntervalMS <= 0 {
		cfg.Streams.AxisIntervalMS = 10
	}
	cfg.Streams.ToolInterval = time.Duration(cfg.Streams.ToolIntervalMS) * time.Millisecond
	cfg.Streams.ToolUsageInterval = time.Duration(cfg.Streams.ToolUsageIntervalMS) * time.Millisecond
	cfg.Streams.AxisInterval = time.Duration(cfg.Streams.AxisIntervalMS) * time.Millisecond

	if cfg.Broadcast.PushIntervalMS <= 0 {
		cfg.Broadcast.PushIntervalMS = 1000
	}
	cfg.Broadcast.PushInterval = time.Duration(cfg.Broadcast.PushIntervalMS) * time.Millisecond
}
