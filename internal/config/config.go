// Package config loads the refinery daemon configuration from YAML.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Refinery holds all configuration for the refinery simulation daemon.
type Refinery struct {
	LogLevel string `yaml:"log_level"`

	Sim       Sim       `yaml:"sim"`
	Recipes   Recipes   `yaml:"recipes"`
	Database  Database  `yaml:"database"`
	Telemetry Telemetry `yaml:"telemetry"`

	Vessels []Vessel `yaml:"vessels"`
}

// Sim controls the tick loop.
type Sim struct {
	TickInterval time.Duration `yaml:"tick_interval"` // wall-clock ticker period
	Timestep     float64       `yaml:"timestep"`      // simulated seconds per tick
}

// Recipes points at the recipe registry source.
type Recipes struct {
	Path  string `yaml:"path"`  // empty = built-in recipe set
	Watch bool   `yaml:"watch"` // hot-reload the file on change
}

// Database holds PostgreSQL connection parameters for telemetry storage.
type Database struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Telemetry configures the WebSocket status stream.
type Telemetry struct {
	Enabled     bool   `yaml:"enabled"`
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`
}

// Vessel describes one simulated vessel with its tanks and converters.
type Vessel struct {
	Name            string      `yaml:"name"`
	BaseTemperature float64     `yaml:"base_temperature"` // K
	HeatCapacity    float64     `yaml:"heat_capacity"`    // kJ/K
	Tanks           []Tank      `yaml:"tanks"`
	Converters      []Converter `yaml:"converters"`
}

// Tank describes one resource tank.
type Tank struct {
	Resource string  `yaml:"resource"`
	Amount   float64 `yaml:"amount"`
	Capacity float64 `yaml:"capacity"`
}

// Converter describes one converter instance. The converter core is the sole
// authority over its resource ratios: explicit resource declarations that
// generic pass-through converter blocks carry in old save configs are
// stripped on load.
type Converter struct {
	Recipe  string  `yaml:"recipe"`
	Rate    float64 `yaml:"rate"`
	Active  bool    `yaml:"active"`
	MinTemp float64 `yaml:"min_temp"` // 0 = default curve bound
	MaxTemp float64 `yaml:"max_temp"`

	// Stale pass-through declarations. Never consumed, only detected and
	// stripped with a diagnostic.
	Inputs   []map[string]any `yaml:"inputs"`
	Outputs  []map[string]any `yaml:"outputs"`
	Required []map[string]any `yaml:"required"`
}

// DefaultRefinery returns a Refinery config with a single demo vessel.
func DefaultRefinery() Refinery {
	return Refinery{
		LogLevel: "info",
		Sim: Sim{
			TickInterval: 100 * time.Millisecond,
			Timestep:     0.1,
		},
		Database: Database{
			Enabled:  false,
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "refinery",
			Password: "refinery",
			DBName:   "refinery",
			SSLMode:  "disable",
		},
		Telemetry: Telemetry{
			Enabled:     false,
			BindAddress: "127.0.0.1",
			Port:        8077,
		},
		Vessels: []Vessel{
			{
				Name:            "demo-smelter",
				BaseTemperature: 1900,
				HeatCapacity:    500,
				Tanks: []Tank{
					{Resource: "Ore", Amount: 500, Capacity: 1000},
					{Resource: "Metal", Amount: 0, Capacity: 1000},
					{Resource: "Slag", Amount: 0, Capacity: 50},
				},
				Converters: []Converter{
					{Recipe: "ore_smelting", Rate: 1, Active: true},
				},
			},
		},
	}
}

// LoadRefinery loads daemon config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadRefinery(path string) (Refinery, error) {
	cfg := DefaultRefinery()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg = Refinery{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.applyDefaults()
	cfg.sanitize()

	return cfg, nil
}

func (c *Refinery) applyDefaults() {
	def := DefaultRefinery()
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Sim.TickInterval <= 0 {
		c.Sim.TickInterval = def.Sim.TickInterval
	}
	if c.Sim.Timestep <= 0 {
		c.Sim.Timestep = def.Sim.Timestep
	}
	if c.Database.Host == "" {
		c.Database.Host = def.Database.Host
	}
	if c.Database.Port == 0 {
		c.Database.Port = def.Database.Port
	}
	if c.Database.User == "" {
		c.Database.User = def.Database.User
	}
	if c.Database.Password == "" {
		c.Database.Password = def.Database.Password
	}
	if c.Database.DBName == "" {
		c.Database.DBName = def.Database.DBName
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = def.Database.SSLMode
	}
	if c.Telemetry.BindAddress == "" {
		c.Telemetry.BindAddress = def.Telemetry.BindAddress
	}
	if c.Telemetry.Port == 0 {
		c.Telemetry.Port = def.Telemetry.Port
	}
}

// sanitize strips conflicting resource declarations from converter entries.
// Ratios come from the recipe registry only; stale declarations in persisted
// configs must not reach the core.
func (c *Refinery) sanitize() {
	for vi := range c.Vessels {
		v := &c.Vessels[vi]
		for ci := range v.Converters {
			conv := &v.Converters[ci]
			n := len(conv.Inputs) + len(conv.Outputs) + len(conv.Required)
			if n == 0 {
				continue
			}
			slog.Warn("stripping stale resource declarations from converter config",
				"vessel", v.Name,
				"recipe", conv.Recipe,
				"declarations", n)
			conv.Inputs = nil
			conv.Outputs = nil
			conv.Required = nil
		}
	}
}
