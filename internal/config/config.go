package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Runtime RuntimeConfig `toml:"runtime"`
	Logging LoggingConfig `toml:"logging"`
	Metrics MetricsConfig `toml:"metrics"`
}

type RuntimeConfig struct {
	Name       string        `toml:"name"`
	TickRate   time.Duration `toml:"tick_rate"`
	MaxDelta   time.Duration `toml:"max_delta"`   // clamp for frames after a stall
	Scene      string        `toml:"scene"`       // yaml manifest spawned under the root
	ScriptsDir string        `toml:"scripts_dir"` // base directory of Lua entity scripts
	StatsEvery int           `toml:"stats_every"` // frames between stats log lines
	StartTime  int64         // set at boot, not from config
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type MetricsConfig struct {
	Enabled   bool   `toml:"enabled"`
	Namespace string `toml:"namespace"`
	Listen    string `toml:"listen"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Runtime.StartTime = time.Now().Unix()
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Runtime.TickRate <= 0 {
		return fmt.Errorf("runtime.tick_rate must be positive, got %v", c.Runtime.TickRate)
	}
	if c.Runtime.MaxDelta < c.Runtime.TickRate {
		return fmt.Errorf("runtime.max_delta %v is below tick_rate %v", c.Runtime.MaxDelta, c.Runtime.TickRate)
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return fmt.Errorf("metrics.listen is required when metrics are enabled")
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			Name:       "scenert",
			TickRate:   50 * time.Millisecond,
			MaxDelta:   250 * time.Millisecond,
			Scene:      "data/scene.yaml",
			ScriptsDir: "scripts",
			StatsEvery: 200,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Namespace: "scenert",
			Listen:    "127.0.0.1:9464",
		},
	}
}
