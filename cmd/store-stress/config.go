package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Config controls a stress run. Values come from defaults, then the optional
// YAML file named by -config, then any flag given explicitly on the command line.
type Config struct {
	Duration       time.Duration `yaml:"duration"`
	Entities       int           `yaml:"entities"`
	Reserve        int           `yaml:"reserve"`
	SpawnPerFrame  int           `yaml:"spawn_per_frame"`
	MaxAge         float64       `yaml:"max_age"`
	BoostChance    float64       `yaml:"boost_chance"`
	Seed           int64         `yaml:"seed"`
	Profile        string        `yaml:"profile"`
	ProfilePath    string        `yaml:"profile_path"`
	LogLevel       string        `yaml:"log_level"`
	GCPauseMetrics bool          `yaml:"gc_pause_metrics"`
}

func defaultConfig() Config {
	return Config{
		Duration:      10 * time.Second,
		Entities:      10000,
		SpawnPerFrame: 50,
		MaxAge:        5,
		BoostChance:   0.01,
		Seed:          1,
		ProfilePath:   ".",
		LogLevel:      "info",
	}
}

func (c Config) slogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, eris.Wrapf(err, "invalid log level %q", c.LogLevel)
	}
	return level, nil
}

func (c Config) validate() error {
	switch {
	case c.Duration <= 0:
		return eris.Errorf("duration must be positive, got %s", c.Duration)
	case c.Entities < 0:
		return eris.Errorf("entities must not be negative, got %d", c.Entities)
	case c.Reserve < 0:
		return eris.Errorf("reserve must not be negative, got %d", c.Reserve)
	case c.SpawnPerFrame < 0:
		return eris.Errorf("spawn_per_frame must not be negative, got %d", c.SpawnPerFrame)
	case c.MaxAge <= 0:
		return eris.Errorf("max_age must be positive, got %g", c.MaxAge)
	case c.BoostChance < 0 || c.BoostChance > 1:
		return eris.Errorf("boost_chance must be within [0, 1], got %g", c.BoostChance)
	}

	switch c.Profile {
	case "", "cpu", "mem":
	default:
		return eris.Errorf("unknown profile mode %q (want cpu or mem)", c.Profile)
	}

	_, err := c.slogLevel()
	return err
}

func readConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return eris.Wrapf(err, "parse config %s", path)
	}
	return nil
}

func loadConfig(args []string) (Config, error) {
	cfg := defaultConfig()

	fs := flag.NewFlagSet("store-stress", flag.ContinueOnError)
	configPath := fs.String("config", "", "Optional YAML file with run settings.")
	duration := fs.Duration("duration", cfg.Duration, "The total duration the test should run for.")
	entities := fs.Int("entities", cfg.Entities, "The initial number of entities to create.")
	reserve := fs.Int("reserve", cfg.Reserve, "Rows reserved per column when a pool is created.")
	spawn := fs.Int("spawn", cfg.SpawnPerFrame, "Entities spawned per frame.")
	maxAge := fs.Float64("max-age", cfg.MaxAge, "Seconds an entity lives before it is despawned.")
	boost := fs.Float64("boost-chance", cfg.BoostChance, "Per-frame chance that a moving entity gains a boost.")
	seed := fs.Int64("seed", cfg.Seed, "Random seed.")
	prof := fs.String("profile", cfg.Profile, "Enable profiling: cpu or mem.")
	profPath := fs.String("profile-path", cfg.ProfilePath, "Directory for profile output.")
	logLevel := fs.String("log-level", cfg.LogLevel, "Log level: debug, info, warn or error.")
	gcPause := fs.Bool("gc-pause-metrics", cfg.GCPauseMetrics, "Enable detailed GC pause metrics in the report.")

	if err := fs.Parse(args); err != nil {
		return cfg, eris.Wrap(err, "parse flags")
	}

	if *configPath != "" {
		if err := readConfigFile(*configPath, &cfg); err != nil {
			return cfg, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "duration":
			cfg.Duration = *duration
		case "entities":
			cfg.Entities = *entities
		case "reserve":
			cfg.Reserve = *reserve
		case "spawn":
			cfg.SpawnPerFrame = *spawn
		case "max-age":
			cfg.MaxAge = *maxAge
		case "boost-chance":
			cfg.BoostChance = *boost
		case "seed":
			cfg.Seed = *seed
		case "profile":
			cfg.Profile = *prof
		case "profile-path":
			cfg.ProfilePath = *profPath
		case "log-level":
			cfg.LogLevel = *logLevel
		case "gc-pause-metrics":
			cfg.GCPauseMetrics = *gcPause
		}
	})

	if err := cfg.validate(); err != nil {
		return cfg, eris.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}
