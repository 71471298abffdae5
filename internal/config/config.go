package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Arena      ArenaConfig      `toml:"arena"`
	Simulation SimulationConfig `toml:"simulation"`
	Rates      RatesConfig      `toml:"rates"`
	Scripts    ScriptsConfig    `toml:"scripts"`
	Data       DataConfig       `toml:"data"`
	Logging    LoggingConfig    `toml:"logging"`
	Profiling  ProfilingConfig  `toml:"profiling"`
}

type ArenaConfig struct {
	Name      string        `toml:"name"`
	TickRate  time.Duration `toml:"tick_rate"`
	StartTime int64         // set at boot, not from config
}

type SimulationConfig struct {
	DisabledArmour  float64 `toml:"disabled_armour"`   // armour fraction below which a ship is knocked out
	HostileDecay    float64 `toml:"hostile_decay"`     // hostility score decay per second
	HostileLevel    float64 `toml:"hostile_level"`     // hostility score at which a ship turns openly hostile
	HyperEngineWarm float64 `toml:"hyper_engine_warm"` // engine warmup before transit, seconds
	HyperFlyTime    float64 `toml:"hyper_fly_time"`    // in-transit duration, seconds
	HyperThrust     float64 `toml:"hyper_thrust"`      // thrust override during transit
	HyperFuel       float64 `toml:"hyper_fuel"`        // fuel consumed per jump
	MinVelErr       float64 `toml:"min_vel_err"`       // velocity below this counts as stopped
	MaxDirErr       float64 `toml:"max_dir_err"`       // facing alignment tolerance, radians
}

type RatesConfig struct {
	RatingRate     float64 `toml:"rating_rate"`     // combat-rating gain multiplier
	ReputationRate float64 `toml:"reputation_rate"` // faction reputation penalty multiplier
}

type ScriptsConfig struct {
	Dir string `toml:"dir"` // root directory of behavior-script profiles
}

type DataConfig struct {
	Ships       string `toml:"ships"`
	Outfits     string `toml:"outfits"`
	Commodities string `toml:"commodities"`
	Factions    string `toml:"factions"`
	Spawns      string `toml:"spawns"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type ProfilingConfig struct {
	Mode string `toml:"mode"` // "", "cpu" or "mem"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Arena.TickRate <= 0 {
		return nil, fmt.Errorf("config %s: tick_rate must be positive", path)
	}
	cfg.Arena.StartTime = time.Now().Unix()
	return cfg, nil
}

// Defaults returns the baseline configuration. The simulation constants are
// the balance numbers the combat and hyperspace formulas were tuned against.
func Defaults() *Config {
	return &Config{
		Arena: ArenaConfig{
			Name:     "Driftfire",
			TickRate: 20 * time.Millisecond,
		},
		Simulation: SimulationConfig{
			DisabledArmour:  0.3,
			HostileDecay:    0.005,
			HostileLevel:    0.09,
			HyperEngineWarm: 3.0,
			HyperFlyTime:    5.0,
			HyperThrust:     2000.0,
			HyperFuel:       100.0,
			MinVelErr:       5.0,
			MaxDirErr:       0.02,
		},
		Rates: RatesConfig{
			RatingRate:     1.0,
			ReputationRate: 1.0,
		},
		Scripts: ScriptsConfig{
			Dir: "scripts/ai",
		},
		Data: DataConfig{
			Ships:       "data/ships.yaml",
			Outfits:     "data/outfits.yaml",
			Commodities: "data/commodities.yaml",
			Factions:    "data/factions.yaml",
			Spawns:      "data/spawns.yaml",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Profiling: ProfilingConfig{},
	}
}
