// Package config loads service and solver settings from an optional YAML
// file with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Server struct {
	Addr        string `yaml:"addr"`
	DatabaseURL string `yaml:"databaseUrl"`
	RedisURL    string `yaml:"redisUrl"`
	AuthToken   string `yaml:"authToken"`
	RateLimit   int    `yaml:"rateLimit"`
	RateBurst   int    `yaml:"rateBurst"`
}

type Solver struct {
	MaxGenerations  int     `yaml:"maxGenerations"`
	MaxTimeSec      int     `yaml:"maxTimeSec"`
	StagnationLimit int     `yaml:"stagnationLimit"`
	Parallelism     int     `yaml:"parallelism"`
	EliteSize       int     `yaml:"eliteSize"`
	NodeSize        int     `yaml:"nodeSize"`
	MaxNodes        int     `yaml:"maxNodes"`
	SpreadFactor    float64 `yaml:"spreadFactor"`
	LearningRate    float64 `yaml:"learningRate"`
	Exploration     float64 `yaml:"explorationRatio"`
	RewardDecay     float64 `yaml:"rewardDecay"`
	SelectionFloor  float64 `yaml:"selectionFloor"`
}

type Config struct {
	Server Server `yaml:"server"`
	Solver Solver `yaml:"solver"`
}

// Default returns the built-in settings used when no file is present.
func Default() Config {
	return Config{
		Server: Server{
			Addr:      ":8080",
			RateLimit: 10,
			RateBurst: 20,
		},
		Solver: Solver{
			MaxGenerations:  3000,
			MaxTimeSec:      300,
			StagnationLimit: 500,
		},
	}
}

// Load reads path when non-empty, layering env overrides on top. A missing
// file is an error only when the path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Server.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Server.RedisURL = v
	}
	if v := os.Getenv("AUTH_TOKEN"); v != "" {
		c.Server.AuthToken = v
	}
	if n, ok := envInt("RATE_LIMIT"); ok {
		c.Server.RateLimit = n
	}
	if n, ok := envInt("SOLVER_MAX_GENERATIONS"); ok {
		c.Solver.MaxGenerations = n
	}
	if n, ok := envInt("SOLVER_MAX_TIME_SEC"); ok {
		c.Solver.MaxTimeSec = n
	}
	if n, ok := envInt("SOLVER_PARALLELISM"); ok {
		c.Solver.Parallelism = n
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
