package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"

	ScoringNone         = "none"
	ScoringCorrectCount = "correct-count"
)

type Config struct {
	Server struct {
		Port      string `yaml:"port"`
		PublicURL string `yaml:"public_url"`
	} `yaml:"server"`
	Storage struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
		Key     string `yaml:"key"`
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Gemini struct {
		APIKey        string `yaml:"api_key"`
		QuestionModel string `yaml:"question_model"`
		ImageModel    string `yaml:"image_model"`
		Timeout       string `yaml:"timeout"`
	} `yaml:"gemini"`
	Play struct {
		HostName string `yaml:"host_name"`
		Scoring  string `yaml:"scoring"`
	} `yaml:"play"`
}

// Load reads YAML config from path. A missing file yields the defaults.
// GEMINI_API_KEY (or API_KEY) overrides the configured key.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	for _, key := range []string{"GEMINI_API_KEY", "API_KEY"} {
		if v := os.Getenv(key); v != "" {
			cfg.Gemini.APIKey = v
			return
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendSQLite
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "genquiz.db"
	}
	if cfg.Storage.Key == "" {
		cfg.Storage.Key = "genquiz_sessions"
	}
	if cfg.Gemini.QuestionModel == "" {
		cfg.Gemini.QuestionModel = "gemini-3-flash-preview"
	}
	if cfg.Gemini.ImageModel == "" {
		cfg.Gemini.ImageModel = "gemini-2.5-flash-image"
	}
	if cfg.Play.HostName == "" {
		cfg.Play.HostName = "Host"
	}
	if cfg.Play.Scoring == "" {
		cfg.Play.Scoring = ScoringNone
	}
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
