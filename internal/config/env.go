package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultHost        = "0.0.0.0"
	defaultPort        = "7123"
	defaultBeaconPath  = "/i.js"
	defaultEventBuffer = 1024
	defaultRedisStream = "beacon:visits"
	defaultKafkaTopic  = "beacon.visits"
	defaultRateLimit   = "600-M"
)

// returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		Environment: "development",
		Host:        defaultHost,
		Port:        defaultPort,
		BeaconPath:  defaultBeaconPath,
		EventSinks:  []string{SinkLog},
		EventBuffer: defaultEventBuffer,
		RedisStream: defaultRedisStream,
		KafkaTopic:  defaultKafkaTopic,
		RateLimit:   defaultRateLimit,
	}
}

// loads configuration from .env, an optional YAML file and environment variables,
// in that order of increasing precedence. configPath wins over BEACON_CONFIG
func LoadEnvironmentVariables(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	if configPath == "" {
		configPath = os.Getenv("BEACON_CONFIG")
	}

	return Load(configPath)
}

// builds the configuration from the YAML file at path (skipped when empty)
// overlaid with environment variables
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Environment, "ENVIRONMENT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.Host, "HOST")
	setString(&cfg.Port, "PORT")
	setString(&cfg.BeaconPath, "BEACON_PATH")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.RedisStream, "REDIS_STREAM")
	setString(&cfg.KafkaTopic, "KAFKA_TOPIC")
	setList(&cfg.EventSinks, "EVENT_SINKS")
	setList(&cfg.KafkaBrokers, "KAFKA_BROKERS")
	setList(&cfg.AllowedOrigins, "ALLOWED_ORIGINS")

	// RATE_LIMIT may be set to an empty string on purpose to disable limiting
	if v, ok := os.LookupEnv("RATE_LIMIT"); ok {
		cfg.RateLimit = strings.TrimSpace(v)
	}

	if v := strings.TrimSpace(os.Getenv("EVENT_BUFFER")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.EventBuffer = n
		} else {
			cfg.EventBuffer = -1 // rejected by Validate
		}
	}
}

// checks the configuration for values the server cannot start with
func (c *Config) Validate() error {
	if c.Environment == "" {
		c.Environment = "development"
	}

	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}

	if !strings.HasPrefix(c.BeaconPath, "/") {
		return fmt.Errorf("BEACON_PATH must start with /, got %q", c.BeaconPath)
	}

	if strings.ContainsAny(c.BeaconPath, ":*") {
		return fmt.Errorf("BEACON_PATH must be a literal path, got %q", c.BeaconPath)
	}

	if slices.Contains(ReservedPaths, c.BeaconPath) {
		return fmt.Errorf("BEACON_PATH %q collides with a built-in route", c.BeaconPath)
	}

	if c.EventBuffer <= 0 {
		return fmt.Errorf("EVENT_BUFFER must be a positive integer")
	}

	for _, sink := range c.EventSinks {
		switch sink {
		case SinkLog, SinkLive:
		case SinkRedis:
			if c.RedisURL == "" {
				return fmt.Errorf("REDIS_URL environment variable is required for the redis sink")
			}
		case SinkKafka:
			if len(c.KafkaBrokers) == 0 {
				return fmt.Errorf("KAFKA_BROKERS environment variable is required for the kafka sink")
			}
		default:
			return fmt.Errorf("unknown event sink %q", sink)
		}
	}

	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}

	parts := strings.Split(v, ",")
	list := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}

	*dst = list
}
