// Package config loads the service configuration from defaults, config.yaml, .env and
// environment variables, in increasing order of priority.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the complete service configuration. Every koanf key is lowercase so that
// yaml keys and transformed env var names land on the same path.
type Config struct {
	HTTPServer HTTPConfig      `koanf:"server"`
	Log        LogConfig       `koanf:"log"`
	App        AppConfig       `koanf:"app"`
	Auth       AuthConfig      `koanf:"auth"`
	CORS       CORSConfig      `koanf:"cors"`
	PProf      PProfConfig     `koanf:"pprof"`
	Shutdown   ShutdownConfig  `koanf:"shutdown"`
	Seed       SeedConfig      `koanf:"seed"`
	NATS       NATSConfig      `koanf:"nats"`
	Breaker    BreakerConfig   `koanf:"breaker"`
	Metrics    MetricsConfig   `koanf:"metrics"`
	Telemetry  TelemetryConfig `koanf:"telemetry"`
}

func (c Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.App.String())
	b.WriteString(c.Auth.String())
	b.WriteString(c.CORS.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	b.WriteString(c.Seed.String())
	b.WriteString(c.NATS.String())
	b.WriteString(c.Breaker.String())
	b.WriteString(c.Metrics.String())
	b.WriteString(c.Telemetry.String())
	return b.String()
}

// Validate checks every section and reports all problems at once.
func (c Config) Validate() error {
	return errors.Join(
		c.HTTPServer.Validate(),
		c.Log.Validate(),
		c.App.Validate(),
		c.Auth.Validate(),
		c.PProf.Validate(),
		c.Shutdown.Validate(),
		c.NATS.Validate(),
		c.Breaker.Validate(),
		c.Metrics.Validate(),
		c.Telemetry.Validate(),
	)
}

const (
	envPrefix      = "product_"
	defaultEnvFile = ".env"
	configFile     = "config.yaml"
)

// Load reads the configuration from a file and environment variables
func Load() (*Config, error) {
	return load(configFile, defaultEnvFile)
}

func load(configPath, envPath string) (*Config, error) {
	// Create a new Koanf instance
	var k = koanf.New(".")

	// 1. Defaults, the lowest priority
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	// 2. Load configuration from yaml file
	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARN: error loading YAML config: %v", err)
		}
	}

	// 3. Load environment variables from .env file
	if envFileMap, err := godotenv.Read(envPath); err == nil {
		envMap := make(map[string]any)
		for key, value := range envFileMap {
			if !strings.HasPrefix(strings.ToLower(key), envPrefix) {
				continue
			}
			envMap[keyTransformer(key)] = value
		}
		// Load the envMap into Koanf
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			log.Printf("WARN: error loading .env config: %v", err)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	// 4. Load environment variables from the system, the highest priority
	if err := k.Load(env.Provider(strings.ToUpper(envPrefix), ".", keyTransformer), nil); err != nil {
		log.Printf("WARN: error loading env vars: %v", err)
	}

	var cfg Config
	// 5. Unmarshal the configuration into the Config struct
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// 6. Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration built from the defaults alone.
func Default() *Config {
	k := koanf.New(".")
	// defaults are a static map; neither step can fail
	_ = k.Load(confmap.Provider(defaults(), "."), nil)
	var cfg Config
	_ = k.Unmarshal("", &cfg)
	return &cfg
}

// keyTransformer transforms environment variable keys to match the expected format
func keyTransformer(key string) string {
	key = strings.ToLower(key)
	key = strings.TrimPrefix(key, envPrefix)
	return strings.ReplaceAll(key, "_", ".")
}

func defaults() map[string]any {
	return map[string]any{
		"server.port":                        3000,
		"server.maxheaderbytes":              1 << 20,
		"server.maxbodybytes":                100 << 10,
		"server.timeout.read":                "10s",
		"server.timeout.write":               "10s",
		"server.timeout.idle":                "60s",
		"server.timeout.readheader":          "5s",
		"log.level":                          "info",
		"log.format":                         "json",
		"app.env":                            "development",
		"auth.header":                        "X-API-Key",
		"auth.apikey":                        "supersecretkey",
		"cors.allowedorigins":                []string{"*"},
		"pprof.enabled":                      false,
		"pprof.addr":                         "localhost:6060",
		"shutdown.timeout":                   "30s",
		"seed.enabled":                       true,
		"nats.enabled":                       false,
		"nats.url":                           "nats://localhost:4222",
		"nats.timeout":                       "5s",
		"nats.stream":                        "PRODUCTS",
		"nats.subjectprefix":                 "products",
		"breaker.consecutivefailures":        5,
		"breaker.opentimeout":                "30s",
		"metrics.enabled":                    true,
		"metrics.path":                       "/metrics",
		"telemetry.enabled":                  false,
		"telemetry.servicename":              "product-catalog",
		"telemetry.traces.otlphttp.endpoint": "localhost:4318",
		"telemetry.traces.otlphttp.insecure": true,
		"telemetry.traces.otlphttp.timeout":  "5s",
	}
}
