package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names an optional YAML file loaded between defaults and the environment.
const ConfigPathEnvVar = "CONFIG_PATH"

// Config holds application level configuration.
// Keys match the environment variable names, lower-cased.
type Config struct {
	ServerPort  string `koanf:"server_port"`
	MySQLDSN    string `koanf:"mysql_dsn"`
	ResetDB     bool   `koanf:"reset_db"`
	RedisAddr   string `koanf:"redis_addr"`
	RedisDB     int    `koanf:"redis_db"`
	RedisPass   string `koanf:"redis_password"`
	JWTSecret   string `koanf:"jwt_secret"`
	SwaggerHost string `koanf:"swagger_host"`

	TokenTTL  time.Duration `koanf:"token_ttl"`
	RateLimit float64       `koanf:"rate_limit"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	EnrichURL     string        `koanf:"enrich_url"`
	EnrichAPIKey  string        `koanf:"enrich_api_key"`
	EnrichTimeout time.Duration `koanf:"enrich_timeout"`
}

func defaultConfig() *Config {
	return &Config{
		ServerPort:    "8080",
		MySQLDSN:      "user:password@tcp(localhost:3306)/recipes?charset=utf8mb4&parseTime=True&loc=Local",
		RedisAddr:     "localhost:6379",
		JWTSecret:     "change-me",
		TokenTTL:      30 * time.Minute,
		RateLimit:     20,
		LogLevel:      "info",
		LogFormat:     "json",
		EnrichTimeout: 3 * time.Second,
	}
}

var knownKeys = map[string]struct{}{
	"server_port": {}, "mysql_dsn": {}, "reset_db": {},
	"redis_addr": {}, "redis_db": {}, "redis_password": {},
	"jwt_secret": {}, "swagger_host": {}, "token_ttl": {}, "rate_limit": {},
	"log_level": {}, "log_format": {},
	"enrich_url": {}, "enrich_api_key": {}, "enrich_timeout": {},
}

// envKey maps SERVER_PORT to server_port and drops unrelated variables.
func envKey(name string) string {
	key := strings.ToLower(name)
	if _, ok := knownKeys[key]; !ok {
		return ""
	}
	return key
}

// envValue skips empty variables so they do not shadow defaults.
func envValue(name, value string) (string, interface{}) {
	if value == "" {
		return "", nil
	}
	return envKey(name), value
}

// Load builds Config from defaults, the optional CONFIG_PATH file and the environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
