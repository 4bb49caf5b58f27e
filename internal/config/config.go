package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds the application's configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Ontology OntologyConfig `mapstructure:"ontology"`
	Log      LogConfig      `mapstructure:"log"`
	InfluxDB InfluxDBConfig `mapstructure:"influxdb"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	StaticDir       string        `mapstructure:"static_dir"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// OntologyConfig says where the campus ontology is read from.
type OntologyConfig struct {
	Path         string        `mapstructure:"path"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// InfluxDBConfig points at an optional live occupancy store. Timeout bounds
// each occupancy lookup.
type InfluxDBConfig struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Org     string        `mapstructure:"org"`
	Bucket  string        `mapstructure:"bucket"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether enough is configured to query InfluxDB.
func (c InfluxDBConfig) Enabled() bool {
	return c.URL != "" && c.Token != "" && c.Org != ""
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// GetDefaultConfig returns default configuration
func GetDefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:            "",
			Port:            "5000",
			StaticDir:       "./static",
			ShutdownTimeout: 15 * time.Second,
		},
		Ontology: OntologyConfig{
			Path:         "./rdf_data/tamu_ont.owl",
			FetchTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		InfluxDB: InfluxDBConfig{
			Bucket:  "parking",
			Timeout: 2 * time.Second,
		},
	}
}

// LoadConfig loads configuration from an optional .env file, an optional
// config.yaml under path, and environment variables, in increasing precedence.
func LoadConfig(path string) (Config, error) {
	//load env variables
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, relying on system environment variables")
	}

	v := viper.New()
	setDefaults(v, GetDefaultConfig())

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"server.host":       "SERVER_HOST",
		"server.port":       "PORT",
		"server.static_dir": "STATIC_DIR",
		"ontology.path":     "ONTOLOGY_PATH",
		"log.level":         "LOG_LEVEL",
		"log.format":        "LOG_FORMAT",
		"influxdb.url":      "INFLUXDB_URL",
		"influxdb.token":    "INFLUXDB_TOKEN",
		"influxdb.org":      "INFLUXDB_ORG",
		"influxdb.bucket":   "INFLUXDB_BUCKET",
		"influxdb.timeout":  "INFLUXDB_TIMEOUT",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("binding %s to %s: %w", key, env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if cfg.Ontology.Path == "" {
		return Config{}, fmt.Errorf("ontology path is empty. Please set ONTOLOGY_PATH")
	}
	if cfg.InfluxDB.Timeout <= 0 {
		return Config{}, fmt.Errorf("influxdb timeout must be positive, got %s", cfg.InfluxDB.Timeout)
	}
	if cfg.Server.Port == "" {
		return Config{}, fmt.Errorf("server port is empty. Please set PORT")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.static_dir", d.Server.StaticDir)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("ontology.path", d.Ontology.Path)
	v.SetDefault("ontology.fetch_timeout", d.Ontology.FetchTimeout)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("influxdb.url", d.InfluxDB.URL)
	v.SetDefault("influxdb.token", d.InfluxDB.Token)
	v.SetDefault("influxdb.org", d.InfluxDB.Org)
	v.SetDefault("influxdb.bucket", d.InfluxDB.Bucket)
	v.SetDefault("influxdb.timeout", d.InfluxDB.Timeout)
}
