package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mmtrader/pairsweep/internal/core"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Datasets DatasetsConfig `mapstructure:"datasets"`
	Sweep    SweepConfig    `mapstructure:"sweep"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	LogLevel string         `mapstructure:"log_level"`
}

type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	MaxJobs int    `mapstructure:"max_jobs"`
}

// WorkerConfig selects how backtests execute: "local" runs the signal
// engine in-process, "remote" forwards requests to an HTTP runner.
type WorkerConfig struct {
	Mode     string        `mapstructure:"mode"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type DatasetsConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// SweepConfig bounds sweep expansion and execution.
type SweepConfig struct {
	Resolution      string `mapstructure:"resolution"`
	Parallelism     int    `mapstructure:"parallelism"`
	MaxPermutations int    `mapstructure:"max_permutations"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			MaxJobs: 100,
		},
		Worker: WorkerConfig{
			Mode:    "local",
			Timeout: 5 * time.Minute,
		},
		Datasets: DatasetsConfig{
			Type: "localfs",
			Path: "./data",
		},
		Sweep: SweepConfig{
			Resolution:      "1m",
			Parallelism:     4,
			MaxPermutations: 10000,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		LogLevel: "info",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	switch c.Worker.Mode {
	case "local":
	case "remote":
		if c.Worker.Endpoint == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("worker endpoint required when mode is remote"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("worker mode must be local or remote, got %q", c.Worker.Mode))
	}

	switch c.Datasets.Type {
	case "localfs":
		if c.Datasets.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("datasets path required when type is localfs"))
		}
	case "s3":
		if c.Datasets.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when datasets type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("datasets type must be localfs or s3, got %q", c.Datasets.Type))
	}

	if !core.Resolution(c.Sweep.Resolution).IsValid() {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown sweep resolution %q", c.Sweep.Resolution))
	}
	if c.Sweep.Parallelism < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("parallelism must be positive, got %d", c.Sweep.Parallelism))
	}
	if c.Sweep.MaxPermutations < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_permutations must be positive, got %d", c.Sweep.MaxPermutations))
	}

	return nil
}
