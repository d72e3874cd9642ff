package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "TODO"

// Config holds application configuration from file, environment and defaults.
type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Sync     SyncConfig     `mapstructure:"sync"`
}

type HTTPConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr is the listen address for http.Server.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

type DatabaseConfig struct {
	// Path is the SQLite file. Empty means the per-user default location.
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SyncConfig configures the optional snapshot publisher (Redis) and the
// remote command inbox (Kafka). Leaving an endpoint empty disables it.
type SyncConfig struct {
	RedisURL        string        `mapstructure:"redis_url"`
	RedisKey        string        `mapstructure:"redis_key"`
	RedisTTL        time.Duration `mapstructure:"redis_ttl"`
	KafkaBrokers    []string      `mapstructure:"kafka_brokers"`
	KafkaTopic      string        `mapstructure:"kafka_topic"`
	KafkaGroup      string        `mapstructure:"kafka_group"`
	KafkaPartitions int           `mapstructure:"kafka_partitions"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	Consume         bool          `mapstructure:"consume"`
	Notify          bool          `mapstructure:"notify"`
}

// RedisEnabled reports whether snapshots should be published.
func (s SyncConfig) RedisEnabled() bool { return s.RedisURL != "" }

// KafkaEnabled reports whether the command inbox is configured.
func (s SyncConfig) KafkaEnabled() bool { return len(s.KafkaBrokers) > 0 }

// DefaultConfigPath returns ~/.config/todo/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "todo", "config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 5000)
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.shutdown_timeout", 15*time.Second)
	v.SetDefault("database.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("sync.redis_url", "")
	v.SetDefault("sync.redis_key", "todo:snapshot")
	v.SetDefault("sync.redis_ttl", time.Duration(0))
	v.SetDefault("sync.kafka_brokers", []string{})
	v.SetDefault("sync.kafka_topic", "todo-commands")
	v.SetDefault("sync.kafka_group", "todo-sync")
	v.SetDefault("sync.kafka_partitions", 1)
	v.SetDefault("sync.idle_timeout", 3*time.Second)
	v.SetDefault("sync.consume", false)
	v.SetDefault("sync.notify", true)
}

// Load reads configuration from the YAML file at path (a missing file is not
// an error), then overlays TODO_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Sync.KafkaBrokers = splitBrokers(cfg.Sync.KafkaBrokers)
	if cfg.Sync.KafkaPartitions <= 0 {
		cfg.Sync.KafkaPartitions = 1
	}
	return cfg, nil
}

// splitBrokers accepts both YAML lists and a comma separated env value.
func splitBrokers(in []string) []string {
	var out []string
	for _, item := range in {
		for _, s := range strings.Split(item, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
