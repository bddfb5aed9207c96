package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// S3Config points at the media bucket holding exercise demos and dish images.
type S3Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	BucketName      string        `mapstructure:"bucket_name"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	PresignExpiry   time.Duration `mapstructure:"presign_expiry"`
}

// JWTConfig holds the secret shared with the auth service that issues tokens.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	DishCacheTTL time.Duration `mapstructure:"dish_cache_ttl"`
}

// QueueConfig controls delivery of domain events through asynq.
type QueueConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	RedisDB int    `mapstructure:"redis_db"`
	Name    string `mapstructure:"name"`
}

type LogConfig struct {
	Env   string `mapstructure:"env"`
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func (l LogConfig) IsProduction() bool {
	return strings.EqualFold(l.Env, "production")
}

// LoadConfig reads configuration from path/config.yaml and the environment.
// A missing file is not an error.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "coaching")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.presign_expiry", "15m")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dish_cache_ttl", "10m")
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.redis_db", 1)
	v.SetDefault("queue.name", "coaching")
	v.SetDefault("log.env", "development")
	v.SetDefault("log.level", "")
	v.SetDefault("log.file", "")

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	if config.JWT.Secret == "" {
		return config, errors.New("jwt.secret must be set")
	}
	return config, nil
}
