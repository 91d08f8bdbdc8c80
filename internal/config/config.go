package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Ollama   OllamaConfig
}

var (
	configInstance *Config
	once           sync.Once
)

type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN builds the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	URI          string
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
}

type JWTConfig struct {
	Secret         string
	ExpirationTime time.Duration
}

type OllamaConfig struct {
	Host    string
	Model   string
	Timeout time.Duration
}

func LoadConfig() (*Config, error) {
	once.Do(func() {
		viper.SetDefault("COLLAB_HOST", "0.0.0.0")
		viper.SetDefault("COLLAB_PORT", "8080")
		viper.SetDefault("COLLAB_READ_TIMEOUT", 30*time.Second)
		viper.SetDefault("COLLAB_WRITE_TIMEOUT", 30*time.Second)
		viper.SetDefault("COLLAB_IDLE_TIMEOUT", 60*time.Second)
		viper.SetDefault("COLLAB_ALLOWED_ORIGINS", []string{"http://localhost:3000"})
		viper.SetDefault("COLLAB_JWT_SECRET", "secret")
		viper.SetDefault("COLLAB_JWT_EXPIRE", "24h")
		viper.SetDefault("REDIS_URL", "redis://127.0.0.1:6379/0")
		viper.SetDefault("REDIS_MAX_RETRIES", 3)
		viper.SetDefault("REDIS_POOL_SIZE", 100)
		viper.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
		viper.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
		viper.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
		viper.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)
		viper.SetDefault("POSTGRES_USER", "postgres")
		viper.SetDefault("POSTGRES_PASSWORD", "password")
		viper.SetDefault("POSTGRES_HOST", "localhost")
		viper.SetDefault("POSTGRES_PORT", "5432")
		viper.SetDefault("POSTGRES_DB", "collab")
		viper.SetDefault("POSTGRES_SSLMODE", "disable")
		viper.SetDefault("OLLAMA_HOST", "http://localhost:11434")
		viper.SetDefault("OLLAMA_DEFAULT_MODEL", "llama2")
		viper.SetDefault("OLLAMA_TIMEOUT", 120*time.Second)
		viper.AutomaticEnv()

		configInstance = &Config{
			Server: ServerConfig{
				Host:           viper.GetString("COLLAB_HOST"),
				Port:           viper.GetString("COLLAB_PORT"),
				ReadTimeout:    viper.GetDuration("COLLAB_READ_TIMEOUT"),
				WriteTimeout:   viper.GetDuration("COLLAB_WRITE_TIMEOUT"),
				IdleTimeout:    viper.GetDuration("COLLAB_IDLE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("COLLAB_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("POSTGRES_HOST"),
				Port:     viper.GetString("POSTGRES_PORT"),
				User:     viper.GetString("POSTGRES_USER"),
				Password: viper.GetString("POSTGRES_PASSWORD"),
				DBName:   viper.GetString("POSTGRES_DB"),
				SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
			},
			Redis: RedisConfig{
				URI:          viper.GetString("REDIS_URL"),
				MaxRetries:   viper.GetInt("REDIS_MAX_RETRIES"),
				DialTimeout:  viper.GetDuration("REDIS_DIAL_TIMEOUT"),
				ReadTimeout:  viper.GetDuration("REDIS_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("REDIS_WRITE_TIMEOUT"),
				PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
				MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
			},
			JWT: JWTConfig{
				Secret:         viper.GetString("COLLAB_JWT_SECRET"),
				ExpirationTime: viper.GetDuration("COLLAB_JWT_EXPIRE"),
			},
			Ollama: OllamaConfig{
				Host:    viper.GetString("OLLAMA_HOST"),
				Model:   viper.GetString("OLLAMA_DEFAULT_MODEL"),
				Timeout: viper.GetDuration("OLLAMA_TIMEOUT"),
			},
		}
	})

	return configInstance, nil
}
