// Package config предоставляет структуры и функции для загрузки конфигурации сервиса.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string          `yaml:"env" env:"APP_ENV" env-default:"local"`
	StorageConnectionString string          `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string          `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	HTTPServer              HTTPServer      `yaml:"http_server"`
	RedisConnection         RedisConnection `yaml:"redis_connection"`
	RabbitMQ                RabbitMQ        `yaml:"rabbitmq"`
	JWTToken                JWTToken        `yaml:"jwttoken"`
	RateLimit               RateLimit       `yaml:"rate_limit"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес отключает кеширование.
type RedisConnection struct {
	Addr        string        `yaml:"addr" env:"REDIS_ADDR"`
	Password    string        `yaml:"password" env:"REDIS_PASSWORD"`
	User        string        `yaml:"user"`
	DB          int           `yaml:"db"`
	MaxRetries  int           `yaml:"max_retries" env-default:"3"`
	DialTimeout time.Duration `yaml:"dial_timeout" env-default:"5s"`
	Timeout     time.Duration `yaml:"timeout" env-default:"3s"`
	TTL         time.Duration `yaml:"ttl" env-default:"1h"`
}

// RabbitMQ структура для подключения к брокеру событий.
// Пустой URL отключает публикацию событий.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange   string        `yaml:"exchange" env-default:"favorites"`
	Retries    int           `yaml:"retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`

	// ConsumeAudit включает запись событий из очереди аудита в журнал сервиса.
	ConsumeAudit bool `yaml:"consume_audit" env-default:"true"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// RateLimit настройки ограничителя запросов.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"50"`
	Burst int     `yaml:"burst" env-default:"100"`
}

// Load читает конфигурацию из YAML-файла и переменных окружения.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if configPath == "" {
		return nil, fmt.Errorf("%s: CONFIG_PATH is not set", op)
	}
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "******"
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"MigrationsPath: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  Password: %s\n"+
			"  DB: %d\n"+
			"  TTL: %s\n"+
			"RabbitMQ:\n"+
			"  URL: %s\n"+
			"  Exchange: %s\n"+
			"JWTToken:\n"+
			"  JWTSecretKey: %s\n"+
			"  TokenTTL: %s\n"+
			"RateLimit:\n"+
			"  RPS: %g\n"+
			"  Burst: %d\n",
		c.Env,
		redact(c.StorageConnectionString),
		c.MigrationsPath,
		c.HTTPServer.Address,
		c.HTTPServer.Timeout,
		c.HTTPServer.IdleTimeout,
		c.RedisConnection.Addr,
		redact(c.RedisConnection.Password),
		c.RedisConnection.DB,
		c.RedisConnection.TTL,
		redact(c.RabbitMQ.URL),
		c.RabbitMQ.Exchange,
		redact(c.JWTToken.JWTSecretKey),
		c.JWTToken.TokenTTL,
		c.RateLimit.RPS,
		c.RateLimit.Burst,
	)
}
