// Package config предоставляет структуры и функции для загрузки конфигурации ассистента бронирования
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Бэкенды хранения сессии
const (
	SessionMemory   = "memory"
	SessionRedis    = "redis"
	SessionPostgres = "postgres"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"BOOKINGHUB_ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"BOOKINGHUB_STORAGE"`
	Backend                 `yaml:"backend"`
	Session                 `yaml:"session"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	RabbitMQ                `yaml:"rabbitmq"`
	Scheduling              `yaml:"scheduling"`
}

// Backend структура для настройки клиента внешнего REST API
type Backend struct {
	BaseURL string `yaml:"base_url" env:"BOOKINGHUB_BACKEND_URL" env-required:"true"`
	// Timeout равный нулю означает отсутствие таймаута на исходящие запросы.
	Timeout time.Duration `yaml:"timeout" env:"BOOKINGHUB_BACKEND_TIMEOUT"`
}

// Session структура для выбора хранилища токена
type Session struct {
	Store string `yaml:"store" env:"BOOKINGHUB_SESSION_STORE" env-default:"memory"`
	Key   string `yaml:"key" env-default:"accessToken"`
}

// HTTPServer структура для настройки сервера ассистента
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"BOOKINGHUB_HTTP_ADDRESS" env-default:":8081"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"30s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	RateLimit   float64       `yaml:"rate_limit" env-default:"20"`
	RateBurst   int           `yaml:"rate_burst" env-default:"40"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"BOOKINGHUB_REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"BOOKINGHUB_REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// RabbitMQ структура для публикации событий о бронированиях.
// Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL      string `yaml:"url" env:"BOOKINGHUB_RABBITMQ_URL"`
	Exchange string `yaml:"exchange" env-default:"bookings"`
}

// Scheduling структура с настройками подбора времени
type Scheduling struct {
	Timezone string `yaml:"timezone" env:"BOOKINGHUB_TIMEZONE" env-default:"Local"`
}

// Location возвращает часовой пояс, в котором время бронирований переводится в минуты суток.
func (s Scheduling) Location() (*time.Location, error) {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(s.Timezone)
}

// Load читает конфиг из yaml-файла по пути path с переопределением из переменных окружения.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch cfg.Session.Store {
	case SessionMemory, SessionRedis, SessionPostgres:
	default:
		return nil, fmt.Errorf("%s: unknown session store %q", op, cfg.Session.Store)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс при ошибке
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Backend:\n"+
			"  BaseURL: %s\n"+
			"  Timeout: %s\n"+
			"Session:\n"+
			"  Store: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"RabbitMQ:\n"+
			"  Exchange: %s\n"+
			"Scheduling:\n"+
			"  Timezone: %s\n",
		c.Env,
		c.BaseURL,
		c.Backend.Timeout,
		c.Store,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.AddressRedis,
		c.DB,
		c.Exchange,
		c.Timezone,
	)
}
