// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек веб-клиента
type Config struct {
	Env             string `yaml:"env" env-default:"local"`
	Backend         `yaml:"backend"`
	RedisConnection `yaml:"redis_connection"`
	HTTPServer      `yaml:"http_server"`
	Session         `yaml:"session"`
	JWTToken        `yaml:"jwttoken"`
	DemoUser        `yaml:"demo_user"`
}

// Backend структура с адресом бэкенда ассистента, за которым живет вся бизнес-логика
type Backend struct {
	Address string        `yaml:"address" env-default:"http://localhost:5000"`
	Timeout time.Duration `yaml:"timeout" env-default:"10s"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8081"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"15s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес означает, что сессии хранятся в памяти процесса.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// Session структура с настройками пользовательской сессии
type Session struct {
	CookieName string        `yaml:"cookie_name" env-default:"assistant_session"`
	TTL        time.Duration `yaml:"ttl" env-default:"24h"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// DemoUser учетная запись демонстрационного пользователя.
// Пароль хешируется при старте, в открытом виде нигде не хранится.
type DemoUser struct {
	Email               string `yaml:"email" env-default:"demo@example.com"`
	Password            string `yaml:"password" env-default:"password"`
	Name                string `yaml:"name" env-default:"Utilisateur Démo"`
	SubscriptionType    string `yaml:"subscription_type" env-default:"premium"`
	SubscriptionEndDate string `yaml:"subscription_end_date" env-default:"2025-12-31"`
}

// MustLoad функция для загрузки конфига, путь берется из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
