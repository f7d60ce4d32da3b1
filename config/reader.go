package config

import (
	"fmt"
	"log"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
}

type ConfigSchema struct {
	Databases struct {
		Master struct {
			Host     string `yaml:"host" env:"DB_HOST"`
			Port     int    `yaml:"port" env:"DB_PORT"`
			User     string `yaml:"user" env:"DB_USER"`
			Password string `yaml:"password" env:"DB_PASSWORD"`
			DBName   string `yaml:"name" env:"DB_NAME"`
		} `yaml:"master"`
		Replicas []DBConfig `yaml:"replicas"`
	} `yaml:"db"`
	Store struct {
		// postgres, sqlite или memory
		Driver     string `yaml:"driver" env:"STORE_DRIVER"`
		SQLitePath string `yaml:"sqlite_path" env:"STORE_SQLITE_PATH"`
	} `yaml:"store"`
	Redis struct {
		Host     string `yaml:"host" env:"REDIS_HOST"`
		Port     int    `yaml:"port" env:"REDIS_PORT"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
	} `yaml:"redis"`
	RabbitMQ struct {
		URL      string `yaml:"url" env:"RABBITMQ_URL"`
		Exchange string `yaml:"exchange" env:"RABBITMQ_EXCHANGE"`
		Queue    string `yaml:"queue" env:"RABBITMQ_QUEUE"`
	} `yaml:"rabbitmq"`
	Backend struct {
		Host string `yaml:"host" env:"BACKEND_HOST"`
		Port int    `yaml:"port" env:"BACKEND_PORT"`
	} `yaml:"backend"`
}

// MasterDB возвращает настройки мастера в общем формате
func (c *ConfigSchema) MasterDB() DBConfig {
	m := c.Databases.Master
	return DBConfig{Host: m.Host, Port: m.Port, User: m.User, Password: m.Password, DBName: m.DBName}
}

// ListenAddr - адрес, на котором поднимается HTTP сервер
func (c *ConfigSchema) ListenAddr() string {
	port := c.Backend.Port
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", c.Backend.Host, port)
}

var AppConfig *ConfigSchema

// LoadConfig читает yaml, затем переменные окружения (и .env, если он есть)
func LoadConfig(filePath string) error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	conf, err := Parse(data)
	if err != nil {
		return err
	}
	AppConfig = conf
	return nil
}

// Parse разбирает yaml и накладывает поверх значения из окружения
func Parse(data []byte) (*ConfigSchema, error) {
	conf := &ConfigSchema{}
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := env.Parse(conf); err != nil {
		return nil, fmt.Errorf("failed to read env overrides: %w", err)
	}
	if conf.Store.Driver == "" {
		conf.Store.Driver = "postgres"
	}
	if conf.RabbitMQ.Exchange == "" {
		conf.RabbitMQ.Exchange = "duel_events"
	}
	return conf, nil
}
