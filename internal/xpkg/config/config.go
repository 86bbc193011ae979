package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    *Server    `yaml:"server"`
	DB        *Postgres  `yaml:"database"`
	RMQ       *RabbitMQ  `yaml:"rabbitmq"`
	Kafka     *Kafka     `yaml:"kafka"`
	Auth      *Auth      `yaml:"auth"`
	Uploads   *Uploads   `yaml:"uploads"`
	Telemetry *Telemetry `yaml:"telemetry"`
}

type Server struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	// requests per second per session, 0 disables the limiter
	RateLimit int    `yaml:"rate_limit"`
	RateBurst int    `yaml:"rate_burst"`
	LogLevel  string `yaml:"log_level"`
}

type Postgres struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	MaxConns int32  `yaml:"max_conns"`
}

type RabbitMQ struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	VHost    string `yaml:"vhost"`
	Exchange string `yaml:"exchange"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type Auth struct {
	AccessSecret string `yaml:"access_secret"`
}

type Uploads struct {
	ReceiptsDir string `yaml:"receipts_dir"`
	ImagesDir   string `yaml:"images_dir"`
}

type Telemetry struct {
	Endpoint string `yaml:"endpoint"`
}

// LoadConfig reads the yaml file at configPath, then lets .env and the process
// environment override it. A missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
		fillSections(cfg)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Server: &Server{
			AllowedOrigins: []string{"http://localhost:5173"},
			RateLimit:      20,
			RateBurst:      40,
			LogLevel:       "info",
		},
		DB: &Postgres{
			Host:     "localhost",
			Port:     "5432",
			User:     "admin",
			Password: "admin",
			Database: "food_express",
			MaxConns: 10,
		},
		RMQ: &RabbitMQ{
			Host:     "localhost",
			Port:     "5672",
			User:     "guest",
			Password: "guest",
			Exchange: "order_notifications",
		},
		Kafka: &Kafka{
			Topic: "order-events",
		},
		Auth: &Auth{},
		Uploads: &Uploads{
			ReceiptsDir: "public/UploadedReceipts",
			ImagesDir:   "public/Images",
		},
		Telemetry: &Telemetry{},
	}
}

// fillSections restores sections that were present in the file but empty,
// which yaml decodes to nil.
func fillSections(cfg *Config) {
	def := Default()
	if cfg.Server == nil {
		cfg.Server = def.Server
	}
	if cfg.DB == nil {
		cfg.DB = def.DB
	}
	if cfg.RMQ == nil {
		cfg.RMQ = def.RMQ
	}
	if cfg.Kafka == nil {
		cfg.Kafka = def.Kafka
	}
	if cfg.Auth == nil {
		cfg.Auth = def.Auth
	}
	if cfg.Uploads == nil {
		cfg.Uploads = def.Uploads
	}
	if cfg.Telemetry == nil {
		cfg.Telemetry = def.Telemetry
	}
}

func applyEnv(cfg *Config) {
	cfg.DB.Host = getEnv("POSTGRES_HOST", cfg.DB.Host)
	cfg.DB.Port = getEnv("POSTGRES_PORT", cfg.DB.Port)
	cfg.DB.User = getEnv("POSTGRES_USER", cfg.DB.User)
	cfg.DB.Password = getEnv("POSTGRES_PASSWORD", cfg.DB.Password)
	cfg.DB.Database = getEnv("POSTGRES_DBNAME", cfg.DB.Database)

	cfg.RMQ.Host = getEnv("RABBITMQ_HOST", cfg.RMQ.Host)
	cfg.RMQ.Port = getEnv("RABBITMQ_PORT", cfg.RMQ.Port)
	cfg.RMQ.User = getEnv("RABBITMQ_USER", cfg.RMQ.User)
	cfg.RMQ.Password = getEnv("RABBITMQ_PASSWORD", cfg.RMQ.Password)
	cfg.RMQ.VHost = getEnv("RABBITMQ_VHOST", cfg.RMQ.VHost)

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}

	cfg.Auth.AccessSecret = getEnv("ACCESS_TOKEN_SECRET", cfg.Auth.AccessSecret)
	cfg.Telemetry.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", cfg.Server.LogLevel)

	if v, err := strconv.Atoi(os.Getenv("RATE_LIMIT")); err == nil {
		cfg.Server.RateLimit = v
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
