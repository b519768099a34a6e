package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend selector values for the optional message queue and object
// storage integrations.
const (
	BackendNone     = "none"
	BackendRabbitMQ = "rabbitmq"
	BackendPubSub   = "pubsub"
	BackendMinio    = "minio"
	BackendGCS      = "gcs"
)

type Config struct {
	ServerPort        int
	LowStockThreshold int64
	Database          DatabaseConfig
	JWT               JWTConfig
	MQ                MQConfig
	Storage           StorageConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// JWTConfig holds the token signing parameters, fixed at startup.
type JWTConfig struct {
	Secret    string
	Algorithm string
	TokenTTL  time.Duration
}

type MQConfig struct {
	Backend      string
	EventChannel string
	RabbitMQ     RabbitMQConfig
	PubSub       PubSubConfig
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

type PubSubConfig struct {
	ProjectID       string
	CredentialsFile string
}

type StorageConfig struct {
	Backend string
	Minio   MinioConfig
	GCS     GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

var supportedAlgorithms = map[string]bool{
	"HS256": true,
	"HS384": true,
	"HS512": true,
}

// Load reads configuration from the environment (and .env in dev) and
// validates the keys the process cannot run without.
func Load() (Config, error) {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	cfg := Config{
		ServerPort:        getEnvInt("SERVER_PORT", 8080),
		LowStockThreshold: int64(getEnvInt("LOW_STOCK_THRESHOLD", 5)),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "teashop"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "teashop_inventory"),
			UseSSL:   getEnvBool("DB_SSL", false),
		},
		JWT: JWTConfig{
			Secret:    strings.TrimSpace(os.Getenv("JWT_SECRET")),
			Algorithm: getEnv("JWT_ALGORITHM", "HS256"),
			TokenTTL:  time.Duration(getEnvInt("TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		},
		MQ: MQConfig{
			Backend:      getEnv("MQ_BACKEND", BackendNone),
			EventChannel: getEnv("MQ_EVENT_CHANNEL", "inventory-events"),
			RabbitMQ: RabbitMQConfig{
				URL:             os.Getenv("RABBITMQ_URL"),
				QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
				QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
				PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH_COUNT", 0),
			},
			PubSub: PubSubConfig{
				ProjectID:       os.Getenv("PUBSUB_PROJECT_ID"),
				CredentialsFile: os.Getenv("PUBSUB_CREDENTIALS_FILE"),
			},
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", BackendNone),
			Minio: MinioConfig{
				Endpoint:  os.Getenv("MINIO_ENDPOINT"),
				AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
				SecretKey: os.Getenv("MINIO_SECRET_KEY"),
				Bucket:    getEnv("MINIO_BUCKET", "teashop-reports"),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
			GCS: GCSConfig{
				Bucket:          os.Getenv("GCS_BUCKET"),
				ProjectID:       os.Getenv("GCS_PROJECT_ID"),
				CredentialsFile: os.Getenv("GCS_CREDENTIALS_FILE"),
			},
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if !supportedAlgorithms[c.JWT.Algorithm] {
		return fmt.Errorf("unsupported JWT_ALGORITHM %q", c.JWT.Algorithm)
	}
	if c.JWT.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	switch c.MQ.Backend {
	case BackendNone:
	case BackendRabbitMQ:
		if strings.TrimSpace(c.MQ.RabbitMQ.URL) == "" {
			return fmt.Errorf("RABBITMQ_URL is required when MQ_BACKEND=rabbitmq")
		}
	case BackendPubSub:
		if strings.TrimSpace(c.MQ.PubSub.ProjectID) == "" {
			return fmt.Errorf("PUBSUB_PROJECT_ID is required when MQ_BACKEND=pubsub")
		}
	default:
		return fmt.Errorf("unknown MQ_BACKEND %q", c.MQ.Backend)
	}

	switch c.Storage.Backend {
	case BackendNone:
	case BackendMinio:
		if strings.TrimSpace(c.Storage.Minio.Endpoint) == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required when STORAGE_BACKEND=minio")
		}
	case BackendGCS:
		if strings.TrimSpace(c.Storage.GCS.Bucket) == "" {
			return fmt.Errorf("GCS_BUCKET is required when STORAGE_BACKEND=gcs")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(strings.TrimSpace(valueStr)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultValue
}
