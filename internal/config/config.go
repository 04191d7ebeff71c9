package config

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/phambaophuc/image-batch-crop/internal/models"
)

type Config struct {
	Server   ServerConfig
	Batch    BatchConfig
	Supabase SupabaseConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type BatchConfig struct {
	Workers       int
	FailurePolicy string
	MaxFiles      int
	Defaults      models.ProcessingOptions
}

type SupabaseConfig struct {
	URL    string
	KEY    string
	BUCKET string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	URL   string
	Queue string
}

type StorageConfig struct {
	MaxFileSize int64
	ArchiveTTL  time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	ratio, err := models.ParseAspectRatio(getEnv("DEFAULT_RATIO", models.DefaultAspectRatio.String()))
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_RATIO: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 60*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 5*time.Minute),
		},
		Batch: BatchConfig{
			Workers:       max(1, getEnvAsInt("BATCH_WORKERS", runtime.NumCPU())),
			FailurePolicy: getEnv("FAILURE_POLICY", "all-or-nothing"),
			MaxFiles:      getEnvAsInt("MAX_BATCH_FILES", 200),
			Defaults: models.ProcessingOptions{
				AspectRatio: ratio,
				Width:       getEnvAsInt("DEFAULT_WIDTH", models.DefaultWidth),
				Quality:     getEnvAsFloat("DEFAULT_QUALITY", models.DefaultQuality),
			},
		},
		Supabase: SupabaseConfig{
			URL:    getEnv("SUPABASE_URL", ""),
			KEY:    getEnv("SUPABASE_KEY", ""),
			BUCKET: getEnv("SUPABASE_BUCKET", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   getEnv("RABBITMQ_URL", ""),
			Queue: getEnv("RABBITMQ_QUEUE", "batch_events"),
		},
		Storage: StorageConfig{
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 20*1024*1024), // 20MB per image
			ArchiveTTL:  getDuration("ARCHIVE_TTL", time.Hour),
		},
	}

	if err := cfg.Batch.Defaults.Validate(); err != nil {
		return nil, fmt.Errorf("invalid default options: %w", err)
	}
	if err := cfg.Batch.Defaults.CheckLimits(); err != nil {
		return nil, fmt.Errorf("invalid default options: %w", err)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
