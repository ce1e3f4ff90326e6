package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

const (
	defaultEncryptTimeout = 10 * time.Minute
	defaultEncryptWorkers = 2
)

type Config struct {
	TelegramToken string
	DBDSN         string
	Environment   string
	LogLevel      string

	// Корень, в котором encryption-команда складывает архивы
	// (<root>/<fileSafeName>/<dataset>_<userID>.zip.gpg)
	EncryptedDatasetRoot string
	EncryptCommand       string
	EncryptTimeout       time.Duration
	EncryptWorkers       int

	// AllowDeleteAll включает массовое удаление заявок (только для разработки)
	AllowDeleteAll   bool
	AdminTelegramIDs []int64
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	} else {
		log.Println("Loaded configuration from .env file")
	}

	cfg := &Config{
		TelegramToken:        os.Getenv("TELEGRAM_TOKEN"),
		DBDSN:                os.Getenv("DB_DSN"),
		Environment:          os.Getenv("ENV"),
		LogLevel:             os.Getenv("LOG_LEVEL"),
		EncryptedDatasetRoot: os.Getenv("ENCRYPTED_DATASET_ROOT"),
		EncryptCommand:       os.Getenv("ENCRYPT_COMMAND"),
		EncryptTimeout:       defaultEncryptTimeout,
		EncryptWorkers:       defaultEncryptWorkers,
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if v := os.Getenv("ENCRYPT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse ENCRYPT_TIMEOUT: %w", err)
		}
		cfg.EncryptTimeout = d
	}

	if v := os.Getenv("ENCRYPT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("ENCRYPT_WORKERS must be a positive integer, got %q", v)
		}
		cfg.EncryptWorkers = n
	}

	if v := os.Getenv("ALLOW_DELETE_ALL"); v != "" {
		allow, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("parse ALLOW_DELETE_ALL: %w", err)
		}
		cfg.AllowDeleteAll = allow
	}

	ids, err := parseIDList(os.Getenv("ADMIN_TELEGRAM_IDS"))
	if err != nil {
		return nil, fmt.Errorf("parse ADMIN_TELEGRAM_IDS: %w", err)
	}
	cfg.AdminTelegramIDs = ids

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Printf("Config loaded (env=%s)\n", cfg.Environment)

	return cfg, nil
}

// Validate проверяет обязательные поля и запреты окружения
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required but not set")
	}
	if c.EncryptedDatasetRoot == "" {
		return fmt.Errorf("ENCRYPTED_DATASET_ROOT is required but not set")
	}
	if c.EncryptCommand == "" {
		return fmt.Errorf("ENCRYPT_COMMAND is required but not set")
	}
	if c.LogLevel != "" {
		if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("parse LOG_LEVEL: %w", err)
		}
	}
	if c.AllowDeleteAll && c.IsProduction() {
		return fmt.Errorf("ALLOW_DELETE_ALL must not be enabled in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
