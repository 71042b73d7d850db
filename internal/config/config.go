package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config ortam yapılandırmalarını tutar
type Config struct {
	AppEnv string
	Port   string
	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	// Audit retention ve queue ayarları
	RetentionDays     int
	AuditQueueWorkers int
	AuditQueueBuffer  int
}

// yardımcı fonksiyon: ortam değişkeni yoksa default değeri döner
func getEnv(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// yardımcı fonksiyon: int ortam değişkeni, parse edilemezse default
func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// LoadConfig tüm yapılandırmayı yükler
func LoadConfig() *Config {
	return &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "emlakcrm"),
		DBPass:            getEnv("DB_PASS", "password"),
		DBName:            getEnv("DB_NAME", "auditdb"),
		RetentionDays:     getEnvInt("AUDIT_RETENTION_DAYS", 365),
		AuditQueueWorkers: getEnvInt("AUDIT_QUEUE_WORKERS", 3),
		AuditQueueBuffer:  getEnvInt("AUDIT_QUEUE_BUFFER", 100),
	}
}

// GetDSN veritabanı bağlantı URL'sini döner
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName,
	)
}
