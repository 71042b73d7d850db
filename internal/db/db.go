package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// Connect audit veritabanına bağlantı açar ve pool'u ayarlar.
// Queue worker'ları + HTTP handler'ları aynı pool'u paylaşır; audit
// yazımları burst'lü geldiği için idle bağlantılar açık tutulur.
func Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("veritabanı açılırken hata: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Bağlantıyı test et
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("veritabanına ping atılamadı: %w", err)
	}

	log.Info().Msg("✅ Audit veritabanına (PostgreSQL) başarıyla bağlandı")
	return db, nil
}
