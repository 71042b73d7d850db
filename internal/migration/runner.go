// internal/migration/runner.go
package migration

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Runner migration işlemlerini yöneten ana yapı
type Runner struct {
	db     *sql.DB
	config *Config
}

// NewRunner yeni migration runner oluşturur
func NewRunner(db *sql.DB, config *Config) *Runner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Runner{db: db, config: config}
}

// Initialize migration tracking tablosunu oluşturur
func (r *Runner) Initialize() error {
	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version BIGINT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, r.config.TableName)

	if _, err := r.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("migration tracking tablosu oluşturulamadı: %w", err)
	}

	log.Info().
		Str("table", r.config.TableName).
		Str("path", r.config.MigrationsPath).
		Msg("Migration sistemi initialize edildi")

	return nil
}

// LoadMigrations klasördeki .sql dosyalarını version sırasıyla yükler.
// Dosya adı formatı: 001_create_audit_logs_table.sql
func (r *Runner) LoadMigrations() ([]Migration, error) {
	entries, err := os.ReadDir(r.config.MigrationsPath)
	if err != nil {
		return nil, fmt.Errorf("migration klasörü okunamadı: %w", err)
	}

	applied, err := r.appliedVersions()
	if err != nil {
		return nil, err
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, name, err := parseFileName(entry.Name())
		if err != nil {
			log.Warn().Str("file", entry.Name()).Msg("Migration dosya adı parse edilemedi, atlanıyor")
			continue
		}

		content, err := os.ReadFile(filepath.Join(r.config.MigrationsPath, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("migration dosyası okunamadı (%s): %w", entry.Name(), err)
		}

		appliedAt, isApplied := applied[version]
		migrations = append(migrations, Migration{
			Version:   version,
			Name:      name,
			SQL:       string(content),
			Applied:   isApplied,
			AppliedAt: appliedAt,
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// Up bekleyen tüm migration'ları sırayla uygular.
// Her migration kendi transaction'ında çalışır; hata durumunda o
// migration rollback edilir ve işlem durur.
func (r *Runner) Up() (int, error) {
	migrations, err := r.LoadMigrations()
	if err != nil {
		return 0, err
	}

	appliedCount := 0
	for _, m := range migrations {
		if m.Applied {
			continue
		}

		if err := r.applyMigration(m); err != nil {
			return appliedCount, err
		}

		log.Info().
			Int64("version", m.Version).
			Str("name", m.Name).
			Msg("✅ Migration uygulandı")
		appliedCount++
	}

	return appliedCount, nil
}

// GetStatus migration sisteminin durumunu döner
func (r *Runner) GetStatus() (*Status, error) {
	migrations, err := r.LoadMigrations()
	if err != nil {
		return nil, err
	}

	status := &Status{
		Migrations: migrations,
		TotalCount: len(migrations),
	}

	for _, m := range migrations {
		if m.Applied {
			status.AppliedCount++
			if m.Version > status.CurrentVersion {
				status.CurrentVersion = m.Version
			}
		} else {
			status.PendingCount++
		}
	}

	return status, nil
}

// applyMigration tek bir migration'ı transaction içinde uygular
func (r *Runner) applyMigration(m Migration) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("migration transaction başlatılamadı: %w", err)
	}

	if _, err := tx.Exec(m.SQL); err != nil {
		tx.Rollback()
		return fmt.Errorf("migration uygulanamadı (%d_%s): %w", m.Version, m.Name, err)
	}

	trackSQL := fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", r.config.TableName)
	if _, err := tx.Exec(trackSQL, m.Version, m.Name); err != nil {
		tx.Rollback()
		return fmt.Errorf("migration kaydedilemedi (%d): %w", m.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migration commit edilemedi (%d): %w", m.Version, err)
	}

	return nil
}

// appliedVersions tracking tablosundaki uygulanmış version'ları okur
func (r *Runner) appliedVersions() (map[int64]*time.Time, error) {
	query := fmt.Sprintf("SELECT version, applied_at FROM %s", r.config.TableName)

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("uygulanan migration'lar okunamadı: %w", err)
	}
	defer rows.Close()

	applied := make(map[int64]*time.Time)
	for rows.Next() {
		var version int64
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("migration satırı scan hatası: %w", err)
		}
		applied[version] = &appliedAt
	}

	return applied, rows.Err()
}

// parseFileName "001_create_audit_logs_table.sql" formatını parse eder
func parseFileName(fileName string) (int64, string, error) {
	base := strings.TrimSuffix(fileName, ".sql")
	parts := strings.SplitN(base, "_", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("geçersiz migration dosya adı: %s", fileName)
	}

	version, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("geçersiz migration version: %s", parts[0])
	}

	return version, parts[1], nil
}
