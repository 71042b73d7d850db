// internal/migration/types.go
package migration

import "time"

// Migration tek bir veritabanı migration'ını temsil eder
type Migration struct {
	Version   int64      `json:"version"`              // Migration version (dosya adından: 001, 002...)
	Name      string     `json:"name"`                 // Migration adı ("create_audit_logs_table")
	SQL       string     `json:"-"`                    // SQL içeriği (JSON'da gösterilmez)
	Applied   bool       `json:"applied"`              // Uygulandı mı?
	AppliedAt *time.Time `json:"appliedAt,omitempty"`  // Ne zaman uygulandı?
}

// Status migration sisteminin genel durumunu gösterir
type Status struct {
	CurrentVersion int64       `json:"currentVersion"` // Şu anki version
	Migrations     []Migration `json:"migrations"`     // Tüm migration'lar (version sıralı)
	TotalCount     int         `json:"totalCount"`     // Toplam migration sayısı
	AppliedCount   int         `json:"appliedCount"`   // Uygulanan migration sayısı
	PendingCount   int         `json:"pendingCount"`   // Bekleyen migration sayısı
}

// Config migration runner ayarları
type Config struct {
	MigrationsPath string // SQL dosyalarının bulunduğu klasör
	TableName      string // Tracking tablosu adı
}

// DefaultConfig varsayılan migration ayarları
func DefaultConfig() *Config {
	return &Config{
		MigrationsPath: "./migrations",
		TableName:      "schema_migrations",
	}
}
