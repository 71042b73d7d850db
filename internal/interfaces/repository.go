// internal/interfaces/repository.go
package interfaces

import (
	"time"

	"github.com/emlakcrm/go-audit-api/internal/models"
)

// AuditRepositoryInterface audit log database işlemleri için interface
type AuditRepositoryInterface interface {
	// Create yeni audit kaydı oluşturur; id ve created_at atanmış kaydı döner
	Create(entry *models.AuditLog) (*models.AuditLog, error)

	// GetByID ID ile audit kaydı getirir.
	// Not: kaynak sistemle uyumlu olarak company filtresi uygulanmaz;
	// tenant kontrolü handler katmanında yapılır.
	GetByID(id string) (*models.AuditLog, error)

	// List filter kriterlerine uyan kayıtları getirir (created_at DESC)
	List(filter *models.AuditLogFilter) ([]*models.AuditLog, error)

	// GetStats şirketin tüm kayıtları üzerinden istatistik hesaplar
	GetStats(companyID string) (*models.SecurityStats, error)

	// MarkExported tarih aralığındaki tüm kayıtları exported olarak işaretler.
	// Predicate (company + aralık) yeniden uygulanır, ID listesi kullanılmaz.
	MarkExported(companyID string, start, end, exportedAt time.Time) error

	// DeleteExpired cutoff'tan eski, sensitive olmayan kayıtları siler
	// ve silinen satır sayısını döner
	DeleteExpired(companyID string, cutoff time.Time) (int64, error)
}

// UserRepositoryInterface kullanıcı database işlemleri için interface
type UserRepositoryInterface interface {
	// Create yeni kullanıcı oluşturur
	Create(user *models.CreateUserRequest) (*models.User, error)

	// GetByEmail email ile kullanıcı bulur
	GetByEmail(email string) (*models.User, error)

	// GetByID ID ile kullanıcı bulur
	GetByID(id string) (*models.User, error)
}
