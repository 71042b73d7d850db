// internal/interfaces/service.go
package interfaces

import (
	"encoding/json"
	"time"

	"github.com/emlakcrm/go-audit-api/internal/models"
)

// SecurityServiceInterface audit log business logic için interface
type SecurityServiceInterface interface {
	// Record tek bir audit kaydı yazar; enum değerlerini doğrular,
	// default'ları (status=success, severity=low) açıkça uygular
	Record(req *models.CreateAuditLogRequest) (*models.AuditLog, error)

	// LogEvent başarılı bir security event'i kaydeder (status=success,
	// severity boşsa medium)
	LogEvent(companyID string, userID *string, action models.AuditAction, resource, description string, metadata json.RawMessage, severity models.AuditSeverity) (*models.AuditLog, error)

	// LogViolation bir ihlali kaydeder (status=failed, severity boşsa high)
	LogViolation(companyID string, userID *string, action models.AuditAction, resource, description, errorMessage string, metadata json.RawMessage, severity models.AuditSeverity) (*models.AuditLog, error)

	// FindAll şirketin tüm kayıtlarını getirir (en yeni önce)
	FindAll(companyID string) ([]*models.AuditLog, error)

	// GetByID ID ile tek kayıt getirir
	GetByID(id string) (*models.AuditLog, error)

	// GetByAction aksiyona göre filtreler
	GetByAction(companyID string, action models.AuditAction) ([]*models.AuditLog, error)

	// GetByResource resource adına göre filtreler
	GetByResource(companyID, resource string) ([]*models.AuditLog, error)

	// GetByUser kullanıcıya göre filtreler
	GetByUser(companyID, userID string) ([]*models.AuditLog, error)

	// GetByStatus status'a göre filtreler
	GetByStatus(companyID string, status models.AuditStatus) ([]*models.AuditLog, error)

	// GetBySeverity severity'ye göre filtreler
	GetBySeverity(companyID string, severity models.AuditSeverity) ([]*models.AuditLog, error)

	// GetByDateRange [start, end] aralığındaki kayıtları getirir (dahil)
	GetByDateRange(companyID string, start, end time.Time) ([]*models.AuditLog, error)

	// Search description/resource/action üzerinde case-insensitive arama yapar
	Search(companyID, term string) ([]*models.AuditLog, error)

	// GetSecurityAlerts high/critical severity kayıtları getirir (limit'li)
	GetSecurityAlerts(companyID string, limit int) ([]*models.AuditLog, error)

	// GetFailedLogins başarısız giriş denemelerini getirir (limit'li)
	GetFailedLogins(companyID string, limit int) ([]*models.AuditLog, error)

	// GetDataAccessLogs CRUD aksiyonlarını getirir, opsiyonel resource filtresi ile
	GetDataAccessLogs(companyID, resource string, limit int) ([]*models.AuditLog, error)

	// GetSecurityStats şirketin toplam istatistiklerini hesaplar
	GetSecurityStats(companyID string) (*models.SecurityStats, error)
}

// RetentionServiceInterface export ve cleanup işlemleri için interface
type RetentionServiceInterface interface {
	// ExportRange aralıktaki kayıtları döner ve aynı predicate'i
	// exported olarak işaretler (read-then-bulk-update, atomik değil)
	ExportRange(companyID string, start, end time.Time) ([]*models.AuditLog, error)

	// Cleanup daysToKeep'ten eski, sensitive olmayan kayıtları siler
	// ve silinen satır sayısını döner
	Cleanup(companyID string, daysToKeep int) (int64, error)
}

// UserServiceInterface kullanıcı business logic için interface
type UserServiceInterface interface {
	// Register yeni kullanıcı kaydeder
	Register(req *models.CreateUserRequest) (*models.User, error)

	// Login kullanıcı girişi yapar ve token döner
	Login(req *models.LoginRequest, ipAddress, userAgent string) (*models.LoginResponse, error)

	// GetUserByID ID ile kullanıcı getirir
	GetUserByID(userID string) (*models.User, error)
}
