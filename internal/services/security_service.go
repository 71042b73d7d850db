package services

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/emlakcrm/go-audit-api/internal/apperrors"
	"github.com/emlakcrm/go-audit-api/internal/interfaces"
	"github.com/emlakcrm/go-audit-api/internal/models"
)

// Limit üst sınırları ve default'ları
const (
	defaultAlertsLimit      = 10
	defaultFailedLoginLimit = 20
	defaultDataAccessLimit  = 50
	maxListLimit            = 1000
)

// SecurityService audit log business logic'i.
// Logger constructor'dan inject edilir; global logger state'i kullanılmaz.
type SecurityService struct {
	auditRepo interfaces.AuditRepositoryInterface
	logger    zerolog.Logger
}

// NewSecurityService yeni service oluşturur
func NewSecurityService(auditRepo interfaces.AuditRepositoryInterface, logger zerolog.Logger) *SecurityService {
	return &SecurityService{
		auditRepo: auditRepo,
		logger:    logger.With().Str("component", "security_service").Logger(),
	}
}

// Record tek bir audit kaydı yazar.
// Enum default'ları burada, sınırda uygulanır: status boşsa success,
// severity boşsa low. Geçersiz enum değerleri sessizce düzeltilmez,
// ValidationError ile reddedilir. Yazma hatası retry edilmeden caller'a taşınır.
func (s *SecurityService) Record(req *models.CreateAuditLogRequest) (*models.AuditLog, error) {
	if req == nil {
		return nil, apperrors.NewValidation("body", "audit kaydı isteği boş olamaz", nil)
	}
	if req.CompanyID == "" {
		return nil, apperrors.NewValidation("company_id", "company_id zorunludur", nil)
	}
	if req.Resource == "" {
		return nil, apperrors.NewValidation("resource", "resource zorunludur", nil)
	}
	if req.Action == "" {
		return nil, apperrors.NewValidation("action", "action zorunludur", nil)
	}
	if !req.Action.IsValid() {
		return nil, apperrors.NewValidation("action", "geçersiz action değeri", req.Action)
	}

	status := req.Status
	if status == "" {
		status = models.StatusSuccess
	} else if !status.IsValid() {
		return nil, apperrors.NewValidation("status", "geçersiz status değeri", req.Status)
	}

	severity := req.Severity
	if severity == "" {
		severity = models.SeverityLow
	} else if !severity.IsValid() {
		return nil, apperrors.NewValidation("severity", "geçersiz severity değeri", req.Severity)
	}

	entry := &models.AuditLog{
		Action:         req.Action,
		Resource:       req.Resource,
		ResourceID:     req.ResourceID,
		Status:         status,
		Severity:       severity,
		Description:    req.Description,
		OldValues:      req.OldValues,
		NewValues:      req.NewValues,
		Metadata:       req.Metadata,
		IPAddress:      req.IPAddress,
		UserAgent:      req.UserAgent,
		SessionID:      req.SessionID,
		RequestData:    req.RequestData,
		ResponseData:   req.ResponseData,
		ResponseTimeMs: req.ResponseTimeMs,
		ErrorMessage:   req.ErrorMessage,
		StackTrace:     req.StackTrace,
		AffectedFields: pq.StringArray(req.AffectedFields),
		IsSensitive:    req.IsSensitive,
		CompanyID:      req.CompanyID,
		UserID:         req.UserID,
	}

	created, err := s.auditRepo.Create(entry)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("audit_id", created.ID).
		Str("company_id", created.CompanyID).
		Str("action", string(created.Action)).
		Str("resource", created.Resource).
		Str("status", string(created.Status)).
		Msg("Audit kaydı yazıldı")

	return created, nil
}

// LogEvent başarılı bir security event'i kaydeder.
// Status her zaman success'tir; severity boş verilirse medium uygulanır.
func (s *SecurityService) LogEvent(companyID string, userID *string, action models.AuditAction, resource, description string, metadata json.RawMessage, severity models.AuditSeverity) (*models.AuditLog, error) {
	if severity == "" {
		severity = models.SeverityMedium
	}

	return s.Record(&models.CreateAuditLogRequest{
		Action:      action,
		Resource:    resource,
		Status:      models.StatusSuccess,
		Severity:    severity,
		Description: &description,
		Metadata:    metadata,
		CompanyID:   companyID,
		UserID:      userID,
	})
}

// LogViolation bir ihlali kaydeder.
// Status her zaman failed'dir; severity boş verilirse high uygulanır.
// İhlal kaydının kendisi yazılamazsa bu hata, tarif ettiği asıl hatayı
// maskelememelidir; o karar call site'a aittir.
func (s *SecurityService) LogViolation(companyID string, userID *string, action models.AuditAction, resource, description, errorMessage string, metadata json.RawMessage, severity models.AuditSeverity) (*models.AuditLog, error) {
	if severity == "" {
		severity = models.SeverityHigh
	}

	return s.Record(&models.CreateAuditLogRequest{
		Action:       action,
		Resource:     resource,
		Status:       models.StatusFailed,
		Severity:     severity,
		Description:  &description,
		ErrorMessage: &errorMessage,
		Metadata:     metadata,
		CompanyID:    companyID,
		UserID:       userID,
	})
}

// FindAll şirketin tüm kayıtlarını getirir (en yeni önce)
func (s *SecurityService) FindAll(companyID string) ([]*models.AuditLog, error) {
	return s.auditRepo.List(&models.AuditLogFilter{CompanyID: companyID})
}

// GetByID ID ile tek kayıt getirir; yoksa NotFound döner
func (s *SecurityService) GetByID(id string) (*models.AuditLog, error) {
	if id == "" {
		return nil, apperrors.NewValidation("id", "id zorunludur", nil)
	}
	return s.auditRepo.GetByID(id)
}

// GetByAction aksiyona göre filtreler
func (s *SecurityService) GetByAction(companyID string, action models.AuditAction) ([]*models.AuditLog, error) {
	if !action.IsValid() {
		return nil, apperrors.NewValidation("action", "geçersiz action değeri", action)
	}
	return s.auditRepo.List(&models.AuditLogFilter{CompanyID: companyID, Action: action})
}

// GetByResource resource adına göre filtreler
func (s *SecurityService) GetByResource(companyID, resource string) ([]*models.AuditLog, error) {
	return s.auditRepo.List(&models.AuditLogFilter{CompanyID: companyID, Resource: resource})
}

// GetByUser kullanıcıya göre filtreler
func (s *SecurityService) GetByUser(companyID, userID string) ([]*models.AuditLog, error) {
	return s.auditRepo.List(&models.AuditLogFilter{CompanyID: companyID, UserID: userID})
}

// GetByStatus status'a göre filtreler
func (s *SecurityService) GetByStatus(companyID string, status models.AuditStatus) ([]*models.AuditLog, error) {
	if !status.IsValid() {
		return nil, apperrors.NewValidation("status", "geçersiz status değeri", status)
	}
	return s.auditRepo.List(&models.AuditLogFilter{CompanyID: companyID, Status: status})
}

// GetBySeverity severity'ye göre filtreler
func (s *SecurityService) GetBySeverity(companyID string, severity models.AuditSeverity) ([]*models.AuditLog, error) {
	if !severity.IsValid() {
		return nil, apperrors.NewValidation("severity", "geçersiz severity değeri", severity)
	}
	return s.auditRepo.List(&models.AuditLogFilter{CompanyID: companyID, Severity: severity})
}

// GetByDateRange [start, end] aralığındaki kayıtları getirir (iki uç dahil)
func (s *SecurityService) GetByDateRange(companyID string, start, end time.Time) ([]*models.AuditLog, error) {
	if end.Before(start) {
		return nil, apperrors.NewValidation("end_date", "bitiş tarihi başlangıçtan önce olamaz", end)
	}
	return s.auditRepo.List(&models.AuditLogFilter{
		CompanyID: companyID,
		StartDate: &start,
		EndDate:   &end,
	})
}

// Search description/resource/action üzerinde case-insensitive substring araması
func (s *SecurityService) Search(companyID, term string) ([]*models.AuditLog, error) {
	if term == "" {
		return nil, apperrors.NewValidation("q", "arama terimi zorunludur", nil)
	}
	return s.auditRepo.List(&models.AuditLogFilter{CompanyID: companyID, Search: term})
}

// GetSecurityAlerts high/critical severity kayıtları getirir, en yeni önce
func (s *SecurityService) GetSecurityAlerts(companyID string, limit int) ([]*models.AuditLog, error) {
	return s.auditRepo.List(&models.AuditLogFilter{
		CompanyID:  companyID,
		Severities: []models.AuditSeverity{models.SeverityHigh, models.SeverityCritical},
		Limit:      normalizeLimit(limit, defaultAlertsLimit),
	})
}

// GetFailedLogins başarısız giriş denemelerini getirir, en yeni önce
func (s *SecurityService) GetFailedLogins(companyID string, limit int) ([]*models.AuditLog, error) {
	return s.auditRepo.List(&models.AuditLogFilter{
		CompanyID: companyID,
		Action:    models.ActionLoginFailed,
		Limit:     normalizeLimit(limit, defaultFailedLoginLimit),
	})
}

// GetDataAccessLogs CRUD aksiyonlarını getirir; resource opsiyonel filtredir
func (s *SecurityService) GetDataAccessLogs(companyID, resource string, limit int) ([]*models.AuditLog, error) {
	return s.auditRepo.List(&models.AuditLogFilter{
		CompanyID: companyID,
		Actions: []models.AuditAction{
			models.ActionCreate, models.ActionRead, models.ActionUpdate, models.ActionDelete,
		},
		Resource: resource,
		Limit:    normalizeLimit(limit, defaultDataAccessLimit),
	})
}

// GetSecurityStats şirketin toplam istatistiklerini hesaplar
func (s *SecurityService) GetSecurityStats(companyID string) (*models.SecurityStats, error) {
	if companyID == "" {
		return nil, apperrors.NewValidation("company_id", "company_id zorunludur", nil)
	}
	return s.auditRepo.GetStats(companyID)
}

// normalizeLimit geçersiz limit değerlerine default uygular
func normalizeLimit(limit, fallback int) int {
	if limit <= 0 || limit > maxListLimit {
		return fallback
	}
	return limit
}
