package services

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/emlakcrm/go-audit-api/internal/apperrors"
	"github.com/emlakcrm/go-audit-api/internal/interfaces"
	"github.com/emlakcrm/go-audit-api/internal/models"
)

// DefaultRetentionDays config'de değer yoksa kullanılan saklama süresi
const DefaultRetentionDays = 365

// RetentionService export ve cleanup işlemleri.
// Logger constructor'dan inject edilir; global logger state'i kullanılmaz.
// Varsayılan saklama süresi de config'den gelir (AUDIT_RETENTION_DAYS).
type RetentionService struct {
	auditRepo   interfaces.AuditRepositoryInterface
	defaultDays int
	logger      zerolog.Logger
}

// NewRetentionService yeni service oluşturur.
// defaultDays <= 0 verilirse DefaultRetentionDays kullanılır.
func NewRetentionService(auditRepo interfaces.AuditRepositoryInterface, defaultDays int, logger zerolog.Logger) *RetentionService {
	if defaultDays <= 0 {
		defaultDays = DefaultRetentionDays
	}
	return &RetentionService{
		auditRepo:   auditRepo,
		defaultDays: defaultDays,
		logger:      logger.With().Str("component", "retention_service").Logger(),
	}
}

// ExportRange aralıktaki kayıtları döner ve aynı aralığı exported işaretler.
// Okuma ile güncelleme tek transaction'da değildir; güncelleme dönen ID'lere
// değil, okumayla aynı predicate'e (company + tarih aralığı) uygulanır.
// İki adım arasında oluşan bir kayıt ne dönen listede ne işaretlenenlerde
// garanti edilir: at-least-consistent, linearizable değil.
func (s *RetentionService) ExportRange(companyID string, start, end time.Time) ([]*models.AuditLog, error) {
	if companyID == "" {
		return nil, apperrors.NewValidation("company_id", "company_id zorunludur", nil)
	}
	if end.Before(start) {
		return nil, apperrors.NewValidation("end_date", "bitiş tarihi başlangıçtan önce olamaz", end)
	}

	records, err := s.auditRepo.List(&models.AuditLogFilter{
		CompanyID: companyID,
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return nil, err
	}

	exportedAt := time.Now().UTC()
	if err := s.auditRepo.MarkExported(companyID, start, end, exportedAt); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("company_id", companyID).
		Time("start", start).
		Time("end", end).
		Int("count", len(records)).
		Msg("Audit kayıtları export edildi")

	return records, nil
}

// Cleanup daysToKeep'ten eski, sensitive olmayan kayıtları siler.
// daysToKeep <= 0 verilirse config'den gelen varsayılan saklama süresi
// uygulanır. Sensitive kayıtlar yaşına bakılmaksızın korunur; bu alt
// sistemin tek yıkıcı operasyonudur.
func (s *RetentionService) Cleanup(companyID string, daysToKeep int) (int64, error) {
	if companyID == "" {
		return 0, apperrors.NewValidation("company_id", "company_id zorunludur", nil)
	}
	if daysToKeep <= 0 {
		daysToKeep = s.defaultDays
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -daysToKeep)

	deleted, err := s.auditRepo.DeleteExpired(companyID, cutoff)
	if err != nil {
		return 0, err
	}

	s.logger.Info().
		Str("company_id", companyID).
		Int("days_to_keep", daysToKeep).
		Time("cutoff", cutoff).
		Int64("deleted", deleted).
		Msg("Audit retention cleanup tamamlandı")

	return deleted, nil
}
