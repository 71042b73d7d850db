package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// AuditAction audit kaydının aksiyon tipini temsil eder (kapalı küme)
type AuditAction string

const (
	ActionCreate           AuditAction = "create"
	ActionRead             AuditAction = "read"
	ActionUpdate           AuditAction = "update"
	ActionDelete           AuditAction = "delete"
	ActionLogin            AuditAction = "login"
	ActionLoginFailed      AuditAction = "login_failed"
	ActionLogout           AuditAction = "logout"
	ActionPasswordChange   AuditAction = "password_change"
	ActionRoleChange       AuditAction = "role_change"
	ActionPermissionChange AuditAction = "permission_change"
	ActionDataExport       AuditAction = "data_export"
	ActionDataImport       AuditAction = "data_import"
	ActionSystemConfig     AuditAction = "system_config"
	ActionBackup           AuditAction = "backup"
	ActionRestore          AuditAction = "restore"
	ActionOther            AuditAction = "other"
)

// AllActions tüm geçerli aksiyon değerlerini sabit sırayla döner
func AllActions() []AuditAction {
	return []AuditAction{
		ActionCreate, ActionRead, ActionUpdate, ActionDelete,
		ActionLogin, ActionLoginFailed, ActionLogout,
		ActionPasswordChange, ActionRoleChange, ActionPermissionChange,
		ActionDataExport, ActionDataImport, ActionSystemConfig,
		ActionBackup, ActionRestore, ActionOther,
	}
}

// IsValid aksiyonun kapalı kümede olup olmadığını kontrol eder
func (a AuditAction) IsValid() bool {
	for _, action := range AllActions() {
		if a == action {
			return true
		}
	}
	return false
}

// AuditStatus audit kaydının sonucunu temsil eder
type AuditStatus string

const (
	StatusSuccess AuditStatus = "success"
	StatusFailed  AuditStatus = "failed"
	StatusPending AuditStatus = "pending"
)

// AllStatuses tüm geçerli status değerlerini döner
func AllStatuses() []AuditStatus {
	return []AuditStatus{StatusSuccess, StatusFailed, StatusPending}
}

// IsValid status değerini doğrular
func (s AuditStatus) IsValid() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusPending
}

// AuditSeverity kaydın aciliyet derecesini temsil eder (başarı durumundan bağımsız)
type AuditSeverity string

const (
	SeverityLow      AuditSeverity = "low"
	SeverityMedium   AuditSeverity = "medium"
	SeverityHigh     AuditSeverity = "high"
	SeverityCritical AuditSeverity = "critical"
)

// AllSeverities tüm geçerli severity değerlerini döner
func AllSeverities() []AuditSeverity {
	return []AuditSeverity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// IsValid severity değerini doğrular
func (s AuditSeverity) IsValid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh || s == SeverityCritical
}

// AuditLog audit log modelini temsil eder.
// Kayıtlar append-only'dir: oluşturulduktan sonra sadece export alanları
// (is_exported, exported_at) güncellenir; created_at asla değişmez.
// is_sensitive = true olan kayıtlar yaşına bakılmaksızın cleanup'tan muaftır.
type AuditLog struct {
	ID             string          `json:"id" db:"id"`
	Action         AuditAction     `json:"action" db:"action"`
	Resource       string          `json:"resource" db:"resource"`
	ResourceID     *string         `json:"resource_id,omitempty" db:"resource_id"`
	Status         AuditStatus     `json:"status" db:"status"`
	Severity       AuditSeverity   `json:"severity" db:"severity"`
	Description    *string         `json:"description,omitempty" db:"description"`
	OldValues      json.RawMessage `json:"old_values,omitempty" db:"old_values"`
	NewValues      json.RawMessage `json:"new_values,omitempty" db:"new_values"`
	Metadata       json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	IPAddress      *string         `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent      *string         `json:"user_agent,omitempty" db:"user_agent"`
	SessionID      *string         `json:"session_id,omitempty" db:"session_id"`
	RequestData    json.RawMessage `json:"request_data,omitempty" db:"request_data"`
	ResponseData   json.RawMessage `json:"response_data,omitempty" db:"response_data"`
	ResponseTimeMs *int            `json:"response_time_ms,omitempty" db:"response_time_ms"`
	ErrorMessage   *string         `json:"error_message,omitempty" db:"error_message"`
	StackTrace     *string         `json:"stack_trace,omitempty" db:"stack_trace"`
	AffectedFields pq.StringArray  `json:"affected_fields,omitempty" db:"affected_fields"`
	IsSensitive    bool            `json:"is_sensitive" db:"is_sensitive"`
	IsExported     bool            `json:"is_exported" db:"is_exported"`
	ExportedAt     *time.Time      `json:"exported_at,omitempty" db:"exported_at"`
	CompanyID      string          `json:"company_id" db:"company_id"`
	UserID         *string         `json:"user_id,omitempty" db:"user_id"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// CreateAuditLogRequest yeni audit kaydı oluşturma isteği.
// CompanyID, UserID, IPAddress ve UserAgent handler tarafından
// authenticated session'dan doldurulur, client'tan alınmaz.
type CreateAuditLogRequest struct {
	Action         AuditAction     `json:"action"`
	Resource       string          `json:"resource"`
	ResourceID     *string         `json:"resource_id"`
	Status         AuditStatus     `json:"status"`
	Severity       AuditSeverity   `json:"severity"`
	Description    *string         `json:"description"`
	OldValues      json.RawMessage `json:"old_values"`
	NewValues      json.RawMessage `json:"new_values"`
	Metadata       json.RawMessage `json:"metadata"`
	SessionID      *string         `json:"session_id"`
	RequestData    json.RawMessage `json:"request_data"`
	ResponseData   json.RawMessage `json:"response_data"`
	ResponseTimeMs *int            `json:"response_time_ms"`
	ErrorMessage   *string         `json:"error_message"`
	StackTrace     *string         `json:"stack_trace"`
	AffectedFields []string        `json:"affected_fields"`
	IsSensitive    bool            `json:"is_sensitive"`
	CompanyID      string          `json:"-"`
	UserID         *string         `json:"-"`
	IPAddress      *string         `json:"-"`
	UserAgent      *string         `json:"-"`
}

// AuditLogFilter sorgu kriterlerini isimlendiren value object.
// Repository bu struct'ı tek bir SQL sorgusuna çevirir; sorgular dinamik
// method chaining ile kurulmaz. CompanyID her zaman zorunludur.
type AuditLogFilter struct {
	CompanyID  string
	Action     AuditAction
	Actions    []AuditAction // action IN (...) sorguları için (örn. data access)
	Resource   string
	UserID     string
	Status     AuditStatus
	Severity   AuditSeverity
	Severities []AuditSeverity // severity IN (...) sorguları için (örn. alerts)
	StartDate  *time.Time      // created_at >= StartDate (dahil)
	EndDate    *time.Time      // created_at <= EndDate (dahil)
	Search     string          // description/resource/action üzerinde case-insensitive substring
	Limit      int
	Offset     int
}

// SecurityStats bir şirketin audit kayıtları üzerindeki toplam istatistikler.
// ByAction her zaman 16 aksiyon değerinin tamamını içerir (olmayan için 0).
type SecurityStats struct {
	Total               int                   `json:"total"`
	ByAction            map[AuditAction]int   `json:"by_action"`
	ByStatus            map[AuditStatus]int   `json:"by_status"`
	BySeverity          map[AuditSeverity]int `json:"by_severity"`
	FailedActions       int                   `json:"failed_actions"`
	HighSeverityLogs    int                   `json:"high_severity_logs"`
	SensitiveLogs       int                   `json:"sensitive_logs"`
	AverageResponseTime float64               `json:"average_response_time"`
}
