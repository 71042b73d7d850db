package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/emlakcrm/go-audit-api/internal/apperrors"
	"github.com/emlakcrm/go-audit-api/internal/interfaces"
	"github.com/emlakcrm/go-audit-api/internal/models"
)

// auditColumns SELECT listesi; Scan sırası scanAuditLog ile birebir aynıdır
const auditColumns = `id, action, resource, resource_id, status, severity, description,
	old_values, new_values, metadata, ip_address, user_agent, session_id,
	request_data, response_data, response_time_ms, error_message, stack_trace,
	affected_fields, is_sensitive, is_exported, exported_at, company_id, user_id, created_at`

// AuditRepository, AuditRepositoryInterface'in somut halidir.
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository yeni bir repository oluşturur ve arayüz olarak döndürür.
func NewAuditRepository(db *sql.DB) interfaces.AuditRepositoryInterface {
	return &AuditRepository{db: db}
}

// Create yeni audit kaydı oluşturur.
// ID burada üretilir, created_at veritabanında atanır; kayıt ya tamamen
// yazılır ya da hata döner, kısmi kayıt oluşmaz.
func (r *AuditRepository) Create(entry *models.AuditLog) (*models.AuditLog, error) {
	query := `
		INSERT INTO audit_logs (
			id, action, resource, resource_id, status, severity, description,
			old_values, new_values, metadata, ip_address, user_agent, session_id,
			request_data, response_data, response_time_ms, error_message, stack_trace,
			affected_fields, is_sensitive, company_id, user_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING created_at
	`

	entry.ID = uuid.New().String()

	err := r.db.QueryRow(
		query,
		entry.ID,
		entry.Action,
		entry.Resource,
		entry.ResourceID,
		entry.Status,
		entry.Severity,
		entry.Description,
		entry.OldValues,
		entry.NewValues,
		entry.Metadata,
		entry.IPAddress,
		entry.UserAgent,
		entry.SessionID,
		entry.RequestData,
		entry.ResponseData,
		entry.ResponseTimeMs,
		entry.ErrorMessage,
		entry.StackTrace,
		pq.Array([]string(entry.AffectedFields)),
		entry.IsSensitive,
		entry.CompanyID,
		entry.UserID,
	).Scan(&entry.CreatedAt)

	if err != nil {
		return nil, apperrors.NewPersistence("audit kaydı oluşturulamadı", err)
	}

	return entry, nil
}

// GetByID ID ile audit kaydı getirir.
// Kaynak sistemdeki davranışla uyumlu olarak company filtresi yoktur;
// tenant kontrolü handler katmanında yapılır.
func (r *AuditRepository) GetByID(id string) (*models.AuditLog, error) {
	query := fmt.Sprintf(`SELECT %s FROM audit_logs WHERE id = $1`, auditColumns)

	entry, err := scanAuditLog(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("audit kaydı bulunamadı")
		}
		return nil, apperrors.NewPersistence("audit kaydı arama hatası", err)
	}

	return entry, nil
}

// List filter kriterlerine uyan kayıtları getirir (created_at DESC).
// Filter struct'ındaki her alan tek bir WHERE koşuluna çevrilir.
func (r *AuditRepository) List(filter *models.AuditLogFilter) ([]*models.AuditLog, error) {
	if filter == nil || filter.CompanyID == "" {
		return nil, apperrors.NewValidation("company_id", "company_id filtresi zorunludur", nil)
	}

	var conditions []string
	var args []interface{}

	add := func(condition string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	// Her sorgu company ile scope'lanır, istisna yok
	add("company_id = $%d", filter.CompanyID)

	if filter.Action != "" {
		add("action = $%d", filter.Action)
	}
	if len(filter.Actions) > 0 {
		add("action = ANY($%d)", pq.Array(actionsToStrings(filter.Actions)))
	}
	if filter.Resource != "" {
		add("resource = $%d", filter.Resource)
	}
	if filter.UserID != "" {
		add("user_id = $%d", filter.UserID)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.Severity != "" {
		add("severity = $%d", filter.Severity)
	}
	if len(filter.Severities) > 0 {
		add("severity = ANY($%d)", pq.Array(severitiesToStrings(filter.Severities)))
	}
	if filter.StartDate != nil {
		add("created_at >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("created_at <= $%d", *filter.EndDate)
	}
	if filter.Search != "" {
		// Arama terimi literal substring'dir; % ve _ wildcard olarak yorumlanmasın
		args = append(args, "%"+escapeLikePattern(filter.Search)+"%")
		idx := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(description ILIKE $%d OR resource ILIKE $%d OR action ILIKE $%d)", idx, idx, idx))
	}

	query := fmt.Sprintf(
		"SELECT %s FROM audit_logs WHERE %s ORDER BY created_at DESC",
		auditColumns, strings.Join(conditions, " AND "),
	)

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, apperrors.NewPersistence("audit listesi alınamadı", err)
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		entry, err := scanAuditLog(rows)
		if err != nil {
			return nil, apperrors.NewPersistence("audit kaydı scan hatası", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistence("audit listesi okunamadı", err)
	}

	return entries, nil
}

// GetStats şirketin tüm kayıtları üzerinden istatistik hesaplar.
// Toplamlar PostgreSQL FILTER ile tek sorguda, enum kırılımları
// GROUP BY sorgularıyla alınır; olmayan enum değerleri 0 ile doldurulur.
func (r *AuditRepository) GetStats(companyID string) (*models.SecurityStats, error) {
	stats := &models.SecurityStats{
		ByAction:   make(map[models.AuditAction]int),
		ByStatus:   make(map[models.AuditStatus]int),
		BySeverity: make(map[models.AuditSeverity]int),
	}

	// Tüm enum değerleri her zaman sonuçta temsil edilir
	for _, action := range models.AllActions() {
		stats.ByAction[action] = 0
	}
	for _, status := range models.AllStatuses() {
		stats.ByStatus[status] = 0
	}
	for _, severity := range models.AllSeverities() {
		stats.BySeverity[severity] = 0
	}

	totalsQuery := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed_actions,
			COUNT(*) FILTER (WHERE severity IN ('high', 'critical')) AS high_severity_logs,
			COUNT(*) FILTER (WHERE is_sensitive) AS sensitive_logs,
			-- AVG sadece dolu response_time_ms değerleri üzerinden; hiç yoksa 0
			COALESCE(AVG(response_time_ms), 0)::float8 AS average_response_time
		FROM audit_logs
		WHERE company_id = $1
	`

	err := r.db.QueryRow(totalsQuery, companyID).Scan(
		&stats.Total,
		&stats.FailedActions,
		&stats.HighSeverityLogs,
		&stats.SensitiveLogs,
		&stats.AverageResponseTime,
	)
	if err != nil {
		return nil, apperrors.NewPersistence("audit istatistikleri alınamadı", err)
	}

	if err := r.fillGroupCounts(companyID, "action", func(key string, count int) {
		stats.ByAction[models.AuditAction(key)] = count
	}); err != nil {
		return nil, err
	}
	if err := r.fillGroupCounts(companyID, "status", func(key string, count int) {
		stats.ByStatus[models.AuditStatus(key)] = count
	}); err != nil {
		return nil, err
	}
	if err := r.fillGroupCounts(companyID, "severity", func(key string, count int) {
		stats.BySeverity[models.AuditSeverity(key)] = count
	}); err != nil {
		return nil, err
	}

	return stats, nil
}

// fillGroupCounts tek bir kolon üzerinden GROUP BY sayımı yapar
func (r *AuditRepository) fillGroupCounts(companyID, column string, assign func(key string, count int)) error {
	// column sabit çağrı noktalarından gelir, kullanıcı girdisi değildir
	query := fmt.Sprintf(
		"SELECT %s, COUNT(*) FROM audit_logs WHERE company_id = $1 GROUP BY %s",
		column, column,
	)

	rows, err := r.db.Query(query, companyID)
	if err != nil {
		return apperrors.NewPersistence(fmt.Sprintf("%s kırılımı alınamadı", column), err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return apperrors.NewPersistence(fmt.Sprintf("%s kırılımı scan hatası", column), err)
		}
		assign(key, count)
	}

	return rows.Err()
}

// MarkExported tarih aralığındaki tüm kayıtları exported olarak işaretler.
// Okuma ile aynı predicate (company + created_at aralığı) kullanılır;
// dönen ID listesi üzerinden güncelleme yapılmaz.
func (r *AuditRepository) MarkExported(companyID string, start, end, exportedAt time.Time) error {
	query := `
		UPDATE audit_logs
		SET is_exported = TRUE, exported_at = $1
		WHERE company_id = $2 AND created_at >= $3 AND created_at <= $4
	`

	if _, err := r.db.Exec(query, exportedAt, companyID, start, end); err != nil {
		return apperrors.NewPersistence("export işaretleme başarısız", err)
	}

	return nil
}

// DeleteExpired cutoff'tan eski, sensitive olmayan kayıtları siler.
// is_sensitive = TRUE kayıtlar yaşına bakılmaksızın asla silinmez.
func (r *AuditRepository) DeleteExpired(companyID string, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM audit_logs
		WHERE company_id = $1 AND created_at < $2 AND is_sensitive = FALSE
	`

	result, err := r.db.Exec(query, companyID, cutoff)
	if err != nil {
		return 0, apperrors.NewPersistence("eski kayıtlar silinemedi", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewPersistence("silme sonucu kontrol edilemedi", err)
	}

	return deleted, nil
}

// rowScanner hem *sql.Row hem *sql.Rows için ortak Scan arayüzü
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAuditLog tek bir satırı AuditLog'a çevirir (auditColumns sırasıyla).
// jsonb kolonları çoğu kayıtta NULL'dır; json.RawMessage'a direkt Scan
// NULL'da patlar, o yüzden []byte ara değişkenler üzerinden okunur
// (NULL -> nil slice -> nil RawMessage).
func scanAuditLog(row rowScanner) (*models.AuditLog, error) {
	var entry models.AuditLog
	var oldValues, newValues, metadata, requestData, responseData []byte

	err := row.Scan(
		&entry.ID,
		&entry.Action,
		&entry.Resource,
		&entry.ResourceID,
		&entry.Status,
		&entry.Severity,
		&entry.Description,
		&oldValues,
		&newValues,
		&metadata,
		&entry.IPAddress,
		&entry.UserAgent,
		&entry.SessionID,
		&requestData,
		&responseData,
		&entry.ResponseTimeMs,
		&entry.ErrorMessage,
		&entry.StackTrace,
		&entry.AffectedFields,
		&entry.IsSensitive,
		&entry.IsExported,
		&entry.ExportedAt,
		&entry.CompanyID,
		&entry.UserID,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.OldValues = json.RawMessage(oldValues)
	entry.NewValues = json.RawMessage(newValues)
	entry.Metadata = json.RawMessage(metadata)
	entry.RequestData = json.RawMessage(requestData)
	entry.ResponseData = json.RawMessage(responseData)

	return &entry, nil
}

// escapeLikePattern LIKE/ILIKE özel karakterlerini escape eder
// (Postgres default escape karakteri backslash'tir)
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// actionsToStrings pq.Array için []AuditAction -> []string dönüşümü
func actionsToStrings(actions []models.AuditAction) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = string(a)
	}
	return out
}

// severitiesToStrings pq.Array için []AuditSeverity -> []string dönüşümü
func severitiesToStrings(severities []models.AuditSeverity) []string {
	out := make([]string, len(severities))
	for i, s := range severities {
		out[i] = string(s)
	}
	return out
}
