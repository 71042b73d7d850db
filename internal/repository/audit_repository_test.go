package repository

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/emlakcrm/go-audit-api/internal/apperrors"
	"github.com/emlakcrm/go-audit-api/internal/models"
)

// auditColumnNames sqlmock row'ları için kolon listesi (scanAuditLog sırası)
var auditColumnNames = []string{
	"id", "action", "resource", "resource_id", "status", "severity", "description",
	"old_values", "new_values", "metadata", "ip_address", "user_agent", "session_id",
	"request_data", "response_data", "response_time_ms", "error_message", "stack_trace",
	"affected_fields", "is_sensitive", "is_exported", "exported_at", "company_id", "user_id", "created_at",
}

// newAuditRow tüm kolonları dolduran minimal bir satır üretir.
// jsonb ve diğer opsiyonel kolonlar gerçek veride olduğu gibi NULL'dır.
func newAuditRow(id, companyID string, createdAt time.Time) []driver.Value {
	return []driver.Value{
		id, "create", "contacts", nil, "success", "low", nil,
		nil, nil, nil, nil, nil, nil,
		nil, nil, nil, nil, nil,
		nil, false, false, nil, companyID, nil, createdAt,
	}
}

func addAuditRow(rows *sqlmock.Rows, values []driver.Value) {
	rows.AddRow(values...)
}

// TestAuditRepository_Create_Success, INSERT'in created_at dönüşünü test eder.
func TestAuditRepository_Create_Success(t *testing.T) {
	// Arrange
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewAuditRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	entry := &models.AuditLog{
		Action:    models.ActionCreate,
		Resource:  "contacts",
		Status:    models.StatusSuccess,
		Severity:  models.SeverityLow,
		CompanyID: "c-1",
	}

	// Act
	created, err := repo.Create(entry)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.NotEmpty(t, created.ID) // ID repository'de üretilir
	assert.Equal(t, now, created.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAuditRepository_Create_DBError, yazma hatasının PersistenceError'a sarılmasını test eder.
func TestAuditRepository_Create_DBError(t *testing.T) {
	// Arrange
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewAuditRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WillReturnError(errors.New("bağlantı koptu"))

	// Act
	created, err := repo.Create(&models.AuditLog{
		Action:    models.ActionCreate,
		Resource:  "contacts",
		CompanyID: "c-1",
	})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, created)

	var persErr *apperrors.PersistenceError
	assert.ErrorAs(t, err, &persErr)
}

// TestAuditRepository_GetByID_NotFound, olmayan kaydın NotFound dönmesini test eder.
func TestAuditRepository_GetByID_NotFound(t *testing.T) {
	// Arrange
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewAuditRepository(db)

	mock.ExpectQuery("(?s)SELECT (.+) FROM audit_logs WHERE id = ").
		WithArgs("yok").
		WillReturnRows(sqlmock.NewRows(auditColumnNames))

	// Act
	entry, err := repo.GetByID("yok")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, entry)

	var nfErr *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

// TestAuditRepository_List_CompanyScope, List'in her zaman company_id ile scope'lanmasını test eder.
func TestAuditRepository_List_CompanyScope(t *testing.T) {
	// Arrange
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewAuditRepository(db)

	rows := sqlmock.NewRows(auditColumnNames)
	addAuditRow(rows, newAuditRow("a-1", "c-1", time.Now()))
	addAuditRow(rows, newAuditRow("a-2", "c-1", time.Now().Add(-time.Hour)))

	mock.ExpectQuery("(?s)SELECT (.+) FROM audit_logs WHERE company_id = \\$1 ORDER BY created_at DESC").
		WithArgs("c-1").
		WillReturnRows(rows)

	// Act
	entries, err := repo.List(&models.AuditLogFilter{CompanyID: "c-1"})

	// Assert
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "a-1", entries[0].ID)
	// NULL jsonb kolonları nil olarak döner, scan hatası üretmez
	assert.Nil(t, entries[0].OldValues)
	assert.Nil(t, entries[0].Metadata)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAuditRepository_GetByID_NullableColumns, dolu ve NULL jsonb kolonlarının birlikte okunmasını test eder.
func TestAuditRepository_GetByID_NullableColumns(t *testing.T) {
	// Arrange
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewAuditRepository(db)

	values := newAuditRow("a-1", "c-1", time.Now())
	values[9] = []byte(`{"kaynak":"crm"}`) // metadata dolu, diğer jsonb'ler NULL

	rows := sqlmock.NewRows(auditColumnNames)
	addAuditRow(rows, values)

	mock.ExpectQuery("(?s)SELECT (.+) FROM audit_logs WHERE id = ").
		WithArgs("a-1").
		WillReturnRows(rows)

	// Act
	entry, err := repo.GetByID("a-1")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, json.RawMessage(`{"kaynak":"crm"}`), entry.Metadata)
	assert.Nil(t, entry.OldValues)
	assert.Nil(t, entry.NewValues)
	assert.Nil(t, entry.RequestData)
	assert.Nil(t, entry.ResponseData)
}

// TestAuditRepository_List_MissingCompanyID, tenant scope'suz List'in reddedilmesini test eder.
func TestAuditRepository_List_MissingCompanyID(t *testing.T) {
	// Arrange
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewAuditRepository(db)

	// Act
	entries, err := repo.List(&models.AuditLogFilter{})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, entries)

	var valErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

// TestAuditRepository_List_CombinedFilters, birden çok filtrenin AND ile birleşmesini test eder.
func TestAuditRepository_List_CombinedFilters(t *testing.T) {
	// Arrange
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewAuditRepository(db)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC)

	mock.ExpectQuery("(?s)SELECT (.+) FROM audit_logs WHERE company_id = \\$1 AND action = \\$2 AND created_at >= \\$3 AND created_at <= \\$4 ORDER BY created_at DESC LIMIT \\$5").
		WithArgs("c-1", models.ActionDelete, start, end, 10).
		WillReturnRows(sqlmock.NewRows(auditColumnNames))

	// Act
	entries, err := repo.List(&models.AuditLogFilter{
		CompanyID: "c-1",
		Action:    models.ActionDelete,
		StartDate: &start,
		EndDate:   &end,
		Limit:     10,
	})

	// Assert
	assert.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAuditRepository_List_SearchUsesSinglePlaceholder, aramanın üç kolonda aynı parametreyi kullanmasını test eder.
func TestAuditRepository_List_SearchUsesSinglePlaceholder(t *testing.T) {
	// Arrange
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewAuditRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("(description ILIKE $2 OR resource ILIKE $2 OR action ILIKE $2)")).
		WithArgs("c-1", "%login%").
		WillReturnRows(sqlmock.NewRows(auditColumnNames))

	// Act
	entries, err := repo.List(&models.AuditLogFilter{CompanyID: "c-1", Search: "login"})

	// Assert
	assert.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAuditRepository_List_SearchEscapesWildcards, % ve _ karakterlerinin literal aranmasını test eder.
func TestAuditRepository_List_SearchEscapesWildcards(t *testing.T) {
	// Arrange
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewAuditRepository(db)

	mock.ExpectQuery("(?s)SELECT (.+) FROM audit_logs").
		WithArgs("c-1", `%discount\_\%50%`).
		WillReturnRows(sqlmock.NewRows(auditColumnNames))

	// Act
	entries, err := repo.List(&models.AuditLogFilter{CompanyID: "c-1", Search: "discount_%50"})

	// Assert
	assert.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAuditRepository_GetStats_Success, toplam ve kırılım sorgularını test eder.
func TestAuditRepository_GetStats_Success(t *testing.T) {
	// Arrange
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewAuditRepository(db)

	mock.ExpectQuery("COUNT\\(\\*\\) AS total").
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"total", "failed_actions", "high_severity_logs", "sensitive_logs", "average_response_time",
		}).AddRow(120, 7, 4, 2, 35.5))

	mock.ExpectQuery("SELECT action, COUNT\\(\\*\\) FROM audit_logs").
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows([]string{"action", "count"}).
			AddRow("create", 80).AddRow("login_failed", 7))

	mock.ExpectQuery("SELECT status, COUNT\\(\\*\\) FROM audit_logs").
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("success", 113).AddRow("failed", 7))

	mock.ExpectQuery("SELECT severity, COUNT\\(\\*\\) FROM audit_logs").
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows([]string{"severity", "count"}).
			AddRow("low", 110).AddRow("high", 4))

	// Act
	stats, err := repo.GetStats("c-1")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 120, stats.Total)
	assert.Equal(t, 7, stats.FailedActions)
	assert.Equal(t, 4, stats.HighSeverityLogs)
	assert.Equal(t, 2, stats.SensitiveLogs)
	assert.InDelta(t, 35.5, stats.AverageResponseTime, 0.001)

	// Kırılımlarda olmayan enum değerleri 0 ile doldurulur
	assert.Equal(t, 80, stats.ByAction[models.ActionCreate])
	assert.Equal(t, 0, stats.ByAction[models.ActionBackup])
	assert.Equal(t, 7, stats.ByStatus[models.StatusFailed])
	assert.Equal(t, 0, stats.ByStatus[models.StatusPending])
	assert.Equal(t, 4, stats.BySeverity[models.SeverityHigh])
	assert.Equal(t, 0, stats.BySeverity[models.SeverityCritical])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAuditRepository_MarkExported_Predicate, export işaretlemenin predicate ile çalışmasını test eder.
func TestAuditRepository_MarkExported_Predicate(t *testing.T) {
	// Arrange
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewAuditRepository(db)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	exportedAt := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE audit_logs")).
		WithArgs(exportedAt, "c-1", start, end).
		WillReturnResult(sqlmock.NewResult(0, 5))

	// Act
	err = repo.MarkExported("c-1", start, end, exportedAt)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAuditRepository_DeleteExpired_SkipsSensitive, silme sorgusunun sensitive kayıtları dışlamasını test eder.
func TestAuditRepository_DeleteExpired_SkipsSensitive(t *testing.T) {
	// Arrange
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewAuditRepository(db)

	cutoff := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("is_sensitive = FALSE")).
		WithArgs("c-1", cutoff).
		WillReturnResult(sqlmock.NewResult(0, 42))

	// Act
	deleted, err := repo.DeleteExpired("c-1", cutoff)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(42), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
