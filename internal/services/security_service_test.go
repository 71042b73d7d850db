package services

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/emlakcrm/go-audit-api/internal/apperrors"
	"github.com/emlakcrm/go-audit-api/internal/interfaces"
	"github.com/emlakcrm/go-audit-api/internal/models"
)

// MockAuditRepository, AuditRepositoryInterface için sahte (mock) bir yapıdır.
type MockAuditRepository struct {
	mock.Mock
}

var _ interfaces.AuditRepositoryInterface = (*MockAuditRepository)(nil)

func (m *MockAuditRepository) Create(entry *models.AuditLog) (*models.AuditLog, error) {
	args := m.Called(entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditLog), args.Error(1)
}

func (m *MockAuditRepository) GetByID(id string) (*models.AuditLog, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditLog), args.Error(1)
}

func (m *MockAuditRepository) List(filter *models.AuditLogFilter) ([]*models.AuditLog, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockAuditRepository) GetStats(companyID string) (*models.SecurityStats, error) {
	args := m.Called(companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SecurityStats), args.Error(1)
}

func (m *MockAuditRepository) MarkExported(companyID string, start, end, exportedAt time.Time) error {
	args := m.Called(companyID, start, end, exportedAt)
	return args.Error(0)
}

func (m *MockAuditRepository) DeleteExpired(companyID string, cutoff time.Time) (int64, error) {
	args := m.Called(companyID, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// newTestSecurityService test için sessiz logger'lı service kurar
func newTestSecurityService(repo *MockAuditRepository) *SecurityService {
	return NewSecurityService(repo, zerolog.Nop())
}

// TestSecurityService_Record_Defaults, boş status ve severity'ye default'ların uygulanmasını test eder.
func TestSecurityService_Record_Defaults(t *testing.T) {
	// Arrange
	mockRepo := new(MockAuditRepository)
	service := newTestSecurityService(mockRepo)

	req := &models.CreateAuditLogRequest{
		Action:    models.ActionCreate,
		Resource:  "contacts",
		CompanyID: "c-1",
	}

	mockRepo.On("Create", mock.MatchedBy(func(entry *models.AuditLog) bool {
		return entry.Status == models.StatusSuccess && entry.Severity == models.SeverityLow
	})).Return(&models.AuditLog{
		ID:        "a-1",
		Action:    models.ActionCreate,
		Resource:  "contacts",
		Status:    models.StatusSuccess,
		Severity:  models.SeverityLow,
		CompanyID: "c-1",
	}, nil)

	// Act
	result, err := service.Record(req)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, models.StatusSuccess, result.Status)
	assert.Equal(t, models.SeverityLow, result.Severity)
	mockRepo.AssertExpectations(t)
}

// TestSecurityService_Record_InvalidAction, geçersiz action değerinin reddedilmesini test eder.
func TestSecurityService_Record_InvalidAction(t *testing.T) {
	// Arrange
	mockRepo := new(MockAuditRepository)
	service := newTestSecurityService(mockRepo)

	req := &models.CreateAuditLogRequest{
		Action:    models.AuditAction("bogus"),
		Resource:  "contacts",
		CompanyID: "c-1",
	}

	// Act
	result, err := service.Record(req)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, result)

	var valErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &valErr)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

// TestSecurityService_Record_MissingCompanyID, tenant ID'siz isteğin reddedilmesini test eder.
func TestSecurityService_Record_MissingCompanyID(t *testing.T) {
	// Arrange
	mockRepo := new(MockAuditRepository)
	service := newTestSecurityService(mockRepo)

	req := &models.CreateAuditLogRequest{
		Action:   models.ActionRead,
		Resource: "contacts",
	}

	// Act
	result, err := service.Record(req)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, result)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

// TestSecurityService_Record_InvalidStatus, geçersiz status'un sessizce düzeltilmeden reddedilmesini test eder.
func TestSecurityService_Record_InvalidStatus(t *testing.T) {
	// Arrange
	mockRepo := new(MockAuditRepository)
	service := newTestSecurityService(mockRepo)

	req := &models.CreateAuditLogRequest{
		Action:    models.ActionUpdate,
		Resource:  "contacts",
		Status:    models.AuditStatus("maybe"),
		CompanyID: "c-1",
	}

	// Act
	result, err := service.Record(req)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, result)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

// TestSecurityService_Record_RepoError, yazma hatasının retry edilmeden caller'a taşınmasını test eder.
func TestSecurityService_Record_RepoError(t *testing.T) {
	// Arrange
	mockRepo := new(MockAuditRepository)
	service := newTestSecurityService(mockRepo)

	req := &models.CreateAuditLogRequest{
		Action:    models.ActionDelete,
		Resource:  "contacts",
		CompanyID: "c-1",
	}

	mockRepo.On("Create", mock.Anything).Return(nil, errors.New("veritabanı hatası"))

	// Act
	result, err := service.Record(req)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, result)
	mockRepo.AssertNumberOfCalls(t, "Create", 1)
}

// TestSecurityService_LogEvent_DefaultSeverity, LogEvent'in success status ve medium severity üretmesini test eder.
func TestSecurityService_LogEvent_DefaultSeverity(t *testing.T) {
	// Arrange
	mockRepo := new(MockAuditRepository)
	service := newTestSecurityService(mockRepo)

	userID := "u-1"

	mockRepo.On("Create", mock.MatchedBy(func(entry *models.AuditLog) bool {
		return entry.Status == models.StatusSuccess &&
			entry.Severity == models.SeverityMedium &&
			entry.Action == models.ActionDataExport &&
			entry.Description != nil && *entry.Description == "rapor indirildi"
	})).Return(&models.AuditLog{ID: "a-2", Status: models.StatusSuccess, Severity: models.SeverityMedium}, nil)

	// Act
	result, err := service.LogEvent("c-1", &userID, models.ActionDataExport, "reports", "rapor indirildi", nil, "")

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, result)
	mockRepo.AssertExpectations(t)
}

// TestSecurityService_LogViolation_Defaults, LogViolation'ın failed status ve high severity üretmesini test eder.
func TestSecurityService_LogViolation_Defaults(t *testing.T) {
	// Arrange
	mockRepo := new(MockAuditRepository)
	service := newTestSecurityService(mockRepo)

	mockRepo.On("Create", mock.MatchedBy(func(entry *models.AuditLog) bool {
		return entry.Status == models.StatusFailed &&
			entry.Severity == models.SeverityHigh &&
			entry.ErrorMessage != nil && *entry.ErrorMessage == "yetkisiz erişim"
	})).Return(&models.AuditLog{ID: "a-3", Status: models.StatusFailed, Severity: models.SeverityHigh}, nil)

	// Act
	result, err := service.LogViolation("c-1", nil, models.ActionPermissionChange, "roles",
		"rol değişikliği reddedildi", "yetkisiz erişim", nil, "")

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, result)
	mockRepo.AssertExpectations(t)
}

// TestSecurityService_GetSecurityAlerts_Filter, alerts sorgusunun high/critical severity filtrelemesini test eder.
func TestSecurityService_GetSecurityAlerts_Filter(t *testing.T) {
	// Arrange
	mockRepo := new(MockAuditRepository)
	service := newTestSecurityService(mockRepo)

	expected := []*models.AuditLog{{ID: "a-4", Severity: models.SeverityCritical}}

	mockRepo.On("List", mock.MatchedBy(func(filter *models.AuditLogFilter) bool {
		return filter.CompanyID == "c-1" &&
			len(filter.Severities) == 2 &&
			filter.Severities[0] == models.SeverityHigh &&
			filter.Severities[1] == models.SeverityCritical &&
			filter.Limit == defaultAlertsLimit
	})).Return(expected, nil)

	// Act
	result, err := service.GetSecurityAlerts("c-1", 0)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, expected, result)
	mockRepo.AssertExpectations(t)
}

// TestSecurityService_GetFailedLogins_Filter, failed login sorgusunun action filtrelemesini test eder.
func TestSecurityService_GetFailedLogins_Filter(t *testing.T) {
	// Arrange
	mockRepo := new(MockAuditRepository)
	service := newTestSecurityService(mockRepo)

	mockRepo.On("List", mock.MatchedBy(func(filter *models.AuditLogFilter) bool {
		return filter.CompanyID == "c-1" &&
			filter.Action == models.ActionLoginFailed &&
			filter.Limit == 5
	})).Return([]*models.AuditLog{}, nil)

	// Act
	result, err := service.GetFailedLogins("c-1", 5)

	// Assert
	assert.NoError(t, err)
	assert.Empty(t, result)
	mockRepo.AssertExpectations(t)
}

// TestSecurityService_GetDataAccessLogs_Filter, data access sorgusunun CRUD action set'ini test eder.
func TestSecurityService_GetDataAccessLogs_Filter(t *testing.T) {
	// Arrange
	mockRepo := new(MockAuditRepository)
	service := newTestSecurityService(mockRepo)

	mockRepo.On("List", mock.MatchedBy(func(filter *models.AuditLogFilter) bool {
		return filter.CompanyID == "c-1" &&
			filter.Resource == "contacts" &&
			len(filter.Actions) == 4 &&
			filter.Limit == defaultDataAccessLimit
	})).Return([]*models.AuditLog{}, nil)

	// Act
	result, err := service.GetDataAccessLogs("c-1", "contacts", -3)

	// Assert
	assert.NoError(t, err)
	assert.Empty(t, result)
	mockRepo.AssertExpectations(t)
}

// TestSecurityService_GetByDateRange_InvalidRange, ters tarih aralığının reddedilmesini test eder.
func TestSecurityService_GetByDateRange_InvalidRange(t *testing.T) {
	// Arrange
	mockRepo := new(MockAuditRepository)
	service := newTestSecurityService(mockRepo)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -7)

	// Act
	result, err := service.GetByDateRange("c-1", start, end)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, result)
	mockRepo.AssertNotCalled(t, "List", mock.Anything)
}

// TestSecurityService_Search_EmptyTerm, boş arama teriminin reddedilmesini test eder.
func TestSecurityService_Search_EmptyTerm(t *testing.T) {
	// Arrange
	mockRepo := new(MockAuditRepository)
	service := newTestSecurityService(mockRepo)

	// Act
	result, err := service.Search("c-1", "")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, result)
	mockRepo.AssertNotCalled(t, "List", mock.Anything)
}

// TestNormalizeLimit, limit normalizasyon kurallarını test eder.
func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, 10, normalizeLimit(0, 10))
	assert.Equal(t, 10, normalizeLimit(-1, 10))
	assert.Equal(t, 10, normalizeLimit(maxListLimit+1, 10))
	assert.Equal(t, 25, normalizeLimit(25, 10))
	assert.Equal(t, maxListLimit, normalizeLimit(maxListLimit, 10))
}
