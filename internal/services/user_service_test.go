package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/emlakcrm/go-audit-api/internal/apperrors"
	"github.com/emlakcrm/go-audit-api/internal/interfaces"
	"github.com/emlakcrm/go-audit-api/internal/models"
)

// MockUserRepository, UserRepositoryInterface için sahte (mock) bir yapıdır.
type MockUserRepository struct {
	mock.Mock
}

var _ interfaces.UserRepositoryInterface = (*MockUserRepository)(nil)

func (m *MockUserRepository) Create(user *models.CreateUserRequest) (*models.User, error) {
	args := m.Called(user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockSecurityService, SecurityServiceInterface için sahte (mock) bir yapıdır.
type MockSecurityService struct {
	mock.Mock
}

var _ interfaces.SecurityServiceInterface = (*MockSecurityService)(nil)

func (m *MockSecurityService) Record(req *models.CreateAuditLogRequest) (*models.AuditLog, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditLog), args.Error(1)
}

func (m *MockSecurityService) LogEvent(companyID string, userID *string, action models.AuditAction, resource, description string, metadata json.RawMessage, severity models.AuditSeverity) (*models.AuditLog, error) {
	args := m.Called(companyID, userID, action, resource, description, metadata, severity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditLog), args.Error(1)
}

func (m *MockSecurityService) LogViolation(companyID string, userID *string, action models.AuditAction, resource, description, errorMessage string, metadata json.RawMessage, severity models.AuditSeverity) (*models.AuditLog, error) {
	args := m.Called(companyID, userID, action, resource, description, errorMessage, metadata, severity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditLog), args.Error(1)
}

func (m *MockSecurityService) FindAll(companyID string) ([]*models.AuditLog, error) {
	args := m.Called(companyID)
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockSecurityService) GetByID(id string) (*models.AuditLog, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditLog), args.Error(1)
}

func (m *MockSecurityService) GetByAction(companyID string, action models.AuditAction) ([]*models.AuditLog, error) {
	args := m.Called(companyID, action)
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockSecurityService) GetByResource(companyID, resource string) ([]*models.AuditLog, error) {
	args := m.Called(companyID, resource)
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockSecurityService) GetByUser(companyID, userID string) ([]*models.AuditLog, error) {
	args := m.Called(companyID, userID)
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockSecurityService) GetByStatus(companyID string, status models.AuditStatus) ([]*models.AuditLog, error) {
	args := m.Called(companyID, status)
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockSecurityService) GetBySeverity(companyID string, severity models.AuditSeverity) ([]*models.AuditLog, error) {
	args := m.Called(companyID, severity)
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockSecurityService) GetByDateRange(companyID string, start, end time.Time) ([]*models.AuditLog, error) {
	args := m.Called(companyID, start, end)
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockSecurityService) Search(companyID, term string) ([]*models.AuditLog, error) {
	args := m.Called(companyID, term)
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockSecurityService) GetSecurityAlerts(companyID string, limit int) ([]*models.AuditLog, error) {
	args := m.Called(companyID, limit)
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockSecurityService) GetFailedLogins(companyID string, limit int) ([]*models.AuditLog, error) {
	args := m.Called(companyID, limit)
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockSecurityService) GetDataAccessLogs(companyID, resource string, limit int) ([]*models.AuditLog, error) {
	args := m.Called(companyID, resource, limit)
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockSecurityService) GetSecurityStats(companyID string) (*models.SecurityStats, error) {
	args := m.Called(companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SecurityStats), args.Error(1)
}

// TestUserService_Register_Success, kayıt akışını ve audit event üretimini test eder.
func TestUserService_Register_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockSecurity := new(MockSecurityService)
	userService := NewUserService(mockUserRepo, mockSecurity, zerolog.Nop())

	req := &models.CreateUserRequest{
		CompanyID: "c-1",
		Name:      "Ali Veli",
		Email:     "ali@example.com",
		Password:  "gizli123",
	}

	created := &models.User{ID: "u-1", CompanyID: "c-1", Email: "ali@example.com", Role: "user"}

	mockUserRepo.On("GetByEmail", "ali@example.com").Return(nil, apperrors.NewNotFound("kullanıcı bulunamadı"))
	mockUserRepo.On("Create", mock.MatchedBy(func(r *models.CreateUserRequest) bool {
		// Şifre hash'lenmiş olmalı, plaintext asla repository'ye gitmez
		return r.Password != "gizli123" &&
			bcrypt.CompareHashAndPassword([]byte(r.Password), []byte("gizli123")) == nil
	})).Return(created, nil)
	mockSecurity.On("LogEvent", "c-1", mock.Anything, models.ActionCreate, "users",
		mock.Anything, mock.Anything, models.SeverityLow).Return(&models.AuditLog{ID: "a-1"}, nil)

	// Act
	result, err := userService.Register(req)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, created, result)
	mockUserRepo.AssertExpectations(t)
	mockSecurity.AssertExpectations(t)
}

// TestUserService_Register_AdminRejected, self-service admin kaydının reddedilmesini test eder.
func TestUserService_Register_AdminRejected(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockSecurity := new(MockSecurityService)
	userService := NewUserService(mockUserRepo, mockSecurity, zerolog.Nop())

	req := &models.CreateUserRequest{
		CompanyID: "c-1",
		Name:      "Kötü Niyetli",
		Email:     "root@example.com",
		Password:  "gizli123",
		Role:      "admin",
	}

	mockUserRepo.On("GetByEmail", "root@example.com").Return(nil, apperrors.NewNotFound("kullanıcı bulunamadı"))

	// Act
	result, err := userService.Register(req)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, result)
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything)
}

// TestUserService_Login_Success, başarılı girişin login audit kaydı üretmesini test eder.
func TestUserService_Login_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockSecurity := new(MockSecurityService)
	userService := NewUserService(mockUserRepo, mockSecurity, zerolog.Nop())

	hashed, _ := bcrypt.GenerateFromPassword([]byte("gizli123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:        "u-1",
		CompanyID: "c-1",
		Email:     "ali@example.com",
		Password:  string(hashed),
		Role:      "user",
	}

	mockUserRepo.On("GetByEmail", "ali@example.com").Return(user, nil)
	mockSecurity.On("Record", mock.MatchedBy(func(r *models.CreateAuditLogRequest) bool {
		return r.Action == models.ActionLogin &&
			r.Resource == "auth" &&
			r.Status == models.StatusSuccess &&
			r.CompanyID == "c-1" &&
			r.IPAddress != nil && *r.IPAddress == "10.0.0.5"
	})).Return(&models.AuditLog{ID: "a-1"}, nil)

	// Act
	result, err := userService.Login(&models.LoginRequest{Email: "ali@example.com", Password: "gizli123"}, "10.0.0.5", "test-agent")

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user, result.User)
	mockSecurity.AssertExpectations(t)
}

// TestUserService_Login_WrongPassword, yanlış şifrenin login_failed ihlali üretmesini test eder.
func TestUserService_Login_WrongPassword(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockSecurity := new(MockSecurityService)
	userService := NewUserService(mockUserRepo, mockSecurity, zerolog.Nop())

	hashed, _ := bcrypt.GenerateFromPassword([]byte("gizli123"), bcrypt.DefaultCost)
	user := &models.User{ID: "u-1", CompanyID: "c-1", Email: "ali@example.com", Password: string(hashed)}

	mockUserRepo.On("GetByEmail", "ali@example.com").Return(user, nil)
	mockSecurity.On("LogViolation", "c-1", mock.Anything, models.ActionLoginFailed, "auth",
		mock.Anything, mock.Anything, mock.Anything, models.SeverityHigh).Return(&models.AuditLog{ID: "a-1"}, nil)

	// Act
	result, err := userService.Login(&models.LoginRequest{Email: "ali@example.com", Password: "yanlış"}, "", "")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, result)

	var authErr *apperrors.AuthError
	assert.ErrorAs(t, err, &authErr)
	mockSecurity.AssertExpectations(t)
}

// TestUserService_Login_ViolationWriteFailure, ihlal kaydı yazılamasa bile auth hatasının dönmesini test eder.
func TestUserService_Login_ViolationWriteFailure(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockSecurity := new(MockSecurityService)
	userService := NewUserService(mockUserRepo, mockSecurity, zerolog.Nop())

	hashed, _ := bcrypt.GenerateFromPassword([]byte("gizli123"), bcrypt.DefaultCost)
	user := &models.User{ID: "u-1", CompanyID: "c-1", Email: "ali@example.com", Password: string(hashed)}

	mockUserRepo.On("GetByEmail", "ali@example.com").Return(user, nil)
	mockSecurity.On("LogViolation", "c-1", mock.Anything, models.ActionLoginFailed, "auth",
		mock.Anything, mock.Anything, mock.Anything, models.SeverityHigh).
		Return(nil, apperrors.NewPersistence("audit yazılamadı", nil))

	// Act
	result, err := userService.Login(&models.LoginRequest{Email: "ali@example.com", Password: "yanlış"}, "", "")

	// Assert: audit hatası asıl auth hatasını maskelememeli
	assert.Error(t, err)
	assert.Nil(t, result)

	var authErr *apperrors.AuthError
	assert.ErrorAs(t, err, &authErr)
}

// TestUserService_Login_AuditWriteFailure, başarılı girişin audit yazım hatasından etkilenmemesini test eder.
func TestUserService_Login_AuditWriteFailure(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockSecurity := new(MockSecurityService)
	userService := NewUserService(mockUserRepo, mockSecurity, zerolog.Nop())

	hashed, _ := bcrypt.GenerateFromPassword([]byte("gizli123"), bcrypt.DefaultCost)
	user := &models.User{ID: "u-1", CompanyID: "c-1", Email: "ali@example.com", Password: string(hashed), Role: "user"}

	mockUserRepo.On("GetByEmail", "ali@example.com").Return(user, nil)
	mockSecurity.On("Record", mock.Anything).Return(nil, apperrors.NewPersistence("audit yazılamadı", nil))

	// Act
	result, err := userService.Login(&models.LoginRequest{Email: "ali@example.com", Password: "gizli123"}, "", "")

	// Assert: login başarılıdır, audit hatası sadece log'lanır
	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.NotEmpty(t, result.Token)
	mockSecurity.AssertExpectations(t)
}

// TestUserService_Login_UnknownEmail, bilinmeyen email için generic auth hatası dönmesini test eder.
func TestUserService_Login_UnknownEmail(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockSecurity := new(MockSecurityService)
	userService := NewUserService(mockUserRepo, mockSecurity, zerolog.Nop())

	mockUserRepo.On("GetByEmail", "yok@example.com").Return(nil, apperrors.NewNotFound("kullanıcı bulunamadı"))

	// Act
	result, err := userService.Login(&models.LoginRequest{Email: "yok@example.com", Password: "x"}, "", "")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, result)
	mockSecurity.AssertNotCalled(t, "LogViolation", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
