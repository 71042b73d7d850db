package services

import (
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/emlakcrm/go-audit-api/internal/apperrors"
	"github.com/emlakcrm/go-audit-api/internal/auth"
	"github.com/emlakcrm/go-audit-api/internal/interfaces"
	"github.com/emlakcrm/go-audit-api/internal/models"
)

// UserService kullanıcı business logic'i.
// Login/register akışları kendi audit kayıtlarını SecurityService
// üzerinden üretir; audit yazımı başarısız olsa bile asıl işlem
// başarısız olmaz (log-and-continue), ama hata mutlaka log'lanır.
type UserService struct {
	userRepo interfaces.UserRepositoryInterface
	security interfaces.SecurityServiceInterface
	logger   zerolog.Logger
}

// NewUserService yeni service oluşturur
func NewUserService(userRepo interfaces.UserRepositoryInterface, security interfaces.SecurityServiceInterface, logger zerolog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		security: security,
		logger:   logger.With().Str("component", "user_service").Logger(),
	}
}

// Register yeni kullanıcı kaydeder
func (s *UserService) Register(req *models.CreateUserRequest) (*models.User, error) {
	if req.CompanyID == "" {
		return nil, apperrors.NewValidation("company_id", "company_id zorunludur", nil)
	}
	if req.Email == "" || req.Password == "" {
		return nil, apperrors.NewValidation("email", "email ve şifre zorunludur", nil)
	}

	// Email zaten var mı kontrol et
	existingUser, _ := s.userRepo.GetByEmail(req.Email)
	if existingUser != nil {
		return nil, apperrors.NewValidation("email", "bu email zaten kullanılıyor", req.Email)
	}

	// GÜVENLIK: admin hesapları self-service register ile açılamaz
	if req.Role == "admin" {
		return nil, apperrors.NewValidation("role", "admin hesapları sadece sistem yöneticisi tarafından oluşturulabilir", req.Role)
	}
	if req.Role == "" {
		req.Role = "user" // Default role
	} else if req.Role != "user" {
		return nil, apperrors.NewValidation("role", fmt.Sprintf("geçersiz rol: %s", req.Role), req.Role)
	}

	// Şifreyi hashle
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("şifre hashlenemedi: %w", err)
	}
	req.Password = string(hashedPassword)

	user, err := s.userRepo.Create(req)
	if err != nil {
		return nil, err
	}

	// Kayıt event'i; audit yazımı başarısız olsa bile register başarılıdır
	if _, auditErr := s.security.LogEvent(user.CompanyID, &user.ID, models.ActionCreate, "users",
		"yeni kullanıcı kaydı", nil, models.SeverityLow); auditErr != nil {
		s.logger.Error().
			Err(auditErr).
			Str("user_id", user.ID).
			Str("company_id", user.CompanyID).
			Msg("Register audit event'i yazılamadı")
	}

	return user, nil
}

// Login kullanıcı girişi yapar ve token döner.
// Başarısız deneme login_failed olarak audit'lenir; bu ihlal kaydının
// yazılamaması asıl login hatasını maskelemez.
func (s *UserService) Login(req *models.LoginRequest, ipAddress, userAgent string) (*models.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		return nil, &apperrors.AuthError{Message: "email veya şifre hatalı"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		if _, auditErr := s.security.LogViolation(user.CompanyID, &user.ID, models.ActionLoginFailed, "auth",
			"başarısız giriş denemesi: "+req.Email, "şifre doğrulanamadı", nil, models.SeverityHigh); auditErr != nil {
			s.logger.Error().
				Err(auditErr).
				Str("user_id", user.ID).
				Str("company_id", user.CompanyID).
				Msg("login_failed ihlal kaydı yazılamadı")
		}
		return nil, &apperrors.AuthError{Message: "email veya şifre hatalı"}
	}

	token, err := auth.GenerateToken(user.ID, user.CompanyID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("token oluşturulamadı: %w", err)
	}

	if _, auditErr := s.security.Record(&models.CreateAuditLogRequest{
		Action:    models.ActionLogin,
		Resource:  "auth",
		Status:    models.StatusSuccess,
		Severity:  models.SeverityLow,
		CompanyID: user.CompanyID,
		UserID:    &user.ID,
		IPAddress: optionalString(ipAddress),
		UserAgent: optionalString(userAgent),
	}); auditErr != nil {
		s.logger.Error().
			Err(auditErr).
			Str("user_id", user.ID).
			Str("company_id", user.CompanyID).
			Msg("Login audit kaydı yazılamadı")
	}

	return &models.LoginResponse{User: user, Token: token}, nil
}

// GetUserByID ID ile kullanıcı getirir
func (s *UserService) GetUserByID(userID string) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}

// optionalString boş string'i nil pointer'a çevirir
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
