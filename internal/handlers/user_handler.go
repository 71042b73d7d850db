package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/emlakcrm/go-audit-api/internal/apperrors"
	"github.com/emlakcrm/go-audit-api/internal/auth"
	"github.com/emlakcrm/go-audit-api/internal/interfaces"
	"github.com/emlakcrm/go-audit-api/internal/models"
	"github.com/emlakcrm/go-audit-api/internal/utils"
)

// UserHandler kullanıcı HTTP isteklerini yönetir
type UserHandler struct {
	userService interfaces.UserServiceInterface
}

// NewUserHandler yeni handler oluşturur
func NewUserHandler(userService interfaces.UserServiceInterface) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register yeni kullanıcı kaydı endpoint'i (public)
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.NewValidation("body", "geçersiz JSON body", nil))
		return
	}

	user, err := h.userService.Register(&req)
	if err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("Kullanıcı kaydı başarısız")
		respondError(w, err)
		return
	}

	log.Info().Str("user_id", user.ID).Str("company_id", user.CompanyID).Msg("Yeni kullanıcı kaydedildi")
	respondSuccess(w, http.StatusCreated, user, "Kullanıcı başarıyla oluşturuldu")
}

// Login giriş endpoint'i (public)
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.NewValidation("body", "geçersiz JSON body", nil))
		return
	}

	result, err := h.userService.Login(&req, utils.GetClientIP(r), r.Header.Get("User-Agent"))
	if err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("Giriş başarısız")
		respondError(w, err)
		return
	}

	log.Info().Str("user_id", result.User.ID).Msg("Kullanıcı giriş yaptı")
	respondSuccess(w, http.StatusOK, result, "Giriş başarılı")
}

// Refresh token yenileme endpoint'i (public)
func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Token == "" {
		respondError(w, apperrors.NewValidation("token", "token zorunludur", nil))
		return
	}

	newToken, expiresIn, err := auth.RefreshToken(body.Token)
	if err != nil {
		log.Warn().Err(err).Msg("Token refresh başarısız")
		respondError(w, &apperrors.AuthError{Message: err.Error()})
		return
	}

	response := models.RefreshResponse{
		Success:   true,
		Token:     newToken,
		ExpiresIn: expiresIn,
		Message:   "Token başarıyla yenilendi",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
