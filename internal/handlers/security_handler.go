package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/emlakcrm/go-audit-api/internal/apperrors"
	"github.com/emlakcrm/go-audit-api/internal/auth"
	"github.com/emlakcrm/go-audit-api/internal/interfaces"
	"github.com/emlakcrm/go-audit-api/internal/middleware"
	"github.com/emlakcrm/go-audit-api/internal/models"
	"github.com/emlakcrm/go-audit-api/internal/utils"
)

// SecurityHandler audit log HTTP isteklerini yönetir
type SecurityHandler struct {
	securityService  interfaces.SecurityServiceInterface
	retentionService interfaces.RetentionServiceInterface
}

// NewSecurityHandler yeni handler oluşturur
func NewSecurityHandler(securityService interfaces.SecurityServiceInterface, retentionService interfaces.RetentionServiceInterface) *SecurityHandler {
	return &SecurityHandler{
		securityService:  securityService,
		retentionService: retentionService,
	}
}

// CreateAuditLog yeni audit kaydı oluşturur (protected).
// Company, user, IP ve user agent client'tan değil session'dan alınır.
func (h *SecurityHandler) CreateAuditLog(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}

	var req models.CreateAuditLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.NewValidation("body", "geçersiz JSON body", nil))
		return
	}

	clientIP := utils.GetClientIP(r)
	userAgent := r.Header.Get("User-Agent")

	req.CompanyID = claims.CompanyID
	req.UserID = &claims.UserID
	req.IPAddress = &clientIP
	if userAgent != "" {
		req.UserAgent = &userAgent
	}

	entry, err := h.securityService.Record(&req)
	if err != nil {
		log.Error().Err(err).Str("company_id", claims.CompanyID).Msg("Audit kaydı oluşturulamadı")
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, entry, "Audit kaydı başarıyla oluşturuldu")
}

// GetAuditLogs listeleme endpoint'i (protected).
// En fazla bir filtre uygulanır: action, resource, status, severity,
// user_id, start_date+end_date veya search.
func (h *SecurityHandler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	companyID := claims.CompanyID

	var entries []*models.AuditLog
	var err error

	switch {
	case query.Get("action") != "":
		entries, err = h.securityService.GetByAction(companyID, models.AuditAction(query.Get("action")))
	case query.Get("resource") != "":
		entries, err = h.securityService.GetByResource(companyID, query.Get("resource"))
	case query.Get("status") != "":
		entries, err = h.securityService.GetByStatus(companyID, models.AuditStatus(query.Get("status")))
	case query.Get("severity") != "":
		entries, err = h.securityService.GetBySeverity(companyID, models.AuditSeverity(query.Get("severity")))
	case query.Get("user_id") != "":
		entries, err = h.securityService.GetByUser(companyID, query.Get("user_id"))
	case query.Get("start_date") != "" && query.Get("end_date") != "":
		var start, end time.Time
		start, end, err = parseDateRange(query.Get("start_date"), query.Get("end_date"))
		if err == nil {
			entries, err = h.securityService.GetByDateRange(companyID, start, end)
		}
	case query.Get("search") != "":
		entries, err = h.securityService.Search(companyID, query.Get("search"))
	default:
		entries, err = h.securityService.FindAll(companyID)
	}

	if err != nil {
		log.Error().Err(err).Str("company_id", companyID).Msg("Audit listesi getirilemedi")
		respondError(w, err)
		return
	}

	respondList(w, entries)
}

// GetAuditLogByID tek kayıt endpoint'i (protected).
// Kayıt başka bir şirkete aitse 404 döner; yabancı tenant'a kaydın
// varlığı dahi sızdırılmaz.
func (h *SecurityHandler) GetAuditLogByID(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]

	entry, err := h.securityService.GetByID(id)
	if err != nil {
		respondError(w, err)
		return
	}

	if entry.CompanyID != claims.CompanyID {
		log.Warn().
			Str("audit_id", id).
			Str("company_id", claims.CompanyID).
			Str("record_company_id", entry.CompanyID).
			Msg("Başka şirketin audit kaydına erişim denemesi")
		respondError(w, apperrors.NewNotFound("audit kaydı bulunamadı"))
		return
	}

	respondSuccess(w, http.StatusOK, entry, "Audit kaydı başarıyla getirildi")
}

// ExportAuditLogs tarih aralığını export eder ve işaretler (protected, export izni gerekli)
func (h *SecurityHandler) ExportAuditLogs(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}

	start, end, err := parseDateRange(r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		respondError(w, err)
		return
	}

	entries, err := h.retentionService.ExportRange(claims.CompanyID, start, end)
	if err != nil {
		log.Error().Err(err).Str("company_id", claims.CompanyID).Msg("Audit export başarısız")
		respondError(w, err)
		return
	}

	log.Info().
		Str("company_id", claims.CompanyID).
		Str("user_id", claims.UserID).
		Int("count", len(entries)).
		Msg("Audit kayıtları export edildi")

	respondList(w, entries)
}

// CleanupAuditLogs eski kayıtları siler (protected, purge izni gerekli)
func (h *SecurityHandler) CleanupAuditLogs(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}

	daysToKeep := 0
	if daysStr := r.URL.Query().Get("days_to_keep"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed <= 0 {
			respondError(w, apperrors.NewValidation("days_to_keep", "days_to_keep pozitif bir sayı olmalıdır", daysStr))
			return
		}
		daysToKeep = parsed
	}

	deleted, err := h.retentionService.Cleanup(claims.CompanyID, daysToKeep)
	if err != nil {
		log.Error().Err(err).Str("company_id", claims.CompanyID).Msg("Audit cleanup başarısız")
		respondError(w, err)
		return
	}

	log.Info().
		Str("company_id", claims.CompanyID).
		Str("user_id", claims.UserID).
		Int64("deleted", deleted).
		Msg("Audit cleanup tamamlandı")

	respondSuccess(w, http.StatusOK, map[string]interface{}{"deleted": deleted}, "Eski audit kayıtları temizlendi")
}

// GetSecurityStats istatistik endpoint'i (protected)
func (h *SecurityHandler) GetSecurityStats(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}

	stats, err := h.securityService.GetSecurityStats(claims.CompanyID)
	if err != nil {
		log.Error().Err(err).Str("company_id", claims.CompanyID).Msg("İstatistikler getirilemedi")
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, stats, "İstatistikler başarıyla getirildi")
}

// GetSecurityAlerts high/critical kayıtlar endpoint'i (protected)
func (h *SecurityHandler) GetSecurityAlerts(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}

	entries, err := h.securityService.GetSecurityAlerts(claims.CompanyID, parseLimit(r))
	if err != nil {
		respondError(w, err)
		return
	}

	respondList(w, entries)
}

// GetFailedLogins başarısız girişler endpoint'i (protected)
func (h *SecurityHandler) GetFailedLogins(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}

	entries, err := h.securityService.GetFailedLogins(claims.CompanyID, parseLimit(r))
	if err != nil {
		respondError(w, err)
		return
	}

	respondList(w, entries)
}

// GetDataAccessLogs CRUD kayıtları endpoint'i (protected)
func (h *SecurityHandler) GetDataAccessLogs(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}

	entries, err := h.securityService.GetDataAccessLogs(claims.CompanyID, r.URL.Query().Get("resource"), parseLimit(r))
	if err != nil {
		respondError(w, err)
		return
	}

	respondList(w, entries)
}

// GetByAction path parametreli convenience endpoint (protected)
func (h *SecurityHandler) GetByAction(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}

	entries, err := h.securityService.GetByAction(claims.CompanyID, models.AuditAction(mux.Vars(r)["action"]))
	if err != nil {
		respondError(w, err)
		return
	}

	respondList(w, entries)
}

// GetByResource path parametreli convenience endpoint (protected)
func (h *SecurityHandler) GetByResource(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}

	entries, err := h.securityService.GetByResource(claims.CompanyID, mux.Vars(r)["resource"])
	if err != nil {
		respondError(w, err)
		return
	}

	respondList(w, entries)
}

// GetByUser path parametreli convenience endpoint (protected)
func (h *SecurityHandler) GetByUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}

	entries, err := h.securityService.GetByUser(claims.CompanyID, mux.Vars(r)["userId"])
	if err != nil {
		respondError(w, err)
		return
	}

	respondList(w, entries)
}

// GetByStatus path parametreli convenience endpoint (protected)
func (h *SecurityHandler) GetByStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}

	entries, err := h.securityService.GetByStatus(claims.CompanyID, models.AuditStatus(mux.Vars(r)["status"]))
	if err != nil {
		respondError(w, err)
		return
	}

	respondList(w, entries)
}

// GetBySeverity path parametreli convenience endpoint (protected)
func (h *SecurityHandler) GetBySeverity(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}

	entries, err := h.securityService.GetBySeverity(claims.CompanyID, models.AuditSeverity(mux.Vars(r)["severity"]))
	if err != nil {
		respondError(w, err)
		return
	}

	respondList(w, entries)
}

// SearchAuditLogs serbest metin arama endpoint'i (protected)
func (h *SecurityHandler) SearchAuditLogs(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}

	entries, err := h.securityService.Search(claims.CompanyID, r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondList(w, entries)
}

// claimsOrFail context'ten claims'i okur, yoksa 401 döner
func claimsOrFail(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, &apperrors.AuthError{Message: "Yetkilendirme hatası. Lütfen tekrar giriş yapın."})
		return nil, false
	}
	return claims, true
}

// parseLimit limit query parametresini parse eder; geçersizse 0 döner
// (service katmanı kendi default'unu uygular)
func parseLimit(r *http.Request) int {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return 0
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0
	}
	return limit
}

// parseDateRange start_date/end_date parametrelerini parse eder.
// ISO-8601 (RFC3339) veya sade tarih (2006-01-02) kabul edilir;
// sade bitiş tarihi günün sonuna genişletilir.
func parseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, apperrors.NewValidation("start_date", "start_date ve end_date zorunludur", nil)
	}

	start, err := parseDateParam(startStr, false)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidation("start_date", "geçersiz tarih formatı. Format: 2006-01-02T15:04:05Z", startStr)
	}

	end, err := parseDateParam(endStr, true)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidation("end_date", "geçersiz tarih formatı. Format: 2006-01-02T15:04:05Z", endStr)
	}

	return start, end, nil
}

// parseDateParam tek bir tarih parametresini parse eder
func parseDateParam(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
