package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/emlakcrm/go-audit-api/internal/models"
	"github.com/emlakcrm/go-audit-api/internal/services"
	"github.com/emlakcrm/go-audit-api/internal/utils"
)

// AuditTrailConfig audit trail middleware ayarları
type AuditTrailConfig struct {
	// SkipPrefixes audit'lenmeyecek path prefix'leri.
	// /security/audit-log zaten explicit yazım yapar, /auth kendi
	// event'lerini service katmanında üretir; ikisi de çift kayıt olmasın
	// diye atlanır.
	SkipPrefixes []string
}

// DefaultAuditTrailConfig varsayılan ayarlar
func DefaultAuditTrailConfig() *AuditTrailConfig {
	return &AuditTrailConfig{
		SkipPrefixes: []string{
			"/api/v1/auth",
			"/api/v1/security/audit-log",
			"/health",
		},
	}
}

// auditResponseWriter response status'u yakalamak için wrapper
type auditResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (arw *auditResponseWriter) WriteHeader(code int) {
	arw.statusCode = code
	arw.ResponseWriter.WriteHeader(code)
}

// AuditTrailMiddleware authenticated mutating istekleri (POST/PUT/PATCH/DELETE)
// asenkron olarak audit'ler. Kayıt queue üzerinden fire-and-forget yazılır;
// queue dolu olsa bile istek normal şekilde tamamlanır.
func AuditTrailMiddleware(queue *services.AuditQueue, config *AuditTrailConfig) func(http.Handler) http.Handler {
	// Config nil ise default kullan
	if config == nil {
		config = DefaultAuditTrailConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			action, auditable := actionForMethod(r.Method)
			if !auditable || shouldSkipAudit(r.URL.Path, config.SkipPrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				// Kimliği olmayan istek audit'lenmez; auth middleware reddedecek
				next.ServeHTTP(w, r)
				return
			}

			wrapped := &auditResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			startTime := time.Now()

			next.ServeHTTP(wrapped, r)

			responseTimeMs := int(time.Since(startTime).Milliseconds())
			status := models.StatusSuccess
			severity := models.SeverityLow
			if wrapped.statusCode >= 400 {
				status = models.StatusFailed
				severity = models.SeverityMedium
			}

			clientIP := utils.GetClientIP(r)
			userAgent := r.Header.Get("User-Agent")
			description := r.Method + " " + r.URL.Path

			queue.Enqueue(&models.CreateAuditLogRequest{
				Action:         action,
				Resource:       resourceFromPath(r.URL.Path),
				Status:         status,
				Severity:       severity,
				Description:    &description,
				ResponseTimeMs: &responseTimeMs,
				CompanyID:      claims.CompanyID,
				UserID:         &claims.UserID,
				IPAddress:      &clientIP,
				UserAgent:      &userAgent,
			})
		})
	}
}

// actionForMethod HTTP metodunu audit aksiyonuna çevirir
func actionForMethod(method string) (models.AuditAction, bool) {
	switch method {
	case http.MethodPost:
		return models.ActionCreate, true
	case http.MethodPut, http.MethodPatch:
		return models.ActionUpdate, true
	case http.MethodDelete:
		return models.ActionDelete, true
	default:
		return "", false
	}
}

// resourceFromPath path'ten resource adını çıkarır
// (örn. /api/v1/leads/42 -> "leads")
func resourceFromPath(path string) string {
	trimmed := strings.TrimPrefix(path, "/api/v1/")
	parts := strings.Split(trimmed, "/")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "unknown"
}

// shouldSkipAudit path kontrolü
func shouldSkipAudit(path string, skipPrefixes []string) bool {
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
