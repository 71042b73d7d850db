package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/emlakcrm/go-audit-api/internal/apperrors"
)

// Permission represents a specific permission
type Permission string

// Define available permissions
const (
	PermViewAuditLogs   Permission = "view_audit_logs"
	PermWriteAuditLogs  Permission = "write_audit_logs"
	PermExportAuditLogs Permission = "export_audit_logs"
	PermPurgeAuditLogs  Permission = "purge_audit_logs"
)

// RolePermissions defines permissions for each role
var RolePermissions = map[string][]Permission{
	"user": {
		PermViewAuditLogs,
		PermWriteAuditLogs,
	},
	"admin": {
		PermViewAuditLogs,
		PermWriteAuditLogs,
		PermExportAuditLogs,
		PermPurgeAuditLogs,
	},
}

// HasPermission rolün izni olup olmadığını kontrol eder
func HasPermission(role string, permission Permission) bool {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true
		}
	}
	return false
}

// RequirePermission creates RBAC middleware for specific permission.
// AuthMiddleware'den sonra çalışmalıdır; claims context'ten okunur.
func RequirePermission(permission Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeRBACError(w, r, &apperrors.AuthError{Message: "Yetkilendirme hatası. Lütfen tekrar giriş yapın."})
				return
			}

			if !HasPermission(claims.Role, permission) {
				log.Warn().
					Str("user_id", claims.UserID).
					Str("role", claims.Role).
					Str("permission", string(permission)).
					Str("path", r.URL.Path).
					Msg("Authorization failed")

				writeRBACError(w, r, &apperrors.RBACError{
					Message:  "Bu işlem için yetkiniz bulunmuyor.",
					Resource: r.URL.Path,
					Action:   string(permission),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeRBACError standardized JSON error response döner
func writeRBACError(w http.ResponseWriter, r *http.Request, apiErr apperrors.APIError) {
	response := apperrors.ErrorResponse{
		Success:   false,
		Error:     apiErr.Error(),
		Code:      apiErr.Status(),
		Timestamp: time.Now().Format(time.RFC3339),
		RequestID: w.Header().Get("X-Request-ID"),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status())
	json.NewEncoder(w).Encode(response)
}
