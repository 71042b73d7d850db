package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/emlakcrm/go-audit-api/internal/apperrors"
)

// ErrorHandlingMiddleware centralized error handling ve panic recovery
func ErrorHandlingMiddleware(config *apperrors.ErrorConfig) func(http.Handler) http.Handler {
	// Config nil ise default kullan
	if config == nil {
		config = apperrors.DefaultErrorConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Panic recovery defer function
			defer func() {
				if recovered := recover(); recovered != nil {
					var statusCode = 500
					var errorMessage string
					var isAPIError bool
					var errorType string

					// Type switch ile esnek error yakalama
					switch err := recovered.(type) {
					case apperrors.APIError:
						statusCode = err.Status()
						errorMessage = err.Error()
						isAPIError = true
						errorType = fmt.Sprintf("%T", err)

						logAPIError(err, r, errorType)

					case error:
						statusCode = 500
						errorMessage = err.Error()

					default:
						statusCode = 500
						errorMessage = fmt.Sprintf("Server panic: %v", recovered)
					}

					// Panic bilgilerini topla (sadece normal panic/error için stack trace)
					var stack string
					if !isAPIError {
						panicInfo := &apperrors.PanicInfo{
							Value:     recovered,
							Stack:     string(debug.Stack()),
							RequestID: w.Header().Get("X-Request-ID"),
							Method:    r.Method,
							Path:      r.URL.Path,
							UserAgent: r.Header.Get("User-Agent"),
							ClientIP:  getClientIP(r),
							Timestamp: time.Now(),
						}
						logPanic(panicInfo, config)
						stack = panicInfo.Stack
					}

					sendErrorResponse(w, r, statusCode, errorMessage, config, stack)
				}
			}()

			// Handler'ı çalıştır
			next.ServeHTTP(w, r)
		})
	}
}

// sendErrorResponse standardized error response gönderir
func sendErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message string, config *apperrors.ErrorConfig, stack string) {
	response := apperrors.ErrorResponse{
		Success:   false,
		Error:     truncateString(message, config.MaxErrorLength),
		Code:      statusCode,
		Timestamp: time.Now().Format(time.RFC3339),
		RequestID: w.Header().Get("X-Request-ID"),
	}

	// Stack trace ekle (sadece development'ta)
	if config.ShowStackTrace && stack != "" {
		response.Stack = stack
	}

	response.Details = map[string]interface{}{
		"method": r.Method,
		"path":   r.URL.Path,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().
			Err(err).
			Str("request_id", response.RequestID).
			Msg("Error response JSON encoding failed")

		// Fallback plain text response (JSON encode edilemezse)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logError(r, statusCode, message, response.RequestID)
}

// Convenience functions
func ErrorHandlingMiddlewareWithDefaults() func(http.Handler) http.Handler {
	return ErrorHandlingMiddleware(apperrors.DefaultErrorConfig())
}

func ErrorHandlingMiddlewareForDevelopment() func(http.Handler) http.Handler {
	return ErrorHandlingMiddleware(apperrors.DevelopmentErrorConfig())
}

func ErrorHandlingMiddlewareForProduction() func(http.Handler) http.Handler {
	return ErrorHandlingMiddleware(apperrors.ProductionErrorConfig())
}
