package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/emlakcrm/go-audit-api/internal/apperrors"
	"github.com/emlakcrm/go-audit-api/internal/models"
)

// respondSuccess standardized success response gönderir
func respondSuccess(w http.ResponseWriter, statusCode int, data interface{}, message string) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
		"message": message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// respondList liste yanıtı gönderir; boş sonuç hata değil boş array'dir
func respondList(w http.ResponseWriter, entries []*models.AuditLog) {
	if entries == nil {
		entries = []*models.AuditLog{}
	}

	response := map[string]interface{}{
		"success": true,
		"data":    entries,
		"count":   len(entries),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// respondError hatayı APIError taxonomy'sine göre status'a çevirir
func respondError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Sunucu hatası. Lütfen tekrar deneyin."

	var apiErr apperrors.APIError
	if errors.As(err, &apiErr) {
		statusCode = apiErr.Status()
		message = apiErr.Error()
	}

	response := apperrors.ErrorResponse{
		Success:   false,
		Error:     message,
		Code:      statusCode,
		Timestamp: time.Now().Format(time.RFC3339),
		RequestID: w.Header().Get("X-Request-ID"),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
