package middleware

import (
	"fmt"
	"net/http"
)

// SecurityConfig security headers ayarları
type SecurityConfig struct {
	ContentSecurityPolicy string

	// HTTP Strict Transport Security (HSTS)
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	FrameOptions       string // DENY, SAMEORIGIN
	ContentTypeNosniff bool
	ReferrerPolicy     string
}

// DefaultSecurityConfig varsayılan güvenlik ayarları
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		ContentSecurityPolicy: "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'",
		HSTSMaxAge:            31536000, // 1 yıl
		HSTSIncludeSubdomains: true,
		FrameOptions:          "DENY",
		ContentTypeNosniff:    true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
}

// DevelopmentSecurityConfig development için esnek güvenlik ayarları
func DevelopmentSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		ContentSecurityPolicy: "default-src 'self' 'unsafe-inline' 'unsafe-eval'",
		HSTSMaxAge:            0, // Development'ta HSTS kapalı (HTTP kullanımı için)
		FrameOptions:          "SAMEORIGIN",
		ContentTypeNosniff:    true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
}

// SecurityHeadersMiddleware güvenlik header'larını ekler
func SecurityHeadersMiddleware(config *SecurityConfig) func(http.Handler) http.Handler {
	// Config nil ise default kullan
	if config == nil {
		config = DefaultSecurityConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.ContentSecurityPolicy != "" {
				w.Header().Set("Content-Security-Policy", config.ContentSecurityPolicy)
			}

			if config.HSTSMaxAge > 0 {
				hstsValue := fmt.Sprintf("max-age=%d", config.HSTSMaxAge)
				if config.HSTSIncludeSubdomains {
					hstsValue += "; includeSubDomains"
				}
				w.Header().Set("Strict-Transport-Security", hstsValue)
			}

			if config.FrameOptions != "" {
				w.Header().Set("X-Frame-Options", config.FrameOptions)
			}

			if config.ContentTypeNosniff {
				w.Header().Set("X-Content-Type-Options", "nosniff")
			}

			if config.ReferrerPolicy != "" {
				w.Header().Set("Referrer-Policy", config.ReferrerPolicy)
			}

			// Sonraki handler'a geç
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddlewareWithDefaults varsayılan ayarlarla security middleware döner
func SecurityHeadersMiddlewareWithDefaults() func(http.Handler) http.Handler {
	return SecurityHeadersMiddleware(DefaultSecurityConfig())
}
