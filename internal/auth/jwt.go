package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWT secret'ı env'den okunur; boşsa development fallback kullanılır
var jwtSecret = loadSecret()

func loadSecret() []byte {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return []byte(secret)
	}
	return []byte("development-secret-change-this-in-production")
}

// Claims JWT payload'ını temsil eder.
// CompanyID tenant scope'udur: her audit sorgusu bu değerle sınırlanır.
type Claims struct {
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken kullanıcı için JWT token oluşturur
func GenerateToken(userID, companyID, email, role string) (string, error) {
	// Token 24 saat geçerli olacak
	expirationTime := time.Now().Add(24 * time.Hour)

	claims := &Claims{
		UserID:    userID,
		CompanyID: companyID,
		Email:     email,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", fmt.Errorf("token oluşturulamadı: %w", err)
	}

	return tokenString, nil
}

// ValidateToken JWT token'ını doğrular ve claims'i döner
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Signing method kontrolü
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("beklenmeyen signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("token parse edilemedi: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("geçersiz token")
}

// RefreshToken süresi dolmuş bir token'dan yeni token üretir
func RefreshToken(tokenString string) (string, int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("beklenmeyen signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})

	// Token geçerliyse refresh gerekmiyor
	if err == nil && token.Valid {
		return "", 0, fmt.Errorf("token hala geçerli, refresh gerekmiyor")
	}

	if token == nil {
		return "", 0, fmt.Errorf("token parse edilemedi: %w", err)
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		claims, ok := token.Claims.(*Claims)
		if !ok {
			return "", 0, fmt.Errorf("token claims alınamadı")
		}

		newToken, genErr := GenerateToken(claims.UserID, claims.CompanyID, claims.Email, claims.Role)
		if genErr != nil {
			return "", 0, fmt.Errorf("yeni token oluşturulamadı: %w", genErr)
		}

		expiresIn := int64(24 * 60 * 60) // 24 saat
		return newToken, expiresIn, nil
	}

	if errors.Is(err, jwt.ErrTokenMalformed) {
		return "", 0, fmt.Errorf("token malformed")
	}

	if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		return "", 0, fmt.Errorf("token signature invalid")
	}

	return "", 0, fmt.Errorf("token refresh edilemedi: %w", err)
}
