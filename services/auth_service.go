package services

import (
	"net/http"
	"time"

	"citymap-server/utils/errors"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	jwtSecret    []byte
	adminKeyHash []byte
	tokenTTL     time.Duration
}

func NewAuthService(jwtSecret, adminKeyHash string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		jwtSecret:    []byte(jwtSecret),
		adminKeyHash: []byte(adminKeyHash),
		tokenTTL:     tokenTTL,
	}
}

// IssueToken signs a session token carrying the session id.
func (s *AuthService) IssueToken(sessionID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sessionID": sessionID,
		"exp":       time.Now().Add(s.tokenTTL).Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", errors.Wrap(err, "JWT_ERROR", "Failed to generate token", http.StatusInternalServerError)
	}
	return tokenString, nil
}

// ParseToken validates a session token and returns its session id.
func (s *AuthService) ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewAPIError("INVALID_TOKEN", "Unexpected signing method", http.StatusUnauthorized)
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.ErrUnauthorized
	}
	sessionID, ok := claims["sessionID"].(string)
	if !ok || sessionID == "" {
		return "", errors.ErrUnauthorized
	}
	return sessionID, nil
}

// AdminEnabled reports whether an admin key hash is configured.
func (s *AuthService) AdminEnabled() bool {
	return len(s.adminKeyHash) > 0
}

// CheckAdminKey compares key against the configured bcrypt hash.
func (s *AuthService) CheckAdminKey(key string) error {
	if !s.AdminEnabled() {
		return errors.ErrForbidden
	}
	if err := bcrypt.CompareHashAndPassword(s.adminKeyHash, []byte(key)); err != nil {
		return errors.ErrForbidden
	}
	return nil
}
