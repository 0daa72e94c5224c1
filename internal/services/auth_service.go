package services

import (
	"fmt"
	"log"
	"time"

	"staffdir/internal/metrics"
	"staffdir/internal/models"
	"staffdir/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService validates admin credentials and issues session tokens.
// Tokens are self-contained; no session state is kept server-side.
type AuthService struct {
	loginRepo repositories.LoginRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	metrics   *metrics.Metrics
}

// NewAuthService creates a new AuthService.
func NewAuthService(loginRepo repositories.LoginRepository, jwtSecret string, m *metrics.Metrics) *AuthService {
	return &AuthService{
		loginRepo: loginRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  time.Hour,
		metrics:   m,
	}
}

// Login authenticates a username/password pair and returns a signed JWT
// on success. An unknown username and a wrong password both yield
// ErrInvalidCredentials, with no distinguishing signal.
func (s *AuthService) Login(username, password string) (string, error) {
	login, err := s.loginRepo.GetByUsername(username)
	if err != nil {
		s.metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return "", models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(login.Password), []byte(password)); err != nil {
		s.metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return "", models.ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       login.SNo,
		"username": login.Username,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
		"iat":      time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	s.metrics.LoginAttempts.WithLabelValues("success").Inc()
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims
// if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
