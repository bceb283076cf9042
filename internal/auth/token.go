package auth

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"quiz-room-service/internal/domain"
)

const adminSubject = "admin"

// Manager checks the shared admin password and issues HS256 tokens for it.
type Manager struct {
	password string
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewManager(password, secret string, ttl time.Duration) *Manager {
	return &Manager{password: password, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Login returns a signed admin token when password matches.
func (m *Manager) Login(password string) (string, error) {
	if m.password == "" || subtle.ConstantTimeCompare([]byte(password), []byte(m.password)) != 1 {
		return "", domain.ErrInvalidPassword
	}
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(m.now()),
		ExpiresAt: jwt.NewNumericDate(m.now().Add(m.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify accepts tokens issued by Login that have not expired.
func (m *Manager) Verify(tokenString string) error {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid || claims.Subject != adminSubject {
		return domain.ErrInvalidPassword
	}
	return nil
}
