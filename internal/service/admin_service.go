package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"mbti-bot/internal/repository"
)

var (
	ErrAdminDisabled      = errors.New("admin access not configured")
	ErrAdminUnauthorized  = errors.New("admin credentials invalid")
	ErrAdminTokenInvalid  = errors.New("admin token invalid")
	ErrDeleteCountInvalid = errors.New("delete count must be between 1 and the retention limit")
)

// AdminClaims son los claims del token de administrador.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminService guards the administrative history-deletion command: bcrypt
// password check, short-lived bearer token, and count validation against the
// retention limit.
type AdminService struct {
	passwordHash []byte
	secret       []byte
	tokenTTL     time.Duration
	retention    int
	store        repository.AssessmentStore
	issuer       string
}

func NewAdminService(passwordHash, secret string, tokenTTL time.Duration, retention int, store repository.AssessmentStore) *AdminService {
	if tokenTTL <= 0 {
		tokenTTL = 30 * time.Minute
	}
	if retention <= 0 {
		retention = repository.DefaultRetention
	}
	return &AdminService{
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		tokenTTL:     tokenTTL,
		retention:    retention,
		store:        store,
		issuer:       "mbti-bot",
	}
}

// Authenticate valida la password y emite un token de administrador.
func (s *AdminService) Authenticate(password string) (string, error) {
	if len(s.passwordHash) == 0 || len(s.secret) == 0 {
		return "", ErrAdminDisabled
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrAdminUnauthorized
	}
	now := time.Now().UTC()
	claims := AdminClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken valida un token de administrador.
func (s *AdminService) ParseToken(tokenStr string) error {
	if len(s.secret) == 0 || strings.TrimSpace(tokenStr) == "" {
		return ErrAdminTokenInvalid
	}
	var claims AdminClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrAdminTokenInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.Role != "admin" {
		return ErrAdminTokenInvalid
	}
	return nil
}

// DeleteHistory borra las `count` entradas mas recientes del usuario.
// Devuelve cuantas filas se eliminaron realmente (puede ser menos que count).
func (s *AdminService) DeleteHistory(ctx context.Context, userID string, count int) (int64, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, ErrInvalidUser
	}
	if count < 1 || count > s.retention {
		return 0, ErrDeleteCountInvalid
	}
	return s.store.DeleteRecent(ctx, userID, count)
}
