package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mbti-bot/internal/domain"
)

var (
	ErrSessionTokenInvalid = errors.New("session token invalid")
	ErrSessionTokenExpired = errors.New("session token expired")
)

// SessionClaims serializa el estado de una sesion en curso dentro del token
// de continuacion.
type SessionClaims struct {
	Username      string             `json:"username,omitempty"`
	Contact       string             `json:"contact,omitempty"`
	Index         int                `json:"index"`
	TraitScores   domain.TraitScores `json:"scores"`
	SubtypeScores []float64          `json:"at_scores"`
	jwt.RegisteredClaims
}

// SessionTokenCodec issues and parses the opaque continuation token attached
// to every prompt. Sessions have no server-side row; an abandoned run simply
// lets its token expire.
type SessionTokenCodec struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

func NewSessionTokenCodec(secret string, ttl time.Duration) *SessionTokenCodec {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionTokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "mbti-bot",
	}
}

// Issue firma el estado de la sesion como JWT HS256.
func (c *SessionTokenCodec) Issue(session domain.Session) (string, error) {
	if len(c.secret) == 0 {
		return "", ErrSessionTokenInvalid
	}
	now := time.Now().UTC()
	claims := SessionClaims{
		Username:      session.Username,
		Contact:       session.Contact,
		Index:         session.Index,
		TraitScores:   session.TraitScores,
		SubtypeScores: session.SubtypeScores,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Issuer:    c.issuer,
			Subject:   session.OwnerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Parse valida el token y reconstruye la sesion.
func (c *SessionTokenCodec) Parse(tokenStr string) (domain.Session, error) {
	if len(c.secret) == 0 || strings.TrimSpace(tokenStr) == "" {
		return domain.Session{}, ErrSessionTokenInvalid
	}
	var claims SessionClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrSessionTokenInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Session{}, ErrSessionTokenExpired
		}
		return domain.Session{}, ErrSessionTokenInvalid
	}
	if !token.Valid || claims.Subject == "" {
		return domain.Session{}, ErrSessionTokenInvalid
	}
	session := domain.Session{
		ID:            claims.ID,
		OwnerID:       claims.Subject,
		Username:      claims.Username,
		Contact:       claims.Contact,
		Index:         claims.Index,
		TraitScores:   claims.TraitScores,
		SubtypeScores: claims.SubtypeScores,
	}
	if session.TraitScores == nil {
		session.TraitScores = domain.NewTraitScores()
	}
	return session, nil
}
