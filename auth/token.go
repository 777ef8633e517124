// Package auth resolves request credentials to users: it issues and
// verifies access tokens and manages passwords.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"potluck/apperr"
	"potluck/models"
	"potluck/utils"
)

const issuer = "potluck"

// Claims carried in an access token. The user id travels as "id".
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type TokenService struct {
	secret []byte
	ttl    time.Duration
	clock  utils.Clock
}

func NewTokenService(secret string, ttl time.Duration, clock utils.Clock) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, clock: clock}
}

// Issue signs an HS256 access token for u.
func (s *TokenService) Issue(u *models.User) (string, time.Time, error) {
	now := s.clock.Now()
	expires := now.Add(s.ttl)
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// Verify parses token and returns the session it grants. Every failure is
// reported as Unauthenticated.
func (s *TokenService) Verify(token string) (*models.Session, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		msg := "invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "token expired"
		}
		return nil, apperr.Wrap(apperr.Unauthenticated, msg, err)
	}
	if claims.UserID == "" {
		return nil, apperr.New(apperr.Unauthenticated, "invalid token")
	}
	return &models.Session{
		UserID:    claims.UserID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
