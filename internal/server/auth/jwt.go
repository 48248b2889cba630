// Package auth implements the credential primitives of the session
// subsystem: JWT access tokens, refresh-secret hashing and the session
// cookie codec.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"clubtourney-server/internal/common"
	"clubtourney-server/internal/server/models"
)

// Claims are the access-token assertions. They are produced fresh on every
// mint and verified purely by signature and expiry; no server-side state.
type Claims struct {
	jwt.RegisteredClaims
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// TokenService signs and verifies short-lived access tokens with a single
// symmetric HS256 key. The key and validity are set once at construction and
// never mutated, so concurrent use needs no locking.
//
// There is intentionally no key identifier or rotation scheme.
type TokenService struct {
	secret   []byte
	validity time.Duration
}

func NewTokenService(secret []byte, validity time.Duration) *TokenService {
	return &TokenService{secret: secret, validity: validity}
}

// CreateToken mints a signed access token for the given user.
func (s *TokenService) CreateToken(userID, email string, role models.Role) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
		},
		Email: email,
		Role:  role,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// VerifyToken validates signature and expiry and returns the claims.
// Malformed, foreign-signed and expired tokens all map to
// common.ErrorUnauthorized.
func (s *TokenService) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrorUnauthorized
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, common.ErrorUnauthorized
	}

	return claims, nil
}
