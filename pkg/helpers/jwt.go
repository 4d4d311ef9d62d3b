package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken is returned for any verification failure: bad signature,
// malformed token, or expiry. Callers surface it as unauthorized.
var ErrInvalidToken = errors.New("invalid token")

// JWTManager mints and verifies the signed access/refresh tokens. Both token
// kinds share one HMAC secret and are distinguished by the "type" claim.
// Token-version ("ver") is a snapshot of the user's revocation counter; the
// auth service compares it against the stored value on every use.
type JWTManager struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewJWTManager(secret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		Secret:     []byte(secret),
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}
}

type Claims struct {
	TokenType    string `json:"type"`
	TokenVersion string `json:"ver"`
	jwt.RegisteredClaims
}

// CreateAccessToken signs a short-lived access token for the subject.
func (m *JWTManager) CreateAccessToken(sub, tokenVersion string) (string, time.Time, error) {
	exp := time.Now().Add(m.AccessTTL)
	claims := &Claims{
		TokenType:    TokenTypeAccess,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// CreateRefreshToken signs a long-lived refresh token carrying a fresh jti.
// The jti is what the rotation logic pins server-side to detect reuse.
func (m *JWTManager) CreateRefreshToken(sub, tokenVersion string) (token string, jti string, exp time.Time, err error) {
	exp = time.Now().Add(m.RefreshTTL)
	jti = uuid.NewString()
	claims := &Claims{
		TokenType:    TokenTypeRefresh,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString(m.Secret)
	return token, jti, exp, err
}

// Decode verifies signature and expiry and returns the claims. The type and
// version checks stay with the caller since they need store context.
func (m *JWTManager) Decode(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
