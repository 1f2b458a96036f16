// Package jwt handles signing and validating the bearer tokens that carry
// the authenticated principal.
package jwt

import (
	"time"

	jwtstd "github.com/golang-jwt/jwt/v5"
)

// TokenError represents JWT token related errors
type TokenError string

func (e TokenError) Error() string {
	return string(e)
}

const (
	DefaultAccessTokenExpire  = time.Hour * 24
	DefaultRefreshTokenExpire = time.Hour * 24 * 7

	ErrNeedTokenProvider = TokenError("cannot sign token without token provider")
	ErrInvalidToken      = TokenError("invalid token")
	ErrTokenParsing      = TokenError("token parsing error")
)

// Token represents the token body
type Token struct {
	JTI     string         `json:"jti"`
	Payload map[string]any `json:"payload"`
	Subject string         `json:"sub"`
	Expire  time.Duration  `json:"exp"`
}

// TokenManager handles JWT token operations
type TokenManager struct {
	key string
}

// NewTokenManager creates a new TokenManager instance
func NewTokenManager(key string) *TokenManager {
	return &TokenManager{key: key}
}

func (jtm *TokenManager) validateKey() error {
	if jtm.key == "" {
		return ErrNeedTokenProvider
	}
	return nil
}

// generateToken generates a JWT token
func (jtm *TokenManager) generateToken(token *Token) (string, error) {
	if err := jtm.validateKey(); err != nil {
		return "", err
	}

	claims := jwtstd.MapClaims{
		"jti":     token.JTI,
		"sub":     token.Subject,
		"payload": token.Payload,
		"exp":     time.Now().Add(token.Expire).Unix(),
	}

	t := jwtstd.NewWithClaims(jwtstd.SigningMethodHS256, claims)
	return t.SignedString([]byte(jtm.key))
}

// GenerateAccessToken generates an access token with a default expiration of 24 hours
func (jtm *TokenManager) GenerateAccessToken(jti string, payload map[string]any) (string, error) {
	return jtm.generateToken(&Token{
		JTI:     jti,
		Payload: payload,
		Subject: "access",
		Expire:  DefaultAccessTokenExpire,
	})
}

// GenerateRefreshToken generates a refresh token with a default expiration of 7 days
func (jtm *TokenManager) GenerateRefreshToken(jti string, payload map[string]any) (string, error) {
	return jtm.generateToken(&Token{
		JTI:     jti,
		Payload: payload,
		Subject: "refresh",
		Expire:  DefaultRefreshTokenExpire,
	})
}

// ValidateToken parses and validates a signed token string.
func (jtm *TokenManager) ValidateToken(tokenString string) (*jwtstd.Token, error) {
	if err := jtm.validateKey(); err != nil {
		return nil, err
	}

	token, err := jwtstd.Parse(tokenString, func(t *jwtstd.Token) (any, error) {
		if _, ok := t.Method.(*jwtstd.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(jtm.key), nil
	})
	if err != nil {
		return nil, ErrTokenParsing
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return token, nil
}
