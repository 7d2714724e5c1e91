package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Caller is the authenticated identity of a request. A nil *Caller means anonymous.
type Caller struct {
	ID       string
	Username string
	Role     string
}

// IsAdmin reports whether the caller carries the admin role.
func (c *Caller) IsAdmin() bool {
	return c != nil && c.Role == "admin"
}

// Claims mirrors the access tokens minted by the identity provider.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
	Type     string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier checks HS256 access tokens. It never issues them.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify parses tokenString and returns the caller it identifies.
func (v *TokenVerifier) Verify(tokenString string) (*Caller, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	// refresh tokens must not be usable as access tokens
	if claims.Type != "" && claims.Type != "access" {
		return nil, fmt.Errorf("%w: token type %q", ErrInvalidToken, claims.Type)
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, fmt.Errorf("%w: user_id is not a uuid", ErrInvalidToken)
	}

	role := claims.Role
	if role == "" {
		role = "user"
	}

	return &Caller{
		ID:       claims.UserID,
		Username: claims.Username,
		Role:     role,
	}, nil
}
