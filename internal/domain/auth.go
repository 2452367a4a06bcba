package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims — claims токена оператора консоли.
type CustomClaims struct {
	Operator string `json:"operator"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // Всегда "Bearer"
	ExpiresIn   int64  `json:"expires_in"`
}
