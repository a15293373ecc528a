package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the claims carried by the auth provider's session JWT.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Sub   string `json:"sub"`
	Name  string `json:"name"`
}
