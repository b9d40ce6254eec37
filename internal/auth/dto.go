// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type RegisterRequest struct {
	Email        string `json:"email"         validate:"required,email,max=255"`
	Password     string `json:"password"      validate:"required,min=8,max=128"`
	BusinessName string `json:"business_name" validate:"required,min=1,max=200"`
}

type AuthResponse struct {
	SessionToken string    `json:"session_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	TenantID     string    `json:"tenant_id"`
}

type MeResponse struct {
	Email      string `json:"email"`
	TenantID   string `json:"tenant_id"`
	TenantName string `json:"tenant_name"`
	Plan       string `json:"plan"`
	Active     bool   `json:"active"`
}
