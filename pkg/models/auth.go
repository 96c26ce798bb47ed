package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type JWTClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	UserTier string    `json:"user_tier"` // free, premium
	jwt.RegisteredClaims
}

type AuthRequest struct {
	UserID   string `json:"user_id" validate:"required,uuid"`
	UserTier string `json:"user_tier" validate:"omitempty,oneof=free premium"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserTier  string    `json:"user_tier"`
}

type RateLimitInfo struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}
