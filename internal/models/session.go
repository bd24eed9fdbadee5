package models

import "time"

// Session represents an authenticated admin session
type Session struct {
	ID        int64     `json:"id"`
	AdminID   int64     `json:"admin_id"`
	TokenHash string    `json:"-"` // Never expose in JSON
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Current   bool      `json:"current,omitempty"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
