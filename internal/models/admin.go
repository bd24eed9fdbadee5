package models

import "time"

// AdminAccount is a portal administrator stored in the credential store
type AdminAccount struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"` // Never expose in JSON
	Email        string     `json:"email,omitempty"`
	FullName     string     `json:"full_name,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// Profile returns the minimal public view of the account
func (a *AdminAccount) Profile() AdminProfile {
	return AdminProfile{
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
		FullName: a.FullName,
	}
}

// AdminProfile is what login and /auth/me hand back to the browser
type AdminProfile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// CreateAdminRequest represents the request body for bootstrapping an admin
type CreateAdminRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	SecretKey string `json:"secretKey,omitempty"`
}
