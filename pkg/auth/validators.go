package auth

import "time"

// LoginPayload represents the login request body.
type LoginPayload struct {
	Username string `json:"username" mod:"trim" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordPayload is all-required, and the confirmation must match.
type ChangePasswordPayload struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// MeResponse represents the current principal.
type MeResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Kind     string `json:"kind"`
}

type LoginResponse struct {
	MeResponse
	Token string `json:"token"`
}

// SessionResponse mirrors the admin session file. Only logged_in is set when
// nobody is signed in.
type SessionResponse struct {
	LoggedIn  bool       `json:"logged_in"`
	AdminID   int        `json:"admin_id,omitempty"`
	Username  string     `json:"username,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}
