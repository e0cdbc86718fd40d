// Package dto contains Data Transfer Objects for API request and response structures
package dto

import "time"

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64" example:"ic101"`
	Password string `json:"password" validate:"required,min=1,max=100" example:"password1"`
}

// LoginResponse represents the successful login payload
type LoginResponse struct {
	AccessToken string    `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType   string    `json:"token_type" example:"Bearer"`
	ExpiresIn   int       `json:"expires_in" example:"43200"`
	ExpiresAt   time.Time `json:"expires_at" example:"2024-01-15T16:30:00Z"`
	User        UserInfo  `json:"user"`
}

// UserInfo represents the signed-in user
type UserInfo struct {
	UserID   string `json:"user_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Username string `json:"username" example:"ic101"`
	FullName string `json:"full_name,omitempty" example:"Somchai Jaidee"`
	Role     string `json:"role" example:"ic"`
	HubName  string `json:"hub_name,omitempty" example:"Hub A"`
}
