package models

import (
	"strings"
	"time"
)

// User represents a row in the PostgreSQL users table.
type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // bcrypt hash, never serialized
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegisterRequest is the JSON body for POST /api/users.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,min=3,max=50"`
	Email    string `json:"email"    validate:"required,min=5,max=255,email"`
	Password string `json:"password" validate:"required,min=8,max=255"`
	IsAdmin  *bool  `json:"isAdmin"`
}

func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
}

// LoginRequest is the JSON body for POST /api/auth.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

// NormalizeEmail is the form emails are stored and looked up in. Addresses
// differing only in case belong to the same user.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token string `json:"token"`
}

// RegisterResponse is the public view of a newly registered user.
type RegisterResponse struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
