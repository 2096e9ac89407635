package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TeacherAccount is an application login for planning staff. It is distinct
// from the school-portal session the clients hold; the portal flow never
// reaches this service.
type TeacherAccount struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Name         string     `db:"name" json:"name"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Active       bool       `db:"active" json:"active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// TokenClaims carries the JWT payload for authenticated teachers.
type TokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}
