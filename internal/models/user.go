package models

import "time"

// Roles. Viewers may read every resource; only admins may change them.
const (
	RoleViewer = "viewer"
	RoleAdmin  = "admin"
)

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
