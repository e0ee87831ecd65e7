package models

import "time"

// Role constants for API users.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an API account. Password holds the bcrypt hash and is never
// serialized.
type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
