package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int        `bun:",pk,nullzero" json:"id"`
	CreatedAt    time.Time  `bun:",nullzero" json:"created_at"`
	Username     string     `bun:",notnull" json:"username"`
	PasswordHash string     `bun:",notnull" json:"-"` // Never expose password hash
	Email        *string    `json:"email,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	IsActive     bool       `bun:",notnull" json:"is_active"`
}

type Admin struct {
	bun.BaseModel `bun:"table:admins,alias:a"`

	ID           int        `bun:",pk,nullzero" json:"id"`
	CreatedAt    time.Time  `bun:",nullzero" json:"created_at"`
	Username     string     `bun:",notnull" json:"username"`
	PasswordHash string     `bun:",notnull" json:"-"`
	Email        *string    `json:"email,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}
