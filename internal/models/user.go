package models

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors a row in the Supabase profiles table. Auth itself lives in
// Supabase; this is the guild-facing profile the settings pages edit.
type User struct {
	ID         uuid.UUID         `db:"id" json:"id"`
	Username   string            `db:"username" json:"username"`
	FullName   string            `db:"fullname" json:"fullname"`
	Email      string            `db:"email" json:"email" `
	Password   string            `db:"password" json:"password" `
	IsVerified bool              `db:"is_verified" json:"is_verified"`
	Bio        string            `db:"bio" json:"bio"`
	// Role is the guild rank: "member", "officer" or "admin". Admins create
	// and delete events and read the audit log.
	Role      string            `db:"role" json:"role"`
	Settings  map[string]string `db:"settings" json:"settings"`
	AvatarURL string            `db:"avatar_url" json:"avatar_url"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
}
