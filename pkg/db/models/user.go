package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/spicepalace/spicepalace-backend/pkg/enums"
)

// User covers both auth mechanisms: OTP-only customers have no password hash,
// password accounts carry an argon2id hash. The first user ever created
// becomes the admin.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string         `gorm:"column:email;not null" json:"email"`
	PasswordHash *string        `gorm:"column:password_hash" json:"-"`
	FullName     *string        `gorm:"column:full_name" json:"full_name,omitempty"`
	Address      *string        `gorm:"column:address" json:"address,omitempty"`
	City         *string        `gorm:"column:city" json:"city,omitempty"`
	PostalCode   *string        `gorm:"column:postal_code" json:"postal_code,omitempty"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null;default:'user'" json:"role"`
	IsVerified   bool           `gorm:"column:is_verified;not null;default:false" json:"is_verified"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
