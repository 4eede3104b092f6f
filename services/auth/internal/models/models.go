package models

import "gorm.io/gorm"

const (
	RoleGuest      = "guest"
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleModerator  = "moderator"
	RoleSuperAdmin = "superadmin"
)

// User rows are owned by the account service; this engine only reads them.
// The soft-delete markers are maintained externally and must be honored by
// every lookup.
type User struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string         `gorm:"uniqueIndex;not null;size:50" json:"username"`
	PasswordHash string         `gorm:"not null"                 json:"-"`
	Email        string         `gorm:"not null"                 json:"email"`
	Role         string         `gorm:"not null"                 json:"role"`
	IsDeleted    bool           `gorm:"not null;default:false"   json:"-"`
	DeletedAt    gorm.DeletedAt `gorm:"index"                    json:"-"`
}
