package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the closed set of user roles. Write capability is ordered:
// admin > moderator > user.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModerator || r == RoleAdmin
}

// Level returns the superiority rank of the role for write-capability checks.
func (r Role) Level() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleModerator:
		return 2
	default:
		return 1
	}
}

type User struct {
	ID               string    `gorm:"primaryKey;type:uuid" json:"id"`
	Username         string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email            string    `gorm:"uniqueIndex;not null" json:"email"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Bio              string    `gorm:"type:text" json:"bio"`
	Role             Role      `gorm:"default:'user';not null" json:"role"`
	Superuser        bool      `gorm:"default:false;not null" json:"-"`
	ConfirmationCode string    `gorm:"size:64" json:"-"` // last issued signup code
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// EffectiveRole treats superusers as admins regardless of the stored role.
func (u *User) EffectiveRole() Role {
	if u.Superuser {
		return RoleAdmin
	}
	if !u.Role.Valid() {
		return RoleUser
	}
	return u.Role
}

// BeforeCreate hook to set UUID before creating a User
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// BeforeSave pins the stored role to admin for superusers.
func (u *User) BeforeSave(tx *gorm.DB) (err error) {
	if u.Superuser {
		u.Role = RoleAdmin
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return
}

func (User) TableName() string {
	return "users"
}
