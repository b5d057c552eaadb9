package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
	RoleAdmin   Role = "admin"
)

// Account is managed by the identity side of the platform and read here for capability checks.
type Account struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email" gorm:"not null;uniqueIndex"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null;default:'student'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// CanReview reports whether the account holds tutor or admin capability.
func (a *Account) CanReview() bool {
	return a.Role == RoleTutor || a.Role == RoleAdmin
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
