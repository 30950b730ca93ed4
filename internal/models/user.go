package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RolePatient UserRole = "patient"
	RoleDoctor  UserRole = "doctor"
	RoleAdmin   UserRole = "admin-sup"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// User mirrors an account held by the identity provider. Rows are upserted
// from token claims the first time a user calls the API.
type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"fullName" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"index;size:255"`
	Role     UserRole `json:"role" gorm:"not null;size:20;index" validate:"required,user_role"`

	Specialization *string `json:"specialization,omitempty" gorm:"size:100"`
	PhoneNumber    *string `json:"phoneNumber,omitempty" gorm:"size:20"`

	IsActive    bool       `json:"isActive" gorm:"default:true"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
