package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleStaff    UserRole = "staff"
	RoleAdmin    UserRole = "admin"
)

// Valid reports whether r is one of the known roles
func (r UserRole) Valid() bool {
	switch r {
	case RoleCustomer, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// IsStaff is true for roles allowed into the staff dashboards
func (r UserRole) IsStaff() bool {
	return r == RoleStaff || r == RoleAdmin
}

type User struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	FirstName       string     `json:"first_name" gorm:"size:100;not null"`
	LastName        string     `json:"last_name" gorm:"size:100;not null"`
	Email           string     `json:"email" gorm:"size:191;uniqueIndex;not null"`
	Phone           string     `json:"phone" gorm:"size:30"`
	Address         string     `json:"address"`
	PasswordHash    string     `json:"-" gorm:"not null"`
	Role            UserRole   `json:"role" gorm:"size:20;not null;default:'customer'"`
	IsActive        bool       `json:"is_active" gorm:"not null"`
	RememberToken   string     `json:"-" gorm:"size:64;index"`
	RememberExpires *time.Time `json:"-"`
	ResetToken      string     `json:"-" gorm:"size:64;index"`
	ResetExpires    *time.Time `json:"-"`
	LastLoginAt     *time.Time `json:"last_login_at"`
	LastLoginIP     string     `json:"last_login_ip,omitempty" gorm:"size:45"`
	LoginCount      int        `json:"login_count" gorm:"not null;default:0"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
