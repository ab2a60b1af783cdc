package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role is the closed set of authorization tiers. Dispatch on a role handles
// all three values explicitly instead of falling through on unknown strings.
type Role string

const (
	RoleUser  Role = "user"
	RoleRider Role = "rider"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleRider, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	gorm.Model
	Name         string `gorm:"column:name" json:"name"`
	Email        string `gorm:"column:email;unique;not null" json:"email"`
	Password     string `gorm:"-:all" json:"-"` // transient, never persisted
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	PhotoURL     string `gorm:"column:photo_url" json:"photo_url"`
	Role         string `gorm:"column:role;not null;default:'user'" json:"role"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
