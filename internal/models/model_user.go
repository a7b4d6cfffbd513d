package models

import (
	"time"

	"github.com/eduforge/coursepay/pkg/types"
)

type User struct {
	ID           string         `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Name         string         `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Email        string         `gorm:"column:email;type:varchar(128);not null;uniqueIndex" json:"email"`
	PasswordHash string         `gorm:"column:password_hash;type:varchar(128);not null" json:"-"`
	Role         types.UserRole `gorm:"column:role;type:varchar(32);not null;default:'student'" json:"role"`
	CPF          string         `gorm:"column:cpf;type:varchar(16);uniqueIndex" json:"cpf"`
	Profession   string         `gorm:"column:profession;type:varchar(128)" json:"profession"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (User) TableName() string { return "app_user" }
