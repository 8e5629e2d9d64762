package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	AdminRole      Role = "admin"
	OperationsRole Role = "operations"
	TechnicianRole Role = "technician"
	FinanceRole    Role = "finance"
)

// User is a staff account. Users are not demo data and survive a reset.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	FullName string    `gorm:"not null" json:"full_name"`
	Email    string    `gorm:"unique;not null" json:"email"`
	Password string    `json:"-"` // bcrypt hash, never serialized

	Role        Role       `gorm:"type:varchar(30);not null" json:"role"`
	Active      bool       `gorm:"default:true" json:"active"`
	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedBy string    `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
