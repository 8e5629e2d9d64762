package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is a building owner or facility manager holding AMC contracts.
type Client struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	Name          string    `gorm:"not null;index" json:"name"`
	ContactPerson *string   `json:"contact_person"`
	Email         string    `json:"email"`
	PhoneNumber   string    `json:"phone_number"`
	Address       *string   `json:"address"`
	City          string    `gorm:"default:'Abu Dhabi'" json:"city"`

	// Relationships
	Buildings []Building `gorm:"foreignKey:ClientID" json:"buildings,omitempty"`
	Invoices  []Invoice  `gorm:"foreignKey:ClientID" json:"invoices,omitempty"`

	// Metadata
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
