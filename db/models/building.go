package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BuildingType string

const (
	ResidentialBuilding BuildingType = "RESIDENTIAL"
	CommercialBuilding  BuildingType = "COMMERCIAL"
	MixedUseBuilding    BuildingType = "MIXED_USE"
	IndustrialBuilding  BuildingType = "INDUSTRIAL"
)

// Building is a managed site. Every building belongs to exactly one client.
type Building struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`

	Name         string       `gorm:"not null" json:"name"`
	Address      string       `gorm:"not null" json:"address"`
	Area         *string      `gorm:"index" json:"area"` // district, e.g. Al Reem Island
	BuildingType BuildingType `gorm:"type:varchar(30)" json:"building_type"`
	Floors       int          `json:"floors"`

	// Kept in step with the equipment table by the repository.
	EquipmentCount int `gorm:"default:0" json:"equipment_count"`

	// Relationships
	Client    *Client     `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Contracts []Contract  `gorm:"foreignKey:BuildingID" json:"contracts,omitempty"`
	Equipment []Equipment `gorm:"foreignKey:BuildingID" json:"equipment,omitempty"`

	// Audit fields
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b *Building) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
