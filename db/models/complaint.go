package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ComplaintStatus string

const (
	OpenComplaint   ComplaintStatus = "open"
	ClosedComplaint ComplaintStatus = "closed"
)

// Complaint is a defect ticket raised against a building, either by hand or
// automatically from a failed inspection check.
type Complaint struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	BuildingID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"building_id"`
	InspectionID *uuid.UUID      `gorm:"type:uuid;index" json:"inspection_id"`
	EquipmentID  *uuid.UUID      `gorm:"type:uuid;index" json:"equipment_id"`
	Description  string          `gorm:"type:text;not null" json:"description"`
	Status       ComplaintStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	Resolution   *string         `gorm:"type:text" json:"resolution"`
	ClosedAt     *time.Time      `json:"closed_at"`

	Building *Building `gorm:"foreignKey:BuildingID" json:"building,omitempty"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Complaint) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = OpenComplaint
	}
	return nil
}
