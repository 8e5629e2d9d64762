package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ContractStatus string

const (
	ActiveContract  ContractStatus = "active"
	ExpiredContract ContractStatus = "expired"
)

// Contract is an Annual Maintenance Contract covering one building.
// A building holds at most one active contract at a time.
type Contract struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	BuildingID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"building_id"`
	ContractNumber string          `gorm:"uniqueIndex;not null" json:"contract_number"`
	AnnualValue    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"annual_value"`
	StartDate      time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate        time.Time       `gorm:"type:date;not null" json:"end_date"`
	Status         ContractStatus  `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`

	Building *Building `gorm:"foreignKey:BuildingID" json:"building,omitempty"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Contract) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = ActiveContract
	}
	return nil
}
