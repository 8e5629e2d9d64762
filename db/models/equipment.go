package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EquipmentType string

const (
	FireExtinguisher  EquipmentType = "FIRE_EXTINGUISHER"
	FireAlarmPanel    EquipmentType = "FIRE_ALARM_PANEL"
	SmokeDetector     EquipmentType = "SMOKE_DETECTOR"
	SprinklerSystem   EquipmentType = "SPRINKLER_SYSTEM"
	FireHoseReel      EquipmentType = "FIRE_HOSE_REEL"
	EmergencyLighting EquipmentType = "EMERGENCY_LIGHTING"
	FirePump          EquipmentType = "FIRE_PUMP"
)

// Equipment is a fire-safety asset installed in a building.
type Equipment struct {
	ID            uuid.UUID     `gorm:"type:uuid;primary_key;" json:"id"`
	BuildingID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"building_id"`
	EquipmentType EquipmentType `gorm:"type:varchar(40);not null" json:"equipment_type"`
	Location      string        `json:"location"`
	SerialNumber  *string       `gorm:"index" json:"serial_number"`
	LastServiced  *time.Time    `gorm:"type:date" json:"last_serviced"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName keeps the table name singular-uncountable.
func (Equipment) TableName() string {
	return "equipment"
}

func (e *Equipment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
