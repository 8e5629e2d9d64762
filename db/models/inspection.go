package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InspectionStatus string

const (
	ScheduledInspection InspectionStatus = "scheduled"
	CompletedInspection InspectionStatus = "completed"
	OverdueInspection   InspectionStatus = "overdue"
)

// EquipmentCheck is one line of an inspection checklist.
type EquipmentCheck struct {
	EquipmentID *uuid.UUID `json:"equipment_id,omitempty"`
	Item        string     `json:"item"`
	Passed      bool       `json:"passed"`
	Remarks     string     `json:"remarks,omitempty"`
}

// Inspection is a scheduled or completed site visit.
//
// The stored status is refreshed by the overdue sweep; reads that must be
// exact (the overdue list) derive overdue from the dates instead.
type Inspection struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key;" json:"id"`
	BuildingID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"building_id"`
	ScheduledDate time.Time        `gorm:"type:date;not null;index" json:"scheduled_date"`
	CompletedDate *time.Time       `gorm:"type:date" json:"completed_date"`
	Technician    string           `gorm:"not null" json:"technician"`
	Status        InspectionStatus `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	Notes         string           `gorm:"type:text" json:"notes"`
	Checks        datatypes.JSON   `json:"checks,omitempty"`

	Building   *Building   `gorm:"foreignKey:BuildingID" json:"building,omitempty"`
	Complaints []Complaint `gorm:"foreignKey:InspectionID" json:"complaints,omitempty"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i *Inspection) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Status == "" {
		i.Status = ScheduledInspection
	}
	return nil
}

func (i *Inspection) IsCompleted() bool {
	return i.Status == CompletedInspection || i.CompletedDate != nil
}

// EquipmentChecks decodes the stored checklist.
func (i *Inspection) EquipmentChecks() ([]EquipmentCheck, error) {
	if len(i.Checks) == 0 {
		return nil, nil
	}
	var checks []EquipmentCheck
	if err := json.Unmarshal(i.Checks, &checks); err != nil {
		return nil, err
	}
	return checks, nil
}

func (i *Inspection) SetEquipmentChecks(checks []EquipmentCheck) error {
	raw, err := json.Marshal(checks)
	if err != nil {
		return err
	}
	i.Checks = datatypes.JSON(raw)
	return nil
}
