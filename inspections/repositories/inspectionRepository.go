package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tts-guard-backend/config"
	"tts-guard-backend/db/models"
	"tts-guard-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type InspectionRepository interface {
	GetBuildingByID(tx *gorm.DB, id uuid.UUID) (*models.Building, error)
	GetBuildingEquipment(tx *gorm.DB, buildingID uuid.UUID) ([]models.Equipment, error)
	MarkEquipmentServiced(tx *gorm.DB, ids []uuid.UUID, on time.Time) error

	CreateInspection(tx *gorm.DB, inspection *models.Inspection) (*models.Inspection, error)
	GetInspectionByID(tx *gorm.DB, id uuid.UUID) (*models.Inspection, error)
	SaveInspection(tx *gorm.DB, inspection *models.Inspection) error
	GetFilteredInspections(pageSize, offset int, filters map[string]string) ([]models.Inspection, int64, error)
	MarkOverdue(tx *gorm.DB, cutoff time.Time) (int64, error)

	CreateComplaints(tx *gorm.DB, complaints []models.Complaint) error
	GetComplaintByID(tx *gorm.DB, id uuid.UUID) (*models.Complaint, error)
	SaveComplaint(tx *gorm.DB, complaint *models.Complaint) error
	GetFilteredComplaints(pageSize, offset int, filters map[string]string) ([]models.Complaint, int64, error)
}

type inspectionRepository struct {
	db *gorm.DB
}

func NewInspectionRepository(db *gorm.DB) InspectionRepository {
	return &inspectionRepository{db: db}
}

func (r *inspectionRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// GetBuildingByID returns (nil, nil) for an unknown building.
func (r *inspectionRepository) GetBuildingByID(tx *gorm.DB, id uuid.UUID) (*models.Building, error) {
	var building models.Building
	if err := r.conn(tx).First(&building, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch building: %w", err)
	}
	return &building, nil
}

func (r *inspectionRepository) GetBuildingEquipment(tx *gorm.DB, buildingID uuid.UUID) ([]models.Equipment, error) {
	var equipment []models.Equipment
	if err := r.conn(tx).Where("building_id = ?", buildingID).Find(&equipment).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch building equipment: %w", err)
	}
	return equipment, nil
}

func (r *inspectionRepository) MarkEquipmentServiced(tx *gorm.DB, ids []uuid.UUID, on time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.conn(tx).Model(&models.Equipment{}).
		Where("id IN ?", ids).
		Update("last_serviced", on).Error; err != nil {
		return fmt.Errorf("failed to update last serviced: %w", err)
	}
	return nil
}

func (r *inspectionRepository) CreateInspection(tx *gorm.DB, inspection *models.Inspection) (*models.Inspection, error) {
	if err := r.conn(tx).Create(inspection).Error; err != nil {
		config.Logger.Error("Failed to create inspection",
			zap.String("building_id", inspection.BuildingID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to create inspection: %w", err)
	}
	return inspection, nil
}

// GetInspectionByID returns (nil, nil) for an unknown inspection.
func (r *inspectionRepository) GetInspectionByID(tx *gorm.DB, id uuid.UUID) (*models.Inspection, error) {
	var inspection models.Inspection
	err := r.conn(tx).Preload("Building").Preload("Complaints").First(&inspection, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch inspection: %w", err)
	}
	return &inspection, nil
}

// SaveInspection writes the inspection's own columns; associations are left
// untouched.
func (r *inspectionRepository) SaveInspection(tx *gorm.DB, inspection *models.Inspection) error {
	if err := r.conn(tx).Omit("Building", "Complaints").Save(inspection).Error; err != nil {
		config.Logger.Error("Failed to save inspection",
			zap.String("inspection_id", inspection.ID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to save inspection: %w", err)
	}
	return nil
}

func (r *inspectionRepository) GetFilteredInspections(pageSize, offset int, filters map[string]string) ([]models.Inspection, int64, error) {
	var inspections []models.Inspection
	var total int64

	db := r.db.Model(&models.Inspection{})
	like := "LIKE"
	if r.db.Dialector.Name() == "postgres" {
		like = "ILIKE"
	}

	for key, value := range filters {
		switch key {
		case "status":
			db = db.Where("status = ?", strings.ToLower(value))
		case "building_id":
			db = db.Where("building_id = ?", value)
		case "technician":
			db = db.Where("technician "+like+" ?", "%"+value+"%")
		case "start_date":
			if d, err := utils.ParseDate(value); err == nil {
				db = db.Where("scheduled_date >= ?", utils.SQLDate(d))
			}
		case "end_date":
			if d, err := utils.ParseDate(value); err == nil {
				db = db.Where("scheduled_date < ?", utils.SQLDate(utils.AddDays(d, 1)))
			}
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count inspections: %w", err)
	}

	if err := db.Preload("Building").
		Limit(pageSize).Offset(offset).
		Order("scheduled_date DESC").Order("building_id ASC").
		Find(&inspections).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list inspections: %w", err)
	}

	return inspections, total, nil
}

// MarkOverdue flips scheduled, uncompleted inspections dated before cutoff to
// overdue and reports how many changed.
func (r *inspectionRepository) MarkOverdue(tx *gorm.DB, cutoff time.Time) (int64, error) {
	result := r.conn(tx).Model(&models.Inspection{}).
		Where("status = ? AND completed_date IS NULL AND scheduled_date < ?", models.ScheduledInspection, utils.SQLDate(cutoff)).
		Update("status", models.OverdueInspection)
	if result.Error != nil {
		config.Logger.Error("Failed to mark overdue inspections", zap.Error(result.Error))
		return 0, fmt.Errorf("failed to mark overdue inspections: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *inspectionRepository) CreateComplaints(tx *gorm.DB, complaints []models.Complaint) error {
	if len(complaints) == 0 {
		return nil
	}
	if err := r.conn(tx).Create(&complaints).Error; err != nil {
		config.Logger.Error("Failed to create complaints", zap.Int("count", len(complaints)), zap.Error(err))
		return fmt.Errorf("failed to create complaints: %w", err)
	}
	return nil
}

func (r *inspectionRepository) GetComplaintByID(tx *gorm.DB, id uuid.UUID) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := r.conn(tx).First(&complaint, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch complaint: %w", err)
	}
	return &complaint, nil
}

func (r *inspectionRepository) SaveComplaint(tx *gorm.DB, complaint *models.Complaint) error {
	if err := r.conn(tx).Omit("Building").Save(complaint).Error; err != nil {
		return fmt.Errorf("failed to save complaint: %w", err)
	}
	return nil
}

func (r *inspectionRepository) GetFilteredComplaints(pageSize, offset int, filters map[string]string) ([]models.Complaint, int64, error) {
	var complaints []models.Complaint
	var total int64

	db := r.db.Model(&models.Complaint{})
	for key, value := range filters {
		switch key {
		case "status":
			db = db.Where("status = ?", strings.ToLower(value))
		case "building_id":
			db = db.Where("building_id = ?", value)
		case "inspection_id":
			db = db.Where("inspection_id = ?", value)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count complaints: %w", err)
	}
	if err := db.Preload("Building").
		Limit(pageSize).Offset(offset).
		Order("created_at DESC").
		Find(&complaints).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list complaints: %w", err)
	}
	return complaints, total, nil
}
