package services

import (
	"context"
	"strings"
	"time"

	"tts-guard-backend/apperrors"
	"tts-guard-backend/config"
	"tts-guard-backend/db/models"
	"tts-guard-backend/internal/events"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ComplaintRequest struct {
	BuildingID   uuid.UUID
	InspectionID *uuid.UUID
	EquipmentID  *uuid.UUID
	Description  string
}

// CreateComplaint raises a ticket by hand. Any inspection or equipment it
// references must belong to the same building.
func (s *InspectionService) CreateComplaint(ctx context.Context, req ComplaintRequest, actor string) (*models.Complaint, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, apperrors.InvalidInput("description is required")
	}

	db := s.db.WithContext(ctx)
	building, err := s.repo.GetBuildingByID(db, req.BuildingID)
	if err != nil {
		return nil, err
	}
	if building == nil {
		return nil, apperrors.NotFound("building %s", req.BuildingID)
	}

	if req.InspectionID != nil {
		inspection, err := s.repo.GetInspectionByID(db, *req.InspectionID)
		if err != nil {
			return nil, err
		}
		if inspection == nil {
			return nil, apperrors.NotFound("inspection %s", *req.InspectionID)
		}
		if inspection.BuildingID != building.ID {
			return nil, apperrors.InvalidInput("inspection %s belongs to another building", inspection.ID)
		}
	}
	if req.EquipmentID != nil {
		equipment, err := s.repo.GetBuildingEquipment(db, building.ID)
		if err != nil {
			return nil, err
		}
		found := false
		for _, e := range equipment {
			if e.ID == *req.EquipmentID {
				found = true
				break
			}
		}
		if !found {
			return nil, apperrors.InvalidInput("equipment %s is not installed in this building", *req.EquipmentID)
		}
	}

	batch := []models.Complaint{{
		BuildingID:   building.ID,
		InspectionID: req.InspectionID,
		EquipmentID:  req.EquipmentID,
		Description:  description,
		Status:       models.OpenComplaint,
		CreatedBy:    actor,
	}}
	if err := s.repo.CreateComplaints(db, batch); err != nil {
		return nil, err
	}
	created := &batch[0]
	created.Building = building

	s.changed(ctx, events.New(events.ComplaintOpened, created))
	return created, nil
}

// CloseComplaint resolves an open complaint.
func (s *InspectionService) CloseComplaint(ctx context.Context, id uuid.UUID, resolution string) (*models.Complaint, error) {
	var complaint *models.Complaint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		complaint, err = s.repo.GetComplaintByID(tx, id)
		if err != nil {
			return err
		}
		if complaint == nil {
			return apperrors.NotFound("complaint %s", id)
		}
		if complaint.Status == models.ClosedComplaint {
			return apperrors.StateConflict("complaint %s is already closed", id)
		}

		now := time.Now()
		complaint.Status = models.ClosedComplaint
		complaint.ClosedAt = &now
		if r := strings.TrimSpace(resolution); r != "" {
			complaint.Resolution = &r
		}
		return s.repo.SaveComplaint(tx, complaint)
	})
	if err != nil {
		return nil, err
	}

	config.Logger.Info("Complaint closed", zap.String("complaint_id", id.String()))
	s.changed(ctx, events.New(events.ComplaintClosed, complaint))
	return complaint, nil
}

func (s *InspectionService) ListComplaints(pageSize, offset int, filters map[string]string) ([]models.Complaint, int64, error) {
	return s.repo.GetFilteredComplaints(pageSize, offset, filters)
}
