package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tts-guard-backend/apperrors"
	"tts-guard-backend/config"
	"tts-guard-backend/db/models"
	"tts-guard-backend/inspections/repositories"
	"tts-guard-backend/internal/events"
	"tts-guard-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// ContractExpirer is run by the overdue sweep alongside the inspection
// status refresh.
type ContractExpirer interface {
	ExpireEndedContracts(ctx context.Context, today time.Time) (int64, error)
}

type ScheduleRequest struct {
	BuildingID    uuid.UUID
	ScheduledDate time.Time
	Technician    string
	Notes         string
}

type SubmitResult struct {
	Inspection *models.Inspection `json:"inspection"`
	Complaints []models.Complaint `json:"complaints"`
}

type SweepResult struct {
	MarkedOverdue    int64 `json:"marked_overdue"`
	ContractsExpired int64 `json:"contracts_expired"`
}

type InspectionService struct {
	db        *gorm.DB
	repo      repositories.InspectionRepository
	policy    config.Policy
	cache     utils.Cache
	publisher events.Publisher
	contracts ContractExpirer
	today     func() time.Time
}

func NewInspectionService(
	db *gorm.DB,
	repo repositories.InspectionRepository,
	policy config.Policy,
	cache utils.Cache,
	publisher events.Publisher,
	contracts ContractExpirer,
) *InspectionService {
	if cache == nil {
		cache = utils.NopCache{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &InspectionService{
		db:        db,
		repo:      repo,
		policy:    policy,
		cache:     cache,
		publisher: publisher,
		contracts: contracts,
		today:     utils.Today,
	}
}

// WithClock replaces the source of "today".
func (s *InspectionService) WithClock(today func() time.Time) *InspectionService {
	s.today = today
	return s
}

func (s *InspectionService) changed(ctx context.Context, e events.Event) {
	utils.InvalidateQuietly(ctx, s.cache, utils.DashboardResource)
	s.publisher.Publish(e)
}

// NormalizeTechnician collapses whitespace and title-cases the name so the
// same person is not listed twice under different spellings.
func NormalizeTechnician(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	return cases.Title(language.English).String(strings.ToLower(name))
}

func (s *InspectionService) validateDate(date time.Time) (time.Time, error) {
	if date.IsZero() {
		return time.Time{}, apperrors.InvalidInput("scheduled date is required")
	}
	date = utils.NormalizeDate(date)
	if !s.policy.AllowPastScheduling && date.Before(s.today()) {
		return time.Time{}, apperrors.InvalidInput("scheduled date %s is in the past", utils.SQLDate(date))
	}
	return date, nil
}

// ScheduleInspection books a visit for an existing building.
func (s *InspectionService) ScheduleInspection(ctx context.Context, req ScheduleRequest, actor string) (*models.Inspection, error) {
	technician := NormalizeTechnician(req.Technician)
	if technician == "" {
		return nil, apperrors.InvalidInput("technician is required")
	}
	date, err := s.validateDate(req.ScheduledDate)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	building, err := s.repo.GetBuildingByID(db, req.BuildingID)
	if err != nil {
		return nil, err
	}
	if building == nil {
		return nil, apperrors.NotFound("building %s", req.BuildingID)
	}

	inspection := &models.Inspection{
		BuildingID:    building.ID,
		ScheduledDate: date,
		Technician:    technician,
		Status:        models.ScheduledInspection,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedBy:     actor,
	}
	if _, err := s.repo.CreateInspection(db, inspection); err != nil {
		return nil, err
	}
	inspection.Building = building

	config.Logger.Info("Inspection scheduled",
		zap.String("inspection_id", inspection.ID.String()),
		zap.String("building", building.Name),
		zap.String("date", utils.SQLDate(date)))
	s.changed(ctx, events.New(events.InspectionScheduled, inspection))
	return inspection, nil
}

// RescheduleInspection moves an open inspection. An empty technician keeps
// the current one.
func (s *InspectionService) RescheduleInspection(ctx context.Context, id uuid.UUID, date time.Time, technician string) (*models.Inspection, error) {
	newDate, err := s.validateDate(date)
	if err != nil {
		return nil, err
	}

	var inspection *models.Inspection
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inspection, err = s.repo.GetInspectionByID(tx, id)
		if err != nil {
			return err
		}
		if inspection == nil {
			return apperrors.NotFound("inspection %s", id)
		}
		if inspection.IsCompleted() {
			return apperrors.StateConflict("inspection %s is already completed", id)
		}

		inspection.ScheduledDate = newDate
		if name := NormalizeTechnician(technician); name != "" {
			inspection.Technician = name
		}
		inspection.Status = models.ScheduledInspection
		if newDate.Before(utils.AddDays(s.today(), -s.policy.OverdueGraceDays)) {
			inspection.Status = models.OverdueInspection
		}
		return s.repo.SaveInspection(tx, inspection)
	})
	if err != nil {
		return nil, err
	}

	s.changed(ctx, events.New(events.InspectionRescheduled, inspection))
	return inspection, nil
}

func validateChecks(checks []models.EquipmentCheck, equipment []models.Equipment) ([]models.EquipmentCheck, error) {
	if len(checks) == 0 {
		return nil, apperrors.InvalidInput("at least one equipment check is required")
	}

	owned := make(map[uuid.UUID]models.Equipment, len(equipment))
	for _, e := range equipment {
		owned[e.ID] = e
	}

	out := make([]models.EquipmentCheck, 0, len(checks))
	for i, check := range checks {
		check.Item = strings.TrimSpace(check.Item)
		check.Remarks = strings.TrimSpace(check.Remarks)
		if check.EquipmentID != nil {
			e, ok := owned[*check.EquipmentID]
			if !ok {
				return nil, apperrors.InvalidInput("check %d references equipment %s not installed in this building", i+1, *check.EquipmentID)
			}
			if check.Item == "" {
				check.Item = fmt.Sprintf("%s (%s)", e.EquipmentType, e.Location)
			}
		}
		if check.Item == "" {
			return nil, apperrors.InvalidInput("check %d has no item name", i+1)
		}
		out = append(out, check)
	}
	return out, nil
}

func complaintText(check models.EquipmentCheck) string {
	text := "Failed inspection check: " + check.Item
	if check.Remarks != "" {
		text += " - " + check.Remarks
	}
	return text
}

// SubmitInspectionResult completes an inspection. In the same transaction it
// stores the checks, opens one complaint per failed check (when the policy
// says so) and stamps last_serviced on the equipment that was checked.
func (s *InspectionService) SubmitInspectionResult(ctx context.Context, id uuid.UUID, checks []models.EquipmentCheck, notes string, actor string) (*SubmitResult, error) {
	result := &SubmitResult{}
	today := s.today()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inspection, err := s.repo.GetInspectionByID(tx, id)
		if err != nil {
			return err
		}
		if inspection == nil {
			return apperrors.NotFound("inspection %s", id)
		}
		if inspection.IsCompleted() {
			return apperrors.StateConflict("inspection %s is already completed", id)
		}

		equipment, err := s.repo.GetBuildingEquipment(tx, inspection.BuildingID)
		if err != nil {
			return err
		}
		valid, err := validateChecks(checks, equipment)
		if err != nil {
			return err
		}

		if err := inspection.SetEquipmentChecks(valid); err != nil {
			return fmt.Errorf("encode checks: %w", err)
		}
		inspection.Status = models.CompletedInspection
		inspection.CompletedDate = &today
		if n := strings.TrimSpace(notes); n != "" {
			inspection.Notes = n
		}
		if err := s.repo.SaveInspection(tx, inspection); err != nil {
			return err
		}

		var serviced []uuid.UUID
		var complaints []models.Complaint
		for _, check := range valid {
			if check.EquipmentID != nil {
				serviced = append(serviced, *check.EquipmentID)
			}
			if check.Passed || !s.policy.ComplaintOnFailedCheck {
				continue
			}
			complaints = append(complaints, models.Complaint{
				BuildingID:   inspection.BuildingID,
				InspectionID: &inspection.ID,
				EquipmentID:  check.EquipmentID,
				Description:  complaintText(check),
				Status:       models.OpenComplaint,
				CreatedBy:    actor,
			})
		}
		if err := s.repo.MarkEquipmentServiced(tx, serviced, today); err != nil {
			return err
		}
		if err := s.repo.CreateComplaints(tx, complaints); err != nil {
			return err
		}

		inspection.Complaints = complaints
		result.Inspection = inspection
		result.Complaints = complaints
		return nil
	})
	if err != nil {
		return nil, err
	}

	config.Logger.Info("Inspection result submitted",
		zap.String("inspection_id", id.String()),
		zap.Int("checks", len(checks)),
		zap.Int("complaints", len(result.Complaints)))
	s.changed(ctx, events.New(events.InspectionCompleted, result.Inspection))
	for i := range result.Complaints {
		s.publisher.Publish(events.New(events.ComplaintOpened, result.Complaints[i]))
	}
	return result, nil
}

func (s *InspectionService) ListInspections(pageSize, offset int, filters map[string]string) ([]models.Inspection, int64, error) {
	return s.repo.GetFilteredInspections(pageSize, offset, filters)
}

func (s *InspectionService) GetInspection(ctx context.Context, id uuid.UUID) (*models.Inspection, error) {
	inspection, err := s.repo.GetInspectionByID(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if inspection == nil {
		return nil, apperrors.NotFound("inspection %s", id)
	}
	return inspection, nil
}

// SweepOverdue refreshes stored statuses: open inspections past the grace
// period become overdue and ended contracts expire.
func (s *InspectionService) SweepOverdue(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	today := s.today()

	marked, err := s.repo.MarkOverdue(s.db.WithContext(ctx), utils.AddDays(today, -s.policy.OverdueGraceDays))
	if err != nil {
		return res, err
	}
	res.MarkedOverdue = marked

	if s.contracts != nil {
		expired, err := s.contracts.ExpireEndedContracts(ctx, today)
		if err != nil {
			return res, err
		}
		res.ContractsExpired = expired
	}

	if marked > 0 {
		s.changed(ctx, events.New(events.InspectionsOverdue, res))
	}
	config.Logger.Info("Overdue sweep finished",
		zap.Int64("marked_overdue", res.MarkedOverdue),
		zap.Int64("contracts_expired", res.ContractsExpired))
	return res, nil
}
