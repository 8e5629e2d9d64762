package services

import (
	"context"
	"fmt"
	"time"

	"tts-guard-backend/apperrors"
	"tts-guard-backend/clients/repositories"
	"tts-guard-backend/config"
	"tts-guard-backend/db/models"
	"tts-guard-backend/internal/events"
	"tts-guard-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DirectoryIndexer keeps the search index in step with directory writes.
type DirectoryIndexer interface {
	IndexSingleClient(client models.Client) error
	IndexSingleBuilding(building models.Building) error
}

type DirectoryService struct {
	db        *gorm.DB
	repo      repositories.ClientRepository
	cache     utils.Cache
	publisher events.Publisher
	indexer   DirectoryIndexer
}

// NewDirectoryService wires the directory. cache, publisher and indexer may be
// nil.
func NewDirectoryService(db *gorm.DB, repo repositories.ClientRepository, cache utils.Cache, publisher events.Publisher, indexer DirectoryIndexer) *DirectoryService {
	if cache == nil {
		cache = utils.NopCache{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &DirectoryService{db: db, repo: repo, cache: cache, publisher: publisher, indexer: indexer}
}

func (s *DirectoryService) afterChange(ctx context.Context, what string, id uuid.UUID) {
	utils.InvalidateQuietly(ctx, s.cache, utils.DashboardResource)
	s.publisher.Publish(events.New(events.DirectoryChanged, map[string]string{"entity": what, "id": id.String()}))
}

func (s *DirectoryService) CreateClient(ctx context.Context, client *models.Client, actor string) (*models.Client, error) {
	if msg := ValidateClient(client); msg != "" {
		return nil, apperrors.InvalidInput("%s", msg)
	}
	client.ID = uuid.Nil
	client.CreatedBy = actor

	created, err := s.repo.CreateClient(s.db.WithContext(ctx), client)
	if err != nil {
		return nil, err
	}

	if s.indexer != nil {
		if err := s.indexer.IndexSingleClient(*created); err != nil {
			config.Logger.Error("Error indexing client", zap.String("client_id", created.ID.String()), zap.Error(err))
		}
	}
	s.afterChange(ctx, "client", created.ID)
	return created, nil
}

func (s *DirectoryService) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	client, err := s.repo.GetClientByID(id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperrors.NotFound("client %s", id)
	}
	return client, nil
}

func (s *DirectoryService) ListClients(pageSize, offset int, filters map[string]string) ([]models.Client, int64, error) {
	return s.repo.GetFilteredClients(pageSize, offset, filters)
}

// CreateBuilding registers a building under an existing client.
func (s *DirectoryService) CreateBuilding(ctx context.Context, building *models.Building, actor string) (*models.Building, error) {
	if building.ClientID == uuid.Nil {
		return nil, apperrors.InvalidInput("client_id is required")
	}
	if msg := ValidateBuilding(building); msg != "" {
		return nil, apperrors.InvalidInput("%s", msg)
	}

	client, err := s.repo.GetClientByID(building.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperrors.NotFound("client %s", building.ClientID)
	}

	building.ID = uuid.Nil
	building.EquipmentCount = 0
	building.CreatedBy = actor
	if building.BuildingType == "" {
		building.BuildingType = models.CommercialBuilding
	}

	created, err := s.repo.CreateBuilding(s.db.WithContext(ctx), building)
	if err != nil {
		return nil, err
	}
	created.Client = client

	if s.indexer != nil {
		if err := s.indexer.IndexSingleBuilding(*created); err != nil {
			config.Logger.Error("Error indexing building", zap.String("building_id", created.ID.String()), zap.Error(err))
		}
	}
	s.afterChange(ctx, "building", created.ID)
	return created, nil
}

func (s *DirectoryService) ListBuildings(pageSize, offset int, filters map[string]string) ([]models.Building, int64, error) {
	return s.repo.GetFilteredBuildings(pageSize, offset, filters)
}

// AddEquipment records a new asset and increments the building's equipment
// count in the same transaction.
func (s *DirectoryService) AddEquipment(ctx context.Context, buildingID uuid.UUID, equipment *models.Equipment) (*models.Equipment, error) {
	if msg := ValidateEquipment(equipment); msg != "" {
		return nil, apperrors.InvalidInput("%s", msg)
	}

	var created *models.Equipment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		building, err := s.repo.GetBuildingByID(tx, buildingID)
		if err != nil {
			return err
		}
		if building == nil {
			return apperrors.NotFound("building %s", buildingID)
		}

		equipment.ID = uuid.Nil
		equipment.BuildingID = buildingID
		created, err = s.repo.AddEquipment(tx, equipment)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterChange(ctx, "equipment", created.ID)
	return created, nil
}

func (s *DirectoryService) ListEquipment(ctx context.Context, buildingID uuid.UUID) ([]models.Equipment, error) {
	building, err := s.repo.GetBuildingByID(s.db.WithContext(ctx), buildingID)
	if err != nil {
		return nil, err
	}
	if building == nil {
		return nil, apperrors.NotFound("building %s", buildingID)
	}
	return s.repo.ListEquipment(buildingID)
}

// CreateContract opens an AMC for a building. A building may hold only one
// active contract; expire the current one first.
func (s *DirectoryService) CreateContract(ctx context.Context, contract *models.Contract, actor string) (*models.Contract, error) {
	if contract.BuildingID == uuid.Nil {
		return nil, apperrors.InvalidInput("building_id is required")
	}
	contract.StartDate = utils.NormalizeDate(contract.StartDate)
	contract.EndDate = utils.NormalizeDate(contract.EndDate)
	if msg := ValidateContract(contract); msg != "" {
		return nil, apperrors.InvalidInput("%s", msg)
	}

	contract.ID = uuid.Nil
	contract.CreatedBy = actor
	contract.Status = models.ActiveContract
	if contract.EndDate.Before(utils.Today()) {
		contract.Status = models.ExpiredContract
	}

	var created *models.Contract
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		building, err := s.repo.GetBuildingByID(tx, contract.BuildingID)
		if err != nil {
			return err
		}
		if building == nil {
			return apperrors.NotFound("building %s", contract.BuildingID)
		}

		if contract.Status == models.ActiveContract {
			current, err := s.repo.GetActiveContractForBuilding(tx, contract.BuildingID)
			if err != nil {
				return err
			}
			if current != nil {
				return apperrors.StateConflict("building %s already has active contract %s", building.Name, current.ContractNumber)
			}
		}

		created, err = s.repo.CreateContract(tx, contract)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterChange(ctx, "contract", created.ID)
	return created, nil
}

func (s *DirectoryService) ExpireContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract *models.Contract
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		contract, err = s.repo.GetContractByID(tx, id)
		if err != nil {
			return err
		}
		if contract == nil {
			return apperrors.NotFound("contract %s", id)
		}
		if contract.Status == models.ExpiredContract {
			return apperrors.StateConflict("contract %s is already expired", contract.ContractNumber)
		}
		if err := s.repo.ExpireContract(tx, id); err != nil {
			return err
		}
		contract.Status = models.ExpiredContract
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InvalidateQuietly(ctx, s.cache, utils.DashboardResource)
	s.publisher.Publish(events.New(events.ContractExpired, contract))
	return contract, nil
}

// ExpireEndedContracts is run by the daily sweep.
func (s *DirectoryService) ExpireEndedContracts(ctx context.Context, today time.Time) (int64, error) {
	n, err := s.repo.ExpireEndedContracts(s.db.WithContext(ctx), today)
	if err != nil {
		return 0, fmt.Errorf("expire contracts: %w", err)
	}
	if n > 0 {
		config.Logger.Info("Expired ended contracts", zap.Int64("count", n))
		utils.InvalidateQuietly(ctx, s.cache, utils.DashboardResource)
		s.publisher.Publish(events.New(events.ContractExpired, map[string]int64{"count": n}))
	}
	return n, nil
}
