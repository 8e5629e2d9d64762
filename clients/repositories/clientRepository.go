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

type ClientRepository interface {
	CreateClient(tx *gorm.DB, client *models.Client) (*models.Client, error)
	GetClientByID(id uuid.UUID) (*models.Client, error)
	GetFilteredClients(pageSize, offset int, filters map[string]string) ([]models.Client, int64, error)
	GetAllClients() ([]models.Client, error)

	CreateBuilding(tx *gorm.DB, building *models.Building) (*models.Building, error)
	GetBuildingByID(tx *gorm.DB, id uuid.UUID) (*models.Building, error)
	GetFilteredBuildings(pageSize, offset int, filters map[string]string) ([]models.Building, int64, error)
	GetAllBuildings() ([]models.Building, error)

	AddEquipment(tx *gorm.DB, equipment *models.Equipment) (*models.Equipment, error)
	ListEquipment(buildingID uuid.UUID) ([]models.Equipment, error)

	CreateContract(tx *gorm.DB, contract *models.Contract) (*models.Contract, error)
	GetContractByID(tx *gorm.DB, id uuid.UUID) (*models.Contract, error)
	GetActiveContractForBuilding(tx *gorm.DB, buildingID uuid.UUID) (*models.Contract, error)
	ExpireContract(tx *gorm.DB, id uuid.UUID) error
	ExpireEndedContracts(tx *gorm.DB, today time.Time) (int64, error)
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{
		db: db,
	}
}

func (r *clientRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// likeOperator picks a case-insensitive LIKE that works on the active driver.
func likeOperator(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "ILIKE"
	}
	return "LIKE"
}

func (r *clientRepository) CreateClient(tx *gorm.DB, client *models.Client) (*models.Client, error) {
	if err := r.conn(tx).Create(client).Error; err != nil {
		config.Logger.Error("Failed to create client", zap.String("name", client.Name), zap.Error(err))
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// GetClientByID loads the client with its buildings and their contracts.
// It returns (nil, nil) when the client does not exist.
func (r *clientRepository) GetClientByID(id uuid.UUID) (*models.Client, error) {
	var client models.Client
	err := r.db.
		Preload("Buildings", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Buildings.Contracts", func(db *gorm.DB) *gorm.DB { return db.Order("start_date DESC") }).
		First(&client, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		config.Logger.Error("Failed to fetch client", zap.String("client_id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}
	return &client, nil
}

// GetFilteredClients retrieves clients with filtering and pagination
func (r *clientRepository) GetFilteredClients(pageSize, offset int, filters map[string]string) ([]models.Client, int64, error) {
	var clients []models.Client
	var total int64

	db := r.db.Model(&models.Client{})
	like := likeOperator(r.db)

	for key, value := range filters {
		switch key {
		case "name":
			db = db.Where("name "+like+" ?", "%"+value+"%")
		case "city":
			db = db.Where("city "+like+" ?", "%"+value+"%")
		case "email":
			db = db.Where("email "+like+" ?", "%"+value+"%")
		case "start_date":
			if d, err := utils.ParseDate(value); err == nil {
				db = db.Where("created_at >= ?", d.UTC())
			}
		case "end_date":
			if d, err := utils.ParseDate(value); err == nil {
				db = db.Where("created_at < ?", d.AddDate(0, 0, 1).UTC())
			}
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	if err := db.Limit(pageSize).Offset(offset).Order("name ASC").Find(&clients).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}

	return clients, total, nil
}

func (r *clientRepository) GetAllClients() ([]models.Client, error) {
	var clients []models.Client
	if err := r.db.Order("name ASC").Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch all clients: %w", err)
	}
	return clients, nil
}

func (r *clientRepository) CreateBuilding(tx *gorm.DB, building *models.Building) (*models.Building, error) {
	if err := r.conn(tx).Create(building).Error; err != nil {
		config.Logger.Error("Failed to create building",
			zap.String("client_id", building.ClientID.String()),
			zap.String("name", building.Name),
			zap.Error(err))
		return nil, fmt.Errorf("failed to create building: %w", err)
	}
	return building, nil
}

// GetBuildingByID returns (nil, nil) when the building does not exist.
func (r *clientRepository) GetBuildingByID(tx *gorm.DB, id uuid.UUID) (*models.Building, error) {
	var building models.Building
	err := r.conn(tx).Preload("Client").First(&building, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch building: %w", err)
	}
	return &building, nil
}

func (r *clientRepository) GetFilteredBuildings(pageSize, offset int, filters map[string]string) ([]models.Building, int64, error) {
	var buildings []models.Building
	var total int64

	db := r.db.Model(&models.Building{})
	like := likeOperator(r.db)

	for key, value := range filters {
		switch key {
		case "client_id":
			db = db.Where("client_id = ?", value)
		case "area":
			db = db.Where("area "+like+" ?", "%"+value+"%")
		case "name":
			db = db.Where("name "+like+" ?", "%"+value+"%")
		case "building_type":
			db = db.Where("building_type = ?", strings.ToUpper(value))
		case "contract_status":
			sub := r.db.Model(&models.Contract{}).Select("building_id").Where("status = ?", models.ActiveContract)
			if value == string(models.ActiveContract) {
				db = db.Where("id IN (?)", sub)
			} else {
				db = db.Where("id NOT IN (?)", sub)
			}
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count buildings: %w", err)
	}

	if err := db.Preload("Client").Limit(pageSize).Offset(offset).Order("name ASC").Find(&buildings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list buildings: %w", err)
	}

	return buildings, total, nil
}

func (r *clientRepository) GetAllBuildings() ([]models.Building, error) {
	var buildings []models.Building
	if err := r.db.Preload("Client").Order("name ASC").Find(&buildings).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch all buildings: %w", err)
	}
	return buildings, nil
}

// AddEquipment inserts the equipment and bumps the building's counter. Pass a
// transaction so both writes land together.
func (r *clientRepository) AddEquipment(tx *gorm.DB, equipment *models.Equipment) (*models.Equipment, error) {
	db := r.conn(tx)
	if err := db.Create(equipment).Error; err != nil {
		config.Logger.Error("Failed to add equipment",
			zap.String("building_id", equipment.BuildingID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to add equipment: %w", err)
	}

	if err := db.Model(&models.Building{}).
		Where("id = ?", equipment.BuildingID).
		UpdateColumn("equipment_count", gorm.Expr("equipment_count + ?", 1)).Error; err != nil {
		return nil, fmt.Errorf("failed to update equipment count: %w", err)
	}
	return equipment, nil
}

func (r *clientRepository) ListEquipment(buildingID uuid.UUID) ([]models.Equipment, error) {
	var equipment []models.Equipment
	if err := r.db.Where("building_id = ?", buildingID).Order("equipment_type, location").Find(&equipment).Error; err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	return equipment, nil
}

func (r *clientRepository) CreateContract(tx *gorm.DB, contract *models.Contract) (*models.Contract, error) {
	if err := r.conn(tx).Create(contract).Error; err != nil {
		config.Logger.Error("Failed to create contract",
			zap.String("building_id", contract.BuildingID.String()),
			zap.String("contract_number", contract.ContractNumber),
			zap.Error(err))
		return nil, fmt.Errorf("failed to create contract: %w", err)
	}
	return contract, nil
}

func (r *clientRepository) GetContractByID(tx *gorm.DB, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if err := r.conn(tx).First(&contract, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch contract: %w", err)
	}
	return &contract, nil
}

func (r *clientRepository) GetActiveContractForBuilding(tx *gorm.DB, buildingID uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	err := r.conn(tx).
		Where("building_id = ? AND status = ?", buildingID, models.ActiveContract).
		First(&contract).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch active contract: %w", err)
	}
	return &contract, nil
}

func (r *clientRepository) ExpireContract(tx *gorm.DB, id uuid.UUID) error {
	if err := r.conn(tx).Model(&models.Contract{}).
		Where("id = ?", id).
		Update("status", models.ExpiredContract).Error; err != nil {
		return fmt.Errorf("failed to expire contract: %w", err)
	}
	return nil
}

// ExpireEndedContracts flips every active contract whose end date is before
// today and returns how many changed.
func (r *clientRepository) ExpireEndedContracts(tx *gorm.DB, today time.Time) (int64, error) {
	result := r.conn(tx).Model(&models.Contract{}).
		Where("status = ? AND end_date < ?", models.ActiveContract, utils.SQLDate(today)).
		Update("status", models.ExpiredContract)
	if result.Error != nil {
		config.Logger.Error("Failed to expire ended contracts", zap.Error(result.Error))
		return 0, fmt.Errorf("failed to expire ended contracts: %w", result.Error)
	}
	return result.RowsAffected, nil
}
