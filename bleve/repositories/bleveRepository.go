package repositories

import (
	"context"

	bleveindex "tts-guard-backend/bleve/services"
	"tts-guard-backend/db/models"

	"github.com/blevesearch/bleve/v2"
)

const (
	clientsIndex   = "clients"
	buildingsIndex = "buildings"
	searchSize     = 20
)

type BleveRepository struct {
	indexer bleveindex.IndexingServiceInterface
}

type BleveRepositoryInterface interface {
	DeleteAllIndices(ctx context.Context) error

	IndexSingleClient(client models.Client) error
	IndexExistingClients(clients []models.Client) error
	SearchClients(queryString, city string) (*bleve.SearchResult, error)

	IndexSingleBuilding(building models.Building) error
	IndexExistingBuildings(buildings []models.Building) error
	SearchBuildings(queryString, area, buildingType string) (*bleve.SearchResult, error)
}

func NewBleveRepository(indexer bleveindex.IndexingServiceInterface) *BleveRepository {
	return &BleveRepository{indexer: indexer}
}

func (r *BleveRepository) DeleteAllIndices(ctx context.Context) error {
	return r.indexer.DeleteAllIndices()
}
