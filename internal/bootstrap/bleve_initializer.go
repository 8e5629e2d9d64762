package bootstrap

import (
	"context"
	"fmt"

	bleveRepositories "tts-guard-backend/bleve/repositories"
	"tts-guard-backend/config"
	"tts-guard-backend/db/models"

	"go.uber.org/zap"
)

// DirectorySource lists the records the search index mirrors.
type DirectorySource interface {
	GetAllClients() ([]models.Client, error)
	GetAllBuildings() ([]models.Building, error)
}

// IndexBleveData drops every index and rebuilds it from the store.
func IndexBleveData(
	ctx context.Context,
	source DirectorySource,
	bleveRepo bleveRepositories.BleveRepositoryInterface,
) error {
	if err := bleveRepo.DeleteAllIndices(ctx); err != nil {
		return fmt.Errorf("delete indices: %w", err)
	}

	clients, err := source.GetAllClients()
	if err != nil {
		config.Logger.Error("Error fetching clients for Bleve indexing", zap.Error(err))
		return err
	}
	if err := bleveRepo.IndexExistingClients(clients); err != nil {
		return fmt.Errorf("index clients: %w", err)
	}

	buildings, err := source.GetAllBuildings()
	if err != nil {
		config.Logger.Error("Error fetching buildings for Bleve indexing", zap.Error(err))
		return err
	}
	if err := bleveRepo.IndexExistingBuildings(buildings); err != nil {
		return fmt.Errorf("index buildings: %w", err)
	}

	config.Logger.Info("Search index rebuilt",
		zap.Int("clients", len(clients)),
		zap.Int("buildings", len(buildings)))
	return nil
}
