package repositories

import (
	"strings"

	"tts-guard-backend/config"
	"tts-guard-backend/db/models"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"
)

type buildingDocument struct {
	ID           string `json:"id"`
	ClientID     string `json:"client_id"`
	ClientName   string `json:"client_name"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	Area         string `json:"area"`
	BuildingType string `json:"building_type"`
}

func toBuildingDocument(building models.Building) buildingDocument {
	doc := buildingDocument{
		ID:           building.ID.String(),
		ClientID:     building.ClientID.String(),
		Name:         building.Name,
		Address:      building.Address,
		BuildingType: string(building.BuildingType),
	}
	if building.Area != nil {
		doc.Area = *building.Area
	}
	if building.Client != nil {
		doc.ClientName = building.Client.Name
	}
	return doc
}

func (r *BleveRepository) IndexSingleBuilding(building models.Building) error {
	if err := r.indexer.IndexDocument(buildingsIndex, building.ID.String(), toBuildingDocument(building)); err != nil {
		config.Logger.Error("Failed to index building into Bleve",
			zap.Error(err),
			zap.String("building_id", building.ID.String()))
		return err
	}
	return nil
}

func (r *BleveRepository) IndexExistingBuildings(buildings []models.Building) error {
	if len(buildings) == 0 {
		config.Logger.Info("No buildings to index into Bleve")
		return nil
	}

	docs := make(map[string]interface{}, len(buildings))
	for _, building := range buildings {
		docs[building.ID.String()] = toBuildingDocument(building)
	}
	if err := r.indexer.BulkIndexDocuments(buildingsIndex, docs); err != nil {
		config.Logger.Error("Failed to bulk index buildings into Bleve", zap.Error(err))
		return err
	}
	return nil
}

// SearchBuildings matches on name, address, area and client name. area and
// buildingType narrow the result when set.
func (r *BleveRepository) SearchBuildings(queryString, area, buildingType string) (*bleve.SearchResult, error) {
	queryString = strings.TrimSpace(queryString)

	var text query.Query
	if queryString != "" {
		text = textQuery(queryString, "name", "address", "area", "client_name")
	}
	return r.indexer.SearchIndex(buildingsIndex, filtered(text, map[string]string{
		"area":          area,
		"building_type": buildingType,
	}), searchSize)
}
