package repositories_test

import (
	"context"
	"testing"

	"tts-guard-backend/bleve/repositories"
	bleveindex "tts-guard-backend/bleve/services"
	"tts-guard-backend/db/models"
	"tts-guard-backend/utils"

	"github.com/google/uuid"
)

func newRepo(t *testing.T) *repositories.BleveRepository {
	t.Helper()
	indexer := bleveindex.NewIndexingService(nil, t.TempDir())
	t.Cleanup(func() { indexer.Close() })
	return repositories.NewBleveRepository(indexer)
}

func TestSearchClients(t *testing.T) {
	repo := newRepo(t)

	reem := models.Client{ID: uuid.New(), Name: "Al Reem Properties", Email: "fm@alreem.ae", City: "Abu Dhabi"}
	marina := models.Client{ID: uuid.New(), Name: "Marina Towers Management", City: "Abu Dhabi", ContactPerson: utils.StringPtr("Fatima Al Mansoori")}
	dubai := models.Client{ID: uuid.New(), Name: "Creek Marina Holdings", City: "Dubai"}
	if err := repo.IndexExistingClients([]models.Client{reem, marina}); err != nil {
		t.Fatalf("IndexExistingClients: %v", err)
	}
	if err := repo.IndexSingleClient(dubai); err != nil {
		t.Fatalf("IndexSingleClient: %v", err)
	}

	tests := []struct {
		name  string
		q     string
		city  string
		want  []uuid.UUID
		first uuid.UUID
	}{
		{"word match", "reem", "", []uuid.UUID{reem.ID}, reem.ID},
		{"typo", "marna", "Abu Dhabi", []uuid.UUID{marina.ID}, marina.ID},
		{"contact person", "fatima", "", []uuid.UUID{marina.ID}, marina.ID},
		{"city filter only", "", "Dubai", []uuid.UUID{dubai.ID}, dubai.ID},
	}
	for _, tt := range tests {
		res, err := repo.SearchClients(tt.q, tt.city)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if int(res.Total) != len(tt.want) {
			t.Fatalf("%s: got %d hits, want %d", tt.name, res.Total, len(tt.want))
		}
		if res.Hits[0].ID != tt.first.String() {
			t.Fatalf("%s: top hit %s, want %s", tt.name, res.Hits[0].ID, tt.first)
		}
	}

	all, err := repo.SearchClients("", "")
	if err != nil {
		t.Fatalf("match all: %v", err)
	}
	if all.Total != 3 {
		t.Fatalf("empty query should match all clients, got %d", all.Total)
	}
}

func TestSearchBuildingsAndReindex(t *testing.T) {
	repo := newRepo(t)
	owner := &models.Client{ID: uuid.New(), Name: "Khalifa City Estates"}

	villas := models.Building{ID: uuid.New(), ClientID: owner.ID, Client: owner, Name: "KC Villas", Address: "Street 12, Khalifa City", Area: utils.StringPtr("Khalifa City"), BuildingType: models.ResidentialBuilding}
	office := models.Building{ID: uuid.New(), ClientID: owner.ID, Client: owner, Name: "KC Business Centre", Address: "Street 4, Khalifa City", Area: utils.StringPtr("Khalifa City"), BuildingType: models.CommercialBuilding}
	if err := repo.IndexExistingBuildings([]models.Building{villas, office}); err != nil {
		t.Fatalf("IndexExistingBuildings: %v", err)
	}

	res, err := repo.SearchBuildings("khalifa", "", "COMMERCIAL")
	if err != nil {
		t.Fatalf("SearchBuildings: %v", err)
	}
	if res.Total != 1 || res.Hits[0].ID != office.ID.String() {
		t.Fatalf("type filter: got %d hits", res.Total)
	}
	if res.Hits[0].Fields["client_name"] != "Khalifa City Estates" {
		t.Fatalf("stored client name missing: %v", res.Hits[0].Fields)
	}

	if err := repo.DeleteAllIndices(context.Background()); err != nil {
		t.Fatalf("DeleteAllIndices: %v", err)
	}
	after, err := repo.SearchBuildings("villas", "", "")
	if err != nil {
		t.Fatalf("search after delete: %v", err)
	}
	if after.Total != 0 {
		t.Fatalf("deleted index still returns %d hits", after.Total)
	}
}
