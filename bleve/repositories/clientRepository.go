package repositories

import (
	"strings"

	"tts-guard-backend/config"
	"tts-guard-backend/db/models"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"
)

type clientDocument struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	PhoneNumber   string `json:"phone_number"`
	City          string `json:"city"`
}

func toClientDocument(client models.Client) clientDocument {
	doc := clientDocument{
		ID:          client.ID.String(),
		Name:        client.Name,
		Email:       client.Email,
		PhoneNumber: client.PhoneNumber,
		City:        client.City,
	}
	if client.ContactPerson != nil {
		doc.ContactPerson = *client.ContactPerson
	}
	return doc
}

func (r *BleveRepository) IndexSingleClient(client models.Client) error {
	if err := r.indexer.IndexDocument(clientsIndex, client.ID.String(), toClientDocument(client)); err != nil {
		config.Logger.Error("Failed to index client into Bleve",
			zap.Error(err),
			zap.String("client_id", client.ID.String()))
		return err
	}
	return nil
}

func (r *BleveRepository) IndexExistingClients(clients []models.Client) error {
	if len(clients) == 0 {
		config.Logger.Info("No clients to index into Bleve")
		return nil
	}

	docs := make(map[string]interface{}, len(clients))
	for _, client := range clients {
		docs[client.ID.String()] = toClientDocument(client)
	}
	if err := r.indexer.BulkIndexDocuments(clientsIndex, docs); err != nil {
		config.Logger.Error("Failed to bulk index clients into Bleve", zap.Error(err))
		return err
	}
	return nil
}

func (r *BleveRepository) SearchClients(queryString, city string) (*bleve.SearchResult, error) {
	queryString = strings.TrimSpace(queryString)

	var text query.Query
	if queryString != "" {
		text = textQuery(queryString, "name", "contact_person", "email")
	}
	return r.indexer.SearchIndex(clientsIndex, filtered(text, map[string]string{"city": city}), searchSize)
}
