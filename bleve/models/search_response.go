package models

import "github.com/blevesearch/bleve/v2"

type SearchHit struct {
	ID     string                 `json:"id"`
	Score  float64                `json:"score"`
	Fields map[string]interface{} `json:"fields,omitempty"`
}

type SearchResponse struct {
	Results []SearchHit `json:"results"`
	Total   uint64      `json:"total"`
}

// FromResult flattens a bleve result into the API shape.
func FromResult(result *bleve.SearchResult) SearchResponse {
	resp := SearchResponse{Results: make([]SearchHit, 0, len(result.Hits)), Total: result.Total}
	for _, hit := range result.Hits {
		resp.Results = append(resp.Results, SearchHit{ID: hit.ID, Score: hit.Score, Fields: hit.Fields})
	}
	return resp
}
