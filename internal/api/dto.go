package api

import (
	"github.com/norland/catena/internal/catalog"
	"github.com/norland/catena/internal/catalogservice"
	"github.com/norland/catena/internal/models"
)

// Template is the template payload used in requests and responses
// (aliased from the domain layer).
type Template = models.Template

// TemplateListResponse wraps paginated template listings.
type TemplateListResponse struct {
	Templates []models.Template `json:"templates"`
	Total     int               `json:"total"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []catalog.SearchResult `json:"results"`
}

// CategoriesResponse wraps the distinct catalog categories.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// MergeResponse is the report returned by a merge run (aliased from
// the domain layer).
type MergeResponse = catalogservice.RunReport
