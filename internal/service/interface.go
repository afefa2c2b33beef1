package service

import (
	"context"
	"encoding/json"

	"github.com/yogeshjoga/elastic-search-hints-api/internal/domain"
)

// SearchService defines the gateway's business logic.
type SearchService interface {
	// Health never fails; backend trouble degrades to an unhealthy status.
	Health(ctx context.Context) *domain.HealthStatus
	Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error)
	Autocomplete(ctx context.Context, req *domain.AutocompleteRequest) ([]string, error)
	SearchByPromptOrQuery(ctx context.Context, req *domain.PromptOrQueryRequest) (*domain.SearchResponse, error)
	Indices(ctx context.Context) ([]string, error)
	Mapping(ctx context.Context, index string) (json.RawMessage, error)
}
