package repository

import (
	"context"
	"encoding/json"

	"github.com/yogeshjoga/elastic-search-hints-api/internal/domain"
)

// SearchRepository defines the operations the gateway needs from
// Elasticsearch. All query building and response decoding lives behind it.
type SearchRepository interface {
	// Ping checks backend reachability.
	Ping(ctx context.Context) error
	// ClusterInfo returns the cluster name from the info endpoint.
	ClusterInfo(ctx context.Context) (*domain.ClusterInfo, error)
	// ClusterHealth returns the cluster health status string.
	ClusterHealth(ctx context.Context) (string, error)
	// Search runs the fuzzy multi-field query with highlighting and,
	// when withSuggest is set, term suggesters on both text fields.
	// An empty fields list means the default boosted field set.
	Search(ctx context.Context, query string, size int, fields []string, withSuggest bool) (*domain.EngineResult, error)
	// Complete runs the completion suggester against the dedicated
	// suggestion field.
	Complete(ctx context.Context, prefix string, size int) ([]string, error)
	// PrefixSearch is the autocomplete fallback: case-insensitive prefix
	// matching on the two text fields, returning source documents.
	PrefixSearch(ctx context.Context, prefix string, size int) ([]domain.PromptDoc, error)
	// MatchPromptOrQuery runs the bool-should match over prompt and query.
	MatchPromptOrQuery(ctx context.Context, query string, size int) (*domain.EngineResult, error)
	// TopScore returns the highest score for the prompt-or-query match,
	// or 0 when nothing matches.
	TopScore(ctx context.Context, query string) (float64, error)
	// Indices lists all index names known to the backend.
	Indices(ctx context.Context) ([]string, error)
	// Mapping returns the raw field mapping for one index.
	Mapping(ctx context.Context, index string) (json.RawMessage, error)
}
