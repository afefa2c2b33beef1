package service

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yogeshjoga/elastic-search-hints-api/internal/domain"
	"github.com/yogeshjoga/elastic-search-hints-api/internal/repository"
	"github.com/yogeshjoga/elastic-search-hints-api/pkg/log"
)

const (
	defaultSearchSize  = 10
	maxSearchSize      = 100
	defaultSuggestSize = 5
	maxSuggestSize     = 10

	// Hard cap on /search suggestions regardless of suggester output.
	maxSuggestions = 10
)

type searchServiceImpl struct {
	repo repository.SearchRepository
}

// NewSearchService creates a new search service. A nil repository means no
// backend is configured; every search operation then reports
// ErrBackendUnavailable while Health degrades gracefully.
func NewSearchService(repo repository.SearchRepository) SearchService {
	return &searchServiceImpl{repo: repo}
}

func (s *searchServiceImpl) Health(ctx context.Context) *domain.HealthStatus {
	unhealthy := &domain.HealthStatus{
		Status:                 "unhealthy",
		ElasticsearchConnected: false,
	}

	if s.repo == nil {
		return unhealthy
	}

	info, err := s.repo.ClusterInfo(ctx)
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("cluster info probe failed")
		return unhealthy
	}

	health, err := s.repo.ClusterHealth(ctx)
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("cluster health probe failed")
		return unhealthy
	}

	return &domain.HealthStatus{
		Status:                 "healthy",
		ElasticsearchConnected: true,
		ClusterName:            info.ClusterName,
		ClusterHealth:          health,
	}
}

func (s *searchServiceImpl) Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	if s.repo == nil {
		return nil, domain.ErrBackendUnavailable
	}

	size := clamp(req.Size, defaultSearchSize, maxSearchSize)
	fields := splitFields(req.Fields)

	result, err := s.repo.Search(ctx, req.Query, size, fields, req.Suggest)
	if err != nil {
		return nil, err
	}

	resp := engineResponse(result)
	if req.Suggest {
		resp.Suggestions = dedupeCap(result.SuggestTerms, maxSuggestions)
	}

	return resp, nil
}

func (s *searchServiceImpl) Autocomplete(ctx context.Context, req *domain.AutocompleteRequest) ([]string, error) {
	if s.repo == nil {
		return nil, domain.ErrBackendUnavailable
	}

	size := clamp(req.Size, defaultSuggestSize, maxSuggestSize)

	// Tier 1: completion suggester. A failure here (typically the suggest
	// field not being configured on the index) is a designed degradation,
	// not an error: fall through to the prefix query.
	terms, err := s.repo.Complete(ctx, req.Query, size)
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("completion suggester failed, falling back to prefix query")
	}
	if len(terms) > 0 {
		return dedupeCap(terms, size), nil
	}

	// Tier 2: prefix-match fallback over the two text fields.
	docs, err := s.repo.PrefixSearch(ctx, req.Query, size)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(docs)*2)
	for _, doc := range docs {
		if doc.Prompt != "" {
			values = append(values, doc.Prompt)
		}
		if doc.Query != "" {
			values = append(values, doc.Query)
		}
	}

	return dedupeCap(values, size), nil
}

func (s *searchServiceImpl) SearchByPromptOrQuery(ctx context.Context, req *domain.PromptOrQueryRequest) (*domain.SearchResponse, error) {
	if s.repo == nil {
		return nil, domain.ErrBackendUnavailable
	}
	if err := s.repo.Ping(ctx); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("elasticsearch ping failed")
		return nil, domain.ErrBackendUnavailable
	}

	size := clamp(req.Size, defaultSearchSize, maxSearchSize)

	// The ranked query and the top-score probe are independent reads of
	// the same index state; run them in parallel.
	var (
		result   *domain.EngineResult
		topScore float64
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		result, err = s.repo.MatchPromptOrQuery(gCtx, req.Query, size)
		return err
	})
	g.Go(func() error {
		var err error
		topScore, err = s.repo.TopScore(gCtx, req.Query)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := engineResponse(result)
	for i := range resp.Hits {
		pct := matchPercentage(resp.Hits[i].Score, topScore)
		resp.Hits[i].MatchPercentage = &pct
	}

	// Suggestions stay empty here: the endpoint has never generated them,
	// unlike /search. Kept asymmetric on purpose.
	return resp, nil
}

func (s *searchServiceImpl) Indices(ctx context.Context) ([]string, error) {
	if s.repo == nil {
		return nil, domain.ErrBackendUnavailable
	}
	return s.repo.Indices(ctx)
}

func (s *searchServiceImpl) Mapping(ctx context.Context, index string) (json.RawMessage, error) {
	if s.repo == nil {
		return nil, domain.ErrBackendUnavailable
	}
	return s.repo.Mapping(ctx, index)
}

// engineResponse maps a decoded engine result into the external response
// shape. Hits and Suggestions are always non-nil.
func engineResponse(result *domain.EngineResult) *domain.SearchResponse {
	resp := &domain.SearchResponse{
		Total:       result.Total,
		Took:        result.Took,
		Hits:        make([]domain.SearchResult, 0, len(result.Hits)),
		Suggestions: []string{},
	}

	for _, hit := range result.Hits {
		resp.Hits = append(resp.Hits, domain.SearchResult{
			ID:        hit.ID,
			Prompt:    hit.Prompt,
			Query:     hit.Query,
			Score:     hit.Score,
			Highlight: hit.Highlight,
		})
	}

	return resp
}

// matchPercentage normalises a hit score against the top score of the
// result set to [0,100]. A top score of zero yields zero for every hit.
func matchPercentage(score, top float64) int {
	if top <= 0 {
		return 0
	}
	return int(math.Round(math.Min(100, score/top*100)))
}

func clamp(size, def, max int) int {
	if size <= 0 {
		return def
	}
	if size > max {
		return max
	}
	return size
}

// splitFields parses the comma-separated fields parameter. An empty result
// means the default field set applies.
func splitFields(fields string) []string {
	if fields == "" {
		return nil
	}

	var out []string
	for _, f := range strings.Split(fields, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// dedupeCap removes duplicates preserving first-seen order and truncates
// to at most n entries. The result is never nil.
func dedupeCap(values []string, n int) []string {
	out := make([]string, 0, n)
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) == n {
			break
		}
	}
	return out
}
