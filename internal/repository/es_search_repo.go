package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/yogeshjoga/elastic-search-hints-api/internal/domain"
)

const (
	// Default boosted field set: prompt weighted highest, query next,
	// "*" as the catch-all fallback.
	fieldPrompt = "prompt"
	fieldQuery  = "query"

	// Dedicated completion-suggester field.
	completionField = "prompt.suggest"

	highlightPreTag  = "<mark>"
	highlightPostTag = "</mark>"

	termSuggestSize = 5
)

var defaultSearchFields = []string{"prompt^2", "query^1.5", "*"}

type esSearchRepository struct {
	client *elasticsearch.Client
	index  string
}

// NewESSearchRepository creates an Elasticsearch-backed search repository
// over a single prompt index.
func NewESSearchRepository(client *elasticsearch.Client, index string) SearchRepository {
	return &esSearchRepository{
		client: client,
		index:  index,
	}
}

func (r *esSearchRepository) Ping(ctx context.Context) error {
	res, err := r.client.Ping(r.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}
	return nil
}

func (r *esSearchRepository) ClusterInfo(ctx context.Context) (*domain.ClusterInfo, error) {
	res, err := r.client.Info(r.client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get cluster info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var info struct {
		ClusterName string `json:"cluster_name"`
	}
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &domain.ClusterInfo{ClusterName: info.ClusterName}, nil
}

func (r *esSearchRepository) ClusterHealth(ctx context.Context) (string, error) {
	res, err := r.client.Cluster.Health(r.client.Cluster.Health.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to get cluster health: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return "", fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var health struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(res.Body).Decode(&health); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return health.Status, nil
}

func (r *esSearchRepository) Search(ctx context.Context, query string, size int, fields []string, withSuggest bool) (*domain.EngineResult, error) {
	searchFields := defaultSearchFields
	if len(fields) > 0 {
		searchFields = fields
	}

	body := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    searchFields,
				"type":      "best_fields",
				"fuzziness": "AUTO",
			},
		},
		"highlight": highlightClause(),
	}

	if withSuggest {
		body["suggest"] = map[string]interface{}{
			"prompt_suggest": map[string]interface{}{
				"text": query,
				"term": map[string]interface{}{
					"field": fieldPrompt,
					"size":  termSuggestSize,
				},
			},
			"query_suggest": map[string]interface{}{
				"text": query,
				"term": map[string]interface{}{
					"field": fieldQuery,
					"size":  termSuggestSize,
				},
			},
		}
	}

	result, err := r.search(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	return result, nil
}

func (r *esSearchRepository) Complete(ctx context.Context, prefix string, size int) ([]string, error) {
	body := map[string]interface{}{
		"size": 0,
		"suggest": map[string]interface{}{
			"autocomplete": map[string]interface{}{
				"text": prefix,
				"completion": map[string]interface{}{
					"field": completionField,
					"size":  size,
				},
			},
		},
	}

	raw, err := r.rawSearch(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("completion suggest failed: %w", err)
	}

	return suggestTexts(raw.Suggest, "autocomplete"), nil
}

func (r *esSearchRepository) PrefixSearch(ctx context.Context, prefix string, size int) ([]domain.PromptDoc, error) {
	body := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					prefixClause(fieldPrompt, prefix),
					prefixClause(fieldQuery, prefix),
				},
			},
		},
		"_source": []string{fieldPrompt, fieldQuery},
	}

	raw, err := r.rawSearch(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("prefix search failed: %w", err)
	}

	docs := make([]domain.PromptDoc, 0, len(raw.Hits.Hits))
	for _, hit := range raw.Hits.Hits {
		docs = append(docs, domain.PromptDoc{
			Prompt: hit.Source.Prompt,
			Query:  hit.Source.Query,
		})
	}

	return docs, nil
}

func (r *esSearchRepository) MatchPromptOrQuery(ctx context.Context, query string, size int) (*domain.EngineResult, error) {
	body := map[string]interface{}{
		"size":      size,
		"query":     promptOrQueryClause(query),
		"highlight": highlightClause(),
	}

	result, err := r.search(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("prompt-or-query search failed: %w", err)
	}

	return result, nil
}

func (r *esSearchRepository) TopScore(ctx context.Context, query string) (float64, error) {
	body := map[string]interface{}{
		"size":  1,
		"query": promptOrQueryClause(query),
		"sort": []interface{}{
			map[string]interface{}{"_score": "desc"},
		},
	}

	raw, err := r.rawSearch(ctx, body)
	if err != nil {
		return 0, fmt.Errorf("top score probe failed: %w", err)
	}

	if len(raw.Hits.Hits) == 0 {
		return 0, nil
	}
	return raw.Hits.Hits[0].Score, nil
}

func (r *esSearchRepository) Indices(ctx context.Context) ([]string, error) {
	res, err := r.client.Indices.GetAlias(
		r.client.Indices.GetAlias.WithContext(ctx),
		r.client.Indices.GetAlias.WithIndex("*"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list indices: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var aliases map[string]json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&aliases); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

func (r *esSearchRepository) Mapping(ctx context.Context, index string) (json.RawMessage, error) {
	res, err := r.client.Indices.GetMapping(
		r.client.Indices.GetMapping.WithContext(ctx),
		r.client.Indices.GetMapping.WithIndex(index),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get mapping: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var mapping json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&mapping); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return mapping, nil
}

// search runs a query body and maps the response into an EngineResult.
// Suggest options are flattened in fixed suggester order so the service's
// first-seen deduplication is deterministic.
func (r *esSearchRepository) search(ctx context.Context, body map[string]interface{}) (*domain.EngineResult, error) {
	raw, err := r.rawSearch(ctx, body)
	if err != nil {
		return nil, err
	}

	result := &domain.EngineResult{
		Total: raw.Hits.Total.Value,
		Took:  raw.Took,
		Hits:  make([]domain.EngineHit, 0, len(raw.Hits.Hits)),
	}

	for _, hit := range raw.Hits.Hits {
		result.Hits = append(result.Hits, domain.EngineHit{
			ID:        hit.ID,
			Score:     hit.Score,
			Prompt:    hit.Source.Prompt,
			Query:     hit.Source.Query,
			Highlight: hit.Highlight,
		})
	}

	result.SuggestTerms = append(
		suggestTexts(raw.Suggest, "prompt_suggest"),
		suggestTexts(raw.Suggest, "query_suggest")...,
	)

	return result, nil
}

func (r *esSearchRepository) rawSearch(ctx context.Context, body map[string]interface{}) (*esSearchResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var raw esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &raw, nil
}

func highlightClause() map[string]interface{} {
	return map[string]interface{}{
		"fields": map[string]interface{}{
			fieldPrompt: map[string]interface{}{},
			fieldQuery:  map[string]interface{}{},
		},
		"pre_tags":  []string{highlightPreTag},
		"post_tags": []string{highlightPostTag},
	}
}

func prefixClause(field, value string) map[string]interface{} {
	return map[string]interface{}{
		"prefix": map[string]interface{}{
			field: map[string]interface{}{
				"value":            value,
				"case_insensitive": true,
			},
		},
	}
}

func promptOrQueryClause(query string) map[string]interface{} {
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"should": []interface{}{
				map[string]interface{}{"match": map[string]interface{}{fieldPrompt: query}},
				map[string]interface{}{"match": map[string]interface{}{fieldQuery: query}},
			},
			"minimum_should_match": 1,
		},
	}
}

func suggestTexts(suggest map[string][]esSuggestEntry, name string) []string {
	var texts []string
	for _, entry := range suggest[name] {
		for _, opt := range entry.Options {
			texts = append(texts, opt.Text)
		}
	}
	return texts
}

// esSearchResponse is the generic Elasticsearch search response structure.
type esSearchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string  `json:"_id"`
			Score  float64 `json:"_score"`
			Source struct {
				Prompt string `json:"prompt"`
				Query  string `json:"query"`
			} `json:"_source"`
			Highlight map[string][]string `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
	Suggest map[string][]esSuggestEntry `json:"suggest"`
}

type esSuggestEntry struct {
	Options []struct {
		Text string `json:"text"`
	} `json:"options"`
}
