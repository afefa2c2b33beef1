package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yogeshjoga/elastic-search-hints-api/internal/domain"
)

// fakeService is a hand-written SearchService fake recording calls.
type fakeService struct {
	health     *domain.HealthStatus
	searchFn   func(req *domain.SearchRequest) (*domain.SearchResponse, error)
	autoFn     func(req *domain.AutocompleteRequest) ([]string, error)
	pqFn       func(req *domain.PromptOrQueryRequest) (*domain.SearchResponse, error)
	indices    []string
	indicesErr error
	mapping    json.RawMessage
	mappingErr error

	searchReq  *domain.SearchRequest
	autoReq    *domain.AutocompleteRequest
	pqReq      *domain.PromptOrQueryRequest
	mappingArg string
}

func (f *fakeService) Health(ctx context.Context) *domain.HealthStatus {
	if f.health != nil {
		return f.health
	}
	return &domain.HealthStatus{Status: "unhealthy"}
}

func (f *fakeService) Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	f.searchReq = req
	if f.searchFn != nil {
		return f.searchFn(req)
	}
	return &domain.SearchResponse{Hits: []domain.SearchResult{}, Suggestions: []string{}}, nil
}

func (f *fakeService) Autocomplete(ctx context.Context, req *domain.AutocompleteRequest) ([]string, error) {
	f.autoReq = req
	if f.autoFn != nil {
		return f.autoFn(req)
	}
	return []string{}, nil
}

func (f *fakeService) SearchByPromptOrQuery(ctx context.Context, req *domain.PromptOrQueryRequest) (*domain.SearchResponse, error) {
	f.pqReq = req
	if f.pqFn != nil {
		return f.pqFn(req)
	}
	return &domain.SearchResponse{Hits: []domain.SearchResult{}, Suggestions: []string{}}, nil
}

func (f *fakeService) Indices(ctx context.Context) ([]string, error) {
	return f.indices, f.indicesErr
}

func (f *fakeService) Mapping(ctx context.Context, index string) (json.RawMessage, error) {
	f.mappingArg = index
	return f.mapping, f.mappingErr
}

func setupRouter(svc *fakeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r)
	return r
}

func doGet(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestSearchValidationBoundary(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing q", "/search"},
		{"empty q", "/search?q="},
		{"size zero", "/search?q=shirt&size=0"},
		{"size negative", "/search?q=shirt&size=-1"},
		{"size above max", "/search?q=shirt&size=101"},
		{"size not a number", "/search?q=shirt&size=ten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			r := setupRouter(svc)

			w := doGet(r, tt.path)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Nil(t, svc.searchReq, "service must not be called")
		})
	}
}

func TestSearchDefaults(t *testing.T) {
	svc := &fakeService{}
	r := setupRouter(svc)

	w := doGet(r, "/search?q=red+shirt")

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.searchReq)
	assert.Equal(t, "red shirt", svc.searchReq.Query)
	assert.Equal(t, 10, svc.searchReq.Size)
	assert.True(t, svc.searchReq.Suggest)
	assert.Empty(t, svc.searchReq.Fields)
}

func TestSearchParams(t *testing.T) {
	svc := &fakeService{}
	r := setupRouter(svc)

	w := doGet(r, "/search?q=shirt&size=25&suggest=false&fields=prompt,query")

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.searchReq)
	assert.Equal(t, 25, svc.searchReq.Size)
	assert.False(t, svc.searchReq.Suggest)
	assert.Equal(t, "prompt,query", svc.searchReq.Fields)
}

func TestSearchResponseShape(t *testing.T) {
	svc := &fakeService{
		searchFn: func(*domain.SearchRequest) (*domain.SearchResponse, error) {
			return &domain.SearchResponse{
				Total: 1,
				Took:  7,
				Hits: []domain.SearchResult{{
					ID:        "1",
					Prompt:    "red shirt",
					Query:     "shirt",
					Score:     2.5,
					Highlight: map[string][]string{"prompt": {"<mark>red</mark> shirt"}},
				}},
				Suggestions: []string{"red"},
			}, nil
		},
	}
	r := setupRouter(svc)

	w := doGet(r, "/search?q=red")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"total": 1,
		"took": 7,
		"hits": [{
			"id": "1",
			"prompt": "red shirt",
			"query": "shirt",
			"score": 2.5,
			"highlight": {"prompt": ["<mark>red</mark> shirt"]}
		}],
		"suggestions": ["red"]
	}`, w.Body.String())
}

func TestSearchErrorMapping(t *testing.T) {
	t.Run("backend unavailable is 503", func(t *testing.T) {
		svc := &fakeService{
			searchFn: func(*domain.SearchRequest) (*domain.SearchResponse, error) {
				return nil, domain.ErrBackendUnavailable
			},
		}
		r := setupRouter(svc)

		w := doGet(r, "/search?q=shirt")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "SERVICE_UNAVAILABLE")
	})

	t.Run("backend failure is 500 with message", func(t *testing.T) {
		svc := &fakeService{
			searchFn: func(*domain.SearchRequest) (*domain.SearchResponse, error) {
				return nil, errors.New("elasticsearch error: index_not_found_exception")
			},
		}
		r := setupRouter(svc)

		w := doGet(r, "/search?q=shirt")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "index_not_found_exception")
	})
}

func TestHealthNeverErrors(t *testing.T) {
	t.Run("unhealthy backend", func(t *testing.T) {
		svc := &fakeService{
			health: &domain.HealthStatus{Status: "unhealthy", ElasticsearchConnected: false},
		}
		r := setupRouter(svc)

		w := doGet(r, "/health")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"unhealthy","elasticsearch_connected":false}`, w.Body.String())
	})

	t.Run("healthy backend", func(t *testing.T) {
		svc := &fakeService{
			health: &domain.HealthStatus{
				Status:                 "healthy",
				ElasticsearchConnected: true,
				ClusterName:            "prompts",
				ClusterHealth:          "green",
			},
		}
		r := setupRouter(svc)

		w := doGet(r, "/health")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{
			"status": "healthy",
			"elasticsearch_connected": true,
			"cluster_name": "prompts",
			"cluster_health": "green"
		}`, w.Body.String())
	})
}

func TestAutocompleteValidation(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing q", "/autocomplete"},
		{"size above max", "/autocomplete?q=re&size=11"},
		{"size zero", "/autocomplete?q=re&size=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			r := setupRouter(svc)

			w := doGet(r, tt.path)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Nil(t, svc.autoReq)
		})
	}
}

func TestAutocompleteResponse(t *testing.T) {
	svc := &fakeService{
		autoFn: func(*domain.AutocompleteRequest) ([]string, error) {
			return []string{"red shirt", "red shoes"}, nil
		},
	}
	r := setupRouter(svc)

	w := doGet(r, "/autocomplete?q=re")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"suggestions":["red shirt","red shoes"]}`, w.Body.String())
	require.NotNil(t, svc.autoReq)
	assert.Equal(t, 5, svc.autoReq.Size)
}

func TestPromptOrQueryRoute(t *testing.T) {
	svc := &fakeService{}
	r := setupRouter(svc)

	w := doGet(r, "/search_by_prompt_or_query?q=red+shirt")

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.pqReq)
	assert.Equal(t, "red shirt", svc.pqReq.Query)
	assert.Equal(t, 10, svc.pqReq.Size)

	var resp domain.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Suggestions)
	assert.Empty(t, resp.Suggestions)
}

func TestIndicesRoute(t *testing.T) {
	svc := &fakeService{indices: []string{"clothing_prompts", "other"}}
	r := setupRouter(svc)

	w := doGet(r, "/indices")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"indices":["clothing_prompts","other"]}`, w.Body.String())
}

func TestMappingRoute(t *testing.T) {
	svc := &fakeService{mapping: json.RawMessage(`{"clothing_prompts":{"mappings":{}}}`)}
	r := setupRouter(svc)

	w := doGet(r, "/mapping/clothing_prompts")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "clothing_prompts", svc.mappingArg)
	assert.JSONEq(t, `{"mapping":{"clothing_prompts":{"mappings":{}}}}`, w.Body.String())
}

func TestMappingRouteBackendError(t *testing.T) {
	svc := &fakeService{mappingErr: errors.New("elasticsearch error: index_not_found_exception [no_such_index]")}
	r := setupRouter(svc)

	w := doGet(r, "/mapping/no_such_index")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "no_such_index")
}

func TestRootDescribesAPI(t *testing.T) {
	svc := &fakeService{}
	r := setupRouter(svc)

	w := doGet(r, "/")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Elasticsearch Auto-Suggestions API")
	assert.Contains(t, w.Body.String(), "/search_by_prompt_or_query")
}
