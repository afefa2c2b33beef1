package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yogeshjoga/elastic-search-hints-api/internal/domain"
	"github.com/yogeshjoga/elastic-search-hints-api/internal/service"
	"github.com/yogeshjoga/elastic-search-hints-api/pkg/log"
	"github.com/yogeshjoga/elastic-search-hints-api/pkg/response"
)

// Handler handles HTTP requests for the search gateway.
type Handler struct {
	searchService service.SearchService
}

// NewHandler creates a new HTTP handler.
func NewHandler(searchService service.SearchService) *Handler {
	return &Handler{
		searchService: searchService,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/search", h.Search)
	r.GET("/autocomplete", h.Autocomplete)
	r.GET("/indices", h.Indices)
	r.GET("/mapping/:index_name", h.Mapping)
	r.GET("/search_by_prompt_or_query", h.SearchByPromptOrQuery)
}

// Root serves the static API description.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Elasticsearch Auto-Suggestions API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"search":                    "/search?q=your_query",
			"autocomplete":              "/autocomplete?q=partial_query",
			"search_by_prompt_or_query": "/search_by_prompt_or_query?q=your_query",
			"health":                    "/health",
			"indices":                   "/indices",
			"mapping":                   "/mapping/{index_name}",
		},
	})
}

// Health reports backend reachability. It never returns an error status:
// an unreachable backend degrades to an unhealthy body with 200.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.searchService.Health(c.Request.Context()))
}

// Search handles fuzzy multi-field search with optional term suggestions.
func (h *Handler) Search(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		l.Warn().Err(err).Msg("invalid search request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.searchService.Search(ctx, &req)
	if err != nil {
		l.Error().Err(err).Str("query", req.Query).Msg("search failed")
		h.backendError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Autocomplete handles prefix suggestions with the completion-suggester
// first, prefix-query fallback strategy.
func (h *Handler) Autocomplete(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.AutocompleteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		l.Warn().Err(err).Msg("invalid autocomplete request")
		response.BadRequest(c, err.Error())
		return
	}

	suggestions, err := h.searchService.Autocomplete(ctx, &req)
	if err != nil {
		l.Error().Err(err).Str("query", req.Query).Msg("autocomplete failed")
		h.backendError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.AutocompleteResponse{Suggestions: suggestions})
}

// SearchByPromptOrQuery handles relevance-ranked search over the prompt and
// query fields with match percentages. Its suggestions list is always empty,
// unlike /search.
func (h *Handler) SearchByPromptOrQuery(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.PromptOrQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		l.Warn().Err(err).Msg("invalid search request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.searchService.SearchByPromptOrQuery(ctx, &req)
	if err != nil {
		l.Error().Err(err).Str("query", req.Query).Msg("prompt-or-query search failed")
		h.backendError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Indices lists all backend index names.
func (h *Handler) Indices(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	indices, err := h.searchService.Indices(ctx)
	if err != nil {
		l.Error().Err(err).Msg("failed to list indices")
		h.backendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"indices": indices})
}

// Mapping returns the field mapping of one index.
func (h *Handler) Mapping(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	index := c.Param("index_name")
	mapping, err := h.searchService.Mapping(ctx, index)
	if err != nil {
		l.Error().Err(err).Str("index", index).Msg("failed to get mapping")
		h.backendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mapping": mapping})
}

// backendError maps an unconfigured/unreachable backend to 503 and every
// other backend failure to 500 with the engine's message.
func (h *Handler) backendError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrBackendUnavailable) {
		response.ServiceUnavailable(c, err.Error())
		return
	}
	response.InternalError(c, err.Error())
}
