package domain

// SearchRequest is the /search query contract. Size outside [1,100] is
// rejected at the binding boundary before any backend call.
type SearchRequest struct {
	Query   string `form:"q" binding:"required"`
	Size    int    `form:"size,default=10" binding:"min=1,max=100"`
	Suggest bool   `form:"suggest,default=true"`
	Fields  string `form:"fields"`
}

// AutocompleteRequest is the /autocomplete query contract.
type AutocompleteRequest struct {
	Query string `form:"q" binding:"required"`
	Size  int    `form:"size,default=5" binding:"min=1,max=10"`
}

// PromptOrQueryRequest is the /search_by_prompt_or_query contract.
type PromptOrQueryRequest struct {
	Query string `form:"q" binding:"required"`
	Size  int    `form:"size,default=10" binding:"min=1,max=100"`
}

// SearchResult is a single hit in the external response shape.
// MatchPercentage is only populated by the prompt-or-query search, where
// scores are normalised against the top score of the result set.
type SearchResult struct {
	ID              string              `json:"id,omitempty"`
	Prompt          string              `json:"prompt"`
	Query           string              `json:"query"`
	Score           float64             `json:"score"`
	MatchPercentage *int                `json:"match_percentage,omitempty"`
	Highlight       map[string][]string `json:"highlight,omitempty"`
}

// SearchResponse is the flat external response shape shared by /search and
// /search_by_prompt_or_query. Hits and Suggestions are never null.
type SearchResponse struct {
	Total       int            `json:"total"`
	Hits        []SearchResult `json:"hits"`
	Took        int            `json:"took"`
	Suggestions []string       `json:"suggestions"`
}

// AutocompleteResponse is the /autocomplete response shape.
type AutocompleteResponse struct {
	Suggestions []string `json:"suggestions"`
}

// HealthStatus reports backend reachability. Cluster fields are only set
// when the backend answered; a failed probe carries no partial data.
type HealthStatus struct {
	Status                 string `json:"status"`
	ElasticsearchConnected bool   `json:"elasticsearch_connected"`
	ClusterName            string `json:"cluster_name,omitempty"`
	ClusterHealth          string `json:"cluster_health,omitempty"`
}

// EngineHit is one decoded Elasticsearch hit.
type EngineHit struct {
	ID        string
	Score     float64
	Prompt    string
	Query     string
	Highlight map[string][]string
}

// EngineResult is a decoded Elasticsearch search response. SuggestTerms
// holds raw suggester options in suggester order, duplicates included;
// deduplication is the service's job.
type EngineResult struct {
	Total        int
	Took         int
	Hits         []EngineHit
	SuggestTerms []string
}

// PromptDoc is a source document fetched by the autocomplete prefix
// fallback, reduced to the two suggestible fields.
type PromptDoc struct {
	Prompt string
	Query  string
}

// ClusterInfo is the subset of the cluster info call the gateway reports.
type ClusterInfo struct {
	ClusterName string
}
