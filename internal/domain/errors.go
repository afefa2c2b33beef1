package domain

import "errors"

// ErrBackendUnavailable means no Elasticsearch connection is configured or
// reachable at all, as opposed to a configured backend rejecting a request.
// Handlers map it to 503; every other backend failure maps to 500.
var ErrBackendUnavailable = errors.New("elasticsearch connection not available")
