package search

import (
	"context"
	"encoding/json"
)

// Index is the document store behind the admin search.
type Index interface {
	EnsureIndex(ctx context.Context, index string, settings map[string]interface{}) error
	Upsert(ctx context.Context, index, id string, doc interface{}) error
	Delete(ctx context.Context, index, id string) error
	Search(ctx context.Context, index string, query map[string]interface{}) (*Result, error)
}

type Hit struct {
	ID     string          `json:"id"`
	Source json.RawMessage `json:"source"`
}

type Result struct {
	Total int64 `json:"total"`
	Hits  []Hit `json:"hits"`
}
