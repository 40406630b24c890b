// Package vectorindex abstracts the external similarity-search service
// holding experience embeddings. The core treats it as best-effort:
// every caller tolerates an unreachable or incomplete index.
package vectorindex

import "context"

// Hit is a single similarity-search result.
type Hit struct {
	ID       string
	Score    float32
	Metadata map[string]any
}

// Filter narrows a similarity query. Zero value means no filtering.
type Filter struct {
	// ExcludeOwnerID drops vectors whose owner_id metadata equals this
	// value. Used to keep self-owned experiences out of a user's feed.
	ExcludeOwnerID string
}

// Index is the client interface to the similarity-search service.
type Index interface {
	// Upsert stores a vector with metadata under the given id,
	// replacing any previous entry.
	Upsert(ctx context.Context, id string, vector []float32, metadata map[string]any) error

	// Query returns up to topK hits most similar to vector, best first.
	Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Hit, error)

	// Delete removes the given ids. Missing ids are not an error.
	Delete(ctx context.Context, ids ...string) error

	// Ping reports whether the index is reachable.
	Ping(ctx context.Context) error
}
