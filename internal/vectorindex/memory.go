package vectorindex

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is an in-process Index used in tests and when no vector
// DSN is configured. Similarity is plain cosine over the stored
// vectors, so it ranks identically to the pgvector implementation.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	// Unreachable makes every call fail like a down service. Test hook
	// for the degraded-ranking paths.
	Unreachable bool
}

type memoryEntry struct {
	vector   []float32
	metadata map[string]any
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[string]memoryEntry)}
}

func (x *MemoryIndex) Upsert(_ context.Context, id string, vector []float32, metadata map[string]any) error {
	if err := x.checkReachable(); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()

	vec := make([]float32, len(vector))
	copy(vec, vector)
	x.entries[id] = memoryEntry{vector: vec, metadata: metadata}
	return nil
}

func (x *MemoryIndex) Query(_ context.Context, vector []float32, topK int, filter Filter) ([]Hit, error) {
	if err := x.checkReachable(); err != nil {
		return nil, err
	}
	x.mu.RLock()
	defer x.mu.RUnlock()

	hits := make([]Hit, 0, len(x.entries))
	for id, entry := range x.entries {
		if filter.ExcludeOwnerID != "" {
			if owner, _ := entry.metadata["owner_id"].(string); owner == filter.ExcludeOwnerID {
				continue
			}
		}
		hits = append(hits, Hit{
			ID:       id,
			Score:    cosineSimilarity(vector, entry.vector),
			Metadata: entry.metadata,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (x *MemoryIndex) Delete(_ context.Context, ids ...string) error {
	if err := x.checkReachable(); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, id := range ids {
		delete(x.entries, id)
	}
	return nil
}

func (x *MemoryIndex) Ping(_ context.Context) error {
	return x.checkReachable()
}

// Len reports the number of stored vectors.
func (x *MemoryIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

func (x *MemoryIndex) checkReachable() error {
	if x.Unreachable {
		return context.DeadlineExceeded
	}
	return nil
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
