package vectorindex

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"
)

// PGVectorIndex implements Index on a dedicated Postgres database with
// the pgvector extension. It uses cosine distance: the <=> operator
// computes 1 - cosine_similarity, so reported scores are 1 - distance.
type PGVectorIndex struct {
	db      *sql.DB
	table   string
	dim     int
	timeout time.Duration
}

// NewPGVectorIndex connects to the index database and ensures the
// vector table exists.
func NewPGVectorIndex(dsn, table string, dim int, timeout time.Duration) (*PGVectorIndex, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open vector index db")
	}

	idx := &PGVectorIndex{db: db, table: table, dim: dim, timeout: timeout}
	if err := idx.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (x *PGVectorIndex) ensureSchema(ctx context.Context) error {
	ctx, cancel := x.withTimeout(ctx)
	defer cancel()

	if _, err := x.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return errors.Wrap(err, "failed to ensure pgvector extension")
	}

	stmt := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			updated_ts TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, x.table, x.dim)
	if _, err := x.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "failed to ensure vector table")
	}
	return nil
}

func (x *PGVectorIndex) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]any) error {
	ctx, cancel := x.withTimeout(ctx)
	defer cancel()

	meta, err := json.Marshal(metadata)
	if err != nil {
		return errors.Wrap(err, "failed to marshal vector metadata")
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, embedding, metadata, updated_ts)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id)
		DO UPDATE SET
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata,
			updated_ts = EXCLUDED.updated_ts
	`, x.table)

	if _, err := x.db.ExecContext(ctx, stmt, id, pgvector.NewVector(vector), meta); err != nil {
		return errors.Wrap(err, "failed to upsert vector")
	}
	return nil
}

func (x *PGVectorIndex) Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Hit, error) {
	ctx, cancel := x.withTimeout(ctx)
	defer cancel()

	vec := pgvector.NewVector(vector)
	args := []any{vec}
	where := ""
	if filter.ExcludeOwnerID != "" {
		where = `WHERE metadata->>'owner_id' <> $2`
		args = append(args, filter.ExcludeOwnerID)
	}
	args = append(args, topK)

	query := fmt.Sprintf(`
		SELECT id, 1 - (embedding <=> $1) AS score, metadata
		FROM %s
		%s
		ORDER BY embedding <=> $1
		LIMIT $%d
	`, x.table, where, len(args))

	rows, err := x.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query vector index")
	}
	defer rows.Close()

	hits := []Hit{}
	for rows.Next() {
		var hit Hit
		var meta []byte
		if err := rows.Scan(&hit.ID, &hit.Score, &meta); err != nil {
			return nil, errors.Wrap(err, "failed to scan vector hit")
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &hit.Metadata); err != nil {
				return nil, errors.Wrap(err, "failed to unmarshal vector metadata")
			}
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func (x *PGVectorIndex) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := x.withTimeout(ctx)
	defer cancel()

	stmt := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, x.table)
	if _, err := x.db.ExecContext(ctx, stmt, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "failed to delete vectors")
	}
	return nil
}

func (x *PGVectorIndex) Ping(ctx context.Context) error {
	ctx, cancel := x.withTimeout(ctx)
	defer cancel()
	return x.db.PingContext(ctx)
}

func (x *PGVectorIndex) Close() error {
	return x.db.Close()
}

func (x *PGVectorIndex) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if x.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, x.timeout)
}
