package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/wandermatch/wandermatch/internal/cache"
	"github.com/wandermatch/wandermatch/internal/embedding"
	"github.com/wandermatch/wandermatch/internal/vectorindex"
)

// AppContext holds shared dependencies (DB, Redis, Logger, embedding
// client, vector index) injected into every service.
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Embedder   embedding.Client
	Index      vectorindex.Index
}

// New creates a new AppContext
func New(db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, embedder embedding.Client, index vectorindex.Index) *AppContext {
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Embedder:   embedder,
		Index:      index,
	}
}
