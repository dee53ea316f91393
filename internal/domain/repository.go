package domain

import (
	"context"
	"time"
)

// CacheStore defines the interface for the product lookup cache.
// Implementations must treat entries past their TTL as misses.
type CacheStore interface {
	GetProduct(ctx context.Context, ingredientName, locationID string) (*CachedLookup, error)
	PutProduct(ctx context.Context, ingredientName, locationID string, product Product) error
}

// CatalogClient defines the interface for the external grocery catalog.
// A name that fails upstream is simply absent from the returned map; the
// call as a whole only errors when nothing could be fetched at all.
type CatalogClient interface {
	BatchSearchProducts(ctx context.Context, ingredientNames []string, locationID string) (map[string][]Product, error)
}

// RecipeRepository defines the persistence operations the sync job needs.
// UpdateIngredients uses ProductDataLastSynced as an optimistic-concurrency
// guard: the write applies only if the stored timestamp still equals
// prevSynced, otherwise ErrWriteConflict is returned.
type RecipeRepository interface {
	GetByIDs(ctx context.Context, ids []string) ([]Recipe, error)
	ListPage(ctx context.Context, limit int) ([]Recipe, error)
	UpdateIngredients(ctx context.Context, id string, ingredients []Ingredient, prevSynced *time.Time, syncedAt time.Time) error
}

// SyncHistoryRepository stores append-only sync run records.
type SyncHistoryRepository interface {
	Append(ctx context.Context, record SyncRunRecord) error
	Recent(ctx context.Context, limit int) ([]SyncRunRecord, error)
}

// RateLimitDecision is the outcome of one check-and-consume call.
type RateLimitDecision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RateLimiter gatekeeps how often a client may trigger a sync. Check has
// check-and-consume semantics: call it exactly once per attempted
// operation.
type RateLimiter interface {
	Check(clientID string) RateLimitDecision
}
