package domain

import "time"

// Product is a catalog product candidate returned by the Kroger API,
// reduced to the fields the sync job cares about.
type Product struct {
	ProductID    string   `json:"productId"`
	Description  string   `json:"description"`
	Brand        string   `json:"brand,omitempty"`
	RegularPrice float64  `json:"regularPrice"`
	PromoPrice   *float64 `json:"promoPrice,omitempty"`
	ImageURL     string   `json:"imageUrl,omitempty"`
	Size         string   `json:"size,omitempty"`
}

// ResolvedPrice returns the promotional price when one is set, the
// regular price otherwise.
func (p Product) ResolvedPrice() float64 {
	if p.PromoPrice != nil && *p.PromoPrice > 0 {
		return *p.PromoPrice
	}
	return p.RegularPrice
}

// HasPrice reports whether the provider returned any usable price.
func (p Product) HasPrice() bool {
	return p.ResolvedPrice() > 0
}

// CachedLookup is a previously resolved ingredient->product lookup stored
// in the product cache, keyed by (normalized ingredient name, location id).
type CachedLookup struct {
	Product  Product   `json:"product"`
	CachedAt time.Time `json:"cachedAt"`
}

// SyncRunRecord is one append-only history entry per orchestrator
// invocation. Records are never mutated or deleted by this subsystem.
type SyncRunRecord struct {
	ID               string    `json:"id"`
	StartedAt        time.Time `json:"startedAt"`
	Success          bool      `json:"success"`
	RecipesProcessed int       `json:"recipesProcessed"`
	ProductsUpdated  int       `json:"productsUpdated"`
	ProductsSkipped  int       `json:"productsSkipped"`
	CacheHits        int       `json:"cacheHits"`
	Errors           []string  `json:"errors"`
	Message          string    `json:"message"`
}

// SyncRequest is the parsed body of a sync trigger call.
type SyncRequest struct {
	RecipeIDs  []string `json:"recipeIds,omitempty"`
	LocationID string   `json:"locationId,omitempty"`
	Limit      int      `json:"limit,omitempty"`
	Force      bool     `json:"force,omitempty"`
}

// SyncSummary is the structured result of one sync run, returned to the
// caller and mirrored into the history record.
type SyncSummary struct {
	Success          bool      `json:"success"`
	Message          string    `json:"message"`
	RecipesProcessed int       `json:"recipesProcessed"`
	ProductsUpdated  int       `json:"productsUpdated"`
	ProductsSkipped  int       `json:"productsSkipped"`
	CacheHits        int       `json:"cacheHits"`
	Errors           []string  `json:"errors"`
	Timestamp        time.Time `json:"timestamp"`
}
