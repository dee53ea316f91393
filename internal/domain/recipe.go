package domain

import (
	"strings"
	"time"
)

// Recipe is a user-authored recipe whose ingredient list is selectively
// enriched with catalog pricing by the sync job. The sync job only ever
// rewrites Ingredients and ProductDataLastSynced; everything else belongs
// to the marketplace side of the system.
type Recipe struct {
	ID                    string       `json:"id"`
	Title                 string       `json:"title"`
	Servings              int          `json:"servings"`
	Ingredients           []Ingredient `json:"ingredients"`
	ProductDataLastSynced *time.Time   `json:"productDataLastSynced,omitempty"`
}

// Ingredient is one named component of a recipe. Name is free-text as the
// user typed it. Product is nil until the ingredient has been synced at
// least once; after that it is always fully populated (see Validate).
type Ingredient struct {
	Name    string       `json:"name"`
	Amount  string       `json:"amount,omitempty"`
	Unit    string       `json:"unit,omitempty"`
	Product *ProductData `json:"product,omitempty"`
}

// ProductData is the catalog enrichment attached to a synced ingredient.
// Fields are populated together in a single update; a record with a
// product id but no price (or vice versa) is malformed.
type ProductData struct {
	ProductID    string    `json:"productId"`
	Price        float64   `json:"price"`
	RegularPrice float64   `json:"regularPrice"`
	PromoPrice   *float64  `json:"promoPrice,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	Size         string    `json:"size,omitempty"`
	Confidence   float64   `json:"confidence"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Synced reports whether the ingredient has ever been enriched.
func (i Ingredient) Synced() bool {
	return i.Product != nil
}

// Validate enforces the all-or-none enrichment invariant at parse
// boundaries: either Product is nil, or it carries a product id, a price
// and an update time together.
func (i Ingredient) Validate() error {
	if i.Product == nil {
		return nil
	}
	p := i.Product
	if p.ProductID == "" || p.Price <= 0 || p.UpdatedAt.IsZero() {
		return ErrPartialEnrichment
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return ErrPartialEnrichment
	}
	return nil
}

// Validate checks every ingredient of the recipe.
func (r Recipe) Validate() error {
	if r.ID == "" {
		return ErrInvalidRequest
	}
	for _, ing := range r.Ingredients {
		if err := ing.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IngredientNames returns the non-empty ingredient names in recipe order.
// Ingredients with a blank name are skipped by the sync job entirely.
func (r Recipe) IngredientNames() []string {
	names := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			continue
		}
		names = append(names, ing.Name)
	}
	return names
}
