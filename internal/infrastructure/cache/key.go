package cache

import (
	"fmt"

	"github.com/homeplate/backend/internal/domain"
)

// Key builds the cache key for an ingredient lookup. Names are normalized
// via domain.NormalizeIngredientName to keep near-duplicate spellings from
// fragmenting into separate entries.
func Key(ingredientName, locationID string) string {
	return fmt.Sprintf("product:%s:%s", domain.NormalizeIngredientName(ingredientName), locationID)
}
