package domain

import "errors"

var (
	// ErrProductNotFound is returned when no catalog product matches an ingredient
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrLowConfidence is returned when the match confidence is below the threshold
	ErrLowConfidence = errors.New("match confidence below threshold")

	// ErrRateLimited is returned when the sync rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrUnauthorized is returned when the sync bearer token is missing or wrong
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCatalogAPIFailure is returned when a Kroger API request fails
	ErrCatalogAPIFailure = errors.New("catalog API request failed")

	// ErrRecipeNotFound is returned when a recipe id does not exist in the store
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrWriteConflict is returned when an optimistic-concurrency write loses the race
	ErrWriteConflict = errors.New("recipe modified since read")

	// ErrPartialEnrichment is returned when an ingredient carries incomplete product data
	ErrPartialEnrichment = errors.New("ingredient product data is incomplete")
)
