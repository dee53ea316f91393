package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/homeplate/backend/internal/domain"
)

// SyncServiceConfig holds configuration for the sync orchestrator.
type SyncServiceConfig struct {
	DefaultLocationID string
	PageSize          int
	RecipeDelay       time.Duration
	ErrorCap          int
	MinConfidence     float64
	Staleness         time.Duration
}

// SyncService reconciles stored recipe ingredients against the grocery
// catalog: resolve each ingredient's price via cache or external lookup,
// score the match, apply the update policy, persist changed recipes and
// append one history record per run.
type SyncService struct {
	recipes domain.RecipeRepository
	history domain.SyncHistoryRepository
	cache   domain.CacheStore
	catalog domain.CatalogClient
	policy  *UpdatePolicy
	logger  *zap.Logger

	defaultLocationID string
	pageSize          int
	recipeDelay       time.Duration
	errorCap          int

	now   func() time.Time
	sleep func(time.Duration)
}

// NewSyncService creates a sync orchestrator with its dependencies.
func NewSyncService(
	recipes domain.RecipeRepository,
	history domain.SyncHistoryRepository,
	cacheStore domain.CacheStore,
	catalog domain.CatalogClient,
	logger *zap.Logger,
	cfg SyncServiceConfig,
) *SyncService {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	errorCap := cfg.ErrorCap
	if errorCap <= 0 {
		errorCap = 10
	}

	return &SyncService{
		recipes:           recipes,
		history:           history,
		cache:             cacheStore,
		catalog:           catalog,
		policy:            NewUpdatePolicy(cfg.MinConfidence, cfg.Staleness),
		logger:            logger,
		defaultLocationID: cfg.DefaultLocationID,
		pageSize:          pageSize,
		recipeDelay:       cfg.RecipeDelay,
		errorCap:          errorCap,
		now:               time.Now,
		sleep:             time.Sleep,
	}
}

// recipeResult tallies what happened to one recipe.
type recipeResult struct {
	updated   int
	skipped   int
	cacheHits int
}

// Run executes one sync invocation. The returned error is non-nil only
// when the whole run failed (the initial recipe fetch threw); per-recipe
// failures are carried in the summary's error list instead. Every
// outcome, including a failed fetch, is mirrored into exactly one
// appended history record.
func (s *SyncService) Run(ctx context.Context, req domain.SyncRequest) (domain.SyncSummary, error) {
	startedAt := s.now()

	locationID := req.LocationID
	if locationID == "" {
		locationID = s.defaultLocationID
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.pageSize
	}

	s.logger.Info("sync run starting",
		zap.Int("requestedIds", len(req.RecipeIDs)),
		zap.String("locationId", locationID),
		zap.Bool("force", req.Force))

	var (
		recipes []domain.Recipe
		err     error
	)
	if len(req.RecipeIDs) > 0 {
		recipes, err = s.recipes.GetByIDs(ctx, req.RecipeIDs)
	} else {
		recipes, err = s.recipes.ListPage(ctx, limit)
	}
	if err != nil {
		// Fetch-phase failure fails the whole run, but is still logged
		// to history.
		summary := domain.SyncSummary{
			Success:   false,
			Message:   fmt.Sprintf("Sync failed: %v", err),
			Errors:    []string{err.Error()},
			Timestamp: startedAt,
		}
		s.appendHistory(ctx, startedAt, summary)
		return summary, err
	}

	var (
		processed int
		totals    recipeResult
		errs      []string
	)

	for i, recipe := range recipes {
		// Politeness delay between recipes for the upstream API
		if i > 0 && s.recipeDelay > 0 {
			s.sleep(s.recipeDelay)
		}

		result, err := s.processRecipe(ctx, recipe, locationID, req.Force)
		totals.cacheHits += result.cacheHits
		if err != nil {
			errs = append(errs, fmt.Sprintf("Recipe %s: %v", recipe.ID, err))
			s.logger.Warn("recipe processing failed",
				zap.String("recipeId", recipe.ID),
				zap.Error(err))
			continue
		}

		processed++
		totals.updated += result.updated
		totals.skipped += result.skipped
	}

	success := len(errs) == 0
	message := fmt.Sprintf("Synced %d recipes: %d products updated, %d skipped, %d cache hits",
		processed, totals.updated, totals.skipped, totals.cacheHits)
	if !success {
		message = fmt.Sprintf("Completed with %d errors: %d recipes synced, %d products updated",
			len(errs), processed, totals.updated)
	}

	summary := domain.SyncSummary{
		Success:          success,
		Message:          message,
		RecipesProcessed: processed,
		ProductsUpdated:  totals.updated,
		ProductsSkipped:  totals.skipped,
		CacheHits:        totals.cacheHits,
		Errors:           capErrors(errs, s.errorCap),
		Timestamp:        startedAt,
	}

	s.appendHistory(ctx, startedAt, summary)

	s.logger.Info("sync run finished",
		zap.Bool("success", summary.Success),
		zap.Int("recipesProcessed", summary.RecipesProcessed),
		zap.Int("productsUpdated", summary.ProductsUpdated),
		zap.Int("productsSkipped", summary.ProductsSkipped),
		zap.Int("cacheHits", summary.CacheHits),
		zap.Int("errors", len(errs)))

	return summary, nil
}

// processRecipe resolves every ingredient of one recipe and persists the
// rebuilt ingredient list when anything changed. Ingredients that are
// not updated are preserved unchanged, in order.
func (s *SyncService) processRecipe(ctx context.Context, recipe domain.Recipe, locationID string, force bool) (recipeResult, error) {
	var result recipeResult

	names := recipe.IngredientNames()
	if len(names) == 0 {
		return result, nil
	}

	resolved, err := s.resolveProducts(ctx, names, locationID, &result)
	if err != nil {
		return result, err
	}

	now := s.now()
	changed := false
	updatedIngredients := make([]domain.Ingredient, len(recipe.Ingredients))
	copy(updatedIngredients, recipe.Ingredients)

	for i, ing := range recipe.Ingredients {
		key := domain.NormalizeIngredientName(ing.Name)
		if key == "" {
			continue
		}

		product, ok := resolved[key]
		if !ok {
			// No match found upstream; never an error
			result.skipped++
			continue
		}

		confidence := CalculateConfidenceScore(ing.Name, product.Description)
		if !force && !s.policy.ShouldUpdate(ing, product, confidence) {
			result.skipped++
			continue
		}

		updatedIngredients[i].Product = &domain.ProductData{
			ProductID:    product.ProductID,
			Price:        product.ResolvedPrice(),
			RegularPrice: product.RegularPrice,
			PromoPrice:   product.PromoPrice,
			ImageURL:     product.ImageURL,
			Size:         product.Size,
			Confidence:   confidence,
			UpdatedAt:    now,
		}
		result.updated++
		changed = true
	}

	if !changed {
		return result, nil
	}

	err = s.recipes.UpdateIngredients(ctx, recipe.ID, updatedIngredients, recipe.ProductDataLastSynced, now)
	if errors.Is(err, domain.ErrWriteConflict) {
		// A concurrent run got there first; its data is as good as ours
		s.logger.Warn("recipe write conflict, skipping",
			zap.String("recipeId", recipe.ID))
		result.skipped += result.updated
		result.updated = 0
		return result, nil
	}
	if err != nil {
		return result, err
	}

	return result, nil
}

// resolveProducts maps normalized ingredient names to their best catalog
// candidate, consulting the cache first and batching the misses into one
// external lookup. Successful external lookups are written back to the
// cache.
func (s *SyncService) resolveProducts(ctx context.Context, names []string, locationID string, result *recipeResult) (map[string]domain.Product, error) {
	resolved := make(map[string]domain.Product, len(names))
	seen := make(map[string]bool, len(names))
	var misses []string

	for _, name := range names {
		key := domain.NormalizeIngredientName(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		lookup, err := s.cache.GetProduct(ctx, name, locationID)
		if err == nil {
			resolved[key] = lookup.Product
			result.cacheHits++
			continue
		}
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("cache read failed",
				zap.String("ingredient", name),
				zap.Error(err))
		}
		misses = append(misses, name)
	}

	if len(misses) == 0 {
		return resolved, nil
	}

	found, err := s.catalog.BatchSearchProducts(ctx, misses, locationID)
	if err != nil {
		return nil, err
	}

	for name, candidates := range found {
		product, ok := firstPriced(candidates)
		if !ok {
			continue
		}

		resolved[domain.NormalizeIngredientName(name)] = product

		if err := s.cache.PutProduct(ctx, name, locationID, product); err != nil {
			// Cache write failures cost performance, not correctness
			s.logger.Warn("cache write failed",
				zap.String("ingredient", name),
				zap.Error(err))
		}
	}

	return resolved, nil
}

// firstPriced picks the first candidate with a usable price, trusting
// the provider's own relevance ordering.
func firstPriced(candidates []domain.Product) (domain.Product, bool) {
	for _, candidate := range candidates {
		if candidate.HasPrice() {
			return candidate, true
		}
	}
	return domain.Product{}, false
}

// appendHistory writes exactly one run record. Failures are logged, not
// surfaced: the caller already has the summary.
func (s *SyncService) appendHistory(ctx context.Context, startedAt time.Time, summary domain.SyncSummary) {
	record := domain.SyncRunRecord{
		ID:               uuid.NewString(),
		StartedAt:        startedAt,
		Success:          summary.Success,
		RecipesProcessed: summary.RecipesProcessed,
		ProductsUpdated:  summary.ProductsUpdated,
		ProductsSkipped:  summary.ProductsSkipped,
		CacheHits:        summary.CacheHits,
		Errors:           summary.Errors,
		Message:          summary.Message,
	}

	if err := s.history.Append(ctx, record); err != nil {
		s.logger.Error("failed to append sync history", zap.Error(err))
	}
}

// capErrors bounds the error list carried in summaries and history.
func capErrors(errs []string, limit int) []string {
	if errs == nil {
		return []string{}
	}
	if len(errs) <= limit {
		return errs
	}
	capped := make([]string, limit, limit+1)
	copy(capped, errs[:limit])
	capped = append(capped, fmt.Sprintf("... and %d more", len(errs)-limit))
	return capped
}

// SetClock overrides the service and policy clocks. Test use only.
func (s *SyncService) SetClock(now func() time.Time) {
	s.now = now
	s.policy.SetClock(now)
}

// SetSleep overrides the inter-recipe delay function. Test use only.
func (s *SyncService) SetSleep(sleep func(time.Duration)) {
	s.sleep = sleep
}
