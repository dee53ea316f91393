package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/homeplate/backend/internal/domain"
	"github.com/homeplate/backend/internal/infrastructure/cache"
)

// fakeRecipeRepo is an in-memory domain.RecipeRepository.
type fakeRecipeRepo struct {
	mu          sync.Mutex
	recipes     []domain.Recipe
	fetchErr    error
	conflictOn  map[string]bool
	updateCalls map[string]int
}

func newFakeRecipeRepo(recipes ...domain.Recipe) *fakeRecipeRepo {
	return &fakeRecipeRepo{recipes: recipes, updateCalls: make(map[string]int)}
}

func (f *fakeRecipeRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Recipe, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.Recipe
	for _, r := range f.recipes {
		if want[r.ID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecipeRepo) ListPage(ctx context.Context, limit int) ([]domain.Recipe, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if limit > len(f.recipes) {
		limit = len(f.recipes)
	}
	out := make([]domain.Recipe, limit)
	copy(out, f.recipes[:limit])
	return out, nil
}

func (f *fakeRecipeRepo) UpdateIngredients(ctx context.Context, id string, ingredients []domain.Ingredient, prevSynced *time.Time, syncedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updateCalls[id]++
	if f.conflictOn[id] {
		return domain.ErrWriteConflict
	}
	for i, r := range f.recipes {
		if r.ID != id {
			continue
		}
		if !sameSyncTime(r.ProductDataLastSynced, prevSynced) {
			return domain.ErrWriteConflict
		}
		f.recipes[i].Ingredients = ingredients
		t := syncedAt
		f.recipes[i].ProductDataLastSynced = &t
		return nil
	}
	return domain.ErrRecipeNotFound
}

func (f *fakeRecipeRepo) get(id string) domain.Recipe {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.recipes {
		if r.ID == id {
			return r
		}
	}
	return domain.Recipe{}
}

func sameSyncTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// fakeCatalog serves canned products and counts batch calls.
type fakeCatalog struct {
	mu       sync.Mutex
	products map[string][]domain.Product
	failFor  string // batch containing this name errors
	calls    int
	searched []string
}

func (f *fakeCatalog) BatchSearchProducts(ctx context.Context, names []string, locationID string) (map[string][]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.searched = append(f.searched, names...)

	for _, name := range names {
		if f.failFor != "" && name == f.failFor {
			return nil, fmt.Errorf("%w: status 500", domain.ErrCatalogAPIFailure)
		}
	}

	out := make(map[string][]domain.Product)
	for _, name := range names {
		if products, ok := f.products[name]; ok {
			out[name] = products
		}
	}
	return out, nil
}

// fakeHistory records appended run records.
type fakeHistory struct {
	mu      sync.Mutex
	records []domain.SyncRunRecord
}

func (f *fakeHistory) Append(ctx context.Context, record domain.SyncRunRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeHistory) Recent(ctx context.Context, limit int) ([]domain.SyncRunRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.SyncRunRecord, len(f.records))
	copy(out, f.records)
	return out, nil
}

func milkProduct() domain.Product {
	return domain.Product{
		ProductID:    "0001111041700",
		Description:  "Whole Milk",
		RegularPrice: 3.49,
		Size:         "1 gal",
	}
}

func newTestService(repo *fakeRecipeRepo, catalog *fakeCatalog, history *fakeHistory) *SyncService {
	svc := NewSyncService(
		repo,
		history,
		cache.NewMemoryCache(24*time.Hour, 100),
		catalog,
		zap.NewNop(),
		SyncServiceConfig{DefaultLocationID: "01400943"},
	)
	svc.SetSleep(func(time.Duration) {})
	return svc
}

func TestSyncRun_EnrichesUnsyncedIngredients(t *testing.T) {
	repo := newFakeRecipeRepo(domain.Recipe{
		ID:    "r1",
		Title: "Cereal",
		Ingredients: []domain.Ingredient{
			{Name: "whole milk", Amount: "2", Unit: "cup"},
			{Name: "unknown exotic item"},
		},
	})
	catalog := &fakeCatalog{products: map[string][]domain.Product{"whole milk": {milkProduct()}}}
	history := &fakeHistory{}
	svc := newTestService(repo, catalog, history)

	summary, err := svc.Run(context.Background(), domain.SyncRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !summary.Success {
		t.Errorf("Success = false, want true; errors: %v", summary.Errors)
	}
	if summary.RecipesProcessed != 1 {
		t.Errorf("RecipesProcessed = %d, want 1", summary.RecipesProcessed)
	}
	if summary.ProductsUpdated != 1 {
		t.Errorf("ProductsUpdated = %d, want 1", summary.ProductsUpdated)
	}
	if summary.ProductsSkipped != 1 {
		t.Errorf("ProductsSkipped = %d, want 1 (no match for exotic item)", summary.ProductsSkipped)
	}

	stored := repo.get("r1")
	if stored.ProductDataLastSynced == nil {
		t.Fatal("ProductDataLastSynced not set after update")
	}
	milk := stored.Ingredients[0]
	if !milk.Synced() {
		t.Fatal("milk ingredient not enriched")
	}
	if milk.Product.Price != 3.49 {
		t.Errorf("Price = %v, want 3.49", milk.Product.Price)
	}
	if milk.Product.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0 for identical strings", milk.Product.Confidence)
	}
	if milk.Amount != "2" || milk.Unit != "cup" {
		t.Errorf("non-product fields changed: %+v", milk)
	}
	if stored.Ingredients[1].Synced() {
		t.Error("unmatched ingredient should stay unenriched")
	}
	if len(history.records) != 1 {
		t.Errorf("history records = %d, want exactly 1", len(history.records))
	}
}

func TestSyncRun_IdempotentWhenPricesUnchanged(t *testing.T) {
	repo := newFakeRecipeRepo(domain.Recipe{
		ID:          "r1",
		Ingredients: []domain.Ingredient{{Name: "whole milk"}},
	})
	catalog := &fakeCatalog{products: map[string][]domain.Product{"whole milk": {milkProduct()}}}
	history := &fakeHistory{}
	svc := newTestService(repo, catalog, history)
	ctx := context.Background()

	first, err := svc.Run(ctx, domain.SyncRequest{})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.ProductsUpdated != 1 {
		t.Fatalf("first run ProductsUpdated = %d, want 1", first.ProductsUpdated)
	}

	afterFirst := repo.get("r1")
	firstSynced := *afterFirst.ProductDataLastSynced
	firstConfidence := afterFirst.Ingredients[0].Product.Confidence

	second, err := svc.Run(ctx, domain.SyncRequest{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if second.ProductsUpdated != 0 {
		t.Errorf("second run ProductsUpdated = %d, want 0", second.ProductsUpdated)
	}
	if second.CacheHits < 1 {
		t.Errorf("second run CacheHits = %d, want >= 1", second.CacheHits)
	}

	afterSecond := repo.get("r1")
	if !afterSecond.ProductDataLastSynced.Equal(firstSynced) {
		t.Error("ProductDataLastSynced changed on a no-op second run")
	}
	if afterSecond.Ingredients[0].Product.Confidence != firstConfidence {
		t.Error("confidence changed on a no-op second run")
	}
	if repo.updateCalls["r1"] != 1 {
		t.Errorf("UpdateIngredients called %d times, want 1", repo.updateCalls["r1"])
	}
}

func TestSyncRun_CachePreventsDuplicateExternalCalls(t *testing.T) {
	repo := newFakeRecipeRepo(domain.Recipe{
		ID:          "r1",
		Ingredients: []domain.Ingredient{{Name: "whole milk"}},
	})
	catalog := &fakeCatalog{products: map[string][]domain.Product{"whole milk": {milkProduct()}}}
	history := &fakeHistory{}
	svc := newTestService(repo, catalog, history)
	ctx := context.Background()

	if _, err := svc.Run(ctx, domain.SyncRequest{}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := svc.Run(ctx, domain.SyncRequest{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if catalog.calls != 1 {
		t.Errorf("external batch calls = %d, want 1 (second run served from cache)", catalog.calls)
	}
	if second.CacheHits < 1 {
		t.Errorf("second run CacheHits = %d, want >= 1", second.CacheHits)
	}
}

func TestSyncRun_ForceBypassesConfidence(t *testing.T) {
	synced := time.Now().Add(-time.Hour)
	repo := newFakeRecipeRepo(domain.Recipe{
		ID:                    "r1",
		ProductDataLastSynced: &synced,
		Ingredients: []domain.Ingredient{{
			Name: "flour",
			Product: &domain.ProductData{
				ProductID:  "good-match",
				Price:      2.19,
				Confidence: 0.95,
				UpdatedAt:  synced,
			},
		}},
	})
	// The only candidate is a terrible match for "flour"
	catalog := &fakeCatalog{products: map[string][]domain.Product{
		"flour": {{ProductID: "chips", Description: "Blue Corn Tortilla Chips", RegularPrice: 4.99}},
	}}
	history := &fakeHistory{}
	svc := newTestService(repo, catalog, history)
	ctx := context.Background()

	withoutForce, err := svc.Run(ctx, domain.SyncRequest{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if withoutForce.ProductsUpdated != 0 {
		t.Fatalf("without force ProductsUpdated = %d, want 0 (low confidence)", withoutForce.ProductsUpdated)
	}

	forced, err := svc.Run(ctx, domain.SyncRequest{Force: true})
	if err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if forced.ProductsUpdated != 1 {
		t.Errorf("forced ProductsUpdated = %d, want 1", forced.ProductsUpdated)
	}

	stored := repo.get("r1")
	if stored.Ingredients[0].Product.ProductID != "chips" {
		t.Errorf("ProductID = %s, want chips (force overwrites)", stored.Ingredients[0].Product.ProductID)
	}
}

func TestSyncRun_PartialFailureIsolation(t *testing.T) {
	recipes := []domain.Recipe{
		{ID: "r1", Ingredients: []domain.Ingredient{{Name: "whole milk"}}},
		{ID: "r2", Ingredients: []domain.Ingredient{{Name: "cursed ingredient"}}},
		{ID: "r3", Ingredients: []domain.Ingredient{{Name: "eggs"}}},
	}
	repo := newFakeRecipeRepo(recipes...)
	catalog := &fakeCatalog{
		products: map[string][]domain.Product{
			"whole milk": {milkProduct()},
			"eggs":       {{ProductID: "eggs-12", Description: "Eggs", RegularPrice: 2.89}},
		},
		failFor: "cursed ingredient",
	}
	history := &fakeHistory{}
	svc := newTestService(repo, catalog, history)

	summary, err := svc.Run(context.Background(), domain.SyncRequest{})
	if err != nil {
		t.Fatalf("unexpected whole-run error: %v", err)
	}

	if summary.Success {
		t.Error("Success = true, want false when errors occurred")
	}
	if summary.RecipesProcessed != 2 {
		t.Errorf("RecipesProcessed = %d, want 2 (r1 and r3)", summary.RecipesProcessed)
	}
	if len(summary.Errors) != 1 || !strings.Contains(summary.Errors[0], "Recipe r2") {
		t.Errorf("Errors = %v, want one entry mentioning Recipe r2", summary.Errors)
	}

	// r1 and r3 updates are still persisted
	if !repo.get("r1").Ingredients[0].Synced() {
		t.Error("r1 not persisted despite r2 failing")
	}
	if !repo.get("r3").Ingredients[0].Synced() {
		t.Error("r3 not persisted despite r2 failing")
	}
	if repo.get("r2").Ingredients[0].Synced() {
		t.Error("r2 should not be enriched")
	}
	if len(history.records) != 1 {
		t.Errorf("history records = %d, want exactly 1", len(history.records))
	}
}

func TestSyncRun_FetchFailureFailsWholeRun(t *testing.T) {
	repo := newFakeRecipeRepo()
	repo.fetchErr = errors.New("database is on fire")
	history := &fakeHistory{}
	svc := newTestService(repo, &fakeCatalog{}, history)

	summary, err := svc.Run(context.Background(), domain.SyncRequest{})
	if err == nil {
		t.Fatal("Run error = nil, want fetch error")
	}

	if summary.Success {
		t.Error("Success = true, want false")
	}
	if !strings.HasPrefix(summary.Message, "Sync failed:") {
		t.Errorf("Message = %q, want 'Sync failed:' prefix", summary.Message)
	}
	if len(history.records) != 1 {
		t.Fatalf("history records = %d, want 1 (failed runs are still logged)", len(history.records))
	}
	if history.records[0].Success {
		t.Error("history record Success = true, want false")
	}
}

func TestSyncRun_ExplicitRecipeIDs(t *testing.T) {
	repo := newFakeRecipeRepo(
		domain.Recipe{ID: "r1", Ingredients: []domain.Ingredient{{Name: "whole milk"}}},
		domain.Recipe{ID: "r2", Ingredients: []domain.Ingredient{{Name: "eggs"}}},
	)
	catalog := &fakeCatalog{products: map[string][]domain.Product{
		"whole milk": {milkProduct()},
		"eggs":       {{ProductID: "eggs-12", Description: "Eggs", RegularPrice: 2.89}},
	}}
	svc := newTestService(repo, catalog, &fakeHistory{})

	summary, err := svc.Run(context.Background(), domain.SyncRequest{RecipeIDs: []string{"r2"}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.RecipesProcessed != 1 {
		t.Errorf("RecipesProcessed = %d, want 1", summary.RecipesProcessed)
	}
	if repo.get("r1").Ingredients[0].Synced() {
		t.Error("r1 touched despite not being requested")
	}
	if !repo.get("r2").Ingredients[0].Synced() {
		t.Error("r2 not enriched")
	}
}

func TestSyncRun_SkipsBlankIngredientNames(t *testing.T) {
	repo := newFakeRecipeRepo(domain.Recipe{
		ID: "r1",
		Ingredients: []domain.Ingredient{
			{Name: "   "},
			{Name: "whole milk"},
		},
	})
	catalog := &fakeCatalog{products: map[string][]domain.Product{"whole milk": {milkProduct()}}}
	svc := newTestService(repo, catalog, &fakeHistory{})

	if _, err := svc.Run(context.Background(), domain.SyncRequest{}); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, name := range catalog.searched {
		if strings.TrimSpace(name) == "" {
			t.Errorf("blank ingredient name sent to catalog: %q", name)
		}
	}
	stored := repo.get("r1")
	if stored.Ingredients[0].Synced() {
		t.Error("blank ingredient should stay untouched")
	}
	if !stored.Ingredients[1].Synced() {
		t.Error("named ingredient should be enriched")
	}
}

func TestSyncRun_WriteConflictCountsAsSkip(t *testing.T) {
	repo := newFakeRecipeRepo(domain.Recipe{
		ID:          "r1",
		Ingredients: []domain.Ingredient{{Name: "whole milk"}},
	})
	// Simulate a concurrent run winning the race before our write lands
	repo.conflictOn = map[string]bool{"r1": true}
	catalog := &fakeCatalog{products: map[string][]domain.Product{"whole milk": {milkProduct()}}}
	svc := newTestService(repo, catalog, &fakeHistory{})

	summary, err := svc.Run(context.Background(), domain.SyncRequest{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// The loser of the race records a skip, not an error
	if !summary.Success {
		t.Errorf("Success = false, want true; errors: %v", summary.Errors)
	}
	if summary.ProductsUpdated != 0 {
		t.Errorf("ProductsUpdated = %d, want 0 after conflict", summary.ProductsUpdated)
	}
	if summary.ProductsSkipped != 1 {
		t.Errorf("ProductsSkipped = %d, want 1 after conflict", summary.ProductsSkipped)
	}
}

func TestCapErrors(t *testing.T) {
	t.Run("nil becomes empty slice", func(t *testing.T) {
		got := capErrors(nil, 10)
		if got == nil || len(got) != 0 {
			t.Errorf("capErrors(nil) = %v, want empty slice", got)
		}
	})

	t.Run("under the cap passes through", func(t *testing.T) {
		errs := []string{"a", "b"}
		got := capErrors(errs, 10)
		if len(got) != 2 {
			t.Errorf("len = %d, want 2", len(got))
		}
	})

	t.Run("over the cap truncates with a tail note", func(t *testing.T) {
		errs := make([]string, 15)
		for i := range errs {
			errs[i] = fmt.Sprintf("error %d", i)
		}
		got := capErrors(errs, 10)
		if len(got) != 11 {
			t.Fatalf("len = %d, want 11 (10 + tail note)", len(got))
		}
		if !strings.Contains(got[10], "5 more") {
			t.Errorf("tail note = %q, want mention of 5 more", got[10])
		}
	})
}
