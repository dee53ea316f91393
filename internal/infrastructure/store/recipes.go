package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/homeplate/backend/internal/domain"
)

// timeFormat is how timestamps are stored; RFC3339 with sub-second
// precision so the optimistic-concurrency comparison is exact.
const timeFormat = time.RFC3339Nano

// RecipeStore implements domain.RecipeRepository on SQLite.
type RecipeStore struct {
	store *Store
}

// NewRecipeStore wraps an open Store.
func NewRecipeStore(s *Store) *RecipeStore {
	return &RecipeStore{store: s}
}

// GetByIDs loads the recipes with the given ids. Unknown ids are simply
// absent from the result; the sync job reports them per-recipe.
func (r *RecipeStore) GetByIDs(ctx context.Context, ids []string) ([]domain.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf(
		"SELECT id, title, servings, ingredients, product_data_last_synced FROM recipes WHERE id IN (%s) ORDER BY id",
		placeholders,
	)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	return scanRecipes(rows)
}

// ListPage loads a bounded page of recipes ordered by id.
func (r *RecipeStore) ListPage(ctx context.Context, limit int) ([]domain.Recipe, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.store.db.QueryContext(ctx,
		"SELECT id, title, servings, ingredients, product_data_last_synced FROM recipes ORDER BY id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	return scanRecipes(rows)
}

// UpdateIngredients rewrites a recipe's ingredient list and sync
// timestamp. The write only applies if product_data_last_synced still
// equals prevSynced (optimistic concurrency); a concurrent sync run that
// got there first causes ErrWriteConflict.
func (r *RecipeStore) UpdateIngredients(ctx context.Context, id string, ingredients []domain.Ingredient, prevSynced *time.Time, syncedAt time.Time) error {
	raw, err := json.Marshal(ingredients)
	if err != nil {
		return fmt.Errorf("marshal ingredients: %w", err)
	}

	var prev any
	if prevSynced != nil {
		prev = prevSynced.UTC().Format(timeFormat)
	}

	res, err := r.store.db.ExecContext(ctx,
		"UPDATE recipes SET ingredients = ?, product_data_last_synced = ? WHERE id = ? AND product_data_last_synced IS ?",
		string(raw), syncedAt.UTC().Format(timeFormat), id, prev,
	)
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Distinguish a lost race from a missing recipe
	var exists int
	err = r.store.db.QueryRowContext(ctx, "SELECT 1 FROM recipes WHERE id = ?", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return domain.ErrRecipeNotFound
	}
	if err != nil {
		return fmt.Errorf("check recipe: %w", err)
	}
	return domain.ErrWriteConflict
}

// Save inserts or replaces a recipe wholesale. Used by seeding and
// tests; the sync job itself only goes through UpdateIngredients.
func (r *RecipeStore) Save(ctx context.Context, recipe domain.Recipe) error {
	if err := recipe.Validate(); err != nil {
		return err
	}

	raw, err := json.Marshal(recipe.Ingredients)
	if err != nil {
		return fmt.Errorf("marshal ingredients: %w", err)
	}

	var synced any
	if recipe.ProductDataLastSynced != nil {
		synced = recipe.ProductDataLastSynced.UTC().Format(timeFormat)
	}

	_, err = r.store.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO recipes (id, title, servings, ingredients, product_data_last_synced) VALUES (?, ?, ?, ?, ?)",
		recipe.ID, recipe.Title, recipe.Servings, string(raw), synced,
	)
	if err != nil {
		return fmt.Errorf("save recipe: %w", err)
	}
	return nil
}

// scanRecipes reads recipe rows, validating each record at the parse
// boundary. Malformed rows fail the load rather than propagating
// half-populated ingredients.
func scanRecipes(rows *sql.Rows) ([]domain.Recipe, error) {
	var recipes []domain.Recipe

	for rows.Next() {
		var (
			recipe    domain.Recipe
			rawIngr   string
			syncedStr sql.NullString
		)
		if err := rows.Scan(&recipe.ID, &recipe.Title, &recipe.Servings, &rawIngr, &syncedStr); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}

		if err := json.Unmarshal([]byte(rawIngr), &recipe.Ingredients); err != nil {
			return nil, fmt.Errorf("recipe %s: decode ingredients: %w", recipe.ID, err)
		}

		if syncedStr.Valid {
			t, err := time.Parse(timeFormat, syncedStr.String)
			if err != nil {
				return nil, fmt.Errorf("recipe %s: parse sync timestamp: %w", recipe.ID, err)
			}
			recipe.ProductDataLastSynced = &t
		}

		if err := recipe.Validate(); err != nil {
			return nil, fmt.Errorf("recipe %s: %w", recipe.ID, err)
		}

		recipes = append(recipes, recipe)
	}

	return recipes, rows.Err()
}
