package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/homeplate/backend/internal/domain"
)

// HistoryStore implements domain.SyncHistoryRepository on SQLite.
// Records are append-only; nothing here updates or deletes.
type HistoryStore struct {
	store *Store
}

// NewHistoryStore wraps an open Store.
func NewHistoryStore(s *Store) *HistoryStore {
	return &HistoryStore{store: s}
}

// Append writes one sync run record.
func (h *HistoryStore) Append(ctx context.Context, record domain.SyncRunRecord) error {
	errs := record.Errors
	if errs == nil {
		errs = []string{}
	}
	rawErrors, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("marshal errors: %w", err)
	}

	_, err = h.store.db.ExecContext(ctx,
		`INSERT INTO sync_runs
		 (id, started_at, success, recipes_processed, products_updated, products_skipped, cache_hits, errors, message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.StartedAt.UTC().Format(timeFormat),
		record.Success,
		record.RecipesProcessed,
		record.ProductsUpdated,
		record.ProductsSkipped,
		record.CacheHits,
		string(rawErrors),
		record.Message,
	)
	if err != nil {
		return fmt.Errorf("append sync run: %w", err)
	}
	return nil
}

// Recent returns the most recent run records, newest first.
func (h *HistoryStore) Recent(ctx context.Context, limit int) ([]domain.SyncRunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := h.store.db.QueryContext(ctx,
		`SELECT id, started_at, success, recipes_processed, products_updated, products_skipped, cache_hits, errors, message
		 FROM sync_runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sync runs: %w", err)
	}
	defer rows.Close()

	var records []domain.SyncRunRecord
	for rows.Next() {
		var (
			record     domain.SyncRunRecord
			startedStr string
			rawErrors  string
		)
		if err := rows.Scan(
			&record.ID, &startedStr, &record.Success,
			&record.RecipesProcessed, &record.ProductsUpdated, &record.ProductsSkipped,
			&record.CacheHits, &rawErrors, &record.Message,
		); err != nil {
			return nil, fmt.Errorf("scan sync run: %w", err)
		}

		started, err := time.Parse(timeFormat, startedStr)
		if err != nil {
			return nil, fmt.Errorf("sync run %s: parse timestamp: %w", record.ID, err)
		}
		record.StartedAt = started

		if err := json.Unmarshal([]byte(rawErrors), &record.Errors); err != nil {
			return nil, fmt.Errorf("sync run %s: decode errors: %w", record.ID, err)
		}

		records = append(records, record)
	}

	return records, rows.Err()
}
