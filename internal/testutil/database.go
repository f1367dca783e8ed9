// Package testutil provides shared fixtures for tests that need a database,
// a reference dataset, or a scoring model.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/churn/internal/model"
	"github.com/Veraticus/churn/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory database that is closed when the
// test ends. Any predictions given are saved before it is returned.
func SetupTestDB(t *testing.T, seed ...*model.Prediction) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	db := &TestDB{Storage: store, t: t}
	db.Seed(seed...)
	return db
}

// Seed saves predictions or fails the test.
func (db *TestDB) Seed(predictions ...*model.Prediction) {
	db.t.Helper()
	ctx := context.Background()
	for _, p := range predictions {
		if err := db.Storage.SavePrediction(ctx, p); err != nil {
			db.t.Fatalf("failed to seed prediction %q: %v", p.ID, err)
		}
	}
}

// Count returns the number of stored predictions.
func (db *TestDB) Count() int {
	db.t.Helper()
	preds, err := db.Storage.ListPredictions(context.Background(), storage.PredictionFilter{})
	if err != nil {
		db.t.Fatalf("failed to list predictions: %v", err)
	}
	return len(preds)
}
