package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/churn/internal/common"
	"github.com/Veraticus/churn/internal/engine"
	"github.com/Veraticus/churn/internal/features"
	"github.com/Veraticus/churn/internal/inference"
	"github.com/Veraticus/churn/internal/reference"
	"github.com/Veraticus/churn/internal/storage"
)

// openStorage opens the history database and brings its schema up to date.
func (a *app) openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(a.cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// backupDir is where history backups go: a backups directory next to the database.
func (a *app) backupDir() string {
	return filepath.Join(filepath.Dir(a.cfg.Database.Path), "backups")
}

// loadReference loads and cleans the reference dataset.
func (a *app) loadReference() (*reference.Dataset, error) {
	ds, err := reference.Load(a.cfg.Reference.Path)
	if err != nil {
		return nil, common.NewUserError("failed to load reference dataset "+a.cfg.Reference.Path, err)
	}
	a.logger.Debug("Loaded reference dataset",
		"path", a.cfg.Reference.Path,
		"rows", ds.Rows(),
		"dropped", ds.Dropped())
	return ds, nil
}

// newPredictor builds the prediction engine: reference statistics, feature
// pipeline, and scorer are loaded once here and passed down. A nil recorder
// disables history.
func (a *app) newPredictor(recorder engine.Recorder) (*engine.Predictor, error) {
	ds, err := a.loadReference()
	if err != nil {
		return nil, err
	}

	pipeline, err := features.NewPipeline(ds)
	if err != nil {
		return nil, common.NewUserError("reference dataset cannot normalize features", err)
	}

	modelCfg := a.cfg.Model
	modelCfg.Timeout = a.cfg.ScorerTimeout()
	scorer, err := inference.New(modelCfg)
	if err != nil {
		return nil, common.NewUserError("failed to load churn model", err)
	}

	opts := []engine.Option{
		engine.WithThreshold(a.cfg.Prediction.Threshold),
		engine.WithLogger(a.logger),
	}
	if recorder != nil {
		opts = append(opts, engine.WithRecorder(recorder))
	}
	return engine.New(pipeline, scorer, opts...)
}

// parseSince accepts a date (YYYY-MM-DD), a day count such as "30d", or a
// Go duration such as "12h", and returns the matching point in time.
func parseSince(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
		return t, nil
	}
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err == nil && n >= 0 {
			return now.AddDate(0, 0, -n), nil
		}
	}
	if d, err := time.ParseDuration(value); err == nil && d >= 0 {
		return now.Add(-d), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a date (YYYY-MM-DD), day count (30d) or duration (12h)", common.ErrInvalidData, value)
}
