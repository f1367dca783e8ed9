package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/churn/internal/common"
	"github.com/Veraticus/churn/internal/model"
)

// PredictionFilter narrows ListPredictions. Zero values mean no restriction.
type PredictionFilter struct {
	Since      time.Time
	CustomerID *int64
	Limit      int
}

const predictionColumns = `id, customer_id, source, probability, threshold, churn, label, features, created_at`

// SavePrediction stores a prediction. Saving the same ID twice replaces it.
func (s *SQLiteStorage) SavePrediction(ctx context.Context, p *model.Prediction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePrediction(p); err != nil {
		return err
	}

	features, err := json.Marshal(p.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO predictions (`+predictionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CustomerID, string(p.Source), p.Probability, p.Threshold,
		p.Churn, string(p.Label), string(features), p.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}
	return nil
}

// GetPrediction returns the prediction with the given ID.
func (s *SQLiteStorage) GetPrediction(ctx context.Context, id string) (*model.Prediction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+predictionColumns+` FROM predictions WHERE id = ?`, id)
	p, err := scanPrediction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("prediction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPredictions returns predictions newest first.
func (s *SQLiteStorage) ListPredictions(ctx context.Context, filter PredictionFilter) ([]*model.Prediction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.Limit < 0 {
		return nil, ErrInvalidLimit
	}

	var conditions []string
	var args []any
	if !filter.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.Since.UTC())
	}
	if filter.CustomerID != nil {
		conditions = append(conditions, "customer_id = ?")
		args = append(args, *filter.CustomerID)
	}

	query := `SELECT ` + predictionColumns + ` FROM predictions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var predictions []*model.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate predictions: %w", err)
	}
	return predictions, nil
}

// SummarizePredictions aggregates predictions made at or after since.
func (s *SQLiteStorage) SummarizePredictions(ctx context.Context, since time.Time) (model.PredictionSummary, error) {
	if err := validateContext(ctx); err != nil {
		return model.PredictionSummary{}, err
	}

	summary := model.PredictionSummary{Since: since.UTC()}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(churn), 0), COALESCE(AVG(probability), 0)
		FROM predictions
		WHERE created_at >= ?`,
		since.UTC(),
	).Scan(&summary.Total, &summary.ChurnCount, &summary.MeanProbability)
	if err != nil {
		return model.PredictionSummary{}, fmt.Errorf("failed to summarize predictions: %w", err)
	}

	if summary.Total == 0 {
		return summary, nil
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT created_at FROM predictions
		WHERE created_at >= ?
		ORDER BY created_at DESC
		LIMIT 1`,
		since.UTC(),
	).Scan(&summary.Until)
	if err != nil {
		return model.PredictionSummary{}, fmt.Errorf("failed to find latest prediction: %w", err)
	}
	summary.Until = summary.Until.UTC()

	return summary, nil
}

// DeletePredictionsBefore removes predictions made before t and returns how many were removed.
func (s *SQLiteStorage) DeletePredictionsBefore(ctx context.Context, t time.Time) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if t.IsZero() {
		return 0, fmt.Errorf("%w: cutoff time", ErrNilParameter)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM predictions WHERE created_at < ?`, t.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete predictions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted predictions: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPrediction(row scanner) (*model.Prediction, error) {
	var (
		p        model.Prediction
		source   string
		label    string
		features string
	)
	if err := row.Scan(&p.ID, &p.CustomerID, &source, &p.Probability, &p.Threshold,
		&p.Churn, &label, &features, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan prediction: %w", err)
	}

	if err := json.Unmarshal([]byte(features), &p.Features); err != nil {
		return nil, fmt.Errorf("failed to decode features for prediction %s: %w", p.ID, err)
	}
	p.Source = model.Source(source)
	p.Label = model.RiskLabel(label)
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}
