package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/justestif/go-moodtune/internal/analysis"
)

// RecordAnalysis implements analysis.HistoryRecorder.
func (s *Store) RecordAnalysis(ctx context.Context, a analysis.Analysis) error {
	result, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding analysis: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO Analysis (id, text_hash, text, primary_emotion, sentiment, confidence, result, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID.String(), a.TextHash, a.Text, string(a.Primary), a.Sentiment, a.Confidence, string(result), a.AnalyzedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting analysis: %w", err)
	}
	return nil
}

// History returns the most recent analyses, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]analysis.Analysis, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT result FROM Analysis ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	var out []analysis.Analysis
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning analysis: %w", err)
		}
		var a analysis.Analysis
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, fmt.Errorf("decoding analysis: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAnalysis returns one stored analysis.
func (s *Store) GetAnalysis(ctx context.Context, id uuid.UUID) (*analysis.Analysis, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT result FROM Analysis WHERE id = ?`, id.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying analysis: %w", err)
	}
	var a analysis.Analysis
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, fmt.Errorf("decoding analysis: %w", err)
	}
	return &a, nil
}

// EmotionCounts tallies stored analyses by primary emotion.
func (s *Store) EmotionCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT primary_emotion, COUNT(*) FROM Analysis GROUP BY primary_emotion`)
	if err != nil {
		return nil, fmt.Errorf("querying emotion counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var emotion string
		var n int
		if err := rows.Scan(&emotion, &n); err != nil {
			return nil, fmt.Errorf("scanning emotion count: %w", err)
		}
		counts[emotion] = n
	}
	return counts, rows.Err()
}
