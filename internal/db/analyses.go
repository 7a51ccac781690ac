package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/go-moodtune/internal/analysis"
)

// AnalysisRepository handles analysis history operations.
type AnalysisRepository struct {
	pool *pgxpool.Pool
}

const analysisColumns = `id, text_hash, text, primary_emotion, sentiment, confidence, result, created_at`

// Create inserts an analysis.
func (r *AnalysisRepository) Create(ctx context.Context, a *Analysis) error {
	query := `INSERT INTO analyses (` + analysisColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, query,
		a.ID,
		a.TextHash,
		a.Text,
		a.PrimaryEmotion,
		a.Sentiment,
		a.Confidence,
		a.Result,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting analysis: %w", err)
	}
	return nil
}

func scanAnalysis(row pgx.Row, a *Analysis) error {
	return row.Scan(
		&a.ID,
		&a.TextHash,
		&a.Text,
		&a.PrimaryEmotion,
		&a.Sentiment,
		&a.Confidence,
		&a.Result,
		&a.CreatedAt,
	)
}

// Recent returns up to limit analyses, newest first.
func (r *AnalysisRepository) Recent(ctx context.Context, limit int) ([]Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		var a Analysis
		if err := scanAnalysis(rows, &a); err != nil {
			return nil, fmt.Errorf("scanning analysis: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// EmotionCounts returns how often each primary emotion was recorded.
func (r *AnalysisRepository) EmotionCounts(ctx context.Context) (map[string]int, error) {
	query := `SELECT primary_emotion, COUNT(*) FROM analyses GROUP BY primary_emotion`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("counting emotions: %w", err)
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

// Recorder stores service analyses in the analyses table.
type Recorder struct {
	repo *AnalysisRepository
}

// Recorder returns a history recorder backed by the database.
func (db *DB) Recorder() *Recorder {
	return &Recorder{repo: db.Analyses()}
}

// RecordAnalysis implements analysis.HistoryRecorder.
func (r *Recorder) RecordAnalysis(ctx context.Context, a analysis.Analysis) error {
	rec, err := FromAnalysis(a)
	if err != nil {
		return err
	}
	return r.repo.Create(ctx, &rec)
}

// FromAnalysis converts a service analysis to its stored form.
func FromAnalysis(a analysis.Analysis) (Analysis, error) {
	result, err := json.Marshal(a)
	if err != nil {
		return Analysis{}, fmt.Errorf("encoding analysis: %w", err)
	}
	return Analysis{
		ID:             a.ID,
		TextHash:       a.TextHash,
		Text:           a.Text,
		PrimaryEmotion: string(a.Primary),
		Sentiment:      a.Sentiment,
		Confidence:     a.Confidence,
		Result:         result,
		CreatedAt:      a.AnalyzedAt,
	}, nil
}
