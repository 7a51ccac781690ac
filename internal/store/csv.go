package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/justestif/go-moodtune/internal/clustering"
)

// importBatchSize is how many rows are written per transaction.
const importBatchSize = 500

// Required columns of a catalog CSV. track_id and liked are optional.
var requiredColumns = []string{
	"track_name", "artist_name", "popularity",
	"valence", "energy", "danceability", "acousticness", "tempo",
}

// ErrMissingColumn is returned when a catalog CSV lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// trackNamespace derives stable IDs for rows without a track_id.
var trackNamespace = uuid.MustParse("6f1c1f4e-3c55-4d2a-9a43-5e8f1b7d2c10")

// ImportResult counts the rows of a catalog import.
type ImportResult struct {
	Imported int
	Skipped  int // rows with a missing name or unparseable feature
}

// ImportCSV reads a Spotify dataset CSV with a header row and upserts its
// tracks. Malformed rows are skipped and counted.
func (s *Store) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	var result ImportResult

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return result, fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return result, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	batch := make([]clustering.Track, 0, importBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.UpsertTracks(ctx, batch); err != nil {
			return err
		}
		result.Imported += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("reading row: %w", err)
		}

		t, ok := parseRow(record, cols)
		if !ok {
			result.Skipped++
			continue
		}
		batch = append(batch, t)
		if len(batch) == importBatchSize {
			if err := flush(); err != nil {
				return result, err
			}
		}
	}
	if err := flush(); err != nil {
		return result, err
	}
	return result, nil
}

func parseRow(record []string, cols map[string]int) (clustering.Track, bool) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	t := clustering.Track{
		ID:     field("track_id"),
		Name:   field("track_name"),
		Artist: field("artist_name"),
	}
	if t.Name == "" || t.Artist == "" {
		return t, false
	}
	if t.ID == "" {
		t.ID = uuid.NewSHA1(trackNamespace, []byte(t.Artist+"\x00"+t.Name)).String()
	}

	if p, err := strconv.ParseFloat(field("popularity"), 64); err == nil {
		t.Popularity = int(p)
	}
	t.Liked, _ = strconv.ParseBool(field("liked"))

	for _, f := range []struct {
		name string
		dst  **float32
	}{
		{"valence", &t.Valence},
		{"energy", &t.Energy},
		{"danceability", &t.Danceability},
		{"acousticness", &t.Acousticness},
		{"tempo", &t.Tempo},
	} {
		v, err := strconv.ParseFloat(field(f.name), 32)
		if err != nil {
			return t, false
		}
		*f.dst = clustering.F32(float32(v))
	}
	return t, true
}
