package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/hymnal/internal/models"
	"github.com/desertthunder/hymnal/internal/shared"
)

const (
	fieldTitle  = "title"
	fieldLyrics = "lyrics"
)

// HymnRepository implements catalog.Store over SQLite.
//
// Hymn rows and their per-language texts are read with separate queries so that no two result sets
// are open at once; in-memory databases run on a single connection.
type HymnRepository struct {
	db *sql.DB
}

// NewHymnRepository creates a new HymnRepository with the given database connection
func NewHymnRepository(db *sql.DB) *HymnRepository {
	return &HymnRepository{db: db}
}

// Seed inserts every hymn not already present, keyed by id, and returns how many were added.
// Existing rows are left untouched so running it repeatedly is safe.
func (r *HymnRepository) Seed(ctx context.Context, hymns []models.Hymn) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, h := range hymns {
		var exists bool
		if err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM hymns WHERE id = ?)", h.ID).Scan(&exists); err != nil {
			return 0, fmt.Errorf("failed to check hymn %d: %w", h.ID, err)
		}
		if exists {
			continue
		}

		if err := r.insert(ctx, tx, h); err != nil {
			return 0, err
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}
	return inserted, nil
}

// Save inserts h, or replaces its fields and texts when a hymn with the same id exists.
// A replaced hymn keeps its original insertion sequence.
func (r *HymnRepository) Save(ctx context.Context, h models.Hymn) error {
	if h.ID <= 0 {
		return fmt.Errorf("%w: hymn id must be positive", shared.ErrInvalidInput)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sheetMusic, err := encodeSheetMusic(h.SheetMusicURL)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE hymns
		SET number = ?, category = ?, audio_url = ?, sheet_music = ?, created_at = ?
		WHERE id = ?
	`, h.Number, string(h.Category), nullString(h.AudioURL), sheetMusic, h.CreatedAt.UTC(), h.ID)
	if err != nil {
		return fmt.Errorf("failed to update hymn: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		if err := r.insert(ctx, tx, h); err != nil {
			return err
		}
	} else {
		if _, err := tx.ExecContext(ctx, "DELETE FROM hymn_texts WHERE hymn_id = ?", h.ID); err != nil {
			return fmt.Errorf("failed to clear hymn texts: %w", err)
		}
		if err := insertTexts(ctx, tx, h); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Count returns the number of stored hymns.
func (r *HymnRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM hymns").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count hymns: %w", err)
	}
	return count, nil
}

// GetAll returns every hymn ordered by ascending number, ties by insertion order.
func (r *HymnRepository) GetAll(ctx context.Context) ([]models.Hymn, error) {
	return r.query(ctx, `
		SELECT id, number, category, audio_url, sheet_music, created_at
		FROM hymns
		ORDER BY number ASC, sequence ASC
	`)
}

// GetByID retrieves a hymn by id, wrapping [shared.ErrHymnNotFound] when absent.
func (r *HymnRepository) GetByID(ctx context.Context, id int) (*models.Hymn, error) {
	hymns, err := r.query(ctx, `
		SELECT id, number, category, audio_url, sheet_music, created_at
		FROM hymns
		WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	if len(hymns) == 0 {
		return nil, fmt.Errorf("%w: %d", shared.ErrHymnNotFound, id)
	}
	return &hymns[0], nil
}

// GetRecent returns at most n hymns ordered by descending creation time, ties by insertion order.
func (r *HymnRepository) GetRecent(ctx context.Context, n int) ([]models.Hymn, error) {
	if n <= 0 {
		return []models.Hymn{}, nil
	}
	return r.query(ctx, `
		SELECT id, number, category, audio_url, sheet_music, created_at
		FROM hymns
		ORDER BY created_at DESC, sequence ASC
		LIMIT ?
	`, n)
}

func (r *HymnRepository) insert(ctx context.Context, tx *sql.Tx, h models.Hymn) error {
	sequence, err := NextSequence(ctx, tx, "hymns")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	sheetMusic, err := encodeSheetMusic(h.SheetMusicURL)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO hymns (id, sequence, number, category, audio_url, sheet_music, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, h.ID, sequence, h.Number, string(h.Category), nullString(h.AudioURL), sheetMusic, h.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert hymn %d: %w", h.ID, err)
	}

	return insertTexts(ctx, tx, h)
}

func insertTexts(ctx context.Context, tx *sql.Tx, h models.Hymn) error {
	fields := []struct {
		name string
		text models.MultilingualText
	}{
		{fieldTitle, h.Title},
		{fieldLyrics, h.Lyrics},
	}

	for _, f := range fields {
		for lang, body := range f.text {
			if body == "" {
				continue
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO hymn_texts (hymn_id, field, language, body) VALUES (?, ?, ?, ?)",
				h.ID, f.name, string(lang), body,
			)
			if err != nil {
				return fmt.Errorf("failed to insert %s text for hymn %d: %w", f.name, h.ID, err)
			}
		}
	}
	return nil
}

// query scans hymn rows, closes the result set, then attaches their texts.
func (r *HymnRepository) query(ctx context.Context, query string, args ...any) ([]models.Hymn, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query hymns: %w", err)
	}

	hymns := []models.Hymn{}
	for rows.Next() {
		h, err := scanHymn(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		hymns = append(hymns, *h)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating hymns: %w", err)
	}
	rows.Close()

	if len(hymns) == 0 {
		return hymns, nil
	}

	if err := r.attachTexts(ctx, hymns); err != nil {
		return nil, err
	}
	return hymns, nil
}

func (r *HymnRepository) attachTexts(ctx context.Context, hymns []models.Hymn) error {
	index := make(map[int]int, len(hymns))
	placeholders := make([]string, len(hymns))
	args := make([]any, len(hymns))
	for i, h := range hymns {
		index[h.ID] = i
		placeholders[i] = "?"
		args[i] = h.ID
	}

	query := fmt.Sprintf(
		"SELECT hymn_id, field, language, body FROM hymn_texts WHERE hymn_id IN (%s)",
		strings.Join(placeholders, ", "),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query hymn texts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			hymnID            int
			field, lang, body string
		)
		if err := rows.Scan(&hymnID, &field, &lang, &body); err != nil {
			return fmt.Errorf("failed to scan hymn text: %w", err)
		}

		i, ok := index[hymnID]
		if !ok {
			continue
		}
		h := &hymns[i]
		switch field {
		case fieldTitle:
			if h.Title == nil {
				h.Title = models.MultilingualText{}
			}
			h.Title[models.Language(lang)] = body
		case fieldLyrics:
			if h.Lyrics == nil {
				h.Lyrics = models.MultilingualText{}
			}
			h.Lyrics[models.Language(lang)] = body
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating hymn texts: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHymn(s scanner) (*models.Hymn, error) {
	var (
		h          models.Hymn
		category   string
		audioURL   sql.NullString
		sheetMusic sql.NullString
		createdAt  time.Time
	)

	if err := s.Scan(&h.ID, &h.Number, &category, &audioURL, &sheetMusic, &createdAt); err != nil {
		return nil, fmt.Errorf("failed to scan hymn: %w", err)
	}

	h.Category = models.Category(category)
	h.AudioURL = audioURL.String
	h.CreatedAt = createdAt.UTC()

	if sheetMusic.Valid && sheetMusic.String != "" {
		if err := json.Unmarshal([]byte(sheetMusic.String), &h.SheetMusicURL); err != nil {
			return nil, fmt.Errorf("failed to decode sheet music for hymn %d: %w", h.ID, err)
		}
	}

	return &h, nil
}

func encodeSheetMusic(urls []string) (sql.NullString, error) {
	if len(urls) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(urls)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode sheet music: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
