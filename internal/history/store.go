package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"tunecast/internal/config"
)

// Store manages upload history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.LogDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin records a freshly encoded run and returns it.
func (s *Store) Begin(ctx context.Context, rec Record) (*Record, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	status := rec.Status
	if status == "" {
		status = StatusEncoded
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO uploads (
            id, audio_path, image_path, output_path, duration_seconds,
            title, privacy, video_id, status, error_message, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		rec.AudioPath,
		rec.ImagePath,
		nullableString(rec.OutputPath),
		rec.DurationSeconds,
		nullableString(rec.Title),
		nullableString(rec.Privacy),
		nil,
		status,
		nil,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	return s.GetByID(ctx, id)
}

// MarkUploaded transitions a run to uploaded and stores the video ID.
func (s *Store) MarkUploaded(ctx context.Context, id, videoID string) error {
	return s.transition(ctx, id, StatusUploaded, videoID, "")
}

// MarkFailed transitions a run to failed and stores the error text.
func (s *Store) MarkFailed(ctx context.Context, id, errorMessage string) error {
	return s.transition(ctx, id, StatusFailed, "", errorMessage)
}

func (s *Store) transition(ctx context.Context, id string, status Status, videoID, errorMessage string) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE uploads SET status = ?, video_id = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		status,
		nullableString(videoID),
		nullableString(errorMessage),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

// GetByID fetches a run by identifier. A missing run returns (nil, nil).
func (s *Store) GetByID(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM uploads WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return rec, nil
}

// Recent returns the newest runs first, up to limit (all runs when limit <= 0).
func (s *Store) Recent(ctx context.Context, limit int) ([]*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM uploads ORDER BY rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Stats returns a count of runs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM uploads GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("history stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

const recordColumns = "id, audio_path, image_path, output_path, duration_seconds, title, privacy, video_id, status, error_message, created_at, updated_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id           string
		audioPath    string
		imagePath    string
		outputPath   sql.NullString
		duration     float64
		title        sql.NullString
		privacy      sql.NullString
		videoID      sql.NullString
		statusStr    string
		errorMessage sql.NullString
		createdRaw   string
		updatedRaw   string
	)

	if err := scanner.Scan(
		&id,
		&audioPath,
		&imagePath,
		&outputPath,
		&duration,
		&title,
		&privacy,
		&videoID,
		&statusStr,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	rec := &Record{
		ID:              id,
		AudioPath:       audioPath,
		ImagePath:       imagePath,
		OutputPath:      outputPath.String,
		DurationSeconds: duration,
		Title:           title.String,
		Privacy:         privacy.String,
		VideoID:         videoID.String,
		Status:          Status(statusStr),
		ErrorMessage:    errorMessage.String,
	}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		rec.CreatedAt = created
	}
	if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		rec.UpdatedAt = updated
	}
	return rec, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
