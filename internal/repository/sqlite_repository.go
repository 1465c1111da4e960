package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/anime-shed/fingerprint-quality-go/internal/logger"
)

// SQLiteScoreRepository stores score records in SQLite. Native measures are
// kept as a CBOR blob.
type SQLiteScoreRepository struct {
	db *sql.DB
}

// NewSQLiteScoreRepository opens (creating if needed) the database at dbPath.
func NewSQLiteScoreRepository(dbPath string) (*SQLiteScoreRepository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		location TEXT NOT NULL,
		format TEXT,
		width INTEGER,
		height INTEGER,
		score INTEGER,
		model_hash TEXT,
		minutiae_extracted INTEGER,
		processing_time_sec REAL,
		features BLOB,
		created_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_scores_location ON scores(location);`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	logger.WithField("path", dbPath).Debug("Score database ready")
	return &SQLiteScoreRepository{db: db}, nil
}

func (r *SQLiteScoreRepository) Save(ctx context.Context, record *ScoreRecord) error {
	blob, err := cbor.Marshal(record.Features)
	if err != nil {
		return fmt.Errorf("cannot encode features for %s: %v", record.Location, err)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO scores (
			location, format, width, height, score, model_hash, minutiae_extracted, processing_time_sec, features, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.Location,
		record.Format,
		record.Width,
		record.Height,
		record.Score,
		record.ModelHash,
		record.MinutiaeExtracted,
		record.ProcessingTimeSec,
		blob,
		record.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("cannot insert score for %s: %v", record.Location, err)
	}
	if record.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("cannot read inserted id: %v", err)
	}
	return nil
}

const selectColumns = `SELECT id, location, format, width, height, score, model_hash, minutiae_extracted, processing_time_sec, features, created_at FROM scores`

func (r *SQLiteScoreRepository) Get(ctx context.Context, id int64) (*ScoreRecord, error) {
	rec, err := scanRecord(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	return rec, err
}

// History returns the newest records for location first.
func (r *SQLiteScoreRepository) History(ctx context.Context, location string, limit int) ([]*ScoreRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, selectColumns+` WHERE location = ? ORDER BY id DESC LIMIT ?`, location, limit)
	if err != nil {
		return nil, fmt.Errorf("database error for %s: %v", location, err)
	}
	defer rows.Close()

	var out []*ScoreRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteScoreRepository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*ScoreRecord, error) {
	var (
		rec       ScoreRecord
		format    sql.NullString
		modelHash sql.NullString
		blob      []byte
		createdAt string
	)
	err := s.Scan(&rec.ID, &rec.Location, &format, &rec.Width, &rec.Height, &rec.Score,
		&modelHash, &rec.MinutiaeExtracted, &rec.ProcessingTimeSec, &blob, &createdAt)
	if err != nil {
		return nil, err
	}
	rec.Format = format.String
	rec.ModelHash = modelHash.String
	if len(blob) > 0 {
		if err := cbor.Unmarshal(blob, &rec.Features); err != nil {
			return nil, fmt.Errorf("cannot decode features of record %d: %v", rec.ID, err)
		}
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("bad timestamp on record %d: %v", rec.ID, err)
	}
	return &rec, nil
}
