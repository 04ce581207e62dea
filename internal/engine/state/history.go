package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/surge-downloader/trtool/internal/utils"
)

// Kind identifies the operation a history record describes.
type Kind string

const (
	KindBuild  Kind = "build"
	KindVerify Kind = "verify"
)

// Record is one completed build or verification.
type Record struct {
	ID           string
	Kind         Kind
	Name         string
	InfoHash     string
	TorrentPath  string
	TargetPath   string
	PieceLength  int64
	TotalSize    int64
	Pieces       int
	FailedPieces int
	FailedFiles  int
	CreatedAt    time.Time
	TimeTaken    time.Duration
}

// OK reports whether a verification found no failures. Builds are always OK.
func (r Record) OK() bool {
	return r.FailedPieces == 0 && r.FailedFiles == 0
}

// ErrNotFound is returned when no record matches a lookup.
var ErrNotFound = errors.New("history record not found")

// AddRecord stores r, assigning an ID and timestamp when they are unset.
func AddRecord(r Record) (Record, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if r.Kind != KindBuild && r.Kind != KindVerify {
		return r, fmt.Errorf("unknown history kind %q", r.Kind)
	}

	err := withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO history (
				id, kind, name, info_hash, torrent_path, target_path, piece_length,
				total_size, pieces, failed_pieces, failed_files, created_at, time_taken
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			r.ID, string(r.Kind), r.Name, r.InfoHash, r.TorrentPath, r.TargetPath, r.PieceLength,
			r.TotalSize, r.Pieces, r.FailedPieces, r.FailedFiles, r.CreatedAt.UnixMilli(), r.TimeTaken.Milliseconds())
		return err
	})
	if err != nil {
		return r, fmt.Errorf("failed to record %s: %w", r.Kind, err)
	}

	utils.Debug("history: recorded %s %s (%s)", r.Kind, r.Name, r.ID)
	return r, nil
}

const selectColumns = `
	SELECT id, kind, name, info_hash, torrent_path, target_path, piece_length,
		total_size, pieces, failed_pieces, failed_files, created_at, time_taken
	FROM history`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var r Record
	var kind string
	var torrentPath, targetPath sql.NullString
	var createdAt, timeTaken sql.NullInt64

	if err := s.Scan(
		&r.ID, &kind, &r.Name, &r.InfoHash, &torrentPath, &targetPath, &r.PieceLength,
		&r.TotalSize, &r.Pieces, &r.FailedPieces, &r.FailedFiles, &createdAt, &timeTaken,
	); err != nil {
		return r, err
	}

	r.Kind = Kind(kind)
	if torrentPath.Valid {
		r.TorrentPath = torrentPath.String
	}
	if targetPath.Valid {
		r.TargetPath = targetPath.String
	}
	if createdAt.Valid {
		r.CreatedAt = time.UnixMilli(createdAt.Int64)
	}
	if timeTaken.Valid {
		r.TimeTaken = time.Duration(timeTaken.Int64) * time.Millisecond
	}
	return r, nil
}

// ListHistory returns the newest records first. A limit below one returns all.
func ListHistory(limit int) ([]Record, error) {
	d := getDBHelper()
	if d == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := selectColumns + ` ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			utils.Debug("Error closing rows: %v", err)
		}
	}()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// LatestByHash returns the newest record of kind for an info hash.
func LatestByHash(infoHash string, kind Kind) (*Record, error) {
	d := getDBHelper()
	if d == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	row := d.QueryRow(selectColumns+` WHERE info_hash = ? AND kind = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		infoHash, string(kind))
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ClearHistory deletes every record and returns how many were removed.
func ClearHistory() (int64, error) {
	var n int64
	err := withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM history`)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}
