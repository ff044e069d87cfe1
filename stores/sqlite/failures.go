// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MolCrafts/molpack/chemfile"
	"github.com/MolCrafts/molpack/trajectory"
)

// ParseFailure records an input that could not be imported.
// FrameNo, LineNo and ColumnNo are 1-based, and zero when unknown.
type ParseFailure struct {
	ID        int64
	Name      string
	SHA256    string
	ErrorCode string
	ErrorMsg  string
	FrameNo   int
	LineNo    int
	ColumnNo  int
	CreatedAt time.Time
}

// NewParseFailure extracts the code and location of err.
func NewParseFailure(name, sha256 string, err error) *ParseFailure {
	pf := &ParseFailure{
		Name:      name,
		SHA256:    sha256,
		ErrorCode: chemfile.ErrorCode(err),
		ErrorMsg:  err.Error(),
		CreatedAt: time.Now().UTC(),
	}
	var fe *trajectory.FrameError
	if errors.As(err, &fe) {
		pf.FrameNo = fe.Index + 1
	}
	var pe *chemfile.ParseError
	if errors.As(err, &pe) {
		pos := pe.Position()
		pf.LineNo, pf.ColumnNo = pos.Line, pos.Column
	}
	return pf
}

// InsertParseFailure stores pf and returns its assigned ID.
func (s *SQLiteStore) InsertParseFailure(ctx context.Context, pf *ParseFailure) (int64, error) {
	const query = `
		INSERT INTO parse_failures (name, sha256, error_code, error_msg, frame_no, line_no, column_no, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		pf.Name,
		pf.SHA256,
		pf.ErrorCode,
		pf.ErrorMsg,
		nullInt(pf.FrameNo),
		nullInt(pf.LineNo),
		nullInt(pf.ColumnNo),
		pf.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert parse_failure: %w", err)
	}
	return result.LastInsertId()
}

// ListParseFailures returns every recorded failure, newest first.
func (s *SQLiteStore) ListParseFailures(ctx context.Context) ([]ParseFailure, error) {
	const query = `
		SELECT id, name, sha256, error_code, error_msg, frame_no, line_no, column_no, created_at
		FROM parse_failures
		ORDER BY id DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list parse_failures: %w", err)
	}
	defer rows.Close()

	var list []ParseFailure
	for rows.Next() {
		var pf ParseFailure
		var frameNo, lineNo, columnNo sql.NullInt64
		var createdAt string
		if err := rows.Scan(
			&pf.ID,
			&pf.Name,
			&pf.SHA256,
			&pf.ErrorCode,
			&pf.ErrorMsg,
			&frameNo,
			&lineNo,
			&columnNo,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan parse_failure: %w", err)
		}
		pf.FrameNo = int(frameNo.Int64)
		pf.LineNo = int(lineNo.Int64)
		pf.ColumnNo = int(columnNo.Int64)
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			pf.CreatedAt = t
		}
		list = append(list, pf)
	}
	return list, rows.Err()
}

// TableStats returns row counts for all tables.
func (s *SQLiteStore) TableStats(ctx context.Context) (map[string]int64, error) {
	tables := []string{
		"trajectories",
		"frames",
		"atoms",
		"parse_failures",
	}

	stats := make(map[string]int64, len(tables))
	for _, table := range tables {
		var count int64
		query := `SELECT COUNT(*) ` + `FROM ` + table
		if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		stats[table] = count
	}

	return stats, nil
}
