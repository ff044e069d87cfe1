// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MolCrafts/molpack/chemfile/xyz"
	"github.com/MolCrafts/molpack/trajectory"
)

// TrajectoryInfo is the summary row for a stored trajectory.
type TrajectoryInfo struct {
	ID         int64
	Name       string
	SHA256     string
	FrameCount int
	CreatedAt  time.Time
}

// InsertTrajectory stores every frame and atom of t and returns the
// trajectory's assigned ID. Nothing is stored if any insert fails.
func (s *SQLiteStore) InsertTrajectory(ctx context.Context, t *trajectory.Trajectory, sha256 string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	const trajQuery = `
		INSERT INTO trajectories (name, sha256, frame_count, created_at)
		VALUES (?, ?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, trajQuery,
		t.Name,
		sha256,
		t.Len(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert trajectory: %w", err)
	}
	trajID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	const frameQuery = `
		INSERT INTO frames (trajectory_id, frame_index, title, atom_count)
		VALUES (?, ?, ?, ?)
	`
	const atomQuery = `
		INSERT INTO atoms (frame_id, atom_index, symbol, x, y, z)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	atomStmt, err := tx.PrepareContext(ctx, atomQuery)
	if err != nil {
		return 0, fmt.Errorf("prepare atom: %w", err)
	}
	defer atomStmt.Close()

	for i, frame := range t.Frames {
		result, err := tx.ExecContext(ctx, frameQuery, trajID, i, frame.Title, frame.Len())
		if err != nil {
			return 0, fmt.Errorf("insert frame %d: %w", i+1, err)
		}
		frameID, err := result.LastInsertId()
		if err != nil {
			return 0, err
		}
		for j, atom := range frame.Atoms {
			if _, err := atomStmt.ExecContext(ctx, frameID, j, atom.Symbol, atom.X, atom.Y, atom.Z); err != nil {
				return 0, fmt.Errorf("insert frame %d atom %d: %w", i+1, j+1, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return trajID, nil
}

// GetTrajectoryBySHA256 returns the trajectory summary with the given
// content hash, or nil if not found.
func (s *SQLiteStore) GetTrajectoryBySHA256(ctx context.Context, sha256 string) (*TrajectoryInfo, error) {
	const query = `
		SELECT id, name, sha256, frame_count, created_at
		FROM trajectories
		WHERE sha256 = ?
		LIMIT 1
	`
	info, err := scanTrajectoryInfo(s.db.QueryRowContext(ctx, query, sha256))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("get trajectory by sha256: %w", err)
	}
	return info, nil
}

// ListTrajectories returns a summary of every stored trajectory, oldest first.
func (s *SQLiteStore) ListTrajectories(ctx context.Context) ([]TrajectoryInfo, error) {
	const query = `
		SELECT id, name, sha256, frame_count, created_at
		FROM trajectories
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list trajectories: %w", err)
	}
	defer rows.Close()

	var list []TrajectoryInfo
	for rows.Next() {
		info, err := scanTrajectoryInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trajectory: %w", err)
		}
		list = append(list, *info)
	}
	return list, rows.Err()
}

// GetTrajectory loads a stored trajectory with all of its frames,
// or returns nil if not found.
func (s *SQLiteStore) GetTrajectory(ctx context.Context, id int64) (*trajectory.Trajectory, error) {
	const query = `
		SELECT id, name, sha256, frame_count, created_at
		FROM trajectories
		WHERE id = ?
	`
	info, err := scanTrajectoryInfo(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("get trajectory: %w", err)
	}

	t := &trajectory.Trajectory{Name: info.Name, Frames: make([]*xyz.Record, 0, info.FrameCount)}
	for i := 0; i < info.FrameCount; i++ {
		frame, err := s.GetFrame(ctx, id, i)
		if err != nil {
			return nil, err
		} else if frame == nil {
			return nil, fmt.Errorf("trajectory %d: frame %d: missing", id, i+1)
		}
		t.Frames = append(t.Frames, frame)
	}
	return t, nil
}

// GetFrame loads one frame (0-based index) of a stored trajectory,
// or returns nil if not found.
func (s *SQLiteStore) GetFrame(ctx context.Context, trajID int64, index int) (*xyz.Record, error) {
	const frameQuery = `
		SELECT id, title, atom_count
		FROM frames
		WHERE trajectory_id = ? AND frame_index = ?
	`
	var frameID int64
	var title string
	var atomCount int
	if err := s.db.QueryRowContext(ctx, frameQuery, trajID, index).Scan(&frameID, &title, &atomCount); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("get frame: %w", err)
	}

	const atomQuery = `
		SELECT symbol, x, y, z
		FROM atoms
		WHERE frame_id = ?
		ORDER BY atom_index
	`
	rows, err := s.db.QueryContext(ctx, atomQuery, frameID)
	if err != nil {
		return nil, fmt.Errorf("get atoms: %w", err)
	}
	defer rows.Close()

	frame := &xyz.Record{Title: title, Atoms: make([]xyz.Atom, 0, atomCount)}
	for rows.Next() {
		var atom xyz.Atom
		if err := rows.Scan(&atom.Symbol, &atom.X, &atom.Y, &atom.Z); err != nil {
			return nil, fmt.Errorf("scan atom: %w", err)
		}
		frame.Atoms = append(frame.Atoms, atom)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if frame.Len() != atomCount {
		return nil, fmt.Errorf("frame %d: found %d atoms, want %d", index+1, frame.Len(), atomCount)
	}
	return frame, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrajectoryInfo(row rowScanner) (*TrajectoryInfo, error) {
	var info TrajectoryInfo
	var createdAt string
	if err := row.Scan(&info.ID, &info.Name, &info.SHA256, &info.FrameCount, &createdAt); err != nil {
		return nil, err
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		info.CreatedAt = t
	}
	return &info, nil
}
