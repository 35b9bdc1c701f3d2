package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smarttorque/progsync/internal/program"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ReplaceProgram stores h as the only program for its model.
//
// In one transaction the existing header for the model (matched
// case-insensitively) is found, its details deleted, the header deleted,
// and the new header and details inserted. replaced reports whether a
// previous program existed.
func (db *DB) ReplaceProgram(ctx context.Context, h *program.Header) (replaced bool, err error) {
	if err := h.Validate(); err != nil {
		return false, fmt.Errorf("invalid program: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	replaced, err = db.removeProgram(ctx, tx, h.Model)
	if err != nil {
		return false, err
	}

	if err := db.insertProgram(ctx, tx, h); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return replaced, nil
}

// DeleteProgram removes the program for model, details first. It reports
// whether anything was deleted; a missing model is not an error.
func (db *DB) DeleteProgram(ctx context.Context, model string) (bool, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleted, err := db.removeProgram(ctx, tx, model)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return deleted, nil
}

func (db *DB) removeProgram(ctx context.Context, q querier, model string) (bool, error) {
	id, err := db.findHeaderID(ctx, q, model)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if _, err := q.ExecContext(ctx, db.rebind(`DELETE FROM program_details WHERE header_id = ?`), id.String()); err != nil {
		return false, fmt.Errorf("failed to delete details of %s: %w", model, err)
	}
	if _, err := q.ExecContext(ctx, db.rebind(`DELETE FROM programs WHERE id = ?`), id.String()); err != nil {
		return false, fmt.Errorf("failed to delete program %s: %w", model, err)
	}

	return true, nil
}

func (db *DB) insertProgram(ctx context.Context, q querier, h *program.Header) error {
	headerQuery := db.rebind(`
	INSERT INTO programs (id, model, model_key, workcell, file_path, file_date, extracted_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := q.ExecContext(ctx, headerQuery,
		h.ID.String(),
		h.Model,
		modelKey(h.Model),
		h.Workcell,
		h.FilePath,
		formatTime(h.FileDate),
		formatTime(h.ExtractedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert program %s: %w", h.Model, err)
	}

	detailQuery := db.rebind(`
	INSERT INTO program_details (
		id, header_id, row_no, torque_unit, angle_unit,
		target_torque, min_angle, max_angle, screw_count, speed_rpm
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for _, d := range h.Details {
		_, err := q.ExecContext(ctx, detailQuery,
			d.ID.String(),
			h.ID.String(),
			d.RowNumber,
			string(d.TorqueUnit),
			d.AngleUnit,
			d.TargetTorque.StringFixed(2),
			d.MinAngle.StringFixed(2),
			d.MaxAngle.StringFixed(2),
			d.ScrewCount,
			d.SpeedRPM,
		)
		if err != nil {
			return fmt.Errorf("failed to insert detail row %d of %s: %w", d.RowNumber, h.Model, err)
		}
	}

	return nil
}

// FindHeaderID returns the stored header ID for model, or ErrNotFound.
func (db *DB) FindHeaderID(ctx context.Context, model string) (uuid.UUID, error) {
	return db.findHeaderID(ctx, db.conn, model)
}

func (db *DB) findHeaderID(ctx context.Context, q querier, model string) (uuid.UUID, error) {
	var id string
	err := q.QueryRowContext(ctx, db.rebind(`SELECT id FROM programs WHERE model_key = ?`), modelKey(model)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrNotFound, model)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to find program %s: %w", model, err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt program id %q: %w", id, err)
	}
	return parsed, nil
}

// Summary is a stored header with its detail count.
type Summary struct {
	ID          uuid.UUID
	Model       string
	Workcell    string
	FilePath    string
	FileDate    time.Time
	ExtractedAt time.Time
	DetailCount int
}

// ListOptions filters ListHeaders.
type ListOptions struct {
	// Workcell restricts results to one workcell (empty = all).
	Workcell string
	// Limit restricts the number of results (0 = no limit).
	Limit int
}

// ListHeaders returns stored programs ordered by workcell then model.
func (db *DB) ListHeaders(ctx context.Context, opts ListOptions) ([]Summary, error) {
	query := `
	SELECT p.id, p.model, p.workcell, p.file_path, p.file_date, p.extracted_at,
	       COUNT(d.id)
	FROM programs p
	LEFT JOIN program_details d ON d.header_id = p.id
	`
	var args []any
	if opts.Workcell != "" {
		query += " WHERE p.workcell = ?"
		args = append(args, opts.Workcell)
	}
	query += `
	GROUP BY p.id, p.model, p.workcell, p.file_path, p.file_date, p.extracted_at
	ORDER BY p.workcell ASC, p.model_key ASC
	`
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}
	defer rows.Close()

	var result []Summary
	for rows.Next() {
		var s Summary
		var id, fileDate, extractedAt string
		if err := rows.Scan(&id, &s.Model, &s.Workcell, &s.FilePath, &fileDate, &extractedAt, &s.DetailCount); err != nil {
			return nil, fmt.Errorf("failed to scan program: %w", err)
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("corrupt program id %q: %w", id, err)
		}
		s.FileDate = parseTime(fileDate)
		s.ExtractedAt = parseTime(extractedAt)
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating programs: %w", err)
	}

	return result, nil
}

// GetProgram loads the program for model with its details ordered by row.
// Returns ErrNotFound if the model has no stored program.
func (db *DB) GetProgram(ctx context.Context, model string) (*program.Header, error) {
	query := db.rebind(`
	SELECT id, model, workcell, file_path, file_date, extracted_at
	FROM programs
	WHERE model_key = ?
	`)

	var h program.Header
	var id, fileDate, extractedAt string
	err := db.conn.QueryRowContext(ctx, query, modelKey(model)).
		Scan(&id, &h.Model, &h.Workcell, &h.FilePath, &fileDate, &extractedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, model)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get program %s: %w", model, err)
	}
	if h.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("corrupt program id %q: %w", id, err)
	}
	h.FileDate = parseTime(fileDate)
	h.ExtractedAt = parseTime(extractedAt)

	details, err := db.getDetails(ctx, h.ID)
	if err != nil {
		return nil, err
	}
	h.Details = details

	return &h, nil
}

func (db *DB) getDetails(ctx context.Context, headerID uuid.UUID) ([]program.Detail, error) {
	query := db.rebind(`
	SELECT id, row_no, torque_unit, angle_unit,
	       target_torque, min_angle, max_angle, screw_count, speed_rpm
	FROM program_details
	WHERE header_id = ?
	ORDER BY row_no ASC
	`)

	rows, err := db.conn.QueryContext(ctx, query, headerID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query details: %w", err)
	}
	defer rows.Close()

	details := []program.Detail{}
	for rows.Next() {
		var d program.Detail
		var id, torqueUnit string
		err := rows.Scan(
			&id,
			&d.RowNumber,
			&torqueUnit,
			&d.AngleUnit,
			&d.TargetTorque,
			&d.MinAngle,
			&d.MaxAngle,
			&d.ScrewCount,
			&d.SpeedRPM,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan detail: %w", err)
		}
		if d.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("corrupt detail id %q: %w", id, err)
		}
		d.HeaderID = headerID
		d.TorqueUnit = program.TorqueUnit(torqueUnit)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating details: %w", err)
	}

	return details, nil
}

// Counts is the number of stored rows per table.
type Counts struct {
	Programs int
	Details  int
	// Orphans are details whose header no longer exists. Always zero
	// unless the database was edited by hand.
	Orphans int
}

// Counts returns table row counts.
func (db *DB) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	queries := []struct {
		dest  *int
		query string
	}{
		{&c.Programs, `SELECT COUNT(*) FROM programs`},
		{&c.Details, `SELECT COUNT(*) FROM program_details`},
		{&c.Orphans, `SELECT COUNT(*) FROM program_details d WHERE NOT EXISTS (SELECT 1 FROM programs p WHERE p.id = d.header_id)`},
	}
	for _, q := range queries {
		if err := db.conn.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return Counts{}, fmt.Errorf("failed to count rows: %w", err)
		}
	}
	return c, nil
}
