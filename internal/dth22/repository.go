package dth22

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// timeLayout is fixed-width so lexical ordering of the TEXT column matches
// chronological ordering.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// Repository defines persistence for readings.
type Repository interface {
	// List returns all readings, newest first.
	List(ctx context.Context) ([]Reading, error)

	// GetByID returns ErrReadingNotFound if the reading does not exist.
	GetByID(ctx context.Context, id int64) (*Reading, error)

	// Create inserts a reading and returns it with ID and timestamps set.
	Create(ctx context.Context, in NewReading) (*Reading, error)

	// Update applies patch, refreshes updated_at and returns the stored reading.
	// Returns ErrReadingNotFound if the reading does not exist.
	Update(ctx context.Context, id int64, patch Patch) (*Reading, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates a new SQLite-backed repository.
//
// Parameters:
//   - db: Open handle with the dth22 migrations applied
//
// Returns:
//   - *SQLiteRepository: Repository ready for use
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

const selectColumns = `SELECT id, unit_name, suhu, kelembapan, created_at, updated_at FROM dth22`

// List returns all readings ordered by created_at descending.
// Readings created in the same microsecond fall back to id order.
//
// Returns:
//   - []Reading: All readings, empty when there are none
//   - error: If the query or a row scan fails
func (r *SQLiteRepository) List(ctx context.Context) ([]Reading, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	readings := make([]Reading, 0)
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, *reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating readings: %w", err)
	}
	return readings, nil
}

// GetByID retrieves a reading by its ID.
//
// Parameters:
//   - ctx: Context for cancellation
//   - id: Reading ID
//
// Returns:
//   - *Reading: The reading
//   - error: ErrReadingNotFound if no row matches
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*Reading, error) {
	return r.getByID(ctx, r.db, id)
}

// Create inserts a new reading.
//
// Parameters:
//   - ctx: Context for cancellation
//   - in: Validated values; nil fields are stored as NULL
//
// Returns:
//   - *Reading: The stored row, with its ID and timestamps
//   - error: If the insert fails
func (r *SQLiteRepository) Create(ctx context.Context, in NewReading) (*Reading, error) {
	now := r.now().UTC()
	ts := now.Format(timeLayout)

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO dth22 (unit_name, suhu, kelembapan, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		in.UnitName, in.Suhu, in.Kelembapan, ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting reading: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading insert id: %w", err)
	}

	created, _ := time.Parse(timeLayout, ts) //nolint:errcheck // formatted above
	return &Reading{
		ID:         id,
		UnitName:   in.UnitName,
		Suhu:       in.Suhu,
		Kelembapan: in.Kelembapan,
		CreatedAt:  created,
		UpdatedAt:  created,
	}, nil
}

// Update applies a partial update inside a transaction.
//
// Parameters:
//   - ctx: Context for cancellation
//   - id: Reading ID
//   - patch: Fields to change; unset fields keep their value
//
// Returns:
//   - *Reading: The row as it is after the update
//   - error: ErrReadingNotFound if no row matches, or a storage error
func (r *SQLiteRepository) Update(ctx context.Context, id int64, patch Patch) (*Reading, error) {
	sets := []string{"updated_at = ?"}
	args := []any{r.now().UTC().Format(timeLayout)}

	if patch.UnitName != nil {
		sets = append(sets, "unit_name = ?")
		args = append(args, *patch.UnitName)
	}
	if patch.Suhu != nil {
		sets = append(sets, "suhu = ?")
		args = append(args, *patch.Suhu)
	}
	if patch.Kelembapan != nil {
		sets = append(sets, "kelembapan = ?")
		args = append(args, *patch.Kelembapan)
	}
	args = append(args, id)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	result, err := tx.ExecContext(ctx,
		`UPDATE dth22 SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("updating reading: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrReadingNotFound
	}

	reading, err := r.getByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing update: %w", err)
	}
	return reading, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLiteRepository) getByID(ctx context.Context, q queryRower, id int64) (*Reading, error) {
	reading, err := scanReading(q.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReadingNotFound
	}
	return reading, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReading(s scanner) (*Reading, error) {
	var (
		reading            Reading
		createdAt, updated string
	)
	if err := s.Scan(&reading.ID, &reading.UnitName, &reading.Suhu, &reading.Kelembapan, &createdAt, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning reading: %w", err)
	}

	var err error
	if reading.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if reading.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &reading, nil
}

// parseTime accepts the storage layout and plain RFC 3339 for rows written by hand.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
