package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"rsvpservice/internal/model"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrEventFull     = errors.New("event is fully booked")
	ErrRsvpNotFound  = errors.New("rsvp not found")
)

// queryTimeout bounds every store call so a stuck connection cannot
// hold a transaction (and its row locks) open indefinitely.
const queryTimeout = 5 * time.Second

type Repository interface {
	CreateEvent(ctx context.Context, e *model.Event) (int64, error)
	AdmitRsvpTx(ctx context.Context, rsvp *model.Rsvp) (int64, bool, error)
	UpdateRsvpStatus(ctx context.Context, eventID, userID int64, status string) error
	CancelRsvp(ctx context.Context, rsvpID int64) error
	CountRsvpStatuses(ctx context.Context, eventID int64) (model.StatusCounts, error)
	GetRsvpsByEventID(ctx context.Context, eventID int64) ([]model.Rsvp, error)
	MigrateUp(migrationsDir string) error
	MigrateDown(migrationsDir string) error
}

type repository struct {
	db  *dbpg.DB
	log *zerolog.Logger
}

func NewRepository(db *dbpg.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, log: log}, nil
}

func (r *repository) MigrateUp(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := ioutil.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations applied successfully from %s", migrationsDir)
	return nil
}

func (r *repository) MigrateDown(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.down.sql"))
	if err != nil {
		return fmt.Errorf("failed to read rollback files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := ioutil.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read rollback file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations rolled back successfully from %s", migrationsDir)
	return nil
}

func (r *repository) CreateEvent(ctx context.Context, e *model.Event) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO events (name, capacity)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	var id int64
	row := r.db.QueryRowContext(ctx, query, e.Name, e.Capacity)
	if err := row.Scan(&id, &e.CreatedAt); err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}
	return id, nil
}

// AdmitRsvpTx creates a new RSVP or updates an existing one for the same
// (event, user) pair inside a single transaction. The event row is locked
// with SELECT ... FOR UPDATE so that concurrent admissions for the same
// event serialize and the capacity check always sees a committed count.
// The returned bool is true when a new row was inserted.
func (r *repository) AdmitRsvpTx(ctx context.Context, rsvp *model.Rsvp) (int64, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	var event model.Event
	err = tx.QueryRowContext(ctx, `
		SELECT id, capacity
		FROM events
		WHERE id = $1
		FOR UPDATE
	`, rsvp.EventID).Scan(&event.ID, &event.Capacity)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, ErrEventNotFound
		}
		return 0, false, fmt.Errorf("failed to lock event row: %w", err)
	}

	var count int64
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM rsvps
		WHERE event_id = $1
	`, rsvp.EventID).Scan(&count)
	if err != nil {
		_ = tx.Rollback()
		return 0, false, fmt.Errorf("failed to count rsvps: %w", err)
	}

	var existingID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id
		FROM rsvps
		WHERE event_id = $1 AND user_id = $2
	`, rsvp.EventID, rsvp.UserID).Scan(&existingID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		_ = tx.Rollback()
		return 0, false, fmt.Errorf("failed to check existing rsvp: %w", err)
	}

	if err == nil {
		// Status change for an existing RSVP never affects occupancy,
		// so it is admitted regardless of capacity.
		if _, err := tx.ExecContext(ctx, `
			UPDATE rsvps
			SET status = $1, updated_at = NOW()
			WHERE id = $2
		`, rsvp.Status, existingID); err != nil {
			_ = tx.Rollback()
			return 0, false, fmt.Errorf("failed to update rsvp status: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return 0, false, fmt.Errorf("failed to commit transaction: %w", err)
		}

		r.log.Info().
			Int64("rsvp_id", existingID).
			Int64("event_id", rsvp.EventID).
			Int64("user_id", rsvp.UserID).
			Str("status", rsvp.Status).
			Msg("rsvp updated in place")
		return existingID, false, nil
	}

	if event.Capacity != nil && count >= *event.Capacity {
		_ = tx.Rollback()
		r.log.Info().
			Int64("event_id", rsvp.EventID).
			Int64("capacity", *event.Capacity).
			Msg("admission rejected: event is fully booked")
		return 0, false, ErrEventFull
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO rsvps (event_id, user_id, status)
		VALUES ($1, $2, $3)
		RETURNING id
	`, rsvp.EventID, rsvp.UserID, rsvp.Status).Scan(&id)
	if err != nil {
		_ = tx.Rollback()
		return 0, false, fmt.Errorf("failed to create rsvp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.log.Info().
		Int64("rsvp_id", id).
		Int64("event_id", rsvp.EventID).
		Int64("user_id", rsvp.UserID).
		Str("status", rsvp.Status).
		Msg("rsvp created")
	return id, true, nil
}

// UpdateRsvpStatus changes the status of an existing RSVP. A single
// conditional UPDATE is enough here: occupancy does not change, so no
// event row lock is needed.
func (r *repository) UpdateRsvpStatus(ctx context.Context, eventID, userID int64, status string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE rsvps
		SET status = $1, updated_at = NOW()
		WHERE event_id = $2 AND user_id = $3
		RETURNING id
	`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, status, eventID, userID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRsvpNotFound
		}
		return fmt.Errorf("failed to update rsvp status: %w", err)
	}
	return nil
}

// CancelRsvp hard-deletes an RSVP, freeing a capacity slot.
func (r *repository) CancelRsvp(ctx context.Context, rsvpID int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		DELETE FROM rsvps
		WHERE id = $1
		RETURNING id
	`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, rsvpID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRsvpNotFound
		}
		return fmt.Errorf("failed to delete rsvp: %w", err)
	}
	return nil
}

func (r *repository) CountRsvpStatuses(ctx context.Context, eventID int64) (model.StatusCounts, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT
			COUNT(CASE WHEN status = 'Yes' THEN 1 END),
			COUNT(CASE WHEN status = 'No' THEN 1 END),
			COUNT(CASE WHEN status = 'Maybe' THEN 1 END)
		FROM rsvps
		WHERE event_id = $1
	`

	var counts model.StatusCounts
	row := r.db.QueryRowContext(ctx, query, eventID)
	if err := row.Scan(&counts.Yes, &counts.No, &counts.Maybe); err != nil {
		return model.StatusCounts{}, fmt.Errorf("failed to count rsvp statuses: %w", err)
	}
	return counts, nil
}

func (r *repository) GetRsvpsByEventID(ctx context.Context, eventID int64) ([]model.Rsvp, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, event_id, user_id, status, created_at, updated_at
		FROM rsvps
		WHERE event_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rsvps: %w", err)
	}
	defer rows.Close()

	var rsvps []model.Rsvp
	for rows.Next() {
		var rsvp model.Rsvp
		if err := rows.Scan(
			&rsvp.ID,
			&rsvp.EventID,
			&rsvp.UserID,
			&rsvp.Status,
			&rsvp.CreatedAt,
			&rsvp.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rsvp: %w", err)
		}
		rsvps = append(rsvps, rsvp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rsvps: %w", err)
	}

	return rsvps, nil
}
