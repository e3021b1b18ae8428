// AngelaMos | 2026
// repository.go

package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/manufacto/booking/internal/core"
)

type Repository interface {
	CreateBatch(ctx context.Context, sessions []Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, s *Session) error
	ListByActivityBetween(
		ctx context.Context,
		activityID string,
		from, to time.Time,
	) ([]Session, error)
	ListUpcoming(ctx context.Context, activityID string, from time.Time) ([]Session, error)
	ListAll(ctx context.Context) ([]Session, error)
	ListByIDs(ctx context.Context, ids []string) ([]Session, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const sessionColumns = `id, activity_id, start_ts, end_ts, max_registrations, created_at`

// CreateBatch inserts every session in one statement, so a batch is
// stored entirely or not at all.
func (r *repository) CreateBatch(ctx context.Context, sessions []Session) error {
	if len(sessions) == 0 {
		return nil
	}

	values := make([]string, 0, len(sessions))
	args := make([]any, 0, len(sessions)*5)
	for i, s := range sessions {
		n := i * 5
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5))
		args = append(args, s.ID, s.ActivityID, s.StartTS, s.EndTS, s.MaxRegistrations)
	}

	query := `
		INSERT INTO session (id, activity_id, start_ts, end_ts, max_registrations)
		VALUES ` + strings.Join(values, ", ") + `
		RETURNING id, created_at`

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("create sessions: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create sessions: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	created := make(map[string]time.Time, len(sessions))
	for rows.Next() {
		var id string
		var createdAt time.Time
		if err := rows.Scan(&id, &createdAt); err != nil {
			return fmt.Errorf("create sessions: %w", err)
		}
		created[id] = createdAt
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("create sessions: %w", err)
	}

	for i := range sessions {
		sessions[i].CreatedAt = created[sessions[i].ID]
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Session, error) {
	query := "SELECT " + sessionColumns + " FROM session WHERE id = $1"

	var s Session
	err := r.db.GetContext(ctx, &s, query, id)
	if core.IsNoRows(err) {
		return nil, fmt.Errorf("get session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	return &s, nil
}

func (r *repository) Update(ctx context.Context, s *Session) error {
	query := `
		UPDATE session
		SET start_ts = $2, end_ts = $3, max_registrations = $4
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, s.ID, s.StartTS, s.EndTS, s.MaxRegistrations)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update session: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListByActivityBetween(
	ctx context.Context,
	activityID string,
	from, to time.Time,
) ([]Session, error) {
	query := "SELECT " + sessionColumns + `
		FROM session
		WHERE activity_id = $1 AND start_ts >= $2 AND start_ts < $3
		ORDER BY start_ts`

	var sessions []Session
	if err := r.db.SelectContext(ctx, &sessions, query, activityID, from, to); err != nil {
		return nil, fmt.Errorf("list week sessions: %w", err)
	}

	return sessions, nil
}

func (r *repository) ListUpcoming(
	ctx context.Context,
	activityID string,
	from time.Time,
) ([]Session, error) {
	query := "SELECT " + sessionColumns + `
		FROM session
		WHERE activity_id = $1 AND start_ts >= $2
		ORDER BY start_ts`

	var sessions []Session
	if err := r.db.SelectContext(ctx, &sessions, query, activityID, from); err != nil {
		return nil, fmt.Errorf("list upcoming sessions: %w", err)
	}

	return sessions, nil
}

func (r *repository) ListAll(ctx context.Context) ([]Session, error) {
	query := "SELECT " + sessionColumns + " FROM session ORDER BY start_ts"

	var sessions []Session
	if err := r.db.SelectContext(ctx, &sessions, query); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	return sessions, nil
}

func (r *repository) ListByIDs(ctx context.Context, ids []string) ([]Session, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := "SELECT " + sessionColumns + `
		FROM session
		WHERE id = ANY($1::uuid[])
		ORDER BY start_ts`

	var sessions []Session
	if err := r.db.SelectContext(ctx, &sessions, query, ids); err != nil {
		return nil, fmt.Errorf("list sessions by id: %w", err)
	}

	return sessions, nil
}
