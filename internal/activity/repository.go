// AngelaMos | 2026
// repository.go

package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/manufacto/booking/internal/core"
)

type Repository interface {
	Create(ctx context.Context, a *Activity) error
	GetByID(ctx context.Context, id string) (*Activity, error)
	List(ctx context.Context) ([]Activity, error)
	Update(ctx context.Context, a *Activity) error
	Delete(ctx context.Context, id string) error
	HasSessions(ctx context.Context, id string) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// price is NUMERIC; the cast lets it scan into *float64.
const activityColumns = `
	id, name, type, nb_credits, price::float8 AS price, description,
	created_at, updated_at`

func (r *repository) Create(ctx context.Context, a *Activity) error {
	query := `
		INSERT INTO activity (id, name, type, nb_credits, price, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		a.ID, a.Name, a.Type, a.NbCredits, a.Price, a.Description,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create activity: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Activity, error) {
	query := "SELECT " + activityColumns + " FROM activity WHERE id = $1"

	var a Activity
	err := r.db.GetContext(ctx, &a, query, id)
	if core.IsNoRows(err) {
		return nil, fmt.Errorf("get activity: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}

	return &a, nil
}

func (r *repository) List(ctx context.Context) ([]Activity, error) {
	query := "SELECT " + activityColumns + " FROM activity ORDER BY type, name"

	var activities []Activity
	if err := r.db.SelectContext(ctx, &activities, query); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	return activities, nil
}

func (r *repository) Update(ctx context.Context, a *Activity) error {
	query := `
		UPDATE activity
		SET name = $2, type = $3, nb_credits = $4, price = $5,
		    description = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	var updatedAt time.Time
	err := r.db.GetContext(ctx, &updatedAt, query,
		a.ID, a.Name, a.Type, a.NbCredits, a.Price, a.Description,
	)
	if core.IsNoRows(err) {
		return fmt.Errorf("update activity: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}

	a.UpdatedAt = updatedAt
	return nil
}

// Delete maps a foreign key violation to ErrConflict: a session was added
// between the HasSessions check and the delete.
func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM activity WHERE id = $1`, id)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("delete activity: %w", core.ErrConflict)
		}
		return fmt.Errorf("delete activity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete activity: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) HasSessions(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM session WHERE activity_id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check activity sessions: %w", err)
	}

	return exists, nil
}
