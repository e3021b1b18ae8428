// AngelaMos | 2026
// repository.go

package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/manufacto/booking/internal/core"
)

type Counts struct {
	Users            int `db:"users"            json:"users"`
	Admins           int `db:"admins"           json:"admins"`
	Activities       int `db:"activities"       json:"activities"`
	UpcomingSessions int `db:"upcoming_sessions" json:"upcoming_sessions"`
	Registrations    int `db:"registrations"    json:"registrations"`
}

type Repository interface {
	Counts(ctx context.Context, now time.Time) (*Counts, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Counts(ctx context.Context, now time.Time) (*Counts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL) AS users,
			(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND role = 'admin') AS admins,
			(SELECT COUNT(*) FROM activity) AS activities,
			(SELECT COUNT(*) FROM session WHERE start_ts >= $1) AS upcoming_sessions,
			(SELECT COUNT(*) FROM registration) AS registrations`

	var c Counts
	if err := r.db.GetContext(ctx, &c, query, now); err != nil {
		return nil, fmt.Errorf("admin counts: %w", err)
	}

	return &c, nil
}
