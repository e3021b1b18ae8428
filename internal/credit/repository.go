// AngelaMos | 2026
// repository.go

package credit

import (
	"context"
	"fmt"

	"github.com/manufacto/booking/internal/core"
)

type Repository interface {
	Insert(ctx context.Context, c *Credit) error
	GetByID(ctx context.Context, id string) (*Credit, error)
	ListByUser(ctx context.Context, userID string) ([]Credit, error)
	ListByUsers(ctx context.Context, userIDs []string) ([]Credit, error)
	History(ctx context.Context, userID string) ([]HistoryRow, error)
	// LockAccount takes a row lock on the user so that concurrent debits of
	// one balance are serialized. It must run inside a transaction.
	LockAccount(ctx context.Context, userID string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const creditColumns = `id, user_id, amount, reason, created_at`

func (r *repository) Insert(ctx context.Context, c *Credit) error {
	query := `
		INSERT INTO credit (id, user_id, amount, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query, c.ID, c.UserID, c.Amount, c.Reason).
		Scan(&c.CreatedAt)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("insert credit: %w", core.ErrNotFound)
		}
		return fmt.Errorf("insert credit: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Credit, error) {
	query := "SELECT " + creditColumns + " FROM credit WHERE id = $1"

	var c Credit
	err := r.db.GetContext(ctx, &c, query, id)
	if core.IsNoRows(err) {
		return nil, fmt.Errorf("get credit: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get credit: %w", err)
	}

	return &c, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]Credit, error) {
	query := "SELECT " + creditColumns + `
		FROM credit
		WHERE user_id = $1
		ORDER BY created_at DESC`

	var credits []Credit
	if err := r.db.SelectContext(ctx, &credits, query, userID); err != nil {
		return nil, fmt.Errorf("list credits: %w", err)
	}

	return credits, nil
}

func (r *repository) ListByUsers(ctx context.Context, userIDs []string) ([]Credit, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query := "SELECT " + creditColumns + `
		FROM credit
		WHERE user_id = ANY($1::uuid[])`

	var credits []Credit
	if err := r.db.SelectContext(ctx, &credits, query, userIDs); err != nil {
		return nil, fmt.Errorf("list credits by users: %w", err)
	}

	return credits, nil
}

// History links each credit to the registration of the latest status row
// that references it.
func (r *repository) History(ctx context.Context, userID string) ([]HistoryRow, error) {
	query := `
		SELECT
			c.id, c.user_id, c.amount, c.reason, c.created_at,
			link.registration_id, link.status,
			reg.payment_type,
			s.id AS session_id, s.start_ts, s.end_ts,
			a.id AS activity_id, a.name AS activity_name
		FROM credit c
		LEFT JOIN LATERAL (
			SELECT rs.registration_id, rs.status
			FROM registration_status rs
			WHERE rs.credit_id = c.id
			ORDER BY rs.created_at DESC, rs.seq DESC
			LIMIT 1
		) link ON TRUE
		LEFT JOIN registration reg ON reg.id = link.registration_id
		LEFT JOIN session s ON s.id = reg.session_id
		LEFT JOIN activity a ON a.id = s.activity_id
		WHERE c.user_id = $1
		ORDER BY c.created_at DESC, c.id`

	var rows []HistoryRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("credit history: %w", err)
	}

	return rows, nil
}

func (r *repository) LockAccount(ctx context.Context, userID string) error {
	var id string
	err := r.db.GetContext(ctx, &id,
		`SELECT id FROM users WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, userID)
	if core.IsNoRows(err) {
		return fmt.Errorf("lock account: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lock account: %w", err)
	}

	return nil
}

// BalanceOf sums the credits of userID through repo, which may be bound to
// a transaction.
func BalanceOf(ctx context.Context, repo Repository, userID string) (Amount, error) {
	credits, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return Amount{}, err
	}
	return Sum(credits), nil
}
