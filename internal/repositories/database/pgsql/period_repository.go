package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	portsrepo "github.com/haneulsoft/kinderledger/internal/core/ports/repositories"
	"github.com/haneulsoft/kinderledger/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxPeriodRepository struct {
	BaseRepository
}

func newPgxPeriodRepository(pool *pgxpool.Pool) portsrepo.PeriodRepository {
	return &PgxPeriodRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.PeriodRepository = (*PgxPeriodRepository)(nil)

const periodColumns = `kindergarten_id, period_key, state, closed_at, closed_by, created_at, created_by, last_updated_at, last_updated_by`

func toDomainPeriod(m models.Period) (domain.Period, error) {
	periodKey, err := domain.ParsePeriodKey(m.PeriodKey)
	if err != nil {
		return domain.Period{}, fmt.Errorf("period row has malformed key %q: %w", m.PeriodKey, err)
	}
	return domain.Period{
		KindergartenID: m.KindergartenID,
		PeriodKey:      periodKey,
		State:          domain.PeriodState(m.State),
		ClosedAt:       m.ClosedAt,
		ClosedBy:       m.ClosedBy,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}, nil
}

func scanPeriod(row pgx.Row) (models.Period, error) {
	var m models.Period
	var closedBy *string
	err := row.Scan(
		&m.KindergartenID,
		&m.PeriodKey,
		&m.State,
		&m.ClosedAt,
		&closedBy,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.Period{}, err
	}
	if closedBy != nil {
		m.ClosedBy = *closedBy
	}
	return m, nil
}

func (r *PgxPeriodRepository) FindPeriod(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey) (*domain.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM periods WHERE kindergarten_id = $1 AND period_key = $2;`

	m, err := scanPeriod(r.Pool.QueryRow(ctx, query, kindergartenID, periodKey.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find period %s: %w", periodKey, err)
	}
	d, err := toDomainPeriod(m)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PgxPeriodRepository) EnsureOpen(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey, createdBy string) (*domain.Period, error) {
	now := time.Now().UTC()
	insert := `INSERT INTO periods (kindergarten_id, period_key, state, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $4, $5);`

	_, err := r.Pool.Exec(ctx, insert, kindergartenID, periodKey.String(), domain.PeriodOpen, now, createdBy)
	if err != nil {
		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
			return nil, fmt.Errorf("failed to create period %s: %w", periodKey, err)
		}
		// Row already exists; fall through to read its state.
	}

	period, err := r.FindPeriod(ctx, kindergartenID, periodKey)
	if err != nil {
		return nil, err
	}
	if period.State == domain.PeriodClosed {
		return nil, apperrors.ErrPeriodClosed
	}
	return period, nil
}

// ClosePeriod flips OPEN -> CLOSED with a guarded UPDATE and locks the
// period's entries in the same transaction. Exactly one of two concurrent
// closers sees the state flip; the other gets ErrPeriodClosed.
func (r *PgxPeriodRepository) ClosePeriod(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey, closedBy string, closedAt time.Time) (int, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	cas := `UPDATE periods
		SET state = $1, closed_at = $2, closed_by = $3, last_updated_at = $2, last_updated_by = $3
		WHERE kindergarten_id = $4 AND period_key = $5 AND state = $6;`

	tag, err := tx.Exec(ctx, cas, domain.PeriodClosed, closedAt, closedBy, kindergartenID, periodKey.String(), domain.PeriodOpen)
	if err != nil {
		return 0, fmt.Errorf("failed to close period %s: %w", periodKey, err)
	}
	if tag.RowsAffected() == 0 {
		var state string
		err := tx.QueryRow(ctx,
			`SELECT state FROM periods WHERE kindergarten_id = $1 AND period_key = $2;`,
			kindergartenID, periodKey.String(),
		).Scan(&state)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, apperrors.ErrNotFound
			}
			return 0, fmt.Errorf("failed to inspect period %s: %w", periodKey, err)
		}
		return 0, apperrors.ErrPeriodClosed
	}

	lock := `UPDATE ledger_entries
		SET locked = TRUE, last_updated_at = $1, last_updated_by = $2
		WHERE kindergarten_id = $3 AND period_key = $4 AND NOT locked;`

	lockTag, err := tx.Exec(ctx, lock, closedAt, closedBy, kindergartenID, periodKey.String())
	if err != nil {
		return 0, fmt.Errorf("failed to lock entries of period %s: %w", periodKey, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return int(lockTag.RowsAffected()), nil
}

func (r *PgxPeriodRepository) ListPeriods(ctx context.Context, kindergartenID string) ([]domain.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM periods WHERE kindergarten_id = $1 ORDER BY period_key DESC;`

	rows, err := r.Pool.Query(ctx, query, kindergartenID)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	defer rows.Close()

	var out []domain.Period
	for rows.Next() {
		m, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan period row: %w", err)
		}
		d, err := toDomainPeriod(m)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
