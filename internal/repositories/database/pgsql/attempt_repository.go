package pgsql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/haneulsoft/kinderledger/internal/core/domain"
	portsrepo "github.com/haneulsoft/kinderledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAttemptRepository struct {
	BaseRepository
}

func newPgxAttemptRepository(pool *pgxpool.Pool) portsrepo.AttemptRepository {
	return &PgxAttemptRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AttemptRepository = (*PgxAttemptRepository)(nil)

func (r *PgxAttemptRepository) AppendAttempt(ctx context.Context, attempt domain.TransmissionAttempt) error {
	query := `INSERT INTO transmission_attempts (attempt_id, entry_id, attempted_at, outcome, error_detail)
		VALUES ($1, $2, $3, $4, $5);`

	_, err := r.Pool.Exec(ctx, query,
		attempt.AttemptID,
		attempt.EntryID,
		attempt.AttemptedAt,
		attempt.Outcome,
		nullIfEmpty(attempt.ErrorDetail),
	)
	if err != nil {
		return fmt.Errorf("failed to append attempt %s: %w", attempt.AttemptID, err)
	}
	return nil
}

func (r *PgxAttemptRepository) ListAttemptsByEntry(ctx context.Context, entryID string) ([]domain.TransmissionAttempt, error) {
	query := `SELECT attempt_id, entry_id, attempted_at, outcome, error_detail
		FROM transmission_attempts WHERE entry_id = $1 ORDER BY attempted_at, attempt_id;`

	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	var out []domain.TransmissionAttempt
	for rows.Next() {
		var attempt domain.TransmissionAttempt
		var errorDetail sql.NullString
		err := rows.Scan(
			&attempt.AttemptID,
			&attempt.EntryID,
			&attempt.AttemptedAt,
			&attempt.Outcome,
			&errorDetail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt row: %w", err)
		}
		attempt.ErrorDetail = errorDetail.String
		out = append(out, attempt)
	}
	return out, rows.Err()
}
