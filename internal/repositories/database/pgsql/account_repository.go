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

type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountCodeColumns = `account_id, code, name, kind, budget_amount, is_active, created_at, created_by, last_updated_at, last_updated_by`

func toDomainAccountCode(m models.AccountCode) domain.AccountCode {
	return domain.AccountCode{
		AccountID:    m.AccountID,
		Code:         m.Code,
		Name:         m.Name,
		Kind:         domain.AccountKind(m.Kind),
		BudgetAmount: m.BudgetAmount,
		IsActive:     m.IsActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanAccountCode(row pgx.Row) (models.AccountCode, error) {
	var m models.AccountCode
	err := row.Scan(
		&m.AccountID,
		&m.Code,
		&m.Name,
		&m.Kind,
		&m.BudgetAmount,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxAccountRepository) FindAccountCodeByID(ctx context.Context, accountID string) (*domain.AccountCode, error) {
	query := `SELECT ` + accountCodeColumns + ` FROM account_codes WHERE account_id = $1;`

	m, err := scanAccountCode(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account code %s: %w", accountID, err)
	}
	d := toDomainAccountCode(m)
	return &d, nil
}

func (r *PgxAccountRepository) FindAccountCodesByIDs(ctx context.Context, accountIDs []string) (map[string]domain.AccountCode, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.AccountCode{}, nil
	}
	query := `SELECT ` + accountCodeColumns + ` FROM account_codes WHERE account_id = ANY($1);`

	rows, err := r.Pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query account codes by IDs: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.AccountCode, len(accountIDs))
	for rows.Next() {
		m, err := scanAccountCode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account code row: %w", err)
		}
		out[m.AccountID] = toDomainAccountCode(m)
	}
	return out, rows.Err()
}

func (r *PgxAccountRepository) ListAccountCodes(ctx context.Context) ([]domain.AccountCode, error) {
	query := `SELECT ` + accountCodeColumns + ` FROM account_codes ORDER BY code;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list account codes: %w", err)
	}
	defer rows.Close()

	var out []domain.AccountCode
	for rows.Next() {
		m, err := scanAccountCode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account code row: %w", err)
		}
		out = append(out, toDomainAccountCode(m))
	}
	return out, rows.Err()
}

func (r *PgxAccountRepository) SaveAccountCode(ctx context.Context, account domain.AccountCode) error {
	query := `INSERT INTO account_codes (` + accountCodeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`

	_, err := r.Pool.Exec(ctx, query,
		account.AccountID,
		account.Code,
		account.Name,
		account.Kind,
		account.BudgetAmount,
		account.IsActive,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: account code %s already exists", apperrors.ErrValidation, account.Code)
		}
		return fmt.Errorf("failed to save account code %s: %w", account.AccountID, err)
	}
	return nil
}

func (r *PgxAccountRepository) DeactivateAccountCode(ctx context.Context, accountID, updatedBy string) error {
	query := `UPDATE account_codes
		SET is_active = FALSE, last_updated_at = $1, last_updated_by = $2
		WHERE account_id = $3;`

	tag, err := r.Pool.Exec(ctx, query, time.Now().UTC(), updatedBy, accountID)
	if err != nil {
		return fmt.Errorf("failed to deactivate account code %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
