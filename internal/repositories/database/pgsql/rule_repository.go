package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	portsrepo "github.com/haneulsoft/kinderledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxRuleRepository struct {
	BaseRepository
}

func newPgxRuleRepository(pool *pgxpool.Pool) portsrepo.RuleRepository {
	return &PgxRuleRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.RuleRepository = (*PgxRuleRepository)(nil)

func (r *PgxRuleRepository) SaveKeywordRule(ctx context.Context, rule domain.KeywordRule) error {
	query := `INSERT INTO keyword_rules (rule_id, keyword, account_id, priority, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (rule_id) DO UPDATE
		SET keyword = EXCLUDED.keyword, account_id = EXCLUDED.account_id, priority = EXCLUDED.priority,
		    last_updated_at = EXCLUDED.last_updated_at, last_updated_by = EXCLUDED.last_updated_by;`

	_, err := r.Pool.Exec(ctx, query,
		rule.RuleID,
		rule.Keyword,
		rule.AccountID,
		rule.Priority,
		rule.CreatedAt,
		rule.CreatedBy,
		rule.LastUpdatedAt,
		rule.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save keyword rule %s: %w", rule.RuleID, err)
	}
	return nil
}

func (r *PgxRuleRepository) ListKeywordRules(ctx context.Context) ([]domain.KeywordRule, error) {
	// created_at breaks ties so equal priorities evaluate in creation order.
	query := `SELECT rule_id, keyword, account_id, priority, created_at, created_by, last_updated_at, last_updated_by
		FROM keyword_rules ORDER BY priority, created_at;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list keyword rules: %w", err)
	}
	defer rows.Close()

	var out []domain.KeywordRule
	for rows.Next() {
		var rule domain.KeywordRule
		err := rows.Scan(
			&rule.RuleID,
			&rule.Keyword,
			&rule.AccountID,
			&rule.Priority,
			&rule.CreatedAt,
			&rule.CreatedBy,
			&rule.LastUpdatedAt,
			&rule.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan keyword rule row: %w", err)
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

func (r *PgxRuleRepository) DeleteKeywordRule(ctx context.Context, ruleID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM keyword_rules WHERE rule_id = $1;`, ruleID)
	if err != nil {
		return fmt.Errorf("failed to delete keyword rule %s: %w", ruleID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxRuleRepository) FindDefaultMapping(ctx context.Context, kindergartenID string) (*domain.DefaultAccountMapping, error) {
	query := `SELECT kindergarten_id, credit_account_id, debit_account_id
		FROM default_mappings WHERE kindergarten_id = $1;`

	var mapping domain.DefaultAccountMapping
	err := r.Pool.QueryRow(ctx, query, kindergartenID).Scan(
		&mapping.KindergartenID,
		&mapping.CreditAccountID,
		&mapping.DebitAccountID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find default mapping for %s: %w", kindergartenID, err)
	}
	return &mapping, nil
}

func (r *PgxRuleRepository) SaveDefaultMapping(ctx context.Context, mapping domain.DefaultAccountMapping) error {
	query := `INSERT INTO default_mappings (kindergarten_id, credit_account_id, debit_account_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (kindergarten_id) DO UPDATE
		SET credit_account_id = EXCLUDED.credit_account_id, debit_account_id = EXCLUDED.debit_account_id;`

	_, err := r.Pool.Exec(ctx, query, mapping.KindergartenID, mapping.CreditAccountID, mapping.DebitAccountID)
	if err != nil {
		return fmt.Errorf("failed to save default mapping for %s: %w", mapping.KindergartenID, err)
	}
	return nil
}
