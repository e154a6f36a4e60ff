package repositories

import (
	"context"

	"github.com/haneulsoft/kinderledger/internal/core/domain"
)

// RuleRepository defines persistence operations for keyword rules and
// per-kindergarten default account mappings.
type RuleRepository interface {
	// SaveKeywordRule persists a rule. Priority fixes its evaluation order.
	SaveKeywordRule(ctx context.Context, rule domain.KeywordRule) error

	// ListKeywordRules retrieves all rules in ascending priority order.
	// The categorizer relies on this ordering for first-match-wins.
	ListKeywordRules(ctx context.Context) ([]domain.KeywordRule, error)

	// DeleteKeywordRule removes a rule.
	DeleteKeywordRule(ctx context.Context, ruleID string) error

	// FindDefaultMapping retrieves the kindergarten's fallback account
	// mapping, or apperrors.ErrNotFound when none is configured.
	FindDefaultMapping(ctx context.Context, kindergartenID string) (*domain.DefaultAccountMapping, error)

	// SaveDefaultMapping upserts the kindergarten's fallback mapping.
	SaveDefaultMapping(ctx context.Context, mapping domain.DefaultAccountMapping) error
}
