package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	portsrepo "github.com/haneulsoft/kinderledger/internal/core/ports/repositories"
	portssvc "github.com/haneulsoft/kinderledger/internal/core/ports/services"
)

// categorizerService maps transaction descriptions to account codes using
// configured keyword rules plus the kindergarten's default mapping.
type categorizerService struct {
	BaseService
	ruleRepo portsrepo.RuleRepository
}

// NewCategorizerService creates a new CategorizerSvc.
func NewCategorizerService(ruleRepo portsrepo.RuleRepository) portssvc.CategorizerSvc {
	return &categorizerService{ruleRepo: ruleRepo}
}

var _ portssvc.CategorizerSvc = (*categorizerService)(nil)

// Categorize returns the target account of the first rule (in priority
// order) whose keyword is a case-sensitive substring of description. When
// no rule matches it falls back to the kindergarten's default mapping for
// the transaction direction, and finally to the unassigned placeholder.
// First-match-wins is the whole policy: overlapping keywords are a rule
// configuration problem, not something resolved here.
func (s *categorizerService) Categorize(ctx context.Context, kindergartenID, description string, direction domain.Direction) (string, error) {
	rules, err := s.ruleRepo.ListKeywordRules(ctx)
	if err != nil {
		return "", err
	}

	for _, rule := range rules {
		if strings.Contains(description, rule.Keyword) {
			s.GetLogger(ctx).Debug("Keyword rule matched",
				slog.String("keyword", rule.Keyword),
				slog.String("account_id", rule.AccountID),
			)
			return rule.AccountID, nil
		}
	}

	mapping, err := s.ruleRepo.FindDefaultMapping(ctx, kindergartenID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.UnassignedAccountID, nil
		}
		return "", err
	}

	accountID := mapping.DebitAccountID
	if direction == domain.CreditDirection {
		accountID = mapping.CreditAccountID
	}
	if accountID == "" {
		return domain.UnassignedAccountID, nil
	}
	return accountID, nil
}
