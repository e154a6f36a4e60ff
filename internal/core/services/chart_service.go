package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	portsrepo "github.com/haneulsoft/kinderledger/internal/core/ports/repositories"
	portssvc "github.com/haneulsoft/kinderledger/internal/core/ports/services"
	"github.com/haneulsoft/kinderledger/internal/dto"
)

// chartService manages the reference configuration: chart of accounts,
// keyword rules and per-kindergarten default mappings.
type chartService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	ruleRepo    portsrepo.RuleRepository
}

// NewChartService creates a new ChartSvcFacade.
func NewChartService(accountRepo portsrepo.AccountRepositoryFacade, ruleRepo portsrepo.RuleRepository) portssvc.ChartSvcFacade {
	return &chartService{accountRepo: accountRepo, ruleRepo: ruleRepo}
}

var _ portssvc.ChartSvcFacade = (*chartService)(nil)

func (s *chartService) CreateAccountCode(ctx context.Context, req dto.CreateAccountCodeRequest, userID string) (*domain.AccountCode, error) {
	now := time.Now().UTC()
	account := domain.AccountCode{
		AccountID:    uuid.NewString(),
		Code:         req.Code,
		Name:         req.Name,
		Kind:         domain.AccountKind(req.Kind),
		BudgetAmount: req.BudgetAmount,
		IsActive:     true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.accountRepo.SaveAccountCode(ctx, account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *chartService) ListAccountCodes(ctx context.Context) ([]domain.AccountCode, error) {
	return s.accountRepo.ListAccountCodes(ctx)
}

func (s *chartService) CreateKeywordRule(ctx context.Context, req dto.CreateKeywordRuleRequest, userID string) (*domain.KeywordRule, error) {
	account, err := s.accountRepo.FindAccountCodeByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, req.AccountID)
	}

	now := time.Now().UTC()
	rule := domain.KeywordRule{
		RuleID:    uuid.NewString(),
		Keyword:   req.Keyword,
		AccountID: req.AccountID,
		Priority:  req.Priority,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.ruleRepo.SaveKeywordRule(ctx, rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

func (s *chartService) ListKeywordRules(ctx context.Context) ([]domain.KeywordRule, error) {
	return s.ruleRepo.ListKeywordRules(ctx)
}

func (s *chartService) SetDefaultMapping(ctx context.Context, kindergartenID string, req dto.SetDefaultMappingRequest, userID string) error {
	accounts, err := s.accountRepo.FindAccountCodesByIDs(ctx, uniqueStrings([]string{req.CreditAccountID, req.DebitAccountID}))
	if err != nil {
		return err
	}
	for _, accountID := range []string{req.CreditAccountID, req.DebitAccountID} {
		if _, found := accounts[accountID]; !found {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
	}

	return s.ruleRepo.SaveDefaultMapping(ctx, domain.DefaultAccountMapping{
		KindergartenID:  kindergartenID,
		CreditAccountID: req.CreditAccountID,
		DebitAccountID:  req.DebitAccountID,
	})
}
