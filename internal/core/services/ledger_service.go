package services

import (
	"context"
	"fmt"
	"time"

	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	portsrepo "github.com/haneulsoft/kinderledger/internal/core/ports/repositories"
	portssvc "github.com/haneulsoft/kinderledger/internal/core/ports/services"
	"github.com/haneulsoft/kinderledger/internal/dto"
)

// ledgerService covers journal reads plus the few entry mutations allowed
// outside import and split: re-journaling and deleting unlocked entries.
type ledgerService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewLedgerService creates a new LedgerSvcFacade.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{ledgerRepo: ledgerRepo, accountRepo: accountRepo}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) GetEntry(ctx context.Context, kindergartenID, entryID string) (*domain.LedgerEntry, error) {
	return s.ledgerRepo.FindEntryByID(ctx, kindergartenID, entryID)
}

func (s *ledgerService) ListEntries(ctx context.Context, kindergartenID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	periodKey, err := domain.ParsePeriodKey(params.PeriodKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}

	entries, nextToken, err := s.ledgerRepo.ListEntriesByPeriod(ctx, kindergartenID, periodKey, limit, params.NextToken)
	if err != nil {
		return nil, err
	}
	return &dto.ListEntriesResponse{Entries: entries, NextToken: nextToken}, nil
}

// RejournalEntry moves an unlocked entry onto another account code. This is
// how unassigned entries get manually journaled before close.
func (s *ledgerService) RejournalEntry(ctx context.Context, kindergartenID, entryID, accountID, userID string) error {
	entry, err := s.ledgerRepo.FindEntryByID(ctx, kindergartenID, entryID)
	if err != nil {
		return err
	}
	if entry.Locked {
		return apperrors.ErrPeriodLocked
	}

	account, err := s.accountRepo.FindAccountCodeByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, accountID)
	}
	if account.Kind != entry.Kind {
		return fmt.Errorf("%w: account %s is %s but the entry is %s", apperrors.ErrValidation, accountID, account.Kind, entry.Kind)
	}

	return s.ledgerRepo.UpdateEntryAccount(ctx, kindergartenID, entryID, accountID, userID, time.Now().UTC())
}

func (s *ledgerService) DeleteEntry(ctx context.Context, kindergartenID, entryID string) error {
	entry, err := s.ledgerRepo.FindEntryByID(ctx, kindergartenID, entryID)
	if err != nil {
		return err
	}
	if entry.Locked {
		return apperrors.ErrPeriodLocked
	}
	return s.ledgerRepo.DeleteEntry(ctx, kindergartenID, entryID)
}
