package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	portsrepo "github.com/haneulsoft/kinderledger/internal/core/ports/repositories"
	portssvc "github.com/haneulsoft/kinderledger/internal/core/ports/services"
	"github.com/haneulsoft/kinderledger/internal/dto"
)

// splitService divides one ledger entry across multiple accounts under the
// exact-balance invariant: amounts are integer minor units, so the split
// must sum to the source amount exactly, with no rounding tolerance.
type splitService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewSplitService creates a new SplitSvcFacade.
func NewSplitService(ledgerRepo portsrepo.LedgerRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.SplitSvcFacade {
	return &splitService{ledgerRepo: ledgerRepo, accountRepo: accountRepo}
}

var _ portssvc.SplitSvcFacade = (*splitService)(nil)

// SplitEntry replaces the source entry with one entry per allocation, all
// sharing a fresh split group ID and pointing at the source's external
// transaction. The replacement is atomic: a mismatched sum, a missing or
// inactive account, or a locked source leaves the journal untouched. No
// auto-balancing is attempted on mismatch; the caller adjusts and retries.
func (s *splitService) SplitEntry(ctx context.Context, kindergartenID, entryID string, req dto.SplitRequest, userID string) ([]domain.LedgerEntry, error) {
	source, err := s.ledgerRepo.FindEntryByID(ctx, kindergartenID, entryID)
	if err != nil {
		return nil, err
	}
	if source.Locked {
		return nil, apperrors.ErrPeriodLocked
	}

	var allocated int64
	accountIDs := make([]string, 0, len(req.Allocations))
	for _, alloc := range req.Allocations {
		if alloc.Amount <= 0 {
			return nil, fmt.Errorf("%w: allocation amount must be positive for account %s", apperrors.ErrValidation, alloc.AccountID)
		}
		allocated += alloc.Amount
		accountIDs = append(accountIDs, alloc.AccountID)
	}

	if allocated != source.Amount {
		return nil, &apperrors.SplitMismatchError{SourceAmount: source.Amount, Allocated: allocated}
	}

	accounts, err := s.accountRepo.FindAccountCodesByIDs(ctx, uniqueStrings(accountIDs))
	if err != nil {
		return nil, fmt.Errorf("loading allocation accounts: %w", err)
	}
	for _, accountID := range accountIDs {
		account, found := accounts[accountID]
		if !found {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		if !account.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, accountID)
		}
		if account.Kind != source.Kind {
			return nil, fmt.Errorf("%w: account %s is %s but the source entry is %s", apperrors.ErrValidation, accountID, account.Kind, source.Kind)
		}
	}

	now := time.Now().UTC()
	splitGroupID := uuid.NewString()
	splits := make([]domain.LedgerEntry, len(req.Allocations))
	for i, alloc := range req.Allocations {
		splits[i] = domain.LedgerEntry{
			EntryID:            uuid.NewString(),
			KindergartenID:     kindergartenID,
			PeriodKey:          source.PeriodKey,
			Date:               source.Date,
			Kind:               source.Kind,
			Amount:             alloc.Amount,
			AccountID:          alloc.AccountID,
			Description:        alloc.Description,
			CounterpartyName:   source.CounterpartyName,
			SourceRef:          source.SourceRef,
			SplitGroupID:       splitGroupID,
			TransmissionStatus: domain.Unsent,
			Locked:             false,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}

	if err := s.ledgerRepo.ReplaceEntryWithSplits(ctx, kindergartenID, entryID, splits); err != nil {
		return nil, err
	}

	s.GetLogger(ctx).Info("Entry split",
		slog.String("entry_id", entryID),
		slog.String("split_group_id", splitGroupID),
		slog.Int("allocations", len(splits)),
		slog.Int64("amount", source.Amount),
	)
	return splits, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
