package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	"github.com/haneulsoft/kinderledger/internal/core/ports/gateways"
	portsrepo "github.com/haneulsoft/kinderledger/internal/core/ports/repositories"
	portssvc "github.com/haneulsoft/kinderledger/internal/core/ports/services"
	"github.com/haneulsoft/kinderledger/internal/dto"
)

// importService is the import pipeline: it turns external transactions
// into ledger entries, deduplicating against rows already imported.
type importService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	periodRepo  portsrepo.PeriodRepository
	categorizer portssvc.CategorizerSvc
	feeds       map[string]gateways.TransactionFeed
}

// NewImportService creates a new ImportSvcFacade. Feeds are registered by
// name at construction; SyncFeed refuses names it does not know.
func NewImportService(
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	periodRepo portsrepo.PeriodRepository,
	categorizer portssvc.CategorizerSvc,
	feeds ...gateways.TransactionFeed,
) portssvc.ImportSvcFacade {
	feedMap := make(map[string]gateways.TransactionFeed, len(feeds))
	for _, f := range feeds {
		feedMap[f.Name()] = f
	}
	return &importService{
		ledgerRepo:  ledgerRepo,
		periodRepo:  periodRepo,
		categorizer: categorizer,
		feeds:       feedMap,
	}
}

var _ portssvc.ImportSvcFacade = (*importService)(nil)

// ImportBatch converts candidates 1:1 into ledger entries. Each candidate
// is all-or-nothing, the batch is partial-success: duplicates are counted
// and skipped, invalid candidates are reported, and neither blocks the
// rest. The whole batch is rejected only when the target period is closed.
func (s *importService) ImportBatch(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey, candidates []domain.ExternalTransaction, userID string) (*dto.ImportSummary, error) {
	logger := s.GetLogger(ctx)

	if _, err := s.periodRepo.EnsureOpen(ctx, kindergartenID, periodKey, userID); err != nil {
		return nil, err
	}

	summary := &dto.ImportSummary{Accepted: []domain.LedgerEntry{}, Failures: []dto.CandidateFailure{}}
	now := time.Now().UTC()

	for _, candidate := range candidates {
		if reason := validateCandidate(candidate, periodKey); reason != "" {
			summary.Failures = append(summary.Failures, dto.CandidateFailure{
				SourceSystem: candidate.SourceSystem,
				SourceID:     candidate.SourceID,
				Reason:       reason,
			})
			continue
		}

		ref := domain.SourceRef{SourceSystem: candidate.SourceSystem, SourceID: candidate.SourceID}
		exists, err := s.ledgerRepo.ExistsSourceRef(ctx, kindergartenID, ref)
		if err != nil {
			return nil, fmt.Errorf("checking duplicate for %s/%s: %w", ref.SourceSystem, ref.SourceID, err)
		}
		if exists {
			summary.SkippedDuplicates++
			continue
		}

		accountID, err := s.categorizer.Categorize(ctx, kindergartenID, candidate.RawDescription, candidate.Direction)
		if err != nil {
			return nil, fmt.Errorf("categorizing %s/%s: %w", ref.SourceSystem, ref.SourceID, err)
		}

		entry := domain.LedgerEntry{
			EntryID:            uuid.NewString(),
			KindergartenID:     kindergartenID,
			PeriodKey:          periodKey,
			Date:               candidate.Date,
			Kind:               candidate.Direction.Kind(),
			Amount:             candidate.Amount,
			AccountID:          accountID,
			Description:        candidate.RawDescription,
			CounterpartyName:   candidate.Counterparty,
			SourceRef:          &ref,
			TransmissionStatus: domain.Unsent,
			Locked:             false,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}

		if err := s.ledgerRepo.SaveEntry(ctx, entry); err != nil {
			// No entry persists for a failed candidate; report and move on.
			logger.Warn("Failed to persist imported entry",
				slog.String("source_id", candidate.SourceID),
				slog.String("error", err.Error()),
			)
			summary.Failures = append(summary.Failures, dto.CandidateFailure{
				SourceSystem: candidate.SourceSystem,
				SourceID:     candidate.SourceID,
				Reason:       err.Error(),
			})
			continue
		}
		summary.Accepted = append(summary.Accepted, entry)
	}

	summary.AcceptedCount = len(summary.Accepted)
	logger.Info("Import batch completed",
		slog.String("kindergarten_id", kindergartenID),
		slog.String("period_key", periodKey.String()),
		slog.Int("accepted", summary.AcceptedCount),
		slog.Int("skipped_duplicates", summary.SkippedDuplicates),
		slog.Int("failures", len(summary.Failures)),
	)
	return summary, nil
}

// CopyFromPreviousPeriod clones selected entries of the preceding month
// into periodKey. Clones get a fresh ID, a date shifted into the target
// month, reset transmission status and no source ref: a recurring expense
// copied month over month is deliberate duplication, and must not trip the
// same-period dedup key of its source.
func (s *importService) CopyFromPreviousPeriod(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey, entryIDs []string, userID string) (*dto.ImportSummary, error) {
	if _, err := s.periodRepo.EnsureOpen(ctx, kindergartenID, periodKey, userID); err != nil {
		return nil, err
	}

	prevKey := periodKey.Prev()
	sources, err := s.ledgerRepo.FindEntriesByIDs(ctx, kindergartenID, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("loading source entries: %w", err)
	}

	summary := &dto.ImportSummary{Accepted: []domain.LedgerEntry{}, Failures: []dto.CandidateFailure{}}
	now := time.Now().UTC()

	for _, entryID := range entryIDs {
		source, found := sources[entryID]
		if !found {
			summary.Failures = append(summary.Failures, dto.CandidateFailure{
				SourceID: entryID,
				Reason:   apperrors.ErrNotFound.Error(),
			})
			continue
		}
		if source.PeriodKey != prevKey {
			summary.Failures = append(summary.Failures, dto.CandidateFailure{
				SourceID: entryID,
				Reason:   fmt.Sprintf("entry belongs to period %s, not the previous period %s", source.PeriodKey, prevKey),
			})
			continue
		}

		clone := source
		clone.EntryID = uuid.NewString()
		clone.PeriodKey = periodKey
		clone.Date = periodKey.ShiftInto(source.Date)
		clone.SourceRef = nil
		clone.SplitGroupID = ""
		clone.TransmissionStatus = domain.Unsent
		clone.Locked = false
		clone.AuditFields = domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		}

		if err := s.ledgerRepo.SaveEntry(ctx, clone); err != nil {
			summary.Failures = append(summary.Failures, dto.CandidateFailure{
				SourceID: entryID,
				Reason:   err.Error(),
			})
			continue
		}
		summary.Accepted = append(summary.Accepted, clone)
	}

	summary.AcceptedCount = len(summary.Accepted)
	return summary, nil
}

// SyncFeed pulls a registered feed and imports whatever it returns.
func (s *importService) SyncFeed(ctx context.Context, kindergartenID, feedName string, periodKey domain.PeriodKey, since time.Time, userID string) (*dto.ImportSummary, error) {
	feed, found := s.feeds[feedName]
	if !found {
		return nil, fmt.Errorf("%w: unknown feed %q", apperrors.ErrValidation, feedName)
	}

	candidates, err := feed.Fetch(ctx, kindergartenID, since)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", feedName, err)
	}
	s.GetLogger(ctx).Info("Feed fetched",
		slog.String("feed", feedName),
		slog.Int("candidates", len(candidates)),
	)

	return s.ImportBatch(ctx, kindergartenID, periodKey, candidates, userID)
}

func validateCandidate(candidate domain.ExternalTransaction, periodKey domain.PeriodKey) string {
	switch {
	case candidate.SourceID == "" || candidate.SourceSystem == "":
		return "source system and source id are required"
	case candidate.Amount <= 0:
		return fmt.Sprintf("amount must be positive, got %d", candidate.Amount)
	case candidate.Direction != domain.CreditDirection && candidate.Direction != domain.DebitDirection:
		return fmt.Sprintf("unknown direction %q", candidate.Direction)
	case !periodKey.Contains(candidate.Date):
		return fmt.Sprintf("date %s falls outside period %s", candidate.Date.Format("2006-01-02"), periodKey)
	}
	return ""
}
