package services

import (
	"context"
	"errors"
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

// transmitService drives the external-portal submission workflow per
// entry: UNSENT -> PENDING -> {SENT | FAILED}. Transmission is idempotent
// over SENT entries, making repeated runs over the same set safe — partial
// batch failure is the expected case, not the exception.
type transmitService struct {
	BaseService
	ledgerRepo    portsrepo.LedgerRepositoryFacade
	accountRepo   portsrepo.AccountRepositoryFacade
	attemptRepo   portsrepo.AttemptRepository
	credentialSvc portssvc.CredentialSvcFacade
	dialer        gateways.PortalDialer
	locker        *transmitLocker
}

// NewTransmitService creates a new TransmitSvcFacade.
func NewTransmitService(
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	attemptRepo portsrepo.AttemptRepository,
	credentialSvc portssvc.CredentialSvcFacade,
	dialer gateways.PortalDialer,
) portssvc.TransmitSvcFacade {
	return &transmitService{
		ledgerRepo:    ledgerRepo,
		accountRepo:   accountRepo,
		attemptRepo:   attemptRepo,
		credentialSvc: credentialSvc,
		dialer:        dialer,
		locker:        newTransmitLocker(),
	}
}

var _ portssvc.TransmitSvcFacade = (*transmitService)(nil)

// Transmit processes the entries strictly in the order given. Entries
// already SENT are skipped without recording a new attempt. Each remaining
// entry is submitted through one portal session; per-entry failures are
// recorded as FAILED attempts and never abort the entries after them.
// Cancellation is honored between entries and never invents a FAILED
// status for entries the run did not reach.
func (s *transmitService) Transmit(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey, entryIDs []string, userID string) (*dto.TransmitSummary, error) {
	logger := s.GetLogger(ctx).With(
		slog.String("kindergarten_id", kindergartenID),
		slog.String("period_key", periodKey.String()),
	)

	if !s.locker.TryAcquire(kindergartenID) {
		return nil, apperrors.ErrTransmissionBusy
	}
	defer s.locker.Release(kindergartenID)

	entries, err := s.ledgerRepo.FindEntriesByIDs(ctx, kindergartenID, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("loading entries: %w", err)
	}

	summary := &dto.TransmitSummary{Failures: []dto.EntryFailure{}}

	// Resolve the submission order up front: submitted order, minus
	// entries we will not touch at all.
	pending := make([]domain.LedgerEntry, 0, len(entryIDs))
	for _, entryID := range entryIDs {
		entry, found := entries[entryID]
		if !found {
			summary.Failures = append(summary.Failures, dto.EntryFailure{EntryID: entryID, Reason: apperrors.ErrNotFound.Error()})
			continue
		}
		if entry.PeriodKey != periodKey {
			summary.Failures = append(summary.Failures, dto.EntryFailure{EntryID: entryID, Reason: fmt.Sprintf("entry belongs to period %s", entry.PeriodKey)})
			continue
		}
		if entry.TransmissionStatus == domain.Sent {
			summary.SkippedAlreadySent++
			continue
		}
		if !entry.IsJournaled() {
			summary.Failures = append(summary.Failures, dto.EntryFailure{EntryID: entryID, Reason: "entry has no account assigned"})
			continue
		}
		pending = append(pending, entry)
	}
	if len(pending) == 0 {
		return summary, nil
	}

	accountIDs := make([]string, 0, len(pending))
	for _, entry := range pending {
		accountIDs = append(accountIDs, entry.AccountID)
	}
	accounts, err := s.accountRepo.FindAccountCodesByIDs(ctx, uniqueStrings(accountIDs))
	if err != nil {
		return nil, fmt.Errorf("loading account codes: %w", err)
	}

	loginID, secret, err := s.credentialSvc.ResolveCredential(ctx, kindergartenID)
	if err != nil {
		// Credential trouble (missing, corrupted) fails the whole batch as
		// authentication failure: every targeted entry gets a FAILED
		// attempt, nothing aborts the process.
		logger.Warn("Credential resolution failed", slog.String("error", err.Error()))
		s.failRemaining(ctx, pending, summary, fmt.Sprintf("credential: %v", err), userID)
		return summary, nil
	}

	session, err := s.dialer.Login(ctx, loginID, secret)
	if err != nil {
		logger.Warn("Portal login failed", slog.String("error", err.Error()))
		s.failRemaining(ctx, pending, summary, fmt.Sprintf("login: %v", err), userID)
		return summary, nil
	}
	defer func() {
		if err := session.Logout(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Portal logout failed", slog.String("error", err.Error()))
		}
	}()

	for i, entry := range pending {
		// Cancellation between entries: untouched entries keep their prior
		// status, cancellation alone never produces a FAILED entry.
		if err := ctx.Err(); err != nil {
			logger.Info("Transmission cancelled",
				slog.Int("submitted", i),
				slog.Int("remaining", len(pending)-i),
			)
			return summary, err
		}

		s.submitOne(ctx, session, entry, accounts[entry.AccountID], summary, userID)
	}

	logger.Info("Transmission run completed",
		slog.Int("success", summary.SuccessCount),
		slog.Int("skipped_sent", summary.SkippedAlreadySent),
		slog.Int("failures", len(summary.Failures)),
	)
	return summary, nil
}

// submitOne drives one entry through PENDING to its terminal status and
// appends the audit attempt.
func (s *transmitService) submitOne(ctx context.Context, session gateways.PortalSession, entry domain.LedgerEntry, account domain.AccountCode, summary *dto.TransmitSummary, userID string) {
	logger := s.GetLogger(ctx)
	now := time.Now().UTC()

	if err := s.ledgerRepo.UpdateTransmissionStatus(ctx, entry.EntryID, domain.Pending, userID, now); err != nil {
		summary.Failures = append(summary.Failures, dto.EntryFailure{EntryID: entry.EntryID, Reason: err.Error()})
		return
	}

	err := session.SubmitEntry(ctx, gateways.PortalEntry{
		EntryID:     entry.EntryID,
		Date:        entry.Date,
		Kind:        entry.Kind,
		AccountCode: account.Code,
		Amount:      entry.Amount,
		Description: entry.Description,
	})

	if err != nil {
		// Timeout on the portal round-trip is a per-entry failure feeding
		// the retry policy, not a fatal abort of the run.
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", apperrors.ErrPortalUnreachable, err)
		}
		s.recordOutcome(ctx, entry.EntryID, domain.Failed, err.Error(), userID)
		summary.Failures = append(summary.Failures, dto.EntryFailure{EntryID: entry.EntryID, Reason: err.Error()})
		logger.Warn("Entry transmission failed",
			slog.String("entry_id", entry.EntryID),
			slog.String("error", err.Error()),
		)
		return
	}

	s.recordOutcome(ctx, entry.EntryID, domain.Sent, "", userID)
	summary.SuccessCount++
}

// failRemaining marks every not-yet-submitted entry FAILED with a shared
// reason. Used when the run cannot authenticate at all.
func (s *transmitService) failRemaining(ctx context.Context, entries []domain.LedgerEntry, summary *dto.TransmitSummary, reason, userID string) {
	for _, entry := range entries {
		s.recordOutcome(ctx, entry.EntryID, domain.Failed, reason, userID)
		summary.Failures = append(summary.Failures, dto.EntryFailure{EntryID: entry.EntryID, Reason: reason})
	}
}

// recordOutcome persists the terminal status and appends the audit-trail
// attempt. Attempt rows are append-only and written in submission order.
func (s *transmitService) recordOutcome(ctx context.Context, entryID string, status domain.TransmissionStatus, errorDetail, userID string) {
	now := time.Now().UTC()
	logger := s.GetLogger(ctx)

	if err := s.ledgerRepo.UpdateTransmissionStatus(ctx, entryID, status, userID, now); err != nil {
		logger.Error("Failed to persist transmission status",
			slog.String("entry_id", entryID),
			slog.String("status", string(status)),
			slog.String("error", err.Error()),
		)
	}

	outcome := domain.AttemptSuccess
	if status == domain.Failed {
		outcome = domain.AttemptFailure
	}
	attempt := domain.TransmissionAttempt{
		AttemptID:   uuid.NewString(),
		EntryID:     entryID,
		AttemptedAt: now,
		Outcome:     outcome,
		ErrorDetail: errorDetail,
	}
	if err := s.attemptRepo.AppendAttempt(ctx, attempt); err != nil {
		logger.Error("Failed to append transmission attempt",
			slog.String("entry_id", entryID),
			slog.String("error", err.Error()),
		)
	}
}

// ListAttempts returns an entry's transmission audit trail.
func (s *transmitService) ListAttempts(ctx context.Context, kindergartenID, entryID string) ([]domain.TransmissionAttempt, error) {
	if _, err := s.ledgerRepo.FindEntryByID(ctx, kindergartenID, entryID); err != nil {
		return nil, err
	}
	return s.attemptRepo.ListAttemptsByEntry(ctx, entryID)
}
