package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	portsrepo "github.com/haneulsoft/kinderledger/internal/core/ports/repositories"
	portssvc "github.com/haneulsoft/kinderledger/internal/core/ports/services"
	"github.com/haneulsoft/kinderledger/internal/dto"
)

// periodService owns the OPEN -> CLOSED state machine. There is no reverse
// edge: a closed month stays closed, mirroring the audit requirement.
type periodService struct {
	BaseService
	periodRepo portsrepo.PeriodRepository
	ledgerRepo portsrepo.LedgerRepositoryFacade
}

// NewPeriodService creates a new PeriodSvcFacade.
func NewPeriodService(periodRepo portsrepo.PeriodRepository, ledgerRepo portsrepo.LedgerRepositoryFacade) portssvc.PeriodSvcFacade {
	return &periodService{periodRepo: periodRepo, ledgerRepo: ledgerRepo}
}

var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

// PreviewClose reports what blocks a close (unassigned entries) and what
// merely warrants a warning (entries not yet transmitted). Untransmitted
// entries do not block: transmission failure is a transmission-layer
// concern, not a journaling-completeness concern.
func (s *periodService) PreviewClose(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey) (*dto.ClosePreview, error) {
	unassigned, err := s.ledgerRepo.CountUnassigned(ctx, kindergartenID, periodKey)
	if err != nil {
		return nil, err
	}

	statusCounts, err := s.ledgerRepo.CountByTransmissionStatus(ctx, kindergartenID, periodKey)
	if err != nil {
		return nil, err
	}

	total := 0
	untransmitted := 0
	for status, count := range statusCounts {
		total += count
		if status != domain.Sent {
			untransmitted += count
		}
	}

	return &dto.ClosePreview{
		PeriodKey:          periodKey.String(),
		EntryCount:         total,
		UnassignedCount:    unassigned,
		UntransmittedCount: untransmitted,
		CanClose:           unassigned == 0,
	}, nil
}

// Close transitions the period to CLOSED and locks every entry in it. The
// repository performs the state change as a compare-and-set, so of two
// concurrent closes exactly one wins; the loser observes ErrPeriodClosed
// and nothing is locked twice.
func (s *periodService) Close(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey, closedBy string) (*dto.CloseResult, error) {
	preview, err := s.PreviewClose(ctx, kindergartenID, periodKey)
	if err != nil {
		return nil, err
	}
	if preview.UnassignedCount > 0 {
		return nil, fmt.Errorf("%w: %d entries are still unassigned and must be journaled before close",
			apperrors.ErrValidation, preview.UnassignedCount)
	}

	closedAt := time.Now().UTC()
	lockedCount, err := s.periodRepo.ClosePeriod(ctx, kindergartenID, periodKey, closedBy, closedAt)
	if err != nil {
		return nil, err
	}

	s.GetLogger(ctx).Info("Period closed",
		slog.String("kindergarten_id", kindergartenID),
		slog.String("period_key", periodKey.String()),
		slog.Int("locked_entries", lockedCount),
		slog.Int("untransmitted", preview.UntransmittedCount),
	)

	return &dto.CloseResult{
		PeriodKey:            periodKey.String(),
		LockedCount:          lockedCount,
		UntransmittedWarning: preview.UntransmittedCount,
		ClosedAt:             closedAt,
	}, nil
}

func (s *periodService) GetPeriod(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey) (*domain.Period, error) {
	return s.periodRepo.FindPeriod(ctx, kindergartenID, periodKey)
}

func (s *periodService) ListPeriods(ctx context.Context, kindergartenID string) ([]domain.Period, error) {
	return s.periodRepo.ListPeriods(ctx, kindergartenID)
}
