package gateways

import (
	"context"
	"time"

	"github.com/haneulsoft/kinderledger/internal/core/domain"
)

// PortalEntry carries the fields the external accounting portal's entry
// form accepts, mapped from a ledger entry and its account code.
type PortalEntry struct {
	EntryID     string
	Date        time.Time
	Kind        domain.AccountKind
	AccountCode string // external code, e.g. "111"
	Amount      int64
	Description string
}

// PortalSession is one authenticated session against the external portal.
// The portal is a legacy web UI, not an API; implementations script the
// navigate/fill/submit flow behind this interface.
type PortalSession interface {
	// SubmitEntry drives the portal's entry form and waits for its
	// confirmation. Returns apperrors.ErrPortalRejection (wrapped with the
	// form's reason) on rejection and apperrors.ErrPortalUnreachable on
	// transport failure or timeout.
	SubmitEntry(ctx context.Context, entry PortalEntry) error

	// Logout ends the session. Safe to call after a failed submit.
	Logout(ctx context.Context) error
}

// PortalDialer opens portal sessions. One session per credential may be
// active at a time; the transmission agent serializes around this.
type PortalDialer interface {
	Login(ctx context.Context, loginID, secret string) (PortalSession, error)
}
