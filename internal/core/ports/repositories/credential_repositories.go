package repositories

import (
	"context"

	"github.com/haneulsoft/kinderledger/internal/core/domain"
)

// CredentialRepository defines persistence for encrypted portal credentials.
// Only the opaque vault record is ever stored or returned.
type CredentialRepository interface {
	// SaveCredential upserts the kindergarten's portal credential.
	SaveCredential(ctx context.Context, credential domain.PortalCredential) error

	// FindCredentialByKindergarten retrieves the stored credential record.
	FindCredentialByKindergarten(ctx context.Context, kindergartenID string) (*domain.PortalCredential, error)
}

// AttemptRepository defines persistence for the append-only transmission
// audit trail.
type AttemptRepository interface {
	// AppendAttempt records one transmission attempt. Attempts are never
	// updated or deleted.
	AppendAttempt(ctx context.Context, attempt domain.TransmissionAttempt) error

	// ListAttemptsByEntry retrieves an entry's attempts in append order.
	ListAttemptsByEntry(ctx context.Context, entryID string) ([]domain.TransmissionAttempt, error)
}
