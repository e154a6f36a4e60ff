package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/haneulsoft/kinderledger/internal/core/domain"
	portsrepo "github.com/haneulsoft/kinderledger/internal/core/ports/repositories"
	portssvc "github.com/haneulsoft/kinderledger/internal/core/ports/services"
	"github.com/haneulsoft/kinderledger/internal/dto"
	"github.com/haneulsoft/kinderledger/internal/vault"
)

// credentialService is the boundary between plaintext portal secrets and
// storage. Plaintext exists only inside a call; what persists is the
// vault's opaque record.
type credentialService struct {
	BaseService
	credentialRepo portsrepo.CredentialRepository
	vault          *vault.Vault
}

// NewCredentialService creates a new CredentialSvcFacade.
func NewCredentialService(credentialRepo portsrepo.CredentialRepository, v *vault.Vault) portssvc.CredentialSvcFacade {
	return &credentialService{credentialRepo: credentialRepo, vault: v}
}

var _ portssvc.CredentialSvcFacade = (*credentialService)(nil)

// UpsertCredential encrypts and stores the kindergarten's portal login.
func (s *credentialService) UpsertCredential(ctx context.Context, kindergartenID string, req dto.UpsertCredentialRequest, userID string) error {
	record, err := s.vault.Encrypt(req.Secret)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	credential := domain.PortalCredential{
		KindergartenID:  kindergartenID,
		LoginID:         req.LoginID,
		EncryptedSecret: record,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.credentialRepo.SaveCredential(ctx, credential); err != nil {
		return err
	}

	// Log the event, never the secret.
	s.GetLogger(ctx).Info("Portal credential stored",
		slog.String("kindergarten_id", kindergartenID),
		slog.String("login_id", req.LoginID),
	)
	return nil
}

// ResolveCredential loads and decrypts the kindergarten's portal login. A
// corrupted record surfaces as ErrDecryptionFailure, which the caller
// treats as an authentication failure rather than a crash.
func (s *credentialService) ResolveCredential(ctx context.Context, kindergartenID string) (string, string, error) {
	credential, err := s.credentialRepo.FindCredentialByKindergarten(ctx, kindergartenID)
	if err != nil {
		return "", "", err
	}

	secret, err := s.vault.Decrypt(credential.EncryptedSecret)
	if err != nil {
		return "", "", err
	}
	return credential.LoginID, secret, nil
}
