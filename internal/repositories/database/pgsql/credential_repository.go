package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	portsrepo "github.com/haneulsoft/kinderledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCredentialRepository struct {
	BaseRepository
}

func newPgxCredentialRepository(pool *pgxpool.Pool) portsrepo.CredentialRepository {
	return &PgxCredentialRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.CredentialRepository = (*PgxCredentialRepository)(nil)

func (r *PgxCredentialRepository) SaveCredential(ctx context.Context, credential domain.PortalCredential) error {
	query := `INSERT INTO portal_credentials (kindergarten_id, login_id, encrypted_secret, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (kindergarten_id) DO UPDATE
		SET login_id = EXCLUDED.login_id, encrypted_secret = EXCLUDED.encrypted_secret,
		    last_updated_at = EXCLUDED.last_updated_at, last_updated_by = EXCLUDED.last_updated_by;`

	_, err := r.Pool.Exec(ctx, query,
		credential.KindergartenID,
		credential.LoginID,
		credential.EncryptedSecret,
		credential.CreatedAt,
		credential.CreatedBy,
		credential.LastUpdatedAt,
		credential.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save credential for %s: %w", credential.KindergartenID, err)
	}
	return nil
}

func (r *PgxCredentialRepository) FindCredentialByKindergarten(ctx context.Context, kindergartenID string) (*domain.PortalCredential, error) {
	query := `SELECT kindergarten_id, login_id, encrypted_secret, created_at, created_by, last_updated_at, last_updated_by
		FROM portal_credentials WHERE kindergarten_id = $1;`

	var credential domain.PortalCredential
	err := r.Pool.QueryRow(ctx, query, kindergartenID).Scan(
		&credential.KindergartenID,
		&credential.LoginID,
		&credential.EncryptedSecret,
		&credential.CreatedAt,
		&credential.CreatedBy,
		&credential.LastUpdatedAt,
		&credential.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find credential for %s: %w", kindergartenID, err)
	}
	return &credential, nil
}
