package services

import (
	"context"

	"github.com/haneulsoft/kinderledger/internal/core/domain"
	"github.com/haneulsoft/kinderledger/internal/dto"
)

// ChartSvcFacade manages the reference configuration the engine runs on:
// the chart of accounts, keyword rules and default mappings.
type ChartSvcFacade interface {
	CreateAccountCode(ctx context.Context, req dto.CreateAccountCodeRequest, userID string) (*domain.AccountCode, error)
	ListAccountCodes(ctx context.Context) ([]domain.AccountCode, error)
	CreateKeywordRule(ctx context.Context, req dto.CreateKeywordRuleRequest, userID string) (*domain.KeywordRule, error)
	ListKeywordRules(ctx context.Context) ([]domain.KeywordRule, error)
	SetDefaultMapping(ctx context.Context, kindergartenID string, req dto.SetDefaultMappingRequest, userID string) error
}

// CredentialSvcFacade is the credential vault boundary. Secrets go in as
// plaintext, come out only inside a transmission run, and are stored only
// as opaque encrypted records.
type CredentialSvcFacade interface {
	UpsertCredential(ctx context.Context, kindergartenID string, req dto.UpsertCredentialRequest, userID string) error

	// ResolveCredential returns the login ID and decrypted secret. Fails
	// with apperrors.ErrDecryptionFailure on a corrupted record.
	ResolveCredential(ctx context.Context, kindergartenID string) (loginID, secret string, err error)
}

// ReportingSvcFacade provides read-only aggregates for the UI layer.
type ReportingSvcFacade interface {
	MonthlySummary(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey) (*dto.MonthlySummary, error)
}
