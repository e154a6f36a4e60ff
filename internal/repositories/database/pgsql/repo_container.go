package pgsql

import (
	portsrepo "github.com/haneulsoft/kinderledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo:     newPgxLedgerRepository(dbPool),
		PeriodRepo:     newPgxPeriodRepository(dbPool),
		AccountRepo:    newPgxAccountRepository(dbPool),
		RuleRepo:       newPgxRuleRepository(dbPool),
		CredentialRepo: newPgxCredentialRepository(dbPool),
		AttemptRepo:    newPgxAttemptRepository(dbPool),
	}
}
