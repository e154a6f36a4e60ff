package services

import (
	"github.com/haneulsoft/kinderledger/internal/core/ports/gateways"
	portsrepo "github.com/haneulsoft/kinderledger/internal/core/ports/repositories"
	portssvc "github.com/haneulsoft/kinderledger/internal/core/ports/services"
	"github.com/haneulsoft/kinderledger/internal/vault"
)

// NewServiceContainer wires all services against the given repositories
// and external gateways.
func NewServiceContainer(
	repos portsrepo.RepositoryProvider,
	v *vault.Vault,
	dialer gateways.PortalDialer,
	feeds ...gateways.TransactionFeed,
) *portssvc.ServiceContainer {
	categorizer := NewCategorizerService(repos.RuleRepo)
	credential := NewCredentialService(repos.CredentialRepo, v)

	return &portssvc.ServiceContainer{
		Chart:       NewChartService(repos.AccountRepo, repos.RuleRepo),
		Categorizer: categorizer,
		Importer:    NewImportService(repos.LedgerRepo, repos.PeriodRepo, categorizer, feeds...),
		Ledger:      NewLedgerService(repos.LedgerRepo, repos.AccountRepo),
		Splitter:    NewSplitService(repos.LedgerRepo, repos.AccountRepo),
		Period:      NewPeriodService(repos.PeriodRepo, repos.LedgerRepo),
		Credential:  credential,
		Transmitter: NewTransmitService(repos.LedgerRepo, repos.AccountRepo, repos.AttemptRepo, credential, dialer),
		Reporting:   NewReportingService(repos.LedgerRepo, repos.AccountRepo, repos.PeriodRepo),
	}
}
