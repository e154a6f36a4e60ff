package services

// ServiceContainer holds instances of all the application services. This is
// the main entry point for accessing service functionality and is used
// throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Chart       ChartSvcFacade
	Categorizer CategorizerSvc
	Importer    ImportSvcFacade
	Ledger      LedgerSvcFacade
	Splitter    SplitSvcFacade
	Period      PeriodSvcFacade
	Credential  CredentialSvcFacade
	Transmitter TransmitSvcFacade
	Reporting   ReportingSvcFacade
}
