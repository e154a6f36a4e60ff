// Package memory provides in-memory repository implementations behind the
// same facades as the pgsql package. They back tests and local runs; state
// is owned by the repository values, never module-level globals.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	portsrepo "github.com/haneulsoft/kinderledger/internal/core/ports/repositories"
	"github.com/haneulsoft/kinderledger/internal/utils/pagination"
)

// NewRepositoryProvider builds a fully in-memory provider sharing one
// store, mirroring pgsql.NewRepositoryProvider.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	store := newStore()
	return portsrepo.RepositoryProvider{
		LedgerRepo:     &LedgerRepository{store: store},
		PeriodRepo:     &PeriodRepository{store: store},
		AccountRepo:    &AccountRepository{store: store},
		RuleRepo:       &RuleRepository{store: store},
		CredentialRepo: &CredentialRepository{store: store},
		AttemptRepo:    &AttemptRepository{store: store},
	}
}

// store holds all tables behind one mutex. Period close needs entry
// locking and the state CAS to be atomic together, which a single lock
// gives us for free.
type store struct {
	mu          sync.Mutex
	entries     map[string]domain.LedgerEntry
	periods     map[string]domain.Period // key: kindergartenID + "/" + periodKey
	accounts    map[string]domain.AccountCode
	rules       map[string]domain.KeywordRule
	mappings    map[string]domain.DefaultAccountMapping
	credentials map[string]domain.PortalCredential
	attempts    []domain.TransmissionAttempt
}

func newStore() *store {
	return &store{
		entries:     make(map[string]domain.LedgerEntry),
		periods:     make(map[string]domain.Period),
		accounts:    make(map[string]domain.AccountCode),
		rules:       make(map[string]domain.KeywordRule),
		mappings:    make(map[string]domain.DefaultAccountMapping),
		credentials: make(map[string]domain.PortalCredential),
	}
}

func periodRowKey(kindergartenID string, periodKey domain.PeriodKey) string {
	return kindergartenID + "/" + periodKey.String()
}

// LedgerRepository is the in-memory ledger store.
type LedgerRepository struct {
	store *store
}

var _ portsrepo.LedgerRepositoryFacade = (*LedgerRepository)(nil)

func (r *LedgerRepository) FindEntryByID(ctx context.Context, kindergartenID, entryID string) (*domain.LedgerEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	entry, found := r.store.entries[entryID]
	if !found || entry.KindergartenID != kindergartenID {
		return nil, apperrors.ErrNotFound
	}
	return &entry, nil
}

func (r *LedgerRepository) FindEntriesByIDs(ctx context.Context, kindergartenID string, entryIDs []string) (map[string]domain.LedgerEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make(map[string]domain.LedgerEntry, len(entryIDs))
	for _, entryID := range entryIDs {
		if entry, found := r.store.entries[entryID]; found && entry.KindergartenID == kindergartenID {
			out[entryID] = entry
		}
	}
	return out, nil
}

func (r *LedgerRepository) ListEntriesByPeriod(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	all := r.periodEntriesLocked(kindergartenID, periodKey)
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.Before(all[j].Date)
		}
		return all[i].EntryID < all[j].EntryID
	})

	offset, err := pagination.DecodeOffsetToken(nextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
	}
	if offset >= len(all) {
		return []domain.LedgerEntry{}, nil, nil
	}

	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	page := all[offset:end]

	var token *string
	if end < len(all) {
		token = pagination.EncodeOffsetToken(end)
	}
	return page, token, nil
}

func (r *LedgerRepository) ExistsSourceRef(ctx context.Context, kindergartenID string, ref domain.SourceRef) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, entry := range r.store.entries {
		if entry.KindergartenID == kindergartenID && entry.SourceRef != nil && *entry.SourceRef == ref {
			return true, nil
		}
	}
	return false, nil
}

func (r *LedgerRepository) CountUnassigned(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	count := 0
	for _, entry := range r.periodEntriesLocked(kindergartenID, periodKey) {
		if !entry.IsJournaled() {
			count++
		}
	}
	return count, nil
}

func (r *LedgerRepository) CountByTransmissionStatus(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey) (map[domain.TransmissionStatus]int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	counts := make(map[domain.TransmissionStatus]int)
	for _, entry := range r.periodEntriesLocked(kindergartenID, periodKey) {
		counts[entry.TransmissionStatus]++
	}
	return counts, nil
}

func (r *LedgerRepository) SumAmountsByAccount(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey) (map[string]int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	totals := make(map[string]int64)
	for _, entry := range r.periodEntriesLocked(kindergartenID, periodKey) {
		totals[entry.AccountID] += entry.Amount
	}
	return totals, nil
}

func (r *LedgerRepository) SaveEntry(ctx context.Context, entry domain.LedgerEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.entries[entry.EntryID]; exists {
		return fmt.Errorf("%w: entry %s", apperrors.ErrValidation, entry.EntryID)
	}
	r.store.entries[entry.EntryID] = entry
	return nil
}

func (r *LedgerRepository) SaveEntries(ctx context.Context, entries []domain.LedgerEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, entry := range entries {
		if _, exists := r.store.entries[entry.EntryID]; exists {
			return fmt.Errorf("%w: entry %s", apperrors.ErrValidation, entry.EntryID)
		}
	}
	for _, entry := range entries {
		r.store.entries[entry.EntryID] = entry
	}
	return nil
}

func (r *LedgerRepository) ReplaceEntryWithSplits(ctx context.Context, kindergartenID, entryID string, splits []domain.LedgerEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	source, found := r.store.entries[entryID]
	if !found || source.KindergartenID != kindergartenID {
		return apperrors.ErrNotFound
	}
	if source.Locked {
		return apperrors.ErrPeriodLocked
	}
	for _, split := range splits {
		if _, exists := r.store.entries[split.EntryID]; exists {
			return fmt.Errorf("%w: entry %s", apperrors.ErrValidation, split.EntryID)
		}
	}

	delete(r.store.entries, entryID)
	for _, split := range splits {
		r.store.entries[split.EntryID] = split
	}
	return nil
}

func (r *LedgerRepository) UpdateEntryAccount(ctx context.Context, kindergartenID, entryID, accountID, updatedBy string, updatedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	entry, found := r.store.entries[entryID]
	if !found || entry.KindergartenID != kindergartenID {
		return apperrors.ErrNotFound
	}
	if entry.Locked {
		return apperrors.ErrPeriodLocked
	}
	entry.AccountID = accountID
	entry.LastUpdatedAt = updatedAt
	entry.LastUpdatedBy = updatedBy
	r.store.entries[entryID] = entry
	return nil
}

func (r *LedgerRepository) UpdateTransmissionStatus(ctx context.Context, entryID string, status domain.TransmissionStatus, updatedBy string, updatedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	entry, found := r.store.entries[entryID]
	if !found {
		return apperrors.ErrNotFound
	}
	// Allowed on locked entries: this is the one permitted mutation.
	entry.TransmissionStatus = status
	entry.LastUpdatedAt = updatedAt
	entry.LastUpdatedBy = updatedBy
	r.store.entries[entryID] = entry
	return nil
}

func (r *LedgerRepository) DeleteEntry(ctx context.Context, kindergartenID, entryID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	entry, found := r.store.entries[entryID]
	if !found || entry.KindergartenID != kindergartenID {
		return apperrors.ErrNotFound
	}
	if entry.Locked {
		return apperrors.ErrPeriodLocked
	}
	delete(r.store.entries, entryID)
	return nil
}

func (r *LedgerRepository) periodEntriesLocked(kindergartenID string, periodKey domain.PeriodKey) []domain.LedgerEntry {
	var out []domain.LedgerEntry
	for _, entry := range r.store.entries {
		if entry.KindergartenID == kindergartenID && entry.PeriodKey == periodKey {
			out = append(out, entry)
		}
	}
	return out
}

// PeriodRepository is the in-memory period store.
type PeriodRepository struct {
	store *store
}

var _ portsrepo.PeriodRepository = (*PeriodRepository)(nil)

func (r *PeriodRepository) FindPeriod(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey) (*domain.Period, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	period, found := r.store.periods[periodRowKey(kindergartenID, periodKey)]
	if !found {
		return nil, apperrors.ErrNotFound
	}
	return &period, nil
}

func (r *PeriodRepository) EnsureOpen(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey, createdBy string) (*domain.Period, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rowKey := periodRowKey(kindergartenID, periodKey)
	if period, found := r.store.periods[rowKey]; found {
		if period.State == domain.PeriodClosed {
			return nil, apperrors.ErrPeriodClosed
		}
		return &period, nil
	}

	now := time.Now().UTC()
	period := domain.Period{
		KindergartenID: kindergartenID,
		PeriodKey:      periodKey,
		State:          domain.PeriodOpen,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     createdBy,
			LastUpdatedAt: now,
			LastUpdatedBy: createdBy,
		},
	}
	r.store.periods[rowKey] = period
	return &period, nil
}

func (r *PeriodRepository) ClosePeriod(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey, closedBy string, closedAt time.Time) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rowKey := periodRowKey(kindergartenID, periodKey)
	period, found := r.store.periods[rowKey]
	if !found {
		return 0, apperrors.ErrNotFound
	}
	if period.State == domain.PeriodClosed {
		return 0, apperrors.ErrPeriodClosed
	}

	period.State = domain.PeriodClosed
	period.ClosedAt = &closedAt
	period.ClosedBy = closedBy
	period.LastUpdatedAt = closedAt
	period.LastUpdatedBy = closedBy
	r.store.periods[rowKey] = period

	locked := 0
	for entryID, entry := range r.store.entries {
		if entry.KindergartenID == kindergartenID && entry.PeriodKey == periodKey && !entry.Locked {
			entry.Locked = true
			entry.LastUpdatedAt = closedAt
			entry.LastUpdatedBy = closedBy
			r.store.entries[entryID] = entry
			locked++
		}
	}
	return locked, nil
}

func (r *PeriodRepository) ListPeriods(ctx context.Context, kindergartenID string) ([]domain.Period, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Period
	for _, period := range r.store.periods {
		if period.KindergartenID == kindergartenID {
			out = append(out, period)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodKey > out[j].PeriodKey })
	return out, nil
}

// AccountRepository is the in-memory chart of accounts.
type AccountRepository struct {
	store *store
}

var _ portsrepo.AccountRepositoryFacade = (*AccountRepository)(nil)

func (r *AccountRepository) FindAccountCodeByID(ctx context.Context, accountID string) (*domain.AccountCode, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	account, found := r.store.accounts[accountID]
	if !found {
		return nil, apperrors.ErrNotFound
	}
	return &account, nil
}

func (r *AccountRepository) FindAccountCodesByIDs(ctx context.Context, accountIDs []string) (map[string]domain.AccountCode, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make(map[string]domain.AccountCode, len(accountIDs))
	for _, accountID := range accountIDs {
		if account, found := r.store.accounts[accountID]; found {
			out[accountID] = account
		}
	}
	return out, nil
}

func (r *AccountRepository) ListAccountCodes(ctx context.Context) ([]domain.AccountCode, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]domain.AccountCode, 0, len(r.store.accounts))
	for _, account := range r.store.accounts {
		out = append(out, account)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *AccountRepository) SaveAccountCode(ctx context.Context, account domain.AccountCode) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.accounts[account.AccountID] = account
	return nil
}

func (r *AccountRepository) DeactivateAccountCode(ctx context.Context, accountID, updatedBy string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	account, found := r.store.accounts[accountID]
	if !found {
		return apperrors.ErrNotFound
	}
	account.IsActive = false
	account.LastUpdatedBy = updatedBy
	account.LastUpdatedAt = time.Now().UTC()
	r.store.accounts[accountID] = account
	return nil
}

// RuleRepository is the in-memory keyword rule store.
type RuleRepository struct {
	store *store
}

var _ portsrepo.RuleRepository = (*RuleRepository)(nil)

func (r *RuleRepository) SaveKeywordRule(ctx context.Context, rule domain.KeywordRule) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.rules[rule.RuleID] = rule
	return nil
}

func (r *RuleRepository) ListKeywordRules(ctx context.Context) ([]domain.KeywordRule, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]domain.KeywordRule, 0, len(r.store.rules))
	for _, rule := range r.store.rules {
		out = append(out, rule)
	}
	// Stable rule order: priority, then creation time for equal priorities.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *RuleRepository) DeleteKeywordRule(ctx context.Context, ruleID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, found := r.store.rules[ruleID]; !found {
		return apperrors.ErrNotFound
	}
	delete(r.store.rules, ruleID)
	return nil
}

func (r *RuleRepository) FindDefaultMapping(ctx context.Context, kindergartenID string) (*domain.DefaultAccountMapping, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	mapping, found := r.store.mappings[kindergartenID]
	if !found {
		return nil, apperrors.ErrNotFound
	}
	return &mapping, nil
}

func (r *RuleRepository) SaveDefaultMapping(ctx context.Context, mapping domain.DefaultAccountMapping) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.mappings[mapping.KindergartenID] = mapping
	return nil
}

// CredentialRepository is the in-memory credential store.
type CredentialRepository struct {
	store *store
}

var _ portsrepo.CredentialRepository = (*CredentialRepository)(nil)

func (r *CredentialRepository) SaveCredential(ctx context.Context, credential domain.PortalCredential) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.credentials[credential.KindergartenID] = credential
	return nil
}

func (r *CredentialRepository) FindCredentialByKindergarten(ctx context.Context, kindergartenID string) (*domain.PortalCredential, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	credential, found := r.store.credentials[kindergartenID]
	if !found {
		return nil, apperrors.ErrNotFound
	}
	return &credential, nil
}

// AttemptRepository is the in-memory transmission audit trail.
type AttemptRepository struct {
	store *store
}

var _ portsrepo.AttemptRepository = (*AttemptRepository)(nil)

func (r *AttemptRepository) AppendAttempt(ctx context.Context, attempt domain.TransmissionAttempt) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.attempts = append(r.store.attempts, attempt)
	return nil
}

func (r *AttemptRepository) ListAttemptsByEntry(ctx context.Context, entryID string) ([]domain.TransmissionAttempt, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.TransmissionAttempt
	for _, attempt := range r.store.attempts {
		if attempt.EntryID == entryID {
			out = append(out, attempt)
		}
	}
	return out, nil
}
