package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	portsrepo "github.com/haneulsoft/kinderledger/internal/core/ports/repositories"
	"github.com/haneulsoft/kinderledger/internal/models"
	"github.com/haneulsoft/kinderledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const ledgerEntryColumns = `entry_id, kindergarten_id, period_key, entry_date, kind, description, counterparty_name, amount, account_id, split_group_id, source_system, source_transaction_id, transmission_status, locked, created_at, created_by, last_updated_at, last_updated_by`

func toModelEntry(d domain.LedgerEntry) models.LedgerEntry {
	m := models.LedgerEntry{
		EntryID:            d.EntryID,
		KindergartenID:     d.KindergartenID,
		PeriodKey:          d.PeriodKey.String(),
		Date:               d.Date,
		Kind:               models.AccountKind(d.Kind),
		Description:        d.Description,
		CounterpartyName:   d.CounterpartyName,
		Amount:             d.Amount,
		AccountID:          d.AccountID,
		SplitGroupID:       d.SplitGroupID,
		TransmissionStatus: models.TransmissionStatus(d.TransmissionStatus),
		Locked:             d.Locked,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
	if d.SourceRef != nil {
		m.SourceSystem = d.SourceRef.SourceSystem
		m.SourceTransactionID = d.SourceRef.SourceID
	}
	return m
}

func toDomainEntry(m models.LedgerEntry) (domain.LedgerEntry, error) {
	periodKey, err := domain.ParsePeriodKey(m.PeriodKey)
	if err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("entry %s has malformed period key %q: %w", m.EntryID, m.PeriodKey, err)
	}
	d := domain.LedgerEntry{
		EntryID:            m.EntryID,
		KindergartenID:     m.KindergartenID,
		PeriodKey:          periodKey,
		Date:               m.Date,
		Kind:               domain.AccountKind(m.Kind),
		Description:        m.Description,
		CounterpartyName:   m.CounterpartyName,
		Amount:             m.Amount,
		AccountID:          m.AccountID,
		SplitGroupID:       m.SplitGroupID,
		TransmissionStatus: domain.TransmissionStatus(m.TransmissionStatus),
		Locked:             m.Locked,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
	if m.SourceSystem != "" {
		d.SourceRef = &domain.SourceRef{SourceSystem: m.SourceSystem, SourceID: m.SourceTransactionID}
	}
	return d, nil
}

func scanEntry(row pgx.Row) (models.LedgerEntry, error) {
	var m models.LedgerEntry
	var splitGroupID, sourceSystem, sourceID, counterparty sql.NullString
	err := row.Scan(
		&m.EntryID,
		&m.KindergartenID,
		&m.PeriodKey,
		&m.Date,
		&m.Kind,
		&m.Description,
		&counterparty,
		&m.Amount,
		&m.AccountID,
		&splitGroupID,
		&sourceSystem,
		&sourceID,
		&m.TransmissionStatus,
		&m.Locked,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.LedgerEntry{}, err
	}
	m.CounterpartyName = counterparty.String
	m.SplitGroupID = splitGroupID.String
	m.SourceSystem = sourceSystem.String
	m.SourceTransactionID = sourceID.String
	return m, nil
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func (r *PgxLedgerRepository) FindEntryByID(ctx context.Context, kindergartenID, entryID string) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries WHERE entry_id = $1 AND kindergarten_id = $2;`

	m, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID, kindergartenID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	d, err := toDomainEntry(m)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PgxLedgerRepository) FindEntriesByIDs(ctx context.Context, kindergartenID string, entryIDs []string) (map[string]domain.LedgerEntry, error) {
	if len(entryIDs) == 0 {
		return map[string]domain.LedgerEntry{}, nil
	}
	query := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries WHERE kindergarten_id = $1 AND entry_id = ANY($2);`

	rows, err := r.Pool.Query(ctx, query, kindergartenID, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries by IDs: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.LedgerEntry, len(entryIDs))
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		d, err := toDomainEntry(m)
		if err != nil {
			return nil, err
		}
		out[d.EntryID] = d
	}
	return out, rows.Err()
}

func (r *PgxLedgerRepository) ListEntriesByPeriod(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	offset, err := pagination.DecodeOffsetToken(nextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
	}

	// Fetch one extra row to decide whether a next page exists.
	query := `SELECT ` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE kindergarten_id = $1 AND period_key = $2
		ORDER BY entry_date, entry_id
		LIMIT $3 OFFSET $4;`

	rows, err := r.Pool.Query(ctx, query, kindergartenID, periodKey.String(), limit+1, offset)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list entries for period %s: %w", periodKey, err)
	}
	defer rows.Close()

	entries := make([]domain.LedgerEntry, 0, limit)
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		d, err := toDomainEntry(m)
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var token *string
	if len(entries) > limit {
		entries = entries[:limit]
		token = pagination.EncodeOffsetToken(offset + limit)
	}
	return entries, token, nil
}

func (r *PgxLedgerRepository) ExistsSourceRef(ctx context.Context, kindergartenID string, ref domain.SourceRef) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM ledger_entries
		WHERE kindergarten_id = $1 AND source_system = $2 AND source_transaction_id = $3
	);`

	var exists bool
	err := r.Pool.QueryRow(ctx, query, kindergartenID, ref.SourceSystem, ref.SourceID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check source ref %s/%s: %w", ref.SourceSystem, ref.SourceID, err)
	}
	return exists, nil
}

func (r *PgxLedgerRepository) CountUnassigned(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey) (int, error) {
	query := `SELECT COUNT(*) FROM ledger_entries
		WHERE kindergarten_id = $1 AND period_key = $2 AND account_id = $3;`

	var count int
	err := r.Pool.QueryRow(ctx, query, kindergartenID, periodKey.String(), domain.UnassignedAccountID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unassigned entries: %w", err)
	}
	return count, nil
}

func (r *PgxLedgerRepository) CountByTransmissionStatus(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey) (map[domain.TransmissionStatus]int, error) {
	query := `SELECT transmission_status, COUNT(*) FROM ledger_entries
		WHERE kindergarten_id = $1 AND period_key = $2
		GROUP BY transmission_status;`

	rows, err := r.Pool.Query(ctx, query, kindergartenID, periodKey.String())
	if err != nil {
		return nil, fmt.Errorf("failed to count entries by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.TransmissionStatus]int)
	for rows.Next() {
		var status domain.TransmissionStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count row: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *PgxLedgerRepository) SumAmountsByAccount(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey) (map[string]int64, error) {
	query := `SELECT account_id, COALESCE(SUM(amount), 0) FROM ledger_entries
		WHERE kindergarten_id = $1 AND period_key = $2
		GROUP BY account_id;`

	rows, err := r.Pool.Query(ctx, query, kindergartenID, periodKey.String())
	if err != nil {
		return nil, fmt.Errorf("failed to sum amounts by account: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var accountID string
		var total int64
		if err := rows.Scan(&accountID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan account total row: %w", err)
		}
		totals[accountID] = total
	}
	return totals, rows.Err()
}

const insertEntryQuery = `
	INSERT INTO ledger_entries (` + ledgerEntryColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);`

func entryInsertArgs(m models.LedgerEntry) []any {
	return []any{
		m.EntryID,
		m.KindergartenID,
		m.PeriodKey,
		m.Date,
		m.Kind,
		m.Description,
		nullIfEmpty(m.CounterpartyName),
		m.Amount,
		m.AccountID,
		nullIfEmpty(m.SplitGroupID),
		nullIfEmpty(m.SourceSystem),
		nullIfEmpty(m.SourceTransactionID),
		m.TransmissionStatus,
		m.Locked,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	}
}

func (r *PgxLedgerRepository) SaveEntry(ctx context.Context, entry domain.LedgerEntry) error {
	m := toModelEntry(entry)
	_, err := r.Pool.Exec(ctx, insertEntryQuery, entryInsertArgs(m)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: entry %s already exists", apperrors.ErrValidation, m.EntryID)
		}
		return fmt.Errorf("failed to save entry %s: %w", m.EntryID, err)
	}
	return nil
}

func (r *PgxLedgerRepository) SaveEntries(ctx context.Context, entries []domain.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	for _, entry := range entries {
		m := toModelEntry(entry)
		if _, err := tx.Exec(ctx, insertEntryQuery, entryInsertArgs(m)...); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("%w: entry %s already exists", apperrors.ErrValidation, m.EntryID)
			}
			return fmt.Errorf("failed to save entry %s: %w", m.EntryID, err)
		}
	}
	return r.Commit(ctx, tx)
}

func (r *PgxLedgerRepository) ReplaceEntryWithSplits(ctx context.Context, kindergartenID, entryID string, splits []domain.LedgerEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Lock the source row so a concurrent close cannot race the replacement.
	var locked bool
	err = tx.QueryRow(ctx,
		`SELECT locked FROM ledger_entries WHERE entry_id = $1 AND kindergarten_id = $2 FOR UPDATE;`,
		entryID, kindergartenID,
	).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to lock entry %s: %w", entryID, err)
	}
	if locked {
		return apperrors.ErrPeriodLocked
	}

	if _, err := tx.Exec(ctx, `DELETE FROM ledger_entries WHERE entry_id = $1;`, entryID); err != nil {
		return fmt.Errorf("failed to delete source entry %s: %w", entryID, err)
	}
	for _, split := range splits {
		m := toModelEntry(split)
		if _, err := tx.Exec(ctx, insertEntryQuery, entryInsertArgs(m)...); err != nil {
			return fmt.Errorf("failed to insert split entry %s: %w", m.EntryID, err)
		}
	}
	return r.Commit(ctx, tx)
}

func (r *PgxLedgerRepository) UpdateEntryAccount(ctx context.Context, kindergartenID, entryID, accountID, updatedBy string, updatedAt time.Time) error {
	query := `UPDATE ledger_entries
		SET account_id = $1, last_updated_at = $2, last_updated_by = $3
		WHERE entry_id = $4 AND kindergarten_id = $5 AND NOT locked;`

	tag, err := r.Pool.Exec(ctx, query, accountID, updatedAt, updatedBy, entryID, kindergartenID)
	if err != nil {
		return fmt.Errorf("failed to update account of entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyMissedUpdate(ctx, kindergartenID, entryID)
	}
	return nil
}

func (r *PgxLedgerRepository) UpdateTransmissionStatus(ctx context.Context, entryID string, status domain.TransmissionStatus, updatedBy string, updatedAt time.Time) error {
	// Deliberately no locked guard: status updates are the one mutation a
	// closed period still allows.
	query := `UPDATE ledger_entries
		SET transmission_status = $1, last_updated_at = $2, last_updated_by = $3
		WHERE entry_id = $4;`

	tag, err := r.Pool.Exec(ctx, query, status, updatedAt, updatedBy, entryID)
	if err != nil {
		return fmt.Errorf("failed to update transmission status of entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxLedgerRepository) DeleteEntry(ctx context.Context, kindergartenID, entryID string) error {
	query := `DELETE FROM ledger_entries
		WHERE entry_id = $1 AND kindergarten_id = $2 AND NOT locked;`

	tag, err := r.Pool.Exec(ctx, query, entryID, kindergartenID)
	if err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyMissedUpdate(ctx, kindergartenID, entryID)
	}
	return nil
}

// classifyMissedUpdate distinguishes a missing entry from a locked one after
// a guarded UPDATE/DELETE touched zero rows.
func (r *PgxLedgerRepository) classifyMissedUpdate(ctx context.Context, kindergartenID, entryID string) error {
	var locked bool
	err := r.Pool.QueryRow(ctx,
		`SELECT locked FROM ledger_entries WHERE entry_id = $1 AND kindergarten_id = $2;`,
		entryID, kindergartenID,
	).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to inspect entry %s: %w", entryID, err)
	}
	if locked {
		return apperrors.ErrPeriodLocked
	}
	return apperrors.ErrNotFound
}
