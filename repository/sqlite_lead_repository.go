package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/amirphl/lead-connect/models"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	sqliteLeadsTable   = "leads"
	sqlitePositionCol  = "position"
	sqliteInsertChunk  = 200
	sqliteBusyTimeout  = 5000
	sqliteDriverName   = "sqlite"
	sqliteJournalParam = "_pragma=journal_mode(WAL)"
)

// OpenSQLite opens the embedded database at path. A single connection keeps writes serialized.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s?%s&_pragma=busy_timeout(%d)", path, sqliteJournalParam, sqliteBusyTimeout)
	db, err := sql.Open(sqliteDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// SQLiteLeadRepository stores the leads table in one SQLite table. Row order is kept in a position column.
type SQLiteLeadRepository struct {
	db      *sql.DB
	builder squirrel.StatementBuilderType
	logger  *zap.Logger
}

// NewSQLiteLeadRepository creates the repository. Call Migrate before first use.
func NewSQLiteLeadRepository(db *sql.DB, logger *zap.Logger) *SQLiteLeadRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteLeadRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		logger:  logger,
	}
}

// Migrate creates the leads table when missing
func (r *SQLiteLeadRepository) Migrate(ctx context.Context) error {
	cols := make([]string, 0, len(models.LeadColumns)+1)
	cols = append(cols, sqlitePositionCol+" INTEGER NOT NULL")
	for _, c := range models.LeadColumns {
		cols = append(cols, c+" TEXT")
	}
	stmts := []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", sqliteLeadsTable, strings.Join(cols, ", ")),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_leads_campaign_id ON %s (campaign_id)", sqliteLeadsTable),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_leads_assigned_ic ON %s (assigned_ic)", sqliteLeadsTable),
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate sqlite leads table: %w", err)
		}
	}
	return nil
}

// LoadAll reads every lead in table order
func (r *SQLiteLeadRepository) LoadAll(ctx context.Context) ([]*models.Lead, error) {
	start := time.Now()
	defer func() {
		leadStoreDuration.WithLabelValues("sqlite", "load").Observe(time.Since(start).Seconds())
	}()

	query, args, err := r.builder.
		Select(models.LeadColumns...).
		From(sqliteLeadsTable).
		OrderBy(sqlitePositionCol + " ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build lead query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []*models.Lead
	cells := make([]sql.NullString, len(models.LeadColumns))
	dest := make([]any, len(cells))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		values := make(map[string]string, len(cells))
		for i, c := range models.LeadColumns {
			values[c] = cells[i].String
		}
		lead, err := LeadCodec.Decode(func(col string) string { return values[col] })
		if err != nil {
			return nil, fmt.Errorf("failed to decode lead %s: %w", values[models.LeadColLeadID], err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leads: %w", err)
	}
	return leads, nil
}

// SaveAll replaces the table contents in one transaction. Leads without a campaign id are dropped.
func (r *SQLiteLeadRepository) SaveAll(ctx context.Context, leads []*models.Lead) (err error) {
	start := time.Now()
	defer func() {
		leadStoreDuration.WithLabelValues("sqlite", "save").Observe(time.Since(start).Seconds())
	}()

	kept, dropped := partitionOrphans(leads)
	if dropped > 0 {
		orphanLeadsDroppedTotal.Add(float64(dropped))
		r.logger.Warn("Dropping leads without campaign id", zap.Int("count", dropped))
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	del, args, err := r.builder.Delete(sqliteLeadsTable).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}
	if _, err = tx.ExecContext(ctx, del, args...); err != nil {
		return fmt.Errorf("failed to clear leads: %w", err)
	}

	columns := append([]string{sqlitePositionCol}, models.LeadColumns...)
	for offset := 0; offset < len(kept); offset += sqliteInsertChunk {
		end := min(offset+sqliteInsertChunk, len(kept))
		insert := r.builder.Insert(sqliteLeadsTable).Columns(columns...)
		for i, l := range kept[offset:end] {
			insert = insert.Values(leadRowValues(offset+i, l)...)
		}
		var query string
		query, args, err = insert.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert: %w", err)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert leads: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit leads: %w", err)
	}
	return nil
}

// leadRowValues renders a lead through the shard codec so every backend stores identical text
func leadRowValues(position int, l *models.Lead) []any {
	cells := LeadCodec.Encode(l)
	values := make([]any, 0, len(cells)+1)
	values = append(values, position)
	for _, c := range cells {
		if c == "" {
			values = append(values, nil)
			continue
		}
		values = append(values, c)
	}
	return values
}

func partitionOrphans(leads []*models.Lead) ([]*models.Lead, int) {
	kept := make([]*models.Lead, 0, len(leads))
	dropped := 0
	for _, l := range leads {
		if l == nil {
			continue
		}
		if l.CampaignID == nil || strings.TrimSpace(*l.CampaignID) == "" {
			dropped++
			continue
		}
		kept = append(kept, l)
	}
	return kept, dropped
}

var _ LeadRepository = (*SQLiteLeadRepository)(nil)
