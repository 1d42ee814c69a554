// Package warehouse loads transformed transactions into the relational
// warehouse over the Postgres wire protocol.
package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dvloznov/portfolio-etl/internal/config"
	"github.com/dvloznov/portfolio-etl/internal/domain"
	"github.com/dvloznov/portfolio-etl/internal/logger"
)

// LoadResult accumulates the outcome of one batch load.
type LoadResult struct {
	// Upserted is the number of rows successfully written.
	Upserted int
	// Skipped lists the transaction IDs whose insert failed.
	Skipped []string
}

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS portfolio_transactions (
		transaction_id      VARCHAR(50) PRIMARY KEY,
		date                DATE,
		timestamp           TIMESTAMP,
		amount              DECIMAL(10,2),
		amount_abs          DECIMAL(10,2),
		amount_category     VARCHAR(20),
		category            VARCHAR(50),
		description         VARCHAR(200),
		transaction_type    VARCHAR(20),
		account             VARCHAR(50),
		location            VARCHAR(100),
		day_of_week         VARCHAR(20),
		month               INTEGER,
		year                INTEGER,
		processed_timestamp TIMESTAMP,
		processed_by        VARCHAR(50),
		source_file         VARCHAR(500)
	)
`

// On conflict only amount and processed_timestamp are refreshed; the
// remaining columns keep their originally inserted values.
const upsertSQL = `
	INSERT INTO portfolio_transactions (
		transaction_id, date, timestamp, amount, amount_abs, amount_category,
		category, description, transaction_type, account, location,
		day_of_week, month, year, processed_timestamp, processed_by, source_file
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	ON CONFLICT (transaction_id) DO UPDATE SET
		amount = EXCLUDED.amount,
		processed_timestamp = EXCLUDED.processed_timestamp
`

// Loader wraps a single warehouse connection. It is scoped to one
// invocation: Connect, load, Close.
type Loader struct {
	conn *pgx.Conn
}

// Connect opens a warehouse connection from the given parameters.
func Connect(ctx context.Context, cfg *config.WarehouseConfig) (*Loader, error) {
	conn, err := pgx.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("warehouse: connect to %s:%s: %w", cfg.Host, cfg.Port, err)
	}
	return &Loader{conn: conn}, nil
}

// Close releases the connection.
func (l *Loader) Close(ctx context.Context) error {
	return l.conn.Close(ctx)
}

// EnsureTable creates the destination table if it does not exist.
func (l *Loader) EnsureTable(ctx context.Context) error {
	if _, err := l.conn.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("warehouse: ensure table: %w", err)
	}
	return nil
}

// UpsertBatch writes rows keyed on transaction_id inside one
// transaction. Each row runs under a savepoint so a failing insert is
// logged and skipped without poisoning the batch; the commit at the end
// is all-or-nothing with respect to the surviving rows.
func (l *Loader) UpsertBatch(ctx context.Context, rows []domain.ProcessedTransaction, sourceFile string) (LoadResult, error) {
	log := logger.FromContext(ctx)
	res := LoadResult{}

	tx, err := l.conn.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("warehouse: begin batch: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, row := range rows {
		sp, err := tx.Begin(ctx)
		if err != nil {
			return res, fmt.Errorf("warehouse: begin savepoint: %w", err)
		}

		if _, err := sp.Exec(ctx, upsertSQL, rowArgs(row, sourceFile)...); err != nil {
			log.Warn().
				Err(err).
				Str("transaction_id", row.TransactionID).
				Msg("Failed to upsert row - skipping")
			_ = sp.Rollback(ctx)
			res.Skipped = append(res.Skipped, row.TransactionID)
			continue
		}

		if err := sp.Commit(ctx); err != nil {
			return res, fmt.Errorf("warehouse: release savepoint: %w", err)
		}
		res.Upserted++
	}

	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("warehouse: commit batch: %w", err)
	}

	log.Info().
		Int("upserted", res.Upserted).
		Int("skipped", len(res.Skipped)).
		Msg("Warehouse load complete")

	return res, nil
}

// Load runs one scoped load: connect, ensure the table, upsert the
// batch, close.
func Load(ctx context.Context, cfg *config.WarehouseConfig, rows []domain.ProcessedTransaction, sourceFile string) (LoadResult, error) {
	loader, err := Connect(ctx, cfg)
	if err != nil {
		return LoadResult{}, err
	}
	defer loader.Close(ctx)

	if err := loader.EnsureTable(ctx); err != nil {
		return LoadResult{}, err
	}
	return loader.UpsertBatch(ctx, rows, sourceFile)
}

// rowArgs maps a processed transaction onto the upsert parameters,
// turning null fields into SQL NULLs.
func rowArgs(row domain.ProcessedTransaction, sourceFile string) []any {
	var date, ts, amount, amountAbs, dayOfWeek, month, year any

	if row.Date != nil {
		date = row.Date.In(time.UTC)
	}
	if row.Timestamp != nil {
		ts = *row.Timestamp
	}
	if row.Amount.Valid {
		amount = row.Amount.Decimal.StringFixed(2)
	}
	if row.AmountAbs.Valid {
		amountAbs = row.AmountAbs.Decimal.StringFixed(2)
	}
	if row.DayOfWeek != nil {
		dayOfWeek = *row.DayOfWeek
	}
	if row.Month != nil {
		month = *row.Month
	}
	if row.Year != nil {
		year = *row.Year
	}

	return []any{
		row.TransactionID,
		date,
		ts,
		amount,
		amountAbs,
		string(row.AmountCategory),
		row.Category,
		row.Description,
		row.TransactionType,
		row.Account,
		row.Location,
		dayOfWeek,
		month,
		year,
		row.ProcessedTimestamp,
		row.ProcessedBy,
		sourceFile,
	}
}
