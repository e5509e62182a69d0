package storage

import (
	"context"
	"database/sql"

	"github.com/guttosm/quotepulse/internal/domain/models"
)

// QueryLogRepository defines contract for audit log persistence.
type QueryLogRepository interface {
	InsertQueryLog(ctx context.Context, entry models.QueryLogEntry) error
}

type queryLogRepository struct {
	db *sql.DB
}

// NewQueryLogRepository returns a Postgres backed QueryLogRepository.
func NewQueryLogRepository(db *sql.DB) QueryLogRepository {
	return &queryLogRepository{db: db}
}

// InsertQueryLog stores one entry. Price and ResultDate map to NULL when nil.
func (r *queryLogRepository) InsertQueryLog(ctx context.Context, e models.QueryLogEntry) error {
	var price sql.NullFloat64
	if e.Price != nil {
		price = sql.NullFloat64{Float64: *e.Price, Valid: true}
	}
	var resultDate sql.NullTime
	if e.ResultDate != nil {
		resultDate = sql.NullTime{Time: *e.ResultDate, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO query_log (id, symbol, operation, argument, outcome, price, result_date, elapsed_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, e.Symbol, e.Operation, e.Argument, e.Outcome, price, resultDate, e.Elapsed.Milliseconds())
	return err
}

// NoopQueryLogRepository discards entries; used when the audit log is disabled.
type NoopQueryLogRepository struct{}

func (NoopQueryLogRepository) InsertQueryLog(context.Context, models.QueryLogEntry) error { return nil }
