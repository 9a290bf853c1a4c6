package store

import (
	"context"
	"fmt"

	"github.com/farxc/despesas-dw/internal/transparency/types"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// insertChunkSize bounds the rows of one multi-row INSERT so the statement
// stays under the drivers' bind parameter limits.
const insertChunkSize = 1000

type Storage struct {
	Schema interface {
		EnsureSchema(ctx context.Context) error
	}

	Time interface {
		ListTime(ctx context.Context) ([]TimeRow, error)
		InsertTime(ctx context.Context, rows []TimeRow) (int, error)
	}

	Dimensions interface {
		ExistingCodes(ctx context.Context, d types.Dimension) (map[int64]bool, error)
		InsertMembers(ctx context.Context, d types.Dimension, members []DimensionMember) (int, error)
		ListMembers(ctx context.Context, d types.Dimension) ([]DimensionMember, error)
	}

	Facts interface {
		ExistingTimeKeys(ctx context.Context) (map[int64]bool, error)
		ExistingKeys(ctx context.Context) (map[FactKey]bool, error)
		InsertFacts(ctx context.Context, facts []Fact) (int, error)
	}

	RunHistory interface {
		InsertRunOutcome(ctx context.Context, outcome *RunOutcome) error
		GetLatest(ctx context.Context, limit int) ([]RunOutcome, error)
	}

	Expenses interface {
		GetYears(ctx context.Context) ([]int, error)
		GetExpenses(ctx context.Context, f ExpensesFilter) ([]ExpenseRow, error)
		GetExpensesByModality(ctx context.Context, f ExpensesFilter) ([]ModalityTotal, error)
	}
}

// NewStorage binds every store to db. Tables live in schema on postgres;
// sqlite has no schemas and ignores it.
func NewStorage(db *sqlx.DB, schema string) *Storage {
	t := tables{driver: db.DriverName(), schema: schema}
	return &Storage{
		Schema:     &SchemaStore{db: db, t: t},
		Time:       &TimeStore{db: db, t: t},
		Dimensions: &DimensionStore{db: db, t: t},
		Facts:      &FactStore{db: db, t: t},
		RunHistory: &RunHistoryStore{db: db, t: t},
		Expenses:   &ExpensesStore{db: db, t: t},
	}
}

// tables renders quoted, schema-qualified table names.
type tables struct {
	driver string
	schema string
}

func (t tables) usesSchema() bool {
	return t.schema != "" && t.driver != "sqlite"
}

func (t tables) name(table string) string {
	if !t.usesSchema() {
		return pq.QuoteIdentifier(table)
	}
	return pq.QuoteIdentifier(t.schema) + "." + pq.QuoteIdentifier(table)
}

// insertChunks runs a named multi-row INSERT over rows in slices of
// insertChunkSize, all inside one transaction. Any failure rolls the whole
// batch back.
func insertChunks[T any](ctx context.Context, db *sqlx.DB, query string, rows []T) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	for start := 0; start < len(rows); start += insertChunkSize {
		end := min(start+insertChunkSize, len(rows))
		if _, err := tx.NamedExecContext(ctx, query, rows[start:end]); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return 0, fmt.Errorf("insert rows %d-%d: %w (rollback: %v)", start, end, err, rbErr)
			}
			return 0, fmt.Errorf("insert rows %d-%d: %w", start, end, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return len(rows), nil
}
