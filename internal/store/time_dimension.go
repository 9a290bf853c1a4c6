package store

import (
	"context"
	"fmt"

	"github.com/farxc/despesas-dw/internal/transparency/types"
	"github.com/jmoiron/sqlx"
)

type TimeStore struct {
	db *sqlx.DB
	t  tables
}

func (ts *TimeStore) ListTime(ctx context.Context) ([]TimeRow, error) {
	query := fmt.Sprintf(`SELECT id_tempo, ano, mes FROM %s ORDER BY ano, mes`, ts.t.name(types.TableTime))

	var rows []TimeRow
	if err := ts.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to query time dimension: %w", err)
	}
	return rows, nil
}

// InsertTime inserts (ano, mes) pairs; id_tempo is assigned by the database.
func (ts *TimeStore) InsertTime(ctx context.Context, rows []TimeRow) (int, error) {
	query := fmt.Sprintf(`INSERT INTO %s (ano, mes) VALUES (:ano, :mes)`, ts.t.name(types.TableTime))

	n, err := insertChunks(ctx, ts.db, query, rows)
	if err != nil {
		return 0, fmt.Errorf("failed to insert time rows: %w", err)
	}
	return n, nil
}
