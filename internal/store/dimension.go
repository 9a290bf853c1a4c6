package store

import (
	"context"
	"fmt"

	"github.com/farxc/despesas-dw/internal/transparency/types"
	"github.com/jmoiron/sqlx"
)

type DimensionStore struct {
	db *sqlx.DB
	t  tables
}

func (ds *DimensionStore) ExistingCodes(ctx context.Context, d types.Dimension) (map[int64]bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s`, d.CodeColumn, ds.t.name(d.Table))

	var codes []int64
	if err := ds.db.SelectContext(ctx, &codes, query); err != nil {
		return nil, fmt.Errorf("failed to query %s codes: %w", d.Table, err)
	}

	existing := make(map[int64]bool, len(codes))
	for _, c := range codes {
		existing[c] = true
	}
	return existing, nil
}

func (ds *DimensionStore) InsertMembers(ctx context.Context, d types.Dimension, members []DimensionMember) (int, error) {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES (:code, :name)`, ds.t.name(d.Table), d.CodeColumn, d.NameColumn)

	n, err := insertChunks(ctx, ds.db, query, members)
	if err != nil {
		return 0, fmt.Errorf("failed to insert %s rows: %w", d.Table, err)
	}
	return n, nil
}

func (ds *DimensionStore) ListMembers(ctx context.Context, d types.Dimension) ([]DimensionMember, error) {
	query := fmt.Sprintf(`SELECT %s AS code, COALESCE(%s, '') AS name FROM %s ORDER BY %s`,
		d.CodeColumn, d.NameColumn, ds.t.name(d.Table), d.NameColumn)

	var members []DimensionMember
	if err := ds.db.SelectContext(ctx, &members, query); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", d.Table, err)
	}
	return members, nil
}
