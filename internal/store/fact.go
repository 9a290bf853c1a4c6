package store

import (
	"context"
	"fmt"

	"github.com/farxc/despesas-dw/internal/transparency/types"
	"github.com/jmoiron/sqlx"
)

type FactStore struct {
	db *sqlx.DB
	t  tables
}

func (fs *FactStore) ExistingTimeKeys(ctx context.Context) (map[int64]bool, error) {
	query := fmt.Sprintf(`SELECT DISTINCT id_tempo FROM %s`, fs.t.name(types.TableFact))

	var keys []int64
	if err := fs.db.SelectContext(ctx, &keys, query); err != nil {
		return nil, fmt.Errorf("failed to query fact time keys: %w", err)
	}

	existing := make(map[int64]bool, len(keys))
	for _, k := range keys {
		existing[k] = true
	}
	return existing, nil
}

func (fs *FactStore) ExistingKeys(ctx context.Context) (map[FactKey]bool, error) {
	query := fmt.Sprintf(`
	SELECT DISTINCT
		id_tempo,
		cod_orgaosuperior,
		cod_orgaosubordinado,
		cod_unidadegestora,
		cod_elementodespesa,
		cod_modalidadedespesa
	FROM %s`, fs.t.name(types.TableFact))

	rows, err := fs.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fact keys: %w", err)
	}
	defer rows.Close()

	existing := make(map[FactKey]bool)
	for rows.Next() {
		var k FactKey
		if err := rows.StructScan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan fact key: %w", err)
		}
		existing[k] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return existing, nil
}

func (fs *FactStore) InsertFacts(ctx context.Context, facts []Fact) (int, error) {
	query := fmt.Sprintf(`INSERT INTO %s (
		id_tempo,
		cod_orgaosuperior,
		cod_orgaosubordinado,
		cod_unidadegestora,
		cod_elementodespesa,
		cod_modalidadedespesa,
		valor_empenhado,
		valor_liquidado,
		valor_pago,
		valor_rp_inscrito,
		valor_rp_cancelado,
		valor_rp_pago
	) VALUES (
		:id_tempo,
		:cod_orgaosuperior,
		:cod_orgaosubordinado,
		:cod_unidadegestora,
		:cod_elementodespesa,
		:cod_modalidadedespesa,
		:valor_empenhado,
		:valor_liquidado,
		:valor_pago,
		:valor_rp_inscrito,
		:valor_rp_cancelado,
		:valor_rp_pago
	)`, fs.t.name(types.TableFact))

	n, err := insertChunks(ctx, fs.db, query, facts)
	if err != nil {
		return 0, fmt.Errorf("failed to insert facts: %w", err)
	}
	return n, nil
}
