package store

import (
	"context"
	"fmt"

	"github.com/farxc/despesas-dw/internal/transparency/types"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type SchemaStore struct {
	db *sqlx.DB
	t  tables
}

// EnsureSchema creates the warehouse namespace and tables when they are
// missing. Existing tables are never altered.
func (s *SchemaStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range s.statements() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *SchemaStore) statements() []string {
	serial := "SERIAL PRIMARY KEY"
	money := "NUMERIC(18, 2)"
	if s.t.driver == "sqlite" {
		serial = "INTEGER PRIMARY KEY AUTOINCREMENT"
		money = "NUMERIC"
	}

	var stmts []string
	if s.t.usesSchema() {
		stmts = append(stmts, "CREATE SCHEMA IF NOT EXISTS "+pq.QuoteIdentifier(s.t.schema))
	}

	stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id_tempo %s,
		ano INTEGER NOT NULL,
		mes INTEGER NOT NULL,
		UNIQUE (ano, mes)
	)`, s.t.name(types.TableTime), serial))

	for _, d := range types.CodeDimensions {
		stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		%s BIGINT PRIMARY KEY,
		%s TEXT
	)`, s.t.name(d.Table), d.CodeColumn, d.NameColumn))
	}

	stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id_tempo INTEGER NOT NULL,
		cod_orgaosuperior BIGINT NOT NULL,
		cod_orgaosubordinado BIGINT NOT NULL,
		cod_unidadegestora BIGINT NOT NULL,
		cod_elementodespesa BIGINT NOT NULL,
		cod_modalidadedespesa BIGINT NOT NULL,
		valor_empenhado %[2]s,
		valor_liquidado %[2]s,
		valor_pago %[2]s,
		valor_rp_inscrito %[2]s,
		valor_rp_cancelado %[2]s,
		valor_rp_pago %[2]s
	)`, s.t.name(types.TableFact), money))

	stmts = append(stmts, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (id_tempo)`,
		pq.QuoteIdentifier("idx_"+types.TableFact+"_id_tempo"), s.t.name(types.TableFact)))

	stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id %s,
		run_id TEXT NOT NULL,
		etapa TEXT NOT NULL,
		inseridos INTEGER NOT NULL DEFAULT 0,
		ignorados INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		erro TEXT NOT NULL DEFAULT '',
		executado_em TIMESTAMP NOT NULL
	)`, s.t.name(TableRunHistory), serial))

	return stmts
}
