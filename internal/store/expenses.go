package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/farxc/despesas-dw/internal/transparency/types"
	"github.com/jmoiron/sqlx"
)

type ExpensesStore struct {
	db *sqlx.DB
	t  tables
}

// AllMembers is the filter value that disables a dimension filter.
const AllMembers = "Todos"

// ExpensesFilter narrows the dashboard queries. Zero Year and empty (or
// AllMembers) names match everything. Names are matched exactly.
type ExpensesFilter struct {
	Year           int
	TopOrg         string
	SubordinateOrg string
	ManagingUnit   string
	Modality       string
	Limit          int
}

func selected(v string) bool {
	return v != "" && v != AllMembers
}

func (f ExpensesFilter) where() (string, []any) {
	var conds []string
	var args []any

	if f.Year != 0 {
		conds = append(conds, "dt.ano = ?")
		args = append(args, f.Year)
	}
	if selected(f.TopOrg) {
		conds = append(conds, "os.nome_orgaosuperior = ?")
		args = append(args, f.TopOrg)
	}
	if selected(f.SubordinateOrg) {
		conds = append(conds, "osub.nome_orgaosubordinado = ?")
		args = append(args, f.SubordinateOrg)
	}
	if selected(f.ManagingUnit) {
		conds = append(conds, "ug.nome_unidadegestora = ?")
		args = append(args, f.ManagingUnit)
	}
	if selected(f.Modality) {
		conds = append(conds, "dm.nome_modalidadedespesa = ?")
		args = append(args, f.Modality)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (es *ExpensesStore) joins() string {
	return fmt.Sprintf(`
	FROM %s fg
	JOIN %s dt ON fg.id_tempo = dt.id_tempo
	JOIN %s os ON fg.cod_orgaosuperior = os.cod_orgaosuperior
	JOIN %s osub ON fg.cod_orgaosubordinado = osub.cod_orgaosubordinado
	JOIN %s ug ON fg.cod_unidadegestora = ug.cod_unidadegestora
	JOIN %s dm ON fg.cod_modalidadedespesa = dm.cod_modalidadedespesa`,
		es.t.name(types.TableFact),
		es.t.name(types.TableTime),
		es.t.name(types.TopOrg.Table),
		es.t.name(types.SubordinateOrg.Table),
		es.t.name(types.ManagingUnit.Table),
		es.t.name(types.Modality.Table),
	)
}

func (es *ExpensesStore) GetYears(ctx context.Context) ([]int, error) {
	query := fmt.Sprintf(`SELECT DISTINCT ano FROM %s ORDER BY ano`, es.t.name(types.TableTime))

	var years []int
	if err := es.db.SelectContext(ctx, &years, query); err != nil {
		return nil, fmt.Errorf("failed to query years: %w", err)
	}
	return years, nil
}

func (es *ExpensesStore) GetExpenses(ctx context.Context, f ExpensesFilter) ([]ExpenseRow, error) {
	where, args := f.where()
	query := fmt.Sprintf(`
	SELECT
		fg.id_tempo,
		dt.ano,
		dt.mes,
		fg.cod_orgaosuperior,
		COALESCE(os.nome_orgaosuperior, '') AS orgao_superior,
		fg.cod_orgaosubordinado,
		COALESCE(osub.nome_orgaosubordinado, '') AS orgao_subordinado,
		fg.cod_unidadegestora,
		COALESCE(ug.nome_unidadegestora, '') AS unidade_gestora,
		fg.cod_modalidadedespesa,
		COALESCE(dm.nome_modalidadedespesa, '') AS modalidade,
		fg.cod_elementodespesa,
		COALESCE(fg.valor_empenhado, 0) AS valor_empenhado,
		COALESCE(fg.valor_liquidado, 0) AS valor_liquidado,
		COALESCE(fg.valor_pago, 0) AS valor_pago,
		COALESCE(fg.valor_rp_inscrito, 0) AS valor_rp_inscrito,
		COALESCE(fg.valor_rp_cancelado, 0) AS valor_rp_cancelado,
		COALESCE(fg.valor_rp_pago, 0) AS valor_rp_pago
	%s
	%s
	ORDER BY dt.ano, dt.mes, fg.cod_orgaosuperior, fg.cod_unidadegestora`, es.joins(), where)

	if f.Limit > 0 {
		query += "\n\tLIMIT ?"
		args = append(args, f.Limit)
	}

	var rows []ExpenseRow
	if err := es.db.SelectContext(ctx, &rows, es.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	return rows, nil
}

func (es *ExpensesStore) GetExpensesByModality(ctx context.Context, f ExpensesFilter) ([]ModalityTotal, error) {
	where, args := f.where()
	query := fmt.Sprintf(`
	SELECT
		COALESCE(dm.nome_modalidadedespesa, '') AS modalidade,
		COALESCE(SUM(fg.valor_empenhado), 0) AS valor_empenhado,
		COALESCE(SUM(fg.valor_liquidado), 0) AS valor_liquidado,
		COALESCE(SUM(fg.valor_pago), 0) AS valor_pago
	%s
	%s
	GROUP BY dm.nome_modalidadedespesa
	ORDER BY valor_pago DESC`, es.joins(), where)

	var totals []ModalityTotal
	if err := es.db.SelectContext(ctx, &totals, es.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query expenses by modality: %w", err)
	}
	return totals, nil
}
