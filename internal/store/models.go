package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeRow represents the 'dim_tempo' table.
type TimeRow struct {
	ID    int64 `db:"id_tempo" json:"id_tempo"`
	Year  int   `db:"ano" json:"ano"`
	Month int   `db:"mes" json:"mes"`
}

// DimensionMember is one row of a code dimension table. Queries alias the
// table's own columns to code and name.
type DimensionMember struct {
	Code int64  `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// Fact represents the 'fato_gastomensal' table.
type Fact struct {
	TimeKey            int64           `db:"id_tempo"`
	TopOrgCode         int64           `db:"cod_orgaosuperior"`
	SubordinateOrgCode int64           `db:"cod_orgaosubordinado"`
	ManagingUnitCode   int64           `db:"cod_unidadegestora"`
	ElementCode        int64           `db:"cod_elementodespesa"`
	ModalityCode       int64           `db:"cod_modalidadedespesa"`
	Committed          decimal.Decimal `db:"valor_empenhado"`
	Liquidated         decimal.Decimal `db:"valor_liquidado"`
	Paid               decimal.Decimal `db:"valor_pago"`
	PayablesRegistered decimal.Decimal `db:"valor_rp_inscrito"`
	PayablesCancelled  decimal.Decimal `db:"valor_rp_cancelado"`
	PayablesPaid       decimal.Decimal `db:"valor_rp_pago"`
}

// FactKey is the dimension tuple of a fact row.
type FactKey struct {
	TimeKey            int64 `db:"id_tempo"`
	TopOrgCode         int64 `db:"cod_orgaosuperior"`
	SubordinateOrgCode int64 `db:"cod_orgaosubordinado"`
	ManagingUnitCode   int64 `db:"cod_unidadegestora"`
	ElementCode        int64 `db:"cod_elementodespesa"`
	ModalityCode       int64 `db:"cod_modalidadedespesa"`
}

// RunOutcome represents the 'etl_execucao' table: one row per pipeline
// stage of a run.
type RunOutcome struct {
	ID         int64     `db:"id" json:"id"`
	RunID      string    `db:"run_id" json:"run_id"`
	Stage      string    `db:"etapa" json:"stage"`
	Inserted   int       `db:"inseridos" json:"inserted"`
	Skipped    int       `db:"ignorados" json:"skipped"`
	Status     string    `db:"status" json:"status"`
	Error      string    `db:"erro" json:"error,omitempty"`
	ExecutedAt time.Time `db:"executado_em" json:"executed_at"`
}

// ExpenseRow is a fact row joined with its dimension names.
type ExpenseRow struct {
	TimeKey            int64           `db:"id_tempo" json:"id_tempo"`
	Year               int             `db:"ano" json:"ano"`
	Month              int             `db:"mes" json:"mes"`
	TopOrgCode         int64           `db:"cod_orgaosuperior" json:"cod_orgaosuperior"`
	TopOrg             string          `db:"orgao_superior" json:"orgao_superior"`
	SubordinateOrgCode int64           `db:"cod_orgaosubordinado" json:"cod_orgaosubordinado"`
	SubordinateOrg     string          `db:"orgao_subordinado" json:"orgao_subordinado"`
	ManagingUnitCode   int64           `db:"cod_unidadegestora" json:"cod_unidadegestora"`
	ManagingUnit       string          `db:"unidade_gestora" json:"unidade_gestora"`
	ModalityCode       int64           `db:"cod_modalidadedespesa" json:"cod_modalidadedespesa"`
	Modality           string          `db:"modalidade" json:"modalidade"`
	ElementCode        int64           `db:"cod_elementodespesa" json:"cod_elementodespesa"`
	Committed          decimal.Decimal `db:"valor_empenhado" json:"valor_empenhado"`
	Liquidated         decimal.Decimal `db:"valor_liquidado" json:"valor_liquidado"`
	Paid               decimal.Decimal `db:"valor_pago" json:"valor_pago"`
	PayablesRegistered decimal.Decimal `db:"valor_rp_inscrito" json:"valor_rp_inscrito"`
	PayablesCancelled  decimal.Decimal `db:"valor_rp_cancelado" json:"valor_rp_cancelado"`
	PayablesPaid       decimal.Decimal `db:"valor_rp_pago" json:"valor_rp_pago"`
}

// ModalityTotal sums committed, liquidated and paid values of one modality.
type ModalityTotal struct {
	Modality   string          `db:"modalidade" json:"modalidade"`
	Committed  decimal.Decimal `db:"valor_empenhado" json:"valor_empenhado"`
	Liquidated decimal.Decimal `db:"valor_liquidado" json:"valor_liquidado"`
	Paid       decimal.Decimal `db:"valor_pago" json:"valor_pago"`
}
