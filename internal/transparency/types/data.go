package types

import "fmt"

// ExtractedFileSuffix is appended to the YYYYMM token of every table the
// monthly archives unpack to.
const ExtractedFileSuffix = "_Despesas.csv"

// Source columns of the monthly expense tables.
const (
	ColPeriod = "Ano e mês do lançamento"

	ColTopOrgCode         = "Código Órgão Superior"
	ColTopOrgName         = "Nome Órgão Superior"
	ColSubordinateOrgCode = "Código Órgão Subordinado"
	ColSubordinateOrgName = "Nome Órgão Subordinado"
	ColManagingUnitCode   = "Código Unidade Gestora"
	ColManagingUnitName   = "Nome Unidade Gestora"
	ColModalityCode       = "Código Modalidade da Despesa"
	ColModalityName       = "Modalidade da Despesa"
	ColElementCode        = "Código Elemento de Despesa"
	ColElementName        = "Nome Elemento de Despesa"

	ColCommitted          = "Valor Empenhado (R$)"
	ColLiquidated         = "Valor Liquidado (R$)"
	ColPaid               = "Valor Pago (R$)"
	ColPayablesRegistered = "Valor Restos a Pagar Inscritos (R$)"
	ColPayablesCancelled  = "Valor Restos a Pagar Cancelado (R$)"
	ColPayablesPaid       = "Valor Restos a Pagar Pagos (R$)"
)

// Columns the key resolver adds to the unified table.
const (
	ColYear    = "ano"
	ColMonth   = "mes"
	ColTimeKey = "id_tempo"
)

// Warehouse tables.
const (
	TableTime = "dim_tempo"
	TableFact = "fato_gastomensal"
)

// CodeColumns are the dimension codes the sanitizer coerces, in load order.
var CodeColumns = []string{
	ColTopOrgCode,
	ColSubordinateOrgCode,
	ColManagingUnitCode,
	ColModalityCode,
	ColElementCode,
}

// ValueColumn pairs a monetary source column with its fact table column.
type ValueColumn struct {
	Source string
	Target string
}

var ValueColumns = []ValueColumn{
	{Source: ColCommitted, Target: "valor_empenhado"},
	{Source: ColLiquidated, Target: "valor_liquidado"},
	{Source: ColPaid, Target: "valor_pago"},
	{Source: ColPayablesRegistered, Target: "valor_rp_inscrito"},
	{Source: ColPayablesCancelled, Target: "valor_rp_cancelado"},
	{Source: ColPayablesPaid, Target: "valor_rp_pago"},
}

// Dimension describes one code dimension: where its natural key and display
// name live in the source table and in the warehouse.
type Dimension struct {
	Name       string
	SourceCode string
	SourceName string
	Table      string
	CodeColumn string
	NameColumn string
}

var (
	TopOrg = Dimension{
		Name:       "orgao-superior",
		SourceCode: ColTopOrgCode,
		SourceName: ColTopOrgName,
		Table:      "dim_orgaosuperior",
		CodeColumn: "cod_orgaosuperior",
		NameColumn: "nome_orgaosuperior",
	}
	SubordinateOrg = Dimension{
		Name:       "orgao-subordinado",
		SourceCode: ColSubordinateOrgCode,
		SourceName: ColSubordinateOrgName,
		Table:      "dim_orgaosubordinado",
		CodeColumn: "cod_orgaosubordinado",
		NameColumn: "nome_orgaosubordinado",
	}
	ManagingUnit = Dimension{
		Name:       "unidade-gestora",
		SourceCode: ColManagingUnitCode,
		SourceName: ColManagingUnitName,
		Table:      "dim_unidadegestora",
		CodeColumn: "cod_unidadegestora",
		NameColumn: "nome_unidadegestora",
	}
	Modality = Dimension{
		Name:       "modalidade",
		SourceCode: ColModalityCode,
		SourceName: ColModalityName,
		Table:      "dim_modalidadedespesa",
		CodeColumn: "cod_modalidadedespesa",
		NameColumn: "nome_modalidadedespesa",
	}
	Element = Dimension{
		Name:       "elemento",
		SourceCode: ColElementCode,
		SourceName: ColElementName,
		Table:      "dim_elementodespesa",
		CodeColumn: "cod_elementodespesa",
		NameColumn: "nome_elementodespesa",
	}
)

// CodeDimensions lists the code dimensions in the order they are loaded.
var CodeDimensions = []Dimension{TopOrg, SubordinateOrg, ManagingUnit, Modality, Element}

// DimensionByName finds a code dimension by its Name.
func DimensionByName(name string) (Dimension, bool) {
	for _, d := range CodeDimensions {
		if d.Name == name {
			return d, true
		}
	}
	return Dimension{}, false
}

// Period is one year-month of published data.
type Period struct {
	Year  int
	Month int
}

// Token renders the fixed-width YYYYMM identifier used in archive URLs.
func (p Period) Token() string {
	return fmt.Sprintf("%04d%02d", p.Year, p.Month)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d/%02d", p.Year, p.Month)
}
