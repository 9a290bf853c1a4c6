package store

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/farxc/despesas-dw/internal/db"
	"github.com/farxc/despesas-dw/internal/transparency/types"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openWarehouse(t *testing.T) (*sqlx.DB, *Storage) {
	t.Helper()
	conn, err := db.New("sqlite://"+filepath.Join(t.TempDir(), "dw.db"), 1, 1, "1m")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	storage := NewStorage(conn, "DW")
	require.NoError(t, storage.Schema.EnsureSchema(context.Background()))
	return conn, storage
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTableNames(t *testing.T) {
	pg := tables{driver: "postgres", schema: "DW"}
	assert.Equal(t, `"DW"."dim_tempo"`, pg.name("dim_tempo"))

	lite := tables{driver: "sqlite", schema: "DW"}
	assert.Equal(t, `"dim_tempo"`, lite.name("dim_tempo"))

	noSchema := tables{driver: "postgres"}
	assert.Equal(t, `"dim_tempo"`, noSchema.name("dim_tempo"))
}

func TestEnsureSchemaIsRepeatable(t *testing.T) {
	_, storage := openWarehouse(t)
	require.NoError(t, storage.Schema.EnsureSchema(context.Background()))
}

func TestTimeStore(t *testing.T) {
	ctx := context.Background()
	_, storage := openWarehouse(t)

	n, err := storage.Time.InsertTime(ctx, []TimeRow{{Year: 2022, Month: 2}, {Year: 2022, Month: 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := storage.Time.ListTime(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Month)
	assert.NotZero(t, rows[0].ID)
	assert.NotEqual(t, rows[0].ID, rows[1].ID)

	_, err = storage.Time.InsertTime(ctx, []TimeRow{{Year: 2022, Month: 3}, {Year: 2022, Month: 1}})
	require.Error(t, err, "duplicate (ano, mes) violates the unique constraint")

	rows, err = storage.Time.ListTime(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2, "failed batch is rolled back as a whole")
}

func TestDimensionStore(t *testing.T) {
	ctx := context.Background()
	_, storage := openWarehouse(t)

	n, err := storage.Dimensions.InsertMembers(ctx, types.TopOrg, []DimensionMember{
		{Code: 36000, Name: "Ministério da Saúde"},
		{Code: 26000, Name: "Ministério da Educação"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	existing, err := storage.Dimensions.ExistingCodes(ctx, types.TopOrg)
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{26000: true, 36000: true}, existing)

	members, err := storage.Dimensions.ListMembers(ctx, types.TopOrg)
	require.NoError(t, err)
	assert.Equal(t, []DimensionMember{
		{Code: 26000, Name: "Ministério da Educação"},
		{Code: 36000, Name: "Ministério da Saúde"},
	}, members)

	empty, err := storage.Dimensions.ExistingCodes(ctx, types.Element)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFactStoreChunkedInsert(t *testing.T) {
	ctx := context.Background()
	_, storage := openWarehouse(t)

	facts := make([]Fact, 2500)
	for i := range facts {
		facts[i] = Fact{
			TimeKey:      int64(1 + i%2),
			TopOrgCode:   int64(i),
			Committed:    dec("1.50"),
			Liquidated:   dec("0"),
			Paid:         dec("0"),
			PayablesPaid: dec("0"),
		}
	}

	n, err := storage.Facts.InsertFacts(ctx, facts)
	require.NoError(t, err)
	assert.Equal(t, 2500, n)

	keys, err := storage.Facts.ExistingTimeKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{1: true, 2: true}, keys)

	tuples, err := storage.Facts.ExistingKeys(ctx)
	require.NoError(t, err)
	assert.Len(t, tuples, 2500)
	assert.True(t, tuples[FactKey{TimeKey: 1, TopOrgCode: 10}])
	assert.False(t, tuples[FactKey{TimeKey: 2, TopOrgCode: 10}])
}

func TestInsertFactsEmpty(t *testing.T) {
	_, storage := openWarehouse(t)
	n, err := storage.Facts.InsertFacts(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInsertFactsRollsBackOnFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	storage := NewStorage(sqlx.NewDb(mockDB, "postgres"), "DW")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "DW"."fato_gastomensal"`)).
		WillReturnError(errors.New("numeric field overflow"))
	mock.ExpectRollback()

	_, err = storage.Facts.InsertFacts(context.Background(), []Fact{{TimeKey: 1, Committed: dec("10")}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "numeric field overflow")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertMembersCommits(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	storage := NewStorage(sqlx.NewDb(mockDB, "postgres"), "DW")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "DW"."dim_modalidadedespesa" (cod_modalidadedespesa, nome_modalidadedespesa)`)).
		WithArgs(int64(90), "Aplicações Diretas", int64(30), "Transferências a Estados").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := storage.Dimensions.InsertMembers(context.Background(), types.Modality, []DimensionMember{
		{Code: 90, Name: "Aplicações Diretas"},
		{Code: 30, Name: "Transferências a Estados"},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunHistoryStore(t *testing.T) {
	ctx := context.Background()
	_, storage := openWarehouse(t)

	require.NoError(t, storage.RunHistory.InsertRunOutcome(ctx, &RunOutcome{RunID: "r1", Stage: "time", Inserted: 2, Status: StatusSuccess}))
	require.NoError(t, storage.RunHistory.InsertRunOutcome(ctx, &RunOutcome{RunID: "r1", Stage: "facts", Status: StatusFailure, Error: "boom"}))

	latest, err := storage.RunHistory.GetLatest(ctx, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "facts", latest[0].Stage)
	assert.Equal(t, "boom", latest[0].Error)
	assert.False(t, latest[0].ExecutedAt.IsZero())
}

func seedExpenses(t *testing.T, storage *Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := storage.Time.InsertTime(ctx, []TimeRow{{Year: 2022, Month: 1}, {Year: 2023, Month: 1}})
	require.NoError(t, err)
	rows, err := storage.Time.ListTime(ctx)
	require.NoError(t, err)

	members := map[types.Dimension][]DimensionMember{
		types.TopOrg:         {{Code: 26000, Name: "Educação"}, {Code: 36000, Name: "Saúde"}},
		types.SubordinateOrg: {{Code: 26101, Name: "Subordinado A"}},
		types.ManagingUnit:   {{Code: 150001, Name: "Unidade A"}},
		types.Modality:       {{Code: 90, Name: "Aplicações Diretas"}, {Code: 30, Name: "Transferências"}},
		types.Element:        {{Code: 39, Name: "Serviços"}},
	}
	for d, m := range members {
		_, err := storage.Dimensions.InsertMembers(ctx, d, m)
		require.NoError(t, err)
	}

	fact := func(timeKey, top, modality int64, committed, paid string) Fact {
		return Fact{
			TimeKey:            timeKey,
			TopOrgCode:         top,
			SubordinateOrgCode: 26101,
			ManagingUnitCode:   150001,
			ElementCode:        39,
			ModalityCode:       modality,
			Committed:          dec(committed),
			Liquidated:         dec(committed),
			Paid:               dec(paid),
		}
	}
	_, err = storage.Facts.InsertFacts(ctx, []Fact{
		fact(rows[0].ID, 26000, 90, "100.5", "50.25"),
		fact(rows[0].ID, 26000, 90, "200.25", "100"),
		fact(rows[0].ID, 36000, 30, "10", "10"),
		fact(rows[1].ID, 26000, 90, "999", "999"),
	})
	require.NoError(t, err)
}

func TestExpensesStore(t *testing.T) {
	ctx := context.Background()
	_, storage := openWarehouse(t)
	seedExpenses(t, storage)

	years, err := storage.Expenses.GetYears(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2022, 2023}, years)

	rows, err := storage.Expenses.GetExpenses(ctx, ExpensesFilter{Year: 2022, TopOrg: "Educação", SubordinateOrg: AllMembers})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Educação", rows[0].TopOrg)
	assert.Equal(t, "Aplicações Diretas", rows[0].Modality)
	assert.Equal(t, 2022, rows[0].Year)

	limited, err := storage.Expenses.GetExpenses(ctx, ExpensesFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	totals, err := storage.Expenses.GetExpensesByModality(ctx, ExpensesFilter{Year: 2022})
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "Aplicações Diretas", totals[0].Modality)
	assert.True(t, totals[0].Committed.Equal(dec("300.75")), "got %s", totals[0].Committed)
	assert.True(t, totals[0].Paid.Equal(dec("150.25")), "got %s", totals[0].Paid)
	assert.True(t, totals[1].Paid.Equal(dec("10")), "got %s", totals[1].Paid)
}

func TestExpensesFilterWhere(t *testing.T) {
	where, args := ExpensesFilter{}.where()
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = ExpensesFilter{Year: 2022, TopOrg: AllMembers, ManagingUnit: "Unidade A"}.where()
	assert.Equal(t, "WHERE dt.ano = ? AND ug.nome_unidadegestora = ?", where)
	assert.Equal(t, []any{2022, "Unidade A"}, args)
}
