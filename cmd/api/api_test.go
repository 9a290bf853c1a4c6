package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/farxc/despesas-dw/internal/db"
	"github.com/farxc/despesas-dw/internal/logger"
	"github.com/farxc/despesas-dw/internal/store"
	"github.com/farxc/despesas-dw/internal/transparency/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *application {
	t.Helper()
	ctx := context.Background()

	conn, err := db.New("sqlite://"+filepath.Join(t.TempDir(), "dw.db"), 1, 1, "1m")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	storage := store.NewStorage(conn, "DW")
	require.NoError(t, storage.Schema.EnsureSchema(ctx))

	_, err = storage.Time.InsertTime(ctx, []store.TimeRow{{Year: 2022, Month: 1}})
	require.NoError(t, err)
	members := map[types.Dimension][]store.DimensionMember{
		types.TopOrg:         {{Code: 26000, Name: "Ministério da Educação"}},
		types.SubordinateOrg: {{Code: 26101, Name: "Universidade A"}},
		types.ManagingUnit:   {{Code: 150001, Name: "Reitoria A"}},
		types.Modality:       {{Code: 90, Name: "Aplicações Diretas"}, {Code: 30, Name: "Transferências"}},
		types.Element:        {{Code: 39, Name: "Serviços"}},
	}
	for d, m := range members {
		_, err := storage.Dimensions.InsertMembers(ctx, d, m)
		require.NoError(t, err)
	}

	fact := func(modality int64, paid string) store.Fact {
		return store.Fact{
			TimeKey: 1, TopOrgCode: 26000, SubordinateOrgCode: 26101, ManagingUnitCode: 150001,
			ElementCode: 39, ModalityCode: modality,
			Committed: decimal.RequireFromString(paid), Liquidated: decimal.RequireFromString(paid), Paid: decimal.RequireFromString(paid),
		}
	}
	_, err = storage.Facts.InsertFacts(ctx, []store.Fact{fact(90, "100.5"), fact(90, "50"), fact(30, "10")})
	require.NoError(t, err)

	require.NoError(t, storage.RunHistory.InsertRunOutcome(ctx, &store.RunOutcome{RunID: "r1", Stage: "fato_gastomensal", Inserted: 3, Status: store.StatusSuccess}))

	return &application{
		config:    apiConfig{addr: ":0", environment: "test"},
		store:     storage,
		appLogger: logger.New(io.Discard, logger.LevelError),
	}
}

func get(t *testing.T, app *application, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	app.mount().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var body T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestApp(t), "/v1/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "available", body["status"])
	assert.Equal(t, version, body["version"])
	assert.Equal(t, "test", body["environment"])
}

func TestGetYears(t *testing.T) {
	rec := get(t, newTestApp(t), "/v1/years")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{2022}, decode[GetYearsResponse](t, rec).Data)
}

func TestGetDimension(t *testing.T) {
	app := newTestApp(t)

	rec := get(t, app, "/v1/dimensions/modalidade")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[GetDimensionResponse](t, rec)
	assert.Equal(t, []store.DimensionMember{
		{Code: 90, Name: "Aplicações Diretas"},
		{Code: 30, Name: "Transferências"},
	}, body.Data)

	rec = get(t, app, "/v1/dimensions/desconhecida")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetExpenses(t *testing.T) {
	app := newTestApp(t)

	rec := get(t, app, "/v1/expenses?year=2022&top_org=Todos&modality=Transfer%C3%AAncias")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[GetExpensesResponse](t, rec)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Reitoria A", body.Data[0].ManagingUnit)

	rec = get(t, app, "/v1/expenses?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[GetExpensesResponse](t, rec).Data, 2)

	rec = get(t, app, "/v1/expenses?year=dois-mil")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, app, "/v1/expenses?limit=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetExpensesByModality(t *testing.T) {
	rec := get(t, newTestApp(t), "/v1/expenses/by-modality?year=2022")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[GetExpensesByModalityResponse](t, rec)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "Aplicações Diretas", body.Data[0].Modality)
	assert.True(t, body.Data[0].Paid.Equal(decimal.RequireFromString("150.5")), "got %s", body.Data[0].Paid)
}

func TestGetRunHistory(t *testing.T) {
	rec := get(t, newTestApp(t), "/v1/runs?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[GetRunHistoryResponse](t, rec)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "r1", body.Data[0].RunID)
}
