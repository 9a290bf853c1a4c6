package load

import (
	"context"
	"fmt"

	"github.com/farxc/despesas-dw/internal/config"
	"github.com/farxc/despesas-dw/internal/logger"
	"github.com/farxc/despesas-dw/internal/store"
	"github.com/farxc/despesas-dw/internal/transparency/types"
	"github.com/farxc/despesas-dw/internal/transparency/utils"
	"github.com/go-gota/gota/dataframe"
	"github.com/shopspring/decimal"
)

const StageFacts = "fato_gastomensal"

// FactColumns are the columns a resolved table must carry before facts can
// be built from it.
func FactColumns() []string {
	cols := []string{types.ColTimeKey}
	cols = append(cols, types.CodeColumns...)
	for _, v := range types.ValueColumns {
		cols = append(cols, v.Source)
	}
	return cols
}

// SelectFactDelta keeps the rows of df that should be appended to the fact
// table. Rows without a time key are always dropped. In time_key mode a row
// is dropped when its id_tempo already has facts; in dimension_tuple mode
// only when the same (id_tempo, codes) tuple is already stored.
func SelectFactDelta(ctx context.Context, df dataframe.DataFrame, mode string, storage *store.Storage, appLogger *logger.Logger) (dataframe.DataFrame, error) {
	const component = "FactDelta"

	keys, valid, ok := utils.Ints(types.ColTimeKey, &df)
	if !ok {
		return dataframe.DataFrame{}, nil
	}

	var keep func(i int) bool
	switch mode {
	case config.FactDeltaDimensionTuple:
		existing, err := storage.Facts.ExistingKeys(ctx)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		tuples := factKeys(df, keys)
		keep = func(i int) bool { return !existing[tuples[i]] }
	default:
		existing, err := storage.Facts.ExistingTimeKeys(ctx)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		keep = func(i int) bool { return !existing[int64(keys[i])] }
	}

	idx := []int{}
	nullKeys := 0
	for i := range keys {
		if !valid[i] {
			nullKeys++
			continue
		}
		if keep(i) {
			idx = append(idx, i)
		}
	}

	appLogger.Info(component, "Delta selected: mode=%s rows=%d delta=%d null_keys=%d", mode, len(keys), len(idx), nullKeys)
	return df.Subset(idx), nil
}

func factKeys(df dataframe.DataFrame, timeKeys []int) []store.FactKey {
	codes := make([][]int64, len(types.CodeColumns))
	for c, col := range types.CodeColumns {
		codes[c], _, _ = utils.Codes(col, &df)
	}
	code := func(c, i int) int64 {
		if codes[c] == nil {
			return 0
		}
		return codes[c][i]
	}

	tuples := make([]store.FactKey, len(timeKeys))
	for i := range timeKeys {
		tuples[i] = store.FactKey{
			TimeKey:            int64(timeKeys[i]),
			TopOrgCode:         code(0, i),
			SubordinateOrgCode: code(1, i),
			ManagingUnitCode:   code(2, i),
			ModalityCode:       code(3, i),
			ElementCode:        code(4, i),
		}
	}
	return tuples
}

// LoadFacts maps every row of df to a fact and appends them in one batch.
// Rows with an empty or non-numeric value, a missing time key, or a code that
// is not an integer key are dropped.
func LoadFacts(ctx context.Context, df dataframe.DataFrame, storage *store.Storage, appLogger *logger.Logger) Outcome {
	const component = "FactLoader"
	outcome := Outcome{Stage: StageFacts}

	if missing := utils.MissingColumns(&df, FactColumns()...); len(missing) > 0 {
		outcome.Err = &MissingColumnsError{Columns: missing}
		appLogger.Error(component, "Cannot build facts: %v", outcome.Err)
		return outcome
	}

	cols := readFactColumns(df)
	facts := make([]store.Fact, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		f, err := cols.fact(i)
		if err != nil {
			outcome.Skipped++
			appLogger.Debug(component, "Dropping row %d: %v", i, err)
			continue
		}
		facts = append(facts, f)
	}
	if outcome.Skipped > 0 {
		appLogger.Warn(component, "Dropped rows that could not be mapped: count=%d", outcome.Skipped)
	}

	if len(facts) == 0 {
		appLogger.Info(component, "No facts to insert")
		return outcome
	}

	n, err := storage.Facts.InsertFacts(ctx, facts)
	if err != nil {
		outcome.Err = err
		appLogger.Error(component, "Failed to insert facts, batch rolled back: %v", err)
		return outcome
	}

	outcome.Inserted = n
	appLogger.Info(component, "Inserted facts: rows=%d dropped=%d", n, outcome.Skipped)
	return outcome
}

// factColumns holds the cells LoadFacts reads, extracted once per table.
type factColumns struct {
	timeKeys   []int
	timeValid  []bool
	codes      [][]int64
	codesValid [][]bool
	values     [][]string
}

func readFactColumns(df dataframe.DataFrame) factColumns {
	var fc factColumns
	fc.timeKeys, fc.timeValid, _ = utils.Ints(types.ColTimeKey, &df)
	for _, col := range types.CodeColumns {
		codes, valid, _ := utils.Codes(col, &df)
		fc.codes = append(fc.codes, codes)
		fc.codesValid = append(fc.codesValid, valid)
	}
	for _, col := range types.ValueColumns {
		values, _ := utils.Strings(col.Source, &df)
		fc.values = append(fc.values, values)
	}
	return fc
}

func (fc factColumns) fact(row int) (store.Fact, error) {
	if !fc.timeValid[row] {
		return store.Fact{}, fmt.Errorf("null %s", types.ColTimeKey)
	}

	codes := make([]int64, len(types.CodeColumns))
	for c, col := range types.CodeColumns {
		if !fc.codesValid[c][row] {
			return store.Fact{}, fmt.Errorf("%s is not an integer key", col)
		}
		codes[c] = fc.codes[c][row]
	}

	values := make([]decimal.Decimal, len(types.ValueColumns))
	for v, col := range types.ValueColumns {
		raw := utils.NormalizeDecimal(fc.values[v][row])
		if raw == "" {
			return store.Fact{}, fmt.Errorf("empty %s", col.Source)
		}
		var err error
		if values[v], err = decimal.NewFromString(raw); err != nil {
			return store.Fact{}, fmt.Errorf("invalid %s %q: %w", col.Source, raw, err)
		}
	}

	return store.Fact{
		TimeKey:            int64(fc.timeKeys[row]),
		TopOrgCode:         codes[0],
		SubordinateOrgCode: codes[1],
		ManagingUnitCode:   codes[2],
		ModalityCode:       codes[3],
		ElementCode:        codes[4],
		Committed:          values[0],
		Liquidated:         values[1],
		Paid:               values[2],
		PayablesRegistered: values[3],
		PayablesCancelled:  values[4],
		PayablesPaid:       values[5],
	}, nil
}
