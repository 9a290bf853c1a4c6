package load

import (
	"context"

	"github.com/farxc/despesas-dw/internal/logger"
	"github.com/farxc/despesas-dw/internal/store"
	"github.com/farxc/despesas-dw/internal/transparency/types"
	"github.com/farxc/despesas-dw/internal/transparency/utils"
	"github.com/go-gota/gota/dataframe"
)

const StageTime = "dim_tempo"

// LoadTimeDimension inserts the (ano, mes) pairs of df that dim_tempo does
// not have yet. Rows with an unreadable period contribute nothing.
func LoadTimeDimension(ctx context.Context, df dataframe.DataFrame, storage *store.Storage, appLogger *logger.Logger) Outcome {
	const component = "TimeDimension"
	outcome := Outcome{Stage: StageTime}

	periods, ok := utils.Strings(types.ColPeriod, &df)
	if !ok {
		outcome.Err = &MissingColumnsError{Columns: []string{types.ColPeriod}}
		appLogger.Warn(component, "Skipping time dimension: %v", outcome.Err)
		return outcome
	}

	seen := make(map[types.Period]bool)
	var distinct []types.Period
	invalid := 0
	for _, raw := range periods {
		p, err := utils.ParsePeriod(raw)
		if err != nil {
			invalid++
			continue
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		distinct = append(distinct, p)
	}
	if invalid > 0 {
		appLogger.Warn(component, "Ignored rows with unreadable period: count=%d", invalid)
	}

	existing, err := storage.Time.ListTime(ctx)
	if err != nil {
		outcome.Err = err
		appLogger.Error(component, "Failed to read time dimension: %v", err)
		return outcome
	}
	present := make(map[types.Period]bool, len(existing))
	for _, row := range existing {
		present[types.Period{Year: row.Year, Month: row.Month}] = true
	}

	var rows []store.TimeRow
	for _, p := range distinct {
		if present[p] {
			outcome.Skipped++
			continue
		}
		rows = append(rows, store.TimeRow{Year: p.Year, Month: p.Month})
	}

	if len(rows) == 0 {
		appLogger.Info(component, "No new periods: distinct=%d", len(distinct))
		return outcome
	}

	n, err := storage.Time.InsertTime(ctx, rows)
	if err != nil {
		outcome.Err = err
		appLogger.Error(component, "Failed to insert periods, batch rolled back: %v", err)
		return outcome
	}

	outcome.Inserted = n
	appLogger.Info(component, "Inserted periods: new=%d existing=%d", n, outcome.Skipped)
	return outcome
}

// LoadDimension inserts the members of d found in df whose code is not yet
// in the warehouse. Within df the first name seen for a code wins, and a
// stored name is never updated.
func LoadDimension(ctx context.Context, df dataframe.DataFrame, d types.Dimension, storage *store.Storage, appLogger *logger.Logger) Outcome {
	const component = "Dimension"
	outcome := Outcome{Stage: d.Table}

	if missing := utils.MissingColumns(&df, d.SourceCode, d.SourceName); len(missing) > 0 {
		outcome.Err = &MissingColumnsError{Columns: missing}
		appLogger.Warn(component, "Skipping %s: %v", d.Table, outcome.Err)
		return outcome
	}

	members := df.Select([]string{d.SourceCode, d.SourceName}).
		Rename(d.CodeColumn, d.SourceCode).
		Rename(d.NameColumn, d.SourceName)
	if err := members.Error(); err != nil {
		outcome.Err = err
		appLogger.Error(component, "Failed to project %s: %v", d.Table, err)
		return outcome
	}

	codes, valid, _ := utils.Codes(d.CodeColumn, &members)
	names, _ := utils.Strings(d.NameColumn, &members)

	existing, err := storage.Dimensions.ExistingCodes(ctx, d)
	if err != nil {
		outcome.Err = err
		appLogger.Error(component, "Failed to read %s: %v", d.Table, err)
		return outcome
	}

	seen := make(map[int64]bool)
	var rows []store.DimensionMember
	rejected := 0
	for i, code := range codes {
		if !valid[i] {
			rejected++
			continue
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		if existing[code] {
			outcome.Skipped++
			continue
		}
		rows = append(rows, store.DimensionMember{Code: code, Name: names[i]})
	}

	if rejected > 0 {
		outcome.Skipped += rejected
		appLogger.Warn(component, "Ignored rows whose %s is not an integer key: count=%d", d.SourceCode, rejected)
	}

	if len(rows) == 0 {
		appLogger.Info(component, "No new members for %s: distinct=%d", d.Table, len(seen))
		return outcome
	}

	n, err := storage.Dimensions.InsertMembers(ctx, d, rows)
	if err != nil {
		outcome.Err = err
		appLogger.Error(component, "Failed to insert into %s, batch rolled back: %v", d.Table, err)
		return outcome
	}

	outcome.Inserted = n
	appLogger.Info(component, "Inserted into %s: new=%d existing=%d", d.Table, n, outcome.Skipped)
	return outcome
}
