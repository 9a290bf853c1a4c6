package load

import (
	"strconv"

	"github.com/farxc/despesas-dw/internal/store"
	"github.com/farxc/despesas-dw/internal/transparency/types"
	"github.com/farxc/despesas-dw/internal/transparency/utils"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

const null = "NaN"

// ResolveTimeKeys adds ano, mes and id_tempo to df. A period that does not
// parse leaves all three null; one missing from timeRows leaves id_tempo null.
func ResolveTimeKeys(df dataframe.DataFrame, timeRows []store.TimeRow) dataframe.DataFrame {
	lookup := make(map[types.Period]int64, len(timeRows))
	for _, row := range timeRows {
		lookup[types.Period{Year: row.Year, Month: row.Month}] = row.ID
	}

	if df.Ncol() == 0 {
		return df
	}

	n := df.Nrow()
	years := make([]string, n)
	months := make([]string, n)
	keys := make([]string, n)
	periods, _ := utils.Strings(types.ColPeriod, &df)

	for i := 0; i < n; i++ {
		years[i], months[i], keys[i] = null, null, null
		if periods == nil {
			continue
		}
		p, err := utils.ParsePeriod(periods[i])
		if err != nil {
			continue
		}
		years[i] = strconv.Itoa(p.Year)
		months[i] = strconv.Itoa(p.Month)
		if id, ok := lookup[p]; ok {
			keys[i] = strconv.FormatInt(id, 10)
		}
	}

	return df.
		Mutate(series.New(years, series.Int, types.ColYear)).
		Mutate(series.New(months, series.Int, types.ColMonth)).
		Mutate(series.New(keys, series.Int, types.ColTimeKey))
}
