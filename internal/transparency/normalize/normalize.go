package normalize

import (
	"fmt"
	"path/filepath"

	"github.com/farxc/despesas-dw/internal/logger"
	"github.com/farxc/despesas-dw/internal/transparency/files"
	"github.com/farxc/despesas-dw/internal/transparency/types"
	"github.com/farxc/despesas-dw/internal/transparency/utils"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ReadDir decodes every table in dir and concatenates them into one string
// typed frame. Files that cannot be read are logged and left out; the error
// is only for a directory that cannot be listed.
func ReadDir(dir string, appLogger *logger.Logger) (dataframe.DataFrame, error) {
	const component = "Normalizer"

	paths, err := files.ListTables(dir)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("list tables in %s: %w", dir, err)
	}

	tables := make([]files.Table, 0, len(paths))
	for _, p := range paths {
		table, err := files.OpenFileAndDecode(p)
		if err != nil {
			appLogger.Error(component, "Skipping unreadable file: path=%s error=%v", p, err)
			continue
		}
		if table.SkippedRows > 0 {
			appLogger.Warn(component, "Skipped malformed lines: file=%s count=%d", filepath.Base(p), table.SkippedRows)
		}
		appLogger.Info(component, "Read table: file=%s rows=%d", filepath.Base(p), len(table.Rows))
		tables = append(tables, table)
	}

	df := Concat(tables)
	if err := df.Error(); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("build unified table: %w", err)
	}

	appLogger.Info(component, "Unified table built: files=%d rows=%d columns=%d", len(tables), df.Nrow(), df.Ncol())
	return df, nil
}

// Concat stacks tables in order. Columns are the union of all headers in
// first-seen order; cells a table does not carry are empty. No tables means
// a frame with no columns.
func Concat(tables []files.Table) dataframe.DataFrame {
	var header []string
	index := map[string]int{}
	total := 0
	for _, t := range tables {
		for _, name := range t.Header {
			if _, ok := index[name]; ok {
				continue
			}
			index[name] = len(header)
			header = append(header, name)
		}
		total += len(t.Rows)
	}

	if len(header) == 0 {
		return dataframe.DataFrame{}
	}

	if total == 0 {
		columns := make([]series.Series, len(header))
		for i, name := range header {
			columns[i] = series.New([]string{}, series.String, name)
		}
		return dataframe.New(columns...)
	}

	records := make([][]string, 0, total+1)
	records = append(records, header)
	for _, t := range tables {
		positions := make([]int, len(t.Header))
		for i, name := range t.Header {
			positions[i] = index[name]
		}
		for _, row := range t.Rows {
			record := make([]string, len(header))
			for i, cell := range row {
				if i < len(positions) {
					record[positions[i]] = cell
				}
			}
			records = append(records, record)
		}
	}

	return dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.HasHeader(true),
	)
}

// Sanitize coerces each code column present in df to a non-negative number.
// Unparseable and negative codes become 0; absent columns stay absent.
func Sanitize(df dataframe.DataFrame) dataframe.DataFrame {
	for _, col := range types.CodeColumns {
		cells, ok := utils.Strings(col, &df)
		if !ok {
			continue
		}
		codes := make([]float64, len(cells))
		for i, c := range cells {
			codes[i] = utils.ParseCode(c)
		}
		df = df.Mutate(series.New(codes, series.Float, col))
	}
	return df
}
