package utils

import (
	"github.com/go-gota/gota/dataframe"
)

func containsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

// HasColumn reports whether df carries col.
func HasColumn(df *dataframe.DataFrame, col string) bool {
	if df == nil {
		return false
	}
	return containsString(df.Names(), col)
}

// MissingColumns returns the subset of cols df does not carry, in order.
func MissingColumns(df *dataframe.DataFrame, cols ...string) []string {
	var missing []string
	for _, c := range cols {
		if !HasColumn(df, c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Strings returns the cells of col as strings, with NA cells as "". The bool
// is false when the column is absent.
func Strings(col string, df *dataframe.DataFrame) ([]string, bool) {
	if !HasColumn(df, col) {
		return nil, false
	}
	s := df.Col(col)
	out := make([]string, s.Len())
	for i := range out {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		out[i] = e.String()
	}
	return out, true
}

// Ints returns the cells of col as integers. NA or non-numeric cells are
// reported through valid[i] == false.
func Ints(col string, df *dataframe.DataFrame) (vals []int, valid []bool, ok bool) {
	if !HasColumn(df, col) {
		return nil, nil, false
	}
	s := df.Col(col)
	vals = make([]int, s.Len())
	valid = make([]bool, s.Len())
	for i := range vals {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		v, err := e.Int()
		if err != nil {
			continue
		}
		vals[i] = v
		valid[i] = true
	}
	return vals, valid, true
}

// Codes returns the cells of a sanitized code column as dimension keys. NA,
// fractional and out-of-range cells are reported through valid[i] == false.
func Codes(col string, df *dataframe.DataFrame) (vals []int64, valid []bool, ok bool) {
	if !HasColumn(df, col) {
		return nil, nil, false
	}
	s := df.Col(col)
	vals = make([]int64, s.Len())
	valid = make([]bool, s.Len())
	for i := range vals {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		vals[i], valid[i] = CodeKey(e.Float())
	}
	return vals, valid, true
}
