package load

import (
	"errors"
	"fmt"
	"strings"

	"github.com/farxc/despesas-dw/internal/store"
)

// Outcome is what one pipeline stage did. Err is set when the stage was
// skipped or its writes were rolled back; nothing else is propagated.
type Outcome struct {
	Stage    string
	Inserted int
	Skipped  int
	Err      error
}

// MissingColumnsError reports source columns a stage needed but the unified
// table does not carry.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing columns: %s", strings.Join(e.Columns, ", "))
}

// Status maps the outcome onto the run history vocabulary.
func (o Outcome) Status() string {
	var missing *MissingColumnsError
	switch {
	case o.Err == nil:
		return store.StatusSuccess
	case errors.As(o.Err, &missing):
		return store.StatusSkipped
	default:
		return store.StatusFailure
	}
}
