package tabular

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"

	"github.com/savegress/outcomesync/pkg/models"
)

// MalformedDateError indicates a required date cell failed to parse. Dates
// drive reconciliation correctness, so this is fatal for the stage.
type MalformedDateError struct {
	Value string
	Err   error
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("malformed date %q: %v", e.Value, e.Err)
}

func (e *MalformedDateError) Unwrap() error { return e.Err }

// ParseDate parses a spreadsheet date cell in whatever format the export
// happened to use and truncates it to date precision.
func ParseDate(cell string) (time.Time, error) {
	t, err := dateparse.ParseAny(cell)
	if err != nil {
		return time.Time{}, &MalformedDateError{Value: cell, Err: err}
	}
	return models.DateOnly(t), nil
}
