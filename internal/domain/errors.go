package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCountryNotFound reports a country name absent from the indicator table.
	ErrCountryNotFound = errors.New("country not found in indicator table")

	// ErrIndexOutOfRange reports an invalid country or hazard selection.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNoTable reports that no indicator table file could be resolved.
	ErrNoTable = errors.New("no indicator table file found")

	// ErrBadPayload reports an unparseable risk result message.
	ErrBadPayload = errors.New("malformed risk result payload")

	// ErrGDPUnavailable reports a failed World Bank GDP fallback fetch.
	ErrGDPUnavailable = errors.New("gdp unavailable")
)

// MissingIndicatorError reports NaN cells that prevented computing a
// country's damage factor. Columns lists the required indicator columns that
// carried no value.
type MissingIndicatorError struct {
	Country string
	Columns []string
}

func (e *MissingIndicatorError) Error() string {
	return fmt.Sprintf("missing indicator data for %s: %s", e.Country, strings.Join(e.Columns, ", "))
}
