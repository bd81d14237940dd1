// Package epoch converts human-supplied dates to the canonical
// epoch-seconds string representation used for activity claims.
package epoch

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// DefaultLayout is the single date layout accepted from callers.
const DefaultLayout = "2006-01-02"

// ErrInvalidFormat indicates the supplied date does not match the
// configured layout.
var ErrInvalidFormat = errors.New("epoch: date does not match layout")

// Converter translates between dates and epoch-seconds strings. It keeps no
// state between calls; the clock field exists only for deterministic tests.
type Converter struct {
	layout string
	now    func() time.Time
}

// NewConverter builds a converter for the given layout, defaulting to
// DefaultLayout when blank.
func NewConverter(layout string) *Converter {
	if layout == "" {
		layout = DefaultLayout
	}
	return &Converter{
		layout: layout,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the converter clock for deterministic testing.
func (c *Converter) WithClock(clock func() time.Time) *Converter {
	if clock != nil {
		c.now = clock
	}
	return c
}

// ToEpochSeconds parses date in the configured layout and returns the
// instant as a decimal seconds-since-epoch string.
func (c *Converter) ToEpochSeconds(date string) (string, error) {
	t, err := time.Parse(c.layout, date)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, date)
	}
	return strconv.FormatInt(t.UTC().Unix(), 10), nil
}

// Now captures the current wall-clock time in the same representation
// ToEpochSeconds produces.
func (c *Converter) Now() string {
	return strconv.FormatInt(c.now().Unix(), 10)
}
