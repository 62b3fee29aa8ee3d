package performance

import "errors"

// Invariant violations. These indicate an upstream bug, not a data-quality
// issue, and surface to the caller instead of being clamped.
var (
	// ErrOpenPeriod is returned when consolidation is requested for a period
	// whose end date has not yet passed.
	ErrOpenPeriod = errors.New("cannot consolidate an open period")

	// ErrOversell is returned when a sell transaction exceeds the units held.
	ErrOversell = errors.New("sell exceeds units held")

	// ErrOutsidePeriod is returned when a daily record's date falls outside
	// the period being consolidated.
	ErrOutsidePeriod = errors.New("daily record outside period bounds")
)

// ErrNoData is returned by read operations when no daily records cover the
// requested account, currency, and range.
var ErrNoData = errors.New("no daily records")
