package models

import "time"

// WindowID identifies a fixed trailing query window.
type WindowID string

const (
	WindowYTD WindowID = "ytd"
	Window1M  WindowID = "1m"
	Window3M  WindowID = "3m"
	Window6M  WindowID = "6m"
	Window1Y  WindowID = "1y"
	Window2Y  WindowID = "2y"
	Window5Y  WindowID = "5y"
)

// AllWindows lists every supported window, in ascending length order.
var AllWindows = []WindowID{WindowYTD, Window1M, Window3M, Window6M, Window1Y, Window2Y, Window5Y}

// Boundary returns the window's inclusive start date relative to now.
// YTD starts at January 1 of now's year; the others subtract calendar
// months/years.
func (w WindowID) Boundary(now time.Time) time.Time {
	switch w {
	case WindowYTD:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	case Window1M:
		return now.AddDate(0, -1, 0)
	case Window3M:
		return now.AddDate(0, -3, 0)
	case Window6M:
		return now.AddDate(0, -6, 0)
	case Window1Y:
		return now.AddDate(-1, 0, 0)
	case Window2Y:
		return now.AddDate(-2, 0, 0)
	case Window5Y:
		return now.AddDate(-5, 0, 0)
	}
	return now
}

// TrailingWindowResult is the answer to one trailing-window return query.
// Ephemeral: computed on demand, never persisted as the source of truth.
type TrailingWindowResult struct {
	WindowID WindowID `json:"window_id"`
	// Found reports whether any records contributed. A window whose boundary
	// falls inside a consolidated period with no daily breakdown is reported
	// as not found rather than silently approximated.
	Found                 bool    `json:"found"`
	DocsCount             int     `json:"docs_count"`
	TimeWeightedReturnPct float64 `json:"time_weighted_return_pct"`
	PersonalReturnPct     float64 `json:"personal_return_pct"`
}
