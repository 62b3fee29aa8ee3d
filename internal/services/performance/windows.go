package performance

import (
	"sort"
	"time"

	"github.com/foliotrack/folio/internal/models"
)

// chainUnit is one link in the factor chain: a consolidated year, a
// consolidated month, or a single daily record, normalized to a common
// shape. Granularity orders coarse before fine.
type chainUnit struct {
	start, end  time.Time // inclusive date range
	granularity int       // 0 = year, 1 = month, 2 = day
	factor      float64
	cashFlow    float64
	docs        int
	startValue  float64
	endValue    float64
}

// windowState walks one window through NOT_FOUND -> ACCUMULATING ->
// RESOLVED. A window that never accumulates, or whose boundary falls inside
// a consolidated period with no finer breakdown, stays NOT_FOUND.
type windowState struct {
	id       models.WindowID
	boundary time.Time

	factor       float64
	cashFlow     float64
	docs         int
	found        bool
	startValue   float64
	startSet     bool
	endValue     float64
	coveredUntil time.Time

	// straddleEnd is set when a consolidated period straddles the boundary:
	// the period cannot be included whole, and unless finer-grained units
	// inside [boundary, straddleEnd] resolve the overlap, the window must be
	// reported NOT_FOUND rather than silently approximated.
	straddleEnd      time.Time
	straddlePending  bool
	straddleResolved bool
}

// ResolveWindows answers the fixed trailing-window return queries for one
// reporting currency by chaining consolidated years, consolidated months,
// and still-open daily records in one chronological pass, coarse units
// first when starts coincide. No unit is counted twice: a finer unit inside
// an already-chained coarser one is skipped, while finer units that fill
// the tail of a boundary-straddling period chain before anything after
// them.
func ResolveWindows(years, months []models.ConsolidatedPeriodRecord, openDays []models.DailyPerformanceRecord, currency string, now time.Time) map[models.WindowID]models.TrailingWindowResult {
	units := buildChain(years, months, openDays, currency)

	states := make([]*windowState, 0, len(models.AllWindows))
	for _, id := range models.AllWindows {
		states = append(states, &windowState{id: id, boundary: id.Boundary(now), factor: 1})
	}

	for _, u := range units {
		if u.start.After(now) {
			continue
		}
		for _, w := range states {
			w.consume(u, now)
		}
	}

	results := make(map[models.WindowID]models.TrailingWindowResult, len(states))
	for _, w := range states {
		results[w.id] = w.result()
	}
	return results
}

// consume folds one chain unit into the window if it belongs.
func (w *windowState) consume(u chainUnit, now time.Time) {
	// Entirely before the window.
	if u.end.Before(w.boundary) {
		return
	}

	// The unit straddles the boundary: it must not be chained whole. The
	// finest straddling unit bounds the gap that finer records must fill.
	if u.start.Before(w.boundary) {
		if u.granularity < 2 && (!w.straddlePending || u.end.Before(w.straddleEnd)) {
			w.straddlePending = true
			w.straddleEnd = u.end
		}
		return
	}

	// Already inside a chained coarser unit. Units arrive in chronological
	// order, so anything starting at or before the watermark is contained.
	if !u.start.After(w.coveredUntil) && !w.coveredUntil.IsZero() {
		return
	}
	if u.end.After(now) {
		return
	}

	// A finer unit landing inside a straddled period's tail resolves the
	// partial overlap at the requested precision.
	if w.straddlePending && !u.end.After(w.straddleEnd) {
		w.straddleResolved = true
	}

	w.factor *= u.factor
	w.cashFlow += u.cashFlow
	w.docs += u.docs
	w.found = true
	if !w.startSet {
		w.startValue = u.startValue
		w.startSet = true
	}
	w.endValue = u.endValue
	if u.end.After(w.coveredUntil) {
		w.coveredUntil = u.end
	}
}

// result finalizes the window's state into a query result.
func (w *windowState) result() models.TrailingWindowResult {
	if !w.found || (w.straddlePending && !w.straddleResolved) {
		return models.TrailingWindowResult{WindowID: w.id}
	}
	return models.TrailingWindowResult{
		WindowID:              w.id,
		Found:                 true,
		DocsCount:             w.docs,
		TimeWeightedReturnPct: (w.factor - 1) * 100,
		PersonalReturnPct:     modifiedDietz(w.startValue, w.endValue, -w.cashFlow),
	}
}

// buildChain normalizes years, months, and daily records into one list of
// chain units sorted chronologically by start date, coarser granularity
// first when starts coincide. Chronological order is what lets a single
// covered-until watermark detect double counting: a unit dated before the
// watermark is genuinely contained in a chained coarser unit, never merely
// processed late.
func buildChain(years, months []models.ConsolidatedPeriodRecord, openDays []models.DailyPerformanceRecord, currency string) []chainUnit {
	var units []chainUnit

	appendPeriods := func(records []models.ConsolidatedPeriodRecord, granularity int) {
		for _, p := range records {
			cp, ok := p.PerCurrency[currency]
			if !ok {
				continue
			}
			units = append(units, chainUnit{
				start:       p.StartDate,
				end:         p.EndDate,
				granularity: granularity,
				factor:      p.Factor(currency),
				cashFlow:    cp.TotalCashFlow,
				docs:        p.DocsCount,
				startValue:  cp.StartTotalValue,
				endValue:    cp.EndTotalValue,
			})
		}
	}

	appendPeriods(years, 0)
	appendPeriods(months, 1)

	for _, d := range openDays {
		cd, ok := d.PerCurrency[currency]
		if !ok {
			continue
		}
		factor := 1 + cd.AdjustedDailyChangePct/100
		preChange := cd.TotalValue
		if factor > 0 {
			preChange = cd.TotalValue / factor
		}
		units = append(units, chainUnit{
			start:       d.Date,
			end:         d.Date,
			granularity: 2,
			factor:      factor,
			cashFlow:    cd.TotalCashFlow,
			docs:        1,
			startValue:  preChange,
			endValue:    cd.TotalValue,
		})
	}

	sort.SliceStable(units, func(i, j int) bool {
		if !units[i].start.Equal(units[j].start) {
			return units[i].start.Before(units[j].start)
		}
		return units[i].granularity < units[j].granularity
	})

	return units
}
