package rollup

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// quarterPeriods maps a quarter number to the registry's named period.
var quarterPeriods = map[int]string{
	1: "first_quarter",
	2: "second_quarter",
	3: "third_quarter",
	4: "fourth_quarter",
}

// LastNQuarters returns the n most recent "YYYY-Qn" labels in
// chronological order, ending with the current UTC quarter.
func LastNQuarters(n int) []string {
	out := make([]string, n)
	now := time.Now().UTC()
	y := now.Year()
	q := (int(now.Month())-1)/3 + 1
	for i := n - 1; i >= 0; i-- {
		out[i] = fmt.Sprintf("%d-Q%d", y, q)
		q--
		if q == 0 {
			q = 4
			y--
		}
	}
	return out
}

// QuarterFilters converts a "YYYY-Qn" label into the registry's
// filing_year and filing_period filter values.
func QuarterFilters(yq string) (year int, period string, err error) {
	parts := strings.SplitN(yq, "-Q", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("invalid quarter label %q", yq)
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", fmt.Errorf("invalid quarter label %q: %w", yq, err)
	}
	q, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, "", fmt.Errorf("invalid quarter label %q: %w", yq, err)
	}
	period, ok := quarterPeriods[q]
	if !ok {
		return 0, "", fmt.Errorf("invalid quarter number in %q", yq)
	}
	return year, period, nil
}

// QuarterAggregate is the outcome of summing reduced rows over a
// reporting window.
type QuarterAggregate struct {
	ByQuarter   map[string]float64
	Kept        int     // rows that fell inside the window
	WindowTotal float64 // sum over the window
	AllIncome   float64 // income-side total, all rows, window or not
	AllExpenses float64 // expense-side total, all rows, window or not
}

// AggregateQuarters sums each row's effective amount into its display
// quarter bucket when that quarter is in the window. Rows outside the
// window still feed the global side totals, which back a lifetime figure
// distinct from the windowed series.
func AggregateQuarters(rows []ReducedFiling, window []string) QuarterAggregate {
	agg := QuarterAggregate{ByQuarter: make(map[string]float64, len(window))}
	for _, q := range window {
		agg.ByQuarter[q] = 0
	}

	for i := range rows {
		amt := rows[i].EffectiveAmount
		switch rows[i].Attribution {
		case AttributionIncome:
			agg.AllIncome += amt
		case AttributionExpenses:
			agg.AllExpenses += amt
		}
		yq := rows[i].YearQuarter()
		if _, inWindow := agg.ByQuarter[yq]; inWindow {
			agg.ByQuarter[yq] += amt
			agg.Kept++
		}
	}

	for _, total := range agg.ByQuarter {
		agg.WindowTotal += total
	}
	return agg
}
