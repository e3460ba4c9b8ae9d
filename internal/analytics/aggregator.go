// Package analytics computes the dashboard figures: a time series of income
// and expense per bucket, aggregate totals, health ratios and the
// destination ranking.
//
// Aggregate is a pure function of its arguments. The reference instant is a
// parameter so results are reproducible.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"tripdesk/internal/core"
)

// Range selects the dashboard window.
type Range string

const (
	Range24h  Range = "24h"
	Range7d   Range = "7d"
	Range30d  Range = "30d"
	Range90d  Range = "90d"
	Range180d Range = "180d"
	Range1y   Range = "1y"
	RangeAll  Range = "all"
)

// DefaultRange is shown when the caller does not pick one.
const DefaultRange = Range30d

// Ranges lists the selectors in display order.
var Ranges = []Range{Range24h, Range7d, Range30d, Range90d, Range180d, Range1y, RangeAll}

// ParseRange accepts the selector tokens plus "365d" as an alias of "1y".
func ParseRange(s string) (Range, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "365d" {
		return Range1y, true
	}
	for _, r := range Ranges {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// Granularity of the series buckets.
type Granularity string

const (
	ByHour  Granularity = "hour"
	ByDay   Granularity = "day"
	ByMonth Granularity = "month"
)

// Point is one bucket of the series.
type Point struct {
	Label   string      `json:"label"`
	Income  core.Rupiah `json:"income"`
	Expense core.Rupiah `json:"expense"`
}

// DestinationCount is one entry of the destination ranking.
type DestinationCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Result is the full dashboard projection.
type Result struct {
	Range       Range       `json:"range"`
	Granularity Granularity `json:"granularity"`

	TotalRevenue     core.Rupiah `json:"totalRevenue"`
	TotalExpense     core.Rupiah `json:"totalExpense"`
	NetProfit        core.Rupiah `json:"netProfit"`
	ParticipantCount int         `json:"participantCount"`

	Series             []Point            `json:"series"`
	DestinationRanking []DestinationCount `json:"destinationRanking"`

	CollectionRate      float64 `json:"collectionRate"`
	FinancialEfficiency float64 `json:"financialEfficiency"`
	YieldPerParticipant float64 `json:"yieldPerParticipant"`
	BurnRate            float64 `json:"burnRate"`
}

// UnknownDestination labels invoices whose destination is blank.
const UnknownDestination = "Unknown"

// Aggregate computes the dashboard for the given collections and range.
// Unknown ranges are treated as DefaultRange. Totals and ratios always cover
// the full collections; only the series depends on the range.
func Aggregate(invoices []core.Invoice, expenses []core.Expense, r Range, now time.Time) Result {
	if parsed, ok := ParseRange(string(r)); ok {
		r = parsed
	} else {
		r = DefaultRange
	}

	invDates := make([]time.Time, len(invoices))
	for i, inv := range invoices {
		invDates[i] = ParseInvoiceDate(inv.InvoiceDate, now)
	}
	expDates := make([]time.Time, len(expenses))
	for i, e := range expenses {
		expDates[i] = ParseLedgerDate(e.Date, now)
	}

	w := planWindow(r, invDates, expDates, now)
	res := Result{Range: r, Granularity: w.granularity}

	s := newSeries(w, now)
	for i, inv := range invoices {
		s.addIncome(invDates[i], inv.Total)
	}
	for i, e := range expenses {
		s.addExpense(expDates[i], e.Amount)
	}
	res.Series = s.points

	paid := 0
	for _, inv := range invoices {
		res.TotalRevenue += inv.Total
		if inv.Status == core.StatusFullyPaid {
			paid++
		}
	}
	for _, e := range expenses {
		res.TotalExpense += e.Amount
	}
	res.NetProfit = res.TotalRevenue - res.TotalExpense
	res.ParticipantCount = len(invoices)

	res.CollectionRate = percent(float64(paid), float64(len(invoices)))
	res.FinancialEfficiency = percent(float64(res.NetProfit), float64(res.TotalRevenue))
	res.YieldPerParticipant = ratio(float64(res.NetProfit), float64(res.ParticipantCount))
	res.BurnRate = percent(float64(res.TotalExpense), float64(res.TotalRevenue))

	res.DestinationRanking = RankDestinations(invoices)
	return res
}

// RankDestinations counts invoices per destination, using the text before
// the first '-' as the destination name, most frequent first. Ties keep the
// order in which destinations were first seen.
func RankDestinations(invoices []core.Invoice) []DestinationCount {
	index := map[string]int{}
	out := []DestinationCount{}
	for _, inv := range invoices {
		name, _, _ := strings.Cut(inv.Destination, "-")
		name = strings.TrimSpace(name)
		if name == "" {
			name = UnknownDestination
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, DestinationCount{Name: name})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Count > out[b].Count })
	return out
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func percent(num, den float64) float64 {
	return 100 * ratio(num, den)
}

// window describes the bucket layout for one request.
type window struct {
	granularity Granularity
	days        int // trailing days covered
	step        int // day step between day buckets
	// inclusive adds the bucket at the window start (offset == days).
	inclusive bool
}

func planWindow(r Range, invDates, expDates []time.Time, now time.Time) window {
	switch r {
	case Range24h:
		return window{granularity: ByHour, days: 1, step: 1}
	case Range7d:
		return window{granularity: ByDay, days: 7, step: 1}
	case Range90d:
		return window{granularity: ByDay, days: 90, step: 15, inclusive: true}
	case Range180d:
		return window{granularity: ByMonth, days: 180}
	case Range1y:
		return window{granularity: ByMonth, days: 365}
	case RangeAll:
		days := 30
		if earliest, ok := earliestOf(invDates, expDates); ok {
			days = int(math.Ceil(now.Sub(earliest).Hours() / 24))
		}
		if days < 0 {
			days = 0
		}
		if days > 365 {
			return window{granularity: ByMonth, days: days}
		}
		step := days / 10
		if step < 1 {
			step = 1
		}
		return window{granularity: ByDay, days: days, step: step, inclusive: true}
	default:
		return window{granularity: ByDay, days: 30, step: 5, inclusive: true}
	}
}

func earliestOf(sets ...[]time.Time) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, set := range sets {
		for _, t := range set {
			if !found || t.Before(earliest) {
				earliest = t
				found = true
			}
		}
	}
	return earliest, found
}

// series holds the pre-populated buckets and assigns records to them.
type series struct {
	granularity Granularity
	points      []Point
	dayKeys     []string    // ISO dates, ascending, parallel to points
	monthIndex  map[int]int // year*12+month-1 -> point index
	loc         *time.Location
}

func newSeries(w window, now time.Time) *series {
	s := &series{granularity: w.granularity, loc: now.Location()}
	switch w.granularity {
	case ByHour:
		s.points = make([]Point, 24)
		for h := range s.points {
			s.points[h].Label = fmt.Sprintf("%02d:00", h)
		}
	case ByMonth:
		months := int(math.Ceil(float64(w.days) / 30))
		s.monthIndex = make(map[int]int, months+1)
		for i := months; i >= 0; i-- {
			first := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, s.loc)
			s.monthIndex[monthKey(first)] = len(s.points)
			s.points = append(s.points, Point{Label: core.FormatMonthYear(first)})
		}
	default:
		// Offsets are generated backward from today, then emitted oldest first.
		last := w.days - 1
		if w.inclusive {
			last = w.days
		}
		var offsets []int
		for off := 0; off <= last; off += w.step {
			offsets = append(offsets, off)
		}
		for i := len(offsets) - 1; i >= 0; i-- {
			day := time.Date(now.Year(), now.Month(), now.Day()-offsets[i], 0, 0, 0, 0, s.loc)
			s.dayKeys = append(s.dayKeys, day.Format(time.DateOnly))
			s.points = append(s.points, Point{Label: core.FormatDayMonth(day)})
		}
	}
	return s
}

func (s *series) addIncome(t time.Time, amount core.Rupiah) {
	if i, ok := s.bucketFor(t); ok {
		s.points[i].Income += amount
	}
}

func (s *series) addExpense(t time.Time, amount core.Rupiah) {
	if i, ok := s.bucketFor(t); ok {
		s.points[i].Expense += amount
	}
}

// bucketFor returns the bucket index for t. Hour buckets never receive
// records because invoices and expenses carry no time of day. Day records
// go to the first bucket on or after their date, else the last bucket.
// Month records need an exact month match.
func (s *series) bucketFor(t time.Time) (int, bool) {
	switch s.granularity {
	case ByHour:
		return 0, false
	case ByMonth:
		i, ok := s.monthIndex[monthKey(t.In(s.loc))]
		return i, ok
	default:
		if len(s.dayKeys) == 0 {
			return 0, false
		}
		key := t.In(s.loc).Format(time.DateOnly)
		i := sort.SearchStrings(s.dayKeys, key)
		if i == len(s.dayKeys) {
			i = len(s.dayKeys) - 1
		}
		return i, true
	}
}

func monthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}
