package analytics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripdesk/internal/core"
)

var refNow = time.Date(2026, time.May, 20, 14, 30, 0, 0, time.UTC)

func sampleInvoices() []core.Invoice {
	return []core.Invoice{
		{InvoiceNo: "VRT-2026-0001", InvoiceDate: "15 Mei 2026", Destination: "Rinjani - Sembalun", Status: core.StatusFullyPaid, Total: 3300000},
		{InvoiceNo: "VRT-2026-0002", InvoiceDate: "2 May 2026", Destination: "Semeru", Status: core.StatusUnpaid, Total: 1500000},
		{InvoiceNo: "VRT-2026-0003", InvoiceDate: "18 Mei 2026", Destination: "Rinjani - Torean", Status: core.StatusDepositPaid, Total: 2000000},
		{InvoiceNo: "VRT-2026-0004", InvoiceDate: "N/A", Destination: "", Status: core.StatusFullyPaid, Total: 1200000},
	}
}

func sampleExpenses() []core.Expense {
	return []core.Expense{
		{Title: "Sewa elf", Category: core.CategoryTransport, Amount: 1500000, Date: "2026-05-10"},
		{Title: "Porter", Category: core.CategoryGuideFee, Amount: 500000, Date: "2026-05-19"},
	}
}

func TestParseRange(t *testing.T) {
	cases := map[string]Range{
		"24h":  Range24h,
		"7D":   Range7d,
		" 30d": Range30d,
		"90d":  Range90d,
		"180d": Range180d,
		"1y":   Range1y,
		"365d": Range1y,
		"all":  RangeAll,
	}
	for in, want := range cases {
		got, ok := ParseRange(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseRange("2w")
	assert.False(t, ok)
}

func TestAggregateBucketCounts(t *testing.T) {
	cases := []struct {
		r           Range
		granularity Granularity
		count       int
	}{
		{Range24h, ByHour, 24},
		{Range7d, ByDay, 7},
		{Range30d, ByDay, 7},
		{Range90d, ByDay, 7},
		{Range180d, ByMonth, 7},
		{Range1y, ByMonth, 14},
	}
	for _, tc := range cases {
		t.Run(string(tc.r), func(t *testing.T) {
			res := Aggregate(sampleInvoices(), sampleExpenses(), tc.r, refNow)
			assert.Equal(t, tc.granularity, res.Granularity)
			assert.Len(t, res.Series, tc.count)
		})
	}
}

func TestAggregateUnknownRangeDefaults(t *testing.T) {
	res := Aggregate(nil, nil, Range("fortnight"), refNow)
	assert.Equal(t, DefaultRange, res.Range)
	assert.Len(t, res.Series, 7)
}

func TestAggregateSteppedWindowsReachWindowStart(t *testing.T) {
	cases := []struct {
		r     Range
		first string
		start string
	}{
		{Range30d, "20 Apr", "20 April 2026"},
		{Range90d, "19 Feb", "19 Februari 2026"},
	}
	for _, tc := range cases {
		t.Run(string(tc.r), func(t *testing.T) {
			invoices := []core.Invoice{{InvoiceDate: tc.start, Total: 250000}}
			res := Aggregate(invoices, nil, tc.r, refNow)
			require.NotEmpty(t, res.Series)
			assert.Equal(t, tc.first, res.Series[0].Label)
			assert.Equal(t, "20 Mei", res.Series[len(res.Series)-1].Label)
			assert.Equal(t, core.Rupiah(250000), res.Series[0].Income)
		})
	}

	// The day after the window start belongs to the next bucket.
	res := Aggregate([]core.Invoice{{InvoiceDate: "21 April 2026", Total: 1}}, nil, Range30d, refNow)
	assert.Zero(t, res.Series[0].Income)
	assert.Equal(t, core.Rupiah(1), res.Series[1].Income)
}

func TestAggregateHourSeriesIsEmpty(t *testing.T) {
	res := Aggregate(sampleInvoices(), sampleExpenses(), Range24h, refNow)
	require.Len(t, res.Series, 24)
	assert.Equal(t, "00:00", res.Series[0].Label)
	assert.Equal(t, "23:00", res.Series[23].Label)
	for _, p := range res.Series {
		assert.Zero(t, p.Income)
		assert.Zero(t, p.Expense)
	}
	assert.Equal(t, core.Rupiah(8000000), res.TotalRevenue)
}

func TestAggregateSevenDays(t *testing.T) {
	res := Aggregate(sampleInvoices(), sampleExpenses(), Range7d, refNow)
	require.Len(t, res.Series, 7)

	labels := make([]string, 0, len(res.Series))
	for _, p := range res.Series {
		labels = append(labels, p.Label)
	}
	assert.Equal(t, []string{"14 Mei", "15 Mei", "16 Mei", "17 Mei", "18 Mei", "19 Mei", "20 Mei"}, labels)

	assert.Equal(t, core.Rupiah(3300000), res.Series[1].Income)
	assert.Equal(t, core.Rupiah(2000000), res.Series[4].Income)
	// "N/A" degrades to now and lands in today's bucket.
	assert.Equal(t, core.Rupiah(1200000), res.Series[6].Income)
	assert.Equal(t, core.Rupiah(500000), res.Series[5].Expense)
}

func TestAggregateDayAssignmentOverflow(t *testing.T) {
	invoices := []core.Invoice{{InvoiceDate: "1 Agustus 2026", Total: 100}}
	res := Aggregate(invoices, nil, Range7d, refNow)
	assert.Equal(t, core.Rupiah(100), res.Series[len(res.Series)-1].Income)
}

func TestAggregateDayAssignmentBeforeWindow(t *testing.T) {
	invoices := []core.Invoice{{InvoiceDate: "1 Januari 2020", Total: 100}}
	res := Aggregate(invoices, nil, Range30d, refNow)
	assert.Equal(t, core.Rupiah(100), res.Series[0].Income)
}

func TestAggregateMonthDropsOutOfWindow(t *testing.T) {
	invoices := []core.Invoice{
		{InvoiceDate: "15 Mei 2026", Total: 100},
		{InvoiceDate: "3 March 2026", Total: 40},
		{InvoiceDate: "1 Januari 2020", Total: 7},
	}
	res := Aggregate(invoices, nil, Range180d, refNow)
	require.Len(t, res.Series, 7)
	assert.Equal(t, "Nov 25", res.Series[0].Label)
	assert.Equal(t, "Mei 26", res.Series[6].Label)
	assert.Equal(t, core.Rupiah(100), res.Series[6].Income)
	assert.Equal(t, core.Rupiah(40), res.Series[4].Income)

	var sum core.Rupiah
	for _, p := range res.Series {
		sum += p.Income
	}
	assert.Equal(t, core.Rupiah(140), sum)
	assert.Equal(t, core.Rupiah(147), res.TotalRevenue)
}

func TestAggregateAllTime(t *testing.T) {
	t.Run("no records", func(t *testing.T) {
		res := Aggregate(nil, nil, RangeAll, refNow)
		assert.Equal(t, ByDay, res.Granularity)
		// 30 days at step 3, both ends included.
		assert.Len(t, res.Series, 11)
	})

	t.Run("short span", func(t *testing.T) {
		expenses := []core.Expense{{Amount: 10, Date: "2026-05-17"}}
		res := Aggregate(nil, expenses, RangeAll, refNow)
		assert.Equal(t, ByDay, res.Granularity)
		// offsets 0..ceil(3.6 days) at step 1
		require.Len(t, res.Series, 5)
		assert.Equal(t, "16 Mei", res.Series[0].Label)
		assert.Equal(t, core.Rupiah(10), res.Series[1].Expense)
	})

	t.Run("long span switches to months", func(t *testing.T) {
		invoices := []core.Invoice{{InvoiceDate: "20 Mei 2024", Total: 5}}
		res := Aggregate(invoices, nil, RangeAll, refNow)
		assert.Equal(t, ByMonth, res.Granularity)
		require.Len(t, res.Series, 26)
		assert.Equal(t, "Apr 24", res.Series[0].Label)
		assert.Equal(t, core.Rupiah(5), res.Series[1].Income)
		assert.Equal(t, "Mei 26", res.Series[len(res.Series)-1].Label)
	})

	t.Run("future records", func(t *testing.T) {
		invoices := []core.Invoice{{InvoiceDate: "1 Desember 2026", Total: 5}}
		res := Aggregate(invoices, nil, RangeAll, refNow)
		require.Len(t, res.Series, 1)
		assert.Equal(t, core.Rupiah(5), res.Series[0].Income)
	})
}

func TestAggregateTotalsAndRatios(t *testing.T) {
	res := Aggregate(sampleInvoices(), sampleExpenses(), Range30d, refNow)
	assert.Equal(t, core.Rupiah(8000000), res.TotalRevenue)
	assert.Equal(t, core.Rupiah(2000000), res.TotalExpense)
	assert.Equal(t, core.Rupiah(6000000), res.NetProfit)
	assert.Equal(t, 4, res.ParticipantCount)
	assert.InDelta(t, 50.0, res.CollectionRate, 1e-9)
	assert.InDelta(t, 75.0, res.FinancialEfficiency, 1e-9)
	assert.InDelta(t, 1500000.0, res.YieldPerParticipant, 1e-9)
	assert.InDelta(t, 25.0, res.BurnRate, 1e-9)

	var income, expense core.Rupiah
	for _, p := range res.Series {
		income += p.Income
		expense += p.Expense
	}
	assert.Equal(t, res.TotalRevenue, income)
	assert.Equal(t, res.TotalExpense, expense)
}

func TestAggregateReferenceExamples(t *testing.T) {
	t.Run("single paid invoice over 30d", func(t *testing.T) {
		invoices := []core.Invoice{{InvoiceDate: "15 Mei 2026", Destination: "Rinjani", Status: core.StatusFullyPaid, Total: 3300000}}
		res := Aggregate(invoices, nil, Range30d, refNow)
		assert.Equal(t, core.Rupiah(3300000), res.TotalRevenue)
		assert.Equal(t, core.Rupiah(0), res.TotalExpense)
		assert.Equal(t, core.Rupiah(3300000), res.NetProfit)
		assert.Equal(t, 1, res.ParticipantCount)
		assert.InDelta(t, 100.0, res.CollectionRate, 1e-9)
		assert.InDelta(t, 100.0, res.FinancialEfficiency, 1e-9)
		assert.InDelta(t, 0.0, res.BurnRate, 1e-9)
		assert.InDelta(t, 3300000.0, res.YieldPerParticipant, 1e-9)
	})

	t.Run("destination ranking", func(t *testing.T) {
		invoices := []core.Invoice{{Destination: "Rinjani"}, {Destination: "Rinjani"}, {Destination: "Semeru"}}
		res := Aggregate(invoices, nil, Range30d, refNow)
		assert.Equal(t, []DestinationCount{{Name: "Rinjani", Count: 2}, {Name: "Semeru", Count: 1}}, res.DestinationRanking)
	})
}

func TestAggregateZeroDenominators(t *testing.T) {
	res := Aggregate(nil, sampleExpenses(), Range30d, refNow)
	assert.Zero(t, res.CollectionRate)
	assert.Zero(t, res.FinancialEfficiency)
	assert.Zero(t, res.YieldPerParticipant)
	assert.Zero(t, res.BurnRate)
	assert.Equal(t, core.Rupiah(-2000000), res.NetProfit)
	assert.Empty(t, res.DestinationRanking)
}

func TestRankDestinations(t *testing.T) {
	ranking := RankDestinations(append(sampleInvoices(), core.Invoice{Destination: "  Semeru - Ranu Pani"}))
	assert.Equal(t, []DestinationCount{
		{Name: "Rinjani", Count: 2},
		{Name: "Semeru", Count: 2},
		{Name: UnknownDestination, Count: 1},
	}, ranking)
}

func TestAggregateDeterministic(t *testing.T) {
	a := Aggregate(sampleInvoices(), sampleExpenses(), Range90d, refNow)
	b := Aggregate(sampleInvoices(), sampleExpenses(), Range90d, refNow)
	assert.Equal(t, a, b)

	reversed := sampleInvoices()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	c := Aggregate(reversed, sampleExpenses(), Range90d, refNow)
	assert.Equal(t, a.Series, c.Series)
}

func TestResultJSON(t *testing.T) {
	res := Aggregate(sampleInvoices(), nil, Range7d, refNow)
	raw, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{"totalRevenue", "totalExpense", "netProfit", "participantCount", "series", "destinationRanking", "collectionRate", "financialEfficiency", "yieldPerParticipant", "burnRate"} {
		assert.Contains(t, decoded, key)
	}
}
