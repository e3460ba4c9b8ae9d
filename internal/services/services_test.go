package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripdesk/internal/amqp"
	"tripdesk/internal/analytics"
	"tripdesk/internal/core"
	"tripdesk/internal/memory"
	"tripdesk/internal/ports"
)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []amqp.RecordChange
	err  error
}

func (p *recordingPublisher) PublishChange(_ context.Context, msg *amqp.RecordChange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, *msg)
	return p.err
}

func (p *recordingPublisher) last() amqp.RecordChange {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.msgs[len(p.msgs)-1]
}

var fixedNow = time.Date(2026, 5, 15, 10, 0, 0, 0, time.UTC)

func newManifest(t *testing.T) (*ManifestService, *memory.Store, *recordingPublisher) {
	t.Helper()
	store := memory.New()
	pub := &recordingPublisher{}
	svc := NewManifestService(store, "VRT", pub, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc, store, pub
}

func TestManifest_CreateNumbersAndDerives(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newManifest(t)

	first, err := svc.Create(ctx, core.Invoice{
		FullName:    "Budi Santoso",
		Destination: "Rinjani",
		Subtotal:    3500000,
		Discount:    200000,
		Total:       1, // ignored
	})
	require.NoError(t, err)
	assert.Equal(t, "VRT-2026-0001", first.InvoiceNo)
	assert.Equal(t, core.Rupiah(3300000), first.Total)
	assert.Equal(t, core.StatusUnpaid, first.Status)
	assert.Equal(t, core.Packets[0], first.Packet)
	assert.Equal(t, core.DefaultGender, first.Gender)
	assert.Equal(t, "15 Mei 2026", first.InvoiceDate)
	assert.NotEmpty(t, first.ID)

	second, err := svc.Create(ctx, core.Invoice{FullName: "Sari", Destination: "Semeru", Discount: 500000})
	require.NoError(t, err)
	assert.Equal(t, "VRT-2026-0002", second.InvoiceNo)
	assert.Equal(t, core.Rupiah(0), second.Total)

	next, err := svc.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "VRT-2026-0003", next)

	assert.Equal(t, amqp.RecordChange{
		Collection: ports.CollectionInvoices, ID: second.ID, Op: amqp.OpUpsert, Timestamp: pub.last().Timestamp,
	}, pub.last())
}

func TestManifest_CreateRejectsInvalid(t *testing.T) {
	svc, store, pub := newManifest(t)

	_, err := svc.Create(context.Background(), core.Invoice{Destination: "Rinjani"})
	assert.ErrorIs(t, err, core.ErrEmptyName)
	assert.True(t, core.IsValidationError(err))

	list, _ := store.ListInvoices(context.Background())
	assert.Empty(t, list)
	assert.Empty(t, pub.msgs)
}

func TestManifest_PublishFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	svc, store, pub := newManifest(t)
	pub.err = amqp.ErrCircuitOpen

	inv, err := svc.Create(ctx, core.Invoice{FullName: "Budi", Destination: "Rinjani"})
	require.NoError(t, err)
	_, err = store.GetInvoice(ctx, inv.ID)
	assert.NoError(t, err)
}

func TestManifest_NilPublisher(t *testing.T) {
	svc := NewManifestService(memory.New(), "", nil, nil)
	inv, err := svc.Create(context.Background(), core.Invoice{FullName: "Budi", Destination: "Rinjani"})
	require.NoError(t, err)
	assert.Contains(t, inv.InvoiceNo, core.DefaultInvoicePrefix+"-")
}

func TestManifest_UpdateKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newManifest(t)
	created, err := svc.Create(ctx, core.Invoice{FullName: "Budi", Destination: "Rinjani", Subtotal: 1000000})
	require.NoError(t, err)

	svc.now = func() time.Time { return fixedNow.Add(time.Hour) }
	updated, err := svc.Update(ctx, created.ID, core.Invoice{
		ID:          "forged",
		FullName:    "Budi S.",
		Destination: "Rinjani",
		Status:      core.StatusDepositPaid,
		Subtotal:    1000000,
		Discount:    100000,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.InvoiceNo, updated.InvoiceNo)
	assert.Equal(t, created.InvoiceDate, updated.InvoiceDate)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, fixedNow.Add(time.Hour), updated.UpdatedAt)
	assert.Equal(t, core.Rupiah(900000), updated.Total)

	paid, err := svc.SetStatus(ctx, created.ID, core.StatusFullyPaid)
	require.NoError(t, err)
	assert.Equal(t, core.StatusFullyPaid, paid.Status)
	assert.Equal(t, "Budi S.", paid.FullName)

	_, err = svc.Update(ctx, "missing", updated)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestManifest_DeletePublishes(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newManifest(t)
	inv, _ := svc.Create(ctx, core.Invoice{FullName: "Budi", Destination: "Rinjani"})

	require.NoError(t, svc.Delete(ctx, inv.ID))
	assert.Equal(t, amqp.OpDelete, pub.last().Op)
	assert.Equal(t, inv.ID, pub.last().ID)

	assert.ErrorIs(t, svc.Delete(ctx, inv.ID), core.ErrNotFound)
}

func TestManifest_ImportNumbersConsecutively(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newManifest(t)
	_, err := svc.Create(ctx, core.Invoice{FullName: "Existing", Destination: "Rinjani"})
	require.NoError(t, err)

	imported, err := svc.Import(ctx, []core.Invoice{
		{FullName: "A", Destination: "Semeru", TripDate: "1-3 Juni", Subtotal: 99},
		{FullName: "B", Destination: "Semeru", TripDate: "1-3 Juni", Status: core.StatusFullyPaid},
	})
	require.NoError(t, err)
	require.Len(t, imported, 2)
	assert.Equal(t, "VRT-2026-0002", imported[0].InvoiceNo)
	assert.Equal(t, "VRT-2026-0003", imported[1].InvoiceNo)
	for _, inv := range imported {
		assert.Equal(t, core.StatusUnpaid, inv.Status)
		assert.Equal(t, core.Rupiah(0), inv.Total)
		assert.Equal(t, "15 Mei 2026", inv.InvoiceDate)
	}
	assert.Equal(t, amqp.RecordChange{
		Collection: ports.CollectionInvoices, Op: amqp.OpUpsert, Timestamp: pub.last().Timestamp,
	}, pub.last())

	next, _ := svc.NextNumber(ctx)
	assert.Equal(t, "VRT-2026-0004", next)

	groups, err := svc.TripGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Semeru", groups[1].Destination)
	assert.Len(t, groups[1].Participants, 2)
}

func TestManifest_ImportIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newManifest(t)

	_, err := svc.Import(ctx, []core.Invoice{
		{FullName: "A", Destination: "Semeru"},
		{FullName: "", Destination: "Semeru"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrEmptyName)
	assert.Contains(t, err.Error(), "row 2")

	list, _ := store.ListInvoices(ctx)
	assert.Empty(t, list)

	out, err := svc.Import(ctx, nil)
	assert.NoError(t, err)
	assert.Nil(t, out)
}

func TestManifest_ConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newManifest(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, core.Invoice{FullName: "P", Destination: "Rinjani"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := svc.List(ctx, core.InvoiceFilter{})
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, inv := range list {
		assert.False(t, seen[inv.InvoiceNo], "duplicate %s", inv.InvoiceNo)
		seen[inv.InvoiceNo] = true
	}
	assert.Len(t, seen, 20)
}

func TestManifest_ListFiltersAndMonths(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newManifest(t)
	store.Seed([]core.Invoice{
		{ID: "1", InvoiceNo: "VRT-2026-0001", FullName: "Budi", Destination: "Rinjani", Status: core.StatusUnpaid, InvoiceDate: "3 April 2026"},
		{ID: "2", InvoiceNo: "VRT-2026-0002", FullName: "Sari", Destination: "Semeru", Status: core.StatusFullyPaid, InvoiceDate: "9 Mei 2026"},
	}, nil)

	list, err := svc.List(ctx, core.InvoiceFilter{Query: "semeru"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Sari", list[0].FullName)

	list, _ = svc.List(ctx, core.InvoiceFilter{Status: core.StatusUnpaid, Month: "April 2026"})
	require.Len(t, list, 1)
	assert.Equal(t, "Budi", list[0].FullName)

	months, err := svc.Months(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"April 2026", "Mei 2026"}, months)
}

func newLedger(t *testing.T) (*LedgerService, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	svc := NewLedgerService(memory.New(), pub, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc, pub
}

func TestLedger_CRUD(t *testing.T) {
	ctx := context.Background()
	svc, pub := newLedger(t)

	e, err := svc.Create(ctx, core.Expense{
		Title:    "  Sewa elf ",
		Category: core.CategoryTransport,
		Amount:   1500000,
		Date:     "2026-05-10",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sewa elf", e.Title)
	assert.Equal(t, fixedNow, e.CreatedAt)
	assert.Equal(t, ports.CollectionExpenses, pub.last().Collection)

	e.Amount = 1750000
	updated, err := svc.Update(ctx, e.ID, e)
	require.NoError(t, err)
	assert.Equal(t, core.Rupiah(1750000), updated.Amount)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, e.ID))
	assert.Equal(t, amqp.OpDelete, pub.last().Op)
	_, err = svc.Get(ctx, e.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestLedger_Validation(t *testing.T) {
	ctx := context.Background()
	svc, pub := newLedger(t)

	tests := []struct {
		name string
		in   core.Expense
		want error
	}{
		{"no title", core.Expense{Amount: 1, Date: "2026-05-01"}, core.ErrEmptyTitle},
		{"zero amount", core.Expense{Title: "x", Date: "2026-05-01"}, core.ErrInvalidAmount},
		{"bad category", core.Expense{Title: "x", Category: "Food", Amount: 1, Date: "2026-05-01"}, core.ErrInvalidCategory},
		{"bad date", core.Expense{Title: "x", Amount: 1, Date: "01/05/2026"}, core.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, pub.msgs)
}

func TestTotals(t *testing.T) {
	byCategory, total := Totals([]core.Expense{
		{Category: core.CategoryMarketing, Amount: 100},
		{Category: core.CategoryLogistics, Amount: 250},
		{Category: core.CategoryMarketing, Amount: 50},
	})
	assert.Equal(t, core.Rupiah(400), total)
	assert.Equal(t, []CategoryTotal{
		{Category: core.CategoryLogistics, Amount: 250},
		{Category: core.CategoryMarketing, Amount: 150},
	}, byCategory)

	byCategory, total = Totals(nil)
	assert.Empty(t, byCategory)
	assert.Zero(t, total)
}

func TestSettings_SaveValidatesAndPublishes(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewSettingsService(memory.New(), pub, nil)

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultSettings(), got)

	bad := got
	bad.BankName = " "
	_, err = svc.Save(ctx, bad)
	assert.ErrorIs(t, err, core.ErrEmptyBankDetails)
	assert.Empty(t, pub.msgs)

	got.BankName = "BRI"
	_, err = svc.Save(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, ports.CollectionSettings, pub.last().Collection)
	assert.Empty(t, pub.last().ID)

	saved, _ := svc.Get(ctx)
	assert.Equal(t, "BRI", saved.BankName)
}

type failingExpenses struct{ ports.ExpenseStore }

func (failingExpenses) ListExpenses(context.Context) ([]core.Expense, error) {
	return nil, errors.New("boom")
}

func TestDashboard_Summary(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Seed(
		[]core.Invoice{{ID: "1", Destination: "Rinjani", InvoiceDate: "14 Mei 2026", Total: 1000000, Status: core.StatusFullyPaid}},
		[]core.Expense{{ID: "1", Title: "Porter", Category: core.CategoryGuideFee, Amount: 400000, Date: "2026-05-14"}},
	)
	svc := NewDashboardService(store, store)
	svc.now = func() time.Time { return fixedNow }

	res, err := svc.Summary(ctx, "7d")
	require.NoError(t, err)
	assert.Equal(t, analytics.Range7d, res.Range)
	assert.Equal(t, core.Rupiah(1000000), res.TotalRevenue)
	assert.Equal(t, core.Rupiah(400000), res.TotalExpense)

	res, err = svc.Summary(ctx, "bogus")
	require.NoError(t, err)
	assert.Equal(t, analytics.DefaultRange, res.Range)

	_, err = NewDashboardService(store, failingExpenses{}).Summary(ctx, "7d")
	assert.ErrorContains(t, err, "list expenses")
}
