package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/macdbot/broker"
	"github.com/rustyeddy/macdbot/broker/paper"
	"github.com/rustyeddy/macdbot/compliance"
	"github.com/rustyeddy/macdbot/config"
	"github.com/rustyeddy/macdbot/journal"
	"github.com/rustyeddy/macdbot/position"
)

// crossoverPrices produces a bullish crossover exactly at 50.0 (cycle 6)
// and a bearish crossover exactly at 52.0 (cycle 9) with 2/3/2 periods:
// the opening decline of 0.9 per step pins the MACD line at -0.45, the
// jump above 49.5 flips it over the signal line, and the drop from 54
// back to 52 flips it under again.
var crossoverPrices = []float64{54, 53.1, 52.2, 51.3, 50.4, 50, 53, 54, 52}

// scriptFeed plays back a fixed price series, mirroring each quote into
// the paper broker so fills match what the engine observed. A negative
// price simulates a market-data outage for that cycle.
type scriptFeed struct {
	broker *paper.Broker
	prices []float64
	i      int
}

func (f *scriptFeed) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	if f.i >= len(f.prices) {
		return 0, broker.ErrUnavailable
	}
	p := f.prices[f.i]
	f.i++
	if p < 0 {
		return 0, broker.ErrUnavailable
	}
	f.broker.SetPrice(symbol, p)
	return p, nil
}

type memJournal struct {
	records []journal.TransactionRecord
}

func (m *memJournal) Append(r journal.TransactionRecord) error {
	m.records = append(m.records, r)
	return nil
}

func (m *memJournal) LoadAll() ([]journal.TransactionRecord, error) {
	out := make([]journal.TransactionRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *memJournal) Close() error { return nil }

// 2025-03-04 is a Tuesday; each cycle advances five minutes.
func testClock() func() time.Time {
	base := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	i := 0
	return func() time.Time {
		t := base.Add(time.Duration(i) * 5 * time.Minute)
		i++
		return t
	}
}

func testConfig(targetPct, stopPct float64) *config.Config {
	cfg := config.Default()
	cfg.Trading.Symbol = "TQQQ"
	cfg.Trading.CapitalLimit = 50
	cfg.Trading.ProfitTargetPct = targetPct
	cfg.Trading.StopLossPct = stopPct
	cfg.Indicator.FastPeriod = 2
	cfg.Indicator.SlowPeriod = 3
	cfg.Indicator.SignalPeriod = 2
	return cfg
}

type rig struct {
	orch *Orchestrator
	pb   *paper.Broker
	jnl  *memJournal
}

func newRig(t *testing.T, cfg *config.Config, cash float64, prices []float64) *rig {
	t.Helper()
	pb := paper.New(cash)
	jnl := &memJournal{}
	orch := New(cfg, Collaborators{
		Data:    &scriptFeed{broker: pb, prices: prices},
		Account: pb,
		Orders:  pb,
		Journal: jnl,
	}, nil)
	orch.SetClock(testClock())
	return &rig{orch: orch, pb: pb, jnl: jnl}
}

func (r *rig) runCycles(t *testing.T, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		require.NoError(t, r.orch.Cycle(ctx))
	}
}

func TestRoundTrip(t *testing.T) {
	// Wide exits so only crossovers drive the trade.
	r := newRig(t, testConfig(1000, -1000), 100, crossoverPrices)
	r.runCycles(t, len(crossoverPrices))

	require.Len(t, r.jnl.records, 2)

	buy := r.jnl.records[0]
	assert.Equal(t, position.Buy, buy.Type)
	assert.Equal(t, 1, buy.Quantity)
	assert.Equal(t, 50.0, buy.Price)
	assert.NotEmpty(t, buy.OrderID)

	sell := r.jnl.records[1]
	assert.Equal(t, position.Sell, sell.Type)
	assert.Equal(t, 1, sell.Quantity)
	assert.Equal(t, 52.0, sell.Price)
	require.NotNil(t, sell.ProfitLoss)
	assert.InDelta(t, 2.0, *sell.ProfitLoss, 1e-9)
	require.NotNil(t, sell.ProfitLossPct)
	assert.InDelta(t, 4.0, *sell.ProfitLossPct, 1e-9)

	assert.True(t, r.orch.Position().State == position.StateFlat)
	// Open and close happened the same day, so one day trade is on the books.
	assert.Len(t, r.orch.DayTrades(), 1)
}

func TestProfitTargetExit(t *testing.T) {
	r := newRig(t, testConfig(1.0, -0.5), 100, crossoverPrices)
	r.runCycles(t, len(crossoverPrices))

	require.Len(t, r.jnl.records, 2)
	assert.Equal(t, 50.0, r.jnl.records[0].Price)
	// The cycle after the buy quotes 53: +6% trips the 1% target before
	// any bearish crossover can fire.
	assert.Equal(t, 53.0, r.jnl.records[1].Price)
}

func TestStopLossExit(t *testing.T) {
	prices := []float64{54, 53.1, 52.2, 51.3, 50.4, 50, 49.7}
	r := newRig(t, testConfig(1.0, -0.5), 100, prices)
	r.runCycles(t, len(prices))

	require.Len(t, r.jnl.records, 2)
	assert.Equal(t, 50.0, r.jnl.records[0].Price)
	// 49.7 is -0.6% from entry, through the -0.5% stop.
	assert.Equal(t, 49.7, r.jnl.records[1].Price)
	require.NotNil(t, r.jnl.records[1].ProfitLoss)
	assert.Less(t, *r.jnl.records[1].ProfitLoss, 0.0)
}

func TestInsufficientFundsDiscardsSignal(t *testing.T) {
	// 30 in cash cannot afford one share at 50; the signal is discarded
	// and no retry happens without a fresh crossover.
	prices := []float64{54, 53.1, 52.2, 51.3, 50.4, 50, 50.2, 50.4, 50.6}
	r := newRig(t, testConfig(1000, -1000), 30, prices)
	r.runCycles(t, len(prices))

	assert.Empty(t, r.jnl.records)
	assert.Equal(t, position.StateFlat, r.orch.Position().State)
}

func TestComplianceSuppressesOpen(t *testing.T) {
	r := newRig(t, testConfig(1000, -1000), 100, crossoverPrices)

	// Budget already exhausted this week: Mon plus two the prior Friday.
	mon := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	fri := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	r.orch.tracker.Restore([]compliance.DayTradeRecord{
		{Symbol: "TQQQ", TradeDate: fri, BuyTime: fri.Add(10 * time.Hour), SellTime: fri.Add(14 * time.Hour), Quantity: 1},
		{Symbol: "TQQQ", TradeDate: fri, BuyTime: fri.Add(15 * time.Hour), SellTime: fri.Add(16 * time.Hour), Quantity: 1},
		{Symbol: "TQQQ", TradeDate: mon, BuyTime: mon.Add(10 * time.Hour), SellTime: mon.Add(14 * time.Hour), Quantity: 1},
	})

	r.runCycles(t, len(crossoverPrices))

	assert.Empty(t, r.jnl.records)
	assert.Equal(t, position.StateFlat, r.orch.Position().State)
}

func TestRejectedOrderLeavesStateUntouched(t *testing.T) {
	r := newRig(t, testConfig(1000, -1000), 100, crossoverPrices)
	r.pb.RejectNext("pattern day trade check failed upstream")

	r.runCycles(t, len(crossoverPrices))

	// The buy at 50 was refused; with no position the later bearish
	// crossover has nothing to close.
	assert.Empty(t, r.jnl.records)
	assert.Equal(t, position.StateFlat, r.orch.Position().State)
	assert.Empty(t, r.orch.DayTrades())
}

func TestDataOutageSkipsCycleWithoutMutation(t *testing.T) {
	// Two outages spliced into the series must not perturb the indicator:
	// the engine behaves exactly as if the outage cycles never happened.
	prices := []float64{54, -1, 53.1, 52.2, 51.3, -1, 50.4, 50}
	r := newRig(t, testConfig(1000, -1000), 100, prices)
	r.runCycles(t, len(prices))

	require.Len(t, r.jnl.records, 1)
	assert.Equal(t, position.Buy, r.jnl.records[0].Type)
	assert.Equal(t, 50.0, r.jnl.records[0].Price)
	assert.Equal(t, position.StateOpen, r.orch.Position().State)
}

func TestDeterministicReplay(t *testing.T) {
	run := func() ([]journal.TransactionRecord, position.Position, int) {
		r := newRig(t, testConfig(1000, -1000), 100, crossoverPrices)
		r.runCycles(t, len(crossoverPrices))
		return r.jnl.records, r.orch.Position(), len(r.orch.DayTrades())
	}

	recA, posA, dtA := run()
	recB, posB, dtB := run()

	require.Len(t, recB, len(recA))
	for i := range recA {
		assert.Equal(t, recA[i].Type, recB[i].Type)
		assert.Equal(t, recA[i].Quantity, recB[i].Quantity)
		assert.Equal(t, recA[i].Price, recB[i].Price)
		assert.Equal(t, recA[i].Time, recB[i].Time)
	}
	assert.Equal(t, posA, posB)
	assert.Equal(t, dtA, dtB)
}

func TestResetClearsEngineState(t *testing.T) {
	r := newRig(t, testConfig(1000, -1000), 100, crossoverPrices)
	r.runCycles(t, len(crossoverPrices))
	require.Len(t, r.jnl.records, 2)

	r.orch.Reset()
	assert.Equal(t, position.StateFlat, r.orch.Position().State)
	assert.Empty(t, r.orch.DayTrades())
}

func TestRecoverRestoresOpenPosition(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(1.0, -1000)

	pb := paper.New(100)
	jnl := &memJournal{}

	// Yesterday's buy, executed and journaled before a restart.
	pb.SetPrice("TQQQ", 50)
	_, err := pb.Submit(ctx, position.Buy, "TQQQ", 1)
	require.NoError(t, err)
	yesterday := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	require.NoError(t, jnl.Append(journal.TransactionRecord{
		ID: "01X", Type: position.Buy, Symbol: "TQQQ",
		Quantity: 1, Price: 50, Total: 50, Time: yesterday, OrderID: "o1",
	}))

	prices := []float64{52}
	orch := New(cfg, Collaborators{
		Data:    &scriptFeed{broker: pb, prices: prices},
		Account: pb,
		Orders:  pb,
		Journal: jnl,
	}, nil)
	orch.SetClock(testClock())

	require.NoError(t, orch.Recover(ctx))
	require.Equal(t, position.StateOpen, orch.Position().State)
	assert.Equal(t, 50.0, orch.Position().EntryPrice)

	// First post-restart cycle: +4% trips the target immediately; the
	// position was opened yesterday so no day trade is recorded and the
	// close cannot be blocked.
	require.NoError(t, orch.Cycle(ctx))
	records, _ := jnl.LoadAll()
	require.Len(t, records, 2)
	assert.Equal(t, position.Sell, records[1].Type)
	assert.InDelta(t, 4.0, *records[1].ProfitLossPct, 1e-9)
	assert.Empty(t, orch.DayTrades())
}

func TestRecoverReconcilesAgainstBroker(t *testing.T) {
	ctx := context.Background()

	pb := paper.New(100) // no holdings at the broker
	jnl := &memJournal{}
	require.NoError(t, jnl.Append(journal.TransactionRecord{
		ID: "01Y", Type: position.Buy, Symbol: "TQQQ",
		Quantity: 2, Price: 50, Total: 100,
		Time: time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC), OrderID: "o1",
	}))

	orch := New(testConfig(1.0, -0.5), Collaborators{
		Data:    &scriptFeed{broker: pb},
		Account: pb,
		Orders:  pb,
		Journal: jnl,
	}, nil)

	require.NoError(t, orch.Recover(ctx))
	// The journal claims an open position the brokerage does not hold;
	// the engine starts flat rather than selling phantom shares.
	assert.Equal(t, position.StateFlat, orch.Position().State)
}

type panicFeed struct{ calls int }

func (f *panicFeed) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	f.calls++
	if f.calls == 1 {
		panic("exploded mid-cycle")
	}
	return 0, broker.ErrUnavailable
}

func TestCyclePanicIsRecovered(t *testing.T) {
	pb := paper.New(100)
	orch := New(testConfig(1.0, -0.5), Collaborators{
		Data:    &panicFeed{},
		Account: pb,
		Orders:  pb,
		Journal: &memJournal{},
	}, nil)

	err := orch.Cycle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle panic")

	// The loop survives: the next cycle runs normally.
	assert.NoError(t, orch.Cycle(context.Background()))
}
