// Package engine drives the polling decision cycle: fetch a price, feed
// the MACD, detect crossovers, consult compliance and risk, apply the
// position transition and hand the resulting intent to the executor.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rustyeddy/macdbot/broker"
	"github.com/rustyeddy/macdbot/compliance"
	"github.com/rustyeddy/macdbot/config"
	"github.com/rustyeddy/macdbot/indicators"
	"github.com/rustyeddy/macdbot/journal"
	"github.com/rustyeddy/macdbot/market"
	"github.com/rustyeddy/macdbot/pkg/id"
	"github.com/rustyeddy/macdbot/position"
	"github.com/rustyeddy/macdbot/risk"
)

// Collaborators bundles the external services the orchestrator calls.
// All calls are synchronous within a cycle.
type Collaborators struct {
	Data    broker.MarketData
	Account broker.AccountProvider
	Orders  broker.OrderExecutor
	Journal journal.Journal
}

// Orchestrator owns the per-cycle decision flow for one symbol. It is
// single-threaded: Run executes one cycle to completion before sleeping,
// and nothing mutates the indicator, book or tracker outside that loop.
type Orchestrator struct {
	symbol       string
	capitalLimit float64
	interval     time.Duration

	macd     *indicators.MACD
	detector CrossDetector
	riskMgr  *risk.Manager
	tracker  *compliance.Tracker
	book     *position.Book

	col Collaborators
	log *slog.Logger

	// now is injectable for deterministic tests.
	now func() time.Time
}

// New wires an orchestrator from configuration and collaborators.
func New(cfg *config.Config, col Collaborators, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		symbol:       cfg.Trading.Symbol,
		capitalLimit: cfg.Trading.CapitalLimit,
		interval:     cfg.Trading.PollInterval(),
		macd: indicators.NewMACD(
			cfg.Indicator.FastPeriod,
			cfg.Indicator.SlowPeriod,
			cfg.Indicator.SignalPeriod,
		),
		riskMgr: risk.NewManager(cfg.Trading.ProfitTargetPct, cfg.Trading.StopLossPct),
		tracker: compliance.NewTracker(cfg.Compliance.MaxDayTrades, cfg.Compliance.PDTTrackingDays),
		book:    position.NewBook(cfg.Trading.Symbol),
		col:     col,
		log:     logger.With(slog.String("symbol", cfg.Trading.Symbol)),
		now:     time.Now,
	}
}

// SetClock replaces the time source. Intended for tests and replays.
func (o *Orchestrator) SetClock(now func() time.Time) {
	o.now = now
}

// Position returns a copy of the current position.
func (o *Orchestrator) Position() position.Position {
	return o.book.Current()
}

// DayTrades returns a copy of the recorded day-trade history.
func (o *Orchestrator) DayTrades() []compliance.DayTradeRecord {
	return o.tracker.Records()
}

// Recover replays the journal and restores the open position and
// day-trade history, reconciling the position against the brokerage.
func (o *Orchestrator) Recover(ctx context.Context) error {
	records, err := o.col.Journal.LoadAll()
	if err != nil {
		return fmt.Errorf("load journal: %w", err)
	}

	st := journal.Replay(records)
	o.tracker.Restore(st.DayTrades)

	if st.OpenPosition == nil {
		o.log.Info("recovered flat state", slog.Int("transactions", len(records)))
		return nil
	}

	held, err := o.col.Account.PositionQuantity(ctx, o.symbol)
	if err != nil {
		return fmt.Errorf("reconcile position: %w", err)
	}
	if held < st.OpenPosition.Quantity {
		// Journal says open but the brokerage disagrees; trust the
		// brokerage and start flat rather than sell shares we don't hold.
		o.log.Warn("journal position not held at broker, starting flat",
			slog.Int("journal_qty", st.OpenPosition.Quantity),
			slog.Int("broker_qty", held))
		return nil
	}

	if err := o.book.Restore(*st.OpenPosition); err != nil {
		return err
	}
	o.log.Info("recovered open position",
		slog.Int("quantity", st.OpenPosition.Quantity),
		slog.Float64("entry_price", st.OpenPosition.EntryPrice),
		slog.Int("day_trades", len(st.DayTrades)))
	return nil
}

// Reset returns the engine to its pre-warm-up state: indicator, detector,
// book and tracker are cleared. The journal is untouched.
func (o *Orchestrator) Reset() {
	o.macd.Reset()
	o.detector.Reset()
	o.book = position.NewBook(o.symbol)
	o.tracker.Reset()
}

// Run polls until ctx is cancelled. Cancellation is observed only at the
// top of a cycle so an in-flight intent always completes.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.log.Info("engine started", slog.Duration("interval", o.interval))
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.log.Info("engine stopped")
			return nil
		default:
		}

		if err := o.Cycle(ctx); err != nil {
			o.log.Error("cycle failed", slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			o.log.Info("engine stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Cycle executes one decision pass: at most one intent is produced and
// all state mutation happens here, in price-arrival order. A panic
// anywhere in the cycle is recovered so an isolated failure cannot take
// the loop down.
func (o *Orchestrator) Cycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			metricCyclePanics.Inc()
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()

	price, err := o.col.Data.LatestPrice(ctx, o.symbol)
	if err != nil {
		metricCyclesSkipped.Inc()
		o.log.Warn("market data unavailable, skipping cycle", slog.Any("error", err))
		return nil
	}
	metricCycles.Inc()

	now := o.now()
	snap, ok := o.macd.Update(market.PricePoint{Time: now, Close: price})

	sig := SignalNone
	if ok {
		o.log.Debug("snapshot",
			slog.Float64("price", price),
			slog.Float64("macd", snap.Line),
			slog.Float64("signal", snap.Signal),
			slog.Float64("histogram", snap.Histogram))
		sig = o.detector.Observe(snap)
	}

	if !o.book.Flat() {
		// Exits first: target/stop needs only the price (so it works
		// even during indicator warm-up after a restart), takes
		// precedence over the crossover, and a close is never blocked
		// by compliance.
		if reason, hit := o.riskMgr.EvaluateExit(o.book.Current(), price); hit {
			return o.sell(ctx, now, price, string(reason))
		}
		if sig == SignalBearish {
			return o.sell(ctx, now, price, position.ReasonCrossover)
		}
		return nil
	}

	if sig == SignalBullish {
		return o.buy(ctx, now, price)
	}
	return nil
}

func (o *Orchestrator) buy(ctx context.Context, now time.Time, price float64) error {
	o.log.Info("bullish crossover detected", slog.Float64("price", price))

	funds, err := o.col.Account.BuyingPower(ctx)
	if err != nil {
		metricCyclesSkipped.Inc()
		o.log.Warn("buying power unavailable, skipping cycle", slog.Any("error", err))
		return nil
	}

	qty := risk.SizePosition(o.capitalLimit, funds, price)
	if qty < 1 {
		// Not an error: the signal is discarded and a fresh crossover is
		// required to re-attempt.
		o.log.Info("insufficient funds for one share, holding",
			slog.Float64("price", price),
			slog.Float64("buying_power", funds))
		return nil
	}

	// A position opened now could complete a same-day round trip, so the
	// open side is where the day-trade budget is enforced.
	if !o.tracker.CanOpenDayTrade(now) {
		metricComplianceBlocks.Inc()
		o.log.Info("day-trade budget exhausted, buy suppressed",
			slog.Int("trailing_count", o.tracker.TrailingCount(now)))
		return nil
	}

	intent := o.book.BuyIntent(qty, price)
	orderID, err := o.col.Orders.Submit(ctx, intent.Action, intent.Symbol, intent.Quantity)
	if err != nil {
		return o.submitFailed(intent, err)
	}

	if err := o.book.Open(qty, price, now); err != nil {
		return err
	}
	rec := journal.TransactionRecord{
		ID:       id.New(),
		Type:     position.Buy,
		Symbol:   intent.Symbol,
		Quantity: qty,
		Price:    price,
		Total:    float64(qty) * price,
		Time:     now,
		OrderID:  orderID,
	}
	if err := o.col.Journal.Append(rec); err != nil {
		return fmt.Errorf("journal buy: %w", err)
	}

	metricIntents.WithLabelValues(string(position.Buy)).Inc()
	o.log.Info("bought",
		slog.Int("quantity", qty),
		slog.Float64("price", price),
		slog.Float64("total", rec.Total),
		slog.String("order_id", orderID))
	return nil
}

func (o *Orchestrator) sell(ctx context.Context, now time.Time, price float64, reason string) error {
	intent := o.book.SellIntent(price, reason)
	o.log.Info("exit condition met",
		slog.String("reason", reason),
		slog.Float64("price", price))

	orderID, err := o.col.Orders.Submit(ctx, intent.Action, intent.Symbol, intent.Quantity)
	if err != nil {
		return o.submitFailed(intent, err)
	}

	closed, err := o.book.Close()
	if err != nil {
		return err
	}

	pl := (price - closed.EntryPrice) * float64(closed.Quantity)
	plPct := market.PercentChange(closed.EntryPrice, price)
	rec := journal.TransactionRecord{
		ID:            id.New(),
		Type:          position.Sell,
		Symbol:        intent.Symbol,
		Quantity:      closed.Quantity,
		Price:         price,
		Total:         float64(closed.Quantity) * price,
		Time:          now,
		OrderID:       orderID,
		ProfitLoss:    &pl,
		ProfitLossPct: &plPct,
	}
	if err := o.col.Journal.Append(rec); err != nil {
		return fmt.Errorf("journal sell: %w", err)
	}

	// Same-day round trips count against the budget once the sell has
	// actually executed.
	if o.tracker.RecordRoundTrip(o.symbol, closed.EntryTime, now, closed.Quantity) {
		o.log.Info("day trade recorded",
			slog.Int("trailing_count", o.tracker.TrailingCount(now)))
	}

	metricIntents.WithLabelValues(string(position.Sell)).Inc()
	o.log.Info("sold",
		slog.String("reason", reason),
		slog.Int("quantity", closed.Quantity),
		slog.Float64("price", price),
		slog.Float64("profit_loss", pl),
		slog.Float64("profit_loss_pct", plPct),
		slog.String("order_id", orderID))
	return nil
}

// submitFailed handles an executor refusal: no state transition was
// committed, so the engine simply waits for the next natural signal.
func (o *Orchestrator) submitFailed(intent position.TransactionIntent, err error) error {
	var rej *broker.RejectedError
	if errors.As(err, &rej) {
		metricRejected.Inc()
		o.log.Error("order rejected, state unchanged",
			slog.String("action", string(intent.Action)),
			slog.Int("quantity", intent.Quantity),
			slog.String("reason", rej.Reason))
		return nil
	}
	return fmt.Errorf("submit %s %d %s: %w", intent.Action, intent.Quantity, intent.Symbol, err)
}
