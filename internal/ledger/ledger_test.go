package ledger

import (
	"testing"
	"time"

	"backtest-go/internal/event"
)

func TestLedgerRecordSnapshot(t *testing.T) {
	l := NewLedger(4)
	now := time.Now()
	l.Record(event.Fill{Ts: now, Symbol: "600000", Quantity: 100, Direction: event.Buy, Price: 10})
	l.Record(event.Fill{Ts: now, Symbol: "600000", Quantity: 40, Direction: event.Sell, Price: 11})
	l.Record(event.Fill{Ts: now, Symbol: "601988", Quantity: 30, Direction: event.Buy, Price: 5})

	fills := l.Snapshot()
	if len(fills) != 3 {
		t.Fatalf("expected 3 fills, got %d", len(fills))
	}
	fills[0].Quantity = 9999
	if l.Snapshot()[0].Quantity == 9999 {
		t.Fatalf("snapshot must be a copy")
	}
}

func TestLedgerSignedQuantity(t *testing.T) {
	l := NewLedger(0)
	now := time.Now()
	l.Record(event.Fill{Ts: now, Symbol: "600000", Quantity: 100, Direction: event.Buy})
	l.Record(event.Fill{Ts: now, Symbol: "600000", Quantity: 40, Direction: event.Sell})
	l.Record(event.Fill{Ts: now, Symbol: "601988", Quantity: 30, Direction: event.Buy})

	if got := l.SignedQuantity("600000"); got != 60 {
		t.Fatalf("expected signed quantity 60, got %.2f", got)
	}
	if got := l.SignedQuantity("601988"); got != 30 {
		t.Fatalf("expected signed quantity 30, got %.2f", got)
	}
	if got := l.SignedQuantity("999999"); got != 0 {
		t.Fatalf("expected zero for unknown symbol, got %.2f", got)
	}
}

func TestLedgerReset(t *testing.T) {
	l := NewLedger(0)
	l.Record(event.Fill{Symbol: "600000", Quantity: 1, Direction: event.Buy})
	l.Reset()
	if len(l.Snapshot()) != 0 {
		t.Fatalf("expected empty ledger after reset")
	}
}
