package bus

import (
	"testing"
	"time"

	"backtest-go/internal/event"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	if q.Len() != 0 {
		t.Fatalf("expected empty queue")
	}

	now := time.Now()
	q.Push(event.Market{Ts: now})
	q.Push(event.Signal{Symbol: "600000", Ts: now})
	q.Push(event.Fill{Symbol: "600000", Ts: now})

	if q.Len() != 3 {
		t.Fatalf("expected len 3, got %d", q.Len())
	}

	first, ok := q.Pop()
	if !ok {
		t.Fatalf("expected event")
	}
	if _, isMarket := first.(event.Market); !isMarket {
		t.Fatalf("expected market event first, got %T", first)
	}
	second, _ := q.Pop()
	if _, isSignal := second.(event.Signal); !isSignal {
		t.Fatalf("expected signal event second, got %T", second)
	}
	third, _ := q.Pop()
	if _, isFill := third.(event.Fill); !isFill {
		t.Fatalf("expected fill event third, got %T", third)
	}
	if _, ok := q.Pop(); ok {
		t.Fatalf("expected drained queue")
	}
}

func TestQueueReuseAfterDrain(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 100; i++ {
		q.Push(event.Market{})
	}
	for {
		if _, ok := q.Pop(); !ok {
			break
		}
	}
	q.Push(event.Market{})
	if q.Len() != 1 {
		t.Fatalf("expected len 1 after reuse, got %d", q.Len())
	}
	if _, ok := q.Pop(); !ok {
		t.Fatalf("expected event after reuse")
	}
}
