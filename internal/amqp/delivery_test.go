package amqp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"cashbook/internal/core"
)

type settlement struct {
	ack, requeue bool
}

type recordingAcknowledger struct {
	settled []settlement
}

func (a *recordingAcknowledger) Ack(uint64, bool) error {
	a.settled = append(a.settled, settlement{ack: true})
	return nil
}

func (a *recordingAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.settled = append(a.settled, settlement{requeue: requeue})
	return nil
}

func (a *recordingAcknowledger) Reject(_ uint64, requeue bool) error {
	a.settled = append(a.settled, settlement{requeue: requeue})
	return nil
}

func testDelivery(t *testing.T, ack amqp091.Acknowledger) amqp091.Delivery {
	t.Helper()
	body, err := NewLedgerChangedMessage(core.Income, ActionAppend).ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	return amqp091.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: body}
}

func TestDeliver_BacksOffBeforeRequeue(t *testing.T) {
	ack := &recordingAcknowledger{}
	var waits []time.Duration
	wait := func(_ context.Context, d time.Duration) { waits = append(waits, d) }

	fail := errors.New("sheets unavailable")
	handler := func(context.Context, *LedgerChangedMessage) error { return fail }

	failures := 0
	for i := 0; i < 3; i++ {
		deliver(context.Background(), testDelivery(t, ack), handler, &failures, wait)
	}

	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	if len(waits) != len(want) {
		t.Fatalf("waits = %v, want %v", waits, want)
	}
	for i := range want {
		if waits[i] != want[i] {
			t.Errorf("wait %d = %v, want %v", i, waits[i], want[i])
		}
	}
	for i, s := range ack.settled {
		if s.ack || !s.requeue {
			t.Errorf("delivery %d settled as %+v, want requeue", i, s)
		}
	}
	if failures != 3 {
		t.Errorf("failures = %d, want 3", failures)
	}
}

func TestDeliver_SuccessResetsFailures(t *testing.T) {
	ack := &recordingAcknowledger{}
	wait := func(context.Context, time.Duration) { t.Error("successful delivery must not wait") }
	handler := func(context.Context, *LedgerChangedMessage) error { return nil }

	failures := 4
	deliver(context.Background(), testDelivery(t, ack), handler, &failures, wait)

	if failures != 0 {
		t.Errorf("failures = %d, want 0", failures)
	}
	if len(ack.settled) != 1 || !ack.settled[0].ack {
		t.Errorf("settled = %+v, want one ack", ack.settled)
	}
}

func TestDeliver_DropsUndecodableMessage(t *testing.T) {
	ack := &recordingAcknowledger{}
	called := false
	handler := func(context.Context, *LedgerChangedMessage) error { called = true; return nil }

	failures := 0
	d := amqp091.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte("{not json")}
	deliver(context.Background(), d, handler, &failures, func(context.Context, time.Duration) {})

	if called {
		t.Error("handler called for undecodable message")
	}
	if len(ack.settled) != 1 || ack.settled[0].ack || ack.settled[0].requeue {
		t.Errorf("settled = %+v, want one nack without requeue", ack.settled)
	}
}

func TestSleepContext_ReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	sleepContext(ctx, time.Minute)
	if time.Since(start) > time.Second {
		t.Error("sleepContext ignored cancellation")
	}
}
