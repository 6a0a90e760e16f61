package orchestration

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/koscakluka/ema-avatar/core/events"
)

func TestEventBusDeliversInEmissionOrder(t *testing.T) {
	bus := newEventBus()

	var got []events.Kind
	bus.subscribe(func(event events.Event) { got = append(got, event.Kind()) })

	bus.emit(events.NewCaptureStarted())
	bus.emit(events.NewCaptureTranscriptUpdated("a"))
	bus.emit(events.NewCaptureStopped(events.CaptureStopReasonManual, "a"))

	want := []events.Kind{events.KindCaptureStarted, events.KindCaptureTranscriptUpdated, events.KindCaptureStopped}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestEventBusUnsubscribeIsIdempotent(t *testing.T) {
	bus := newEventBus()

	var calls atomic.Int32
	unsubscribe := bus.subscribe(func(events.Event) { calls.Add(1) })

	bus.emit(events.NewCaptureStarted())
	unsubscribe()
	unsubscribe()
	bus.emit(events.NewCaptureStarted())

	if calls.Load() != 1 {
		t.Fatalf("expected 1 delivery, got %d", calls.Load())
	}
}

func TestEventBusReentrantEmitIsQueuedAfterCurrentEvent(t *testing.T) {
	bus := newEventBus()

	var order []string
	bus.subscribe(func(event events.Event) {
		order = append(order, "first:"+string(event.Kind()))
		if event.Kind() == events.KindCaptureStarted {
			bus.emit(events.NewCaptureStopped(events.CaptureStopReasonManual, ""))
		}
	})
	bus.subscribe(func(event events.Event) {
		order = append(order, "second:"+string(event.Kind()))
	})

	done := make(chan struct{})
	go func() {
		bus.emit(events.NewCaptureStarted())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out: re-entrant emit deadlocked")
	}

	want := []string{
		"first:capture.started",
		"second:capture.started",
		"first:capture.stopped",
		"second:capture.stopped",
	}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestEventBusNeverDeliversConcurrently(t *testing.T) {
	bus := newEventBus()

	var inFlight, overlaps, delivered atomic.Int32
	bus.subscribe(func(events.Event) {
		if inFlight.Add(1) > 1 {
			overlaps.Add(1)
		}
		time.Sleep(time.Millisecond)
		delivered.Add(1)
		inFlight.Add(-1)
	})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 5 {
				bus.emit(events.NewCaptureStarted())
			}
		}()
	}
	wg.Wait()
	bus.drain()

	if overlaps.Load() != 0 {
		t.Fatalf("expected no concurrent deliveries, got %d", overlaps.Load())
	}
	if delivered.Load() != 40 {
		t.Fatalf("expected 40 deliveries, got %d", delivered.Load())
	}
}

func TestEventBusRecoversFromPanickingSubscriber(t *testing.T) {
	bus := newEventBus()

	var calls atomic.Int32
	bus.subscribe(func(events.Event) { panic("boom") })
	bus.subscribe(func(events.Event) { calls.Add(1) })

	bus.emit(events.NewCaptureStarted())
	bus.emit(events.NewCaptureStarted())

	if calls.Load() != 2 {
		t.Fatalf("expected both events delivered to the healthy subscriber, got %d", calls.Load())
	}
}
