package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// mockEventEmitter implements EventEmitter for tests.
type mockEventEmitter struct {
	mu      sync.Mutex
	events  []*Event
	emitErr error
	done    chan struct{}
}

func (m *mockEventEmitter) Emit(ctx context.Context, event *Event) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	if m.done != nil {
		m.done <- struct{}{}
	}
	return m.emitErr
}

func (m *mockEventEmitter) getEvents() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Event(nil), m.events...)
}

func TestEmitAsync_NilEmitterOrEvent(t *testing.T) {
	EmitAsync(nil, NewEvent(EventSleepCreated, 1, nil), nil)
	em := &mockEventEmitter{}
	EmitAsync(em, nil, nil)
	time.Sleep(10 * time.Millisecond)
	if n := len(em.getEvents()); n != 0 {
		t.Errorf("events = %d, want 0", n)
	}
}

func TestEmitAsync_Delivers(t *testing.T) {
	em := &mockEventEmitter{done: make(chan struct{}, 1), emitErr: errors.New("broker down")}
	EmitAsync(em, NewEvent(EventSleepCreated, 7, map[string]string{"id": "3"}), nil)
	select {
	case <-em.done:
	case <-time.After(time.Second):
		t.Fatal("event was not emitted")
	}
	events := em.getEvents()
	if len(events) != 1 || events[0].Type != EventSleepCreated || events[0].UserID != 7 {
		t.Errorf("events = %+v", events)
	}
}

func TestFanout(t *testing.T) {
	a := &mockEventEmitter{}
	b := &mockEventEmitter{emitErr: errors.New("b failed")}
	f := Fanout{a, nil, b}
	err := f.Emit(context.Background(), NewEvent(EventLoggedOut, 1, nil))
	if err == nil {
		t.Fatal("Fanout should report b's error")
	}
	if len(a.getEvents()) != 1 || len(b.getEvents()) != 1 {
		t.Error("every emitter should receive the event")
	}
	if err := f.Emit(context.Background(), nil); err != nil {
		t.Errorf("Fanout nil event: %v", err)
	}
}

func TestNewEvent(t *testing.T) {
	e := NewEvent(EventRefreshed, 5, nil)
	if e.Source != "api" || e.CreatedAt.IsZero() || e.CreatedAt.Location() != time.UTC {
		t.Errorf("NewEvent = %+v", e)
	}
}
