package core

import "testing"

func TestEventBusSubscribeAndFire(t *testing.T) {
	bus := NewEventBus()

	got := uint32(0)
	bus.Subscribe(EVENT_CODE_RESIZED, func(code EventCode, sender interface{}, data EventContext) bool {
		got = data.U32[0]
		return false
	})

	handled := bus.Fire(EVENT_CODE_RESIZED, nil, EventContext{U32: [4]uint32{800, 600}})
	if handled {
		t.Error("no handler reported the event handled, Fire should return false")
	}
	if got != 800 {
		t.Errorf("handler saw width %d, want 800", got)
	}
}

func TestEventBusHandledStopsPropagation(t *testing.T) {
	bus := NewEventBus()

	var order []string
	bus.Subscribe(EVENT_CODE_APPLICATION_QUIT, func(code EventCode, sender interface{}, data EventContext) bool {
		order = append(order, "first")
		return true
	})
	bus.Subscribe(EVENT_CODE_APPLICATION_QUIT, func(code EventCode, sender interface{}, data EventContext) bool {
		order = append(order, "second")
		return false
	})

	if !bus.Fire(EVENT_CODE_APPLICATION_QUIT, nil, EventContext{}) {
		t.Error("Fire should report handled when a handler returns true")
	}
	if len(order) != 1 || order[0] != "first" {
		t.Errorf("propagation did not stop at the handling listener: %v", order)
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	sub := bus.Subscribe(EVENT_CODE_RESIZED, func(code EventCode, sender interface{}, data EventContext) bool {
		calls++
		return false
	})

	bus.Fire(EVENT_CODE_RESIZED, nil, EventContext{})
	if !bus.Unsubscribe(sub) {
		t.Fatal("Unsubscribe failed for a live handle")
	}
	if bus.Unsubscribe(sub) {
		t.Error("second Unsubscribe with the same handle should fail")
	}

	bus.Fire(EVENT_CODE_RESIZED, nil, EventContext{})
	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
}

func TestEventBusFireWithoutListeners(t *testing.T) {
	bus := NewEventBus()
	if bus.Fire(MAX_EVENT_CODE, nil, EventContext{}) {
		t.Error("Fire with no listeners should return false")
	}
}
