package core

import (
	"sync"

	"github.com/google/uuid"
)

// Event codes. Application-defined codes should start beyond 255.
type EventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01

	// Window framebuffer resized or resolution changed from the OS.
	EVENT_CODE_RESIZED EventCode = 0x08

	// A model file finished importing and is ready for upload.
	EVENT_CODE_MODEL_IMPORTED EventCode = 0x09

	MAX_EVENT_CODE EventCode = 0xFF
)

// EventContext carries the payload of a fired event.
type EventContext struct {
	U32 [4]uint32
	I32 [4]int32
	F32 [4]float32
	Str string
}

// Handler returns true when the event is handled; a handled event is not
// passed on to any remaining listeners.
type Handler func(code EventCode, sender interface{}, data EventContext) bool

// Subscription identifies a single registration so it can be removed later.
type Subscription struct {
	code EventCode
	id   uuid.UUID
}

type registration struct {
	id      uuid.UUID
	handler Handler
}

// EventBus dispatches events to registered handlers. Every system that wants
// one receives it explicitly; there is no package-level instance.
type EventBus struct {
	mu         sync.RWMutex
	registered map[EventCode][]registration
}

func NewEventBus() *EventBus {
	return &EventBus{
		registered: make(map[EventCode][]registration),
	}
}

// Subscribe registers a handler for the given code and returns the handle
// needed to unsubscribe it.
func (b *EventBus) Subscribe(code EventCode, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New()
	b.registered[code] = append(b.registered[code], registration{id: id, handler: handler})
	return Subscription{code: code, id: id}
}

// Unsubscribe removes the registration behind the handle. Returns false when
// the handle does not match a live registration.
func (b *EventBus) Unsubscribe(sub Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	regs := b.registered[sub.code]
	for i, r := range regs {
		if r.id == sub.id {
			b.registered[sub.code] = append(regs[:i], regs[i+1:]...)
			return true
		}
	}
	return false
}

// Fire delivers the event to listeners in subscription order. Returns true
// as soon as one handler reports the event handled.
func (b *EventBus) Fire(code EventCode, sender interface{}, data EventContext) bool {
	b.mu.RLock()
	regs := make([]registration, len(b.registered[code]))
	copy(regs, b.registered[code])
	b.mu.RUnlock()

	for _, r := range regs {
		if r.handler(code, sender, data) {
			return true
		}
	}
	return false
}
