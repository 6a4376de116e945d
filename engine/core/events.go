package core

import "sync"

// EventContext carries the payload of an event. Which fields are set
// depends on the event code.
type EventContext struct {
	// Name of the asset or object the event is about.
	Name string
	// Path of the file behind the asset, if any.
	Path string
}

// System internal event codes. Application should use codes beyond 255.
type EventCode uint16

const (
	// Shuts the application down on the next frame.
	EventCodeApplicationQuit EventCode = 0x01

	// An asset was registered for the first time.
	/* Context usage:
	 * name = asset name, path = file path or empty
	 */
	EventCodeAssetLoaded EventCode = 0x02

	// An asset was replaced by a newer version under the same name.
	/* Context usage:
	 * name = asset name, path = file path or empty
	 */
	EventCodeAssetReloaded EventCode = 0x03

	// An asset was unloaded.
	/* Context usage:
	 * name = asset name, path = file path or empty
	 */
	EventCodeAssetRemoved EventCode = 0x04

	MaxEventCode EventCode = 0xFF
)

/**
 * @brief A callback for an event. Returning true marks the event as handled
 * and stops it from reaching the listeners registered after this one.
 */
type FnOnEvent func(code EventCode, sender any, listener any, data EventContext) bool

type registeredEvent struct {
	listener any
	callback FnOnEvent
}

// EventBus dispatches events to listeners in registration order. It can be
// used from several goroutines; callbacks run on the goroutine that fires.
type EventBus struct {
	mutex      sync.RWMutex
	registered map[EventCode][]registeredEvent
}

func NewEventBus() *EventBus {
	return &EventBus{registered: make(map[EventCode][]registeredEvent)}
}

/**
 * @brief Register to listen for when events are sent with the provided code.
 * Events with duplicate listener/callback combos will not be registered
 * again and will cause this to return false.
 */
func (b *EventBus) Register(code EventCode, listener any, onEvent FnOnEvent) bool {
	if onEvent == nil {
		return false
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()
	for _, e := range b.registered[code] {
		if e.listener == listener {
			return false
		}
	}
	b.registered[code] = append(b.registered[code], registeredEvent{listener: listener, callback: onEvent})
	return true
}

// Unregister removes listener from code. It returns false if listener was
// not registered.
func (b *EventBus) Unregister(code EventCode, listener any) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	events := b.registered[code]
	for i, e := range events {
		if e.listener == listener {
			b.registered[code] = append(events[:i:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * @brief Fires an event to listeners of the given code. If an event handler
 * returns true, the event is considered handled and is not passed on to any
 * more listeners. Listeners may register or unregister from a callback.
 *
 * @return True if handled, otherwise false.
 */
func (b *EventBus) Fire(code EventCode, sender any, context EventContext) bool {
	b.mutex.RLock()
	events := b.registered[code]
	b.mutex.RUnlock()
	for _, e := range events {
		if e.callback(code, sender, e.listener, context) {
			return true
		}
	}
	return false
}

// Clear drops every listener.
func (b *EventBus) Clear() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	clear(b.registered)
}
