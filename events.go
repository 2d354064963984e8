package dogfight

import "github.com/akmonengine/dogfight/collision"

const (
	COLLISION_ENTER EventType = iota
	COLLISION_STAY
	COLLISION_EXIT
	ON_SUPPLY
)

// pairKey is directed: collision detection is not symmetric
type pairKey struct {
	source  int
	partner int
}

type EventType uint8

func (t EventType) String() string {
	switch t {
	case COLLISION_ENTER:
		return "collision_enter"
	case COLLISION_STAY:
		return "collision_stay"
	case COLLISION_EXIT:
		return "collision_exit"
	case ON_SUPPLY:
		return "supply"
	}
	return "unknown"
}

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Collision events carry collider indices.
// Source is the collider that detected Partner.
type CollisionEnterEvent struct {
	Source  int
	Partner int
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

type CollisionStayEvent struct {
	Source  int
	Partner int
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

type CollisionExitEvent struct {
	Source  int
	Partner int
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

// SupplyEvent is sent on ticks where buildings delivered ammunition
type SupplyEvent struct {
	Deliveries int
}

func (e SupplyEvent) Type() EventType { return ON_SUPPLY }

// EventListener - callback for events
type EventListener func(event Event)

// Events buffers the events of a tick and sends them to listeners at the end of Step
type Events struct {
	listeners map[EventType][]EventListener

	buffer []Event

	// pairs seen during the previous and current ticks, for Enter/Stay/Exit detection
	previousActivePairs map[pairKey]bool
	currentActivePairs  map[pairKey]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 256),
		previousActivePairs: make(map[pairKey]bool),
		currentActivePairs:  make(map[pairKey]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordCollisions reads the partner sets computed by the last collision update
func (e *Events) recordCollisions(colliders *collision.Store) {
	for source := range colliders.Len() {
		for partner := range colliders.Colliding(source).All() {
			e.currentActivePairs[pairKey{source: source, partner: partner}] = true
		}
	}
}

func (e *Events) emitSupply(deliveries int) {
	e.buffer = append(e.buffer, SupplyEvent{Deliveries: deliveries})
}

// processCollisionEvents compares current and previous pairs to detect Enter/Stay/Exit
func (e *Events) processCollisionEvents() {
	for pair := range e.currentActivePairs {
		if e.previousActivePairs[pair] {
			e.buffer = append(e.buffer, CollisionStayEvent{Source: pair.source, Partner: pair.partner})
		} else {
			e.buffer = append(e.buffer, CollisionEnterEvent{Source: pair.source, Partner: pair.partner})
		}
	}

	for pair := range e.previousActivePairs {
		if !e.currentActivePairs[pair] {
			e.buffer = append(e.buffer, CollisionExitEvent{Source: pair.source, Partner: pair.partner})
		}
	}

	// Swap for next frame and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processCollisionEvents()

	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}
