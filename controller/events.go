package controller

import "strconv"

// EventKind identifies a controller notification.
type EventKind int

const (
	EventJump EventKind = iota + 1
	EventHurt
	EventCrouchChanged
	EventGroundedChanged
	EventSlopeChanged
	EventClimbChanged
	EventMove
	EventClimb
)

var eventNames = map[EventKind]string{
	EventJump:            "jump",
	EventHurt:            "hurt",
	EventCrouchChanged:   "crouch_changed",
	EventGroundedChanged: "grounded_changed",
	EventSlopeChanged:    "slope_changed",
	EventClimbChanged:    "climb_changed",
	EventMove:            "move",
	EventClimb:           "climb",
}

// EventKinds lists every kind in declaration order.
func EventKinds() []EventKind {
	return []EventKind{
		EventJump,
		EventHurt,
		EventCrouchChanged,
		EventGroundedChanged,
		EventSlopeChanged,
		EventClimbChanged,
		EventMove,
		EventClimb,
	}
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "event(" + strconv.Itoa(int(k)) + ")"
}

// ParseEventKind maps a name produced by String back to its kind.
func ParseEventKind(name string) (EventKind, bool) {
	for kind, n := range eventNames {
		if n == name {
			return kind, true
		}
	}
	return 0, false
}

// Event is the payload handed to listeners. Flag carries the new value of
// the *Changed kinds; Value carries the input of Move and Climb.
type Event struct {
	Kind  EventKind
	Flag  bool
	Value float64
}

type Listener func(Event)

// ListenerID is returned by Subscribe. The zero value never names a listener.
type ListenerID uint64

type listenerEntry struct {
	id ListenerID
	fn Listener
}

// Listeners maps event kinds to ordered callback lists. Callbacks run
// synchronously in subscription order. Subscribing or unsubscribing from
// inside a callback is not supported.
type Listeners struct {
	nextID ListenerID
	byKind map[EventKind][]listenerEntry
}

func (l *Listeners) Subscribe(kind EventKind, fn Listener) ListenerID {
	if l == nil || fn == nil {
		return 0
	}
	if l.byKind == nil {
		l.byKind = make(map[EventKind][]listenerEntry)
	}
	l.nextID++
	l.byKind[kind] = append(l.byKind[kind], listenerEntry{id: l.nextID, fn: fn})
	return l.nextID
}

// Unsubscribe removes the listener with the given id. It reports whether a
// listener was removed.
func (l *Listeners) Unsubscribe(id ListenerID) bool {
	if l == nil || id == 0 {
		return false
	}
	for kind, entries := range l.byKind {
		for i, e := range entries {
			if e.id != id {
				continue
			}
			l.byKind[kind] = append(entries[:i:i], entries[i+1:]...)
			if len(l.byKind[kind]) == 0 {
				delete(l.byKind, kind)
			}
			return true
		}
	}
	return false
}

func (l *Listeners) Count(kind EventKind) int {
	if l == nil {
		return 0
	}
	return len(l.byKind[kind])
}

// Clear drops every listener.
func (l *Listeners) Clear() {
	if l == nil {
		return
	}
	l.byKind = nil
}

func (l *Listeners) emit(ev Event) {
	if l == nil {
		return
	}
	entries := l.byKind[ev.Kind]
	if len(entries) == 0 {
		return
	}
	for _, e := range entries {
		e.fn(ev)
	}
}
