// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"touchkit.org/io/pointer"
)

// Recognizer is a candidate consumer of a pointer's event stream.
type Recognizer interface {
	Member
	// AddPointer offers the recognizer a Press or PanZoomStart. A
	// recognizer that wants the pointer starts tracking it, entering
	// the pointer's arena contest.
	AddPointer(ev pointer.Event)
}

// Hub distributes pointer events to the recognizers tracking each
// pointer and drives the arena lifecycle. The zero value is ready to
// use.
type Hub struct {
	arena  Arena
	routes map[pointer.ID][]route
}

type route struct {
	owner *tracker
	fn    func(pointer.Event)
}

// Arena returns the hub's arena.
func (h *Hub) Arena() *Arena {
	return &h.arena
}

// Offer delivers a Press or PanZoomStart to the candidate recognizers,
// typically the ones under the hit point, then dispatches the event.
// Which recognizers are candidates is decided by the caller's
// hit-testing layer.
func (h *Hub) Offer(ev pointer.Event, candidates ...Recognizer) {
	switch ev.Kind {
	case pointer.Press, pointer.PanZoomStart:
	default:
		panic("gesture: Offer requires a Press or PanZoomStart")
	}
	for _, r := range candidates {
		r.AddPointer(ev)
	}
	h.Dispatch(ev)
}

// Dispatch routes ev to the recognizers tracking its pointer, then
// advances the arena: the contest closes once the opening press has
// been delivered and is swept when the pointer goes up.
func (h *Hub) Dispatch(ev pointer.Event) {
	if rs := h.routes[ev.PointerID]; len(rs) > 0 {
		// Handlers may add or remove routes while the event is
		// delivered; dispatch to a snapshot and skip routes that are
		// gone by the time they are reached.
		snapshot := make([]route, len(rs))
		copy(snapshot, rs)
		for _, r := range snapshot {
			if !h.routed(ev.PointerID, r.owner) {
				continue
			}
			r.fn(ev)
		}
	}
	switch ev.Kind {
	case pointer.Press, pointer.PanZoomStart:
		h.arena.Close(ev.PointerID)
	case pointer.Release, pointer.PanZoomEnd:
		h.arena.Sweep(ev.PointerID)
	}
}

func (h *Hub) addRoute(id pointer.ID, owner *tracker, fn func(pointer.Event)) {
	if h.routes == nil {
		h.routes = make(map[pointer.ID][]route)
	}
	h.routes[id] = append(h.routes[id], route{owner: owner, fn: fn})
}

func (h *Hub) removeRoute(id pointer.ID, owner *tracker) {
	rs := h.routes[id]
	for i := range rs {
		if rs[i].owner == owner {
			rs = append(rs[:i], rs[i+1:]...)
			break
		}
	}
	if len(rs) == 0 {
		delete(h.routes, id)
	} else {
		h.routes[id] = rs
	}
}

func (h *Hub) routed(id pointer.ID, owner *tracker) bool {
	for _, r := range h.routes[id] {
		if r.owner == owner {
			return true
		}
	}
	return false
}

// tracker is the bookkeeping shared by recognizers: the set of tracked
// pointers and the arena entries held for them. The maps are owned
// exclusively by the embedding recognizer; their lifetime matches the
// recognizer instance.
type tracker struct {
	hub     *Hub
	entries map[pointer.ID]*Entry
	routes  map[pointer.ID]struct{}
}

// startTracking routes id's events to fn and enters m into the
// pointer's arena contest.
func (t *tracker) startTracking(m Member, id pointer.ID, fn func(pointer.Event)) {
	if _, ok := t.routes[id]; ok {
		panic("gesture: pointer already tracked")
	}
	if t.entries == nil {
		t.entries = make(map[pointer.ID]*Entry)
		t.routes = make(map[pointer.ID]struct{})
	}
	t.hub.addRoute(id, t, fn)
	t.routes[id] = struct{}{}
	t.entries[id] = t.hub.arena.Add(id, m)
}

// stopTracking stops routing id's events and reports whether it was the
// last tracked pointer.
func (t *tracker) stopTracking(id pointer.ID) (last bool) {
	if _, ok := t.routes[id]; !ok {
		return false
	}
	t.hub.removeRoute(id, t)
	delete(t.routes, id)
	return len(t.routes) == 0
}

// resolve votes on every entry still held.
func (t *tracker) resolve(accept bool) {
	ids := make([]pointer.ID, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	for _, id := range ids {
		t.resolvePointer(id, accept)
	}
}

// resolvePointer votes on the entry held for id, if any.
func (t *tracker) resolvePointer(id pointer.ID, accept bool) {
	e, ok := t.entries[id]
	if !ok {
		return
	}
	delete(t.entries, id)
	if accept {
		e.Accept()
	} else {
		e.Reject()
	}
}

// forgetEntry drops the entry for id without voting. Called from the
// arena callbacks, at which point the contest is already decided.
func (t *tracker) forgetEntry(id pointer.ID) {
	delete(t.entries, id)
}
