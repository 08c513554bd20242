// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"touchkit.org/io/pointer"
)

// Member is a participant in the contest for one pointer. The arena
// calls back exactly one of the two methods per contested pointer.
type Member interface {
	// AcceptGesture is called when the member wins the pointer.
	AcceptGesture(id pointer.ID)
	// RejectGesture is called when the member loses the pointer.
	RejectGesture(id pointer.ID)
}

// Entry is a member's handle on a contest, used to vote.
type Entry struct {
	arena  *Arena
	id     pointer.ID
	member Member
}

// Accept votes to claim the pointer. If the contest is still open for
// new members the vote is remembered and applied when it closes,
// otherwise the contest resolves immediately.
func (e *Entry) Accept() {
	e.arena.resolveEntry(e.id, e.member, true)
}

// Reject withdraws the member from the contest.
func (e *Entry) Reject() {
	e.arena.resolveEntry(e.id, e.member, false)
}

// Arena resolves which recognizer, among the candidates tracking the
// same pointer, owns its gesture. Contests are independent per pointer
// id; each resolves to exactly one winner, or none if every member
// withdraws. An Arena is shared by reference between the competing
// recognizers and must not be copied.
type Arena struct {
	contests map[pointer.ID]*contest
}

type contest struct {
	members []Member
	// open is whether new members may still join, that is while the
	// press that opened the contest is being delivered.
	open bool
	held bool
	// pendingSweep records a sweep that arrived while the contest was
	// held.
	pendingSweep bool
	// eagerWinner is the first member that accepted while the contest
	// was still open.
	eagerWinner Member
}

// Add enters m into the contest for id, creating the contest if it does
// not exist. It must not be called after the contest closed.
func (a *Arena) Add(id pointer.ID, m Member) *Entry {
	if a.contests == nil {
		a.contests = make(map[pointer.ID]*contest)
	}
	c, ok := a.contests[id]
	if !ok {
		c = &contest{open: true}
		a.contests[id] = c
	}
	if !c.open {
		panic("gesture: arena member added after the contest closed")
	}
	c.members = append(c.members, m)
	return &Entry{arena: a, id: id, member: m}
}

// Close stops the contest for id from accepting new members and
// resolves it if it is already decidable.
func (a *Arena) Close(id pointer.ID) {
	c, ok := a.contests[id]
	if !ok {
		return
	}
	c.open = false
	a.tryResolve(id, c)
}

// Sweep forces the contest for id to a resolution: the first remaining
// member wins. Called when the pointer is released so that undecided
// gestures settle in member order.
func (a *Arena) Sweep(id pointer.ID) {
	c, ok := a.contests[id]
	if !ok {
		return
	}
	if c.held {
		c.pendingSweep = true
		return
	}
	delete(a.contests, id)
	if len(c.members) == 0 {
		return
	}
	c.members[0].AcceptGesture(id)
	for _, m := range c.members[1:] {
		m.RejectGesture(id)
	}
}

// Hold delays the sweep of id, keeping the contest undecided past the
// pointer's release. Used by recognizers that need to disambiguate
// after release, for example a double tap.
func (a *Arena) Hold(id pointer.ID) {
	if c, ok := a.contests[id]; ok {
		c.held = true
	}
}

// Release undoes Hold, performing any sweep that arrived in between.
func (a *Arena) Release(id pointer.ID) {
	c, ok := a.contests[id]
	if !ok {
		return
	}
	c.held = false
	if c.pendingSweep {
		a.Sweep(id)
	}
}

// Contested reports whether more than one member is still competing
// for id.
func (a *Arena) Contested(id pointer.ID) bool {
	c, ok := a.contests[id]
	return ok && len(c.members) > 1
}

func (a *Arena) resolveEntry(id pointer.ID, m Member, accept bool) {
	c, ok := a.contests[id]
	if !ok {
		// Already resolved.
		return
	}
	if accept {
		if c.open {
			if c.eagerWinner == nil {
				c.eagerWinner = m
			}
		} else {
			a.resolveInFavorOf(id, c, m)
		}
		return
	}
	if !c.remove(m) {
		return
	}
	m.RejectGesture(id)
	if !c.open {
		a.tryResolve(id, c)
	}
}

func (a *Arena) tryResolve(id pointer.ID, c *contest) {
	switch {
	case len(c.members) == 0:
		delete(a.contests, id)
	case len(c.members) == 1:
		delete(a.contests, id)
		c.members[0].AcceptGesture(id)
	case c.eagerWinner != nil && c.contains(c.eagerWinner):
		a.resolveInFavorOf(id, c, c.eagerWinner)
	}
}

func (a *Arena) resolveInFavorOf(id pointer.ID, c *contest, winner Member) {
	delete(a.contests, id)
	for _, m := range c.members {
		if m != winner {
			m.RejectGesture(id)
		}
	}
	winner.AcceptGesture(id)
}

func (c *contest) contains(m Member) bool {
	for _, mm := range c.members {
		if mm == m {
			return true
		}
	}
	return false
}

func (c *contest) remove(m Member) bool {
	for i, mm := range c.members {
		if mm == m {
			c.members = append(c.members[:i], c.members[i+1:]...)
			return true
		}
	}
	return false
}
