// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"testing"

	"touchkit.org/io/pointer"
)

type recordMember struct {
	accepted, rejected int
}

func (m *recordMember) AcceptGesture(pointer.ID) { m.accepted++ }
func (m *recordMember) RejectGesture(pointer.ID) { m.rejected++ }

func (m *recordMember) check(t *testing.T, name string, accepted, rejected int) {
	t.Helper()
	if m.accepted != accepted || m.rejected != rejected {
		t.Errorf("%s: accepted %d rejected %d, want %d and %d",
			name, m.accepted, m.rejected, accepted, rejected)
	}
}

func TestArenaSingleMemberWinsOnClose(t *testing.T) {
	var a Arena
	var m recordMember
	a.Add(1, &m)
	m.check(t, "before close", 0, 0)
	a.Close(1)
	m.check(t, "after close", 1, 0)
}

func TestArenaEagerAcceptResolvesAtClose(t *testing.T) {
	var a Arena
	var m1, m2 recordMember
	e1 := a.Add(1, &m1)
	a.Add(1, &m2)
	e1.Accept()
	m1.check(t, "while open", 0, 0)
	a.Close(1)
	m1.check(t, "winner", 1, 0)
	m2.check(t, "loser", 0, 1)
}

func TestArenaAcceptAfterClose(t *testing.T) {
	var a Arena
	var m1, m2 recordMember
	a.Add(1, &m1)
	e2 := a.Add(1, &m2)
	a.Close(1)
	m2.check(t, "undecided", 0, 0)
	e2.Accept()
	m1.check(t, "loser", 0, 1)
	m2.check(t, "winner", 1, 0)
}

func TestArenaRejectLeavesWinner(t *testing.T) {
	var a Arena
	var m1, m2 recordMember
	e1 := a.Add(1, &m1)
	a.Add(1, &m2)
	a.Close(1)
	e1.Reject()
	m1.check(t, "withdrawn", 0, 1)
	m2.check(t, "last member standing", 1, 0)
}

func TestArenaAllRejectNoWinner(t *testing.T) {
	var a Arena
	var m1, m2 recordMember
	e1 := a.Add(1, &m1)
	e2 := a.Add(1, &m2)
	e1.Reject()
	e2.Reject()
	a.Close(1)
	m1.check(t, "first", 0, 1)
	m2.check(t, "second", 0, 1)
	if a.Contested(1) {
		t.Error("contest still alive after resolution")
	}
	// Votes on a resolved contest are ignored.
	e1.Accept()
	m1.check(t, "stale vote", 0, 1)
}

func TestArenaSweepFirstMemberWins(t *testing.T) {
	var a Arena
	var m1, m2 recordMember
	a.Add(1, &m1)
	a.Add(1, &m2)
	a.Close(1)
	a.Sweep(1)
	m1.check(t, "first", 1, 0)
	m2.check(t, "second", 0, 1)
}

func TestArenaHoldDefersSweep(t *testing.T) {
	var a Arena
	var m1, m2 recordMember
	a.Add(1, &m1)
	e2 := a.Add(1, &m2)
	a.Close(1)
	a.Hold(1)
	a.Sweep(1)
	m1.check(t, "held through sweep", 0, 0)
	e2.Accept()
	m2.check(t, "late winner", 1, 0)
	m1.check(t, "late loser", 0, 1)
	// The pending sweep has nothing left to do.
	a.Release(1)
}

func TestArenaHoldReleasePerformsPendingSweep(t *testing.T) {
	var a Arena
	var m1, m2 recordMember
	a.Add(1, &m1)
	a.Add(1, &m2)
	a.Close(1)
	a.Hold(1)
	a.Sweep(1)
	a.Release(1)
	m1.check(t, "first", 1, 0)
	m2.check(t, "second", 0, 1)
}

func TestArenaIndependentContests(t *testing.T) {
	var a Arena
	var m1, m2 recordMember
	a.Add(1, &m1)
	a.Add(2, &m2)
	a.Close(1)
	m1.check(t, "pointer 1", 1, 0)
	m2.check(t, "pointer 2 untouched", 0, 0)
	a.Close(2)
	m2.check(t, "pointer 2", 1, 0)
}

func TestArenaContested(t *testing.T) {
	var a Arena
	var m1, m2 recordMember
	if a.Contested(1) {
		t.Error("empty arena reported contested")
	}
	a.Add(1, &m1)
	a.Close(1)
	// m1 already won; a fresh press reuses the id.
	var m recordMember
	a.Add(1, &m)
	a.Add(1, &m2)
	if !a.Contested(1) {
		t.Error("two live members not reported contested")
	}
}

func TestArenaAddAfterClosePanics(t *testing.T) {
	var a Arena
	var m1, m2 recordMember
	a.Add(1, &m1)
	a.Add(1, &m2)
	a.Close(1)
	defer func() {
		if recover() == nil {
			t.Error("no panic for joining a closed contest")
		}
	}()
	a.Add(1, &m2)
}
