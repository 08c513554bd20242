// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"testing"
	"time"

	"touchkit.org/f32"
	"touchkit.org/io/pointer"
)

type recTarget struct {
	name string
	log  *[]string
}

func (r *recTarget) Entered()   { *r.log = append(*r.log, r.name+" enter") }
func (r *recTarget) Left()      { *r.log = append(*r.log, r.name+" leave") }
func (r *recTarget) Confirmed() { *r.log = append(*r.log, r.name+" confirm") }

func checkLog(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("target log %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("target log %v, want %v", got, want)
		}
	}
}

func TestTargetDispatcher(t *testing.T) {
	var log []string
	inner1 := &recTarget{name: "inner1", log: &log}
	inner2 := &recTarget{name: "inner2", log: &log}
	outer := &recTarget{name: "outer", log: &log}
	d := TargetDispatcher{HitTest: func(pos f32.Point) []SlideTarget {
		switch {
		case pos.X < 50:
			return []SlideTarget{inner1, outer}
		case pos.X < 100:
			return []SlideTarget{inner2, outer}
		default:
			return nil
		}
	}}

	d.Update(f32.Pt(10, 0))
	checkLog(t, log, "inner1 enter", "outer enter")

	// Same innermost target: no renotification.
	log = nil
	d.Update(f32.Pt(20, 0))
	checkLog(t, log)

	// A new innermost target renotifies the whole set, shared outer
	// targets included.
	d.Update(f32.Pt(60, 0))
	checkLog(t, log, "inner1 leave", "outer leave", "inner2 enter", "outer enter")

	log = nil
	d.Update(f32.Pt(200, 0))
	checkLog(t, log, "inner2 leave", "outer leave")

	// Leaving and re-entering with an empty set in between.
	log = nil
	d.Update(f32.Pt(200, 0))
	checkLog(t, log)
	d.Update(f32.Pt(60, 0))
	d.Confirm()
	checkLog(t, log, "inner2 enter", "outer enter", "inner2 confirm", "outer confirm")

	// Confirm cleared the set.
	log = nil
	d.Confirm()
	checkLog(t, log)
}

func TestTargetDispatcherCancel(t *testing.T) {
	var log []string
	a := &recTarget{name: "a", log: &log}
	d := TargetDispatcher{HitTest: func(f32.Point) []SlideTarget {
		return []SlideTarget{a}
	}}
	d.Update(f32.Pt(0, 0))
	d.Cancel()
	checkLog(t, log, "a enter", "a leave")
	log = nil
	d.Cancel()
	checkLog(t, log)
}

func TestSlideSelection(t *testing.T) {
	var h Hub
	var log []string
	a := &recTarget{name: "a", log: &log}
	b := &recTarget{name: "b", log: &log}
	s := NewSlideSelection(&h, func(pos f32.Point) []SlideTarget {
		if pos.X < 100 {
			return []SlideTarget{a}
		}
		return []SlideTarget{b}
	}, Config{})

	h.Offer(evt(pointer.Press, 1, 50, 0, 0), s)
	h.Dispatch(evt(pointer.Move, 1, 150, 0, 10*time.Millisecond))
	h.Dispatch(evt(pointer.Release, 1, 150, 0, 20*time.Millisecond))

	checkLog(t, log, "a enter", "a leave", "b enter", "b confirm")
}

func TestSlideSelectionContestedLiftCancels(t *testing.T) {
	var h Hub
	var log []string
	a := &recTarget{name: "a", log: &log}
	s := NewSlideSelection(&h, func(f32.Point) []SlideTarget {
		return []SlideTarget{a}
	}, Config{})
	rival := &inert{hub: &h}

	h.Offer(evt(pointer.Press, 1, 50, 0, 0), s, rival)
	// A lift within the slop leaves the contest undecided: the slide
	// withdraws so more specific gestures keep their precedence.
	h.Dispatch(evt(pointer.Release, 1, 55, 0, 10*time.Millisecond))

	checkLog(t, log, "a enter", "a leave")
	if len(rival.accepted) != 1 {
		t.Errorf("rival acceptances %v, want the withdrawn pointer", rival.accepted)
	}
}

func TestSlidingTapDragClaims(t *testing.T) {
	var h Hub
	tap := NewSlidingTap(&h, Config{})
	var ups []f32.Point
	canceled := 0
	tap.OnUp = func(pos f32.Point) { ups = append(ups, pos) }
	tap.OnCancel = func() { canceled++ }
	rival := &inert{hub: &h}

	h.Offer(evt(pointer.Press, 1, 0, 0, 0), tap, rival)
	// 30px exceeds the touch slop and claims the pointer.
	h.Dispatch(evt(pointer.Move, 1, 30, 0, 10*time.Millisecond))
	if len(rival.rejected) != 1 {
		t.Fatalf("rival rejections %v, want one after the drag claim", rival.rejected)
	}
	h.Dispatch(evt(pointer.Release, 1, 30, 0, 20*time.Millisecond))
	if canceled != 0 {
		t.Error("claimed drag was canceled")
	}
	if len(ups) != 1 || ups[0] != f32.Pt(30, 0) {
		t.Errorf("ups %v, want [(30,0)]", ups)
	}
}

func TestSlidingTapMoveWithinSlop(t *testing.T) {
	var h Hub
	tap := NewSlidingTap(&h, Config{})
	var moves []f32.Point
	tap.OnMove = func(pos f32.Point) { moves = append(moves, pos) }
	rival := &inert{hub: &h}

	h.Offer(evt(pointer.Press, 1, 0, 0, 0), tap, rival)
	h.Dispatch(evt(pointer.Move, 1, 10, 0, 10*time.Millisecond))

	// Moves are reported before arbitration settles.
	if len(moves) != 1 {
		t.Fatalf("moves %v, want the pre-claim move", moves)
	}
	if len(rival.rejected) != 0 {
		t.Error("pointer claimed within the touch slop")
	}
}

func TestSlidingTapIgnoresSecondContact(t *testing.T) {
	var h Hub
	tap := NewSlidingTap(&h, Config{})
	var downs, moves, ups []f32.Point
	tap.OnDown = func(pos f32.Point) { downs = append(downs, pos) }
	tap.OnMove = func(pos f32.Point) { moves = append(moves, pos) }
	tap.OnUp = func(pos f32.Point) { ups = append(ups, pos) }

	h.Offer(evt(pointer.Press, 1, 0, 0, 0), tap)
	h.Offer(evt(pointer.Press, 2, 50, 50, 10*time.Millisecond), tap)
	h.Dispatch(evt(pointer.Move, 2, 60, 50, 20*time.Millisecond))
	h.Dispatch(evt(pointer.Release, 2, 60, 50, 30*time.Millisecond))
	h.Dispatch(evt(pointer.Release, 1, 0, 0, 40*time.Millisecond))

	if len(downs) != 1 || downs[0] != f32.Pt(0, 0) {
		t.Errorf("downs %v, want only the primary contact", downs)
	}
	if len(moves) != 0 {
		t.Errorf("moves %v from a secondary contact", moves)
	}
	if len(ups) != 1 || ups[0] != f32.Pt(0, 0) {
		t.Errorf("ups %v, want the primary lift", ups)
	}
}

func TestSlidingTapMouseButtons(t *testing.T) {
	var h Hub
	tap := NewSlidingTap(&h, Config{})
	downs := 0
	tap.OnDown = func(f32.Point) { downs++ }

	press := evt(pointer.Press, 1, 0, 0, 0)
	press.Source = pointer.Mouse
	press.Buttons = pointer.ButtonSecondary
	h.Offer(press, tap)
	if downs != 0 {
		t.Error("secondary button press recognized")
	}

	press = evt(pointer.Press, 2, 0, 0, 10*time.Millisecond)
	press.Source = pointer.Mouse
	press.Buttons = pointer.ButtonPrimary
	h.Offer(press, tap)
	if downs != 1 {
		t.Errorf("%d downs for a primary button press, want 1", downs)
	}
}

func TestSlidingTapCancel(t *testing.T) {
	var h Hub
	tap := NewSlidingTap(&h, Config{})
	canceled := 0
	ups := 0
	tap.OnCancel = func() { canceled++ }
	tap.OnUp = func(f32.Point) { ups++ }

	h.Offer(evt(pointer.Press, 1, 0, 0, 0), tap)
	h.Dispatch(evt(pointer.Cancel, 1, 0, 0, 10*time.Millisecond))
	if canceled != 1 || ups != 0 {
		t.Errorf("%d cancels and %d ups, want 1 and 0", canceled, ups)
	}

	// The recognizer accepts a fresh press afterwards.
	h.Offer(evt(pointer.Press, 2, 0, 0, 20*time.Millisecond), tap)
	h.Dispatch(evt(pointer.Release, 2, 0, 0, 30*time.Millisecond))
	if ups != 1 {
		t.Errorf("%d ups after a fresh press, want 1", ups)
	}
}

func TestSlidingTapLosingArenaCancels(t *testing.T) {
	var h Hub
	// With a tap slop wider than the scale's pan slop the scale claims
	// the pointer first.
	tap := NewSlidingTap(&h, Config{TouchSlop: 100})
	canceled := 0
	ups := 0
	tap.OnCancel = func() { canceled++ }
	tap.OnUp = func(f32.Point) { ups++ }
	scale, slog := newLoggedScale(&h, Config{})

	h.Offer(evt(pointer.Press, 1, 0, 0, 0), tap, scale)
	h.Dispatch(evt(pointer.Move, 1, 40, 0, 10*time.Millisecond))
	if canceled != 1 {
		t.Errorf("%d cancels after losing the arena, want 1", canceled)
	}
	if len(slog.starts) != 1 {
		t.Errorf("%d scale starts, want 1", len(slog.starts))
	}

	// The tap stopped tracking; the lift belongs to the scale alone.
	h.Dispatch(evt(pointer.Release, 1, 40, 0, 20*time.Millisecond))
	if ups != 0 {
		t.Error("canceled tap reported a lift")
	}
}
