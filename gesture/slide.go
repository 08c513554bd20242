// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"touchkit.org/f32"
	"touchkit.org/io/pointer"
)

// SlideTarget is notified by a TargetDispatcher as the primary pointer
// slides across targets.
type SlideTarget interface {
	// Entered is called when the target joins the current target set.
	Entered()
	// Left is called when the pointer moves off the target, or the
	// gesture is cancelled.
	Left()
	// Confirmed is called when the gesture completes over the target.
	Confirmed()
}

// HitTester reports the slide targets under a global position, ordered
// innermost first. It is typically backed by the widget layer's hit
// testing.
type HitTester func(pos f32.Point) []SlideTarget

// TargetDispatcher hit tests pointer positions and drives enter, leave
// and confirm notifications. Only the innermost target is considered
// for change detection; nested outer targets follow the innermost, and
// every target in the current set receives the same notification.
type TargetDispatcher struct {
	HitTest HitTester
	current []SlideTarget
}

// Update hit tests pos and, if the innermost target changed, notifies
// the old set it was left and the new set it was entered.
func (d *TargetDispatcher) Update(pos f32.Point) {
	found := d.HitTest(pos)
	if len(found) == 0 && len(d.current) == 0 {
		return
	}
	if len(found) > 0 && len(d.current) > 0 && found[0] == d.current[0] {
		return
	}
	for _, t := range d.current {
		t.Left()
	}
	d.current = append([]SlideTarget(nil), found...)
	for _, t := range d.current {
		t.Entered()
	}
}

// Confirm notifies the current targets of completion and clears the
// set.
func (d *TargetDispatcher) Confirm() {
	for _, t := range d.current {
		t.Confirmed()
	}
	d.current = nil
}

// Cancel notifies the current targets that the gesture ended elsewhere
// and clears the set.
func (d *TargetDispatcher) Cancel() {
	for _, t := range d.current {
		t.Left()
	}
	d.current = nil
}

// SlidingTap recognizes a single continuous drag following a press.
// Only the first contact is honored as the primary pointer; concurrent
// pointers are ignored until it is released. The primary pointer's raw
// positions are reported through OnDown, OnMove and OnUp whether or not
// the drag has been claimed, so callers can hit test responsively
// before arbitration settles.
type SlidingTap struct {
	tracker
	cfg Config

	OnDown func(pos f32.Point)
	// OnMove is called for every move of the primary pointer.
	OnMove func(pos f32.Point)
	// OnUp is called when the primary pointer lifts and the gesture
	// was uncontested. If other recognizers were still competing for
	// the pointer, OnCancel is called instead so that more specific
	// gestures keep their precedence.
	OnUp     func(pos f32.Point)
	OnCancel func()

	pressed  bool
	primary  pointer.ID
	pressPos f32.Point
}

// NewSlidingTap returns a SlidingTap recognizer competing in h's arena.
func NewSlidingTap(h *Hub, cfg Config) *SlidingTap {
	return &SlidingTap{tracker: tracker{hub: h}, cfg: cfg}
}

// AddPointer starts tracking the pointer of a Press. Platform gestures
// and secondary contacts are ignored.
func (s *SlidingTap) AddPointer(ev pointer.Event) {
	if ev.Kind != pointer.Press || s.pressed {
		return
	}
	if ev.Source == pointer.Mouse && ev.Buttons != pointer.ButtonPrimary {
		return
	}
	s.pressed = true
	s.primary = ev.PointerID
	s.pressPos = ev.Position
	s.startTracking(s, ev.PointerID, s.handleEvent)
}

func (s *SlidingTap) handleEvent(ev pointer.Event) {
	if !s.pressed || ev.PointerID != s.primary {
		return
	}
	switch ev.Kind {
	case pointer.Press:
		if s.OnDown != nil {
			s.OnDown(ev.Position)
		}
	case pointer.Move:
		if s.OnMove != nil {
			s.OnMove(ev.Position)
		}
		// An unambiguous drag claims the pointer.
		if dist(ev.Position, s.pressPos) > s.cfg.touchSlopPx(ev.Source) {
			s.resolvePointer(ev.PointerID, true)
		}
	case pointer.Release:
		if s.hub.arena.Contested(ev.PointerID) {
			// Withdraw in favor of the competing gestures; the
			// rejection callback reports the cancellation.
			s.resolvePointer(ev.PointerID, false)
			return
		}
		s.resolvePointer(ev.PointerID, true)
		if s.OnUp != nil {
			s.OnUp(ev.Position)
		}
		s.teardown(ev.PointerID)
	case pointer.Cancel:
		if s.OnCancel != nil {
			s.OnCancel()
		}
		s.teardown(ev.PointerID)
		s.resolvePointer(ev.PointerID, false)
	}
}

// AcceptGesture implements Member.
func (s *SlidingTap) AcceptGesture(id pointer.ID) {
	s.forgetEntry(id)
}

// RejectGesture implements Member. Losing the primary pointer cancels
// the gesture.
func (s *SlidingTap) RejectGesture(id pointer.ID) {
	s.forgetEntry(id)
	if !s.pressed || id != s.primary {
		return
	}
	if s.OnCancel != nil {
		s.OnCancel()
	}
	s.teardown(id)
}

func (s *SlidingTap) teardown(id pointer.ID) {
	s.pressed = false
	s.stopTracking(id)
}

// SlideSelection recognizes the press-then-slide-to-choose interaction
// used by action sheets: the primary pointer's every position is hit
// tested so targets react before the gesture is claimed, and the target
// under the pointer at release is confirmed.
type SlideSelection struct {
	tap     *SlidingTap
	targets TargetDispatcher
}

// NewSlideSelection returns a SlideSelection recognizer competing in
// h's arena, hit testing through hit.
func NewSlideSelection(h *Hub, hit HitTester, cfg Config) *SlideSelection {
	s := &SlideSelection{
		tap:     NewSlidingTap(h, cfg),
		targets: TargetDispatcher{HitTest: hit},
	}
	s.tap.OnDown = s.targets.Update
	s.tap.OnMove = s.targets.Update
	s.tap.OnUp = func(f32.Point) { s.targets.Confirm() }
	s.tap.OnCancel = s.targets.Cancel
	return s
}

// AddPointer implements Recognizer.
func (s *SlideSelection) AddPointer(ev pointer.Event) {
	s.tap.AddPointer(ev)
}

// AcceptGesture implements Member.
func (s *SlideSelection) AcceptGesture(id pointer.ID) {
	s.tap.AcceptGesture(id)
}

// RejectGesture implements Member.
func (s *SlideSelection) RejectGesture(id pointer.ID) {
	s.tap.RejectGesture(id)
}
