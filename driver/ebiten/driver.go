// SPDX-License-Identifier: Unlicense OR MIT

/*
Package ebiten adapts Ebitengine's polled input state to the event
stream consumed by package gesture.

Ebitengine exposes input as per-frame snapshots rather than an event
queue. The Adapter diffs consecutive snapshots in Update, synthesizing
Press, Move and Release events for the mouse and for each live touch,
and a Trackpad pan-zoom track for mouse wheel motion.
*/
package ebiten

import (
	"math"
	"time"

	eb "github.com/hajimehoshi/ebiten/v2"

	"touchkit.org/f32"
	"touchkit.org/gesture"
	"touchkit.org/io/pointer"
)

const (
	// wheelScrollPx is the pan distance of one wheel tick.
	wheelScrollPx = 20
	// wheelZoomStep is the scale factor of one wheel tick while the
	// control key turns the wheel into a zoom gesture.
	wheelZoomStep = 1.05
	// wheelIdleFrames is the number of quiet frames after which a wheel
	// track ends.
	wheelIdleFrames = 10
)

// Adapter converts Ebitengine input state into pointer events. Call
// Update once per game tick, before using the recognizers' output for
// the frame.
type Adapter struct {
	Hub *gesture.Hub
	// Candidates decides which recognizers compete for a new contact,
	// typically by hit testing its position. All events of the contact
	// go through the Hub's routing afterwards.
	Candidates func(pos f32.Point) []gesture.Recognizer
	// Clock provides event timestamps. If nil, wall time since the
	// first Update is used.
	Clock func() time.Duration

	start   time.Time
	nextID  pointer.ID
	mouse   contact
	touches map[eb.TouchID]*contact
	tidBuf  []eb.TouchID
	wheel   wheelTrack
}

type contact struct {
	id      pointer.ID
	down    bool
	pos     f32.Point
	buttons pointer.Buttons
}

type wheelTrack struct {
	active bool
	id     pointer.ID
	pos    f32.Point
	pan    f32.Point
	scale  float32
	idle   int
}

// Update polls the current input state and emits the events implied by
// its difference from the previous frame.
func (a *Adapter) Update() {
	now := a.now()
	a.updateMouse(now)
	a.updateTouches(now)
	a.updateWheel(now)
}

func (a *Adapter) now() time.Duration {
	if a.Clock != nil {
		return a.Clock()
	}
	if a.start.IsZero() {
		a.start = time.Now()
	}
	return time.Since(a.start)
}

func (a *Adapter) allocID() pointer.ID {
	a.nextID++
	if a.nextID == 0 {
		a.nextID = 1
	}
	return a.nextID
}

func (a *Adapter) offer(ev pointer.Event) {
	var candidates []gesture.Recognizer
	if a.Candidates != nil {
		candidates = a.Candidates(ev.Position)
	}
	a.Hub.Offer(ev, candidates...)
}

func (a *Adapter) updateMouse(now time.Duration) {
	mx, my := eb.CursorPosition()
	pos := f32.Pt(float32(mx), float32(my))

	var buttons pointer.Buttons
	if eb.IsMouseButtonPressed(eb.MouseButtonLeft) {
		buttons |= pointer.ButtonPrimary
	}
	if eb.IsMouseButtonPressed(eb.MouseButtonRight) {
		buttons |= pointer.ButtonSecondary
	}
	if eb.IsMouseButtonPressed(eb.MouseButtonMiddle) {
		buttons |= pointer.ButtonTertiary
	}
	pressed := buttons != 0

	m := &a.mouse
	switch {
	case pressed && !m.down:
		m.id = a.allocID()
		m.down = true
		m.pos = pos
		// The buttons of the press stick for the whole interaction.
		m.buttons = buttons
		a.offer(pointer.Event{
			Kind:      pointer.Press,
			Source:    pointer.Mouse,
			PointerID: m.id,
			Time:      now,
			Buttons:   m.buttons,
			Position:  pos,
		})
	case !pressed && m.down:
		m.down = false
		a.Hub.Dispatch(pointer.Event{
			Kind:      pointer.Release,
			Source:    pointer.Mouse,
			PointerID: m.id,
			Time:      now,
			Buttons:   m.buttons,
			Position:  pos,
		})
	case m.down && pos != m.pos:
		m.pos = pos
		a.Hub.Dispatch(pointer.Event{
			Kind:      pointer.Move,
			Source:    pointer.Mouse,
			PointerID: m.id,
			Time:      now,
			Buttons:   m.buttons,
			Position:  pos,
		})
	}
}

func (a *Adapter) updateTouches(now time.Duration) {
	a.tidBuf = eb.AppendTouchIDs(a.tidBuf[:0])
	live := make(map[eb.TouchID]bool, len(a.tidBuf))
	for _, tid := range a.tidBuf {
		live[tid] = true
		tx, ty := eb.TouchPosition(tid)
		pos := f32.Pt(float32(tx), float32(ty))
		c, ok := a.touches[tid]
		if !ok {
			if a.touches == nil {
				a.touches = make(map[eb.TouchID]*contact)
			}
			c = &contact{id: a.allocID(), down: true, pos: pos}
			a.touches[tid] = c
			a.offer(pointer.Event{
				Kind:      pointer.Press,
				Source:    pointer.Touch,
				PointerID: c.id,
				Time:      now,
				Position:  pos,
			})
			continue
		}
		if pos != c.pos {
			c.pos = pos
			a.Hub.Dispatch(pointer.Event{
				Kind:      pointer.Move,
				Source:    pointer.Touch,
				PointerID: c.id,
				Time:      now,
				Position:  pos,
			})
		}
	}
	for tid, c := range a.touches {
		if live[tid] {
			continue
		}
		delete(a.touches, tid)
		a.Hub.Dispatch(pointer.Event{
			Kind:      pointer.Release,
			Source:    pointer.Touch,
			PointerID: c.id,
			Time:      now,
			Position:  c.pos,
		})
	}
}

// updateWheel folds wheel motion into a synthetic trackpad track: plain
// scrolling pans, scrolling with control held zooms around the cursor.
// The track ends after a few quiet frames.
func (a *Adapter) updateWheel(now time.Duration) {
	xoff, yoff := eb.Wheel()
	w := &a.wheel
	if xoff == 0 && yoff == 0 {
		if !w.active {
			return
		}
		if w.idle++; w.idle < wheelIdleFrames {
			return
		}
		w.active = false
		a.Hub.Dispatch(pointer.Event{
			Kind:      pointer.PanZoomEnd,
			Source:    pointer.Trackpad,
			PointerID: w.id,
			Time:      now,
			Position:  w.pos,
		})
		return
	}

	if !w.active {
		mx, my := eb.CursorPosition()
		*w = wheelTrack{
			active: true,
			id:     a.allocID(),
			pos:    f32.Pt(float32(mx), float32(my)),
			scale:  1,
		}
		a.offer(pointer.Event{
			Kind:      pointer.PanZoomStart,
			Source:    pointer.Trackpad,
			PointerID: w.id,
			Time:      now,
			Position:  w.pos,
		})
	}
	w.idle = 0
	if eb.IsKeyPressed(eb.KeyControl) {
		w.scale *= float32(math.Pow(wheelZoomStep, yoff))
	} else {
		w.pan.X += float32(xoff) * wheelScrollPx
		w.pan.Y += float32(yoff) * wheelScrollPx
	}
	a.Hub.Dispatch(pointer.Event{
		Kind:      pointer.PanZoomUpdate,
		Source:    pointer.Trackpad,
		PointerID: w.id,
		Time:      now,
		Position:  w.pos,
		Pan:       w.pan,
		Scale:     w.scale,
		Rotation:  0,
	})
}
