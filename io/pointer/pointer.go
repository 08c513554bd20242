// SPDX-License-Identifier: Unlicense OR MIT

/*
Package pointer implements the pointer event stream consumed by package
gesture.

Events are produced by a platform event source (a window system backend or
one of the adapters under driver). For every pointer id the stream is
strictly ordered: a Press, followed by any number of Moves, terminated by a
Release or Cancel. Platform gestures such as trackpad pinches arrive as a
parallel PanZoomStart/PanZoomUpdate/PanZoomEnd sequence carrying cumulative
pan, scale and rotation instead of raw contacts.
*/
package pointer

import (
	"strings"
	"time"

	"touchkit.org/f32"
)

// Event is a pointer event.
type Event struct {
	Kind   Kind
	Source Source
	// PointerID is the id for the pointer and can be used
	// to track a particular pointer from Press to
	// Release or Cancel, or from PanZoomStart to PanZoomEnd.
	PointerID ID
	// Time is when the event was received. The
	// timestamp is relative to an undefined base.
	Time time.Duration
	// Buttons are the set of pressed mouse buttons for this event.
	Buttons Buttons
	// Position is the coordinates of the event in the global coordinate
	// system. Use Transform to convert it to a consumer's local space.
	Position f32.Point
	// Transform converts global coordinates to the coordinate space of
	// the consumer the event is delivered to.
	Transform f32.Affine2D
	// Synthetic marks events generated by the event source rather than
	// the hardware, for example a Move inserted to keep positions
	// consistent across a reconfiguration. Synthetic events carry no
	// velocity information and must not feed velocity estimation.
	Synthetic bool

	// Pan, Scale and Rotation carry the cumulative state of a platform
	// gesture since its PanZoomStart. They are only valid for the
	// PanZoom kinds. Scale is 1 and Pan and Rotation are zero at the
	// start of the gesture.
	Pan      f32.Point
	Scale    float32
	Rotation float32
}

// ID identifies a pointer. Ids are reused after the pointer is
// destroyed.
type ID uint16

// Kind of an Event.
type Kind uint

// Source of an Event.
type Source uint8

// Buttons is a set of mouse buttons.
type Buttons uint8

const (
	// A Cancel event is generated when the current gesture is
	// interrupted by other handlers or the system.
	Cancel Kind = 1 << iota
	// Press of a pointer.
	Press
	// Release of a pointer.
	Release
	// Move of a pointer.
	Move
	// PanZoomStart marks the beginning of a platform-level continuous
	// gesture (for example a trackpad pinch).
	PanZoomStart
	// PanZoomUpdate reports new cumulative pan, scale and rotation for a
	// platform gesture.
	PanZoomUpdate
	// PanZoomEnd ends a platform gesture.
	PanZoomEnd
)

const (
	// Mouse generated event.
	Mouse Source = iota
	// Touch generated event.
	Touch
	// Trackpad generated event.
	Trackpad
	// Stylus generated event.
	Stylus
)

const (
	// ButtonPrimary is the primary button, usually the left button for a
	// right-handed user.
	ButtonPrimary Buttons = 1 << iota
	// ButtonSecondary is the secondary button, usually the right button for a
	// right-handed user.
	ButtonSecondary
	// ButtonTertiary is the tertiary button, usually the middle button.
	ButtonTertiary
)

// Precise reports whether the source is a high precision pointing
// device, which uses tighter recognition thresholds than a finger.
func (s Source) Precise() bool {
	return s == Mouse
}

func (t Kind) String() string {
	if t == Cancel {
		return "Cancel"
	}
	var buf strings.Builder
	for tt := Kind(1); tt > 0; tt <<= 1 {
		if t&tt > 0 {
			if buf.Len() > 0 {
				buf.WriteByte('|')
			}
			buf.WriteString((t & tt).string())
		}
	}
	return buf.String()
}

func (t Kind) string() string {
	switch t {
	case Press:
		return "Press"
	case Release:
		return "Release"
	case Cancel:
		return "Cancel"
	case Move:
		return "Move"
	case PanZoomStart:
		return "PanZoomStart"
	case PanZoomUpdate:
		return "PanZoomUpdate"
	case PanZoomEnd:
		return "PanZoomEnd"
	default:
		panic("unknown Kind")
	}
}

func (s Source) String() string {
	switch s {
	case Mouse:
		return "Mouse"
	case Touch:
		return "Touch"
	case Trackpad:
		return "Trackpad"
	case Stylus:
		return "Stylus"
	default:
		panic("unknown source")
	}
}

// Contain reports whether the set b contains
// all of the buttons.
func (b Buttons) Contain(buttons Buttons) bool {
	return b&buttons == buttons
}

func (b Buttons) String() string {
	var strs []string
	if b.Contain(ButtonPrimary) {
		strs = append(strs, "ButtonPrimary")
	}
	if b.Contain(ButtonSecondary) {
		strs = append(strs, "ButtonSecondary")
	}
	if b.Contain(ButtonTertiary) {
		strs = append(strs, "ButtonTertiary")
	}
	return strings.Join(strs, "|")
}
