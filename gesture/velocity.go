// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"time"

	"touchkit.org/f32"
	"touchkit.org/internal/fling"
)

// velocityTracker estimates a pointer's velocity from a bounded history
// of its recent positions. One tracker exists per tracked pointer and
// is destroyed with it.
type velocityTracker struct {
	x, y fling.Extrapolation
}

func (t *velocityTracker) add(ts time.Duration, pos f32.Point) {
	t.x.Sample(ts, pos.X)
	t.y.Sample(ts, pos.Y)
}

// velocity returns the estimated velocity in pixels per second.
func (t *velocityTracker) velocity() f32.Point {
	return f32.Point{
		X: t.x.Estimate().Velocity,
		Y: t.y.Estimate().Velocity,
	}
}
