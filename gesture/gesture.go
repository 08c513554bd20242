// SPDX-License-Identifier: Unlicense OR MIT

/*
Package gesture implements multi-pointer gesture recognition.

Recognizers accept low level pointer Events from package io/pointer and
detect higher level actions such as pinches, rotations and sliding
selections. Several recognizers may track the same pointer while its
gesture is ambiguous; an Arena resolves the contest to at most one
winner per pointer. A Hub distributes the event stream to the
recognizers tracking each pointer and advances the arena lifecycle.

The package is single threaded: all events of an input session must be
delivered sequentially from one goroutine. Recognition is synchronous,
with no internal timers; any timing based disambiguation is the
responsibility of the event source.
*/
package gesture

import (
	"touchkit.org/io/pointer"
	"touchkit.org/unit"
)

// Default recognition thresholds, tuned for touch input. Precise
// devices (mice) use the precise variants.
const (
	touchSlop        = unit.Dp(18)
	panSlop          = touchSlop * 2
	scaleSlop        = touchSlop
	preciseHitSlop   = unit.Dp(1)
	precisePanSlop   = preciseHitSlop * 2
	preciseScaleSlop = preciseHitSlop

	// minFlingVelocity is the release speed, in dp per second, below
	// which the end velocity is reported as zero.
	minFlingVelocity = unit.Dp(50)
	// maxFlingVelocity caps the reported release speed, in dp per
	// second.
	maxFlingVelocity = unit.Dp(8000)

	// defaultScaleSlopRatio is the ratio between a platform gesture's
	// scale and unit scale beyond which the gesture is claimed.
	defaultScaleSlopRatio = 1.05
)

// FocalBlend selects how the focal points and scale factors computed
// independently from raw pointers and from platform gestures are
// combined when both sources are active at once.
type FocalBlend uint8

const (
	// BlendMean averages the two source focal points with equal
	// weight.
	BlendMean FocalBlend = iota
	// BlendPooled weights each source by its number of contributors.
	BlendPooled
)

// DragStartBehavior selects the baseline against which scale, rotation
// and focal deltas are measured.
type DragStartBehavior uint8

const (
	// StartAtPress measures from the first contact.
	StartAtPress DragStartBehavior = iota
	// StartAtAccept measures from the moment the gesture wins its
	// arena. The claim thresholds themselves are unaffected.
	StartAtAccept
)

// Config bundles the recognition thresholds. The zero value uses the
// default thresholds at a 1:1 dp to pixel ratio.
type Config struct {
	// Metric converts the dp thresholds to pixels. The zero Metric is
	// treated as 1 px per dp.
	Metric unit.Metric
	// TouchSlop overrides the drag claim threshold, in dp.
	TouchSlop unit.Dp
	// PanSlop overrides the focal travel claim threshold, in dp.
	PanSlop unit.Dp
	// ScaleSlop overrides the span change claim threshold, in dp.
	ScaleSlop unit.Dp
	// MinFlingVelocity and MaxFlingVelocity override the fling speed
	// window, in dp per second.
	MinFlingVelocity unit.Dp
	MaxFlingVelocity unit.Dp
	// ScaleSlopRatio overrides the platform gesture scale claim
	// threshold.
	ScaleSlopRatio float32
	// Blend selects the focal blending policy.
	Blend FocalBlend
	// DragStart selects the measurement baseline.
	DragStart DragStartBehavior
}

func (c Config) metric() unit.Metric {
	if c.Metric == (unit.Metric{}) {
		return unit.Metric{PxPerDp: 1, PxPerSp: 1}
	}
	return c.Metric
}

func (c Config) px(v unit.Dp) float32 {
	return float32(c.metric().Dp(v))
}

func (c Config) touchSlopPx(src pointer.Source) float32 {
	if src.Precise() {
		return c.px(preciseHitSlop)
	}
	if c.TouchSlop != 0 {
		return c.px(c.TouchSlop)
	}
	return c.px(touchSlop)
}

func (c Config) panSlopPx(src pointer.Source) float32 {
	if src.Precise() {
		return c.px(precisePanSlop)
	}
	if c.PanSlop != 0 {
		return c.px(c.PanSlop)
	}
	return c.px(panSlop)
}

func (c Config) scaleSlopPx(src pointer.Source) float32 {
	if src.Precise() {
		return c.px(preciseScaleSlop)
	}
	if c.ScaleSlop != 0 {
		return c.px(c.ScaleSlop)
	}
	return c.px(scaleSlop)
}

func (c Config) minFlingPx() float32 {
	if c.MinFlingVelocity != 0 {
		return c.px(c.MinFlingVelocity)
	}
	return c.px(minFlingVelocity)
}

func (c Config) maxFlingPx() float32 {
	if c.MaxFlingVelocity != 0 {
		return c.px(c.MaxFlingVelocity)
	}
	return c.px(maxFlingVelocity)
}

func (c Config) scaleSlopRatio() float32 {
	if c.ScaleSlopRatio != 0 {
		return c.ScaleSlopRatio
	}
	return defaultScaleSlopRatio
}
