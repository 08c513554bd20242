// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"math"

	"touchkit.org/f32"
	"touchkit.org/io/pointer"
)

// ScaleStartEvent carries the initial state of a recognized scale
// gesture.
type ScaleStartEvent struct {
	// Focal is the focal point in global coordinates, LocalFocal the
	// same point in the consumer's space.
	Focal        f32.Point
	LocalFocal   f32.Point
	PointerCount int
}

// ScaleUpdateEvent reports the current geometry of an in-progress scale
// gesture.
type ScaleUpdateEvent struct {
	Focal      f32.Point
	LocalFocal f32.Point
	// FocalDelta is the local focal movement since the previous
	// update. It is zero on updates where the set of contributing
	// pointers changed.
	FocalDelta f32.Point
	// Scale is the span ratio against the gesture baseline, 1 when the
	// baseline span is zero. HorizontalScale and VerticalScale are the
	// per-axis equivalents.
	Scale           float32
	HorizontalScale float32
	VerticalScale   float32
	// Rotation is the angle, in radians, between the current reference
	// line and the baseline reference line, plus any platform gesture
	// rotation.
	Rotation     float32
	PointerCount int
}

// ScaleEndEvent reports the release velocity of a finished scale
// gesture. Velocity is zero below the minimum fling speed and clamped
// to the maximum fling speed, preserving direction.
type ScaleEndEvent struct {
	Velocity     f32.Point
	PointerCount int
}

type scaleState uint8

const (
	// scaleReady is the idle state, with no tracked pointers.
	scaleReady scaleState = iota
	// scalePossible tracks pointers but has not yet claimed them.
	scalePossible
	// scaleAccepted has won the arena but not yet notified a start.
	scaleAccepted
	// scaleStarted is an in-progress gesture.
	scaleStarted
)

// refLine is the reference line between the two earliest arrived
// pointers, used as the rotation datum. Its endpoint ids always differ.
type refLine struct {
	startID, endID pointer.ID
	start, end     f32.Point
}

func (l *refLine) angle() float32 {
	d := l.end.Sub(l.start)
	return float32(math.Atan2(float64(d.Y), float64(d.X)))
}

// panZoom is the state of one platform gesture track. A track is
// possible from its PanZoomStart and started once it has been claimed;
// only started tracks contribute to the aggregates.
type panZoom struct {
	position f32.Point
	pan      f32.Point
	scale    float32
	rotation float32
	started  bool
}

func (p *panZoom) focal() f32.Point {
	return p.position.Add(p.pan)
}

// Scale recognizes pan, pinch and rotate gestures from raw multi-touch
// pointers and from platform delivered pan-zoom tracks. It reports the
// aggregate focal point, span ratio and rotation through the three
// callbacks.
type Scale struct {
	tracker
	cfg Config

	// OnStart is called when the gesture begins: the recognizer has
	// won its arena and pointers are down. OnUpdate is called for
	// every event while the gesture is in progress. OnEnd is called
	// when a participating pointer is released; a pointer arriving
	// afterwards starts a fresh gesture with a new OnStart.
	OnStart  func(ScaleStartEvent)
	OnUpdate func(ScaleUpdateEvent)
	OnEnd    func(ScaleEndEvent)

	state scaleState

	positions map[pointer.ID]f32.Point
	// queue holds the live pointer ids in arrival order. The first two
	// define the reference line.
	queue    []pointer.ID
	velocity map[pointer.ID]*velocityTracker
	panZooms map[pointer.ID]*panZoom

	initialFocal  f32.Point
	currentFocal  f32.Point
	localFocal    f32.Point
	delta         f32.Point
	lastTransform f32.Affine2D
	// lastContrib is the number of focal contributors at the previous
	// update, used to suppress the focal delta across reconfigurations.
	lastContrib int
	sawFocal    bool

	initialSpan, currentSpan   float32
	initialHSpan, currentHSpan float32
	initialVSpan, currentVSpan float32

	initialLine, currentLine *refLine

	// Baselines folding in the platform tracks live at the latest
	// reconfiguration.
	initialPanZoomScale    float32
	initialPanZoomRotation float32
}

// NewScale returns a Scale recognizer competing in h's arena.
func NewScale(h *Hub, cfg Config) *Scale {
	return &Scale{
		tracker:             tracker{hub: h},
		cfg:                 cfg,
		positions:           make(map[pointer.ID]f32.Point),
		velocity:            make(map[pointer.ID]*velocityTracker),
		panZooms:            make(map[pointer.ID]*panZoom),
		initialPanZoomScale: 1,
	}
}

// AddPointer starts tracking the pointer of a Press or PanZoomStart.
func (s *Scale) AddPointer(ev pointer.Event) {
	switch ev.Kind {
	case pointer.Press, pointer.PanZoomStart:
	default:
		panic("gesture: AddPointer requires a Press or PanZoomStart")
	}
	s.velocity[ev.PointerID] = new(velocityTracker)
	s.startTracking(s, ev.PointerID, s.handleEvent)
	if s.state == scaleReady {
		s.state = scalePossible
		s.initialSpan, s.currentSpan = 0, 0
		s.initialHSpan, s.currentHSpan = 0, 0
		s.initialVSpan, s.currentVSpan = 0, 0
	}
}

func (s *Scale) handleEvent(ev pointer.Event) {
	var configChanged, shouldStart bool
	switch ev.Kind {
	case pointer.Move:
		if vt := s.velocity[ev.PointerID]; vt != nil && !ev.Synthetic {
			vt.add(ev.Time, ev.Position)
		}
		s.positions[ev.PointerID] = ev.Position
		shouldStart = true
	case pointer.Press:
		s.positions[ev.PointerID] = ev.Position
		s.queue = append(s.queue, ev.PointerID)
		configChanged = true
		shouldStart = true
	case pointer.Release, pointer.Cancel:
		delete(s.positions, ev.PointerID)
		s.queue = removeID(s.queue, ev.PointerID)
		configChanged = true
	case pointer.PanZoomStart:
		s.panZooms[ev.PointerID] = &panZoom{position: ev.Position, scale: 1}
		configChanged = true
		shouldStart = true
	case pointer.PanZoomUpdate:
		p := s.panZooms[ev.PointerID]
		if p == nil {
			panic("gesture: update for an untracked platform gesture")
		}
		p.position = ev.Position
		p.pan = ev.Pan
		p.scale = ev.Scale
		p.rotation = ev.Rotation
		if vt := s.velocity[ev.PointerID]; vt != nil && !ev.Synthetic {
			vt.add(ev.Time, p.focal())
		}
		s.maybeStartPanZoom(ev, p)
		shouldStart = true
	case pointer.PanZoomEnd:
		delete(s.panZooms, ev.PointerID)
		configChanged = true
	}
	s.lastTransform = ev.Transform

	s.update()
	if configChanged {
		s.reconfigure(ev)
	}
	s.advance(shouldStart, ev)

	switch ev.Kind {
	case pointer.Cancel:
		s.resolvePointer(ev.PointerID, false)
		fallthrough
	case pointer.Release, pointer.PanZoomEnd:
		delete(s.velocity, ev.PointerID)
		if s.stopTracking(ev.PointerID) {
			s.didStopLastPointer()
		}
	}
}

// update recomputes the aggregate focal point, spans and reference
// line from the tracked positions and started platform tracks.
func (s *Scale) update() {
	pCount := len(s.positions)
	var pointerFocal f32.Point
	for _, pos := range s.positions {
		pointerFocal = pointerFocal.Add(pos)
	}
	if pCount > 0 {
		pointerFocal = pointerFocal.Div(float32(pCount))
	}

	zCount := 0
	var panFocal f32.Point
	for _, p := range s.panZooms {
		if p.started {
			panFocal = panFocal.Add(p.focal())
			zCount++
		}
	}
	if zCount > 0 {
		panFocal = panFocal.Div(float32(zCount))
	}

	switch {
	case pCount > 0 && zCount > 0:
		switch s.cfg.Blend {
		case BlendPooled:
			sum := pointerFocal.Mul(float32(pCount)).Add(panFocal.Mul(float32(zCount)))
			s.currentFocal = sum.Div(float32(pCount + zCount))
		default:
			s.currentFocal = pointerFocal.Add(panFocal).Div(2)
		}
	case pCount > 0:
		s.currentFocal = pointerFocal
	case zCount > 0:
		s.currentFocal = panFocal
	default:
		s.currentFocal = f32.Point{}
	}

	local := s.lastTransform.Transform(s.currentFocal)
	contrib := pCount + zCount
	if s.sawFocal && contrib == s.lastContrib {
		s.delta = local.Sub(s.localFocal)
	} else {
		s.delta = f32.Point{}
	}
	s.localFocal = local
	s.lastContrib = contrib
	s.sawFocal = true

	// Span is the mean deviation of the raw pointers from their own
	// centroid; the per-axis spans are mean absolute deviations.
	var dev, devH, devV float32
	for _, pos := range s.positions {
		d := pointerFocal.Sub(pos)
		dev += float32(math.Hypot(float64(d.X), float64(d.Y)))
		devH += abs32(d.X)
		devV += abs32(d.Y)
	}
	if pCount > 0 {
		n := float32(pCount)
		s.currentSpan = dev / n
		s.currentHSpan = devH / n
		s.currentVSpan = devV / n
	} else {
		s.currentSpan = 0
		s.currentHSpan = 0
		s.currentVSpan = 0
	}

	s.updateLines()
}

// updateLines maintains the rotation reference line between the first
// two pointers in arrival order. If either of the two earliest ids
// changed, a new rotation process begins with a fresh baseline.
func (s *Scale) updateLines() {
	if len(s.queue) < 2 {
		s.initialLine = s.currentLine
		return
	}
	a, b := s.queue[0], s.queue[1]
	if a == b {
		panic("gesture: reference line endpoints must differ")
	}
	cur := &refLine{
		startID: a, start: s.positions[a],
		endID: b, end: s.positions[b],
	}
	if s.initialLine != nil && s.initialLine.startID == a && s.initialLine.endID == b {
		s.currentLine = cur
	} else {
		s.initialLine = cur
		s.currentLine = cur
	}
}

// reconfigure re-baselines the gesture after a pointer or platform
// track was added or removed. If a gesture was in progress it ends
// here, reporting the removed pointer's release velocity; a fresh start
// is notified if pointers keep moving afterwards.
func (s *Scale) reconfigure(ev pointer.Event) {
	s.initialFocal = s.currentFocal
	s.initialSpan = s.currentSpan
	s.initialHSpan = s.currentHSpan
	s.initialVSpan = s.currentVSpan
	s.initialLine = s.currentLine
	s.initialPanZoomScale, s.initialPanZoomRotation = s.panZoomAggregate()
	if s.state == scaleStarted {
		if s.OnEnd != nil {
			s.OnEnd(ScaleEndEvent{
				Velocity:     s.endVelocity(ev.PointerID),
				PointerCount: s.pointerCount(),
			})
		}
		s.state = scaleAccepted
	}
}

func (s *Scale) advance(shouldStart bool, ev pointer.Event) {
	if s.state == scaleReady {
		s.state = scalePossible
	}
	if s.state == scalePossible {
		spanDelta := abs32(s.currentSpan - s.initialSpan)
		focalDelta := dist(s.currentFocal, s.initialFocal)
		if spanDelta > s.cfg.scaleSlopPx(ev.Source) || focalDelta > s.cfg.panSlopPx(ev.Source) {
			s.resolve(true)
		}
	} else if s.state >= scaleAccepted {
		// The gesture is ours; claim joining pointers immediately.
		s.resolvePointer(ev.PointerID, true)
	}
	if s.state == scaleAccepted && shouldStart {
		s.state = scaleStarted
		if s.OnStart != nil {
			s.OnStart(ScaleStartEvent{
				Focal:        s.currentFocal,
				LocalFocal:   s.localFocal,
				PointerCount: s.pointerCount(),
			})
		}
	}
	if s.state == scaleStarted && s.OnUpdate != nil {
		s.OnUpdate(ScaleUpdateEvent{
			Focal:           s.currentFocal,
			LocalFocal:      s.localFocal,
			FocalDelta:      s.delta,
			Scale:           s.scaleFactor(),
			HorizontalScale: s.horizontalScaleFactor(),
			VerticalScale:   s.verticalScaleFactor(),
			Rotation:        s.rotation(),
			PointerCount:    s.pointerCount(),
		})
	}
}

// maybeStartPanZoom promotes a possible platform track to started once
// its own movement is unambiguous, claiming its pointer in the arena.
func (s *Scale) maybeStartPanZoom(ev pointer.Event, p *panZoom) {
	if p.started {
		return
	}
	if s.state >= scaleAccepted {
		s.startPanZoom(p)
		return
	}
	ratio := p.scale
	if ratio != 0 && ratio < 1 {
		ratio = 1 / ratio
	}
	pan := float32(math.Hypot(float64(p.pan.X), float64(p.pan.Y)))
	if ratio > s.cfg.scaleSlopRatio() || pan > s.cfg.panSlopPx(ev.Source) {
		s.startPanZoom(p)
		s.resolvePointer(ev.PointerID, true)
	}
}

func (s *Scale) startPanZoom(p *panZoom) {
	p.started = true
	// Fold the track's pre-start motion into the baseline so the
	// aggregates do not jump when it joins.
	s.initialPanZoomScale *= p.scale
	s.initialPanZoomRotation += p.rotation
}

func (s *Scale) didStopLastPointer() {
	switch s.state {
	case scalePossible:
		s.resolve(false)
	case scaleAccepted:
	default:
		panic("gesture: scale state out of sync")
	}
	s.state = scaleReady
	s.queue = s.queue[:0]
	s.initialLine, s.currentLine = nil, nil
	s.initialPanZoomScale, s.initialPanZoomRotation = 1, 0
	s.delta = f32.Point{}
	s.lastContrib = 0
	s.sawFocal = false
}

// AcceptGesture implements Member. Winning the arena moves the
// recognizer out of the possible state; with the StartAtAccept
// behavior the measurement baseline is recaptured here.
func (s *Scale) AcceptGesture(id pointer.ID) {
	s.forgetEntry(id)
	if s.state != scalePossible {
		return
	}
	s.state = scaleAccepted
	if s.cfg.DragStart == StartAtAccept {
		s.initialFocal = s.currentFocal
		s.initialSpan = s.currentSpan
		s.initialHSpan = s.currentHSpan
		s.initialVSpan = s.currentVSpan
		s.initialLine = s.currentLine
		s.initialPanZoomScale, s.initialPanZoomRotation = s.panZoomAggregate()
	}
	for _, p := range s.panZooms {
		if !p.started {
			s.startPanZoom(p)
		}
	}
}

// RejectGesture implements Member. Losing a pointer tears down its
// tracking state and re-baselines the survivors, exactly as a release
// would, so the aggregates do not jump on the next update.
func (s *Scale) RejectGesture(id pointer.ID) {
	s.forgetEntry(id)
	_, tracked := s.positions[id]
	if !tracked {
		_, tracked = s.panZooms[id]
	}
	delete(s.positions, id)
	delete(s.velocity, id)
	delete(s.panZooms, id)
	s.queue = removeID(s.queue, id)
	if s.stopTracking(id) {
		s.didStopLastPointer()
		return
	}
	if tracked {
		s.update()
		s.reconfigure(pointer.Event{PointerID: id})
	}
}

func (s *Scale) pointerCount() int {
	return len(s.queue) + len(s.panZooms)
}

func (s *Scale) pointerScaleFactor() float32 {
	if s.initialSpan > 0 {
		return s.currentSpan / s.initialSpan
	}
	return 1
}

// panZoomScaleFactor is the combined scale of the started platform
// tracks, relative to the baseline captured at the last
// reconfiguration.
func (s *Scale) panZoomScaleFactor() float32 {
	scale, _ := s.panZoomAggregate()
	return scale / s.initialPanZoomScale
}

func (s *Scale) panZoomAggregate() (scale, rotation float32) {
	scale = 1
	for _, p := range s.panZooms {
		if p.started {
			scale *= p.scale
			rotation += p.rotation
		}
	}
	return scale, rotation
}

func (s *Scale) scaleFactor() float32 {
	return s.pointerScaleFactor() * s.panZoomScaleFactor()
}

func (s *Scale) horizontalScaleFactor() float32 {
	f := float32(1)
	if s.initialHSpan > 0 {
		f = s.currentHSpan / s.initialHSpan
	}
	return f * s.panZoomScaleFactor()
}

func (s *Scale) verticalScaleFactor() float32 {
	f := float32(1)
	if s.initialVSpan > 0 {
		f = s.currentVSpan / s.initialVSpan
	}
	return f * s.panZoomScaleFactor()
}

func (s *Scale) rotation() float32 {
	var angle float32
	if s.initialLine != nil && s.currentLine != nil &&
		s.initialLine.startID == s.currentLine.startID &&
		s.initialLine.endID == s.currentLine.endID {
		angle = s.currentLine.angle() - s.initialLine.angle()
	}
	_, pz := s.panZoomAggregate()
	return angle + pz - s.initialPanZoomRotation
}

func (s *Scale) endVelocity(id pointer.ID) f32.Point {
	vt := s.velocity[id]
	if vt == nil {
		return f32.Point{}
	}
	v := vt.velocity()
	speed := float32(math.Hypot(float64(v.X), float64(v.Y)))
	if speed <= s.cfg.minFlingPx() {
		return f32.Point{}
	}
	if max := s.cfg.maxFlingPx(); speed > max {
		return v.Mul(max / speed)
	}
	return v
}

func removeID(ids []pointer.ID, id pointer.ID) []pointer.ID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func dist(a, b f32.Point) float32 {
	d := a.Sub(b)
	return float32(math.Hypot(float64(d.X), float64(d.Y)))
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
