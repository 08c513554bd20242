// SPDX-License-Identifier: Unlicense OR MIT

// Command gesturepad is an interactive playground for the gesture
// recognizers, rendered in the terminal. Drag on the canvas to pan,
// scroll to pan vertically, control-scroll to zoom and alt-scroll to
// rotate; press and slide across the toolbar to pick an entry. The
// status line reports the live gesture state.
package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"touchkit.org/f32"
	"touchkit.org/gesture"
	"touchkit.org/io/pointer"
)

const (
	// wheelZoomStep is the scale factor of one wheel tick while
	// control is held.
	wheelZoomStep = 1.1
	// wheelRotStep is the rotation, in radians, of one wheel tick
	// while alt is held.
	wheelRotStep = 0.1
	// wheelScrollCells is the pan distance of one wheel tick.
	wheelScrollCells = 2
	// wheelIdleTimeout ends the synthetic wheel track after a quiet
	// period.
	wheelIdleTimeout = 300 * time.Millisecond

	toolbarRow = 0
	gridStep   = 6
)

// toolItem is a toolbar entry and a slide selection target.
type toolItem struct {
	label    string
	bounds   f32.Rectangle
	hot      bool
	chosenAt time.Time
	onChoose func()
}

func (t *toolItem) Entered() { t.hot = true }
func (t *toolItem) Left()    { t.hot = false }

func (t *toolItem) Confirmed() {
	t.hot = false
	t.chosenAt = time.Now()
	if t.onChoose != nil {
		t.onChoose()
	}
}

type pad struct {
	screen        tcell.Screen
	width, height int
	start         time.Time

	hub     gesture.Hub
	scale   *gesture.Scale
	slide   *gesture.SlideSelection
	tools   []*toolItem
	toolbar f32.Rectangle

	// Viewport driven by the scale gesture.
	offset   f32.Point
	zoom     float32
	rotation float32
	baseZoom float32
	baseRot  float32

	active bool
	focal  f32.Point
	fling  f32.Point

	// Mouse pointer state: tcell reports button bitmasks, not edges.
	nextID   pointer.ID
	mouseID  pointer.ID
	dragging bool

	wheelID   pointer.ID
	wheelOn   bool
	wheelPos  f32.Point
	wheelPan  f32.Point
	wheelZoom float32
	wheelRot  float32
	wheelLast time.Time
}

func newPad() (*pad, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()

	p := &pad{
		screen: screen,
		start:  time.Now(),
		zoom:   1,
	}
	p.width, p.height = screen.Size()
	p.offset = f32.Pt(float32(p.width)/2, float32(p.height)/2)

	p.scale = gesture.NewScale(&p.hub, gesture.Config{})
	p.scale.OnStart = func(ev gesture.ScaleStartEvent) {
		p.active = true
		p.baseZoom = p.zoom
		p.baseRot = p.rotation
		p.focal = ev.Focal
	}
	p.scale.OnUpdate = func(ev gesture.ScaleUpdateEvent) {
		newZoom := p.baseZoom * ev.Scale
		// Zoom about the focal point, then follow it.
		if p.zoom != 0 {
			k := newZoom / p.zoom
			p.offset = ev.Focal.Add(p.offset.Sub(ev.Focal).Mul(k))
		}
		p.zoom = newZoom
		p.offset = p.offset.Add(ev.FocalDelta)
		p.rotation = p.baseRot + ev.Rotation
		p.focal = ev.Focal
	}
	p.scale.OnEnd = func(ev gesture.ScaleEndEvent) {
		p.active = false
		p.fling = ev.Velocity
	}

	for _, label := range []string{"alpha", "beta", "gamma", "reset"} {
		p.tools = append(p.tools, &toolItem{label: label})
	}
	p.tools[len(p.tools)-1].onChoose = p.resetView
	p.layoutToolbar()
	p.slide = gesture.NewSlideSelection(&p.hub, p.hitToolbar, gesture.Config{})

	return p, nil
}

func (p *pad) layoutToolbar() {
	x := float32(1)
	p.toolbar = f32.Rectangle{}
	for i, t := range p.tools {
		cell := f32.Rectangle{Max: f32.Pt(float32(len(t.label)+2), 1)}
		t.bounds = cell.Add(f32.Pt(x, toolbarRow))
		if i == 0 {
			p.toolbar = t.bounds
		} else {
			p.toolbar = p.toolbar.Union(t.bounds)
		}
		x += t.bounds.Dx() + 1
	}
}

func contains(r f32.Rectangle, pos f32.Point) bool {
	return pos.X >= r.Min.X && pos.X < r.Max.X &&
		pos.Y >= r.Min.Y && pos.Y < r.Max.Y
}

func (p *pad) hitToolbar(pos f32.Point) []gesture.SlideTarget {
	for _, t := range p.tools {
		if contains(t.bounds, pos) {
			return []gesture.SlideTarget{t}
		}
	}
	return nil
}

func (p *pad) resetView() {
	p.offset = f32.Pt(float32(p.width)/2, float32(p.height)/2)
	p.zoom = 1
	p.rotation = 0
	p.fling = f32.Point{}
}

func (p *pad) now() time.Duration {
	return time.Since(p.start)
}

func (p *pad) allocID() pointer.ID {
	p.nextID++
	if p.nextID == 0 {
		p.nextID = 1
	}
	return p.nextID
}

func (p *pad) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	pos := f32.Pt(float32(x), float32(y))
	buttons := ev.Buttons()

	if wheel := buttons & tcell.WheelUp; wheel != 0 || buttons&tcell.WheelDown != 0 {
		dir := float32(1)
		if wheel == 0 {
			dir = -1
		}
		p.handleWheel(pos, dir, ev.Modifiers())
		return
	}

	pressed := buttons&tcell.Button1 != 0
	switch {
	case pressed && !p.dragging:
		p.dragging = true
		p.mouseID = p.allocID()
		down := pointer.Event{
			Kind:      pointer.Press,
			Source:    pointer.Mouse,
			PointerID: p.mouseID,
			Time:      p.now(),
			Buttons:   pointer.ButtonPrimary,
			Position:  pos,
		}
		// The toolbar belongs to the slide selection, the canvas to
		// the scale gesture.
		if contains(p.toolbar, pos) {
			p.hub.Offer(down, p.slide)
		} else {
			p.hub.Offer(down, p.scale)
		}
	case pressed && p.dragging:
		p.hub.Dispatch(pointer.Event{
			Kind:      pointer.Move,
			Source:    pointer.Mouse,
			PointerID: p.mouseID,
			Time:      p.now(),
			Buttons:   pointer.ButtonPrimary,
			Position:  pos,
		})
	case !pressed && p.dragging:
		p.dragging = false
		p.hub.Dispatch(pointer.Event{
			Kind:      pointer.Release,
			Source:    pointer.Mouse,
			PointerID: p.mouseID,
			Time:      p.now(),
			Position:  pos,
		})
	}
}

// handleWheel folds wheel ticks into a synthetic trackpad track: plain
// scrolling pans, control zooms, alt rotates.
func (p *pad) handleWheel(pos f32.Point, dir float32, mods tcell.ModMask) {
	if !p.wheelOn {
		p.wheelOn = true
		p.wheelID = p.allocID()
		p.wheelPos = pos
		p.wheelPan = f32.Point{}
		p.wheelZoom = 1
		p.wheelRot = 0
		p.hub.Offer(pointer.Event{
			Kind:      pointer.PanZoomStart,
			Source:    pointer.Trackpad,
			PointerID: p.wheelID,
			Time:      p.now(),
			Position:  pos,
		}, p.scale)
	}
	p.wheelLast = time.Now()
	switch {
	case mods&tcell.ModCtrl != 0:
		if dir > 0 {
			p.wheelZoom *= wheelZoomStep
		} else {
			p.wheelZoom /= wheelZoomStep
		}
	case mods&tcell.ModAlt != 0:
		p.wheelRot += dir * wheelRotStep
	default:
		p.wheelPan.Y += dir * wheelScrollCells
	}
	p.hub.Dispatch(pointer.Event{
		Kind:      pointer.PanZoomUpdate,
		Source:    pointer.Trackpad,
		PointerID: p.wheelID,
		Time:      p.now(),
		Position:  p.wheelPos,
		Pan:       p.wheelPan,
		Scale:     p.wheelZoom,
		Rotation:  p.wheelRot,
	})
}

func (p *pad) expireWheel() {
	if !p.wheelOn || time.Since(p.wheelLast) < wheelIdleTimeout {
		return
	}
	p.wheelOn = false
	p.hub.Dispatch(pointer.Event{
		Kind:      pointer.PanZoomEnd,
		Source:    pointer.Trackpad,
		PointerID: p.wheelID,
		Time:      p.now(),
		Position:  p.wheelPos,
	})
}

func (p *pad) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Rune() == 'q':
			return false
		case ev.Rune() == 'r':
			p.resetView()
		}
	case *tcell.EventMouse:
		p.handleMouse(ev)
	case *tcell.EventResize:
		p.width, p.height = p.screen.Size()
		p.screen.Sync()
	}
	return true
}

func (p *pad) drawText(x, y int, style tcell.Style, s string) {
	for _, r := range s {
		p.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (p *pad) draw() {
	p.screen.Clear()

	// World grid, transformed by the gesture driven viewport.
	marker := tcell.StyleDefault.Foreground(tcell.ColorGray)
	sin := float32(math.Sin(float64(p.rotation)))
	cos := float32(math.Cos(float64(p.rotation)))
	for wy := -60; wy <= 60; wy += gridStep {
		for wx := -120; wx <= 120; wx += gridStep {
			rx := cos*float32(wx) - sin*float32(wy)
			ry := sin*float32(wx) + cos*float32(wy)
			sx := int(rx*p.zoom + p.offset.X)
			sy := int(ry*p.zoom/2 + p.offset.Y)
			if sx < 0 || sx >= p.width || sy <= toolbarRow+1 || sy >= p.height-1 {
				continue
			}
			r := '·'
			if wx == 0 && wy == 0 {
				r = 'O'
			}
			p.screen.SetContent(sx, sy, r, nil, marker)
		}
	}

	if p.active {
		fx, fy := int(p.focal.X), int(p.focal.Y)
		if fx >= 0 && fx < p.width && fy > toolbarRow && fy < p.height-1 {
			p.screen.SetContent(fx, fy, 'X', nil,
				tcell.StyleDefault.Foreground(tcell.ColorRed))
		}
	}

	// Toolbar, clipped to the screen on narrow terminals.
	screenRect := f32.Rectangle{Max: f32.Pt(float32(p.width), float32(p.height))}
	for _, t := range p.tools {
		vis := t.bounds.Intersect(screenRect)
		if vis.Empty() {
			continue
		}
		style := tcell.StyleDefault
		switch {
		case t.hot:
			style = style.Reverse(true)
		case time.Since(t.chosenAt) < 500*time.Millisecond:
			style = style.Foreground(tcell.ColorGreen).Bold(true)
		}
		label := " " + t.label + " "
		if w := int(vis.Dx()); w < len(label) {
			label = label[:w]
		}
		p.drawText(int(vis.Min.X), toolbarRow, style, label)
	}

	status := fmt.Sprintf("zoom %.2f  rot %.2f  offset (%.0f,%.0f)  fling (%.0f,%.0f)  q quits",
		p.zoom, p.rotation, p.offset.X, p.offset.Y, p.fling.X, p.fling.Y)
	if len(status) > p.width {
		status = status[:p.width]
	}
	p.drawText(0, p.height-1, tcell.StyleDefault.Reverse(true), status)

	p.screen.Show()
}

func (p *pad) run() {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			events <- p.screen.PollEvent()
		}
	}()

	for {
		select {
		case ev := <-events:
			if !p.handleInput(ev) {
				return
			}
		case <-ticker.C:
			p.expireWheel()
			p.draw()
		}
	}
}

func main() {
	p, err := newPad()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gesturepad: %v\n", err)
		os.Exit(1)
	}
	defer p.screen.Fini()
	p.run()
}
