// SPDX-License-Identifier: Unlicense OR MIT

// Package fling estimates pointer velocities from a bounded history of
// timestamped positions.
package fling

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Extrapolation computes a 1-dimensional velocity estimate
// from a window of timestamped positions.
type Extrapolation struct {
	samples []sample
}

// Estimate is the result of an extrapolation.
type Estimate struct {
	// Velocity is the estimated velocity, in units per second,
	// at the time of the newest sample.
	Velocity float32
	// Distance is the distance covered by the sample window.
	Distance float32
}

type sample struct {
	t time.Duration
	v float32
}

type matrix struct {
	rows, cols int
	data       []float32
}

type coefficients [degree + 1]float32

const (
	// Degree of the fitted polynomial.
	degree = 2
	// historySize is the maximum number of retained samples.
	historySize = 20
	// maxAge of samples used for the fit.
	maxAge = 100 * time.Millisecond
	// maxSampleGap is the largest gap between samples before the
	// history is considered stale and discarded.
	maxSampleGap = 40 * time.Millisecond
)

// Sample adds a position to the estimation. Samples must arrive in time
// order.
func (e *Extrapolation) Sample(t time.Duration, v float32) {
	if n := len(e.samples); n > 0 {
		last := e.samples[n-1]
		if t < last.t {
			panic("fling: samples out of order")
		}
		if t-last.t > maxSampleGap {
			e.samples = e.samples[:0]
		}
	}
	e.samples = append(e.samples, sample{t: t, v: v})
	cutoff := t - maxAge
	first := 0
	for first < len(e.samples) && e.samples[first].t < cutoff {
		first++
	}
	if overflow := len(e.samples) - first - historySize; overflow > 0 {
		first += overflow
	}
	if first > 0 {
		e.samples = append(e.samples[:0], e.samples[first:]...)
	}
}

// Estimate returns the velocity and distance implied by the sampled
// positions, or the zero Estimate if there is not enough history.
func (e *Extrapolation) Estimate() Estimate {
	if len(e.samples) < 2 {
		return Estimate{}
	}
	first := e.samples[0]
	last := e.samples[len(e.samples)-1]
	dist := last.v - first.v
	if len(e.samples) > degree {
		// Fit a polynomial to the samples, with time relative to the
		// newest sample so its derivative at 0 is the end velocity.
		X := make([]float32, len(e.samples))
		Y := make([]float32, len(e.samples))
		for i, s := range e.samples {
			X[i] = float32((s.t - last.t).Seconds())
			Y[i] = s.v
		}
		if coef, ok := polyFit(X, Y); ok {
			return Estimate{
				Velocity: coef[1],
				Distance: dist,
			}
		}
	}
	dt := float32((last.t - first.t).Seconds())
	if dt == 0 {
		return Estimate{}
	}
	return Estimate{
		Velocity: dist / dt,
		Distance: dist,
	}
}

// polyFit computes the least squares polynomial fit of degree 2 for the
// points (X[i], Y[i]). It reports failure if the fit is singular, which
// happens when the sample times are degenerate.
func polyFit(X, Y []float32) (coefficients, bool) {
	if len(X) != len(Y) {
		panic("fling: X and Y lengths differ")
	}
	if len(X) <= degree {
		return coefficients{}, false
	}
	// Vandermonde matrix of the sample times.
	v := newMatrix(len(X), degree+1)
	for i, x := range X {
		pow := float32(1)
		for j := 0; j <= degree; j++ {
			v.set(i, j, pow)
			pow *= x
		}
	}
	q, rt, ok := decomposeQR(v)
	if !ok {
		return coefficients{}, false
	}
	// Solve R*c = transpose(Q)*Y by back substitution. R is stored
	// transposed, so R[i][j] is rt[j][i].
	var c coefficients
	for i := degree; i >= 0; i-- {
		var sum float32
		for r := 0; r < q.rows; r++ {
			sum += q.get(r, i) * Y[r]
		}
		for j := i + 1; j <= degree; j++ {
			sum -= rt.get(j, i) * c[j]
		}
		d := rt.get(i, i)
		if d == 0 {
			return coefficients{}, false
		}
		c[i] = sum / d
	}
	return c, true
}

// decomposeQR computes and returns Q, transpose(R) from the QR
// decomposition of m, using modified Gram-Schmidt orthogonalization.
// The columns of Q are orthonormal and R is upper triangular.
func decomposeQR(m *matrix) (*matrix, *matrix, bool) {
	q := newMatrix(m.rows, m.cols)
	rt := newMatrix(m.cols, m.cols)
	work := make([]float32, m.rows)
	for j := 0; j < m.cols; j++ {
		for r := 0; r < m.rows; r++ {
			work[r] = m.get(r, j)
		}
		for i := 0; i < j; i++ {
			var dot float32
			for r := 0; r < m.rows; r++ {
				dot += q.get(r, i) * work[r]
			}
			rt.set(j, i, dot)
			for r := 0; r < m.rows; r++ {
				work[r] -= dot * q.get(r, i)
			}
		}
		var norm float32
		for _, w := range work {
			norm += w * w
		}
		norm = float32(math.Sqrt(float64(norm)))
		if norm == 0 || math.IsNaN(float64(norm)) || math.IsInf(float64(norm), 0) {
			return nil, nil, false
		}
		rt.set(j, j, norm)
		for r := 0; r < m.rows; r++ {
			q.set(r, j, work[r]/norm)
		}
	}
	return q, rt, true
}

func newMatrix(rows, cols int) *matrix {
	return &matrix{
		rows: rows, cols: cols,
		data: make([]float32, rows*cols),
	}
}

func (m *matrix) get(r, c int) float32 {
	return m.data[r*m.cols+c]
}

func (m *matrix) set(r, c int, v float32) {
	m.data[r*m.cols+c] = v
}

func (m *matrix) transpose() *matrix {
	t := newMatrix(m.cols, m.rows)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			t.set(c, r, m.get(r, c))
		}
	}
	return t
}

func (m *matrix) mul(m2 *matrix) *matrix {
	if m.cols != m2.rows {
		panic("fling: matrix dimension mismatch")
	}
	r := newMatrix(m.rows, m2.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m2.cols; j++ {
			var sum float32
			for k := 0; k < m.cols; k++ {
				sum += m.get(i, k) * m2.get(k, j)
			}
			r.set(i, j, sum)
		}
	}
	return r
}

func (m *matrix) approxEqual(m2 *matrix) bool {
	if m.rows != m2.rows || m.cols != m2.cols {
		return false
	}
	for i, v := range m.data {
		if !approxEqual(v, m2.data[i]) {
			return false
		}
	}
	return true
}

func (c coefficients) approxEqual(c2 coefficients) bool {
	for i, v := range c {
		if !approxEqual(v, c2[i]) {
			return false
		}
	}
	return true
}

func approxEqual(a, b float32) bool {
	const tol = 1e-3
	scale := float32(1)
	if abs := float32(math.Abs(float64(a))); abs > scale {
		scale = abs
	}
	if abs := float32(math.Abs(float64(b))); abs > scale {
		scale = abs
	}
	return float32(math.Abs(float64(a-b))) <= tol*scale
}

func (m *matrix) String() string {
	var b strings.Builder
	for r := 0; r < m.rows; r++ {
		b.WriteString("[")
		for c := 0; c < m.cols; c++ {
			if c > 0 {
				b.WriteString(" ")
			}
			b.WriteString(strconv.FormatFloat(float64(m.get(r, c)), 'g', 6, 32))
		}
		b.WriteString("]\n")
	}
	return b.String()
}

func (c coefficients) String() string {
	var b strings.Builder
	b.WriteString("[")
	for i, v := range c {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'g', 6, 32))
	}
	b.WriteString("]")
	return b.String()
}
