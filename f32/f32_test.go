// SPDX-License-Identifier: Unlicense OR MIT

package f32

import "testing"

func rect(x0, y0, x1, y1 float32) Rectangle {
	return Rectangle{Min: Pt(x0, y0), Max: Pt(x1, y1)}
}

func TestRectangleSize(t *testing.T) {
	r := rect(2, 3, 10, 8)
	if got := r.Size(); got != Pt(8, 5) {
		t.Errorf("Size() = %v, want (8,5)", got)
	}
	if r.Dx() != 8 || r.Dy() != 5 {
		t.Errorf("Dx, Dy = %v, %v, want 8, 5", r.Dx(), r.Dy())
	}
}

func TestRectangleIntersect(t *testing.T) {
	tests := []struct {
		name string
		r, s Rectangle
		want Rectangle
	}{
		{"overlap", rect(0, 0, 10, 10), rect(5, 5, 20, 20), rect(5, 5, 10, 10)},
		{"contained", rect(0, 0, 10, 10), rect(2, 2, 4, 4), rect(2, 2, 4, 4)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.r.Intersect(tc.s); got != tc.want {
				t.Errorf("Intersect = %v, want %v", got, tc.want)
			}
		})
	}
	if got := rect(0, 0, 10, 10).Intersect(rect(20, 20, 30, 30)); !got.Empty() {
		t.Errorf("disjoint intersection %v not empty", got)
	}
}

func TestRectangleUnion(t *testing.T) {
	got := rect(0, 0, 10, 10).Union(rect(5, -5, 20, 8))
	if want := rect(0, -5, 20, 10); got != want {
		t.Errorf("Union = %v, want %v", got, want)
	}
}

func TestRectangleCanon(t *testing.T) {
	got := Rectangle{Min: Pt(10, 8), Max: Pt(2, 3)}.Canon()
	if want := rect(2, 3, 10, 8); got != want {
		t.Errorf("Canon = %v, want %v", got, want)
	}
}

func TestRectangleOffset(t *testing.T) {
	r := rect(0, 0, 4, 2)
	if got := r.Add(Pt(3, 5)); got != rect(3, 5, 7, 7) {
		t.Errorf("Add = %v, want (3,5)-(7,7)", got)
	}
	if got := r.Add(Pt(3, 5)).Sub(Pt(3, 5)); got != r {
		t.Errorf("Sub = %v, want %v", got, r)
	}
}
