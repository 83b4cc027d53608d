package renderer

import (
	"fmt"
	"math"
	"testing"
)

const coverEps = 1e-6

func pointInTriangle(p Point, tri Triangle) bool {
	d1 := tri[1].Sub(tri[0]).Cross(p.Sub(tri[0]))
	d2 := tri[2].Sub(tri[1]).Cross(p.Sub(tri[1]))
	d3 := tri[0].Sub(tri[2]).Cross(p.Sub(tri[2]))
	hasNeg := d1 < -coverEps || d2 < -coverEps || d3 < -coverEps
	hasPos := d1 > coverEps || d2 > coverEps || d3 > coverEps
	return !(hasNeg && hasPos)
}

func covered(p Point, tris []Triangle) bool {
	for _, tri := range tris {
		if pointInTriangle(p, tri) {
			return true
		}
	}
	return false
}

func assertFinite(t *testing.T, tris []Triangle) {
	t.Helper()
	for i, tri := range tris {
		for _, v := range tri {
			if !v.finite() {
				t.Fatalf("triangle %d has non-finite vertex %+v", i, v)
			}
		}
	}
}

func TestMeshTooFewPoints(t *testing.T) {
	m := Mesher{Thickness: 4, MaxSegments: 8}
	for n := 0; n < 3; n++ {
		pts := make([]Point, n)
		for i := range pts {
			pts[i] = Point{float64(i) * 10, 0}
		}
		if tris := m.Build(pts, nil); len(tris) != 0 {
			t.Errorf("%d points: got %d triangles, want 0", n, len(tris))
		}
	}
}

// TestMeshTriangleCounts pins the fan resolution for straight, right-angle
// and reversing joints.
func TestMeshTriangleCounts(t *testing.T) {
	m := Mesher{Thickness: 4, MaxSegments: 8}

	tests := []struct {
		name   string
		points []Point
		want   int
	}{
		{
			name:   "straight",
			points: []Point{{0, 0}, {10, 0}, {20, 0}, {30, 0}, {40, 0}},
			want:   3*3 + 2, // one fan triangle and one quad per joint
		},
		{
			name:   "right angle",
			points: []Point{{0, 0}, {20, 0}, {20, 20}},
			want:   4 + 2 + 2,
		},
		{
			name:   "reversal",
			points: []Point{{0, 0}, {20, 0}, {0, 0}},
			want:   8 + 2 + 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tris := m.Build(tt.points, nil)
			if len(tris) != tt.want {
				t.Errorf("got %d triangles, want %d", len(tris), tt.want)
			}
			assertFinite(t, tris)
		})
	}
}

// TestMeshCoversJoints sweeps turn angles in both directions and checks that
// the stroke encloses every vertex, the body of each segment, and a disc
// around the joint.
func TestMeshCoversJoints(t *testing.T) {
	m := Mesher{Thickness: 4, MaxSegments: 8}
	half := m.Thickness / 2

	for deg := 1; deg <= 180; deg += 7 {
		for _, sign := range []float64{1, -1} {
			phi := float64(deg) * math.Pi / 180 * sign
			t.Run(fmt.Sprintf("%+.0f", float64(deg)*sign), func(t *testing.T) {
				p0 := Point{0, 0}
				p1 := Point{20, 0}
				p2 := p1.Add(Point{math.Cos(phi), math.Sin(phi)}.Scale(20))
				pts := []Point{p0, p1, p2}

				tris := m.Build(pts, nil)
				assertFinite(t, tris)

				for _, p := range pts {
					if !covered(p, tris) {
						t.Errorf("vertex %+v not covered", p)
					}
				}

				// Segment bodies, offset to either side
				for s := 0; s < len(pts)-1; s++ {
					a, b := pts[s], pts[s+1]
					dir := normalizeOr(b.Sub(a), Point{1, 0})
					n := dir.Perp()
					for _, f := range []float64{0.1, 0.5, 0.9} {
						on := a.Add(b.Sub(a).Scale(f))
						for _, off := range []float64{-0.9, 0, 0.9} {
							q := on.Add(n.Scale(off * half))
							if !covered(q, tris) {
								t.Errorf("segment %d point %+v not covered", s, q)
							}
						}
					}
				}

				// Joint: the fan chords never cut deeper than cos(45deg)
				for k := 0; k < 72; k++ {
					a := float64(k) * 2 * math.Pi / 72
					q := p1.Add(Point{math.Cos(a), math.Sin(a)}.Scale(0.6 * half))
					if !covered(q, tris) {
						t.Errorf("joint gap at angle %d: %+v", k*5, q)
					}
				}
			})
		}
	}
}

func TestMeshCoincidentPoints(t *testing.T) {
	m := Mesher{Thickness: 4, MaxSegments: 8}

	cases := [][]Point{
		{{0, 0}, {0, 0}, {0, 0}},
		{{0, 0}, {0, 0}, {0, 0}, {5, 5}},
		{{3, 3}, {7, 1}, {7, 1}, {7, 1}, {9, 4}},
	}

	for i, pts := range cases {
		tris := m.Build(pts, nil)
		if len(tris) == 0 {
			t.Errorf("case %d: no triangles", i)
		}
		assertFinite(t, tris)
	}
}

func TestMeshSegmentsClamp(t *testing.T) {
	// MaxSegments below 1 still produces a fan triangle per joint
	m := Mesher{Thickness: 4, MaxSegments: 0}
	tris := m.Build([]Point{{0, 0}, {10, 0}, {10, 10}}, nil)
	if len(tris) != 1+2+2 {
		t.Errorf("got %d triangles, want 5", len(tris))
	}
}

func TestMeshReusesBuffer(t *testing.T) {
	m := Mesher{Thickness: 4, MaxSegments: 8}
	pts := []Point{{0, 0}, {10, 0}, {20, 0}}

	buf := make([]Triangle, 0, 64)
	tris := m.Build(pts, buf)
	if &tris[0] != &buf[:1][0] {
		t.Error("Build did not reuse the provided buffer")
	}

	again := m.Build(pts, tris)
	if len(again) != len(tris) {
		t.Errorf("second build has %d triangles, want %d", len(again), len(tris))
	}
}
