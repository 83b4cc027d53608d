package renderer

import "math"

// Triangle is three corners in pixel space.
type Triangle [3]Point

// Mesher thickens a polyline into triangles. Line primitives cap out at a
// driver-dependent width and leave notches at every corner, so strokes are
// triangulated by hand with a rounded fan at each joint.
type Mesher struct {
	Thickness   float64
	MaxSegments int // Fan segments for a full reversal; straight joints use 1
}

// Build appends the stroke of points to dst[:0] and returns it. For every
// interior point it emits the joint fan followed by the quad covering the
// incoming segment. A final quad covers the last segment. Fewer than three
// points produce no triangles.
func (m Mesher) Build(points []Point, dst []Triangle) []Triangle {
	dst = dst[:0]
	if len(points) < 3 {
		return dst
	}

	half := m.Thickness * 0.5
	maxSegments := max(m.MaxSegments, 1)

	prev, curr := points[0], points[1]
	lastDir := Point{1, 0}

	for i := 1; i < len(points)-1; i++ {
		next := points[i+1]

		l1 := normalizeOr(next.Sub(curr), lastDir)
		l2 := normalizeOr(curr.Sub(prev), l1)
		lastDir = l1
		n1 := l1.Perp()
		n2 := l2.Perp()

		if n1.Dot(l2) < 0 {
			n1 = n1.Neg()
			n2 = n2.Neg()
		}

		segments := int(math.Ceil((1 - (1+n1.Dot(n2))*0.5) * float64(maxSegments)))
		if segments < 1 {
			segments = 1
		}

		// Fan from n1 to n2 by normalized lerp. A full reversal passes
		// through the zero vector at the midpoint; bulge forward there.
		invSegment := 1.0 / float64(segments)
		s2 := n1
		for k := 1; k <= segments; k++ {
			s := invSegment * float64(k)
			s1 := s2
			s2 = normalizeOr(n1.Scale(1-s).Add(n2.Scale(s)), l2)

			dst = append(dst, Triangle{
				curr,
				curr.Add(s1.Scale(half)),
				curr.Add(s2.Scale(half)),
			})
		}

		dst = appendQuad(dst, prev, curr, n2.Scale(half))

		prev = curr
		curr = next
	}

	// The per-joint loop never reaches the last segment
	last := normalizeOr(curr.Sub(prev), lastDir)
	dst = appendQuad(dst, prev, curr, last.Perp().Scale(half))

	return dst
}

// appendQuad emits the two triangles of the rectangle from a to b offset by
// ±off.
func appendQuad(dst []Triangle, a, b, off Point) []Triangle {
	return append(dst,
		Triangle{a.Add(off), a.Sub(off), b.Add(off)},
		Triangle{a.Sub(off), b.Add(off), b.Sub(off)},
	)
}

// normalizeOr returns v scaled to unit length, or fallback when v has no
// direction.
func normalizeOr(v, fallback Point) Point {
	l := v.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return fallback
	}
	return v.Scale(1 / l)
}
