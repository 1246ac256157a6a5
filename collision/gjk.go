package collision

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Constants for GJK iteration control
const (
	// gjkMaxIterations bounds both the boolean and the distance loop
	gjkMaxIterations = 64
	// gjkTolerance is the squared-length threshold below which the support
	// point is considered to be at the origin
	gjkTolerance = 1e-10
)

// minkowskiSupport evaluates the support of the Minkowski difference A - B.
func minkowskiSupport(a Convex, poseA Pose, b Convex, poseB Pose, dir mgl64.Vec2) mgl64.Vec2 {
	return SupportAt(a, poseA, dir).Sub(SupportAt(b, poseB, dir.Mul(-1)))
}

// perpToward returns the perpendicular of v pointing toward target.
func perpToward(v, target mgl64.Vec2) mgl64.Vec2 {
	p := mgl64.Vec2{-v[1], v[0]}
	if p.Dot(target) < 0 {
		return p.Mul(-1)
	}
	return p
}

// Intersect reports whether the two posed convex shapes overlap. Shapes that
// merely touch (zero penetration) may report either result depending on
// rounding; callers needing a guaranteed margin should inflate a shape.
func Intersect(a Convex, poseA Pose, b Convex, poseB Pose) bool {
	dir := poseB.Position.Sub(poseA.Position)
	if dir.LenSqr() < gjkTolerance {
		dir = mgl64.Vec2{1, 0}
	}

	s := minkowskiSupport(a, poseA, b, poseB, dir)
	simplex := []mgl64.Vec2{s}
	dir = s.Mul(-1)

	for i := 0; i < gjkMaxIterations; i++ {
		if dir.LenSqr() < gjkTolerance {
			// The origin sits on the current simplex boundary.
			return true
		}

		p := minkowskiSupport(a, poseA, b, poseB, dir)
		if p.Dot(dir) < 0 {
			return false
		}
		simplex = append(simplex, p)

		var contains bool
		simplex, dir, contains = nextSimplex(simplex)
		if contains {
			return true
		}
	}

	// Did not converge; treat as non-overlapping.
	return false
}

// nextSimplex reduces the simplex toward the origin and picks the next
// search direction. Returns contains=true once the simplex encloses the
// origin.
func nextSimplex(simplex []mgl64.Vec2) ([]mgl64.Vec2, mgl64.Vec2, bool) {
	switch len(simplex) {
	case 2:
		a, b := simplex[1], simplex[0]
		ab := b.Sub(a)
		ao := a.Mul(-1)
		if ab.Dot(ao) > 0 {
			return simplex, perpToward(ab, ao), false
		}
		return []mgl64.Vec2{a}, ao, false

	case 3:
		a := simplex[2]
		b := simplex[1]
		c := simplex[0]
		ab := b.Sub(a)
		ac := c.Sub(a)
		ao := a.Mul(-1)

		abPerp := perpToward(ab, ac.Mul(-1))
		if abPerp.Dot(ao) > 0 {
			return []mgl64.Vec2{b, a}, abPerp, false
		}

		acPerp := perpToward(ac, ab.Mul(-1))
		if acPerp.Dot(ao) > 0 {
			return []mgl64.Vec2{c, a}, acPerp, false
		}

		return simplex, mgl64.Vec2{}, true
	}

	// Single point: search toward the origin.
	return simplex, simplex[0].Mul(-1), false
}

// Distance returns the separation distance between the two posed convex
// shapes. Overlapping or touching shapes return 0.
func Distance(a Convex, poseA Pose, b Convex, poseB Pose) float64 {
	dir := poseA.Position.Sub(poseB.Position)
	if dir.LenSqr() < gjkTolerance {
		dir = mgl64.Vec2{1, 0}
	}

	simplex := []mgl64.Vec2{minkowskiSupport(a, poseA, b, poseB, dir)}

	for i := 0; i < gjkMaxIterations; i++ {
		var v mgl64.Vec2
		var inside bool
		simplex, v, inside = closestOnSimplex(simplex)
		if inside {
			return 0
		}

		vLen := v.Len()
		if vLen*vLen < gjkTolerance {
			return 0
		}

		w := minkowskiSupport(a, poseA, b, poseB, v.Mul(-1))

		// Converged when the new support cannot move the closest point
		// meaningfully closer to the origin.
		if vLen-w.Dot(v)/vLen < 1e-9 {
			return vLen
		}
		simplex = append(simplex, w)
	}

	// Fall back to the best estimate on iteration exhaustion.
	_, v, inside := closestOnSimplex(simplex)
	if inside {
		return 0
	}
	return v.Len()
}

// closestOnSimplex finds the point of the simplex closest to the origin,
// discarding simplex vertices that do not contribute. inside=true means the
// simplex (a triangle) contains the origin.
func closestOnSimplex(simplex []mgl64.Vec2) ([]mgl64.Vec2, mgl64.Vec2, bool) {
	switch len(simplex) {
	case 1:
		return simplex, simplex[0], false

	case 2:
		p, keep := closestOnSegment(simplex[0], simplex[1])
		return keep, p, false

	case 3:
		a, b, c := simplex[0], simplex[1], simplex[2]

		// Barycentric test for origin containment.
		d1 := cross2(b.Sub(a), a.Mul(-1))
		d2 := cross2(c.Sub(b), b.Mul(-1))
		d3 := cross2(a.Sub(c), c.Mul(-1))
		if (d1 >= 0 && d2 >= 0 && d3 >= 0) || (d1 <= 0 && d2 <= 0 && d3 <= 0) {
			return simplex, mgl64.Vec2{}, true
		}

		// Otherwise the closest feature is one of the three edges.
		pab, kab := closestOnSegment(a, b)
		pbc, kbc := closestOnSegment(b, c)
		pca, kca := closestOnSegment(c, a)

		best, keep := pab, kab
		if pbc.LenSqr() < best.LenSqr() {
			best, keep = pbc, kbc
		}
		if pca.LenSqr() < best.LenSqr() {
			best, keep = pca, kca
		}
		return keep, best, false
	}

	return simplex, mgl64.Vec2{}, false
}

// closestOnSegment projects the origin onto segment ab, returning the
// closest point and the vertices that support it.
func closestOnSegment(a, b mgl64.Vec2) (mgl64.Vec2, []mgl64.Vec2) {
	ab := b.Sub(a)
	denom := ab.LenSqr()
	if denom < gjkTolerance {
		return a, []mgl64.Vec2{a}
	}
	t := -a.Dot(ab) / denom
	if t <= 0 {
		return a, []mgl64.Vec2{a}
	}
	if t >= 1 {
		return b, []mgl64.Vec2{b}
	}
	return a.Add(ab.Mul(t)), []mgl64.Vec2{a, b}
}

func cross2(a, b mgl64.Vec2) float64 {
	return a[0]*b[1] - a[1]*b[0]
}
