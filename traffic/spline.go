package traffic

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Sunshengjin/rmf-core/collision"
)

// Numeric tolerances of the spline evaluator. Callers tuning the extrema
// search can override the discriminant tolerance through DetectorConfig.
const (
	// EpsCubic is the cubic-coefficient magnitude below which a spline
	// dimension is treated as quadratic
	EpsCubic = 1e-12
	// EpsDiscriminant is the discriminant magnitude below which the two
	// extrema of a cubic are merged into one double root
	EpsDiscriminant = 1e-4
	// EpsRay is the minimum usable ray length for sweeping a shape along a
	// displacement. Nothing in this module performs such a sweep; the
	// constant is exported only as a value
	EpsRay = 1e-7
)

// Spline is one cubic trajectory segment. Each dimension (x, y, yaw) is a
// cubic polynomial of normalized time tau in [0,1], with tau=0 at the
// segment's start time and tau=1 at its finish time.
type Spline struct {
	coeffs [3][4]float64
	start  time.Time
	finish time.Time
}

// NewSpline builds the cubic Hermite segment between two consecutive
// waypoints. The endpoint positions and velocities are matched exactly.
func NewSpline(w0, w1 Waypoint) Spline {
	dt := w1.Time.Sub(w0.Time).Seconds()

	var s Spline
	s.start = w0.Time
	s.finish = w1.Time
	for dim := 0; dim < 3; dim++ {
		p0 := w0.Position[dim]
		p1 := w1.Position[dim]
		// Velocities are normalized onto the tau domain.
		v0 := w0.Velocity[dim] * dt
		v1 := w1.Velocity[dim] * dt

		s.coeffs[dim] = [4]float64{
			p0,
			v0,
			3*(p1-p0) - 2*v0 - v1,
			-2*(p1-p0) + v0 + v1,
		}
	}
	return s
}

// StartTime returns the absolute time at tau=0.
func (s Spline) StartTime() time.Time { return s.start }

// FinishTime returns the absolute time at tau=1.
func (s Spline) FinishTime() time.Time { return s.finish }

// Coefficients returns the cubic coefficients (a0, a1, a2, a3) of the given
// dimension (0=x, 1=y, 2=yaw) over normalized time.
func (s Spline) Coefficients(dim int) [4]float64 { return s.coeffs[dim] }

func (s Spline) tau(at time.Time) float64 {
	return at.Sub(s.start).Seconds() / s.finish.Sub(s.start).Seconds()
}

// Position evaluates (x, y, yaw) at an absolute time within the segment.
func (s Spline) Position(at time.Time) mgl64.Vec3 {
	t := s.tau(at)
	var out mgl64.Vec3
	for dim := 0; dim < 3; dim++ {
		out[dim] = evalCubic(s.coeffs[dim], t)
	}
	return out
}

// Velocity evaluates the first derivative of (x, y, yaw) with respect to
// absolute time.
func (s Spline) Velocity(at time.Time) mgl64.Vec3 {
	t := s.tau(at)
	dt := s.finish.Sub(s.start).Seconds()
	var out mgl64.Vec3
	for dim := 0; dim < 3; dim++ {
		c := s.coeffs[dim]
		out[dim] = (c[1] + 2*c[2]*t + 3*c[3]*t*t) / dt
	}
	return out
}

func evalCubic(c [4]float64, t float64) float64 {
	return c[0] + t*(c[1]+t*(c[2]+t*c[3]))
}

// reparam maps the cubic of one dimension onto the sub-interval [t0,t1],
// producing coefficients over a new normalized time sigma in [0,1] where
// sigma=0 is t0 and sigma=1 is t1.
func (s Spline) reparam(dim int, t0, t1 time.Time) [4]float64 {
	dur := s.finish.Sub(s.start).Seconds()
	alpha := t0.Sub(s.start).Seconds() / dur
	beta := t1.Sub(t0).Seconds() / dur

	c := s.coeffs[dim]
	return [4]float64{
		c[0] + c[1]*alpha + c[2]*alpha*alpha + c[3]*alpha*alpha*alpha,
		beta * (c[1] + 2*c[2]*alpha + 3*c[3]*alpha*alpha),
		beta * beta * (c[2] + 3*c[3]*alpha),
		beta * beta * beta * c[3],
	}
}

// Motion converts the segment into a narrowphase motion over [t0,t1],
// which must lie within the segment.
func (s Spline) Motion(t0, t1 time.Time) collision.SplineMotion {
	return collision.SplineMotion{
		X:   s.reparam(0, t0, t1),
		Y:   s.reparam(1, t0, t1),
		Yaw: s.reparam(2, t0, t1),
	}
}

// localExtrema returns the (min, max) of a cubic over normalized time
// [0,1]. The endpoints always participate; interior critical points join
// the candidate set according to the tolerance policy:
//
//   - |a3| < EpsCubic: the derivative is linear, vertex at -a1/(2*a2) when
//     |a2| > EpsCubic, otherwise no interior extremum.
//   - otherwise D = 4*a2^2 - 12*a3*a1. |D| < discTol is treated as a single
//     double root at -a2/(3*a3); D < 0 yields none; D > 0 yields two roots.
//
// Interior candidates outside [0,1] are discarded.
func localExtrema(c [4]float64, discTol float64) (float64, float64) {
	lo := math.Min(evalCubic(c, 0), evalCubic(c, 1))
	hi := math.Max(evalCubic(c, 0), evalCubic(c, 1))

	consider := func(t float64) {
		if t < 0 || t > 1 {
			return
		}
		v := evalCubic(c, t)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	if math.Abs(c[3]) < EpsCubic {
		if math.Abs(c[2]) > EpsCubic {
			consider(-c[1] / (2 * c[2]))
		}
		return lo, hi
	}

	D := 4*c[2]*c[2] - 12*c[3]*c[1]
	switch {
	case math.Abs(D) < discTol:
		consider(-c[2] / (3 * c[3]))
	case D < 0:
		// No real critical points; the endpoints are the extrema.
	default:
		consider((-2*c[2] + math.Sqrt(D)) / (6 * c[3]))
		consider((-2*c[2] - math.Sqrt(D)) / (6 * c[3]))
	}
	return lo, hi
}

// BoundingBox computes the axis-aligned box enclosing the segment's x/y
// path, using the analytic extrema of each dimension.
func (s Spline) BoundingBox() BoundingBox {
	return s.boundingBox(EpsDiscriminant)
}

func (s Spline) boundingBox(discTol float64) BoundingBox {
	xlo, xhi := localExtrema(s.coeffs[0], discTol)
	ylo, yhi := localExtrema(s.coeffs[1], discTol)
	return BoundingBox{
		Min: mgl64.Vec2{xlo, ylo},
		Max: mgl64.Vec2{xhi, yhi},
	}
}
