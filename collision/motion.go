package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Motion describes the placement of a shape over a normalized time interval
// [0,1], together with speed bounds used by conservative advancement.
type Motion interface {
	// PoseAt returns the pose at normalized time tau in [0,1].
	PoseAt(tau float64) Pose

	// LinearSpeedBound returns an upper bound of the translational speed
	// (per unit of normalized time) over [from,to].
	LinearSpeedBound(from, to float64) float64

	// AngularSpeedBound returns an upper bound of |d yaw / d tau| over
	// [from,to].
	AngularSpeedBound(from, to float64) float64
}

// SplineMotion moves a shape along per-dimension cubic polynomials of
// normalized time: p(tau) = c[0] + c[1]*tau + c[2]*tau^2 + c[3]*tau^3.
type SplineMotion struct {
	X   [4]float64
	Y   [4]float64
	Yaw [4]float64
}

func evalCubic(c [4]float64, t float64) float64 {
	return c[0] + t*(c[1]+t*(c[2]+t*c[3]))
}

// maxAbsDerivative bounds |c'(tau)| on [from,to]. The derivative is the
// quadratic c[1] + 2*c[2]*tau + 3*c[3]*tau^2; its extreme magnitudes occur
// at the interval ends or at the vertex of the quadratic.
func maxAbsDerivative(c [4]float64, from, to float64) float64 {
	deriv := func(t float64) float64 {
		return c[1] + 2*c[2]*t + 3*c[3]*t*t
	}

	bound := math.Max(math.Abs(deriv(from)), math.Abs(deriv(to)))
	if math.Abs(c[3]) > 0 {
		if v := -c[2] / (3 * c[3]); from < v && v < to {
			bound = math.Max(bound, math.Abs(deriv(v)))
		}
	}
	return bound
}

func (m SplineMotion) PoseAt(tau float64) Pose {
	return Pose{
		Position: mgl64.Vec2{evalCubic(m.X, tau), evalCubic(m.Y, tau)},
		Yaw:      evalCubic(m.Yaw, tau),
	}
}

func (m SplineMotion) LinearSpeedBound(from, to float64) float64 {
	bx := maxAbsDerivative(m.X, from, to)
	by := maxAbsDerivative(m.Y, from, to)
	return math.Hypot(bx, by)
}

func (m SplineMotion) AngularSpeedBound(from, to float64) float64 {
	return maxAbsDerivative(m.Yaw, from, to)
}

// StaticMotion holds a shape at a fixed pose for the whole interval.
type StaticMotion struct {
	Pose Pose
}

func (m StaticMotion) PoseAt(float64) Pose                    { return m.Pose }
func (m StaticMotion) LinearSpeedBound(_, _ float64) float64  { return 0 }
func (m StaticMotion) AngularSpeedBound(_, _ float64) float64 { return 0 }
