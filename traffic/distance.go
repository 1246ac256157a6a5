package traffic

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Tolerances of the distance-differential root search
const (
	// polyCoeffTolerance is the magnitude below which a leading polynomial
	// coefficient is dropped before root-finding
	polyCoeffTolerance = 1e-12
	// polyImagTolerance is the imaginary-part magnitude below which an
	// eigenvalue is accepted as a real root
	polyImagTolerance = 1e-7
	// rootMergeTolerance merges numerically coincident roots
	rootMergeTolerance = 1e-9
)

// DistanceDifferential analyzes the time derivative of the squared distance
// between the centres of two concurrent spline segments. The derivative is
// a quintic polynomial of the normalized shared interval; its sign says
// whether the vehicles are approaching (negative) or separating.
type DistanceDifferential struct {
	deriv  [6]float64
	start  time.Time
	finish time.Time
}

// NewDistanceDifferential builds the differential over the shared interval
// of the two segments, [max(starts), min(finishes)]. The segments must
// overlap in time.
func NewDistanceDifferential(a, b Spline) DistanceDifferential {
	start := maxTime(a.StartTime(), b.StartTime())
	finish := minTime(a.FinishTime(), b.FinishTime())

	var d DistanceDifferential
	d.start = start
	d.finish = finish

	// Relative centre motion per axis, as cubics of the shared normalized
	// time. d/dsigma of (dx^2 + dy^2) = 2*(dx*dx' + dy*dy'), a quintic.
	for dim := 0; dim < 2; dim++ {
		ca := a.reparam(dim, start, finish)
		cb := b.reparam(dim, start, finish)

		var delta [4]float64
		for i := range delta {
			delta[i] = ca[i] - cb[i]
		}
		ddelta := [3]float64{delta[1], 2 * delta[2], 3 * delta[3]}

		for i, u := range delta {
			for j, v := range ddelta {
				d.deriv[i+j] += 2 * u * v
			}
		}
	}
	return d
}

// StartTime returns the beginning of the shared interval.
func (d DistanceDifferential) StartTime() time.Time { return d.start }

// FinishTime returns the end of the shared interval.
func (d DistanceDifferential) FinishTime() time.Time { return d.finish }

func (d DistanceDifferential) eval(sigma float64) float64 {
	out := 0.0
	for i := len(d.deriv) - 1; i >= 0; i-- {
		out = out*sigma + d.deriv[i]
	}
	return out
}

// InitiallyApproaching reports whether the distance is shrinking at the
// start of the shared interval.
func (d DistanceDifferential) InitiallyApproaching() bool {
	return d.eval(0) < 0
}

// ApproachTimes returns the instants within the shared interval at which
// the vehicles transition from separating or holding distance to
// approaching, in time order.
func (d DistanceDifferential) ApproachTimes() []time.Time {
	roots := realRootsInUnit(d.deriv[:])
	if len(roots) == 0 {
		return nil
	}

	span := d.finish.Sub(d.start)
	var out []time.Time
	for i, r := range roots {
		// Sign before the root: from the start of the interval or the
		// midpoint since the previous root.
		lo := 0.0
		if i > 0 {
			lo = roots[i-1]
		}
		before := d.eval((lo + r) / 2)

		// Sign after the root. A root at the very end of the interval
		// has nothing after it, so it cannot begin an approach.
		hi := 1.0
		if i+1 < len(roots) {
			hi = roots[i+1]
		}
		if hi <= r {
			continue
		}
		after := d.eval((r + hi) / 2)

		if before >= 0 && after < 0 {
			out = append(out, d.start.Add(time.Duration(r*float64(span))))
		}
	}
	return out
}

// realRootsInUnit finds the real roots of a polynomial (coefficients in
// ascending order) that lie in (0, 1]. Degrees up to two are solved in
// closed form; higher degrees go through the companion-matrix eigenvalue
// method.
func realRootsInUnit(coeffs []float64) []float64 {
	// Normalize magnitude so the leading-coefficient trim is scale-free.
	scale := 0.0
	for _, c := range coeffs {
		scale = math.Max(scale, math.Abs(c))
	}
	if scale == 0 {
		return nil
	}
	normalized := make([]float64, len(coeffs))
	for i, c := range coeffs {
		normalized[i] = c / scale
	}

	deg := len(normalized) - 1
	for deg > 0 && math.Abs(normalized[deg]) < polyCoeffTolerance {
		deg--
	}

	var roots []float64
	switch deg {
	case 0:
		return nil

	case 1:
		roots = []float64{-normalized[0] / normalized[1]}

	case 2:
		a, b, c := normalized[2], normalized[1], normalized[0]
		D := b*b - 4*a*c
		if D < 0 {
			return nil
		}
		sq := math.Sqrt(D)
		roots = []float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)}

	default:
		roots = companionRoots(normalized[:deg+1])
	}

	sort.Float64s(roots)

	var out []float64
	for _, r := range roots {
		if r <= 0 || r > 1 {
			continue
		}
		if n := len(out); n > 0 && r-out[n-1] < rootMergeTolerance {
			continue
		}
		out = append(out, r)
	}
	return out
}

// companionRoots extracts the real roots of a monic-normalized polynomial
// from the eigenvalues of its companion matrix.
func companionRoots(coeffs []float64) []float64 {
	n := len(coeffs) - 1
	lead := coeffs[n]

	c := mat.NewDense(n, n, nil)
	for i := 1; i < n; i++ {
		c.Set(i, i-1, 1)
	}
	for i := 0; i < n; i++ {
		c.Set(i, n-1, -coeffs[i]/lead)
	}

	var eig mat.Eigen
	if !eig.Factorize(c, mat.EigenNone) {
		return nil
	}

	var roots []float64
	for _, v := range eig.Values(nil) {
		if math.Abs(imag(v)) < polyImagTolerance {
			roots = append(roots, real(v))
		}
	}
	return roots
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
