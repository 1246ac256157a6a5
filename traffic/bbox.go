package traffic

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BoundingBox is an axis-aligned rectangle in the workspace plane.
type BoundingBox struct {
	Min mgl64.Vec2
	Max mgl64.Vec2
}

// VoidBox returns a box that overlaps nothing, used for absent shapes.
func VoidBox() BoundingBox {
	inf := math.Inf(1)
	return BoundingBox{
		Min: mgl64.Vec2{inf, inf},
		Max: mgl64.Vec2{-inf, -inf},
	}
}

// Inflated expands the box by l on all sides.
func (b BoundingBox) Inflated(l float64) BoundingBox {
	return BoundingBox{
		Min: b.Min.Sub(mgl64.Vec2{l, l}),
		Max: b.Max.Add(mgl64.Vec2{l, l}),
	}
}

// Overlap reports whether two boxes intersect. A void box never overlaps.
func Overlap(a, b BoundingBox) bool {
	for i := 0; i < 2; i++ {
		if a.Max[i] < b.Min[i] {
			return false
		}
		if b.Max[i] < a.Min[i] {
			return false
		}
	}
	return true
}

// boundingProfile pairs the inflated boxes of a profile's footprint and
// vicinity over one spline segment. Absent shapes get void boxes.
type boundingProfile struct {
	footprint BoundingBox
	vicinity  BoundingBox
}

func newBoundingProfile(s Spline, p Profile, discTol float64) boundingProfile {
	base := s.boundingBox(discTol)

	out := boundingProfile{footprint: VoidBox(), vicinity: VoidBox()}
	if p.Footprint != nil {
		out.footprint = base.Inflated(p.Footprint.CharacteristicLength())
	}
	if p.Vicinity != nil {
		out.vicinity = base.Inflated(p.Vicinity.CharacteristicLength())
	}
	return out
}
