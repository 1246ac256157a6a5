// Package geometry models the convex shapes that vehicle profiles and
// spacetime regions are built from. Shapes are declared as simple value
// types and then finalized, which computes their characteristic length and
// obtains collision handles from the narrowphase library.
package geometry

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Sunshengjin/rmf-core/collision"
)

// Shape is a declarative shape description. Finalizing a shape produces the
// collision-ready form used by the traffic core.
type Shape interface {
	// CharacteristicLength is a radius-like scalar: inflating a point by
	// it along each axis encloses the shape in every orientation.
	CharacteristicLength() float64

	finalize() []collision.Convex
}

// Circle is a circle of the given radius centred on the vehicle origin.
type Circle struct {
	Radius float64
}

func (c Circle) CharacteristicLength() float64 { return c.Radius }

func (c Circle) finalize() []collision.Convex {
	return []collision.Convex{collision.CircleShape{Radius: c.Radius}}
}

// Box is an axis-aligned rectangle centred on the vehicle origin. Width
// spans x and height spans y in the vehicle frame.
type Box struct {
	Width  float64
	Height float64
}

func (b Box) CharacteristicLength() float64 {
	return math.Hypot(b.Width/2, b.Height/2)
}

func (b Box) finalize() []collision.Convex {
	return []collision.Convex{collision.NewBoxShape(b.Width, b.Height)}
}

// Polygon is a convex polygon in the vehicle frame. The vertices must form
// a convex hull around the origin.
type Polygon struct {
	Vertices []mgl64.Vec2
}

func (p Polygon) CharacteristicLength() float64 {
	r := 0.0
	for _, v := range p.Vertices {
		if l := v.Len(); l > r {
			r = l
		}
	}
	return r
}

func (p Polygon) finalize() []collision.Convex {
	verts := make([]mgl64.Vec2, len(p.Vertices))
	copy(verts, p.Vertices)
	return []collision.Convex{collision.PolygonShape{Vertices: verts}}
}

// FinalConvexShape is a finalized convex shape: the characteristic length
// plus the opaque collision handle consumed by the narrowphase library.
// Finalized shapes are immutable.
type FinalConvexShape struct {
	source Shape
	length float64
	convex collision.Convex
}

// FinalizeConvex finalizes a convex shape description.
func FinalizeConvex(shape Shape) (*FinalConvexShape, error) {
	if shape == nil {
		return nil, fmt.Errorf("geometry: cannot finalize a nil shape")
	}
	pieces := shape.finalize()
	if len(pieces) != 1 {
		return nil, fmt.Errorf("geometry: shape decomposes into %d convex pieces, need exactly 1", len(pieces))
	}
	return &FinalConvexShape{
		source: shape,
		length: shape.CharacteristicLength(),
		convex: pieces[0],
	}, nil
}

// MustFinalizeConvex is FinalizeConvex for shapes known valid at compile
// time, such as literals in tests and tools.
func MustFinalizeConvex(shape Shape) *FinalConvexShape {
	final, err := FinalizeConvex(shape)
	if err != nil {
		panic(err)
	}
	return final
}

// Source returns the shape description this was finalized from.
func (f *FinalConvexShape) Source() Shape { return f.source }

// CharacteristicLength returns the inflation scalar of the shape.
func (f *FinalConvexShape) CharacteristicLength() float64 { return f.length }

// Collision returns the narrowphase handle.
func (f *FinalConvexShape) Collision() collision.Convex { return f.convex }

// FinalShape is a finalized shape that may decompose into several convex
// pieces. Spacetime regions use it; vehicle profiles always use the convex
// form.
type FinalShape struct {
	source Shape
	length float64
	pieces []collision.Convex
}

// Finalize finalizes any shape description.
func Finalize(shape Shape) (*FinalShape, error) {
	if shape == nil {
		return nil, fmt.Errorf("geometry: cannot finalize a nil shape")
	}
	return &FinalShape{
		source: shape,
		length: shape.CharacteristicLength(),
		pieces: shape.finalize(),
	}, nil
}

// MustFinalize is Finalize for shapes known valid at compile time.
func MustFinalize(shape Shape) *FinalShape {
	final, err := Finalize(shape)
	if err != nil {
		panic(err)
	}
	return final
}

// Source returns the shape description this was finalized from.
func (f *FinalShape) Source() Shape { return f.source }

// CharacteristicLength returns the inflation scalar of the shape.
func (f *FinalShape) CharacteristicLength() float64 { return f.length }

// Collisions returns the convex pieces of the shape.
func (f *FinalShape) Collisions() []collision.Convex { return f.pieces }
