package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Convex is a convex shape described by its support function in the shape's
// local frame. The local origin is the shape's reference point; poses place
// that reference point in the world frame.
type Convex interface {
	// Support returns the point of the shape furthest along dir. dir does
	// not need to be normalized, but must be non-zero.
	Support(dir mgl64.Vec2) mgl64.Vec2

	// BoundingRadius returns the radius of the smallest circle centred on
	// the local origin that encloses the shape. Used to bound the motion
	// contribution of rotation during conservative advancement.
	BoundingRadius() float64
}

// Pose is a rigid placement of a convex shape in the world frame.
type Pose struct {
	Position mgl64.Vec2
	Yaw      float64
}

// Rotate applies the pose's rotation to a local-frame vector.
func (p Pose) Rotate(v mgl64.Vec2) mgl64.Vec2 {
	sin, cos := math.Sincos(p.Yaw)
	return mgl64.Vec2{cos*v[0] - sin*v[1], sin*v[0] + cos*v[1]}
}

// InverseRotate applies the inverse of the pose's rotation.
func (p Pose) InverseRotate(v mgl64.Vec2) mgl64.Vec2 {
	sin, cos := math.Sincos(p.Yaw)
	return mgl64.Vec2{cos*v[0] + sin*v[1], -sin*v[0] + cos*v[1]}
}

// SupportAt evaluates the support function of shape placed at pose, in the
// world frame.
func SupportAt(shape Convex, pose Pose, dir mgl64.Vec2) mgl64.Vec2 {
	local := shape.Support(pose.InverseRotate(dir))
	return pose.Rotate(local).Add(pose.Position)
}

// CircleShape is a circle of the given radius centred on the local origin.
type CircleShape struct {
	Radius float64
}

func (c CircleShape) Support(dir mgl64.Vec2) mgl64.Vec2 {
	n := dir.Len()
	if n <= 0 {
		return mgl64.Vec2{c.Radius, 0}
	}
	return dir.Mul(c.Radius / n)
}

func (c CircleShape) BoundingRadius() float64 { return c.Radius }

// PolygonShape is a convex polygon given by its vertices in the local frame.
// Vertices must describe a convex hull; ordering does not matter for the
// support function.
type PolygonShape struct {
	Vertices []mgl64.Vec2
}

func (p PolygonShape) Support(dir mgl64.Vec2) mgl64.Vec2 {
	best := p.Vertices[0]
	bestDot := best.Dot(dir)
	for _, v := range p.Vertices[1:] {
		if d := v.Dot(dir); d > bestDot {
			best, bestDot = v, d
		}
	}
	return best
}

func (p PolygonShape) BoundingRadius() float64 {
	r := 0.0
	for _, v := range p.Vertices {
		if l := v.Len(); l > r {
			r = l
		}
	}
	return r
}

// NewBoxShape returns the convex polygon of an axis-aligned box with the
// given full width and height, centred on the local origin.
func NewBoxShape(width, height float64) PolygonShape {
	hw, hh := width/2, height/2
	return PolygonShape{Vertices: []mgl64.Vec2{
		{hw, hh}, {-hw, hh}, {-hw, -hh}, {hw, -hh},
	}}
}
