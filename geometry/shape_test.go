package geometry

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestCircleCharacteristicLength(t *testing.T) {
	if got := (Circle{Radius: 1.5}).CharacteristicLength(); got != 1.5 {
		t.Errorf("circle characteristic length: got %f, want 1.5", got)
	}
}

func TestBoxCharacteristicLength(t *testing.T) {
	got := (Box{Width: 2, Height: 2}).CharacteristicLength()
	if math.Abs(got-math.Sqrt2) > 1e-12 {
		t.Errorf("box characteristic length: got %f, want %f", got, math.Sqrt2)
	}
}

func TestPolygonCharacteristicLength(t *testing.T) {
	p := Polygon{Vertices: []mgl64.Vec2{{1, 0}, {0, 2}, {-1, 0}, {0, -1}}}
	if got := p.CharacteristicLength(); got != 2 {
		t.Errorf("polygon characteristic length: got %f, want 2", got)
	}
}

func TestFinalizeConvex(t *testing.T) {
	final, err := FinalizeConvex(Circle{Radius: 0.5})
	if err != nil {
		t.Fatalf("FinalizeConvex failed: %v", err)
	}
	if final.CharacteristicLength() != 0.5 {
		t.Errorf("characteristic length: got %f, want 0.5", final.CharacteristicLength())
	}
	if final.Collision() == nil {
		t.Error("expected a collision handle")
	}
	if _, ok := final.Source().(Circle); !ok {
		t.Errorf("source: got %T, want Circle", final.Source())
	}
}

func TestFinalizeConvexNil(t *testing.T) {
	if _, err := FinalizeConvex(nil); err == nil {
		t.Error("expected error finalizing nil shape")
	}
}

func TestFinalizePieces(t *testing.T) {
	final, err := Finalize(Box{Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if len(final.Collisions()) != 1 {
		t.Errorf("convex pieces: got %d, want 1", len(final.Collisions()))
	}
}
