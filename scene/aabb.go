package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis aligned bounding box given by two opposite corners.
// Once geometry went in, Min <= Max holds per component.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyAABB returns the fold seed {+Inf,+Inf,+Inf}/{-Inf,-Inf,-Inf};
// the first Expand collapses it onto that point.
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// Expand grows the box by the minimal amount needed to contain p.
func (b *AABB) Expand(p mgl32.Vec3) {
	b.Min = mgl32.Vec3{minf(b.Min.X(), p.X()), minf(b.Min.Y(), p.Y()), minf(b.Min.Z(), p.Z())}
	b.Max = mgl32.Vec3{maxf(b.Max.X(), p.X()), maxf(b.Max.Y(), p.Y()), maxf(b.Max.Z(), p.Z())}
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) ExtentX() float32 { return b.Max.X() - b.Min.X() }
func (b AABB) ExtentY() float32 { return b.Max.Y() - b.Min.Y() }
func (b AABB) ExtentZ() float32 { return b.Max.Z() - b.Min.Z() }

func (b AABB) Marshal() interface{} {
	return map[string]interface{}{
		"aabb.min": b.Min,
		"aabb.max": b.Max,
	}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
