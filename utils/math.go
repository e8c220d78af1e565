package utils

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TriangleNormal returns the unit normal of the p0 p1 p2 triangle
// or a zero vector when the triangle is degenerate.
func TriangleNormal(p0, p1, p2 mgl32.Vec3) mgl32.Vec3 {
	n := p1.Sub(p0).Cross(p2.Sub(p0))
	if n.Len() == 0 {
		return mgl32.Vec3{}
	}
	return n.Normalize()
}

func FloatArray32to64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
