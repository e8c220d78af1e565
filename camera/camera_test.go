package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/vega_viewer/scene"
)

func unitBox() scene.AABB {
	return scene.AABB{
		Min: mgl32.Vec3{-0.5, -0.5, -0.5},
		Max: mgl32.Vec3{0.5, 0.5, 0.5},
	}
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-3
}

func TestFramingDistance(t *testing.T) {
	c := NewCamera(unitBox(), 45, 1)

	expected := float32(0.5 + 0.5/math.Tan(math.Pi/8))
	if !near(c.distance, expected) {
		t.Errorf("distance=%v; expected %v", c.distance, expected)
	}
}

func TestViewMatrixLooksAtCenter(t *testing.T) {
	box := scene.AABB{Min: mgl32.Vec3{1, 1, 1}, Max: mgl32.Vec3{3, 3, 3}}
	c := NewCamera(box, 45, 1)

	center := mgl32.Vec3{2, 2, 2}.Vec4(1)

	viewCenter := c.ViewMatrix().Mul4x1(center)
	if !near(viewCenter.X(), 0) || !near(viewCenter.Y(), 0) || !near(viewCenter.Z(), -c.distance) {
		t.Errorf("center in view space %v; expected (0, 0, %v)", viewCenter, -c.distance)
	}

	c.Orbit(0.5, 1.0)
	viewCenter = c.ViewMatrix().Mul4x1(center)
	if !near(viewCenter.X(), 0) || !near(viewCenter.Y(), 0) || !near(viewCenter.Z(), -c.distance) {
		t.Errorf("center in view space after orbit %v; expected (0, 0, %v)", viewCenter, -c.distance)
	}
}

func TestOrbitLimits(t *testing.T) {
	c := NewCamera(unitBox(), 45, 1)

	c.Orbit(10, 0)
	if !near(c.elevation, maxElevation) {
		t.Errorf("elevation=%v; expected clamp at %v", c.elevation, maxElevation)
	}
	c.Orbit(-30, 0)
	if !near(c.elevation, -maxElevation) {
		t.Errorf("elevation=%v; expected clamp at %v", c.elevation, -maxElevation)
	}

	c.Orbit(0, 3)
	c.Orbit(0, 1)
	if !near(c.azimuth, 4-2*math.Pi) {
		t.Errorf("azimuth=%v; expected wrap to %v", c.azimuth, 4-2*math.Pi)
	}
}

func TestZoomStaysInLimits(t *testing.T) {
	c := NewCamera(unitBox(), 45, 1)

	for i := 0; i < 5; i++ {
		c.Zoom(-100)
	}
	if !near(c.distance, c.limits.DistanceMin) {
		t.Errorf("distance=%v; expected zoom in to stop at %v", c.distance, c.limits.DistanceMin)
	}

	start := c.distance
	c.Zoom(100)
	if c.distance <= start {
		t.Errorf("zoom out kept distance at %v", c.distance)
	}

	for i := 0; i < 50; i++ {
		c.Zoom(100)
	}
	if !near(c.distance, c.limits.DistanceMax) {
		t.Errorf("distance=%v; expected zoom out to stop at %v", c.distance, c.limits.DistanceMax)
	}
}

func TestTrackShiftsView(t *testing.T) {
	c := NewCamera(unitBox(), 45, 1)

	before := c.ViewMatrix()
	c.Track(10, -4)
	after := c.ViewMatrix()

	if after[12] <= before[12] {
		t.Errorf("horizontal view offset %v -> %v; expected increase", before[12], after[12])
	}
	if after[13] <= before[13] {
		t.Errorf("vertical view offset %v -> %v; expected increase", before[13], after[13])
	}
}

var clipPlaneTests = []struct {
	dimension float32
	near      float32
	far       float32
}{
	{1, 0.1, 1000},
	{50, 1, 10000},
	{0.05, 0.001, 10},
}

func TestClipPlanes(t *testing.T) {
	for _, test := range clipPlaneTests {
		near, far := clipPlanes(test.dimension)
		if near != test.near || far != test.far {
			t.Errorf("clipPlanes(%v)=%v, %v; expected %v, %v",
				test.dimension, near, far, test.near, test.far)
		}
	}
}

func TestProjectionMatrix(t *testing.T) {
	c := NewCamera(unitBox(), 45, 1)

	p := c.ProjectionMatrix(2)
	f := float32(1 / math.Tan(math.Pi/8))
	if !near(p[5], f) {
		t.Errorf("projection[5]=%v; expected %v", p[5], f)
	}
	if !near(p[0], f/2) {
		t.Errorf("projection[0]=%v; expected %v", p[0], f/2)
	}
}

func TestDegenerateBoxPadded(t *testing.T) {
	point := scene.AABB{Min: mgl32.Vec3{5, 5, 5}, Max: mgl32.Vec3{5, 5, 5}}
	c := NewCamera(point, 45, 1)

	if c.distance <= 0 {
		t.Errorf("distance=%v; expected positive framing distance", c.distance)
	}
	if c.limits.DistanceMin <= 0 || c.limits.DistanceMax <= c.limits.DistanceMin {
		t.Errorf("limits=%+v; expected a usable distance range", c.limits)
	}

	viewCenter := c.ViewMatrix().Mul4x1(mgl32.Vec3{5, 5, 5}.Vec4(1))
	if !near(viewCenter.Z(), -c.distance) {
		t.Errorf("center in view space %v; expected depth %v", viewCenter, -c.distance)
	}
}
