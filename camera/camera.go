package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/vega_viewer/scene"
)

// The viewer basis. Imported models face the camera down +y, +z is up.
var (
	forward = mgl32.Vec3{0, 1, 0}
	up      = mgl32.Vec3{0, 0, 1}
	right   = mgl32.Vec3{1, 0, 0}
)

const maxElevation float32 = math.Pi/2 - 0.01

type Limits struct {
	DistanceMin float32
	DistanceMax float32
	OffsetMax   float32
}

type Camera struct {
	object       scene.AABB
	minDimension float32

	elevation float32
	azimuth   float32
	distance  float32

	offsetHorizontal float32
	offsetVertical   float32

	fovy float32
	near float32
	far  float32

	limits Limits
}

// NewCamera frames the box so it fits the viewport at the given
// vertical field of view in degrees. Degenerate boxes are padded to a
// unit radius around their center before framing.
func NewCamera(box scene.AABB, fovyDegrees, aspect float32) *Camera {
	if box.ExtentX() <= 0 || box.ExtentY() <= 0 || box.ExtentZ() <= 0 {
		center := box.Center()
		box = scene.AABB{
			Min: center.Sub(mgl32.Vec3{1, 1, 1}),
			Max: center.Add(mgl32.Vec3{1, 1, 1}),
		}
	}

	width := box.ExtentX()
	height := box.ExtentZ()
	depth := box.ExtentY()
	minDimension := minf(width, minf(height, depth))

	fovy := mgl32.DegToRad(clampf(fovyDegrees, 5, 90))
	fovx := aspect * fovy

	var distance float32
	if width/height > aspect {
		distance = 0.5*depth + 0.5*width/tanf(0.5*fovx)
	} else {
		distance = 0.5*depth + 0.5*height/tanf(0.5*fovy)
	}

	limits := Limits{
		DistanceMin: 0.1 * minDimension,
		DistanceMax: 1000 * minDimension,
		OffsetMax:   10 * minDimension,
	}

	near, far := clipPlanes(minDimension)

	return &Camera{
		object:       box,
		minDimension: minDimension,
		distance:     clampf(distance, limits.DistanceMin, limits.DistanceMax),
		fovy:         fovy,
		near:         near,
		far:          far,
		limits:       limits,
	}
}

// Clip planes sit two decades around the object scale, a meter sized
// object gets 0.1 and 1000.
func clipPlanes(dimension float32) (float32, float32) {
	num := float32(math.Pow(10, math.Floor(math.Log10(float64(dimension)))+1))
	return num / 100, num * 100
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	rotation := mgl32.HomogRotate3D(-c.azimuth, up).Mul4(mgl32.HomogRotate3D(-c.elevation, right))
	direction := rotation.Mat3().Mul3x1(forward)

	center := c.object.Center()
	eye := center.Sub(direction.Mul(c.distance))

	view := mgl32.LookAtV(eye, center, up)
	view[12] += c.offsetHorizontal
	view[13] += c.offsetVertical
	return view
}

func (c *Camera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	near := maxf(c.minDimension*0.01, c.near)
	return mgl32.Perspective(c.fovy, aspect, near, c.far)
}

// Orbit rotates around the framed object. The azimuth wraps so the
// horizontal spin is endless, the elevation stops short of the poles.
func (c *Camera) Orbit(deltaElevation, deltaAzimuth float32) {
	c.elevation = clampf(c.elevation+deltaElevation, -maxElevation, maxElevation)
	c.azimuth = wrapPi(c.azimuth + deltaAzimuth)
}

// Zoom scales its step with the current distance so a mouse wheel
// notch feels the same near and far from the object.
func (c *Camera) Zoom(delta float32) {
	normalized := (c.distance - c.limits.DistanceMin) / c.limits.DistanceMax
	normalized = clampf(normalized+(0.01+normalized)*delta*0.01, 0, 1)
	c.distance = clampf(normalized*c.limits.DistanceMax+c.limits.DistanceMin,
		c.limits.DistanceMin, c.limits.DistanceMax)
}

func (c *Camera) Track(deltaX, deltaY float32) {
	normalized := (c.distance - c.limits.DistanceMin) / c.limits.DistanceMax
	step := c.minDimension * (0.01 + normalized) * 0.5
	c.offsetHorizontal = clampf(c.offsetHorizontal+step*deltaX, -c.limits.OffsetMax, c.limits.OffsetMax)
	c.offsetVertical = clampf(c.offsetVertical-step*deltaY, -c.limits.OffsetMax, c.limits.OffsetMax)
}

func (c *Camera) GetDistance() float32  { return c.distance }
func (c *Camera) GetElevation() float32 { return c.elevation }
func (c *Camera) GetAzimuth() float32   { return c.azimuth }
func (c *Camera) GetLimits() Limits     { return c.limits }

// Marshal flattens the camera into the document form the web ui binds to.
func (c *Camera) Marshal(aspect float32) interface{} {
	return map[string]interface{}{
		"camera.view":       c.ViewMatrix(),
		"camera.projection": c.ProjectionMatrix(aspect),
		"camera.elevation":  c.elevation,
		"camera.azimuth":    c.azimuth,
		"camera.distance":   c.distance,
		"camera.limits": map[string]interface{}{
			"distance.min": c.limits.DistanceMin,
			"distance.max": c.limits.DistanceMax,
			"offset.max":   c.limits.OffsetMax,
		},
	}
}

func wrapPi(angle float32) float32 {
	if angle > math.Pi {
		return angle - 2*math.Pi
	}
	if angle < -math.Pi {
		return angle + 2*math.Pi
	}
	return angle
}

func tanf(angle float32) float32 {
	return float32(math.Tan(float64(angle)))
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

func clampf(v, min, max float32) float32 {
	return minf(maxf(v, min), max)
}
