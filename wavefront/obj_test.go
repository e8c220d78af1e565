package wavefront_test

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/vega_viewer/scene"
	"github.com/mogaika/vega_viewer/wavefront"
)

func load(t *testing.T, data string) *scene.Scene {
	t.Helper()
	s := scene.NewScene()
	if err := wavefront.LoadObj(s, "test.obj", []byte(data)); err != nil {
		t.Fatalf("LoadObj: %v", err)
	}
	return s
}

const triangleObj = `
# flat shaded triangle
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`

func TestLoadTriangle(t *testing.T) {
	s := load(t, triangleObj)

	meshes := s.GetMeshes()
	if len(meshes) != 1 {
		t.Fatalf("len(meshes)=%v; expected 1", len(meshes))
	}
	mesh := meshes[0]

	if count := mesh.GetVertices().GetCount(); count != 3 {
		t.Errorf("vertex count %v; expected 3", count)
	}
	for _, v := range mesh.GetVertices().GetData() {
		if v.Normal != (mgl32.Vec3{0, 0, 1}) {
			t.Errorf("normal %v; expected flat +z", v.Normal)
		}
	}
	if indexType := mesh.GetIndices().GetIndexType(); indexType != "int16" {
		t.Errorf("index type %v; expected int16", indexType)
	}

	aabb := mesh.GetBoundingBox()
	if aabb.Min != (mgl32.Vec3{0, 0, 0}) || aabb.Max != (mgl32.Vec3{1, 1, 0}) {
		t.Errorf("aabb %v-%v; expected triangle bounds", aabb.Min, aabb.Max)
	}

	if drawList := s.ComputeDrawList(); len(drawList) != 1 {
		t.Errorf("len(drawList)=%v; expected 1", len(drawList))
	}
}

const quadObj = `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`

func TestLoadQuadMergesCoplanarCorners(t *testing.T) {
	s := load(t, quadObj)

	mesh := s.GetMeshes()[0]
	if count := mesh.GetVertices().GetCount(); count != 4 {
		t.Errorf("vertex count %v; expected 4", count)
	}

	indices, ok := mesh.GetIndices().GetData().([]uint16)
	if !ok {
		t.Fatalf("indices are %T; expected []uint16", mesh.GetIndices().GetData())
	}
	expected := []uint16{0, 1, 2, 0, 2, 3}
	if len(indices) != len(expected) {
		t.Fatalf("len(indices)=%v; expected %v", len(indices), len(expected))
	}
	for i := range expected {
		if indices[i] != expected[i] {
			t.Errorf("indices[%v]=%v; expected %v", i, indices[i], expected[i])
		}
	}
}

const pentagonObj = `
v 0 0 0
v 2 0 0
v 3 1 0
v 1 3 0
v -1 1 0
f 1 2 3 4 5
`

func TestLoadFanTriangulation(t *testing.T) {
	s := load(t, pentagonObj)

	mesh := s.GetMeshes()[0]
	if count := mesh.GetIndices().GetCount(); count != 9 {
		t.Errorf("index count %v; expected 9", count)
	}
	if count := mesh.GetVertices().GetCount(); count != 5 {
		t.Errorf("vertex count %v; expected 5", count)
	}
}

const normalsObj = `
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1
f 3//1 2//1 1//1
`

func TestLoadWithNormalsDeduplicates(t *testing.T) {
	s := load(t, normalsObj)

	mesh := s.GetMeshes()[0]
	if count := mesh.GetVertices().GetCount(); count != 3 {
		t.Errorf("vertex count %v; expected 3", count)
	}
	if count := mesh.GetIndices().GetCount(); count != 6 {
		t.Errorf("index count %v; expected 6", count)
	}
	for _, v := range mesh.GetVertices().GetData() {
		if v.Normal != (mgl32.Vec3{0, 0, 1}) {
			t.Errorf("normal %v; expected +z from the vn pool", v.Normal)
		}
	}
}

const negativeObj = `
v 0 0 0
v 2 0 0
v 0 2 0
f -3 -2 -1
`

func TestLoadNegativeIndices(t *testing.T) {
	s := load(t, negativeObj)

	aabb := s.GetMeshes()[0].GetBoundingBox()
	if aabb.Min != (mgl32.Vec3{0, 0, 0}) || aabb.Max != (mgl32.Vec3{2, 2, 0}) {
		t.Errorf("aabb %v-%v; expected 2x2 triangle bounds", aabb.Min, aabb.Max)
	}
}

const shapesObj = `
mtllib scene.mtl
o left
usemtl red
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
o right
usemtl blue
v 2 0 0
v 3 0 0
v 2 1 0
f 4 5 6
usemtl red
f 4 5 6
`

func TestLoadShapesAndMaterials(t *testing.T) {
	s := load(t, shapesObj)

	meshes := s.GetMeshes()
	if len(meshes) != 3 {
		t.Fatalf("len(meshes)=%v; expected 3", len(meshes))
	}
	if name, _ := meshes[0].GetProperty("Name"); name != "left" {
		t.Errorf("meshes[0] name %v; expected left", name)
	}
	if name, _ := meshes[1].GetProperty("Name"); name != "right" {
		t.Errorf("meshes[1] name %v; expected right", name)
	}

	materials := s.GetMaterials()
	if len(materials) != 1 {
		t.Fatalf("len(materials)=%v; expected 1", len(materials))
	}
	if library, ok := materials[0].GetProperty("Library"); !ok || library != "scene.mtl" {
		t.Errorf("material library %v; expected scene.mtl", library)
	}

	instances := materials[0].GetMaterialInstances()
	if len(instances) != 2 {
		t.Fatalf("len(instances)=%v; expected 2", len(instances))
	}
	red, blue := instances[0], instances[1]
	if name, _ := red.GetProperty("Name"); name != "red" {
		t.Errorf("instances[0] name %v; expected red", name)
	}
	if name, _ := blue.GetProperty("Name"); name != "blue" {
		t.Errorf("instances[1] name %v; expected blue", name)
	}
	if count := len(red.GetMeshNodes()); count != 2 {
		t.Errorf("red mesh nodes %v; expected 2", count)
	}
	if count := len(blue.GetMeshNodes()); count != 1 {
		t.Errorf("blue mesh nodes %v; expected 1", count)
	}

	if drawList := s.ComputeDrawList(); len(drawList) != 3 {
		t.Errorf("len(drawList)=%v; expected 3", len(drawList))
	}
}

const oddObj = "# header\r\ns off\r\nvt 0 0\r\nl 1 2\r\nv 0 0 0\r\nv\t1 0 0\r\nv 0 1 0 # inline\r\nvp 0.5\r\nf 1/1 2/1 3/1\r\n"

func TestLoadIgnoresUnknownStatements(t *testing.T) {
	var logged bytes.Buffer
	log.SetOutput(&logged)
	defer log.SetOutput(os.Stderr)

	s := load(t, oddObj)

	if count := len(s.GetMeshes()); count != 1 {
		t.Fatalf("len(meshes)=%v; expected 1", count)
	}
	if count := s.GetMeshes()[0].GetVertices().GetCount(); count != 3 {
		t.Errorf("vertex count %v; expected 3", count)
	}

	if !strings.Contains(logged.String(), `"l"`) {
		t.Errorf("no warning for the skipped l statement in:\n%s", logged.String())
	}
	for _, quiet := range []string{`"s"`, `"vt"`, `"vp"`} {
		if strings.Contains(logged.String(), quiet) {
			t.Errorf("warning for the handled %v statement in:\n%s", quiet, logged.String())
		}
	}
}

// the default obj text encoding is windows-1252, 0xe9 is a latin small
// letter e with acute
const legacyNameObj = "o caf\xe9\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"

func TestLoadDecodesLegacyNames(t *testing.T) {
	s := load(t, legacyNameObj)

	meshes := s.GetMeshes()
	if len(meshes) != 1 {
		t.Fatalf("len(meshes)=%v; expected 1", len(meshes))
	}
	if name, _ := meshes[0].GetProperty("Name"); name != "café" {
		t.Errorf("mesh name %q; expected café", name)
	}
}

func TestLoadEmpty(t *testing.T) {
	s := load(t, "# nothing here\n")

	if count := len(s.GetMeshes()); count != 0 {
		t.Errorf("len(meshes)=%v; expected 0", count)
	}
	materials := s.GetMaterials()
	if len(materials) != 1 {
		t.Fatalf("len(materials)=%v; expected 1", len(materials))
	}
	if count := len(materials[0].GetMaterialInstances()); count != 0 {
		t.Errorf("len(instances)=%v; expected 0", count)
	}
}

var objErrorTests = []struct {
	name string
	data string
}{
	{"zero index", "v 0 0 0\nf 0 1 2\n"},
	{"index out of range", "v 0 0 0\nv 1 0 0\nf 1 2 3\n"},
	{"negative index out of range", "v 0 0 0\nf -2 -1 -1\n"},
	{"face with two corners", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
	{"word in vertex", "v 0 zero 0\n"},
	{"short vertex", "v 1 2\nf 1 1 1\n"},
	{"face without normal index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf 1 2 3\n"},
	{"triple slash corner", "v 0 0 0\nf 1///1 1 1\n"},
}

func TestLoadErrors(t *testing.T) {
	for _, test := range objErrorTests {
		s := scene.NewScene()
		if err := wavefront.LoadObj(s, test.name, []byte(test.data)); err == nil {
			t.Errorf("LoadObj(%v) succeeded; expected error", test.name)
		}
	}
}
