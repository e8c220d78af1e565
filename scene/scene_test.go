package scene

import (
	"encoding/json"
	"math"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func makeUnitCube(s *Scene) *Mesh {
	corners := []mgl32.Vec3{
		{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5},
		{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5},
	}
	vertices := make([]VertexPN, len(corners))
	for i, corner := range corners {
		vertices[i] = VertexPN{Position: corner, Normal: corner.Normalize()}
	}
	indices := []uint16{
		0, 2, 1, 0, 3, 2,
		4, 5, 6, 4, 6, 7,
		0, 1, 5, 0, 5, 4,
		2, 3, 7, 2, 7, 6,
		0, 4, 7, 0, 7, 3,
		1, 2, 6, 1, 6, 5,
	}
	return s.CreateMesh(
		AABB{Min: mgl32.Vec3{-0.5, -0.5, -0.5}, Max: mgl32.Vec3{0.5, 0.5, 0.5}},
		NewMeshVertices(vertices),
		NewMeshIndices(indices),
	)
}

func vec3Near(a, b mgl32.Vec3) bool {
	const epsilon = 1e-5
	for i := 0; i < 3; i++ {
		if math.Abs(float64(a[i]-b[i])) > epsilon {
			return false
		}
	}
	return true
}

func TestGenerateIdUnique(t *testing.T) {
	const goroutines = 8
	const perGoroutine = 1000

	ids := make(chan Id, goroutines*perGoroutine)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				ids <- GenerateId()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[Id]struct{}, goroutines*perGoroutine)
	for id := range ids {
		if _, ex := seen[id]; ex {
			t.Fatalf("id %d handed out twice", id)
		}
		seen[id] = struct{}{}
	}
}

func TestTranslationChain(t *testing.T) {
	s := NewScene()
	mesh := makeUnitCube(s)
	instance := s.CreateMaterial().CreateMaterialInstance()

	meshNode := s.GetRootNode().
		AddTranslateNode(1, 0, 0).
		AddTranslateNode(0, 2, 0).
		AddTranslateNode(0, 0, 3).
		AddMeshNode(mesh, instance)

	s.ComputeDrawList()

	want := mgl32.Translate3D(1, 0, 0).Mul4(mgl32.Translate3D(0, 2, 0)).Mul4(mgl32.Translate3D(0, 0, 3))
	if *meshNode.GetTransform() != want {
		t.Errorf("world transform %v; expected translation product %v", *meshNode.GetTransform(), want)
	}

	origin := meshNode.GetTransform().Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	if !vec3Near(origin, mgl32.Vec3{1, 2, 3}) {
		t.Errorf("origin maps to %v; expected (1,2,3)", origin)
	}
}

func TestScenarioTree(t *testing.T) {
	s := NewScene()
	mesh := makeUnitCube(s)
	instance := s.CreateMaterial().CreateMaterialInstance()

	meshNode := s.GetRootNode().
		AddTranslateNode(1, 0, 0).
		AddRotateNode(0, 0, 1, math.Pi/2).
		AddScaleNode(2).
		AddMeshNode(mesh, instance)

	drawList := s.ComputeDrawList()
	if len(drawList) != 1 {
		t.Fatalf("draw list has %d entries; expected 1", len(drawList))
	}

	origin := meshNode.GetTransform().Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	if !vec3Near(origin, mgl32.Vec3{1, 0, 0}) {
		t.Errorf("origin maps to %v; expected (1,0,0)", origin)
	}

	aabb := s.ComputeAxisAlignedBoundingBox()
	if !vec3Near(aabb.Min, mgl32.Vec3{0, -1, -1}) {
		t.Errorf("scene aabb min %v; expected (0,-1,-1)", aabb.Min)
	}
	if !vec3Near(aabb.Max, mgl32.Vec3{2, 1, 1}) {
		t.Errorf("scene aabb max %v; expected (2,1,1)", aabb.Max)
	}
}

func TestDrawListCount(t *testing.T) {
	s := NewScene()
	mesh := makeUnitCube(s)

	material := s.CreateMaterial()
	first := material.CreateMaterialInstance()
	second := material.CreateMaterialInstance()

	root := s.GetRootNode()
	root.AddMeshNode(mesh, first)
	branch := root.AddTranslateNode(0, 5, 0)
	branch.AddMeshNode(mesh, first)
	branch.AddScaleNode(3).AddMeshNode(mesh, second)

	if drawList := s.ComputeDrawList(); len(drawList) != 3 {
		t.Errorf("draw list has %d entries; expected 3", len(drawList))
	}
}

func TestDrawListIdempotent(t *testing.T) {
	s := NewScene()
	mesh := makeUnitCube(s)
	instance := s.CreateMaterial().CreateMaterialInstance()

	root := s.GetRootNode()
	root.AddTranslateNode(1, 2, 3).AddMeshNode(mesh, instance)
	root.AddScaleNode(0.5).AddMeshNode(mesh, instance)

	first := s.ComputeDrawList()
	matrices := make([]mgl32.Mat4, len(first))
	for i, entry := range first {
		matrices[i] = *entry.Transform
	}

	second := s.ComputeDrawList()
	if len(second) != len(first) {
		t.Fatalf("draw list length changed from %d to %d", len(first), len(second))
	}
	for i := range second {
		if second[i].Mesh != first[i].Mesh {
			t.Errorf("entry %d mesh changed between passes", i)
		}
		if *second[i].Transform != matrices[i] {
			t.Errorf("entry %d transform changed between passes", i)
		}
	}
}

func TestBoundingBoxEmptyScene(t *testing.T) {
	s := NewScene()

	aabb := s.ComputeAxisAlignedBoundingBox()
	want := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	if aabb != want {
		t.Errorf("empty scene aabb %v; expected %v", aabb, want)
	}
}

func TestBoundingBoxNoMeshNodes(t *testing.T) {
	s := NewScene()
	s.GetRootNode().AddTranslateNode(4, 0, 0).AddScaleNode(10)

	aabb := s.ComputeAxisAlignedBoundingBox()
	want := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	if aabb != want {
		t.Errorf("meshless scene aabb %v; expected %v", aabb, want)
	}
}

func TestBoundingBoxTranslated(t *testing.T) {
	s := NewScene()
	mesh := makeUnitCube(s)
	instance := s.CreateMaterial().CreateMaterialInstance()
	s.GetRootNode().AddTranslateNode(5, 0, 0).AddMeshNode(mesh, instance)

	aabb := s.ComputeAxisAlignedBoundingBox()
	if !vec3Near(aabb.Min, mgl32.Vec3{4.5, -0.5, -0.5}) {
		t.Errorf("aabb min %v; expected (4.5,-0.5,-0.5)", aabb.Min)
	}
	if !vec3Near(aabb.Max, mgl32.Vec3{5.5, 0.5, 0.5}) {
		t.Errorf("aabb max %v; expected (5.5,0.5,0.5)", aabb.Max)
	}
}

func TestAABBExpand(t *testing.T) {
	box := EmptyAABB()

	box.Expand(mgl32.Vec3{1, -2, 3})
	if box.Min != (mgl32.Vec3{1, -2, 3}) || box.Max != (mgl32.Vec3{1, -2, 3}) {
		t.Errorf("first expand gave %v..%v; expected collapse onto the point", box.Min, box.Max)
	}

	box.Expand(mgl32.Vec3{-1, 4, 0})
	if box.Min != (mgl32.Vec3{-1, -2, 0}) {
		t.Errorf("min %v; expected (-1,-2,0)", box.Min)
	}
	if box.Max != (mgl32.Vec3{1, 4, 3}) {
		t.Errorf("max %v; expected (1,4,3)", box.Max)
	}
}

func TestAABBCenterExtent(t *testing.T) {
	box := AABB{Min: mgl32.Vec3{-1, 0, 2}, Max: mgl32.Vec3{3, 4, 6}}
	if center := box.Center(); center != (mgl32.Vec3{1, 2, 4}) {
		t.Errorf("center %v; expected (1,2,4)", center)
	}
	if box.ExtentX() != 4 || box.ExtentY() != 4 || box.ExtentZ() != 4 {
		t.Errorf("extents %v %v %v; expected 4 4 4", box.ExtentX(), box.ExtentY(), box.ExtentZ())
	}
}

func TestGetObjectById(t *testing.T) {
	s := NewScene()
	mesh := makeUnitCube(s)
	material := s.CreateMaterial()
	instance := material.CreateMaterialInstance()
	translate := s.GetRootNode().AddTranslateNode(1, 0, 0)
	meshNode := translate.AddMeshNode(mesh, instance)

	for _, object := range []Object{s.GetRootNode(), translate, meshNode, mesh, material, instance} {
		if found := s.GetObjectById(object.GetId()); found != object {
			t.Errorf("GetObjectById(%d)=%v; expected %v", object.GetId(), found, object)
		}
	}

	if found := s.GetObjectById(0); found != nil {
		t.Errorf("GetObjectById(0)=%v; expected nil", found)
	}
}

func TestEmptyMaterialInstance(t *testing.T) {
	s := NewScene()
	material := s.CreateMaterial()
	instance := material.CreateMaterialInstance()

	if drawList := s.ComputeDrawList(); len(drawList) != 0 {
		t.Errorf("draw list has %d entries; expected 0", len(drawList))
	}

	doc := material.Marshal().(map[string]interface{})
	owns := doc["owns"].([]interface{})
	if len(owns) != 1 {
		t.Fatalf("material owns %d instances; expected 1", len(owns))
	}
	instanceDoc := owns[0].(map[string]interface{})
	if got := instanceDoc["object.id"].(Id); got != instance.GetId() {
		t.Errorf("serialized instance id %v; expected %v", got, instance.GetId())
	}
	if refs := instanceDoc["object.refs"].([]Id); len(refs) != 0 {
		t.Errorf("instance refs %v; expected none", refs)
	}
}

func TestSceneMarshal(t *testing.T) {
	s := NewScene()
	mesh := makeUnitCube(s)
	mesh.SetProperty("Name", "cube")
	instance := s.CreateMaterial().CreateMaterialInstance()
	meshNode := s.GetRootNode().AddTranslateNode(0, 0, 0).AddMeshNode(mesh, instance)

	doc := s.Marshal().(map[string]interface{})
	for _, key := range []string{"scene", "materials", "meshes"} {
		if _, ex := doc[key]; !ex {
			t.Errorf("snapshot misses %q", key)
		}
	}

	root := doc["scene"].(map[string]interface{})
	if got := root["object.class"].(string); got != "root.node" {
		t.Errorf("root class %q; expected root.node", got)
	}

	owns := root["owns"].([]interface{})
	if len(owns) != 1 {
		t.Fatalf("root owns %d children; expected 1", len(owns))
	}
	translateDoc := owns[0].(map[string]interface{})
	if got := translateDoc["object.class"].(string); got != "translate.node" {
		t.Errorf("child class %q; expected translate.node", got)
	}

	meshNodeDoc := translateDoc["owns"].([]interface{})[0].(map[string]interface{})
	refs := meshNodeDoc["object.refs"].(map[string]interface{})
	if got := refs["mesh"].(Id); got != mesh.GetId() {
		t.Errorf("mesh ref %v; expected %v", got, mesh.GetId())
	}
	if got := refs["material.instance"].(Id); got != instance.GetId() {
		t.Errorf("material instance ref %v; expected %v", got, instance.GetId())
	}
	if got := meshNodeDoc["object.id"].(Id); got != meshNode.GetId() {
		t.Errorf("mesh node id %v; expected %v", got, meshNode.GetId())
	}

	if _, err := json.Marshal(doc); err != nil {
		t.Errorf("snapshot does not encode to json: %v", err)
	}
}
