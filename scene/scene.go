// Package scene implements the viewer's scene graph: a strict tree of
// transform nodes over shared mesh and material resources, compiled on
// demand into a flat draw list for whatever renders it.
package scene

import "github.com/go-gl/mathgl/mgl32"

// MaterialManager owns every material of one scene. Registries are
// append only, iteration follows creation order so ids ascend and
// snapshots stay reproducible.
type MaterialManager struct {
	materials map[Id]*Material
	order     []Id
}

func NewMaterialManager() *MaterialManager {
	return &MaterialManager{materials: make(map[Id]*Material)}
}

func (mm *MaterialManager) CreateMaterial() *Material {
	material := &Material{BaseObject: newBaseObject()}
	mm.materials[material.GetId()] = material
	mm.order = append(mm.order, material.GetId())
	return material
}

func (mm *MaterialManager) GetMaterials() []*Material {
	out := make([]*Material, 0, len(mm.order))
	for _, id := range mm.order {
		out = append(out, mm.materials[id])
	}
	return out
}

func (mm *MaterialManager) Marshal() interface{} {
	out := make([]interface{}, 0, len(mm.order))
	for _, material := range mm.GetMaterials() {
		out = append(out, material.Marshal())
	}
	return out
}

// MeshManager owns every mesh of one scene.
type MeshManager struct {
	meshes map[Id]*Mesh
	order  []Id
}

func NewMeshManager() *MeshManager {
	return &MeshManager{meshes: make(map[Id]*Mesh)}
}

func (mm *MeshManager) CreateMesh(aabb AABB, vertices MeshVertices, indices MeshIndices) *Mesh {
	mesh := &Mesh{
		BaseObject: newBaseObject(),
		aabb:       aabb,
		vertices:   vertices,
		indices:    indices,
	}
	mm.meshes[mesh.GetId()] = mesh
	mm.order = append(mm.order, mesh.GetId())
	return mesh
}

func (mm *MeshManager) GetMeshes() []*Mesh {
	out := make([]*Mesh, 0, len(mm.order))
	for _, id := range mm.order {
		out = append(out, mm.meshes[id])
	}
	return out
}

func (mm *MeshManager) Marshal() interface{} {
	out := make([]interface{}, 0, len(mm.order))
	for _, mesh := range mm.GetMeshes() {
		out = append(out, mesh.Marshal())
	}
	return out
}

// DrawEntry pairs a mesh with the world transform of one mesh node.
type DrawEntry struct {
	Mesh      *Mesh
	Transform *mgl32.Mat4
}

// DrawList is the flattened, renderer ready form of the scene, grouped
// by material then material instance.
type DrawList []DrawEntry

// Scene owns one root node and both resource managers. All mutation
// runs on a single goroutine, only GenerateId is safe concurrently.
type Scene struct {
	root            *RootNode
	materialManager *MaterialManager
	meshManager     *MeshManager
}

func NewScene() *Scene {
	return &Scene{
		root:            &RootNode{branchNode{BaseObject: newBaseObject()}},
		materialManager: NewMaterialManager(),
		meshManager:     NewMeshManager(),
	}
}

func (s *Scene) GetRootNode() *RootNode { return s.root }

func (s *Scene) CreateMaterial() *Material {
	return s.materialManager.CreateMaterial()
}

func (s *Scene) CreateMesh(aabb AABB, vertices MeshVertices, indices MeshIndices) *Mesh {
	return s.meshManager.CreateMesh(aabb, vertices, indices)
}

func (s *Scene) GetMaterials() []*Material { return s.materialManager.GetMaterials() }

func (s *Scene) GetMeshes() []*Mesh { return s.meshManager.GetMeshes() }

// ComputeDrawList reapplies transforms from the root, then flattens the
// material grouping into draw entries. Entries alias node owned
// transform storage, consume the list before the next propagation pass
// overwrites it.
func (s *Scene) ComputeDrawList() DrawList {
	s.root.applyTransform(mgl32.Ident4())

	drawList := make(DrawList, 0)
	for _, material := range s.materialManager.GetMaterials() {
		for _, instance := range material.GetMaterialInstances() {
			for _, meshNode := range instance.GetMeshNodes() {
				if meshNode.GetMesh() == nil {
					continue
				}
				drawList = append(drawList, DrawEntry{
					Mesh:      meshNode.GetMesh(),
					Transform: meshNode.GetTransform(),
				})
			}
		}
	}
	return drawList
}

// ComputeAxisAlignedBoundingBox folds every mesh node's box into world
// space. Only the two stored corners go through each transform, a
// rotated mesh can come out under tight. A scene without mesh geometry
// returns the fixed box {(-1,-1,-1),(1,1,1)} so camera framing never
// sees a degenerate extent.
func (s *Scene) ComputeAxisAlignedBoundingBox() AABB {
	if len(s.root.GetChildren()) == 0 {
		return defaultSceneAABB()
	}

	s.root.applyTransform(mgl32.Ident4())

	out := EmptyAABB()
	merged := 0
	for _, material := range s.materialManager.GetMaterials() {
		for _, instance := range material.GetMaterialInstances() {
			for _, meshNode := range instance.GetMeshNodes() {
				mesh := meshNode.GetMesh()
				if mesh == nil {
					continue
				}
				model := *meshNode.GetTransform()
				box := mesh.GetBoundingBox()
				out.Expand(model.Mul4x1(box.Min.Vec4(1)).Vec3())
				out.Expand(model.Mul4x1(box.Max.Vec4(1)).Vec3())
				merged++
			}
		}
	}
	if merged == 0 {
		return defaultSceneAABB()
	}
	return out
}

func defaultSceneAABB() AABB {
	return AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
}

// GetObjectById resolves any live object of the scene: hierarchy nodes,
// materials, material instances and meshes. Returns nil when the id is
// unknown.
func (s *Scene) GetObjectById(id Id) Object {
	if node := findNode(s.root, id); node != nil {
		return node
	}
	for _, material := range s.materialManager.GetMaterials() {
		if material.GetId() == id {
			return material
		}
		for _, instance := range material.GetMaterialInstances() {
			if instance.GetId() == id {
				return instance
			}
		}
	}
	for _, mesh := range s.meshManager.GetMeshes() {
		if mesh.GetId() == id {
			return mesh
		}
	}
	return nil
}

func findNode(node Node, id Id) Node {
	if node.GetId() == id {
		return node
	}
	for _, child := range node.GetChildren() {
		if found := findNode(child, id); found != nil {
			return found
		}
	}
	return nil
}

// Marshal produces the full structured snapshot: the tree under
// "scene", the flat registries under "materials" and "meshes".
func (s *Scene) Marshal() interface{} {
	return map[string]interface{}{
		"scene":     s.root.Marshal(),
		"materials": s.materialManager.Marshal(),
		"meshes":    s.meshManager.Marshal(),
	}
}
