package scene

import "github.com/go-gl/mathgl/mgl32"

// Node is an element of the scene hierarchy: a transform operator or a
// mesh reference leaf. The node set is closed, the apply method keeps
// implementations inside this package.
type Node interface {
	Object
	GetChildren() []Node
	applyTransform(world mgl32.Mat4)
}

// branchNode owns an ordered child list and provides the tree building
// calls shared by every transform bearing node. Children have exactly
// one parent, the hierarchy is a strict tree.
type branchNode struct {
	BaseObject
	children []Node
}

func (n *branchNode) GetChildren() []Node { return n.children }

func (n *branchNode) AddTranslateNode(x, y, z float32) *TranslateNode {
	child := &TranslateNode{
		branchNode: branchNode{BaseObject: newBaseObject()},
		amount:     mgl32.Vec3{x, y, z},
	}
	n.children = append(n.children, child)
	return child
}

// AddRotateNode appends a child rotating about the axis (x, y, z) by
// angle radians.
func (n *branchNode) AddRotateNode(x, y, z, angle float32) *RotateNode {
	child := &RotateNode{
		branchNode: branchNode{BaseObject: newBaseObject()},
		axis:       mgl32.Vec3{x, y, z},
		angle:      angle,
	}
	n.children = append(n.children, child)
	return child
}

func (n *branchNode) AddScaleNode(factor float32) *ScaleNode {
	child := &ScaleNode{
		branchNode: branchNode{BaseObject: newBaseObject()},
		factor:     factor,
	}
	n.children = append(n.children, child)
	return child
}

// AddMeshNode appends a leaf referencing mesh and instance and registers
// the leaf on the instance for draw list grouping. Both arguments are
// required, nil is a contract violation.
func (n *branchNode) AddMeshNode(mesh *Mesh, instance *MaterialInstance) *MeshNode {
	if mesh == nil || instance == nil {
		panic("scene: AddMeshNode needs a mesh and a material instance")
	}
	child := &MeshNode{
		BaseObject:       newBaseObject(),
		mesh:             mesh,
		materialInstance: instance,
		transform:        mgl32.Ident4(),
	}
	instance.addMeshNode(child)
	n.children = append(n.children, child)
	return child
}

func (n *branchNode) propagate(world mgl32.Mat4) {
	for _, child := range n.children {
		child.applyTransform(world)
	}
}

func (n *branchNode) marshalChildren(doc map[string]interface{}) {
	owns := make([]interface{}, 0, len(n.children))
	for _, child := range n.children {
		owns = append(owns, child.Marshal())
	}
	doc["owns"] = owns
}

// RootNode anchors the hierarchy. It contributes no transform of its
// own, the accumulated matrix passes through unchanged.
type RootNode struct {
	branchNode
}

var rootNodeMetadata = Metadata{Class: "root.node", Name: "Root"}

func (n *RootNode) GetMetadata() *Metadata { return &rootNodeMetadata }

func (n *RootNode) GetField(string) ValueRef { return ValueRef{} }

func (n *RootNode) applyTransform(world mgl32.Mat4) {
	n.propagate(world)
}

func (n *RootNode) Marshal() interface{} {
	doc := n.marshalBase(&rootNodeMetadata)
	n.marshalChildren(doc)
	return doc
}

// TranslateNode offsets everything below it.
type TranslateNode struct {
	branchNode
	amount mgl32.Vec3
}

var translateNodeMetadata = Metadata{
	Class: "translate.node",
	Name:  "Translate",
	Fields: []Field{
		{Key: "translate.amount", Label: "Amount", Kind: ValueKindFloat3, Editable: true},
	},
}

func (n *TranslateNode) GetMetadata() *Metadata { return &translateNodeMetadata }

func (n *TranslateNode) GetField(name string) ValueRef {
	if name == "translate.amount" {
		return Float3Ref(&n.amount)
	}
	return ValueRef{}
}

func (n *TranslateNode) applyTransform(world mgl32.Mat4) {
	local := mgl32.Translate3D(n.amount.X(), n.amount.Y(), n.amount.Z())
	n.propagate(world.Mul4(local))
}

func (n *TranslateNode) Marshal() interface{} {
	doc := n.marshalBase(&translateNodeMetadata)
	doc["object.values"] = map[string]interface{}{"translate": n.amount}
	n.marshalChildren(doc)
	return doc
}

// RotateNode rotates everything below it about a fixed axis.
type RotateNode struct {
	branchNode
	axis  mgl32.Vec3
	angle float32 // radians
}

var rotateNodeMetadata = Metadata{
	Class: "rotate.node",
	Name:  "Rotate",
	Fields: []Field{
		{Key: "rotate.axis", Label: "Axis", Kind: ValueKindFloat3, Editable: true},
		{Key: "rotate.angle", Label: "Angle", Kind: ValueKindFloat, Editable: true},
	},
}

func (n *RotateNode) GetMetadata() *Metadata { return &rotateNodeMetadata }

func (n *RotateNode) GetField(name string) ValueRef {
	switch name {
	case "rotate.axis":
		return Float3Ref(&n.axis)
	case "rotate.angle":
		return FloatRef(&n.angle)
	}
	return ValueRef{}
}

func (n *RotateNode) applyTransform(world mgl32.Mat4) {
	local := mgl32.HomogRotate3D(n.angle, n.axis)
	n.propagate(world.Mul4(local))
}

func (n *RotateNode) Marshal() interface{} {
	doc := n.marshalBase(&rotateNodeMetadata)
	doc["object.values"] = map[string]interface{}{
		"rotate.axis":  n.axis,
		"rotate.angle": n.angle,
	}
	n.marshalChildren(doc)
	return doc
}

// ScaleNode scales everything below it uniformly.
type ScaleNode struct {
	branchNode
	factor float32
}

var scaleNodeMetadata = Metadata{
	Class: "scale.node",
	Name:  "Scale",
	Fields: []Field{
		{Key: "scale.factor", Label: "Factor", Kind: ValueKindFloat, Editable: true},
	},
}

func (n *ScaleNode) GetMetadata() *Metadata { return &scaleNodeMetadata }

func (n *ScaleNode) GetField(name string) ValueRef {
	if name == "scale.factor" {
		return FloatRef(&n.factor)
	}
	return ValueRef{}
}

func (n *ScaleNode) applyTransform(world mgl32.Mat4) {
	local := mgl32.Scale3D(n.factor, n.factor, n.factor)
	n.propagate(world.Mul4(local))
}

func (n *ScaleNode) Marshal() interface{} {
	doc := n.marshalBase(&scaleNodeMetadata)
	doc["object.values"] = map[string]interface{}{"scale": n.factor}
	n.marshalChildren(doc)
	return doc
}

// MeshNode binds a mesh and a material instance at one point of the
// hierarchy. Always a leaf.
type MeshNode struct {
	BaseObject
	mesh             *Mesh
	materialInstance *MaterialInstance
	transform        mgl32.Mat4
}

var meshNodeMetadata = Metadata{
	Class: "mesh.node",
	Name:  "Mesh Node",
	Fields: []Field{
		{Key: "mesh", Label: "Mesh", Kind: ValueKindReference},
		{Key: "material.instance", Label: "Material Instance", Kind: ValueKindReference},
	},
}

func (n *MeshNode) GetMetadata() *Metadata { return &meshNodeMetadata }

func (n *MeshNode) GetChildren() []Node { return nil }

func (n *MeshNode) GetField(name string) ValueRef {
	switch name {
	case "mesh":
		return ReferenceRef(n.mesh)
	case "material.instance":
		return ReferenceRef(n.materialInstance)
	}
	return ValueRef{}
}

func (n *MeshNode) GetMesh() *Mesh { return n.mesh }

func (n *MeshNode) GetMaterialInstance() *MaterialInstance { return n.materialInstance }

// GetTransform returns a pointer to the world transform written by the
// last propagation pass. The matrix is overwritten in place by the next
// pass, consumers holding the pointer must read it before then.
func (n *MeshNode) GetTransform() *mgl32.Mat4 { return &n.transform }

func (n *MeshNode) applyTransform(world mgl32.Mat4) {
	n.transform = world
}

func (n *MeshNode) Marshal() interface{} {
	doc := n.marshalBase(&meshNodeMetadata)
	doc["object.refs"] = map[string]interface{}{
		"mesh":              n.mesh.GetId(),
		"material.instance": n.materialInstance.GetId(),
	}
	return doc
}
