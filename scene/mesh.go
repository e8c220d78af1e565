package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexFlags describe which attributes a vertex layout carries.
type VertexFlags uint32

const (
	Position3f VertexFlags = 1 << iota
	Normal3f
)

// String lists the set flags from lowest bit up, e.g.
// "Position3f, Normal3f".
func (f VertexFlags) String() string {
	var out string
	for mask := f; mask != 0; {
		bit := mask & -mask
		if out != "" {
			out += ", "
		}
		switch bit {
		case Position3f:
			out += "Position3f"
		case Normal3f:
			out += "Normal3f"
		default:
			panic(fmt.Sprintf("scene: bad vertex flag %#x", uint32(bit)))
		}
		mask ^= bit
	}
	return out
}

// VertexPN is the interleaved position+normal vertex the importers
// produce.
type VertexPN struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
}

const vertexPNSize = 24 // bytes, two packed Vec3

// MeshVertices owns a vertex buffer together with its layout
// description. The descriptor fields are what the inspector sees.
type MeshVertices struct {
	attributes string
	vertexSize int32
	count      int32
	size       int32
	data       []VertexPN
}

func NewMeshVertices(vertices []VertexPN) MeshVertices {
	return MeshVertices{
		attributes: (Position3f | Normal3f).String(),
		vertexSize: vertexPNSize,
		count:      int32(len(vertices)),
		size:       int32(len(vertices) * vertexPNSize),
		data:       vertices,
	}
}

func (v *MeshVertices) GetVertexAttributes() string { return v.attributes }
func (v *MeshVertices) GetVertexSize() int32        { return v.vertexSize }
func (v *MeshVertices) GetCount() int32             { return v.count }
func (v *MeshVertices) GetSize() int32              { return v.size }
func (v *MeshVertices) GetData() []VertexPN         { return v.data }

func (v *MeshVertices) marshal() interface{} {
	return map[string]interface{}{
		"vertex.attributes": v.attributes,
		"vertex.size":       v.vertexSize,
		"vertex.count":      v.count,
		"vertices.size":     v.size,
	}
}

// MeshIndices owns an index buffer. Elements are []uint16 or []uint32,
// the descriptor keeps the narrow form visible to the inspector.
type MeshIndices struct {
	indexType string
	indexSize int32
	count     int32
	size      int32
	data      interface{}
}

func NewMeshIndices(indices interface{}) MeshIndices {
	switch v := indices.(type) {
	case []uint16:
		return MeshIndices{
			indexType: "int16",
			indexSize: 2,
			count:     int32(len(v)),
			size:      int32(2 * len(v)),
			data:      v,
		}
	case []uint32:
		return MeshIndices{
			indexType: "int32",
			indexSize: 4,
			count:     int32(len(v)),
			size:      int32(4 * len(v)),
			data:      v,
		}
	}
	panic(fmt.Sprintf("scene: unsupported index type %T", indices))
}

func (i *MeshIndices) GetIndexType() string { return i.indexType }
func (i *MeshIndices) GetIndexSize() int32  { return i.indexSize }
func (i *MeshIndices) GetCount() int32      { return i.count }
func (i *MeshIndices) GetSize() int32       { return i.size }
func (i *MeshIndices) GetData() interface{} { return i.data }

// ToUint32 widens the buffer for consumers that only take 32 bit
// indices. The wide form is returned as is.
func (i *MeshIndices) ToUint32() []uint32 {
	switch v := i.data.(type) {
	case []uint16:
		out := make([]uint32, len(v))
		for n, index := range v {
			out[n] = uint32(index)
		}
		return out
	case []uint32:
		return v
	}
	return nil
}

func (i *MeshIndices) marshal() interface{} {
	return map[string]interface{}{
		"index.class":  i.indexType,
		"index.size":   i.indexSize,
		"index.count":  i.count,
		"indices.size": i.size,
	}
}

// Mesh is an immutable geometry resource created through the mesh
// manager. Only its property dictionary may change afterwards, for
// display names and importer annotations.
type Mesh struct {
	BaseObject
	aabb     AABB
	vertices MeshVertices
	indices  MeshIndices
}

var meshMetadata = Metadata{
	Class: "object.mesh",
	Name:  "Mesh",
	Fields: []Field{
		{Key: "aabb.min", Label: "Min", Kind: ValueKindFloat3},
		{Key: "aabb.max", Label: "Max", Kind: ValueKindFloat3},
		{Key: "vertex.attributes", Label: "Vertex Attributes", Kind: ValueKindString},
		{Key: "vertex.size", Label: "Vertex Size", Kind: ValueKindInt},
		{Key: "vertex.count", Label: "Vertex Count", Kind: ValueKindInt},
		{Key: "index.type", Label: "Index Type", Kind: ValueKindString},
		{Key: "index.size", Label: "Index Size", Kind: ValueKindInt},
		{Key: "index.count", Label: "Index Count", Kind: ValueKindInt},
	},
}

func (m *Mesh) GetMetadata() *Metadata { return &meshMetadata }

func (m *Mesh) GetBoundingBox() AABB       { return m.aabb }
func (m *Mesh) GetVertices() *MeshVertices { return &m.vertices }
func (m *Mesh) GetIndices() *MeshIndices   { return &m.indices }

func (m *Mesh) GetField(name string) ValueRef {
	switch name {
	case "aabb.min":
		return Float3Ref(&m.aabb.Min)
	case "aabb.max":
		return Float3Ref(&m.aabb.Max)
	case "vertex.attributes":
		return StringRef(&m.vertices.attributes)
	case "vertex.size":
		return IntRef(&m.vertices.vertexSize)
	case "vertex.count":
		return IntRef(&m.vertices.count)
	case "index.type":
		return StringRef(&m.indices.indexType)
	case "index.size":
		return IntRef(&m.indices.indexSize)
	case "index.count":
		return IntRef(&m.indices.count)
	}
	return ValueRef{}
}

func (m *Mesh) Marshal() interface{} {
	doc := m.marshalBase(&meshMetadata)
	doc["object.values"] = map[string]interface{}{
		"aabb":     m.aabb.Marshal(),
		"vertices": m.vertices.marshal(),
		"indices":  m.indices.marshal(),
	}
	return doc
}
