package scene

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// DisplayName resolves the name an exporter or inspector shows for an
// object: the "Name" property when set, otherwise class and id.
func DisplayName(o Object) string {
	if value, ok := o.GetProperty("Name"); ok {
		if name, ok := value.(string); ok && name != "" {
			return name
		}
	}
	return fmt.Sprintf("%s_%d", o.GetMetadata().Class, o.GetId())
}

// ExportGLTF builds a glTF 2.0 document from the current scene: one
// glTF mesh per referenced Mesh resource, one node per mesh node
// carrying its world matrix, one material per scene material.
func (s *Scene) ExportGLTF() *gltf.Document {
	s.root.applyTransform(mgl32.Ident4())

	doc := gltf.NewDocument()
	meshIndices := make(map[Id]uint32)

	for _, material := range s.materialManager.GetMaterials() {
		materialIndex := uint32(len(doc.Materials))
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name:        DisplayName(material),
			DoubleSided: true,
		})

		for _, instance := range material.GetMaterialInstances() {
			for _, meshNode := range instance.GetMeshNodes() {
				mesh := meshNode.GetMesh()
				if mesh == nil {
					continue
				}

				meshIndex, ok := meshIndices[mesh.GetId()]
				if !ok {
					meshIndex = writeGLTFMesh(doc, mesh, materialIndex)
					meshIndices[mesh.GetId()] = meshIndex
				}

				doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
				doc.Nodes = append(doc.Nodes, &gltf.Node{
					Name:   fmt.Sprintf("node_%d", meshNode.GetId()),
					Mesh:   gltf.Index(meshIndex),
					Matrix: *meshNode.GetTransform(),
				})
			}
		}
	}

	return doc
}

func writeGLTFMesh(doc *gltf.Document, mesh *Mesh, materialIndex uint32) uint32 {
	data := mesh.GetVertices().GetData()

	positions := make([][3]float32, len(data))
	normals := make([][3]float32, len(data))
	for i, vertex := range data {
		positions[i] = vertex.Position

		normal := vertex.Normal
		if normal.Len() > 0.5 {
			normal = normal.Normalize()
		}
		normals[i] = normal
	}

	positionAccessor := modeler.WritePosition(doc, positions)
	normalsAccessor := modeler.WriteNormal(doc, normals)
	indicesAccessor := modeler.WriteIndices(doc, mesh.GetIndices().ToUint32())

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: DisplayName(mesh),
		Primitives: []*gltf.Primitive{
			&gltf.Primitive{
				Indices: &indicesAccessor,
				Attributes: map[string]uint32{
					"POSITION": positionAccessor,
					"NORMAL":   normalsAccessor,
				},
				Material: gltf.Index(materialIndex),
			},
		},
	})
	return uint32(len(doc.Meshes) - 1)
}

// ExportGLTFBinary writes the scene as a single .glb blob.
func (s *Scene) ExportGLTFBinary(w io.Writer) error {
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(s.ExportGLTF())
}
