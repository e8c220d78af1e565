package scene

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
)

// ExportObj writes the scene as Wavefront OBJ text, one object per mesh
// node with vertices already in world space. Instanced meshes repeat
// their vertex data per node.
func (s *Scene) ExportObj(_w io.Writer) error {
	w := func(format string, args ...interface{}) {
		_w.Write(([]byte)(fmt.Sprintf(format+"\n", args...)))
	}

	s.root.applyTransform(mgl32.Ident4())

	for _, material := range s.materialManager.GetMaterials() {
		for _, instance := range material.GetMaterialInstances() {
			for _, meshNode := range instance.GetMeshNodes() {
				mesh := meshNode.GetMesh()
				if mesh == nil {
					continue
				}
				model := *meshNode.GetTransform()
				normalMatrix := model.Mat3()

				for _, vertex := range mesh.GetVertices().GetData() {
					position := model.Mul4x1(vertex.Position.Vec4(1)).Vec3()
					w("v %f %f %f", position.X(), position.Y(), position.Z())
				}

				for _, vertex := range mesh.GetVertices().GetData() {
					normal := normalMatrix.Mul3x1(vertex.Normal)
					if normal.Len() > 0.5 {
						normal = normal.Normalize()
					}
					w("vn %f %f %f", normal.X(), normal.Y(), normal.Z())
				}
			}
		}
	}

	iV := uint32(1)
	iN := uint32(1)

	for _, material := range s.materialManager.GetMaterials() {
		for _, instance := range material.GetMaterialInstances() {
			for _, meshNode := range instance.GetMeshNodes() {
				mesh := meshNode.GetMesh()
				if mesh == nil {
					continue
				}

				w("o %s", DisplayName(mesh))
				w("usemtl %s", DisplayName(instance))

				indexes := mesh.GetIndices().ToUint32()
				for i := 0; i < len(indexes); i += 3 {
					w("f %v//%v %v//%v %v//%v",
						iV+indexes[i], iN+indexes[i],
						iV+indexes[i+1], iN+indexes[i+1],
						iV+indexes[i+2], iN+indexes[i+2])
				}

				iV += uint32(mesh.GetVertices().GetCount())
				iN += uint32(mesh.GetVertices().GetCount())
			}
		}
	}

	return nil
}
