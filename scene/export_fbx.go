package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mogaika/fbx/builders/bfbx73"

	"github.com/mogaika/vega_viewer/utils"
	"github.com/mogaika/vega_viewer/utils/fbxbuilder"
)

type FbxExportMaterial struct {
	FbxMaterialId int64
}

type FbxExportEntry struct {
	FbxGeometryId int64
	FbxModelId    int64
}

type FbxExporter struct {
	Entries []*FbxExportEntry
}

func exportFbxMaterialInstance(f *fbxbuilder.FBXBuilder, instance *MaterialInstance) *FbxExportMaterial {
	if cached := f.GetCached(int32(instance.GetId())); cached != nil {
		return cached.(*FbxExportMaterial)
	}

	fe := &FbxExportMaterial{FbxMaterialId: f.GenerateId()}
	defer f.AddCache(int32(instance.GetId()), fe)

	material := bfbx73.Material(fe.FbxMaterialId,
		fmt.Sprintf("%s\x00\x01Material", DisplayName(instance)), "").AddNodes(
		bfbx73.Version(102),
		bfbx73.ShadingModel("lambert"),
		bfbx73.MultiLayer(0),
		bfbx73.Properties70().AddNodes(
			bfbx73.P("AmbientColor", "Color", "", "A", float64(0), float64(0), float64(0)),
			bfbx73.P("DiffuseColor", "Color", "", "A", float64(1), float64(1), float64(1)),
			bfbx73.P("Emissive", "Vector3D", "Vector", "", float64(0), float64(0), float64(0)),
			bfbx73.P("Ambient", "Vector3D", "Vector", "", float64(0), float64(0), float64(0)),
			bfbx73.P("Diffuse", "Vector3D", "Vector", "", float64(1), float64(1), float64(1)),
			bfbx73.P("Opacity", "double", "Number", "", float64(1)),
		),
	)

	f.AddObjects(material)

	return fe
}

// exportEntry writes one geometry+model pair per mesh node. World
// transforms are baked into the vertex data so models carry identity
// locals, FBX has no slot for an arbitrary matrix.
func (fe *FbxExporter) exportEntry(f *fbxbuilder.FBXBuilder, meshNode *MeshNode) *FbxExportEntry {
	mesh := meshNode.GetMesh()
	model := *meshNode.GetTransform()
	normalMatrix := model.Mat3()

	data := mesh.GetVertices().GetData()
	vertices := make([]float32, 0, len(data)*3)
	normals := make([]float32, 0, len(data)*3)
	for i := range data {
		position := model.Mul4x1(data[i].Position.Vec4(1)).Vec3()
		vertices = append(vertices, position.X(), position.Y(), position.Z())

		normal := normalMatrix.Mul3x1(data[i].Normal)
		if normal.Len() > 0.5 {
			normal = normal.Normalize()
		}
		normals = append(normals, normal.X(), normal.Y(), normal.Z())
	}

	source := mesh.GetIndices().ToUint32()
	indexes := make([]int32, len(source))
	for i := 0; i < len(source); i += 3 {
		indexes[i] = int32(source[i])
		indexes[i+1] = int32(source[i+1])
		indexes[i+2] = -int32(source[i+2]) - 1
	}

	name := DisplayName(mesh)

	entry := &FbxExportEntry{
		FbxGeometryId: f.GenerateId(),
	}

	geometryLayer := bfbx73.Layer(0).AddNodes(
		bfbx73.Version(100),
	)

	geometry := bfbx73.Geometry(entry.FbxGeometryId, name+"\x00\x01Geometry", "Mesh").AddNodes(
		bfbx73.Properties70().AddNodes(
			bfbx73.P("Color", "ColorRGB", "Color", "", float64(1), float64(1), float64(1)),
		),
		bfbx73.GeometryVersion(124),
		bfbx73.Vertices(utils.FloatArray32to64(vertices)),
		bfbx73.PolygonVertexIndex(indexes),
		geometryLayer,
	)

	geometry.AddNode(
		bfbx73.LayerElementNormal(0).AddNodes(
			bfbx73.Version(101),
			bfbx73.Name(""),
			bfbx73.MappingInformationType("ByVertice"),
			bfbx73.ReferenceInformationType("Direct"),
			bfbx73.Normals(utils.FloatArray32to64(normals)),
		),
	)
	geometryLayer.AddNode(
		bfbx73.LayerElement().AddNodes(
			bfbx73.Type("LayerElementNormal"),
			bfbx73.TypedIndex(0),
		),
	)

	geometry.AddNode(
		bfbx73.LayerElementMaterial(0).AddNodes(
			bfbx73.Version(101),
			bfbx73.Name(""),
			bfbx73.MappingInformationType("AllSame"),
			bfbx73.ReferenceInformationType("IndexToDirect"),
			bfbx73.Materials([]int32{0}),
		),
	)
	geometryLayer.AddNode(
		bfbx73.LayerElement().AddNodes(
			bfbx73.Type("LayerElementMaterial"),
			bfbx73.TypedIndex(0),
		),
	)

	entry.FbxModelId = f.GenerateId()
	fbxModel := bfbx73.Model(entry.FbxModelId, name+"\x00\x01Model", "Mesh").AddNodes(
		bfbx73.Version(232),
		bfbx73.Properties70().AddNodes(
			bfbx73.P("InheritType", "enum", "", "", int32(1)),
			bfbx73.P("DefaultAttributeIndex", "int", "Integer", "", int32(0)),
			bfbx73.P("Lcl Translation", "Lcl Translation", "", "A", float64(0), float64(0), float64(0)),
			bfbx73.P("Lcl Rotation", "Lcl Rotation", "", "A", float64(0), float64(0), float64(0)),
			bfbx73.P("Lcl Scaling", "Lcl Scaling", "", "A", float64(1), float64(1), float64(1)),
		),
		bfbx73.Shading(true),
		bfbx73.Culling("CullingOff"),
	)

	f.AddObjects(fbxModel, geometry)
	f.AddConnections(bfbx73.C("OO", entry.FbxGeometryId, entry.FbxModelId))

	fe.Entries = append(fe.Entries, entry)

	return entry
}

// ExportFbx writes the scene into an already prepared builder. Entries
// follow draw list order, one material per material instance, shared
// meshes are duplicated per node because of transform baking.
func (s *Scene) ExportFbx(f *fbxbuilder.FBXBuilder) *FbxExporter {
	s.root.applyTransform(mgl32.Ident4())

	fe := &FbxExporter{
		Entries: make([]*FbxExportEntry, 0),
	}

	for _, material := range s.materialManager.GetMaterials() {
		for _, instance := range material.GetMaterialInstances() {
			fbxMaterial := exportFbxMaterialInstance(f, instance)

			for _, meshNode := range instance.GetMeshNodes() {
				if meshNode.GetMesh() == nil {
					continue
				}
				entry := fe.exportEntry(f, meshNode)
				f.AddConnections(bfbx73.C("OO", fbxMaterial.FbxMaterialId, entry.FbxModelId))
			}
		}
	}

	return fe
}

func (s *Scene) ExportFbxDefault(name string) *fbxbuilder.FBXBuilder {
	f := fbxbuilder.NewFBXBuilder(name)
	fe := s.ExportFbx(f)

	for _, entry := range fe.Entries {
		f.AddConnections(bfbx73.C("OO", entry.FbxModelId, 0))
	}

	return f
}
