package scene

// Material groups draw entries that share a shading pipeline. It owns
// its instances; instances are append only like everything else in the
// registries.
type Material struct {
	BaseObject
	instances []*MaterialInstance
}

var materialMetadata = Metadata{Class: "material", Name: "Material"}

func (m *Material) GetMetadata() *Metadata { return &materialMetadata }

func (m *Material) GetField(string) ValueRef { return ValueRef{} }

func (m *Material) CreateMaterialInstance() *MaterialInstance {
	instance := &MaterialInstance{BaseObject: newBaseObject()}
	m.instances = append(m.instances, instance)
	return instance
}

func (m *Material) GetMaterialInstances() []*MaterialInstance { return m.instances }

func (m *Material) Marshal() interface{} {
	doc := m.marshalBase(&materialMetadata)
	owns := make([]interface{}, 0, len(m.instances))
	for _, instance := range m.instances {
		owns = append(owns, instance.Marshal())
	}
	doc["owns"] = owns
	return doc
}

// MaterialInstance is the per instance binding level of the grouping.
// It keeps back references to the mesh nodes that use it so the draw
// list can be flattened without walking the tree. The nodes belong to
// the tree, not to the instance.
type MaterialInstance struct {
	BaseObject
	meshNodes []*MeshNode
}

var materialInstanceMetadata = Metadata{Class: "material.instance", Name: "Material Instance"}

func (mi *MaterialInstance) GetMetadata() *Metadata { return &materialInstanceMetadata }

func (mi *MaterialInstance) GetField(string) ValueRef { return ValueRef{} }

func (mi *MaterialInstance) GetMeshNodes() []*MeshNode { return mi.meshNodes }

func (mi *MaterialInstance) addMeshNode(node *MeshNode) {
	mi.meshNodes = append(mi.meshNodes, node)
}

func (mi *MaterialInstance) Marshal() interface{} {
	doc := mi.marshalBase(&materialInstanceMetadata)
	refs := make([]Id, 0, len(mi.meshNodes))
	for _, node := range mi.meshNodes {
		refs = append(refs, node.GetId())
	}
	doc["object.refs"] = refs
	return doc
}
