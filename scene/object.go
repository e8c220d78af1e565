package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Object is implemented by everything that lives in a scene: hierarchy
// nodes, meshes, materials and material instances.
type Object interface {
	GetId() Id
	GetMetadata() *Metadata
	GetField(name string) ValueRef

	HasProperties() bool
	GetProperty(key string) (interface{}, bool)
	SetProperty(key string, value interface{})
	RemoveProperty(key string)

	Marshal() interface{}
}

// BaseObject carries the id and the lazily allocated property
// dictionary shared by every object implementation.
type BaseObject struct {
	id         Id
	properties map[string]interface{}
}

func newBaseObject() BaseObject {
	return BaseObject{id: GenerateId()}
}

func (o *BaseObject) GetId() Id { return o.id }

func (o *BaseObject) HasProperties() bool { return len(o.properties) != 0 }

func (o *BaseObject) GetProperty(key string) (interface{}, bool) {
	value, ok := o.properties[key]
	return value, ok
}

// SetProperty inserts or overwrites an annotation. Accepted value types
// are int, int32, float32, float64, string and mgl32.Vec3. The backing
// map is allocated on first use and lives as long as the object.
func (o *BaseObject) SetProperty(key string, value interface{}) {
	switch value.(type) {
	case int, int32, float32, float64, string, mgl32.Vec3:
	default:
		panic(fmt.Sprintf("scene: unsupported property type %T", value))
	}
	if o.properties == nil {
		o.properties = make(map[string]interface{})
	}
	o.properties[key] = value
}

// RemoveProperty drops an annotation. Unknown keys, or an object that
// never had a property set, are a no-op.
func (o *BaseObject) RemoveProperty(key string) {
	delete(o.properties, key)
}

// marshalBase emits the keys common to every object document. Property
// ordering is left to the encoder, which sorts map keys, so snapshots
// diff cleanly between runs.
func (o *BaseObject) marshalBase(meta *Metadata) map[string]interface{} {
	doc := map[string]interface{}{
		"object.class": meta.Class,
		"object.id":    o.id,
	}
	if len(o.properties) != 0 {
		properties := make(map[string]interface{}, len(o.properties))
		for key, value := range o.properties {
			properties[key] = value
		}
		doc["object.properties"] = properties
	}
	return doc
}
