package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ValueKind enumerates the value categories an object field can expose
// to an inspector.
type ValueKind int

const (
	ValueKindNull ValueKind = iota
	ValueKindFloat
	ValueKindInt
	ValueKindReference
	ValueKindString
	ValueKindFloat3
)

func (k ValueKind) String() string {
	switch k {
	case ValueKindNull:
		return "Null"
	case ValueKindFloat:
		return "Float"
	case ValueKindInt:
		return "Int"
	case ValueKindReference:
		return "Reference"
	case ValueKindString:
		return "String"
	case ValueKindFloat3:
		return "Float3"
	}
	panic(fmt.Sprintf("scene: bad value kind %d", int(k)))
}

// Field describes one inspectable field of an object type.
type Field struct {
	Key      string
	Label    string
	Kind     ValueKind
	Editable bool
}

// Metadata is the static description of a concrete object type, shared
// by every instance of that type. The Fields list is exactly the set of
// names GetField resolves.
type Metadata struct {
	Class  string
	Name   string
	Fields []Field
}

func (m *Metadata) GetFieldByKey(key string) *Field {
	for i := range m.Fields {
		if m.Fields[i].Key == key {
			return &m.Fields[i]
		}
	}
	return nil
}

// ValueRef is a mutable view into an object field. It aliases the
// object's own storage, writing through the pointer edits the object in
// place. The zero ValueRef reports ValueKindNull and is what GetField
// returns for names it does not know.
type ValueRef struct {
	kind ValueKind
	f    *float32
	i    *int32
	s    *string
	v3   *mgl32.Vec3
	ref  Object
}

func FloatRef(f *float32) ValueRef     { return ValueRef{kind: ValueKindFloat, f: f} }
func IntRef(i *int32) ValueRef         { return ValueRef{kind: ValueKindInt, i: i} }
func StringRef(s *string) ValueRef     { return ValueRef{kind: ValueKindString, s: s} }
func Float3Ref(v *mgl32.Vec3) ValueRef { return ValueRef{kind: ValueKindFloat3, v3: v} }
func ReferenceRef(o Object) ValueRef   { return ValueRef{kind: ValueKindReference, ref: o} }

func (r ValueRef) IsValid() bool   { return r.kind != ValueKindNull }
func (r ValueRef) Kind() ValueKind { return r.kind }

// Accessors return nil when the ref holds a different kind.
func (r ValueRef) Float() *float32   { return r.f }
func (r ValueRef) Int() *int32       { return r.i }
func (r ValueRef) Str() *string      { return r.s }
func (r ValueRef) Vec3() *mgl32.Vec3 { return r.v3 }
func (r ValueRef) Reference() Object { return r.ref }

// GetValue reads the current value behind the ref. References resolve
// to the referenced object's id.
func (r ValueRef) GetValue() interface{} {
	switch r.kind {
	case ValueKindNull:
		return nil
	case ValueKindFloat:
		return *r.f
	case ValueKindInt:
		return *r.i
	case ValueKindString:
		return *r.s
	case ValueKindFloat3:
		return *r.v3
	case ValueKindReference:
		return r.ref.GetId()
	}
	panic(fmt.Sprintf("scene: bad value kind %d", int(r.kind)))
}
