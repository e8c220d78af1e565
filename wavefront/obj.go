package wavefront

import (
	"bytes"
	"io/ioutil"
	"log"
	"math"
	"math/rand"
	"path/filepath"

	"github.com/Pallinder/go-randomdata"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"golang.org/x/text/transform"

	"github.com/mogaika/vega_viewer/config"
	"github.com/mogaika/vega_viewer/scene"
	"github.com/mogaika/vega_viewer/status"
	"github.com/mogaika/vega_viewer/utils"
)

// cos of one degree, normals closer than that merge into one vertex
const normalMergeDot = 0.999847695

var utf8bom = []byte{0xef, 0xbb, 0xbf}

type nameGenerator map[string]struct{}

func (ng *nameGenerator) next() string {
	if *ng == nil {
		*ng = make(map[string]struct{})
		randomdata.CustomRand(rand.New(rand.NewSource(0)))
	}
	for {
		name := randomdata.SillyName()
		// avoid duplicate names
		if _, exists := (*ng)[name]; !exists {
			(*ng)[name] = struct{}{}
			return name
		}
	}
}

// cornerRef is a resolved face corner, 0-based indices into the obj
// position/texcoord/normal pools, -1 for absent slots.
type cornerRef struct {
	v int
	t int
	n int
}

type vertexMerger struct {
	vertices []scene.VertexPN
	lookup   map[mgl32.Vec3][]uint32
	aabb     scene.AABB
}

func newVertexMerger() *vertexMerger {
	return &vertexMerger{
		lookup: make(map[mgl32.Vec3][]uint32),
		aabb:   scene.EmptyAABB(),
	}
}

// add reuses an existing vertex when the position matches exactly and
// the normal diverges by less than a degree.
func (vm *vertexMerger) add(v scene.VertexPN) uint32 {
	for _, index := range vm.lookup[v.Position] {
		if vm.vertices[index].Normal.Dot(v.Normal) > normalMergeDot {
			return index
		}
	}
	index := uint32(len(vm.vertices))
	vm.vertices = append(vm.vertices, v)
	vm.lookup[v.Position] = append(vm.lookup[v.Position], index)
	vm.aabb.Expand(v.Position)
	return index
}

type objBuilder struct {
	s        *scene.Scene
	material *scene.Material

	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	texcoords int

	hasNormals bool

	names           nameGenerator
	instances       map[string]*scene.MaterialInstance
	currentInstance *scene.MaterialInstance

	shapeName string
	faces     [][3]cornerRef
	meshCount int
}

func newObjBuilder(s *scene.Scene, name string) *objBuilder {
	material := s.CreateMaterial()
	material.SetProperty("Name", name)
	return &objBuilder{
		s:         s,
		material:  material,
		instances: make(map[string]*scene.MaterialInstance),
	}
}

func (b *objBuilder) instanceFor(name string) *scene.MaterialInstance {
	if instance, ok := b.instances[name]; ok {
		return instance
	}
	instance := b.material.CreateMaterialInstance()
	if name == "" {
		instance.SetProperty("Name", b.names.next())
	} else {
		instance.SetProperty("Name", name)
	}
	b.instances[name] = instance
	return instance
}

func resolveIndex(index, count int) (int, error) {
	switch {
	case index > 0:
		if index > count {
			return 0, errors.Errorf("Index %v out of range (have %v)", index, count)
		}
		return index - 1, nil
	case index < 0:
		if -index > count {
			return 0, errors.Errorf("Index %v out of range (have %v)", index, count)
		}
		return count + index, nil
	}
	return 0, errors.Errorf("Zero index")
}

func (b *objBuilder) processFace(st *statement) error {
	if len(st.Refs) < 3 {
		return errors.Errorf("Face with %v corners on line %v", len(st.Refs), st.Line)
	}

	corners := make([]cornerRef, len(st.Refs))
	for i, ref := range st.Refs {
		v, err := resolveIndex(ref.V, len(b.positions))
		if err != nil {
			return errors.Wrapf(err, "Bad vertex index on line %v", st.Line)
		}
		corner := cornerRef{v: v, t: -1, n: -1}
		if ref.T != 0 {
			if corner.t, err = resolveIndex(ref.T, b.texcoords); err != nil {
				return errors.Wrapf(err, "Bad texcoord index on line %v", st.Line)
			}
		}
		if ref.N != 0 {
			if corner.n, err = resolveIndex(ref.N, len(b.normals)); err != nil {
				return errors.Wrapf(err, "Bad normal index on line %v", st.Line)
			}
		} else if b.hasNormals {
			return errors.Errorf("Missing normal index on line %v", st.Line)
		}
		corners[i] = corner
	}

	if b.currentInstance == nil {
		b.currentInstance = b.instanceFor("")
	}

	for i := 2; i < len(corners); i++ {
		b.faces = append(b.faces, [3]cornerRef{corners[0], corners[i-1], corners[i]})
	}
	return nil
}

func (b *objBuilder) processStatement(st *statement) error {
	switch st.Keyword {
	case "v":
		if len(st.Numbers) < 3 {
			return errors.Errorf("Vertex with %v components on line %v", len(st.Numbers), st.Line)
		}
		b.positions = append(b.positions, mgl32.Vec3{st.Numbers[0], st.Numbers[1], st.Numbers[2]})
	case "vn":
		if len(st.Numbers) < 3 {
			return errors.Errorf("Normal with %v components on line %v", len(st.Numbers), st.Line)
		}
		b.normals = append(b.normals, mgl32.Vec3{st.Numbers[0], st.Numbers[1], st.Numbers[2]})
	case "vt":
		b.texcoords++
	case "f":
		return b.processFace(st)
	case "o", "g":
		if err := b.finishShape(); err != nil {
			return err
		}
		b.shapeName = st.Name
	case "usemtl":
		if len(b.faces) != 0 {
			if err := b.finishShape(); err != nil {
				return err
			}
		}
		b.currentInstance = b.instanceFor(st.Name)
	case "mtllib":
		b.material.SetProperty("Library", st.Name)
	case "s", "vp":
		// smoothing groups and free-form points do not affect the import
	default:
		log.Printf("[wavefront] Skipping unsupported statement %q on line %v", st.Keyword, st.Line)
	}
	return nil
}

// generateMeshP builds flat shaded geometry for objs without normals.
// Every triangle contributes its own plane normal, the merger folds
// corners shared between nearly coplanar triangles back together.
func (b *objBuilder) generateMeshP() *scene.Mesh {
	merger := newVertexMerger()
	indices := make([]uint32, 0, len(b.faces)*3)
	for _, triangle := range b.faces {
		p0 := b.positions[triangle[0].v]
		p1 := b.positions[triangle[1].v]
		p2 := b.positions[triangle[2].v]
		normal := utils.TriangleNormal(p0, p1, p2)
		for _, p := range [3]mgl32.Vec3{p0, p1, p2} {
			indices = append(indices, merger.add(scene.VertexPN{Position: p, Normal: normal}))
		}
	}
	return b.createMesh(merger.aabb, merger.vertices, indices)
}

func (b *objBuilder) generateMeshPN() *scene.Mesh {
	lookup := make(map[cornerRef]uint32)
	vertices := make([]scene.VertexPN, 0, len(b.faces)*3)
	indices := make([]uint32, 0, len(b.faces)*3)
	aabb := scene.EmptyAABB()
	for _, triangle := range b.faces {
		for _, corner := range triangle {
			index, ok := lookup[corner]
			if !ok {
				index = uint32(len(vertices))
				v := scene.VertexPN{
					Position: b.positions[corner.v],
					Normal:   b.normals[corner.n],
				}
				vertices = append(vertices, v)
				aabb.Expand(v.Position)
				lookup[corner] = index
			}
			indices = append(indices, index)
		}
	}
	return b.createMesh(aabb, vertices, indices)
}

func (b *objBuilder) createMesh(aabb scene.AABB, vertices []scene.VertexPN, indices []uint32) *scene.Mesh {
	var meshIndices scene.MeshIndices
	if len(vertices) <= math.MaxUint16+1 {
		narrow := make([]uint16, len(indices))
		for i, index := range indices {
			narrow[i] = uint16(index)
		}
		meshIndices = scene.NewMeshIndices(narrow)
	} else {
		meshIndices = scene.NewMeshIndices(indices)
	}
	return b.s.CreateMesh(aabb, scene.NewMeshVertices(vertices), meshIndices)
}

func (b *objBuilder) finishShape() error {
	if len(b.faces) == 0 {
		return nil
	}

	var mesh *scene.Mesh
	if b.hasNormals {
		mesh = b.generateMeshPN()
	} else {
		mesh = b.generateMeshP()
	}

	name := b.shapeName
	if name == "" {
		name = b.names.next()
	}
	mesh.SetProperty("Name", name)

	b.s.GetRootNode().
		AddTranslateNode(0, 0, 0).
		AddRotateNode(0, 0, 1, 0).
		AddScaleNode(1).
		AddMeshNode(mesh, b.currentInstance)

	b.faces = nil
	b.meshCount++
	return nil
}

// LoadObj parses wavefront obj data and appends its shapes to the
// scene, each behind a fresh translate/rotate/scale chain. Shapes are
// split on o, g and usemtl boundaries, material instances are shared
// across shapes by usemtl name.
func LoadObj(s *scene.Scene, name string, data []byte) error {
	data = bytes.TrimPrefix(data, utf8bom)

	decoded, _, err := transform.Bytes(config.GetEncoding().NewDecoder(), data)
	if err != nil {
		return errors.Wrapf(err, "Failed to decode obj data")
	}

	statements, err := parseStatements(decoded)
	if err != nil {
		return errors.Wrapf(err, "Failed to parse obj")
	}

	b := newObjBuilder(s, name)
	for _, st := range statements {
		if st.Keyword == "vn" {
			b.hasNormals = true
			break
		}
	}

	for i, st := range statements {
		switch st.Keyword {
		case "o", "g":
			status.Progress(float32(i)/float32(len(statements)), "Loading %q: shape %q", name, st.Name)
		}
		if err := b.processStatement(st); err != nil {
			return err
		}
	}
	if err := b.finishShape(); err != nil {
		return err
	}

	status.Info("Loaded %q: %v meshes, %v positions, %v material instances",
		name, b.meshCount, len(b.positions), len(b.instances))
	return nil
}

func LoadObjFromFile(path string) (*scene.Scene, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read %q", path)
	}

	s := scene.NewScene()
	if err := LoadObj(s, filepath.Base(path), data); err != nil {
		return nil, err
	}
	return s, nil
}
