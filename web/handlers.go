package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/vega_viewer/camera"
	"github.com/mogaika/vega_viewer/config"
	"github.com/mogaika/vega_viewer/scene"
	"github.com/mogaika/vega_viewer/status"
	"github.com/mogaika/vega_viewer/utils"
	"github.com/mogaika/vega_viewer/webutils"
)

func parseAspect(r *http.Request) float32 {
	if arg := r.URL.Query().Get("aspect"); arg != "" {
		if aspect, err := strconv.ParseFloat(arg, 32); err == nil && aspect > 0 {
			return float32(aspect)
		}
	}
	return config.GetSettings().Camera.Aspect
}

func formFloat(r *http.Request, key string) (float32, error) {
	value, err := strconv.ParseFloat(r.FormValue(key), 32)
	if err != nil {
		return 0, fmt.Errorf("Parameter %q is not a float (%q)", key, r.FormValue(key))
	}
	return float32(value), nil
}

// findRequestObject resolves the {id} route variable. Callers hold the
// viewer lock.
func findRequestObject(w http.ResponseWriter, r *http.Request) (scene.Object, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		webutils.WriteError(w, fmt.Errorf("Object id %q is not an integer", raw))
		return nil, false
	}
	object := viewer.scene.GetObjectById(scene.Id(id))
	if object == nil {
		webutils.WriteError(w, fmt.Errorf("No object with id %v", id))
		return nil, false
	}
	return object, true
}

func HandlerJsonScene(w http.ResponseWriter, r *http.Request) {
	viewer.mu.Lock()
	defer viewer.mu.Unlock()

	webutils.WriteJson(w, viewer.scene.Marshal())
}

func HandlerJsonDrawList(w http.ResponseWriter, r *http.Request) {
	viewer.mu.Lock()
	defer viewer.mu.Unlock()

	drawList := viewer.scene.ComputeDrawList()
	entries := make([]interface{}, 0, len(drawList))
	for _, entry := range drawList {
		entries = append(entries, map[string]interface{}{
			"mesh":      entry.Mesh.GetId(),
			"transform": *entry.Transform,
		})
	}
	webutils.WriteJson(w, entries)
}

func HandlerJsonAABB(w http.ResponseWriter, r *http.Request) {
	viewer.mu.Lock()
	defer viewer.mu.Unlock()

	box := viewer.scene.ComputeAxisAlignedBoundingBox()
	webutils.WriteJson(w, box.Marshal())
}

func HandlerJsonCamera(w http.ResponseWriter, r *http.Request) {
	viewer.mu.Lock()
	defer viewer.mu.Unlock()

	webutils.WriteJson(w, viewer.camera.Marshal(parseAspect(r)))
}

func HandlerJsonObject(w http.ResponseWriter, r *http.Request) {
	viewer.mu.Lock()
	defer viewer.mu.Unlock()

	if object, ok := findRequestObject(w, r); ok {
		webutils.WriteJson(w, object.Marshal())
	}
}

func HandlerJsonObjectMeta(w http.ResponseWriter, r *http.Request) {
	viewer.mu.Lock()
	defer viewer.mu.Unlock()

	object, ok := findRequestObject(w, r)
	if !ok {
		return
	}

	meta := object.GetMetadata()
	fields := make([]interface{}, 0, len(meta.Fields))
	for _, field := range meta.Fields {
		fields = append(fields, map[string]interface{}{
			"key":      field.Key,
			"label":    field.Label,
			"kind":     field.Kind.String(),
			"editable": field.Editable,
		})
	}
	webutils.WriteJson(w, map[string]interface{}{
		"class":  meta.Class,
		"name":   meta.Name,
		"fields": fields,
	})
}

func HandlerActionCamera(w http.ResponseWriter, r *http.Request) {
	if strings.ToUpper(r.Method) != "POST" {
		webutils.WriteError(w, fmt.Errorf("Invalid http method %q", r.Method))
		return
	}

	viewer.mu.Lock()
	defer viewer.mu.Unlock()

	switch action := mux.Vars(r)["action"]; action {
	case "orbit":
		elevation, err := formFloat(r, "elevation")
		if err != nil {
			webutils.WriteError(w, err)
			return
		}
		azimuth, err := formFloat(r, "azimuth")
		if err != nil {
			webutils.WriteError(w, err)
			return
		}
		viewer.camera.Orbit(mgl32.DegToRad(elevation), mgl32.DegToRad(azimuth))
	case "zoom":
		delta, err := formFloat(r, "delta")
		if err != nil {
			webutils.WriteError(w, err)
			return
		}
		viewer.camera.Zoom(delta)
	case "track":
		x, err := formFloat(r, "x")
		if err != nil {
			webutils.WriteError(w, err)
			return
		}
		y, err := formFloat(r, "y")
		if err != nil {
			webutils.WriteError(w, err)
			return
		}
		viewer.camera.Track(x, y)
	case "reset":
		viewer.camera = camera.NewCamera(viewer.scene.ComputeAxisAlignedBoundingBox(),
			config.GetSettings().Camera.Fov, parseAspect(r))
	default:
		webutils.WriteError(w, fmt.Errorf("Unknown camera action %q", action))
		return
	}

	webutils.WriteJson(w, viewer.camera.Marshal(parseAspect(r)))
}

func HandlerActionObjectField(w http.ResponseWriter, r *http.Request) {
	if strings.ToUpper(r.Method) != "POST" {
		webutils.WriteError(w, fmt.Errorf("Invalid http method %q", r.Method))
		return
	}

	viewer.mu.Lock()
	defer viewer.mu.Unlock()

	object, ok := findRequestObject(w, r)
	if !ok {
		return
	}

	name := mux.Vars(r)["field"]
	field := object.GetMetadata().GetFieldByKey(name)
	if field == nil {
		webutils.WriteError(w, fmt.Errorf("Object %v has no field %q", object.GetId(), name))
		return
	}
	if !field.Editable {
		webutils.WriteError(w, fmt.Errorf("Field %q is read only", name))
		return
	}

	value := r.FormValue("value")
	ref := object.GetField(name)
	switch ref.Kind() {
	case scene.ValueKindFloat:
		f, err := strconv.ParseFloat(value, 32)
		if err != nil {
			webutils.WriteError(w, fmt.Errorf("Value %q is not a float", value))
			return
		}
		*ref.Float() = float32(f)
	case scene.ValueKindInt:
		i, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			webutils.WriteError(w, fmt.Errorf("Value %q is not an integer", value))
			return
		}
		*ref.Int() = int32(i)
	case scene.ValueKindString:
		*ref.Str() = value
	case scene.ValueKindFloat3:
		parts := strings.Fields(value)
		if len(parts) != 3 {
			webutils.WriteError(w, fmt.Errorf("Value %q is not three floats", value))
			return
		}
		var v mgl32.Vec3
		for i, part := range parts {
			f, err := strconv.ParseFloat(part, 32)
			if err != nil {
				webutils.WriteError(w, fmt.Errorf("Value %q is not three floats", value))
				return
			}
			v[i] = float32(f)
		}
		*ref.Vec3() = v
	default:
		webutils.WriteError(w, fmt.Errorf("Field %q can not be edited over http", name))
		return
	}

	status.Info("Object %v field %v set to %q", object.GetId(), name, value)
	webutils.WriteJson(w, object.Marshal())
}

func HandlerExportGLTF(w http.ResponseWriter, r *http.Request) {
	viewer.mu.Lock()
	defer viewer.mu.Unlock()

	var buffer bytes.Buffer
	if err := viewer.scene.ExportGLTFBinary(&buffer); err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Gltf export failed"))
		return
	}
	webutils.WriteFile(w, &buffer, "scene.glb")
}

func HandlerExportFbx(w http.ResponseWriter, r *http.Request) {
	viewer.mu.Lock()
	defer viewer.mu.Unlock()

	f := viewer.scene.ExportFbxDefault("scene.fbx")
	webutils.WriteFileHeaders(w, "scene.fbx")
	if err := f.Write(w); err != nil {
		log.Printf("[web] fbx export error: %v", err)
	}
}

// HandlerExportFbxZip bundles the fbx with a json snapshot of the scene
// document so the archive is self describing.
func HandlerExportFbxZip(w http.ResponseWriter, r *http.Request) {
	viewer.mu.Lock()
	defer viewer.mu.Unlock()

	f := viewer.scene.ExportFbxDefault("scene.fbx")
	if doc, err := json.MarshalIndent(viewer.scene.Marshal(), "", "  "); err == nil {
		f.AddExportFile("scene.json", doc)
	}
	webutils.WriteFileHeaders(w, "scene.fbx.zip")
	if err := f.WriteZip(w, "scene.fbx"); err != nil {
		log.Printf("[web] fbx zip export error: %v", err)
	}
}

func HandlerExportObj(w http.ResponseWriter, r *http.Request) {
	viewer.mu.Lock()
	defer viewer.mu.Unlock()

	webutils.WriteFileHeaders(w, "scene.obj")
	if err := viewer.scene.ExportObj(w); err != nil {
		log.Printf("[web] obj export error: %v", err)
	}
}

func HandlerExportYaml(w http.ResponseWriter, r *http.Request) {
	viewer.mu.Lock()
	defer viewer.mu.Unlock()

	var buffer bytes.Buffer
	enc := yaml.NewEncoder(&buffer)
	enc.SetIndent(2)

	if err := enc.Encode(viewer.scene.Marshal()); err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Failed to marshal yaml"))
		return
	}
	if err := enc.Close(); err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Failed to close yaml encoder"))
		return
	}

	webutils.WriteFile(w, &buffer, "scene.yaml")
}

func HandlerExportJson(w http.ResponseWriter, r *http.Request) {
	viewer.mu.Lock()
	defer viewer.mu.Unlock()

	webutils.WriteJsonFile(w, viewer.scene.Marshal(), "scene")
}

func HandlerDumpScene(w http.ResponseWriter, r *http.Request) {
	viewer.mu.Lock()
	defer viewer.mu.Unlock()

	webutils.WriteResult(w, []byte(utils.SDump(viewer.scene.Marshal())))
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func HandlerWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] ws upgrade error: %v", err)
		return
	}
	status.NewClient(conn)
}
