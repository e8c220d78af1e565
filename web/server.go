package web

import (
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mogaika/vega_viewer/camera"
	"github.com/mogaika/vega_viewer/scene"
)

// viewer is the single scene the server exposes. Handlers take the
// lock for every access, camera actions and field edits mutate state.
type viewerState struct {
	mu     sync.Mutex
	scene  *scene.Scene
	camera *camera.Camera
}

var viewer *viewerState

func StartServer(addr string, s *scene.Scene, cam *camera.Camera, webDir string) error {
	viewer = &viewerState{scene: s, camera: cam}

	r := mux.NewRouter()
	r.HandleFunc("/json/scene/drawlist", HandlerJsonDrawList)
	r.HandleFunc("/json/scene/aabb", HandlerJsonAABB)
	r.HandleFunc("/json/scene/camera", HandlerJsonCamera)
	r.HandleFunc("/json/scene", HandlerJsonScene)
	r.HandleFunc("/json/object/{id}/meta", HandlerJsonObjectMeta)
	r.HandleFunc("/json/object/{id}", HandlerJsonObject)
	r.HandleFunc("/action/camera/{action}", HandlerActionCamera)
	r.HandleFunc("/action/object/{id}/field/{field}", HandlerActionObjectField)
	r.HandleFunc("/export/scene.glb", HandlerExportGLTF)
	r.HandleFunc("/export/scene.fbx.zip", HandlerExportFbxZip)
	r.HandleFunc("/export/scene.fbx", HandlerExportFbx)
	r.HandleFunc("/export/scene.obj", HandlerExportObj)
	r.HandleFunc("/export/scene.yaml", HandlerExportYaml)
	r.HandleFunc("/export/scene.json", HandlerExportJson)
	r.HandleFunc("/dump/scene", HandlerDumpScene)
	r.HandleFunc("/ws", HandlerWebsocket)

	r.PathPrefix("/").Handler(http.FileServer(http.Dir(webDir)))

	h := handlers.RecoveryHandler()(r)
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
