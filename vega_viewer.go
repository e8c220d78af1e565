package main

import (
	"flag"
	"log"

	"github.com/mogaika/vega_viewer/camera"
	"github.com/mogaika/vega_viewer/config"
	"github.com/mogaika/vega_viewer/wavefront"
	"github.com/mogaika/vega_viewer/web"
)

func main() {
	var addr, obj, cfg, webDir, encoding, check string
	var checkDump bool
	flag.StringVar(&addr, "i", "", "Address of server, overrides the settings file")
	flag.StringVar(&obj, "obj", "", "Path to wavefront obj file to view")
	flag.StringVar(&cfg, "cfg", "", "Path to yaml settings file")
	flag.StringVar(&webDir, "web", "", "Path to web interface files, overrides the settings file")
	flag.StringVar(&encoding, "e", "", "Character encoding of obj files, see config.ListEncodings")
	flag.StringVar(&check, "check", "", "Load every obj file in the directory and report failures instead of serving")
	flag.BoolVar(&checkDump, "checkdump", false, "Dump the scene document of every checked file")
	flag.Parse()

	if cfg != "" {
		if err := config.LoadSettings(cfg); err != nil {
			log.Fatal(err)
		}
	}

	settings := config.GetSettings()
	if addr != "" {
		settings.ListenAddr = addr
	}
	if webDir != "" {
		settings.WebDir = webDir
	}
	config.SetSettings(settings)

	if encoding != "" {
		if err := config.SetEncoding(encoding); err != nil {
			log.Fatal(err)
		}
	}

	if check != "" {
		importCheck(check, checkDump)
		return
	}

	if obj == "" {
		flag.PrintDefaults()
		return
	}

	s, err := wavefront.LoadObjFromFile(obj)
	if err != nil {
		log.Fatal(err)
	}

	cam := camera.NewCamera(s.ComputeAxisAlignedBoundingBox(),
		settings.Camera.Fov, settings.Camera.Aspect)

	if err := web.StartServer(settings.ListenAddr, s, cam, settings.WebDir); err != nil {
		log.Fatal(err)
	}
}
