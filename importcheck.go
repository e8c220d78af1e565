package main

import (
	"io/ioutil"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mogaika/vega_viewer/utils"
	"github.com/mogaika/vega_viewer/wavefront"
)

// importCheck loads every obj file under dir and reports how each one
// fared. Useful for running a model collection through the importer
// after parser changes.
func importCheck(dir string, dump bool) {
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		log.Fatal(err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".obj") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	failed := 0
	for _, name := range names {
		s, err := wavefront.LoadObjFromFile(filepath.Join(dir, name))
		if err != nil {
			failed++
			log.Printf("E %.40s: %v", name, err)
			continue
		}

		box := s.ComputeAxisAlignedBoundingBox()
		log.Printf("OK %.40s: %d draws aabb %v - %v",
			name, len(s.ComputeDrawList()), box.Min, box.Max)
		if dump {
			utils.Dump(s.Marshal())
		}
	}

	log.Printf("Checked %d files, %d failed", len(names), failed)
}
