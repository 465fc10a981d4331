// Package main generates markdown documentation from the eslintcfg command
// tree and the bundled presets.
//
// Usage:
//
//	go run ./scripts/gendocs -gen=cli -outdir=docs/cli
//	go run ./scripts/gendocs -gen=presets -outdir=docs/presets
//	go run ./scripts/gendocs -gen=all
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
)

var (
	genFlag    = flag.String("gen", "all", "what to generate: cli, presets, all")
	outDirFlag = flag.String("outdir", "", "output directory (defaults based on gen type)")
)

type generator struct {
	dir string
	run func(outDir string) error
}

var generators = map[string]generator{
	"cli":     {dir: "cli", run: generateCLIDocs},
	"presets": {dir: "presets", run: generatePresetDocs},
}

func main() {
	flag.Parse()

	var selected []string
	switch *genFlag {
	case "all":
		selected = []string{"cli", "presets"}
	case "cli", "presets":
		selected = []string{*genFlag}
	default:
		log.Fatalf("unknown -gen value: %s (use: cli, presets, all)", *genFlag)
	}

	projectRoot, err := findProjectRoot()
	if err != nil {
		log.Fatalf("failed to find project root: %v", err)
	}
	log.Printf("Project root: %s", projectRoot)

	for _, name := range selected {
		g := generators[name]
		outDir := filepath.Join(projectRoot, "docs", g.dir)
		if *outDirFlag != "" && len(selected) == 1 {
			outDir = *outDirFlag
		}
		if err := g.run(outDir); err != nil {
			log.Fatalf("failed to generate %s docs: %v", name, err)
		}
	}

	log.Println("Done!")
}

// findProjectRoot walks up from current directory to find go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
