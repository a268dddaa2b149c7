package classify

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// overlayFile is the YAML shape of one signature overlay:
//
//	signatures:
//	  brute_force:
//	    - "password spray detected"
type overlayFile struct {
	Signatures map[string][]string `yaml:"signatures"`
}

// LoadOverlays merges signature patterns from every *.yaml/*.yml file in dir,
// in lexical filename order, and returns the number of patterns added. A file
// with an invalid pattern fails the load naming the file; already-merged files
// stay applied.
func (c *Classifier) LoadOverlays(dir string, logger *slog.Logger) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read signatures dir %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)

	added := 0
	for _, file := range files {
		n, err := c.loadOverlayFile(file)
		if err != nil {
			return added, fmt.Errorf("failed to load signature overlay %s: %w", file, err)
		}
		added += n
		logger.Info("Signature overlay loaded", "file", file, "patterns", n)
	}

	return added, nil
}

func (c *Classifier) loadOverlayFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var overlay overlayFile
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return 0, fmt.Errorf("invalid yaml: %w", err)
	}
	if len(overlay.Signatures) == 0 {
		return 0, nil
	}

	if err := c.UpdateSignatures(overlay.Signatures); err != nil {
		return 0, err
	}

	count := 0
	for _, patterns := range overlay.Signatures {
		count += len(patterns)
	}
	return count, nil
}
