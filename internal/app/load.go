package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/specialistvlad/dynresolve/internal/ctxlog"
	"github.com/specialistvlad/dynresolve/internal/dyn"
	"github.com/specialistvlad/dynresolve/internal/hcl"
	"github.com/specialistvlad/dynresolve/internal/table"
	"gopkg.in/yaml.v3"
)

// inputExtensions are the file extensions picked up from directories.
var inputExtensions = []string{".hcl", ".yaml", ".yml"}

// entry is one named top-level value of an input document.
type entry struct {
	name  string
	value dyn.Value
}

// document is a loaded input file. Its entries belong to one runtime.
type document struct {
	path    string
	hcl     bool
	entries []entry
}

func (a *App) loadDocument(ctx context.Context, path string) (*document, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading document.", "path", path)

	switch filepath.Ext(path) {
	case ".hcl":
		attrs, err := hcl.LoadFile(ctx, path)
		if err != nil {
			return nil, err
		}
		doc := &document{path: path, hcl: true}
		for _, attr := range attrs {
			doc.entries = append(doc.entries, entry{name: attr.Name, value: attr.Value})
		}
		return doc, nil

	case ".yaml", ".yml":
		return loadYAML(path)
	}
	return nil, fmt.Errorf("unsupported input file %s: expected one of %v", path, inputExtensions)
}

// loadYAML reads the first document of a YAML file. Its top-level node must
// be a mapping; each mapping entry becomes a table runtime value.
func loadYAML(path string) (*document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file %s: %w", path, err)
	}
	defer f.Close()

	doc := &document{path: path}
	var root yaml.Node
	if err := yaml.NewDecoder(f).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return doc, nil
		}
		return nil, fmt.Errorf("failed to parse YAML file %s: %w", path, err)
	}

	mapping := &root
	if mapping.Kind == yaml.DocumentNode && len(mapping.Content) > 0 {
		mapping = mapping.Content[0]
	}
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("YAML file %s: top-level node must be a mapping", path)
	}

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyNode, valueNode := mapping.Content[i], mapping.Content[i+1]
		var raw any
		if err := valueNode.Decode(&raw); err != nil {
			return nil, fmt.Errorf("YAML file %s, line %d: %w", path, valueNode.Line, err)
		}
		v, err := table.FromGo(raw)
		if err != nil {
			return nil, fmt.Errorf("YAML file %s, key %q: %w", path, keyNode.Value, err)
		}
		doc.entries = append(doc.entries, entry{name: keyNode.Value, value: v})
	}
	return doc, nil
}
