package schema

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileFormat is the on-disk layout of a schema file:
//
//	sheets:
//	  - name: Default
//	    fields:
//	      - column: Name
//	        type: string
//	        required: true
//	        outputKey: name
//
// Fields are a list so declaration order survives decoding.
type fileFormat struct {
	Sheets []SheetSchema `yaml:"sheets"`
}

// Load builds a registry from a YAML schema file.
// An empty path selects the built-in schemas.
func Load(path string) (*Registry, error) {
	if path == "" {
		return NewRegistry(Builtin())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file %q: %w", path, err)
	}

	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("schema file %q: %w", path, err)
	}
	return r, nil
}

// Parse decodes YAML schema definitions and builds a registry.
// Unknown keys are rejected so typos in rule names fail at startup.
func Parse(data []byte) (*Registry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f fileFormat
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return NewRegistry(f.Sheets)
}
