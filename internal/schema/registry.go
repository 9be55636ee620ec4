// Package schema holds the embedded JSON Schemas that guard the inputs
// papertree accepts from outside: region-stream files and API bodies.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names.
const (
	RegionStream = "region-stream"
	MediaInsert  = "media-insert"
)

// ErrInvalid is returned when a document does not match its schema.
var ErrInvalid = errors.New("document does not match schema")

// Schema is one embedded JSON Schema.
type Schema struct {
	Name   string // e.g., "region-stream"
	Source string // JSON Schema text
}

// registry lists every embedded schema.
var registry = []string{RegionStream, MediaInsert}

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

// All returns every schema, sorted by name.
func All() ([]Schema, error) {
	out := make([]Schema, 0, len(registry))
	for _, name := range registry {
		s, err := Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get returns a single schema by name.
func Get(name string) (*Schema, error) {
	for _, n := range registry {
		if n != name {
			continue
		}
		content, err := schemaFS.ReadFile(filename(name))
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
		}
		return &Schema{Name: name, Source: string(content)}, nil
	}
	return nil, fmt.Errorf("schema not found: %s", name)
}

// Validate checks raw JSON against the named schema. Mismatches wrap
// ErrInvalid and carry the validator's detail.
func Validate(name string, raw []byte) error {
	schemas, err := compileAll()
	if err != nil {
		return err
	}
	s, ok := schemas[name]
	if !ok {
		return fmt.Errorf("schema not found: %s", name)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %s: invalid JSON: %v", ErrInvalid, name, err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, name, err)
	}
	return nil
}

func compileAll() (map[string]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		for _, name := range registry {
			content, err := schemaFS.ReadFile(filename(name))
			if err != nil {
				compileErr = fmt.Errorf("failed to read schema %s: %w", name, err)
				return
			}
			if err := compiler.AddResource(filename(name), bytes.NewReader(content)); err != nil {
				compileErr = fmt.Errorf("failed to load schema %s: %w", name, err)
				return
			}
		}
		compiled = make(map[string]*jsonschema.Schema, len(registry))
		for _, name := range registry {
			s, err := compiler.Compile(filename(name))
			if err != nil {
				compileErr = fmt.Errorf("failed to compile schema %s: %w", name, err)
				return
			}
			compiled[name] = s
		}
	})
	return compiled, compileErr
}

func filename(name string) string {
	return "schemas/" + name + ".json"
}
