// Package store serializes the document model. The same codec backs project
// files on disk, undo snapshots, and the autosave journal: one complete,
// self-contained JSON document holding the navigation tree, topic bodies and
// auxiliary maps.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"docforge/internal/doctree"
)

const projectSchemaVersion = "v1"

type projectDoc struct {
	SchemaVersion string                    `json:"schema_version"`
	Roots         []*doctree.Node           `json:"roots"`
	Topics        map[string]*doctree.Topic `json:"topics"`
	Images        map[string]string         `json:"images,omitempty"`
	Meta          map[string]string         `json:"meta,omitempty"`
}

// Encode renders the tree as the canonical project document.
func Encode(t *doctree.Tree) ([]byte, error) {
	doc := projectDoc{
		SchemaVersion: projectSchemaVersion,
		Roots:         t.Roots,
		Topics:        t.Topics,
		Images:        t.Images,
		Meta:          t.Meta,
	}
	if doc.Roots == nil {
		doc.Roots = []*doctree.Node{}
	}
	if doc.Topics == nil {
		doc.Topics = map[string]*doctree.Topic{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Decode parses and schema-validates a project document, returning a fresh
// equal-value tree. Invalid input never yields a partial tree.
func Decode(data []byte) (*doctree.Tree, error) {
	if err := validateProjectDoc(data); err != nil {
		return nil, err
	}

	var doc projectDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode project document: %w", err)
	}

	t := doctree.New()
	t.Roots = doc.Roots
	if doc.Topics != nil {
		t.Topics = doc.Topics
	}
	if doc.Images != nil {
		t.Images = doc.Images
	}
	if doc.Meta != nil {
		t.Meta = doc.Meta
	}
	return t, nil
}

// Restore decodes data and swaps the result into the live tree. On any
// decode failure the live tree is left untouched.
func Restore(t *doctree.Tree, data []byte) error {
	nt, err := Decode(data)
	if err != nil {
		return err
	}
	t.Roots = nt.Roots
	t.Topics = nt.Topics
	t.Images = nt.Images
	t.Meta = nt.Meta
	return nil
}

// SaveProject writes the tree to path, creating parent directories.
func SaveProject(path string, t *doctree.Tree) error {
	b, err := Encode(t)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0644)
}

// LoadProject reads and decodes a project file.
func LoadProject(path string) (*doctree.Tree, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(b)
}

var (
	schemaOnce     sync.Once
	projectSchema  *jsonschema.Schema
	schemaCompiled error
)

func validateProjectDoc(data []byte) error {
	schemaOnce.Do(func() {
		projectSchema, schemaCompiled = jsonschema.CompileString("project-schema.json", projectSchemaJSON)
	})
	if schemaCompiled != nil {
		return fmt.Errorf("failed to compile project schema: %w", schemaCompiled)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("project document is not valid JSON: %w", err)
	}
	if err := projectSchema.Validate(v); err != nil {
		return fmt.Errorf("project document schema validation failed: %w", err)
	}
	return nil
}

const projectSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["schema_version", "roots", "topics"],
  "properties": {
    "schema_version": {"type": "string"},
    "roots": {"type": "array", "items": {"$ref": "#/$defs/node"}},
    "topics": {"type": "object", "additionalProperties": {"$ref": "#/$defs/topic"}},
    "images": {"type": "object", "additionalProperties": {"type": "string"}},
    "meta": {"type": "object", "additionalProperties": {"type": "string"}}
  },
  "$defs": {
    "node": {
      "type": "object",
      "required": ["kind", "level"],
      "properties": {
        "kind": {"enum": ["section", "topic"]},
        "title": {"type": "string"},
        "ref": {"type": "string"},
        "level": {"type": "integer", "minimum": 0},
        "style": {"type": "string"},
        "children": {"type": "array", "items": {"$ref": "#/$defs/node"}}
      }
    },
    "topic": {
      "type": "object",
      "properties": {
        "title": {"type": "string"},
        "blocks": {"type": "array", "items": {"$ref": "#/$defs/block"}}
      }
    },
    "block": {
      "type": "object",
      "required": ["id", "type"],
      "properties": {
        "id": {"type": "string"},
        "type": {"enum": ["paragraph", "image", "table"]}
      }
    }
  }
}`
