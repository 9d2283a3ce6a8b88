// Package importer defines the contracts of the import and preview
// collaborators. Format-specific handlers (DOCX, PDF, HTML) live outside
// this module and only need to produce a consistent tree; the built-in
// markdown importer covers plain-text sources and the CLI.
package importer

import (
	"context"

	"docforge/internal/doctree"
)

// Importer converts an external document into an initial tree. Reference-key
// and block-id uniqueness in the produced tree is the importer's
// responsibility.
type Importer interface {
	Import(ctx context.Context, path string) (*doctree.Tree, error)
}

// Previewer compiles one referenced topic to a display form. It must never
// mutate the tree.
type Previewer interface {
	Preview(t *doctree.Tree, ref string) (string, error)
}
