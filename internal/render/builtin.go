package render

import (
	"embed"
	"errors"
	"fmt"

	"github.com/gorewood/joinery/internal/catalog"
)

//go:embed templates/*.md
var builtinFS embed.FS

// LoadTemplate resolves the template for a kind.
// Resolution order: catalog templates/ directory → built-in copy.
//
// A catalog template that exists but fails validation is an error, not a
// fallback: silently rendering from the built-in would mask catalog drift.
func LoadTemplate(src catalog.Source, kind Kind) (*Template, error) {
	name := templateName(kind)

	raw, err := src.FetchTemplate(name)
	if err == nil {
		tmpl, perr := Parse(raw, kind)
		if perr != nil {
			return nil, fmt.Errorf("catalog template %s: %w", name, perr)
		}
		tmpl.Source = "catalog"
		return tmpl, nil
	}
	if !errors.Is(err, catalog.ErrTemplateNotFound) {
		return nil, fmt.Errorf("fetching template %s: %w", name, err)
	}

	return loadBuiltin(kind)
}

// loadBuiltin loads the embedded template for a kind.
func loadBuiltin(kind Kind) (*Template, error) {
	name := templateName(kind)
	raw, err := builtinFS.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("reading builtin template %s: %w", name, err)
	}
	tmpl, err := Parse(raw, kind)
	if err != nil {
		return nil, fmt.Errorf("builtin template %s: %w", name, err)
	}
	tmpl.Source = "built-in"
	return tmpl, nil
}

// templateName maps a kind to its file name in a catalog's templates/
// directory, which is also the embedded file name.
func templateName(kind Kind) string {
	if kind == KindListing {
		return "README.md"
	}
	return "AGENTS.md"
}
