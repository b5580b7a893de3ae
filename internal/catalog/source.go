package catalog

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Layout inside a catalog root.
const (
	skillsDirName    = "skills"
	templatesDirName = "templates"
)

// ErrEntryNotFound is returned by FetchEntry for an unknown entry id.
var ErrEntryNotFound = errors.New("catalog entry not found")

// ErrTemplateNotFound is returned by FetchTemplate when the origin carries
// no template of that name. Callers fall back to the built-in copies.
var ErrTemplateNotFound = errors.New("catalog template not found")

// Source enumerates and fetches catalog content from one origin.
// Implementations load entry metadata once; List and FetchEntry are
// deterministic for the lifetime of the source.
type Source interface {
	// List returns every well-formed entry, sorted by ID.
	List() []Entry
	// FetchEntry returns all documents of one entry, primary doc first.
	// Returns ErrEntryNotFound for unknown ids.
	FetchEntry(id string) ([]Document, error)
	// FetchTemplate returns templates/<name> from the origin, or
	// ErrTemplateNotFound when the origin has no such template.
	FetchTemplate(name string) ([]byte, error)
	// Warnings reports entries skipped at load time (malformed frontmatter,
	// slug mismatch). Surfaced as findings, never fatal.
	Warnings() []string
	// Close releases origin resources. Remote origins delete their temp
	// extraction directory; Close is safe to call more than once.
	Close() error
}

// Open resolves an origin string to a Source. URLs (http/https) are
// downloaded and extracted; anything else is opened as a local directory.
// The timeout bounds the remote download only.
func Open(ctx context.Context, origin string, timeout time.Duration) (Source, error) {
	if IsRemote(origin) {
		return openRemote(ctx, origin, timeout)
	}
	return OpenDir(origin)
}

// IsRemote reports whether an origin string names a remote archive URL.
func IsRemote(origin string) bool {
	return strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://")
}
