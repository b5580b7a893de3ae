package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// dirSource serves a catalog from a directory on disk. Remote origins reuse
// it after extraction, with a cleanup hook that removes the temp directory.
type dirSource struct {
	root     string
	entries  []Entry
	byID     map[string]Entry
	warnings []string
	cleanup  func() error
}

// OpenDir opens a local catalog directory. The directory must contain a
// skills/ subdirectory; malformed entries are skipped and recorded as
// warnings rather than failing the whole catalog.
func OpenDir(root string) (Source, error) {
	return newDirSource(root, nil)
}

// newDirSource builds a dirSource over root, with an optional cleanup hook
// run on Close. The remote origin passes its temp-dir removal here.
func newDirSource(root string, cleanup func() error) (*dirSource, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("opening catalog %s: not a directory", root)
	}

	src := &dirSource{root: root, byID: map[string]Entry{}, cleanup: cleanup}
	if err := src.load(); err != nil {
		return nil, err
	}
	return src, nil
}

// load scans skills/ and parses every entry's primary document.
func (s *dirSource) load() error {
	skillsRoot := filepath.Join(s.root, skillsDirName)
	dirEntries, err := os.ReadDir(skillsRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("not a catalog: %s has no %s directory", s.root, skillsDirName)
		}
		return fmt.Errorf("reading catalog %s: %w", skillsRoot, err)
	}

	for _, de := range dirEntries {
		if !de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}

		entry, err := s.loadEntry(de.Name())
		if err != nil {
			s.warnings = append(s.warnings, fmt.Sprintf("%s/%s: %v", skillsDirName, de.Name(), err))
			continue
		}

		s.entries = append(s.entries, entry)
		s.byID[entry.ID] = entry
	}

	sort.Slice(s.entries, func(i, j int) bool { return s.entries[i].ID < s.entries[j].ID })
	return nil
}

// loadEntry parses one entry directory: frontmatter from SKILL.md plus the
// relative paths of every document it ships.
func (s *dirSource) loadEntry(dirName string) (Entry, error) {
	entryDir := filepath.Join(s.root, skillsDirName, dirName)

	raw, err := os.ReadFile(filepath.Join(entryDir, PrimaryDocName))
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, fmt.Errorf("no %s", PrimaryDocName)
		}
		return Entry{}, err
	}

	entry, err := parseEntry(dirName, raw)
	if err != nil {
		return Entry{}, err
	}

	entry.Documents, err = collectDocuments(entryDir)
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// collectDocuments walks an entry directory and returns the relative paths
// of its files in slash form, primary document first, the rest sorted.
func collectDocuments(entryDir string) ([]string, error) {
	var subs []string
	err := filepath.WalkDir(entryDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(entryDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel != PrimaryDocName {
			subs = append(subs, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning documents: %w", err)
	}

	sort.Strings(subs)
	return append([]string{PrimaryDocName}, subs...), nil
}

// List returns every well-formed entry, sorted by ID.
func (s *dirSource) List() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// FetchEntry returns all documents of one entry, primary doc first.
func (s *dirSource) FetchEntry(id string) ([]Document, error) {
	entry, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}

	entryDir := filepath.Join(s.root, skillsDirName, id)
	docs := make([]Document, 0, len(entry.Documents))
	for _, rel := range entry.Documents {
		content, err := os.ReadFile(filepath.Join(entryDir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("fetching %s/%s: %w", id, rel, err)
		}
		docs = append(docs, Document{Path: rel, Content: content})
	}
	return docs, nil
}

// FetchTemplate returns templates/<name> from the catalog root.
func (s *dirSource) FetchTemplate(name string) ([]byte, error) {
	content, err := os.ReadFile(filepath.Join(s.root, templatesDirName, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return nil, fmt.Errorf("fetching template %s: %w", name, err)
	}
	return content, nil
}

// Warnings reports entries skipped at load time.
func (s *dirSource) Warnings() []string {
	return s.warnings
}

// Close releases the extraction directory for remote origins. Plain local
// directories have nothing to release.
func (s *dirSource) Close() error {
	if s.cleanup == nil {
		return nil
	}
	cleanup := s.cleanup
	s.cleanup = nil
	return cleanup()
}
