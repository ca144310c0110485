// Package manifest builds the concat-demuxer list artifact: one
// `file '<path>'` line per successfully normalized clip, in processing
// order. The order of entries is the order of the final video.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Entry references one normalized output file.
type Entry struct {
	// Source is the original clip the entry was normalized from
	Source string
	// Path is the absolute normalized-output path, forward slashes
	// regardless of platform
	Path string
}

// Line renders the entry in concat list format.
func (e Entry) Line() string {
	return fmt.Sprintf("file '%s'", e.Path)
}

// Manifest is the ordered set of entries for one run. Append order is
// processing order and must be preserved exactly.
type Manifest struct {
	entries []Entry
}

// Append adds an entry for a normalized output. The path is made
// absolute and slash-normalized here so every entry is valid for the
// concat demuxer no matter what the caller passed in.
func (m *Manifest) Append(source, outputPath string) error {
	abs, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", outputPath, err)
	}
	m.entries = append(m.entries, Entry{
		Source: source,
		Path:   filepath.ToSlash(abs),
	})
	return nil
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	return len(m.entries)
}

// Entries returns the entries in append order.
func (m *Manifest) Entries() []Entry {
	return m.entries
}

// Render returns the full list artifact content.
func (m *Manifest) Render() string {
	lines := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		lines = append(lines, e.Line())
	}
	return strings.Join(lines, "\n")
}

// WriteFile persists the manifest to the list artifact path.
func (m *Manifest) WriteFile(path string) error {
	return os.WriteFile(path, []byte(m.Render()), 0644)
}
