// Package pathfmt computes destination paths for items from naming
// templates of the form "$artist/$album/$track $title".
package pathfmt

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mirrorlib/mirrorlib/internal/library"
)

// Template pairs a selection predicate with a naming template. The first
// template whose query matches an item wins.
type Template struct {
	Query library.Matcher
	Path  string
}

// Formatter resolves an item's destination path under a base directory.
type Formatter struct {
	templates []Template
}

// DefaultTemplate is used when no configured template matches an item.
const DefaultTemplate = "$artist/$album/$track $title"

// New creates a Formatter. The template list is consulted in order; a
// match-all fallback using DefaultTemplate is appended automatically.
func New(templates []Template) *Formatter {
	return &Formatter{
		templates: append(templates, Template{
			Query: library.MatchAll(),
			Path:  DefaultTemplate,
		}),
	}
}

// Destination returns the absolute destination path of item under baseDir.
// Deterministic: the same item and configuration always yield the same path.
// The item's source file extension is preserved.
func (f *Formatter) Destination(item *library.Item, baseDir string) string {
	tpl := DefaultTemplate
	for _, t := range f.templates {
		if t.Query.Match(item) {
			tpl = t.Path
			break
		}
	}

	rel := expand(tpl, item)
	ext := strings.ToLower(filepath.Ext(item.Path))
	return filepath.Join(baseDir, filepath.FromSlash(rel)+ext)
}

// expand substitutes template placeholders per path component, sanitizing
// each expanded value so it cannot introduce extra separators.
func expand(tpl string, item *library.Item) string {
	albumArtist := item.AlbumArtist
	if albumArtist == "" {
		albumArtist = item.Artist
	}
	replacements := map[string]string{
		"$albumartist": albumArtist,
		"$artist":      item.Artist,
		"$album":       item.Album,
		"$title":       item.Title,
		"$track":       fmt.Sprintf("%02d", item.Track),
		"$format":      strings.ToLower(item.Format),
	}

	parts := strings.Split(tpl, "/")
	for i, part := range parts {
		// Longest placeholder first so $albumartist is not eaten by $album.
		for _, key := range []string{"$albumartist", "$artist", "$album", "$title", "$track", "$format"} {
			part = strings.ReplaceAll(part, key, sanitize(replacements[key]))
		}
		parts[i] = strings.TrimSpace(part)
	}
	return strings.Join(parts, "/")
}

// sanitize replaces characters that are path separators or otherwise
// problematic in file names.
func sanitize(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		"\x00", "",
	)
	return strings.TrimSpace(replacer.Replace(s))
}
