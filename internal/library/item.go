// Package library provides the music library model: items, albums, the
// persistent store, and the query predicate used to select items.
package library

import (
	"os"
	"time"
)

// Item is a single tracked audio file in the library.
type Item struct {
	ID          string
	Path        string
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	AlbumID     string
	Track       int
	Bitrate     int    // bits per second
	Format      string // codec name, e.g. "MP3", "FLAC"

	// Attrs holds namespaced flexible attributes, e.g. the recorded
	// alternative-collection path under "alt.<name>".
	Attrs map[string]string
}

// Attr returns the value of a flexible attribute and whether it is set.
func (i *Item) Attr(key string) (string, bool) {
	v, ok := i.Attrs[key]
	return v, ok
}

// SetAttr sets a flexible attribute, allocating the map on first use.
func (i *Item) SetAttr(key, value string) {
	if i.Attrs == nil {
		i.Attrs = make(map[string]string)
	}
	i.Attrs[key] = value
}

// DelAttr removes a flexible attribute.
func (i *Item) DelAttr(key string) {
	delete(i.Attrs, key)
}

// FileModTime returns the modification time of the item's source file.
func (i *Item) FileModTime() (time.Time, error) {
	info, err := os.Stat(i.Path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Album groups items that share artwork.
type Album struct {
	ID      string
	Artist  string
	Name    string
	ArtPath string // empty when the album has no artwork
}
