package library

import (
	"fmt"
	"strings"
)

// Matcher is a predicate over library items and albums. Album matches
// propagate collection membership to every item of the album.
type Matcher interface {
	Match(item *Item) bool
	MatchAlbum(album *Album) bool
}

// queryFields are the item fields addressable as "field:value" terms.
var queryFields = map[string]func(*Item) string{
	"title":       func(i *Item) string { return i.Title },
	"artist":      func(i *Item) string { return i.Artist },
	"album":       func(i *Item) string { return i.Album },
	"albumartist": func(i *Item) string { return i.AlbumArtist },
	"format":      func(i *Item) string { return i.Format },
}

// albumFields are the album fields addressable as "field:value" terms.
var albumFields = map[string]func(*Album) string{
	"album":       func(a *Album) string { return a.Name },
	"artist":      func(a *Album) string { return a.Artist },
	"albumartist": func(a *Album) string { return a.Artist },
}

type term struct {
	field string // empty for bare terms
	value string
}

// query is the default Matcher implementation: whitespace-separated terms,
// all of which must match (AND). A "field:value" term matches that field by
// case-insensitive substring; a bare term matches title, artist or album.
type query struct {
	terms []term
}

// MatchAll returns a predicate matching every item and album.
func MatchAll() Matcher {
	return &query{}
}

// ParseQuery parses a query string into a Matcher. The empty string matches
// everything. Unknown field names are a configuration error.
func ParseQuery(s string) (Matcher, error) {
	q := &query{}
	for _, raw := range strings.Fields(s) {
		field, value, found := strings.Cut(raw, ":")
		if !found {
			q.terms = append(q.terms, term{value: strings.ToLower(raw)})
			continue
		}
		field = strings.ToLower(field)
		if _, ok := queryFields[field]; !ok {
			return nil, fmt.Errorf("unknown query field %q", field)
		}
		q.terms = append(q.terms, term{field: field, value: strings.ToLower(value)})
	}
	return q, nil
}

func (q *query) Match(item *Item) bool {
	for _, t := range q.terms {
		if t.field != "" {
			if !strings.Contains(strings.ToLower(queryFields[t.field](item)), t.value) {
				return false
			}
			continue
		}
		if !containsAny(t.value, item.Title, item.Artist, item.Album) {
			return false
		}
	}
	return true
}

func (q *query) MatchAlbum(album *Album) bool {
	for _, t := range q.terms {
		if t.field != "" {
			get, ok := albumFields[t.field]
			if !ok {
				// Item-only field; an album cannot satisfy it.
				return false
			}
			if !strings.Contains(strings.ToLower(get(album)), t.value) {
				return false
			}
			continue
		}
		if !containsAny(t.value, album.Name, album.Artist) {
			return false
		}
	}
	return true
}

func containsAny(needle string, haystacks ...string) bool {
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}
