// Package testing provides mock implementations for use in tests.
// This package should only be imported by test files (*_test.go).
package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/mirrorlib/mirrorlib/internal/fileutil"
	"github.com/mirrorlib/mirrorlib/internal/library"
)

// MemStore is an in-memory library.Store for tests.
type MemStore struct {
	mu     sync.Mutex
	items  []*library.Item
	albums []*library.Album
	nextID int

	// Stored counts StoreItem calls per item ID.
	Stored map[string]int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{Stored: make(map[string]int)}
}

var _ library.Store = (*MemStore)(nil)

// Items returns all items.
func (s *MemStore) Items(_ context.Context) ([]*library.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*library.Item(nil), s.items...), nil
}

// Albums returns all albums.
func (s *MemStore) Albums(_ context.Context) ([]*library.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*library.Album(nil), s.albums...), nil
}

// Album returns an album by ID, nil when unknown.
func (s *MemStore) Album(_ context.Context, id string) (*library.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, album := range s.albums {
		if album.ID == id {
			return album, nil
		}
	}
	return nil, nil
}

// AlbumItems returns the items of an album.
func (s *MemStore) AlbumItems(_ context.Context, albumID string) ([]*library.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []*library.Item
	for _, item := range s.items {
		if item.AlbumID == albumID {
			items = append(items, item)
		}
	}
	return items, nil
}

// AddItem inserts an item, minting a sequential ID.
func (s *MemStore) AddItem(_ context.Context, item *library.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == "" {
		s.nextID++
		item.ID = fmt.Sprintf("item-%d", s.nextID)
	}
	s.items = append(s.items, item)
	return nil
}

// AddAlbum inserts an album, minting a sequential ID.
func (s *MemStore) AddAlbum(_ context.Context, album *library.Album) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if album.ID == "" {
		s.nextID++
		album.ID = fmt.Sprintf("album-%d", s.nextID)
	}
	s.albums = append(s.albums, album)
	return nil
}

// StoreItem records the persist call; items are shared pointers so fields
// are already current.
func (s *MemStore) StoreItem(_ context.Context, item *library.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Stored[item.ID]++
	return nil
}

// Close is a no-op.
func (s *MemStore) Close() error { return nil }

// FakeTagWriter implements tags.Writer, recording every call.
type FakeTagWriter struct {
	mu    sync.Mutex
	Calls []string // produced-file paths passed to WriteTags
	Err   error    // returned from every call when set
}

// WriteTags records the call.
func (w *FakeTagWriter) WriteTags(_ *library.Item, path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Calls = append(w.Calls, path)
	return w.Err
}

// FakeEmbedder implements tags.Embedder, recording every call.
type FakeEmbedder struct {
	mu    sync.Mutex
	Calls [][2]string // (imagePath, targetPath) pairs
}

// Embed records the call.
func (e *FakeEmbedder) Embed(imagePath, targetPath string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Calls = append(e.Calls, [2]string{imagePath, targetPath})
	return nil
}

// FakeEncoder implements transcode.Encoder by copying the source file to
// the destination. Set Err to make every encode fail, or FailSources to
// fail specific inputs.
type FakeEncoder struct {
	mu          sync.Mutex
	Calls       [][3]string // (command, source, dest) triples
	Err         error
	FailSources map[string]error
}

// Encode records the call and copies source to dest.
func (e *FakeEncoder) Encode(_ context.Context, command, source, dest string) error {
	e.mu.Lock()
	e.Calls = append(e.Calls, [3]string{command, source, dest})
	err := e.Err
	if err == nil && e.FailSources != nil {
		err = e.FailSources[source]
	}
	e.mu.Unlock()

	if err != nil {
		return err
	}
	return fileutil.CopyFile(source, dest)
}

// EncodeCount returns the number of Encode calls so far.
func (e *FakeEncoder) EncodeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Calls)
}
