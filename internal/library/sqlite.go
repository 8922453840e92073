package library

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore is the Store implementation backed by a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

// Open connects to (or creates) the library database at path and ensures
// the schema exists.
func Open(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='items'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema: %w", err)
	}
	if tableExists > 0 {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Items returns all items in the library with their flexible attributes.
func (s *SQLiteStore) Items(ctx context.Context) ([]*Item, error) {
	return s.queryItems(ctx,
		`SELECT id, path, title, artist, album_artist, album, album_id, track, bitrate, format
         FROM items ORDER BY id`)
}

// AlbumItems returns the items belonging to an album.
func (s *SQLiteStore) AlbumItems(ctx context.Context, albumID string) ([]*Item, error) {
	return s.queryItems(ctx,
		`SELECT id, path, title, artist, album_artist, album, album_id, track, bitrate, format
         FROM items WHERE album_id = ? ORDER BY id`, albumID)
}

func (s *SQLiteStore) queryItems(ctx context.Context, query string, args ...any) (items []*Item, retErr error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && retErr == nil {
			retErr = closeErr
		}
	}()

	for rows.Next() {
		item := &Item{}
		if err := rows.Scan(&item.ID, &item.Path, &item.Title, &item.Artist,
			&item.AlbumArtist, &item.Album, &item.AlbumID, &item.Track,
			&item.Bitrate, &item.Format); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, item := range items {
		if err := s.loadAttrs(ctx, item); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *SQLiteStore) loadAttrs(ctx context.Context, item *Item) (retErr error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key, value FROM item_attrs WHERE item_id = ?", item.ID)
	if err != nil {
		return fmt.Errorf("query attrs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && retErr == nil {
			retErr = closeErr
		}
	}()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scan attr: %w", err)
		}
		item.SetAttr(key, value)
	}
	return rows.Err()
}

// Albums returns all albums in the library.
func (s *SQLiteStore) Albums(ctx context.Context) (albums []*Album, retErr error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, artist, name, art_path FROM albums ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query albums: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && retErr == nil {
			retErr = closeErr
		}
	}()

	for rows.Next() {
		album := &Album{}
		if err := rows.Scan(&album.ID, &album.Artist, &album.Name, &album.ArtPath); err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		albums = append(albums, album)
	}
	return albums, rows.Err()
}

// Album returns the album with the given ID, or nil when id is empty or
// unknown.
func (s *SQLiteStore) Album(ctx context.Context, id string) (*Album, error) {
	if id == "" {
		return nil, nil
	}
	album := &Album{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, artist, name, art_path FROM albums WHERE id = ?", id).
		Scan(&album.ID, &album.Artist, &album.Name, &album.ArtPath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query album: %w", err)
	}
	return album, nil
}

// AddItem inserts a new item, minting a ULID for it.
func (s *SQLiteStore) AddItem(ctx context.Context, item *Item) error {
	if item.ID == "" {
		item.ID = ulid.Make().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO items (id, path, title, artist, album_artist, album, album_id, track, bitrate, format)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Path, item.Title, item.Artist, item.AlbumArtist,
		item.Album, item.AlbumID, item.Track, item.Bitrate, item.Format)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return s.storeAttrs(ctx, item)
}

// AddAlbum inserts a new album, minting a ULID for it.
func (s *SQLiteStore) AddAlbum(ctx context.Context, album *Album) error {
	if album.ID == "" {
		album.ID = ulid.Make().String()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO albums (id, artist, name, art_path) VALUES (?, ?, ?, ?)",
		album.ID, album.Artist, album.Name, album.ArtPath)
	if err != nil {
		return fmt.Errorf("insert album: %w", err)
	}
	return nil
}

// StoreItem persists an item's fields and flexible attributes.
func (s *SQLiteStore) StoreItem(ctx context.Context, item *Item) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE items SET path = ?, title = ?, artist = ?, album_artist = ?,
         album = ?, album_id = ?, track = ?, bitrate = ?, format = ? WHERE id = ?`,
		item.Path, item.Title, item.Artist, item.AlbumArtist, item.Album,
		item.AlbumID, item.Track, item.Bitrate, item.Format, item.ID)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return s.storeAttrs(ctx, item)
}

// storeAttrs replaces the item's attribute rows with its in-memory map.
func (s *SQLiteStore) storeAttrs(ctx context.Context, item *Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attrs tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM item_attrs WHERE item_id = ?", item.ID); err != nil {
		return fmt.Errorf("clear attrs: %w", err)
	}
	for key, value := range item.Attrs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO item_attrs (item_id, key, value) VALUES (?, ?, ?)",
			item.ID, key, value); err != nil {
			return fmt.Errorf("insert attr %q: %w", key, err)
		}
	}
	return tx.Commit()
}
