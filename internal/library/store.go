package library

import "context"

// Store is the persistent library backing alternative collections. The
// reconciler consumes it read-mostly: enumeration plus StoreItem to persist
// changed attributes.
type Store interface {
	// Items returns all items in the library.
	Items(ctx context.Context) ([]*Item, error)

	// Albums returns all albums in the library.
	Albums(ctx context.Context) ([]*Album, error)

	// Album returns the album with the given ID, or nil if the ID is empty
	// or unknown.
	Album(ctx context.Context, id string) (*Album, error)

	// AlbumItems returns the items belonging to an album.
	AlbumItems(ctx context.Context, albumID string) ([]*Item, error)

	// AddItem inserts a new item, minting its ID.
	AddItem(ctx context.Context, item *Item) error

	// AddAlbum inserts a new album, minting its ID.
	AddAlbum(ctx context.Context, album *Album) error

	// StoreItem persists an item's fields and flexible attributes.
	StoreItem(ctx context.Context, item *Item) error

	// Close releases the store's resources.
	Close() error
}
