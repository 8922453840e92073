// Package collection maintains alternative collections: derived directory
// trees kept in sync with the library by classifying each item against its
// recorded state and applying the resulting action.
package collection

import (
	"context"
	"os"

	"github.com/mirrorlib/mirrorlib/internal/library"
)

// Action is the reconciliation decision for a single item.
type Action int

const (
	// ActionNoop means the alternative file is present and current.
	ActionNoop Action = iota
	// ActionAdd means the alternative file must be materialized.
	ActionAdd
	// ActionRemove means the item left the collection and its file goes away.
	ActionRemove
	// ActionMove means the alternative file exists at an outdated path.
	ActionMove
	// ActionWrite means the alternative file is in place but its metadata
	// is stale.
	ActionWrite
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	case ActionMove:
		return "move"
	case ActionWrite:
		return "write"
	default:
		return "noop"
	}
}

// itemAction pairs an item with its classified action and the paths the
// action operates on. path is the recorded alternative path (may be empty),
// dest the desired destination.
type itemAction struct {
	item   *library.Item
	action Action
	path   string
	dest   string
}

// actions classifies every library item against this collection. Items
// matching the query (directly or through a matched album) are classified
// per state; tracked items that no longer match are removed.
func (c *Collection) actions(ctx context.Context) ([]itemAction, error) {
	matchedIDs := make(map[string]bool)
	albums, err := c.store.Albums(ctx)
	if err != nil {
		return nil, err
	}
	for _, album := range albums {
		if !c.query.MatchAlbum(album) {
			continue
		}
		items, err := c.store.AlbumItems(ctx, album.ID)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			matchedIDs[item.ID] = true
		}
	}

	items, err := c.store.Items(ctx)
	if err != nil {
		return nil, err
	}

	var out []itemAction
	for _, item := range items {
		if matchedIDs[item.ID] || c.query.Match(item) {
			ia, err := c.classify(item)
			if err != nil {
				return nil, err
			}
			out = append(out, ia)
		} else if path, ok := c.recordedPath(item); ok {
			out = append(out, itemAction{item: item, action: ActionRemove, path: path})
		}
	}
	return out, nil
}

// classify decides the action for an item that belongs to the collection.
// A recorded path whose file is missing falls through to add: the state is
// self-healing rather than fatal. Path mismatch wins over staleness.
func (c *Collection) classify(item *library.Item) (itemAction, error) {
	dest, err := c.strategy.destination(item)
	if err != nil {
		return itemAction{}, err
	}

	path, ok := c.recordedPath(item)
	if !ok || !fileExists(path) {
		return itemAction{item: item, action: ActionAdd, path: path, dest: dest}, nil
	}
	if path != dest {
		return itemAction{item: item, action: ActionMove, path: path, dest: dest}, nil
	}
	if c.strategy.rewritesTags() {
		altInfo, err := os.Stat(path)
		if err != nil {
			return itemAction{item: item, action: ActionAdd, path: path, dest: dest}, nil
		}
		srcTime, err := item.FileModTime()
		if err == nil && altInfo.ModTime().Before(srcTime) {
			return itemAction{item: item, action: ActionWrite, path: path, dest: dest}, nil
		}
	}
	return itemAction{item: item, action: ActionNoop, path: path, dest: dest}, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
