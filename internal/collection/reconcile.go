package collection

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mirrorlib/mirrorlib/internal/fileutil"
	"github.com/mirrorlib/mirrorlib/internal/library"
)

// Update reconciles the collection against the library. create overrides
// the creation prompt for a missing collection directory: nil asks the
// operator, true/false answer without asking. A declined creation skips the
// whole update and is not an error.
//
// Direct effects (remove, move, write) run sequentially; adds are
// materialized on the worker pool and persisted at harvest. A failing item
// does not stop the run; all per-item failures are joined into the returned
// error.
func (c *Collection) Update(ctx context.Context, create *bool) error {
	if !fileutil.DirExists(c.Directory) {
		ok, err := c.askCreate(create)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(c.out, "Skipping creation of %s\n", c.Directory)
			return nil
		}
	}

	actions, err := c.actions(ctx)
	if err != nil {
		return err
	}

	pool := newJobPool(c.workers)
	var errs []error
	itemErr := func(item *library.Item, err error) {
		c.logger.Error().Err(err).Str("item", item.Path).Msg("item update failed")
		errs = append(errs, fmt.Errorf("%s: %w", item.Path, err))
	}

	for _, ia := range actions {
		switch ia.action {
		case ActionMove:
			fmt.Fprintf(c.out, ">%s -> %s\n", ia.path, ia.dest)
			if err := c.applyMove(ctx, ia); err != nil {
				itemErr(ia.item, err)
			}
		case ActionWrite:
			fmt.Fprintf(c.out, "*%s\n", ia.path)
			if err := c.tagger.WriteTags(ia.item, ia.path); err != nil {
				itemErr(ia.item, err)
			}
		case ActionAdd:
			fmt.Fprintf(c.out, "+%s\n", ia.dest)
			item, dest := ia.item, ia.dest
			pool.submit(item, func() (string, error) {
				return dest, c.strategy.materialize(ctx, item, dest)
			})
		case ActionRemove:
			fmt.Fprintf(c.out, "-%s\n", ia.path)
			if err := c.applyRemove(ctx, ia); err != nil {
				itemErr(ia.item, err)
			}
		case ActionNoop:
		}
	}

	for _, res := range pool.drain() {
		if res.err != nil {
			itemErr(res.item, res.err)
			continue
		}
		c.setRecordedPath(res.item, res.dest)
		if err := c.store.StoreItem(ctx, res.item); err != nil {
			itemErr(res.item, err)
		}
	}

	return errors.Join(errs...)
}

// askCreate resolves the creation gate for a missing collection directory.
// Non-removable collections are always created without asking.
func (c *Collection) askCreate(create *bool) (bool, error) {
	if !c.removable {
		return true, nil
	}
	if create != nil {
		return *create, nil
	}
	prompt := fmt.Sprintf(
		"Collection at '%s' does not exist. Maybe you forgot to mount it.\nDo you want to create the collection?",
		c.Directory)
	return c.confirm(prompt)
}

// applyMove relocates the produced file, records the new path, persists the
// item, and rewrites its tags at the new location.
func (c *Collection) applyMove(ctx context.Context, ia itemAction) error {
	if err := c.strategy.relocate(ctx, ia.item, ia.path, ia.dest); err != nil {
		return err
	}
	c.setRecordedPath(ia.item, ia.dest)
	if err := c.store.StoreItem(ctx, ia.item); err != nil {
		return err
	}
	if c.strategy.rewritesTags() {
		return c.tagger.WriteTags(ia.item, ia.dest)
	}
	return nil
}

// applyRemove deletes the produced file, cleans up orphaned companion art
// and emptied directories, clears the recorded path, and persists the item.
func (c *Collection) applyRemove(ctx context.Context, ia itemAction) error {
	if err := c.removeAlternativeFile(ia.path); err != nil {
		return err
	}
	c.clearRecordedPath(ia.item)
	return c.store.StoreItem(ctx, ia.item)
}

// removeAlternativeFile deletes a produced file, removes companion art left
// orphaned in its directory, and prunes now-empty ancestors up to the
// collection root.
func (c *Collection) removeAlternativeFile(path string) error {
	if err := fileutil.Remove(path); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := c.removeOrphanedArt(dir); err != nil {
		return err
	}
	return fileutil.PruneDirs(dir, c.Directory)
}

// removeOrphanedArt deletes every file in dir when the directory holds
// nothing but companion-art files. Art is not individually tracked, so it
// must go when the last tracked item leaves the directory.
func (c *Collection) removeOrphanedArt(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !c.isArtFile(entry.Name()) {
			return nil
		}
	}
	for _, entry := range entries {
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
