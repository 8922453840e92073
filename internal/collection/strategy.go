package collection

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mirrorlib/mirrorlib/internal/fileutil"
	"github.com/mirrorlib/mirrorlib/internal/library"
)

// materializer is the per-strategy contract: compute an item's destination,
// produce the file there, and relocate a previously produced file.
type materializer interface {
	destination(item *library.Item) (string, error)
	materialize(ctx context.Context, item *library.Item, dest string) error
	relocate(ctx context.Context, item *library.Item, oldPath, dest string) error

	// rewritesTags reports whether produced files carry independent
	// metadata that can go stale. False for symlinks.
	rewritesTags() bool
}

// copyStrategy materializes items as plain file copies.
type copyStrategy struct {
	c *Collection
}

func (s *copyStrategy) destination(item *library.Item) (string, error) {
	return s.c.baseDestination(item), nil
}

func (s *copyStrategy) materialize(_ context.Context, item *library.Item, dest string) error {
	return fileutil.CopyFile(item.Path, dest)
}

func (s *copyStrategy) relocate(_ context.Context, _ *library.Item, oldPath, dest string) error {
	return moveAndPrune(oldPath, dest, s.c.Directory)
}

func (s *copyStrategy) rewritesTags() bool { return true }

// transcodeStrategy materializes items by transcoding them when the
// eligibility expression holds, plain-copying otherwise.
type transcodeStrategy struct {
	c   *Collection
	cfg TranscodeConfig

	// Serializes ancestor-directory creation across concurrent jobs.
	mkdirMu sync.Mutex
}

func (s *transcodeStrategy) destination(item *library.Item) (string, error) {
	dest := s.c.baseDestination(item)
	ok, err := s.cfg.When.ShouldTranscode(item)
	if err != nil {
		return "", err
	}
	if !ok {
		return dest, nil
	}
	return strings.TrimSuffix(dest, filepath.Ext(dest)) + "." + s.cfg.Format.Extension, nil
}

func (s *transcodeStrategy) materialize(ctx context.Context, item *library.Item, dest string) error {
	s.mkdirMu.Lock()
	err := os.MkdirAll(filepath.Dir(dest), 0750)
	s.mkdirMu.Unlock()
	if err != nil {
		return err
	}

	ok, err := s.cfg.When.ShouldTranscode(item)
	if err != nil {
		return err
	}
	if ok {
		if err := s.cfg.Encoder.Encode(ctx, s.cfg.Format.Command, item.Path, dest); err != nil {
			return err
		}
		if s.cfg.Embed {
			if err := s.embedArt(ctx, item, dest); err != nil {
				return err
			}
		}
	} else {
		s.c.logger.Debug().Str("dest", dest).Msg("copying instead of transcoding")
		if err := fileutil.CopyFile(item.Path, dest); err != nil {
			return err
		}
	}

	if s.c.copyArt {
		if err := s.copyAlbumArt(ctx, item, dest); err != nil {
			return err
		}
	}
	return nil
}

func (s *transcodeStrategy) relocate(_ context.Context, _ *library.Item, oldPath, dest string) error {
	return moveAndPrune(oldPath, dest, s.c.Directory)
}

func (s *transcodeStrategy) rewritesTags() bool { return true }

// embedArt embeds the owning album's artwork into the produced file.
func (s *transcodeStrategy) embedArt(ctx context.Context, item *library.Item, dest string) error {
	album, err := s.c.store.Album(ctx, item.AlbumID)
	if err != nil {
		return err
	}
	if album == nil || album.ArtPath == "" {
		return nil
	}
	return s.cfg.Embedder.Embed(album.ArtPath, dest)
}

// copyAlbumArt copies the album's artwork next to the produced file when
// its extension is a configured companion-art extension.
func (s *transcodeStrategy) copyAlbumArt(ctx context.Context, item *library.Item, dest string) error {
	album, err := s.c.store.Album(ctx, item.AlbumID)
	if err != nil {
		return err
	}
	if album == nil || album.ArtPath == "" || !s.c.isArtFile(album.ArtPath) {
		return nil
	}
	artDest := filepath.Join(filepath.Dir(dest), filepath.Base(album.ArtPath))
	return fileutil.CopyFile(album.ArtPath, artDest)
}

// symlinkStrategy materializes items as symbolic links to the library file.
type symlinkStrategy struct {
	c *Collection
}

func (s *symlinkStrategy) destination(item *library.Item) (string, error) {
	return s.c.baseDestination(item), nil
}

func (s *symlinkStrategy) materialize(_ context.Context, item *library.Item, dest string) error {
	if err := fileutil.Remove(dest); err != nil {
		return err
	}
	return fileutil.Symlink(item.Path, dest)
}

// relocate removes the old link (including companion-art cleanup and
// directory pruning) and creates a fresh link at dest. A symlink is
// recreated rather than moved so the link itself stays canonical.
func (s *symlinkStrategy) relocate(ctx context.Context, item *library.Item, oldPath, dest string) error {
	if err := s.c.removeAlternativeFile(oldPath); err != nil {
		return err
	}
	return s.materialize(ctx, item, dest)
}

func (s *symlinkStrategy) rewritesTags() bool { return false }

// moveAndPrune moves a produced file to its new destination and prunes the
// emptied source directories.
func moveAndPrune(oldPath, dest, root string) error {
	if err := fileutil.MoveFile(oldPath, dest); err != nil {
		return fmt.Errorf("move %s: %w", oldPath, err)
	}
	return fileutil.PruneDirs(filepath.Dir(oldPath), root)
}
