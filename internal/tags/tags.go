// Package tags rewrites metadata tags and embeds artwork in produced
// collection files.
package tags

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/rs/zerolog"

	"github.com/mirrorlib/mirrorlib/internal/library"
)

// Writer rewrites a produced file's tags from an item's current metadata.
type Writer interface {
	WriteTags(item *library.Item, path string) error
}

// Embedder attaches album artwork to a produced file.
type Embedder interface {
	Embed(imagePath, targetPath string) error
}

// ID3 implements Writer and Embedder for MP3 files via ID3v2 frames.
// Files with other extensions are left untouched.
type ID3 struct {
	logger zerolog.Logger
}

// NewID3 creates an ID3 tag writer/embedder.
func NewID3(logger zerolog.Logger) *ID3 {
	return &ID3{logger: logger}
}

// WriteTags rewrites the file's ID3v2 tags from the item's metadata.
func (w *ID3) WriteTags(item *library.Item, path string) (retErr error) {
	if !isMP3(path) {
		w.logger.Debug().Str("path", path).Msg("skipping tag rewrite for non-mp3 file")
		return nil
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open tags for %s: %w", path, err)
	}
	defer func() {
		if closeErr := tag.Close(); closeErr != nil && retErr == nil {
			retErr = closeErr
		}
	}()

	tag.SetArtist(item.Artist)
	tag.SetAlbum(item.Album)
	tag.SetTitle(item.Title)
	if item.AlbumArtist != "" {
		tag.AddTextFrame("TPE2", tag.DefaultEncoding(), item.AlbumArtist)
	}
	if item.Track > 0 {
		tag.AddTextFrame("TRCK", tag.DefaultEncoding(), strconv.Itoa(item.Track))
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tags for %s: %w", path, err)
	}
	return nil
}

// Embed attaches the image as the front cover of the target file.
func (w *ID3) Embed(imagePath, targetPath string) (retErr error) {
	if !isMP3(targetPath) {
		w.logger.Debug().Str("path", targetPath).Msg("skipping art embed for non-mp3 file")
		return nil
	}

	image, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("read artwork %s: %w", imagePath, err)
	}

	tag, err := id3v2.Open(targetPath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open tags for %s: %w", targetPath, err)
	}
	defer func() {
		if closeErr := tag.Close(); closeErr != nil && retErr == nil {
			retErr = closeErr
		}
	}()

	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    tag.DefaultEncoding(),
		MimeType:    mimeType(imagePath),
		PictureType: id3v2.PTFrontCover,
		Picture:     image,
	})

	if err := tag.Save(); err != nil {
		return fmt.Errorf("embed artwork in %s: %w", targetPath, err)
	}
	return nil
}

func isMP3(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".mp3")
}

func mimeType(imagePath string) string {
	if strings.EqualFold(filepath.Ext(imagePath), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}
