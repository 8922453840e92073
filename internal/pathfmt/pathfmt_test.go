package pathfmt_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorlib/mirrorlib/internal/library"
	"github.com/mirrorlib/mirrorlib/internal/pathfmt"
)

func TestDestination(t *testing.T) {
	item := &library.Item{
		Path:   "/music/radiohead/airbag.flac",
		Title:  "Airbag",
		Artist: "Radiohead",
		Album:  "OK Computer",
		Track:  1,
		Format: "FLAC",
	}

	t.Run("default template", func(t *testing.T) {
		f := pathfmt.New(nil)
		got := f.Destination(item, "/alt")
		assert.Equal(t, filepath.Join("/alt", "Radiohead", "OK Computer", "01 Airbag.flac"), got)
	})

	t.Run("deterministic", func(t *testing.T) {
		f := pathfmt.New(nil)
		assert.Equal(t, f.Destination(item, "/alt"), f.Destination(item, "/alt"))
	})

	t.Run("first matching template wins", func(t *testing.T) {
		flacOnly, err := library.ParseQuery("format:flac")
		require.NoError(t, err)
		f := pathfmt.New([]pathfmt.Template{
			{Query: flacOnly, Path: "lossless/$artist - $title"},
		})

		got := f.Destination(item, "/alt")
		assert.Equal(t, filepath.Join("/alt", "lossless", "Radiohead - Airbag.flac"), got)

		mp3 := &library.Item{Path: "/music/x.mp3", Title: "X", Artist: "Y", Album: "Z", Track: 2}
		got = f.Destination(mp3, "/alt")
		assert.Equal(t, filepath.Join("/alt", "Y", "Z", "02 X.mp3"), got)
	})

	t.Run("albumartist falls back to artist", func(t *testing.T) {
		f := pathfmt.New([]pathfmt.Template{
			{Query: library.MatchAll(), Path: "$albumartist/$title"},
		})
		got := f.Destination(item, "/alt")
		assert.Equal(t, filepath.Join("/alt", "Radiohead", "Airbag.flac"), got)
	})

	t.Run("sanitizes path-hostile characters", func(t *testing.T) {
		dirty := &library.Item{
			Path:   "/music/ACDC/x.mp3",
			Title:  "Back/In: Black?",
			Artist: "AC/DC",
			Album:  "Back in Black",
			Track:  1,
		}
		f := pathfmt.New(nil)
		got := f.Destination(dirty, "/alt")
		assert.Equal(t, filepath.Join("/alt", "AC_DC", "Back in Black", "01 Back_In_ Black_.mp3"), got)
	})

	t.Run("lowercases the preserved extension", func(t *testing.T) {
		upper := &library.Item{Path: "/music/a.MP3", Title: "A", Artist: "B", Album: "C", Track: 1}
		f := pathfmt.New(nil)
		assert.Equal(t, ".mp3", filepath.Ext(f.Destination(upper, "/alt")))
	})
}
