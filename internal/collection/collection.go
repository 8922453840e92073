package collection

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mirrorlib/mirrorlib/internal/library"
	"github.com/mirrorlib/mirrorlib/internal/pathfmt"
	"github.com/mirrorlib/mirrorlib/internal/tags"
	"github.com/mirrorlib/mirrorlib/internal/transcode"
)

// DefaultArtExtensions are the companion-art extensions recognized when no
// override is configured.
var DefaultArtExtensions = []string{".jpg", ".jpeg", ".png"}

// ConfirmFunc asks the operator a yes/no question before destructive
// initialization. Implementations return the answer, or an error when no
// answer could be obtained.
type ConfirmFunc func(prompt string) (bool, error)

// Config is the resolved, immutable configuration of one collection.
type Config struct {
	Name      string
	Directory string // absolute target directory
	Query     library.Matcher
	Formatter *pathfmt.Formatter
	ArtExts   []string // companion-art extensions, with leading dot
	CopyArt   bool
	Removable bool
	Workers   int // 0 means runtime.NumCPU()
}

// TranscodeConfig carries the transcoding collaborators for a transcoding
// collection.
type TranscodeConfig struct {
	Format   transcode.Format // primary target format
	Formats  []string         // all configured target formats, lower-cased
	When     *transcode.When
	Encoder  transcode.Encoder
	Embed    bool
	Embedder tags.Embedder
}

// Collection reconciles one alternative collection against the library.
type Collection struct {
	Name      string
	Directory string

	query     library.Matcher
	formatter *pathfmt.Formatter
	store     library.Store
	strategy  materializer
	tagger    tags.Writer

	artExts   map[string]bool
	copyArt   bool
	removable bool
	workers   int

	out     io.Writer
	confirm ConfirmFunc
	logger  zerolog.Logger
}

// Option is a functional option for configuring a collection.
type Option func(*Collection)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Collection) { c.logger = logger }
}

// WithOutput sets the writer that receives per-item progress lines.
func WithOutput(w io.Writer) Option {
	return func(c *Collection) { c.out = w }
}

// WithConfirm sets the yes/no prompt used before creating a missing
// collection directory.
func WithConfirm(fn ConfirmFunc) Option {
	return func(c *Collection) { c.confirm = fn }
}

// WithTagWriter sets the metadata tag writer.
func WithTagWriter(w tags.Writer) Option {
	return func(c *Collection) { c.tagger = w }
}

// New creates a plain-copy collection.
func New(cfg Config, store library.Store, opts ...Option) *Collection {
	c := newCollection(cfg, store, opts...)
	c.strategy = &copyStrategy{c: c}
	return c
}

// NewTranscoding creates a transcoding-copy collection.
func NewTranscoding(cfg Config, store library.Store, tc TranscodeConfig, opts ...Option) *Collection {
	c := newCollection(cfg, store, opts...)
	c.strategy = &transcodeStrategy{c: c, cfg: tc}
	return c
}

// NewSymlink creates a symlink collection. An unset query mirrors the whole
// library; the caller passes library.MatchAll() for that.
func NewSymlink(cfg Config, store library.Store, opts ...Option) *Collection {
	c := newCollection(cfg, store, opts...)
	c.strategy = &symlinkStrategy{c: c}
	return c
}

func newCollection(cfg Config, store library.Store, opts ...Option) *Collection {
	artExts := cfg.ArtExts
	if len(artExts) == 0 {
		artExts = DefaultArtExtensions
	}
	extSet := make(map[string]bool, len(artExts))
	for _, ext := range artExts {
		extSet[strings.ToLower(ext)] = true
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	query := cfg.Query
	if query == nil {
		query = library.MatchAll()
	}
	formatter := cfg.Formatter
	if formatter == nil {
		formatter = pathfmt.New(nil)
	}

	c := &Collection{
		Name:      cfg.Name,
		Directory: cfg.Directory,
		query:     query,
		formatter: formatter,
		store:     store,
		artExts:   extSet,
		copyArt:   cfg.CopyArt,
		removable: cfg.Removable,
		workers:   workers,
		out:       os.Stdout,
		confirm:   stdinConfirm,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tagger == nil {
		c.tagger = tags.NewID3(c.logger)
	}
	return c
}

// pathKey is the item attribute holding this collection's recorded path.
func (c *Collection) pathKey() string {
	return "alt." + c.Name
}

// recordedPath returns the alternative path recorded for the item, if any.
func (c *Collection) recordedPath(item *library.Item) (string, bool) {
	path, ok := item.Attr(c.pathKey())
	if !ok || path == "" {
		return "", false
	}
	return path, true
}

func (c *Collection) setRecordedPath(item *library.Item, path string) {
	item.SetAttr(c.pathKey(), path)
}

func (c *Collection) clearRecordedPath(item *library.Item) {
	item.DelAttr(c.pathKey())
}

// baseDestination is the template-derived destination before any
// strategy-specific adjustment.
func (c *Collection) baseDestination(item *library.Item) string {
	return c.formatter.Destination(item, c.Directory)
}

// isArtFile reports whether the file name carries a companion-art extension.
func (c *Collection) isArtFile(name string) bool {
	return c.artExts[strings.ToLower(filepath.Ext(name))]
}

// stdinConfirm prompts on stdout and reads a y/n answer from stdin,
// re-asking until an answer is given.
func stdinConfirm(prompt string) (bool, error) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Printf("%s (y/n) ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false, fmt.Errorf("read confirmation: %w", err)
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}
