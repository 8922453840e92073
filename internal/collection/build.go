package collection

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/mirrorlib/mirrorlib/internal/config"
	"github.com/mirrorlib/mirrorlib/internal/library"
	"github.com/mirrorlib/mirrorlib/internal/pathfmt"
	"github.com/mirrorlib/mirrorlib/internal/tags"
	"github.com/mirrorlib/mirrorlib/internal/transcode"
)

// FromConfig resolves the named collection's configuration into a ready
// Collection. Strategy selection happens here, once per run: "link" builds a
// symlink view, a format list builds a transcoding collection, otherwise a
// plain copy collection.
func FromConfig(cfg *config.Config, name string, store library.Store, logger zerolog.Logger, opts ...Option) (*Collection, error) {
	collCfg, ok := cfg.Collections[name]
	if !ok {
		return nil, fmt.Errorf("alternative collection %q not found", name)
	}

	query, err := resolveQuery(collCfg)
	if err != nil {
		return nil, fmt.Errorf("collection %q: %w", name, err)
	}

	formatter, err := resolveTemplates(collCfg.Paths, cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("collection %q: %w", name, err)
	}

	base := Config{
		Name:      name,
		Directory: collCfg.Directory,
		Query:     query,
		Formatter: formatter,
		ArtExts:   collCfg.AlbumartExt,
		CopyArt:   boolOr(collCfg.CopyAlbumart, true),
		Removable: boolOr(collCfg.Removable, true),
		Workers:   cfg.Workers,
	}
	opts = append([]Option{WithLogger(logger)}, opts...)

	if collCfg.IsLink() {
		return NewSymlink(base, store, opts...), nil
	}

	formats := collCfg.FormatList()
	if len(formats) == 0 {
		return New(base, store, opts...), nil
	}

	tc, err := resolveTranscode(cfg, collCfg, formats, logger)
	if err != nil {
		return nil, fmt.Errorf("collection %q: %w", name, err)
	}
	return NewTranscoding(base, store, tc, opts...), nil
}

func resolveQuery(collCfg config.CollectionConfig) (library.Matcher, error) {
	if collCfg.Query == nil {
		// Only reachable for link views; config validation requires an
		// explicit query elsewhere.
		return library.MatchAll(), nil
	}
	return library.ParseQuery(*collCfg.Query)
}

// resolveTemplates builds the path formatter from the collection's naming
// templates, falling back to the global template set. The "default" key is
// the match-all fallback; other keys are query strings tried in sorted
// order.
func resolveTemplates(collPaths, globalPaths map[string]string) (*pathfmt.Formatter, error) {
	paths := collPaths
	if len(paths) == 0 {
		paths = globalPaths
	}

	keys := make([]string, 0, len(paths))
	for key := range paths {
		if key != "default" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var templates []pathfmt.Template
	for _, key := range keys {
		query, err := library.ParseQuery(key)
		if err != nil {
			return nil, fmt.Errorf("path template %q: %w", key, err)
		}
		templates = append(templates, pathfmt.Template{Query: query, Path: paths[key]})
	}
	if tpl, ok := paths["default"]; ok {
		templates = append(templates, pathfmt.Template{Query: library.MatchAll(), Path: tpl})
	}
	return pathfmt.New(templates), nil
}

func resolveTranscode(cfg *config.Config, collCfg config.CollectionConfig, formats []string, logger zerolog.Logger) (TranscodeConfig, error) {
	overrides := make(map[string]transcode.Format, len(cfg.Convert.Formats))
	for name, f := range cfg.Convert.Formats {
		overrides[name] = transcode.Format{Command: f.Command, Extension: f.Extension}
	}

	format, err := transcode.LookupFormat(formats[0], overrides)
	if err != nil {
		return TranscodeConfig{}, err
	}

	when, err := transcode.CompileWhen(collCfg.ConvertWhen, cfg.Convert.MaxBitrate, formats)
	if err != nil {
		return TranscodeConfig{}, err
	}

	return TranscodeConfig{
		Format:   format,
		Formats:  formats,
		When:     when,
		Encoder:  transcode.NewCommandEncoder(logger),
		Embed:    cfg.Convert.Embed,
		Embedder: tags.NewID3(logger),
	}, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
