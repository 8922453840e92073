// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultMaxBitrateKBPS = 500
)

// Config is the application configuration.
type Config struct {
	Library     LibraryConfig               `mapstructure:"library"`
	Paths       map[string]string           `mapstructure:"paths"`
	Convert     ConvertConfig               `mapstructure:"convert"`
	Collections map[string]CollectionConfig `mapstructure:"collections"`
	Workers     int                         `mapstructure:"workers"`
}

// LibraryConfig locates the music library and its database.
type LibraryConfig struct {
	Directory string `mapstructure:"directory"`
	Database  string `mapstructure:"database"`
}

// ConvertConfig holds global transcoding settings.
type ConvertConfig struct {
	MaxBitrate int                     `mapstructure:"maxBitrate"` // kbit/s
	Embed      bool                    `mapstructure:"embed"`
	Formats    map[string]FormatConfig `mapstructure:"formats"`
}

// FormatConfig overrides the command and extension of one target format.
type FormatConfig struct {
	Command   string `mapstructure:"command"`
	Extension string `mapstructure:"extension"`
}

// CollectionConfig holds the per-collection options.
type CollectionConfig struct {
	// Formats selects the mode: "link" for a symlink view, a
	// space-separated format list for transcoding, empty for plain copy.
	Formats      string            `mapstructure:"formats"`
	Query        *string           `mapstructure:"query"` // nil when unset
	Paths        map[string]string `mapstructure:"paths"`
	Directory    string            `mapstructure:"directory"`
	ConvertWhen  string            `mapstructure:"convertWhen"`
	AlbumartExt  []string          `mapstructure:"albumartExt"`
	CopyAlbumart *bool             `mapstructure:"copyAlbumart"` // default true
	Removable    *bool             `mapstructure:"removable"`    // default true
}

// IsLink reports whether the collection is a symlink view.
func (c CollectionConfig) IsLink() bool {
	return strings.TrimSpace(c.Formats) == "link"
}

// FormatList returns the configured target formats, lower-cased, first
// entry primary. Empty for link and plain-copy collections.
func (c CollectionConfig) FormatList() []string {
	if c.IsLink() {
		return nil
	}
	var formats []string
	for _, f := range strings.Fields(c.Formats) {
		formats = append(formats, strings.ToLower(f))
	}
	return formats
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// ConfigFile is an explicit config file path. If empty, default
	// locations are searched.
	ConfigFile string
}

// Load reads configuration from file and environment variables. Without an
// explicit file it searches $HOME, $HOME/.config/mirrorlib, and the current
// directory for .mirrorlib.yaml, mirrorlib.yaml, or config.yaml.
// Environment variables with prefix MIRRORLIB_ override file values.
func Load(opts LoadOptions) (Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
			v.AddConfigPath(filepath.Join(home, ".config", "mirrorlib"))
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".mirrorlib")
		v.SetConfigName("mirrorlib")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MIRRORLIB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("library.directory", defaultLibraryDir())
	v.SetDefault("library.database", defaultDatabasePath())
	v.SetDefault("convert.maxBitrate", DefaultMaxBitrateKBPS)
	v.SetDefault("convert.embed", true)

	// Missing config file is fine; defaults and env still apply.
	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	normalize(&cfg)

	if err := validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// normalize expands home-relative paths and resolves each collection's
// directory to an absolute path under the library directory.
func normalize(cfg *Config) {
	cfg.Library.Directory = expandHome(cfg.Library.Directory)
	cfg.Library.Database = expandHome(cfg.Library.Database)

	for name, coll := range cfg.Collections {
		dir := expandHome(coll.Directory)
		if dir == "" {
			dir = name
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cfg.Library.Directory, dir)
		}
		coll.Directory = filepath.Clean(dir)
		cfg.Collections[name] = coll
	}
}

func validate(cfg *Config) error {
	if cfg.Library.Directory == "" {
		return errors.New("library.directory must be set")
	}
	if cfg.Library.Database == "" {
		return errors.New("library.database must be set")
	}
	for name, coll := range cfg.Collections {
		// Symlink views default to mirroring the whole library; copy and
		// transcode collections must opt in explicitly.
		if !coll.IsLink() && coll.Query == nil {
			return fmt.Errorf("collection %q: query must be set for non-link collections", name)
		}
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func defaultLibraryDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "Music"
	}
	return filepath.Join(home, "Music")
}

func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mirrorlib.db"
	}
	return filepath.Join(home, ".local", "share", "mirrorlib", "library.db")
}
