// Package transcode resolves transcoding formats, runs the external encoder
// command, and evaluates per-item transcode eligibility.
package transcode

import (
	"fmt"
	"strings"
)

// Format describes how to produce one target audio format.
type Format struct {
	// Command is the encoder command template; $source and $dest are
	// substituted with the input and output paths.
	Command string

	// Extension is the produced file extension, without the dot.
	Extension string
}

// builtinFormats mirrors the stock converter command table.
var builtinFormats = map[string]Format{
	"mp3":  {Command: "ffmpeg -i $source -y -vn -aq 2 $dest", Extension: "mp3"},
	"aac":  {Command: "ffmpeg -i $source -y -vn -acodec aac -aq 1 $dest", Extension: "m4a"},
	"alac": {Command: "ffmpeg -i $source -y -vn -acodec alac $dest", Extension: "m4a"},
	"flac": {Command: "ffmpeg -i $source -y -vn -acodec flac $dest", Extension: "flac"},
	"opus": {Command: "ffmpeg -i $source -y -vn -acodec libopus -ab 96k $dest", Extension: "opus"},
	"ogg":  {Command: "ffmpeg -i $source -y -vn -acodec libvorbis -aq 3 $dest", Extension: "ogg"},
	"wma":  {Command: "ffmpeg -i $source -y -vn -acodec wmav2 $dest", Extension: "wma"},
	"wav":  {Command: "ffmpeg -i $source -y -vn -acodec pcm_s16le $dest", Extension: "wav"},
}

// LookupFormat resolves a format name (case-insensitive) against the
// configured overrides, then the built-in table.
func LookupFormat(name string, overrides map[string]Format) (Format, error) {
	name = strings.ToLower(name)
	if f, ok := overrides[name]; ok {
		if f.Extension == "" {
			f.Extension = name
		}
		return f, nil
	}
	if f, ok := builtinFormats[name]; ok {
		return f, nil
	}
	return Format{}, fmt.Errorf("unknown transcode format %q", name)
}
