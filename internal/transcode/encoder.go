package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Encoder produces an encoded copy of an audio file. Implemented by
// CommandEncoder; tests substitute fakes.
type Encoder interface {
	Encode(ctx context.Context, command, source, dest string) error
}

// CommandEncoder runs an external encoder process (typically ffmpeg).
type CommandEncoder struct {
	logger zerolog.Logger
}

// NewCommandEncoder creates a CommandEncoder.
func NewCommandEncoder(logger zerolog.Logger) *CommandEncoder {
	return &CommandEncoder{logger: logger}
}

// Encode runs the command template with $source and $dest substituted. A
// failed run removes any partial output file and returns the captured
// stderr in the error.
func (e *CommandEncoder) Encode(ctx context.Context, command, source, dest string) error {
	args := strings.Fields(command)
	if len(args) == 0 {
		return fmt.Errorf("empty encoder command")
	}
	for i, arg := range args {
		arg = strings.ReplaceAll(arg, "$source", source)
		arg = strings.ReplaceAll(arg, "$dest", dest)
		args[i] = arg
	}

	e.logger.Debug().
		Str("command", args[0]).
		Str("source", source).
		Str("dest", dest).
		Msg("encoding")

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.Remove(dest)
		if stderr.Len() > 0 {
			return fmt.Errorf("encode %s: %w: %s", source, err, strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("encode %s: %w", source, err)
	}
	return nil
}
