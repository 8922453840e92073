package transcode

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/mirrorlib/mirrorlib/internal/library"
)

// When decides per item whether transcoding applies. The expression is
// compiled once and evaluated over a fixed set of variables, never
// arbitrary code.
type When struct {
	program *vm.Program
	maxBR   int
	formats []string
}

// whenEnv builds the evaluation environment for one item.
func whenEnv(bitrate int, format string, maxBR int, formats []string) map[string]any {
	return map[string]any{
		"bitrate":     bitrate,
		"maxbr":       maxBR,
		"format":      strings.ToLower(format),
		"allowed_fmt": formats,
	}
}

// CompileWhen compiles a convert_when expression. The empty expression
// means "always transcode". maxBitrateKBPS is converted to bits per second
// for the maxbr variable; formats must already be lower-cased.
func CompileWhen(expression string, maxBitrateKBPS int, formats []string) (*When, error) {
	if expression == "" {
		expression = "true"
	}
	program, err := expr.Compile(expression,
		expr.Env(whenEnv(0, "", 0, nil)),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid convert_when expression %q: %w", expression, err)
	}
	return &When{
		program: program,
		maxBR:   maxBitrateKBPS * 1000,
		formats: formats,
	}, nil
}

// ShouldTranscode evaluates the expression for an item.
func (w *When) ShouldTranscode(item *library.Item) (bool, error) {
	out, err := expr.Run(w.program, whenEnv(item.Bitrate, item.Format, w.maxBR, w.formats))
	if err != nil {
		return false, fmt.Errorf("evaluate convert_when: %w", err)
	}
	result, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("convert_when did not evaluate to a boolean")
	}
	return result, nil
}
