package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/shapes/internal/compiler"
	"github.com/roach88/shapes/internal/ir"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	InputFormat string // "json" | "yaml" | "" (by extension)
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <catalog> <type> [input]",
		Short: "Decode data as a type and print its normalized encoding",
		Long: `Decode JSON or YAML input as the given type, encode the result again
and print it as canonical JSON. Defaults are dropped, non-canonical
spellings (dates, durations, special floats) are normalized, and
errors name the path of the offending value.

Reads standard input when no input file is given or input is "-".`,
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 3 {
				input = args[2]
			}
			return runConvert(opts, args[0], args[1], input, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.InputFormat, "input-format", "", "input format (json|yaml); default by file extension, json for stdin")
	return cmd
}

func runConvert(opts *ConvertOptions, path, typeExpr, input string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loaded, err := LoadCatalog(path)
	if err != nil {
		return loadFailure(formatter, err)
	}
	desc, err := resolveType(loaded.Catalog, typeExpr)
	if err != nil {
		_ = formatter.Error(ErrCodeConvert, err.Error(), nil)
		return WrapExitError(ExitCommandError, "unknown type", err)
	}

	value, err := readInput(cmd.InOrStdin(), input, opts.InputFormat)
	if err != nil {
		_ = formatter.Error(ErrCodeInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read input", err)
	}

	e, err := opts.newEngine(formatter.GetErrWriter())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid rules", err)
	}

	decoded, err := e.Decode(desc, value)
	if err != nil {
		_ = formatter.Error(ErrCodeConvert, err.Error(), map[string]string{"type": typeExpr, "stage": "decode"})
		return WrapExitError(ExitFailure, "decode failed", err)
	}
	formatter.VerboseLog("Decoded %s as %T", typeExpr, decoded)

	encoded, err := e.Encode(desc, decoded)
	if err != nil {
		_ = formatter.Error(ErrCodeConvert, err.Error(), map[string]string{"type": typeExpr, "stage": "encode"})
		return WrapExitError(ExitFailure, "encode failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(encoded)
	}
	out, err := ir.MarshalCanonical(encoded)
	if err != nil {
		return WrapExitError(ExitFailure, "encode failed", err)
	}
	fmt.Fprintln(formatter.Writer, string(out))
	return nil
}

// resolveType accepts a declared name, a primitive or a JSON type
// expression.
func resolveType(cat *compiler.Catalog, expr string) (ir.Descriptor, error) {
	if strings.HasPrefix(strings.TrimSpace(expr), "{") {
		return cat.ResolveJSON(expr)
	}
	return cat.Resolve(expr)
}

// readInput reads one JSON or YAML document from a file or stdin.
func readInput(stdin io.Reader, input, format string) (ir.Value, error) {
	var (
		data []byte
		err  error
	)
	if input == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return nil, err
	}

	if format == "" {
		switch strings.ToLower(filepath.Ext(input)) {
		case ".yaml", ".yml":
			format = "yaml"
		default:
			format = "json"
		}
	}

	switch format {
	case "json":
		return ir.UnmarshalValue(bytes.TrimSpace(data))
	case "yaml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
		return ir.FromAny(raw)
	default:
		return nil, fmt.Errorf("unknown input format %q (want json or yaml)", format)
	}
}
