// Package commands provides the cobra commands of the dotmap CLI.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erraggy/dotmap/dotpath"
	"github.com/erraggy/dotmap/internal/cliutil"
	"github.com/erraggy/dotmap/internal/codec"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = cliutil.StdinPath

// outputFlags are shared by every command that prints a document.
type outputFlags struct {
	Format string
	Output string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Format, "format", "f", string(codec.FormatJSON), "output format: json or yaml")
	cmd.Flags().StringVarP(&f.Output, "output", "o", "", "write the result to a file instead of stdout")
}

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string) (codec.Format, error) {
	f, err := codec.ParseFormat(format)
	if err != nil {
		return "", fmt.Errorf("invalid format '%s'. Valid formats: %s, %s", format, codec.FormatJSON, codec.FormatYAML)
	}
	return f, nil
}

// readInput reads a file, or stdin when path is StdinFilePath.
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == StdinFilePath {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(filepath.Clean(path))
}

// decodeInput reads and decodes a JSON or YAML document.
func decodeInput(cmd *cobra.Command, path string) (any, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	v, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", FormatInputPath(path), err)
	}
	return v, nil
}

// decodeValue parses a command-line value as JSON or YAML. Anything that
// does not parse is taken as a plain string.
func decodeValue(raw string) any {
	v, err := codec.Decode([]byte(raw))
	if err != nil {
		return raw
	}
	return v
}

// writeDocument encodes v and writes it to stdout or to out.Output.
func writeDocument(cmd *cobra.Command, v any, out outputFlags, inputPaths ...string) error {
	format, err := ValidateOutputFormat(out.Format)
	if err != nil {
		return err
	}
	if rs, ok := v.(*dotpath.ResultSet); ok {
		v = rs.Values()
	}
	data, err := codec.Encode(v, format)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", format, err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		data = append(data, '\n')
	}

	if out.Output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := cliutil.WriteOutputFile(cmd.ErrOrStderr(), out.Output, data, inputPaths...); err != nil {
		return err
	}
	slog.Debug("wrote output", "path", out.Output, "bytes", len(data))
	return nil
}

// FormatInputPath returns a display-friendly path for an input document.
func FormatInputPath(path string) string {
	if path == StdinFilePath {
		return "<stdin>"
	}
	return path
}
