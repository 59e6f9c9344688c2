// Package cliutil provides utilities for CLI operations.
package cliutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// OwnerReadWrite is the file permission mode for output documents, which
// may carry data copied from private sources.
const OwnerReadWrite os.FileMode = 0o600

// StdinPath is the special file path used to indicate reading from stdin.
const StdinPath = "-"

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr (useful for debugging).
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// WriteOutputFile writes data to path after checking that it neither
// overwrites one of inputPaths nor follows a symlink. Overwriting an
// unrelated existing file is allowed with a warning on warn.
func WriteOutputFile(warn io.Writer, path string, data []byte, inputPaths ...string) error {
	cleaned := filepath.Clean(path)
	if err := ValidateOutputPath(warn, cleaned, inputPaths); err != nil {
		return err
	}
	if err := RejectSymlinkOutput(cleaned); err != nil {
		return err
	}
	if err := os.WriteFile(cleaned, data, OwnerReadWrite); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return nil
}

// ValidateOutputPath checks if the output path is safe to write to.
// Stdin and empty input paths are ignored.
func ValidateOutputPath(warn io.Writer, outputPath string, inputPaths []string) error {
	absOutputPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	for _, inputPath := range inputPaths {
		if inputPath == "" || inputPath == StdinPath {
			continue
		}
		absInputPath, err := filepath.Abs(inputPath)
		if err != nil {
			return fmt.Errorf("invalid input path %s: %w", inputPath, err)
		}
		if absOutputPath == absInputPath {
			return fmt.Errorf("output file %s would overwrite input file %s", outputPath, inputPath)
		}
	}

	// Warn, but don't fail, when replacing an unrelated file.
	if _, err := os.Stat(outputPath); err == nil {
		Writef(warn, "Warning: output file %s already exists and will be overwritten\n", outputPath)
	}
	return nil
}

// RejectSymlinkOutput checks if the output path is a symlink and returns an error if so.
// This prevents symlink attacks where a symlink could redirect output to an unintended location.
func RejectSymlinkOutput(cleanedPath string) error {
	info, err := os.Lstat(cleanedPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cliutil: checking output path: %w", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("cliutil: refusing to write to symlink: %s", cleanedPath)
	}
	return nil
}
