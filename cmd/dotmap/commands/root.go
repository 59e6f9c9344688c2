package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

const (
	groupDocuments = "documents"
	groupUtility   = "utility"
)

type rootFlags struct {
	LogLevel string
	Quiet    bool
}

// NewRootCommand builds the dotmap command tree.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "dotmap",
		Short: "Read, write and reshape JSON and YAML documents with dot paths",
		Long: `dotmap addresses nested data with dot paths such as users.*.email and
reshapes whole documents with mapping templates.

A template is a JSON or YAML document whose leaves are expressions:

  name: "{{ user.name | title }}"
  email: "{{ user.email | trim | lower ?? 'unknown' }}"

Maps keyed by "*" expand once per wildcard element and accept WHERE,
GROUP BY, HAVING, ORDER BY, DISTINCT, OFFSET and LIMIT directives.`,
		Example: `  # Read every email in a document
  dotmap get users.yaml 'users.*.email'

  # Map a source document through a template
  dotmap map template.yaml source.json -f yaml

  # Derive the inverse template
  dotmap reverse template.yaml`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "warn", "log level: debug, info, warn or error")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress warnings and diagnostic messages")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return configureLogging(cmd, flags)
	}

	cmd.AddGroup(&cobra.Group{ID: groupDocuments, Title: "Commands:"})
	cmd.AddGroup(&cobra.Group{ID: groupUtility, Title: "Utility Commands:"})
	cmd.SetHelpCommandGroupID(groupUtility)
	cmd.SetCompletionCommandGroupID(groupUtility)

	cmd.AddCommand(newGetCommand())
	cmd.AddCommand(newSetCommand())
	cmd.AddCommand(newMapCommand())
	cmd.AddCommand(newReverseCommand())
	cmd.AddCommand(newStructureCommand())
	cmd.AddCommand(newFiltersCommand())
	cmd.AddCommand(newMCPCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// configureLogging installs the default slog logger on the command's
// stderr.
func configureLogging(cmd *cobra.Command, flags *rootFlags) error {
	level, err := parseLevel(flags.LogLevel)
	if err != nil {
		return err
	}
	if flags.Quiet {
		level = slog.LevelError
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level '%s'. Valid levels: debug, info, warn, error", s)
}
