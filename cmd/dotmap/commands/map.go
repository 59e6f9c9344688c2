package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/erraggy/dotmap/internal/cliutil"
	"github.com/erraggy/dotmap/mapper"
	"github.com/erraggy/dotmap/template"
)

// MapFlags contains flags for the map command
type MapFlags struct {
	outputFlags
	Target          string
	SkipNull        bool
	ReindexWildcard bool
	PathFilters     map[string]string
	Reverse         bool
	Stats           bool
}

func newMapCommand() *cobra.Command {
	flags := &MapFlags{}
	cmd := &cobra.Command{
		Use:     "map <template> [source|-]",
		GroupID: groupDocuments,
		Short:   "Map a source document through a template",
		Long: `Map a source document through a template and print the target document.

The source defaults to stdin. With --target, results are written into an
existing document instead of an empty one. With --reverse, the template is
inverted first, so a target produced by it maps back to its source.

Aggregation warnings, such as non-numeric values skipped by SUM, are logged
to stderr unless --quiet is set.`,
		Example: `  dotmap map template.yaml source.json
  cat source.yaml | dotmap map template.yaml -f yaml
  dotmap map template.yaml source.json --path-filter 'users.*.email=trim | lower'
  dotmap map template.yaml target.json --reverse`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := StdinFilePath
			if len(args) == 2 {
				source = args[1]
			}
			return runMap(cmd, flags, args[0], source)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&flags.Target, "target", "", "existing document to write results into")
	cmd.Flags().BoolVar(&flags.SkipNull, "skip-null", true, "do not write nil values")
	cmd.Flags().BoolVar(&flags.ReindexWildcard, "reindex-wildcard", true, "write wildcard results as lists numbered from 0")
	cmd.Flags().StringToStringVar(&flags.PathFilters, "path-filter", nil, "filter chain applied at a target path pattern, as pattern=chain (repeatable)")
	cmd.Flags().BoolVar(&flags.Reverse, "reverse", false, "map through the inverse of the template")
	cmd.Flags().BoolVar(&flags.Stats, "stats", false, "print written and skipped counts to stderr")
	return cmd
}

func runMap(cmd *cobra.Command, flags *MapFlags, templatePath, sourcePath string) error {
	if templatePath == StdinFilePath && sourcePath == StdinFilePath {
		return fmt.Errorf("template and source cannot both be read from stdin")
	}
	data, err := readInput(cmd, templatePath)
	if err != nil {
		return err
	}
	tpl, err := template.Parse(data)
	if err != nil {
		return fmt.Errorf("template %s: %w", FormatInputPath(templatePath), err)
	}
	source, err := decodeInput(cmd, sourcePath)
	if err != nil {
		return err
	}
	var target any
	if flags.Target != "" {
		if target, err = decodeInput(cmd, flags.Target); err != nil {
			return err
		}
	}

	logger := slog.Default().With("template", FormatInputPath(templatePath))
	opts := []mapper.Option{
		mapper.WithSkipNull(flags.SkipNull),
		mapper.WithReindexWildcard(flags.ReindexWildcard),
		mapper.WithLogger(mapper.NewSlogAdapter(logger)),
	}
	if len(flags.PathFilters) > 0 {
		opts = append(opts, mapper.WithPathFilters(flags.PathFilters))
	}
	m, err := mapper.New(opts...)
	if err != nil {
		return err
	}

	var out any
	if flags.Reverse {
		out, err = m.MapReverse(source, target, tpl)
	} else {
		var res *mapper.Result
		if res, err = m.MapWithResult(source, target, tpl); err == nil {
			out = res.Target
			if flags.Stats {
				cliutil.Writef(cmd.ErrOrStderr(), "Written: %d\nSkipped: %d\nWarnings: %d\n", res.Written, res.Skipped, len(res.Warnings))
			}
		}
	}
	if err != nil {
		return err
	}
	return writeDocument(cmd, out, flags.outputFlags, templatePath, sourcePath, flags.Target)
}
