package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erraggy/dotmap/internal/cliutil"
	"github.com/erraggy/dotmap/reverse"
	"github.com/erraggy/dotmap/template"
)

// ReverseFlags contains flags for the reverse command
type ReverseFlags struct {
	outputFlags
	Lenient bool
}

func newReverseCommand() *cobra.Command {
	flags := &ReverseFlags{}
	cmd := &cobra.Command{
		Use:     "reverse <template|->",
		GroupID: groupDocuments,
		Short:   "Print the inverse of a mapping template",
		Long: `Print the inverse of a mapping template. Mapping a target through the
inverse rebuilds the source it came from.

Only plain path leaves can be inverted. Leaves with filters, defaults,
aliases or literals, and blocks with directives, fail the command unless
--lenient is given, in which case they are dropped and listed on stderr.`,
		Example: `  dotmap reverse template.yaml -f yaml
  dotmap reverse template.yaml --lenient -o inverse.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReverse(cmd, flags, args[0])
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.Lenient, "lenient", false, "drop leaves that cannot be inverted instead of failing")
	return cmd
}

func runReverse(cmd *cobra.Command, flags *ReverseFlags, input string) error {
	data, err := readInput(cmd, input)
	if err != nil {
		return err
	}
	tpl, err := template.Parse(data)
	if err != nil {
		return fmt.Errorf("template %s: %w", FormatInputPath(input), err)
	}

	var opts []reverse.Option
	if flags.Lenient {
		opts = append(opts, reverse.Lenient())
	}
	res, err := reverse.ReverseWithResult(tpl, opts...)
	if err != nil {
		return err
	}
	quiet, _ := cmd.Flags().GetBool("quiet")
	if !quiet {
		for _, s := range res.Skipped {
			cliutil.Writef(cmd.ErrOrStderr(), "Skipped %s: %s\n", s.Path, s.Reason)
		}
	}
	return writeDocument(cmd, res.Template.Value(), flags.outputFlags, input)
}
