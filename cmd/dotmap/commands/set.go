package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erraggy/dotmap/dotpath"
)

// SetFlags contains flags for the set command
type SetFlags struct {
	outputFlags
	Merge  bool
	Unset  bool
	String bool
}

func newSetCommand() *cobra.Command {
	flags := &SetFlags{}
	cmd := &cobra.Command{
		Use:     "set <file|-> <path> [value]",
		GroupID: groupDocuments,
		Short:   "Write a value at a dot path and print the document",
		Long: `Write a value at a dot path and print the updated document.

Missing containers are created along the way: a list when the next segment
is a number, a map otherwise. A * segment writes into every existing element.

The value is parsed as JSON or YAML unless --string is given. With --merge,
maps and lists are merged into the existing value instead of replacing it.
With --unset, the key is removed and no value is taken.`,
		Example: `  dotmap set config.yaml server.port 8080
  dotmap set doc.json 'users.*.active' true -o out.json
  dotmap set doc.json meta '{labels: {team: core}}' --merge
  dotmap set doc.json users.0 --unset`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(cmd, flags, args)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.Merge, "merge", false, "deep-merge the value into the existing one")
	cmd.Flags().BoolVar(&flags.Unset, "unset", false, "remove the value at the path")
	cmd.Flags().BoolVar(&flags.String, "string", false, "write the value as a string without parsing it")
	cmd.MarkFlagsMutuallyExclusive("merge", "unset")
	return cmd
}

func runSet(cmd *cobra.Command, flags *SetFlags, args []string) error {
	input, path := args[0], args[1]
	if flags.Unset != (len(args) == 2) {
		if flags.Unset {
			return fmt.Errorf("set --unset takes no value")
		}
		return fmt.Errorf("set requires a value unless --unset is given")
	}

	doc, err := decodeInput(cmd, input)
	if err != nil {
		return err
	}

	switch {
	case flags.Unset:
		err = dotpath.Unset(&doc, path)
	case flags.Merge:
		err = dotpath.Merge(&doc, path, parseSetValue(flags, args[2]))
	default:
		err = dotpath.Set(&doc, path, parseSetValue(flags, args[2]))
	}
	if err != nil {
		return err
	}
	return writeDocument(cmd, doc, flags.outputFlags, input)
}

func parseSetValue(flags *SetFlags, raw string) any {
	if flags.String {
		return raw
	}
	return decodeValue(raw)
}
