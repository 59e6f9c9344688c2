package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erraggy/dotmap/dotpath"
)

// GetFlags contains flags for the get command
type GetFlags struct {
	outputFlags
	Default string
	Strict  bool
}

func newGetCommand() *cobra.Command {
	flags := &GetFlags{}
	cmd := &cobra.Command{
		Use:     "get <file|-> <path>",
		GroupID: groupDocuments,
		Short:   "Print the value at a dot path",
		Long: `Print the value at a dot path. Wildcard paths print a list of every match.

A path that does not resolve prints the --default value, or null.`,
		Example: `  dotmap get config.yaml server.port
  dotmap get users.json 'users.*.email' -f yaml
  cat doc.json | dotmap get - items.0 --strict`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, flags, args[0], args[1])
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&flags.Default, "default", "", "JSON or YAML value printed when the path does not resolve")
	cmd.Flags().BoolVar(&flags.Strict, "strict", false, "fail when the path does not resolve")
	return cmd
}

func runGet(cmd *cobra.Command, flags *GetFlags, input, path string) error {
	p, err := dotpath.Compile(path)
	if err != nil {
		return err
	}
	root, err := decodeInput(cmd, input)
	if err != nil {
		return err
	}

	accessor := dotpath.NewAccessor()
	v := accessor.GetPath(root, p, nil)
	found := v != nil
	if !found && !p.HasWildcard() {
		_, found = accessor.Lookup(root, p.Segments())
	}
	if !found {
		if flags.Strict {
			return fmt.Errorf("path %s not found in %s", path, FormatInputPath(input))
		}
		if cmd.Flags().Changed("default") {
			v = decodeValue(flags.Default)
		}
	}
	return writeDocument(cmd, v, flags.outputFlags, input)
}
