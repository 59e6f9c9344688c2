package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/dotmap/dotpath"
)

// StructureFlags contains flags for the structure command
type StructureFlags struct {
	outputFlags
	Nested bool
}

func newStructureCommand() *cobra.Command {
	flags := &StructureFlags{}
	cmd := &cobra.Command{
		Use:     "structure [file|-]",
		GroupID: groupDocuments,
		Short:   "Describe the shape of a document",
		Long: `Print every leaf path of a document with its type. List indices are
collapsed to *, and leaves whose types differ across elements report a
union such as int|string. With --nested, the same information is printed
as a document mirroring the input.`,
		Example: `  dotmap structure users.json
  dotmap structure config.yaml --nested -f yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := StdinFilePath
			if len(args) == 1 {
				input = args[0]
			}
			return runStructure(cmd, flags, input)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.Nested, "nested", false, "print the shape as a nested document")
	return cmd
}

func runStructure(cmd *cobra.Command, flags *StructureFlags, input string) error {
	root, err := decodeInput(cmd, input)
	if err != nil {
		return err
	}
	if flags.Nested {
		return writeDocument(cmd, dotpath.StructureMultidimensional(root), flags.outputFlags, input)
	}
	return writeDocument(cmd, dotpath.Structure(root), flags.outputFlags, input)
}
