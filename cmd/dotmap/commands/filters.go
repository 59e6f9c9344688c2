package commands

import (
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/erraggy/dotmap/filter"
	"github.com/erraggy/dotmap/internal/cliutil"
)

func newFiltersCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "filters",
		GroupID: groupUtility,
		Short:   "List the built-in filters",
		Long: `List the built-in filters with their aliases and the hook phases they
may run in. Filters without phases can only be used in expressions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFilters(cmd, filter.Default())
		},
	}
}

func runFilters(cmd *cobra.Command, registry *filter.Registry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	cliutil.Writef(w, "NAME\tALIASES\tPHASES\n")
	for _, name := range registry.Names() {
		f, ok := registry.Lookup(name)
		if !ok || f.Name != name {
			continue
		}
		phases := make([]string, 0, len(f.Phases))
		for _, p := range f.Phases {
			phases = append(phases, string(p))
		}
		cliutil.Writef(w, "%s\t%s\t%s\n", f.Name, orDash(strings.Join(f.Aliases, ", ")), orDash(strings.Join(phases, ", ")))
	}
	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
