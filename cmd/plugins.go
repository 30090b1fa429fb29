package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/orf53975/sslyze/internal/plugin"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List the registered checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listPlugins(cmd, plugin.Default)
	},
}

func listPlugins(cmd *cobra.Command, registry *plugin.Registry) error {
	regs := registry.Registrations()
	out := cmd.OutOrStdout()
	if len(regs) == 0 {
		fmt.Fprintln(out, "No checks registered.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDESCRIPTION")
	for _, reg := range regs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", reg.ID, reg.Title, reg.Description)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Run a check with: sslyze check <id> host[:port]...\n")
	return nil
}
