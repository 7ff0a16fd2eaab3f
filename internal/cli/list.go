package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// TaskInfo describes one registered task in list output.
type TaskInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DefaultSize int    `json:"default_size"`
}

// NewListCommand creates the list command.
func NewListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List registered tasks",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var infos []TaskInfo
			for _, e := range opts.Registry.Entries() {
				infos = append(infos, TaskInfo{Name: e.Name, Description: e.Description, DefaultSize: e.DefaultSize})
			}

			out := newFormatter(opts, cmd)
			if out.JSON() {
				return out.Success(infos)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TASK\tSIZE\tDESCRIPTION")
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", info.Name, info.DefaultSize, info.Description)
			}
			return tw.Flush()
		},
	}
}
