package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/petal-labs/coverkit/core"
)

func (a *App) newPlatformsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "platforms",
		Short: "List target platforms and their aspect ratios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			platforms := core.Platforms()
			if a.jsonOutput {
				return writeJSON(a.stdout, platforms)
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tRATIO\tDESCRIPTION")
			for _, p := range platforms {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Ratio, p.Description)
			}
			return tw.Flush()
		},
	}
}

func (a *App) newTagsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List suggested style tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tags := core.StyleTags()
			if a.jsonOutput {
				return writeJSON(a.stdout, tags)
			}
			for _, t := range tags {
				fmt.Fprintln(a.stdout, t)
			}
			return nil
		},
	}
}
