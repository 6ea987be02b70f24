package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the build info store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			artifacts, _ := cmd.Flags().GetBool("artifacts")

			return c.app.Clean(cmd.Context(), app.CleanOptions{
				Options:   options(cmd),
				Artifacts: artifacts,
			})
		},
	}
	cmd.Flags().BoolP("artifacts", "a", false, "Also remove compiled artifacts")
	return cmd
}
