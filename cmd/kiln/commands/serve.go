package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the destination root, compiling assets on request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			listen, _ := cmd.Flags().GetString("listen")
			watch, _ := cmd.Flags().GetBool("watch")

			return c.app.Serve(cmd.Context(), app.ServeOptions{
				Options: options(cmd),
				Listen:  listen,
				Watch:   watch,
			})
		},
	}
	cmd.Flags().StringP("listen", "l", "", "Address to listen on (default :8080)")
	cmd.Flags().BoolP("watch", "w", false, "Recompile artifacts as soon as their sources change")
	return cmd
}
