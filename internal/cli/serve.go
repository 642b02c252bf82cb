package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/specdiff/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <dir>...",
		Short: "Serve comparison artifacts over HTTP",
		Long: `Serve the comparison artifacts of one or more corpus directories as JSON.

Run "specdiff compare" first; serve only reads the files it wrote. Each
corpus is addressed by its directory name under /api/corpora/.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			srv, err := server.New(args, c.Logger)
			if err != nil {
				return err
			}
			printInfo("Serving %d corpora on %s", len(args), addr)
			c.Logger.Info("listening", "addr", addr)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.ValidArgsFunction = completeDirs

	return cmd
}
