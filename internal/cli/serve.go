package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/ghorbit/internal/server"
)

// serveCommand creates the HTTP server command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI and JSON API",
		Long: `Serve starts an HTTP server exposing the connections search and LOC
summary as a JSON API plus a small HTML front page. Open
http://localhost:8080/?user=<login> to deep-link into a search.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := c.newGitHubClient(ctx, false)
			if err != nil {
				return err
			}

			if addr == "" {
				addr = c.Config.Server.Addr
			}
			srv := server.New(server.Options{
				Addr:     addr,
				Searcher: c.newSearcher(client, 0),
				Counter:  c.newCounter(client),
				Logger:   c.Logger,
			})

			printInfo("Serving on %s", addr)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}
