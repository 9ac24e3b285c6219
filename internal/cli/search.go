package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// searchCommand creates the interactive user search command. It queries
// the user search endpoint, presents the matches in a picker, and runs a
// connections search for the selection.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		perPage int
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search for a GitHub user and explore their connections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if len(args[0]) < 2 {
				return fmt.Errorf("query %q too short: need at least 2 characters", args[0])
			}

			client, err := c.newGitHubClient(ctx, noCache)
			if err != nil {
				return err
			}

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Searching users matching %q", args[0]))
			spinner.Start()
			users, err := client.SearchUsers(ctx, args[0], perPage)
			spinner.Stop()
			if err != nil {
				return err
			}
			if len(users) == 0 {
				printInfo("No users match %q", args[0])
				return nil
			}

			user, err := selectUser(args[0], users)
			if err != nil {
				return err
			}
			if user == nil {
				return nil
			}

			searcher := c.newSearcher(client, 0)
			spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Searching connections for %s", user.Login))
			spinner.Start()
			res, err := searcher.Search(ctx, user.Login)
			spinner.Stop()
			if err != nil {
				return err
			}

			renderConnectionsList(res)
			printNextStep("Lines of code", fmt.Sprintf("%s loc %s", appName, user.Login))
			return nil
		},
	}

	cmd.Flags().IntVar(&perPage, "limit", 10, "maximum search matches to list")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
