package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ghorbit/pkg/connections"
)

// Output formats for the connections command.
const (
	formatList = "list"
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

// connectionsCommand creates the connections search command.
func (c *CLI) connectionsCommand() *cobra.Command {
	var (
		format  string
		output  string
		max     int
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "connections <user>",
		Short: "Find and rank the accounts connected to a GitHub user",
		Long: `Connections queries the GitHub API for the accounts related to a user
through follows, shared organizations, and shared repositories, and ranks
them by relevance. Each relationship kind carries a weight; an account
discovered through several kinds sums them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			client, err := c.newGitHubClient(ctx, noCache)
			if err != nil {
				return err
			}
			searcher := c.newSearcher(client, max)

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Searching connections for %s", args[0]))
			spinner.Start()
			prog := newProgress(logger)
			res, err := searcher.Search(ctx, args[0])
			spinner.Stop()
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Found %d related accounts", res.Total))

			switch format {
			case formatJSON:
				return writeConnectionsJSON(cmd, res, output)
			case formatDOT:
				return writeOutput(cmd, output, []byte(connections.ToDOT(res)))
			case formatSVG:
				svg, err := connections.RenderSVG(connections.ToDOT(res))
				if err != nil {
					return err
				}
				return writeOutput(cmd, output, svg)
			case formatList, "":
				renderConnectionsList(res)
				return nil
			default:
				return fmt.Errorf("unknown format %q (want list, json, dot, or svg)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatList, "output format: list, json, dot, or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().IntVar(&max, "max", 0, "maximum results (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// renderConnectionsList prints the ranked accounts as a styled list.
func renderConnectionsList(res *connections.Result) {
	printNewline()
	fmt.Println(StyleTitle.Render(fmt.Sprintf("Accounts connected to %s", res.Handle)))
	printDetail("%d related accounts, showing %d", res.Total, len(res.Accounts))
	printNewline()

	if len(res.Accounts) == 0 {
		printInfo("No connections found")
		return
	}

	rankWidth := len(fmt.Sprintf("%d", len(res.Accounts)))
	for i, a := range res.Accounts {
		rank := fmt.Sprintf("%*d.", rankWidth, i+1)
		score := fmt.Sprintf("%g", a.Score(res.Weights))
		fmt.Println(StyleDim.Render(rank) + " " +
			StyleHighlight.Render(a.Handle) + " " +
			StyleNumber.Render(score))
		printDetail("%s", strings.Join(connections.Reasons(a, res.Handle), "; "))
		printDetail("%s", a.ProfileURL)
	}
}

// writeConnectionsJSON encodes the result for scripting consumers.
func writeConnectionsJSON(cmd *cobra.Command, res *connections.Result, output string) error {
	type account struct {
		Handle     string   `json:"handle"`
		ProfileURL string   `json:"profile_url"`
		Score      float64  `json:"score"`
		Reasons    []string `json:"reasons"`
	}
	payload := struct {
		ID       string    `json:"id"`
		Handle   string    `json:"handle"`
		Total    int       `json:"total"`
		Accounts []account `json:"accounts"`
	}{
		ID:       res.ID,
		Handle:   res.Handle,
		Total:    res.Total,
		Accounts: make([]account, 0, len(res.Accounts)),
	}
	for _, a := range res.Accounts {
		payload.Accounts = append(payload.Accounts, account{
			Handle:     a.Handle,
			ProfileURL: a.ProfileURL,
			Score:      a.Score(res.Weights),
			Reasons:    connections.Reasons(a, res.Handle),
		})
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(cmd, output, append(data, '\n'))
}

// writeOutput writes data to the output file, or stdout when none is set.
func writeOutput(cmd *cobra.Command, output string, data []byte) error {
	if output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printFile(output)
	return nil
}
