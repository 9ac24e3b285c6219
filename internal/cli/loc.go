package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ghorbit/pkg/loc"
)

// locCommand creates the lines-of-code statistics command.
func (c *CLI) locCommand() *cobra.Command {
	var (
		format  string
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "loc <user>",
		Short: "Count a user's lines of code across all their repositories",
		Long: `Loc sums the user's additions and deletions from the contributor
statistics of every repository they own or have access to, with
fork-exclusive subtotals alongside. Repositories where GitHub is still
computing statistics are skipped; rerunning shortly after usually fills
them in.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			client, err := c.newGitHubClient(ctx, noCache)
			if err != nil {
				return err
			}
			counter := c.newCounter(client)

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Counting lines for %s", args[0]))
			spinner.Start()
			prog := newProgress(logger)
			sum, err := counter.Count(ctx, args[0])
			spinner.Stop()
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Aggregated %d repositories", sum.Repos))

			if format == formatJSON {
				data, err := json.MarshalIndent(sum, "", "  ")
				if err != nil {
					return err
				}
				return writeOutput(cmd, output, append(data, '\n'))
			}
			renderLOCSummary(sum)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatList, "output format: list or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// renderLOCSummary prints the account-wide totals followed by the
// per-repository breakdown, largest first.
func renderLOCSummary(sum *loc.Summary) {
	printNewline()
	fmt.Println(StyleTitle.Render(fmt.Sprintf("Lines of code for %s", sum.Handle)))
	printDetail("%d repositories", sum.Repos)
	printNewline()

	printKeyValue("Added", fmt.Sprintf("%s (%s excluding forks)", loc.Comma(sum.Added), loc.Comma(sum.AddedNoFork)))
	printKeyValue("Removed", fmt.Sprintf("%s (%s excluding forks)", loc.Comma(sum.Removed), loc.Comma(sum.RemovedNoFork)))
	printKeyValue("Net", fmt.Sprintf("%s (%s excluding forks)", loc.Comma(sum.Net), loc.Comma(sum.NetNoFork)))
	printKeyValue("Total", fmt.Sprintf("%s (%s excluding forks)", loc.Comma(sum.Total), loc.Comma(sum.TotalNoFork)))
	printNewline()

	printKeyValue("Commits", loc.Comma(sum.Commits))
	printKeyValue("Stargazers", loc.Comma(sum.Stargazers))
	printKeyValue("Forks", loc.Comma(sum.Forks))
	printKeyValue("Open issues", loc.Comma(sum.OpenIssues))

	if len(sum.Languages) > 0 {
		langs := make([]string, 0, len(sum.Languages))
		for _, l := range sum.Languages {
			langs = append(langs, fmt.Sprintf("%s (%d)", l.Name, l.Count))
		}
		printKeyValue("Languages", strings.Join(langs, "; "))
	}
	printNewline()

	for _, r := range sum.RepoStats {
		name := StyleHighlight.Render(r.Name)
		if r.Fork {
			name += " " + StyleWarning.Render("[FORK]")
		}
		fmt.Println(name)
		printDetail("A: %s  R: %s  N: %s  T: %s",
			loc.Comma(r.Added), loc.Comma(r.Removed), loc.Comma(r.Net), loc.Comma(r.Total))
	}
}
