// Package loc aggregates lines-of-code statistics for a GitHub user
// across all of their repositories.
//
// For every repository the user owns or has access to, the contributor
// statistics endpoint reports weekly additions, deletions, and commit
// counts per author. This package sums the weeks belonging to the
// queried user into per-repository and account-wide totals, tracking
// fork-exclusive subtotals alongside, and builds a histogram of the
// primary languages across the repository list.
package loc

import (
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/ghorbit/pkg/errors"
	"github.com/matzehuels/ghorbit/pkg/github"
)

// API is the slice of the GitHub client the counter depends on.
type API interface {
	Repos(ctx context.Context, user string) ([]github.Repo, error)
	ContributorStats(ctx context.Context, owner, repo string) ([]github.ContributorStats, error)
}

var _ API = (*github.Client)(nil)

// RepoStat is the queried user's line counts in a single repository.
// A repository where the user has not landed any commits carries all
// zeroes; it still appears in the report.
type RepoStat struct {
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
	Fork    bool   `json:"fork"`
	Added   int    `json:"added"`
	Removed int    `json:"removed"`
	Net     int    `json:"net"`
	Total   int    `json:"total"` // added + removed, the sort key
	Commits int    `json:"commits"`
}

// LanguageCount is one entry of the primary-language histogram.
type LanguageCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary is the account-wide aggregation over every repository.
// The NoFork fields repeat the line counters with forked repositories
// excluded.
type Summary struct {
	Handle string `json:"handle"`
	Repos  int    `json:"repos"`

	Added         int `json:"added"`
	AddedNoFork   int `json:"added_no_fork"`
	Removed       int `json:"removed"`
	RemovedNoFork int `json:"removed_no_fork"`
	Net           int `json:"net"`
	NetNoFork     int `json:"net_no_fork"`
	Total         int `json:"total"`
	TotalNoFork   int `json:"total_no_fork"`

	Commits    int `json:"commits"`
	Stargazers int `json:"stargazers"`
	Forks      int `json:"forks"`
	OpenIssues int `json:"open_issues"`

	Languages []LanguageCount `json:"languages"`
	RepoStats []RepoStat      `json:"repo_stats"` // sorted by Total descending

	Duration time.Duration `json:"duration"`
}

// Options configures a Counter. Zero values fall back to defaults.
type Options struct {
	MaxLanguages int         // <= 0 = 5
	Logger       *log.Logger // nil = log.Default()
}

// Counter computes LOC summaries. Safe for concurrent use.
type Counter struct {
	api          API
	maxLanguages int
	logger       *log.Logger
}

// NewCounter creates a Counter over the given API.
func NewCounter(api API, opts Options) *Counter {
	maxLanguages := opts.MaxLanguages
	if maxLanguages <= 0 {
		maxLanguages = 5
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Counter{api: api, maxLanguages: maxLanguages, logger: logger}
}

// Count fetches the user's repositories and aggregates their line
// statistics. One contributor-stats request runs per repository,
// concurrently. A repository whose stats cannot be fetched (the
// endpoint answers 202 while GitHub computes them, or fails outright)
// is logged and skipped; the rest of the report still completes.
func (c *Counter) Count(ctx context.Context, handle string) (*Summary, error) {
	if err := errors.ValidateLogin(handle); err != nil {
		return nil, err
	}

	start := time.Now()
	logger := c.logger.With("user", handle)

	repos, err := c.api.Repos(ctx, handle)
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return nil, errors.Wrap(errors.ErrCodeUserNotFound, err, "user %s not found", handle)
		}
		return nil, err
	}

	sum := &Summary{Handle: handle, Repos: len(repos)}
	languages := make(map[string]int)
	for _, r := range repos {
		sum.Stargazers += r.StargazersCount
		sum.Forks += r.ForksCount
		sum.OpenIssues += r.OpenIssuesCount
		if r.Language != "" {
			languages[r.Language]++
		}
	}
	sum.Languages = topLanguages(languages, c.maxLanguages)

	rows := make([]*RepoStat, len(repos))
	var g errgroup.Group
	for i, repo := range repos {
		if repo.Owner.Login == "" || repo.Name == "" {
			continue
		}
		g.Go(func() error {
			stats, err := c.api.ContributorStats(ctx, repo.Owner.Login, repo.Name)
			if err != nil {
				logger.Warn("stats lookup failed", "repo", repo.FullName, "err", err)
				return nil
			}
			row := &RepoStat{Name: repo.Name, HTMLURL: repo.HTMLURL, Fork: repo.Fork}
			for _, s := range stats {
				if s.Author.Login != handle {
					continue
				}
				for _, w := range s.Weeks {
					row.Added += w.Additions
					row.Removed += w.Deletions
					row.Commits += w.Commits
				}
				row.Net = row.Added - row.Removed
				row.Total = row.Added + row.Removed
				break
			}
			rows[i] = row
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, row := range rows {
		if row == nil {
			continue
		}
		sum.RepoStats = append(sum.RepoStats, *row)
		sum.Added += row.Added
		sum.Removed += row.Removed
		sum.Net += row.Net
		sum.Total += row.Total
		sum.Commits += row.Commits
		if !row.Fork {
			sum.AddedNoFork += row.Added
			sum.RemovedNoFork += row.Removed
			sum.NetNoFork += row.Net
			sum.TotalNoFork += row.Total
		}
	}

	sort.SliceStable(sum.RepoStats, func(i, j int) bool {
		if sum.RepoStats[i].Total != sum.RepoStats[j].Total {
			return sum.RepoStats[i].Total > sum.RepoStats[j].Total
		}
		return sum.RepoStats[i].Name < sum.RepoStats[j].Name
	})

	sum.Duration = time.Since(start)
	logger.Info("loc count complete", "repos", sum.Repos, "total", sum.Total,
		"duration", sum.Duration.Round(time.Millisecond))
	return sum, nil
}

// topLanguages sorts the histogram by count descending, name ascending
// on ties, and keeps the first limit entries.
func topLanguages(histogram map[string]int, limit int) []LanguageCount {
	out := make([]LanguageCount, 0, len(histogram))
	for name, count := range histogram {
		out = append(out, LanguageCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
