package connections

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/ghorbit/pkg/errors"
	"github.com/matzehuels/ghorbit/pkg/github"
)

// API is the slice of the GitHub client the searcher depends on.
type API interface {
	Following(ctx context.Context, user string) ([]github.User, error)
	Followers(ctx context.Context, user string) ([]github.User, error)
	Orgs(ctx context.Context, user string) ([]github.Org, error)
	OrgMembers(ctx context.Context, org string) ([]github.User, error)
	Repos(ctx context.Context, user string) ([]github.Repo, error)
	Contributors(ctx context.Context, owner, repo string) ([]github.User, error)
	Collaborators(ctx context.Context, owner, repo string) ([]github.User, error)
}

var _ API = (*github.Client)(nil)

// Options configures a Searcher. Zero values fall back to defaults.
type Options struct {
	Weights    Weights     // nil = DefaultWeights()
	MaxResults int         // <= 0 = 25
	Logger     *log.Logger // nil = log.Default()
}

// Searcher runs connection searches. Configuration is fixed at
// construction; each Search call owns fresh per-search state, so one
// Searcher serves concurrent searches.
type Searcher struct {
	api        API
	weights    Weights
	maxResults int
	logger     *log.Logger
}

// NewSearcher creates a Searcher over the given API.
func NewSearcher(api API, opts Options) *Searcher {
	weights := opts.Weights
	if weights == nil {
		weights = DefaultWeights()
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 25
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Searcher{
		api:        api,
		weights:    weights,
		maxResults: maxResults,
		logger:     logger,
	}
}

// Result is one completed search.
type Result struct {
	// ID identifies this search invocation in logs and responses.
	ID string

	// Handle is the queried account.
	Handle string

	// Accounts is the ranked list, capped at the configured maximum.
	Accounts []*Account

	// Total is the number of distinct related accounts before capping.
	Total int

	// Weights is the table the ranking was computed with, so renderers
	// can display scores consistently.
	Weights Weights

	// Duration is the wall-clock time the search took.
	Duration time.Duration
}

// Search discovers accounts related to handle and returns them ranked by
// relevance.
//
// Four discovery categories run concurrently: following, followers,
// colleagues (one members lookup per organization), and repos (one
// collaborators or contributors lookup per repository). Each category
// always completes: a failed request degrades to zero relationships from
// that category rather than failing or hanging the search. A joint wait
// on all of them decides when the result is assembled, exactly once.
//
// Cancelling ctx supersedes the search: in-flight requests are abandoned,
// no further results are folded in, and Search returns ctx.Err().
func (s *Searcher) Search(ctx context.Context, handle string) (*Result, error) {
	if err := errors.ValidateLogin(handle); err != nil {
		return nil, err
	}

	start := time.Now()
	id := uuid.NewString()
	logger := s.logger.With("search_id", id, "user", handle)
	logger.Debug("starting connection search")

	set := NewSet(handle)

	var g errgroup.Group
	g.Go(func() error {
		s.fetchFollowing(ctx, logger, handle, set)
		return nil
	})
	g.Go(func() error {
		s.fetchFollowers(ctx, logger, handle, set)
		return nil
	})
	g.Go(func() error {
		s.fetchColleagues(ctx, logger, handle, set)
		return nil
	})
	g.Go(func() error {
		s.fetchRepoConnections(ctx, logger, handle, set)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		logger.Debug("search superseded", "err", err)
		return nil, err
	}

	res := &Result{
		ID:       id,
		Handle:   handle,
		Accounts: set.Top(s.weights, s.maxResults),
		Total:    set.Len(),
		Weights:  s.weights,
		Duration: time.Since(start),
	}
	logger.Info("search complete", "related", res.Total, "duration", res.Duration.Round(time.Millisecond))
	return res, nil
}

// fetchFollowing folds in the accounts the queried user follows.
func (s *Searcher) fetchFollowing(ctx context.Context, logger *log.Logger, handle string, set *Set) {
	users, err := s.api.Following(ctx, handle)
	if err != nil {
		logger.Warn("category failed", "category", "following", "err", err)
		return
	}
	if ctx.Err() != nil {
		return
	}
	for _, u := range users {
		set.Add(u.Login, u.HTMLURL, KindFollows)
	}
	logger.Debug("category complete", "category", "following", "found", len(users))
}

// fetchFollowers folds in the accounts following the queried user.
func (s *Searcher) fetchFollowers(ctx context.Context, logger *log.Logger, handle string, set *Set) {
	users, err := s.api.Followers(ctx, handle)
	if err != nil {
		logger.Warn("category failed", "category", "followers", "err", err)
		return
	}
	if ctx.Err() != nil {
		return
	}
	for _, u := range users {
		set.Add(u.Login, u.HTMLURL, KindFollower)
	}
	logger.Debug("category complete", "category", "followers", "found", len(users))
}

// fetchColleagues looks up the user's organizations, then fans out one
// members request per organization. Sub-request failures are logged and
// swallowed so a single broken org cannot stall the category.
func (s *Searcher) fetchColleagues(ctx context.Context, logger *log.Logger, handle string, set *Set) {
	orgs, err := s.api.Orgs(ctx, handle)
	if err != nil {
		logger.Warn("category failed", "category", "colleagues", "err", err)
		return
	}
	if len(orgs) == 0 {
		logger.Debug("category complete", "category", "colleagues", "orgs", 0)
		return
	}

	var g errgroup.Group
	for _, org := range orgs {
		g.Go(func() error {
			members, err := s.api.OrgMembers(ctx, org.Login)
			if err != nil {
				logger.Warn("org members lookup failed", "org", org.Login, "err", err)
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			for _, m := range members {
				set.Add(m.Login, m.HTMLURL, KindColleague)
			}
			return nil
		})
	}
	_ = g.Wait()
	logger.Debug("category complete", "category", "colleagues", "orgs", len(orgs))
}

// fetchRepoConnections looks up the user's repositories, then issues
// exactly one request per repository: collaborators for forks,
// contributors otherwise.
//
// For forks only people with direct commit access to the fork itself
// represent a relationship to the queried user, since the original repo's
// contributor list is someone else's history. For non-forks,
// landed-commit authorship is a reasonable proxy for acquaintance.
func (s *Searcher) fetchRepoConnections(ctx context.Context, logger *log.Logger, handle string, set *Set) {
	repos, err := s.api.Repos(ctx, handle)
	if err != nil {
		logger.Warn("category failed", "category", "repos", "err", err)
		return
	}
	if len(repos) == 0 {
		logger.Debug("category complete", "category", "repos", "repos", 0)
		return
	}

	var g errgroup.Group
	for _, repo := range repos {
		if repo.Owner.Login == "" || repo.Name == "" {
			continue
		}
		g.Go(func() error {
			var (
				users []github.User
				kind  Kind
				err   error
			)
			if repo.Fork {
				users, err = s.api.Collaborators(ctx, repo.Owner.Login, repo.Name)
				kind = KindCollaborator
			} else {
				users, err = s.api.Contributors(ctx, repo.Owner.Login, repo.Name)
				kind = KindContributor
			}
			if err != nil {
				logger.Warn("repo lookup failed", "repo", repo.FullName, "fork", repo.Fork, "err", err)
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			for _, u := range users {
				set.Add(u.Login, u.HTMLURL, kind)
			}
			return nil
		})
	}
	_ = g.Wait()
	logger.Debug("category complete", "category", "repos", "repos", len(repos))
}
