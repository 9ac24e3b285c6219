// Package cli implements the ghorbit command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ghorbit/pkg/buildinfo"
	"github.com/matzehuels/ghorbit/pkg/cache"
	"github.com/matzehuels/ghorbit/pkg/config"
	"github.com/matzehuels/ghorbit/pkg/connections"
	"github.com/matzehuels/ghorbit/pkg/github"
	"github.com/matzehuels/ghorbit/pkg/loc"
)

// appName is the application name used for display.
const appName = "ghorbit"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and built-in
// configuration. The config file is loaded before each command runs so
// --config is honored.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Ghorbit finds the accounts orbiting a GitHub user",
		Long:         `Ghorbit queries the GitHub API for the people connected to a user through follows, shared organizations, and shared repositories, and ranks them by how strongly the evidence suggests they know each other. It also reports lines-of-code statistics across a user's repositories.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/ghorbit/config.toml)")

	// Register all subcommands
	root.AddCommand(c.connectionsCommand())
	root.AddCommand(c.locCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newGitHubClient builds the API client from the loaded config. The
// rate-limit notify hook surfaces denials as styled warnings when noisy
// mode is on, otherwise through the logger.
func (c *CLI) newGitHubClient(ctx context.Context, noCache bool) (*github.Client, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	// Scope keys by cache format version so layout changes invalidate
	// stale entries instead of misparsing them.
	store = cache.NewScoped(store, "v1:")

	notify := func(message string) {
		c.Logger.Warn("github denied the request", "reason", message)
	}
	if c.Config.Search.Noisy {
		notify = func(message string) {
			printWarning("GitHub denied the request: %s", message)
		}
	}

	return github.NewClient(github.Options{
		Auth: github.Auth{
			Token:        c.Config.Auth.Token,
			ClientID:     c.Config.Auth.ClientID,
			ClientSecret: c.Config.Auth.ClientSecret,
		},
		Timeout: c.Config.RequestTimeout(),
		Cache:   store,
		TTL:     c.Config.CacheTTL(),
		Logger:  c.Logger,
		Notify:  notify,
	}), nil
}

// newCache creates the response cache selected by the config. An
// unavailable backend degrades to no caching rather than failing the
// command.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Backend == "none" {
		return cache.NewNullCache(), nil
	}

	switch c.Config.Cache.Backend {
	case "redis":
		store, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr: c.Config.Cache.RedisAddr,
			DB:   c.Config.Cache.RedisDB,
		})
		if err != nil {
			c.Logger.Warn("redis unavailable, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return store, nil
	default:
		dir, err := c.Config.CacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// newSearcher builds a connections searcher over the given client.
func (c *CLI) newSearcher(client *github.Client, maxResults int) *connections.Searcher {
	if maxResults <= 0 {
		maxResults = c.Config.Search.MaxResults
	}
	return connections.NewSearcher(client, connections.Options{
		Weights:    c.weights(),
		MaxResults: maxResults,
		Logger:     c.Logger,
	})
}

// newCounter builds a LOC counter over the given client.
func (c *CLI) newCounter(client *github.Client) *loc.Counter {
	return loc.NewCounter(client, loc.Options{
		MaxLanguages: c.Config.Search.MaxLanguages,
		Logger:       c.Logger,
	})
}

// weights converts the config weight table to the searcher's form.
func (c *CLI) weights() connections.Weights {
	w := c.Config.Weights
	return connections.Weights{
		connections.KindCollaborator: w.Collaborator,
		connections.KindFollows:      w.Follows,
		connections.KindContributor:  w.Contributor,
		connections.KindColleague:    w.Colleague,
		connections.KindFollower:     w.Follower,
	}
}
