package commands

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/auditlog"
	"github.com/tallybook-dev/tallybook/internal/buildinfo"
	"github.com/tallybook-dev/tallybook/internal/cache"
	"github.com/tallybook-dev/tallybook/internal/config"
	"github.com/tallybook-dev/tallybook/internal/gitops"
	"github.com/tallybook-dev/tallybook/internal/ledger"
	"github.com/tallybook-dev/tallybook/internal/lockmap"
	"github.com/tallybook-dev/tallybook/internal/logger"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string
	var user string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "tallybook",
		Short:   "Per-user transaction ledgers in plain CSV",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.FileName, "path to tallybook.yaml")
	rootCmd.PersistentFlags().StringVar(&user, "user", "", "user whose ledger to operate on (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newAddCommand(&configPath, &user, &verbose))
	rootCmd.AddCommand(newListCommand(&configPath, &user, &verbose))
	rootCmd.AddCommand(newSearchCommand(&configPath, &user, &verbose))
	rootCmd.AddCommand(newUpdateCommand(&configPath, &user, &verbose))
	rootCmd.AddCommand(newRmCommand(&configPath, &user, &verbose))
	rootCmd.AddCommand(newImportCommand(&configPath, &user, &verbose))
	rootCmd.AddCommand(newAnalyzeCommand(&configPath, &user, &verbose))

	return rootCmd
}

// app holds the long-lived collaborators every command wires once: one
// cache, one store, one locker, shared by all services the process builds.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	store *ledger.Store
	cache *cache.Cache
	locks *lockmap.Locker
}

func loadApp(configPath string, verbose bool) (*app, error) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log := logger.New(level)

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	expire, err := cfg.Cache.ExpireAfterWriteDuration()
	if err != nil {
		return nil, err
	}
	refresh, err := cfg.Cache.RefreshAfterWriteDuration()
	if err != nil {
		return nil, err
	}

	return &app{
		cfg: cfg,
		log: log,
		store: ledger.NewStore(log),
		cache: cache.New(cache.Options{
			MaxEntries:        cfg.Cache.MaxEntries,
			ExpireAfterWrite:  expire,
			RefreshAfterWrite: refresh,
		}, log),
		locks: lockmap.New(),
	}, nil
}

// serviceFor builds the record service for a user, falling back to the
// configured default user.
func (a *app) serviceFor(user string) (*ledger.Service, string, error) {
	if user == "" {
		user = a.cfg.DefaultUser
	}
	if user == "" {
		return nil, "", fmt.Errorf("no user given and no default_user configured")
	}
	path := a.cfg.RecordsPath(user)
	return ledger.NewService(path, a.store, a.cache, a.locks, a.log), user, nil
}

// recordMutation appends an audit row and, when enabled, commits the data
// dir. Both are best-effort: the ledger write already succeeded.
func (a *app) recordMutation(user, action, orderNo, details string) {
	err := auditlog.Append(a.cfg.DataDir, []auditlog.Entry{{
		Timestamp: time.Now(),
		User:      user,
		Action:    action,
		OrderNo:   orderNo,
		Details:   details,
	}})
	if err != nil {
		a.log.Warn().Err(err).Msg("writing audit log failed")
	}

	if !a.cfg.Git.AutoCommit || !gitops.IsRepo(a.cfg.DataDir) {
		return
	}
	message := fmt.Sprintf("%s: %s %s", user, action, orderNo)
	if _, err := gitops.CommitAll(a.cfg.DataDir, message, a.cfg.Git.AuthorName, a.cfg.Git.AuthorEmail); err != nil {
		a.log.Warn().Err(err).Msg("git auto-commit failed")
	}
}
