// Package ui implements the chousei command line.
package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/chousei/internal/config"
	"github.com/javiermolinar/chousei/internal/db"
	"github.com/javiermolinar/chousei/internal/grid"
	"github.com/javiermolinar/chousei/internal/logging"
	"github.com/javiermolinar/chousei/internal/session"
	"github.com/javiermolinar/chousei/internal/slot"
	"github.com/javiermolinar/chousei/internal/store"
	"github.com/javiermolinar/chousei/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	repo     *store.Repository
	config   *config.Config
	root     *cobra.Command
	log      *zap.Logger
	closeLog func()
	clip     session.Clipboard
	now      func() time.Time

	debug bool   // Enable debug logging
	name  string // --name override for the acting user
}

// NewApp creates a new CLI application. A nil repo is opened lazily from
// the configured database path.
func NewApp(repo *store.Repository, cfg *config.Config) *App {
	a := &App{repo: repo, config: cfg, now: time.Now}

	a.root = &cobra.Command{
		Use:   "chousei",
		Short: "Find a meeting time with a shareable link",
		Long: `Chousei proposes candidate meeting times on a weekly grid and shares
them as a link. Respondents mark each slot OK or NG and send their answers
back the same way; no server is involved.

Run without arguments to open the week grid on a new schedule.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// The TUI owns the terminal, so it only logs to a file.
			return a.initLogger(cmd == a.root || cmd.Name() == "open")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := ""
			if len(args) == 1 {
				ref = args[0]
			}
			return a.runTUI(cmd.Context(), ref)
		},
	}

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (logs to "+logging.DebugLogPath+")")
	a.root.PersistentFlags().StringVar(&a.name, "name", "", "Your name for votes and shares (remembered)")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.newCmd())
	a.root.AddCommand(a.openCmd())
	a.root.AddCommand(a.addCmd())
	a.root.AddCommand(a.editCmd())
	a.root.AddCommand(a.moveCmd())
	a.root.AddCommand(a.deleteCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.voteCmd())
	a.root.AddCommand(a.shareCmd())
	a.root.AddCommand(a.answerCmd())
	a.root.AddCommand(a.historyCmd())
	a.root.AddCommand(a.forgetCmd())
	a.root.AddCommand(a.exportCmd())
	a.root.AddCommand(a.importCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chousei %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application until ctx is done.
func (a *App) Execute(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

// Close releases the database and flushes logs.
func (a *App) Close() error {
	var err error
	if a.repo != nil {
		err = a.repo.Close()
	}
	if a.closeLog != nil {
		a.closeLog()
	}
	return err
}

func (a *App) initLogger(tui bool) error {
	if a.log != nil {
		return nil
	}
	opts := logging.Options{Level: a.config.Log.Level, File: a.config.Log.File}
	if a.debug {
		opts.Level = "debug"
		if opts.File == "" {
			opts.File = logging.DebugLogPath
		}
	}
	if !tui {
		opts.Console = os.Stderr
	}
	log, closeFn, err := logging.New(opts)
	if err != nil {
		return err
	}
	a.log, a.closeLog = log, closeFn
	return nil
}

func (a *App) logger() *zap.Logger {
	if a.log == nil {
		return zap.NewNop()
	}
	return a.log
}

// ensureRepo opens the configured database on first use.
func (a *App) ensureRepo() error {
	if a.repo != nil {
		return nil
	}
	sqlite, err := db.New(a.config.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.repo = store.NewRepository(sqlite, a.logger())
	return nil
}

// actor resolves the acting user: --name, then the stored name, then config.
func (a *App) actor(ctx context.Context) (string, error) {
	if name := strings.TrimSpace(a.name); name != "" {
		return name, nil
	}
	name, err := a.repo.UserName(ctx)
	if err != nil {
		return "", err
	}
	if name != "" {
		return name, nil
	}
	return strings.TrimSpace(a.config.User.Name), nil
}

func (a *App) deps(ctx context.Context) (session.Deps, error) {
	clip := a.clip
	if clip == nil {
		clip = session.SystemClipboard{}
	}
	geometry, err := a.gridConfig(ctx)
	if err != nil {
		return session.Deps{}, err
	}
	return session.Deps{
		Repo:      a.repo,
		Clipboard: clip,
		Log:       a.logger(),
		BaseURL:   a.config.Share.BaseURL,
		Grid:      geometry,
		Now:       a.now,
	}, nil
}

// gridConfig returns the configured geometry. Hours stored with
// "chousei config hours" win over the config file.
func (a *App) gridConfig(ctx context.Context) (grid.Config, error) {
	cfg := a.config.GridGeometry()
	tr, ok, err := a.repo.TimeRange(ctx)
	if err != nil {
		return grid.Config{}, fmt.Errorf("loading display hours: %w", err)
	}
	if ok {
		cfg.Range = tr
	}
	return cfg, nil
}

// open loads the schedule ref points at. Unless allowEmpty is set, a ref
// that resolves to nothing is an error.
func (a *App) open(ctx context.Context, ref string, allowEmpty bool) (*session.Session, *session.Result, error) {
	if err := a.ensureRepo(); err != nil {
		return nil, nil, err
	}
	actor, err := a.actor(ctx)
	if err != nil {
		return nil, nil, err
	}

	deps, err := a.deps(ctx)
	if err != nil {
		return nil, nil, err
	}
	sess, res, err := session.Open(ctx, deps, ref, actor)
	if err != nil {
		return nil, nil, err
	}
	if res.Source == session.SourceEmpty && !allowEmpty {
		return nil, nil, fmt.Errorf("schedule %s not found", res.Schedule.ID)
	}
	if strings.TrimSpace(a.name) != "" {
		if err := sess.SetName(ctx, a.name); err != nil {
			return nil, nil, err
		}
	}
	return sess, res, nil
}

func (a *App) runTUI(ctx context.Context, ref string) error {
	sess, res, err := a.open(ctx, ref, true)
	if err != nil {
		return err
	}
	if res.DecodeErr != nil {
		a.logger().Warn("link payload ignored", zap.Error(res.DecodeErr))
	}
	return tui.Run(ctx, sess, tui.Options{
		Theme: a.config.UI.Theme,
		Log:   a.logger(),
		Now:   a.now,
	})
}

// friendly rewrites domain errors into hints for the command line.
func friendly(err error) error {
	switch {
	case errors.Is(err, session.ErrNameRequired):
		return errors.New("a name is required: pass --name or set user.name in the config")
	case errors.Is(err, slot.ErrNotEditor):
		return fmt.Errorf("%w (open the schedule as its creator)", err)
	default:
		return err
	}
}
