package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/chousei/internal/config"
	"github.com/javiermolinar/chousei/internal/grid"
	"github.com/javiermolinar/chousei/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	var (
		path string
		show bool
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Show the configuration and optionally edit it field by field.

A config file with default values is written on first use.

Example:
  chousei config
  chousei config --show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = config.DefaultConfigPath()
			}
			p := prompter{r: bufio.NewReader(cmd.InOrStdin()), w: cmd.OutOrStdout()}
			return p.editConfig(path, !show)
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "Config file (default "+config.DefaultConfigPath()+")")
	cmd.Flags().BoolVar(&show, "show", false, "Print the configuration without editing")
	cmd.AddCommand(a.hoursCmd())
	return cmd
}

func (a *App) hoursCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hours [start end]",
		Short: "Show or set the hours shown on the week grid",
		Long: `Show the hours shown on the week grid, or store new ones.

Stored hours apply to every schedule opened on this machine and take
precedence over the [grid] section of the config file. The end hour is
exclusive.

Example:
  chousei config hours
  chousei config hours 7 22`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected a start and an end hour, got %d argument(s)", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if len(args) == 2 {
				tr, err := parseHours(args[0], args[1])
				if err != nil {
					return err
				}
				if err := a.repo.SetTimeRange(ctx, tr); err != nil {
					return fmt.Errorf("saving display hours: %w", err)
				}
				a.logger().Info("display hours stored", zap.Int("start", tr.Start), zap.Int("end", tr.End))
			}
			geometry, err := a.gridConfig(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Display hours: %02d:00-%02d:00\n", geometry.Range.Start, geometry.Range.End)
			return nil
		},
	}
}

func parseHours(start, end string) (grid.TimeRange, error) {
	s, err := strconv.Atoi(start)
	if err != nil {
		return grid.TimeRange{}, fmt.Errorf("invalid start hour %q", start)
	}
	e, err := strconv.Atoi(end)
	if err != nil {
		return grid.TimeRange{}, fmt.Errorf("invalid end hour %q", end)
	}
	tr := grid.TimeRange{Start: s, End: e}
	return tr, tr.Validate()
}

// prompter asks questions on w and reads answers from r.
type prompter struct {
	r *bufio.Reader
	w io.Writer
}

func (p prompter) editConfig(path string, interactive bool) error {
	fmt.Fprintf(p.w, "Config file: %s\n\n", path)

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := cfg.SaveTo(path); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(p.w, "Created %s with default values\n\n", path)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprintf(p.w, "%s", data)

	if !interactive || !p.yesNo("\nEdit the configuration?") {
		return nil
	}

	cfg.User.Name = p.value("Your name", cfg.User.Name)
	cfg.Grid.StartHour = p.integer("First hour shown (0-23)", cfg.Grid.StartHour)
	cfg.Grid.EndHour = p.integer("Last hour shown, exclusive (1-24)", cfg.Grid.EndHour)
	cfg.Share.BaseURL = p.value("Share link base URL", cfg.Share.BaseURL)
	cfg.Storage.DBPath = p.value("Database path", cfg.Storage.DBPath)
	cfg.Log.Level = p.value("Log level (debug, info, warn, error)", cfg.Log.Level)
	cfg.Log.File = p.value("Log file (empty for none)", cfg.Log.File)
	cfg.UI.Theme = p.theme(cfg.UI.Theme)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintln(p.w, "\nConfiguration saved.")
	return nil
}

func (p prompter) line() string {
	s, _ := p.r.ReadString('\n')
	return strings.TrimSpace(s)
}

func (p prompter) yesNo(question string) bool {
	fmt.Fprintf(p.w, "%s [y/N]: ", question)
	switch strings.ToLower(p.line()) {
	case "y", "yes":
		return true
	}
	return false
}

// value returns current when the answer is empty.
func (p prompter) value(label, current string) string {
	if current == "" {
		fmt.Fprintf(p.w, "  %s: ", label)
	} else {
		fmt.Fprintf(p.w, "  %s [%s]: ", label, current)
	}
	if s := p.line(); s != "" {
		return s
	}
	return current
}

func (p prompter) integer(label string, current int) int {
	for {
		s := p.value(label, strconv.Itoa(current))
		n, err := strconv.Atoi(s)
		if err == nil {
			return n
		}
		fmt.Fprintf(p.w, "  Not a number: %q\n", s)
	}
}

func (p prompter) theme(current string) string {
	options := strings.Join(theme.Available(), ", ")
	for {
		s := strings.ToLower(p.value("UI theme ("+options+")", current))
		if theme.IsAvailable(s) {
			return s
		}
		fmt.Fprintf(p.w, "  Unknown theme %q\n", s)
	}
}
