package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/DamynChipman/postit/internal/adapters/storage/sqlite"
	"github.com/DamynChipman/postit/internal/adapters/storage/yamlfile"
	"github.com/DamynChipman/postit/internal/app"
	"github.com/DamynChipman/postit/internal/config"
	"github.com/DamynChipman/postit/internal/domain"
	"github.com/DamynChipman/postit/internal/platform"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// version is stamped at build time.
var version = "dev"

// defaultAppName names config and data directories.
const defaultAppName = "postit"

// program is the subset of tea.Program the tui command needs.
type program interface {
	Run() (tea.Model, error)
}

// programFactory builds the interactive program; tests swap it out.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// run builds the command tree and executes args against it.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	if args == nil {
		args = []string{}
	}
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version), fang.WithoutManpage())
}

// cli holds global flag values shared by every subcommand.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	dbPath     string
	appName    string
	boardPath  string
	devMode    bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	appName := defaultAppName
	if envApp := strings.TrimSpace(os.Getenv("POSTIT_APP_NAME")); envApp != "" {
		appName = envApp
	}
	devDefault := version == "dev"
	if envDev, ok := parseBoolEnv("POSTIT_DEV_MODE"); ok {
		devDefault = envDev
	}

	root := &cobra.Command{
		Use:           "postit",
		Short:         "Terminal sticky-note kanban board",
		Long:          "postit keeps a kanban board of notes per project (./.postit/board.yml) or globally,\nwith an interactive board, timeline, and tag view.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTUI(cmd.Context())
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "path to config TOML")
	flags.StringVar(&c.dbPath, "db", "", "path to sqlite database (sqlite backend)")
	flags.StringVar(&c.appName, "app", appName, "application name for config/data path resolution")
	flags.BoolVar(&c.devMode, "dev", devDefault, "use dev mode paths (<app>-dev) and the dev log file")
	flags.StringVar(&c.boardPath, "board", "", "explicit board file instead of discovery")

	root.AddCommand(
		c.initCommand(),
		c.listCommand(),
		c.addCommand(),
		c.moveCommand(),
		c.editCommand(),
		c.deleteCommand(),
		c.tuiCommand(),
		c.serveCommand(),
		c.pathsCommand(),
	)
	return root
}

// session is the resolved runtime for one command: config, logger, and service.
type session struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
	svc        *app.Service
	closeStore func() error
}

// Close releases the store and the log file.
func (s *session) Close() error {
	var errs []error
	if s.closeStore != nil {
		if err := s.closeStore(); err != nil {
			s.logger.Warn("store close failed", "err", err)
			errs = append(errs, err)
		}
	}
	if err := s.logger.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *cli) resolvePaths() (platform.Paths, error) {
	return platform.Resolve(platform.Options{AppName: c.appName, DevMode: c.devMode})
}

// open resolves paths and config, then builds the logger, store, and service.
func (c *cli) open(command string, quietConsole bool) (*session, error) {
	paths, err := c.resolvePaths()
	if err != nil {
		return nil, err
	}

	configPath := c.resolveConfigPath(paths)
	dbPath, dbOverridden := c.resolveDBPath(paths)

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Storage.SQLitePath = dbPath
	}

	logger, err := newRuntimeLogger(c.stderr, c.appName, c.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if quietConsole {
		// The alternate screen owns the terminal while the board is open.
		logger.SetConsoleEnabled(false)
	}
	logger.Debug("startup configuration resolved", "app", c.appName, "dev_mode", c.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", dbPath)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Debug("dev file logging enabled", "path", devPath)
	}

	s := &session{paths: paths, configPath: configPath, cfg: cfg, logger: logger}
	store, err := s.openStore()
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	s.svc = app.NewService(store, app.NewShortID, nil, app.ServiceConfig{ColumnTemplates: columnTemplates(cfg.Board.Columns)})
	return s, nil
}

// openStore picks the board store for the configured backend.
func (s *session) openStore() (app.BoardStore, error) {
	switch s.cfg.Storage.Backend {
	case config.StorageBackendSQLite:
		s.logger.Debug("opening sqlite repository", "db_path", s.cfg.Storage.SQLitePath)
		repo, err := sqlite.Open(s.cfg.Storage.SQLitePath)
		if err != nil {
			s.logger.Error("sqlite open failed", "db_path", s.cfg.Storage.SQLitePath, "err", err)
			return nil, fmt.Errorf("open sqlite repository: %w", err)
		}
		s.closeStore = repo.Close
		return repo, nil
	default:
		return yamlfile.NewStore(), nil
	}
}

// resolveConfigPath applies --config, then POSTIT_CONFIG, then the platform default.
func (c *cli) resolveConfigPath(paths platform.Paths) string {
	if path := strings.TrimSpace(c.configPath); path != "" {
		return path
	}
	if envPath := strings.TrimSpace(os.Getenv("POSTIT_CONFIG")); envPath != "" {
		return envPath
	}
	return paths.ConfigPath
}

// resolveDBPath applies --db, then POSTIT_DB_PATH, then the platform default.
// The bool reports whether the path overrides storage.sqlite_path.
func (c *cli) resolveDBPath(paths platform.Paths) (string, bool) {
	if path := strings.TrimSpace(c.dbPath); path != "" {
		return path, true
	}
	if envPath := strings.TrimSpace(os.Getenv("POSTIT_DB_PATH")); envPath != "" {
		return envPath, true
	}
	return paths.DBPath, false
}

// locate returns the --board location or the discovered one.
func (c *cli) locate(paths platform.Paths) (domain.BoardLocation, error) {
	if strings.TrimSpace(c.boardPath) != "" {
		return platform.ExplicitBoard(c.boardPath)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return domain.BoardLocation{}, fmt.Errorf("resolve working dir: %w", err)
	}
	return paths.Locate(cwd)
}

func columnTemplates(columns []config.ColumnConfig) []app.ColumnTemplate {
	out := make([]app.ColumnTemplate, 0, len(columns))
	for _, column := range columns {
		out = append(out, app.ColumnTemplate{ID: column.ID, Name: column.Name, WIPLimit: column.WIPLimit})
	}
	return out
}

// parseBoolEnv returns the parsed value and whether the variable held a valid bool.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
