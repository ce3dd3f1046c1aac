package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	charmLog "github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

type StorageBackend string

const (
	StorageBackendYAML   StorageBackend = "yaml"
	StorageBackendSQLite StorageBackend = "sqlite"
)

const (
	ViewBoard    = "board"
	ViewTimeline = "timeline"
	ViewProject  = "project"
)

type Config struct {
	Storage StorageConfig `toml:"storage"`
	Board   BoardConfig   `toml:"board"`
	UI      UIConfig      `toml:"ui"`
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
}

type StorageConfig struct {
	Backend    StorageBackend `toml:"backend"`
	SQLitePath string         `toml:"sqlite_path"`
}

type BoardConfig struct {
	Columns []ColumnConfig `toml:"columns"`
}

type ColumnConfig struct {
	ID       string `toml:"id"`
	Name     string `toml:"name"`
	WIPLimit int    `toml:"wip_limit"`
}

type UIConfig struct {
	DefaultView    string `toml:"default_view"`
	TickInterval   string `toml:"tick_interval"`
	RenderMarkdown bool   `toml:"render_markdown"`
	ShowHelp       bool   `toml:"show_help"`
}

type ServerConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

type LoggingConfig struct {
	Level   string               `toml:"level"`
	DevFile LoggingDevFileConfig `toml:"dev_file"`
}

type LoggingDevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

func defaultColumns() []ColumnConfig {
	return []ColumnConfig{
		{ID: "todo", Name: "To Do"},
		{ID: "doing", Name: "Doing"},
		{ID: "waiting", Name: "Waiting"},
		{ID: "done", Name: "Done"},
	}
}

func Default(dbPath string) Config {
	return Config{
		Storage: StorageConfig{
			Backend:    StorageBackendYAML,
			SQLitePath: dbPath,
		},
		Board: BoardConfig{
			Columns: defaultColumns(),
		},
		UI: UIConfig{
			DefaultView:    ViewBoard,
			TickInterval:   "200ms",
			RenderMarkdown: true,
			ShowHelp:       false,
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:8765",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: LoggingDevFileConfig{
				Enabled: true,
				Dir:     ".postit/log",
			},
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	// A configured column list replaces the template instead of merging into it.
	cfg.Board.Columns = nil
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	if cfg.Board.Columns == nil {
		cfg.Board.Columns = append([]ColumnConfig(nil), defaults.Board.Columns...)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) normalize() {
	c.Storage.Backend = StorageBackend(strings.TrimSpace(strings.ToLower(string(c.Storage.Backend))))
	c.Storage.SQLitePath = strings.TrimSpace(c.Storage.SQLitePath)
	for idx := range c.Board.Columns {
		c.Board.Columns[idx].ID = strings.TrimSpace(strings.ToLower(c.Board.Columns[idx].ID))
		c.Board.Columns[idx].Name = strings.TrimSpace(c.Board.Columns[idx].Name)
	}
	c.UI.DefaultView = strings.TrimSpace(strings.ToLower(c.UI.DefaultView))
	c.Logging.Level = strings.TrimSpace(strings.ToLower(c.Logging.Level))
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case StorageBackendYAML:
	case StorageBackendSQLite:
		if strings.TrimSpace(c.Storage.SQLitePath) == "" {
			return errors.New("storage.sqlite_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("invalid storage.backend: %q", c.Storage.Backend)
	}

	if len(c.Board.Columns) == 0 {
		return errors.New("board.columns must include at least one column")
	}
	seenColumnID := map[string]struct{}{}
	for idx, column := range c.Board.Columns {
		id := strings.TrimSpace(strings.ToLower(column.ID))
		if id == "" {
			return fmt.Errorf("board.columns[%d].id is required", idx)
		}
		if strings.TrimSpace(column.Name) == "" {
			return fmt.Errorf("board.columns[%d].name is required", idx)
		}
		if column.WIPLimit < 0 {
			return fmt.Errorf("board.columns[%d].wip_limit must be >= 0", idx)
		}
		if _, ok := seenColumnID[id]; ok {
			return fmt.Errorf("board.columns[%d].id is duplicated: %s", idx, id)
		}
		seenColumnID[id] = struct{}{}
	}

	switch strings.TrimSpace(strings.ToLower(c.UI.DefaultView)) {
	case "", ViewBoard, ViewTimeline, ViewProject:
	default:
		return fmt.Errorf("invalid ui.default_view: %q", c.UI.DefaultView)
	}
	if _, err := c.TickInterval(); err != nil {
		return err
	}

	if strings.TrimSpace(c.Server.HTTPBind) == "" {
		return errors.New("server.http_bind is required")
	}
	for name, endpoint := range map[string]string{
		"server.api_endpoint": c.Server.APIEndpoint,
		"server.mcp_endpoint": c.Server.MCPEndpoint,
	} {
		if endpoint = strings.TrimSpace(endpoint); endpoint != "" && !strings.HasPrefix(endpoint, "/") {
			return fmt.Errorf("%s must start with /: %q", name, endpoint)
		}
	}

	if _, err := charmLog.ParseLevel(strings.TrimSpace(strings.ToLower(c.Logging.Level))); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	return nil
}

// TickInterval returns the parsed header refresh interval.
func (c Config) TickInterval() (time.Duration, error) {
	raw := strings.TrimSpace(c.UI.TickInterval)
	if raw == "" {
		return 200 * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid ui.tick_interval: %q", c.UI.TickInterval)
	}
	if d <= 0 {
		return 0, fmt.Errorf("ui.tick_interval must be > 0: %q", c.UI.TickInterval)
	}
	return d, nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
