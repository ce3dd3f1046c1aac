package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/DamynChipman/postit/internal/domain"
)

const (
	defaultAppName = "postit"
	devSuffix      = "-dev"
	configFileName = "config.toml"
)

// Paths holds every file location postit resolves for one app name.
type Paths struct {
	ConfigPath      string
	DataDir         string
	DBPath          string
	GlobalBoardPath string
}

// Options selects the app directory name.
type Options struct {
	AppName string
	DevMode bool
}

// dirName returns the per-app directory name, suffixed in dev mode.
func (o Options) dirName() string {
	name := strings.TrimSpace(o.AppName)
	if name == "" {
		name = defaultAppName
	}
	if o.DevMode {
		name += devSuffix
	}
	return name
}

// Host is the machine state paths are resolved against.
type Host struct {
	GOOS string
	// Home is the user home directory; only linux falls back to it.
	Home string
	// UserConfig is os.UserConfigDir for this host.
	UserConfig string
	Getenv     func(string) string
}

// CurrentHost reads the running process's OS, home, and config dir.
func CurrentHost() (Host, error) {
	userConfig, err := os.UserConfigDir()
	if err != nil {
		return Host{}, fmt.Errorf("user config dir: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Host{}, fmt.Errorf("user home dir: %w", err)
	}
	return Host{GOOS: runtime.GOOS, Home: home, UserConfig: userConfig, Getenv: os.Getenv}, nil
}

// Resolve returns the paths for opts on the current host.
func Resolve(opts Options) (Paths, error) {
	host, err := CurrentHost()
	if err != nil {
		return Paths{}, err
	}
	return host.Paths(opts)
}

// Paths lays out the config file, data dir, database, and global board for opts.
func (h Host) Paths(opts Options) (Paths, error) {
	configRoot, dataRoot, err := h.roots()
	if err != nil {
		return Paths{}, err
	}
	name := opts.dirName()
	dataDir := filepath.Join(dataRoot, name)
	return Paths{
		ConfigPath:      filepath.Join(configRoot, name, configFileName),
		DataDir:         dataDir,
		DBPath:          filepath.Join(dataDir, name+".db"),
		GlobalBoardPath: GlobalBoardPath(dataDir),
	}, nil
}

// roots picks the config and data base directories, honoring XDG on linux and
// APPDATA/LOCALAPPDATA on windows. Other systems keep both under UserConfig.
func (h Host) roots() (string, string, error) {
	getenv := h.Getenv
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	var configRoot, dataRoot string
	switch h.GOOS {
	case "linux":
		var homeConfig, homeData string
		if h.Home != "" {
			homeConfig = filepath.Join(h.Home, ".config")
			homeData = filepath.Join(h.Home, ".local", "share")
		}
		configRoot = env("XDG_CONFIG_HOME", homeConfig)
		dataRoot = env("XDG_DATA_HOME", homeData)
	case "windows":
		configRoot = env("APPDATA", h.UserConfig)
		dataRoot = env("LOCALAPPDATA", h.UserConfig)
	default:
		configRoot, dataRoot = h.UserConfig, h.UserConfig
	}
	if configRoot == "" || dataRoot == "" {
		return "", "", fmt.Errorf("no config or data directory for %s", h.GOOS)
	}
	return configRoot, dataRoot, nil
}

// Locate finds the board for work started in dir: the nearest project board,
// else the global board in DataDir.
func (p Paths) Locate(dir string) (domain.BoardLocation, error) {
	return LocateBoard(dir, p.DataDir)
}

// ProjectBoard returns the project board location rooted at dir without searching.
func (p Paths) ProjectBoard(dir string) domain.BoardLocation {
	return domain.BoardLocation{Path: ProjectBoardPath(dir), Scope: domain.BoardScopeProject}
}
