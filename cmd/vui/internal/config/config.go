package config

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/vui/pkg/errors"
	"github.com/go-drift/vui/pkg/hotreload"
	"github.com/go-drift/vui/pkg/wire"
)

// FileName is the optional project configuration file.
const FileName = "vui.yaml"

// DefaultTarget is where push sends trees when nothing else is configured.
const DefaultTarget = "http://localhost:8080"

// Config represents the optional vui.yaml configuration.
type Config struct {
	App    AppConfig    `yaml:"app"`
	Reload ReloadConfig `yaml:"reload"`
	Log    LogConfig    `yaml:"log"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty"`
}

// ReloadConfig configures both ends of hot reload.
type ReloadConfig struct {
	// Listen is the server's listen address.
	Listen string `yaml:"listen,omitempty"`
	// Path is the reload endpoint on both ends.
	Path string `yaml:"path,omitempty"`
	// Target is the base URL push sends to.
	Target string `yaml:"target,omitempty"`
	// Timeout is a Go duration string, e.g. "5s".
	Timeout     string `yaml:"timeout,omitempty"`
	Compression string `yaml:"compression,omitempty"`
	MaxPayload  int64  `yaml:"max_payload,omitempty"`
	Disabled    bool   `yaml:"disabled,omitempty"`
}

// LogConfig selects the log output.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
	// File receives logs while the terminal UI owns the screen.
	File string `yaml:"file,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root       string
	ModulePath string
	AppName    string

	Listen         string
	Path           string
	Target         string
	Timeout        time.Duration
	Compression    wire.Compression
	MaxPayload     int64
	ReloadDisabled bool

	LogLevel  slog.Level
	LogFormat string
	LogFile   string
}

// LoadOptional reads vui.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &cfg, nil
}

// Resolve loads vui.yaml (if present) and resolves defaults. A directory
// without go.mod is accepted; the app name then comes from its base name.
func Resolve(dir string) (*Resolved, error) {
	modulePath, err := modulePath(dir)
	if err != nil && !stderrors.Is(err, os.ErrNotExist) {
		return nil, errors.New("config.resolve", errors.KindConfig, err)
	}

	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, errors.New("config.resolve", errors.KindConfig, err)
	}

	r := &Resolved{
		Root:           dir,
		ModulePath:     modulePath,
		AppName:        strings.TrimSpace(cfg.App.Name),
		Listen:         orDefault(cfg.Reload.Listen, hotreload.DefaultAddress),
		Path:           orDefault(cfg.Reload.Path, hotreload.DefaultPath),
		Target:         orDefault(cfg.Reload.Target, DefaultTarget),
		Timeout:        hotreload.DefaultTimeout,
		MaxPayload:     cfg.Reload.MaxPayload,
		ReloadDisabled: cfg.Reload.Disabled,
		LogFormat:      orDefault(strings.ToLower(cfg.Log.Format), "text"),
		LogFile:        strings.TrimSpace(cfg.Log.File),
	}
	if r.AppName == "" {
		r.AppName = defaultAppName(modulePath, dir)
	}
	if r.MaxPayload <= 0 {
		r.MaxPayload = hotreload.DefaultMaxPayload
	}
	if !strings.HasPrefix(r.Path, "/") {
		return nil, configError("reload.path must start with '/', got %q", r.Path)
	}

	if s := strings.TrimSpace(cfg.Reload.Timeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return nil, configError("reload.timeout: invalid duration %q", s)
		}
		r.Timeout = d
	}

	r.Compression, err = wire.ParseCompression(strings.TrimSpace(cfg.Reload.Compression))
	if err != nil {
		return nil, errors.New("config.resolve", errors.KindConfig, fmt.Errorf("reload.compression: %w", err))
	}

	if err := r.LogLevel.UnmarshalText([]byte(orDefault(cfg.Log.Level, "info"))); err != nil {
		return nil, configError("log.level: %v", err)
	}
	if r.LogFormat != "text" && r.LogFormat != "json" {
		return nil, configError("log.format must be text or json, got %q", r.LogFormat)
	}

	return r, nil
}

func configError(format string, args ...any) error {
	return errors.New("config.resolve", errors.KindConfig, fmt.Errorf(format, args...))
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

// FindProjectRoot walks up from the current directory to find go.mod. It
// falls back to the current directory.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for dir := cwd; ; {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modulePath != "" {
		if prefix, _, ok := module.SplitPathVersion(modulePath); ok {
			parts := strings.Split(prefix, "/")
			base = parts[len(parts)-1]
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "vui_app"
	}
	return base
}
