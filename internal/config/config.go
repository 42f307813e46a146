package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	cycloerrors "github.com/cyclomap/cyclo/internal/errors"
)

// DefaultConfigName is the project config file looked up next to the
// analysis root.
const DefaultConfigName = ".cyclo.toml"

type Config struct {
	Project Project `toml:"project"`
	Scan    Scan    `toml:"scan"`
	Output  Output  `toml:"output"`
	Serve   Serve   `toml:"serve"`
}

type Project struct {
	Root string `toml:"root"` // directory tree to analyze
	Name string `toml:"name"`
}

type Scan struct {
	Exclude []string `toml:"exclude"` // doublestar globs, relative to root
	Jobs    int      `toml:"jobs"`    // parallel analysis workers, 1 = sequential
}

type Output struct {
	Dir       string `toml:"dir"`        // rendered bundle directory
	Debug     bool   `toml:"debug"`      // also write the plain-text dump
	DebugFile string `toml:"debug_file"` // dump path, relative to cwd
}

type Serve struct {
	Port            int  `toml:"port"`
	Watch           bool `toml:"watch"`             // re-analyze on filesystem changes
	WatchDebounceMs int  `toml:"watch_debounce_ms"` // quiet period before a re-run
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Project: Project{
			Root: ".",
		},
		Scan: Scan{
			Exclude: []string{},
			Jobs:    1, // sequential reference behavior
		},
		Output: Output{
			Dir:       "html",
			Debug:     false,
			DebugFile: "debug.txt",
		},
		Serve: Serve{
			Port:            3030,
			Watch:           false,
			WatchDebounceMs: 300,
		},
	}
}

// Load reads the config file at path, layered over the defaults. A missing
// file is not an error: the defaults are returned unchanged so the tool
// works with no project config at all.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	// Resolve a relative root against the config file's directory so the
	// config means the same thing regardless of the invocation cwd.
	if cfg.Project.Root != "" && !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Join(filepath.Dir(path), cfg.Project.Root)
	}

	return cfg, nil
}

// Validate checks ranges after all overrides are applied. Each failing
// section is wrapped in a ConfigError naming the section.
func (c *Config) Validate() error {
	if err := validateProject(&c.Project); err != nil {
		return cycloerrors.NewConfigError("project", c.Project.Root, err)
	}
	if err := validateScan(&c.Scan); err != nil {
		return cycloerrors.NewConfigError("scan", "", err)
	}
	if err := validateOutput(&c.Output); err != nil {
		return cycloerrors.NewConfigError("output", "", err)
	}
	if err := validateServe(&c.Serve); err != nil {
		return cycloerrors.NewConfigError("serve", "", err)
	}
	return nil
}

func validateProject(p *Project) error {
	if p.Root == "" {
		return fmt.Errorf("root must not be empty")
	}
	info, err := os.Stat(p.Root)
	if err != nil {
		return fmt.Errorf("root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root is not a directory")
	}
	return nil
}

func validateScan(s *Scan) error {
	if s.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", s.Jobs)
	}
	return nil
}

func validateOutput(o *Output) error {
	if o.Dir == "" {
		return fmt.Errorf("dir must not be empty")
	}
	return nil
}

func validateServe(s *Serve) error {
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", s.Port)
	}
	if s.WatchDebounceMs < 0 {
		return fmt.Errorf("watch debounce must not be negative, got %d", s.WatchDebounceMs)
	}
	return nil
}
