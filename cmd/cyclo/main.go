package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/cyclomap/cyclo/internal/config"
	"github.com/cyclomap/cyclo/internal/debug"
	"github.com/cyclomap/cyclo/internal/version"
)

func main() {
	if debug.IsDebugEnabled() {
		debug.SetDebugOutput(os.Stderr)
	}

	app := &cli.App{
		Name:                   "cyclo",
		Usage:                  "visualize approximate code complexity as a treemap",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				Value:   config.DefaultConfigName,
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "analyze",
				Aliases: []string{"a"},
				Usage:   "Analyze a directory tree and render the treemap bundle",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "root",
						Aliases: []string{"r"},
						Usage:   "Directory tree to analyze (overrides config)",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output directory for the rendered bundle",
					},
					&cli.BoolFlag{
						Name:    "debug",
						Aliases: []string{"d"},
						Usage:   "Also write a plain-text dump of every node",
					},
					&cli.StringSliceFlag{
						Name:  "exclude",
						Usage: "Exclude files matching glob patterns (e.g., --exclude 'vendor/**')",
					},
					&cli.IntFlag{
						Name:    "jobs",
						Aliases: []string{"j"},
						Usage:   "Parallel analysis workers (1 = sequential)",
					},
				},
				Action: analyzeCommand,
			},
			{
				Name:    "serve",
				Aliases: []string{"s"},
				Usage:   "Serve the rendered bundle over HTTP",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "Port to listen on (0 picks a free port)",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Bundle directory to serve",
					},
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Re-analyze and re-render when the tree changes",
					},
					&cli.StringFlag{
						Name:    "root",
						Aliases: []string{"r"},
						Usage:   "Directory tree to watch and analyze (overrides config)",
					},
				},
				Action: serveCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "cyclo: %v\n", err)
		os.Exit(1)
	}
}

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")

	// If root is specified and config path is default, look for config in
	// the root directory
	if rootFlag := c.String("root"); rootFlag != "" && configPath == config.DefaultConfigName {
		if _, err := os.Stat(filepath.Join(rootFlag, config.DefaultConfigName)); err == nil {
			configPath = filepath.Join(rootFlag, config.DefaultConfigName)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if rootFlag := c.String("root"); rootFlag != "" {
		cfg.Project.Root = rootFlag
	}
	if outFlag := c.String("out"); outFlag != "" {
		cfg.Output.Dir = outFlag
	}
	if c.IsSet("debug") {
		cfg.Output.Debug = c.Bool("debug")
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Scan.Exclude = append(cfg.Scan.Exclude, excludeFlags...)
	}
	if c.IsSet("jobs") {
		cfg.Scan.Jobs = c.Int("jobs")
	}
	if c.IsSet("port") {
		cfg.Serve.Port = c.Int("port")
	}
	if c.IsSet("watch") {
		cfg.Serve.Watch = c.Bool("watch")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
