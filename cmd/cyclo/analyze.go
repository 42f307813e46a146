package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/cyclomap/cyclo/internal/pipeline"
	"github.com/cyclomap/cyclo/internal/render"
)

// analyzeCommand runs one full analysis and writes the bundle.
func analyzeCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(cfg, nil)
	arrays, stats, err := p.Run(ctx)
	if err != nil {
		return err
	}

	if err := render.WriteTreemap(cfg.Output.Dir, arrays); err != nil {
		return err
	}
	if cfg.Output.Debug {
		if err := render.WriteDebug(cfg.Output.DebugFile, arrays); err != nil {
			return err
		}
	}

	fmt.Printf("analyzed %d files (%d skipped), %d nodes, mean complexity %.2f\n",
		stats.Analyzed, stats.Skipped, arrays.Len(), arrays.MeanComplexity)
	fmt.Printf("wrote %s\n", cfg.Output.Dir)
	return nil
}
