package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/cyclomap/cyclo/internal/pipeline"
	"github.com/cyclomap/cyclo/internal/render"
	"github.com/cyclomap/cyclo/internal/server"
)

// serveCommand serves the rendered bundle. With --watch it re-analyzes the
// tree whenever it changes; otherwise it serves whatever analyze last
// wrote.
func serveCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rebuild := func() {
		p := pipeline.New(cfg, nil)
		arrays, stats, err := p.Run(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cyclo: analysis failed: %v\n", err)
			return
		}
		if err := render.WriteTreemap(cfg.Output.Dir, arrays); err != nil {
			fmt.Fprintf(os.Stderr, "cyclo: render failed: %v\n", err)
			return
		}
		fmt.Printf("re-analyzed %d files (%d skipped), %d nodes\n",
			stats.Analyzed, stats.Skipped, arrays.Len())
	}

	if cfg.Serve.Watch {
		// A watch run always starts from a fresh analysis so the served
		// bundle matches the tree on disk.
		rebuild()

		watcher, err := server.NewTreeWatcher(cfg.Project.Root, cfg.Output.Dir, cfg.Serve.WatchDebounceMs, rebuild)
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer watcher.Close()
	}

	if _, err := os.Stat(cfg.Output.Dir); err != nil {
		return fmt.Errorf("bundle directory %s does not exist, run analyze first", cfg.Output.Dir)
	}

	srv := server.NewStaticServer(cfg.Output.Dir)
	if err := srv.Start(cfg.Serve.Port); err != nil {
		return err
	}
	fmt.Printf("serving %s at http://%s/\n", cfg.Output.Dir, srv.Addr())

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
