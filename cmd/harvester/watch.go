package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opendataio/harvester/config"
	"github.com/opendataio/harvester/pipeline"
	"github.com/opendataio/harvester/source"
)

func watchCmd(configPath *string) *cobra.Command {
	var sourceName string

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Watch a drop directory and harvest catalogs as they change",
		Long: `Watch monitors a directory for data.json catalog files. Whenever a
catalog is dropped or modified it is harvested into the target catalog
using the named source's settings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			src, err := cfg.FindSource(sourceName)
			if err != nil {
				return err
			}
			if src.Type != config.SourceTypeDataJSON {
				return fmt.Errorf("source %q: watch supports datajson sources only", src.Name)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			p, closeEvents, err := buildPipeline(cfg)
			if err != nil {
				return err
			}
			defer closeEvents()

			watcher, err := source.NewWatcher(cfg.Watch, args[0], slog.Default())
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			if err := watcher.Start(ctx); err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			defer watcher.Stop()

			for {
				select {
				case <-ctx.Done():
					return nil
				case event, ok := <-watcher.Events():
					if !ok {
						return nil
					}
					if event.Operation == source.WatchOpDelete {
						continue
					}
					harvestFile(ctx, p, src, event.AbsPath)
				}
			}
		},
	}

	cmd.Flags().StringVar(&sourceName, "source", "", "Configured source whose settings apply to dropped catalogs")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

// harvestFile runs one dropped catalog file. Failures are logged, not
// fatal, so the watch loop keeps running.
func harvestFile(ctx context.Context, p *pipeline.Pipeline, src config.Source, path string) {
	log := slog.Default().With("source", src.Name, "path", path)

	cat, err := source.ReadCatalogFile(path, log)
	if err != nil {
		log.Error("failed to read dropped catalog", "err", err)
		return
	}

	result, err := p.HarvestDataJSON(ctx, cat, pipeline.SourceConfig{
		Name:     src.Name,
		Schema:   schemaFor(src.Schema),
		OwnerOrg: src.OwnerOrg,
		Validate: src.Validate,
	})
	if err != nil {
		log.Error("harvest failed", "err", err)
		return
	}
	printResult(result)
}
