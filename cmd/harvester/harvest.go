package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/opendataio/harvester/catalog"
	"github.com/opendataio/harvester/ckan"
	"github.com/opendataio/harvester/config"
	"github.com/opendataio/harvester/pipeline"
	"github.com/opendataio/harvester/source"
)

func harvestCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "harvest [source...]",
		Short: "Harvest configured sources into the target catalog",
		Long: `Harvest fetches each configured source catalog, transforms its
records and publishes them to the target CKAN instance. With no
arguments every configured source runs; otherwise only the named ones.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			sources, err := selectSources(cfg, args)
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				return fmt.Errorf("no sources configured")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			p, closeEvents, err := buildPipeline(cfg)
			if err != nil {
				return err
			}
			defer closeEvents()

			for _, src := range sources {
				result, err := runSource(ctx, p, src)
				if err != nil {
					return fmt.Errorf("harvest %s: %w", src.Name, err)
				}
				printResult(result)
			}
			return nil
		},
	}
}

// selectSources resolves the named sources, or all of them with no names.
func selectSources(cfg *config.Config, names []string) ([]config.Source, error) {
	if len(names) == 0 {
		return cfg.Sources, nil
	}
	sources := make([]config.Source, 0, len(names))
	for _, name := range names {
		src, err := cfg.FindSource(name)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// buildPipeline wires the CKAN client and the optional event publisher.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, func(), error) {
	client := ckan.New(cfg.CKAN.URL, cfg.CKAN.APIKey, slog.Default())
	if cfg.CKAN.Timeout > 0 {
		client.SetHTTPClient(httpClientWithTimeout(cfg.CKAN.Timeout))
	}

	closeEvents := func() {}
	var events *pipeline.Publisher
	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name(appName))
		if err != nil {
			return nil, nil, fmt.Errorf("connect to NATS at %s: %w", cfg.NATS.URL, err)
		}
		events = pipeline.NewPublisher(nc, slog.Default())
		closeEvents = nc.Close
	}

	return pipeline.New(client, events, slog.Default()), closeEvents, nil
}

// runSource executes one harvest run for a configured source.
func runSource(ctx context.Context, p *pipeline.Pipeline, src config.Source) (*pipeline.Result, error) {
	cfg := pipeline.SourceConfig{
		Name:     src.Name,
		Schema:   schemaFor(src.Schema),
		OwnerOrg: src.OwnerOrg,
		Validate: src.Validate,
	}

	switch src.Type {
	case config.SourceTypeDataJSON:
		cat, err := readCatalog(ctx, src.URL)
		if err != nil {
			return nil, err
		}
		return p.HarvestDataJSON(ctx, cat, cfg)
	case config.SourceTypeCSW:
		records, err := readCSWRecords(src.URL)
		if err != nil {
			return nil, err
		}
		return p.HarvestCSW(ctx, records, cfg)
	}
	return nil, fmt.Errorf("unknown source type %q", src.Type)
}

// readCatalog fetches a data.json catalog over HTTP, or reads it from disk
// for local paths.
func readCatalog(ctx context.Context, url string) (*source.Catalog, error) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return source.FetchCatalog(ctx, nil, url, slog.Default())
	}
	return source.ReadCatalogFile(url, slog.Default())
}

// readCSWRecords reads a file holding a JSON list of parsed CSW record
// trees, the shape an upstream ISO parser emits.
func readCSWRecords(path string) ([]map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read CSW records: %w", err)
	}
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse CSW records: %w", err)
	}
	return records, nil
}

func httpClientWithTimeout(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func schemaFor(name string) catalog.Schema {
	if name == string(catalog.SchemaUSMetadata) {
		return catalog.SchemaUSMetadata
	}
	return catalog.SchemaDefault
}

func printResult(result *pipeline.Result) {
	fmt.Printf("%s: %d harvested, %d created, %d updated, %d rejected (%s)\n",
		result.Source, result.Harvested, result.Created, result.Updated,
		result.Rejected, result.Duration.Round(time.Millisecond))
	for _, problem := range result.Problems {
		fmt.Printf("  - %s\n", problem)
	}
}
