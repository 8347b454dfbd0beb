package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/opendataio/harvester/adapter"
	"github.com/opendataio/harvester/adapter/csw"
	"github.com/opendataio/harvester/adapter/datajson"
	"github.com/opendataio/harvester/catalog"
	"github.com/opendataio/harvester/source"
)

// Store is the subset of the target-catalog client the pipeline needs.
type Store interface {
	CreatePackage(ctx context.Context, ds catalog.Dataset) (catalog.Dataset, error)
	UpdatePackage(ctx context.Context, ds catalog.Dataset) (catalog.Dataset, error)
	ShowPackage(ctx context.Context, id string) (catalog.Dataset, error)
}

// SourceConfig describes one harvest source run.
type SourceConfig struct {
	// Name identifies the source in logs, metrics and events.
	Name string

	// Schema selects the canonical layout of the target catalog.
	Schema catalog.Schema

	// OwnerOrg is the destination organization id.
	OwnerOrg string

	// Validate runs the metadata rules before transforming and rejects
	// records with missing or invalid required fields.
	Validate bool
}

// Result summarizes one harvest run.
type Result struct {
	RunID     string
	Source    string
	Harvested int
	Created   int
	Updated   int
	Rejected  int
	Problems  []string
	Duration  time.Duration
}

// Pipeline runs harvests against one target catalog.
type Pipeline struct {
	Store     Store
	Events    *Publisher
	Validator *datajson.Validator
	Log       *slog.Logger
}

// New builds a pipeline. events may be nil.
func New(store Store, events *Publisher, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		Store:     store,
		Events:    events,
		Validator: &datajson.Validator{},
		Log:       log,
	}
}

// HarvestDataJSON runs one data.json catalog through transformation and
// publishing. Per-record failures are collected into the result; only
// infrastructure failures abort the run.
func (p *Pipeline) HarvestDataJSON(ctx context.Context, cat *source.Catalog, cfg SourceConfig) (*Result, error) {
	started := time.Now()
	result := &Result{
		RunID:  uuid.NewString(),
		Source: cfg.Name,
	}
	log := p.Log.With("run_id", result.RunID, "source", cfg.Name)
	log.Info("harvest run started", "url", cat.URL, "datasets", len(cat.Datasets))

	_ = p.Events.Publish(SubjectRunStarted, Event{
		RunID: result.RunID, Source: cfg.Name, Timestamp: started,
	})

	cat.StampDatasets()
	cat.DetectCollections()
	duplicates := cat.RemoveDuplicateIdentifiers()
	if len(duplicates) > 0 {
		log.Warn("duplicated identifiers dropped", "count", len(duplicates))
	}
	result.Harvested = len(cat.Datasets)

	transformer := &datajson.DatasetAdapter{
		Schema:   cfg.Schema,
		OwnerOrg: cfg.OwnerOrg,
		Log:      log,
	}

	for _, record := range cat.Datasets {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
		p.harvestRecord(ctx, transformer, record, cfg, result, log)
	}

	result.Duration = time.Since(started)
	log.Info("harvest run completed",
		"created", result.Created,
		"updated", result.Updated,
		"rejected", result.Rejected,
		"duration", result.Duration)

	_ = p.Events.Publish(SubjectRunCompleted, Event{
		RunID: result.RunID, Source: cfg.Name, Timestamp: time.Now(),
		Detail: map[string]int{
			"created": result.Created, "updated": result.Updated, "rejected": result.Rejected,
		},
	})
	return result, nil
}

// HarvestCSW runs a batch of parsed CSW record trees through transformation
// and publishing. The records arrive already parsed from ISO XML.
func (p *Pipeline) HarvestCSW(ctx context.Context, records []map[string]any, cfg SourceConfig) (*Result, error) {
	started := time.Now()
	result := &Result{
		RunID:  uuid.NewString(),
		Source: cfg.Name,
	}
	log := p.Log.With("run_id", result.RunID, "source", cfg.Name)
	log.Info("harvest run started", "records", len(records))

	_ = p.Events.Publish(SubjectRunStarted, Event{
		RunID: result.RunID, Source: cfg.Name, Timestamp: started,
	})

	result.Harvested = len(records)
	transformer := &csw.DatasetAdapter{
		Schema:   cfg.Schema,
		OwnerOrg: cfg.OwnerOrg,
		Log:      log,
	}

	for _, record := range records {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		identifier, _ := record["guid"].(string)
		ds, err := transformer.Transform(record)
		if err != nil {
			p.reject(result, cfg, identifier, err.Error(), log)
			continue
		}
		name, _ := ds["name"].(string)
		exists := false
		if name != "" {
			if _, showErr := p.Store.ShowPackage(ctx, name); showErr == nil {
				exists = true
			}
		}
		p.publishDataset(ctx, ds, exists, cfg, result, log)
	}

	result.Duration = time.Since(started)
	log.Info("harvest run completed",
		"created", result.Created,
		"updated", result.Updated,
		"rejected", result.Rejected,
		"duration", result.Duration)

	_ = p.Events.Publish(SubjectRunCompleted, Event{
		RunID: result.RunID, Source: cfg.Name, Timestamp: time.Now(),
		Detail: map[string]int{
			"created": result.Created, "updated": result.Updated, "rejected": result.Rejected,
		},
	})
	return result, nil
}

func (p *Pipeline) harvestRecord(ctx context.Context, transformer *datajson.DatasetAdapter,
	record map[string]any, cfg SourceConfig, result *Result, log *slog.Logger) {

	identifier, _ := record["identifier"].(string)

	if cfg.Validate && p.recordInvalid(record) {
		p.reject(result, cfg, identifier, "failed metadata validation", log)
		return
	}

	existing := p.existingResources(ctx, record)

	ds, err := transformer.Transform(record, existing)
	if err != nil {
		var rejected *adapter.RejectedError
		if errors.As(err, &rejected) {
			p.reject(result, cfg, identifier, rejected.Error(), log)
			return
		}
		// owner-org and mapping problems are run-level defects, but one
		// bad record should not halt the remaining ones
		p.reject(result, cfg, identifier, err.Error(), log)
		return
	}

	p.publishDataset(ctx, ds, existing != nil, cfg, result, log)
}

// publishDataset pushes one transformed dataset to the store, updating when
// a prior copy exists.
func (p *Pipeline) publishDataset(ctx context.Context, ds catalog.Dataset, exists bool,
	cfg SourceConfig, result *Result, log *slog.Logger) {

	name, _ := ds["name"].(string)
	if exists {
		if _, err := p.Store.UpdatePackage(ctx, ds); err != nil {
			publishErrors.WithLabelValues(cfg.Name).Inc()
			result.Problems = append(result.Problems, err.Error())
			log.Error("update failed", "name", name, "err", err)
			return
		}
		datasetsUpdated.WithLabelValues(cfg.Name).Inc()
		result.Updated++
		return
	}

	if _, err := p.Store.CreatePackage(ctx, ds); err != nil {
		publishErrors.WithLabelValues(cfg.Name).Inc()
		result.Problems = append(result.Problems, err.Error())
		log.Error("create failed", "name", name, "err", err)
		return
	}
	datasetsCreated.WithLabelValues(cfg.Name).Inc()
	result.Created++
}

// recordInvalid reports whether the metadata rules found missing or
// invalid required fields. Optional-field findings never reject.
func (p *Pipeline) recordInvalid(record map[string]any) bool {
	for _, group := range p.Validator.ValidateDataset(record) {
		if group.Severity <= datajson.SeverityMissingRequired {
			return true
		}
	}
	return false
}

// existingResources looks up the previously published copy of a record so
// resource ids survive the update. A lookup miss means a fresh dataset.
func (p *Pipeline) existingResources(ctx context.Context, record map[string]any) []catalog.Resource {
	title, _ := record["title"].(string)
	if title == "" {
		return nil
	}
	prior, err := p.Store.ShowPackage(ctx, catalog.GenerateName(title))
	if err != nil {
		return nil
	}
	raw, ok := prior["resources"].([]any)
	if !ok {
		return nil
	}
	resources := make([]catalog.Resource, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			resources = append(resources, catalog.Resource(m))
		}
	}
	return resources
}

func (p *Pipeline) reject(result *Result, cfg SourceConfig, identifier, reason string, log *slog.Logger) {
	datasetsRejected.WithLabelValues(cfg.Name).Inc()
	result.Rejected++
	result.Problems = append(result.Problems, reason)
	log.Warn("dataset rejected", "identifier", identifier, "reason", reason)

	_ = p.Events.Publish(SubjectDatasetRejected, Event{
		RunID: result.RunID, Source: cfg.Name, Timestamp: time.Now(),
		Detail: map[string]string{"identifier": identifier, "reason": reason},
	})
}
