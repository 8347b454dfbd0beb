// Package source reads harvest sources: data.json catalog files fetched
// over HTTP or read from disk, plus file discovery and watching for
// local catalog directories.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// validSchemas maps known conformsTo declarations to schema versions.
// Catalogs declaring anything else are treated as legacy 1.0.
var validSchemas = map[string]string{
	"https://project-open-data.cio.gov/v1.1/schema": "1.1",
}

// catalogHeaderFields are the catalog-level keys stamped onto each dataset
// record as catalog_* fields.
var catalogHeaderFields = []string{"@context", "@id", "conformsTo", "describedBy"}

// Shape errors for malformed catalog documents.
var (
	ErrCatalogIsList      = errors.New("catalog is a plain list, expected an object")
	ErrMissingDescribedBy = errors.New(`catalog is missing the "describedBy" key`)
	ErrMissingDataset     = errors.New(`catalog is missing the "dataset" key`)
)

// Catalog is a parsed data.json catalog: the header, the dataset records
// and bookkeeping gathered while normalizing them.
type Catalog struct {
	URL           string
	SchemaVersion string
	Header        map[string]any
	Datasets      []map[string]any
	Duplicates    []string

	log *slog.Logger
}

// FetchCatalog downloads and parses a data.json catalog.
func FetchCatalog(ctx context.Context, client *http.Client, url string, log *slog.Logger) (*Catalog, error) {
	if log == nil {
		log = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	log.Info("fetching data.json catalog", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch catalog %s: HTTP %d", url, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog body: %w", err)
	}

	catalog, err := ParseCatalog(raw, log)
	if err != nil {
		return nil, err
	}
	catalog.URL = url
	return catalog, nil
}

// ReadCatalogFile parses a data.json catalog from disk.
func ReadCatalogFile(path string, log *slog.Logger) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	catalog, err := ParseCatalog(raw, log)
	if err != nil {
		return nil, err
	}
	catalog.URL = path
	return catalog, nil
}

// ParseCatalog parses and shape-checks a raw data.json document. The
// document must be an object carrying describedBy and a dataset list.
func ParseCatalog(raw []byte, log *slog.Logger) (*Catalog, error) {
	if log == nil {
		log = slog.Default()
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog JSON: %w", err)
	}

	header, ok := doc.(map[string]any)
	if !ok {
		if _, isList := doc.([]any); isList {
			return nil, ErrCatalogIsList
		}
		return nil, fmt.Errorf("catalog has unexpected shape %T", doc)
	}
	if described, _ := header["describedBy"].(string); described == "" {
		return nil, ErrMissingDescribedBy
	}
	rawDatasets, ok := header["dataset"].([]any)
	if !ok {
		return nil, ErrMissingDataset
	}

	conformsTo, _ := header["conformsTo"].(string)
	version, known := validSchemas[conformsTo]
	if !known {
		version = "1.0"
		log.Warn("unknown catalog schema, treating as legacy", "conformsTo", conformsTo)
	}

	datasets := make([]map[string]any, 0, len(rawDatasets))
	for _, raw := range rawDatasets {
		if ds, ok := raw.(map[string]any); ok {
			datasets = append(datasets, ds)
		}
	}

	headerOnly := make(map[string]any, len(header))
	for k, v := range header {
		if k != "dataset" {
			headerOnly[k] = v
		}
	}
	headerOnly["schema_version"] = version

	return &Catalog{
		SchemaVersion: version,
		Header:        headerOnly,
		Datasets:      datasets,
		log:           log,
	}, nil
}

// CatalogExtras returns the catalog-level fields each dataset inherits,
// keyed catalog_@context, catalog_@id, catalog_conformsTo and
// catalog_describedBy.
func (c *Catalog) CatalogExtras() map[string]any {
	extras := map[string]any{}
	for _, field := range catalogHeaderFields {
		if value, ok := c.Header[field]; ok {
			extras["catalog_"+field] = value
		}
	}
	return extras
}

// StampDatasets copies the catalog extras and the schema version onto
// every dataset record so the dataset adapter can map them.
func (c *Catalog) StampDatasets() {
	extras := c.CatalogExtras()
	for _, ds := range c.Datasets {
		for k, v := range extras {
			ds[k] = v
		}
		ds["source_schema_version"] = c.SchemaVersion
	}
}

// DetectCollections marks collection membership: datasets declaring
// isPartOf get an empty collection_pkg_id placeholder resolved at publish
// time, and every dataset referenced as a parent is marked is_collection.
func (c *Catalog) DetectCollections() {
	parents := map[string]bool{}
	for _, ds := range c.Datasets {
		if parent, ok := ds["isPartOf"].(string); ok && parent != "" {
			ds["collection_pkg_id"] = ""
			parents[parent] = true
		}
	}
	for _, ds := range c.Datasets {
		if identifier, ok := ds["identifier"].(string); ok && parents[identifier] {
			ds["is_collection"] = true
		}
	}
}

// RemoveDuplicateIdentifiers drops datasets whose identifier was already
// seen, keeping the first occurrence. The dropped identifiers accumulate
// in Duplicates.
func (c *Catalog) RemoveDuplicateIdentifiers() []string {
	seen := map[string]bool{}
	kept := make([]map[string]any, 0, len(c.Datasets))
	for _, ds := range c.Datasets {
		identifier, _ := ds["identifier"].(string)
		if seen[identifier] {
			c.Duplicates = append(c.Duplicates, identifier)
			continue
		}
		seen[identifier] = true
		kept = append(kept, ds)
	}
	c.Datasets = kept
	return c.Duplicates
}

// CountResources totals the distribution entries across all datasets.
func (c *Catalog) CountResources() int {
	total := 0
	for _, ds := range c.Datasets {
		if distribution, ok := ds["distribution"].([]any); ok {
			total += len(distribution)
		}
	}
	return total
}
