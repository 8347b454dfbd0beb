package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/opendataio/harvester/catalog"
)

// ErrOwnerOrgRequired is returned when a transform is invoked without a
// destination owner organization. This is a caller-contract failure, not a
// data-quality problem.
var ErrOwnerOrgRequired = errors.New("owner organization is required")

// RejectedError reports that a source record failed final validation. The
// individual data-quality problems are collected in Problems.
type RejectedError struct {
	Problems []string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("dataset rejected: %s", strings.Join(e.Problems, "; "))
}

// Base carries the state shared by the source-format dataset adapters:
// the schema variant in play, the source record being transformed, the
// canonical dataset under construction and the data-quality errors
// collected along the way.
type Base struct {
	Schema   catalog.Schema
	Source   map[string]any
	Dataset  catalog.Dataset
	OwnerOrg string
	Errors   []string
	Log      *slog.Logger
}

// NewBase starts a transform: a fresh canonical skeleton for the schema,
// the source record attached, errors empty.
func NewBase(schema catalog.Schema, source map[string]any, ownerOrg string, log *slog.Logger) *Base {
	if log == nil {
		log = slog.Default()
	}
	return &Base{
		Schema:   schema,
		Source:   source,
		Dataset:  catalog.New(schema),
		OwnerOrg: ownerOrg,
		Log:      log,
	}
}

// Collect records a data-quality problem without aborting the transform.
func (b *Base) Collect(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	b.Log.Debug("data-quality problem", "problem", msg)
	b.Errors = append(b.Errors, msg)
}

// ApplyMapping walks the mapping table in order, resolving each source
// path against the source record and assigning resolved values to their
// destinations through the fixer table. Absent source fields leave their
// destinations untouched. A destination unknown to the canonical dataset
// aborts with a ConfigError.
func (b *Base) ApplyMapping(mapping Mapping, fixers FixerTable) error {
	for _, entry := range mapping {
		value, ok := Resolve(b.Source, entry.Source)
		if !ok {
			continue
		}
		if err := Assign(b.Dataset, entry.Dest, value, fixers); err != nil {
			return fmt.Errorf("apply mapping %q: %w", entry.Source, err)
		}
	}
	return nil
}

// RequireOrigin checks that the source record carries every path listed,
// collecting a problem for each one missing.
func (b *Base) RequireOrigin(paths []SourcePath) {
	for _, path := range paths {
		value, ok := Resolve(b.Source, path)
		if !ok || value == "" {
			b.Collect("%q field could not be empty at origin dataset", path.String())
		}
	}
}

// Finish prunes the dataset, validates the schema's required fields and
// settles the transform: any collected problem, including ones found
// during the transform itself, rejects the record.
func (b *Base) Finish() (catalog.Dataset, error) {
	b.Dataset = b.Dataset.Prune()
	b.Errors = append(b.Errors, b.Dataset.ValidateRequired(catalog.RequiredFields(b.Schema))...)
	if len(b.Errors) > 0 {
		return nil, &RejectedError{Problems: b.Errors}
	}
	return b.Dataset, nil
}
