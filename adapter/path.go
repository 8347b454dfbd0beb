// Package adapter provides the field-mapping infrastructure shared by the
// source-format dataset adapters: typed source/destination paths, per-field
// value fixers, mapping tables and source-record defaults.
package adapter

import (
	"fmt"
	"strings"

	"github.com/opendataio/harvester/catalog"
)

// Separator joins path segments in the legacy string form. It survives in
// fixer keys and error messages; code addresses fields through SourcePath
// and DestPath instead.
const Separator = "__"

// SourcePath addresses a value inside a nested source record.
type SourcePath []string

// Src builds a source path from its segments.
func Src(segments ...string) SourcePath {
	return SourcePath(segments)
}

func (p SourcePath) String() string {
	return strings.Join(p, Separator)
}

// Resolve walks the source record along path. The second return value is
// false when any segment is missing or holds an explicit null: absent data
// is a normal outcome, never an error.
func Resolve(record map[string]any, path SourcePath) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	value, ok := record[path[0]]
	if !ok {
		return nil, false
	}
	for _, segment := range path[1:] {
		nested, isMap := value.(map[string]any)
		if !isMap {
			return nil, false
		}
		if value, ok = nested[segment]; !ok {
			return nil, false
		}
	}
	if value == nil {
		return nil, false
	}
	return value, true
}

// DestPath addresses a destination on the canonical dataset: either a
// direct attribute or a keyed entry in the extras bucket.
type DestPath struct {
	attr  string
	extra string
}

// Dest addresses a direct canonical attribute.
func Dest(attr string) DestPath {
	return DestPath{attr: attr}
}

// Extra addresses a keyed entry in the extras bucket.
func Extra(key string) DestPath {
	return DestPath{extra: key}
}

// IsExtra reports whether the path addresses the extras bucket.
func (d DestPath) IsExtra() bool {
	return d.extra != ""
}

// String renders the legacy form used as fixer key: the attribute name, or
// "extras__<key>" for extras entries.
func (d DestPath) String() string {
	if d.IsExtra() {
		return "extras" + Separator + d.extra
	}
	return d.attr
}

// ConfigError reports a malformed mapping table: a destination that does
// not exist on the canonical dataset. It indicates a programming defect,
// not bad input data.
type ConfigError struct {
	Dest   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("mapping misconfigured for %q: %s", e.Dest, e.Reason)
}

// Assign writes a value to the destination path, passing it through the
// fixer table first. Direct attributes must already exist on the dataset
// skeleton; extras entries are overwritten by key or appended.
func Assign(ds catalog.Dataset, dest DestPath, value any, fixers FixerTable) error {
	fixed := fixers.Fix(dest.String(), value)
	if dest.IsExtra() {
		ds.SetExtra(dest.extra, fixed)
		return nil
	}
	if _, ok := ds[dest.attr]; !ok {
		return &ConfigError{Dest: dest.attr, Reason: "no such attribute on the canonical dataset"}
	}
	ds[dest.attr] = fixed
	return nil
}

// MappingEntry connects one source path to one destination path.
type MappingEntry struct {
	Source SourcePath
	Dest   DestPath
}

// Mapping is an ordered field-mapping table. Later entries writing to the
// same destination win.
type Mapping []MappingEntry

// ApplyDefaults backfills defaults into the source record. A default is
// only applied when the field is absent or holds an empty string; present
// non-empty values are never overwritten.
func ApplyDefaults(record map[string]any, defaults map[string]any) {
	for key, value := range defaults {
		if current, ok := record[key]; !ok || current == "" {
			record[key] = value
		}
	}
}
