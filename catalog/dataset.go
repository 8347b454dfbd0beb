// Package catalog defines the canonical dataset and resource records the
// harvesting engine produces for the target open-data catalog, matching the
// package/resource creation contract of the CKAN API.
package catalog

import (
	"fmt"

	"github.com/gosimple/slug"
)

const (
	// MaxNameLength is the maximum length of a dataset name.
	MaxNameLength = 100
	// MaxTagNameLength is the maximum length of a tag name.
	MaxTagNameLength = 100

	// nameSuffixHeadroom is reserved at the end of generated names for
	// uniqueness suffixes added by the publishing layer.
	nameSuffixHeadroom = 5
)

// Schema selects the canonical field layout of the target catalog.
type Schema string

const (
	// SchemaDefault is the generic, extras-heavy package layout.
	SchemaDefault Schema = "default"
	// SchemaUSMetadata is the flat US government metadata layout, where
	// several extras become direct package attributes.
	SchemaUSMetadata Schema = "usmetadata"
)

// Extra is a single key/value metadata item on a dataset.
type Extra struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Tag is a dataset tag record.
type Tag struct {
	Name string `json:"name"`
}

// Dataset is a canonical dataset under construction. Attributes hold nil
// until mapped; nil attributes are dropped by Prune before output.
type Dataset map[string]any

// New returns the base dataset skeleton for a schema variant. Every
// attribute a mapping may write must exist here; writes to unknown
// attributes are configuration errors.
func New(schema Schema) Dataset {
	ds := Dataset{
		"name":                     "",
		"title":                    "",
		"owner_org":                "",
		"private":                  false,
		"author":                   nil,
		"author_email":             nil,
		"maintainer":               nil,
		"maintainer_email":         nil,
		"notes":                    nil,
		"url":                      nil,
		"version":                  nil,
		"state":                    "active",
		"type":                     nil,
		"resources":                nil,
		"tags":                     nil,
		"extras":                   []Extra{{Key: "resource-type", Value: "Dataset"}},
		"relationships_as_object":  nil,
		"relationships_as_subject": nil,
		"groups":                   nil,
	}

	if schema == SchemaUSMetadata {
		delete(ds, "maintainer")
		delete(ds, "maintainer_email")
		for _, k := range []string{
			"contact_name", "contact_email", "modified", "publisher",
			"public_access_level", "homepage_url", "unique_id", "spatial",
			"program_code", "bureau_code", "tag_string", "data_quality",
			"data_dictionary", "accrual_periodicity", "temporal",
			"system_of_records", "primary_it_investment_uii", "language",
		} {
			ds[k] = nil
		}
	}

	return ds
}

// RequiredFields returns the attributes a finished dataset must carry for
// the given schema variant.
func RequiredFields(schema Schema) []string {
	required := []string{"name", "private"}
	if schema == SchemaUSMetadata {
		required = append(required,
			"public_access_level", "unique_id", "contact_name",
			"program_code", "bureau_code", "contact_email",
			"publisher", "modified", "tag_string")
	}
	return required
}

// Extras returns the dataset's extras list, nil when unset.
func (d Dataset) Extras() []Extra {
	extras, _ := d["extras"].([]Extra)
	return extras
}

// SetExtra sets the extras entry for key, overwriting an existing entry so
// keys stay unique, appending otherwise.
func (d Dataset) SetExtra(key string, value any) {
	extras := d.Extras()
	for i := range extras {
		if extras[i].Key == key {
			extras[i].Value = value
			return
		}
	}
	d["extras"] = append(extras, Extra{Key: key, Value: value})
}

// GetExtra returns the value stored under key, nil when absent.
func (d Dataset) GetExtra(key string) any {
	for _, extra := range d.Extras() {
		if extra.Key == key {
			return extra.Value
		}
	}
	return nil
}

// Prune returns a copy of the dataset without nil attributes. Empty strings,
// empty lists and the extras bucket are kept.
func (d Dataset) Prune() Dataset {
	pruned := make(Dataset, len(d))
	for k, v := range d {
		if v == nil {
			continue
		}
		pruned[k] = v
	}
	return pruned
}

// ValidateRequired checks that every required attribute exists and is
// neither nil nor an empty string, returning one message per violation.
func (d Dataset) ValidateRequired(required []string) []string {
	var errs []string
	for _, req := range required {
		value, ok := d[req]
		switch {
		case !ok:
			errs = append(errs, fmt.Sprintf("%q is a required field", req))
		case value == nil || value == "":
			errs = append(errs, fmt.Sprintf("%q field could not be empty", req))
		}
	}
	return errs
}

// GenerateName derives a catalog-unique-friendly name from a title. The
// slug is truncated below the name limit so the publishing layer can append
// a uniqueness suffix without re-slugging.
func GenerateName(title string) string {
	name := slug.Make(title)
	cutAt := MaxNameLength - nameSuffixHeadroom
	if len(name) > cutAt {
		name = name[:cutAt]
	}
	return name
}
