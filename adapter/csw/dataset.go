// Package csw transforms CSW (Catalogue Service for the Web) ISO metadata
// records into canonical datasets and resources.
package csw

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/opendataio/harvester/adapter"
	"github.com/opendataio/harvester/catalog"
)

// DatasetAdapter transforms one CSW record into a canonical dataset.
// Unlike the data.json adapter, a record that fails final validation is a
// hard error: CSW sources are curated and a bad record means a broken
// harvest, not routine dirty data.
type DatasetAdapter struct {
	Schema   catalog.Schema
	OwnerOrg string
	Log      *slog.Logger
}

func datasetMapping(schema catalog.Schema) adapter.Mapping {
	mapping := adapter.Mapping{
		{Source: adapter.Src("name"), Dest: adapter.Dest("name")},
		{Source: adapter.Src("title"), Dest: adapter.Dest("title")},
		{Source: adapter.Src("tags"), Dest: adapter.Dest("tags")},
		{Source: adapter.Src("abstract"), Dest: adapter.Dest("notes")},
		{Source: adapter.Src("progress"), Dest: adapter.Extra("progress")},
		{Source: adapter.Src("resource-type"), Dest: adapter.Extra("resource-type")},

		{Source: adapter.Src("spatial-reference-system"), Dest: adapter.Extra("spatial-reference-system")},
		{Source: adapter.Src("guid"), Dest: adapter.Extra("guid")},
		{Source: adapter.Src("dataset-reference-date"), Dest: adapter.Extra("dataset-reference-date")},
		{Source: adapter.Src("metadata-language"), Dest: adapter.Extra("metadata-language")},
		{Source: adapter.Src("metadata-date"), Dest: adapter.Extra("metadata-date")},
		{Source: adapter.Src("coupled-resource"), Dest: adapter.Extra("coupled-resource")},
		{Source: adapter.Src("contact-email"), Dest: adapter.Extra("contact-email")},
		{Source: adapter.Src("frequency-of-update"), Dest: adapter.Extra("frequency-of-update")},
		{Source: adapter.Src("spatial-data-service-type"), Dest: adapter.Extra("spatial-data-service-type")},

		{Source: adapter.Src("limitations-on-public-access"), Dest: adapter.Extra("access_constraints")},
		{Source: adapter.Src("harvest_ng_source_title"), Dest: adapter.Extra("harvest_source_title")},
		{Source: adapter.Src("harvest_ng_source_id"), Dest: adapter.Extra("harvest_source_id")},
		{Source: adapter.Src("harvest_source_title"), Dest: adapter.Extra("harvest_source_title")},
		{Source: adapter.Src("harvest_source_id"), Dest: adapter.Extra("harvest_source_id")},
		{Source: adapter.Src("source_hash"), Dest: adapter.Extra("source_hash")},

		{Source: adapter.Src("use-constraints"), Dest: adapter.Extra("licence")},
	}

	if schema == catalog.SchemaUSMetadata {
		overrides := map[string]adapter.DestPath{
			"metadata-date": adapter.Dest("modified"),
			"guid":          adapter.Dest("unique_id"),
			"contact-email": adapter.Dest("contact_email"),
		}
		for i, entry := range mapping {
			if dest, ok := overrides[entry.Source.String()]; ok {
				mapping[i].Dest = dest
			}
		}
		mapping = append(mapping,
			adapter.MappingEntry{Source: adapter.Src("accessLevel"), Dest: adapter.Dest("public_access_level")},
			adapter.MappingEntry{Source: adapter.Src("publisher"), Dest: adapter.Dest("publisher")},
			adapter.MappingEntry{Source: adapter.Src("contact"), Dest: adapter.Dest("contact_name")},
			adapter.MappingEntry{Source: adapter.Src("url"), Dest: adapter.Dest("homepage_url")},
			adapter.MappingEntry{Source: adapter.Src("language"), Dest: adapter.Dest("language")},
			adapter.MappingEntry{Source: adapter.Src("bureauCode"), Dest: adapter.Dest("bureau_code")},
			adapter.MappingEntry{Source: adapter.Src("programCode"), Dest: adapter.Dest("program_code")},
			adapter.MappingEntry{Source: adapter.Src("spatial"), Dest: adapter.Dest("spatial")},
			adapter.MappingEntry{Source: adapter.Src("temporal"), Dest: adapter.Dest("temporal")},
			adapter.MappingEntry{Source: adapter.Src("dataDictionary"), Dest: adapter.Dest("data_dictionary")},
			adapter.MappingEntry{Source: adapter.Src("dataQuality"), Dest: adapter.Dest("data_quality")},
			adapter.MappingEntry{Source: adapter.Src("accrualPeriodicity"), Dest: adapter.Dest("accrual_periodicity")},
			adapter.MappingEntry{Source: adapter.Src("primaryITInvestmentUII"), Dest: adapter.Dest("primary_it_investment_uii")},
			adapter.MappingEntry{Source: adapter.Src("systemOfRecords"), Dest: adapter.Dest("system_of_records")},
		)
	}

	return mapping
}

// sourceDefaults backfills the US metadata attributes a bare CSW record
// cannot provide.
func sourceDefaults(schema catalog.Schema) map[string]any {
	if schema != catalog.SchemaUSMetadata {
		return nil
	}
	return map[string]any{
		"accessLevel":            "public",
		"bureauCode":             "000:00",
		"programCode":            "000:000",
		"spatial":                `{"type": "Point", "coordinates": [0.0, 0.0]}`,
		"dataDictionary":         "http://missing.data.dictionary.com",
		"dataQuality":            "false",
		"accrualPeriodicity":     "irregular",
		"primaryITInvestmentUII": "000-000000000",
		"publisher":              "no data",
		"tags":                   []any{"no tags"},
	}
}

func datasetFixers() adapter.FixerTable {
	firstOfList := func(_ string, value any) any {
		if items, ok := value.([]any); ok {
			if len(items) > 0 {
				return items[0]
			}
			return ""
		}
		return value
	}
	stringifyList := func(_ string, value any) any {
		if items, ok := value.([]any); ok {
			return fmt.Sprintf("%v", items)
		}
		return value
	}

	return adapter.FixerTable{
		"tags": func(_ string, value any) any {
			return catalog.BuildTags(toStringSlice(value))
		},
		"extras__progress":      firstOfList,
		"extras__resource-type": firstOfList,
		"accrual_periodicity": func(_ string, value any) any {
			normalized := adapter.NormalizeFrequency(value)
			if normalized == "unknown" {
				return "unknown"
			}
			if s, ok := normalized.(string); ok {
				return adapter.AccrualTerm(s)
			}
			return normalized
		},
		"extras__dataset-reference-date": func(_ string, value any) any {
			items, ok := value.([]any)
			if !ok {
				return value
			}
			if len(items) == 0 {
				return nil
			}
			if first, ok := items[0].(map[string]any); ok {
				return first["value"]
			}
			return nil
		},
		"extras__access_constraints": stringifyList,
		"extras__coupled-resource":   stringifyList,
	}
}

// Transform maps, fixes and validates a CSW record. All failures are hard:
// a missing owner organization, a mapping misconfiguration and a record
// failing final validation all return errors.
func (a *DatasetAdapter) Transform(source map[string]any) (catalog.Dataset, error) {
	if a.OwnerOrg == "" {
		return nil, adapter.ErrOwnerOrgRequired
	}

	adapter.ApplyDefaults(source, sourceDefaults(a.Schema))

	base := adapter.NewBase(a.Schema, source, a.OwnerOrg, a.Log)
	base.Log.Info("transforming CSW dataset", "guid", source["guid"])

	tags := toStringSlice(source["tags"])
	if len(tags) == 0 {
		tags = []string{"no tags"}
	}
	base.Dataset["tag_string"] = strings.Join(tags, ",")

	if err := base.ApplyMapping(datasetMapping(a.Schema), datasetFixers()); err != nil {
		return nil, err
	}

	base.Dataset["resources"] = a.transformResources(base, source)

	a.fixLicenceURL(base)
	a.setBrowseGraphic(base, source)
	a.setTemporalExtent(base, source)
	a.setResponsibleParty(base, source)
	a.setBBox(base, source)

	if name, _ := base.Dataset["name"].(string); name == "" {
		title, _ := base.Dataset["title"].(string)
		base.Dataset["name"] = catalog.GenerateName(title)
	}
	base.Dataset["owner_org"] = a.OwnerOrg

	ds, err := base.Finish()
	if err != nil {
		return nil, fmt.Errorf("validate final dataset: %w", err)
	}
	base.Log.Info("dataset transformed", "guid", source["guid"], "name", ds["name"])
	return ds, nil
}

// transformResources converts the record's service endpoints. Locators
// without a usable URL fail individually and are skipped.
func (a *DatasetAdapter) transformResources(base *adapter.Base, source map[string]any) []catalog.Resource {
	locators := inferLocators(source)
	resources := make([]catalog.Resource, 0, len(locators))
	for _, loc := range locators {
		res, err := TransformResource(loc)
		if err != nil {
			base.Log.Warn("skipping resource locator", "err", err)
			continue
		}
		resources = append(resources, res)
	}
	return resources
}

// fixLicenceURL splits the use-constraints list: entries that parse as
// absolute URLs become the licence_url extra (last wins), and the whole
// list is stringified into the licence extra.
func (a *DatasetAdapter) fixLicenceURL(base *adapter.Base) {
	licences, ok := base.Dataset.GetExtra("licence").([]any)
	if !ok {
		return
	}
	for _, raw := range licences {
		licence, ok := raw.(string)
		if !ok {
			continue
		}
		if u, err := url.Parse(licence); err == nil && u.Scheme != "" && u.Host != "" {
			base.Dataset.SetExtra("licence_url", licence)
		}
	}
	base.Dataset.SetExtra("licence", fmt.Sprintf("%v", licences))
}

func (a *DatasetAdapter) setBrowseGraphic(base *adapter.Base, source map[string]any) {
	graphics, ok := source["browse-graphic"].([]any)
	if !ok || len(graphics) == 0 {
		return
	}
	graphic, ok := graphics[0].(map[string]any)
	if !ok {
		return
	}
	for extra, key := range map[string]string{
		"graphic-preview-file":        "file",
		"graphic-preview-description": "description",
		"graphic-preview-type":        "type",
	} {
		if value, ok := graphic[key]; ok && value != nil {
			base.Dataset.SetExtra(extra, value)
		}
	}
}

func (a *DatasetAdapter) setTemporalExtent(base *adapter.Base, source map[string]any) {
	for _, key := range []string{"temporal-extent-begin", "temporal-extent-end"} {
		if items, ok := source[key].([]any); ok && len(items) > 0 {
			base.Dataset.SetExtra(key, items[0])
		}
	}
}

// setResponsibleParty aggregates the responsible organisations into a
// single extra: roles grouped per organisation in first-seen order,
// rendered "GSA (admin, admin2); NASA (moon)".
func (a *DatasetAdapter) setResponsibleParty(base *adapter.Base, source map[string]any) {
	organisations, ok := source["responsible-organisation"].([]any)
	if !ok {
		return
	}

	var order []string
	roles := map[string][]string{}
	for _, raw := range organisations {
		party, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := party["organisation-name"].(string)
		role, _ := party["role"].(string)
		if _, seen := roles[name]; !seen {
			order = append(order, name)
		}
		duplicate := false
		for _, existing := range roles[name] {
			if existing == role {
				duplicate = true
				break
			}
		}
		if !duplicate {
			roles[name] = append(roles[name], role)
		}
	}

	parts := make([]string, len(order))
	for i, name := range order {
		parts[i] = fmt.Sprintf("%s (%s)", name, strings.Join(roles[name], ", "))
	}
	base.Dataset.SetExtra("responsible-party", strings.Join(parts, "; "))
}

// setBBox stores the record's bounding box edges and, when the corners
// parse as numbers, a GeoJSON extent: a Point when the box is degenerate,
// a closed five-vertex Polygon ring otherwise.
func (a *DatasetAdapter) setBBox(base *adapter.Base, source map[string]any) {
	boxes, ok := source["bbox"].([]any)
	if !ok || len(boxes) == 0 {
		return
	}
	bbox, ok := boxes[0].(map[string]any)
	if !ok {
		return
	}

	base.Dataset.SetExtra("bbox-east-long", bbox["east"])
	base.Dataset.SetExtra("bbox-north-lat", bbox["north"])
	base.Dataset.SetExtra("bbox-south-lat", bbox["south"])
	base.Dataset.SetExtra("bbox-west-long", bbox["west"])

	xmin, okW := toFloat(bbox["west"])
	xmax, okE := toFloat(bbox["east"])
	ymin, okS := toFloat(bbox["south"])
	ymax, okN := toFloat(bbox["north"])
	if !okW || !okE || !okS || !okN {
		return
	}

	var extent string
	if xmin == xmax || ymin == ymax {
		extent = fmt.Sprintf(`{"type": "Point", "coordinates": [%s, %s]}`,
			formatCoord(xmin), formatCoord(ymin))
	} else {
		sxmin, sxmax := formatCoord(xmin), formatCoord(xmax)
		symin, symax := formatCoord(ymin), formatCoord(ymax)
		extent = fmt.Sprintf(
			`{"type": "Polygon", "coordinates": [[[%s, %s], [%s, %s], [%s, %s], [%s, %s], [%s, %s]]]}`,
			sxmin, symin, sxmax, symin, sxmax, symax, sxmin, symax, sxmin, symin)
	}
	base.Dataset.SetExtra("spatial", extent)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func toStringSlice(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{v}
	}
	return nil
}
