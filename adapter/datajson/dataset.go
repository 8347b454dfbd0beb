package datajson

import (
	"log/slog"
	"strings"

	"github.com/opendataio/harvester/adapter"
	"github.com/opendataio/harvester/catalog"
)

// DatasetAdapter transforms one data.json dataset record into a canonical
// dataset.
type DatasetAdapter struct {
	Schema   catalog.Schema
	OwnerOrg string
	Log      *slog.Logger
}

// Transform maps, fixes and validates a source record. When existing is
// non-nil the transformed resources are merged against it so prior
// resource ids survive the update. Records failing final validation come
// back as a RejectedError listing every problem found.
func (a *DatasetAdapter) Transform(source map[string]any, existing []catalog.Resource) (catalog.Dataset, error) {
	if a.OwnerOrg == "" {
		return nil, adapter.ErrOwnerOrgRequired
	}

	adapter.ApplyDefaults(source, sourceDefaults(a.Schema))

	base := adapter.NewBase(a.Schema, source, a.OwnerOrg, a.Log)
	base.Log.Info("transforming data.json dataset", "identifier", source["identifier"])

	base.RequireOrigin(originRequired(a.Schema))
	if len(base.Errors) > 0 {
		return nil, &adapter.RejectedError{Problems: base.Errors}
	}

	tags := catalog.BuildTags(toStringSlice(source["keyword"]))
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	base.Dataset["tag_string"] = strings.Join(names, ",")

	if err := base.ApplyMapping(datasetMapping(a.Schema), datasetFixers()); err != nil {
		return nil, err
	}

	base.Dataset["resources"] = a.transformResources(base, existing)

	base.Dataset.SetExtra("source_datajson_identifier", true)

	if name, _ := base.Dataset["name"].(string); name == "" {
		title, _ := base.Dataset["title"].(string)
		base.Dataset["name"] = catalog.GenerateName(title)
	}
	base.Dataset["owner_org"] = a.OwnerOrg

	if license, _ := source["license"].(string); license != "" {
		base.Dataset["license_id"] = adapter.LicenseID(license)
	}

	a.setPublisher(base, source)

	ds, err := base.Finish()
	if err != nil {
		return nil, err
	}
	base.Log.Info("dataset transformed", "identifier", source["identifier"], "name", ds["name"])
	return ds, nil
}

// transformResources converts the distribution list, inferring one from
// accessURL/webService when absent. Distributions that fail to transform
// are excluded and recorded as dataset problems.
func (a *DatasetAdapter) transformResources(base *adapter.Base, existing []catalog.Resource) []catalog.Resource {
	distribution := distributionList(base.Source)
	if len(distribution) == 0 {
		distribution = inferDistribution(base.Source)
	}

	resources := make([]catalog.Resource, 0, len(distribution))
	for i, original := range distribution {
		res, err := TransformResource(original)
		if err != nil {
			base.Collect("distribution %d: %v", i+1, err)
			continue
		}
		resources = append(resources, res)
	}

	if existing != nil {
		resources = catalog.MergeResources(existing, resources)
	}
	return resources
}

func distributionList(source map[string]any) []map[string]any {
	switch dist := source["distribution"].(type) {
	case []any:
		list := make([]map[string]any, 0, len(dist))
		for _, item := range dist {
			if m, ok := item.(map[string]any); ok {
				list = append(list, m)
			}
		}
		return list
	case map[string]any:
		return []map[string]any{dist}
	}
	return nil
}

// inferDistribution builds a distribution from top-level accessURL or
// webService URLs, a pre-1.1 layout some sources still publish.
func inferDistribution(source map[string]any) []map[string]any {
	var distribution []map[string]any
	for _, field := range []string{"accessURL", "webService"} {
		url, _ := source[field].(string)
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		format, _ := source["format"].(string)
		distribution = append(distribution, map[string]any{
			field: url, "format": format, "mimetype": format,
		})
	}
	return distribution
}

// setPublisher stores the publisher name as an extra, plus the full
// organizational chain joined oldest-first when parent organizations are
// declared through subOrganizationOf.
func (a *DatasetAdapter) setPublisher(base *adapter.Base, source map[string]any) {
	publisher, ok := source["publisher"].(map[string]any)
	if !ok {
		return
	}
	name, _ := publisher["name"].(string)
	base.Dataset.SetExtra("publisher", name)

	parent, ok := publisher["subOrganizationOf"].(map[string]any)
	if !ok {
		return
	}
	hierarchy := []string{name}
	for parent != nil {
		parentName, _ := parent["name"].(string)
		hierarchy = append(hierarchy, parentName)
		parent, _ = parent["subOrganizationOf"].(map[string]any)
	}
	for i, j := 0, len(hierarchy)-1; i < j; i, j = i+1, j-1 {
		hierarchy[i], hierarchy[j] = hierarchy[j], hierarchy[i]
	}
	base.Dataset.SetExtra("publisher_hierarchy", strings.Join(hierarchy, " > "))
}
