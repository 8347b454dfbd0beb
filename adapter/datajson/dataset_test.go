package datajson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendataio/harvester/adapter"
	"github.com/opendataio/harvester/catalog"
)

func marketNewsDataset() map[string]any {
	return map[string]any{
		"identifier":  "USDA-26521",
		"accessLevel": "",
		"contactPoint": map[string]any{
			"hasEmail": "mailto:Fred.Teensma@ams.usda.gov",
			"@type":    "vcard:Contact",
			"fn":       "Fred Teensma",
		},
		"programCode": []any{"005:047"},
		"description": "Some notes ...",
		"title":       "Fruit and Vegetable Market News Search",
		"distribution": []any{
			map[string]any{
				"@type":       "dcat:Distribution",
				"downloadURL": "http://marketnews.usda.gov/",
				"mediaType":   "text/html",
				"title":       "Web Page",
			},
			map[string]any{
				"@type":           "dcat:Distribution",
				"downloadURL":     "http://www.usda.gov/digitalstrategy/costsavings.json",
				"describedBy":     "https://management.cio.gov/schemaexamples/costSavingsAvoidanceSchema.json",
				"mediaType":       "application/json",
				"conformsTo":      "https://management.cio.gov/schema/",
				"describedByType": "application/json",
			},
		},
		"license":    "https://creativecommons.org/licenses/by/4.0",
		"bureauCode": []any{"005:45"},
		"modified":   "2014-12-23",
		"publisher": map[string]any{
			"@type": "org:Organization",
			"name":  "Agricultural Marketing Service",
		},
		"keyword": []any{"FOB", "wholesale market"},
	}
}

func TestTransformDefaultSchema(t *testing.T) {
	a := &DatasetAdapter{Schema: catalog.SchemaDefault, OwnerOrg: "org-1"}

	ds, err := a.Transform(marketNewsDataset(), nil)
	require.NoError(t, err)

	assert.Equal(t, "org-1", ds["owner_org"])
	assert.Equal(t, "Some notes ...", ds["notes"])
	assert.Equal(t, "fruit-and-vegetable-market-news-search", ds["name"])
	assert.Equal(t, "Fred Teensma", ds["maintainer"])
	assert.Equal(t, "Fred.Teensma@ams.usda.gov", ds["maintainer_email"])
	assert.Equal(t, "cc-by", ds["license_id"])
	assert.Equal(t, "fob,wholesale-market", ds["tag_string"])
	assert.Equal(t, []catalog.Tag{{Name: "fob"}, {Name: "wholesale-market"}}, ds["tags"])

	assert.Equal(t, "005:45", ds.GetExtra("bureauCode"))
	assert.Equal(t, "005:047", ds.GetExtra("programCode"))
	assert.Equal(t, "USDA-26521", ds.GetExtra("identifier"))
	assert.Equal(t, "Agricultural Marketing Service", ds.GetExtra("publisher"))
	assert.Equal(t, true, ds.GetExtra("source_datajson_identifier"))
	assert.Nil(t, ds.GetExtra("publisher_hierarchy"))

	resources := ds["resources"].([]catalog.Resource)
	require.Len(t, resources, 2)
	assert.Equal(t, catalog.Resource{
		"url":         "http://marketnews.usda.gov/",
		"description": "",
		"format":      "text/html",
		"name":        "Web Page",
		"mimetype":    "text/html",
	}, resources[0])
}

func TestTransformPublisherHierarchy(t *testing.T) {
	source := marketNewsDataset()
	source["publisher"].(map[string]any)["subOrganizationOf"] = map[string]any{
		"@type": "org:Organization",
		"name":  "Department of Agriculture",
		"subOrganizationOf": map[string]any{
			"@type": "org:Organization",
			"name":  "USA GOV",
		},
	}
	a := &DatasetAdapter{Schema: catalog.SchemaDefault, OwnerOrg: "org-1"}

	ds, err := a.Transform(source, nil)
	require.NoError(t, err)

	assert.Equal(t, "Agricultural Marketing Service", ds.GetExtra("publisher"))
	assert.Equal(t, "USA GOV > Department of Agriculture > Agricultural Marketing Service",
		ds.GetExtra("publisher_hierarchy"))
}

func TestTransformUSMetadata(t *testing.T) {
	a := &DatasetAdapter{Schema: catalog.SchemaUSMetadata, OwnerOrg: "org-1"}

	ds, err := a.Transform(marketNewsDataset(), nil)
	require.NoError(t, err)

	assert.Equal(t, "public", ds["public_access_level"], "empty accessLevel backfilled")
	assert.Equal(t, "Fred.Teensma@ams.usda.gov", ds["contact_email"])
	assert.Equal(t, "Fred Teensma", ds["contact_name"])
	assert.Equal(t, "005:45", ds["bureau_code"])
	assert.Equal(t, "005:047", ds["program_code"])
	assert.Equal(t, "USDA-26521", ds["unique_id"])
	assert.Equal(t, "Agricultural Marketing Service", ds["publisher"])
	assert.Equal(t, "2014-12-23", ds["modified"])
	_, hasMaintainer := ds["maintainer"]
	assert.False(t, hasMaintainer)
}

func TestTransformRequiresOwnerOrg(t *testing.T) {
	a := &DatasetAdapter{Schema: catalog.SchemaDefault}

	_, err := a.Transform(marketNewsDataset(), nil)

	assert.ErrorIs(t, err, adapter.ErrOwnerOrgRequired)
}

func TestTransformRejectsMissingOriginFields(t *testing.T) {
	source := marketNewsDataset()
	delete(source, "keyword")
	a := &DatasetAdapter{Schema: catalog.SchemaUSMetadata, OwnerOrg: "org-1"}

	_, err := a.Transform(source, nil)

	var rejected *adapter.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Contains(t, rejected.Problems, `"keyword" field could not be empty at origin dataset`)
}

func TestTransformMergesExistingResources(t *testing.T) {
	existing := []catalog.Resource{{"url": "http://marketnews.usda.gov/", "id": "1"}}
	a := &DatasetAdapter{Schema: catalog.SchemaDefault, OwnerOrg: "org-1"}

	ds, err := a.Transform(marketNewsDataset(), existing)
	require.NoError(t, err)

	resources := ds["resources"].([]catalog.Resource)
	require.Len(t, resources, 2)
	assert.Equal(t, "1", resources[0]["id"])
}

func TestTransformRejectsBadDistribution(t *testing.T) {
	source := marketNewsDataset()
	source["distribution"] = []any{
		map[string]any{"title": "no urls here"},
	}
	a := &DatasetAdapter{Schema: catalog.SchemaDefault, OwnerOrg: "org-1"}

	_, err := a.Transform(source, nil)

	var rejected *adapter.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Contains(t, rejected.Problems[0], "distribution 1")
}

func TestTransformInfersResources(t *testing.T) {
	source := marketNewsDataset()
	delete(source, "distribution")
	source["accessURL"] = "http://marketnews.usda.gov/data"
	source["format"] = "text/csv"
	a := &DatasetAdapter{Schema: catalog.SchemaDefault, OwnerOrg: "org-1"}

	ds, err := a.Transform(source, nil)
	require.NoError(t, err)

	resources := ds["resources"].([]catalog.Resource)
	require.Len(t, resources, 1)
	assert.Equal(t, "http://marketnews.usda.gov/data", resources[0]["url"])
	assert.Equal(t, "text/csv", resources[0]["format"])
}

func TestTransformCollectionExtras(t *testing.T) {
	source := marketNewsDataset()
	source["is_collection"] = true
	source["collection_pkg_id"] = "parent-pkg"
	source["harvest_source_id"] = "hs-1"
	a := &DatasetAdapter{Schema: catalog.SchemaDefault, OwnerOrg: "org-1"}

	ds, err := a.Transform(source, nil)
	require.NoError(t, err)

	assert.Equal(t, true, ds.GetExtra("is_collection"))
	assert.Equal(t, "parent-pkg", ds.GetExtra("collection_package_id"))
	assert.Equal(t, "hs-1", ds.GetExtra("harvest_source_id"))
}

func TestTransformCatalogExtras(t *testing.T) {
	source := marketNewsDataset()
	source["catalog_@context"] = "https://project-open-data.cio.gov/v1.1/schema/catalog.jsonld"
	source["catalog_@id"] = "https://healthdata.gov/data.json"
	source["catalog_conformsTo"] = "https://project-open-data.cio.gov/v1.1/schema"
	source["catalog_describedBy"] = "https://project-open-data.cio.gov/v1.1/schema/catalog.json"
	a := &DatasetAdapter{Schema: catalog.SchemaDefault, OwnerOrg: "org-1"}

	ds, err := a.Transform(source, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://healthdata.gov/data.json", ds.GetExtra("catalog_@id"))
	assert.Equal(t, "https://project-open-data.cio.gov/v1.1/schema", ds.GetExtra("catalog_conformsTo"))
}
