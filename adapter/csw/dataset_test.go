package csw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendataio/harvester/adapter"
	"github.com/opendataio/harvester/catalog"
)

func cswRecord() map[string]any {
	return map[string]any{
		"title":    "CSW dataset",
		"abstract": "Some notes about this dataset. Bla, bla, bla",
		"tags":     []any{"Electrity", "Nuclear energy", "Investment"},

		"spatial-reference-system": "EPSG:27700",
		"guid":                     "unique ID 971897198",
		"dataset-reference-date": []any{
			map[string]any{"type": "publication", "value": "2010-12-01T12:00:00Z"},
		},
		"metadata-language":         "en",
		"metadata-date":             "2019-02-02",
		"coupled-resource":          "coup res",
		"contact-email":             "some@email.com",
		"frequency-of-update":       "WEEKLY",
		"spatial-data-service-type": "other",
		"use-constraints":           []any{"CC-BY", "http://licence.com"},
		"browse-graphic": []any{
			map[string]any{"file": "some", "description": "some descr", "type": "some type"},
		},
		"temporal-extent-begin": []any{"teb1", "teb2"},
		"temporal-extent-end":   []any{"tee1", "tee2"},
		"responsible-organisation": []any{
			map[string]any{"organisation-name": "GSA", "role": "admin"},
			map[string]any{"organisation-name": "GSA", "role": "admin2"},
			map[string]any{"organisation-name": "NASA", "role": "moon"},
		},
		"bbox": []any{
			map[string]any{"east": -61.9, "north": -33.1, "west": 34.3, "south": 51.8},
		},
	}
}

func TestTransformCSWRecord(t *testing.T) {
	a := &DatasetAdapter{Schema: catalog.SchemaDefault, OwnerOrg: "org-1"}

	ds, err := a.Transform(cswRecord())
	require.NoError(t, err)

	assert.Equal(t, "org-1", ds["owner_org"])
	assert.Equal(t, "Some notes about this dataset. Bla, bla, bla", ds["notes"])
	assert.Equal(t, "csw-dataset", ds["name"])
	assert.Len(t, ds["tags"], 3)

	assert.Equal(t, "EPSG:27700", ds.GetExtra("spatial-reference-system"))
	assert.Equal(t, "unique ID 971897198", ds.GetExtra("guid"))
	assert.Equal(t, "other", ds.GetExtra("spatial-data-service-type"))
	assert.Equal(t, "WEEKLY", ds.GetExtra("frequency-of-update"))
	assert.Equal(t, "some@email.com", ds.GetExtra("contact-email"))
	assert.Equal(t, "coup res", ds.GetExtra("coupled-resource"))
	assert.Equal(t, "2019-02-02", ds.GetExtra("metadata-date"))
	assert.Equal(t, "en", ds.GetExtra("metadata-language"))
	assert.Equal(t, "2010-12-01T12:00:00Z", ds.GetExtra("dataset-reference-date"))

	assert.Equal(t, "[CC-BY http://licence.com]", ds.GetExtra("licence"))
	assert.Equal(t, "http://licence.com", ds.GetExtra("licence_url"))

	assert.Equal(t, "some", ds.GetExtra("graphic-preview-file"))
	assert.Equal(t, "some descr", ds.GetExtra("graphic-preview-description"))
	assert.Equal(t, "some type", ds.GetExtra("graphic-preview-type"))

	assert.Equal(t, "teb1", ds.GetExtra("temporal-extent-begin"))
	assert.Equal(t, "tee1", ds.GetExtra("temporal-extent-end"))

	assert.Equal(t, "GSA (admin, admin2); NASA (moon)", ds.GetExtra("responsible-party"))

	assert.Equal(t,
		`{"type": "Polygon", "coordinates": [[[34.3, 51.8], [-61.9, 51.8], [-61.9, -33.1], [34.3, -33.1], [34.3, 51.8]]]}`,
		ds.GetExtra("spatial"))
	assert.Equal(t, -61.9, ds.GetExtra("bbox-east-long"))
	assert.Equal(t, 34.3, ds.GetExtra("bbox-west-long"))
}

func TestTransformRequiresOwnerOrg(t *testing.T) {
	a := &DatasetAdapter{Schema: catalog.SchemaDefault}

	_, err := a.Transform(cswRecord())

	assert.ErrorIs(t, err, adapter.ErrOwnerOrgRequired)
}

func TestTransformPointExtent(t *testing.T) {
	source := cswRecord()
	source["bbox"] = []any{
		map[string]any{"east": 10.5, "west": 10.5, "north": 20.25, "south": -4.75},
	}
	a := &DatasetAdapter{Schema: catalog.SchemaDefault, OwnerOrg: "org-1"}

	ds, err := a.Transform(source)
	require.NoError(t, err)

	assert.Equal(t, `{"type": "Point", "coordinates": [10.5, -4.75]}`, ds.GetExtra("spatial"))
}

func TestTransformBadBBoxStoresEdgesOnly(t *testing.T) {
	source := cswRecord()
	source["bbox"] = []any{
		map[string]any{"east": "not-a-number", "north": -33.1, "west": 34.3, "south": 51.8},
	}
	a := &DatasetAdapter{Schema: catalog.SchemaDefault, OwnerOrg: "org-1"}

	ds, err := a.Transform(source)
	require.NoError(t, err)

	assert.Equal(t, "not-a-number", ds.GetExtra("bbox-east-long"))
	assert.Nil(t, ds.GetExtra("spatial"))
}

func TestTransformUSMetadataDefaults(t *testing.T) {
	source := cswRecord()
	source["contact"] = "John Doe"
	a := &DatasetAdapter{Schema: catalog.SchemaUSMetadata, OwnerOrg: "org-1"}

	ds, err := a.Transform(source)
	require.NoError(t, err)

	assert.Equal(t, "public", ds["public_access_level"])
	assert.Equal(t, "John Doe", ds["contact_name"])
	assert.Equal(t, "000:00", ds["bureau_code"])
	assert.Equal(t, "000:000", ds["program_code"])
	assert.Equal(t, "no data", ds["publisher"])
	assert.Equal(t, "unknown", ds["accrual_periodicity"], "irregular default folds to unknown")
	assert.Equal(t, "unique ID 971897198", ds["unique_id"])
	assert.Equal(t, "2019-02-02", ds["modified"])
	assert.Equal(t, "some@email.com", ds["contact_email"])
}

func TestTransformAccrualPeriodicityReverse(t *testing.T) {
	source := cswRecord()
	source["contact"] = "John Doe"
	source["accrualPeriodicity"] = "R/P1Y"
	a := &DatasetAdapter{Schema: catalog.SchemaUSMetadata, OwnerOrg: "org-1"}

	ds, err := a.Transform(source)
	require.NoError(t, err)

	assert.Equal(t, "annually", ds["accrual_periodicity"])
}

func TestTransformProgressTakesFirst(t *testing.T) {
	source := cswRecord()
	source["progress"] = []any{"completed", "onGoing"}
	a := &DatasetAdapter{Schema: catalog.SchemaDefault, OwnerOrg: "org-1"}

	ds, err := a.Transform(source)
	require.NoError(t, err)

	assert.Equal(t, "completed", ds.GetExtra("progress"))
}

func TestTransformNoTagsFallback(t *testing.T) {
	source := cswRecord()
	delete(source, "tags")
	a := &DatasetAdapter{Schema: catalog.SchemaDefault, OwnerOrg: "org-1"}

	ds, err := a.Transform(source)
	require.NoError(t, err)

	assert.Equal(t, "no tags", ds["tag_string"])
}
