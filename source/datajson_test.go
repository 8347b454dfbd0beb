package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `{
	"@context": "https://openei.org/data.json",
	"@id": "https://openei.org/data.json",
	"@type": "dcat:Catalog",
	"conformsTo": "https://project-open-data.cio.gov/v1.1/schema",
	"describedBy": "https://project-open-data.cio.gov/v1.1/schema/catalog.json",
	"dataset": [
		{"identifier": "ds-1", "title": "First", "distribution": [{"downloadURL": "http://a"}, {"downloadURL": "http://b"}]},
		{"identifier": "ds-2", "title": "Second", "isPartOf": "ds-1"},
		{"identifier": "ds-2", "title": "Second again"},
		{"identifier": "ds-3", "title": "Third", "distribution": [{"downloadURL": "http://c"}]}
	]
}`

func TestParseCatalog(t *testing.T) {
	catalog, err := ParseCatalog([]byte(sampleCatalog), nil)
	require.NoError(t, err)

	assert.Equal(t, "1.1", catalog.SchemaVersion)
	assert.Len(t, catalog.Datasets, 4)
	assert.Equal(t, "1.1", catalog.Header["schema_version"])
	_, hasDatasets := catalog.Header["dataset"]
	assert.False(t, hasDatasets, "header excludes the dataset list")
}

func TestParseCatalogShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"plain list", `[{"identifier": "x"}]`, ErrCatalogIsList},
		{"missing describedBy", `{"dataset": []}`, ErrMissingDescribedBy},
		{"missing dataset", `{"describedBy": "http://schema"}`, ErrMissingDataset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.raw), nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseCatalogUnknownSchema(t *testing.T) {
	raw := `{"describedBy": "http://schema", "conformsTo": "http://something-else", "dataset": []}`

	catalog, err := ParseCatalog([]byte(raw), nil)
	require.NoError(t, err)

	assert.Equal(t, "1.0", catalog.SchemaVersion, "unknown schema treated as legacy")
}

func TestCatalogExtras(t *testing.T) {
	catalog, err := ParseCatalog([]byte(sampleCatalog), nil)
	require.NoError(t, err)

	extras := catalog.CatalogExtras()
	assert.Equal(t, "https://openei.org/data.json", extras["catalog_@id"])
	assert.Equal(t, "https://project-open-data.cio.gov/v1.1/schema", extras["catalog_conformsTo"])
	_, hasType := extras["catalog_@type"]
	assert.False(t, hasType, "only the contract header fields are stamped")
}

func TestStampDatasets(t *testing.T) {
	catalog, err := ParseCatalog([]byte(sampleCatalog), nil)
	require.NoError(t, err)

	catalog.StampDatasets()

	for _, ds := range catalog.Datasets {
		assert.Equal(t, "https://openei.org/data.json", ds["catalog_@id"])
		assert.Equal(t, "1.1", ds["source_schema_version"])
	}
}

func TestDetectCollections(t *testing.T) {
	catalog, err := ParseCatalog([]byte(sampleCatalog), nil)
	require.NoError(t, err)

	catalog.DetectCollections()

	assert.Equal(t, true, catalog.Datasets[0]["is_collection"], "referenced parent marked")
	assert.Equal(t, "", catalog.Datasets[1]["collection_pkg_id"], "child gets a placeholder")
	_, marked := catalog.Datasets[3]["is_collection"]
	assert.False(t, marked)
}

func TestRemoveDuplicateIdentifiers(t *testing.T) {
	catalog, err := ParseCatalog([]byte(sampleCatalog), nil)
	require.NoError(t, err)

	duplicates := catalog.RemoveDuplicateIdentifiers()

	assert.Equal(t, []string{"ds-2"}, duplicates)
	require.Len(t, catalog.Datasets, 3)
	assert.Equal(t, "Second", catalog.Datasets[1]["title"], "first occurrence kept")
}

func TestCountResources(t *testing.T) {
	catalog, err := ParseCatalog([]byte(sampleCatalog), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, catalog.CountResources())
}

func TestFetchCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleCatalog))
	}))
	defer server.Close()

	catalog, err := FetchCatalog(context.Background(), server.Client(), server.URL, nil)
	require.NoError(t, err)

	assert.Equal(t, server.URL, catalog.URL)
	assert.Len(t, catalog.Datasets, 4)
}

func TestFetchCatalogHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := FetchCatalog(context.Background(), server.Client(), server.URL, nil)

	assert.ErrorContains(t, err, "HTTP 404")
}
