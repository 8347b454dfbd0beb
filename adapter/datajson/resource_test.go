package datajson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendataio/harvester/catalog"
)

func TestTransformResource(t *testing.T) {
	res, err := TransformResource(map[string]any{
		"@type":       "dcat:Distribution",
		"downloadURL": "http://marketnews.usda.gov/",
		"mediaType":   "text/html",
		"title":       "Web Page",
	})

	require.NoError(t, err)
	assert.Equal(t, catalog.Resource{
		"url":         "http://marketnews.usda.gov/",
		"description": "",
		"format":      "text/html",
		"name":        "Web Page",
		"mimetype":    "text/html",
	}, res)
}

func TestTransformResourceFormatWinsOverMediaType(t *testing.T) {
	res, err := TransformResource(map[string]any{
		"downloadURL": "http://example.gov/data.csv",
		"format":      "CSV",
		"mediaType":   "text/csv",
	})

	require.NoError(t, err)
	assert.Equal(t, "CSV", res["format"])
	assert.Equal(t, "text/csv", res["mimetype"])
}

func TestTransformResourceAccessURLFallback(t *testing.T) {
	res, err := TransformResource(map[string]any{
		"accessURL": "  http://example.gov/api  ",
	})

	require.NoError(t, err)
	assert.Equal(t, "http://example.gov/api", res["url"])
	_, hasAccessURL := res["accessURL"]
	assert.False(t, hasAccessURL, "access URL only kept separately when both URLs present")
}

func TestTransformResourceKeepsBothURLs(t *testing.T) {
	res, err := TransformResource(map[string]any{
		"downloadURL": "http://example.gov/data.csv",
		"accessURL":   "http://example.gov/api",
	})

	require.NoError(t, err)
	assert.Equal(t, "http://example.gov/data.csv", res["url"])
	assert.Equal(t, "http://example.gov/api", res["accessURL"])
}

func TestTransformResourceRequiresURL(t *testing.T) {
	_, err := TransformResource(map[string]any{"title": "nothing to fetch"})

	assert.ErrorIs(t, err, errNoResourceURL)
}
