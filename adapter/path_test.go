package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendataio/harvester/catalog"
)

func TestResolve(t *testing.T) {
	record := map[string]any{
		"title": "Market News",
		"contactPoint": map[string]any{
			"fn":       "Fred",
			"hasEmail": "mailto:fred@example.gov",
		},
		"rights": nil,
	}

	tests := []struct {
		name  string
		path  SourcePath
		want  any
		found bool
	}{
		{"top level", Src("title"), "Market News", true},
		{"nested", Src("contactPoint", "fn"), "Fred", true},
		{"missing top level", Src("keyword"), nil, false},
		{"missing nested", Src("contactPoint", "phone"), nil, false},
		{"segment through scalar", Src("title", "oops"), nil, false},
		{"explicit null", Src("rights"), nil, false},
		{"empty path", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(record, tt.path)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDestPathString(t *testing.T) {
	assert.Equal(t, "maintainer", Dest("maintainer").String())
	assert.Equal(t, "extras__bureauCode", Extra("bureauCode").String())
	assert.True(t, Extra("modified").IsExtra())
	assert.False(t, Dest("modified").IsExtra())
}

func TestAssign(t *testing.T) {
	ds := catalog.New(catalog.SchemaDefault)

	require.NoError(t, Assign(ds, Dest("title"), "Market News", nil))
	assert.Equal(t, "Market News", ds["title"])

	require.NoError(t, Assign(ds, Extra("identifier"), "USDA-26521", nil))
	require.NoError(t, Assign(ds, Extra("identifier"), "USDA-26522", nil))
	assert.Equal(t, "USDA-26522", ds.GetExtra("identifier"))

	err := Assign(ds, Dest("no_such_attr"), "x", nil)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "no_such_attr", cfgErr.Dest)
}

func TestAssignRunsFixer(t *testing.T) {
	ds := catalog.New(catalog.SchemaDefault)
	fixers := FixerTable{
		"maintainer_email": func(_ string, v any) any {
			return "fixed:" + v.(string)
		},
	}

	require.NoError(t, Assign(ds, Dest("maintainer_email"), "a@b.gov", fixers))
	assert.Equal(t, "fixed:a@b.gov", ds["maintainer_email"])

	require.NoError(t, Assign(ds, Dest("maintainer"), "Fred", fixers))
	assert.Equal(t, "Fred", ds["maintainer"], "fields without a fixer pass through")
}

func TestApplyDefaults(t *testing.T) {
	record := map[string]any{
		"accessLevel": "",
		"publisher":   "GSA",
	}

	ApplyDefaults(record, map[string]any{
		"accessLevel": "public",
		"publisher":   "no data",
		"dataQuality": false,
	})

	assert.Equal(t, "public", record["accessLevel"], "empty string gets the default")
	assert.Equal(t, "GSA", record["publisher"], "present values never overwritten")
	assert.Equal(t, false, record["dataQuality"], "absent fields get the default")
}
