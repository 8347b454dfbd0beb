// Package datajson transforms data.json (Project Open Data) catalog records
// into canonical datasets and resources, and validates source records
// against the POD 1.1 metadata rules.
package datajson

import (
	"strings"

	"github.com/opendataio/harvester/adapter"
	"github.com/opendataio/harvester/catalog"
)

// datasetMapping returns the ordered field mapping for a schema variant.
func datasetMapping(schema catalog.Schema) adapter.Mapping {
	mapping := adapter.Mapping{
		{Source: adapter.Src("name"), Dest: adapter.Dest("name")},
		{Source: adapter.Src("title"), Dest: adapter.Dest("title")},
		{Source: adapter.Src("description"), Dest: adapter.Dest("notes")},
		{Source: adapter.Src("keyword"), Dest: adapter.Dest("tags")},
		{Source: adapter.Src("modified"), Dest: adapter.Extra("modified")},
		{Source: adapter.Src("contactPoint", "fn"), Dest: adapter.Dest("maintainer")},
		{Source: adapter.Src("contactPoint", "hasEmail"), Dest: adapter.Dest("maintainer_email")},
		{Source: adapter.Src("identifier"), Dest: adapter.Extra("identifier")},
		{Source: adapter.Src("accessLevel"), Dest: adapter.Extra("accessLevel")},
		{Source: adapter.Src("bureauCode"), Dest: adapter.Extra("bureauCode")},
		{Source: adapter.Src("programCode"), Dest: adapter.Extra("programCode")},
		{Source: adapter.Src("rights"), Dest: adapter.Extra("rights")},
		{Source: adapter.Src("license"), Dest: adapter.Extra("license")},
		{Source: adapter.Src("spatial"), Dest: adapter.Extra("spatial")},
		{Source: adapter.Src("temporal"), Dest: adapter.Extra("temporal")},
		{Source: adapter.Src("theme"), Dest: adapter.Extra("theme")},
		{Source: adapter.Src("dataDictionary"), Dest: adapter.Extra("dataDictionary")},
		{Source: adapter.Src("dataQuality"), Dest: adapter.Extra("dataQuality")},
		{Source: adapter.Src("accrualPeriodicity"), Dest: adapter.Extra("accrualPeriodicity")},
		{Source: adapter.Src("landingPage"), Dest: adapter.Extra("landingPage")},
		{Source: adapter.Src("language"), Dest: adapter.Extra("language")},
		{Source: adapter.Src("primaryITInvestmentUII"), Dest: adapter.Extra("primaryITInvestmentUII")},
		{Source: adapter.Src("references"), Dest: adapter.Extra("references")},
		{Source: adapter.Src("issued"), Dest: adapter.Extra("issued")},
		{Source: adapter.Src("systemOfRecords"), Dest: adapter.Extra("systemOfRecords")},

		{Source: adapter.Src("harvest_ng_source_title"), Dest: adapter.Extra("harvest_source_title")},
		{Source: adapter.Src("harvest_ng_source_id"), Dest: adapter.Extra("harvest_source_id")},
		{Source: adapter.Src("harvest_source_title"), Dest: adapter.Extra("harvest_source_title")},
		{Source: adapter.Src("harvest_source_id"), Dest: adapter.Extra("harvest_source_id")},
		{Source: adapter.Src("source_schema_version"), Dest: adapter.Extra("source_schema_version")},
		{Source: adapter.Src("source_hash"), Dest: adapter.Extra("source_hash")},

		{Source: adapter.Src("catalog_@context"), Dest: adapter.Extra("catalog_@context")},
		{Source: adapter.Src("catalog_@id"), Dest: adapter.Extra("catalog_@id")},
		{Source: adapter.Src("catalog_conformsTo"), Dest: adapter.Extra("catalog_conformsTo")},
		{Source: adapter.Src("catalog_describedBy"), Dest: adapter.Extra("catalog_describedBy")},

		{Source: adapter.Src("is_collection"), Dest: adapter.Extra("is_collection")},
		{Source: adapter.Src("collection_pkg_id"), Dest: adapter.Extra("collection_package_id")},
	}

	if schema == catalog.SchemaUSMetadata {
		overrides := map[string]adapter.DestPath{
			"modified":               adapter.Dest("modified"),
			"contactPoint__fn":       adapter.Dest("contact_name"),
			"contactPoint__hasEmail": adapter.Dest("contact_email"),
			"identifier":             adapter.Dest("unique_id"),
			"accessLevel":            adapter.Dest("public_access_level"),
			"bureauCode":             adapter.Dest("bureau_code"),
			"programCode":            adapter.Dest("program_code"),
			"spatial":                adapter.Dest("spatial"),
			"temporal":               adapter.Dest("temporal"),
			"dataDictionary":         adapter.Dest("data_dictionary"),
			"dataQuality":            adapter.Dest("data_quality"),
			"accrualPeriodicity":     adapter.Dest("accrual_periodicity"),
			"landingPage":            adapter.Dest("homepage_url"),
			"language":               adapter.Dest("language"),
			"primaryITInvestmentUII": adapter.Dest("primary_it_investment_uii"),
			"systemOfRecords":        adapter.Dest("system_of_records"),
		}
		for i, entry := range mapping {
			if dest, ok := overrides[entry.Source.String()]; ok {
				mapping[i].Dest = dest
			}
		}
		mapping = append(mapping, adapter.MappingEntry{
			Source: adapter.Src("publisher", "name"),
			Dest:   adapter.Dest("publisher"),
		})
	}

	return mapping
}

// sourceDefaults lists source-record values backfilled before mapping.
func sourceDefaults(schema catalog.Schema) map[string]any {
	if schema == catalog.SchemaUSMetadata {
		return map[string]any{"accessLevel": "public"}
	}
	return nil
}

// originRequired lists source paths that must be present and non-empty.
func originRequired(schema catalog.Schema) []adapter.SourcePath {
	if schema != catalog.SchemaUSMetadata {
		return nil
	}
	return []adapter.SourcePath{
		adapter.Src("accessLevel"),
		adapter.Src("identifier"),
		adapter.Src("contactPoint", "fn"),
		adapter.Src("programCode"),
		adapter.Src("bureauCode"),
		adapter.Src("contactPoint", "hasEmail"),
		adapter.Src("publisher"),
		adapter.Src("modified"),
		adapter.Src("keyword"),
	}
}

func datasetFixers() adapter.FixerTable {
	stripMailto := func(_ string, value any) any {
		if s, ok := value.(string); ok {
			return strings.TrimPrefix(s, "mailto:")
		}
		return value
	}
	joinList := func(_ string, value any) any {
		if items, ok := value.([]any); ok {
			parts := make([]string, 0, len(items))
			for _, item := range items {
				if s, ok := item.(string); ok {
					parts = append(parts, s)
				}
			}
			return strings.Join(parts, ",")
		}
		return value
	}

	return adapter.FixerTable{
		"tags": func(_ string, value any) any {
			return catalog.BuildTags(toStringSlice(value))
		},
		"contact_email":       stripMailto,
		"maintainer_email":    stripMailto,
		"extras__bureauCode":  joinList,
		"extras__programCode": joinList,
		"bureau_code":         joinList,
		"program_code":        joinList,
		"accrual_periodicity": func(_ string, value any) any {
			if s, ok := value.(string); ok {
				return adapter.AccrualTerm(s)
			}
			return value
		},
	}
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
