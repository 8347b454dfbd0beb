package csw

import (
	"errors"
	"mime"
	"path"
	"strings"

	"github.com/opendataio/harvester/catalog"
)

// UnknownFormat is assigned when no format could be guessed for a service
// endpoint.
const UnknownFormat = "unknown format"

// errNoLocatorURL rejects a locator without a usable URL.
var errNoLocatorURL = errors.New("resource locator has no usable url")

// Locator is one service endpoint extracted from a CSW record, either a
// standalone identification locator or a locator group paired with a
// declared data format.
type Locator struct {
	// Group holds a resource-locator-group entry; nil for standalone
	// locators.
	Group map[string]any
	// DataFormat is the declared format paired with a group.
	DataFormat string
	// Single holds a resource-locator-identification entry.
	Single map[string]any
}

// inferLocators extracts the service endpoints of a record. Locator groups
// are paired with the distribution data formats: a single distributor
// format applies to all groups, a format list of matching length pairs
// positionally, anything else leaves the declared format empty.
func inferLocators(source map[string]any) []Locator {
	groups := anyList(source["resource-locator-group"])
	distributorFormat, _ := source["distributor-data-format"].(string)
	formats := toStringSlice(source["distribution-data-format"])

	universal := ""
	pairwise := false
	switch {
	case distributorFormat != "":
		universal = distributorFormat
	case len(formats) == 1:
		universal = formats[0]
	case len(formats) == 0 || len(formats) != len(groups):
	default:
		pairwise = true
	}

	locators := make([]Locator, 0, len(groups))
	for i, raw := range groups {
		group, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		format := universal
		if pairwise {
			format = formats[i]
		}
		locators = append(locators, Locator{Group: group, DataFormat: format})
	}

	for _, raw := range anyList(source["resource-locator-identification"]) {
		if single, ok := raw.(map[string]any); ok {
			locators = append(locators, Locator{Single: single})
		}
	}
	return locators
}

// TransformResource converts one locator into a canonical resource. A
// locator without a usable URL fails.
func TransformResource(loc Locator) (catalog.Resource, error) {
	if loc.Group != nil {
		return transformGroup(loc)
	}
	if loc.Single != nil {
		return transformLocatorEntry(loc.Single, "")
	}
	return nil, errNoLocatorURL
}

// transformGroup walks the group's locator entries; the last one carrying
// a URL wins, with the paired data format as format fallback.
func transformGroup(loc Locator) (catalog.Resource, error) {
	var chosen map[string]any
	for _, raw := range anyList(loc.Group["resource-locator"]) {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if url, _ := entry["url"].(string); strings.TrimSpace(url) != "" {
			chosen = entry
		}
	}
	if chosen == nil {
		return nil, errNoLocatorURL
	}
	return transformLocatorEntry(chosen, loc.DataFormat)
}

func transformLocatorEntry(entry map[string]any, formatFallback string) (catalog.Resource, error) {
	url, _ := entry["url"].(string)
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errNoLocatorURL
	}

	format := GuessResourceFormat(url)
	if format == "" {
		format = formatFallback
	}
	if format == "" {
		format = UnknownFormat
	}

	res := catalog.NewResource()
	res["url"] = url
	res["format"] = format
	res["name"] = stringOr(entry["name"], "Unnamed resource")
	res["description"] = stringOr(entry["description"], "")
	res["resource_locator_protocol"] = stringOr(entry["protocol"], "")
	res["resource_locator_function"] = stringOr(entry["function"], "")
	return res.Prune(), nil
}

func stringOr(value any, fallback string) string {
	if s, ok := value.(string); ok && s != "" {
		return s
	}
	return fallback
}

func anyList(value any) []any {
	list, _ := value.([]any)
	return list
}

// serviceFragments maps geospatial service formats to URL fragments that
// identify them. Order matters: the first matching format wins.
var serviceFragments = []struct {
	format    string
	fragments []string
}{
	{"wms", []string{"service=wms", "geoserver/wms", "mapserver/wmsserver", "com.esri.wms.esrimap", "service/wms"}},
	{"wfs", []string{"service=wfs", "geoserver/wfs", "mapserver/wfsserver", "com.esri.wfs.esrimap"}},
	{"wcs", []string{"service=wcs", "geoserver/wcs", "imageserver/wcsserver", "mapserver/wcsserver"}},
	{"sos", []string{"service=sos"}},
	{"csw", []string{"service=csw"}},
	{"kml", []string{"mapserver/generatekml"}},
	{"arcims", []string{"com.esri.esrimap.esrimap"}},
	{"arcgis_rest", []string{"arcgis/rest/services"}},
}

var fileExtensions = []string{"kml", "kmz", "gml"}

// GuessResourceFormat guesses a resource format from its URL alone: known
// geospatial service fragments first, then file extensions, then a MIME
// type from the URL path. Returns "" when nothing matches.
func GuessResourceFormat(url string) string {
	url = strings.ToLower(strings.TrimSpace(url))

	for _, service := range serviceFragments {
		for _, fragment := range service.fragments {
			if strings.Contains(url, fragment) {
				return service.format
			}
		}
	}

	for _, ext := range fileExtensions {
		if strings.HasSuffix(url, ext) {
			return ext
		}
	}

	if mimeType := mime.TypeByExtension(path.Ext(url)); mimeType != "" {
		if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
			return mediaType
		}
	}
	return ""
}
