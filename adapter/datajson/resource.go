package datajson

import (
	"errors"
	"strings"

	"github.com/opendataio/harvester/catalog"
)

// errNoResourceURL rejects a distribution entry that carries neither URL.
var errNoResourceURL = errors.New(`need "downloadURL" or "accessURL" to conform a final url`)

// TransformResource converts a data.json distribution entry into a
// canonical resource. The URL comes from downloadURL, falling back to
// accessURL; when both are present the access URL is kept as a separate
// field.
func TransformResource(original map[string]any) (catalog.Resource, error) {
	downloadURL := strings.TrimSpace(stringField(original, "downloadURL"))
	accessURL := strings.TrimSpace(stringField(original, "accessURL"))
	url := downloadURL
	if url == "" {
		url = accessURL
	}
	if url == "" {
		return nil, errNoResourceURL
	}

	res := catalog.NewResource()
	format := stringField(original, "format")
	if format == "" {
		format = stringField(original, "mediaType")
	}
	res["url"] = url
	res["format"] = format
	res["mimetype"] = stringField(original, "mediaType")
	res["description"] = stringField(original, "description")
	res["name"] = original["title"]

	for _, key := range []string{"conformsTo", "describedBy", "describedByType"} {
		if value := stringField(original, key); value != "" {
			res[key] = value
		}
	}

	if downloadURL != "" && accessURL != "" {
		res["accessURL"] = accessURL
	}

	return res.Prune(), nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
