package catalog

import (
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

var tagJunkPattern = regexp.MustCompile(`[^A-Za-z0-9\s_!?-]+`)

// BuildTags converts raw keywords into tag records: each keyword is
// trimmed, empties are dropped, the rest are truncated to the tag length
// limit and slugged. Order is preserved.
func BuildTags(keywords []string) []Tag {
	tags := make([]Tag, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if len(kw) > MaxTagNameLength {
			kw = kw[:MaxTagNameLength]
		}
		tags = append(tags, Tag{Name: slug.Make(kw)})
	}
	return tags
}

// CleanTags strips characters the catalog rejects from raw tag strings,
// keeping letters, digits, whitespace, underscores, hyphens and !?.
func CleanTags(tags []string) []string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		cleaned = append(cleaned, strings.TrimSpace(tagJunkPattern.ReplaceAllString(tag, "")))
	}
	return cleaned
}
