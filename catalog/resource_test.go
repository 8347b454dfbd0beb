package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeResources(t *testing.T) {
	existing := []Resource{
		{"url": "http://a", "id": "4", "format": "CSV"},
		{"url": "http://gone", "id": "9"},
	}
	fresh := []Resource{
		{"url": "http://a", "format": "JSON"},
		{"url": "http://b"},
	}

	merged := MergeResources(existing, fresh)

	assert.Len(t, merged, 2)
	assert.Equal(t, "4", merged[0]["id"], "prior id carried onto the fresh resource")
	assert.Equal(t, "JSON", merged[0]["format"], "all other fields come from the fresh harvest")
	_, hasID := merged[1]["id"]
	assert.False(t, hasID, "unmatched fresh resource stays unmodified")

	for _, res := range merged {
		assert.NotEqual(t, "http://gone", res.URL(), "resources only present in the prior list are dropped")
	}
}

func TestResourcePrune(t *testing.T) {
	res := NewResource()
	res["url"] = "http://a"

	pruned := res.Prune()

	assert.Equal(t, Resource{"url": "http://a"}, pruned)
}
