package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSkeleton(t *testing.T) {
	ds := New(SchemaDefault)

	assert.Equal(t, "active", ds["state"])
	assert.Equal(t, false, ds["private"])
	assert.Equal(t, []Extra{{Key: "resource-type", Value: "Dataset"}}, ds.Extras())
	_, hasMaintainer := ds["maintainer"]
	assert.True(t, hasMaintainer)

	us := New(SchemaUSMetadata)
	_, hasMaintainer = us["maintainer"]
	assert.False(t, hasMaintainer)
	_, hasContact := us["contact_name"]
	assert.True(t, hasContact)
	_, hasTagString := us["tag_string"]
	assert.True(t, hasTagString)
}

func TestSetExtraKeepsKeysUnique(t *testing.T) {
	ds := New(SchemaDefault)

	ds.SetExtra("modified", "2014-12-23")
	ds.SetExtra("identifier", "USDA-26521")
	ds.SetExtra("modified", "2020-01-01")

	keys := map[string]int{}
	for _, extra := range ds.Extras() {
		keys[extra.Key]++
	}
	for key, count := range keys {
		assert.Equal(t, 1, count, "duplicated extras key %q", key)
	}
	assert.Equal(t, "2020-01-01", ds.GetExtra("modified"))
	assert.Nil(t, ds.GetExtra("missing"))
}

func TestPrune(t *testing.T) {
	ds := New(SchemaDefault)
	ds["notes"] = "kept"
	ds["tags"] = []Tag{}

	pruned := ds.Prune()

	_, hasAuthor := pruned["author"]
	assert.False(t, hasAuthor)
	assert.Equal(t, "kept", pruned["notes"])
	assert.Equal(t, []Tag{}, pruned["tags"], "empty lists survive pruning")
	assert.Equal(t, "", pruned["name"], "empty strings survive pruning")
}

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name string
		ds   Dataset
		want []string
	}{
		{
			name: "complete",
			ds:   Dataset{"name": "x", "private": false},
			want: nil,
		},
		{
			name: "missing key",
			ds:   Dataset{"private": false},
			want: []string{`"name" is a required field`},
		},
		{
			name: "empty value",
			ds:   Dataset{"name": "", "private": false},
			want: []string{`"name" field could not be empty`},
		},
		{
			name: "nil value",
			ds:   Dataset{"name": nil, "private": false},
			want: []string{`"name" field could not be empty`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ds.ValidateRequired([]string{"name", "private"}))
		})
	}
}

func TestGenerateName(t *testing.T) {
	assert.Equal(t, "fruit-and-vegetable-market-news-search",
		GenerateName("Fruit and Vegetable Market News Search"))

	long := GenerateName(strings.Repeat("very long title ", 20))
	require.LessOrEqual(t, len(long), MaxNameLength-5)
	assert.NotEmpty(t, long)
}
