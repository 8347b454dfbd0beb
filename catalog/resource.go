package catalog

// Resource is a canonical resource record. Like Dataset it is map-shaped:
// source adapters fill what they know and nil fields are pruned before
// output.
type Resource map[string]any

// NewResource returns the base resource skeleton per the target catalog's
// resource-creation contract.
func NewResource() Resource {
	return Resource{
		"package_id":         nil,
		"url":                nil,
		"revision_id":        nil,
		"description":        nil,
		"format":             nil,
		"hash":               nil,
		"name":               nil,
		"resource_type":      nil,
		"mimetype":           nil,
		"mimetype_inner":     nil,
		"cache_url":          nil,
		"size":               nil,
		"created":            nil,
		"last_modified":      nil,
		"cache_last_updated": nil,
	}
}

// Prune returns a copy of the resource without nil fields.
func (r Resource) Prune() Resource {
	pruned := make(Resource, len(r))
	for k, v := range r {
		if v == nil {
			continue
		}
		pruned[k] = v
	}
	return pruned
}

// URL returns the resource URL, empty when unset.
func (r Resource) URL() string {
	u, _ := r["url"].(string)
	return u
}

// MergeResources reconciles freshly transformed resources against the
// previously persisted list. Identity is the exact resource URL: on a match
// the prior opaque id is carried onto the fresh resource, every other field
// comes from the fresh harvest. Resources present only in existing are
// dropped.
func MergeResources(existing, fresh []Resource) []Resource {
	merged := make([]Resource, 0, len(fresh))
	for _, res := range fresh {
		for _, prior := range existing {
			if res.URL() == prior.URL() {
				res["id"] = prior["id"]
			}
		}
		merged = append(merged, res)
	}
	return merged
}
