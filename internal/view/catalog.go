package view

import "github.com/shaibs3/studyhub/internal/db_model"

// Catalog is the resource list split into display buckets.
type Catalog struct {
	Pinned    []db_model.Resource
	Viewed    []db_model.Resource
	Available []db_model.Resource
}

// Categorize puts each resource into exactly one bucket: pinned wins over
// viewed, and everything else is available. Input order is kept within
// each bucket. Anonymous viewers pass nil id lists.
func Categorize(resources []db_model.Resource, pinnedIDs, viewedIDs []int64) Catalog {
	pinned := idSet(pinnedIDs)
	viewed := idSet(viewedIDs)

	c := Catalog{
		Pinned:    []db_model.Resource{},
		Viewed:    []db_model.Resource{},
		Available: []db_model.Resource{},
	}
	for _, r := range resources {
		switch {
		case pinned[r.ID]:
			c.Pinned = append(c.Pinned, r)
		case viewed[r.ID]:
			c.Viewed = append(c.Viewed, r)
		default:
			c.Available = append(c.Available, r)
		}
	}
	return c
}

// Counts returns the bucket sizes.
func (c Catalog) Counts() (pinned, viewed, available int) {
	return len(c.Pinned), len(c.Viewed), len(c.Available)
}

// RefIDs flattens resource references into ids.
func RefIDs(refs []db_model.ResourceRef) []int64 {
	ids := make([]int64, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ResourceID)
	}
	return ids
}

func idSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
