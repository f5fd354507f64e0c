package address

import (
	"fmt"
	"sort"

	"storefront/internal/model"
)

// Dataset is a full snapshot of the address tree, one slice per level.
type Dataset struct {
	Cities    []model.AddressNode
	Districts []model.AddressNode
	Wards     []model.AddressNode
}

// Size returns the total number of nodes.
func (d *Dataset) Size() int {
	return len(d.Cities) + len(d.Districts) + len(d.Wards)
}

// Validate checks codes are unique per level and every district and ward
// references an existing parent one level up. All offending codes are
// reported together.
func (d *Dataset) Validate() error {
	var fields []string
	var ids []int64

	cities, dup := index(d.Cities)
	if len(dup) > 0 {
		fields = append(fields, "cities: duplicate code")
		ids = append(ids, dup...)
	}
	districts, dup := index(d.Districts)
	if len(dup) > 0 {
		fields = append(fields, "districts: duplicate code")
		ids = append(ids, dup...)
	}
	if _, dup = index(d.Wards); len(dup) > 0 {
		fields = append(fields, "wards: duplicate code")
		ids = append(ids, dup...)
	}

	if orphans := orphaned(d.Districts, cities); len(orphans) > 0 {
		fields = append(fields, "districts: unknown parent city")
		ids = append(ids, orphans...)
	}
	if orphans := orphaned(d.Wards, districts); len(orphans) > 0 {
		fields = append(fields, "wards: unknown parent district")
		ids = append(ids, orphans...)
	}

	if len(fields) == 0 {
		return nil
	}
	return &model.ValidationError{
		Code:    model.ErrCodeDatasetInconsistency,
		Message: fmt.Sprintf("address dataset is inconsistent (%d nodes checked)", d.Size()),
		Fields:  fields,
		IDs:     ids,
	}
}

func index(nodes []model.AddressNode) (map[int]struct{}, []int64) {
	seen := make(map[int]struct{}, len(nodes))
	var dup []int64
	for _, n := range nodes {
		if _, ok := seen[n.Code]; ok {
			dup = append(dup, int64(n.Code))
			continue
		}
		seen[n.Code] = struct{}{}
	}
	sortIDs(dup)
	return seen, dup
}

func orphaned(nodes []model.AddressNode, parents map[int]struct{}) []int64 {
	var out []int64
	for _, n := range nodes {
		if n.ParentCode == nil {
			out = append(out, int64(n.Code))
			continue
		}
		if _, ok := parents[*n.ParentCode]; !ok {
			out = append(out, int64(n.Code))
		}
	}
	sortIDs(out)
	return out
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
