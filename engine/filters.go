package engine

// ============================================================================
// FILTERS — Dimension Equality + Measure Ranges via RecordView
// ============================================================================
// Single-pass filter: checks ALL constraints per record in one loop.
// Returns a SubView (index list into parent), zero data copy.
// ============================================================================

// ApplyFilters returns a view of records matching all filters.
// Dimension values must match exactly; values within a dimension are
// OR-combined, dimensions and ranges are AND-combined.
// Range bounds are inclusive. Empty filter = no restriction (returns original view).
func ApplyFilters(view RecordView, filters Filters) RecordView {
	if filters.IsEmpty() {
		return view
	}

	sets := make(map[string]map[string]bool)
	for dim, allowed := range filters.Dimensions {
		if len(allowed) > 0 {
			sets[dim] = toSet(allowed)
		}
	}

	if len(sets) == 0 && len(filters.Ranges) == 0 {
		return view
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if matches(view, i, sets, filters.Ranges) {
			indices = append(indices, i)
		}
	}

	return newSubView(view, indices)
}

func matches(view RecordView, i int, sets map[string]map[string]bool, ranges map[string]Range) bool {
	for measure, r := range ranges {
		if !r.Contains(view.Measure(i, measure)) {
			return false
		}
	}
	for dim, set := range sets {
		if !set[view.Dimension(i, dim)] {
			return false
		}
	}
	return true
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
