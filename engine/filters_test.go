package engine

import (
	"testing"
)

type launch struct {
	site    string
	payload float64
}

func TestApplyFiltersExactMatch(t *testing.T) {
	view := scenarioView()

	got := ApplyFilters(view, Filters{Dimensions: map[string][]string{"site": {"a"}}})
	if got.Len() != 0 {
		t.Errorf("dimension match must be exact, got %d records for %q", got.Len(), "a")
	}

	got = ApplyFilters(view, Filters{Dimensions: map[string][]string{"site": {"A", "B"}}})
	if got.Len() != 5 {
		t.Errorf("OR within a dimension: got %d, want 5", got.Len())
	}
}

func TestApplyFiltersEmptyReturnsSameView(t *testing.T) {
	view := scenarioView()
	if got := ApplyFilters(view, Filters{}); got != view {
		t.Error("empty filters should return the original view")
	}
	if got := ApplyFilters(view, Filters{Dimensions: map[string][]string{"site": {}}}); got != view {
		t.Error("filters with no allowed values should return the original view")
	}
}

func payloadRange(r Range) Filters {
	return Filters{Ranges: map[string]Range{"payload": r}}
}

func TestApplyFiltersRangeInclusive(t *testing.T) {
	view := scenarioView()
	cases := []struct {
		r    Range
		want int
	}{
		{Range{0, 10000}, 5},
		{Range{5000, 5000}, 2},
		{Range{0, 0}, 1},
		{Range{9600, 10000}, 2},
		{Range{10001, 20000}, 0},
		{Range{5000, 4000}, 0},
	}
	for _, c := range cases {
		got := ApplyFilters(view, payloadRange(c.r))
		if got.Len() != c.want {
			t.Errorf("range %v: got %d, want %d", c.r, got.Len(), c.want)
		}
		for i := 0; i < got.Len(); i++ {
			if p := got.Measure(i, "payload"); !c.r.Contains(p) {
				t.Errorf("range %v: payload %v escaped the filter", c.r, p)
			}
		}
	}
}

func TestSubViewOfSubView(t *testing.T) {
	view := scenarioView()
	inRange := ApplyFilters(view, payloadRange(Range{1000, 10000}))
	siteA := ApplyFilters(inRange, Filters{Dimensions: map[string][]string{"site": {"A"}}})
	if siteA.Len() != 2 {
		t.Fatalf("got %d, want 2", siteA.Len())
	}
	if siteA.Dimension(5, "site") != "" || siteA.Measure(-1, "payload") != 0 {
		t.Error("out-of-range index should read zero values")
	}
}

func TestDomainAdapterFilters(t *testing.T) {
	data := []launch{{"X", 100}, {"Y", 200}, {"X", 300}}
	view := NewDomainAdapter[launch]().
		Dimension("site", func(l launch) string { return l.site }).
		Measure("payload", func(l launch) float64 { return l.payload }).
		Bind(data)

	got := ApplyFilters(view, Filters{
		Dimensions: map[string][]string{"site": {"X"}},
		Ranges:     map[string]Range{"payload": {Low: 200, High: 400}},
	})
	if got.Len() != 1 || got.Measure(0, "payload") != 300 {
		t.Errorf("expected only the 300 kg X launch, got %d records", got.Len())
	}
	if keys := view.DimensionKeys(); len(keys) != 1 || keys[0] != "site" {
		t.Errorf("DimensionKeys = %v", keys)
	}
}

func TestUniqueValuesFirstSeen(t *testing.T) {
	got := UniqueValues(scenarioView(), "booster")
	want := []string{"v1.0", "FT", "v1.1", "B4"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLabelForDimension(t *testing.T) {
	tests := map[string]string{
		"booster_version_category": "Booster Version Category",
		"class":                    "Class",
		"":                         "",
	}
	for in, want := range tests {
		if got := LabelForDimension(in); got != want {
			t.Errorf("LabelForDimension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[float64]string{
		10000:   "10,000",
		0:       "0",
		1234.5:  "1,234.5",
		9600.25: "9,600.25",
		-2500:   "-2,500",
		1e20:    "100,000,000,000,000,000,000",
		-1e19:   "-10,000,000,000,000,000,000",
	}
	for in, want := range tests {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}
