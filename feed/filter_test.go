package feed

import (
	"testing"
	"time"
)

func filterFixture(now time.Time) []Listing {
	return []Listing{
		{ID: "calc", Title: "Scientific calculator", Description: "Casio, barely used", Price: 800, Category: CategoryElectronics, Condition: ConditionLikeNew, CreatedAt: now},
		{ID: "desk", Title: "Study desk", Description: "Wooden desk with drawer", Price: 2500, Category: CategoryFurniture, Condition: ConditionGood, CreatedAt: now},
		{ID: "novel", Title: "Fantasy novel set", Description: "Complete trilogy", Price: 400, Category: CategoryBooks, Condition: ConditionFair, CreatedAt: now},
	}
}

func TestFilterIdentity(t *testing.T) {
	listings := filterFixture(testNow)
	got := Apply(listings, Filter{})

	if len(got) != len(listings) {
		t.Fatalf("empty filter returned %d listings, want %d", len(got), len(listings))
	}
	for i := range listings {
		if got[i].ID != listings[i].ID {
			t.Errorf("empty filter reordered: position %d is %q, want %q", i, got[i].ID, listings[i].ID)
		}
	}
}

func TestFilterByCategory(t *testing.T) {
	got := Apply(filterFixture(testNow), Filter{Category: CategoryBooks})
	if len(got) != 1 || got[0].ID != "novel" {
		t.Errorf("category filter = %v, want [novel]", ids(got))
	}
}

func TestFilterPriceBoundsInclusive(t *testing.T) {
	min, max := 800.0, 2500.0
	got := Apply(filterFixture(testNow), Filter{MinPrice: &min, MaxPrice: &max})

	if len(got) != 2 {
		t.Fatalf("price filter = %v, want [calc desk]", ids(got))
	}
	if got[0].ID != "calc" || got[1].ID != "desk" {
		t.Errorf("price filter order = %v, want [calc desk]", ids(got))
	}
}

func TestFilterByCondition(t *testing.T) {
	got := Apply(filterFixture(testNow), Filter{Condition: ConditionLikeNew})
	if len(got) != 1 || got[0].ID != "calc" {
		t.Errorf("condition filter = %v, want [calc]", ids(got))
	}
}

func TestFilterSearchMatchesTitleOrDescription(t *testing.T) {
	// "casio" only appears in calc's description; the match must be
	// case-insensitive.
	got := Apply(filterFixture(testNow), Filter{Search: "CASIO"})
	if len(got) != 1 || got[0].ID != "calc" {
		t.Errorf("search filter = %v, want [calc]", ids(got))
	}

	got = Apply(filterFixture(testNow), Filter{Search: "set"})
	if len(got) != 1 || got[0].ID != "novel" {
		t.Errorf("search filter = %v, want [novel]", ids(got))
	}
}

func TestFilterEmptySearchIsAbsent(t *testing.T) {
	listings := filterFixture(testNow)
	got := Apply(listings, Filter{Search: ""})
	if len(got) != len(listings) {
		t.Errorf("empty search returned %d listings, want all %d", len(got), len(listings))
	}
}

func TestFilterConjunction(t *testing.T) {
	listings := filterFixture(testNow)
	min := 300.0

	combined := Apply(listings, Filter{Category: CategoryBooks, MinPrice: &min})
	sequential := Apply(Apply(listings, Filter{Category: CategoryBooks}), Filter{MinPrice: &min})

	if len(combined) != len(sequential) {
		t.Fatalf("combined %d listings, sequential %d", len(combined), len(sequential))
	}
	for i := range combined {
		if combined[i].ID != sequential[i].ID {
			t.Errorf("position %d: combined %q, sequential %q", i, combined[i].ID, sequential[i].ID)
		}
	}
}

func TestFilterEmptyInput(t *testing.T) {
	if got := Apply(nil, Filter{Category: CategoryBooks}); got == nil || len(got) != 0 {
		t.Errorf("Apply(nil) = %v, want non-nil empty slice", got)
	}
}
