package ranking

import (
	"math"
	"strings"
	"testing"

	"github.com/yungbote/trit-recommender/internal/domain/recommend"
)

func TestHaversineSymmetryAndIdentity(t *testing.T) {
	points := [][2]float64{{37.5, 127.0}, {33.36, 126.53}, {-33.86, 151.21}, {51.5, -0.12}, {0, 0}}
	for _, a := range points {
		if d := HaversineKm(a[0], a[1], a[0], a[1]); d != 0 {
			t.Fatalf("distance(A,A) = %v, want 0", d)
		}
		for _, b := range points {
			ab := HaversineKm(a[0], a[1], b[0], b[1])
			ba := HaversineKm(b[0], b[1], a[0], a[1])
			if math.Abs(ab-ba) > 1e-9 {
				t.Fatalf("asymmetric distance %v vs %v", ab, ba)
			}
		}
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// One degree of latitude on a 6371 km sphere.
	want := 6371.0 * math.Pi / 180
	if got := HaversineKm(0, 0, 1, 0); math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestNearestLocationCap(t *testing.T) {
	locs := []recommend.LocationItem{
		{ID: 1, Latitude: 38.5, Longitude: 127.0}, // ~111 km north
		{ID: 2, Latitude: 36.9, Longitude: 127.0}, // ~67 km south
	}
	loc, d, ok := NearestLocation(locs, 37.5, 127.0, MaxLocationDistanceKm)
	if !ok || loc.ID != 2 || d > MaxLocationDistanceKm {
		t.Fatalf("expected location 2 within cap, got %+v %v %v", loc, d, ok)
	}
	if _, _, ok := NearestLocation(locs[:1], 37.5, 127.0, MaxLocationDistanceKm); ok {
		t.Fatalf("expected no match beyond 80 km")
	}
	loc, d, ok = NearestLocation(locs[:1], 37.5, 127.0, 0)
	if !ok || loc.ID != 1 || d < 100 {
		t.Fatalf("uncapped lookup should return the far location, got %+v %v %v", loc, d, ok)
	}
}

func TestNearestLocationFirstSeenWinsTies(t *testing.T) {
	locs := []recommend.LocationItem{
		{ID: 7, Latitude: 37.6, Longitude: 127.0},
		{ID: 8, Latitude: 37.6, Longitude: 127.0},
	}
	loc, _, ok := NearestLocation(locs, 37.5, 127.0, MaxLocationDistanceKm)
	if !ok || loc.ID != 7 {
		t.Fatalf("expected first-seen location on tie, got %+v", loc)
	}
}

func TestNearestLocationEmpty(t *testing.T) {
	if _, _, ok := NearestLocation(nil, 0, 0, 0); ok {
		t.Fatalf("expected no match for empty input")
	}
}

func TestSortByBiasStable(t *testing.T) {
	type item struct{ id string }
	items := []item{{"c1"}, {"c3"}, {"c2"}}
	got := SortByBias(items, []string{"c2", "c1"}, func(i item) string { return i.id })
	ids := make([]string, len(got))
	for i, it := range got {
		ids[i] = it.id
	}
	if strings.Join(ids, ",") != "c2,c1,c3" {
		t.Fatalf("got %v want [c2 c1 c3]", ids)
	}
	if items[0].id != "c1" {
		t.Fatalf("input slice must not be reordered")
	}
}

func TestSortByBiasUsesFirstOccurrence(t *testing.T) {
	items := []recommend.ContentItem{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	seq := []string{"3", "1", "3", "2"}
	got := SortByBias(items, seq, recommend.ContentItem.Key)
	want := []int64{3, 1, 2, 4}
	for i, w := range want {
		if got[i].ID != w {
			t.Fatalf("position %d: got %d want %d", i, got[i].ID, w)
		}
	}
}

func TestSortByBiasEmptySequenceKeepsOrder(t *testing.T) {
	items := []recommend.ContentItem{{ID: 9}, {ID: 2}, {ID: 5}}
	got := SortByBias(items, nil, recommend.ContentItem.Key)
	if got[0].ID != 9 || got[1].ID != 2 || got[2].ID != 5 {
		t.Fatalf("unexpected reorder: %+v", got)
	}
}

func TestFilterContentsNormalizesCategory(t *testing.T) {
	items := []recommend.ContentItem{{ID: 1, Category: " food "}, {ID: 2, Category: "NATURE"}, {ID: 3, Category: "Food"}}
	got := FilterContents(items, "FOOD")
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("unexpected filter result %+v", got)
	}
}

func TestMatchCreatorsRequiresCountry(t *testing.T) {
	creators := []recommend.CreatorItem{
		{ID: 1, Categories: []string{"FOOD"}, Country: "JP"},
	}
	if got := MatchCreators(creators, "food", "KR"); len(got) != 0 {
		t.Fatalf("creator in another country must be excluded, got %+v", got)
	}

	creators = append(creators,
		recommend.CreatorItem{ID: 2, Categories: []string{"travel", " Food "}, Country: " kr"},
		recommend.CreatorItem{ID: 3, Categories: []string{"MUSIC"}, Country: "KR"},
	)
	got := MatchCreators(creators, "FOOD", "KR")
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("unexpected match %+v", got)
	}
}

func TestLocationsForContent(t *testing.T) {
	locs := []recommend.LocationItem{{ID: 1, ContentsID: 10}, {ID: 2, ContentsID: 11}, {ID: 3, ContentsID: 10}}
	got := LocationsForContent(locs, 10)
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("unexpected locations %+v", got)
	}
	if len(LocationsForContent(locs, 99)) != 0 {
		t.Fatalf("expected none")
	}
}
