package ranking

import (
	"sort"
	"strings"

	"github.com/yungbote/trit-recommender/internal/domain/recommend"
)

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// MatchCategory compares categories ignoring case and surrounding space.
func MatchCategory(a, b string) bool {
	return normalize(a) == normalize(b)
}

func FilterContents(items []recommend.ContentItem, category string) []recommend.ContentItem {
	out := make([]recommend.ContentItem, 0, len(items))
	for _, it := range items {
		if MatchCategory(it.Category, category) {
			out = append(out, it)
		}
	}
	return out
}

func FilterLocations(items []recommend.LocationItem, category string) []recommend.LocationItem {
	out := make([]recommend.LocationItem, 0, len(items))
	for _, it := range items {
		if MatchCategory(it.Category, category) {
			out = append(out, it)
		}
	}
	return out
}

// LocationsForContent returns the locations owned by contentID.
func LocationsForContent(items []recommend.LocationItem, contentID int64) []recommend.LocationItem {
	out := make([]recommend.LocationItem, 0)
	for _, it := range items {
		if it.ContentsID == contentID {
			out = append(out, it)
		}
	}
	return out
}

// MatchCreators keeps creators listing category whose country equals
// country. A country mismatch always disqualifies.
func MatchCreators(items []recommend.CreatorItem, category, country string) []recommend.CreatorItem {
	wantCat := normalize(category)
	wantCountry := normalize(country)
	out := make([]recommend.CreatorItem, 0)
	for _, it := range items {
		if !hasCategory(it.Categories, wantCat) {
			continue
		}
		if normalize(it.Country) != wantCountry {
			continue
		}
		out = append(out, it)
	}
	return out
}

func hasCategory(cats []string, want string) bool {
	for _, c := range cats {
		if normalize(c) == want {
			return true
		}
	}
	return false
}

// SortByBias stable-sorts items by the first index of their key in seq.
// Keys absent from seq sort after all present ones, keeping their order.
func SortByBias[T any](items []T, seq []string, key func(T) string) []T {
	first := make(map[string]int, len(seq))
	for i, id := range seq {
		if _, ok := first[id]; !ok {
			first[id] = i
		}
	}
	rank := func(t T) int {
		if i, ok := first[key(t)]; ok {
			return i
		}
		return len(seq)
	}
	out := append([]T(nil), items...)
	sort.SliceStable(out, func(i, j int) bool { return rank(out[i]) < rank(out[j]) })
	return out
}
