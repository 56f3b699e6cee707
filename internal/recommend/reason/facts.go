package reason

import (
	"regexp"
	"sort"
	"strings"

	"github.com/yungbote/trit-recommender/internal/platform/websearch"
)

const (
	MaxFacts    = 5
	MaxKeywords = 3
)

var wordRe = regexp.MustCompile(`\b[a-zA-Z]{4,}\b`)

var stopwords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {},
	"they": {}, "will": {}, "which": {}, "your": {},
}

// SearchQuery is the web search query used to gather facts about a content.
func SearchQuery(title, category string) string {
	return strings.TrimSpace(title + " " + category + " travel")
}

// SummarizeFacts renders up to MaxFacts "- body" lines from non-empty bodies.
func SummarizeFacts(results []websearch.Result) string {
	lines := make([]string, 0, MaxFacts)
	for _, r := range results {
		body := strings.TrimSpace(r.Body)
		if body == "" {
			continue
		}
		lines = append(lines, "- "+body)
		if len(lines) == MaxFacts {
			break
		}
	}
	return strings.Join(lines, "\n")
}

// TopKeywords returns the most frequent words across result bodies. Ties
// keep the order of first occurrence.
func TopKeywords(results []websearch.Result) []string {
	bodies := make([]string, 0, len(results))
	for _, r := range results {
		if r.Body != "" {
			bodies = append(bodies, r.Body)
		}
	}
	words := wordRe.FindAllString(strings.ToLower(strings.Join(bodies, " ")), -1)

	counts := map[string]int{}
	order := make([]string, 0)
	for _, w := range words {
		if _, stop := stopwords[w]; stop {
			continue
		}
		if _, seen := counts[w]; !seen {
			order = append(order, w)
		}
		counts[w]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > MaxKeywords {
		order = order[:MaxKeywords]
	}
	return order
}

// FormatKeywords renders keywords as "**a**, **b**".
func FormatKeywords(keywords []string) string {
	parts := make([]string, len(keywords))
	for i, k := range keywords {
		parts[i] = "**" + k + "**"
	}
	return strings.Join(parts, ", ")
}
