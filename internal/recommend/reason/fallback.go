package reason

import (
	"strings"

	"github.com/yungbote/trit-recommender/internal/domain/recommend"
)

const (
	FallbackTitle    = "Recommendation"
	CouldNotGenerate = "We couldn't generate a personalized reason this time, but this pick matches your interests."
)

// Fallback builds a justification from whatever raw text is available,
// or the static message when there is none.
func Fallback(raw string) recommend.Justification {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = CouldNotGenerate
	}
	return recommend.Justification{Title: FallbackTitle, Lines: []string{raw}}
}
