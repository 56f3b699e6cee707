package recommend

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const BehaviorSource = "user_behavior"

// ProfileVectorID is the vector store id of a user's behavior profile.
func ProfileVectorID(userID int64) string {
	return "user-" + strconv.FormatInt(userID, 10)
}

// BehaviorItem is one content item a user watched, liked or playlisted.
type BehaviorItem struct {
	ContentID   int64
	CreatorID   *int64
	Title       string
	Description string
	Category    string
	Tags        []string
	CreatorName string
}

func (b BehaviorItem) blank() bool {
	if strings.TrimSpace(b.Title) != "" || strings.TrimSpace(b.Description) != "" ||
		strings.TrimSpace(b.Category) != "" || strings.TrimSpace(b.CreatorName) != "" {
		return false
	}
	for _, t := range b.Tags {
		if strings.TrimSpace(t) != "" {
			return false
		}
	}
	return true
}

func (b BehaviorItem) Line() string {
	return fmt.Sprintf("Title: %s, Desc: %s, Category: %s, Tags: %s, Creator: %s",
		b.Title, b.Description, b.Category, strings.Join(b.Tags, ", "), b.CreatorName)
}

// RenderBehaviorText renders one line per item, skipping items with no text.
// Callers pass items in a stable order; the result is deterministic.
func RenderBehaviorText(items []BehaviorItem) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		if it.blank() {
			continue
		}
		lines = append(lines, it.Line())
	}
	return strings.Join(lines, "\n")
}

// PreferredIDs returns the distinct content and creator ids, sorted numerically.
func PreferredIDs(items []BehaviorItem) (contentIDs, creatorIDs []string) {
	contents := map[int64]struct{}{}
	creators := map[int64]struct{}{}
	for _, it := range items {
		if it.ContentID != 0 {
			contents[it.ContentID] = struct{}{}
		}
		if it.CreatorID != nil && *it.CreatorID != 0 {
			creators[*it.CreatorID] = struct{}{}
		}
	}
	return sortedKeys(contents), sortedKeys(creators)
}

func sortedKeys(m map[int64]struct{}) []string {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatInt(id, 10)
	}
	return out
}

// BehaviorMetadata is the metadata stored next to a profile vector.
type BehaviorMetadata struct {
	Source              string
	Length              int
	PreferredContentIDs []string
	PreferredCreatorIDs []string
	LastUpdatedAt       *time.Time
}

func (m BehaviorMetadata) ToMap() map[string]any {
	out := map[string]any{
		"source":                m.Source,
		"length":                m.Length,
		"preferred_content_ids": nonNil(m.PreferredContentIDs),
		"preferred_creator_ids": nonNil(m.PreferredCreatorIDs),
	}
	if m.LastUpdatedAt != nil {
		out["last_updated_at"] = m.LastUpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return out
}

// MetadataFromMap decodes vector store metadata. Missing or malformed
// fields decode to their zero values.
func MetadataFromMap(raw map[string]any) BehaviorMetadata {
	var m BehaviorMetadata
	if raw == nil {
		return m
	}
	if s, ok := raw["source"].(string); ok {
		m.Source = s
	}
	switch v := raw["length"].(type) {
	case float64:
		m.Length = int(v)
	case int:
		m.Length = v
	}
	m.PreferredContentIDs = stringList(raw["preferred_content_ids"])
	m.PreferredCreatorIDs = stringList(raw["preferred_creator_ids"])
	if s, ok := raw["last_updated_at"].(string); ok {
		if t, ok := parseTimestamp(s); ok {
			m.LastUpdatedAt = &t
		}
	}
	return m
}

func stringList(v any) []string {
	switch xs := v.(type) {
	case []string:
		return append([]string(nil), xs...)
	case []any:
		out := make([]string, 0, len(xs))
		for _, x := range xs {
			switch t := x.(type) {
			case string:
				out = append(out, t)
			case float64:
				out = append(out, strconv.FormatInt(int64(t), 10))
			}
		}
		return out
	default:
		return nil
	}
}

// parseTimestamp accepts RFC 3339 and naive ISO timestamps (read as UTC).
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
