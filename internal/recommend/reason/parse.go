package reason

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/yungbote/trit-recommender/internal/domain/recommend"
)

// ExtractJSONObject returns the first balanced {...} span in s. Braces inside
// JSON strings are ignored.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	for start >= 0 {
		if end, ok := matchBrace(s, start); ok {
			return s[start : end+1], true
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// ParseJustification decodes a {title, lines} reply. The title must be
// non-empty and there must be exactly three non-empty lines.
func ParseJustification(text string) (recommend.Justification, bool) {
	obj, ok := ExtractJSONObject(text)
	if !ok {
		return recommend.Justification{}, false
	}
	var raw struct {
		Title string   `json:"title"`
		Lines []string `json:"lines"`
	}
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return recommend.Justification{}, false
	}
	title := strings.TrimSpace(raw.Title)
	if title == "" || len(raw.Lines) != 3 {
		return recommend.Justification{}, false
	}
	lines := make([]string, 0, 3)
	for _, l := range raw.Lines {
		l = strings.TrimSpace(l)
		if l == "" {
			return recommend.Justification{}, false
		}
		lines = append(lines, l)
	}
	return recommend.Justification{Title: title, Lines: lines}, true
}

// Pick is the generative model's choice among offered contents.
type Pick struct {
	ContentsID int64
	Reason     string
}

// ParsePick decodes a {contentsId, reason} reply. The id may be a JSON
// number or a numeric string.
func ParsePick(text string) (Pick, bool) {
	obj, ok := ExtractJSONObject(text)
	if !ok {
		return Pick{}, false
	}
	var raw struct {
		ContentsID json.RawMessage `json:"contentsId"`
		Reason     string          `json:"reason"`
	}
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return Pick{}, false
	}
	id, ok := parseID(raw.ContentsID)
	if !ok {
		return Pick{}, false
	}
	return Pick{ContentsID: id, Reason: strings.TrimSpace(raw.Reason)}, true
}

func parseID(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if id, err := n.Int64(); err == nil {
			return id, true
		}
		return 0, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
