// Package extract pulls an embedded structured payload out of free-form
// generated text and classifies it as map data or analysis.
package extract

import (
	"encoding/json"
	"regexp"

	"github.com/geopulse-ai/geopulse/internal/domain"
)

// Fenced-block patterns in preference order: a json-tagged block wins over
// a generic one.
var (
	jsonFenceRe    = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	genericFenceRe = regexp.MustCompile("(?s)```\\s*(.*?)```")
)

// Extracted is the discriminated extraction result. Either or both of
// MapData and Analysis may be set; when neither is, the text carried no
// recognizable structured payload and Raw is all the caller gets.
type Extracted struct {
	MapData  *domain.FeatureCollection
	Analysis map[string]any
	Raw      string
}

// Recognized reports whether any structured payload was found.
func (e Extracted) Recognized() bool {
	return e.MapData != nil || e.Analysis != nil
}

// FromText extracts structured data from generated text. Pure transform:
// malformed input never fails, it degrades to an unrecognized result.
func FromText(text string) Extracted {
	return Extract(text, nil)
}

// Extract extracts structured data from generated text, falling back to a
// scan of prior tool-invocation results for a FeatureCollection-shaped
// payload when the text itself yields no map data.
func Extract(text string, records []domain.ToolInvocationRecord) Extracted {
	out := Extracted{Raw: text}

	if candidate, ok := firstParsableCandidate(text); ok {
		classify(candidate, &out)
	}

	if out.MapData == nil {
		out.MapData = fromToolResults(records)
	}
	return out
}

// firstParsableCandidate returns the raw bytes of the first candidate JSON
// object: fenced blocks in preference order, then the first brace-balanced
// inline span.
func firstParsableCandidate(text string) ([]byte, bool) {
	for _, re := range []*regexp.Regexp{jsonFenceRe, genericFenceRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			candidate := []byte(m[1])
			if json.Valid(candidate) && isObject(candidate) {
				return candidate, true
			}
		}
	}

	if span := firstBalancedObject(text); span != "" {
		candidate := []byte(span)
		if json.Valid(candidate) {
			return candidate, true
		}
	}
	return nil, false
}

// classify decides whether the parsed object is map data, analysis, or a
// wrapper holding both under "analysis" and "mapData"/"map" fields.
func classify(candidate []byte, out *Extracted) {
	var obj map[string]any
	if err := json.Unmarshal(candidate, &obj); err != nil {
		return
	}

	if looksLikeFeatureCollection(obj) {
		var fc domain.FeatureCollection
		if err := json.Unmarshal(candidate, &fc); err == nil {
			out.MapData = &fc
			return
		}
		// Shape matched but features failed to decode: fall through to
		// analysis so the payload is not silently dropped.
	}

	if inner, ok := obj["analysis"].(map[string]any); ok {
		out.Analysis = inner
	} else {
		out.Analysis = obj
	}

	for _, key := range []string{"mapData", "map"} {
		if fc := decodeFeatureCollection(obj[key]); fc != nil {
			out.MapData = fc
			return
		}
	}
}

// fromToolResults scans executed tool results for the first payload shaped
// like a FeatureCollection.
func fromToolResults(records []domain.ToolInvocationRecord) *domain.FeatureCollection {
	for _, rec := range records {
		if rec.Err != "" || rec.Result == nil {
			continue
		}
		if fc := decodeFeatureCollection(rec.Result); fc != nil {
			return fc
		}
	}
	return nil
}

// decodeFeatureCollection round-trips an arbitrary decoded value into a
// FeatureCollection, returning nil when the shape does not fit.
func decodeFeatureCollection(v any) *domain.FeatureCollection {
	obj, ok := v.(map[string]any)
	if !ok || !looksLikeFeatureCollection(obj) {
		return nil
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return nil
	}
	var fc domain.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil
	}
	return &fc
}

func looksLikeFeatureCollection(obj map[string]any) bool {
	if t, _ := obj["type"].(string); t != "FeatureCollection" {
		return false
	}
	_, ok := obj["features"].([]any)
	return ok
}

func isObject(data []byte) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b == '{'
		}
	}
	return false
}

// firstBalancedObject returns the first brace-balanced span in text,
// counting depth outside strings and skipping escaped characters inside
// them.
func firstBalancedObject(text string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if start == -1 {
			if c == '{' {
				start = i
				depth = 1
			}
			continue
		}

		if escaped {
			escaped = false
			continue
		}

		switch {
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// string content, brace counting suspended
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
