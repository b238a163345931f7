package extract

import (
	"testing"

	"github.com/geopulse-ai/geopulse/internal/domain"
)

const validFC = `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[-80.19,25.76]},"properties":{"name":"Cafe Uno"}}]}`

func TestFromText_JSONFencedFeatureCollection(t *testing.T) {
	text := "Here is your map:\n```json\n" + validFC + "\n```\nEnjoy."

	ex := FromText(text)
	if !ex.Recognized() {
		t.Fatal("expected a recognized payload")
	}
	if ex.MapData == nil {
		t.Fatal("expected map data")
	}
	if len(ex.MapData.Features) != 1 {
		t.Errorf("expected 1 feature, got %d", len(ex.MapData.Features))
	}
	if ex.Raw != text {
		t.Error("raw text must be preserved")
	}
}

func TestFromText_JSONFencePreferredOverGeneric(t *testing.T) {
	text := "```\n{\"analysis\":{\"note\":\"generic\"}}\n```\n```json\n" + validFC + "\n```"

	ex := FromText(text)
	if ex.MapData == nil {
		t.Fatal("expected the json-tagged fence to win")
	}
}

func TestFromText_GenericFence(t *testing.T) {
	text := "```\n" + validFC + "\n```"

	ex := FromText(text)
	if ex.MapData == nil {
		t.Fatal("expected map data from a generic fence")
	}
}

func TestFromText_InlineBalancedObject(t *testing.T) {
	text := `The verdict is {"analysis":{"intent":"market_analysis","confidence":0.8}} overall.`

	ex := FromText(text)
	if ex.Analysis == nil {
		t.Fatal("expected analysis payload")
	}
	if ex.Analysis["intent"] != "market_analysis" {
		t.Errorf("expected inner analysis object, got %v", ex.Analysis)
	}
	if ex.MapData != nil {
		t.Error("expected no map data")
	}
}

func TestFromText_BracesInsideStrings(t *testing.T) {
	text := `prefix {"analysis":{"note":"contains } and { and \" inside"}} suffix`

	ex := FromText(text)
	if ex.Analysis == nil {
		t.Fatal("expected analysis despite braces inside string values")
	}
	if ex.Analysis["note"] != `contains } and { and " inside` {
		t.Errorf("unexpected note: %v", ex.Analysis["note"])
	}
}

func TestFromText_WrapperWithAnalysisAndMapData(t *testing.T) {
	text := "```json\n{\"analysis\":{\"intent\":\"site_selection\"},\"mapData\":" + validFC + "}\n```"

	ex := FromText(text)
	if ex.Analysis == nil {
		t.Error("expected analysis from wrapper")
	}
	if ex.MapData == nil {
		t.Error("expected map data from wrapper")
	}
}

func TestFromText_MapKeyAlias(t *testing.T) {
	text := "```json\n{\"map\":" + validFC + "}\n```"

	ex := FromText(text)
	if ex.MapData == nil {
		t.Fatal("expected map data under the short key")
	}
}

func TestFromText_MalformedDegradesToUnrecognized(t *testing.T) {
	for _, text := range []string{
		"no structured data at all",
		"broken ```json\n{\"type\": \n``` fence",
		`dangling {"unclosed": true`,
		"",
	} {
		ex := FromText(text)
		if ex.Recognized() {
			t.Errorf("expected unrecognized result for %q", text)
		}
		if ex.Raw != text {
			t.Errorf("raw must carry the original text for %q", text)
		}
	}
}

func TestFromText_PlainObjectBecomesAnalysis(t *testing.T) {
	text := "```json\n{\"observation\":\"dense retail corridor\"}\n```"

	ex := FromText(text)
	if ex.Analysis == nil {
		t.Fatal("expected whole object as analysis")
	}
	if ex.Analysis["observation"] != "dense retail corridor" {
		t.Errorf("unexpected analysis: %v", ex.Analysis)
	}
}

func TestExtract_ToolResultFallback(t *testing.T) {
	records := []domain.ToolInvocationRecord{
		{Tool: domain.ToolPOISearch, Err: "provider down"},
		{Tool: domain.ToolPlanQuery, Result: map[string]any{
			"type": "FeatureCollection",
			"features": []any{
				map[string]any{
					"type":       "Feature",
					"geometry":   map[string]any{"type": "Point", "coordinates": []any{-80.19, 25.76}},
					"properties": map[string]any{"name": "Cafe Uno"},
				},
			},
		}},
	}

	ex := Extract("plain prose with no JSON", records)
	if ex.MapData == nil {
		t.Fatal("expected map data from tool-result scan")
	}
	if len(ex.MapData.Features) != 1 {
		t.Errorf("expected 1 feature, got %d", len(ex.MapData.Features))
	}
}

func TestExtract_TextWinsOverToolResults(t *testing.T) {
	records := []domain.ToolInvocationRecord{
		{Tool: domain.ToolPOISearch, Result: map[string]any{
			"type":     "FeatureCollection",
			"features": []any{},
		}},
	}

	text := "```json\n" + validFC + "\n```"
	ex := Extract(text, records)
	if ex.MapData == nil || len(ex.MapData.Features) != 1 {
		t.Fatal("map data embedded in the text must win over tool results")
	}
}

func TestExtract_FailedRecordsSkipped(t *testing.T) {
	records := []domain.ToolInvocationRecord{
		{Tool: domain.ToolPOISearch, Err: "boom", Result: nil},
	}

	ex := Extract("no json here", records)
	if ex.MapData != nil {
		t.Error("failed records must not contribute map data")
	}
}

func TestFirstBalancedObject(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`a {"x":1} b`, `{"x":1}`},
		{`{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{`{"s":"}"}`, `{"s":"}"}`},
		{`{"s":"\"}"}`, `{"s":"\"}"}`},
		{`no braces`, ""},
		{`{"unclosed":`, ""},
	}

	for _, tt := range tests {
		if got := firstBalancedObject(tt.in); got != tt.want {
			t.Errorf("firstBalancedObject(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
