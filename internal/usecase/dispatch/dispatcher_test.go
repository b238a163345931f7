package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/geopulse-ai/geopulse/internal/domain"
)

func echoTool(tag string) ToolFunc {
	return func(_ context.Context, _ json.RawMessage) (any, error) {
		return tag, nil
	}
}

func failingTool(err error) ToolFunc {
	return func(_ context.Context, _ json.RawMessage) (any, error) {
		return nil, err
	}
}

func TestExecute_CanonicalizesAliases(t *testing.T) {
	d := New(map[string]ToolFunc{
		domain.ToolPOISearch: echoTool("poi"),
	}, nil)

	records := d.Execute(context.Background(), []Request{
		{Tool: "geopulse.search_places"},
	})

	rec, ok := records[domain.ToolPOISearch]
	if !ok {
		t.Fatalf("expected record under canonical id, got %v", records)
	}
	if rec.Tool != domain.ToolPOISearch {
		t.Errorf("expected canonical tool id, got %q", rec.Tool)
	}
	if rec.Result != "poi" {
		t.Errorf("expected tool result, got %v", rec.Result)
	}
}

func TestExecute_DuplicateIDLaterWins(t *testing.T) {
	calls := 0
	d := New(map[string]ToolFunc{
		domain.ToolPOISearch: func(_ context.Context, args json.RawMessage) (any, error) {
			calls++
			return string(args), nil
		},
	}, nil)

	records := d.Execute(context.Background(), []Request{
		{Tool: domain.ToolPOISearch, Args: json.RawMessage(`{"q":"first"}`)},
		{Tool: "search_places", Args: json.RawMessage(`{"q":"second"}`)},
	})

	if calls != 2 {
		t.Errorf("expected both invocations executed, got %d", calls)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	rec := records[domain.ToolPOISearch]
	if rec.Result != `{"q":"second"}` {
		t.Errorf("expected later invocation's outcome, got %v", rec.Result)
	}
}

func TestExecute_MetaToolRejected(t *testing.T) {
	executed := false
	d := New(map[string]ToolFunc{
		domain.ToolPlanQuery: func(_ context.Context, _ json.RawMessage) (any, error) {
			executed = true
			return nil, nil
		},
	}, nil)

	records := d.Execute(context.Background(), []Request{
		{Tool: domain.ToolPlanQuery},
	})

	if executed {
		t.Error("meta-tool must never be executed")
	}
	rec := records[domain.ToolPlanQuery]
	if rec.Err != domain.ErrRecursionRejected.Error() {
		t.Errorf("expected recursion rejection, got %q", rec.Err)
	}
	if rec.Result != nil {
		t.Errorf("expected nil result, got %v", rec.Result)
	}
}

func TestExecute_UnknownToolYieldsEmptyRecord(t *testing.T) {
	d := New(map[string]ToolFunc{}, nil)

	records := d.Execute(context.Background(), []Request{
		{Tool: "no_such_tool"},
	})

	rec, ok := records["no_such_tool"]
	if !ok {
		t.Fatal("expected a record for the unknown tool")
	}
	if rec.Err != "" {
		t.Errorf("unknown tool must fail harmlessly, got error %q", rec.Err)
	}
	if rec.Result != nil {
		t.Errorf("expected empty result, got %v", rec.Result)
	}
}

func TestExecute_FailureDoesNotAbortBatch(t *testing.T) {
	d := New(map[string]ToolFunc{
		domain.ToolPOISearch:    failingTool(errors.New("provider down")),
		domain.ToolLocalEvents:  echoTool("events"),
		domain.ToolPlaceDetails: echoTool("details"),
	}, nil)

	records := d.Execute(context.Background(), []Request{
		{Tool: domain.ToolPOISearch},
		{Tool: domain.ToolLocalEvents},
		{Tool: domain.ToolPlaceDetails},
	})

	if records[domain.ToolPOISearch].Err == "" {
		t.Error("expected failure reason on the failing tool")
	}
	if records[domain.ToolLocalEvents].Result != "events" {
		t.Error("expected later tools to run despite earlier failure")
	}
	if records[domain.ToolPlaceDetails].Result != "details" {
		t.Error("expected later tools to run despite earlier failure")
	}
}

func TestExecute_PanicIsolated(t *testing.T) {
	d := New(map[string]ToolFunc{
		domain.ToolPOISearch: func(_ context.Context, _ json.RawMessage) (any, error) {
			panic("boom")
		},
		domain.ToolLocalEvents: echoTool("events"),
	}, nil)

	records := d.Execute(context.Background(), []Request{
		{Tool: domain.ToolPOISearch},
		{Tool: domain.ToolLocalEvents},
	})

	rec := records[domain.ToolPOISearch]
	if rec.Err == "" {
		t.Error("expected panic converted to failure reason")
	}
	if records[domain.ToolLocalEvents].Result != "events" {
		t.Error("expected the batch to continue after a panic")
	}
}
