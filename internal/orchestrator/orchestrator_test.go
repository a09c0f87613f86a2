package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docuchat-backend/internal/ai"
	"docuchat-backend/internal/retrieve"
	"docuchat-backend/internal/store/storetest"
	"docuchat-backend/internal/tools"
)

type stubModel struct {
	decision   ai.Decision
	err        error
	lastPrompt string
}

func (s *stubModel) Complete(_ context.Context, prompt string, _ []tools.Descriptor) (ai.Decision, error) {
	s.lastPrompt = prompt
	return s.decision, s.err
}

type staticTool struct {
	desc   tools.Descriptor
	result tools.Result
}

func (s staticTool) Descriptor() tools.Descriptor { return s.desc }

func (s staticTool) Invoke(_ context.Context, _ map[string]interface{}) tools.Result {
	return s.result
}

func newTestOrchestrator(t *testing.T, model ModelClient) (*Orchestrator, *storetest.MemoryChunkStore) {
	t.Helper()

	chunks := storetest.NewMemoryChunkStore(nil)
	retriever := retrieve.NewRetriever(chunks, 3)

	registry := tools.NewRegistry()
	registry.MustRegister(staticTool{
		desc: tools.Descriptor{
			Name:        "get_weather",
			Description: "Current weather",
			Params:      []tools.ParamSpec{{Name: "location", Type: "string", Required: true}},
		},
		result: tools.WeatherResult{Location: "Berlin", Description: "Clear sky", Temperature: 20, Windspeed: 5},
	})

	return New(retriever, registry, model), chunks
}

func TestRespondDirectAnswer(t *testing.T) {
	model := &stubModel{decision: ai.Direct{Text: "Paris is the capital of France."}}
	orch, chunks := newTestOrchestrator(t, model)
	ctx := context.Background()

	if _, err := chunks.Upsert(ctx, "alice", "facts.txt", []string{"Paris is the capital of France."}); err != nil {
		t.Fatal(err)
	}

	result, err := orch.Respond(ctx, "alice", "What is the capital of France?")
	if err != nil {
		t.Fatal(err)
	}

	if result.Reply != "Paris is the capital of France." {
		t.Errorf("reply = %q", result.Reply)
	}
	if len(result.Matches) != 1 || result.Matches[0] != "Paris is the capital of France." {
		t.Errorf("matches = %v", result.Matches)
	}
}

func TestRespondToolDispatch(t *testing.T) {
	model := &stubModel{decision: ai.ToolRequest{
		Name:      "get_weather",
		Arguments: map[string]interface{}{"location": "Berlin"},
	}}
	orch, _ := newTestOrchestrator(t, model)

	result, err := orch.Respond(context.Background(), "alice", "weather in Berlin?")
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(result.Reply, "Berlin") || !strings.Contains(result.Reply, "Clear sky") {
		t.Errorf("tool result should be rendered into the reply: %q", result.Reply)
	}
}

func TestRespondUnknownToolRenderedNotFailed(t *testing.T) {
	model := &stubModel{decision: ai.ToolRequest{Name: "launch_rocket", Arguments: map[string]interface{}{}}}
	orch, _ := newTestOrchestrator(t, model)

	result, err := orch.Respond(context.Background(), "alice", "launch it")
	if err != nil {
		t.Fatalf("unknown tool must not fail the turn: %v", err)
	}
	if !strings.Contains(result.Reply, "⚠️") || !strings.Contains(result.Reply, "launch_rocket") {
		t.Errorf("reply should carry a rendered error naming the tool: %q", result.Reply)
	}
}

func TestRespondInvalidArgumentsRendered(t *testing.T) {
	model := &stubModel{decision: ai.ToolRequest{
		Name:      "get_weather",
		Arguments: map[string]interface{}{}, // missing required location
	}}
	orch, _ := newTestOrchestrator(t, model)

	result, err := orch.Respond(context.Background(), "alice", "weather?")
	if err != nil {
		t.Fatalf("invalid arguments must not fail the turn: %v", err)
	}
	if !strings.Contains(result.Reply, "location") {
		t.Errorf("reply should name the offending parameter: %q", result.Reply)
	}
}

func TestRespondModelFailureFailsTurn(t *testing.T) {
	model := &stubModel{err: ai.ErrModelTimeout}
	orch, _ := newTestOrchestrator(t, model)

	_, err := orch.Respond(context.Background(), "alice", "anything")
	if !errors.Is(err, ai.ErrModelTimeout) {
		t.Fatalf("model transport failure must propagate, got %v", err)
	}
}

func TestRespondEmptyContextStillPrompts(t *testing.T) {
	model := &stubModel{decision: ai.Direct{Text: "I don't have documents about that."}}
	orch, _ := newTestOrchestrator(t, model)

	result, err := orch.Respond(context.Background(), "alice", "what do my notes say?")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Matches) != 0 {
		t.Errorf("expected no matches, got %v", result.Matches)
	}
	if !strings.Contains(model.lastPrompt, "(no matching documents)") {
		t.Error("prompt should mark the empty context explicitly")
	}
}

func TestBuildPromptStructure(t *testing.T) {
	catalogue := []tools.Descriptor{
		{
			Name:        "get_weather",
			Description: "Current weather",
			Params: []tools.ParamSpec{
				{Name: "location", Type: "string", Required: true},
				{Name: "units", Type: "string", Required: false},
			},
		},
	}

	prompt := buildPrompt([]string{"fact one", "fact two"}, catalogue, "What now?")

	for _, want := range []string{
		"**Role**",
		"**Available Tools**",
		"`get_weather(location: string, units: string?)`",
		"**Critical Rules**",
		"at most ONE tool",
		"[1] fact one",
		"[2] fact two",
		"**Question**: What now?",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
