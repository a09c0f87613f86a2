package ai

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"docuchat-backend/internal/tools"
)

func responseWithToolCalls(content string, calls ...openai.ToolCall) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content, ToolCalls: calls}},
		},
	}
}

func TestParseDecisionDirect(t *testing.T) {
	decision := parseDecision(responseWithToolCalls("The capital of France is Paris."))

	direct, ok := decision.(Direct)
	if !ok {
		t.Fatalf("expected Direct, got %T", decision)
	}
	if direct.Text != "The capital of France is Paris." {
		t.Errorf("unexpected text: %q", direct.Text)
	}
}

func TestParseDecisionEmptyChoices(t *testing.T) {
	decision := parseDecision(openai.ChatCompletionResponse{})

	direct, ok := decision.(Direct)
	if !ok {
		t.Fatalf("expected Direct, got %T", decision)
	}
	if direct.Text != "" {
		t.Errorf("empty response should yield empty direct answer, got %q", direct.Text)
	}
}

func TestParseDecisionToolRequest(t *testing.T) {
	decision := parseDecision(responseWithToolCalls("", openai.ToolCall{
		Function: openai.FunctionCall{
			Name:      "get_weather",
			Arguments: `{"location":"Berlin"}`,
		},
	}))

	req, ok := decision.(ToolRequest)
	if !ok {
		t.Fatalf("expected ToolRequest, got %T", decision)
	}
	if req.Name != "get_weather" {
		t.Errorf("tool name = %q", req.Name)
	}
	if req.Arguments["location"] != "Berlin" {
		t.Errorf("arguments = %v", req.Arguments)
	}
}

func TestParseDecisionHonorsFirstToolCallOnly(t *testing.T) {
	decision := parseDecision(responseWithToolCalls("",
		openai.ToolCall{Function: openai.FunctionCall{Name: "get_weather", Arguments: `{"location":"Berlin"}`}},
		openai.ToolCall{Function: openai.FunctionCall{Name: "get_news", Arguments: `{}`}},
	))

	req, ok := decision.(ToolRequest)
	if !ok {
		t.Fatalf("expected ToolRequest, got %T", decision)
	}
	if req.Name != "get_weather" {
		t.Errorf("only the first tool call should be honored, got %q", req.Name)
	}
}

func TestParseDecisionBadArgumentsFallsBackToDirect(t *testing.T) {
	decision := parseDecision(responseWithToolCalls("partial answer text", openai.ToolCall{
		Function: openai.FunctionCall{
			Name:      "get_weather",
			Arguments: `{not json`,
		},
	}))

	direct, ok := decision.(Direct)
	if !ok {
		t.Fatalf("unparseable arguments must degrade to Direct, got %T", decision)
	}
	if direct.Text != "partial answer text" {
		t.Errorf("fallback should keep message content, got %q", direct.Text)
	}
}

func TestBuildToolSchemas(t *testing.T) {
	schemas := buildToolSchemas([]tools.Descriptor{
		{
			Name:        "get_weather",
			Description: "Current weather",
			Params: []tools.ParamSpec{
				{Name: "location", Type: "string", Required: true},
				{Name: "units", Type: "string", Required: false},
			},
		},
	})

	if len(schemas) != 1 {
		t.Fatalf("expected 1 schema, got %d", len(schemas))
	}
	fn := schemas[0].Function
	if fn.Name != "get_weather" {
		t.Errorf("function name = %q", fn.Name)
	}

	params, ok := fn.Parameters.(map[string]interface{})
	if !ok {
		t.Fatalf("parameters should be a JSON schema object, got %T", fn.Parameters)
	}
	required, _ := params["required"].([]string)
	if len(required) != 1 || required[0] != "location" {
		t.Errorf("required = %v", required)
	}
	properties, _ := params["properties"].(map[string]interface{})
	if len(properties) != 2 {
		t.Errorf("properties = %v", properties)
	}
}

func TestClassifyTransportError(t *testing.T) {
	if got := classifyTransportError(context.DeadlineExceeded); !errors.Is(got, ErrModelTimeout) {
		t.Errorf("deadline exceeded should classify as timeout, got %v", got)
	}

	apiErr := &openai.APIError{HTTPStatusCode: 429, Message: "rate limited"}
	got := classifyTransportError(apiErr)
	var httpErr *ModelHTTPError
	if !errors.As(got, &httpErr) {
		t.Fatalf("API error should classify as ModelHTTPError, got %v", got)
	}
	if httpErr.Status != 429 {
		t.Errorf("status = %d, want 429", httpErr.Status)
	}

	plain := errors.New("something else")
	if got := classifyTransportError(plain); got != plain {
		t.Errorf("unknown errors should pass through, got %v", got)
	}
}
