package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"docuchat-backend/internal/ai"
	"docuchat-backend/internal/logger"
	"docuchat-backend/internal/tools"
)

// Retriever is the similarity search a turn starts with.
type Retriever interface {
	Retrieve(ctx context.Context, owner, queryText string) ([]string, error)
}

// ModelClient resolves an augmented prompt into a decision.
type ModelClient interface {
	Complete(ctx context.Context, prompt string, catalogue []tools.Descriptor) (ai.Decision, error)
}

// TurnResult is the outcome of one chat turn: the retrieved context that was
// shown to the model, and the final reply text.
type TurnResult struct {
	Matches []string
	Reply   string
}

// Orchestrator runs a chat turn end to end: retrieve the user's context,
// prompt the model, and either pass the direct answer through or dispatch at
// most one tool call. Tool failures are rendered into the reply; only
// retrieval and model transport failures fail the turn.
type Orchestrator struct {
	retriever Retriever
	registry  *tools.Registry
	model     ModelClient
}

func New(retriever Retriever, registry *tools.Registry, model ModelClient) *Orchestrator {
	return &Orchestrator{
		retriever: retriever,
		registry:  registry,
		model:     model,
	}
}

// Respond executes one turn for owner's query.
func (o *Orchestrator) Respond(ctx context.Context, owner, query string) (*TurnResult, error) {
	tracer := otel.Tracer("orchestrator")
	ctx, span := tracer.Start(ctx, "chat.turn")
	defer span.End()

	matches, err := o.retriever.Retrieve(ctx, owner, query)
	if err != nil {
		span.SetAttributes(attribute.Bool("chat.retrieval_error", true))
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	span.SetAttributes(attribute.Int("chat.matches", len(matches)))

	catalogue := o.registry.DescribeAll()
	prompt := buildPrompt(matches, catalogue, query)

	decision, err := o.model.Complete(ctx, prompt, catalogue)
	if err != nil {
		return nil, err
	}

	var reply string
	switch d := decision.(type) {
	case ai.Direct:
		span.SetAttributes(attribute.String("chat.outcome", "direct"))
		reply = d.Text

	case ai.ToolRequest:
		span.SetAttributes(
			attribute.String("chat.outcome", "tool"),
			attribute.String("chat.tool", d.Name),
		)
		reply = o.dispatchTool(ctx, d)

	default:
		// Closed union; anything else is a programming error but still
		// produces a reply.
		logger.Error("unexpected decision variant", "type", fmt.Sprintf("%T", decision))
		reply = ""
	}

	return &TurnResult{Matches: matches, Reply: reply}, nil
}

// dispatchTool invokes the single requested tool. Unknown names and bad
// arguments become user-visible error blocks, never turn failures.
func (o *Orchestrator) dispatchTool(ctx context.Context, req ai.ToolRequest) string {
	result, err := o.registry.Invoke(ctx, req.Name, req.Arguments)
	if err != nil {
		var argErr *tools.InvalidArgumentsError
		switch {
		case errors.Is(err, tools.ErrUnknownTool):
			logger.Warn("model requested unknown tool", "tool", req.Name)
			return tools.Render(tools.ErrorResult{Reason: fmt.Sprintf("The tool '%s' is not available", req.Name)})
		case errors.As(err, &argErr):
			logger.Warn("model sent invalid tool arguments", "tool", req.Name, "param", argErr.Param)
			return tools.Render(tools.ErrorResult{Reason: err.Error()})
		default:
			return tools.Render(tools.ErrorResult{Reason: err.Error()})
		}
	}
	return tools.Render(result)
}

// buildPrompt assembles the augmented prompt: role, tool catalogue, ground
// rules, the retrieved context block, and the question.
func buildPrompt(matches []string, catalogue []tools.Descriptor, query string) string {
	var b strings.Builder

	b.WriteString("**Role**: You are an analytical assistant that answers questions using the user's uploaded documents and a small set of real-time tools.\n\n")

	b.WriteString("**Available Tools**:\n")
	for i, desc := range catalogue {
		b.WriteString(fmt.Sprintf("%d. `%s(%s)` – %s\n", i+1, desc.Name, formatParams(desc.Params), desc.Description))
	}
	b.WriteString("\n")

	b.WriteString("**Critical Rules**:\n")
	b.WriteString("- Answer from the provided context whenever it is sufficient.\n")
	b.WriteString("- Use at most ONE tool per question, and only when the context cannot answer it.\n")
	b.WriteString("- Never fabricate facts, numbers, or citations.\n")
	b.WriteString("- Respond in natural language only.\n\n")

	b.WriteString("**Context**:\n")
	if len(matches) == 0 {
		b.WriteString("(no matching documents)\n")
	} else {
		for i, match := range matches {
			b.WriteString(fmt.Sprintf("[%d] %s\n", i+1, match))
		}
	}
	b.WriteString("\n")

	b.WriteString("**Question**: ")
	b.WriteString(query)

	return b.String()
}

func formatParams(params []tools.ParamSpec) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		part := p.Name + ": " + p.Type
		if !p.Required {
			part += "?"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}
