package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"docuchat-backend/internal/logger"
	"docuchat-backend/internal/tools"
)

// ErrModelTimeout means the model did not answer before the deadline.
var ErrModelTimeout = errors.New("model request timed out")

// ErrModelConnection means the model endpoint was unreachable.
var ErrModelConnection = errors.New("model endpoint unreachable")

// ModelHTTPError carries an HTTP status returned by the model API.
type ModelHTTPError struct {
	Status  int
	Message string
}

func (e *ModelHTTPError) Error() string {
	return fmt.Sprintf("model API returned status %d: %s", e.Status, e.Message)
}

// Decision is what one completion resolves to: either a direct answer or a
// single tool request. The variants are closed; orchestration switches over
// them exhaustively.
type Decision interface {
	isDecision()
}

// Direct is the model answering in its own words.
type Direct struct {
	Text string
}

// ToolRequest is the model asking for exactly one tool invocation.
type ToolRequest struct {
	Name      string
	Arguments map[string]interface{}
}

func (Direct) isDecision()      {}
func (ToolRequest) isDecision() {}

type RateLimits struct {
	RPM int // Requests per minute
	TPM int // Tokens per minute
}

func getRateLimits(tier string) RateLimits {
	switch tier {
	case "free":
		return RateLimits{RPM: 30, TPM: 6000}
	case "dev":
		return RateLimits{RPM: 300, TPM: 60000}
	default:
		return RateLimits{RPM: 30, TPM: 6000}
	}
}

// ModelClient talks to a Groq-hosted chat model through its OpenAI-compatible
// API. Calls go through a rate limiter and a circuit breaker; an open breaker
// degrades to a friendly direct answer instead of failing the turn.
type ModelClient struct {
	client      *openai.Client
	model       string
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
	timeout     time.Duration
}

func NewModelClient(apiKey, baseURL, model, tier string, timeout time.Duration) *ModelClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	limits := getRateLimits(tier)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GroqAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	// RPM limit with some buffer
	rateLimiter := rate.NewLimiter(rate.Limit(float64(limits.RPM)*0.9/60.0), maxInt(limits.RPM/10, 1))

	return &ModelClient{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		breaker:     breaker,
		rateLimiter: rateLimiter,
		timeout:     timeout,
	}
}

// Complete sends prompt plus the tool catalogue and resolves the model's
// reply into a Decision. When the model emits several tool calls, only the
// first is honored.
func (mc *ModelClient) Complete(ctx context.Context, prompt string, catalogue []tools.Descriptor) (Decision, error) {
	tracer := otel.Tracer("model-client")
	ctx, span := tracer.Start(ctx, "model.complete")
	defer span.End()

	span.SetAttributes(
		attribute.String("model.name", mc.model),
		attribute.Int("model.tools", len(catalogue)),
		attribute.Int("model.prompt_chars", len(prompt)),
	)

	if err := mc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("model.rate_limited", true))
		return nil, classifyTransportError(err)
	}

	if mc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, mc.timeout)
		defer cancel()
	}

	result, err := mc.breaker.Execute(func() (interface{}, error) {
		resp, err := mc.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: mc.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Tools:       buildToolSchemas(catalogue),
			Temperature: 0.7,
			MaxTokens:   1024,
			TopP:        0.9,
		})
		if err != nil {
			span.SetAttributes(attribute.Bool("model.error", true))
			return nil, err
		}
		return resp, nil
	})

	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			span.SetAttributes(attribute.Bool("model.circuit_breaker_open", true))
			return Direct{Text: "I'm experiencing high demand right now. Please try again in a moment."}, nil
		}
		return nil, classifyTransportError(err)
	}

	decision := parseDecision(result.(openai.ChatCompletionResponse))
	if tr, ok := decision.(ToolRequest); ok {
		span.SetAttributes(attribute.String("model.tool_request", tr.Name))
	}
	span.SetAttributes(attribute.Bool("model.success", true))
	return decision, nil
}

// buildToolSchemas converts descriptors into the OpenAI function-calling
// schema format.
func buildToolSchemas(catalogue []tools.Descriptor) []openai.Tool {
	schemas := make([]openai.Tool, 0, len(catalogue))
	for _, desc := range catalogue {
		properties := make(map[string]interface{}, len(desc.Params))
		var required []string
		for _, p := range desc.Params {
			properties[p.Name] = map[string]interface{}{
				"type":        p.Type,
				"description": p.Description,
			}
			if p.Required {
				required = append(required, p.Name)
			}
		}

		schemas = append(schemas, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        desc.Name,
				Description: desc.Description,
				Parameters: map[string]interface{}{
					"type":       "object",
					"properties": properties,
					"required":   required,
				},
			},
		})
	}
	return schemas
}

// parseDecision resolves a completion into a Decision. A response with tool
// calls becomes a ToolRequest for the first call only; arguments that fail
// to parse as a JSON object degrade the turn to a direct answer.
func parseDecision(resp openai.ChatCompletionResponse) Decision {
	if len(resp.Choices) == 0 {
		return Direct{Text: ""}
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) == 0 {
		return Direct{Text: msg.Content}
	}

	call := msg.ToolCalls[0]
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		logger.Warn("unparseable tool call arguments, falling back to direct answer",
			"tool", call.Function.Name, "error", err)
		return Direct{Text: msg.Content}
	}

	return ToolRequest{Name: call.Function.Name, Arguments: args}
}

// classifyTransportError maps raw client errors onto the package taxonomy so
// the HTTP layer can pick status codes without inspecting library types.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrModelTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrModelTimeout
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ModelHTTPError{Status: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", ErrModelConnection, urlErr)
	}

	return err
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
