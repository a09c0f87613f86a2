package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"docuchat-backend/internal/logger"
)

// ErrUnknownTool is returned when an invocation names a tool outside the
// registry.
var ErrUnknownTool = errors.New("unknown tool")

// InvalidArgumentsError reports a schema violation and names the offending
// parameter so the failure can be rendered back into the conversation.
type InvalidArgumentsError struct {
	Tool   string
	Param  string
	Reason string
}

func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("invalid arguments for tool %q: parameter %q %s", e.Tool, e.Param, e.Reason)
}

// ParamSpec declares one parameter of a tool schema. Type is a JSON schema
// primitive: "string", "number" or "integer".
type ParamSpec struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Default     interface{}
}

// Descriptor is the immutable identity of a registered tool: its name, the
// human-readable description handed to the model, and its parameter schema.
type Descriptor struct {
	Name        string
	Description string
	Params      []ParamSpec
}

// Tool is a single external capability. Invoke receives arguments already
// validated against the descriptor schema and never returns an error:
// upstream failures come back as an ErrorResult variant.
type Tool interface {
	Descriptor() Descriptor
	Invoke(ctx context.Context, args map[string]interface{}) Result
}

// Registry holds the fixed tool set for the process lifetime. Names are
// disjoint; Register rejects duplicates instead of silently shadowing.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

func (r *Registry) Register(t Tool) error {
	name := t.Descriptor().Name
	if name == "" {
		return errors.New("tool has empty name")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.tools[name] = t
	return nil
}

// MustRegister panics on a duplicate name. Registration happens once at
// startup, so a collision is a programming error.
func (r *Registry) MustRegister(t Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// DescribeAll returns the descriptors of every registered tool in stable
// name order, for prompt construction and model tool schemas.
func (r *Registry) DescribeAll() []Descriptor {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	descriptors := make([]Descriptor, 0, len(names))
	for _, name := range names {
		descriptors = append(descriptors, r.tools[name].Descriptor())
	}
	return descriptors
}

// Invoke validates args against the named tool's schema, fills declared
// defaults, and dispatches. Unknown names and schema violations are errors;
// everything that goes wrong inside the tool itself is an ErrorResult.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]interface{}) (Result, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	validated, err := validateArgs(tool.Descriptor(), args)
	if err != nil {
		return nil, err
	}

	logger.Debug("invoking tool", "tool", name, "args", validated)
	return tool.Invoke(ctx, validated), nil
}

// validateArgs checks presence and primitive types, applies defaults, and
// drops undeclared keys. It returns a fresh map so tools never see the raw
// model output.
func validateArgs(desc Descriptor, args map[string]interface{}) (map[string]interface{}, error) {
	validated := make(map[string]interface{}, len(desc.Params))

	for _, p := range desc.Params {
		value, present := args[p.Name]
		if !present || value == nil {
			if p.Required {
				return nil, &InvalidArgumentsError{Tool: desc.Name, Param: p.Name, Reason: "is required"}
			}
			if p.Default != nil {
				validated[p.Name] = p.Default
			}
			continue
		}

		coerced, err := coerceValue(p.Type, value)
		if err != nil {
			return nil, &InvalidArgumentsError{Tool: desc.Name, Param: p.Name, Reason: err.Error()}
		}
		validated[p.Name] = coerced
	}

	return validated, nil
}

func coerceValue(declared string, value interface{}) (interface{}, error) {
	switch declared {
	case "string":
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("must be a string, got %T", value)
		}
		if s == "" {
			return nil, errors.New("must not be empty")
		}
		return s, nil

	case "number":
		switch n := value.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		default:
			return nil, fmt.Errorf("must be a number, got %T", value)
		}

	case "integer":
		switch n := value.(type) {
		case int:
			return n, nil
		case float64:
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("must be an integer, got %v", n)
			}
			return int(n), nil
		default:
			return nil, fmt.Errorf("must be an integer, got %T", value)
		}

	default:
		// Unknown declared types pass through; the tool owns the final say.
		return value, nil
	}
}

// stringArg reads a validated string parameter inside tool implementations.
func stringArg(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return s
}

// numberArg reads a validated numeric parameter.
func numberArg(args map[string]interface{}, name string) float64 {
	switch n := args[name].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// intArg reads a validated integer parameter.
func intArg(args map[string]interface{}, name string) int {
	switch n := args[name].(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}
