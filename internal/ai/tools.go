package ai

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
)

// ToolHandler executes one tool call. It receives the raw JSON arguments the
// model produced and returns a result that is serialized back to the model.
type ToolHandler func(ctx context.Context, args json.RawMessage) (interface{}, error)

// ToolDefinition describes a single tool in the registry.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]interface{} // JSON Schema for the tool's input parameters
	Handler     ToolHandler
}

// ToolRegistry holds the tools available to the agent for a given call.
type ToolRegistry struct {
	tools []ToolDefinition
}

func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{}
}

// Register adds a tool to the registry.
func (r *ToolRegistry) Register(t ToolDefinition) {
	r.tools = append(r.tools, t)
}

// Get returns the ToolDefinition for a given tool name, and whether it was found.
func (r *ToolRegistry) Get(name string) (ToolDefinition, bool) {
	for _, t := range r.tools {
		if t.Name == name {
			return t, true
		}
	}
	return ToolDefinition{}, false
}

// All returns all registered tools.
func (r *ToolRegistry) All() []ToolDefinition {
	return r.tools
}

// ToOpenAITools converts the registry to the OpenAI chat-completions tool format.
func (r *ToolRegistry) ToOpenAITools() []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  openai.FunctionParameters(t.InputSchema),
			},
		})
	}
	return out
}

// InputSchema derives a JSON schema map from a Go parameter struct, so tool
// contracts live next to the handlers that parse them.
func InputSchema(v interface{}) map[string]interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(v)
	b, err := json.Marshal(schema)
	if err != nil {
		return map[string]interface{}{"type": "object"}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]interface{}{"type": "object"}
	}
	return m
}
