package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// maxToolRounds bounds the tool loop; a runaway model cannot spin forever.
const maxToolRounds = 5

// Turn is one prior message of the conversation, replayed for context.
type Turn struct {
	Role    string // "user", "assistant" or "system"
	Content string
}

// Result is the agent's final answer plus the last tool it executed, if any.
type Result struct {
	Reply        string
	Action       string
	ActionResult interface{}
}

type AgentService interface {
	Run(ctx context.Context, system string, history []Turn, registry *ToolRegistry) (*Result, error)
}

type Agent struct {
	client *openai.Client
	model  openai.ChatModel
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client, model: openai.ChatModelGPT4o}
}

// Run drives the tool loop: the model answers directly or requests tool
// calls, which are executed and fed back until it produces a final reply.
// Tool failures are reported back to the model rather than aborting, so the
// user gets a readable explanation instead of an opaque error.
func (a *Agent) Run(ctx context.Context, system string, history []Turn, registry *ToolRegistry) (*Result, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	messages = append(messages, openai.SystemMessage(system))
	for _, turn := range history {
		switch turn.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(turn.Content))
		case "system":
			messages = append(messages, openai.SystemMessage(turn.Content))
		default:
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}

	result := &Result{}

	for round := 0; round < maxToolRounds; round++ {
		completion, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    a.model,
			Messages: messages,
			Tools:    registry.ToOpenAITools(),
		})
		if err != nil {
			return nil, fmt.Errorf("openai chat error: %w", err)
		}
		if len(completion.Choices) == 0 {
			return nil, errors.New("empty completion")
		}

		msg := completion.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			result.Reply = msg.Content
			return result, nil
		}

		messages = append(messages, msg.ToParam())
		for _, call := range msg.ToolCalls {
			output := a.dispatch(ctx, registry, call.Function.Name, call.Function.Arguments, result)
			messages = append(messages, openai.ToolMessage(output, call.ID))
		}
	}

	return nil, fmt.Errorf("tool loop did not converge after %d rounds", maxToolRounds)
}

func (a *Agent) dispatch(ctx context.Context, registry *ToolRegistry, name, arguments string, result *Result) string {
	tool, ok := registry.Get(name)
	if !ok {
		return toolError(fmt.Sprintf("unknown tool %q", name))
	}

	res, err := tool.Handler(ctx, json.RawMessage(arguments))
	if err != nil {
		return toolError(err.Error())
	}

	result.Action = name
	result.ActionResult = res

	b, err := json.Marshal(res)
	if err != nil {
		return toolError("result could not be serialized")
	}
	return string(b)
}

func toolError(msg string) string {
	b, _ := json.Marshal(map[string]string{"error": msg})
	return string(b)
}
