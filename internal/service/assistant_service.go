package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-pos-backend/internal/ai"
	"go-pos-backend/internal/domain"
	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const assistantSystemPrompt = `You are the inventory assistant for a point-of-sale system.
You manage products, stock levels and sales through the provided tools.
Rules:
1. Use tools for every read or write; never invent product data.
2. SKUs are uppercase letters/digits/hyphens (e.g. PROD-001).
3. Monetary amounts are integer cents.
4. When a tool fails, explain the failure to the user in plain language.
5. Answer concisely, in the user's language.`

// historyWindow is how many prior messages are replayed for model context.
const historyWindow = 10

type CommandResult struct {
	Response  string      `json:"response"`
	MessageID uuid.UUID   `json:"message_id"`
	Action    string      `json:"action,omitempty"`
	Result    interface{} `json:"result,omitempty"`
}

type AssistantService interface {
	CreateConversation(userID uuid.UUID, title string) (*model.Conversation, error)
	ListConversations(userID uuid.UUID) ([]model.Conversation, error)
	GetConversation(id uuid.UUID) (*model.Conversation, []model.Message, error)
	DeleteConversation(id uuid.UUID) error
	// ProcessCommand runs one user message through the agent, executing at
	// most a handful of tool calls, and persists both sides of the exchange.
	ProcessCommand(ctx context.Context, userID, conversationID uuid.UUID, message string) (*CommandResult, error)
}

type assistantService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	catalog       CatalogService
	stock         StockService
	sales         SaleService
	agent         ai.AgentService
}

func NewAssistantService(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	catalog CatalogService,
	stock StockService,
	sales SaleService,
	agent ai.AgentService,
) AssistantService {
	return &assistantService{
		conversations: conversations,
		messages:      messages,
		catalog:       catalog,
		stock:         stock,
		sales:         sales,
		agent:         agent,
	}
}

func (s *assistantService) CreateConversation(userID uuid.UUID, title string) (*model.Conversation, error) {
	if title == "" {
		title = "New conversation"
	}
	conversation := &model.Conversation{UserID: userID, Title: title}
	conversation.CreatedBy = userID.String()
	conversation.UpdatedBy = userID.String()
	if err := s.conversations.Create(conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

func (s *assistantService) ListConversations(userID uuid.UUID) ([]model.Conversation, error) {
	return s.conversations.FindByUserID(userID)
}

func (s *assistantService) GetConversation(id uuid.UUID) (*model.Conversation, []model.Message, error) {
	conversation, err := s.conversations.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, &domain.ConversationNotFoundError{ID: id.String()}
	}
	if err != nil {
		return nil, nil, err
	}
	messages, err := s.messages.FindByConversationID(id)
	if err != nil {
		return nil, nil, err
	}
	return conversation, messages, nil
}

func (s *assistantService) DeleteConversation(id uuid.UUID) error {
	exists, err := s.conversations.Exists(id)
	if err != nil {
		return err
	}
	if !exists {
		return &domain.ConversationNotFoundError{ID: id.String()}
	}
	return s.conversations.Delete(id)
}

func (s *assistantService) ProcessCommand(ctx context.Context, userID, conversationID uuid.UUID, message string) (*CommandResult, error) {
	started := time.Now()

	exists, err := s.conversations.Exists(conversationID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &domain.ConversationNotFoundError{ID: conversationID.String()}
	}

	userMessage := &model.Message{
		ConversationID: conversationID,
		Role:           model.RoleMessageUser,
		Content:        message,
	}
	if err := s.messages.Create(userMessage); err != nil {
		return nil, err
	}

	history, err := s.messages.LastMessages(conversationID, historyWindow)
	if err != nil {
		return nil, err
	}
	turns := make([]ai.Turn, 0, len(history))
	for _, m := range history {
		turns = append(turns, ai.Turn{Role: string(m.Role), Content: m.Content})
	}

	agentResult, err := s.agent.Run(ctx, assistantSystemPrompt, turns, s.buildRegistry(userID))
	if err != nil {
		// Persist the failure so the conversation shows what happened.
		s.saveAssistantMessage(conversationID, fmt.Sprintf("Sorry, something went wrong: %v", err), map[string]interface{}{
			"error":        err.Error(),
			"success":      false,
			"execution_ms": time.Since(started).Milliseconds(),
		})
		return nil, err
	}

	assistantMessage := s.saveAssistantMessage(conversationID, agentResult.Reply, map[string]interface{}{
		"action":       agentResult.Action,
		"success":      true,
		"execution_ms": time.Since(started).Milliseconds(),
	})

	return &CommandResult{
		Response:  agentResult.Reply,
		MessageID: assistantMessage.ID,
		Action:    agentResult.Action,
		Result:    agentResult.ActionResult,
	}, nil
}

func (s *assistantService) saveAssistantMessage(conversationID uuid.UUID, content string, metadata map[string]interface{}) *model.Message {
	raw, _ := json.Marshal(metadata)
	msg := &model.Message{
		ConversationID: conversationID,
		Role:           model.RoleMessageAssistant,
		Content:        content,
		Metadata:       raw,
	}
	// A failed save must not lose the user-visible reply.
	_ = s.messages.Create(msg)
	return msg
}
