package handler

import (
	"strings"

	"go-pos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AssistantHandler struct {
	assistant service.AssistantService
}

func NewAssistantHandler(assistant service.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

func (h *AssistantHandler) CreateConversation(c *fiber.Ctx) error {
	var req struct {
		Title string `json:"title"`
	}
	// Body is optional; an empty one starts an untitled conversation.
	_ = c.BodyParser(&req)

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	conversation, err := h.assistant.CreateConversation(userID, req.Title)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create conversation"})
	}
	return c.Status(201).JSON(conversation)
}

func (h *AssistantHandler) GetConversations(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	conversations, err := h.assistant.ListConversations(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch conversations"})
	}
	return c.JSON(fiber.Map{"total": len(conversations), "conversations": conversations})
}

func (h *AssistantHandler) GetConversation(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}
	conversation, messages, err := h.assistant.GetConversation(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"conversation": conversation, "messages": messages})
}

func (h *AssistantHandler) DeleteConversation(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}
	if err := h.assistant.DeleteConversation(id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Conversation deleted"})
}

// SendMessage runs one natural-language command through the assistant.
func (h *AssistantHandler) SendMessage(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Message is required"})
	}

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	result, err := h.assistant.ProcessCommand(c.Context(), userID, id, req.Message)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
