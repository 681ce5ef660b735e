package handlers

import (
	"github.com/gofiber/fiber/v2"

	"chatstore/internal/agent"
	applog "chatstore/internal/log"
	"chatstore/internal/repos"
	"chatstore/internal/validate"
)

const initialChatLimit = 50

type ChatHandler struct {
	Runner *agent.Runner
	Chats  *repos.ChatRepo
}

// Page renders the chat interface with the latest history in the sidebar.
func (h *ChatHandler) Page(c *fiber.Ctx) error {
	u := currentUser(c)
	history, err := h.Chats.History(u.ID, initialChatLimit, 0)
	if err != nil {
		applog.Error(c, "chat.history.load", err, nil)
		history = nil
	}
	total, err := h.Chats.Count(u.ID)
	if err != nil {
		total = len(history)
	}
	return render(c, "chat", fiber.Map{"History": history, "Total": total})
}

// Message handles one chat turn over JSON:
// {"message": "{\"tool\":\"view_cart\"}"} -> {"response": "..."}.
func (h *ChatHandler) Message(c *fiber.Ctx) error {
	u := currentUser(c)

	var body struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&body); err != nil {
		applog.Security(c, "chat.badjson", nil)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Request must be JSON"})
	}
	if body.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing 'message' in request body"})
	}

	reply := h.Runner.Handle(u.ID, body.Message)
	applog.Info(c, "chat.turn", map[string]any{"user_id": u.ID})
	return c.JSON(fiber.Map{"response": reply})
}

// History pages through past messages, latest first.
func (h *ChatHandler) History(c *fiber.Ctx) error {
	u := currentUser(c)
	limit := validate.Qty(c.Query("limit", "50"))
	offset := int(validate.ID(c.Query("offset", "0")))

	msgs, err := h.Chats.History(u.ID, limit, offset)
	if err != nil {
		applog.Error(c, "chat.history", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not load history"})
	}
	total, err := h.Chats.Count(u.ID)
	if err != nil {
		total = len(msgs)
	}
	return c.JSON(fiber.Map{"messages": msgs, "total": total})
}

// Clear wipes the conversation and the cached agent session.
func (h *ChatHandler) Clear(c *fiber.Ctx) error {
	u := currentUser(c)
	n, err := h.Runner.ClearHistory(u.ID)
	if err != nil {
		applog.Error(c, "chat.clear", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not clear history"})
	}
	applog.Audit(c, "chat.clear", map[string]any{"user_id": u.ID, "deleted": n})
	return c.JSON(fiber.Map{"deleted": n})
}
