package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"chatstore/internal/domain"
	applog "chatstore/internal/log"
	"chatstore/internal/repos"
)

// Command is the structured form the chat frontend sends. The language model
// that turns free text into commands is an external collaborator; this runner
// only executes the tool calls it produces.
type Command struct {
	Tool        string `json:"tool"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
	OrderID     int64  `json:"order_id,omitempty"`
}

const helpText = "I can help you with ChatStore. Available tools: " +
	"get_product_info, add_item_to_cart, view_cart, remove_item_from_cart, " +
	"proceed_to_checkout, view_orders, cancel_order, request_return, get_user_profile."

type Runner struct {
	Tools  *Tools
	Cache  *SessionCache
	Chats  *repos.ChatRepo
	APIKey string
}

func NewRunner(tools *Tools, cache *SessionCache, chats *repos.ChatRepo, apiKey string) *Runner {
	return &Runner{Tools: tools, Cache: cache, Chats: chats, APIKey: apiKey}
}

// Handle executes one chat turn: parse the command, run the tool through the
// user's session, persist both sides of the exchange. A failure to persist is
// logged but does not lose the reply.
func (r *Runner) Handle(userID int64, raw string) string {
	sess := r.Cache.Get(userID, r.APIKey)
	sess.Exchanges++

	reply := r.dispatch(userID, raw)

	if err := r.Chats.Save(userID, domain.SenderUser, raw); err != nil {
		applog.Error(nil, "chat.save", err, map[string]any{"user_id": userID})
	}
	if err := r.Chats.Save(userID, domain.SenderAgent, reply); err != nil {
		applog.Error(nil, "chat.save", err, map[string]any{"user_id": userID})
	}
	return reply
}

func (r *Runner) dispatch(userID int64, raw string) string {
	var cmd Command
	if err := json.Unmarshal([]byte(raw), &cmd); err != nil || cmd.Tool == "" {
		return helpText
	}

	switch strings.ToLower(cmd.Tool) {
	case "get_product_info":
		return r.Tools.GetProductInfo(cmd.ProductName)
	case "add_item_to_cart":
		return r.Tools.AddItemToCart(userID, cmd.ProductName, cmd.Quantity)
	case "view_cart":
		return r.Tools.ViewCart(userID)
	case "remove_item_from_cart":
		return r.Tools.RemoveItemFromCart(userID, cmd.ProductName)
	case "proceed_to_checkout":
		return r.Tools.ProceedToCheckout(userID)
	case "view_orders":
		return r.Tools.ViewOrders(userID)
	case "cancel_order":
		return r.Tools.CancelOrder(userID, cmd.OrderID)
	case "request_return":
		return r.Tools.RequestReturn(userID, cmd.OrderID)
	case "get_user_profile":
		return r.Tools.GetUserProfile(userID)
	default:
		return fmt.Sprintf("I don't know the tool '%s'. %s", cmd.Tool, helpText)
	}
}

// ClearHistory wipes the user's conversation and evicts their cached session,
// so the next message starts fresh.
func (r *Runner) ClearHistory(userID int64) (int64, error) {
	n, err := r.Chats.Clear(userID)
	if err != nil {
		return 0, err
	}
	r.Cache.Invalidate(userID)
	return n, nil
}
