package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"chatstore/internal/agent"
	"chatstore/internal/catalog"
	"chatstore/internal/commerce"
	"chatstore/internal/domain"
	"chatstore/internal/http/handlers"
	"chatstore/internal/repos"
)

// chatApp builds a minimal app around the JSON chat endpoints, with a stub
// middleware standing in for the real session lookup.
func chatApp(t *testing.T) (*fiber.App, *agent.SessionCache) {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := repos.EnsureSchema(db); err != nil {
		t.Fatalf("schema: %v", err)
	}
	if _, err := db.Exec(`
	INSERT INTO users(id,email,name,password_hash) VALUES (1,'alice@test.local','Alice','x');
	INSERT INTO products(id,name,description,price,stock,rating,category) VALUES
	  (1,'Apple','Fresh apples',180.0,5,4.5,'Fruits');
	`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	prodRepo := repos.NewProductRepo(db)
	stockRepo := repos.NewStockRepo()
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	userRepo := repos.NewUserRepo(db)
	chatRepo := repos.NewChatRepo(db)

	cartSvc := commerce.NewCartService(db, cartRepo, prodRepo, stockRepo)
	orderSvc := commerce.NewOrderService(db, cartRepo, prodRepo, stockRepo, orderRepo)
	tools := agent.NewTools(cartSvc, orderSvc, catalog.NewService(prodRepo), userRepo)
	cache := agent.NewSessionCache(8, time.Hour)
	runner := agent.NewRunner(tools, cache, chatRepo, "test-key")
	chatH := &handlers.ChatHandler{Runner: runner, Chats: chatRepo}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", &domain.User{ID: 1, Email: "alice@test.local", Name: "Alice"})
		return c.Next()
	})
	app.Post("/chat", chatH.Message)
	app.Get("/chat/history", chatH.History)
	app.Post("/chat/clear", chatH.Clear)
	return app, cache
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestChatMessageRejectsBadBodies(t *testing.T) {
	app, _ := chatApp(t)

	req := httptest.NewRequest("POST", "/chat", strings.NewReader("plain text"))
	req.Header.Set("Content-Type", "text/plain")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-JSON body, got %d", resp.StatusCode)
	}

	resp = postJSON(t, app, "/chat", `{"other":"field"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing message, got %d", resp.StatusCode)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "Missing 'message' in request body" {
		t.Fatalf("unexpected error text: %q", body.Error)
	}
}

func TestChatTurnAndHistoryRoundTrip(t *testing.T) {
	app, _ := chatApp(t)

	resp := postJSON(t, app, "/chat", `{"message":"{\"tool\":\"view_cart\"}"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var turn struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&turn); err != nil {
		t.Fatal(err)
	}
	if turn.Response != "Your shopping cart is currently empty." {
		t.Fatalf("unexpected reply: %q", turn.Response)
	}

	respHist, err := app.Test(httptest.NewRequest("GET", "/chat/history", nil))
	if err != nil {
		t.Fatal(err)
	}
	if respHist.StatusCode != http.StatusOK {
		t.Fatalf("history status %d", respHist.StatusCode)
	}
	var hist struct {
		Messages []domain.ChatMessage `json:"messages"`
		Total    int                  `json:"total"`
	}
	if err := json.NewDecoder(respHist.Body).Decode(&hist); err != nil {
		t.Fatal(err)
	}
	if hist.Total != 2 || len(hist.Messages) != 2 {
		t.Fatalf("expected both sides of the turn persisted, got total=%d len=%d", hist.Total, len(hist.Messages))
	}
	// Latest-first: the agent reply comes before the user message.
	if hist.Messages[0].Sender != domain.SenderAgent {
		t.Fatalf("expected agent message first, got %s", hist.Messages[0].Sender)
	}
}

func TestChatClearWipesHistoryAndSession(t *testing.T) {
	app, cache := chatApp(t)

	postJSON(t, app, "/chat", `{"message":"{\"tool\":\"view_cart\"}"}`)
	if cache.Len() != 1 {
		t.Fatalf("expected cached session after a turn, got %d", cache.Len())
	}

	resp := postJSON(t, app, "/chat/clear", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clear status %d", resp.StatusCode)
	}
	var cleared struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cleared); err != nil {
		t.Fatal(err)
	}
	if cleared.Deleted != 2 {
		t.Fatalf("expected 2 deleted rows, got %d", cleared.Deleted)
	}
	if cache.Len() != 0 {
		t.Fatalf("expected session evicted after clear, got %d", cache.Len())
	}
}
