package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"chatstore/internal/agent"
	"chatstore/internal/catalog"
	"chatstore/internal/commerce"
	"chatstore/internal/domain"
	"chatstore/internal/http/handlers"
	"chatstore/internal/repos"
)

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// csrfApp wires the form-token middleware the way main.go does, in front of
// the cart form handler and the JSON chat endpoint.
func csrfApp(t *testing.T) *fiber.App {
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
	runner := agent.NewRunner(tools, agent.NewSessionCache(8, time.Hour), chatRepo, "test-key")

	cartH := &handlers.CartHandler{Cart: cartSvc}
	chatH := &handlers.ChatHandler{Runner: runner, Chats: chatRepo}

	engine := html.New("../../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Next:           handlers.CSRFSkipJSONChat,
	}))
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", &domain.User{ID: 1, Email: "alice@test.local", Name: "Alice"})
		return c.Next()
	})
	app.Get("/cart", cartH.View)
	app.Post("/cart", cartH.Add)
	app.Post("/chat", chatH.Message)
	return app
}

func TestStateChangingFormsRequireToken(t *testing.T) {
	app := csrfApp(t)

	// Forged cross-site form post: no token, no csrf cookie.
	form := strings.NewReader("product_name=Apple&quantity=1")
	req := httptest.NewRequest("POST", "/cart", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 without token, got %d", resp.StatusCode)
	}

	// Fetch a token, then replay the post with it.
	respGet, err := app.Test(httptest.NewRequest("GET", "/cart", nil))
	if err != nil {
		t.Fatal(err)
	}
	tok := cookieValue(respGet, "csrf_")
	if tok == "" {
		t.Fatal("csrf token missing")
	}

	form = strings.NewReader("csrf=" + tok + "&product_name=Apple&quantity=1")
	req = httptest.NewRequest("POST", "/cart", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: tok})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", resp.StatusCode)
	}
}

func TestJSONChatTurnIsTokenExempt(t *testing.T) {
	app := csrfApp(t)

	req := httptest.NewRequest("POST", "/chat", strings.NewReader(`{"message":"{\"tool\":\"view_cart\"}"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for JSON chat turn, got %d", resp.StatusCode)
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

	// A forged form post to the same path is still rejected.
	req = httptest.NewRequest("POST", "/chat", strings.NewReader("message=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for form post without token, got %d", resp.StatusCode)
	}
}
