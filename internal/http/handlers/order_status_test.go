package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"chatstore/internal/auth"
	"chatstore/internal/commerce"
	"chatstore/internal/http/handlers"
	"chatstore/internal/repos"
)

// statusApp mounts the fulfillment status route behind RequireAdmin, the way
// main.go does, with sid-bound users of both roles.
func statusApp(t *testing.T) (*fiber.App, *sqlx.DB) {
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
	INSERT INTO users(id,email,name,password_hash,role) VALUES
	  (1,'alice@test.local','Alice','x','USER'),
	  (2,'bob@test.local','Bob','x','USER'),
	  (3,'admin@test.local','Admin','x','ADMIN');
	INSERT INTO products(id,name,description,price,stock,rating,category) VALUES
	  (1,'Apple','',180.0,5,4.5,'Fruits');
	INSERT INTO orders(id,user_id,status,total_amount) VALUES (1,1,'pending',180.0);
	INSERT INTO order_items(order_id,product_id,quantity,price_per_unit) VALUES (1,1,1,180.0);
	`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	userRepo := repos.NewUserRepo(db)
	for sid, uid := range map[string]int64{"sid-bob": 2, "sid-admin": 3} {
		if err := userRepo.BindSession(sid, uid); err != nil {
			t.Fatalf("bind session: %v", err)
		}
	}
	authSvc := auth.NewService(userRepo)

	orderSvc := commerce.NewOrderService(db,
		repos.NewCartRepo(db), repos.NewProductRepo(db), repos.NewStockRepo(), repos.NewOrderRepo(db))
	orderH := &handlers.OrderHandler{Orders: orderSvc}

	engine := html.New("../../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	admin := app.Group("/admin", handlers.RequireAdmin(authSvc))
	admin.Post("/orders/:id/status", orderH.UpdateStatus)
	return app, db
}

func postStatus(t *testing.T, app *fiber.App, sid, next string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", "/admin/orders/1/status", strings.NewReader("status="+next))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func orderStatus(t *testing.T, db *sqlx.DB) string {
	t.Helper()
	var s string
	if err := db.Get(&s, `SELECT status FROM orders WHERE id = 1`); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestStatusRouteRejectsNonAdmins(t *testing.T) {
	app, db := statusApp(t)

	// A logged-in regular user cannot advance someone else's order.
	resp := postStatus(t, app, "sid-bob", "processing")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", resp.StatusCode)
	}
	if got := orderStatus(t, db); got != "pending" {
		t.Fatalf("order must be untouched, got %q", got)
	}

	// Anonymous requests bounce to login.
	resp = postStatus(t, app, "", "processing")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected login redirect, got %d", resp.StatusCode)
	}
	if got := orderStatus(t, db); got != "pending" {
		t.Fatalf("order must be untouched, got %q", got)
	}
}

func TestStatusRouteAllowsAdmin(t *testing.T) {
	app, db := statusApp(t)

	resp := postStatus(t, app, "sid-admin", "processing")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect on success, got %d", resp.StatusCode)
	}
	if got := orderStatus(t, db); got != "processing" {
		t.Fatalf("want processing, got %q", got)
	}

	// The legality gate still applies to admins.
	resp = postStatus(t, app, "sid-admin", "delivered")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for illegal transition, got %d", resp.StatusCode)
	}
	if got := orderStatus(t, db); got != "processing" {
		t.Fatalf("illegal transition must not apply, got %q", got)
	}
}
