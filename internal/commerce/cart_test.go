package commerce_test

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"chatstore/internal/commerce"
	"chatstore/internal/domain"
	"chatstore/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// One connection so the in-memory DB and its pragmas are shared.
	db.SetMaxOpenConns(1)
	if err := repos.EnsureSchema(db); err != nil {
		t.Fatal(err)
	}
	seed := `
	INSERT INTO users(id,email,name,password_hash) VALUES
	  (1,'alice@test.local','Alice','x'),
	  (2,'bob@test.local','Bob','x');
	INSERT INTO products(id,name,description,price,stock,rating,category) VALUES
	  (1,'Apple','Fresh apples',180.0,5,4.5,'Fruits'),
	  (2,'Banana','Ripe bananas',60.0,10,4.2,'Fruits'),
	  (3,'Milk','Full cream 1L',66.0,0,4.6,'Dairy');
	`
	if _, err := db.Exec(seed); err != nil {
		t.Fatal(err)
	}
	return db
}

func newCartService(db *sqlx.DB) *commerce.CartService {
	return commerce.NewCartService(db,
		repos.NewCartRepo(db), repos.NewProductRepo(db), repos.NewStockRepo())
}

func stockOf(t *testing.T, db *sqlx.DB, productID int64) int {
	t.Helper()
	var n int
	if err := db.Get(&n, `SELECT stock FROM products WHERE id=?`, productID); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestAddReservesAdditionalQuantityOnly(t *testing.T) {
	db := memdb(t)
	cart := newCartService(db)

	msg, err := cart.Add(1, "Apple", 3)
	if err != nil {
		t.Fatal(err)
	}
	if msg != "Added 3 x Apple to your cart." {
		t.Fatalf("unexpected message: %q", msg)
	}
	if got := stockOf(t, db, 1); got != 2 {
		t.Fatalf("want stock=2, got %d", got)
	}

	// Second add of 3 exceeds the remaining 2 units.
	_, err = cart.Add(1, "Apple", 3)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock, got %v", err)
	}
	if got := stockOf(t, db, 1); got != 2 {
		t.Fatalf("failed add must not change stock; got %d", got)
	}
	var qty int
	if err := db.Get(&qty, `SELECT quantity FROM cart_items WHERE user_id=1 AND product_id=1`); err != nil {
		t.Fatal(err)
	}
	if qty != 3 {
		t.Fatalf("failed add must not change line; got qty=%d", qty)
	}

	// Adding the remaining 2 merges to a line of 5 and drains stock.
	msg, err = cart.Add(1, "Apple", 2)
	if err != nil {
		t.Fatal(err)
	}
	if msg != "Updated Apple quantity to 5 in your cart." {
		t.Fatalf("unexpected message: %q", msg)
	}
	if got := stockOf(t, db, 1); got != 0 {
		t.Fatalf("want stock=0, got %d", got)
	}
}

func TestAddRejectsBadInput(t *testing.T) {
	db := memdb(t)
	cart := newCartService(db)

	if _, err := cart.Add(1, "Apple", 0); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("want ErrInvalidQuantity, got %v", err)
	}
	if _, err := cart.Add(1, "Dragonfruit", 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("want ErrProductNotFound, got %v", err)
	}
	// Out-of-stock product fails on the first unit.
	if _, err := cart.Add(1, "Milk", 1); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock, got %v", err)
	}
}

func TestAddMatchesNameCaseInsensitively(t *testing.T) {
	db := memdb(t)
	cart := newCartService(db)

	if _, err := cart.Add(1, "aPpLe", 1); err != nil {
		t.Fatal(err)
	}
	if got := stockOf(t, db, 1); got != 4 {
		t.Fatalf("want stock=4, got %d", got)
	}
}

func TestRemoveReleasesWholeLine(t *testing.T) {
	db := memdb(t)
	cart := newCartService(db)

	if _, err := cart.Add(1, "Apple", 4); err != nil {
		t.Fatal(err)
	}
	msg, err := cart.Remove(1, "Apple")
	if err != nil {
		t.Fatal(err)
	}
	if msg != "Removed Apple from your cart." {
		t.Fatalf("unexpected message: %q", msg)
	}
	if got := stockOf(t, db, 1); got != 5 {
		t.Fatalf("want stock back to 5, got %d", got)
	}

	if _, err := cart.Remove(1, "Apple"); !errors.Is(err, domain.ErrItemNotInCart) {
		t.Fatalf("want ErrItemNotInCart, got %v", err)
	}
}

func TestContentsOrderedAndTotalled(t *testing.T) {
	db := memdb(t)
	cart := newCartService(db)

	if _, err := cart.Add(1, "Apple", 2); err != nil {
		t.Fatal(err)
	}
	if _, err := cart.Add(1, "Banana", 3); err != nil {
		t.Fatal(err)
	}

	lines, err := cart.Contents(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d", len(lines))
	}
	if lines[0].Name != "Apple" || lines[1].Name != "Banana" {
		t.Fatalf("lines not in insertion order: %+v", lines)
	}
	total, err := cart.Total(1)
	if err != nil {
		t.Fatal(err)
	}
	want := 2*180.0 + 3*60.0
	if total != want {
		t.Fatalf("want total %.2f, got %.2f", want, total)
	}

	// Another user's cart stays empty.
	other, err := cart.Contents(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Fatalf("user 2 cart should be empty, got %+v", other)
	}
}

func TestClearReleasesEverything(t *testing.T) {
	db := memdb(t)
	cart := newCartService(db)

	if _, err := cart.Add(1, "Apple", 2); err != nil {
		t.Fatal(err)
	}
	if _, err := cart.Add(1, "Banana", 3); err != nil {
		t.Fatal(err)
	}

	if err := cart.Clear(1); err != nil {
		t.Fatal(err)
	}
	if got := stockOf(t, db, 1); got != 5 {
		t.Fatalf("want apple stock 5, got %d", got)
	}
	if got := stockOf(t, db, 2); got != 10 {
		t.Fatalf("want banana stock 10, got %d", got)
	}
	lines, _ := cart.Contents(1)
	if len(lines) != 0 {
		t.Fatalf("cart should be empty, got %+v", lines)
	}

	// Clearing an empty cart is a no-op.
	if err := cart.Clear(1); err != nil {
		t.Fatal(err)
	}
}
