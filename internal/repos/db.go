package repos

import (
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	applog "chatstore/internal/log"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := EnsureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline data if DB is empty (products + demo users)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates all tables if absent. The stock CHECK backs the
// no-negative-stock invariant at the storage layer as well.
func EnsureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Products; stock counts unreserved units only
CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE COLLATE NOCASE,
  description TEXT,
  price NUMERIC NOT NULL CHECK (price >= 0),
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  rating NUMERIC NOT NULL DEFAULT 0,
  category TEXT NOT NULL DEFAULT 'Miscellaneous'
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

-- Cart lines, one per (user, product)
CREATE TABLE IF NOT EXISTS cart_items(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  added_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(user_id, product_id)
);
CREATE INDEX IF NOT EXISTS idx_cart_items_user ON cart_items(user_id);

-- Orders are never deleted; only status and updated_at change
CREATE TABLE IF NOT EXISTS orders(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES users(id),
  status TEXT NOT NULL DEFAULT 'pending',
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  total_amount NUMERIC NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_items(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER NOT NULL REFERENCES orders(id),
  product_id INTEGER NOT NULL REFERENCES products(id),
  quantity INTEGER NOT NULL,
  price_per_unit NUMERIC NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);

-- Users & sessions
CREATE TABLE IF NOT EXISTS users(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'USER',
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id INTEGER NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  last_seen TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Chat history for the assistant
CREATE TABLE IF NOT EXISTS chat_messages(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  timestamp TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  sender TEXT NOT NULL CHECK (sender IN ('user','agent')),
  message_text TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chat_messages_user_ts ON chat_messages(user_id, timestamp);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.Startup("seed.products", nil)

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO products(name,description,price,stock,rating,category) VALUES
	  ('Apple','Fresh Shimla apples, sold per kg',180.00,40,4.5,'Fruits'),
	  ('Banana','Robusta bananas, dozen',60.00,50,4.2,'Fruits'),
	  ('Milk','Full cream milk, 1L pouch',66.00,30,4.6,'Dairy'),
	  ('Bread','Whole wheat loaf, 400g',45.00,20,4.0,'Bakery'),
	  ('Eggs','Farm eggs, dozen',90.00,25,4.3,'Dairy'),
	  ('Basmati Rice','Premium aged basmati, 5kg',550.00,15,4.7,'Grocery'),
	  ('Coffee Powder','Filter coffee, 500g',320.00,10,4.4,'Beverages'),
	  ('Green Tea','Loose leaf green tea, 250g',250.00,12,4.1,'Beverages')`)

	return tx.Commit()
}

// seedUsers ensures demo accounts exist (idempotent; safe to run every start).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		Email, Name, Raw, Role string
	}
	users := []u{
		{"alice@chatstore.test", "Alice", "Passw0rd!", "USER"},
		{"bob@chatstore.test", "Bob", "Passw0rd!", "USER"},
		{"admin@chatstore.test", "Admin", "Passw0rd!", "ADMIN"},
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		h, err := bcrypt.GenerateFromPassword([]byte(x.Raw), 12)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO users(email,name,password_hash,role)
			VALUES(?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.Email, x.Name, string(h), x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
