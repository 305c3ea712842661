package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// OpenDB opens the SQLite database, applies the schema and loads the demo
// seed data. Every step is idempotent, so restarts are safe.
func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	for _, step := range []func(*sqlx.DB) error{migrate, seedCatalog, seedAccounts} {
		if err := step(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func migrate(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Categories (fixed jewellery set, seeded below)
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);

-- Products. variants_json holds the axis declarations; original_price = 0
-- means the product was never marked down.
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL CHECK (price >= 0),
  original_price NUMERIC NOT NULL DEFAULT 0,
  images_json TEXT,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  rating NUMERIC NOT NULL DEFAULT 0,
  active INTEGER NOT NULL DEFAULT 1,
  variants_json TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_name     ON products(LOWER(name));

-- Carts: one per browser session, coupon rides on the cart.
CREATE TABLE IF NOT EXISTS carts(
  id TEXT PRIMARY KEY,
  session_id TEXT UNIQUE NOT NULL,
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  coupon_code TEXT NOT NULL DEFAULT '',
  updated_at TEXT
);

-- Cart lines are keyed by the canonical variant identity so identical
-- selections dedupe into one row. Price is frozen at add time.
CREATE TABLE IF NOT EXISTS cart_items(
  cart_id     TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  variant_key TEXT NOT NULL,
  product_id  TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  price_at_add NUMERIC NOT NULL,
  variants_json TEXT,
  created_at TEXT,
  updated_at TEXT,
  PRIMARY KEY (cart_id, variant_key)
);

-- Coupons (admin authored discount registry)
CREATE TABLE IF NOT EXISTS coupons(
  code TEXT PRIMARY KEY,
  rate NUMERIC NOT NULL CHECK (rate > 0 AND rate <= 1),
  description TEXT NOT NULL DEFAULT '',
  min_purchase NUMERIC NOT NULL DEFAULT 0,
  expires_at TEXT NOT NULL DEFAULT '',
  active INTEGER NOT NULL DEFAULT 1
);

-- Orders: immutable snapshot at placement; only status moves afterwards.
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  number TEXT UNIQUE NOT NULL,
  session_id TEXT,
  customer_name TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  phone TEXT,
  address TEXT,
  city TEXT,
  state TEXT,
  postal_code TEXT,
  payment_method TEXT NOT NULL,
  coupon_code TEXT NOT NULL DEFAULT '',
  subtotal NUMERIC NOT NULL,
  discount NUMERIC NOT NULL DEFAULT 0,
  shipping NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING',
  placed_at TEXT DEFAULT CURRENT_TIMESTAMP,
  est_delivery TEXT
);
CREATE INDEX IF NOT EXISTS idx_orders_placed_at ON orders(placed_at);

CREATE TABLE IF NOT EXISTS order_items(
  order_id    TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  variant_key TEXT NOT NULL,
  product_id  TEXT NOT NULL REFERENCES products(id),
  name TEXT NOT NULL,
  variant_desc TEXT NOT NULL DEFAULT '',
  qty INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  PRIMARY KEY (order_id, variant_key)
);

-- Wishlists
CREATE TABLE IF NOT EXISTS wishlists(
  id TEXT PRIMARY KEY,
  session_id TEXT UNIQUE NOT NULL,
  updated_at TEXT
);
CREATE TABLE IF NOT EXISTS wishlist_items(
  wishlist_id TEXT NOT NULL REFERENCES wishlists(id) ON DELETE CASCADE,
  product_id  TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  created_at  TEXT,
  PRIMARY KEY (wishlist_id, product_id)
);

-- Compare lists (capped at three members, enforced in the service)
CREATE TABLE IF NOT EXISTS compare_lists(
  id TEXT PRIMARY KEY,
  session_id TEXT UNIQUE NOT NULL,
  updated_at TEXT
);
CREATE TABLE IF NOT EXISTS compare_items(
  compare_id TEXT NOT NULL REFERENCES compare_lists(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  created_at TEXT,
  PRIMARY KEY (compare_id, product_id)
);

-- Users & sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_ci ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
`
	_, err := db.Exec(schema)
	return err
}

// seedCatalog loads the demo categories, products and coupons into a fresh
// database. A non-empty categories table means a previous run already did it.
func seedCatalog(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/products/coupons")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO categories(id,name) VALUES
	  ('rings','Rings'),
	  ('necklaces','Necklaces'),
	  ('earrings','Earrings'),
	  ('bracelets','Bracelets')`)

	tx.MustExec(`INSERT INTO products(id,category_id,name,description,price,original_price,images_json,stock,rating,variants_json) VALUES
	  ('1','rings','Solitaire Diamond Ring','Classic 0.5 ct solitaire on a slim band.',249.00,0,'["products/1/main.jpg"]',12,4.8,
	    '[{"type":"size","label":"Ring Size","required":true,"options":[
	       {"id":"6","name":"6","inStock":true},
	       {"id":"7","name":"7","inStock":true},
	       {"id":"8","name":"8","inStock":true},
	       {"id":"9","name":"9","priceDelta":10,"inStock":true}]}]'),
	  ('2','necklaces','Figaro Chain Necklace','Hand-finished figaro link chain.',123.00,0,'["products/2/main.jpg"]',20,4.6,
	    '[{"type":"length","label":"Length","required":true,"options":[
	       {"id":"16","name":"16 in","inStock":true},
	       {"id":"18","name":"18 in","priceDelta":5,"inStock":true},
	       {"id":"20","name":"20 in","priceDelta":12,"inStock":true}]},
	      {"type":"material","label":"Material","required":true,"options":[
	       {"id":"silver","name":"Sterling Silver","inStock":true},
	       {"id":"gold","name":"14k Gold","priceDelta":50,"inStock":true}]}]'),
	  ('3','earrings','Pearl Drop Earrings','Freshwater pearls on sterling hooks.',87.00,0,'["products/3/main.jpg"]',30,4.7,NULL),
	  ('4','bracelets','Tennis Bracelet','Channel-set cubic zirconia line bracelet.',349.00,399.00,'["products/4/main.jpg"]',8,4.9,
	    '[{"type":"size","label":"Wrist Size","required":false,"options":[
	       {"id":"s","name":"Small (16 cm)","inStock":true},
	       {"id":"m","name":"Medium (18 cm)","inStock":true},
	       {"id":"l","name":"Large (20 cm)","priceDelta":8,"inStock":true}]}]'),
	  ('5','earrings','Gold Hoop Earrings','Lightweight 14k gold-filled hoops.',59.00,0,'["products/5/main.jpg"]',25,4.5,NULL),
	  ('6','necklaces','Vintage Locket Pendant','Engraved oval locket with photo insert.',74.50,89.00,'["products/6/main.jpg"]',14,4.4,NULL)`)

	tx.MustExec(`INSERT INTO coupons(code,rate,description,min_purchase,expires_at,active) VALUES
	  ('SAVE20',0.20,'20% off your order',0,'',1),
	  ('WELCOME10',0.10,'10% off orders over $50',50,'',1),
	  ('VIP25',0.25,'25% off for VIP members',200,'2030-01-01T00:00:00Z',1),
	  ('SPRING15',0.15,'Spring sale (ended)',0,'2024-04-01T00:00:00Z',1)`)

	return tx.Commit()
}

// seedAccounts ensures the demo customers and one ADMIN exist. All share the
// password "Passw0rd!"; the bcrypt hash is computed at seed time so the cost
// factor stays in one place.
func seedAccounts(db *sqlx.DB) error {
	accounts := [][4]string{
		{"u-maya", "maya@aurelia.test", "Maya", "USER"},
		{"u-iris", "iris@aurelia.test", "Iris", "USER"},
		{"u-admin", "admin@aurelia.test", "Admin", "ADMIN"},
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), 12)
	if err != nil {
		return err
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()
	for _, a := range accounts {
		if _, err := tx.Exec(`
		  INSERT INTO users (id, email, name, password_hash, role)
		  VALUES (?, ?, ?, ?, ?)
		  ON CONFLICT(email) DO NOTHING`,
			a[0], a[1], a[2], string(hash), a[3]); err != nil {
			return err
		}
	}
	return tx.Commit()
}
