package sqlite

import "database/sql"

// schema sets up the database on startup. Money columns are TEXT holding
// exact decimal strings; SQLite has no fixed-point type.
// IMPORTANT: users must be created BEFORE the tables that reference it.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    phone TEXT NOT NULL DEFAULT '',
    invited_by TEXT NOT NULL DEFAULT '',
    is_active INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_phone ON users(phone) WHERE phone <> '';

CREATE TABLE IF NOT EXISTS friendships (
    id TEXT PRIMARY KEY,
    user1_id TEXT NOT NULL,
    user2_id TEXT NOT NULL,
    user1_nickname TEXT NOT NULL DEFAULT '',
    user2_nickname TEXT NOT NULL DEFAULT '',
    invited_by TEXT NOT NULL DEFAULT '',
    nett_balance TEXT NOT NULL DEFAULT '0',
    created_at INTEGER NOT NULL,
    UNIQUE (user1_id, user2_id),
    CHECK (user1_id < user2_id),
    FOREIGN KEY (user1_id) REFERENCES users(id) ON DELETE CASCADE,
    FOREIGN KEY (user2_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS receipts (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    bill_id TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL DEFAULT '',
    time TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT '',
    address TEXT NOT NULL DEFAULT '',
    currency TEXT NOT NULL DEFAULT '',
    subtotal_amount TEXT NOT NULL,
    tax_rate TEXT NOT NULL,
    tax_amount TEXT NOT NULL,
    service_charge_rate TEXT NOT NULL,
    service_charge_amount TEXT NOT NULL,
    rounding_adjustment TEXT NOT NULL,
    nett_amount TEXT NOT NULL,
    paid_by TEXT NOT NULL DEFAULT '',
    split_method TEXT NOT NULL,
    items TEXT NOT NULL,
    file_url TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (owner_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS receipt_consumers (
    receipt_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    participant_id TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    contact TEXT NOT NULL DEFAULT '',
    total_paid TEXT NOT NULL,
    breakdown TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (receipt_id, user_id),
    FOREIGN KEY (receipt_id) REFERENCES receipts(id) ON DELETE CASCADE,
    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS contacts (
    owner_id TEXT NOT NULL,
    contact TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    invited_at INTEGER NOT NULL,
    last_used_at INTEGER NOT NULL,
    PRIMARY KEY (owner_id, contact),
    FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_friendships_user1 ON friendships(user1_id, created_at);
CREATE INDEX IF NOT EXISTS idx_friendships_user2 ON friendships(user2_id, created_at);
CREATE INDEX IF NOT EXISTS idx_receipt_consumers_user ON receipt_consumers(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_receipts_owner ON receipts(owner_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
