package storage

import (
	"database/sql"
	"fmt"
	"log"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// NewSQLiteStore opens a SQLite-backed store for single-node deployments and
// development. SQLite has no FOR UPDATE; writers already serialize through
// the single connection, which gives purchases the same lost-update safety.
func NewSQLiteStore(dbPath string) (*SQLStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSQLiteTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLStore] Initialized with SQLite database: %s", dbPath)
	return &SQLStore{
		db: db,
		dialect: dialect{
			name:            "sqlite",
			forUpdate:       "",
			blacklistInsert: `INSERT OR IGNORE INTO blacklist(item) VALUES (?)`,
			nameUpsert:      `INSERT INTO uuid_cache(uuid, name) VALUES (?, ?) ON CONFLICT(uuid) DO UPDATE SET name = excluded.name`,
		},
	}, nil
}

func createSQLiteTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS listings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seller_uuid TEXT NOT NULL,
		item TEXT NOT NULL,
		stock INTEGER NOT NULL,
		price INTEGER NOT NULL,
		quantity INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_seller ON listings(seller_uuid);
	CREATE TABLE IF NOT EXISTS blacklist (
		item TEXT PRIMARY KEY
	);
	CREATE TABLE IF NOT EXISTS uuid_cache (
		uuid TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS market_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		item TEXT NOT NULL,
		processed INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(query)
	return err
}
