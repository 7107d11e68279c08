package storage

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// NewMySQLStore opens a MySQL-backed store. This is the relational driver for
// deployments where multiple server processes share one database.
func NewMySQLStore(dsn string) (*SQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	if err := createMySQLTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLStore] Initialized with MySQL backend")
	return &SQLStore{
		db: db,
		dialect: dialect{
			name:            "mysql",
			forUpdate:       " FOR UPDATE",
			blacklistInsert: `INSERT IGNORE INTO blacklist(item) VALUES (?)`,
			nameUpsert:      `INSERT INTO uuid_cache(uuid, name) VALUES (?, ?) ON DUPLICATE KEY UPDATE name = VALUES(name)`,
		},
	}, nil
}

// mysqlSchema creates the marketplace tables. The blacklist and event-log
// item columns share one width: every item id that fits the event log must
// also fit the blacklist.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS listings (
		id INT PRIMARY KEY AUTO_INCREMENT,
		seller_uuid VARCHAR(36) NOT NULL,
		item TEXT NOT NULL,
		stock INT NOT NULL,
		price INT NOT NULL,
		quantity INT NOT NULL,
		INDEX idx_seller (seller_uuid)
	)`,
	`CREATE TABLE IF NOT EXISTS blacklist (
		item VARCHAR(255) PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS uuid_cache (
		uuid VARCHAR(36) PRIMARY KEY,
		name VARCHAR(64) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS market_events (
		id INT PRIMARY KEY AUTO_INCREMENT,
		type VARCHAR(64) NOT NULL,
		item VARCHAR(255) NOT NULL,
		processed TINYINT(1) NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
}

func createMySQLTables(db *sql.DB) error {
	for _, stmt := range mysqlSchema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
