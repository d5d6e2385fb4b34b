//go:build ignore
// +build ignore

// Seeds a snapshot row and an active share link for local development.
//
// Creates the tables if they do not exist, inserts one snapshot for the
// given account/upload pair, and prints the share URL. Pair with a local
// MinIO holding the three CSVs under {account}/{upload}/.
//
// Usage:
//   DATABASE_URL=postgres://... ACCOUNT_ID=a1 UPLOAD_ID=u1 go run scripts/seed_demo_share.go

package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

var (
	databaseURL = getEnvOrDefault("DATABASE_URL", "")
	accountID   = getEnvOrDefault("ACCOUNT_ID", "demo-account")
	uploadID    = getEnvOrDefault("UPLOAD_ID", "demo-upload")
	baseURL     = getEnvOrDefault("BASE_URL", "http://localhost:8080")
)

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id              TEXT PRIMARY KEY,
	account_id      TEXT NOT NULL,
	upload_id       TEXT,
	status          TEXT NOT NULL DEFAULT 'pending',
	last_email_date TIMESTAMPTZ,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS share_links (
	share_token      TEXT PRIMARY KEY,
	snapshot_id      TEXT NOT NULL REFERENCES snapshots(id),
	is_active        BOOLEAN NOT NULL DEFAULT TRUE,
	expires_at       TIMESTAMPTZ,
	access_count     INTEGER NOT NULL DEFAULT 0,
	last_accessed_at TIMESTAMPTZ,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS storage_objects (
	bucket_id  TEXT NOT NULL,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (bucket_id, name)
);
`

func main() {
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		log.Fatalf("create tables: %v", err)
	}

	snapshotID := uuid.New().String()
	token := uuid.New().String()

	if _, err := db.Exec(`
		INSERT INTO snapshots (id, account_id, upload_id, status)
		VALUES ($1, $2, $3, 'ready')
	`, snapshotID, accountID, uploadID); err != nil {
		log.Fatalf("insert snapshot: %v", err)
	}

	if _, err := db.Exec(`
		INSERT INTO share_links (share_token, snapshot_id, is_active)
		VALUES ($1, $2, TRUE)
	`, token, snapshotID); err != nil {
		log.Fatalf("insert share link: %v", err)
	}

	fmt.Printf("snapshot: %s\n", snapshotID)
	fmt.Printf("share:    %s/shared/%s/data\n", baseURL, token)
}
