// Package sqlite persists the alert journal: every delivered alert, one row,
// so /status history and post-hoc analysis survive restarts.
package sqlite

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"forex-botv1/internal/notification"
)

// Journal records delivered alerts in SQLite. Single writer, WAL mode.
type Journal struct {
	db *sql.DB
}

// NewJournal opens (and migrates) the journal database.
func NewJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS alerts (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			subscriber  INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			signal      TEXT NOT NULL,
			price       REAL NOT NULL,
			description TEXT NOT NULL,
			sent_at     INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_alerts_subscriber_sent
			ON alerts(subscriber, sent_at DESC);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite migrate: %w", err)
	}

	log.Printf("[sqlite] opened %s", dbPath)
	return &Journal{db: db}, nil
}

// Record appends one delivered alert.
func (j *Journal) Record(a notification.Alert) error {
	sentAt := a.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now().UTC()
	}
	_, err := j.db.Exec(`
		INSERT INTO alerts (subscriber, symbol, signal, price, description, sent_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.SubscriberID, a.Symbol, a.Signal, a.Price, a.Description, sentAt.Unix())
	if err != nil {
		return fmt.Errorf("sqlite insert alert: %w", err)
	}
	return nil
}

// Recent returns the subscriber's n most recent alerts, newest first.
func (j *Journal) Recent(subscriberID int64, n int) ([]notification.Alert, error) {
	rows, err := j.db.Query(`
		SELECT subscriber, symbol, signal, price, description, sent_at
		FROM alerts
		WHERE subscriber = ?
		ORDER BY sent_at DESC, id DESC
		LIMIT ?
	`, subscriberID, n)
	if err != nil {
		return nil, fmt.Errorf("sqlite query alerts: %w", err)
	}
	defer rows.Close()

	var out []notification.Alert
	for rows.Next() {
		var a notification.Alert
		var sentAt int64
		if err := rows.Scan(&a.SubscriberID, &a.Symbol, &a.Signal, &a.Price, &a.Description, &sentAt); err != nil {
			return nil, fmt.Errorf("sqlite scan alert: %w", err)
		}
		a.SentAt = time.Unix(sentAt, 0).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

// Ping reports whether the database is reachable.
func (j *Journal) Ping() error {
	return j.db.Ping()
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
