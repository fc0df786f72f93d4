package sink

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

const dedupeSchema = `
CREATE TABLE IF NOT EXISTS emitted (
	posting_url TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL,
	emitted_at  TEXT NOT NULL
);`

// DedupeSink wraps another sink and skips postings whose URL was already
// emitted in a previous run, using an embedded SQLite ledger. Without this
// wrapper the output stays append-only per run.
type DedupeSink struct {
	inner Sink
	db    *sql.DB
	runID string
}

// WithDedupe opens (or creates) the dedupe ledger at dbPath and wraps
// inner. runID tags this run's entries in the ledger.
func WithDedupe(inner Sink, dbPath, runID string) (*DedupeSink, error) {
	// modernc sqlite DSN; a busy timeout covers concurrent appenders.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open dedupe db %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1) // sqlite wants a single writer
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping dedupe db %s: %w", dbPath, err)
	}
	if _, err := db.ExecContext(ctx, dedupeSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize dedupe db %s: %w", dbPath, err)
	}

	return &DedupeSink{inner: inner, db: db, runID: runID}, nil
}

// Append implements Sink. A posting URL already present in the ledger is
// skipped silently except for a log line; new ones are passed through and
// recorded only after the wrapped sink accepts the row, so a failed write
// never poisons later runs.
func (s *DedupeSink) Append(postingURL string, row Row) error {
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO emitted (posting_url, run_id, emitted_at) VALUES (?, ?, ?)`,
		postingURL, s.runID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record posting %s: %w", postingURL, err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to record posting %s: %w", postingURL, err)
	}
	if inserted == 0 {
		log.Printf("[SINK] skipping previously emitted posting: %s", postingURL)
		return nil
	}
	if err := s.inner.Append(postingURL, row); err != nil {
		// Roll the claim back: the row was never written.
		if _, delErr := s.db.Exec(`DELETE FROM emitted WHERE posting_url = ?`, postingURL); delErr != nil {
			log.Printf("[SINK] failed to release ledger entry for %s: %v", postingURL, delErr)
		}
		return err
	}
	return nil
}

// Close closes the ledger and the wrapped sink.
func (s *DedupeSink) Close() error {
	dbErr := s.db.Close()
	if err := s.inner.Close(); err != nil {
		return err
	}
	return dbErr
}
