// Command tallycheck audits the cached vote tallies against the live vote
// rows and reports any drift. It never writes: tallies are maintained
// transactionally with the votes themselves, so drift here means a bug worth
// investigating, not something to paper over.
package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/pollbox/pollbox/internal/platform/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Parse()
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("postgres", cfg.DB.ConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	log.Println("Auditing cached tallies...")

	drift := 0
	drift += reportPollDrift(ctx, db)
	drift += reportOptionDrift(ctx, db)

	if drift > 0 {
		log.Printf("Found %d drifted tallies.", drift)
		os.Exit(1)
	}
	log.Println("All tallies consistent.")
}

func reportPollDrift(ctx context.Context, db *sql.DB) int {
	rows, err := db.QueryContext(ctx, `
		SELECT p.id, p.total_votes, COUNT(v.id)
		FROM polls p
		LEFT JOIN votes v ON v.poll_id = p.id
		GROUP BY p.id
		HAVING p.total_votes <> COUNT(v.id)
	`)
	if err != nil {
		log.Fatalf("Failed to audit poll tallies: %v", err)
	}
	defer rows.Close()

	drift := 0
	for rows.Next() {
		var id string
		var cached, actual int64
		if err := rows.Scan(&id, &cached, &actual); err != nil {
			log.Fatalf("Failed to scan poll drift: %v", err)
		}
		log.Printf("poll %s: total_votes=%d but %d live votes", id, cached, actual)
		drift++
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("Error iterating poll drift: %v", err)
	}
	return drift
}

func reportOptionDrift(ctx context.Context, db *sql.DB) int {
	rows, err := db.QueryContext(ctx, `
		SELECT o.id, o.poll_id, o.vote_count, COUNT(v.id)
		FROM poll_options o
		LEFT JOIN votes v ON v.option_id = o.id
		GROUP BY o.id
		HAVING o.vote_count <> COUNT(v.id)
	`)
	if err != nil {
		log.Fatalf("Failed to audit option tallies: %v", err)
	}
	defer rows.Close()

	drift := 0
	for rows.Next() {
		var id, pollID string
		var cached, actual int64
		if err := rows.Scan(&id, &pollID, &cached, &actual); err != nil {
			log.Fatalf("Failed to scan option drift: %v", err)
		}
		log.Printf("option %s (poll %s): vote_count=%d but %d live votes", id, pollID, cached, actual)
		drift++
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("Error iterating option drift: %v", err)
	}
	return drift
}
