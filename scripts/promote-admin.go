// Command promote-admin grants admin to an account, creating it if needed.
//
// Run with: go run scripts/promote-admin.go -email ops@example.com -password secret
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/waxlog/waxlog/internal/seeder"
)

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", os.Getenv("ADMIN_EMAIL"), "Admin account email")
		password    = flag.String("password", os.Getenv("ADMIN_PASSWORD"), "Password if the account has to be created")
		quiet       = flag.Bool("quiet", false, "Suppress log output")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "email and password are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := sql.Open("postgres", *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open database:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "ping database:", err)
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	if *quiet {
		out = io.Discard
	}
	logger := slog.New(slog.NewTextHandler(out, nil))

	s := seeder.New(logger, seeder.NewRepository(db), nil, nil)
	if err := s.EnsureAdmin(ctx, *email, *password); err != nil {
		fmt.Fprintln(os.Stderr, "promote admin:", err)
		os.Exit(1)
	}

	fmt.Printf("admin ready: %s\n", *email)
}
