package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-folio/internal/logging/gologger"
	"github.com/goliatone/go-folio/internal/seed"
	"github.com/goliatone/go-folio/internal/store"
)

func main() {
	if err := runSeed(os.Args[1:]); err != nil {
		log.Fatalf("seed: %v", err)
	}
}

func runSeed(args []string) error {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	dataDir := fs.String("data-dir", "seed/data", "Directory holding <collection>.json seed files")
	postsDir := fs.String("posts-dir", "seed/posts", "Directory holding markdown blog posts")
	dsn := fs.String("dsn", envOr("FOLIO_DSN", ""), "SQLite DSN; empty runs against an in-memory store")
	logLevel := fs.String("log-level", envOr("FOLIO_LOG_LEVEL", "info"), "Log level")
	dryRun := fs.Bool("dry-run", false, "Preview changes without persisting documents")

	if err := fs.Parse(args); err != nil {
		return err
	}

	provider, err := gologger.NewProvider(gologger.Config{
		Level:  *logLevel,
		Format: "console",
	})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	ctx := context.Background()

	st, cleanup, err := buildStore(ctx, *dsn)
	if err != nil {
		return err
	}
	defer cleanup()

	importer, err := seed.NewImporter(st,
		seed.WithLogger(provider),
		seed.WithDryRun(*dryRun),
	)
	if err != nil {
		return err
	}

	var total seed.Report
	if *dataDir != "" {
		report, err := importer.ImportDocuments(ctx, *dataDir)
		if err != nil {
			return err
		}
		total.Documents += report.Documents
		total.Skipped += report.Skipped
	}
	if *postsDir != "" {
		report, err := importer.ImportPosts(ctx, *postsDir)
		if err != nil {
			return err
		}
		total.Posts += report.Posts
		total.Skipped += report.Skipped
	}

	fmt.Fprintf(os.Stdout, "seeded %d documents, %d posts (%d skipped)\n",
		total.Documents, total.Posts, total.Skipped)
	return nil
}

func buildStore(ctx context.Context, dsn string) (store.Store, func(), error) {
	if dsn == "" {
		return store.NewMemory(), func() {}, nil
	}

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	bunDB := bun.NewDB(sqlDB, sqlitedialect.New())
	if err := store.ResetModels(ctx, bunDB); err != nil {
		_ = bunDB.Close()
		return nil, nil, fmt.Errorf("create tables: %w", err)
	}
	cleanup := func() {
		_ = bunDB.Close()
	}
	return store.NewBun(bunDB), cleanup, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
