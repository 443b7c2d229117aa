package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/ignite/partner-console/internal/repository/fixture"
	"github.com/ignite/partner-console/internal/repository/postgres"
)

func main() {
	dir := flag.String("dir", "migrations", "directory of .sql migrations")
	listOnly := flag.Bool("list", false, "list partner tables and exit")
	seed := flag.String("seed", "", "fixture YAML to import after migrating")
	flag.Parse()

	_ = godotenv.Load()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping: %v", err)
	}
	log.Println("Connected to database")

	if *listOnly {
		if err := listTables(db); err != nil {
			log.Fatal(err)
		}
		return
	}

	okCount, errCount, err := applyMigrations(db, *dir)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Done: %d OK, %d errors", okCount, errCount)
	if errCount > 0 {
		os.Exit(1)
	}

	if *seed != "" {
		if err := seedFixture(context.Background(), db, *seed); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}
	log.Println("Migrations complete")
}

func listTables(db *sql.DB) error {
	rows, err := db.Query("SELECT tablename FROM pg_tables WHERE schemaname='public' AND tablename LIKE 'partner_%' ORDER BY tablename")
	if err != nil {
		return err
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return err
		}
		fmt.Println(" ", t)
		n++
	}
	fmt.Printf("Total: %d tables\n", n)
	return rows.Err()
}

// applyMigrations runs every .sql file in dir in name order, each in its
// own transaction.
func applyMigrations(db *sql.DB, dir string) (okCount, errCount int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read migrations dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		path := filepath.Join(dir, f)
		data, err := os.ReadFile(path)
		if err != nil {
			return okCount, errCount, fmt.Errorf("read %s: %w", path, err)
		}
		content := string(data)
		if strings.TrimSpace(content) == "" {
			continue
		}
		fmt.Printf("  %s ... ", f)

		tx, err := db.Begin()
		if err != nil {
			fmt.Printf("BEGIN ERROR: %v\n", err)
			errCount++
			continue
		}
		if _, err := tx.Exec(content); err != nil {
			tx.Rollback()
			fmt.Printf("ERROR: %v\n", err)
			errCount++
			continue
		}
		if err := tx.Commit(); err != nil {
			fmt.Printf("COMMIT ERROR: %v\n", err)
			errCount++
			continue
		}
		fmt.Println("OK")
		okCount++
	}
	return okCount, errCount, nil
}

func seedFixture(ctx context.Context, db *sql.DB, path string) error {
	src, err := fixture.Load(ctx, path, nil)
	if err != nil {
		return err
	}
	repo := postgres.NewRosterRepo(db)
	for _, c := range src.Campaigns() {
		if err := repo.ImportCampaign(ctx, c.Campaign, c.Retailers, c.Overrides); err != nil {
			return fmt.Errorf("import %s: %w", c.ID, err)
		}
		log.Printf("Seeded campaign %s: %d retailers, %d overrides", c.ID, len(c.Retailers), len(c.Overrides))
	}
	return nil
}
