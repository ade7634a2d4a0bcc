//go:build integration

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"hotel_booking/internal/domain"
	mysqlrepo "hotel_booking/internal/storage/mysql"
)

// ---------- small helpers ----------
// migrationsDir honours MIGRATIONS_DIR and falls back to the repo's own.
func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "..", "migrations", "mysql")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// ---------- the test ----------
func TestRepo_MySQL_VisitsAndRatings(t *testing.T) {
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=hotels",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "hotels")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// Arrange: hotel snapshot, then two visits
	hs := []domain.Hotel{
		{ID: "h-1", Title: "Hotel One", Room: "single", Price: domain.Price{Amount: 100}, Rating: domain.Rating{Average: 4.2, Reviews: 10}},
		{ID: "h-2", Title: "Hotel Two", Room: "double", Price: domain.Price{Amount: 50}, Rating: domain.Rating{Average: 3.9, Reviews: 5}},
	}
	if err := repo.UpsertHotels(ctx, hs); err != nil {
		t.Fatalf("UpsertHotels: %v", err)
	}
	// upsert again with a new title: must update, not duplicate
	hs[0].Title = "Hotel One Renamed"
	if err := repo.UpsertHotels(ctx, hs[:1]); err != nil {
		t.Fatalf("UpsertHotels (update): %v", err)
	}

	v1, err := repo.RecordVisit(ctx, "h-1", 4)
	if err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}
	if v1.Title != "Hotel One Renamed" || v1.Room != "single" {
		t.Fatalf("unexpected visit: %+v", v1)
	}
	if _, err := repo.RecordVisit(ctx, "h-2", 3); err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}

	// Assert: paging by cursor keeps insertion order
	page1, err := repo.FetchRatedHotels(ctx, 0, 1)
	if err != nil {
		t.Fatalf("FetchRatedHotels: %v", err)
	}
	if len(page1) != 1 || page1[0].HotelID != "h-1" {
		t.Fatalf("unexpected page1: %+v", page1)
	}
	page2, err := repo.FetchRatedHotels(ctx, page1[0].VisitID, 10)
	if err != nil {
		t.Fatalf("FetchRatedHotels: %v", err)
	}
	if len(page2) != 1 || page2[0].HotelID != "h-2" || page2[0].UserRating != 3 {
		t.Fatalf("unexpected page2: %+v", page2)
	}

	// same value twice must not look like a missing row
	if err := repo.RateVisit(ctx, v1.VisitID, 5); err != nil {
		t.Fatalf("RateVisit: %v", err)
	}
	if err := repo.RateVisit(ctx, v1.VisitID, 5); err != nil {
		t.Fatalf("RateVisit (unchanged): %v", err)
	}
	if err := repo.RateVisit(ctx, 999999, 5); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
