//go:build integration
// +build integration

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/guttosm/quotepulse/internal/domain/models"
)

// startPostgres spins up a Postgres container and returns a DSN and terminate func.
func startPostgres(t *testing.T) (dsn string, terminate func()) {
	t.Helper()
	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "quotepulse",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
			return fmt.Sprintf("host=%s port=%s user=postgres password=postgres dbname=quotepulse sslmode=disable", host, port.Port())
		}).WithStartupTimeout(60 * time.Second),
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container start: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/quotepulse?sslmode=disable", host, port.Port())
	terminate = func() { _ = container.Terminate(context.Background()) }
	return dsn, terminate
}

func TestQueryLogRepository_Integration(t *testing.T) {
	dsn, terminate := startPostgres(t)
	defer terminate()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// second run is a no-op
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("migrate again: %v", err)
	}

	repo := NewQueryLogRepository(db)
	price := 130.5
	day := time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)

	entries := []models.QueryLogEntry{
		{ID: "6f1c2a44-1d7e-4a53-9a8e-0c1f4f3f0a01", Symbol: "AAPL", Operation: models.OperationLookup, Argument: "2023-01-10", Outcome: "ok", Price: &price, ResultDate: &day, Elapsed: 12 * time.Millisecond},
		{ID: "6f1c2a44-1d7e-4a53-9a8e-0c1f4f3f0a02", Symbol: "AAPL", Operation: models.OperationLookup, Argument: "2023-01-07", Outcome: "date not found"},
	}
	for _, e := range entries {
		if err := repo.InsertQueryLog(ctx, e); err != nil {
			t.Fatalf("insert %s: %v", e.ID, err)
		}
	}

	var (
		count   int
		nulls   int
		gotDate time.Time
	)
	if err := db.QueryRow(`SELECT COUNT(*), COUNT(*) FILTER (WHERE price IS NULL) FROM query_log WHERE symbol = 'AAPL'`).Scan(&count, &nulls); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 || nulls != 1 {
		t.Fatalf("want 2 rows with 1 null price, got %d/%d", count, nulls)
	}
	if err := db.QueryRow(`SELECT result_date FROM query_log WHERE id = $1`, entries[0].ID).Scan(&gotDate); err != nil {
		t.Fatalf("select: %v", err)
	}
	if !gotDate.Equal(day) {
		t.Fatalf("result_date = %v, want %v", gotDate, day)
	}
}
