package audit_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/chassisd/internal/audit"
	"github.com/nerrad567/chassisd/internal/infrastructure/database"

	_ "github.com/nerrad567/chassisd/migrations"
)

func testRepo(t *testing.T) *audit.SQLiteRepository {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{
		Path:        filepath.Join(t.TempDir(), "audit.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	return audit.NewSQLiteRepository(db.DB)
}

func record(t *testing.T, repo *audit.SQLiteRepository, entry *audit.Entry) {
	t.Helper()
	if err := repo.Record(context.Background(), entry); err != nil {
		t.Fatalf("recording entry: %v", err)
	}
}

func TestRecordGeneratesIDAndTimestamp(t *testing.T) {
	repo := testRepo(t)

	entry := &audit.Entry{
		GroupName: "rack-a",
		Endpoint:  "db-01",
		Action:    "on",
		Outcome:   "success",
	}
	record(t, repo, entry)

	if entry.ID == "" {
		t.Error("ID not generated")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("CreatedAt not generated")
	}
}

func TestListScopedToGroup(t *testing.T) {
	repo := testRepo(t)

	record(t, repo, &audit.Entry{GroupName: "rack-a", Endpoint: "db-01", Action: "on", Outcome: "success"})
	record(t, repo, &audit.Entry{GroupName: "rack-a", Endpoint: "db-02", Action: "off", Outcome: "success"})
	record(t, repo, &audit.Entry{GroupName: "lab", Endpoint: "bench-01", Action: "reset", Outcome: "success"})

	result, err := repo.List(context.Background(), audit.Filter{GroupName: "rack-a"})
	if err != nil {
		t.Fatalf("listing: %v", err)
	}

	if result.Total != 2 {
		t.Errorf("Total = %d, want 2", result.Total)
	}
	for _, e := range result.Entries {
		if e.GroupName != "rack-a" {
			t.Errorf("entry from foreign group leaked: %+v", e)
		}
	}
}

func TestListRequiresGroup(t *testing.T) {
	repo := testRepo(t)

	if _, err := repo.List(context.Background(), audit.Filter{}); err == nil {
		t.Fatal("expected error for missing group name")
	}
}

func TestListFilters(t *testing.T) {
	repo := testRepo(t)

	record(t, repo, &audit.Entry{GroupName: "rack-a", Endpoint: "db-01", Action: "on", Outcome: "success"})
	record(t, repo, &audit.Entry{GroupName: "rack-a", Endpoint: "db-01", Action: "off", Outcome: "success"})
	record(t, repo, &audit.Entry{GroupName: "rack-a", Endpoint: "db-02", Action: "on", Outcome: "execution_failed", Detail: "timeout"})

	byEndpoint, err := repo.List(context.Background(), audit.Filter{GroupName: "rack-a", Endpoint: "db-01"})
	if err != nil {
		t.Fatalf("listing by endpoint: %v", err)
	}
	if byEndpoint.Total != 2 {
		t.Errorf("endpoint filter Total = %d, want 2", byEndpoint.Total)
	}

	byAction, err := repo.List(context.Background(), audit.Filter{GroupName: "rack-a", Action: "on"})
	if err != nil {
		t.Fatalf("listing by action: %v", err)
	}
	if byAction.Total != 2 {
		t.Errorf("action filter Total = %d, want 2", byAction.Total)
	}

	both, err := repo.List(context.Background(), audit.Filter{GroupName: "rack-a", Endpoint: "db-02", Action: "on"})
	if err != nil {
		t.Fatalf("listing by endpoint and action: %v", err)
	}
	if both.Total != 1 {
		t.Fatalf("combined filter Total = %d, want 1", both.Total)
	}
	if both.Entries[0].Detail != "timeout" {
		t.Errorf("Detail = %q, want timeout", both.Entries[0].Detail)
	}
}

func TestListOrderAndPagination(t *testing.T) {
	repo := testRepo(t)

	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	for i := range 5 {
		record(t, repo, &audit.Entry{
			GroupName: "rack-a",
			Endpoint:  "db-01",
			Action:    "on",
			Outcome:   "success",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	page, err := repo.List(context.Background(), audit.Filter{GroupName: "rack-a", Limit: 2})
	if err != nil {
		t.Fatalf("listing first page: %v", err)
	}
	if len(page.Entries) != 2 || page.Total != 5 {
		t.Fatalf("first page: %d entries, total %d; want 2 and 5", len(page.Entries), page.Total)
	}
	// Most recent first.
	if !page.Entries[0].CreatedAt.After(page.Entries[1].CreatedAt) {
		t.Error("entries not in descending time order")
	}

	last, err := repo.List(context.Background(), audit.Filter{GroupName: "rack-a", Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("listing last page: %v", err)
	}
	if len(last.Entries) != 1 {
		t.Errorf("last page entries = %d, want 1", len(last.Entries))
	}
}

func TestListEmptyGroup(t *testing.T) {
	repo := testRepo(t)

	result, err := repo.List(context.Background(), audit.Filter{GroupName: "nobody"})
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if result.Total != 0 {
		t.Errorf("Total = %d, want 0", result.Total)
	}
	if result.Entries == nil {
		t.Error("Entries should be an empty slice, not nil")
	}
}
