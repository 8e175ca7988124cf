package diagnostics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-osc/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-osc/internal/osc"
	"github.com/nerrad567/gray-logic-osc/migrations"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "osc.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup

	if _, err := db.Migrate(context.Background(), migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

func seed(t *testing.T, repo *SQLiteRepository, base time.Time) {
	t.Helper()
	events := []DropEvent{
		{SwitcherID: "studio", Address: "/atem/me/1/program", Reason: osc.ReasonValidationRejected, Timestamp: base},
		{SwitcherID: "studio", Address: "/atem/me/1/preview", Reason: osc.ReasonValidationRejected, Timestamp: base.Add(time.Second)},
		{SwitcherID: "studio", Address: "/atem/unknown", Reason: osc.ReasonNoValidator, Timestamp: base.Add(2 * time.Second)},
		{SwitcherID: "studio", Address: "/atem/me_1/cut", Reason: osc.ReasonNoValidator, Timestamp: base.Add(3 * time.Second)},
		{SwitcherID: "truck", Address: "/atem/aux/1", Reason: osc.ReasonEndpointFailed, Detail: "queue full", Timestamp: base.Add(4 * time.Second)},
	}
	for i := range events {
		if err := repo.Create(context.Background(), &events[i]); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if events[i].ID == "" {
			t.Fatal("Create() did not assign an ID")
		}
	}
}

func TestSQLiteRepository_List(t *testing.T) {
	repo := newTestRepository(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seed(t, repo, base)
	ctx := context.Background()

	tests := []struct {
		name         string
		filter       Filter
		wantTotal    int
		wantAddrs    []string
		wantLimitSet int
	}{
		{
			name:         "all newest first",
			filter:       Filter{},
			wantTotal:    5,
			wantAddrs:    []string{"/atem/aux/1", "/atem/me_1/cut", "/atem/unknown", "/atem/me/1/preview", "/atem/me/1/program"},
			wantLimitSet: DefaultListLimit,
		},
		{
			name:         "by reason",
			filter:       Filter{Reason: osc.ReasonNoValidator},
			wantTotal:    2,
			wantAddrs:    []string{"/atem/me_1/cut", "/atem/unknown"},
			wantLimitSet: DefaultListLimit,
		},
		{
			name:         "exact address",
			filter:       Filter{Address: "/atem/me/1/program"},
			wantTotal:    1,
			wantAddrs:    []string{"/atem/me/1/program"},
			wantLimitSet: DefaultListLimit,
		},
		{
			name:         "prefix treats underscore literally",
			filter:       Filter{AddressPrefix: "/atem/me_"},
			wantTotal:    1,
			wantAddrs:    []string{"/atem/me_1/cut"},
			wantLimitSet: DefaultListLimit,
		},
		{
			name:         "switcher and since",
			filter:       Filter{SwitcherID: "studio", Since: base.Add(2 * time.Second)},
			wantTotal:    2,
			wantAddrs:    []string{"/atem/me_1/cut", "/atem/unknown"},
			wantLimitSet: DefaultListLimit,
		},
		{
			name:         "paginated",
			filter:       Filter{Limit: 2, Offset: 1},
			wantTotal:    5,
			wantAddrs:    []string{"/atem/me_1/cut", "/atem/unknown"},
			wantLimitSet: 2,
		},
		{
			name:         "limit capped",
			filter:       Filter{Limit: 100000, Offset: -3},
			wantTotal:    5,
			wantAddrs:    []string{"/atem/aux/1", "/atem/me_1/cut", "/atem/unknown", "/atem/me/1/preview", "/atem/me/1/program"},
			wantLimitSet: MaxListLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if res.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", res.Total, tt.wantTotal)
			}
			if res.Limit != tt.wantLimitSet {
				t.Errorf("Limit = %d, want %d", res.Limit, tt.wantLimitSet)
			}
			if len(res.Events) != len(tt.wantAddrs) {
				t.Fatalf("got %d events, want %d", len(res.Events), len(tt.wantAddrs))
			}
			for i, want := range tt.wantAddrs {
				if res.Events[i].Address != want {
					t.Errorf("Events[%d].Address = %q, want %q", i, res.Events[i].Address, want)
				}
			}
		})
	}
}

func TestSQLiteRepository_RoundTripFields(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)

	ev := NewDropEvent("studio", osc.Drop{
		Address:   "/atem/me/1/program",
		Arguments: `[string:"x"]`,
		Reason:    osc.ReasonValidationRejected,
		Detail:    "wrong type",
		At:        at,
	})
	if err := repo.WriteDrop(ctx, ev); err != nil {
		t.Fatalf("WriteDrop() error = %v", err)
	}

	res, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(res.Events) != 1 {
		t.Fatalf("got %d events, want 1", len(res.Events))
	}
	got := res.Events[0]
	if got.ID != ev.ID || got.Arguments != ev.Arguments || got.Detail != ev.Detail || got.Reason != ev.Reason {
		t.Errorf("stored event = %+v, want %+v", got, ev)
	}
	if !got.Timestamp.Equal(at) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, at)
	}
}

func TestSQLiteRepository_EmptyListIsNotNil(t *testing.T) {
	repo := newTestRepository(t)
	res, err := repo.List(context.Background(), Filter{Reason: osc.ReasonNoEndpoint})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Events == nil || len(res.Events) != 0 || res.Total != 0 {
		t.Errorf("List() = %+v, want empty non-nil slice", res)
	}
}

func TestSQLiteRepository_DeleteBeforeAndCounts(t *testing.T) {
	repo := newTestRepository(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seed(t, repo, base)
	ctx := context.Background()

	counts, err := repo.CountByReason(ctx)
	if err != nil {
		t.Fatalf("CountByReason() error = %v", err)
	}
	if counts[osc.ReasonValidationRejected] != 2 || counts[osc.ReasonNoValidator] != 2 || counts[osc.ReasonEndpointFailed] != 1 {
		t.Errorf("CountByReason() = %v", counts)
	}

	n, err := repo.DeleteBefore(ctx, base.Add(2*time.Second))
	if err != nil {
		t.Fatalf("DeleteBefore() error = %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}
	res, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Total != 3 {
		t.Errorf("Total after prune = %d, want 3", res.Total)
	}
}
