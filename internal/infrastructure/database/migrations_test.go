package database

import (
	"context"
	"testing"
	"testing/fstest"
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"0001_widgets.up.sql":   {Data: []byte("CREATE TABLE widgets (id TEXT PRIMARY KEY);")},
		"0001_widgets.down.sql": {Data: []byte("DROP TABLE widgets;")},
		"0002_gadgets.up.sql":   {Data: []byte("CREATE TABLE gadgets (id TEXT PRIMARY KEY);")},
		"0010_later.up.sql":     {Data: []byte("CREATE TABLE later (id TEXT);")},
		"README.md":             {Data: []byte("ignored")},
	}
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&n)
	if err != nil {
		t.Fatalf("querying sqlite_master: %v", err)
	}
	return n == 1
}

func TestLoadMigrations(t *testing.T) {
	migs, err := LoadMigrations(testMigrations())
	if err != nil {
		t.Fatalf("LoadMigrations() error = %v", err)
	}
	if len(migs) != 3 {
		t.Fatalf("got %d migrations, want 3", len(migs))
	}
	wantVersions := []int{1, 2, 10}
	for i, v := range wantVersions {
		if migs[i].Version != v {
			t.Errorf("migs[%d].Version = %d, want %d", i, migs[i].Version, v)
		}
	}
	if migs[0].Name != "widgets" || migs[0].Down == "" {
		t.Errorf("migs[0] = %+v", migs[0])
	}
}

func TestLoadMigrations_DownWithoutUp(t *testing.T) {
	fsys := fstest.MapFS{"0003_orphan.down.sql": {Data: []byte("DROP TABLE x;")}}
	if _, err := LoadMigrations(fsys); err == nil {
		t.Error("LoadMigrations() should reject a down file without an up file")
	}
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	n, err := db.Migrate(ctx, testMigrations())
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if n != 3 {
		t.Errorf("applied %d migrations, want 3", n)
	}
	for _, table := range []string{"widgets", "gadgets", "later"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s not created", table)
		}
	}

	// Idempotent.
	n, err = db.Migrate(ctx, testMigrations())
	if err != nil || n != 0 {
		t.Errorf("second Migrate() = %d, %v; want 0, nil", n, err)
	}

	applied, err := db.AppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("AppliedMigrations() error = %v", err)
	}
	if len(applied) != 3 || applied[2].Version != 10 || applied[2].AppliedAt.IsZero() {
		t.Errorf("AppliedMigrations() = %+v", applied)
	}
}

func TestMigrate_FailureStopsAtBadMigration(t *testing.T) {
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"0001_ok.up.sql":     {Data: []byte("CREATE TABLE ok (id TEXT);")},
		"0002_broken.up.sql": {Data: []byte("CREATE TABLE;")},
		"0003_after.up.sql":  {Data: []byte("CREATE TABLE after (id TEXT);")},
	}

	n, err := db.Migrate(context.Background(), fsys)
	if err == nil {
		t.Fatal("Migrate() should fail on broken SQL")
	}
	if n != 1 {
		t.Errorf("applied %d before failure, want 1", n)
	}
	if !tableExists(t, db, "ok") || tableExists(t, db, "after") {
		t.Error("expected only the first migration to be committed")
	}
}

func TestRollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fsys := fstest.MapFS{
		"0001_widgets.up.sql":   {Data: []byte("CREATE TABLE widgets (id TEXT PRIMARY KEY);")},
		"0001_widgets.down.sql": {Data: []byte("DROP TABLE widgets;")},
	}

	// Nothing applied yet.
	if err := db.Rollback(ctx, fsys); err != nil {
		t.Fatalf("Rollback() on empty database error = %v", err)
	}

	if _, err := db.Migrate(ctx, fsys); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.Rollback(ctx, fsys); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	if tableExists(t, db, "widgets") {
		t.Error("widgets table still exists after rollback")
	}
	applied, err := db.AppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("AppliedMigrations() error = %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("applied = %+v, want none", applied)
	}
}

func TestRollback_NoDownFile(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fsys := fstest.MapFS{"0001_only_up.up.sql": {Data: []byte("CREATE TABLE only_up (id TEXT);")}}

	if _, err := db.Migrate(ctx, fsys); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.Rollback(ctx, fsys); err == nil {
		t.Error("Rollback() without a down file should fail")
	}
}
