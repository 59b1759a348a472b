package indexes_test

import (
	"testing"

	"github.com/ourthirdplace/thirdplace/internal/app/system/indexes"
	"github.com/ourthirdplace/thirdplace/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// EnsureAll should succeed on a clean database
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}

	// Second call should also succeed (idempotent)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func listIndexNames(t *testing.T, db *mongo.Database, collection string) map[string]bool {
	t.Helper()

	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection(collection).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes for %s failed: %v", collection, err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			t.Fatalf("decode index: %v", err)
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_CreatesExpectedIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	want := map[string][]string{
		"profiles": {
			"uniq_profiles_userid",
			"uniq_profiles_email",
			"idx_profiles_status_fullnameci_id",
		},
		"memberships": {
			"uniq_memberships_userid",
			"idx_memberships_sessionid",
			"idx_memberships_status_periodend",
		},
		"events": {
			"idx_events_startsat_id",
			"idx_events_createdby_startsat",
		},
		"event_registrations": {
			"uniq_registrations_event_user_confirmed",
			"idx_registrations_event_status",
			"idx_registrations_user_status",
		},
	}

	for collection, expected := range want {
		got := listIndexNames(t, db, collection)
		for _, name := range expected {
			if !got[name] {
				t.Errorf("collection %s missing index %s (have %v)", collection, name, got)
			}
		}
	}
}
