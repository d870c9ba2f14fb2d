package invalidation

import (
	"strings"
	"testing"
	"time"
)

func mustTS() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		ev      Event
		wantErr string
	}{
		{"catalog", Event{Version: 1, Op: OpCatalog, TS: mustTS()}, ""},
		{"collection", Event{Version: 3, Op: OpCollection, Collection: "g4", TS: mustTS()}, ""},
		{"all", Event{Version: 1, Op: OpAll, TS: mustTS()}, ""},
		{"zero version", Event{Op: OpCatalog, TS: mustTS()}, "version"},
		{"unknown op", Event{Version: 1, Op: "upsert", TS: mustTS()}, "op must be"},
		{"collection missing", Event{Version: 1, Op: OpCollection, TS: mustTS()}, "collection is required"},
		{"no ts", Event{Version: 1, Op: OpCatalog}, "ts is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.ev.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err=%v want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestKey(t *testing.T) {
	if got := (Event{Op: OpCollection, Collection: "g4"}).Key(); got != "collection:g4" {
		t.Fatalf("key=%q", got)
	}
	if got := (Event{Op: OpCatalog, Collection: "ignored"}).Key(); got != "catalog" {
		t.Fatalf("key=%q", got)
	}
}

func TestVersionDedupe(t *testing.T) {
	d := NewVersionDedupe(2)

	if !d.ShouldApply("catalog", 5) {
		t.Fatal("first version must apply")
	}
	d.Applied("catalog", 5)
	if d.ShouldApply("catalog", 5) || d.ShouldApply("catalog", 4) {
		t.Fatal("replayed or older version applied")
	}
	if !d.ShouldApply("catalog", 6) {
		t.Fatal("newer version rejected")
	}

	d.Applied("collection:g1", 1)
	d.Applied("collection:g2", 1)
	if !d.ShouldApply("catalog", 5) {
		t.Fatal("evicted key should apply again")
	}
}

func TestVersionDedupe_NotRecordedUntilApplied(t *testing.T) {
	d := NewVersionDedupe(0)
	if !d.ShouldApply("all", 1) || !d.ShouldApply("all", 1) {
		t.Fatal("checking must not record the version")
	}
	d.Applied("all", 3)
	d.Applied("all", 2)
	if d.ShouldApply("all", 3) {
		t.Fatal("lower Applied overwrote the newer version")
	}
}
