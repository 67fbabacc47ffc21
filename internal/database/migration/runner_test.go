package migration

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoad_OrdersAndFilters(t *testing.T) {
	src := fstest.MapFS{
		"V10__add_index.sql":  {Data: []byte("CREATE INDEX a ON b (c);")},
		"V2__init.sql":        {Data: []byte("  CREATE TABLE b (c INT);\n")},
		"README.md":           {Data: []byte("not a migration")},
		"v3__lowercase.sql":   {Data: []byte("SELECT 1;")},
		"archive/V1__old.sql": {Data: []byte("SELECT 1;")},
	}

	migs, err := Load(src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(migs) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migs))
	}
	if migs[0].Version != 2 || migs[1].Version != 10 {
		t.Fatalf("expected versions 2,10 got %d,%d", migs[0].Version, migs[1].Version)
	}
	if migs[0].Name != "init" || migs[0].SQL != "CREATE TABLE b (c INT);" {
		t.Fatalf("unexpected first migration %+v", migs[0])
	}
}

func TestLoad_ChecksumIgnoresSurroundingWhitespace(t *testing.T) {
	a, _ := Load(fstest.MapFS{"V1__x.sql": {Data: []byte("SELECT 1;")}})
	b, _ := Load(fstest.MapFS{"V1__x.sql": {Data: []byte("\n\nSELECT 1;\n")}})
	if a[0].Checksum != b[0].Checksum {
		t.Fatalf("expected equal checksums")
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"duplicate migration version": {
			"V1__a.sql":  {Data: []byte("SELECT 1;")},
			"V01__b.sql": {Data: []byte("SELECT 2;")},
		},
		"empty migration file": {
			"V1__a.sql": {Data: []byte("  \n")},
		},
	}
	for want, src := range cases {
		if _, err := Load(src); err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q error, got %v", want, err)
		}
	}
}

func TestDiff(t *testing.T) {
	migs, err := Load(fstest.MapFS{
		"V1__a.sql": {Data: []byte("SELECT 1;")},
		"V2__b.sql": {Data: []byte("SELECT 2;")},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	pending, err := diff(migs, map[int64]appliedMigration{1: {Version: 1, Checksum: migs[0].Checksum}})
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if len(pending) != 1 || pending[0].Version != 2 {
		t.Fatalf("expected only V2 pending, got %+v", pending)
	}

	if _, err := diff(migs, map[int64]appliedMigration{1: {Version: 1, Checksum: "edited"}}); err == nil {
		t.Fatalf("expected checksum mismatch")
	}
}
