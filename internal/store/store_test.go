package store

import (
	"context"
	"database/sql"
	"testing"

	"geo-puzzle/internal/geo"
	"geo-puzzle/internal/migrate"

	_ "modernc.org/sqlite"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := migrate.EnsureSchema(db); err != nil {
		t.Fatalf("schema: %v", err)
	}
	s := AttachDB(db, "sqlite")
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func country(code string, ordinal int, lon float64) geo.Country {
	return geo.Country{
		Code:    code,
		Name:    "Country " + code,
		Ordinal: ordinal,
		Shape: geo.Shape{Kind: geo.KindPolygon, Rings: []geo.Ring{{
			{Lat: 0, Lon: lon}, {Lat: 0, Lon: lon + 1}, {Lat: 1, Lon: lon + 1}, {Lat: 0, Lon: lon},
		}}},
	}
}

func TestRebind(t *testing.T) {
	pg := AttachDB(nil, "postgres")
	if got := pg.rebind("a=? AND b=?"); got != "a=$1 AND b=$2" {
		t.Fatalf("postgres rebind = %q", got)
	}
	lite := AttachDB(nil, "sqlite")
	if got := lite.rebind("a=?"); got != "a=?" {
		t.Fatalf("sqlite rebind = %q", got)
	}
}

func TestUpsertAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for _, c := range []geo.Country{country("BBB", 2, 10), country("AAA", 1, 0)} {
		if err := s.UpsertCountry(ctx, c); err != nil {
			t.Fatal(err)
		}
	}
	renamed := country("BBB", 2, 10)
	renamed.Name = "Renamed"
	if err := s.UpsertCountry(ctx, renamed); err != nil {
		t.Fatal(err)
	}
	cs, err := s.ListCountries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cs) != 2 || cs[0].Code != "AAA" || cs[1].Name != "Renamed" {
		t.Fatalf("countries = %+v", cs)
	}
	if cs[1].Shape.Kind != geo.KindPolygon || cs[1].Shape.Rings[0][1] != (geo.Point{Lat: 0, Lon: 11}) {
		t.Fatalf("geometry did not round trip: %+v", cs[1].Shape)
	}
	if n, err := s.Count(ctx); err != nil || n != 2 {
		t.Fatalf("count = %d, %v", n, err)
	}
}

func TestReplaceAllAndSkipBadRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_ = s.UpsertCountry(ctx, country("OLD", 1, 0))
	if err := s.ReplaceAll(ctx, []geo.Country{country("N1", 1, 0), country("N2", 2, 5)}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.DB().Exec(`INSERT INTO _geo_countries(code, name, ordinal, kind, rings) VALUES('BAD', 'Bad', 3, 'LineString', '[]'), ('BRK', 'Broken', 4, 'Polygon', '{')`); err != nil {
		t.Fatal(err)
	}
	cs, err := s.ListCountries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cs) != 2 || cs[0].Code != "N1" || cs[1].Code != "N2" {
		t.Fatalf("countries = %+v", cs)
	}
}
