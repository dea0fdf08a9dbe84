package geo

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCanonicalCity(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Berlin", "berlin"},
		{"  Frankfurt am Main  ", "frankfurt_am_main"},
		{`"Köln"`, "köln"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := CanonicalCity(c.in); got != c.want {
			t.Fatalf("CanonicalCity(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDistanceKm(t *testing.T) {
	berlin := Coord{Lat: 52.52, Lon: 13.405}
	potsdam := Coord{Lat: 52.3906, Lon: 13.0645}

	if got := DistanceKm(berlin, berlin); got != 0 {
		t.Fatalf("distance to self = %v, want 0", got)
	}

	d := DistanceKm(berlin, potsdam)
	if d < 25 || d > 30 {
		t.Fatalf("Berlin-Potsdam distance = %v, want roughly 27km", d)
	}
	if DistanceKm(potsdam, berlin) != d {
		t.Fatalf("distance is not symmetric")
	}
}

func TestDecayScore(t *testing.T) {
	km := func(v float64) *float64 { return &v }

	if got := DecayScore(nil); got != 0 {
		t.Fatalf("nil distance = %v, want 0", got)
	}
	if got := DecayScore(km(0)); got != 1.0 {
		t.Fatalf("0km = %v, want 1.0", got)
	}
	if got := DecayScore(km(5)); got != 1.0 {
		t.Fatalf("5km = %v, want 1.0", got)
	}
	if got := DecayScore(km(50)); got != 0 {
		t.Fatalf("50km = %v, want 0", got)
	}
	if got := DecayScore(km(120)); got != 0 {
		t.Fatalf("120km = %v, want 0", got)
	}

	mid := DecayScore(km(27.5))
	if mid <= 0.49 || mid >= 0.51 {
		t.Fatalf("27.5km = %v, want 0.5", mid)
	}

	// Monotone non-increasing across the taper.
	prev := 1.0
	for d := 5.0; d <= 50.0; d += 2.5 {
		s := DecayScore(km(d))
		if s > prev {
			t.Fatalf("decay increased at %vkm: %v > %v", d, s, prev)
		}
		prev = s
	}
}

func TestResolverLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.tsv")
	content := "# comment\n" +
		"2950159\tBerlin\tBerlin\tBerlino,Berlijn\t52.52\t13.405\n" +
		"2925533\tFrankfurt am Main\tFrankfurt am Main\t\t50.1106\t8.6822\n" +
		"bad\tNoCoords\tNoCoords\t\tx\ty\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	r := NewResolver()
	n, err := r.LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if n == 0 {
		t.Fatalf("expected entries loaded")
	}

	if _, ok := r.Resolve("Berlin"); !ok {
		t.Fatalf("expected Berlin to resolve")
	}
	if _, ok := r.Resolve("berlino"); !ok {
		t.Fatalf("expected alternate name to resolve")
	}
	if _, ok := r.Resolve("Frankfurt am Main"); !ok {
		t.Fatalf("expected multi-word city to resolve")
	}
	if _, ok := r.Resolve("NoCoords"); ok {
		t.Fatalf("row with invalid coordinates should be skipped")
	}
	if _, ok := r.Resolve("Atlantis"); ok {
		t.Fatalf("unknown city should not resolve")
	}
}

func TestResolverLoadFileMissing(t *testing.T) {
	r := NewResolver()
	if _, err := r.LoadFile(filepath.Join(t.TempDir(), "missing.tsv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
