package geo

import (
	"bufio"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Mean Earth radius used for great-circle distance.
const earthRadiusKm = 6371.2

// Distance decay breakpoints: full proximity score within DecayFullKm, zero
// at DecayZeroKm and beyond, linear in between.
const (
	DecayFullKm = 5.0
	DecayZeroKm = 50.0
)

// Coord is a resolved city position in decimal degrees.
type Coord struct {
	Lat float64
	Lon float64
}

// Resolver maps canonical city keys to coordinates. The table is loaded once
// at startup from a tab-separated coordinate file (geonames layout) and is
// safe for concurrent readers.
type Resolver struct {
	mu     sync.RWMutex
	cities map[string]Coord
}

func NewResolver() *Resolver {
	return &Resolver{cities: make(map[string]Coord)}
}

// LoadFile reads the coordinate table. Columns (tab-separated): geoname id,
// name, ascii name, comma-separated alternate names, lat, lon. Every name
// variant is indexed by its normalized key. Returns the number of entries
// added; an unreadable file is the only error case.
func (r *Resolver) LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	added := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 6 {
			continue
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[4]), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(parts[5]), 64)
		if errLat != nil || errLon != nil {
			continue
		}

		variants := []string{parts[1], parts[2]}
		for _, alt := range strings.Split(parts[3], ",") {
			variants = append(variants, alt)
		}

		r.mu.Lock()
		for _, v := range variants {
			key := CanonicalCity(v)
			if key == "" {
				continue
			}
			if _, ok := r.cities[key]; ok {
				continue
			}
			r.cities[key] = Coord{Lat: lat, Lon: lon}
			added++
		}
		r.mu.Unlock()
	}
	if err := sc.Err(); err != nil {
		return added, err
	}
	return added, nil
}

// Add registers a single city. Used by tests and by seeding.
func (r *Resolver) Add(city string, c Coord) {
	key := CanonicalCity(city)
	if key == "" {
		return
	}
	r.mu.Lock()
	r.cities[key] = c
	r.mu.Unlock()
}

// Resolve looks up coordinates for a canonical city key. Absence is the
// common case for free-text locations and is not an error.
func (r *Resolver) Resolve(city string) (Coord, bool) {
	key := CanonicalCity(city)
	if key == "" {
		return Coord{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cities[key]
	return c, ok
}

// CanonicalCity normalizes a city name to its lookup key: lowercase, quotes
// stripped, whitespace joined with underscores.
func CanonicalCity(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, `"`, "")
	n = strings.ReplaceAll(n, "'", "")
	if n == "" {
		return ""
	}
	return strings.Join(strings.Fields(n), "_")
}

// DistanceKm is the haversine great-circle distance, rounded to 0.1 km.
func DistanceKm(a, b Coord) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)
	latA := radians(a.Lat)
	latB := radians(b.Lat)

	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(latA)*math.Cos(latB)*math.Pow(math.Sin(dLon/2), 2)
	c := 2 * math.Asin(math.Min(1, math.Sqrt(h)))
	return math.Round(earthRadiusKm*c*10) / 10
}

// DecayScore maps a distance to a proximity sub-score: 1.0 at or below 5 km,
// 0.0 at or beyond 50 km, linear taper in between. A nil distance scores 0.
func DecayScore(km *float64) float64 {
	if km == nil {
		return 0
	}
	d := *km
	if d <= DecayFullKm {
		return 1.0
	}
	if d >= DecayZeroKm {
		return 0.0
	}
	return 1.0 - (d-DecayFullKm)/(DecayZeroKm-DecayFullKm)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
