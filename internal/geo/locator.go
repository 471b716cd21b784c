package geo

import (
	"github.com/spaolacci/murmur3"
)

// Location is a (country, city) pair from the fixed lookup table.
type Location struct {
	Country string
	City    string
}

// locations is the fixed ordered table the hash indexes into. The table and
// the hash together are the whole geolocation story: the mapping is a
// deterministic placeholder, not a geo-IP lookup.
var locations = []Location{
	{"Russia", "Moscow"},
	{"China", "Beijing"},
	{"United States", "New York"},
	{"Germany", "Berlin"},
	{"Brazil", "São Paulo"},
	{"India", "Mumbai"},
	{"United Kingdom", "London"},
	{"France", "Paris"},
	{"Japan", "Tokyo"},
	{"South Korea", "Seoul"},
	{"Netherlands", "Amsterdam"},
	{"Ukraine", "Kyiv"},
	{"Romania", "Bucharest"},
	{"Poland", "Warsaw"},
	{"Iran", "Tehran"},
}

// Locate maps a client address to a stable (country, city) pair. The same
// address always yields the same pair for the lifetime of the table;
// distinct addresses may collide.
func Locate(address string) (country, city string) {
	idx := murmur3.Sum64([]byte(address)) % uint64(len(locations))
	loc := locations[idx]
	return loc.Country, loc.City
}
