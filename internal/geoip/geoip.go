// Package geoip answers coarse "where is this viewer" questions from a
// local MaxMind database. Live streams use it to screen IPs against a
// station's service area before falling back to the portal backend and
// device geolocation, which both cost a network round trip.
package geoip

import (
	"log/slog"
	"net"

	"github.com/oschwald/maxminddb-golang"
)

type Resolver struct {
	db *maxminddb.Reader
}

// Location is the subset of the MaxMind record the player cares about.
type Location struct {
	Country   string
	Region    string
	City      string
	Latitude  float64
	Longitude float64
}

type geoResult struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	Subdivisions []struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"subdivisions"`
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Location struct {
		Latitude  float64 `maxminddb:"latitude"`
		Longitude float64 `maxminddb:"longitude"`
	} `maxminddb:"location"`
}

// New opens the database at dbPath. A missing or unreadable database
// disables local lookups rather than failing startup; live-stream
// availability then relies on the backend checks alone.
func New(dbPath string) (*Resolver, error) {
	if dbPath == "" {
		return &Resolver{}, nil
	}
	db, err := maxminddb.Open(dbPath)
	if err != nil {
		slog.Warn("geoip: failed to open database, local service-area screening disabled", "path", dbPath, "error", err)
		return &Resolver{}, nil
	}
	slog.Info("geoip: loaded database", "path", dbPath)
	return &Resolver{db: db}, nil
}

// Lookup resolves an IP to a location. Unknown or unparseable IPs
// return the zero Location.
func (r *Resolver) Lookup(ipStr string) (Location, bool) {
	if r.db == nil || ipStr == "" {
		return Location{}, false
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return Location{}, false
	}
	var result geoResult
	if err := r.db.Lookup(ip, &result); err != nil {
		return Location{}, false
	}
	loc := Location{
		Country:   result.Country.ISOCode,
		City:      result.City.Names["en"],
		Latitude:  result.Location.Latitude,
		Longitude: result.Location.Longitude,
	}
	if len(result.Subdivisions) > 0 {
		loc.Region = result.Subdivisions[0].ISOCode
	}
	return loc, loc.Country != ""
}

// InRegions reports whether the IP resolves inside one of the given
// "CC" or "CC-RR" ISO codes. False covers unknown as well as outside;
// callers treat it as "ask the backend", never as a hard denial.
func (r *Resolver) InRegions(ipStr string, regions []string) bool {
	loc, ok := r.Lookup(ipStr)
	if !ok {
		return false
	}
	full := loc.Country
	if loc.Region != "" {
		full = loc.Country + "-" + loc.Region
	}
	for _, want := range regions {
		if want == loc.Country || want == full {
			return true
		}
	}
	return false
}

func (r *Resolver) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
