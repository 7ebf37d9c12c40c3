package util

import "time"

// LoadLocation resolves name, falling back to UTC when the zone database has
// no entry for it.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FormatDay renders t as a calendar date in loc.
func FormatDay(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
