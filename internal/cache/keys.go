package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// Keys are derived by hashing the semantically relevant query parameters so
// that equivalent queries collide regardless of incidental formatting.
// The key space is naturally bounded by airport/date/destination cardinality,
// so there is no eviction beyond TTL expiry.

// NearestKey keys a nearest-airport lookup by its coordinate pair.
func NearestKey(lat, lon float64) string {
	return "fid:nearest:" + digest(fmt.Sprintf("%.4f|%.4f", lat, lon))
}

// RoutesKey keys a routes lookup by origin airport.
func RoutesKey(airport string) string {
	return "fid:routes:" + digest(strings.ToUpper(airport))
}

// TimetableKey keys a timetable lookup by the airport/destination/date triple.
func TimetableKey(airport, destination, date string) string {
	return "fid:timetable:" + digest(strings.ToUpper(airport)+"|"+strings.ToUpper(destination)+"|"+date)
}

// BoardKey keys an assembled board snapshot by (airport, date, sort).
// Order (asc/desc) and limit are deliberately excluded: re-ordering and
// pagination are pure views over the cached set, applied client-side.
func BoardKey(airport, date, sort string) string {
	return "fid:board:" + digest(strings.ToUpper(airport)+"|"+date+"|"+strings.ToLower(sort))
}

func digest(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
