package clock

import "time"

// Location is the fixed UTC+8 zone used for every persisted and issued
// timestamp, independent of the host's local zone.
var Location = time.FixedZone("MYT", 8*60*60)

// Now returns the current time in Location.
func Now() time.Time {
	return time.Now().In(Location)
}
