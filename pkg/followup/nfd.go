package followup

import "time"

const dateLayout = "2006-01-02"

// DefaultOffsetMinutes is India Standard Time.
const DefaultOffsetMinutes = 330

// Zone returns a fixed zone for an offset in minutes east of UTC.
func Zone(offsetMinutes int) *time.Location {
	if offsetMinutes == DefaultOffsetMinutes {
		return ist
	}
	return time.FixedZone("", offsetMinutes*60)
}

var ist = time.FixedZone("IST", DefaultOffsetMinutes*60)

// GenerateFollowUpDate returns the next business day after the local calendar
// day of reference, formatted YYYY-MM-DD. Weekends roll forward to Monday.
func GenerateFollowUpDate(reference time.Time, offsetMinutes int) string {
	local := reference.UTC().Add(time.Duration(offsetMinutes) * time.Minute)
	y, m, d := local.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
	switch next.Weekday() {
	case time.Saturday:
		next = next.AddDate(0, 0, 2)
	case time.Sunday:
		next = next.AddDate(0, 0, 1)
	}
	return next.Format(dateLayout)
}
