package amadeus

import "time"

// dateLayout is the wire format for travel dates.
const dateLayout = "2006-01-02"

// AddDays shifts a YYYY-MM-DD date by delta days in UTC. Unparseable input
// is returned unchanged so a malformed date degrades to a repeated (and
// equally failing) exact query rather than a panic.
func AddDays(date string, delta int) string {
	d, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return date
	}
	return d.AddDate(0, 0, delta).Format(dateLayout)
}

// ValidDate reports whether date is a well-formed YYYY-MM-DD calendar date.
func ValidDate(date string) bool {
	_, err := time.ParseInLocation(dateLayout, date, time.UTC)
	return err == nil
}
