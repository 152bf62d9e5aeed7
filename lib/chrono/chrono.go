package chrono

import "time"

// DateLayout is the layout of every date stored in a record.
const DateLayout = "2006-01-02"

// DefaultLocation is the timezone of the scraped site.
const DefaultLocation = "Europe/Moscow"

// API is the interface that anything depending on the system clock should use.
type API interface {
	// Now returns the current time in Location().
	Now() time.Time
	Location() *time.Location
}

type StandardImpl struct {
	location *time.Location
}

// NewStandardImpl creates a clock for the named timezone, an empty name
// selects DefaultLocation.
func NewStandardImpl(name string) (StandardImpl, error) {
	if name == "" {
		name = DefaultLocation
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return StandardImpl{}, err
	}
	return StandardImpl{location: location}, nil
}

func (s StandardImpl) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardImpl) Location() *time.Location {
	return s.location
}

// Fixed is a clock that always returns the same instant.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time {
	return f.At
}

func (f Fixed) Location() *time.Location {
	return f.At.Location()
}

// Today returns the current date in the clock's timezone.
func Today(c API) string {
	return c.Now().Format(DateLayout)
}

// DayStart parses an ISO date as midnight in loc.
func DayStart(date string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, loc)
}

// Started reports whether the day of the given date has begun at now.
// Dates that do not parse are never considered started.
func Started(date string, now time.Time) bool {
	start, err := DayStart(date, now.Location())
	if err != nil {
		return false
	}
	return start.Before(now)
}

// BeforeToday reports whether date is strictly before the current date.
// ISO dates compare correctly as strings.
func BeforeToday(date string, c API) bool {
	return date < Today(c)
}
