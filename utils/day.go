package utils

import (
	"time"
)

const DayLayout = "2006-01-02"

// RestaurantLocation is the zone days are cut in. Set from config.
var RestaurantLocation = time.UTC

func SetRestaurantLocation(name string) error {
	if name == "" {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	RestaurantLocation = loc
	return nil
}

// ParseDay reads a YYYY-MM-DD string as midnight in the restaurant zone.
func ParseDay(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DayLayout, s, RestaurantLocation)
	if err != nil {
		return time.Time{}, NewValidationError("day", "expected YYYY-MM-DD, got %q", s)
	}
	return d, nil
}

// DayBounds returns [start of day, start of next day) for the day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(RestaurantLocation)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, RestaurantLocation)
	return start, start.AddDate(0, 0, 1)
}

func StartOfDay(t time.Time) time.Time {
	start, _ := DayBounds(t)
	return start
}

func FormatDay(t time.Time) string {
	return t.In(RestaurantLocation).Format(DayLayout)
}

func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}
