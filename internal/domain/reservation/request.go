package reservation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "20060102"

// Request is a validated reservation request. The zero value is not valid;
// construct with NewRequest.
type Request struct {
	origin      string
	destination string
	date        time.Time
	hour        string
	trains      int
	waitlist    bool
}

// NewRequest validates its inputs and returns an immutable Request. Each
// violated rule maps to its own sentinel error.
func NewRequest(origin, destination, date, hour string, trains int, waitlist bool) (Request, error) {
	if !IsStation(origin) {
		return Request{}, stationErr(ErrUnknownOrigin, origin)
	}
	if !IsStation(destination) {
		return Request{}, stationErr(ErrUnknownDestination, destination)
	}
	if origin == destination {
		return Request{}, fmt.Errorf("%w: %s", ErrSameStation, origin)
	}
	if !isDigits(date) {
		return Request{}, fmt.Errorf("%w: %q", ErrDateFormat, date)
	}
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	h, err := normalizeHour(hour)
	if err != nil {
		return Request{}, err
	}
	if trains < 1 {
		return Request{}, fmt.Errorf("%w: got %d", ErrInvalidTrainCount, trains)
	}
	return Request{
		origin:      origin,
		destination: destination,
		date:        d,
		hour:        h,
		trains:      trains,
		waitlist:    waitlist,
	}, nil
}

func (r Request) Origin() string      { return r.origin }
func (r Request) Destination() string { return r.destination }
func (r Request) Date() time.Time     { return r.date }
func (r Request) Hour() string        { return r.hour }
func (r Request) Trains() int         { return r.trains }
func (r Request) Waitlist() bool      { return r.waitlist }

// DateValue is the date in the form the search form's select expects.
func (r Request) DateValue() string { return r.date.Format(dateLayout) }

// Summary is a short human readable description used in logs and notifications.
func (r Request) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s -> %s\n", r.origin, r.destination)
	fmt.Fprintf(&b, "date: %s, departing from %s:00\n", r.DateValue(), r.hour)
	fmt.Fprintf(&b, "checking the first %d trains\n", r.trains)
	fmt.Fprintf(&b, "waitlist: %t", r.waitlist)
	return b.String()
}

func stationErr(kind error, name string) error {
	if s := Suggest(name); s != "" {
		return fmt.Errorf("%w: %q (did you mean %q?)", kind, name, s)
	}
	return fmt.Errorf("%w: %q", kind, name)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func normalizeHour(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !isDigits(s) || len(s) > 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidHour, s)
	}
	h, err := strconv.Atoi(s)
	if err != nil || h < 0 || h > 22 || h%2 != 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidHour, s)
	}
	return fmt.Sprintf("%02d", h), nil
}
