package reservation

import "errors"

var (
	ErrUnknownOrigin      = errors.New("unknown departure station")
	ErrUnknownDestination = errors.New("unknown arrival station")
	ErrSameStation        = errors.New("departure and arrival stations are the same")
	ErrDateFormat         = errors.New("date must contain only digits")
	ErrInvalidDate        = errors.New("invalid date, want YYYYMMDD")
	ErrInvalidHour        = errors.New("invalid hour, want an even hour between 00 and 22")
	ErrInvalidTrainCount  = errors.New("number of trains to check must be at least 1")
)
