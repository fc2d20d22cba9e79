package reservation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	req, err := NewRequest("수서", "부산", "20241015", "8", 3, true)
	require.NoError(t, err)
	require.Equal(t, "수서", req.Origin())
	require.Equal(t, "부산", req.Destination())
	require.Equal(t, time.Date(2024, time.October, 15, 0, 0, 0, 0, time.UTC), req.Date())
	require.Equal(t, "20241015", req.DateValue())
	require.Equal(t, "08", req.Hour())
	require.Equal(t, 3, req.Trains())
	require.True(t, req.Waitlist())
}

func TestNewRequestErrors(t *testing.T) {
	cases := []struct {
		name        string
		origin      string
		destination string
		date        string
		hour        string
		trains      int
		expect      error
	}{
		{name: "unknown origin", origin: "서울", destination: "부산", date: "20241015", hour: "08", trains: 2, expect: ErrUnknownOrigin},
		{name: "unknown destination", origin: "수서", destination: "Busan", date: "20241015", hour: "08", trains: 2, expect: ErrUnknownDestination},
		{name: "same station", origin: "수서", destination: "수서", date: "20241015", hour: "08", trains: 2, expect: ErrSameStation},
		{name: "letters in date", origin: "수서", destination: "부산", date: "2024-10-15", hour: "08", trains: 2, expect: ErrDateFormat},
		{name: "empty date", origin: "수서", destination: "부산", date: "", hour: "08", trains: 2, expect: ErrDateFormat},
		{name: "bad month", origin: "수서", destination: "부산", date: "20231332", hour: "08", trains: 2, expect: ErrInvalidDate},
		{name: "short date", origin: "수서", destination: "부산", date: "2023111", hour: "08", trains: 2, expect: ErrInvalidDate},
		{name: "feb 30", origin: "수서", destination: "부산", date: "20240230", hour: "08", trains: 2, expect: ErrInvalidDate},
		{name: "odd hour", origin: "수서", destination: "부산", date: "20241015", hour: "07", trains: 2, expect: ErrInvalidHour},
		{name: "hour out of range", origin: "수서", destination: "부산", date: "20241015", hour: "24", trains: 2, expect: ErrInvalidHour},
		{name: "hour not a number", origin: "수서", destination: "부산", date: "20241015", hour: "ab", trains: 2, expect: ErrInvalidHour},
		{name: "no trains", origin: "수서", destination: "부산", date: "20241015", hour: "08", trains: 0, expect: ErrInvalidTrainCount},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewRequest(test.origin, test.destination, test.date, test.hour, test.trains, false)
			require.Error(t, err)
			require.True(t, errors.Is(err, test.expect), "got %v", err)
		})
	}
}

func TestDateErrorsAreDistinct(t *testing.T) {
	_, formatErr := NewRequest("수서", "부산", "2023x332", "08", 2, false)
	_, dateErr := NewRequest("수서", "부산", "20231332", "08", 2, false)
	require.ErrorIs(t, formatErr, ErrDateFormat)
	require.NotErrorIs(t, formatErr, ErrInvalidDate)
	require.ErrorIs(t, dateErr, ErrInvalidDate)
	require.NotErrorIs(t, dateErr, ErrDateFormat)
}

func TestSuggest(t *testing.T) {
	require.Equal(t, "동대구", Suggest("동대구역"))
	require.Equal(t, "", Suggest("Seoul Station"))
	require.Equal(t, "", Suggest(""))

	_, err := NewRequest("동대구역", "부산", "20241015", "08", 2, false)
	require.ErrorIs(t, err, ErrUnknownOrigin)
	require.Contains(t, err.Error(), `did you mean "동대구"`)
}

func TestStations(t *testing.T) {
	list := Stations()
	require.Contains(t, list, "수서")
	require.Contains(t, list, "부산")
	for _, s := range list {
		require.True(t, IsStation(s))
	}
	require.False(t, IsStation("서울"))
}
