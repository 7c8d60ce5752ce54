package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_Scan(t *testing.T) {
	want := NewDate(2024, time.June, 1)

	testCases := []struct {
		name      string
		src       any
		expectErr bool
	}{
		{name: "time from pgx", src: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{name: "sqlite text", src: "2024-06-01"},
		{name: "sqlite datetime text", src: "2024-06-01 00:00:00+00:00"},
		{name: "mysql bytes", src: []byte("2024-06-01")},
		{name: "garbage", src: "June first", expectErr: true},
		{name: "unsupported type", src: 20240601, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var d Date
			err := d.Scan(tc.src)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, want.Equal(d.Time), "got %s", d)
		})
	}
}

func TestDate_ValueAndJSON(t *testing.T) {
	d := NewDate(2024, time.June, 1)

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", v)

	b, err := json.Marshal(struct {
		Date Date `json:"reservation_date"`
	}{d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"reservation_date":"2024-06-01"}`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-06-01"`), &back))
	assert.Equal(t, d, back)
}

func TestDateOf_DropsClockAndZone(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	d := DateOf(time.Date(2024, 6, 1, 23, 30, 0, 0, loc))
	assert.Equal(t, "2024-06-01", d.String())
}

func TestBooking_OwnerName(t *testing.T) {
	assert.Equal(t, "Anonymous", Booking{}.OwnerName())
	assert.Equal(t, "alice", Booking{User: &User{Username: "alice"}}.OwnerName())
	assert.Equal(t, "Alice - 2024-06-01 at 18:00",
		Booking{GuestName: "Alice", ReservationDate: NewDate(2024, time.June, 1), ReservationSlot: 18}.String())
}
