package chrono

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStarted(t *testing.T) {
	loc, err := time.LoadLocation(DefaultLocation)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, time.April, 13, 15, 0, 0, 0, loc)

	cases := []struct {
		date     string
		expected bool
	}{
		{date: "2024-04-12", expected: true},
		{date: "2024-04-13", expected: true},
		{date: "2024-04-14", expected: false},
		{date: "not a date", expected: false},
		{date: "", expected: false},
	}

	for _, test := range cases {
		require.Equal(t, test.expected, Started(test.date, now), test.date)
	}
}

func TestBeforeToday(t *testing.T) {
	loc, err := time.LoadLocation(DefaultLocation)
	if err != nil {
		t.Fatal(err)
	}
	clock := Fixed{At: time.Date(2024, time.April, 13, 0, 30, 0, 0, loc)}

	require.Equal(t, "2024-04-13", Today(clock))
	require.True(t, BeforeToday("2024-04-12", clock))
	require.False(t, BeforeToday("2024-04-13", clock))
	require.False(t, BeforeToday("2024-05-01", clock))
}

func TestNewStandardImpl(t *testing.T) {
	clock, err := NewStandardImpl("")
	require.NoError(t, err)
	require.Equal(t, DefaultLocation, clock.Location().String())
	require.Equal(t, DefaultLocation, clock.Now().Location().String())

	_, err = NewStandardImpl("Not/AZone")
	require.Error(t, err)
}
