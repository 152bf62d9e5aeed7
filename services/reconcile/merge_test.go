package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"fightstats-backend/lib/chrono"
	"fightstats-backend/lib/records"
	"fightstats-backend/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var testClock = chrono.Fixed{At: time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)}

func newTestMerger() (Merger, *telemetry.Recorder) {
	rec := &telemetry.Recorder{}
	return NewMerger(testClock, rec), rec
}

func TestMergeFighters(t *testing.T) {
	m, rec := newTestMerger()

	previous := []records.Fighter{
		{ID: 3, Slug: "john-doe", Name: "John Doe", Wins: 10},
		{ID: 7, Slug: "retired", Name: "Retired Fighter"},
		{ID: 5, Slug: "jane-roe", Name: "Jane Roe"},
	}
	fresh := []records.Fighter{
		{Slug: "jane-roe", Name: "Jane Roe", Wins: 4},
		{Slug: "new-one", Name: "New One"},
		{Slug: "john-doe", Name: "John Doe", Wins: 11},
		{Slug: "new-two", Name: "New Two"},
	}

	merged, err := m.Fighters(context.Background(), previous, fresh)
	require.NoError(t, err)

	expected := []records.Fighter{
		{ID: 5, Slug: "jane-roe", Name: "Jane Roe", Wins: 4},
		{ID: 8, Slug: "new-one", Name: "New One"},
		{ID: 3, Slug: "john-doe", Name: "John Doe", Wins: 11},
		{ID: 9, Slug: "new-two", Name: "New Two"},
	}
	diff := cmp.Diff(expected, merged)
	if diff != "" {
		t.Fatal(diff)
	}
	require.Empty(t, rec.Reports(telemetry.KindWarning))
}

func TestMergeFightersFromEmpty(t *testing.T) {
	m, _ := newTestMerger()

	merged, err := m.Fighters(context.Background(), nil, []records.Fighter{
		{Slug: "a", Name: "A"},
		{Slug: "b", Name: "B"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, merged[0].ID)
	require.Equal(t, 2, merged[1].ID)
}

func TestMergeDuplicateSlug(t *testing.T) {
	m, rec := newTestMerger()

	merged, err := m.Fighters(context.Background(), nil, []records.Fighter{
		{Slug: "john-doe", Name: "John Doe", Wins: 1},
		{Slug: "jane-roe", Name: "Jane Roe"},
		{Slug: "john-doe", Name: "John Doe", Wins: 2},
	})
	require.NoError(t, err)
	require.Len(t, merged, 2)
	require.Equal(t, "john-doe", merged[0].Slug)
	require.Equal(t, 2, merged[0].Wins)

	warnings := rec.Reports(telemetry.KindWarning)
	require.Len(t, warnings, 1)
	require.Equal(t, report_merge_duplicate, warnings[0].ID)
	require.Equal(t, []any{"john-doe"}, warnings[0].Params)
}

func TestMergeEvents(t *testing.T) {
	m, _ := newTestMerger()

	previous := []records.Event{
		{ID: 1, Slug: "old-1", Name: "Old 1", Date: "2024-01-10", MainCard: []records.Bout{
			{Fighter1: "A", Fighter2: "B", Fighter1Slug: "a", Result: "A wins (KO, R1)"},
		}},
		{ID: 2, Slug: "old-2", Name: "Old 2", Date: "2024-03-10"},
		{ID: 4, Slug: "today", Name: "Today", Date: "2024-06-01", Location: "stale"},
		{ID: 6, Slug: "upcoming", Name: "Upcoming", Date: "2024-08-01", Location: "stale"},
		{ID: 3, Slug: "cancelled", Name: "Gone", Date: "2024-09-01"},
	}
	fresh := []records.Event{
		{Slug: "upcoming", Name: "Upcoming", Date: "2024-08-01", Location: "fresh"},
		{Slug: "old-1", Name: "Old 1 rescraped", Date: "2024-01-10"},
		{Slug: "today", Name: "Today", Date: "2024-06-01", Location: "fresh"},
		{Slug: "brand-new", Name: "Brand New", Date: "2024-07-01"},
		{Slug: "new-past", Name: "New Past", Date: "2024-02-01"},
	}

	merged, err := m.Events(context.Background(), previous, fresh)
	require.NoError(t, err)

	expected := []records.Event{
		previous[0],
		{ID: 8, Slug: "new-past", Name: "New Past", Date: "2024-02-01"},
		previous[1],
		{ID: 4, Slug: "today", Name: "Today", Date: "2024-06-01", Location: "fresh"},
		{ID: 7, Slug: "brand-new", Name: "Brand New", Date: "2024-07-01"},
		{ID: 6, Slug: "upcoming", Name: "Upcoming", Date: "2024-08-01", Location: "fresh"},
	}
	diff := cmp.Diff(expected, merged)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestPastEventsRetainedUnchanged(t *testing.T) {
	m, _ := newTestMerger()

	previous := []records.Event{
		{ID: 1, Slug: "old", Name: "Old", Date: "2024-05-31", MainCard: []records.Bout{
			{Fighter1: "A", Fighter2: "B", Fighter1Slug: "a", Fighter2Slug: "b", Result: "B wins (SUB, R2)"},
		}},
	}
	before, err := json.Marshal(previous[0])
	require.NoError(t, err)

	merged, err := m.Events(context.Background(), previous, nil)
	require.NoError(t, err)
	require.Len(t, merged, 1)

	after, err := json.Marshal(merged[0])
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))
}

func TestPastEventRedatedIntoFuture(t *testing.T) {
	m, _ := newTestMerger()

	merged, err := m.Events(
		context.Background(),
		[]records.Event{{ID: 2, Slug: "moved", Name: "Moved", Date: "2024-05-01"}},
		[]records.Event{{Slug: "moved", Name: "Moved", Date: "2024-06-15"}},
	)
	require.NoError(t, err)
	require.Equal(t, []records.Event{{ID: 2, Slug: "moved", Name: "Moved", Date: "2024-06-15"}}, merged)
}

func TestMergeValidation(t *testing.T) {
	m, _ := newTestMerger()

	_, err := m.Events(context.Background(), nil, []records.Event{
		{Slug: "ok", Name: "Ok", Date: "2024-01-01"},
		{Slug: "bad-date", Name: "Bad", Date: "01.02.2024"},
	})
	require.Error(t, err)
	var verr *records.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "bad-date", verr.Slug)

	_, err = m.Fighters(context.Background(), nil, []records.Fighter{{Name: "No Slug"}})
	require.Error(t, err)
	require.True(t, errors.As(err, &verr))
	require.Equal(t, 0, verr.Index)

	_, err = m.Events(context.Background(), []records.Event{{Name: "No Slug", Date: "2024-01-01"}}, nil)
	require.Error(t, err)
}
