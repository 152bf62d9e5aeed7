// Package storetest holds the behavior every store adapter is tested against.
package storetest

import (
	"context"
	"testing"

	"fightstats-backend/lib/records"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

// Store mirrors store.Store, it is redeclared to keep the adapters' tests
// free of an import of the package that opens them.
type Store interface {
	Load(ctx context.Context) (records.Snapshot, error)
	Save(ctx context.Context, snapshot records.Snapshot, which records.Collections) error
	Close() error
}

func Fixture() records.Snapshot {
	return records.Snapshot{
		Fighters: []records.Fighter{
			{
				ID:       2,
				Slug:     "john-doe",
				Name:     "John Doe",
				Nickname: "The Hammer",
				Country:  "USA",
				Wins:     10,
				Losses:   2,
				Draws:    1,
				Record:   "10-2-1",
				Image:    "/assets/images/fighter_default.png",
				Bio:      "First paragraph.\n\nSecond paragraph.",
				WinMethods: []records.MethodCount{
					{Method: "KO", Count: 6, Percentage: "60%"},
				},
				Stats: records.FighterStats{FightTimeAvg: "9:12", SubmissionAttemptsPer15Min: 0.5},
				FightsHistory: []records.HistoryEntry{
					{
						Date:         "2024-05-01",
						Event:        "Fight Night 50",
						EventSlug:    "fight-night-50",
						Opponent:     "Jane Roe",
						OpponentSlug: "jane-roe",
						Result:       records.HistoryWin,
						Method:       "KO",
						Round:        "1",
						Time:         "1:05",
					},
				},
			},
			{ID: 1, Slug: "jane-roe", Name: "Jane Roe", Record: "0-1-0", Losses: 1},
		},
		Events: []records.Event{
			{
				ID:       1,
				Slug:     "fight-night-50",
				Name:     "Fight Night 50",
				Date:     "2024-05-01",
				Location: "Las Vegas, USA",
				MainCard: []records.Bout{
					{
						Fighter1:     "John Doe",
						Fighter2:     "Jane Roe",
						Fighter1Slug: "john-doe",
						Fighter2Slug: "jane-roe",
						Weight:       "Lightweight",
						Result:       "John Doe wins (KO, R1)",
					},
				},
			},
			{ID: 2, Slug: "fight-night-51", Name: "Fight Night 51", Date: "2024-07-01"},
		},
	}
}

// Equal compares snapshots treating nil and empty slices alike.
func Equal(t *testing.T, expected, got records.Snapshot) {
	t.Helper()
	diff := cmp.Diff(expected, got, cmpopts.EquateEmpty())
	if diff != "" {
		t.Fatal(diff)
	}
}

// Run checks the load and save contract of an empty store.
func Run(t *testing.T, store Store) {
	ctx := context.Background()

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, empty.Fighters)
	require.Empty(t, empty.Events)

	fixture := Fixture()
	err = store.Save(ctx, fixture, records.CollectionAll)
	require.NoError(t, err)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	Equal(t, fixture, loaded)

	// saving a single collection leaves the other one alone
	eventsOnly := records.Snapshot{Events: fixture.Events[:1]}
	err = store.Save(ctx, eventsOnly, records.CollectionEvents)
	require.NoError(t, err)

	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	Equal(t, records.Snapshot{Fighters: fixture.Fighters, Events: fixture.Events[:1]}, loaded)

	err = store.Save(ctx, records.Snapshot{}, records.CollectionFighters)
	require.NoError(t, err)

	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, loaded.Fighters)
	require.Len(t, loaded.Events, 1)
}
