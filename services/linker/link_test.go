package linker

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"fightstats-backend/lib/chrono"
	"fightstats-backend/lib/records"
	"fightstats-backend/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

const (
	pastDate   = "2024-05-01"
	futureDate = "2024-07-01"
)

func newTestLinker(t testing.TB, tel telemetry.API) Linker {
	if tel == nil {
		tel = &telemetry.Recorder{}
	}
	l, err := NewLinker(Options{
		Clock: chrono.Fixed{At: testNow},
		Tel:   tel,
	})
	require.NoError(t, err)
	return l
}

func testFighters(history ...records.HistoryEntry) []records.Fighter {
	return []records.Fighter{
		{ID: 1, Slug: "john-doe", Name: "John Doe", FightsHistory: history},
		{ID: 2, Slug: "jane-roe", Name: "Jane Roe"},
	}
}

func testEvent(date string, bouts ...records.Bout) records.Event {
	return records.Event{
		ID:       1,
		Slug:     "fight-night-50",
		Name:     "Fight Night 50",
		Date:     date,
		MainCard: bouts,
	}
}

func TestScenarios(t *testing.T) {
	testCases := []struct {
		name     string
		fighters []records.Fighter
		events   []records.Event
		expected records.Bout
	}{
		{
			name: "decision without round",
			fighters: testFighters(records.HistoryEntry{
				Event:    "Fight Night 50",
				Opponent: "Jane Roe",
				Result:   records.HistoryWin,
				Method:   "unanimous decision",
			}),
			events: []records.Event{testEvent(pastDate, records.Bout{
				Fighter1: "John Doe",
				Fighter2: "Jane Roe",
			})},
			expected: records.Bout{
				Fighter1:     "John Doe",
				Fighter2:     "Jane Roe",
				Fighter1Slug: "john-doe",
				Fighter2Slug: "jane-roe",
				Result:       "John Doe wins (UD)",
			},
		},
		{
			name: "submission with round",
			fighters: testFighters(records.HistoryEntry{
				Event:    "Fight Night 50",
				Opponent: "Jane Roe",
				Result:   records.HistoryWin,
				Method:   "submission (armbar)",
				Round:    "2",
			}),
			events: []records.Event{testEvent(pastDate, records.Bout{
				Fighter1: "John Doe",
				Fighter2: "Jane Roe",
			})},
			expected: records.Bout{
				Fighter1:     "John Doe",
				Fighter2:     "Jane Roe",
				Fighter1Slug: "john-doe",
				Fighter2Slug: "jane-roe",
				Result:       "John Doe wins (SUB, R2)",
			},
		},
		{
			name:     "typo resolved by fuzzy match",
			fighters: testFighters(),
			events: []records.Event{testEvent(futureDate, records.Bout{
				Fighter1: "Jon Doe",
				Fighter2: "Jane Roe",
			})},
			expected: records.Bout{
				Fighter1:     "Jon Doe",
				Fighter2:     "Jane Roe",
				Fighter1Slug: "john-doe",
				Fighter2Slug: "jane-roe",
				Result:       records.ResultTBD,
			},
		},
		{
			name: "no plausible match",
			fighters: testFighters(records.HistoryEntry{
				Event:    "Fight Night 50",
				Opponent: "Jane Roe",
				Result:   records.HistoryWin,
				Method:   "KO",
			}),
			events: []records.Event{testEvent(pastDate, records.Bout{
				Fighter1: "Xavier Quintana-Bloomfield",
				Fighter2: "Jane Roe",
			})},
			expected: records.Bout{
				Fighter1:     "Xavier Quintana-Bloomfield",
				Fighter2:     "Jane Roe",
				Fighter2Slug: "jane-roe",
				Result:       records.ResultTBD,
			},
		},
		{
			name:     "future event without history",
			fighters: testFighters(),
			events: []records.Event{testEvent(futureDate, records.Bout{
				Fighter1: "John Doe",
				Fighter2: "Jane Roe",
			})},
			expected: records.Bout{
				Fighter1:     "John Doe",
				Fighter2:     "Jane Roe",
				Fighter1Slug: "john-doe",
				Fighter2Slug: "jane-roe",
				Result:       records.ResultTBD,
			},
		},
		{
			name: "future event with a matching history entry",
			fighters: testFighters(records.HistoryEntry{
				Event:    "Fight Night 50",
				Opponent: "Jane Roe",
				Result:   records.HistoryWin,
				Method:   "KO",
				Round:    "1",
			}),
			events: []records.Event{testEvent(futureDate, records.Bout{
				Fighter1: "John Doe",
				Fighter2: "Jane Roe",
			})},
			expected: records.Bout{
				Fighter1:     "John Doe",
				Fighter2:     "Jane Roe",
				Fighter1Slug: "john-doe",
				Fighter2Slug: "jane-roe",
				Result:       records.ResultTBD,
			},
		},
		{
			name: "loss credited to the second fighter",
			fighters: testFighters(records.HistoryEntry{
				Event:    "Fight Night 50",
				Opponent: "Jane Roe",
				Result:   records.HistoryLose,
				Method:   "TKO (punches)",
				Round:    "3",
			}),
			events: []records.Event{testEvent(pastDate, records.Bout{
				Fighter1: "John Doe",
				Fighter2: "Jane Roe",
			})},
			expected: records.Bout{
				Fighter1:     "John Doe",
				Fighter2:     "Jane Roe",
				Fighter1Slug: "john-doe",
				Fighter2Slug: "jane-roe",
				Result:       "Jane Roe wins (KO, R3)",
			},
		},
		{
			name: "cancelled fight",
			fighters: testFighters(records.HistoryEntry{
				Event:    "Fight Night 50",
				Opponent: "Jane Roe",
				Status:   records.HistoryStatusCancelled,
			}),
			events: []records.Event{testEvent(pastDate, records.Bout{
				Fighter1: "John Doe",
				Fighter2: "Jane Roe",
			})},
			expected: records.Bout{
				Fighter1:     "John Doe",
				Fighter2:     "Jane Roe",
				Fighter1Slug: "john-doe",
				Fighter2Slug: "jane-roe",
				Result:       records.ResultCancelled,
			},
		},
		{
			name: "existing result is not overwritten",
			fighters: testFighters(records.HistoryEntry{
				Event:    "Fight Night 50",
				Opponent: "Jane Roe",
				Result:   records.HistoryWin,
				Method:   "KO",
			}),
			events: []records.Event{testEvent(pastDate, records.Bout{
				Fighter1: "John Doe",
				Fighter2: "Jane Roe",
				Result:   "No contest",
			})},
			expected: records.Bout{
				Fighter1:     "John Doe",
				Fighter2:     "Jane Roe",
				Fighter1Slug: "john-doe",
				Fighter2Slug: "jane-roe",
				Result:       "No contest",
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			l := newTestLinker(t, nil)
			l.Run(context.Background(), test.fighters, test.events)

			diff := cmp.Diff(test.expected, test.events[0].MainCard[0])
			if diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestBackfillOpponentNameFallback(t *testing.T) {
	// the history entry keeps a free-text opponent that no fighter carries
	fighters := testFighters(records.HistoryEntry{
		EventSlug: "fight-night-50",
		Opponent:  "J. Roe",
		Result:    records.HistoryWin,
		Method:    "Решением (раздельным)",
		Round:     "3",
	})
	events := []records.Event{testEvent(pastDate, records.Bout{
		Fighter1:     "John Doe",
		Fighter2:     "J. Roe",
		Fighter1Slug: "john-doe",
		Fighter2Slug: "jane-roe",
	})}

	var report Report
	BackfillResults(fighters, events, testNow, &report)

	require.Equal(t, "John Doe wins (SD)", events[0].MainCard[0].Result)
	require.Equal(t, 1, report.ResultsBackfilled)
}

func TestDefaultTBD(t *testing.T) {
	events := []records.Event{testEvent(
		pastDate,
		records.Bout{Fighter1: "Nobody", Fighter2: "Somebody"},
		records.Bout{Fighter1: "John Doe", Fighter2: "Jane Roe", Result: "Draw"},
	)}
	events[0].PrelimsCard = []records.Bout{{Fighter1: "John Doe", Fighter2: "Jane Roe"}}

	fighters := testFighters()
	indices := NewIndices(fighters, events, DefaultMaxDistance, nil)
	var report Report
	LinkBouts(events, indices, &report)

	require.Equal(t, records.ResultTBD, events[0].MainCard[0].Result)
	require.Equal(t, "Draw", events[0].MainCard[1].Result)
	require.Equal(t, records.ResultTBD, events[0].PrelimsCard[0].Result)
}

func linkFixture() ([]records.Fighter, []records.Event) {
	fighters := []records.Fighter{
		{
			Slug: "john-doe", Name: "John Doe", Nickname: "The Hammer",
			FightsHistory: []records.HistoryEntry{
				{Event: "Fight Night 50", Opponent: "Jane Roe", Result: records.HistoryWin, Method: "KO (punch)", Round: "1"},
				{Event: "Fight Nigt 49", Opponent: "Mike Smith", Result: records.HistoryLose, Method: "split decision", Round: "3"},
				{Event: "Unknown Local Promotion", Opponent: "Xavier Quintana-Bloomfield", Result: records.HistoryWin, Method: "submission", Round: "2"},
			},
		},
		{
			Slug: "jane-roe", Name: "Jane Roe",
			FightsHistory: []records.HistoryEntry{
				{Event: "Fight Night 50", Opponent: "John Doe", Result: records.HistoryLose, Method: "KO (punch)", Round: "1"},
			},
		},
		{Slug: "mike-smith", Name: "Mike Smith"},
	}
	events := []records.Event{
		{
			Slug: "fight-night-49", Name: "Fight Night 49", Date: "2024-04-01",
			MainCard: []records.Bout{{Fighter1: "John Doe", Fighter2: "Mike Smith"}},
		},
		{
			Slug: "fight-night-50", Name: "Fight Night 50", Date: pastDate,
			MainCard:    []records.Bout{{Fighter1: "The Hammer", Fighter2: "Jane Roe"}},
			PrelimsCard: []records.Bout{{Fighter1: "Mike Smyth", Fighter2: "Xavier Quintana-Bloomfield"}},
		},
		{
			Slug: "fight-night-51", Name: "Fight Night 51", Date: futureDate,
			MainCard: []records.Bout{{Fighter1: "Jane Roe", Fighter2: "Mike Smith"}},
		},
	}
	return fighters, events
}

func marshalSnapshot(t testing.TB, fighters []records.Fighter, events []records.Event) []byte {
	out, err := json.Marshal(records.Snapshot{Fighters: fighters, Events: events})
	require.NoError(t, err)
	return out
}

func TestIdempotence(t *testing.T) {
	l := newTestLinker(t, nil)
	fighters, events := linkFixture()

	l.Run(context.Background(), fighters, events)
	first := marshalSnapshot(t, fighters, events)

	l.Run(context.Background(), fighters, events)
	second := marshalSnapshot(t, fighters, events)

	require.Equal(t, string(first), string(second))

	// the fixture exercises every path of the linker
	require.Equal(t, "john-doe", events[1].MainCard[0].Fighter1Slug)
	require.Equal(t, "Mike Smith wins (SD)", events[0].MainCard[0].Result)
	require.Equal(t, "The Hammer wins (KO, R1)", events[1].MainCard[0].Result)
	require.Equal(t, records.ResultTBD, events[1].PrelimsCard[0].Result)
	require.Equal(t, records.ResultTBD, events[2].MainCard[0].Result)
	require.Equal(t, "fight-night-49", fighters[0].FightsHistory[1].EventSlug)
	require.Empty(t, fighters[0].FightsHistory[2].EventSlug)
	require.Empty(t, fighters[0].FightsHistory[2].OpponentSlug)
}

// resolvedFields flattens every slug and result that has been set.
func resolvedFields(fighters []records.Fighter, events []records.Event) map[string]string {
	out := map[string]string{}
	set := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}
	for i, e := range events {
		for c, card := range e.Cards() {
			for j, b := range card {
				prefix := fmt.Sprintf("events[%d].cards[%d][%d]", i, c, j)
				set(prefix+".fighter1_slug", b.Fighter1Slug)
				set(prefix+".fighter2_slug", b.Fighter2Slug)
				set(prefix+".result", b.Result)
			}
		}
	}
	for i, f := range fighters {
		for j, h := range f.FightsHistory {
			prefix := fmt.Sprintf("fighters[%d].history[%d]", i, j)
			set(prefix+".event_slug", h.EventSlug)
			set(prefix+".opponent_slug", h.OpponentSlug)
		}
	}
	return out
}

func TestMonotonicity(t *testing.T) {
	fighters, events := linkFixture()
	indices := NewIndices(fighters, events, DefaultMaxDistance, nil)
	var report Report

	var stages []map[string]string
	stages = append(stages, resolvedFields(fighters, events))
	LinkBouts(events, indices, &report)
	stages = append(stages, resolvedFields(fighters, events))
	LinkHistory(fighters, indices, &report)
	stages = append(stages, resolvedFields(fighters, events))
	BackfillResults(fighters, events, testNow, &report)
	stages = append(stages, resolvedFields(fighters, events))

	for i := 1; i < len(stages); i++ {
		for key, value := range stages[i-1] {
			later, ok := stages[i][key]
			require.True(t, ok, "stage %d unset %s", i, key)
			if value == records.ResultTBD {
				// the only transition a set field may make
				continue
			}
			require.Equal(t, value, later, "stage %d changed %s", i, key)
		}
	}
	require.Greater(t, len(stages[3]), len(stages[0]))
}

func TestAmbiguousNames(t *testing.T) {
	fighters := []records.Fighter{
		{Slug: "alex-silva", Name: "Alex Silva"},
		{Slug: "alex-silva-2", Name: "Alex Silva"},
		{Slug: "jane-roe", Name: "Jane Roe"},
	}
	events := []records.Event{testEvent(pastDate, records.Bout{
		Fighter1: "Alex Silva",
		Fighter2: "Jane Roe",
	})}

	rec := &telemetry.Recorder{}
	l := newTestLinker(t, rec)
	report := l.Run(context.Background(), fighters, events)

	require.Empty(t, events[0].MainCard[0].Fighter1Slug)
	require.Equal(t, "jane-roe", events[0].MainCard[0].Fighter2Slug)
	require.Equal(t, []Reference{{Kind: RefFighter, Owner: "fight-night-50", Name: "Alex Silva"}}, report.Ambiguous)

	count, ok := rec.Count(report_linker_conflict)
	require.True(t, ok)
	require.EqualValues(t, 1, count)
}

func TestRunReport(t *testing.T) {
	fighters, events := linkFixture()
	rec := &telemetry.Recorder{}
	l := newTestLinker(t, rec)

	report := l.Run(context.Background(), fighters, events)

	var fuzzyNames []string
	for _, f := range report.Fuzzy {
		fuzzyNames = append(fuzzyNames, f.Name)
	}
	require.ElementsMatch(t, []string{"The Hammer", "Mike Smyth", "Fight Nigt 49"}, fuzzyNames)
	require.NotEmpty(t, report.Unresolved)
	require.Empty(t, report.LowConfidence(0.99))

	count, ok := rec.Count(report_linker_fuzzy)
	require.True(t, ok)
	require.EqualValues(t, len(report.Fuzzy), count)
}

func TestReset(t *testing.T) {
	fighters, events := linkFixture()
	l := newTestLinker(t, nil)
	l.Run(context.Background(), fighters, events)
	linked := marshalSnapshot(t, fighters, events)

	Reset(fighters, events)
	for key, value := range resolvedFields(fighters, events) {
		require.Contains(t, key, ".result")
		require.NotEqual(t, records.ResultTBD, value)
	}

	l.Run(context.Background(), fighters, events)
	require.Equal(t, string(linked), string(marshalSnapshot(t, fighters, events)))
}
