package linker

import (
	"testing"

	"fightstats-backend/lib/records"

	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	testCases := []struct {
		method   string
		round    string
		expected string
	}{
		{method: "unanimous decision", expected: "UD"},
		{method: "Unanimous Decision", round: "3", expected: "UD"},
		{method: "Решением (единогласным)", round: "3", expected: "UD"},
		{method: "split decision", round: "3", expected: "SD"},
		{method: "Решением (раздельным)", expected: "SD"},
		{method: "majority decision", round: "3", expected: "MD"},
		{method: "Решением большинства", expected: "MD"},
		{method: "decision", round: "5", expected: "Decision"},
		{method: "KO (punch)", round: "1", expected: "KO, R1"},
		{method: "TKO (doctor stoppage)", round: "2", expected: "KO, R2"},
		{method: "Технический нокаут (удары)", round: "2", expected: "KO, R2"},
		{method: "submission (armbar)", round: "2", expected: "SUB, R2"},
		{method: "Сабмишн (удушение сзади)", expected: "SUB"},
		{method: "DQ (illegal knee)", round: "2", expected: "DQ, R2"},
		{method: "Дисквалификация", round: "1", expected: "DQ, R1"},
		{method: "draw", round: "3", expected: records.ResultDraw},
		{method: "Ничья", expected: records.ResultDraw},
		{method: "Отменён", round: "1", expected: records.ResultCancelled},
		{method: "cancelled", expected: records.ResultCancelled},
		{method: "Doctor stoppage", round: "3", expected: "Doctor stoppage, R3"},
		{method: "", round: "2", expected: "R2"},
		{method: "", expected: ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, Summarize(test.method, test.round), "method %q round %q", test.method, test.round)
	}
}

func TestOutcome(t *testing.T) {
	bout := records.Bout{Fighter1: "John Doe", Fighter2: "Jane Roe"}

	testCases := []struct {
		entry    records.HistoryEntry
		expected string
	}{
		{
			entry:    records.HistoryEntry{Result: records.HistoryWin, Method: "KO", Round: "1"},
			expected: "John Doe wins (KO, R1)",
		},
		{
			entry:    records.HistoryEntry{Result: records.HistoryLose, Method: "unanimous decision", Round: "3"},
			expected: "Jane Roe wins (UD)",
		},
		{
			entry:    records.HistoryEntry{Result: records.HistoryDraw, Method: "split decision"},
			expected: records.ResultDraw,
		},
		{
			entry:    records.HistoryEntry{Result: records.HistoryWin, Status: records.HistoryStatusCancelled},
			expected: records.ResultCancelled,
		},
		{
			entry:    records.HistoryEntry{},
			expected: "",
		},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, Outcome(bout, test.entry))
	}
}
