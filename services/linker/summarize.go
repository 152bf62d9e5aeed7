package linker

import (
	"fmt"
	"strings"

	"fightstats-backend/lib/records"
	"fightstats-backend/lib/textutil"
)

// Summarize compresses a free-text method and round into a short code such
// as "UD", "KO, R1" or "SUB, R2". Keywords are matched in russian and english.
func Summarize(method, round string) string {
	lower := strings.ToLower(method)
	round = strings.TrimSpace(round)

	// decisions go the distance, the round is never appended
	if textutil.ContainsAny(lower, "решением", "decision") {
		switch {
		case textutil.ContainsAny(lower, "единоглас", "unanimous"):
			return "UD"
		case textutil.ContainsAny(lower, "раздель", "split"):
			return "SD"
		case textutil.ContainsAny(lower, "большин", "majority"):
			return "MD"
		default:
			return "Decision"
		}
	}

	short := strings.TrimSpace(method)
	switch {
	case textutil.ContainsAny(lower, "нокаут", "ko", "tko"):
		short = "KO"
	case textutil.ContainsAny(lower, "сабмиш", "submission"):
		short = "SUB"
	case textutil.ContainsAny(lower, "дисквал", "dq"):
		short = "DQ"
	case textutil.ContainsAny(lower, "ничья", "draw"):
		return records.ResultDraw
	case textutil.ContainsAny(lower, "отмен", "cancel"):
		return records.ResultCancelled
	}

	if round == "" {
		return short
	}
	if short == "" {
		return "R" + round
	}
	return fmt.Sprintf("%s, R%s", short, round)
}

// Outcome derives the result of a bout from fighter1's history entry of it.
// It returns "" when the entry carries no outcome.
func Outcome(bout records.Bout, entry records.HistoryEntry) string {
	if entry.Cancelled() {
		return records.ResultCancelled
	}
	switch entry.Result {
	case records.HistoryWin:
		return fmt.Sprintf("%s wins (%s)", bout.Fighter1, Summarize(entry.Method, entry.Round))
	case records.HistoryLose:
		return fmt.Sprintf("%s wins (%s)", bout.Fighter2, Summarize(entry.Method, entry.Round))
	case records.HistoryDraw:
		return records.ResultDraw
	}
	return ""
}
