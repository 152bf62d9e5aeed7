package gidstats

import (
	"regexp"
	"strings"

	"fightstats-backend/lib/htmlutil"
	"fightstats-backend/lib/records"
	"fightstats-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// historyDate turns a DD.MM.YYYY date into an ISO date, anything else is
// kept as it was written.
func historyDate(raw string) string {
	date, ok := textutil.ConvertDate(raw)
	if !ok {
		return raw
	}
	return date
}

// historyResult maps the result column of the table layout to a history
// result and status. Anything unrecognized, like a no contest, has no result.
func historyResult(raw string) (string, string) {
	lower := strings.ToLower(raw)
	switch {
	case cancelledRegex.MatchString(lower) || strings.Contains(lower, "cancel"):
		return "", records.HistoryStatusCancelled
	case textutil.ContainsAny(lower, "победа", "win"):
		return records.HistoryWin, ""
	case textutil.ContainsAny(lower, "поражение", "loss", "lose"):
		return records.HistoryLose, ""
	case textutil.ContainsAny(lower, "ничья", "draw"):
		return records.HistoryDraw, ""
	}
	return "", ""
}

// columnField maps a history table header to the field it holds.
func columnField(header string) string {
	header = strings.ToLower(header)
	switch {
	case textutil.ContainsAny(header, "дата", "date"):
		return "date"
	case textutil.ContainsAny(header, "соперник", "opponent"):
		return "opponent"
	case textutil.ContainsAny(header, "результат", "result"):
		return "result"
	case textutil.ContainsAny(header, "метод", "method"):
		return "method"
	case textutil.ContainsAny(header, "турнир", "event"):
		return "event"
	case textutil.ContainsAny(header, "раунд", "round"):
		return "round"
	case textutil.ContainsAny(header, "время", "time"):
		return "time"
	}
	return ""
}

var defaultColumns = []string{"date", "opponent", "result", "method", "event", "round", "time"}

func setHistoryField(entry *records.HistoryEntry, field, value string) {
	switch field {
	case "date":
		entry.Date = historyDate(value)
	case "opponent":
		entry.Opponent = value
	case "result":
		entry.Result, entry.Status = historyResult(value)
	case "method":
		entry.Method = value
	case "event":
		entry.Event = value
	case "round":
		entry.Round = value
	case "time":
		entry.Time = value
	}
}

func parseHistoryTable(table *goquery.Selection) []records.HistoryEntry {
	var columns []string
	table.Find("thead th").Each(func(_ int, th *goquery.Selection) {
		columns = append(columns, columnField(htmlutil.Text(th)))
	})

	var history []records.HistoryEntry
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		fields := columns
		if len(fields) == 0 || cells.Length() != len(fields) {
			fields = defaultColumns
		}

		var entry records.HistoryEntry
		cells.Each(func(i int, td *goquery.Selection) {
			if i < len(fields) {
				setHistoryField(&entry, fields[i], htmlutil.Text(td))
			}
		})
		history = append(history, entry)
	})
	return history
}

var (
	listDateRegex   = regexp.MustCompile(`(\d{2}\.\d{2}\.\d{4})`)
	cancelledRegex  = regexp.MustCompile(`(?i)отмен[её]н`)
	versusNameRegex = regexp.MustCompile(`(?i)vs\s+(.*)`)
)

func parseHistoryItem(li *goquery.Selection) records.HistoryEntry {
	var entry records.HistoryEntry
	switch {
	case li.HasClass("history-list__item--win"):
		entry.Result = records.HistoryWin
	case li.HasClass("history-list__item--lose"):
		entry.Result = records.HistoryLose
	case li.HasClass("history-list__item--draw"):
		entry.Result = records.HistoryDraw
	case li.HasClass("history-list__item--cancelled"):
		entry.Status = records.HistoryStatusCancelled
	}

	top := li.Find(".top-wrapper")
	dateLine := htmlutil.Text(top.Find(".date"))
	m := listDateRegex.FindStringSubmatch(dateLine)
	if m != nil {
		entry.Date = historyDate(m[1])
	}
	if cancelledRegex.MatchString(dateLine) {
		entry.Status = records.HistoryStatusCancelled
	}
	if entry.Cancelled() {
		entry.Result = ""
	}

	opponent := top.Find(".info-block .pair a").First()
	if opponent.Length() > 0 {
		entry.Opponent = htmlutil.Text(opponent)
	} else {
		m := versusNameRegex.FindStringSubmatch(htmlutil.Text(top.Find(".info-block .pair")))
		if m != nil {
			entry.Opponent = strings.TrimSpace(m[1])
		}
	}

	entry.Round = htmlutil.Text(top.Find(".round span"))
	entry.Time = htmlutil.Text(top.Find(".time span"))
	entry.Method = htmlutil.Text(top.Find(".method span"))

	li.Find(".bottom-wrapper .info-list__item").Each(func(_ int, item *goquery.Selection) {
		caption := strings.ToLower(htmlutil.Text(item.Find(".top-text")))
		value := htmlutil.Text(item.Find(".bottom-text"))
		switch {
		case textutil.ContainsAny(caption, "турнир", "event"):
			entry.Event = value
		case strings.Contains(caption, "дивизион"):
			entry.Division = value
		case strings.Contains(caption, "важность боя"):
			entry.Importance = value
		case strings.Contains(caption, "способ победы"):
			entry.Method = value
		}
	})
	return entry
}

// parseHistory reads the fight history in either of the two page layouts,
// the table layout wins when both are present.
func parseHistory(doc *goquery.Document) []records.HistoryEntry {
	table := doc.Find("table.fight-history, table.fighter-history").First()
	if table.Length() > 0 {
		history := parseHistoryTable(table)
		if len(history) > 0 {
			return history
		}
	}

	var history []records.HistoryEntry
	doc.Find("ul.history-list li.history-list__item").Each(func(_ int, li *goquery.Selection) {
		history = append(history, parseHistoryItem(li))
	})
	return history
}
