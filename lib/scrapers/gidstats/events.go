package gidstats

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"fightstats-backend/lib/chrono"
	"fightstats-backend/lib/htmlutil"
	"fightstats-backend/lib/records"
	"fightstats-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// minEventsPerPage is the size of a full event list page, a shorter page is the last one.
const minEventsPerPage = 10

func (c *Client) eventListUrl(page int) string {
	if page <= 1 {
		return c.absolute("/ru/events/")
	}
	return c.absolute(fmt.Sprintf("/ru/events/page-%d.html", page))
}

// EventLinks walks the event list pages and returns the url of every event,
// in the order they are listed. A page that fails to load ends the walk.
func (c *Client) EventLinks(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "EventLinks")
	defer span.End()

	var links []string
	seen := make(map[string]struct{})

	for page := 1; ; page++ {
		pageUrl := c.eventListUrl(page)
		doc, err := c.fetch(ctx, pageUrl)
		if err != nil {
			if ctx.Err() != nil {
				return links, ctx.Err()
			}
			c.tel.ReportWarning(report_event_list, pageUrl, err)
			break
		}

		found := 0
		for _, a := range htmlutil.GetAnchors(ctx, doc.Find("a.events-list__link, a.events__link")) {
			if !strings.Contains(a.Href, "/ru/events/") {
				continue
			}
			found++
			link := c.absolute(a.Href)
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)
		}
		if found < minEventsPerPage {
			break
		}

		err = c.EventDelay(ctx)
		if err != nil {
			return links, err
		}
	}

	span.SetAttributes(attribute.Int("links", len(links)))
	c.tel.ReportCount(report_event_list, int64(len(links)))
	return links, nil
}

var roundsMarks = regexp.MustCompile(`[х×]`)

// parseCard reads the bouts of one card section, entries without exactly two
// fighter names are skipped.
func parseCard(doc *goquery.Document, sectionId string) []records.Bout {
	var card []records.Bout
	doc.Find(fmt.Sprintf("#%s li.other-fights-list__item", sectionId)).Each(func(_ int, li *goquery.Selection) {
		var names []string
		li.Find(".name").Each(func(_ int, name *goquery.Selection) {
			names = append(names, htmlutil.Text(name))
		})
		if len(names) != 2 {
			return
		}

		clock := li.Find(".center-block__clock").First()
		rounds := htmlutil.Text(clock.Find("span"))
		rounds = strings.TrimSpace(strings.ReplaceAll(rounds, "•", ""))
		rounds = roundsMarks.ReplaceAllString(rounds, "x")

		card = append(card, records.Bout{
			Fighter1: names[0],
			Fighter2: names[1],
			Weight:   htmlutil.Text(li.Find(".weight")),
			Time:     htmlutil.OwnText(clock),
			Rounds:   rounds,
		})
	})
	return card
}

// eventDate reads the date block, falling back to a date in the title.
func eventDate(raw, title string) (string, bool) {
	date, ok := textutil.ConvertDate(raw)
	if !ok {
		date, ok = textutil.DateFromTitle(title)
	}
	if !ok {
		return "", false
	}
	_, err := chrono.DayStart(date, time.UTC)
	return date, err == nil
}

// ParseEvent reads an event page. The slug is derived from the event title.
func (c *Client) ParseEvent(ctx context.Context, url string) (records.Event, error) {
	ctx, span := tracer.Start(ctx, "ParseEvent")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	doc, err := c.fetch(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return records.Event{}, err
	}

	event, err := parseEventDocument(doc)
	if err != nil {
		err = fmt.Errorf("%s: %w", url, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return records.Event{}, err
	}
	return event, nil
}

func parseEventDocument(doc *goquery.Document) (records.Event, error) {
	title := htmlutil.Text(doc.Find("h1.tournament-top__title, .events__title").First())
	if title == "" {
		title = htmlutil.Text(doc.Find("title").First())
	}
	if title == "" {
		return records.Event{}, fmt.Errorf("%w: event without a title", ErrParse)
	}

	rawDate := htmlutil.Text(doc.Find(".tournament-date .date"))
	date, ok := eventDate(rawDate, title)
	if !ok {
		return records.Event{}, fmt.Errorf("%w: %q (raw %q)", ErrInvalidDate, title, rawDate)
	}

	return records.Event{
		Slug:        textutil.Slugify(title),
		Name:        title,
		Date:        date,
		Time:        htmlutil.Text(doc.Find(".tournament-date .time")),
		Location:    htmlutil.Text(doc.Find(".tournament-date .address")),
		Poster:      DefaultEventPoster,
		MainCard:    parseCard(doc, "content1"),
		PrelimsCard: parseCard(doc, "content2"),
	}, nil
}
