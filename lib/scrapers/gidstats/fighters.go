package gidstats

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"fightstats-backend/lib/htmlutil"
	"fightstats-backend/lib/records"
	"fightstats-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func (c *Client) fighterListUrl(page int) string {
	if page <= 1 {
		return c.absolute("/ru/fighters/")
	}
	return c.absolute(fmt.Sprintf("/ru/fighters/page-%d.html", page))
}

var lastPageRegex = regexp.MustCompile(`page-(\d+)\.html`)

// fighterAnchors adds the profile links of a list page to links, returning
// how many of them were new.
func (c *Client) fighterAnchors(ctx context.Context, doc *goquery.Document, links *[]string, seen map[string]struct{}) int {
	added := 0
	for _, a := range htmlutil.GetAnchors(ctx, doc.Find(`a[href^="/ru/fighters/"]`)) {
		if !strings.HasSuffix(a.Href, ".html") || strings.Contains(a.Href, "page-") {
			continue
		}
		link := c.absolute(a.Href)
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		*links = append(*links, link)
		added++
	}
	return added
}

// lastFighterPage reads the number of the last list page from the
// pagination block, it returns 0 when there is none.
func lastFighterPage(doc *goquery.Document) int {
	var last int
	doc.Find("div.pages a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.ToLower(htmlutil.Text(a)) != "последняя" {
			return true
		}
		m := lastPageRegex.FindStringSubmatch(a.AttrOr("href", ""))
		if m != nil {
			last, _ = strconv.Atoi(m[1])
		}
		return false
	})
	return last
}

// FighterLinks collects the profile url of every fighter from the fighter
// list. The walk ends at the last page of the pagination, at
// MaxFighterPages, or at the first page that adds no new profile.
//
// A list page other than the first that fails to load is skipped.
func (c *Client) FighterLinks(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "FighterLinks")
	defer span.End()

	var links []string
	seen := make(map[string]struct{})

	doc, err := c.fetch(ctx, c.fighterListUrl(1))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	c.fighterAnchors(ctx, doc, &links, seen)

	last := lastFighterPage(doc)
	if last <= 0 || last > c.opts.MaxFighterPages {
		last = c.opts.MaxFighterPages
	}
	span.SetAttributes(attribute.Int("last_page", last))

	for page := 2; page <= last; page++ {
		err = c.FighterDelay(ctx)
		if err != nil {
			return links, err
		}

		pageUrl := c.fighterListUrl(page)
		doc, err := c.fetch(ctx, pageUrl)
		if err != nil {
			if ctx.Err() != nil {
				return links, ctx.Err()
			}
			c.tel.ReportWarning(report_fighter_list, pageUrl, err)
			continue
		}
		if c.fighterAnchors(ctx, doc, &links, seen) == 0 {
			break
		}
	}

	span.SetAttributes(attribute.Int("links", len(links)))
	c.tel.ReportCount(report_fighter_list, int64(len(links)))
	return links, nil
}

// ParseFighter reads a fighter profile page.
func (c *Client) ParseFighter(ctx context.Context, url string) (records.Fighter, error) {
	ctx, span := tracer.Start(ctx, "ParseFighter")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	doc, err := c.fetch(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return records.Fighter{}, err
	}

	fighter, err := parseFighterDocument(doc, url)
	if err != nil {
		err = fmt.Errorf("%s: %w", url, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return records.Fighter{}, err
	}
	return fighter, nil
}

var fighterSlugRegex = regexp.MustCompile(`(?i)/fighters/([^/]+)\.html`)

func parseFighterDocument(doc *goquery.Document, url string) (records.Fighter, error) {
	name := fighterName(doc)
	if name == "" {
		return records.Fighter{}, fmt.Errorf("%w: fighter without a name", ErrParse)
	}

	f := records.Fighter{
		Name:  name,
		Image: DefaultFighterImage,
	}
	m := fighterSlugRegex.FindStringSubmatch(url)
	if m != nil {
		f.Slug = m[1]
	} else {
		f.Slug = textutil.Slugify(name)
	}

	nickname := htmlutil.Text(doc.Find("h3.nickname, .fighter-info__nickname").First())
	f.Nickname = strings.Trim(strings.NewReplacer(`"`, "", "'", "", "«", "", "»", "").Replace(nickname), " ")

	f.Wins, f.Losses, f.Draws = parseRecord(doc)
	f.Record = fmt.Sprintf("%d-%d-%d", f.Wins, f.Losses, f.Draws)

	parseDataList(doc, &f)
	parseRating(doc, &f)
	f.WinMethods, f.LossMethods = parseMethods(doc)
	f.Stats = parseStats(doc)
	f.Bio = parseBio(doc)
	f.FightsHistory = parseHistory(doc)

	return f, nil
}

// fighterName prefers the english name shown under the russian header.
func fighterName(doc *goquery.Document) string {
	header := htmlutil.Text(doc.Find("h1#name").First())
	english := htmlutil.Text(doc.Find("h2.name-english").First())
	if english != "" && !strings.EqualFold(english, header) {
		return english
	}
	return header
}

var (
	leadingIntRegex = regexp.MustCompile(`^\s*(\d+)`)
	firstIntRegex   = regexp.MustCompile(`(\d+)`)
	recordRegex     = regexp.MustCompile(`(\d+)\s*-\s*(\d+)\s*-\s*(\d+)`)
)

func leadingInt(s string) int {
	m := leadingIntRegex.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

func parseRecord(doc *goquery.Document) (wins, losses, draws int) {
	win := htmlutil.Text(doc.Find("span.win").First())
	lose := htmlutil.Text(doc.Find("span.lose").First())
	draw := htmlutil.Text(doc.Find("span.draw").First())
	if win != "" && lose != "" && draw != "" {
		return leadingInt(win), leadingInt(lose), leadingInt(draw)
	}

	m := recordRegex.FindStringSubmatch(doc.Find("div.fighter-info__record, .fighter-record").Text())
	if m == nil {
		return 0, 0, 0
	}
	wins, _ = strconv.Atoi(m[1])
	losses, _ = strconv.Atoi(m[2])
	draws, _ = strconv.Atoi(m[3])
	return wins, losses, draws
}

func parseDataList(doc *goquery.Document, f *records.Fighter) {
	doc.Find("ul.data-list > li").Each(func(_ int, li *goquery.Selection) {
		raw := strings.ToLower(htmlutil.Text(li))
		value := htmlutil.Text(li.Find(".value"))

		switch {
		case textutil.ContainsAny(raw, "возраст", "age"):
			f.Age = leadingInt(value)
		case textutil.ContainsAny(raw, "рост", "height"):
			f.Height = leadingInt(value)
		case textutil.ContainsAny(raw, "размах ног", "leg reach"):
			f.LegReach = leadingInt(value)
		case textutil.ContainsAny(raw, "размах рук", "reach"):
			f.Reach = leadingInt(value)
		case textutil.ContainsAny(raw, "вес", "weight"):
			f.Weight = leadingInt(value)
		case textutil.ContainsAny(raw, "место рождения", "born"):
			place := htmlutil.Text(li.Find(".new-style"))
			parts := strings.Split(place, ",")
			f.Country = strings.TrimSpace(parts[len(parts)-1])
		case textutil.ContainsAny(raw, "стойка", "stance"):
			f.Stance = value
		case textutil.ContainsAny(raw, "стиль", "style"):
			f.Style = value
		}
	})
}

var divisionRegex = regexp.MustCompile(`(?i)(Strawweight|Flyweight|Bantamweight|Featherweight|Light Heavyweight|Lightweight|Welterweight|Middleweight|Heavyweight)`)

func parseRating(doc *goquery.Document, f *records.Fighter) {
	rating := htmlutil.Text(doc.Find(".rating-fighter-box"))
	if rating == "" {
		return
	}
	f.Rank = rating
	division := divisionRegex.FindString(rating)
	if division != "" {
		f.Division = division
	}
	if textutil.ContainsAny(strings.ToLower(rating), "champion", "чемпион") {
		f.Rank = "Champion"
	}
}

var percentRegex = regexp.MustCompile(`(\d+)%`)

func methodList(doc *goquery.Document, list string) []records.MethodCount {
	var out []records.MethodCount
	doc.Find(fmt.Sprintf("ul.%s li", list)).Each(func(_ int, li *goquery.Selection) {
		method := htmlutil.Text(li.Find(fmt.Sprintf("p.%s__text", list)))
		if method == "" {
			return
		}
		detail := htmlutil.Text(li.Find(fmt.Sprintf("p.%s__text--down", list)))

		mc := records.MethodCount{Method: method}
		m := firstIntRegex.FindStringSubmatch(detail)
		if m != nil {
			mc.Count, _ = strconv.Atoi(m[1])
		}
		m = percentRegex.FindStringSubmatch(detail)
		if m != nil {
			mc.Percentage = m[1] + "%"
		}
		out = append(out, mc)
	})
	return out
}

func parseMethods(doc *goquery.Document) (wins, losses []records.MethodCount) {
	wins = methodList(doc, "wins-list")

	doc.Find("p.inner-wrapper__footer").Each(func(_ int, p *goquery.Selection) {
		text := htmlutil.Text(p)
		if !strings.Contains(text, "Неизвестных видов побед") {
			return
		}
		m := firstIntRegex.FindStringSubmatch(text)
		if m == nil {
			return
		}
		count, _ := strconv.Atoi(m[1])
		wins = append(wins, records.MethodCount{Method: "Unknown", Count: count})
	})

	losses = methodList(doc, "lose-list")
	return wins, losses
}

// applyStat stores one number of the stats list according to its caption.
func applyStat(stats *records.FighterStats, number, caption string) {
	caption = strings.ToLower(caption)
	switch {
	case strings.Contains(caption, "среднее время боя") && strings.Contains(caption, "ufc"):
		stats.FightTimeUfcAvg = number
	case strings.Contains(caption, "среднее время боя"):
		stats.FightTimeAvg = number
	case strings.Contains(caption, "тейкдаунов за бой"):
		stats.TakedownAverage = number
	case strings.Contains(caption, "защита от тейкдаун"):
		stats.TakedownDefense = number
	case strings.Contains(caption, "точность") && strings.Contains(caption, "тейкдаун"):
		stats.TakedownAccuracy = number
	case strings.Contains(caption, "акцентированных ударов в минуту") && strings.Contains(caption, "наносит"):
		stats.SignificantStrikesPerMinute = number
	case strings.Contains(caption, "акцентированных ударов в минуту") && strings.Contains(caption, "пропускает"):
		stats.SignificantStrikesAbsorbed = number
	case strings.Contains(caption, "точность акцентированных ударов"):
		stats.SignificantStrikeAccuracy = number
	case strings.Contains(caption, "защита от акцентированного удара"):
		stats.SignificantStrikeDefense = number
	case strings.Contains(caption, "сабмишенов") && strings.Contains(caption, "15"):
		stats.SubmissionAttemptsPer15Min, _ = strconv.ParseFloat(strings.ReplaceAll(number, ",", "."), 64)
	case strings.Contains(caption, "финиши в первом раунде"):
		stats.FirstRoundFinishes = leadingInt(number)
	}
}

func parseStats(doc *goquery.Document) records.FighterStats {
	var stats records.FighterStats
	doc.Find("li.stats-list__item").Each(func(_ int, li *goquery.Selection) {
		for _, block := range []string{".left-block", ".right-block"} {
			b := li.Find(block)
			number := htmlutil.Text(b.Find(".number"))
			if number == "" {
				continue
			}
			applyStat(&stats, number, htmlutil.Text(b.Find(".text")))
		}
	})
	return stats
}

func parseBio(doc *goquery.Document) string {
	var paragraphs []string
	doc.Find(".fighter-info__bio, .fighter-profile__text p").Each(func(_ int, p *goquery.Selection) {
		text := htmlutil.Text(p)
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n\n")
}
