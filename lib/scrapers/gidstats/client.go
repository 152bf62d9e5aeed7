// Package gidstats scrapes event and fighter pages from gidstats.com.
//
// Pages are fetched one at a time with a politeness delay between them, a
// failed page is retried a few times before it is given up on.
package gidstats

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"fightstats-backend/lib/pagecache"
	"fightstats-backend/lib/telemetry"
	"fightstats-backend/lib/util/restyutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/codeGROOVE-dev/retry"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("fightstats.lib.scrapers.gidstats")

const (
	report_fetch_retry  = "gidstats.fetch-retry"
	report_event_list   = "gidstats.event-links"
	report_fighter_list = "gidstats.fighter-links"
	report_dump_dir     = "gidstats.dump-dir"
)

var (
	// ErrParse wraps every failure to fetch or read a single page.
	ErrParse = errors.New("gidstats: parse failed")
	// ErrInvalidDate is returned for an event page without a usable date.
	ErrInvalidDate = errors.New("gidstats: invalid event date")
)

const (
	DefaultBaseUrl      = "https://gidstats.com"
	DefaultEventPoster  = "/assets/images/ufc_logo.jpg"
	DefaultFighterImage = "/assets/images/fighter_default.png"
)

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
	"Mozilla/5.0 (X11; Linux x86_64)",
}

type Options struct {
	BaseUrl string `json:"base_url"`
	// Retries is the number of attempts made for every page.
	Retries int `json:"retries"`
	// RetryDelay in milliseconds.
	RetryDelay int `json:"retry_delay"`
	// Timeout of a single request in seconds.
	Timeout    int      `json:"timeout"`
	UserAgents []string `json:"user_agents"`

	// MaxFighterPages bounds the fighter list when its last page is unknown.
	MaxFighterPages int `json:"max_fighter_pages"`
	// EventDelay and FighterDelay are the pauses between page loads in milliseconds.
	EventDelay   int `json:"event_delay"`
	FighterDelay int `json:"fighter_delay"`

	// DumpDir, when set, receives a copy of every exchange with the site.
	DumpDir string `json:"dump_dir"`

	Cache pagecache.Cache `json:"-"`
	Tel   telemetry.API   `json:"-"`
}

func (o *Options) setDefaults() {
	if o.BaseUrl == "" {
		o.BaseUrl = DefaultBaseUrl
	}
	o.BaseUrl = strings.TrimSuffix(o.BaseUrl, "/")
	if o.Retries <= 0 {
		o.Retries = 3
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 1000
	}
	if o.Timeout <= 0 {
		o.Timeout = 10
	}
	if len(o.UserAgents) == 0 {
		o.UserAgents = defaultUserAgents
	}
	if o.MaxFighterPages <= 0 {
		o.MaxFighterPages = 500
	}
	if o.EventDelay < 0 {
		o.EventDelay = 0
	}
	if o.FighterDelay < 0 {
		o.FighterDelay = 0
	}
	if o.Cache == nil {
		o.Cache = pagecache.Nop{}
	}
	if o.Tel == nil {
		o.Tel = telemetry.SlogAPI{}
	}
}

type Client struct {
	http *resty.Client
	opts Options
	tel  telemetry.API
}

func NewClient(opts Options) *Client {
	opts.setDefaults()

	tel := telemetry.NewScopedAPI("gidstats", opts.Tel)
	client := resty.New()
	client.SetTimeout(time.Duration(opts.Timeout) * time.Second)
	client.SetHeader("Accept-Language", "ru,en;q=0.8")
	telemetry.InstrumentResty(client, "fightstats.lib.scrapers.gidstats.http", tel)
	if opts.DumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(opts.DumpDir)
		if err != nil {
			tel.ReportWarning(report_dump_dir, err, opts.DumpDir)
		} else {
			restyutil.DumpResponses(client, output)
		}
	}

	return &Client{
		http: client,
		opts: opts,
		tel:  tel,
	}
}

// HTTPError is a page that was answered with a non 200 status.
type HTTPError struct {
	StatusCode int
	Url        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Url)
}

func retryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	return true
}

func (c *Client) userAgent() string {
	return c.opts.UserAgents[rand.IntN(len(c.opts.UserAgents))]
}

// absolute resolves a site relative href against the base url.
func (c *Client) absolute(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return c.opts.BaseUrl + href
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	page, ok := c.opts.Cache.Get(ctx, url)
	if ok {
		return page, nil
	}

	page, err := retry.DoWithData(
		func() ([]byte, error) {
			res, err := c.http.R().
				SetContext(ctx).
				SetHeader("User-Agent", c.userAgent()).
				Get(url)
			if err != nil {
				return nil, err
			}
			if res.StatusCode() != http.StatusOK {
				return nil, &HTTPError{StatusCode: res.StatusCode(), Url: url}
			}
			return res.Body(), nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.opts.Retries)),
		retry.Delay(time.Duration(c.opts.RetryDelay)*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			c.tel.ReportWarning(report_fetch_retry, url, n+1, err)
		}),
	)
	if err != nil {
		return nil, err
	}

	c.opts.Cache.Set(ctx, url, page)
	return page, nil
}

func (c *Client) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	page, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %w", ErrParse, url, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrParse, url, err)
	}
	return doc, nil
}

// pause waits between two page loads, it returns early with the context's
// error when the context is done.
func pause(ctx context.Context, ms int) error {
	if ms <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// EventDelay and FighterDelay are exposed so callers iterating over links
// can keep the same pace as the list crawls.
func (c *Client) EventDelay(ctx context.Context) error {
	return pause(ctx, c.opts.EventDelay)
}

func (c *Client) FighterDelay(ctx context.Context) error {
	return pause(ctx, c.opts.FighterDelay)
}
