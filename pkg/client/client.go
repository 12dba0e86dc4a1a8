// Package client talks to the tracking backend: kit validation, menu
// loading and the save endpoints.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/kittrack/kittrack/pkg/menu"
	"github.com/kittrack/kittrack/pkg/tracking"
	"github.com/kittrack/kittrack/pkg/whttp"
	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyKitID           = errors.New("kit id is empty")
	ErrInvalidKit           = errors.New("kit id is not valid")
	ErrNoFoodSelected       = errors.New("no food selected")
	ErrMoodAlreadySubmitted = errors.New("mood already submitted today")
	ErrSubmissionFailed     = errors.New("submission failed")
)

// Alerter shows a blocking message to the user.
type Alerter interface {
	Alert(msg string)
}

// Navigator moves the user to another view after a successful operation.
type Navigator interface {
	Navigate(path string)
}

// Store is the subset of the local store the client needs.
type Store interface {
	SetKitID(ctx context.Context, kitID string) error
	AppendRecord(ctx context.Context, rec tracking.TrackingRecord) error
	MoodSubmittedToday(ctx context.Context, now time.Time) (bool, error)
	MarkMoodSubmitted(ctx context.Context, now time.Time) error
}

type nopAlerter struct{}

func (nopAlerter) Alert(string) {}

type nopNavigator struct{}

func (nopNavigator) Navigate(string) {}

// Option configures a Client.
type Option func(*Client)

func WithAlerter(a Alerter) Option     { return func(c *Client) { c.alert = a } }
func WithNavigator(n Navigator) Option { return func(c *Client) { c.nav = n } }
func WithStore(s Store) Option         { return func(c *Client) { c.store = s } }
func WithLogger(l tracking.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithRetries sets how many times idempotent GETs are retried. Saves are
// never retried automatically.
func WithRetries(n int) Option { return func(c *Client) { c.retries = n } }
func WithProxy(p string) Option { return func(c *Client) { c.proxy = p } }

// WithTimeout bounds each HTTP attempt. Zero means no limit.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

// WithOfflineLog appends every successfully submitted record to the local
// health data log.
func WithOfflineLog(on bool) Option { return func(c *Client) { c.offlineLog = on } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(c *Client) { c.now = now } }

// WithHTTPLogger routes retryablehttp's own logging to logrus.
func WithHTTPLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.httpLog = l }
}

type Client struct {
	baseURL string
	reads   *retryablehttp.Client
	writes  *retryablehttp.Client

	alert      Alerter
	nav        Navigator
	store      Store
	log        tracking.Logger
	httpLog    logrus.FieldLogger
	retries    int
	proxy      string
	timeout    time.Duration
	offlineLog bool
	now        func() time.Time
}

func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		alert:   nopAlerter{},
		nav:     nopNavigator{},
		log:     tracking.NopLogger{},
		retries: 2,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	var err error
	c.reads, err = whttp.NewClient(whttp.ClientOptions{RetryMax: c.retries, Proxy: c.proxy, Timeout: c.timeout, Log: c.httpLog})
	if err != nil {
		return nil, err
	}
	c.writes, err = whttp.NewClient(whttp.ClientOptions{RetryMax: 0, Proxy: c.proxy, Timeout: c.timeout, Log: c.httpLog})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// MenuLoader returns a menu loader sharing this client's transport.
func (c *Client) MenuLoader() *menu.Loader {
	return menu.NewLoader(c.baseURL, c.reads, c.log)
}

// InsightsPath is where the user lands after a successful submission.
func InsightsPath(kitID string) string {
	return "/insights/" + url.PathEscape(kitID) + "?new_submission=true"
}

// ResponseError is a save endpoint reporting failure.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server rejected request (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server rejected request (status %d)", e.StatusCode)
}
