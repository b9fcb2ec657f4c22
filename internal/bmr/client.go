// Package bmr drives a BMR HC64 heating controller over its HTTP form
// interface. The device speaks a fixed-width ASCII protocol, holds no real
// session token and is slow to apply commands; this client wraps every read
// in a short recency cache plus exponential backoff, re-authenticates
// transparently when a response comes back empty, and reconciles
// client-side temperature overrides against the device on every circuit
// read.
package bmr

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gobmr/gobmr/internal/cache"
	"github.com/gobmr/gobmr/internal/override"
	"github.com/gobmr/gobmr/internal/retry"
	"github.com/gobmr/gobmr/internal/store"
)

const (
	DefaultTimeout   = 60 * time.Second
	DefaultCacheTTL  = 10 * time.Second
	DefaultCacheSize = 128
)

// The login page renders this marker when credentials are rejected; there
// is no status code to check.
const authErrorMarker = "res_error_title"

// JournalFunc receives every device-mutating command the client sends.
// circuitID is -1 for commands that target the whole unit.
type JournalFunc func(kind string, circuitID int, value float64, ok bool)

// Options configures a Client. BaseURL, Username and Password are
// required; everything else has a default or is optional.
type Options struct {
	BaseURL  string
	Username string
	Password string

	Timeout   time.Duration // per-request bound, default 60s
	CacheTTL  time.Duration
	CacheSize int
	Retry     retry.Policy

	// Store persists temperature overrides across restarts. With no store
	// overrides live only in memory and a warning is logged when one
	// would have been written.
	Store store.Store

	// Journal, when set, records every device write.
	Journal JournalFunc

	// CacheObserver receives cache hit/miss callbacks, typically wired to
	// metrics.
	CacheObserver cache.Observer

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Client drives one HC64 controller. All public methods serialize on a
// single mutex: the device is confused by concurrent commands, and circuit
// reads may issue writes while reconciling overrides.
type Client struct {
	mu sync.Mutex

	baseURL  string
	username string
	password string

	http    *http.Client
	policy  retry.Policy
	journal JournalFunc
	now     func() time.Time

	store     store.Store
	overrides *override.Map

	reads        *cache.TTL[string]
	uniqueID     cache.Latest[string]
	numCircuits  cache.Latest[int]
	circuitNames cache.Latest[[]string]
}

// New builds a Client and loads persisted overrides from the store. A
// store that fails to load logs a warning and the client starts with no
// overrides rather than refusing to start.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("bmr: base URL is required")
	}
	if opts.Username == "" || opts.Password == "" {
		return nil, errors.New("bmr: credentials are required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultPolicy()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		username:  opts.Username,
		password:  opts.Password,
		http:      &http.Client{Timeout: opts.Timeout},
		policy:    opts.Retry,
		journal:   opts.Journal,
		now:       opts.Now,
		store:     opts.Store,
		overrides: override.NewMap(),
		reads:     cache.NewTTL[string]("device_reads", opts.CacheTTL, opts.CacheSize, opts.CacheObserver),
	}
	if c.store != nil {
		records, err := c.store.Load()
		if err != nil {
			log.Warn().Err(err).Msg("Could not load persisted overrides, starting empty")
		} else {
			c.overrides = override.MapFromRecords(records)
		}
	}
	return c, nil
}

// postOnce performs one POST without the session-expiry resend.
func (c *Client) postOnce(endpoint string, form url.Values) (string, error) {
	resp, err := c.http.PostForm(c.baseURL+endpoint, form)
	if err != nil {
		return "", &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &TransportError{Endpoint: endpoint, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Endpoint: endpoint, Err: err}
	}
	return string(body), nil
}

func (c *Client) login() error {
	day := c.now().Day()
	form := url.Values{}
	form.Set("loginName", LoginHash(c.username, day))
	form.Set("passwd", LoginHash(c.password, day))
	body, err := c.postOnce("/menu.html", form)
	if err != nil {
		return err
	}
	if strings.Contains(body, authErrorMarker) {
		return &AuthError{Reason: "controller rejected credentials"}
	}
	return nil
}

// post sends one request. The controller answers with an empty or
// single-NUL body once it has forgotten the client, so such a body
// triggers one transparent re-login and resend.
func (c *Client) post(endpoint string, form url.Values) (string, error) {
	body, err := c.postOnce(endpoint, form)
	if err != nil {
		return "", err
	}
	if !sessionExpired(body) {
		return body, nil
	}
	log.Debug().Str("endpoint", endpoint).Msg("Empty response from controller, re-authenticating")
	if err := c.login(); err != nil {
		return "", err
	}
	body, err = c.postOnce(endpoint, form)
	if err != nil {
		return "", err
	}
	if sessionExpired(body) {
		return "", &TransportError{Endpoint: endpoint, Err: errors.New("empty response after re-authentication")}
	}
	return body, nil
}

func sessionExpired(body string) bool {
	return body == "" || body == "\x00"
}

func paramPlus() url.Values {
	form := url.Values{}
	form.Set("param", "+")
	return form
}

// readCached fetches and decodes one read endpoint. Hits decode straight
// from the cached response text; misses run post + decode inside the retry
// policy, so a malformed response is retried like a transport failure, and
// only validated text is cached.
func readCached[T any](c *Client, key, endpoint string, form url.Values, decode func(string) (T, error)) (T, error) {
	if text, ok := c.reads.Get(key); ok {
		return decode(text)
	}
	var out T
	err := c.policy.Do(func() error {
		text, err := c.post(endpoint, form)
		if err != nil {
			return err
		}
		v, err := decode(text)
		if err != nil {
			return err
		}
		c.reads.Set(key, text)
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// postCommand sends a device-mutating command. Writes are never cached and
// never retried beyond the transparent re-login: re-sending an offset
// delta is not idempotent. The controller answers "true" when it accepted
// the command.
func (c *Client) postCommand(endpoint, field, value string) error {
	form := url.Values{}
	form.Set(field, value)
	body, err := c.post(endpoint, form)
	if err != nil {
		return err
	}
	if !strings.Contains(body, "true") {
		return fmt.Errorf("%s: controller refused command %q", endpoint, value)
	}
	return nil
}

func (c *Client) journalCommand(kind string, circuitID int, value float64, ok bool) {
	if c.journal != nil {
		c.journal(kind, circuitID, value, ok)
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
