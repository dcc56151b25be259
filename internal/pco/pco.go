// Copyright (c) 2025-2026 East Hill Church Tech Team.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package pco implements a read-only client for the Planning Center
// JSON:API backends (People and Check-Ins): basic authentication, a
// client-side sliding-window request budget, retries with backoff on
// transient failures, and link-following pagination.
package pco

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// PeopleURL and CheckinsURL are the two application bases this client
// talks to.
const (
	PeopleURL   = "https://api.planningcenteronline.com/people/v2"
	CheckinsURL = "https://api.planningcenteronline.com/check-ins/v2"
)

const (
	acceptHeader = "application/vnd.api+json"

	defNumAttempts = 3
	defTimeout     = 30 * time.Second
	defBurst       = 1

	// budgetLimit is the documented Planning Center request budget.
	budgetLimit  = 100
	budgetWindow = time.Minute

	// maxErrBody caps how much of an error response body is kept.
	maxErrBody = 4096
)

// maxPages bounds link-following so that a cyclic or repeating next link
// cannot spin forever.  Variable to reduce the test time.
var maxPages = 1000

// waitFn and limitedWaitFn return the backoff delay for transient errors
// and HTTP 429 respectively, depending on the current attempt.  These
// variables exist to reduce the test time.
var (
	waitFn        = transientWait
	limitedWaitFn = rateLimitedWait
)

// transientWait grows linearly with the attempt number.
func transientWait(attempt int) time.Duration {
	return time.Duration(attempt+1) * time.Second
}

// rateLimitedWait is twice the transient delay: the backend asked us to
// back off, give it room.
func rateLimitedWait(attempt int) time.Duration {
	return 2 * time.Duration(attempt+1) * time.Second
}

// Client is the Planning Center API client.  The zero value is not usable,
// call New.
type Client struct {
	cl     *http.Client
	appID  string
	secret string
	budget *window
	lim    *rate.Limiter
	lg     *slog.Logger
}

// Option is the Client constructor option.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hcl *http.Client) Option {
	return func(c *Client) {
		if hcl != nil {
			c.cl = hcl
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(lg *slog.Logger) Option {
	return func(c *Client) {
		if lg != nil {
			c.lg = lg
		}
	}
}

// WithLimiter replaces the outbound pacing limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		if l != nil {
			c.lim = l
		}
	}
}

// New creates a Client authenticating with the given application id and
// secret.  Empty credentials fall back to placeholder demo values: the
// client still attempts calls, which the backend rejects with an
// authentication error surfaced as a ClientError.
func New(appID, secret string, opt ...Option) *Client {
	if appID == "" {
		appID = "demo_client_id"
	}
	if secret == "" {
		secret = "demo_secret"
	}
	c := &Client{
		cl:     &http.Client{Timeout: defTimeout},
		appID:  appID,
		secret: secret,
		budget: newWindow(budgetLimit, budgetWindow),
		lim:    NewLimiter(budgetLimit, defBurst, 0),
		lg:     slog.Default(),
	}
	for _, o := range opt {
		o(c)
	}
	return c
}

// URL joins path elements onto an application base, escaping each element.
func URL(base string, elem ...string) string {
	escaped := make([]string, len(elem))
	for i, e := range elem {
		escaped[i] = url.PathEscape(e)
	}
	return base + "/" + strings.Join(escaped, "/")
}

// Get performs an authenticated GET against u, which is either an
// application URL built with URL or a fully-qualified "next" link.  The
// request budget is consumed once per call: retries within the call do not
// consume additional budget.
func (c *Client) Get(ctx context.Context, u string, p *Params) (*Document, error) {
	if !c.budget.allow() {
		return nil, ErrRateLimitExceeded
	}
	var doc *Document
	err := c.withRetry(ctx, defNumAttempts, func() error {
		d, err := c.get(ctx, u, p)
		if err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// withRetry runs fn up to maxAttempts times.  Transient failures (transport
// errors, 5xx) are retried with increasing delay, HTTP 429 with a longer
// one.  A non-retryable ClientError is surfaced immediately.  Running out
// of attempts returns a RequestFailedError naming the attempt count.
func (c *Client) withRetry(ctx context.Context, maxAttempts int, fn func() error) error {
	var last error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := c.lim.Wait(ctx); err != nil {
			return &RequestFailedError{Attempts: attempt + 1, Last: err}
		}

		err := fn()
		if err == nil {
			return nil
		}

		var ce *ClientError
		if errors.As(err, &ce) {
			return err
		}

		last = err
		delay := waitFn(attempt)
		var se *statusError
		if errors.As(err, &se) && se.Code == http.StatusTooManyRequests {
			delay = limitedWaitFn(attempt)
		}
		c.lg.DebugContext(ctx, "transient error, backing off",
			"attempt", attempt+1, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return &RequestFailedError{Attempts: attempt + 1, Last: ctx.Err()}
		case <-time.After(delay):
		}
	}
	return &RequestFailedError{Attempts: maxAttempts, Last: last}
}

// get performs a single HTTP round trip and decodes the document.
func (c *Client) get(ctx context.Context, u string, p *Params) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.appID, c.secret)
	req.Header.Set("Accept", acceptHeader)
	if q := p.Encode(); q != "" {
		req.URL.RawQuery = q
	}

	resp, err := c.cl.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError,
		resp.StatusCode == http.StatusTooManyRequests:
		return nil, &statusError{Code: resp.StatusCode, Body: errBody(resp.Body)}
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, &ClientError{StatusCode: resp.StatusCode, Body: errBody(resp.Body)}
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode response from %s: %w", req.URL.Path, err)
	}
	return &doc, nil
}

func errBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrBody))
	return strings.TrimSpace(string(b))
}
