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

package pco

// In this file: the client error taxonomy.

import (
	"errors"
	"fmt"
)

// ErrRateLimitExceeded is returned when the caller has exhausted the
// client-side request budget of 100 requests within the trailing minute.
// No network call is made once the budget is exhausted.
var ErrRateLimitExceeded = errors.New("rate limit exceeded: Planning Center allows 100 requests per minute")

// ErrPaginationOverrun is returned when following "next" links exceeds the
// page ceiling, which indicates a cyclic or runaway link sequence on the
// backend side.
var ErrPaginationOverrun = errors.New("pagination exceeded the page ceiling")

// ClientError is a non-retryable HTTP 4xx response.  It carries the status
// code and the response body verbatim.
type ClientError struct {
	StatusCode int
	Body       string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("client error: %d - %s", e.StatusCode, e.Body)
}

// RequestFailedError is returned once the retry budget is exhausted on
// transient failures (transport timeouts, 5xx responses, HTTP 429).
type RequestFailedError struct {
	Attempts int
	Last     error
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("request failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RequestFailedError) Unwrap() error { return e.Last }

// statusError is a retryable HTTP status (429 or 5xx).  It never escapes
// the client: the retry loop either recovers or wraps the last occurrence
// in a RequestFailedError.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Body)
}
