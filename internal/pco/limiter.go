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

import (
	"time"

	"golang.org/x/time/rate"
)

// NewLimiter returns a throttler with perMinute requests per minute.
// Optionally the caller may specify a boost added to the base value.
func NewLimiter(perMinute int, burst uint, boost int) *rate.Limiter {
	return rate.NewLimiter(rate.Every(every(perMinute, boost)), int(burst))
}

func every(perMinute, boost int) time.Duration {
	return time.Minute / time.Duration(perMinute+boost)
}
