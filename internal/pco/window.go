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

// In this file: the sliding-window request budget.

import (
	"sync"
	"time"
)

// window is a sliding-window request budget: at most limit accepted calls
// within the trailing span.  Timestamps are evicted purely by age, there is
// no other reset.  Safe for concurrent use.
type window struct {
	limit int
	span  time.Duration
	now   func() time.Time

	mu     sync.Mutex
	stamps []time.Time // monotonic queue, oldest first
}

func newWindow(limit int, span time.Duration) *window {
	return &window{limit: limit, span: span, now: time.Now}
}

// allow reports whether another call fits into the window and, if it does,
// records its timestamp.  A timestamp ages out exactly span after it was
// recorded, at which point the capacity it held is recovered.
func (w *window) allow() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	cutoff := now.Add(-w.span)
	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[i:]...)
	}
	if len(w.stamps) >= w.limit {
		return false
	}
	w.stamps = append(w.stamps, now)
	return true
}

// len returns the number of live timestamps in the window.
func (w *window) len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.stamps)
}
