/*
 * ReachInbox Onebox - Copyright (C) 2024 Rangasai M.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 2, and only
 * version 2 as published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 59 Temple Place, Suite 330, Boston, MA  02111-1307  USA
 */

package classify

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultMaxAttempts = 3
	DefaultBackoffBase = time.Second
)

// Retrier wraps a Classifier with bounded retries and exponential backoff.
// It sleeps base*2^attempt between attempts, and never after the last one.
// Exhaustion is surfaced as an unavailable result, not an error.
type Retrier struct {
	inner       Classifier
	maxAttempts int
	backoffBase time.Duration
	sleep       func(time.Duration)
}

func NewRetrier(inner Classifier, maxAttempts int, backoffBase time.Duration) *Retrier {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	if backoffBase <= 0 {
		backoffBase = DefaultBackoffBase
	}

	return &Retrier{
		inner:       inner,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
		sleep:       time.Sleep,
	}
}

func (r *Retrier) Classify(ctx context.Context, subject string, body string) (Category, bool) {
	var lastErr error

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		category, err := r.inner.Classify(ctx, subject, body)
		if err == nil {
			return category, true
		}

		lastErr = err

		if attempt < r.maxAttempts-1 {
			backoff := r.backoffBase << uint(attempt)
			log.WithError(err).WithFields(log.Fields{
				"attempt":      attempt + 1,
				"max_attempts": r.maxAttempts,
				"backoff":      backoff,
			}).Warn("classify_attempt_failed")
			r.sleep(backoff)
		}
	}

	log.WithError(lastErr).WithFields(log.Fields{
		"max_attempts": r.maxAttempts,
	}).Error("classify_attempts_exhausted")
	return "", false
}
