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

// Package notify delivers interested-lead events to external sinks.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// Event describes one positively-classified email.
type Event struct {
	ID         string
	Subject    string
	Sender     string
	Account    string
	Category   string
	Date       time.Time
	DocumentID string
	Body       string
}

// Notifier is a single delivery sink. Implementations must be safe for
// concurrent use by multiple sessions.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, ev *Event) error
}

// Dispatch invokes every notifier. Each sink's failure is logged and
// tolerated independently; one failing sink never suppresses another.
func Dispatch(ctx context.Context, notifiers []Notifier, ev *Event) {
	for _, n := range notifiers {
		if err := n.Notify(ctx, ev); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"sink":     n.Name(),
				"event_id": ev.ID,
				"subject":  ev.Subject,
			}).Error("notify_delivery_failed")
			continue
		}

		log.WithFields(log.Fields{
			"sink":     n.Name(),
			"event_id": ev.ID,
			"subject":  ev.Subject,
		}).Info("notify_delivered")
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func postJSON(ctx context.Context, client *http.Client, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %v: %v", resp.StatusCode, string(msg))
	}

	return nil
}
