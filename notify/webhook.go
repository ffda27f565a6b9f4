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

package notify

import (
	"context"
	"net/http"
	"time"
)

const webhookEventName = "InterestedLead"

type webhookEmail struct {
	Subject     string `json:"subject"`
	From        string `json:"from"`
	AccountID   string `json:"accountId"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	DocumentID  string `json:"documentId"`
	BodyPreview string `json:"bodyPreview"`
}

type webhookPayload struct {
	Event     string       `json:"event"`
	EventID   string       `json:"eventId"`
	Email     webhookEmail `json:"email"`
	Timestamp string       `json:"timestamp"`
}

// WebhookNotifier posts a generic JSON event to an arbitrary endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
	now    func() time.Time
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
		now:    time.Now,
	}
}

func (w *WebhookNotifier) Name() string { return "webhook" }

func (w *WebhookNotifier) Notify(ctx context.Context, ev *Event) error {
	payload := webhookPayload{
		Event:   webhookEventName,
		EventID: ev.ID,
		Email: webhookEmail{
			Subject:     ev.Subject,
			From:        ev.Sender,
			AccountID:   ev.Account,
			Category:    ev.Category,
			Date:        ev.Date.Format(time.RFC3339),
			DocumentID:  ev.DocumentID,
			BodyPreview: truncate(ev.Body, 500),
		},
		Timestamp: w.now().Format(time.RFC3339),
	}

	return postJSON(ctx, w.client, w.url, &payload)
}
