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

package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/RangasaiM/ReachInbox-Assignment/classify"
	"github.com/RangasaiM/ReachInbox-Assignment/email"
	"github.com/RangasaiM/ReachInbox-Assignment/notify"
	"github.com/RangasaiM/ReachInbox-Assignment/store"
)

func NewPipeline(cfg *Config) *Pipeline {
	now := cfg.now
	if now == nil {
		now = time.Now
	}

	return &Pipeline{
		store:      cfg.Store,
		classifier: cfg.Classifier,
		enabled:    cfg.Classifier != nil,
		notifiers:  cfg.Notifiers,
		now:        now,
	}
}

// Process runs one message through the pipeline. It never returns an error:
// a failure at any step is logged and the message is abandoned at that step,
// leaving the session free to continue with its next message. Steps after a
// failed persist are skipped; a failed category update still notifies, since
// the category itself is known.
func (p *Pipeline) Process(ctx context.Context, raw *email.RawMessage) {
	logger := log.WithFields(log.Fields{
		"processing_id": uuid.NewString(),
		"account":       raw.Account,
		"folder":        raw.Folder,
		"uid":           raw.UID,
	})

	msg, err := email.Normalize(raw)
	if err != nil {
		logger.WithError(err).Error("ingest_normalize_failed")
		return
	}

	logger = logger.WithField("subject", msg.Subject)

	docID, err := p.store.Persist(ctx, p.buildDocument(msg))
	if err != nil {
		logger.WithError(err).Error("ingest_persist_failed")
		return
	}

	logger = logger.WithField("document_id", docID)
	logger.Trace("ingest_persisted")

	if !p.enabled {
		return
	}

	category, ok := p.classifier.Classify(ctx, msg.Subject, msg.BodyText)
	if !ok {
		logger.Warn("ingest_classification_unavailable")
		return
	}

	logger = logger.WithField("category", category)

	if err := p.store.UpdateCategory(ctx, docID, category); err != nil {
		// The label is still known, keep going so the lead is not lost.
		logger.WithError(err).Error("ingest_category_update_failed")
	}

	if category == classify.CategoryInterested {
		notify.Dispatch(ctx, p.notifiers, p.buildEvent(msg, docID, category))
	}
}

func (p *Pipeline) buildDocument(msg *email.NormalizedEmail) *store.Document {
	return &store.Document{
		Subject:   msg.Subject,
		Body:      msg.BodyText,
		AccountID: msg.Account,
		Folder:    msg.Folder,
		Date:      msg.ReceivedAt,
		IndexedAt: p.now(),
	}
}

func (p *Pipeline) buildEvent(msg *email.NormalizedEmail, docID string, category classify.Category) *notify.Event {
	return &notify.Event{
		ID:         uuid.NewString(),
		Subject:    msg.Subject,
		Sender:     msg.Sender,
		Account:    msg.Account,
		Category:   string(category),
		Date:       msg.ReceivedAt,
		DocumentID: docID,
		Body:       msg.BodyText,
	}
}
