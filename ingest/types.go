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
	"time"

	"github.com/RangasaiM/ReachInbox-Assignment/classify"
	"github.com/RangasaiM/ReachInbox-Assignment/notify"
	"github.com/RangasaiM/ReachInbox-Assignment/store"
)

type Config struct {
	Store store.DocumentStore

	// Classifier may be nil, which disables classification (and with it the
	// category update and notification steps). Decided once at construction.
	Classifier classify.Service

	Notifiers []notify.Notifier

	// now is overridable for tests.
	now func() time.Time
}

// Pipeline drives one message through normalize, persist, classify, update
// and notify. It holds no per-message state; a single Pipeline is shared by
// every session.
type Pipeline struct {
	store      store.DocumentStore
	classifier classify.Service
	enabled    bool
	notifiers  []notify.Notifier
	now        func() time.Time
}
