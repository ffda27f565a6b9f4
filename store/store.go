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

// Package store persists normalized emails and their categories.
package store

import (
	"context"
	"time"

	"github.com/RangasaiM/ReachInbox-Assignment/classify"
)

// Document is the persisted shape of a normalized email. Field names match
// the index mapping.
type Document struct {
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	AccountID  string    `json:"accountId"`
	Folder     string    `json:"folder"`
	AICategory string    `json:"aiCategory,omitempty"`
	Date       time.Time `json:"date"`
	IndexedAt  time.Time `json:"indexedAt"`
}

// DocumentStore must tolerate concurrent calls from multiple sessions with
// different documents.
type DocumentStore interface {
	// Persist stores a document and returns its durable identifier.
	Persist(ctx context.Context, doc *Document) (string, error)

	// UpdateCategory writes the category back onto a persisted document.
	UpdateCategory(ctx context.Context, id string, category classify.Category) error
}
