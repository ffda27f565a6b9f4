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

// Package email holds the message records flowing through the engine and
// the normalizer that turns raw RFC822 blobs into them.
package email

import "time"

// RawMessage is a fetched-but-unparsed message. It only lives for the
// duration of one pipeline run.
type RawMessage struct {
	UID     uint32
	Account string
	Folder  string
	Body    []byte
}

// NormalizedEmail is the structured record produced by Normalize. Immutable
// once built.
type NormalizedEmail struct {
	Subject    string
	BodyText   string
	Sender     string
	ReceivedAt time.Time
	Account    string
	Folder     string
}
