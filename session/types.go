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

package session

import (
	"context"
	"sync"
	"time"

	"github.com/emersion/go-imap/client"

	"github.com/RangasaiM/ReachInbox-Assignment/email"
	imap2 "github.com/RangasaiM/ReachInbox-Assignment/imap"
)

// Pipeline consumes fetched messages. Process never returns an error;
// downstream failures are the pipeline's problem, not the session's.
type Pipeline interface {
	Process(ctx context.Context, raw *email.RawMessage)
}

type Config struct {
	Account string
	Mailbox string

	Connection imap2.ConnectionConfig
	Factory    imap2.ClientFactory

	Pipeline Pipeline

	// LookbackWindow bounds the initial catch-up search on every
	// reconnect. Messages older than now minus this window are skipped.
	LookbackWindow time.Duration

	// RefreshInterval is how long a connection idles before it is
	// proactively replaced, kept under the usual 30 minute server cutoff.
	RefreshInterval time.Duration

	// RefreshDelay is the pause between a planned logout and the next
	// connection attempt.
	RefreshDelay time.Duration

	// ErrorRetryDelay is the pause after a failed connect or a dropped
	// connection before trying again.
	ErrorRetryDelay time.Duration

	IdleFallbackInterval time.Duration
	FetchBufferSize      uint
}

type State int

const (
	StateDisconnected State = 0
	StateConnecting   State = 1
	StateReady        State = 2
	StateBackfilling  State = 3
	StateIdle         State = 4
	StateRefreshing   State = 5
	StateErrorBackoff State = 6
	StateTerminated   State = 7
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateBackfilling:
		return "backfilling"
	case StateIdle:
		return "idle"
	case StateRefreshing:
		return "refreshing"
	case StateErrorBackoff:
		return "error_backoff"
	case StateTerminated:
		return "terminated"
	default:
		panic("invalid_state")
	}
}

type Event int

const (
	EventConnect      Event = 0
	EventConnected    Event = 1
	EventSelected     Event = 2
	EventBackfilled   Event = 3
	EventRefreshDue   Event = 4
	EventDisconnected Event = 5
	EventError        Event = 6
	EventClose        Event = 7
)

func (e Event) String() string {
	switch e {
	case EventConnect:
		return "connect"
	case EventConnected:
		return "connected"
	case EventSelected:
		return "selected"
	case EventBackfilled:
		return "backfilled"
	case EventRefreshDue:
		return "refresh_due"
	case EventDisconnected:
		return "disconnected"
	case EventError:
		return "error"
	case EventClose:
		return "close"
	default:
		panic("invalid_event")
	}
}

// connection bundles an IMAP client with its unilateral update plumbing.
// The drainer goroutine keeps the updates channel from backing up and
// coalesces mailbox updates into the newMail signal.
type connection struct {
	client  imap2.Client
	updates chan client.Update

	newMail   chan struct{}
	stopDrain chan struct{}
	drainDone chan struct{}
}

type Session struct {
	cfg Config

	stateMutex sync.Mutex
	state      State

	wantQuit  chan struct{}
	hasQuit   chan struct{}
	closeOnce sync.Once
}
