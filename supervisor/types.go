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

package supervisor

import (
	"crypto/tls"
	"time"

	imap2 "github.com/RangasaiM/ReachInbox-Assignment/imap"
	"github.com/RangasaiM/ReachInbox-Assignment/session"
)

// Account is one mailbox to watch. Accounts with a missing username or
// password are skipped at startup rather than failing the whole run.
type Account struct {
	Username   string
	Password   string
	AuthMethod string
	HostPort   string
	Mailbox    string
	TLS        bool
	TLSConfig  *tls.Config
	Debug      bool
}

type Config struct {
	Accounts []Account
	Factory  imap2.ClientFactory
	Pipeline session.Pipeline

	// Timing template applied to every session.
	LookbackWindow       time.Duration
	RefreshInterval      time.Duration
	RefreshDelay         time.Duration
	ErrorRetryDelay      time.Duration
	IdleFallbackInterval time.Duration
	FetchBufferSize      uint
}

type Supervisor struct {
	sessions []*session.Session
}
