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
	"sync"

	log "github.com/sirupsen/logrus"

	imap2 "github.com/RangasaiM/ReachInbox-Assignment/imap"
	"github.com/RangasaiM/ReachInbox-Assignment/session"
)

// New starts one session per usable account. A supervisor with zero
// sessions is valid; it just has nothing to do until restarted with
// credentials.
func New(cfg *Config) (*Supervisor, error) {
	sup := &Supervisor{}

	for i := range cfg.Accounts {
		acc := &cfg.Accounts[i]

		if acc.Username == "" || acc.Password == "" {
			log.WithField("account", accountLabel(acc)).Warn("supervisor_skipping_incomplete_account")
			continue
		}

		auth, err := imap2.NewAuthenticator(acc.AuthMethod, acc.Username, acc.Password)
		if err != nil {
			sup.Close()
			return nil, err
		}

		sup.sessions = append(sup.sessions, session.NewSession(&session.Config{
			Account: acc.Username,
			Mailbox: acc.Mailbox,
			Connection: imap2.ConnectionConfig{
				HostPort:  acc.HostPort,
				Auth:      auth,
				TLS:       acc.TLS,
				TLSConfig: acc.TLSConfig,
				Debug:     acc.Debug,
			},
			Factory:              cfg.Factory,
			Pipeline:             cfg.Pipeline,
			LookbackWindow:       cfg.LookbackWindow,
			RefreshInterval:      cfg.RefreshInterval,
			RefreshDelay:         cfg.RefreshDelay,
			ErrorRetryDelay:      cfg.ErrorRetryDelay,
			IdleFallbackInterval: cfg.IdleFallbackInterval,
			FetchBufferSize:      cfg.FetchBufferSize,
		}))
	}

	if len(sup.sessions) == 0 {
		log.Warn("supervisor_no_accounts_configured")
	} else {
		log.WithField("num_accounts", len(sup.sessions)).Info("supervisor_started")
	}

	return sup, nil
}

func accountLabel(acc *Account) string {
	if acc.Username != "" {
		return acc.Username
	}
	return acc.HostPort
}

func (s *Supervisor) Accounts() []string {
	accounts := make([]string, 0, len(s.sessions))
	for _, sess := range s.sessions {
		accounts = append(accounts, sess.Account())
	}
	return accounts
}

// Close stops every session concurrently and waits for all of them.
func (s *Supervisor) Close() {
	var wg sync.WaitGroup
	for _, sess := range s.sessions {
		wg.Add(1)
		go func(sess *session.Session) {
			defer wg.Done()
			sess.Close()
		}(sess)
	}
	wg.Wait()

	log.Trace("supervisor_stopped")
}
