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
	"errors"
	"io"
	"time"

	"github.com/emersion/go-imap"
	client2 "github.com/emersion/go-imap/client"
	log "github.com/sirupsen/logrus"

	"github.com/RangasaiM/ReachInbox-Assignment/email"
	imap2 "github.com/RangasaiM/ReachInbox-Assignment/imap"
)

var errQuit = errors.New("session closing")

func NewSession(cfg *Config) *Session {
	s := &Session{
		cfg:      *cfg,
		state:    StateDisconnected,
		wantQuit: make(chan struct{}),
		hasQuit:  make(chan struct{}),
	}

	if s.cfg.Mailbox == "" {
		s.cfg.Mailbox = "INBOX"
	}

	if s.cfg.LookbackWindow == 0 {
		s.cfg.LookbackWindow = 30 * 24 * time.Hour
	}

	if s.cfg.RefreshInterval == 0 {
		s.cfg.RefreshInterval = 29 * time.Minute
	}

	if s.cfg.RefreshDelay == 0 {
		s.cfg.RefreshDelay = 2 * time.Second
	}

	if s.cfg.ErrorRetryDelay == 0 {
		s.cfg.ErrorRetryDelay = 5 * time.Second
	}

	if s.cfg.IdleFallbackInterval == 0 {
		s.cfg.IdleFallbackInterval = 1 * time.Minute
	}

	if s.cfg.FetchBufferSize == 0 {
		s.cfg.FetchBufferSize = 20
	}

	go s.run()
	return s
}

func (s *Session) State() State {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()
	return s.state
}

func (s *Session) Account() string {
	return s.cfg.Account
}

// Close stops the session and waits for its goroutine to exit. Any open
// connection is logged out first.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.wantQuit) })
	<-s.hasQuit
}

// nextState is the transition table. A close wins from every state, and any
// transport error sends a live session back through the backoff path.
func nextState(state State, event Event) (State, bool) {
	if state == StateTerminated {
		return StateTerminated, false
	}

	if event == EventClose {
		return StateTerminated, true
	}

	if event == EventError {
		return StateErrorBackoff, true
	}

	switch state {
	case StateDisconnected:
		if event == EventConnect {
			return StateConnecting, true
		}
	case StateConnecting:
		if event == EventConnected {
			return StateReady, true
		}
	case StateReady:
		if event == EventSelected {
			return StateBackfilling, true
		}
	case StateBackfilling:
		if event == EventBackfilled {
			return StateIdle, true
		}
	case StateIdle:
		if event == EventRefreshDue {
			return StateRefreshing, true
		}
	case StateRefreshing:
		if event == EventDisconnected {
			return StateDisconnected, true
		}
	case StateErrorBackoff:
		if event == EventConnect {
			return StateConnecting, true
		}
	}

	return state, false
}

func (s *Session) setState(state State) {
	s.stateMutex.Lock()
	s.state = state
	s.stateMutex.Unlock()
}

// sleep pauses for d, returning false if the session was closed first.
func (s *Session) sleep(d time.Duration) bool {
	if d <= 0 {
		select {
		case <-s.wantQuit:
			return false
		default:
			return true
		}
	}

	select {
	case <-s.wantQuit:
		return false
	case <-time.After(d):
		return true
	}
}

func (s *Session) connect(logger *log.Entry) (*connection, error) {
	updates := make(chan client2.Update, 10)
	c, err := s.cfg.Factory.NewClient(&imap2.ClientConfig{
		HostPort:  s.cfg.Connection.HostPort,
		Auth:      s.cfg.Connection.Auth,
		TLS:       s.cfg.Connection.TLS,
		TLSConfig: s.cfg.Connection.TLSConfig,
		Debug:     s.cfg.Connection.Debug,
		Updates:   updates,
	})

	if err != nil {
		return nil, err
	}

	conn := &connection{
		client:    c,
		updates:   updates,
		newMail:   make(chan struct{}, 1),
		stopDrain: make(chan struct{}),
		drainDone: make(chan struct{}),
	}

	go conn.drain(logger)
	return conn, nil
}

// drain keeps reading unilateral updates so the client never blocks
// writing them, and turns mailbox updates into a coalesced new-mail
// signal. Runs for the life of the connection.
func (c *connection) drain(logger *log.Entry) {
	defer close(c.drainDone)

	for {
		select {
		case <-c.stopDrain:
			return
		case upd := <-c.updates:
			switch vv := upd.(type) {
			case *client2.StatusUpdate:
				logger.WithFields(log.Fields{
					"type": vv.Status.Type,
					"info": vv.Status.Info,
				}).Info("session_got_status_update")
			case *client2.MailboxUpdate:
				logger.WithFields(log.Fields{
					"name":     vv.Mailbox.Name,
					"messages": vv.Mailbox.Messages,
				}).Trace("session_got_mailbox_update")

				select {
				case c.newMail <- struct{}{}:
				default:
				}
			}
		}
	}
}

func (s *Session) closeConnection(conn *connection, logout bool, logger *log.Entry) {
	if logout {
		if err := conn.client.Logout(); err != nil {
			logger.WithError(err).Debug("session_logout_failed")
		}
	}

	close(conn.stopDrain)
	<-conn.drainDone
}

// processUID fetches one message by UID with BODY.PEEK, so the read
// never flags the message seen, and hands it to the pipeline. A fetch
// transport error is returned; an empty result is not an error, the
// message may have been expunged since the search.
func (s *Session) processUID(conn *connection, uid uint32, logger *log.Entry) error {
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchUid, section.FetchItem()}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)

	ch := make(chan *imap.Message, s.cfg.FetchBufferSize)
	done := make(chan error, 1)

	go func() {
		done <- conn.client.UidFetch(seqset, items, ch)
	}()

	var raw *email.RawMessage
	for msg := range ch {
		body := msg.GetBody(section)
		if body == nil {
			logger.WithField("uid", msg.Uid).Warn("session_fetch_no_body")
			continue
		}

		buf, err := io.ReadAll(body)
		if err != nil {
			logger.WithError(err).WithField("uid", msg.Uid).Warn("session_fetch_read_failed")
			continue
		}

		raw = &email.RawMessage{
			UID:     msg.Uid,
			Account: s.cfg.Account,
			Folder:  s.cfg.Mailbox,
			Body:    buf,
		}
	}

	if err := <-done; err != nil {
		return err
	}

	if raw != nil {
		s.cfg.Pipeline.Process(context.Background(), raw)
	}

	return nil
}

func (s *Session) processUIDs(conn *connection, uids []uint32, logger *log.Entry) error {
	for _, uid := range uids {
		select {
		case <-s.wantQuit:
			return errQuit
		default:
		}

		if err := s.processUID(conn, uid, logger); err != nil {
			return err
		}
	}

	return nil
}

// backfill searches the lookback window and processes every hit in UID
// order, sequentially. Runs once per connection, so a refresh cycle
// also doubles as a catch-up for anything IDLE missed.
func (s *Session) backfill(conn *connection, logger *log.Entry) error {
	if mbStatus := conn.client.Mailbox(); mbStatus != nil {
		logger.WithFields(log.Fields{
			"name":         mbStatus.Name,
			"num_messages": mbStatus.Messages,
			"unseen":       mbStatus.Unseen,
		}).Trace("session_mailbox_status")
	}

	since := time.Now().Add(-s.cfg.LookbackWindow)

	criteria := imap.NewSearchCriteria()
	criteria.Since = since

	uids, err := conn.client.UidSearch(criteria)
	if err != nil {
		return err
	}

	logger.WithFields(log.Fields{
		"since":        since,
		"num_messages": len(uids),
	}).Info("session_backfill")

	return s.processUIDs(conn, uids, logger)
}

// fetchUnseen is the reaction to a new-mail signal. The UNSEEN search is
// authoritative; the signal itself carries no message identity.
func (s *Session) fetchUnseen(conn *connection, logger *log.Entry) error {
	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}

	uids, err := conn.client.UidSearch(criteria)
	if err != nil {
		return err
	}

	logger.WithField("num_unseen", len(uids)).Trace("session_unseen_search")

	return s.processUIDs(conn, uids, logger)
}

// idle loops between IDLE stretches, breaking out to process new mail
// and resuming afterwards. Returns the event that ends the idle phase.
func (s *Session) idle(conn *connection, refresh *scheduler, logger *log.Entry) Event {
	for {
		stopIdle := make(chan struct{})
		idleDone := make(chan error, 1)

		go func() {
			idleDone <- conn.client.Idle(stopIdle, &client2.IdleOptions{
				LogoutTimeout: 250 * time.Second,
				PollInterval:  s.cfg.IdleFallbackInterval,
			})
		}()

		select {
		case <-s.wantQuit:
			close(stopIdle)
			<-idleDone
			return EventClose

		case <-conn.client.LoggedOut():
			logger.Warn("session_logged_out")
			close(stopIdle)
			<-idleDone
			return EventError

		case <-refresh.C():
			logger.Info("session_refresh_due")
			close(stopIdle)
			<-idleDone
			return EventRefreshDue

		case err := <-idleDone:
			// IDLE ending on its own means the connection is gone.
			if err != nil {
				logger.WithError(err).Warn("session_idle_failed")
			} else {
				logger.Warn("session_idle_ended")
			}
			return EventError

		case <-conn.newMail:
			close(stopIdle)
			if err := <-idleDone; err != nil {
				logger.WithError(err).Warn("session_idle_failed")
				return EventError
			}

			if err := s.fetchUnseen(conn, logger); err != nil {
				if errors.Is(err, errQuit) {
					return EventClose
				}
				logger.WithError(err).Error("session_unseen_fetch_failed")
				return EventError
			}
		}
	}
}

func (s *Session) run() {
	logger := log.WithFields(log.Fields{
		"account": s.cfg.Account,
		"mailbox": s.cfg.Mailbox,
	})
	logger.Info("session_started")

	refresh := &scheduler{}
	defer refresh.Stop()

	state := StateDisconnected

	var conn *connection
	var delay time.Duration

	setState := func(event Event) {
		next, ok := nextState(state, event)
		if !ok {
			logger.WithFields(log.Fields{
				"state": state,
				"event": event,
			}).Panic("session_invalid_transition")
		}

		logger.WithFields(log.Fields{
			"old": state,
			"new": next,
		}).Trace("session_state_change")

		state = next
		s.setState(next)
	}

	for state != StateTerminated {
		switch state {
		case StateDisconnected:
			if !s.sleep(delay) {
				setState(EventClose)
				continue
			}

			delay = 0
			setState(EventConnect)

		case StateConnecting:
			c, err := s.connect(logger)
			if err != nil {
				logger.WithError(err).Error("session_connect_failed")
				setState(EventError)
				continue
			}

			conn = c
			logger.Info("session_connected")
			setState(EventConnected)

		case StateReady:
			if _, err := conn.client.Select(s.cfg.Mailbox, true); err != nil {
				logger.WithError(err).Error("session_select_failed")
				setState(EventError)
				continue
			}

			setState(EventSelected)

		case StateBackfilling:
			if err := s.backfill(conn, logger); err != nil {
				if errors.Is(err, errQuit) {
					setState(EventClose)
					continue
				}

				logger.WithError(err).Error("session_backfill_failed")
				setState(EventError)
				continue
			}

			setState(EventBackfilled)

		case StateIdle:
			refresh.Arm(s.cfg.RefreshInterval)
			event := s.idle(conn, refresh, logger)
			refresh.Stop()
			setState(event)

		case StateRefreshing:
			s.closeConnection(conn, true, logger)
			conn = nil
			delay = s.cfg.RefreshDelay
			setState(EventDisconnected)

		case StateErrorBackoff:
			if conn != nil {
				s.closeConnection(conn, false, logger)
				conn = nil
			}

			if !s.sleep(s.cfg.ErrorRetryDelay) {
				setState(EventClose)
				continue
			}

			setState(EventConnect)
		}
	}

	if conn != nil {
		s.closeConnection(conn, true, logger)
		conn = nil
	}

	logger.Info("session_stopped")
	close(s.hasQuit)
}
