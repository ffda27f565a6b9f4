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
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/emersion/go-imap"
	client2 "github.com/emersion/go-imap/client"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/RangasaiM/ReachInbox-Assignment/email"
	imap2 "github.com/RangasaiM/ReachInbox-Assignment/imap"
	mock_imap "github.com/RangasaiM/ReachInbox-Assignment/imap/mocks"
)

type recordingPipeline struct {
	mu   sync.Mutex
	raws []*email.RawMessage
}

func (p *recordingPipeline) Process(_ context.Context, raw *email.RawMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.raws = append(p.raws, raw)
}

func (p *recordingPipeline) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.raws)
}

func (p *recordingPipeline) uids() []uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	var uids []uint32
	for _, raw := range p.raws {
		uids = append(uids, raw.UID)
	}
	return uids
}

type stubFactory struct {
	mu       sync.Mutex
	client   imap2.Client
	failures int
	calls    int
	updates  []chan<- client2.Update
}

func (f *stubFactory) NewClient(cfg *imap2.ClientConfig) (imap2.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("connection refused")
	}

	f.updates = append(f.updates, cfg.Updates)
	return f.client, nil
}

func (f *stubFactory) numCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *stubFactory) lastUpdates() chan<- client2.Update {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.updates) == 0 {
		return nil
	}
	return f.updates[len(f.updates)-1]
}

func makeTestMessage(uid uint32) *imap.Message {
	body := fmt.Sprintf("From: \"Jane Doe\" <jane@example.com>\r\n"+
		"Subject: message %v\r\n"+
		"Content-Type: text/plain\r\n"+
		"\r\n"+
		"hello\r\n", uid)

	section := &imap.BodySectionName{}
	return &imap.Message{
		Uid:  uid,
		Body: map[*imap.BodySectionName]imap.Literal{section: bytes.NewBufferString(body)},
	}
}

// newMockClient wires up the usual happy-path expectations. Search results
// are picked per-criteria so backfill and unseen lookups can differ.
func newMockClient(ctrl *gomock.Controller, backfill []uint32, unseen []uint32) *mock_imap.MockClient {
	mc := mock_imap.NewMockClient(ctrl)

	mc.EXPECT().Select("INBOX", true).Return(&imap.MailboxStatus{Name: "INBOX"}, nil).AnyTimes()
	mc.EXPECT().Mailbox().Return(&imap.MailboxStatus{Name: "INBOX"}).AnyTimes()
	mc.EXPECT().LoggedOut().Return(nil).AnyTimes()
	mc.EXPECT().Logout().Return(nil).AnyTimes()

	mc.EXPECT().UidSearch(gomock.Any()).DoAndReturn(func(criteria *imap.SearchCriteria) ([]uint32, error) {
		if len(criteria.WithoutFlags) > 0 {
			return unseen, nil
		}
		return backfill, nil
	}).AnyTimes()

	mc.EXPECT().UidFetch(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(seqset *imap.SeqSet, _ []imap.FetchItem, ch chan *imap.Message) error {
			defer close(ch)
			for _, seq := range seqset.Set {
				ch <- makeTestMessage(seq.Start)
			}
			return nil
		}).AnyTimes()

	mc.EXPECT().Idle(gomock.Any(), gomock.Any()).DoAndReturn(
		func(stop <-chan struct{}, _ *client2.IdleOptions) error {
			<-stop
			return nil
		}).AnyTimes()

	return mc
}

func newTestConfig(factory imap2.ClientFactory, p Pipeline) *Config {
	return &Config{
		Account:              "user@example.com",
		Mailbox:              "INBOX",
		Factory:              factory,
		Pipeline:             p,
		RefreshInterval:      time.Hour,
		RefreshDelay:         time.Millisecond,
		ErrorRetryDelay:      5 * time.Millisecond,
		IdleFallbackInterval: time.Hour,
	}
}

func TestNextState(t *testing.T) {
	tests := []struct {
		state State
		event Event
		next  State
		ok    bool
	}{
		{StateDisconnected, EventConnect, StateConnecting, true},
		{StateConnecting, EventConnected, StateReady, true},
		{StateReady, EventSelected, StateBackfilling, true},
		{StateBackfilling, EventBackfilled, StateIdle, true},
		{StateIdle, EventRefreshDue, StateRefreshing, true},
		{StateRefreshing, EventDisconnected, StateDisconnected, true},
		{StateErrorBackoff, EventConnect, StateConnecting, true},

		{StateIdle, EventConnected, StateIdle, false},
		{StateDisconnected, EventBackfilled, StateDisconnected, false},
		{StateTerminated, EventConnect, StateTerminated, false},
		{StateTerminated, EventClose, StateTerminated, false},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%v_%v", tc.state, tc.event), func(t *testing.T) {
			next, ok := nextState(tc.state, tc.event)
			assert.Equal(t, tc.next, next)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestNextStateErrorAndClose(t *testing.T) {
	states := []State{
		StateDisconnected, StateConnecting, StateReady, StateBackfilling,
		StateIdle, StateRefreshing, StateErrorBackoff,
	}

	for _, state := range states {
		next, ok := nextState(state, EventError)
		assert.True(t, ok)
		assert.Equal(t, StateErrorBackoff, next)

		next, ok = nextState(state, EventClose)
		assert.True(t, ok)
		assert.Equal(t, StateTerminated, next)
	}
}

func TestSchedulerRearm(t *testing.T) {
	s := &scheduler{}
	assert.Nil(t, s.C())

	s.Arm(10 * time.Millisecond)
	s.Arm(time.Hour)

	select {
	case <-s.C():
		t.Fatal("timer fired after re-arm")
	case <-time.After(50 * time.Millisecond):
	}

	s.Arm(5 * time.Millisecond)
	select {
	case <-s.C():
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}

	s.Stop()
	assert.Nil(t, s.C())
}

func TestSessionBackfill(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := &recordingPipeline{}
	factory := &stubFactory{client: newMockClient(ctrl, []uint32{3, 5}, nil)}

	s := NewSession(newTestConfig(factory, p))

	assert.Eventually(t, func() bool { return s.State() == StateIdle }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []uint32{3, 5}, p.uids())

	raw := p.raws[0]
	assert.Equal(t, "user@example.com", raw.Account)
	assert.Equal(t, "INBOX", raw.Folder)
	assert.Contains(t, string(raw.Body), "hello")

	s.Close()
	assert.Equal(t, StateTerminated, s.State())
}

func TestSessionNewMail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := &recordingPipeline{}
	factory := &stubFactory{client: newMockClient(ctrl, nil, []uint32{7})}

	s := NewSession(newTestConfig(factory, p))
	defer s.Close()

	assert.Eventually(t, func() bool { return s.State() == StateIdle }, 5*time.Second, 10*time.Millisecond)
	assert.Zero(t, p.count())

	factory.lastUpdates() <- &client2.MailboxUpdate{
		Mailbox: &imap.MailboxStatus{Name: "INBOX", Messages: 1},
	}

	assert.Eventually(t, func() bool { return p.count() == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []uint32{7}, p.uids())
}

func TestSessionNewMailEmptySearch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mc := mock_imap.NewMockClient(ctrl)
	mc.EXPECT().Select("INBOX", true).Return(&imap.MailboxStatus{Name: "INBOX"}, nil).AnyTimes()
	mc.EXPECT().Mailbox().Return(&imap.MailboxStatus{Name: "INBOX"}).AnyTimes()
	mc.EXPECT().LoggedOut().Return(nil).AnyTimes()
	mc.EXPECT().Logout().Return(nil).AnyTimes()
	mc.EXPECT().Idle(gomock.Any(), gomock.Any()).DoAndReturn(
		func(stop <-chan struct{}, _ *client2.IdleOptions) error {
			<-stop
			return nil
		}).AnyTimes()

	// The signal may race ahead of the server marking anything unseen, so an
	// empty search result has to be tolerated.
	var unseenSearches int32
	mc.EXPECT().UidSearch(gomock.Any()).DoAndReturn(func(criteria *imap.SearchCriteria) ([]uint32, error) {
		if len(criteria.WithoutFlags) > 0 {
			atomic.AddInt32(&unseenSearches, 1)
		}
		return nil, nil
	}).AnyTimes()

	p := &recordingPipeline{}
	factory := &stubFactory{client: mc}

	s := NewSession(newTestConfig(factory, p))
	defer s.Close()

	assert.Eventually(t, func() bool { return s.State() == StateIdle }, 5*time.Second, 10*time.Millisecond)

	factory.lastUpdates() <- &client2.MailboxUpdate{
		Mailbox: &imap.MailboxStatus{Name: "INBOX", Messages: 2},
	}

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&unseenSearches) >= 1
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, StateIdle, s.State())
	assert.Zero(t, p.count())
	assert.Equal(t, 1, factory.numCalls())
}

func TestSessionConnectRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := &recordingPipeline{}
	factory := &stubFactory{
		client:   newMockClient(ctrl, []uint32{1}, nil),
		failures: 2,
	}

	s := NewSession(newTestConfig(factory, p))
	defer s.Close()

	assert.Eventually(t, func() bool { return s.State() == StateIdle }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 3, factory.numCalls())
	assert.Equal(t, []uint32{1}, p.uids())
}

func TestSessionRefreshCycles(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := &recordingPipeline{}
	factory := &stubFactory{client: newMockClient(ctrl, nil, nil)}

	cfg := newTestConfig(factory, p)
	cfg.RefreshInterval = 20 * time.Millisecond

	s := NewSession(cfg)
	defer s.Close()

	// Each refresh tears the connection down and dials again.
	assert.Eventually(t, func() bool { return factory.numCalls() >= 3 }, 5*time.Second, 10*time.Millisecond)
}

func TestSessionIdleErrorReconnects(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mc := mock_imap.NewMockClient(ctrl)
	mc.EXPECT().Select("INBOX", true).Return(&imap.MailboxStatus{Name: "INBOX"}, nil).AnyTimes()
	mc.EXPECT().Mailbox().Return(&imap.MailboxStatus{Name: "INBOX"}).AnyTimes()
	mc.EXPECT().LoggedOut().Return(nil).AnyTimes()
	mc.EXPECT().Logout().Return(nil).AnyTimes()
	mc.EXPECT().UidSearch(gomock.Any()).Return(nil, nil).AnyTimes()

	// First IDLE collapses immediately, subsequent ones behave.
	first := mc.EXPECT().Idle(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))
	mc.EXPECT().Idle(gomock.Any(), gomock.Any()).After(first).DoAndReturn(
		func(stop <-chan struct{}, _ *client2.IdleOptions) error {
			<-stop
			return nil
		}).AnyTimes()

	p := &recordingPipeline{}
	factory := &stubFactory{client: mc}

	s := NewSession(newTestConfig(factory, p))
	defer s.Close()

	assert.Eventually(t, func() bool {
		return factory.numCalls() >= 2 && s.State() == StateIdle
	}, 5*time.Second, 10*time.Millisecond)
}

func TestSessionCloseDuringBackoff(t *testing.T) {
	p := &recordingPipeline{}
	factory := &stubFactory{failures: 1 << 30}

	cfg := newTestConfig(factory, p)
	cfg.ErrorRetryDelay = time.Hour

	s := NewSession(cfg)
	assert.Eventually(t, func() bool { return s.State() == StateErrorBackoff }, 5*time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("close did not interrupt the backoff sleep")
	}

	assert.Equal(t, StateTerminated, s.State())
	assert.Zero(t, p.count())
}
