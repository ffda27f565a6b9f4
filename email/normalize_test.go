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

package email

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-message"
	"github.com/stretchr/testify/assert"
)

func makeRawMessage(t *testing.T, headers map[string]string, body string) *RawMessage {
	hdr := message.Header{}
	for k, v := range headers {
		hdr.Add(k, v)
	}

	msg, err := message.New(hdr, strings.NewReader(body))
	assert.NoError(t, err)
	if err != nil {
		t.FailNow()
	}

	bb := new(bytes.Buffer)
	err = msg.WriteTo(bb)
	assert.NoError(t, err)
	if err != nil {
		t.FailNow()
	}

	return &RawMessage{
		UID:     1,
		Account: "user@example.com",
		Folder:  "INBOX",
		Body:    bb.Bytes(),
	}
}

func TestNormalize(t *testing.T) {
	raw := makeRawMessage(t, map[string]string{
		"From":         "Jane Doe <jane@example.com>",
		"To":           "user@example.com",
		"Subject":      "Quarterly proposal",
		"Date":         "Wed, 11 May 2016 14:31:59 +0000",
		"Content-Type": "text/plain",
	}, "Sounds interesting, send over the details.")

	n, err := Normalize(raw)
	if !assert.NoError(t, err) {
		t.FailNow()
	}

	assert.Equal(t, "Quarterly proposal", n.Subject)
	assert.Equal(t, "Sounds interesting, send over the details.", n.BodyText)
	assert.Equal(t, "\"Jane Doe\" <jane@example.com>", n.Sender)
	assert.Equal(t, time.Date(2016, 5, 11, 14, 31, 59, 0, time.UTC), n.ReceivedAt.UTC())
	assert.Equal(t, "user@example.com", n.Account)
	assert.Equal(t, "INBOX", n.Folder)
}

func TestNormalizeDefaults(t *testing.T) {
	raw := makeRawMessage(t, map[string]string{
		"Content-Type": "text/plain",
	}, "no headers at all")

	n, err := Normalize(raw)
	if !assert.NoError(t, err) {
		t.FailNow()
	}

	assert.Equal(t, "(no subject)", n.Subject)
	assert.Equal(t, "Unknown", n.Sender)
	assert.WithinDuration(t, time.Now(), n.ReceivedAt, time.Minute)
}

func TestNormalizeGarbage(t *testing.T) {
	_, err := Normalize(&RawMessage{
		UID:     1,
		Account: "user@example.com",
		Folder:  "INBOX",
		Body:    []byte("\x00\x01this is not an rfc822 message"),
	})
	assert.Error(t, err)
}
