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
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

const (
	defaultSubject = "(no subject)"
	defaultSender  = "Unknown"
)

// Normalize parses a raw RFC822 blob into a NormalizedEmail. It is a pure
// function; a nil error means every field is populated, falling back to
// defaults where the message omits a header. The plain-text body is
// preferred; for messages without a text/plain part the first inline part
// is used instead.
func Normalize(raw *RawMessage) (*NormalizedEmail, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw.Body))
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, err
	}

	subject, _ := mr.Header.Subject()
	if strings.TrimSpace(subject) == "" {
		subject = defaultSubject
	}

	sender := defaultSender
	if addrs, err := mr.Header.AddressList("From"); err == nil && len(addrs) > 0 {
		sender = addrs[0].String()
	}

	receivedAt, err := mr.Header.Date()
	if err != nil || receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	var plain, fallback []byte
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		} else if err != nil && !message.IsUnknownCharset(err) {
			// Keep whatever parts we already have.
			break
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		ctype, _, _ := h.ContentType()
		body, err := io.ReadAll(p.Body)
		if err != nil {
			continue
		}

		if ctype == "text/plain" && plain == nil {
			plain = body
		} else if fallback == nil {
			fallback = body
		}
	}

	bodyText := plain
	if bodyText == nil {
		bodyText = fallback
	}

	return &NormalizedEmail{
		Subject:    subject,
		BodyText:   string(bodyText),
		Sender:     sender,
		ReceivedAt: receivedAt,
		Account:    raw.Account,
		Folder:     raw.Folder,
	}, nil
}
