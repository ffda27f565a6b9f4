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

package imap

import (
	"fmt"
	"strings"

	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-sasl"
	"golang.org/x/oauth2"
)

// Authenticator authenticates a freshly-dialed connection.
type Authenticator interface {
	Authenticate(c *client.Client) error
}

type plainAuthenticator struct {
	username string
	password string
}

// NewNormalAuthenticator authenticates with a plain IMAP LOGIN.
func NewNormalAuthenticator(username string, password string) Authenticator {
	return &plainAuthenticator{username: username, password: password}
}

func (a *plainAuthenticator) Authenticate(c *client.Client) error {
	return c.Login(a.username, a.password)
}

type saslAuthenticator struct {
	client sasl.Client
}

func NewSASLAuthenticator(client sasl.Client) Authenticator {
	return &saslAuthenticator{client: client}
}

func (a *saslAuthenticator) Authenticate(c *client.Client) error {
	return c.Authenticate(a.client)
}

type oauthBearerAuthenticator struct {
	username string
	source   oauth2.TokenSource
}

// NewOAuthBearerAuthenticator authenticates via SASL OAUTHBEARER, fetching
// a fresh token from the source on every connection attempt.
func NewOAuthBearerAuthenticator(username string, source oauth2.TokenSource) Authenticator {
	return &oauthBearerAuthenticator{username: username, source: source}
}

func (a *oauthBearerAuthenticator) Authenticate(c *client.Client) error {
	tok, err := a.source.Token()
	if err != nil {
		return err
	}

	return c.Authenticate(sasl.NewOAuthBearerClient(&sasl.OAuthBearerOptions{
		Username: a.username,
		Token:    tok.AccessToken,
	}))
}

// NewAuthenticator builds an authenticator from a configured method name.
// "normal" is an IMAP LOGIN, "plain" is SASL PLAIN, and sasl.OAuthBearer
// treats the password as a static bearer token.
func NewAuthenticator(method string, username string, password string) (Authenticator, error) {
	switch strings.ToUpper(method) {
	case "", "NORMAL":
		return NewNormalAuthenticator(username, password), nil
	case sasl.Plain:
		return NewSASLAuthenticator(sasl.NewPlainClient("", username, password)), nil
	case sasl.OAuthBearer:
		return NewOAuthBearerAuthenticator(username, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: password})), nil
	default:
		return nil, fmt.Errorf("unsupported auth method: %v", method)
	}
}
