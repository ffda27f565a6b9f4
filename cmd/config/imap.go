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

package config

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/RangasaiM/ReachInbox-Assignment/supervisor"
)

// DefaultIMAPURL is used for env-pair accounts that don't name a server.
const DefaultIMAPURL = "imaps://imap.gmail.com/INBOX"

func extractUrl(u *url.URL) (string, string, bool, error) {
	var defaultPort string
	var useTLS bool
	switch strings.ToLower(u.Scheme) {
	case "imap":
		defaultPort = "143"
		useTLS = false
	case "imaps":
		defaultPort = "993"
		useTLS = true
	default:
		return "", "", false, errInvalidScheme
	}

	host := u.Hostname()
	port := u.Port()

	if port == "" {
		port = defaultPort
	}

	return net.JoinHostPort(host, port), strings.TrimPrefix(u.Path, "/"), useTLS, nil
}

func (cfg *AccountConfig) password() (string, error) {
	if cfg.Password != "" {
		return cfg.Password, nil
	}

	if cfg.PasswordFile != "" {
		pass, err := os.ReadFile(cfg.PasswordFile)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(pass)), nil
	}

	return "", fmt.Errorf("account %v: one of password or password_file is required", cfg.Username)
}

// Resolve turns a file or env account entry into a supervisor account.
func (cfg *AccountConfig) Resolve() (supervisor.Account, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return supervisor.Account{}, err
	}

	hostPort, mailbox, wantTLS, err := extractUrl(u)
	if err != nil {
		return supervisor.Account{}, err
	}

	password, err := cfg.password()
	if err != nil {
		return supervisor.Account{}, err
	}

	var tlsConfig *tls.Config
	if cfg.TLSSkipVerify {
		// #nosec G402
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return supervisor.Account{
		Username:   cfg.Username,
		Password:   password,
		AuthMethod: cfg.AuthMethod,
		HostPort:   hostPort,
		Mailbox:    mailbox,
		TLS:        wantTLS,
		TLSConfig:  tlsConfig,
		Debug:      cfg.Debug,
	}, nil
}

// AccountsFromEnv walks REACHINBOX_IMAP_EMAIL_n/REACHINBOX_IMAP_PASSWORD_n
// pairs starting at 1 and stops at the first index with neither set. A pair
// with only one half is skipped with a warning rather than failing the run.
// REACHINBOX_IMAP_URL_n overrides the server per account.
func AccountsFromEnv(getenv func(string) string) ([]supervisor.Account, error) {
	var accounts []supervisor.Account

	for i := 1; ; i++ {
		email := getenv(fmt.Sprintf("REACHINBOX_IMAP_EMAIL_%v", i))
		password := getenv(fmt.Sprintf("REACHINBOX_IMAP_PASSWORD_%v", i))

		if email == "" && password == "" {
			break
		}

		if email == "" || password == "" {
			log.WithField("index", i).Warn("config_incomplete_account_pair")
			continue
		}

		rawURL := getenv(fmt.Sprintf("REACHINBOX_IMAP_URL_%v", i))
		if rawURL == "" {
			rawURL = DefaultIMAPURL
		}

		acc := AccountConfig{URL: rawURL, Username: email, Password: password}
		resolved, err := acc.Resolve()
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, resolved)
	}

	return accounts, nil
}

func LoadAccountsFile(path string) ([]supervisor.Account, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f AccountsFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}

	accounts := make([]supervisor.Account, 0, len(f.Accounts))
	for i := range f.Accounts {
		resolved, err := f.Accounts[i].Resolve()
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, resolved)
	}

	return accounts, nil
}

// ResolveAccounts prefers the accounts file when one is configured and
// falls back to env pairs otherwise.
func (cfg *CliConfig) ResolveAccounts(getenv func(string) string) ([]supervisor.Account, error) {
	if cfg.AccountsPath != "" {
		return LoadAccountsFile(cfg.AccountsPath)
	}

	return AccountsFromEnv(getenv)
}
