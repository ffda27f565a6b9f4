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
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RangasaiM/ReachInbox-Assignment/supervisor"
)

func TestExtractUrl(t *testing.T) {
	tests := []struct {
		rawURL   string
		hostPort string
		mailbox  string
		tls      bool
		wantErr  bool
	}{
		{"imaps://imap.hostname.com:1234/INBOX", "imap.hostname.com:1234", "INBOX", true, false},
		{"imaps://imap.gmail.com/INBOX", "imap.gmail.com:993", "INBOX", true, false},
		{"imap://localhost/Work", "localhost:143", "Work", false, false},
		{"http://imap.gmail.com/INBOX", "", "", false, true},
	}

	for _, tc := range tests {
		t.Run(tc.rawURL, func(t *testing.T) {
			u, err := url.Parse(tc.rawURL)
			assert.NoError(t, err)

			hostPort, mailbox, useTLS, err := extractUrl(u)
			if tc.wantErr {
				assert.ErrorIs(t, err, errInvalidScheme)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.hostPort, hostPort)
			assert.Equal(t, tc.mailbox, mailbox)
			assert.Equal(t, tc.tls, useTLS)
		})
	}
}

func TestAccountConfigResolve(t *testing.T) {
	t.Run("password", func(t *testing.T) {
		cfg := AccountConfig{
			URL:      "imaps://imap.hostname.com:1234/INBOX",
			Username: "username",
			Password: "password",
		}

		acc, err := cfg.Resolve()
		assert.NoError(t, err)
		assert.Equal(t, supervisor.Account{
			Username: "username",
			Password: "password",
			HostPort: "imap.hostname.com:1234",
			Mailbox:  "INBOX",
			TLS:      true,
		}, acc)
	})

	t.Run("password_file", func(t *testing.T) {
		passFile := filepath.Join(t.TempDir(), "pass.txt")
		assert.NoError(t, os.WriteFile(passFile, []byte("password\n"), 0600))

		cfg := AccountConfig{
			URL:          "imaps://imap.hostname.com/INBOX",
			Username:     "username",
			PasswordFile: passFile,
		}

		acc, err := cfg.Resolve()
		assert.NoError(t, err)
		assert.Equal(t, "password", acc.Password)
	})

	t.Run("no_password", func(t *testing.T) {
		cfg := AccountConfig{
			URL:      "imaps://imap.hostname.com/INBOX",
			Username: "username",
		}

		_, err := cfg.Resolve()
		assert.Error(t, err)
	})
}

func TestAccountsFromEnv(t *testing.T) {
	env := map[string]string{
		"REACHINBOX_IMAP_EMAIL_1":    "one@example.com",
		"REACHINBOX_IMAP_PASSWORD_1": "hunter2",
		"REACHINBOX_IMAP_EMAIL_2":    "two@example.com",
		"REACHINBOX_IMAP_PASSWORD_2": "hunter3",
		"REACHINBOX_IMAP_URL_2":      "imap://mail.example.com/Leads",

		// Half a pair, skipped.
		"REACHINBOX_IMAP_EMAIL_3": "three@example.com",

		"REACHINBOX_IMAP_EMAIL_4":    "four@example.com",
		"REACHINBOX_IMAP_PASSWORD_4": "hunter4",
	}
	getenv := func(key string) string { return env[key] }

	accounts, err := AccountsFromEnv(getenv)
	assert.NoError(t, err)
	assert.Len(t, accounts, 3)

	assert.Equal(t, "one@example.com", accounts[0].Username)
	assert.Equal(t, "imap.gmail.com:993", accounts[0].HostPort)
	assert.True(t, accounts[0].TLS)

	assert.Equal(t, "mail.example.com:143", accounts[1].HostPort)
	assert.Equal(t, "Leads", accounts[1].Mailbox)
	assert.False(t, accounts[1].TLS)

	assert.Equal(t, "four@example.com", accounts[2].Username)
}

func TestAccountsFromEnvEmpty(t *testing.T) {
	accounts, err := AccountsFromEnv(func(string) string { return "" })
	assert.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestLoadAccountsFile(t *testing.T) {
	passFile := filepath.Join(t.TempDir(), "pass.txt")
	assert.NoError(t, os.WriteFile(passFile, []byte("password"), 0600))

	accountsFile := filepath.Join(t.TempDir(), "accounts.json")
	assert.NoError(t, os.WriteFile(accountsFile, []byte(`{
		"accounts": [
			{
				"url": "imaps://imap.hostname.com/INBOX",
				"username": "one@example.com",
				"password_file": "`+passFile+`"
			}
		]
	}`), 0600))

	accounts, err := LoadAccountsFile(accountsFile)
	assert.NoError(t, err)
	assert.Len(t, accounts, 1)
	assert.Equal(t, "one@example.com", accounts[0].Username)
	assert.Equal(t, "password", accounts[0].Password)
}

func TestDefaultConfig(t *testing.T) {
	def := DefaultConfig()
	assert.Equal(t, "emails", def.ElasticIndex)
	assert.Equal(t, "info", def.LogLevel)
	assert.NotZero(t, def.RefreshInterval)
	assert.NotEmpty(t, def.Parameters())
}
