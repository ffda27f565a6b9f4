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
	"errors"
	"time"
)

var (
	errInvalidScheme = errors.New("invalid uri scheme")
)

// AccountConfig is one mailbox entry in the accounts file. The password
// is never serialized back out.
type AccountConfig struct {
	URL          string `json:"url"`
	Username     string `json:"username"`
	Password     string `json:"-"`
	PasswordFile string `json:"password_file,omitempty"`
	AuthMethod   string `json:"auth_method,omitempty"`

	TLSSkipVerify bool `json:"tls_skip_verify,omitempty"`
	Debug         bool `json:"debug,omitempty"`
}

type AccountsFile struct {
	Accounts []AccountConfig `json:"accounts"`
}

type CliConfig struct {
	AccountsPath string `json:"-"`

	ElasticURL    string `json:"elastic_url"`
	ElasticAPIKey string `json:"-"`
	ElasticIndex  string `json:"elastic_index"`

	GeminiAPIKey string `json:"-"`
	GeminiModel  string `json:"gemini_model"`

	SlackWebhookURL string `json:"-"`
	WebhookURL      string `json:"webhook_url"`

	LookbackWindow       time.Duration `json:"lookback_window"`
	RefreshInterval      time.Duration `json:"refresh_interval"`
	RefreshDelay         time.Duration `json:"refresh_delay"`
	ErrorRetryDelay      time.Duration `json:"error_retry_delay"`
	IdleFallbackInterval time.Duration `json:"idle_fallback_interval"`
	FetchBufferSize      uint          `json:"fetch_buffer_size"`

	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
}
