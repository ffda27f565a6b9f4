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
	"time"

	"github.com/urfave/cli/v2"

	"github.com/RangasaiM/ReachInbox-Assignment/classify"
	"github.com/RangasaiM/ReachInbox-Assignment/store"
)

func DefaultConfig() CliConfig {
	return CliConfig{
		ElasticURL:           "http://localhost:9200",
		ElasticIndex:         store.DefaultIndex,
		GeminiModel:          classify.DefaultGeminiModel,
		LookbackWindow:       30 * 24 * time.Hour,
		RefreshInterval:      29 * time.Minute,
		RefreshDelay:         2 * time.Second,
		ErrorRetryDelay:      5 * time.Second,
		IdleFallbackInterval: time.Minute,
		FetchBufferSize:      20,
		LogLevel:             "info",
		LogFormat:            "text",
	}
}

func (cfg *CliConfig) Parameters() []cli.Flag {
	def := DefaultConfig()

	return []cli.Flag{
		&cli.StringFlag{
			Name:        "accounts",
			Aliases:     []string{"a"},
			Usage:       "path to the accounts file. when unset, accounts are read from REACHINBOX_IMAP_EMAIL_n/REACHINBOX_IMAP_PASSWORD_n pairs",
			Destination: &cfg.AccountsPath,
			Value:       def.AccountsPath,
		},
		&cli.StringFlag{
			Name:        "elastic-url",
			Usage:       "elasticsearch address",
			EnvVars:     []string{"REACHINBOX_ELASTIC_URL"},
			Destination: &cfg.ElasticURL,
			Value:       def.ElasticURL,
		},
		&cli.StringFlag{
			Name:        "elastic-api-key",
			Usage:       "elasticsearch api key",
			EnvVars:     []string{"REACHINBOX_ELASTIC_API_KEY"},
			Destination: &cfg.ElasticAPIKey,
			Value:       def.ElasticAPIKey,
		},
		&cli.StringFlag{
			Name:        "elastic-index",
			Usage:       "elasticsearch index name",
			EnvVars:     []string{"REACHINBOX_ELASTIC_INDEX"},
			Destination: &cfg.ElasticIndex,
			Value:       def.ElasticIndex,
		},
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "gemini api key. classification is disabled when unset",
			EnvVars:     []string{"REACHINBOX_GEMINI_API_KEY"},
			Destination: &cfg.GeminiAPIKey,
			Value:       def.GeminiAPIKey,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "gemini model name",
			EnvVars:     []string{"REACHINBOX_GEMINI_MODEL"},
			Destination: &cfg.GeminiModel,
			Value:       def.GeminiModel,
		},
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "slack incoming webhook for interested leads",
			EnvVars:     []string{"REACHINBOX_SLACK_WEBHOOK_URL"},
			Destination: &cfg.SlackWebhookURL,
			Value:       def.SlackWebhookURL,
		},
		&cli.StringFlag{
			Name:        "webhook-url",
			Usage:       "generic webhook for interested leads",
			EnvVars:     []string{"REACHINBOX_WEBHOOK_URL"},
			Destination: &cfg.WebhookURL,
			Value:       def.WebhookURL,
		},
		&cli.DurationFlag{
			Name:        "lookback-window",
			Usage:       "how far back the catch-up search reaches",
			EnvVars:     []string{"REACHINBOX_LOOKBACK_WINDOW"},
			Destination: &cfg.LookbackWindow,
			Value:       def.LookbackWindow,
		},
		&cli.DurationFlag{
			Name:        "refresh-interval",
			Usage:       "how long a connection may idle before it is replaced",
			EnvVars:     []string{"REACHINBOX_REFRESH_INTERVAL"},
			Destination: &cfg.RefreshInterval,
			Value:       def.RefreshInterval,
		},
		&cli.DurationFlag{
			Name:        "refresh-delay",
			Usage:       "pause between a planned logout and the reconnect",
			EnvVars:     []string{"REACHINBOX_REFRESH_DELAY"},
			Destination: &cfg.RefreshDelay,
			Value:       def.RefreshDelay,
		},
		&cli.DurationFlag{
			Name:        "error-retry-delay",
			Usage:       "pause before reconnecting after a failure",
			EnvVars:     []string{"REACHINBOX_ERROR_RETRY_DELAY"},
			Destination: &cfg.ErrorRetryDelay,
			Value:       def.ErrorRetryDelay,
		},
		&cli.DurationFlag{
			Name:        "idle-fallback-interval",
			Usage:       "fallback poll interval for servers that don't support IDLE",
			EnvVars:     []string{"REACHINBOX_IDLE_FALLBACK_INTERVAL"},
			Destination: &cfg.IdleFallbackInterval,
			Value:       def.IdleFallbackInterval,
		},
		&cli.UintFlag{
			Name:        "fetch-buffer-size",
			Usage:       "fetch buffer size",
			EnvVars:     []string{"REACHINBOX_FETCH_BUFFER_SIZE"},
			Destination: &cfg.FetchBufferSize,
			Value:       def.FetchBufferSize,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "logging level",
			EnvVars:     []string{"REACHINBOX_LOG_LEVEL"},
			Destination: &cfg.LogLevel,
			Value:       def.LogLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "logging format (text/json)",
			EnvVars:     []string{"REACHINBOX_LOG_FORMAT"},
			Destination: &cfg.LogFormat,
			Value:       def.LogFormat,
		},
	}
}
