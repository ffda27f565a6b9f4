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

package run

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/RangasaiM/ReachInbox-Assignment/classify"
	"github.com/RangasaiM/ReachInbox-Assignment/cmd/config"
	imapclient "github.com/RangasaiM/ReachInbox-Assignment/imap/client"
	"github.com/RangasaiM/ReachInbox-Assignment/ingest"
	"github.com/RangasaiM/ReachInbox-Assignment/notify"
	"github.com/RangasaiM/ReachInbox-Assignment/store"
	"github.com/RangasaiM/ReachInbox-Assignment/supervisor"
)

func RegisterCommand(app *cli.App) *cli.App {
	cfg := &config.CliConfig{}
	app.Commands = append(app.Commands, &cli.Command{
		Name:   "run",
		Usage:  "Run the mailbox sync engine",
		Flags:  cfg.Parameters(),
		Action: func(context *cli.Context) error { return run(context, cfg) },
	})
	return app
}

func run(ctx *cli.Context, cfg *config.CliConfig) error {
	logLevel, err := log.ParseLevel(cfg.LogLevel)
	if err == nil {
		log.SetLevel(logLevel)
	}

	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	log.WithFields(log.Fields{
		"accounts_path":          cfg.AccountsPath,
		"elastic_url":            cfg.ElasticURL,
		"elastic_index":          cfg.ElasticIndex,
		"gemini_model":           cfg.GeminiModel,
		"lookback_window":        cfg.LookbackWindow,
		"refresh_interval":       cfg.RefreshInterval,
		"refresh_delay":          cfg.RefreshDelay,
		"error_retry_delay":      cfg.ErrorRetryDelay,
		"idle_fallback_interval": cfg.IdleFallbackInterval,
		"fetch_buffer_size":      cfg.FetchBufferSize,
		"log_level":              cfg.LogLevel,
		"log_format":             cfg.LogFormat,
	}).Info("starting")

	accounts, err := cfg.ResolveAccounts(os.Getenv)
	if err != nil {
		return err
	}

	st, err := store.NewElasticStore(&store.ElasticConfig{
		Address: cfg.ElasticURL,
		APIKey:  cfg.ElasticAPIKey,
		Index:   cfg.ElasticIndex,
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := st.EnsureIndex(ctx.Context); err != nil {
		log.Fatal(err)
	}

	var classifier classify.Service
	if cfg.GeminiAPIKey != "" {
		classifier = classify.NewRetrier(classify.NewGeminiClient(&classify.GeminiConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		}), 0, 0)
	} else {
		log.Warn("classification_disabled_no_api_key")
	}

	var notifiers []notify.Notifier
	if cfg.SlackWebhookURL != "" {
		notifiers = append(notifiers, notify.NewSlackNotifier(cfg.SlackWebhookURL))
	}
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(cfg.WebhookURL))
	}

	pipeline := ingest.NewPipeline(&ingest.Config{
		Store:      st,
		Classifier: classifier,
		Notifiers:  notifiers,
	})

	sup, err := supervisor.New(&supervisor.Config{
		Accounts:             accounts,
		Factory:              &imapclient.Factory{},
		Pipeline:             pipeline,
		LookbackWindow:       cfg.LookbackWindow,
		RefreshInterval:      cfg.RefreshInterval,
		RefreshDelay:         cfg.RefreshDelay,
		ErrorRetryDelay:      cfg.ErrorRetryDelay,
		IdleFallbackInterval: cfg.IdleFallbackInterval,
		FetchBufferSize:      cfg.FetchBufferSize,
	})
	if err != nil {
		log.Fatal(err)
	}

	sigchan := make(chan os.Signal, 10)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigchan
	log.WithFields(log.Fields{"signal": sig}).Info("received_interrupt")

	done := make(chan struct{})
	go func() {
		sup.Close()
		close(done)
	}()

	for {
		select {
		case sig := <-sigchan:
			log.WithFields(log.Fields{"signal": sig}).Warn("received_interrupt_force_exit")
			os.Exit(1)
		case <-done:
			log.Info("stopped")
			return nil
		}
	}
}
