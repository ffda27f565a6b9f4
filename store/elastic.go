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

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	log "github.com/sirupsen/logrus"

	"github.com/RangasaiM/ReachInbox-Assignment/classify"
)

const DefaultIndex = "emails"

const indexMapping = `{
	"mappings": {
		"properties": {
			"subject":    {"type": "text"},
			"body":       {"type": "text"},
			"accountId":  {"type": "keyword"},
			"folder":     {"type": "keyword"},
			"aiCategory": {"type": "keyword"},
			"date":       {"type": "date"},
			"indexedAt":  {"type": "date"}
		}
	}
}`

// ElasticStore is the Elasticsearch-backed DocumentStore. Safe for
// concurrent use; the underlying client pools connections.
type ElasticStore struct {
	es    *elasticsearch.Client
	index string
}

type ElasticConfig struct {
	Address string
	APIKey  string
	Index   string
}

func NewElasticStore(cfg *ElasticConfig) (*ElasticStore, error) {
	index := cfg.Index
	if index == "" {
		index = DefaultIndex
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Address},
		APIKey:    cfg.APIKey,
	})
	if err != nil {
		return nil, err
	}

	return &ElasticStore{es: es, index: index}, nil
}

// EnsureIndex creates the email index with its mapping if it does not
// already exist.
func (s *ElasticStore) EnsureIndex(ctx context.Context) error {
	res, err := s.es.Indices.Exists([]string{s.index}, s.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		log.WithField("index", s.index).Debug("store_index_exists")
		return nil
	case http.StatusNotFound:
		// fallthrough to create
	default:
		return fmt.Errorf("store: index existence check failed: %v", res.String())
	}

	res, err = s.es.Indices.Create(
		s.index,
		s.es.Indices.Create.WithBody(strings.NewReader(indexMapping)),
		s.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("store: index creation failed: %v", res.String())
	}

	log.WithField("index", s.index).Info("store_index_created")
	return nil
}

func (s *ElasticStore) Persist(ctx context.Context, doc *Document) (string, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}

	res, err := s.es.Index(s.index, bytes.NewReader(payload), s.es.Index.WithContext(ctx))
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.IsError() {
		return "", fmt.Errorf("store: index request failed: %v", res.String())
	}

	var indexed struct {
		ID string `json:"_id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&indexed); err != nil {
		return "", err
	}

	if indexed.ID == "" {
		return "", fmt.Errorf("store: index response missing document id")
	}

	return indexed.ID, nil
}

func (s *ElasticStore) UpdateCategory(ctx context.Context, id string, category classify.Category) error {
	payload, err := json.Marshal(map[string]interface{}{
		"doc": map[string]interface{}{"aiCategory": category},
	})
	if err != nil {
		return err
	}

	res, err := s.es.Update(s.index, id, bytes.NewReader(payload), s.es.Update.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("store: update request failed: %v", res.String())
	}

	return nil
}
