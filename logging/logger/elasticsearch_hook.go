package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/examhub-dev/examhub/config"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"
)

// ElasticSearchHook ships log entries to an Elasticsearch index named
// <index>-YYYY.MM.DD.
type ElasticSearchHook struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticSearchHook creates new Elasticsearch hook
func NewElasticSearchHook(cfg *config.Elasticsearch, index string) (*ElasticSearchHook, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, err
	}

	if index == "" {
		index = "examhub_log"
	}

	return &ElasticSearchHook{client: client, index: index}, nil
}

// Levels returns all log levels
func (h *ElasticSearchHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire sends log entry to Elasticsearch
func (h *ElasticSearchHook) Fire(entry *logrus.Entry) error {
	doc := h.prepareLogDocument(entry)

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal log document: %w", err)
	}

	index := fmt.Sprintf("%s-%s", h.index, entry.Time.Format("2006.01.02"))
	res, err := h.client.Index(index, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch index error: %s", res.Status())
	}
	return nil
}

func (h *ElasticSearchHook) prepareLogDocument(entry *logrus.Entry) map[string]any {
	doc := make(map[string]any, len(entry.Data)+4)

	doc["@timestamp"] = entry.Time.Format(time.RFC3339)
	doc["level"] = entry.Level.String()
	doc["message"] = entry.Message

	if hostname, err := os.Hostname(); err == nil {
		doc["hostname"] = hostname
	}

	for key, value := range entry.Data {
		if key != "@timestamp" && key != "level" && key != "message" {
			doc[key] = value
		}
	}

	return doc
}
