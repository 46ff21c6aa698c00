package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/devzoku/devzoku-api/internal/models"
	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"go.uber.org/zap"
)

// InteractionIndexer mirrors recorded interactions for the recommender.
type InteractionIndexer interface {
	Index(ctx context.Context, interaction models.UserInteraction) error
	Close(ctx context.Context) error
}

const interactionMapping = `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
	"user_id":{"type":"long"},"hackathon_id":{"type":"long"},"type":{"type":"keyword"},
	"tags":{"type":"keyword"},"duration":{"type":"keyword"},"mode":{"type":"keyword"},
	"query":{"type":"object","enabled":false},"created_at":{"type":"date"}
}}}`

// InteractionDoc is the indexed shape of a UserInteraction.
type InteractionDoc struct {
	UserID      uint64          `json:"user_id"`
	HackathonID *uint64         `json:"hackathon_id,omitempty"`
	Type        string          `json:"type"`
	Tags        []string        `json:"tags"`
	Duration    string          `json:"duration,omitempty"`
	Mode        string          `json:"mode,omitempty"`
	Query       json.RawMessage `json:"query,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func BuildInteractionDoc(i models.UserInteraction) ([]byte, error) {
	doc := InteractionDoc{
		UserID:      i.UserID,
		HackathonID: i.HackathonID,
		Type:        string(i.Type),
		Tags:        []string(i.Tags),
		Duration:    i.Duration,
		Mode:        i.Mode,
		CreatedAt:   i.CreatedAt,
	}
	if len(i.Query) > 0 {
		doc.Query = json.RawMessage(i.Query)
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	return json.Marshal(doc)
}

// Connect creates an Elasticsearch client for url.
func Connect(url string) (*es.Client, error) {
	client, err := es.NewClient(es.Config{Addresses: []string{url}})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	return client, nil
}

// EnsureIndex creates the interaction index with a strict mapping if it is missing.
func EnsureIndex(ctx context.Context, c *es.Client, index string) error {
	exists, err := c.Indices.Exists([]string{index}, c.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	defer exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	res, err := c.Indices.Create(index,
		c.Indices.Create.WithBody(bytes.NewBufferString(interactionMapping)),
		c.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", index, res.Status())
	}
	return nil
}

// ElasticIndexer batches interaction documents through a bulk indexer.
type ElasticIndexer struct {
	bi    esutil.BulkIndexer
	index string
	log   *zap.Logger
}

func NewElasticIndexer(c *es.Client, index string, log *zap.Logger) (*ElasticIndexer, error) {
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:        c,
		Index:         index,
		FlushBytes:    5 << 20,
		FlushInterval: 5 * time.Second,
		NumWorkers:    2,
	})
	if err != nil {
		return nil, fmt.Errorf("create bulk indexer: %w", err)
	}
	return &ElasticIndexer{bi: bi, index: index, log: log.Named("search")}, nil
}

func (x *ElasticIndexer) Index(ctx context.Context, interaction models.UserInteraction) error {
	body, err := BuildInteractionDoc(interaction)
	if err != nil {
		return err
	}

	docID := strconv.FormatUint(interaction.ID, 10)
	return x.bi.Add(ctx, esutil.BulkIndexerItem{
		Action:     "index",
		DocumentID: docID,
		Body:       bytes.NewReader(body),
		OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
			reason := res.Error.Reason
			if err != nil {
				reason = err.Error()
			}
			x.log.Warn("Failed to index interaction",
				zap.String("index", x.index),
				zap.String("doc_id", docID),
				zap.Int("status", res.Status),
				zap.String("reason", reason),
			)
		},
	})
}

// Close flushes pending documents.
func (x *ElasticIndexer) Close(ctx context.Context) error {
	if err := x.bi.Close(ctx); err != nil {
		return err
	}
	stats := x.bi.Stats()
	x.log.Info("Interaction indexer closed", zap.Uint64("flushed", stats.NumFlushed), zap.Uint64("failed", stats.NumFailed))
	return nil
}
