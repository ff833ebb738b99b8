// Package opensearch indexes normalized records as OpenSearch documents, one
// index per storage table.
package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/couchcryptid/swim-data-etl/internal/config"
	"github.com/couchcryptid/swim-data-etl/internal/domain"
	opensearchgo "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// Store writes records with the index API.
// It implements pipeline.Store.
type Store struct {
	client *opensearchgo.Client
	logger *slog.Logger
}

// NewStore creates a client for the configured cluster.
func NewStore(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	client, err := opensearchgo.NewClient(opensearchgo.Config{
		Addresses: []string{cfg.OpenSearchURL},
		Username:  cfg.OpenSearchUsername,
		Password:  cfg.OpenSearchPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("create opensearch client: %w", err)
	}
	return &Store{client: client, logger: logger}, nil
}

// IndexName maps a table name onto a valid index name.
func IndexName(table string) string {
	return strings.ToLower(table)
}

// Ping verifies the cluster answers.
func (s *Store) Ping(ctx context.Context) error {
	res, err := opensearchapi.InfoRequest{}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("ping opensearch: %w", err)
	}
	defer drain(res)
	if res.IsError() {
		return fmt.Errorf("ping opensearch: %s", res.Status())
	}
	return nil
}

// Put indexes record into the index derived from table.
func (s *Store) Put(ctx context.Context, table string, record domain.Tree) error {
	if record.Kind() != domain.KindObject {
		return fmt.Errorf("%w: document root is %s, want object", domain.ErrSerialization, record.Kind())
	}
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSerialization, err)
	}

	index := IndexName(table)
	res, err := opensearchapi.IndexRequest{
		Index: index,
		Body:  bytes.NewReader(body),
	}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("opensearch index into %s: %w", index, err)
	}
	defer drain(res)

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("opensearch index into %s: %s: %s", index, res.Status(), bytes.TrimSpace(msg))
	}
	s.logger.Debug("opensearch document indexed", "index", index, "bytes", len(body))
	return nil
}

func drain(res *opensearchapi.Response) {
	if res != nil && res.Body != nil {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}
}
