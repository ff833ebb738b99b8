// Package dynamodb stores normalized records as DynamoDB items.
package dynamodb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/couchcryptid/swim-data-etl/internal/config"
	"github.com/couchcryptid/swim-data-etl/internal/domain"
)

// PutItemAPI is the subset of the DynamoDB client the store uses.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *awsdynamodb.PutItemInput, optFns ...func(*awsdynamodb.Options)) (*awsdynamodb.PutItemOutput, error)
}

// Store writes records with PutItem.
// It implements pipeline.Store.
type Store struct {
	client PutItemAPI
	logger *slog.Logger
}

// NewStore loads AWS credentials from the default chain and creates a client
// for the configured region, honouring DYNAMODB_ENDPOINT when set.
func NewStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
	return NewStoreWithClient(client, logger), nil
}

// NewStoreWithClient wraps an existing client.
func NewStoreWithClient(client PutItemAPI, logger *slog.Logger) *Store {
	return &Store{client: client, logger: logger}
}

// Put writes record to table, replacing any item with the same key.
func (s *Store) Put(ctx context.Context, table string, record domain.Tree) error {
	item, err := MarshalItem(record)
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &awsdynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("dynamodb put item into %s: %w", table, err)
	}
	s.logger.Debug("dynamodb item stored", "table", table, "attributes", len(item))
	return nil
}
