/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package ddb provides a DocumentStore backed by a single DynamoDB table.
//
// Documents are items keyed by the composed storage key; expiry uses a
// native TTL attribute (unix seconds). Index definitions live in the same
// table as catalog items under an "INDEX#" key namespace.
package ddb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-openapi/strfmt"

	"github.com/suparena/transitstore/storagemodels"
)

const (
	keyAttr        = "PK"
	entityTypeAttr = "_EntityType"
	storedAtAttr   = "_StoredAt"
	expiresAtAttr  = "ExpiresAt"
	indexSpecAttr  = "IndexSpec"

	indexCatalogPrefix = "INDEX#"
)

// Store implements datastore.DocumentStore on top of DynamoDB.
type Store struct {
	client    *sdk.Client
	tableName string
}

// NewClient initializes a DynamoDB client using static AWS credentials.
func NewClient(awsAccessKey, awsSecretKey, awsRegion string) (*sdk.Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return sdk.NewFromConfig(cfg), nil
}

// New constructs a Store for the given table.
func New(awsAccessKey, awsSecretKey, awsRegion, tableName string) (*Store, error) {
	client, err := NewClient(awsAccessKey, awsSecretKey, awsRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	return &Store{client: client, tableName: tableName}, nil
}

// NewFromClient wraps an existing client, useful for tests and local
// endpoints.
func NewFromClient(client *sdk.Client, tableName string) *Store {
	return &Store{client: client, tableName: tableName}
}

// Set upserts the document as a single item. PutItem is atomic per key, so
// concurrent writers to the same key serialize at the table.
func (s *Store) Set(ctx context.Context, key string, doc *storagemodels.StoredDocument, _ time.Duration) error {
	item, err := marshalDocument(key, doc)
	if err != nil {
		return err
	}
	_, err = s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("PutItem failed for %q: %w", key, err)
	}
	return nil
}

// Get fetches the item under key. DynamoDB deletes TTL-expired items lazily,
// so the deadline is also checked here; an expired-but-present item reads as
// absent.
func (s *Store) Get(ctx context.Context, key string) (*storagemodels.StoredDocument, error) {
	out, err := s.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &s.tableName,
		Key:       itemKey(key),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem failed for %q: %w", key, err)
	}
	if out.Item == nil {
		return nil, nil
	}
	doc, err := unmarshalDocument(key, out.Item)
	if err != nil {
		return nil, err
	}
	if doc.Expired(time.Now()) {
		return nil, nil
	}
	return doc, nil
}

// Delete removes the item under key. Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName: &s.tableName,
		Key:       itemKey(key),
	})
	if err != nil {
		return fmt.Errorf("DeleteItem failed for %q: %w", key, err)
	}
	return nil
}

// CreateIndex records the index definition as a catalog item. The
// conditional put keeps concurrent provisioners from overwriting each other.
func (s *Store) CreateIndex(ctx context.Context, spec *storagemodels.IndexSpec) error {
	raw, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("failed to marshal index spec %q: %w", spec.Name, err)
	}
	_, err = s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &s.tableName,
		Item: map[string]types.AttributeValue{
			keyAttr:       &types.AttributeValueMemberS{Value: indexCatalogPrefix + spec.Name},
			indexSpecAttr: &types.AttributeValueMemberS{Value: string(raw)},
		},
		ConditionExpression: aws.String("attribute_not_exists(" + keyAttr + ")"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return fmt.Errorf("index %q already exists", spec.Name)
		}
		return fmt.Errorf("failed to create index %q: %w", spec.Name, err)
	}
	return nil
}

// DescribeIndex reads the catalog item for name, or (nil, nil) when absent.
func (s *Store) DescribeIndex(ctx context.Context, name string) (*storagemodels.IndexSpec, error) {
	out, err := s.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &s.tableName,
		Key:       itemKey(indexCatalogPrefix + name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe index %q: %w", name, err)
	}
	if out.Item == nil {
		return nil, nil
	}
	rawAttr, ok := out.Item[indexSpecAttr].(*types.AttributeValueMemberS)
	if !ok {
		return nil, fmt.Errorf("catalog item for index %q has no spec attribute", name)
	}
	spec := &storagemodels.IndexSpec{}
	if err := json.Unmarshal([]byte(rawAttr.Value), spec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index spec %q: %w", name, err)
	}
	return spec, nil
}

// NativeTTL reports true: the table's TTL attribute handles expiry.
func (s *Store) NativeTTL() bool { return true }

func itemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		keyAttr: &types.AttributeValueMemberS{Value: key},
	}
}

// marshalDocument flattens the document fields into item attributes and
// augments them with the key, entity type, stored-at, and TTL attributes.
func marshalDocument(key string, doc *storagemodels.StoredDocument) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(doc.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document fields for %q: %w", key, err)
	}
	item[keyAttr] = &types.AttributeValueMemberS{Value: key}
	item[entityTypeAttr] = &types.AttributeValueMemberS{Value: doc.EntityType}
	item[storedAtAttr] = &types.AttributeValueMemberS{Value: doc.StoredAt.String()}
	if doc.ExpiresAt != nil {
		item[expiresAtAttr] = &types.AttributeValueMemberN{
			Value: strconv.FormatInt(doc.ExpiresAt.Unix(), 10),
		}
	}
	return item, nil
}

func unmarshalDocument(key string, item map[string]types.AttributeValue) (*storagemodels.StoredDocument, error) {
	doc := &storagemodels.StoredDocument{Key: key}

	if et, ok := item[entityTypeAttr].(*types.AttributeValueMemberS); ok {
		doc.EntityType = et.Value
	}
	if sa, ok := item[storedAtAttr].(*types.AttributeValueMemberS); ok {
		ts, err := strfmt.ParseDateTime(sa.Value)
		if err != nil {
			return nil, fmt.Errorf("item %q has malformed stored-at timestamp: %w", key, err)
		}
		doc.StoredAt = ts
	}
	if ea, ok := item[expiresAtAttr].(*types.AttributeValueMemberN); ok {
		secs, err := strconv.ParseInt(ea.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("item %q has malformed TTL attribute: %w", key, err)
		}
		exp := time.Unix(secs, 0)
		doc.ExpiresAt = &exp
	}

	fields := make(map[string]any, len(item))
	payload := make(map[string]types.AttributeValue, len(item))
	for name, av := range item {
		switch name {
		case keyAttr, entityTypeAttr, storedAtAttr, expiresAtAttr:
			continue
		}
		payload[name] = av
	}
	if err := attributevalue.UnmarshalMap(payload, &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document fields for %q: %w", key, err)
	}
	doc.Fields = fields
	return doc, nil
}
