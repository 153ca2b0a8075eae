package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// dynamoItem is the table row. expiresAt is the table's TTL attribute.
type dynamoItem struct {
	Key       string `dynamodbav:"sessionKey"`
	Value     string `dynamodbav:"state"`
	UpdatedAt string `dynamodbav:"updatedAt"`
	ExpiresAt int64  `dynamodbav:"expiresAt,omitempty"`
}

// DynamoStore persists values to a DynamoDB table keyed by sessionKey.
type DynamoStore struct {
	client    dynamoAPI
	tableName string
	now       func() time.Time
}

// NewDynamoStore builds a store backed by the provided DynamoDB client.
func NewDynamoStore(client dynamoAPI, tableName string) *DynamoStore {
	if client == nil {
		panic("kv: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("kv: table name cannot be empty")
	}
	return &DynamoStore{client: client, tableName: tableName, now: time.Now}
}

func (s *DynamoStore) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"sessionKey": &types.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("kv: dynamodb get %s: %w", key, err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("kv: failed to decode item %s: %w", key, err)
	}
	// DynamoDB deletes expired items lazily, so filter them here.
	if item.ExpiresAt != 0 && item.ExpiresAt <= s.now().Unix() {
		return nil, ErrNotFound
	}
	return []byte(item.Value), nil
}

func (s *DynamoStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := s.now().UTC()
	item := dynamoItem{
		Key:       key,
		Value:     string(value),
		UpdatedAt: now.Format(time.RFC3339Nano),
	}
	if ttl > 0 {
		item.ExpiresAt = now.Add(ttl).Unix()
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("kv: failed to marshal item %s: %w", key, err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("kv: dynamodb put %s: %w", key, err)
	}
	return nil
}
