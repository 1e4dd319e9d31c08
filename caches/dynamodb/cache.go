package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dgduncan/go-note-favicon/caches"
)

// API is the subset of *dynamodb.Client used by Cache.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Config defines the configuration options for the DynamoDB backend.
type Config struct {
	Table string // table with a string hash key named "name"
	Name  string // document item key, defaults to caches.DefaultDocumentName
}

// Cache stores the cache document as a single DynamoDB item.
type Cache struct {
	client API

	table string
	name  string
	now   func() time.Time
}

type documentItem struct {
	Name      string `json:"name" dynamodbav:"name"`
	Document  []byte `json:"document" dynamodbav:"document"`
	UpdatedAt int64  `json:"updated_at" dynamodbav:"updated_at"`
}

// Read retrieves the document item. Returns caches.ErrNoDocument if it doesn't exist.
func (c *Cache) Read(ctx context.Context) ([]byte, error) {
	key, err := c.key()
	if err != nil {
		return nil, err
	}

	output, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		Key:            key,
		ConsistentRead: aws.Bool(true),
		TableName:      aws.String(c.table),
	})
	if err != nil {
		return nil, err
	}

	if output.Item == nil {
		return nil, caches.ErrNoDocument
	}

	var item documentItem
	if err := attributevalue.UnmarshalMap(output.Item, &item); err != nil {
		return nil, err
	}

	return item.Document, nil
}

// Write replaces the document item.
func (c *Cache) Write(ctx context.Context, doc []byte) error {
	av, err := attributevalue.MarshalMap(documentItem{
		Name:      c.name,
		Document:  doc,
		UpdatedAt: c.now().UTC().Unix(),
	})
	if err != nil {
		return err
	}

	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      av,
	})
	return err
}

// Remove deletes the document item. Deleting a missing item is not an error.
func (c *Cache) Remove(ctx context.Context) error {
	key, err := c.key()
	if err != nil {
		return err
	}

	_, err = c.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.table),
		Key:       key,
	})
	return err
}

func (c *Cache) key() (map[string]types.AttributeValue, error) {
	name, err := attributevalue.Marshal(c.name)
	if err != nil {
		return nil, err
	}
	return map[string]types.AttributeValue{"name": name}, nil
}

// New creates a new DynamoDB backend with the provided configuration.
// Returns an error if the client is nil or if the configuration is invalid.
func New(_ context.Context, client API, config *Config) (*Cache, error) {
	if client == nil {
		return nil, caches.ValidationError{
			Reason: "nil client",
		}
	}

	if config == nil || config.Table == "" {
		return nil, caches.ValidationError{
			Reason: "empty table name",
		}
	}

	name := config.Name
	if name == "" {
		name = caches.DefaultDocumentName
	}

	return &Cache{
		client: client,

		table: config.Table,
		name:  name,
		now:   time.Now,
	}, nil
}
