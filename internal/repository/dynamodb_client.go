package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"shopping-list-bot/internal/domain"
)

// attrItem is the hash key of the list table.
const attrItem = "item"

// dynamodbAPI is the minimal DynamoDB interface required by Client and the
// clear strategies. Defined here for testability.
type dynamodbAPI interface {
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	DeleteTable(ctx context.Context, in *dynamodb.DeleteTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteTableOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// Clearer empties the list table.
type Clearer interface {
	Clear(ctx context.Context) error
	Strategy() string
}

// Option configures a Client.
type Option func(*Client)

// WithClearer replaces the default drop-and-recreate clear strategy.
func WithClearer(cl Clearer) Option {
	return func(c *Client) {
		c.clearer = cl
	}
}

// Client wraps the DynamoDB table that holds the global shopping list.
type Client struct {
	api       dynamodbAPI
	tableName string
	clearer   Clearer
}

// New creates a new repository Client. Without WithClearer, DeleteAll drops
// and recreates the table.
func New(api dynamodbAPI, tableName string, opts ...Option) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	c := &Client{api: api, tableName: tableName}
	for _, opt := range opts {
		opt(c)
	}
	if c.clearer == nil {
		resetter, err := NewTableResetter(api, tableName, DefaultDropTimeout)
		if err != nil {
			return nil, err
		}
		c.clearer = resetter
	}
	return c, nil
}

// TableName returns the name of the backing table.
func (c *Client) TableName() string {
	return c.tableName
}

// ClearStrategy reports which strategy DeleteAll uses.
func (c *Client) ClearStrategy() string {
	return c.clearer.Strategy()
}

// ListItems reads every row with a single Scan. Order is whatever DynamoDB
// returns; results past the first page are not read.
func (c *Client) ListItems(ctx context.Context) ([]string, error) {
	expr, err := expression.NewBuilder().
		WithProjection(expression.NamesList(expression.Name(attrItem))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("repository: ListItems build projection: %w", err)
	}

	out, err := c.api.Scan(ctx, &dynamodb.ScanInput{
		TableName:                aws.String(c.tableName),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: ListItems scan: %w", err)
	}
	if out == nil || len(out.Items) == 0 {
		return []string{}, nil
	}

	var rows []domain.ListItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &rows); err != nil {
		return nil, fmt.Errorf("repository: ListItems unmarshal: %w", err)
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Item)
	}
	return names, nil
}

// AddItem upserts a row keyed by the literal item text.
func (c *Client) AddItem(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("repository: AddItem: item name is required")
	}

	item, err := attributevalue.MarshalMap(domain.ListItem{Item: name})
	if err != nil {
		return fmt.Errorf("repository: AddItem marshal: %w", err)
	}

	_, err = c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("repository: AddItem: %w", err)
	}
	return nil
}

// DeleteItem removes the row whose key equals name exactly. A missing key is
// not an error; the returned bool reports whether a row was removed.
func (c *Client) DeleteItem(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, errors.New("repository: DeleteItem: item name is required")
	}

	out, err := c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(c.tableName),
		Key:          itemKey(name),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, fmt.Errorf("repository: DeleteItem: %w", err)
	}
	return out != nil && len(out.Attributes) > 0, nil
}

// DeleteAll empties the table using the configured clear strategy.
func (c *Client) DeleteAll(ctx context.Context) error {
	if err := c.clearer.Clear(ctx); err != nil {
		return fmt.Errorf("repository: DeleteAll (%s): %w", c.clearer.Strategy(), err)
	}
	return nil
}

func itemKey(name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrItem: &types.AttributeValueMemberS{Value: name},
	}
}
