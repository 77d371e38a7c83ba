package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	strategyScan = "scan"

	// maxBatchWrite is the BatchWriteItem request limit.
	maxBatchWrite = 25
)

// BatchClearer empties the table row by row: a paginated key-only Scan feeds
// BatchWriteItem delete requests. The table is never dropped, so a failure
// leaves a partially cleared list rather than a missing table.
type BatchClearer struct {
	api       dynamodbAPI
	tableName string
}

// NewBatchClearer creates a BatchClearer for tableName.
func NewBatchClearer(api dynamodbAPI, tableName string) (*BatchClearer, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &BatchClearer{api: api, tableName: tableName}, nil
}

func (b *BatchClearer) Strategy() string {
	return strategyScan
}

// Clear deletes every row. Unprocessed items are resubmitted once per batch;
// anything still unprocessed is reported as an error.
func (b *BatchClearer) Clear(ctx context.Context) error {
	expr, err := expression.NewBuilder().
		WithProjection(expression.NamesList(expression.Name(attrItem))).
		Build()
	if err != nil {
		return fmt.Errorf("build projection: %w", err)
	}

	paginator := dynamodb.NewScanPaginator(b.api, &dynamodb.ScanInput{
		TableName:                aws.String(b.tableName),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})

	var pending []types.WriteRequest
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		for _, row := range page.Items {
			key, ok := row[attrItem]
			if !ok {
				continue
			}
			pending = append(pending, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{attrItem: key},
				},
			})
			if len(pending) == maxBatchWrite {
				if err := b.flush(ctx, pending); err != nil {
					return err
				}
				pending = pending[:0]
			}
		}
	}
	if len(pending) > 0 {
		return b.flush(ctx, pending)
	}
	return nil
}

func (b *BatchClearer) flush(ctx context.Context, batch []types.WriteRequest) error {
	requests := append([]types.WriteRequest(nil), batch...)
	for attempt := 0; attempt < 2 && len(requests) > 0; attempt++ {
		out, err := b.api.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{b.tableName: requests},
		})
		if err != nil {
			return fmt.Errorf("batch delete: %w", err)
		}
		if out == nil {
			return nil
		}
		requests = out.UnprocessedItems[b.tableName]
	}
	if len(requests) > 0 {
		return fmt.Errorf("batch delete: %d items left unprocessed", len(requests))
	}
	return nil
}
