package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"shopping-list-bot/internal/domain"
)

// DefaultDropTimeout bounds how long Clear waits for DynamoDB to finish
// deleting the table.
const DefaultDropTimeout = 2 * time.Minute

const strategyRecreate = "recreate"

// ResetStage names a step of the drop-and-recreate sequence.
type ResetStage string

const (
	StageFetchSchema   ResetStage = "fetch_schema"
	StageDropTable     ResetStage = "drop_table"
	StageAwaitDropped  ResetStage = "await_dropped"
	StageRecreateTable ResetStage = "recreate_table"
)

// ResetError reports the stage at which a table reset stopped. Schema is the
// captured description when the failure happened after FetchSchema.
type ResetError struct {
	Stage  ResetStage
	Table  string
	Schema *domain.TableSchema
	Err    error
}

func (e *ResetError) Error() string {
	return fmt.Sprintf("repository: reset table %q failed at %s: %v", e.Table, e.Stage, e.Err)
}

func (e *ResetError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, domain.ErrTableMissing) detect the data-loss state.
func (e *ResetError) Is(target error) bool {
	return target == domain.ErrTableMissing && e.TableMissing()
}

// TableMissing reports whether the table had already been dropped when the
// reset failed.
func (e *ResetError) TableMissing() bool {
	return e.Stage == StageAwaitDropped || e.Stage == StageRecreateTable
}

// TableResetter clears the list by dropping the table and recreating it with
// the same schema.
type TableResetter struct {
	api         dynamodbAPI
	tableName   string
	dropTimeout time.Duration
	waiterOpts  []func(*dynamodb.TableNotExistsWaiterOptions)
}

// NewTableResetter creates a TableResetter. A non-positive dropTimeout falls
// back to DefaultDropTimeout.
func NewTableResetter(api dynamodbAPI, tableName string, dropTimeout time.Duration, waiterOpts ...func(*dynamodb.TableNotExistsWaiterOptions)) (*TableResetter, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	if dropTimeout <= 0 {
		dropTimeout = DefaultDropTimeout
	}
	return &TableResetter{
		api:         api,
		tableName:   tableName,
		dropTimeout: dropTimeout,
		waiterOpts:  waiterOpts,
	}, nil
}

func (r *TableResetter) Strategy() string {
	return strategyRecreate
}

// Clear runs FetchSchema, DropTable, AwaitDropped and RecreateTable in order.
// There are no retries and no compensation: a failure at AwaitDropped or
// RecreateTable leaves the table absent and returns a *ResetError matching
// domain.ErrTableMissing.
func (r *TableResetter) Clear(ctx context.Context) error {
	schema, err := r.FetchSchema(ctx)
	if err != nil {
		return &ResetError{Stage: StageFetchSchema, Table: r.tableName, Err: err}
	}

	if _, err := r.api.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: aws.String(r.tableName),
	}); err != nil {
		return &ResetError{Stage: StageDropTable, Table: r.tableName, Schema: &schema, Err: err}
	}

	waiter := dynamodb.NewTableNotExistsWaiter(r.api, r.waiterOpts...)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	}, r.dropTimeout); err != nil {
		return &ResetError{Stage: StageAwaitDropped, Table: r.tableName, Schema: &schema, Err: err}
	}

	if _, err := r.api.CreateTable(ctx, createTableInput(schema)); err != nil {
		return &ResetError{Stage: StageRecreateTable, Table: r.tableName, Schema: &schema, Err: err}
	}
	return nil
}

// FetchSchema describes the table and captures what CreateTable needs.
func (r *TableResetter) FetchSchema(ctx context.Context) (domain.TableSchema, error) {
	out, err := r.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return domain.TableSchema{}, fmt.Errorf("describe table: %w", err)
	}
	if out == nil || out.Table == nil {
		return domain.TableSchema{}, errors.New("describe table: empty table description")
	}
	return schemaFromDescription(out.Table), nil
}

func schemaFromDescription(t *types.TableDescription) domain.TableSchema {
	schema := domain.TableSchema{
		TableName: aws.ToString(t.TableName),
	}
	for _, def := range t.AttributeDefinitions {
		schema.AttributeDefinitions = append(schema.AttributeDefinitions, domain.AttributeDefinition{
			Name: aws.ToString(def.AttributeName),
			Type: string(def.AttributeType),
		})
	}
	for _, key := range t.KeySchema {
		schema.KeySchema = append(schema.KeySchema, domain.KeySchemaElement{
			Name:    aws.ToString(key.AttributeName),
			KeyType: string(key.KeyType),
		})
	}
	if t.BillingModeSummary != nil && t.BillingModeSummary.BillingMode == types.BillingModePayPerRequest {
		schema.OnDemand = true
	}
	if t.ProvisionedThroughput != nil {
		schema.ReadCapacityUnits = aws.ToInt64(t.ProvisionedThroughput.ReadCapacityUnits)
		schema.WriteCapacityUnits = aws.ToInt64(t.ProvisionedThroughput.WriteCapacityUnits)
	}
	return schema
}

func createTableInput(schema domain.TableSchema) *dynamodb.CreateTableInput {
	in := &dynamodb.CreateTableInput{
		TableName: aws.String(schema.TableName),
	}
	for _, def := range schema.AttributeDefinitions {
		in.AttributeDefinitions = append(in.AttributeDefinitions, types.AttributeDefinition{
			AttributeName: aws.String(def.Name),
			AttributeType: types.ScalarAttributeType(def.Type),
		})
	}
	for _, key := range schema.KeySchema {
		in.KeySchema = append(in.KeySchema, types.KeySchemaElement{
			AttributeName: aws.String(key.Name),
			KeyType:       types.KeyType(key.KeyType),
		})
	}
	// On-demand tables report zero capacity, which CreateTable rejects.
	if schema.OnDemand {
		in.BillingMode = types.BillingModePayPerRequest
		return in
	}
	in.BillingMode = types.BillingModeProvisioned
	in.ProvisionedThroughput = &types.ProvisionedThroughput{
		ReadCapacityUnits:  aws.Int64(schema.ReadCapacityUnits),
		WriteCapacityUnits: aws.Int64(schema.WriteCapacityUnits),
	}
	return in
}
