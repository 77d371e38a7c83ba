package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"shopping-list-bot/internal/domain"
)

func mustNewResetter(t *testing.T, db *fakeDynamo, timeout time.Duration) *TableResetter {
	t.Helper()
	r, err := NewTableResetter(db, "test-table", timeout)
	require.NoError(t, err)
	return r
}

func TestNewTableResetter_Validates(t *testing.T) {
	_, err := NewTableResetter(nil, "test-table", time.Second)
	require.Error(t, err)

	_, err = NewTableResetter(newFakeDynamo(), "", time.Second)
	require.Error(t, err)

	r, err := NewTableResetter(newFakeDynamo(), "test-table", 0)
	require.NoError(t, err)
	require.Equal(t, DefaultDropTimeout, r.dropTimeout)
}

func TestClear_RecreatesIdenticalTableWithZeroRows(t *testing.T) {
	db := newFakeDynamo("milk", "eggs", "bread")
	before := db.desc
	r := mustNewResetter(t, db, time.Minute)

	require.NoError(t, r.Clear(context.Background()))
	require.Equal(t, []string{"DescribeTable", "DeleteTable", "DescribeTable", "CreateTable"}, db.calls)

	require.True(t, db.exists)
	require.Empty(t, db.rows)
	require.Equal(t, before.TableName, db.desc.TableName)
	require.Equal(t, before.AttributeDefinitions, db.desc.AttributeDefinitions)
	require.Equal(t, before.KeySchema, db.desc.KeySchema)
	require.Equal(t, int64(5), aws.ToInt64(db.desc.ProvisionedThroughput.ReadCapacityUnits))
	require.Equal(t, int64(3), aws.ToInt64(db.desc.ProvisionedThroughput.WriteCapacityUnits))
	require.Equal(t, types.BillingModeProvisioned, db.lastCreateInput.BillingMode)
}

func TestClear_OnDemandTableRecreatedOnDemand(t *testing.T) {
	db := newFakeDynamo("milk")
	db.desc = provisionedDescription("test-table", 0, 0)
	db.desc.BillingModeSummary = &types.BillingModeSummary{BillingMode: types.BillingModePayPerRequest}
	r := mustNewResetter(t, db, time.Minute)

	require.NoError(t, r.Clear(context.Background()))
	require.Equal(t, types.BillingModePayPerRequest, db.lastCreateInput.BillingMode)
	require.Nil(t, db.lastCreateInput.ProvisionedThroughput)
}

func TestClear_FetchSchemaFailureLeavesTableIntact(t *testing.T) {
	db := newFakeDynamo("milk")
	db.describeErr = errors.New("AccessDeniedException")
	r := mustNewResetter(t, db, time.Minute)

	err := r.Clear(context.Background())
	var resetErr *ResetError
	require.ErrorAs(t, err, &resetErr)
	require.Equal(t, StageFetchSchema, resetErr.Stage)
	require.False(t, resetErr.TableMissing())
	require.NotErrorIs(t, err, domain.ErrTableMissing)
	require.True(t, db.exists)
	require.Equal(t, []string{"milk"}, db.rows)
}

func TestClear_DropFailureLeavesTableIntact(t *testing.T) {
	db := newFakeDynamo("milk")
	db.dropErr = errors.New("ResourceInUseException")
	r := mustNewResetter(t, db, time.Minute)

	err := r.Clear(context.Background())
	var resetErr *ResetError
	require.ErrorAs(t, err, &resetErr)
	require.Equal(t, StageDropTable, resetErr.Stage)
	require.NotNil(t, resetErr.Schema)
	require.NotErrorIs(t, err, domain.ErrTableMissing)
	require.True(t, db.exists)
}

func TestClear_RecreateFailureIsDetectableAsTableMissing(t *testing.T) {
	db := newFakeDynamo("milk")
	db.createErr = errors.New("LimitExceededException")
	r := mustNewResetter(t, db, time.Minute)

	err := r.Clear(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrTableMissing)

	var resetErr *ResetError
	require.ErrorAs(t, err, &resetErr)
	require.Equal(t, StageRecreateTable, resetErr.Stage)
	require.True(t, resetErr.TableMissing())
	require.Equal(t, "test-table", resetErr.Schema.TableName)
	require.Contains(t, err.Error(), "LimitExceededException")

	// The documented end state: the table is gone and nothing recreated it.
	require.False(t, db.exists)
	_, err = r.FetchSchema(context.Background())
	var notFound *types.ResourceNotFoundException
	require.ErrorAs(t, err, &notFound)
}

func TestClear_AwaitDroppedTimesOut(t *testing.T) {
	db := newFakeDynamo("milk")
	db.keepDescribing = true
	r := mustNewResetter(t, db, 10*time.Millisecond)

	err := r.Clear(context.Background())
	var resetErr *ResetError
	require.ErrorAs(t, err, &resetErr)
	require.Equal(t, StageAwaitDropped, resetErr.Stage)
	require.ErrorIs(t, err, domain.ErrTableMissing)
	require.NotContains(t, db.calls, "CreateTable")
}

func TestFetchSchema_CapturesDescription(t *testing.T) {
	db := newFakeDynamo()
	r := mustNewResetter(t, db, time.Minute)

	schema, err := r.FetchSchema(context.Background())
	require.NoError(t, err)
	require.Equal(t, "test-table", schema.TableName)
	require.Len(t, schema.AttributeDefinitions, 1)
	require.Equal(t, "item", schema.AttributeDefinitions[0].Name)
	require.Equal(t, "S", schema.AttributeDefinitions[0].Type)
	require.Equal(t, "HASH", schema.KeySchema[0].KeyType)
	require.False(t, schema.OnDemand)
	require.Equal(t, int64(5), schema.ReadCapacityUnits)
	require.Equal(t, int64(3), schema.WriteCapacityUnits)
}

func TestResetError_Message(t *testing.T) {
	err := &ResetError{Stage: StageDropTable, Table: "t", Err: errors.New("boom")}
	require.Equal(t, `repository: reset table "t" failed at drop_table: boom`, err.Error())
	require.ErrorContains(t, errors.Unwrap(err), "boom")
}
