package app

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/require"

	"shopping-list-bot/internal/config"
)

func TestNewClearer(t *testing.T) {
	api := dynamodb.New(dynamodb.Options{Region: "ap-northeast-1"})

	tests := []struct {
		strategy string
		want     string
		wantErr  bool
	}{
		{strategy: config.ClearStrategyRecreate, want: "recreate"},
		{strategy: "", want: "recreate"},
		{strategy: config.ClearStrategyScan, want: "scan"},
		{strategy: "truncate", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			cl, err := NewClearer(api, &config.Config{
				TableName:        "shopping-list",
				ClearStrategy:    tt.strategy,
				TableDropTimeout: time.Minute,
			})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, cl.Strategy())
		})
	}
}
