package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/order-escrow/pkg/ledger"
	"github.com/chris/order-escrow/pkg/models"
	"github.com/chris/order-escrow/pkg/storage"
	"github.com/chris/order-escrow/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func releaseRequest(t *testing.T) storage.ReleaseRequest {
	t.Helper()
	escrow := testEscrow()
	escrow.Status = models.RELEASED
	escrow.Version = 3
	escrow.ReleasedAmount = 470
	credit, err := ledger.NewCredit("m1", "e1", 470, time.Date(2026, 2, 5, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return storage.ReleaseRequest{
		Transition: storage.Transition{From: models.RELEASE_REQUESTED, Escrow: escrow},
		Credit:     credit,
	}
}

func TestReleaseEscrow(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, EscrowsTableName: "escrows", AccountsTableName: "accounts", LedgerTableName: "ledger"}
		req := releaseRequest(t)

		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			if len(in.TransactItems) != 3 {
				return false
			}
			account := in.TransactItems[1].Update
			entry := in.TransactItems[2].Put
			entryID := entry.Item["entry_id"].(*types.AttributeValueMemberS)
			amount := account.ExpressionAttributeValues[":amount"].(*types.AttributeValueMemberN)
			return *account.TableName == "accounts" && amount.Value == "470" &&
				*entry.TableName == "ledger" && entryID.Value == "credit#e1" &&
				*entry.ConditionExpression == "attribute_not_exists(entry_id)"
		})).Once().Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		err := store.ReleaseEscrow(context.Background(), req)

		assert.NoError(t, err)
		assert.Equal(t, int64(4), req.Escrow.Version)
		mockClient.AssertExpectations(t)
	})

	t.Run("Already Credited", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, EscrowsTableName: "escrows", AccountsTableName: "accounts", LedgerTableName: "ledger"}

		reasons := []types.CancellationReason{{Code: aws.String("None")}, {Code: aws.String("None")}, {Code: aws.String("ConditionalCheckFailed")}}
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{CancellationReasons: reasons})

		err := store.ReleaseEscrow(context.Background(), releaseRequest(t))

		assert.ErrorIs(t, err, storage.ErrStatusConflict)
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, EscrowsTableName: "escrows", AccountsTableName: "accounts", LedgerTableName: "ledger"}

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, errors.New("internal server error"))

		err := store.ReleaseEscrow(context.Background(), releaseRequest(t))

		assert.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrStatusConflict)
		assert.Contains(t, err.Error(), "failed to execute release transaction")
		mockClient.AssertExpectations(t)
	})
}
