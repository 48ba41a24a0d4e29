package dynamodb

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/order-escrow/pkg/storage"
)

// DynamoDBAPI is the subset of the DynamoDB client the store uses.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Store implements the Storage interface using AWS DynamoDB.
type Store struct {
	Client            DynamoDBAPI
	EscrowsTableName  string
	OrdersTableName   string
	AccountsTableName string
	LedgerTableName   string
}

// New creates a new Store.
func New(client DynamoDBAPI, escrowsTable, ordersTable, accountsTable, ledgerTable string) *Store {
	return &Store{
		Client:            client,
		EscrowsTableName:  escrowsTable,
		OrdersTableName:   ordersTable,
		AccountsTableName: accountsTable,
		LedgerTableName:   ledgerTable,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

const (
	orderIDIndex     = "order_id-index"
	merchantIDIndex  = "merchant_id-index"
	dueForReleaseGSI = "status-auto_release_at-index"
	ledgerGSI        = "merchant_id-timestamp-index"
)

// sortableTime has a fixed width so index keys order lexically the same way they order in time.
const sortableTime = "2006-01-02T15:04:05.000000000Z"

func formatKeyTime(t time.Time) string {
	return t.UTC().Format(sortableTime)
}

// conditionFailed reports whether a write was rejected by one of its condition expressions.
func conditionFailed(err error) bool {
	var condCheckFailed *types.ConditionalCheckFailedException
	if errors.As(err, &condCheckFailed) {
		return true
	}
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for _, reason := range tce.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return true
			}
		}
	}
	return false
}
