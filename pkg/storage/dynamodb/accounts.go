package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/order-escrow/pkg/models"
	"github.com/chris/order-escrow/pkg/storage"
)

// GetMerchantAccount retrieves a merchant's balances.
func (s *Store) GetMerchantAccount(ctx context.Context, merchantID string) (*models.MerchantAccount, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"merchant_id": merchantID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal merchant ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.AccountsTableName),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get merchant account from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("account for merchant %s: %w", merchantID, storage.ErrNotFound)
	}

	var account models.MerchantAccount
	if err := attributevalue.UnmarshalMap(result.Item, &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal merchant account: %w", err)
	}

	return &account, nil
}

// ListLedgerEntries retrieves a merchant's most recent ledger entries.
func (s *Store) ListLedgerEntries(ctx context.Context, merchantID string, limit int32) ([]models.LedgerEntry, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.LedgerTableName),
		IndexName:              aws.String(ledgerGSI),
		KeyConditionExpression: aws.String("merchant_id = :merchantID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":merchantID": &types.AttributeValueMemberS{Value: merchantID},
		},
		ScanIndexForward: aws.Bool(false), // Sort by timestamp in descending order
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query for ledger entries: %w", err)
	}

	var entries []models.LedgerEntry
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger entries: %w", err)
	}

	return entries, nil
}
