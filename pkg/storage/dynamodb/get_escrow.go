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

// GetEscrow retrieves an escrow from DynamoDB by its ID.
func (s *Store) GetEscrow(ctx context.Context, escrowID string) (*models.Escrow, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": escrowID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal escrow ID: %w", err)
	}

	input := &dynamodb.GetItemInput{
		TableName:      aws.String(s.EscrowsTableName),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get escrow from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("escrow with ID %s: %w", escrowID, storage.ErrNotFound)
	}

	var item escrowItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal escrow: %w", err)
	}

	return &item.Escrow, nil
}

// GetEscrowByOrderID looks the escrow up through the order index.
func (s *Store) GetEscrowByOrderID(ctx context.Context, orderID string) (*models.Escrow, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.EscrowsTableName),
		IndexName:              aws.String(orderIDIndex),
		KeyConditionExpression: aws.String("order_id = :orderID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":orderID": &types.AttributeValueMemberS{Value: orderID},
		},
		Limit: aws.Int32(1),
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query escrow by order ID: %w", err)
	}

	if len(result.Items) == 0 {
		return nil, fmt.Errorf("escrow for order %s: %w", orderID, storage.ErrNotFound)
	}

	var item escrowItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal escrow: %w", err)
	}

	return &item.Escrow, nil
}
