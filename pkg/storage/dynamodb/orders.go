package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/order-escrow/pkg/models"
	"github.com/chris/order-escrow/pkg/storage"
)

// GetOrder retrieves an order from DynamoDB by its ID.
func (s *Store) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": orderID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.OrdersTableName),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get order from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("order with ID %s: %w", orderID, storage.ErrNotFound)
	}

	var order models.Order
	if err := attributevalue.UnmarshalMap(result.Item, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order: %w", err)
	}

	return &order, nil
}

// SaveOrder creates or replaces an order record.
func (s *Store) SaveOrder(ctx context.Context, order *models.Order) error {
	orderAV, err := attributevalue.MarshalMap(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.OrdersTableName),
		Item:      orderAV,
	})
	if err != nil {
		return fmt.Errorf("failed to save order in DynamoDB: %w", err)
	}

	return nil
}

// orderPatchUpdate builds an Update that sets only the patched order attributes.
// Attributes the order service owns are never part of the expression.
func (s *Store) orderPatchUpdate(p *storage.OrderPatch) (*types.Update, error) {
	cols := p.Columns()
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names))
	values := make(map[string]types.AttributeValue, len(names))
	for _, name := range names {
		av, err := attributevalue.Marshal(cols[name])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal order attribute %s: %w", name, err)
		}
		sets = append(sets, name+" = :"+name)
		values[":"+name] = av
	}

	return &types.Update{
		TableName:                 aws.String(s.OrdersTableName),
		Key:                       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: p.OrderID}},
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ExpressionAttributeValues: values,
	}, nil
}
