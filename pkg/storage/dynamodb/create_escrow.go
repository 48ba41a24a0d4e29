package dynamodb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/order-escrow/pkg/models"
	"github.com/chris/order-escrow/pkg/storage"
)

// CreateEscrow atomically stores a new escrow and links it to its order.
func (s *Store) CreateEscrow(ctx context.Context, escrow *models.Escrow, link *storage.OrderPatch) error {
	slog.Log(ctx, slog.LevelDebug, "creating escrow", "escrow_id", escrow.Id, "order_id", escrow.OrderId)

	escrowAV, err := attributevalue.MarshalMap(toItem(escrow))
	if err != nil {
		return fmt.Errorf("failed to marshal escrow: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			// Operation 1: Create the escrow record.
			Put: &types.Put{
				TableName:           aws.String(s.EscrowsTableName),
				Item:                escrowAV,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			},
		},
	}

	if link != nil {
		update, err := s.orderPatchUpdate(link)
		if err != nil {
			return err
		}
		// Operation 2: Link the order, unless another escrow already claimed it.
		update.ConditionExpression = aws.String("attribute_not_exists(escrow_id) OR escrow_id = :empty")
		update.ExpressionAttributeValues[":empty"] = &types.AttributeValueMemberS{Value: ""}
		items = append(items, types.TransactWriteItem{Update: update})
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if conditionFailed(err) {
			return storage.ErrEscrowExists
		}
		return fmt.Errorf("failed to execute create escrow transaction: %w", err)
	}

	return nil
}
