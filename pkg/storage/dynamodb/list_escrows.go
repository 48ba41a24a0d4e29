package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/order-escrow/pkg/models"
	"github.com/chris/order-escrow/pkg/storage"
)

// ListEscrows returns one page of matching escrows, newest first. Merchant
// listings use the merchant index; anything else falls back to a scan.
func (s *Store) ListEscrows(ctx context.Context, q storage.ListEscrowsQuery) ([]models.Escrow, int, error) {
	var filters []string
	names := map[string]string{}
	values := map[string]types.AttributeValue{}

	if q.Status != "" {
		filters = append(filters, "#status = :status")
		names["#status"] = "status"
		values[":status"] = &types.AttributeValueMemberS{Value: string(q.Status)}
	}
	if q.PaymentMethod != "" {
		filters = append(filters, "payment_method = :method")
		values[":method"] = &types.AttributeValueMemberS{Value: string(q.PaymentMethod)}
	}

	var filter *string
	if len(filters) > 0 {
		filter = aws.String(strings.Join(filters, " AND "))
	}
	if len(names) == 0 {
		names = nil
	}

	var items []escrowItem
	var startKey map[string]types.AttributeValue
	for {
		var page []map[string]types.AttributeValue
		var err error
		if q.MerchantID != "" {
			values[":merchantID"] = &types.AttributeValueMemberS{Value: q.MerchantID}
			var out *dynamodb.QueryOutput
			out, err = s.Client.Query(ctx, &dynamodb.QueryInput{
				TableName:                 aws.String(s.EscrowsTableName),
				IndexName:                 aws.String(merchantIDIndex),
				KeyConditionExpression:    aws.String("merchant_id = :merchantID"),
				FilterExpression:          filter,
				ExpressionAttributeNames:  names,
				ExpressionAttributeValues: values,
				ExclusiveStartKey:         startKey,
			})
			if out != nil {
				page, startKey = out.Items, out.LastEvaluatedKey
			}
		} else {
			scanValues := values
			if len(scanValues) == 0 {
				scanValues = nil
			}
			var out *dynamodb.ScanOutput
			out, err = s.Client.Scan(ctx, &dynamodb.ScanInput{
				TableName:                 aws.String(s.EscrowsTableName),
				FilterExpression:          filter,
				ExpressionAttributeNames:  names,
				ExpressionAttributeValues: scanValues,
				ExclusiveStartKey:         startKey,
			})
			if out != nil {
				page, startKey = out.Items, out.LastEvaluatedKey
			}
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to list escrows: %w", err)
		}

		var batch []escrowItem
		if err := attributevalue.UnmarshalListOfMaps(page, &batch); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal escrows: %w", err)
		}
		items = append(items, batch...)

		if len(startKey) == 0 {
			break
		}
	}

	escrows := fromItems(items)
	sort.Slice(escrows, func(i, j int) bool {
		if escrows[i].CreatedAt.Equal(escrows[j].CreatedAt) {
			return escrows[i].Id < escrows[j].Id
		}
		return escrows[i].CreatedAt.After(escrows[j].CreatedAt)
	})

	total := len(escrows)
	if q.Offset >= total {
		return []models.Escrow{}, total, nil
	}
	end := total
	if q.Limit > 0 && q.Offset+q.Limit < total {
		end = q.Offset + q.Limit
	}
	return escrows[q.Offset:end], total, nil
}

// ListDueForAutoRelease queries RELEASE_REQUESTED escrows whose auto-release time has passed.
func (s *Store) ListDueForAutoRelease(ctx context.Context, now time.Time, limit int32) ([]models.Escrow, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.EscrowsTableName),
		IndexName:              aws.String(dueForReleaseGSI),
		KeyConditionExpression: aws.String("#status = :status AND auto_release_at <= :now"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(models.RELEASE_REQUESTED)},
			":now":    &types.AttributeValueMemberS{Value: formatKeyTime(now)},
		},
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query for escrows due for release: %w", err)
	}

	var items []escrowItem
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal escrows due for release: %w", err)
	}

	return fromItems(items), nil
}
