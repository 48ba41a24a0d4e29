package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/order-escrow/pkg/storage"
)

// ReleaseEscrow moves the escrow to RELEASED and credits the merchant in one
// TransactWriteItems call. The status guard on the escrow and the
// attribute_not_exists guard on the deterministic ledger entry both have to
// hold, so a second release can never credit twice.
func (s *Store) ReleaseEscrow(ctx context.Context, r storage.ReleaseRequest) error {
	items, err := s.transitionItems(r.Transition)
	if err != nil {
		return err
	}

	entryAV, err := attributevalue.MarshalMap(r.Credit.Entry)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger entry: %w", err)
	}
	nowAV, err := attributevalue.Marshal(r.Credit.Entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp for account update: %w", err)
	}

	items = append(items,
		types.TransactWriteItem{
			// Operation: Upsert the merchant account and add the credit.
			Update: &types.Update{
				TableName:        aws.String(s.AccountsTableName),
				Key:              map[string]types.AttributeValue{"merchant_id": &types.AttributeValueMemberS{Value: r.Credit.MerchantID}},
				UpdateExpression: aws.String("SET available_balance = if_not_exists(available_balance, :zero) + :amount, total_earnings = if_not_exists(total_earnings, :zero) + :amount, pending_charges = if_not_exists(pending_charges, :zero), total_withdrawn = if_not_exists(total_withdrawn, :zero), total_charges = if_not_exists(total_charges, :zero), updated_at = :now"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":amount": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", r.Credit.Amount)},
					":zero":   &types.AttributeValueMemberN{Value: "0"},
					":now":    nowAV,
				},
			},
		},
		types.TransactWriteItem{
			// Operation: Record the credit. The entry id is derived from the escrow id.
			Put: &types.Put{
				TableName:           aws.String(s.LedgerTableName),
				Item:                entryAV,
				ConditionExpression: aws.String("attribute_not_exists(entry_id)"),
			},
		},
	)

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if conditionFailed(err) {
			return storage.ErrStatusConflict
		}
		return fmt.Errorf("failed to execute release transaction: %w", err)
	}

	r.Escrow.Version++
	return nil
}
