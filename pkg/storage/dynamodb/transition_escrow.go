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

// TransitionEscrow applies a status-guarded escrow update, together with the order patch if present.
func (s *Store) TransitionEscrow(ctx context.Context, t storage.Transition) error {
	items, err := s.transitionItems(t)
	if err != nil {
		return err
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if conditionFailed(err) {
			return storage.ErrStatusConflict
		}
		return fmt.Errorf("failed to execute escrow transition: %w", err)
	}

	t.Escrow.Version++
	return nil
}

// transitionItems builds the guarded escrow update and the optional order patch.
// The money split is never part of the update; it is fixed at creation.
func (s *Store) transitionItems(t storage.Transition) ([]types.TransactWriteItem, error) {
	e := t.Escrow

	toAV, err := attributevalue.Marshal(e.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal status: %w", err)
	}
	fromAV, err := attributevalue.Marshal(t.From)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal expected status: %w", err)
	}
	timingAV, err := attributevalue.Marshal(e.Timing)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timing: %w", err)
	}
	auditAV, err := attributevalue.Marshal(e.Audit)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit: %w", err)
	}
	nowAV, err := attributevalue.Marshal(e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp for status update: %w", err)
	}

	values := map[string]types.AttributeValue{
		":to":       toAV,
		":from":     fromAV,
		":timing":   timingAV,
		":audit":    auditAV,
		":released": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", e.ReleasedAmount)},
		":refunded": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", e.RefundedAmount)},
		":now":      nowAV,
		":version":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", e.Version)},
		":inc":      &types.AttributeValueMemberN{Value: "1"},
	}

	update := "SET #status = :to, timing = :timing, audit = :audit, released_amount = :released, refunded_amount = :refunded, updated_at = :now, version = version + :inc"
	if e.Timing.AutoReleaseAt != nil {
		update += ", auto_release_at = :auto_release_at"
		values[":auto_release_at"] = &types.AttributeValueMemberS{Value: formatKeyTime(*e.Timing.AutoReleaseAt)}
	} else {
		update += " REMOVE auto_release_at"
	}

	items := []types.TransactWriteItem{
		{
			// Operation 1: Move the escrow, guarded by its status and version.
			Update: &types.Update{
				TableName:           aws.String(s.EscrowsTableName),
				Key:                 map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: e.Id}},
				UpdateExpression:    aws.String(update),
				ConditionExpression: aws.String("#status = :from AND version = :version"),
				ExpressionAttributeNames: map[string]string{
					"#status": "status",
				},
				ExpressionAttributeValues: values,
			},
		},
	}

	if t.Order != nil {
		update, err := s.orderPatchUpdate(t.Order)
		if err != nil {
			return nil, err
		}
		// Operation 2: Patch the escrow-owned order attributes.
		items = append(items, types.TransactWriteItem{Update: update})
	}

	return items, nil
}
