package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// MaxDelay is the longest delay SQS accepts on a single message.
const MaxDelay = 15 * time.Minute

// SQSAPI is the subset of the SQS client the scheduler uses.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSScheduler implements the Scheduler interface using AWS SQS. Holding
// periods are far longer than MaxDelay, so a message that arrives early is
// put back on the queue by the consumer until it is due.
type SQSScheduler struct {
	Client   SQSAPI
	QueueURL string
	Now      func() time.Time
}

// NewSQSScheduler creates a new SQSScheduler.
func NewSQSScheduler(client SQSAPI, queueURL string) *SQSScheduler {
	return &SQSScheduler{
		Client:   client,
		QueueURL: queueURL,
		Now:      time.Now,
	}
}

// Make sure we conform to the interface
var _ Scheduler = (*SQSScheduler)(nil)

// Schedule sends the auto-release message to SQS, delayed as far as SQS allows.
func (s *SQSScheduler) Schedule(ctx context.Context, escrowID string, fireAt time.Time) error {
	body, err := json.Marshal(Message{EscrowID: escrowID, FireAt: fireAt.UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal auto-release message for SQS: %w", err)
	}

	_, err = s.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     aws.String(s.QueueURL),
		MessageBody:  aws.String(string(body)),
		DelaySeconds: delaySeconds(fireAt.Sub(s.Now())),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	return nil
}

func delaySeconds(d time.Duration) int32 {
	switch {
	case d <= 0:
		return 0
	case d > MaxDelay:
		return int32(MaxDelay / time.Second)
	}
	return int32((d + time.Second - 1) / time.Second)
}
