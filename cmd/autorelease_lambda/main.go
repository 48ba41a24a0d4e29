package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/order-escrow/pkg/app"
	"github.com/chris/order-escrow/pkg/config"
	"github.com/chris/order-escrow/pkg/scheduler"
)

var consumer *scheduler.Consumer

func init() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize dependencies once per container.
	rt, err := app.Build(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}
	consumer = rt.Consumer()
}

// HandleRequest processes scheduled auto-release messages from SQS.
func HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) error {
	for _, message := range sqsEvent.Records {
		log.Printf("Processing message %s", message.MessageId)

		if err := consumer.Handle(ctx, message.Body); err != nil {
			log.Printf("ERROR: failed to process auto-release message %s: %v", message.MessageId, err)
			// Returning an error makes SQS redeliver the message.
			return err
		}

		log.Printf("Processed message %s", message.MessageId)
	}

	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
