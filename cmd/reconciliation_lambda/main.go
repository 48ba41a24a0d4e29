package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/order-escrow/pkg/app"
	"github.com/chris/order-escrow/pkg/config"
	"github.com/chris/order-escrow/pkg/scheduler"
)

var sweeper *scheduler.Sweeper

func init() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	rt, err := app.Build(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}
	sweeper = rt.Sweeper()
}

// HandleRequest is triggered by an EventBridge Schedule. It releases escrows
// whose auto-release is due but whose scheduled message never fired.
func HandleRequest(ctx context.Context) error {
	log.Println("Starting recovery sweep for overdue auto-releases...")

	result, err := sweeper.Sweep(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("ERROR: recovery sweep failed: %v", err)
		return err
	}

	if result.Found == 0 {
		log.Println("No overdue escrows found.")
		return nil
	}

	log.Printf("Recovery sweep finished: found=%d released=%d skipped=%d failed=%d", result.Found, result.Released, result.Skipped, result.Failed)
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
