package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/example/storefront/internal/email"
	"github.com/example/storefront/internal/infrastructure/dynamostream"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/notification"
)

var notifyHandler *notification.Handler

func init() {
	smtpHost := getEnv("SMTP_HOST", "localhost")
	smtpPort := getEnv("SMTP_PORT", "1025")
	smtpFrom := getEnv("SMTP_FROM", "alerts@storefront.local")

	var recipients []string
	for _, part := range strings.Split(os.Getenv("ALERT_RECIPIENTS"), ",") {
		if part = strings.TrimSpace(part); part != "" {
			recipients = append(recipients, part)
		}
	}

	sender := email.NewService(smtpHost, smtpPort, smtpFrom)
	notifyHandler = notification.NewHandler(sender, recipients)

	log.Printf("[Lambda Notifier] Initialized, recipients: %v", recipients)
}

func handler(ctx context.Context, kinesisEvent events.KinesisEvent) (events.KinesisEventResponse, error) {
	log.Printf("[Lambda Notifier] Received %d records", len(kinesisEvent.Records))

	var batchItemFailures []events.KinesisBatchItemFailure

	for _, record := range kinesisEvent.Records {
		change, err := dynamostream.ConvertFromKinesisRecord(record)
		if err != nil {
			log.Printf("[Lambda Notifier] Failed to convert record %s: %v", record.EventID, err)
			batchItemFailures = append(batchItemFailures, events.KinesisBatchItemFailure{
				ItemIdentifier: record.Kinesis.SequenceNumber,
			})
			continue
		}

		// Only newly created notifications trigger email.
		if change.Collection != store.CollectionNotifications || change.EventName != "INSERT" {
			continue
		}

		var n notification.Notification
		if ok, err := change.DecodeNew(&n); err != nil || !ok {
			log.Printf("[Lambda Notifier] Bad notification image for %s: %v", change.ID, err)
			continue
		}

		if err := notifyHandler.Handle(ctx, &n); err != nil {
			log.Printf("[Lambda Notifier] Failed to handle notification %s: %v", change.ID, err)
			batchItemFailures = append(batchItemFailures, events.KinesisBatchItemFailure{
				ItemIdentifier: record.Kinesis.SequenceNumber,
			})
		}
	}

	successCount := len(kinesisEvent.Records) - len(batchItemFailures)
	log.Printf("[Lambda Notifier] Processed %d/%d records successfully", successCount, len(kinesisEvent.Records))

	return events.KinesisEventResponse{BatchItemFailures: batchItemFailures}, nil
}

func main() {
	lambda.Start(handler)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
