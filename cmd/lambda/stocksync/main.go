package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/example/storefront/internal/infrastructure/dynamostream"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/notification"
	"github.com/example/storefront/internal/order"
	"github.com/example/storefront/internal/reconcile"
	"github.com/example/storefront/internal/stock"
)

var syncHandler *reconcile.Handler

func init() {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatalf("[Lambda StockSync] Failed to load AWS config: %v", err)
	}

	tableName := os.Getenv("DYNAMO_TABLE")
	if tableName == "" {
		tableName = "storefront-documents"
	}

	ds := store.NewDynamoStore(dynamodb.NewFromConfig(cfg), tableName)
	notificationSvc := notification.NewService(ds, nil)
	ledger := stock.NewLedger(ds, notificationSvc)
	syncHandler = reconcile.NewHandler(ledger)

	log.Println("[Lambda StockSync] Initialized successfully")
}

func handler(ctx context.Context, kinesisEvent events.KinesisEvent) (events.KinesisEventResponse, error) {
	log.Printf("[Lambda StockSync] Received %d records", len(kinesisEvent.Records))

	var batchItemFailures []events.KinesisBatchItemFailure

	for _, record := range kinesisEvent.Records {
		change, err := dynamostream.ConvertFromKinesisRecord(record)
		if err != nil {
			log.Printf("[Lambda StockSync] Failed to convert record %s: %v", record.EventID, err)
			batchItemFailures = append(batchItemFailures, events.KinesisBatchItemFailure{
				ItemIdentifier: record.Kinesis.SequenceNumber,
			})
			continue
		}

		if change.Collection != store.CollectionOrders {
			continue
		}

		var oldOrder, newOrder *order.Order
		var o order.Order
		if ok, err := change.DecodeOld(&o); err != nil {
			log.Printf("[Lambda StockSync] Bad old image for %s: %v", change.ID, err)
		} else if ok {
			old := o
			oldOrder = &old
		}
		o = order.Order{}
		if ok, err := change.DecodeNew(&o); err != nil {
			log.Printf("[Lambda StockSync] Bad new image for %s: %v", change.ID, err)
		} else if ok {
			newOrder = &o
		}

		if err := syncHandler.HandleChange(ctx, oldOrder, newOrder); err != nil {
			log.Printf("[Lambda StockSync] Failed to reconcile order %s: %v", change.ID, err)
			batchItemFailures = append(batchItemFailures, events.KinesisBatchItemFailure{
				ItemIdentifier: record.Kinesis.SequenceNumber,
			})
		}
	}

	successCount := len(kinesisEvent.Records) - len(batchItemFailures)
	log.Printf("[Lambda StockSync] Processed %d/%d records successfully", successCount, len(kinesisEvent.Records))

	return events.KinesisEventResponse{BatchItemFailures: batchItemFailures}, nil
}

func main() {
	lambda.Start(handler)
}
