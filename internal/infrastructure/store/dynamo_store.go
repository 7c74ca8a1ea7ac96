package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// TransactWriteItems accepts at most 100 items per request.
const maxTransactItems = 100

// DynamoStore implements DocumentStore on a single DynamoDB table with
// collection as partition key and id as sort key. Mutations on the orders
// collection are streamed to the Lambda triggers via DynamoDB Streams.
type DynamoStore struct {
	client    *dynamodb.Client
	tableName string
}

// dynamoDocument is the DynamoDB item structure.
type dynamoDocument struct {
	Collection string `dynamodbav:"collection"`
	ID         string `dynamodbav:"id"`
	Data       string `dynamodbav:"data"`
	UpdatedAt  string `dynamodbav:"updated_at"`
}

func NewDynamoStore(client *dynamodb.Client, tableName string) *DynamoStore {
	return &DynamoStore{client: client, tableName: tableName}
}

func (s *DynamoStore) Get(ctx context.Context, collection, id string, out any) (bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       documentKey(collection, id),
	})
	if err != nil {
		return false, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}
	if result.Item == nil {
		return false, nil
	}

	var doc dynamoDocument
	if err := attributevalue.UnmarshalMap(result.Item, &doc); err != nil {
		return false, fmt.Errorf("failed to unmarshal document %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal([]byte(doc.Data), out); err != nil {
		return false, fmt.Errorf("failed to decode document %s/%s: %w", collection, id, err)
	}
	return true, nil
}

func (s *DynamoStore) Put(ctx context.Context, collection, id string, doc any) error {
	item, err := marshalDocument(collection, id, doc)
	if err != nil {
		return err
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *DynamoStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       documentKey(collection, id),
	})
	if err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *DynamoStore) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	var docs []json.RawMessage
	var startKey map[string]types.AttributeValue

	for {
		result, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("#c = :c"),
			ExpressionAttributeNames: map[string]string{
				"#c": "collection",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":c": &types.AttributeValueMemberS{Value: collection},
			},
			ScanIndexForward:  aws.Bool(true), // ascending by id
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list collection %s: %w", collection, err)
		}

		for _, item := range result.Items {
			var doc dynamoDocument
			if err := attributevalue.UnmarshalMap(item, &doc); err != nil {
				continue
			}
			docs = append(docs, json.RawMessage(doc.Data))
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	return docs, nil
}

func (s *DynamoStore) NewBatch() WriteBatch {
	return &dynamoBatch{store: s}
}

func documentKey(collection, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"collection": &types.AttributeValueMemberS{Value: collection},
		"id":         &types.AttributeValueMemberS{Value: id},
	}
}

func marshalDocument(collection, id string, doc any) (map[string]types.AttributeValue, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document %s/%s: %w", collection, id, err)
	}
	item, err := attributevalue.MarshalMap(dynamoDocument{
		Collection: collection,
		ID:         id,
		Data:       string(raw),
		UpdatedAt:  time.Now().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document %s/%s: %w", collection, id, err)
	}
	return item, nil
}

type dynamoBatch struct {
	store *DynamoStore
	items []types.TransactWriteItem
	errs  []error
}

func (b *dynamoBatch) Put(collection, id string, doc any) {
	item, err := marshalDocument(collection, id, doc)
	if err != nil {
		b.errs = append(b.errs, err)
		return
	}
	b.items = append(b.items, types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(b.store.tableName),
			Item:      item,
		},
	})
}

func (b *dynamoBatch) Delete(collection, id string) {
	b.items = append(b.items, types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(b.store.tableName),
			Key:       documentKey(collection, id),
		},
	})
}

func (b *dynamoBatch) Size() int {
	return len(b.items) + len(b.errs)
}

// Commit writes all items in one TransactWriteItems call, which DynamoDB
// applies atomically.
func (b *dynamoBatch) Commit(ctx context.Context) error {
	if len(b.errs) > 0 {
		return b.errs[0]
	}
	if len(b.items) == 0 {
		return nil
	}
	if len(b.items) > maxTransactItems {
		return fmt.Errorf("batch of %d writes exceeds the transaction limit of %d", len(b.items), maxTransactItems)
	}

	_, err := b.store.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: b.items,
	})
	if err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}
