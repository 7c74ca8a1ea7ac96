package dynamostream

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
)

// Change is one document mutation from the store's DynamoDB stream.
// DynamoDB Kinesis integration delivers records in DynamoDB Streams format.
type Change struct {
	Collection string
	ID         string
	EventName  string // INSERT, MODIFY or REMOVE
	Old        json.RawMessage
	New        json.RawMessage
}

// DecodeOld unmarshals the pre-change document. Returns false when the
// record has no old image (INSERT).
func (c *Change) DecodeOld(out any) (bool, error) {
	if len(c.Old) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(c.Old, out); err != nil {
		return false, fmt.Errorf("failed to decode old image of %s/%s: %w", c.Collection, c.ID, err)
	}
	return true, nil
}

// DecodeNew unmarshals the post-change document. Returns false when the
// record has no new image (REMOVE).
func (c *Change) DecodeNew(out any) (bool, error) {
	if len(c.New) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(c.New, out); err != nil {
		return false, fmt.Errorf("failed to decode new image of %s/%s: %w", c.Collection, c.ID, err)
	}
	return true, nil
}

// ConvertFromKinesisRecord converts a Kinesis record carrying a DynamoDB
// Streams payload into a Change.
func ConvertFromKinesisRecord(record events.KinesisEventRecord) (*Change, error) {
	var streamRecord events.DynamoDBEventRecord
	if err := json.Unmarshal(record.Kinesis.Data, &streamRecord); err != nil {
		return nil, fmt.Errorf("failed to unmarshal DynamoDB stream record: %w", err)
	}
	return ConvertFromStreamRecord(streamRecord)
}

// ConvertFromStreamRecord converts a DynamoDB Streams record into a Change.
func ConvertFromStreamRecord(record events.DynamoDBEventRecord) (*Change, error) {
	keys := record.Change.Keys
	if keys == nil {
		keys = record.Change.NewImage
	}
	if keys == nil {
		keys = record.Change.OldImage
	}
	if keys == nil {
		return nil, fmt.Errorf("stream record has no keys or images")
	}

	change := &Change{
		EventName: record.EventName,
		Old:       imageData(record.Change.OldImage),
		New:       imageData(record.Change.NewImage),
	}
	if v, ok := keys["collection"]; ok {
		change.Collection = v.String()
	}
	if v, ok := keys["id"]; ok {
		change.ID = v.String()
	}
	if change.Collection == "" || change.ID == "" {
		return nil, fmt.Errorf("stream record missing collection/id: collection=%q id=%q", change.Collection, change.ID)
	}
	return change, nil
}

// imageData extracts the serialized document from an item image. Documents
// are stored as a JSON string in the data attribute.
func imageData(image map[string]events.DynamoDBAttributeValue) json.RawMessage {
	if image == nil {
		return nil
	}
	v, ok := image["data"]
	if !ok {
		return nil
	}
	return json.RawMessage(v.String())
}
