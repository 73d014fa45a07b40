package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/C0de-cloud/Notes-API/store"
)

func newDynamoDBClient(ctx context.Context, devMode bool, dynamodbEndpoint string) (*dynamodb.Client, error) {
	var cfg aws.Config
	var err error

	if devMode {
		// Load config with dummy credentials and region for local/dev
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion("us-east-1"),
			config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider("dummy", "dummy", ""),
			),
		)
		if err != nil {
			return nil, err
		}

		// Override endpoint for DynamoDB locally
		return dynamodb.New(dynamodb.Options{
			Credentials:      cfg.Credentials,
			Region:           cfg.Region,
			EndpointResolver: dynamodb.EndpointResolverFromURL(dynamodbEndpoint),
		}), nil
	}

	// Production: default config (uses task role and AWS endpoints)
	cfg, err = config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	return dynamodb.NewFromConfig(cfg), nil
}

func getTables(client *dynamodb.Client, ctx context.Context) ([]string, error) {
	output, err := client.ListTables(ctx, &dynamodb.ListTablesInput{})
	if err != nil {
		return nil, err
	}

	return output.TableNames, nil
}

// getItem retrieves an item of type T from DynamoDB by PK and SK
func getItem[T any](dynamoStore *DynamoNotesStore, ctx context.Context, pk string, sk string, consistentRead bool) (T, error) {
	var zero T

	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}

	resp, err := dynamoStore.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(dynamoStore.tableName),
		Key:            key,
		ConsistentRead: aws.Bool(consistentRead),
	})
	if err != nil {
		return zero, fmt.Errorf("GetItem failed: %w", err)
	}
	if resp.Item == nil {
		return zero, store.ErrItemNotFound
	}

	var item T
	if err := attributevalue.UnmarshalMap(resp.Item, &item); err != nil {
		return zero, fmt.Errorf("failed to unmarshal item: %w", err)
	}

	return item, nil
}

// createItem inserts an item only if its PK+SK is not already taken.
// Returns store.ErrConditionFailed if the key exists.
func createItem[T any](dynamoStore *DynamoNotesStore, ctx context.Context, item T) error {
	avMap, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	if _, ok := avMap["PK"]; !ok {
		return errors.New("struct missing PK field")
	}
	if _, ok := avMap["SK"]; !ok {
		return errors.New("struct missing SK field")
	}

	_, err = dynamoStore.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(dynamoStore.tableName),
		Item:                avMap,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return store.ErrConditionFailed
		}
		return fmt.Errorf("failed to put item: %w", err)
	}

	return nil
}

// ensureItem inserts an item if its PK+SK does not exist yet.
// Returns true if the item was newly inserted, false if it already existed.
func ensureItem[T any](dynamoStore *DynamoNotesStore, ctx context.Context, item T) (bool, error) {
	err := createItem(dynamoStore, ctx, item)
	if errors.Is(err, store.ErrConditionFailed) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// putItem unconditionally upserts an item. Concurrent writers race as
// last-write-wins at the document layer.
func putItem[T any](dynamoStore *DynamoNotesStore, ctx context.Context, item T) error {
	avMap, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	_, err = dynamoStore.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(dynamoStore.tableName),
		Item:      avMap,
	})
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}

	return nil
}

// deleteItem removes an item by PK and SK. Returns true if an item was
// actually deleted, false if the key did not exist (never an error for a
// missing item, which keeps revokes idempotent).
func deleteItem(dynamoStore *DynamoNotesStore, ctx context.Context, pk string, sk string) (bool, error) {
	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}

	out, err := dynamoStore.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(dynamoStore.tableName),
		Key:          key,
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, fmt.Errorf("delete failed: %w", err)
	}

	return len(out.Attributes) > 0, nil
}

// queryAllByPK returns all items of type T with the given PK, ordered by SK.
// If skPrefix is non-empty, only items whose SK begins with it are returned.
func queryAllByPK[T any](dynamoStore *DynamoNotesStore, ctx context.Context, pk string, skPrefix string, limit int32) ([]T, error) {
	var results []T

	keyCond := "PK = :pk"
	exprAttrValues := map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: pk},
	}
	if skPrefix != "" {
		keyCond += " AND begins_with(SK, :skPrefix)"
		exprAttrValues[":skPrefix"] = &types.AttributeValueMemberS{Value: skPrefix}
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(dynamoStore.tableName),
		KeyConditionExpression:    aws.String(keyCond),
		ExpressionAttributeValues: exprAttrValues,
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	// Use pagination to retrieve all items
	// dynamodb uses limit per page, so we also need to handle limit globally
	paginator := dynamodb.NewQueryPaginator(dynamoStore.client, input)

	for paginator.HasMorePages() {
		if limit > 0 && len(results) >= int(limit) {
			break
		}

		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query failed: %w", err)
		}

		var pageItems []T
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &pageItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal page items: %w", err)
		}

		results = append(results, pageItems...)
	}

	if limit > 0 && len(results) > int(limit) {
		results = results[:limit]
	}

	return results, nil
}

// queryAllByGSI returns all items of type T whose GSI partition key field
// equals the given value.
func queryAllByGSI[T any](dynamoStore *DynamoNotesStore, ctx context.Context, indexName string, pkField string, pkValue string) ([]T, error) {
	var results []T

	input := &dynamodb.QueryInput{
		TableName:              aws.String(dynamoStore.tableName),
		IndexName:              aws.String(indexName),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": pkField,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pkValue},
		},
	}

	paginator := dynamodb.NewQueryPaginator(dynamoStore.client, input)

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query GSI failed: %w", err)
		}

		var pageItems []T
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &pageItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal page items: %w", err)
		}

		results = append(results, pageItems...)
	}

	return results, nil
}

// batchGetItems fetches items of type T for the given PK/SK pairs in chunks
// of 100 (the BatchGetItem maximum), retrying unprocessed keys.
func batchGetItems[T any](dynamoStore *DynamoNotesStore, ctx context.Context, keys []map[string]types.AttributeValue) ([]T, error) {
	var results []T

	for start := 0; start < len(keys); start += 100 {
		end := start + 100
		if end > len(keys) {
			end = len(keys)
		}

		pending := keys[start:end]
		backoff := 50 * time.Millisecond

		for len(pending) > 0 {
			resp, err := dynamoStore.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
				RequestItems: map[string]types.KeysAndAttributes{
					dynamoStore.tableName: {Keys: pending},
				},
			})
			if err != nil {
				return nil, fmt.Errorf("BatchGetItem failed: %w", err)
			}

			var chunk []T
			if err := attributevalue.UnmarshalListOfMaps(resp.Responses[dynamoStore.tableName], &chunk); err != nil {
				return nil, fmt.Errorf("failed to unmarshal batch items: %w", err)
			}
			results = append(results, chunk...)

			unprocessed, ok := resp.UnprocessedKeys[dynamoStore.tableName]
			if !ok || len(unprocessed.Keys) == 0 {
				break
			}
			pending = unprocessed.Keys

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
			if backoff < time.Second {
				backoff *= 2
			}
		}
	}

	return results, nil
}

// writeBatchRequests sends WriteRequests in a loop, retrying unprocessed
// items with exponential backoff until all are written or ctx is done.
func writeBatchRequests(dynamoStore *DynamoNotesStore, ctx context.Context, requests []types.WriteRequest) error {
	backoff := 50 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		resp, err := dynamoStore.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				dynamoStore.tableName: requests,
			},
		})
		if err != nil {
			return fmt.Errorf("BatchWriteItem failed: %w", err)
		}

		unprocessed := resp.UnprocessedItems[dynamoStore.tableName]
		if len(unprocessed) == 0 {
			return nil // all items processed successfully
		}

		// Prepare next retry set
		requests = unprocessed

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if backoff < time.Second {
			backoff *= 2
		}
	}
}

// deleteAllByPK removes every item in a partition, optionally restricted to
// an SK prefix. Deletion runs in 25-item batches.
func deleteAllByPK(dynamoStore *DynamoNotesStore, ctx context.Context, pk string, skPrefix string) error {
	keyCond := "PK = :pk"
	exprAttrValues := map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: pk},
	}
	if skPrefix != "" {
		keyCond += " AND begins_with(SK, :skPrefix)"
		exprAttrValues[":skPrefix"] = &types.AttributeValueMemberS{Value: skPrefix}
	}

	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		resp, err := dynamoStore.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(dynamoStore.tableName),
			KeyConditionExpression:    aws.String(keyCond),
			ExpressionAttributeValues: exprAttrValues,
			ProjectionExpression:      aws.String("PK, SK"),
			ExclusiveStartKey:         lastEvaluatedKey,
		})
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}

		if err := batchDeleteKeys(dynamoStore, ctx, resp.Items); err != nil {
			return err
		}

		lastEvaluatedKey = resp.LastEvaluatedKey
		if lastEvaluatedKey == nil {
			return nil
		}
	}
}

// batchDeleteByGSIThrottled queries items by GSI and deletes them in batches until none remain.
// Query pages are larger for efficiency, but deletion is done in 25-item batches with throttling.
func batchDeleteByGSIThrottled(
	dynamoStore *DynamoNotesStore,
	ctx context.Context,
	indexName string,
	gsiPKField string,
	gsiPK string,
	throttle time.Duration,
) error {
	var lastEvaluatedKey map[string]types.AttributeValue

	const queryPageSize int32 = 200

	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(dynamoStore.tableName),
			IndexName:              aws.String(indexName),
			KeyConditionExpression: aws.String("#pk = :gsiPK"),
			ExpressionAttributeNames: map[string]string{
				"#pk": gsiPKField,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":gsiPK": &types.AttributeValueMemberS{Value: gsiPK},
			},
			Limit:             aws.Int32(queryPageSize),
			ExclusiveStartKey: lastEvaluatedKey,
		}

		resp, err := dynamoStore.client.Query(ctx, input)
		if err != nil {
			return fmt.Errorf("query GSI failed: %w", err)
		}

		if len(resp.Items) == 0 {
			return nil
		}

		// Batch delete in chunks of 25 with throttling
		for i := 0; i < len(resp.Items); i += 25 {
			end := i + 25
			if end > len(resp.Items) {
				end = len(resp.Items)
			}

			startTime := time.Now()

			if err := batchDeleteKeys(dynamoStore, ctx, resp.Items[i:end]); err != nil {
				return err
			}

			// Throttle between batches
			elapsed := time.Since(startTime)
			if elapsed < throttle {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(throttle - elapsed):
				}
			}
		}

		// Prepare for next page
		lastEvaluatedKey = resp.LastEvaluatedKey
		if lastEvaluatedKey == nil {
			return nil
		}
	}
}

func batchDeleteKeys(dynamoStore *DynamoNotesStore, ctx context.Context, items []map[string]types.AttributeValue) error {
	delRequests := make([]types.WriteRequest, 0, len(items))
	for _, item := range items {
		pkAttr, okPK := item["PK"]
		skAttr, okSK := item["SK"]
		if !okPK || !okSK {
			continue
		}
		delRequests = append(delRequests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{
					"PK": pkAttr,
					"SK": skAttr,
				},
			},
		})
	}

	for i := 0; i < len(delRequests); i += 25 {
		end := i + 25
		if end > len(delRequests) {
			end = len(delRequests)
		}
		if err := writeBatchRequests(dynamoStore, ctx, delRequests[i:end]); err != nil {
			return fmt.Errorf("batch delete failed: %w", err)
		}
	}

	return nil
}

// updateItem updates an existing item in DynamoDB.
// Only fields listed in fieldsToUpdate are updated.
// Returns an error if the item does not exist.
func updateItem[T any](
	dynamoStore *DynamoNotesStore,
	ctx context.Context,
	item T,
	fieldsToUpdate []string,
) (T, error) {
	var zero T

	// Marshal the item into a DynamoDB map
	avMap, err := attributevalue.MarshalMap(item)
	if err != nil {
		return zero, fmt.Errorf("marshal error: %w", err)
	}

	// Extract PK and SK
	pkAttr, ok := avMap["PK"]
	if !ok {
		return zero, errors.New("struct missing PK field")
	}
	skAttr, ok := avMap["SK"]
	if !ok {
		return zero, errors.New("struct missing SK field")
	}

	updateExpr := "SET "
	exprAttrValues := make(map[string]types.AttributeValue)
	exprAttrNames := make(map[string]string)
	first := true

	// Add only explicitly requested fields
	for _, field := range fieldsToUpdate {
		// Never update keys
		if field == "PK" || field == "SK" {
			continue
		}

		val, ok := avMap[field]
		if !ok {
			continue // field not present on struct
		}

		if !first {
			updateExpr += ", "
		}
		first = false

		updateExpr += fmt.Sprintf("#%s = :%s", field, field)
		exprAttrNames["#"+field] = field
		exprAttrValues[":"+field] = val
	}

	if first {
		return zero, errors.New("no updatable fields given")
	}

	key := map[string]types.AttributeValue{
		"PK": pkAttr,
		"SK": skAttr,
	}

	// Perform the update with a condition that the item exists
	out, err := dynamoStore.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(dynamoStore.tableName),
		Key:                       key,
		UpdateExpression:          aws.String(updateExpr),
		ExpressionAttributeNames:  exprAttrNames,
		ExpressionAttributeValues: exprAttrValues,
		ConditionExpression:       aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return zero, store.ErrItemNotFound
		}
		return zero, fmt.Errorf("update failed: %w", err)
	}

	// Unmarshal the updated item
	var updated T
	if err := attributevalue.UnmarshalMap(out.Attributes, &updated); err != nil {
		return zero, fmt.Errorf("failed to unmarshal updated item: %w", err)
	}

	return updated, nil
}
