// Package dynamodb implements the document store collaborator on
// DynamoDB: one table per resource type, documents keyed by ID.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"promptbay-backend/domain/catalog"
	apperrors "promptbay-backend/pkg/errors"
)

const (
	// scanRetries bounds the retry of a failed full-collection scan
	// before the failure propagates to the snapshot cache.
	scanRetries = 3

	// txAttempts bounds the optimistic read-modify-write loop.
	txAttempts = 3
	txBaseWait = 100 * time.Millisecond
)

// DocumentStore implements ports.DocumentStore for one resource table.
type DocumentStore struct {
	client *dynamodb.Client
	table  string
	logger *zap.Logger
}

// NewDocumentStore creates a document store backed by one table.
func NewDocumentStore(client *dynamodb.Client, table string, logger *zap.Logger) *DocumentStore {
	return &DocumentStore{client: client, table: table, logger: logger}
}

// documentItem is the DynamoDB item shape. Timestamps are stored as
// RFC3339 strings; an unparseable or missing CreatedAt simply maps to
// the zero time, which the query engine treats as "sorts equal".
type documentItem struct {
	ID          string   `dynamodbav:"ID"`
	Title       string   `dynamodbav:"Title"`
	Description string   `dynamodbav:"Description"`
	Content     string   `dynamodbav:"Content"`
	Category    string   `dynamodbav:"Category"`
	Tags        []string `dynamodbav:"Tags,omitempty"`
	Keywords    []string `dynamodbav:"Keywords,omitempty"`
	CreatedBy   string   `dynamodbav:"CreatedBy"`
	IsFeatured  bool     `dynamodbav:"IsFeatured"`
	Likes       []string `dynamodbav:"Likes,omitempty"`
	LikeCount   int      `dynamodbav:"LikeCount"`
	ViewCount   int      `dynamodbav:"ViewCount"`
	Version     int      `dynamodbav:"Version"`
	CreatedAt   string   `dynamodbav:"CreatedAt"`
	UpdatedAt   string   `dynamodbav:"UpdatedAt"`
}

func toItem(doc *catalog.Document) documentItem {
	return documentItem{
		ID:          doc.ID,
		Title:       doc.Title,
		Description: doc.Description,
		Content:     doc.Content,
		Category:    doc.Category,
		Tags:        doc.Tags,
		Keywords:    doc.Keywords,
		CreatedBy:   doc.CreatedBy,
		IsFeatured:  doc.IsFeatured,
		Likes:       doc.Likes,
		LikeCount:   doc.LikeCount,
		ViewCount:   doc.ViewCount,
		Version:     doc.Version,
		CreatedAt:   doc.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   doc.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (it documentItem) toDocument() catalog.Document {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	return catalog.Document{
		ID:          it.ID,
		Title:       it.Title,
		Description: it.Description,
		Content:     it.Content,
		Category:    it.Category,
		Tags:        it.Tags,
		Keywords:    it.Keywords,
		CreatedBy:   it.CreatedBy,
		IsFeatured:  it.IsFeatured,
		Likes:       it.Likes,
		LikeCount:   it.LikeCount,
		ViewCount:   it.ViewCount,
		Version:     it.Version,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// ScanAll reads the entire table, newest first. DynamoDB scans return
// items unordered, so the ordering contract is satisfied here. The
// scan is retried a bounded number of times on transient failures.
func (s *DocumentStore) ScanAll(ctx context.Context) ([]catalog.Document, error) {
	var docs []catalog.Document

	err := retry.Do(
		func() error {
			collected, err := s.scanOnce(ctx)
			if err != nil {
				return err
			}
			docs = collected
			return nil
		},
		retry.Attempts(scanRetries),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("collection scan retry",
				zap.String("table", s.table),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		return nil, apperrors.NewUnavailableError("document store", err)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

func (s *DocumentStore) scanOnce(ctx context.Context) ([]catalog.Document, error) {
	var docs []catalog.Document
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table, err)
		}
		for _, raw := range page.Items {
			var it documentItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, fmt.Errorf("unmarshal item: %w", err)
			}
			docs = append(docs, it.toDocument())
		}
	}
	return docs, nil
}

// GetByID returns a single document or a NOT_FOUND error.
func (s *DocumentStore) GetByID(ctx context.Context, id string) (*catalog.Document, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       idKey(id),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("get", err)
	}
	if out.Item == nil {
		return nil, apperrors.NewNotFoundError("document")
	}

	var it documentItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, apperrors.NewDatabaseError("get", err)
	}
	doc := it.toDocument()
	return &doc, nil
}

// Add persists a new document, assigning its ID, timestamps and
// initial version.
func (s *DocumentStore) Add(ctx context.Context, doc catalog.Document) (string, error) {
	doc.ID = uuid.New().String()
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	doc.Version = 1

	item, err := attributevalue.MarshalMap(toItem(&doc))
	if err != nil {
		return "", apperrors.NewDatabaseError("add", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(ID)"),
	})
	if err != nil {
		return "", apperrors.NewDatabaseError("add", err)
	}
	return doc.ID, nil
}

// Update applies a partial update and returns the resulting document.
func (s *DocumentStore) Update(ctx context.Context, id string, patch catalog.DocumentPatch) (*catalog.Document, error) {
	update := expression.Set(
		expression.Name("UpdatedAt"),
		expression.Value(time.Now().UTC().Format(time.RFC3339Nano)),
	)
	if patch.Title != nil {
		update = update.Set(expression.Name("Title"), expression.Value(*patch.Title))
	}
	if patch.Description != nil {
		update = update.Set(expression.Name("Description"), expression.Value(*patch.Description))
	}
	if patch.Content != nil {
		update = update.Set(expression.Name("Content"), expression.Value(*patch.Content))
	}
	if patch.Category != nil {
		update = update.Set(expression.Name("Category"), expression.Value(*patch.Category))
	}
	if patch.Tags != nil {
		update = update.Set(expression.Name("Tags"), expression.Value(*patch.Tags))
	}
	if patch.Keywords != nil {
		update = update.Set(expression.Name("Keywords"), expression.Value(*patch.Keywords))
	}
	if patch.IsFeatured != nil {
		update = update.Set(expression.Name("IsFeatured"), expression.Value(*patch.IsFeatured))
	}

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("ID"))).
		Build()
	if err != nil {
		return nil, apperrors.NewDatabaseError("update", err)
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       idKey(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailure(err) {
			return nil, apperrors.NewNotFoundError("document")
		}
		return nil, apperrors.NewDatabaseError("update", err)
	}

	var it documentItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return nil, apperrors.NewDatabaseError("update", err)
	}
	doc := it.toDocument()
	return &doc, nil
}

// Delete removes the document; deleting a missing document is a
// NOT_FOUND error.
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.table),
		Key:                 idKey(id),
		ConditionExpression: aws.String("attribute_exists(ID)"),
	})
	if err != nil {
		if isConditionFailure(err) {
			return apperrors.NewNotFoundError("document")
		}
		return apperrors.NewDatabaseError("delete", err)
	}
	return nil
}

// IncrementField atomically adds delta to a numeric attribute. The
// arithmetic happens in DynamoDB, never on a copy in memory.
func (s *DocumentStore) IncrementField(ctx context.Context, id string, field string, delta int) error {
	expr, err := expression.NewBuilder().
		WithUpdate(expression.Add(expression.Name(field), expression.Value(delta))).
		WithCondition(expression.AttributeExists(expression.Name("ID"))).
		Build()
	if err != nil {
		return apperrors.NewDatabaseError("increment", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       idKey(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionFailure(err) {
			return apperrors.NewNotFoundError("document")
		}
		return apperrors.NewDatabaseError("increment", err)
	}
	return nil
}

// RunTransaction performs an optimistic read-modify-write: read the
// current item, apply fn, and write back conditioned on the version
// not having moved. Version conflicts retry with backoff.
func (s *DocumentStore) RunTransaction(ctx context.Context, id string, fn func(*catalog.Document) error) (*catalog.Document, error) {
	for attempt := 0; attempt < txAttempts; attempt++ {
		doc, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := fn(doc); err != nil {
			return nil, err
		}

		previous := doc.Version
		doc.Version = previous + 1
		doc.UpdatedAt = time.Now().UTC()

		item, err := attributevalue.MarshalMap(toItem(doc))
		if err != nil {
			return nil, apperrors.NewDatabaseError("transaction", err)
		}

		expr, err := expression.NewBuilder().
			WithCondition(expression.Equal(expression.Name("Version"), expression.Value(previous))).
			Build()
		if err != nil {
			return nil, apperrors.NewDatabaseError("transaction", err)
		}

		_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                 aws.String(s.table),
			Item:                      item,
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})
		if err == nil {
			return doc, nil
		}
		if !isConditionFailure(err) {
			return nil, apperrors.NewDatabaseError("transaction", err)
		}

		s.logger.Debug("optimistic write conflict, retrying",
			zap.String("table", s.table),
			zap.String("id", id),
			zap.Int("attempt", attempt+1),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(txBaseWait << attempt):
		}
	}
	return nil, apperrors.NewConflictError("document modified concurrently, retries exhausted")
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"ID": &types.AttributeValueMemberS{Value: id},
	}
}

func isConditionFailure(err error) bool {
	var cond *types.ConditionalCheckFailedException
	return errors.As(err, &cond)
}
