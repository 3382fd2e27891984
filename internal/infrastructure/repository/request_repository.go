package repository

import (
	"context"
	"fmt"
	"time"

	"jarvis-integrations-layer/internal/domain"
	"jarvis-integrations-layer/internal/infrastructure/repository/entity"
	"jarvis-integrations-layer/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRequestRepository implements RequestRepository using MongoDB.
type MongoRequestRepository struct {
	collection *mongo.Collection
}

// NewMongoRequestRepository creates a new MongoDB completion request repository.
func NewMongoRequestRepository(db *mongo.Database) ports.RequestRepository {
	return &MongoRequestRepository{
		collection: db.Collection("requests"),
	}
}

// Create inserts a new request record.
func (r *MongoRequestRepository) Create(ctx context.Context, req *domain.CompletionRequest) error {
	doc := entity.MongoRequestDocFromDomain(req)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	doc.UpdatedAt = time.Now()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "requestId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = r.collection.Indexes().CreateOne(ctx, indexModel)

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

// GetByRequestID retrieves a request by its tracking id.
func (r *MongoRequestRepository) GetByRequestID(ctx context.Context, requestID string) (*domain.CompletionRequest, error) {
	var doc entity.MongoRequestDoc
	err := r.collection.FindOne(ctx, bson.M{"requestId": requestID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return doc.ToDomain(), nil
}

// UpdateStatus sets the status and, when provided, the metadata of a request.
func (r *MongoRequestRepository) UpdateStatus(ctx context.Context, requestID string, status domain.RequestStatus, meta *domain.RequestMetadata) error {
	set := bson.M{
		"status":    string(status),
		"updatedAt": time.Now(),
	}
	if meta != nil {
		set["metadata"] = *meta
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"requestId": requestID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

// SetConversationID attaches the assistant conversation to a request.
func (r *MongoRequestRepository) SetConversationID(ctx context.Context, requestID, conversationID string) error {
	set := bson.M{
		"conversationId": conversationID,
		"updatedAt":      time.Now(),
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"requestId": requestID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to set conversation id: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}
