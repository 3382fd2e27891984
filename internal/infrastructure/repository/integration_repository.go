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

// MongoIntegrationRepository implements IntegrationRepository using MongoDB.
type MongoIntegrationRepository struct {
	collection *mongo.Collection
}

// NewMongoIntegrationRepository creates a new MongoDB integration repository.
func NewMongoIntegrationRepository(db *mongo.Database) ports.IntegrationRepository {
	return &MongoIntegrationRepository{
		collection: db.Collection("integrations"),
	}
}

// Upsert creates or replaces the credential record keyed by (user, service).
// Concurrent upserts for the same pair are last-writer-wins on token fields;
// tokens come from an authoritative external provider so that is acceptable.
func (r *MongoIntegrationRepository) Upsert(ctx context.Context, integration *domain.Integration) (*domain.Integration, error) {
	doc := entity.MongoIntegrationDocFromDomain(integration)
	doc.UpdatedAt = time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	// Unique index on (userId, service) backs the upsert key.
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "service", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = r.collection.Indexes().CreateOne(ctx, indexModel)

	filter := bson.M{"userId": doc.UserID, "service": doc.Service}
	update := bson.M{
		"$set": bson.M{
			"status":       doc.Status,
			"accessToken":  doc.AccessToken,
			"refreshToken": doc.RefreshToken,
			"expiresAt":    doc.ExpiresAt,
			"tokenType":    doc.TokenType,
			"scope":        doc.Scope,
			"lastUsed":     doc.LastUsed,
			"updatedAt":    doc.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"userId":    doc.UserID,
			"service":   doc.Service,
			"createdAt": doc.CreatedAt,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var stored entity.MongoIntegrationDoc
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return nil, fmt.Errorf("failed to upsert integration: %w", err)
	}

	return stored.ToDomain(), nil
}

// Get retrieves an integration by user and service.
func (r *MongoIntegrationRepository) Get(ctx context.Context, userID, service string) (*domain.Integration, error) {
	var doc entity.MongoIntegrationDoc
	filter := bson.M{"userId": userID, "service": service}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get integration: %w", err)
	}

	return doc.ToDomain(), nil
}

// ListByUser returns all of a user's integrations, most recently updated first.
func (r *MongoIntegrationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Integration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}
	defer cursor.Close(ctx)

	var integrations []*domain.Integration
	for cursor.Next(ctx) {
		var doc entity.MongoIntegrationDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode integration: %w", err)
		}
		integrations = append(integrations, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return integrations, nil
}

// UpdateStatus sets the status of an existing (user, service) row.
func (r *MongoIntegrationRepository) UpdateStatus(ctx context.Context, userID, service string, status domain.IntegrationStatus) error {
	filter := bson.M{"userId": userID, "service": service}
	update := bson.M{"$set": bson.M{"status": string(status), "updatedAt": time.Now()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update integration status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("integration not found")
	}
	return nil
}

// DeleteByID hard-deletes a row by its object id.
func (r *MongoIntegrationRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("invalid integration id: %w", err)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return false, fmt.Errorf("failed to delete integration: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// DeleteByUserAndService hard-deletes the (user, service) row.
func (r *MongoIntegrationRepository) DeleteByUserAndService(ctx context.Context, userID, service string) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID, "service": service})
	if err != nil {
		return false, fmt.Errorf("failed to delete integration: %w", err)
	}
	return result.DeletedCount > 0, nil
}
