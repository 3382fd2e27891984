package entity

import (
	"time"

	"jarvis-integrations-layer/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoRequestDoc represents a completion request record in MongoDB.
type MongoRequestDoc struct {
	ID             primitive.ObjectID     `bson:"_id,omitempty"`
	RequestID      string                 `bson:"requestId"`
	UserID         string                 `bson:"userId"`
	RequestType    string                 `bson:"requestType"`
	Status         string                 `bson:"status"`
	Metadata       domain.RequestMetadata `bson:"metadata"`
	ConversationID string                 `bson:"conversationId,omitempty"`
	CreatedAt      time.Time              `bson:"createdAt"`
	UpdatedAt      time.Time              `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity.
func (d *MongoRequestDoc) ToDomain() *domain.CompletionRequest {
	return &domain.CompletionRequest{
		ID:             d.ID.Hex(),
		RequestID:      d.RequestID,
		UserID:         d.UserID,
		Type:           d.RequestType,
		Status:         domain.RequestStatus(d.Status),
		Metadata:       d.Metadata,
		ConversationID: d.ConversationID,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// MongoRequestDocFromDomain converts a domain entity to a MongoDB document.
func MongoRequestDocFromDomain(req *domain.CompletionRequest) *MongoRequestDoc {
	doc := &MongoRequestDoc{
		RequestID:      req.RequestID,
		UserID:         req.UserID,
		RequestType:    req.Type,
		Status:         string(req.Status),
		Metadata:       req.Metadata,
		ConversationID: req.ConversationID,
		CreatedAt:      req.CreatedAt,
		UpdatedAt:      req.UpdatedAt,
	}

	if req.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(req.ID); err == nil {
			doc.ID = objID
		}
	}

	return doc
}
