package entity

import (
	"time"

	"jarvis-integrations-layer/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoIntegrationDoc represents an integration credential record in MongoDB.
type MongoIntegrationDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       string             `bson:"userId"`
	Service      string             `bson:"service"`
	Status       string             `bson:"status"`
	AccessToken  string             `bson:"accessToken"`
	RefreshToken string             `bson:"refreshToken,omitempty"`
	ExpiresAt    *time.Time         `bson:"expiresAt,omitempty"`
	TokenType    string             `bson:"tokenType,omitempty"`
	Scope        string             `bson:"scope,omitempty"`
	LastUsed     time.Time          `bson:"lastUsed"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity.
func (d *MongoIntegrationDoc) ToDomain() *domain.Integration {
	return &domain.Integration{
		ID:           d.ID.Hex(),
		UserID:       d.UserID,
		Service:      d.Service,
		Status:       domain.IntegrationStatus(d.Status),
		AccessToken:  d.AccessToken,
		RefreshToken: d.RefreshToken,
		ExpiresAt:    d.ExpiresAt,
		TokenType:    d.TokenType,
		Scope:        d.Scope,
		LastUsed:     d.LastUsed,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// MongoIntegrationDocFromDomain converts a domain entity to a MongoDB document.
func MongoIntegrationDocFromDomain(integration *domain.Integration) *MongoIntegrationDoc {
	doc := &MongoIntegrationDoc{
		UserID:       integration.UserID,
		Service:      integration.Service,
		Status:       string(integration.Status),
		AccessToken:  integration.AccessToken,
		RefreshToken: integration.RefreshToken,
		ExpiresAt:    integration.ExpiresAt,
		TokenType:    integration.TokenType,
		Scope:        integration.Scope,
		LastUsed:     integration.LastUsed,
		CreatedAt:    integration.CreatedAt,
		UpdatedAt:    integration.UpdatedAt,
	}

	if integration.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(integration.ID); err == nil {
			doc.ID = objID
		}
	}

	return doc
}
