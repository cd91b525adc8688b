package mongodb

import (
	"context"
	"errors"
	"time"

	"notary-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r Repository) InsertDocument(ctx context.Context, doc model.Document) error {
	stored := storedDocument{
		ID:        doc.ID,
		IDHash:    doc.IDHash,
		OrgID:     doc.OrganizationID,
		FileData:  doc.FileData,
		MimeType:  doc.MimeType,
		TxHash:    doc.TxHash,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := r.database().Collection(documentsCollection).InsertOne(ctx, stored); err != nil {
		return errors.New("failed to insert a new document: " + err.Error())
	}

	return nil
}

// GetLatestDocument returns the most recently committed document for the
// organization and id hash
func (r Repository) GetLatestDocument(ctx context.Context, orgID, idHash string) (model.Document, error) {
	filter := bson.M{"org_id": orgID, "id_hash": idHash}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var stored storedDocument
	err := r.database().Collection(documentsCollection).FindOne(ctx, filter, opts).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Document{}, model.ErrNotFound
	}
	if err != nil {
		return model.Document{}, errors.New("failed to find the document: " + err.Error())
	}

	return stored.toModel(), nil
}
