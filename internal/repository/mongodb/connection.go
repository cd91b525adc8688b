package mongodb

import (
	"context"
	"time"

	"notary-backend/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	usersCollection         = "users"
	organizationsCollection = "organizations"
	documentsCollection     = "documents"
)

type Repository struct {
	// connection closer function
	Disconnect func()

	client *mongo.Client
	logger *zap.Logger
}

func NewConnection(logger *zap.Logger, uri string) (Repository, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		logger.Error("db connection failed", zap.String("uri", uri))
		return Repository{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return Repository{}, err
	}

	closer := func() {
		if err = client.Disconnect(context.Background()); err != nil {
			logger.Error("failed to disconnect the DB: " + err.Error())
		}
	}

	return Repository{
		Disconnect: closer,
		client:     client,
		logger:     logger,
	}, nil
}

func (r Repository) database() *mongo.Database {
	return r.client.Database(config.GetDatabaseName())
}

// EnsureIndexes creates the unique and lookup indexes the queries rely on
func (r Repository) EnsureIndexes(ctx context.Context) (err error) {
	unique := options.Index().SetUnique(true)
	sparseUnique := options.Index().SetUnique(true).SetSparse(true)

	_, orgErr := r.database().Collection(organizationsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "contract_address", Value: 1}}, Options: sparseUnique},
	})
	err = multierr.Append(err, orgErr)

	_, userErr := r.database().Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: sparseUnique},
		{Keys: bson.D{{Key: "wallet_address", Value: 1}}, Options: sparseUnique},
		{Keys: bson.D{{Key: "organization_id", Value: 1}}},
	})
	err = multierr.Append(err, userErr)

	_, docErr := r.database().Collection(documentsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "org_id", Value: 1}, {Key: "id_hash", Value: 1}}},
	})
	err = multierr.Append(err, docErr)

	return err
}
