package mongodb

import (
	"context"
	"errors"

	"notary-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r Repository) InsertOrganization(ctx context.Context, org model.Organization) error {
	stored := storedOrganization{
		ID:              org.ID,
		Name:            org.Name,
		ChainAddress:    org.ChainAddress,
		ContractAddress: org.ContractAddress,
		DeployBlock:     org.DeployBlock,
	}

	if _, err := r.database().Collection(organizationsCollection).InsertOne(ctx, stored); err != nil {
		return errors.New("failed to insert a new organization: " + err.Error())
	}

	return nil
}

func (r Repository) GetOrganization(ctx context.Context, orgID string) (model.Organization, error) {
	var stored storedOrganization

	err := r.database().Collection(organizationsCollection).FindOne(ctx, bson.M{"_id": orgID}).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Organization{}, model.ErrNotFound
	}
	if err != nil {
		return model.Organization{}, errors.New("failed to find the organization: " + err.Error())
	}

	return stored.toModel(), nil
}

func (r Repository) GetOrganizationByName(ctx context.Context, name string) (model.Organization, error) {
	var stored storedOrganization

	err := r.database().Collection(organizationsCollection).FindOne(ctx, bson.M{"name": name}).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Organization{}, model.ErrNotFound
	}
	if err != nil {
		return model.Organization{}, errors.New("failed to find the organization: " + err.Error())
	}

	return stored.toModel(), nil
}

// SetContract records the deployed contract address and its deploy block.
// The filter only matches while no contract is set, making this a set-once
// operation even under concurrent requests.
func (r Repository) SetContract(ctx context.Context, orgID, contractAddress string, deployBlock uint64) error {
	filter := bson.M{
		"_id":              orgID,
		"contract_address": bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{
		"contract_address": contractAddress,
		"deploy_block":     deployBlock,
	}}

	result, err := r.database().Collection(organizationsCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return errors.New("failed to set the organization contract: " + err.Error())
	}
	if result.MatchedCount == 0 {
		return model.ErrNotFound
	}

	return nil
}
