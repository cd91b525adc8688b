package mongodb

import (
	"context"
	"errors"

	"notary-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r Repository) InsertUser(ctx context.Context, user model.User) error {
	stored := storedUser{
		ID:             user.ID,
		OrganizationID: user.OrganizationID,
		Email:          user.Email,
		PasswordHash:   user.PasswordHash,
		OTPSecret:      user.OTPSecret,
		WalletAddress:  user.WalletAddress,
		LoginNonce:     user.LoginNonce,
		IsOwner:        user.IsOwner,
	}

	if _, err := r.database().Collection(usersCollection).InsertOne(ctx, stored); err != nil {
		return errors.New("failed to insert a new user: " + err.Error())
	}

	return nil
}

func (r Repository) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	return r.getUser(ctx, bson.M{"_id": userID})
}

func (r Repository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getUser(ctx, bson.M{"email": email})
}

func (r Repository) GetUserByWallet(ctx context.Context, walletAddress string) (model.User, error) {
	return r.getUser(ctx, bson.M{"wallet_address": walletAddress})
}

func (r Repository) getUser(ctx context.Context, filter bson.M) (model.User, error) {
	var stored storedUser

	err := r.database().Collection(usersCollection).FindOne(ctx, filter).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, model.ErrNotFound
	}
	if err != nil {
		return model.User{}, errors.New("failed to find the user: " + err.Error())
	}

	return stored.toModel(), nil
}

func (r Repository) GetOrganizationUsers(ctx context.Context, orgID string) ([]model.User, error) {
	cursor, err := r.database().Collection(usersCollection).Find(ctx, bson.M{"organization_id": orgID})
	if err != nil {
		return nil, errors.New("failed to find the organization users: " + err.Error())
	}

	var stored []storedUser
	if err := cursor.All(ctx, &stored); err != nil {
		return nil, errors.New("failed to read the organization users: " + err.Error())
	}

	users := make([]model.User, len(stored))
	for i, s := range stored {
		users[i] = s.toModel()
	}

	return users, nil
}

// UpdateLoginNonce sets the wallet login challenge; an empty nonce clears it
func (r Repository) UpdateLoginNonce(ctx context.Context, userID, nonce string) error {
	return r.updateUserField(ctx, userID, "login_nonce", nonce)
}

// UpdateOTPSecret sets the TOTP secret; an empty secret disables 2FA
func (r Repository) UpdateOTPSecret(ctx context.Context, userID, secret string) error {
	return r.updateUserField(ctx, userID, "otp_secret", secret)
}

func (r Repository) UpdateWalletAddress(ctx context.Context, userID, address string) error {
	return r.updateUserField(ctx, userID, "wallet_address", address)
}

func (r Repository) updateUserField(ctx context.Context, userID, field, value string) error {
	update := bson.M{"$set": bson.M{field: value}}
	if value == "" {
		update = bson.M{"$unset": bson.M{field: ""}}
	}

	result, err := r.database().Collection(usersCollection).UpdateByID(ctx, userID, update)
	if err != nil {
		return errors.New("failed to update the user " + field + ": " + err.Error())
	}
	if result.MatchedCount == 0 {
		return model.ErrNotFound
	}

	return nil
}
