package app

import (
	"context"
	"errors"

	"notary-backend/internal/model"
	"notary-backend/internal/pending"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Repository is the credential store holding organizations, users and
// committed documents
type Repository interface {
	InsertUser(ctx context.Context, user model.User) error
	GetUserByID(ctx context.Context, userID string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByWallet(ctx context.Context, walletAddress string) (model.User, error)
	GetOrganizationUsers(ctx context.Context, orgID string) ([]model.User, error)
	UpdateLoginNonce(ctx context.Context, userID, nonce string) error
	UpdateOTPSecret(ctx context.Context, userID, secret string) error
	UpdateWalletAddress(ctx context.Context, userID, address string) error

	InsertOrganization(ctx context.Context, org model.Organization) error
	GetOrganization(ctx context.Context, orgID string) (model.Organization, error)
	GetOrganizationByName(ctx context.Context, name string) (model.Organization, error)
	SetContract(ctx context.Context, orgID, contractAddress string, deployBlock uint64) error

	InsertDocument(ctx context.Context, doc model.Document) error
	GetLatestDocument(ctx context.Context, orgID, idHash string) (model.Document, error)
}

// Ledger is the client of the deployed notary contract
type Ledger interface {
	OriginalHash(ctx context.Context, contract string, idHash [32]byte) ([32]byte, error)
	Timestamp(ctx context.Context, contract string, key [32]byte) (uint64, error)
	FileTimestamp(ctx context.Context, contract string, docHash [32]byte) (uint64, error)
	StoreDocumentHash(ctx context.Context, contract, sender string, idHash, docHash [32]byte) (model.TxResult, error)
	Events(ctx context.Context, contract string, fromBlock uint64, idHash *[32]byte) ([]model.NotarizationEvent, error)
}

type App struct {
	logger  *zap.Logger
	db      Repository
	ledger  Ledger
	pending *pending.Store
}

func NewApp(logger *zap.Logger, db Repository, ledgerClient Ledger, pendingStore *pending.Store) App {
	return App{
		logger:  logger,
		db:      db,
		ledger:  ledgerClient,
		pending: pendingStore,
	}
}

// GetUser resolves a session user id
func (a App) GetUser(ctx context.Context, userID string) (model.User, error) {
	user, err := a.db.GetUserByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, ErrNotFound
	}

	return user, err
}

// orgContract loads the user's organization and requires a registered
// contract address
func (a App) orgContract(ctx context.Context, user model.User) (model.Organization, error) {
	org, err := a.db.GetOrganization(ctx, user.OrganizationID)
	if err != nil {
		return model.Organization{}, errors.New("failed to load the organization: " + err.Error())
	}
	if org.ContractAddress == "" {
		return model.Organization{}, ErrNoContract
	}

	return org, nil
}

// EnsureOwner creates the organization and its owner user when they don't
// exist yet. Used for bootstrapping a fresh deployment from the environment.
func (a App) EnsureOwner(ctx context.Context, orgName, email, password string) error {
	if orgName == "" || email == "" || password == "" {
		return ErrInvalidInput
	}

	if _, err := a.db.GetUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, model.ErrNotFound) {
		return err
	}

	org, err := a.db.GetOrganizationByName(ctx, orgName)
	if errors.Is(err, model.ErrNotFound) {
		org = model.Organization{ID: uuid.NewString(), Name: orgName}
		if err := a.db.InsertOrganization(ctx, org); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash the owner password: " + err.Error())
	}

	owner := model.User{
		ID:             uuid.NewString(),
		OrganizationID: org.ID,
		Email:          email,
		PasswordHash:   string(passwordHash),
		IsOwner:        true,
	}

	a.logger.Info("bootstrapping the owner user", zap.String("email", email), zap.String("org", orgName))

	return a.db.InsertUser(ctx, owner)
}
