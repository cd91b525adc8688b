package app

import (
	"context"
	"errors"

	"notary-backend/internal/model"
	"notary-backend/internal/wallet"

	"go.uber.org/zap"
)

// Administrative operations. All of them are owner-gated and scoped to the
// owner's own organization; the HTTP layer additionally guards the routes.

func (a App) GetOrganizationUsers(ctx context.Context, owner model.User, orgID string) ([]model.User, error) {
	if !owner.IsOwner || owner.OrganizationID != orgID {
		return nil, ErrForbidden
	}

	return a.db.GetOrganizationUsers(ctx, orgID)
}

// SetUserWallet registers or replaces the wallet address of a user in the
// owner's organization
func (a App) SetUserWallet(ctx context.Context, owner model.User, userID, address string) (model.User, error) {
	if !owner.IsOwner {
		return model.User{}, ErrForbidden
	}

	normalized, err := wallet.Normalize(address)
	if err != nil {
		return model.User{}, ErrInvalidInput
	}

	user, err := a.db.GetUserByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	if user.OrganizationID != owner.OrganizationID {
		return model.User{}, ErrForbidden
	}

	if err := a.db.UpdateWalletAddress(ctx, userID, normalized); err != nil {
		return model.User{}, err
	}

	a.logger.Info("wallet address updated",
		zap.String("userID", userID), zap.String("address", normalized))

	user.WalletAddress = normalized
	return user, nil
}

// RegisterContract records the organization's deployed notary contract and
// its deploy block. The address can be set exactly once.
func (a App) RegisterContract(ctx context.Context, owner model.User, orgID, address string, deployBlock uint64) (model.Organization, error) {
	if !owner.IsOwner || owner.OrganizationID != orgID {
		return model.Organization{}, ErrForbidden
	}

	normalized, err := wallet.Normalize(address)
	if err != nil {
		return model.Organization{}, ErrInvalidInput
	}

	org, err := a.db.GetOrganization(ctx, orgID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Organization{}, ErrNotFound
	}
	if err != nil {
		return model.Organization{}, err
	}
	if org.ContractAddress != "" {
		return model.Organization{}, ErrContractAlreadySet
	}

	if err := a.db.SetContract(ctx, orgID, normalized, deployBlock); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// lost a race against another registration
			return model.Organization{}, ErrContractAlreadySet
		}
		return model.Organization{}, err
	}

	a.logger.Info("notary contract registered",
		zap.String("orgID", orgID),
		zap.String("contract", normalized),
		zap.Uint64("deployBlock", deployBlock))

	org.ContractAddress = normalized
	org.DeployBlock = deployBlock
	return org, nil
}
