package mongodb

import (
	"time"

	"notary-backend/internal/model"
)

type storedOrganization struct {
	ID              string `bson:"_id"`
	Name            string `bson:"name"`
	ChainAddress    string `bson:"chain_address,omitempty"`
	ContractAddress string `bson:"contract_address,omitempty"`
	DeployBlock     uint64 `bson:"deploy_block,omitempty"`
}

type storedUser struct {
	ID             string `bson:"_id"`
	OrganizationID string `bson:"organization_id"`
	Email          string `bson:"email,omitempty"`
	PasswordHash   string `bson:"password_hash,omitempty"`
	OTPSecret      string `bson:"otp_secret,omitempty"`
	WalletAddress  string `bson:"wallet_address,omitempty"`
	LoginNonce     string `bson:"login_nonce,omitempty"`
	IsOwner        bool   `bson:"is_owner"`
}

type storedDocument struct {
	ID        string    `bson:"_id"`
	IDHash    string    `bson:"id_hash"`
	OrgID     string    `bson:"org_id"`
	FileData  []byte    `bson:"file_data"`
	MimeType  string    `bson:"mime_type"`
	TxHash    string    `bson:"tx_hash"`
	CreatedAt time.Time `bson:"created_at"`
}

func (s storedOrganization) toModel() model.Organization {
	return model.Organization{
		ID:              s.ID,
		Name:            s.Name,
		ChainAddress:    s.ChainAddress,
		ContractAddress: s.ContractAddress,
		DeployBlock:     s.DeployBlock,
	}
}

func (s storedUser) toModel() model.User {
	return model.User{
		ID:             s.ID,
		OrganizationID: s.OrganizationID,
		Email:          s.Email,
		PasswordHash:   s.PasswordHash,
		OTPSecret:      s.OTPSecret,
		WalletAddress:  s.WalletAddress,
		LoginNonce:     s.LoginNonce,
		IsOwner:        s.IsOwner,
	}
}

func (s storedDocument) toModel() model.Document {
	return model.Document{
		ID:             s.ID,
		IDHash:         s.IDHash,
		OrganizationID: s.OrgID,
		FileData:       s.FileData,
		MimeType:       s.MimeType,
		TxHash:         s.TxHash,
	}
}
