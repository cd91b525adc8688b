package model

// User belongs to exactly one organization for its lifetime. At least one of
// Email and WalletAddress must be set. LoginNonce is the ephemeral wallet
// login challenge, cleared after a single use.
type User struct {
	ID             string
	OrganizationID string

	Email        string
	PasswordHash string
	OTPSecret    string

	WalletAddress string
	LoginNonce    string

	IsOwner bool
}

func (u User) TwoFactorEnabled() bool {
	return u.OTPSecret != ""
}

// AccountName is the label shown in authenticator apps
func (u User) AccountName() string {
	if u.Email != "" {
		return u.Email
	}
	return u.WalletAddress
}
