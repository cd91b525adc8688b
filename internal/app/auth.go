package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"notary-backend/internal/model"
	"notary-backend/internal/twofactor"
	"notary-backend/internal/wallet"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Login validates the password path of the auth state machine. A user with a
// registered OTP secret must additionally present a valid code.
func (a App) Login(ctx context.Context, email, password, otpCode string) (model.User, error) {
	if email == "" || password == "" {
		return model.User{}, ErrInvalidCredentials
	}

	user, err := a.db.GetUserByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return model.User{}, ErrInvalidCredentials
	}

	if user.TwoFactorEnabled() {
		if otpCode == "" {
			return model.User{}, ErrTwoFactorRequired
		}
		if !twofactor.Verify(user.OTPSecret, otpCode) {
			return model.User{}, ErrInvalidOTP
		}
	}

	a.logger.Info("user logged in", zap.String("userID", user.ID))

	return user, nil
}

// GetLoginNonce issues a fresh one-time challenge for a wallet login
func (a App) GetLoginNonce(ctx context.Context, address string) (string, error) {
	normalized, err := wallet.Normalize(address)
	if err != nil {
		return "", ErrInvalidInput
	}

	user, err := a.db.GetUserByWallet(ctx, normalized)
	if errors.Is(err, model.ErrNotFound) {
		return "", ErrAddressNotRegistered
	}
	if err != nil {
		return "", err
	}

	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.New("failed to generate the login nonce: " + err.Error())
	}
	nonce := hex.EncodeToString(raw)

	if err := a.db.UpdateLoginNonce(ctx, user.ID, nonce); err != nil {
		return "", err
	}

	return nonce, nil
}

// LoginWithWallet completes the challenge/response wallet login. The stored
// nonce is cleared on success, so a signature can never be replayed.
func (a App) LoginWithWallet(ctx context.Context, address, signature string) (model.User, error) {
	normalized, err := wallet.Normalize(address)
	if err != nil {
		return model.User{}, ErrInvalidInput
	}

	user, err := a.db.GetUserByWallet(ctx, normalized)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, ErrAddressNotRegistered
	}
	if err != nil {
		return model.User{}, err
	}

	if user.LoginNonce == "" {
		return model.User{}, ErrNonceNotFound
	}

	sigBytes, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return model.User{}, ErrSignatureInvalid
	}

	recovered, err := wallet.RecoverAddress([]byte(user.LoginNonce), sigBytes)
	if err != nil {
		return model.User{}, ErrSignatureInvalid
	}
	if recovered != normalized {
		return model.User{}, ErrAddressMismatch
	}

	if err := a.db.UpdateLoginNonce(ctx, user.ID, ""); err != nil {
		return model.User{}, err
	}

	a.logger.Info("wallet login", zap.String("userID", user.ID), zap.String("address", normalized))

	return user, nil
}

// Setup2FA returns the enrollment material for the user's TOTP secret,
// generating one first when none exists. An existing secret is never rotated.
func (a App) Setup2FA(ctx context.Context, user model.User) (twofactor.Setup, error) {
	secret := user.OTPSecret
	if secret == "" {
		generated, err := twofactor.GenerateSecret()
		if err != nil {
			return twofactor.Setup{}, err
		}
		if err := a.db.UpdateOTPSecret(ctx, user.ID, generated); err != nil {
			return twofactor.Setup{}, err
		}
		secret = generated
	}

	return twofactor.ProvisioningKey(secret, user.AccountName())
}

// SetTwoFactor enables or disables the second factor. Enabling is idempotent.
func (a App) SetTwoFactor(ctx context.Context, user model.User, enable bool) (twofactor.Setup, error) {
	if enable {
		return a.Setup2FA(ctx, user)
	}

	if err := a.db.UpdateOTPSecret(ctx, user.ID, ""); err != nil {
		return twofactor.Setup{}, err
	}

	return twofactor.Setup{}, nil
}

// Profile is the session user's own view
type Profile struct {
	Email            string
	Organization     string
	TwoFactorEnabled bool
	WalletAddress    string
	IsOwner          bool
}

func (a App) GetProfile(ctx context.Context, user model.User) (Profile, error) {
	org, err := a.db.GetOrganization(ctx, user.OrganizationID)
	if err != nil {
		return Profile{}, errors.New("failed to load the organization: " + err.Error())
	}

	return Profile{
		Email:            user.Email,
		Organization:     org.Name,
		TwoFactorEnabled: user.TwoFactorEnabled(),
		WalletAddress:    user.WalletAddress,
		IsOwner:          user.IsOwner,
	}, nil
}
