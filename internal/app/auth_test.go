package app_test

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"notary-backend/internal/app"
	"notary-backend/internal/wallet"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.app.Login(ctx, "alice@test.org", "Secret123", "")
	require.NoError(t, err)
	assert.Equal(t, env.user.ID, user.ID)
}

func TestLoginBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.app.Login(ctx, "alice@test.org", "wrong", "")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)

	// an unknown email yields the same error as a wrong password
	_, err = env.app.Login(ctx, "nobody@test.org", "Secret123", "")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)

	_, err = env.app.Login(ctx, "", "", "")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)
}

func TestLoginWithTwoFactor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	setup, err := env.app.Setup2FA(ctx, env.user)
	require.NoError(t, err)
	require.NotEmpty(t, setup.Secret)

	// without a code the password alone is not enough anymore
	_, err = env.app.Login(ctx, "alice@test.org", "Secret123", "")
	assert.ErrorIs(t, err, app.ErrTwoFactorRequired)

	_, err = env.app.Login(ctx, "alice@test.org", "Secret123", "000000")
	assert.ErrorIs(t, err, app.ErrInvalidOTP)

	code, err := totp.GenerateCode(setup.Secret, time.Now().UTC())
	require.NoError(t, err)

	user, err := env.app.Login(ctx, "alice@test.org", "Secret123", code)
	require.NoError(t, err)
	assert.Equal(t, env.user.ID, user.ID)
}

func TestSetup2FAKeepsExistingSecret(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.app.Setup2FA(ctx, env.user)
	require.NoError(t, err)

	enrolled, err := env.repo.GetUserByID(ctx, env.user.ID)
	require.NoError(t, err)

	second, err := env.app.Setup2FA(ctx, enrolled)
	require.NoError(t, err)
	assert.Equal(t, first.Secret, second.Secret)
	assert.NotEmpty(t, second.QRCodePNG)
}

func TestDisableTwoFactor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.app.Setup2FA(ctx, env.user)
	require.NoError(t, err)

	enrolled, err := env.repo.GetUserByID(ctx, env.user.ID)
	require.NoError(t, err)
	require.True(t, enrolled.TwoFactorEnabled())

	_, err = env.app.SetTwoFactor(ctx, enrolled, false)
	require.NoError(t, err)

	user, err := env.repo.GetUserByID(ctx, env.user.ID)
	require.NoError(t, err)
	assert.False(t, user.TwoFactorEnabled())

	// the password alone works again
	_, err = env.app.Login(ctx, "alice@test.org", "Secret123", "")
	assert.NoError(t, err)
}

// signNonce produces the personal-message signature a browser wallet would
// return for the login challenge.
func signNonce(t *testing.T, key *secp256k1.PrivateKey, nonce string) string {
	t.Helper()

	digest := wallet.PersonalDigest([]byte(nonce))
	compact := ecdsa.SignCompact(key, digest[:], false)

	signature := make([]byte, 65)
	copy(signature, compact[1:])
	signature[64] = compact[0]

	return "0x" + hex.EncodeToString(signature)
}

func TestWalletLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	address := wallet.PubKeyAddress(key.PubKey())

	require.NoError(t, env.repo.UpdateWalletAddress(ctx, env.user.ID, address))

	nonce, err := env.app.GetLoginNonce(ctx, address)
	require.NoError(t, err)
	require.NotEmpty(t, nonce)

	user, err := env.app.LoginWithWallet(ctx, address, signNonce(t, key, nonce))
	require.NoError(t, err)
	assert.Equal(t, env.user.ID, user.ID)

	// the nonce is consumed, replaying the same signature must fail
	_, err = env.app.LoginWithWallet(ctx, address, signNonce(t, key, nonce))
	assert.ErrorIs(t, err, app.ErrNonceNotFound)
}

func TestWalletLoginWrongKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	address := wallet.PubKeyAddress(key.PubKey())
	require.NoError(t, env.repo.UpdateWalletAddress(ctx, env.user.ID, address))

	nonce, err := env.app.GetLoginNonce(ctx, address)
	require.NoError(t, err)

	otherKey, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	_, err = env.app.LoginWithWallet(ctx, address, signNonce(t, otherKey, nonce))
	assert.ErrorIs(t, err, app.ErrAddressMismatch)
}

func TestWalletLoginErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.app.GetLoginNonce(ctx, "not-an-address")
	assert.ErrorIs(t, err, app.ErrInvalidInput)

	_, err = env.app.GetLoginNonce(ctx, testSender)
	assert.ErrorIs(t, err, app.ErrAddressNotRegistered)

	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	address := wallet.PubKeyAddress(key.PubKey())
	require.NoError(t, env.repo.UpdateWalletAddress(ctx, env.user.ID, address))

	// signing before a nonce was ever requested
	_, err = env.app.LoginWithWallet(ctx, address, signNonce(t, key, "whatever"))
	assert.ErrorIs(t, err, app.ErrNonceNotFound)

	_, err = env.app.GetLoginNonce(ctx, address)
	require.NoError(t, err)

	_, err = env.app.LoginWithWallet(ctx, address, "0xzz")
	assert.ErrorIs(t, err, app.ErrSignatureInvalid)
}

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)

	profile, err := env.app.GetProfile(context.Background(), env.user)
	require.NoError(t, err)
	assert.Equal(t, "alice@test.org", profile.Email)
	assert.Equal(t, "TestOrg", profile.Organization)
	assert.False(t, profile.TwoFactorEnabled)
}

func TestEnsureOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.app.EnsureOwner(ctx, "NewOrg", "owner@new.org", "Owner123"))

	owner, err := env.app.Login(ctx, "owner@new.org", "Owner123", "")
	require.NoError(t, err)
	assert.True(t, owner.IsOwner)

	// bootstrapping again is a no-op
	require.NoError(t, env.app.EnsureOwner(ctx, "NewOrg", "owner@new.org", "Owner123"))

	org, err := env.repo.GetOrganizationByName(ctx, "NewOrg")
	require.NoError(t, err)
	assert.Equal(t, org.ID, owner.OrganizationID)
}
