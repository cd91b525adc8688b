package app

import (
	"errors"
	"fmt"

	"notary-backend/internal/ledger"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCredentials deliberately covers both an unknown email and a
	// wrong password
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrTwoFactorRequired    = errors.New("otp code required")
	ErrInvalidOTP           = errors.New("invalid otp")
	ErrAddressNotRegistered = errors.New("no user registered for this address")
	ErrNonceNotFound        = errors.New("no login nonce requested for this address")
	ErrSignatureInvalid     = errors.New("invalid signature")
	ErrAddressMismatch      = errors.New("signature does not match the address")

	ErrForbidden = errors.New("forbidden")

	ErrDocumentChanged  = errors.New("document may not be changed")
	ErrAlreadyNotarized = errors.New("already notarized")
	ErrNoPendingUpload  = errors.New("no pending upload for this id hash")

	ErrNotVerified = errors.New("not verified")
	ErrNotFound    = errors.New("not found")

	ErrNoContract         = errors.New("organization has no contract address")
	ErrNoChainAddress     = errors.New("organization has no chain address")
	ErrNoWalletAddress    = errors.New("user has no wallet address")
	ErrContractAlreadySet = errors.New("contract address is already set")

	// ErrLedger wraps failures coming back from the ledger node
	ErrLedger = errors.New("ledger failure")
)

func wrapLedgerErr(err error) error {
	// a mining timeout keeps its own identity, everything else collapses
	// into a generic ledger failure without leaking transport internals
	if errors.Is(err, ledger.ErrTimeout) {
		return err
	}

	return fmt.Errorf("%w: %v", ErrLedger, err)
}
