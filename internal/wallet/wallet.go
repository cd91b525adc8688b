package wallet

import (
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"notary-backend/internal/hashing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

const personalMessagePrefix = "\x19Ethereum Signed Message:\n"

var (
	ErrInvalidAddress   = errors.New("invalid wallet address")
	ErrInvalidSignature = errors.New("invalid signature")
)

// Normalize validates an address and returns it in checksummed form
func Normalize(address string) (string, error) {
	if len(address) != 42 {
		return "", ErrInvalidAddress
	}
	if address[:2] != "0x" && address[:2] != "0X" {
		return "", ErrInvalidAddress
	}

	raw, err := hex.DecodeString(strings.ToLower(address[2:]))
	if err != nil {
		return "", ErrInvalidAddress
	}

	return checksum(raw), nil
}

// PersonalDigest hashes a message the way wallets sign it: prefixed with the
// standard personal-message header and the decimal message length
func PersonalDigest(message []byte) [32]byte {
	prefixed := []byte(personalMessagePrefix + strconv.Itoa(len(message)))
	prefixed = append(prefixed, message...)
	return hashing.Calculate(prefixed)
}

// RecoverAddress recovers the checksummed signer address from a 65-byte
// r||s||v signature over the personal-message digest of message. The recovery
// byte is accepted both raw (0/1) and in its usual 27/28 form.
func RecoverAddress(message []byte, signature []byte) (string, error) {
	if len(signature) != 65 {
		return "", ErrInvalidSignature
	}

	v := signature[64]
	if v < 27 {
		v += 27
	}
	if v != 27 && v != 28 {
		return "", ErrInvalidSignature
	}

	// the compact format wants the recovery byte first
	compact := make([]byte, 65)
	compact[0] = v
	copy(compact[1:], signature[:64])

	digest := PersonalDigest(message)
	pubKey, _, err := ecdsa.RecoverCompact(compact, digest[:])
	if err != nil {
		return "", ErrInvalidSignature
	}

	return PubKeyAddress(pubKey), nil
}

// PubKeyAddress derives the checksummed address of a public key
func PubKeyAddress(pubKey *secp256k1.PublicKey) string {
	raw := pubKey.SerializeUncompressed()
	digest := hashing.Calculate(raw[1:])
	return checksum(digest[12:])
}

// checksum implements the mixed-case address encoding: a hex letter is
// uppercased when the matching nibble of keccak(lowercase address) is >= 8
func checksum(addr []byte) string {
	unprefixed := []byte(hex.EncodeToString(addr))
	digest := hashing.Calculate(unprefixed)

	for i, c := range unprefixed {
		if c < 'a' || c > 'f' {
			continue
		}

		nibble := digest[i/2] >> 4
		if i%2 == 1 {
			nibble = digest[i/2] & 0x0f
		}
		if nibble >= 8 {
			unprefixed[i] = c - ('a' - 'A')
		}
	}

	return "0x" + string(unprefixed)
}
