package hashing

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Calculate returns the keccak-256 digest of data. The legacy (pre-NIST)
// padding is what the notary contract and its tooling use.
func Calculate(data []byte) [32]byte {
	hash := sha3.NewLegacyKeccak256()
	hash.Write(data)

	var digest [32]byte
	copy(digest[:], hash.Sum(nil))
	return digest
}

func CalculateFromStr(text string) [32]byte {
	return Calculate([]byte(text))
}

// CombineKey derives the timestamp mapping key of an (idHash, docHash) pair
func CombineKey(idHash, docHash [32]byte) [32]byte {
	combined := make([]byte, 0, 64)
	combined = append(combined, idHash[:]...)
	combined = append(combined, docHash[:]...)
	return Calculate(combined)
}

// Hex encodes a digest without the 0x prefix
func Hex(digest [32]byte) string {
	return hex.EncodeToString(digest[:])
}

// HexPrefixed encodes a digest in the canonical 0x form
func HexPrefixed(digest [32]byte) string {
	return "0x" + hex.EncodeToString(digest[:])
}

// ParseHex accepts a digest with or without the 0x prefix
func ParseHex(value string) ([32]byte, bool) {
	var digest [32]byte

	if len(value) >= 2 && (value[:2] == "0x" || value[:2] == "0X") {
		value = value[2:]
	}
	if len(value) != 64 {
		return digest, false
	}

	raw, err := hex.DecodeString(value)
	if err != nil {
		return digest, false
	}

	copy(digest[:], raw)
	return digest, true
}
