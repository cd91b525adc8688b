package model

// NotarizationEvent is one DocumentNotarized entry read from the ledger.
// Hashes carry the 0x prefix, addresses are checksummed.
type NotarizationEvent struct {
	Sender       string
	IDHash       string
	DocumentHash string
	Timestamp    uint64
	TxHash       string
	BlockNumber  uint64
}

// TxResult identifies a mined anchoring transaction
type TxResult struct {
	TxHash      string
	BlockNumber uint64
}
