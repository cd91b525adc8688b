package model

// Document is a committed upload. IDHash is the hex encoded keccak-256 of the
// caller supplied document identifier (no 0x prefix). A document becomes
// durable only together with its anchoring transaction hash and is never
// mutated afterwards.
type Document struct {
	ID             string
	IDHash         string
	OrganizationID string
	FileData       []byte
	MimeType       string
	TxHash         string
}

// PendingUpload is a staged, not yet committed upload. It lives only in
// process memory, keyed by the id hash.
type PendingUpload struct {
	FileData []byte
	MimeType string
	UserID   string
}
