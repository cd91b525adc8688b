package app

import (
	"context"
	"errors"

	"notary-backend/internal/hashing"
	"notary-backend/internal/model"
	"notary-backend/internal/pending"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hashes is the result of the prepare phase, both values 0x-prefixed
type Hashes struct {
	IDHash  string
	DocHash string
}

// PrepareNotarization computes the id and content hashes and stages the
// upload for a later commit. Purely local, no ledger interaction; repeating
// an identical prepare just overwrites the staged entry.
func (a App) PrepareNotarization(user model.User, fileData []byte, mimeType, documentID string) (Hashes, error) {
	if len(fileData) == 0 || documentID == "" {
		return Hashes{}, ErrInvalidInput
	}

	idHash := hashing.CalculateFromStr(documentID)
	docHash := hashing.Calculate(fileData)

	a.pending.Put(hashing.Hex(idHash), model.PendingUpload{
		FileData: fileData,
		MimeType: mimeType,
		UserID:   user.ID,
	})

	return Hashes{
		IDHash:  hashing.HexPrefixed(idHash),
		DocHash: hashing.HexPrefixed(docHash),
	}, nil
}

// CommitNotarization persists a previously prepared upload together with the
// anchoring transaction reference obtained by the caller. This is the only
// point where a document becomes durable in the two-phase flow.
func (a App) CommitNotarization(ctx context.Context, user model.User, idHash, txHash string) (model.Document, error) {
	parsed, ok := hashing.ParseHex(idHash)
	if !ok || txHash == "" {
		return model.Document{}, ErrInvalidInput
	}
	key := hashing.Hex(parsed)

	upload, err := a.pending.Take(key, user.ID)
	if errors.Is(err, pending.ErrNoPendingUpload) {
		return model.Document{}, ErrNoPendingUpload
	}
	if err != nil {
		return model.Document{}, err
	}

	doc := model.Document{
		ID:             uuid.NewString(),
		IDHash:         key,
		OrganizationID: user.OrganizationID,
		FileData:       upload.FileData,
		MimeType:       upload.MimeType,
		TxHash:         txHash,
	}

	if err := a.db.InsertDocument(ctx, doc); err != nil {
		// put the upload back so the caller may retry the commit
		a.pending.Put(key, upload)
		return model.Document{}, err
	}

	a.logger.Info("notarization committed",
		zap.String("idHash", key),
		zap.String("txHash", txHash),
		zap.String("userID", user.ID))

	return doc, nil
}

// Notarize is the single-call variant: it checks the ledger-resident history,
// anchors the hashes from the organization's sender account, waits for the
// transaction to be mined and persists the document. An identifier stays
// permanently bound to its first-seen content.
func (a App) Notarize(ctx context.Context, user model.User, fileData []byte, mimeType, documentID string) (model.TxResult, error) {
	if len(fileData) == 0 || documentID == "" {
		return model.TxResult{}, ErrInvalidInput
	}

	org, err := a.orgContract(ctx, user)
	if err != nil {
		return model.TxResult{}, err
	}
	if org.ChainAddress == "" {
		return model.TxResult{}, ErrNoChainAddress
	}

	idHash := hashing.CalculateFromStr(documentID)
	docHash := hashing.Calculate(fileData)

	original, err := a.ledger.OriginalHash(ctx, org.ContractAddress, idHash)
	if err != nil {
		return model.TxResult{}, wrapLedgerErr(err)
	}
	// an all-zero original hash is the "never notarized" sentinel
	if original != ([32]byte{}) && original != docHash {
		return model.TxResult{}, ErrDocumentChanged
	}

	key := hashing.CombineKey(idHash, docHash)
	timestamp, err := a.ledger.Timestamp(ctx, org.ContractAddress, key)
	if err != nil {
		return model.TxResult{}, wrapLedgerErr(err)
	}
	if timestamp != 0 {
		return model.TxResult{}, ErrAlreadyNotarized
	}

	a.logger.Info("anchoring document hashes",
		zap.String("idHash", hashing.Hex(idHash)),
		zap.String("docHash", hashing.Hex(docHash)),
		zap.String("sender", org.ChainAddress))

	result, err := a.ledger.StoreDocumentHash(ctx, org.ContractAddress, org.ChainAddress, idHash, docHash)
	if err != nil {
		return model.TxResult{}, wrapLedgerErr(err)
	}

	doc := model.Document{
		ID:             uuid.NewString(),
		IDHash:         hashing.Hex(idHash),
		OrganizationID: user.OrganizationID,
		FileData:       fileData,
		MimeType:       mimeType,
		TxHash:         result.TxHash,
	}
	if err := a.db.InsertDocument(ctx, doc); err != nil {
		// the anchor is already on the ledger and cannot be unwound; the
		// download copy is the only thing missing
		a.logger.Error("failed to persist the notarized document: "+err.Error(),
			zap.String("idHash", doc.IDHash), zap.String("txHash", result.TxHash))
	}

	return result, nil
}
