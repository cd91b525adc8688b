package app

import (
	"context"
	"errors"
	"sort"

	"notary-backend/internal/hashing"
	"notary-backend/internal/model"

	"go.uber.org/zap"
)

// Verify recomputes the content hash and checks the ledger for a matching
// registration. A missing registration is reported as ErrNotVerified, not as
// a failure.
func (a App) Verify(ctx context.Context, user model.User, fileData []byte) (uint64, error) {
	if len(fileData) == 0 {
		return 0, ErrInvalidInput
	}

	org, err := a.orgContract(ctx, user)
	if err != nil {
		return 0, err
	}

	docHash := hashing.Calculate(fileData)

	timestamp, err := a.ledger.FileTimestamp(ctx, org.ContractAddress, docHash)
	if err != nil {
		return 0, wrapLedgerErr(err)
	}

	// the latest matching event is authoritative over the raw mapping in
	// case the same content was anchored more than once
	events, err := a.ledger.Events(ctx, org.ContractAddress, org.DeployBlock, nil)
	if err != nil {
		a.logger.Debug("event lookup failed, falling back to the mapping read: " + err.Error())
	} else {
		wanted := hashing.HexPrefixed(docHash)
		for _, event := range events {
			if event.DocumentHash == wanted && event.Timestamp > timestamp {
				timestamp = event.Timestamp
			}
		}
	}

	if timestamp == 0 {
		return 0, ErrNotVerified
	}

	return timestamp, nil
}

// DocumentListing is the organization-scoped list of anchoring events
type DocumentListing struct {
	OrgChainAddress string
	ContractAddress string
	Documents       []model.NotarizationEvent
}

// ListDocuments returns all notarizations of the caller's organization,
// newest first
func (a App) ListDocuments(ctx context.Context, user model.User) (DocumentListing, error) {
	org, err := a.orgContract(ctx, user)
	if err != nil {
		return DocumentListing{}, err
	}

	events, err := a.ledger.Events(ctx, org.ContractAddress, org.DeployBlock, nil)
	if err != nil {
		return DocumentListing{}, wrapLedgerErr(err)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp > events[j].Timestamp
	})

	return DocumentListing{
		OrgChainAddress: org.ChainAddress,
		ContractAddress: org.ContractAddress,
		Documents:       events,
	}, nil
}

// DocumentDetails describes the anchoring of one document identifier
type DocumentDetails struct {
	Organization    string
	OrgChainAddress string
	ContractAddress string
	DocumentID      string
	Event           model.NotarizationEvent
}

func (a App) GetDocument(ctx context.Context, user model.User, documentID string) (DocumentDetails, error) {
	if documentID == "" {
		return DocumentDetails{}, ErrInvalidInput
	}

	org, err := a.orgContract(ctx, user)
	if err != nil {
		return DocumentDetails{}, err
	}

	idHash := hashing.CalculateFromStr(documentID)

	timestamp, err := a.ledger.Timestamp(ctx, org.ContractAddress, idHash)
	if err != nil {
		return DocumentDetails{}, wrapLedgerErr(err)
	}
	if timestamp == 0 {
		return DocumentDetails{}, ErrNotFound
	}

	events, err := a.ledger.Events(ctx, org.ContractAddress, org.DeployBlock, &idHash)
	if err != nil {
		return DocumentDetails{}, wrapLedgerErr(err)
	}
	if len(events) == 0 {
		return DocumentDetails{}, ErrNotFound
	}

	return DocumentDetails{
		Organization:    org.Name,
		OrgChainAddress: org.ChainAddress,
		ContractAddress: org.ContractAddress,
		DocumentID:      documentID,
		Event:           events[0],
	}, nil
}

// History is the full notarization history of one identifier, oldest first
type History struct {
	OrgName         string
	OrgChainAddress string
	ContractAddress string
	Entries         []model.NotarizationEvent
}

func (a App) DocumentHistory(ctx context.Context, user model.User, documentID string) (History, error) {
	if documentID == "" {
		return History{}, ErrInvalidInput
	}

	org, err := a.orgContract(ctx, user)
	if err != nil {
		return History{}, err
	}

	idHash := hashing.CalculateFromStr(documentID)
	events, err := a.ledger.Events(ctx, org.ContractAddress, org.DeployBlock, &idHash)
	if err != nil {
		return History{}, wrapLedgerErr(err)
	}
	if len(events) == 0 {
		return History{}, ErrNotFound
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	})

	return History{
		OrgName:         org.Name,
		OrgChainAddress: org.ChainAddress,
		ContractAddress: org.ContractAddress,
		Entries:         events,
	}, nil
}

// NotarizationSummary is one end of the organization's timeline
type NotarizationSummary struct {
	DocumentHash string
	Timestamp    uint64
}

// Stats are the organization-wide notarization counters
type Stats struct {
	OrgName            string
	OrgChainAddress    string
	ContractAddress    string
	TotalNotarizations int
	First              *NotarizationSummary
	Latest             *NotarizationSummary
}

func (a App) GetStats(ctx context.Context, user model.User) (Stats, error) {
	org, err := a.orgContract(ctx, user)
	if err != nil {
		return Stats{}, err
	}

	events, err := a.ledger.Events(ctx, org.ContractAddress, org.DeployBlock, nil)
	if err != nil {
		return Stats{}, wrapLedgerErr(err)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	})

	stats := Stats{
		OrgName:            org.Name,
		OrgChainAddress:    org.ChainAddress,
		ContractAddress:    org.ContractAddress,
		TotalNotarizations: len(events),
	}

	if len(events) > 0 {
		first := events[0]
		latest := events[len(events)-1]
		stats.First = &NotarizationSummary{DocumentHash: first.DocumentHash, Timestamp: first.Timestamp}
		stats.Latest = &NotarizationSummary{DocumentHash: latest.DocumentHash, Timestamp: latest.Timestamp}
	}

	return stats, nil
}

// UserActivities lists the organization's notarizations submitted from the
// caller's own wallet address
func (a App) UserActivities(ctx context.Context, user model.User) ([]model.NotarizationEvent, error) {
	if user.WalletAddress == "" {
		return nil, ErrNoWalletAddress
	}

	org, err := a.orgContract(ctx, user)
	if err != nil {
		return nil, err
	}

	events, err := a.ledger.Events(ctx, org.ContractAddress, org.DeployBlock, nil)
	if err != nil {
		return nil, wrapLedgerErr(err)
	}

	activities := make([]model.NotarizationEvent, 0, len(events))
	for _, event := range events {
		if event.Sender == user.WalletAddress {
			activities = append(activities, event)
		}
	}

	sort.Slice(activities, func(i, j int) bool {
		return activities[i].Timestamp > activities[j].Timestamp
	})

	return activities, nil
}

// DownloadDocument returns the most recently committed copy of a document.
// The identifier may be the original documentId string or its 0x id hash.
func (a App) DownloadDocument(ctx context.Context, user model.User, documentID string) (model.Document, error) {
	if documentID == "" {
		return model.Document{}, ErrInvalidInput
	}

	idHash := hashing.CalculateFromStr(documentID)
	key := hashing.Hex(idHash)
	if parsed, ok := hashing.ParseHex(documentID); ok {
		key = hashing.Hex(parsed)
	}

	doc, err := a.db.GetLatestDocument(ctx, user.OrganizationID, key)
	if errors.Is(err, model.ErrNotFound) {
		return model.Document{}, ErrNotFound
	}
	if err != nil {
		return model.Document{}, err
	}

	a.logger.Debug("serving a document download",
		zap.String("idHash", key), zap.String("orgID", user.OrganizationID))

	return doc, nil
}
