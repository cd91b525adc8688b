package ledger

import (
	"context"
	"errors"
	"math/big"

	"notary-backend/internal/model"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Events reads all DocumentNotarized entries of the contract starting at
// fromBlock. When idHash is given, the query is narrowed to that id on the
// node side through the indexed topic.
func (c *Client) Events(ctx context.Context, contract string, fromBlock uint64, idHash *[32]byte) ([]model.NotarizationEvent, error) {
	event := c.abi.Events[eventDocumentNotarized]

	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		Addresses: []common.Address{common.HexToAddress(contract)},
		Topics:    [][]common.Hash{{event.ID}},
	}
	if idHash != nil {
		// topic positions: [signature, sender, idHash]
		query.Topics = append(query.Topics, nil, []common.Hash{common.BytesToHash(idHash[:])})
	}

	logs, err := c.eth.FilterLogs(ctx, query)
	if err != nil {
		return nil, errors.New("failed to query the notarization events: " + err.Error())
	}

	events := make([]model.NotarizationEvent, 0, len(logs))
	for _, log := range logs {
		decoded, err := c.decodeEvent(log)
		if err != nil {
			return nil, err
		}
		events = append(events, decoded)
	}

	return events, nil
}

func (c *Client) decodeEvent(log types.Log) (model.NotarizationEvent, error) {
	if len(log.Topics) != 3 {
		return model.NotarizationEvent{}, errors.New("unexpected topic count in a notarization event")
	}

	values, err := c.abi.Unpack(eventDocumentNotarized, log.Data)
	if err != nil {
		return model.NotarizationEvent{}, errors.New("failed to unpack a notarization event: " + err.Error())
	}
	if len(values) != 2 {
		return model.NotarizationEvent{}, errors.New("unexpected data length in a notarization event")
	}

	docHash, ok := values[0].([32]byte)
	if !ok {
		return model.NotarizationEvent{}, errors.New("unexpected documentHash type in a notarization event")
	}
	timestamp, ok := values[1].(*big.Int)
	if !ok {
		return model.NotarizationEvent{}, errors.New("unexpected timestamp type in a notarization event")
	}

	return model.NotarizationEvent{
		Sender:       common.BytesToAddress(log.Topics[1].Bytes()).Hex(),
		IDHash:       log.Topics[2].Hex(),
		DocumentHash: common.Hash(docHash).Hex(),
		Timestamp:    timestamp.Uint64(),
		TxHash:       log.TxHash.Hex(),
		BlockNumber:  log.BlockNumber,
	}, nil
}
