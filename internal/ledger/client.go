package ledger

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"notary-backend/internal/model"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

const (
	txGasLimit         = 200_000
	txGasPriceWei      = 1_000_000_000 // 1 gwei
	receiptPollPeriod  = time.Second
	defaultWaitTimeout = 90 * time.Second
)

// ErrTimeout is returned when a submitted transaction was not mined within
// the configured wait timeout
var ErrTimeout = errors.New("timed out waiting for the transaction to be mined")

// Client talks to the notary contract through a JSON-RPC node. Accounts are
// managed by the node; submissions are signed node-side.
type Client struct {
	logger      *zap.Logger
	rpc         *rpc.Client
	eth         *ethclient.Client
	abi         abi.ABI
	waitTimeout time.Duration

	// one mutex per sender account serializes nonce allocation and submission
	sendersMu sync.Mutex
	senders   map[common.Address]*sync.Mutex
}

func NewClient(logger *zap.Logger, rpcURL string, waitTimeout time.Duration) (*Client, error) {
	parsedABI, err := parseNotaryABI()
	if err != nil {
		return nil, err
	}

	rpcClient, err := rpc.Dial(rpcURL)
	if err != nil {
		return nil, errors.New("failed to dial the ledger node: " + err.Error())
	}

	if waitTimeout <= 0 {
		waitTimeout = defaultWaitTimeout
	}

	return &Client{
		logger:      logger,
		rpc:         rpcClient,
		eth:         ethclient.NewClient(rpcClient),
		abi:         parsedABI,
		waitTimeout: waitTimeout,
		senders:     make(map[common.Address]*sync.Mutex),
	}, nil
}

func (c *Client) Close() {
	c.rpc.Close()
}

// OriginalHash reads the first content hash ever anchored under idHash.
// An all-zero result means the id was never notarized.
func (c *Client) OriginalHash(ctx context.Context, contract string, idHash [32]byte) ([32]byte, error) {
	var original [32]byte

	result, err := c.callMapping(ctx, contract, "originalHash", idHash)
	if err != nil {
		return original, err
	}

	original, ok := result.([32]byte)
	if !ok {
		return original, errors.New("unexpected originalHash result type")
	}

	return original, nil
}

// Timestamp reads the timestamps mapping under an arbitrary bytes32 key
func (c *Client) Timestamp(ctx context.Context, contract string, key [32]byte) (uint64, error) {
	return c.callTimestamp(ctx, contract, "timestamps", key)
}

// FileTimestamp reads the registration time of a content hash
func (c *Client) FileTimestamp(ctx context.Context, contract string, docHash [32]byte) (uint64, error) {
	return c.callTimestamp(ctx, contract, "fileTimestamps", docHash)
}

func (c *Client) callTimestamp(ctx context.Context, contract, method string, key [32]byte) (uint64, error) {
	result, err := c.callMapping(ctx, contract, method, key)
	if err != nil {
		return 0, err
	}

	timestamp, ok := result.(*big.Int)
	if !ok {
		return 0, errors.New("unexpected " + method + " result type")
	}

	return timestamp.Uint64(), nil
}

func (c *Client) callMapping(ctx context.Context, contract, method string, key [32]byte) (interface{}, error) {
	data, err := c.abi.Pack(method, key)
	if err != nil {
		return nil, errors.New("failed to pack the " + method + " call: " + err.Error())
	}

	to := common.HexToAddress(contract)
	output, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, errors.New(method + " call failed: " + err.Error())
	}

	results, err := c.abi.Unpack(method, output)
	if err != nil {
		return nil, errors.New("failed to unpack the " + method + " result: " + err.Error())
	}
	if len(results) != 1 {
		return nil, errors.New("unexpected " + method + " result length")
	}

	return results[0], nil
}

// StoreDocumentHash submits the anchoring transaction from the given sender
// account and blocks until it is mined or the wait timeout expires.
// Submission is serialized per sender; the pending nonce is fetched inside
// the critical section so concurrent notarizations cannot race for it.
func (c *Client) StoreDocumentHash(ctx context.Context, contract, sender string, idHash, docHash [32]byte) (model.TxResult, error) {
	data, err := c.abi.Pack("storeDocumentHash", idHash, docHash)
	if err != nil {
		return model.TxResult{}, errors.New("failed to pack the storeDocumentHash call: " + err.Error())
	}

	from := common.HexToAddress(sender)

	lock := c.senderLock(from)
	lock.Lock()
	defer lock.Unlock()

	nonce, err := c.eth.PendingNonceAt(ctx, from)
	if err != nil {
		return model.TxResult{}, errors.New("failed to get the sender nonce: " + err.Error())
	}

	to := common.HexToAddress(contract)
	txArgs := map[string]interface{}{
		"from":     from,
		"to":       to,
		"gas":      hexutil.Uint64(txGasLimit),
		"gasPrice": (*hexutil.Big)(big.NewInt(txGasPriceWei)),
		"nonce":    hexutil.Uint64(nonce),
		"data":     hexutil.Bytes(data),
	}

	var txHash common.Hash
	if err := c.rpc.CallContext(ctx, &txHash, "eth_sendTransaction", txArgs); err != nil {
		return model.TxResult{}, errors.New("failed to submit the transaction: " + err.Error())
	}

	c.logger.Info("anchoring transaction submitted",
		zap.String("txHash", txHash.Hex()),
		zap.String("sender", from.Hex()),
		zap.Uint64("nonce", nonce))

	receipt, err := c.waitMined(ctx, txHash)
	if err != nil {
		return model.TxResult{}, err
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return model.TxResult{}, errors.New("transaction reverted: " + txHash.Hex())
	}

	return model.TxResult{
		TxHash:      txHash.Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

func (c *Client) waitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	deadline := time.Now().Add(c.waitTimeout)

	ticker := time.NewTicker(receiptPollPeriod)
	defer ticker.Stop()

	for {
		receipt, err := c.eth.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, errors.New("failed to get the transaction receipt: " + err.Error())
		}

		if time.Now().After(deadline) {
			return nil, ErrTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) senderLock(sender common.Address) *sync.Mutex {
	c.sendersMu.Lock()
	defer c.sendersMu.Unlock()

	lock, ok := c.senders[sender]
	if !ok {
		lock = &sync.Mutex{}
		c.senders[sender] = lock
	}

	return lock
}
