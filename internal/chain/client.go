package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

var (
	// ErrAccountNotFound is returned when an account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrSlotSkipped is returned for slots without a produced block.
	ErrSlotSkipped = errors.New("slot skipped")
)

// RPC error codes meaning the slot has no block.
var skippedSlotCodes = map[int]struct{}{
	-32004: {},
	-32007: {},
	-32009: {},
}

// Client wraps the Solana JSON-RPC client and provides helper methods.
type Client struct {
	rpcClient  *rpc.Client
	commitment rpc.CommitmentType
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(rpcURL string, commitment string) (*Client, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	c := rpc.CommitmentType(commitment)
	switch c {
	case rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	case "":
		c = rpc.CommitmentFinalized
	default:
		return nil, fmt.Errorf("unsupported commitment: %s", commitment)
	}

	return &Client{
		rpcClient:  rpc.New(rpcURL),
		commitment: c,
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		_ = c.rpcClient.Close()
	}
}

// LatestSlot returns the latest slot at the client commitment.
func (c *Client) LatestSlot(ctx context.Context) (uint64, error) {
	return c.rpcClient.GetSlot(ctx, c.commitment)
}

// AccountData returns the raw data of an account.
func (c *Client) AccountData(ctx context.Context, address string) ([]byte, error) {
	pubkey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("invalid account %s: %w", address, err)
	}

	out, err := c.rpcClient.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{Commitment: c.commitment})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if out == nil || out.Value == nil || out.Value.Data == nil {
		return nil, ErrAccountNotFound
	}
	return out.Value.Data.GetBinary(), nil
}

// Block returns the full block at slot, or ErrSlotSkipped.
func (c *Client) Block(ctx context.Context, slot uint64) (*rpc.GetBlockResult, error) {
	maxVersion := uint64(0)
	rewards := false
	out, err := c.rpcClient.GetBlockWithOpts(ctx, slot, &rpc.GetBlockOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     c.commitment,
		TransactionDetails:             rpc.TransactionDetailsFull,
		Rewards:                        &rewards,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		if isSkippedSlot(err) {
			return nil, ErrSlotSkipped
		}
		return nil, err
	}
	if out == nil {
		return nil, ErrSlotSkipped
	}
	return out, nil
}

func isSkippedSlot(err error) bool {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return false
	}
	_, ok := skippedSlotCodes[rpcErr.Code]
	return ok
}
