package chain

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"supplyscope/internal/model"
)

// KeyedAccount pairs an account address with its raw data bytes.
type KeyedAccount struct {
	Pubkey solana.PublicKey
	Data   []byte
}

// Client wraps a ledger JSON-RPC endpoint. Every query carries a bounded
// timeout; transport failures, parse failures, and timeouts all surface as
// model.ErrSourceUnavailable so callers substitute last-known-good values
// without distinguishing the cause.
type Client struct {
	name    string
	rpc     *rpc.Client
	timeout time.Duration
}

// NewClient builds a client for one ledger endpoint. The name tags error
// messages and log lines so the two ledgers stay distinguishable.
func NewClient(name, endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		name:    name,
		rpc:     rpc.New(endpoint),
		timeout: timeout,
	}
}

// Name returns the ledger tag this client was built with.
func (c *Client) Name() string { return c.name }

func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", model.ErrSourceUnavailable, c.name, op, err)
}

// NativeSupply returns the ledger's aggregate native token supply in raw units.
func (c *Client) NativeSupply(ctx context.Context) (uint64, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	out, err := c.rpc.GetSupply(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return 0, c.unavailable("getSupply", err)
	}
	if out == nil || out.Value == nil {
		return 0, c.unavailable("getSupply", fmt.Errorf("empty result"))
	}
	return out.Value.Total, nil
}

// MintSupply returns the total supply of a fungible token mint in raw units.
func (c *Client) MintSupply(ctx context.Context, mint solana.PublicKey) (uint64, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	out, err := c.rpc.GetTokenSupply(ctx, mint, rpc.CommitmentFinalized)
	if err != nil {
		return 0, c.unavailable("getTokenSupply", err)
	}
	if out == nil || out.Value == nil {
		return 0, c.unavailable("getTokenSupply", fmt.Errorf("empty result"))
	}
	amount, err := strconv.ParseUint(out.Value.Amount, 10, 64)
	if err != nil {
		return 0, c.unavailable("getTokenSupply", fmt.Errorf("parse amount %q: %v", out.Value.Amount, err))
	}
	return amount, nil
}

// Balance returns an address's native balance in raw units.
func (c *Client) Balance(ctx context.Context, addr solana.PublicKey) (uint64, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	out, err := c.rpc.GetBalance(ctx, addr, rpc.CommitmentFinalized)
	if err != nil {
		return 0, c.unavailable("getBalance", err)
	}
	if out == nil {
		return 0, c.unavailable("getBalance", fmt.Errorf("empty result"))
	}
	return out.Value, nil
}

// TokenBalance returns a token account's balance in raw units.
func (c *Client) TokenBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	out, err := c.rpc.GetTokenAccountBalance(ctx, account, rpc.CommitmentFinalized)
	if err != nil {
		return 0, c.unavailable("getTokenAccountBalance", err)
	}
	if out == nil || out.Value == nil {
		return 0, c.unavailable("getTokenAccountBalance", fmt.Errorf("empty result"))
	}
	amount, err := strconv.ParseUint(out.Value.Amount, 10, 64)
	if err != nil {
		return 0, c.unavailable("getTokenAccountBalance", fmt.Errorf("parse amount %q: %v", out.Value.Amount, err))
	}
	return amount, nil
}

// Account fetches one account's raw data bytes.
func (c *Client) Account(ctx context.Context, addr solana.PublicKey) ([]byte, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	out, err := c.rpc.GetAccountInfo(ctx, addr)
	if err != nil {
		return nil, c.unavailable("getAccountInfo", err)
	}
	if out == nil || out.Value == nil || out.Value.Data == nil {
		return nil, c.unavailable("getAccountInfo", fmt.Errorf("account %s has no data", addr))
	}
	return out.Value.Data.GetBinary(), nil
}

// ScanProgramAccounts lists all accounts owned by a program whose data is
// exactly dataSize bytes, returning (address, raw bytes) pairs.
func (c *Client) ScanProgramAccounts(ctx context.Context, program solana.PublicKey, dataSize uint64) ([]KeyedAccount, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	out, err := c.rpc.GetProgramAccountsWithOpts(ctx, program, &rpc.GetProgramAccountsOpts{
		Commitment: rpc.CommitmentFinalized,
		Filters: []rpc.RPCFilter{
			{DataSize: dataSize},
		},
	})
	if err != nil {
		return nil, c.unavailable("getProgramAccounts", err)
	}

	accounts := make([]KeyedAccount, 0, len(out))
	for _, keyed := range out {
		if keyed == nil || keyed.Account == nil || keyed.Account.Data == nil {
			continue
		}
		accounts = append(accounts, KeyedAccount{
			Pubkey: keyed.Pubkey,
			Data:   keyed.Account.Data.GetBinary(),
		})
	}
	return accounts, nil
}
