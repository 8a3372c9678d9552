// Package lottery talks to the deployed lottery contract: read-only phase
// queries plus the commit and reveal transactions of the resolution protocol.
package lottery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// DefaultTxTimeout bounds how long a single receipt wait may take.
const DefaultTxTimeout = 5 * time.Minute

// Sentinel errors
var (
	ErrTxReverted    = errors.New("lottery: transaction reverted")
	ErrNilTransactor = errors.New("lottery: transactor is required")
)

// Backend is everything the client needs from an RPC connection.
// *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Client wraps the generated binding with context-aware calls and
// confirmed transactions.
type Client struct {
	address  common.Address
	contract *Lottery
	backend  bind.DeployBackend
	auth     *bind.TransactOpts
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithTxTimeout sets the receipt wait timeout. Zero disables it.
func WithTxTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger used for transaction events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient binds the lottery contract at address.
func NewClient(address common.Address, backend Backend, auth *bind.TransactOpts, opts ...Option) (*Client, error) {
	if auth == nil || auth.Signer == nil {
		return nil, ErrNilTransactor
	}

	contract, err := NewLottery(address, backend)
	if err != nil {
		return nil, fmt.Errorf("bind lottery contract: %w", err)
	}

	c := &Client{
		address:  address,
		contract: contract,
		backend:  backend,
		auth:     auth,
		timeout:  DefaultTxTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Address returns the contract address.
func (c *Client) Address() common.Address {
	return c.address
}

// From returns the account that signs commit and reveal transactions.
func (c *Client) From() common.Address {
	return c.auth.From
}

// InResolution reports whether the lottery is waiting for a reveal.
func (c *Client) InResolution(ctx context.Context) (bool, error) {
	ok, err := c.contract.InResolution(c.callOpts(ctx))
	if err != nil {
		return false, fmt.Errorf("call inResolution: %w", err)
	}
	return ok, nil
}

// LotteryID returns the id of the current lottery.
func (c *Client) LotteryID(ctx context.Context) (uint32, error) {
	id, err := c.contract.LotteryId(c.callOpts(ctx))
	if err != nil {
		return 0, fmt.Errorf("call lotteryId: %w", err)
	}
	return id, nil
}

// StartTime returns the unix start time recorded for lottery id.
func (c *Client) StartTime(ctx context.Context, id uint32) (*big.Int, error) {
	start, err := c.contract.StartTimes(c.callOpts(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("call startTimes(%d): %w", id, err)
	}
	return start, nil
}

// Duration returns the fixed lottery duration in seconds.
func (c *Client) Duration(ctx context.Context) (*big.Int, error) {
	d, err := c.contract.DURATION(c.callOpts(ctx))
	if err != nil {
		return nil, fmt.Errorf("call DURATION: %w", err)
	}
	return d, nil
}

// CommitterStake returns the value that must accompany a commit.
func (c *Client) CommitterStake(ctx context.Context) (*big.Int, error) {
	stake, err := c.contract.COMMITTERSTAKE(c.callOpts(ctx))
	if err != nil {
		return nil, fmt.Errorf("call COMMITTER_STAKE: %w", err)
	}
	return stake, nil
}

// Commit submits commitValueAndStartResolution(hash) paying stake and waits
// for the receipt.
func (c *Client) Commit(ctx context.Context, hash, stake *big.Int) (*types.Receipt, error) {
	tx, err := c.contract.CommitValueAndStartResolution(c.transactOpts(ctx, stake), hash)
	if err != nil {
		return nil, fmt.Errorf("send commitValueAndStartResolution: %w", err)
	}
	return c.waitMined(ctx, "commitValueAndStartResolution", tx)
}

// Reveal submits revealValueAndResolveLottery(preimage) and waits for the
// receipt.
func (c *Client) Reveal(ctx context.Context, preimage *big.Int) (*types.Receipt, error) {
	tx, err := c.contract.RevealValueAndResolveLottery(c.transactOpts(ctx, nil), preimage)
	if err != nil {
		return nil, fmt.Errorf("send revealValueAndResolveLottery: %w", err)
	}
	return c.waitMined(ctx, "revealValueAndResolveLottery", tx)
}

func (c *Client) callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx, From: c.auth.From}
}

// transactOpts copies the signing identity so concurrent callers never share
// a mutable TransactOpts.
func (c *Client) transactOpts(ctx context.Context, value *big.Int) *bind.TransactOpts {
	return &bind.TransactOpts{
		From:    c.auth.From,
		Signer:  c.auth.Signer,
		Context: ctx,
		Value:   value,
	}
}

func (c *Client) waitMined(ctx context.Context, method string, tx *types.Transaction) (*types.Receipt, error) {
	c.logger.Info("transaction submitted",
		slog.String("method", method),
		slog.String("tx_hash", tx.Hash().Hex()),
	)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("wait for %s receipt %s: %w", method, tx.Hash().Hex(), err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%s %s: %w", method, tx.Hash().Hex(), ErrTxReverted)
	}

	c.logger.Info("transaction confirmed",
		slog.String("method", method),
		slog.String("tx_hash", tx.Hash().Hex()),
		slog.Uint64("block", receipt.BlockNumber.Uint64()),
		slog.Uint64("gas_used", receipt.GasUsed),
	)

	return receipt, nil
}
