// Package monitor drives a lottery through commit and reveal, one block at a
// time.
package monitor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/Bidon15/lotteryresolver/internal/commitment"
	"github.com/Bidon15/lotteryresolver/internal/metrics"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
)

// Lottery is the contract surface the monitor uses. Commit and Reveal return
// once the transaction is confirmed.
type Lottery interface {
	InResolution(ctx context.Context) (bool, error)
	LotteryID(ctx context.Context) (uint32, error)
	StartTime(ctx context.Context, id uint32) (*big.Int, error)
	Duration(ctx context.Context) (*big.Int, error)
	CommitterStake(ctx context.Context) (*big.Int, error)
	Commit(ctx context.Context, hash, stake *big.Int) (*types.Receipt, error)
	Reveal(ctx context.Context, preimage *big.Int) (*types.Receipt, error)
}

// Monitor owns the pending commitment. HandleBlock calls are serialised.
type Monitor struct {
	lottery Lottery
	clock   func() time.Time
	entropy io.Reader
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu      sync.Mutex
	state   State
	pending *Commitment
}

// Option configures the monitor.
type Option func(*Monitor)

// WithClock sets the wall clock used for the commit deadline.
func WithClock(clock func() time.Time) Option {
	return func(m *Monitor) {
		m.clock = clock
	}
}

// WithEntropy sets the source preimages are drawn from.
func WithEntropy(r io.Reader) Option {
	return func(m *Monitor) {
		m.entropy = r
	}
}

// WithMetrics sets the collectors to update.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Monitor) {
		m.metrics = mt
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// New creates an idle monitor for lottery.
func New(lottery Lottery, opts ...Option) *Monitor {
	m := &Monitor{
		lottery: lottery,
		clock:   time.Now,
		logger:  slog.Default(),
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.metrics.SetState(int(m.state))
	return m
}

// State returns the current state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Pending returns a copy of the pending commitment, or nil.
func (m *Monitor) Pending() *Commitment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending.clone()
}

// Run handles block numbers from heads one at a time until ctx is done or
// heads is closed. A backlog collapses to its newest block and numbers at or
// below the last handled block are skipped. Block errors are logged and do
// not stop the loop.
func (m *Monitor) Run(ctx context.Context, heads <-chan uint64) {
	m.logger.Info("lottery monitor started")
	defer m.logger.Info("lottery monitor stopped")

	var last uint64
	for {
		select {
		case <-ctx.Done():
			return
		case number, ok := <-heads:
			if !ok {
				return
			}
			number = latest(heads, number)
			if number <= last {
				continue
			}
			last = number

			action, err := m.HandleBlock(ctx, number)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				m.logger.Error("block handling failed",
					slog.Uint64("block", number),
					slog.String("state", m.State().String()),
					slog.String("error", err.Error()),
				)
				continue
			}
			if action != ActionNone {
				m.logger.Debug("block handled",
					slog.Uint64("block", number),
					slog.String("action", action.String()),
				)
			}
		}
	}
}

// latest drains whatever is already queued on heads and returns the highest
// block number seen.
func latest(heads <-chan uint64, number uint64) uint64 {
	for {
		select {
		case next, ok := <-heads:
			if !ok {
				return number
			}
			if next > number {
				number = next
			}
		default:
			return number
		}
	}
}

// HandleBlock advances the commit-reveal cycle for block number. Local state
// is only changed after a confirmed transaction.
func (m *Monitor) HandleBlock(ctx context.Context, number uint64) (Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.BlockProcessed(number)

	inResolution, err := m.lottery.InResolution(ctx)
	if err != nil {
		m.metrics.BlockError(metrics.StageRead)
		return ActionNone, fmt.Errorf("read lottery phase: %w", err)
	}

	if inResolution {
		return m.reveal(ctx, number)
	}
	return m.commit(ctx, number)
}

func (m *Monitor) reveal(ctx context.Context, number uint64) (Action, error) {
	if m.pending == nil {
		return ActionNone, nil
	}

	p := m.pending
	if number <= p.CommitBlock {
		m.logger.Debug("waiting for a block after the commit",
			slog.Uint64("block", number),
			slog.Uint64("commit_block", p.CommitBlock),
		)
		return ActionNone, nil
	}

	id, err := m.lottery.LotteryID(ctx)
	if err != nil {
		m.metrics.BlockError(metrics.StageRead)
		return ActionNone, fmt.Errorf("read lottery id: %w", err)
	}
	if id != p.LotteryID {
		// Another commitment holds a later lottery in resolution.
		m.drop(number, id)
		return ActionNone, nil
	}

	m.setState(StateResolving)
	m.logger.Info("revealing preimage",
		slog.Uint64("block", number),
		slog.String("round", p.Round.String()),
		slog.Uint64("lottery_id", uint64(p.LotteryID)),
		slog.Uint64("commit_block", p.CommitBlock),
	)

	receipt, err := m.lottery.Reveal(ctx, p.Preimage)
	if err != nil {
		m.setState(StateCommitted)
		m.metrics.BlockError(metrics.StageReveal)
		return ActionNone, fmt.Errorf("reveal round %s: %w", p.Round, err)
	}

	m.pending = nil
	m.setState(StateIdle)
	m.metrics.Revealed()

	attrs := []any{
		slog.String("round", p.Round.String()),
		slog.Uint64("lottery_id", uint64(p.LotteryID)),
	}
	if receipt != nil {
		attrs = append(attrs, slog.String("tx_hash", receipt.TxHash.Hex()))
	}
	m.logger.Info("revealed and resolved lottery", attrs...)
	return ActionReveal, nil
}

func (m *Monitor) commit(ctx context.Context, number uint64) (Action, error) {
	id, err := m.lottery.LotteryID(ctx)
	if err != nil {
		m.metrics.BlockError(metrics.StageRead)
		return ActionNone, fmt.Errorf("read lottery id: %w", err)
	}
	start, err := m.lottery.StartTime(ctx, id)
	if err != nil {
		m.metrics.BlockError(metrics.StageRead)
		return ActionNone, fmt.Errorf("read start time: %w", err)
	}
	duration, err := m.lottery.Duration(ctx)
	if err != nil {
		m.metrics.BlockError(metrics.StageRead)
		return ActionNone, fmt.Errorf("read duration: %w", err)
	}

	if p := m.pending; p != nil {
		if p.LotteryID == id && number <= p.CommitBlock {
			// Read from a block that predates our commit.
			m.logger.Debug("committed lottery still reported open",
				slog.Uint64("block", number),
				slog.Uint64("lottery_id", uint64(id)),
				slog.Uint64("commit_block", p.CommitBlock),
			)
			return ActionNone, nil
		}
		m.drop(number, id)
	}

	deadline := new(big.Int).Add(start, duration)
	now := big.NewInt(m.clock().Unix())
	if now.Cmp(deadline) < 0 {
		return ActionNone, nil
	}

	secret, err := commitment.New(m.entropy)
	if err != nil {
		m.metrics.BlockError(metrics.StageCommit)
		return ActionNone, fmt.Errorf("generate preimage: %w", err)
	}

	stake, err := m.lottery.CommitterStake(ctx)
	if err != nil {
		m.metrics.BlockError(metrics.StageRead)
		return ActionNone, fmt.Errorf("read committer stake: %w", err)
	}

	round := uuid.New()
	m.logger.Info("starting resolution",
		slog.Uint64("block", number),
		slog.Uint64("lottery_id", uint64(id)),
		slog.String("round", round.String()),
		slog.String("stake", stake.String()),
		slog.String("deadline", deadline.String()),
	)

	receipt, err := m.lottery.Commit(ctx, secret.Hash, stake)
	if err != nil {
		m.metrics.BlockError(metrics.StageCommit)
		return ActionNone, fmt.Errorf("commit lottery %d round %s: %w", id, round, err)
	}

	commitBlock := number
	if receipt != nil && receipt.BlockNumber != nil {
		commitBlock = receipt.BlockNumber.Uint64()
	}

	m.pending = &Commitment{
		Round:       round,
		LotteryID:   id,
		Preimage:    secret.Preimage,
		Hash:        secret.Hash,
		CommitBlock: commitBlock,
	}
	m.setState(StateCommitted)
	m.metrics.Committed(commitBlock)

	m.logger.Info("committed value",
		slog.String("round", round.String()),
		slog.Uint64("lottery_id", uint64(id)),
		slog.Uint64("commit_block", commitBlock),
	)
	return ActionCommit, nil
}

// drop discards a pending commitment that can no longer be revealed: the
// lottery it was made for has moved on, or the commit is no longer in effect
// and the lottery is open again.
func (m *Monitor) drop(number uint64, id uint32) {
	p := m.pending
	m.logger.Warn("dropping commitment that can no longer be revealed",
		slog.Uint64("block", number),
		slog.Uint64("committed_lottery_id", uint64(p.LotteryID)),
		slog.Uint64("lottery_id", uint64(id)),
		slog.Uint64("commit_block", p.CommitBlock),
		slog.String("round", p.Round.String()),
	)
	m.pending = nil
	m.setState(StateIdle)
	m.metrics.Dropped()
}

func (m *Monitor) setState(s State) {
	m.state = s
	m.metrics.SetState(int(s))
}
