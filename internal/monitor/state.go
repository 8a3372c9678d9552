package monitor

import (
	"math/big"

	"github.com/google/uuid"
)

// State is the monitor's position in the commit-reveal cycle.
type State int

const (
	// StateIdle holds no commitment.
	StateIdle State = iota
	// StateCommitted holds a confirmed commitment waiting to be revealed.
	StateCommitted
	// StateResolving has a reveal transaction in flight.
	StateResolving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCommitted:
		return "committed"
	case StateResolving:
		return "resolving"
	default:
		return "unknown"
	}
}

// Action is what HandleBlock did for a block.
type Action int

const (
	ActionNone Action = iota
	ActionCommit
	ActionReveal
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionCommit:
		return "commit"
	case ActionReveal:
		return "reveal"
	default:
		return "unknown"
	}
}

// Commitment is the secret behind a confirmed on-chain commit. It only ever
// lives in memory.
type Commitment struct {
	Round       uuid.UUID
	LotteryID   uint32
	Preimage    *big.Int
	Hash        *big.Int
	CommitBlock uint64
}

func (c *Commitment) clone() *Commitment {
	if c == nil {
		return nil
	}
	return &Commitment{
		Round:       c.Round,
		LotteryID:   c.LotteryID,
		Preimage:    new(big.Int).Set(c.Preimage),
		Hash:        new(big.Int).Set(c.Hash),
		CommitBlock: c.CommitBlock,
	}
}
