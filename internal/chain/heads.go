package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
)

// Head source modes.
const (
	ModeAuto      = "auto"
	ModeSubscribe = "subscribe"
	ModePoll      = "poll"
)

// DefaultPollInterval is used when no interval is configured.
const DefaultPollInterval = 4 * time.Second

// ErrUnknownMode is returned for an unrecognised head source mode.
var ErrUnknownMode = errors.New("chain: unknown head mode")

// HeadReader is the part of ethclient.Client the head source needs.
type HeadReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
	SubscribeNewHead(ctx context.Context, ch chan<- *types.Header) (ethereum.Subscription, error)
}

// ValidMode reports whether mode names a head source mode.
func ValidMode(mode string) bool {
	switch mode {
	case ModeAuto, ModeSubscribe, ModePoll:
		return true
	}
	return false
}

// Heads emits new block numbers, either from a newHeads subscription or by
// polling eth_blockNumber.
type Heads struct {
	reader   HeadReader
	mode     string
	interval time.Duration
	logger   *slog.Logger
}

// NewHeads creates a head source. An empty mode means ModeAuto and a
// non-positive interval means DefaultPollInterval.
func NewHeads(reader HeadReader, mode string, interval time.Duration, logger *slog.Logger) (*Heads, error) {
	if mode == "" {
		mode = ModeAuto
	}
	if !ValidMode(mode) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Heads{reader: reader, mode: mode, interval: interval, logger: logger}, nil
}

// Run sends block numbers to out until ctx is done. Numbers are strictly
// increasing. In auto mode a missing or failed subscription falls back to
// polling for the rest of the run. Run closes out before returning.
func (h *Heads) Run(ctx context.Context, out chan<- uint64) error {
	defer close(out)

	var last uint64
	if h.mode != ModePoll {
		err := h.subscribe(ctx, out, &last)
		if ctx.Err() != nil {
			return nil
		}
		if h.mode == ModeSubscribe {
			return err
		}
		h.logger.Warn("head subscription unavailable, polling instead",
			slog.String("error", err.Error()),
			slog.Duration("interval", h.interval),
		)
	}

	return h.poll(ctx, out, &last)
}

func (h *Heads) subscribe(ctx context.Context, out chan<- uint64, last *uint64) error {
	headers := make(chan *types.Header, 16)
	sub, err := h.reader.SubscribeNewHead(ctx, headers)
	if err != nil {
		return fmt.Errorf("subscribe new heads: %w", err)
	}
	defer sub.Unsubscribe()

	h.logger.Info("subscribed to new heads")

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			if err == nil {
				return errors.New("head subscription closed")
			}
			return fmt.Errorf("head subscription: %w", err)
		case header := <-headers:
			if header == nil || header.Number == nil {
				continue
			}
			if !h.emit(ctx, out, last, header.Number.Uint64()) {
				return nil
			}
		}
	}
}

func (h *Heads) poll(ctx context.Context, out chan<- uint64, last *uint64) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		number, err := h.reader.BlockNumber(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			h.logger.Error("poll block number", slog.String("error", err.Error()))
		} else if !h.emit(ctx, out, last, number) {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// emit forwards number if it advances past last. It returns false once ctx
// is done.
func (h *Heads) emit(ctx context.Context, out chan<- uint64, last *uint64, number uint64) bool {
	if number <= *last {
		return true
	}
	select {
	case out <- number:
		*last = number
		return true
	case <-ctx.Done():
		return false
	}
}
