package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/chain"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
)

// BlockFetcher is the subset of the chain client the RPC source needs.
type BlockFetcher interface {
	LatestSlot(ctx context.Context) (uint64, error)
	Block(ctx context.Context, slot uint64) (*rpc.GetBlockResult, error)
}

// SourceConfig holds the slot walk settings.
type SourceConfig struct {
	FromSlot     uint64
	ToSlot       uint64
	ProgramID    string
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
}

// RPCBlockSource walks a slot range over JSON-RPC, one batch of slots per call.
type RPCBlockSource struct {
	cfg    SourceConfig
	chain  BlockFetcher
	logger *zap.Logger

	ranges []SlotRange
	next   int
	ready  bool
}

func NewRPCBlockSource(cfg SourceConfig, chainClient BlockFetcher, logger *zap.Logger) *RPCBlockSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RPCBlockSource{cfg: cfg, chain: chainClient, logger: logger}
}

// Next returns the program's blocks of the next non-empty slot range, or io.EOF.
func (s *RPCBlockSource) Next(ctx context.Context) ([]model.Block, error) {
	for {
		_, blocks, err := s.NextRange(ctx)
		if err != nil {
			return nil, err
		}
		if len(blocks) > 0 {
			return blocks, nil
		}
	}
}

// NextRange fetches the next slot range. Skipped slots and slots without
// program activity yield no block.
func (s *RPCBlockSource) NextRange(ctx context.Context) (SlotRange, []model.Block, error) {
	if err := s.init(ctx); err != nil {
		return SlotRange{}, nil, err
	}
	if s.next >= len(s.ranges) {
		return SlotRange{}, nil, io.EOF
	}
	slotRange := s.ranges[s.next]

	s.logger.Info("fetch slots", zap.Uint64("from", slotRange.From), zap.Uint64("to", slotRange.To))

	var blocks []model.Block
	for slot := slotRange.From; slot <= slotRange.To; slot++ {
		select {
		case <-ctx.Done():
			return SlotRange{}, nil, ctx.Err()
		default:
		}

		res, err := s.blockWithRetry(ctx, slot)
		if err != nil {
			return SlotRange{}, nil, fmt.Errorf("get block %d: %w", slot, err)
		}
		if res == nil {
			continue
		}
		block, err := buildBlock(slot, res, s.cfg.ProgramID)
		if err != nil {
			return SlotRange{}, nil, err
		}
		if len(block.Instructions) == 0 && len(block.Logs) == 0 {
			continue
		}
		blocks = append(blocks, block)
	}
	s.next++
	return slotRange, blocks, nil
}

// Skip drops ranges ending at or before slot.
func (s *RPCBlockSource) Skip(ctx context.Context, slot uint64) error {
	if err := s.init(ctx); err != nil {
		return err
	}
	for s.next < len(s.ranges) && s.ranges[s.next].To <= slot {
		s.next++
	}
	if s.next < len(s.ranges) && s.ranges[s.next].From <= slot {
		s.ranges[s.next].From = slot + 1
	}
	return nil
}

func (s *RPCBlockSource) init(ctx context.Context) error {
	if s.ready {
		return nil
	}
	if s.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if s.cfg.ProgramID == "" {
		return fmt.Errorf("program id is required")
	}
	to := s.cfg.ToSlot
	if to == 0 {
		latest, err := s.chain.LatestSlot(ctx)
		if err != nil {
			return fmt.Errorf("get latest slot: %w", err)
		}
		to = latest
	}
	if s.cfg.FromSlot > to {
		s.logger.Info("nothing to sync", zap.Uint64("from", s.cfg.FromSlot), zap.Uint64("to", to))
		s.ready = true
		return nil
	}
	ranges, err := SplitSlots(s.cfg.FromSlot, to, s.cfg.BatchSize)
	if err != nil {
		return err
	}
	s.ranges = ranges
	s.ready = true
	return nil
}

func (s *RPCBlockSource) blockWithRetry(ctx context.Context, slot uint64) (*rpc.GetBlockResult, error) {
	var res *rpc.GetBlockResult
	err := withRetry(ctx, s.cfg.MaxRetries, s.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		res, err = s.chain.Block(ctx, slot)
		if errors.Is(err, chain.ErrSlotSkipped) {
			res = nil
			return nil
		}
		if err != nil {
			s.logger.Warn("get block failed", zap.Error(err), zap.Uint64("slot", slot))
		}
		return err
	})
	return res, err
}
