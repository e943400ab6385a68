package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/config"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/dex"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/indexer"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
)

func runDecode(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDecode(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}
	if cfg.Errors == "" {
		return fmt.Errorf("errors path is required")
	}
	program, err := indexer.ParsePubkey(cfg.Program)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := indexer.NewJSONLBlockSource(cfg.In, 100)
	defer source.Close()

	outWriter, err := newJSONLWriter(cfg.Out, false)
	if err != nil {
		return err
	}
	defer outWriter.Close()

	errWriter, err := newJSONLWriter(cfg.Errors, false)
	if err != nil {
		return err
	}
	defer errWriter.Close()

	logger.Info("decode start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
		zap.String("program", program.String()),
	)

	d := &blockDecoder{codec: dex.NewCodec(program.String()), out: outWriter, errs: errWriter}
	for {
		blocks, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		for _, block := range blocks {
			if err := d.decodeBlock(block); err != nil {
				return err
			}
		}
	}

	logger.Info("decode complete",
		zap.Int("total", d.total),
		zap.Int("decoded", d.decoded),
		zap.Int("skipped", d.skipped),
		zap.Int("failed", d.failed),
	)

	return nil
}

// blockDecoder writes every decodable instruction and log of a block.
type blockDecoder struct {
	codec *dex.Codec
	out   *jsonlWriter
	errs  *jsonlWriter

	total, decoded, skipped, failed int
}

func (d *blockDecoder) decodeBlock(block model.Block) error {
	for i, ix := range block.Instructions {
		if ix.ProgramID != d.codec.ProgramID() {
			continue
		}
		d.total++
		decoded, ok, err := d.codec.DecodeInstruction(ix)
		if err != nil {
			d.failed++
			writeDecodeError(d.errs, decodeErrorFromBlock(block, ix.TxSignature, model.SourceInstruction, i, ix.ProgramID, err))
			continue
		}
		if !ok {
			d.skipped++
			continue
		}
		if err := d.out.Write(typedEvent(block, ix.TxSignature, model.SourceInstruction, i, ix.ProgramID, decoded.InstructionName(), decoded)); err != nil {
			return err
		}
		d.decoded++
	}

	for _, l := range block.Logs {
		d.total++
		event, ok := d.codec.TryDecodeLog(l)
		if !ok {
			d.skipped++
			continue
		}
		if err := d.out.Write(typedEvent(block, l.TxSignature, model.SourceLog, l.LogIndex, l.ProgramID, event.EventName(), event)); err != nil {
			return err
		}
		d.decoded++
	}
	return nil
}

func typedEvent(block model.Block, txSignature, source string, index int, programID, name string, decoded interface{}) model.TypedEvent {
	return model.TypedEvent{
		BlockHeight: block.Height,
		Slot:        block.Slot,
		BlockHash:   block.Hash,
		TxSignature: txSignature,
		Source:      source,
		Index:       index,
		ProgramID:   programID,
		Name:        name,
		Timestamp:   block.Timestamp,
		Decoded:     decoded,
	}
}

type jsonlWriter struct {
	file   *os.File
	writer *bufio.Writer
}

func newJSONLWriter(path string, appendMode bool) (*jsonlWriter, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir: %w", err)
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	return &jsonlWriter{
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

func (w *jsonlWriter) Write(value interface{}) error {
	line, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if _, err := w.writer.Write(line); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	return nil
}

func (w *jsonlWriter) Close() error {
	if w == nil {
		return nil
	}
	if err := w.writer.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

func decodeErrorFromBlock(block model.Block, txSignature, source string, index int, programID string, err error) model.DecodeError {
	return model.DecodeError{
		BlockHeight: block.Height,
		Slot:        block.Slot,
		TxSignature: txSignature,
		Source:      source,
		Index:       index,
		ProgramID:   programID,
		Error:       err.Error(),
	}
}

func writeDecodeError(writer *jsonlWriter, errRecord model.DecodeError) {
	if writer == nil {
		return
	}
	_ = writer.Write(errRecord)
}
