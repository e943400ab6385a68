package indexer

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
)

const maxBlockLine = 64 * 1024 * 1024

// JSONLBlockSource reads blocks written by the fetch command.
type JSONLBlockSource struct {
	path      string
	batchSize int

	file    *os.File
	scanner *bufio.Scanner
	line    int
	done    bool
}

func NewJSONLBlockSource(path string, batchSize int) *JSONLBlockSource {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &JSONLBlockSource{path: path, batchSize: batchSize}
}

// Next returns up to batchSize blocks, or io.EOF when the file is exhausted.
func (s *JSONLBlockSource) Next(ctx context.Context) ([]model.Block, error) {
	if s.done {
		return nil, io.EOF
	}
	if s.scanner == nil {
		file, err := os.Open(s.path)
		if err != nil {
			return nil, fmt.Errorf("open blocks file: %w", err)
		}
		s.file = file
		s.scanner = bufio.NewScanner(file)
		s.scanner.Buffer(make([]byte, 0, 1024*1024), maxBlockLine)
	}

	blocks := make([]model.Block, 0, s.batchSize)
	for len(blocks) < s.batchSize && s.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.line++
		raw := s.scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var block model.Block
		if err := json.Unmarshal(raw, &block); err != nil {
			return nil, fmt.Errorf("parse block line %d: %w", s.line, err)
		}
		blocks = append(blocks, block)
	}
	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read blocks file: %w", err)
	}
	if len(blocks) < s.batchSize {
		s.done = true
		s.Close()
	}
	if len(blocks) == 0 {
		return nil, io.EOF
	}
	return blocks, nil
}

// Close releases the underlying file.
func (s *JSONLBlockSource) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
