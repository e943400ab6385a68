package reconcile

import "fmt"

// EpochError marks a failed epoch. Nothing of the epoch was flushed.
type EpochError struct {
	FromHeight uint64
	ToHeight   uint64
	Err        error
}

func (e *EpochError) Error() string {
	return fmt.Sprintf("epoch %d-%d: %v", e.FromHeight, e.ToHeight, e.Err)
}

func (e *EpochError) Unwrap() error {
	return e.Err
}

// BlockError locates a handler failure inside an epoch.
type BlockError struct {
	Height      uint64
	TxSignature string
	Err         error
}

func (e *BlockError) Error() string {
	if e.TxSignature == "" {
		return fmt.Sprintf("block %d: %v", e.Height, e.Err)
	}
	return fmt.Sprintf("block %d tx %s: %v", e.Height, e.TxSignature, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}
