package model

// TypedEvent is a decoded instruction or event written by the decode command.
type TypedEvent struct {
	BlockHeight uint64      `json:"block_height"`
	Slot        uint64      `json:"slot"`
	BlockHash   string      `json:"block_hash"`
	TxSignature string      `json:"tx_signature"`
	Source      string      `json:"source"`
	Index       int         `json:"index"`
	ProgramID   string      `json:"program_id"`
	Name        string      `json:"name"`
	Timestamp   int64       `json:"timestamp"`
	Decoded     interface{} `json:"decoded"`
}

// Sources of a TypedEvent.
const (
	SourceInstruction = "instruction"
	SourceLog         = "log"
)
