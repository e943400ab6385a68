package model

// DecodeError records a decode failure for an instruction or log line.
type DecodeError struct {
	BlockHeight uint64 `json:"block_height"`
	Slot        uint64 `json:"slot"`
	TxSignature string `json:"tx_signature"`
	Source      string `json:"source"`
	Index       int    `json:"index"`
	ProgramID   string `json:"program_id"`
	Error       string `json:"error"`
}
