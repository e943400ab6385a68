package model

import "fmt"

// Block is one confirmed slot, reduced to the target program's instructions
// and program-data logs.
type Block struct {
	Height       uint64        `json:"height"`
	Slot         uint64        `json:"slot"`
	Hash         string        `json:"hash"`
	Timestamp    int64         `json:"timestamp"`
	Instructions []Instruction `json:"instructions"`
	Logs         []LogMessage  `json:"logs"`
}

// Instruction is a top-level or inner instruction invoking a program.
// Data is base58 encoded, its first eight bytes are the discriminator.
type Instruction struct {
	ProgramID   string   `json:"program_id"`
	TxSignature string   `json:"tx_signature"`
	TxIndex     int      `json:"tx_index"`
	Index       int      `json:"index"`
	Accounts    []string `json:"accounts"`
	Data        string   `json:"data"`
	Committed   bool     `json:"committed"`
	Failed      bool     `json:"failed"`
}

// LogMessage is a "Program data:" line attributed to the program that emitted it.
// Message holds the base64 payload.
type LogMessage struct {
	ID                  string   `json:"id"`
	ProgramID           string   `json:"program_id"`
	TxSignature         string   `json:"tx_signature"`
	TxIndex             int      `json:"tx_index"`
	LogIndex            int      `json:"log_index"`
	Message             string   `json:"message"`
	InstructionAccounts []string `json:"instruction_accounts,omitempty"`
	TxFailed            bool     `json:"tx_failed,omitempty"`
}

// LogID returns the id shared by every log line of one transaction.
func LogID(height uint64, txIndex int) string {
	return fmt.Sprintf("%010d-%06d", height, txIndex)
}

// RecordID keys audit records derived from this log line.
func (l LogMessage) RecordID() string {
	return fmt.Sprintf("%s-%d", l.ID, l.LogIndex)
}
