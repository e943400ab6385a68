package indexer

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mr-tron/base58"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
)

const (
	logInvokePrefix = "Program "
	logDataPrefix   = "Program data: "
)

// executedInstruction is one instruction in execution order, outer or inner.
type executedInstruction struct {
	programID string
	accounts  []string
	data      []byte
	index     int
}

// buildBlock reduces a block to the instructions and program data logs of programID.
func buildBlock(slot uint64, res *rpc.GetBlockResult, programID string) (model.Block, error) {
	block := model.Block{
		Height: slot,
		Slot:   slot,
		Hash:   res.Blockhash.String(),
	}
	if res.BlockHeight != nil {
		block.Height = *res.BlockHeight
	}
	if res.BlockTime != nil {
		block.Timestamp = int64(*res.BlockTime)
	}

	for txIndex, txWithMeta := range res.Transactions {
		if txWithMeta.Meta == nil {
			continue
		}
		tx, err := txWithMeta.GetTransaction()
		if err != nil {
			return model.Block{}, fmt.Errorf("decode transaction %d in slot %d: %w", txIndex, slot, err)
		}
		if err := appendTransaction(&block, txIndex, tx, txWithMeta.Meta, programID); err != nil {
			return model.Block{}, fmt.Errorf("slot %d tx %d: %w", slot, txIndex, err)
		}
	}
	return block, nil
}

func appendTransaction(block *model.Block, txIndex int, tx *solana.Transaction, meta *rpc.TransactionMeta, programID string) error {
	keys := resolveAccountKeys(tx, meta)
	signature := ""
	if len(tx.Signatures) > 0 {
		signature = tx.Signatures[0].String()
	}
	failed := meta.Err != nil

	executed, err := executionOrder(tx, meta, keys)
	if err != nil {
		return err
	}

	for _, ix := range executed {
		if ix.programID != programID {
			continue
		}
		block.Instructions = append(block.Instructions, model.Instruction{
			ProgramID:   ix.programID,
			TxSignature: signature,
			TxIndex:     txIndex,
			Index:       ix.index,
			Accounts:    ix.accounts,
			Data:        base58.Encode(ix.data),
			Committed:   true,
			Failed:      failed,
		})
	}

	logID := model.LogID(block.Height, txIndex)
	for _, attributed := range attributeLogs(meta.LogMessages, executed) {
		if attributed.programID != programID {
			continue
		}
		block.Logs = append(block.Logs, model.LogMessage{
			ID:                  logID,
			ProgramID:           attributed.programID,
			TxSignature:         signature,
			TxIndex:             txIndex,
			LogIndex:            attributed.line,
			Message:             attributed.payload,
			InstructionAccounts: attributed.accounts,
			TxFailed:            failed,
		})
	}
	return nil
}

// resolveAccountKeys returns static keys followed by loaded writable then readonly keys.
func resolveAccountKeys(tx *solana.Transaction, meta *rpc.TransactionMeta) []string {
	keys := make([]string, 0, len(tx.Message.AccountKeys)+len(meta.LoadedAddresses.Writable)+len(meta.LoadedAddresses.ReadOnly))
	for _, key := range tx.Message.AccountKeys {
		keys = append(keys, key.String())
	}
	for _, key := range meta.LoadedAddresses.Writable {
		keys = append(keys, key.String())
	}
	for _, key := range meta.LoadedAddresses.ReadOnly {
		keys = append(keys, key.String())
	}
	return keys
}

// executionOrder flattens outer instructions and their inner instructions.
func executionOrder(tx *solana.Transaction, meta *rpc.TransactionMeta, keys []string) ([]executedInstruction, error) {
	inner := make(map[int][]executedInstruction, len(meta.InnerInstructions))
	for _, group := range meta.InnerInstructions {
		for _, ix := range group.Instructions {
			resolved, err := resolveInstruction(keys, int(ix.ProgramIDIndex), ix.Accounts, ix.Data)
			if err != nil {
				return nil, err
			}
			resolved.index = int(group.Index)
			inner[int(group.Index)] = append(inner[int(group.Index)], resolved)
		}
	}

	out := make([]executedInstruction, 0, len(tx.Message.Instructions))
	for i, ix := range tx.Message.Instructions {
		resolved, err := resolveInstruction(keys, int(ix.ProgramIDIndex), ix.Accounts, ix.Data)
		if err != nil {
			return nil, err
		}
		resolved.index = i
		out = append(out, resolved)
		out = append(out, inner[i]...)
	}
	return out, nil
}

func resolveInstruction(keys []string, programIdx int, accountIdx []uint16, data []byte) (executedInstruction, error) {
	if programIdx >= len(keys) {
		return executedInstruction{}, fmt.Errorf("program index %d out of range (%d keys)", programIdx, len(keys))
	}
	accounts := make([]string, len(accountIdx))
	for i, idx := range accountIdx {
		if int(idx) >= len(keys) {
			return executedInstruction{}, fmt.Errorf("account index %d out of range (%d keys)", idx, len(keys))
		}
		accounts[i] = keys[idx]
	}
	return executedInstruction{programID: keys[programIdx], accounts: accounts, data: data}, nil
}

type attributedLog struct {
	programID string
	accounts  []string
	payload   string
	line      int
}

// attributeLogs assigns every "Program data:" line to the program on top of
// the invoke stack. Each invoke line consumes the next executed instruction.
func attributeLogs(lines []string, executed []executedInstruction) []attributedLog {
	type frame struct {
		programID string
		accounts  []string
	}
	var (
		stack []frame
		next  int
		out   []attributedLog
	)
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, logDataPrefix):
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			out = append(out, attributedLog{
				programID: top.programID,
				accounts:  top.accounts,
				payload:   strings.TrimPrefix(line, logDataPrefix),
				line:      i,
			})
		case strings.HasPrefix(line, logInvokePrefix):
			fields := strings.Fields(strings.TrimPrefix(line, logInvokePrefix))
			if len(fields) < 2 {
				continue
			}
			switch {
			case fields[1] == "invoke":
				f := frame{programID: fields[0]}
				if next < len(executed) && executed[next].programID == fields[0] {
					f.accounts = executed[next].accounts
				}
				next++
				stack = append(stack, f)
			case fields[1] == "success" || strings.HasPrefix(fields[1], "failed"):
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
			}
		}
	}
	return out
}
