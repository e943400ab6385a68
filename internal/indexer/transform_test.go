package indexer

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
)

func key(b byte) solana.PublicKey {
	var k solana.PublicKey
	for i := range k {
		k[i] = b
	}
	return k
}

func TestAppendTransactionAttributesProgramData(t *testing.T) {
	payer := key(1)
	router := key(2)
	program := key(3)
	pool := key(4)
	loaded := key(5)

	tx := &solana.Transaction{
		Signatures: []solana.Signature{{9}},
		Message: solana.Message{
			AccountKeys: solana.PublicKeySlice{payer, router, program, pool},
			Instructions: []solana.CompiledInstruction{
				{ProgramIDIndex: 1, Accounts: []uint16{0, 2}, Data: solana.Base58{0xaa}},
				{ProgramIDIndex: 2, Accounts: []uint16{0, 3, 4}, Data: solana.Base58{1, 2, 3}},
			},
		},
	}
	meta := &rpc.TransactionMeta{
		LoadedAddresses: rpc.LoadedAddresses{Writable: solana.PublicKeySlice{loaded}},
		InnerInstructions: []rpc.InnerInstruction{{
			Index: 0,
			Instructions: []solana.CompiledInstruction{
				{ProgramIDIndex: 2, Accounts: []uint16{3}, Data: solana.Base58{7}},
			},
		}},
		LogMessages: []string{
			"Program " + router.String() + " invoke [1]",
			"Program " + program.String() + " invoke [2]",
			"Program log: Instruction: Swap",
			"Program data: aW5uZXI=",
			"Program " + program.String() + " consumed 100 of 200 compute units",
			"Program " + program.String() + " success",
			"Program data: cm91dGVy",
			"Program " + router.String() + " success",
			"Program " + program.String() + " invoke [1]",
			"Program data: b3V0ZXI=",
			"Program " + program.String() + " success",
		},
	}

	block := model.Block{Height: 77}
	require.NoError(t, appendTransaction(&block, 3, tx, meta, program.String()))

	require.Len(t, block.Instructions, 2)
	innerIx := block.Instructions[0]
	assert.Equal(t, []string{pool.String()}, innerIx.Accounts)
	assert.Equal(t, 0, innerIx.Index)
	assert.Equal(t, base58.Encode([]byte{7}), innerIx.Data)
	outerIx := block.Instructions[1]
	assert.Equal(t, []string{payer.String(), pool.String(), loaded.String()}, outerIx.Accounts)
	assert.Equal(t, 1, outerIx.Index)
	assert.True(t, outerIx.Committed)
	assert.False(t, outerIx.Failed)

	require.Len(t, block.Logs, 2)
	assert.Equal(t, "aW5uZXI=", block.Logs[0].Message)
	assert.Equal(t, 3, block.Logs[0].LogIndex)
	assert.Equal(t, []string{pool.String()}, block.Logs[0].InstructionAccounts)
	assert.Equal(t, "b3V0ZXI=", block.Logs[1].Message)
	assert.Equal(t, 9, block.Logs[1].LogIndex)
	assert.Equal(t, model.LogID(77, 3), block.Logs[1].ID)
	assert.Equal(t, tx.Signatures[0].String(), block.Logs[1].TxSignature)
}

func TestAppendTransactionMarksFailure(t *testing.T) {
	program := key(3)
	tx := &solana.Transaction{
		Message: solana.Message{
			AccountKeys:  solana.PublicKeySlice{key(1), program},
			Instructions: []solana.CompiledInstruction{{ProgramIDIndex: 1, Accounts: []uint16{0}}},
		},
	}
	meta := &rpc.TransactionMeta{Err: map[string]any{"InstructionError": []any{0, "Custom"}}}

	block := model.Block{}
	require.NoError(t, appendTransaction(&block, 0, tx, meta, program.String()))
	require.Len(t, block.Instructions, 1)
	assert.True(t, block.Instructions[0].Failed)
	assert.Empty(t, block.Instructions[0].TxSignature)
}

func TestAppendTransactionRejectsBadIndex(t *testing.T) {
	tx := &solana.Transaction{
		Message: solana.Message{
			AccountKeys:  solana.PublicKeySlice{key(1)},
			Instructions: []solana.CompiledInstruction{{ProgramIDIndex: 4}},
		},
	}
	block := model.Block{}
	require.Error(t, appendTransaction(&block, 0, tx, &rpc.TransactionMeta{}, key(3).String()))
}
