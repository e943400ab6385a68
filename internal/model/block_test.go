package model

import (
	"encoding/json"
	"testing"
)

func TestBlockDecodeFromJSONL(t *testing.T) {
	line := `{"height":250000000,"slot":270000000,"hash":"h","timestamp":1700000000,` +
		`"instructions":[{"program_id":"CAMM","tx_signature":"sig","tx_index":3,"index":0,"accounts":["a","b"],"data":"3Bxs","committed":true}],` +
		`"logs":[{"id":"0250000000-000003","program_id":"CAMM","tx_signature":"sig","tx_index":3,"log_index":2,"message":"AAAA"}]}`

	var block Block
	if err := json.Unmarshal([]byte(line), &block); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if block.Height != 250000000 || block.Timestamp != 1700000000 {
		t.Fatalf("header mismatch: %+v", block)
	}
	if len(block.Instructions) != 1 || !block.Instructions[0].Committed || block.Instructions[0].Failed {
		t.Fatalf("instruction mismatch: %+v", block.Instructions)
	}
	if len(block.Logs) != 1 || block.Logs[0].TxFailed {
		t.Fatalf("log mismatch: %+v", block.Logs)
	}
	if got := block.Logs[0].RecordID(); got != "0250000000-000003-2" {
		t.Fatalf("record id mismatch: %s", got)
	}
	if got := LogID(250000000, 3); got != block.Logs[0].ID {
		t.Fatalf("log id mismatch: %s", got)
	}
}
