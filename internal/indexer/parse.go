package indexer

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// ParsePubkey validates a base58 account address.
func ParsePubkey(input string) (solana.PublicKey, error) {
	input = strings.TrimSpace(input)
	key, err := solana.PublicKeyFromBase58(input)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid address %q: %w", input, err)
	}
	return key, nil
}

// ParsePubkeys validates a list of base58 addresses, skipping blanks.
func ParsePubkeys(inputs []string) ([]string, error) {
	out := make([]string, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		key, err := ParsePubkey(input)
		if err != nil {
			return nil, err
		}
		out = append(out, key.String())
	}
	return out, nil
}
