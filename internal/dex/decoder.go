package dex

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
)

// DefaultProgramID is the Raydium concentrated liquidity program on mainnet.
const DefaultProgramID = "CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK"

var (
	// ErrNotFound is returned when an on-chain account does not exist.
	ErrNotFound = errors.New("not found")
	// ErrMalformed is returned for recognized payloads that fail to decode.
	ErrMalformed = errors.New("malformed payload")
)

// Codec decodes the program's instructions and events.
type Codec struct {
	programID    string
	instructions map[Discriminator]instructionSchema
	events       []eventSchema
}

// NewCodec builds a codec for the given program id.
func NewCodec(programID string) *Codec {
	if programID == "" {
		programID = DefaultProgramID
	}
	instructions := make(map[Discriminator]instructionSchema)
	for _, schema := range instructionSchemas() {
		instructions[InstructionDiscriminator(schema.name)] = schema
	}
	return &Codec{
		programID:    programID,
		instructions: instructions,
		events:       eventSchemas(),
	}
}

// ProgramID returns the program the codec decodes for.
func (c *Codec) ProgramID() string {
	return c.programID
}

// DecodeInstruction decodes an instruction of the program. It reports false
// for unknown discriminators and an error for recognized ones that do not decode.
func (c *Codec) DecodeInstruction(ix model.Instruction) (Instruction, bool, error) {
	data, err := base58.Decode(ix.Data)
	if err != nil {
		return nil, false, nil
	}
	disc, ok := discriminatorOf(data)
	if !ok {
		return nil, false, nil
	}
	schema, ok := c.instructions[disc]
	if !ok {
		return nil, false, nil
	}
	if len(ix.Accounts) < schema.minAccounts {
		return nil, true, fmt.Errorf("%w: %s expects %d accounts, got %d", ErrMalformed, schema.name, schema.minAccounts, len(ix.Accounts))
	}

	r := newFieldReader(data[DiscriminatorSize:])
	decoded := schema.decode(ix.Accounts, r)
	if r.err != nil {
		return nil, true, fmt.Errorf("%w: %s: %v", ErrMalformed, schema.name, r.err)
	}
	return decoded, true, nil
}

// TryDecodeEvent tries every known event layout against payload.
func (c *Codec) TryDecodeEvent(payload []byte) (Event, bool) {
	for _, schema := range c.events {
		if event, ok := schema.tryDecode(payload); ok {
			return event, true
		}
	}
	return nil, false
}

// TryDecodeLog decodes the base64 payload of a program data log.
func (c *Codec) TryDecodeLog(log model.LogMessage) (Event, bool) {
	if log.ProgramID != "" && log.ProgramID != c.programID {
		return nil, false
	}
	payload, err := base64.StdEncoding.DecodeString(log.Message)
	if err != nil {
		return nil, false
	}
	return c.TryDecodeEvent(payload)
}
