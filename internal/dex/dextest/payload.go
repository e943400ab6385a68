// Package dextest builds borsh payloads for program instructions and events in tests.
package dextest

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/dex"
)

// Key returns a deterministic public key filled with b.
func Key(b byte) solana.PublicKey {
	return solana.PublicKeyFromBytes(bytes.Repeat([]byte{b}, solana.PublicKeyLength))
}

// Payload appends little-endian borsh fields after a discriminator.
type Payload struct {
	buf bytes.Buffer
}

func New(disc dex.Discriminator) *Payload {
	p := &Payload{}
	p.buf.Write(disc[:])
	return p
}

func Event(name string) *Payload {
	return New(dex.EventDiscriminator(name))
}

func Instruction(name string) *Payload {
	return New(dex.InstructionDiscriminator(name))
}

func (p *Payload) Key(k solana.PublicKey) *Payload {
	p.buf.Write(k[:])
	return p
}

func (p *Payload) U8(v uint8) *Payload {
	p.buf.WriteByte(v)
	return p
}

func (p *Payload) Bool(v bool) *Payload {
	if v {
		return p.U8(1)
	}
	return p.U8(0)
}

func (p *Payload) U16(v uint16) *Payload {
	_ = binary.Write(&p.buf, binary.LittleEndian, v)
	return p
}

func (p *Payload) U32(v uint32) *Payload {
	_ = binary.Write(&p.buf, binary.LittleEndian, v)
	return p
}

func (p *Payload) I32(v int32) *Payload {
	_ = binary.Write(&p.buf, binary.LittleEndian, v)
	return p
}

func (p *Payload) U64(v uint64) *Payload {
	_ = binary.Write(&p.buf, binary.LittleEndian, v)
	return p
}

func (p *Payload) U128(v *big.Int) *Payload {
	mask := new(big.Int).SetUint64(^uint64(0))
	lo := new(big.Int).And(v, mask).Uint64()
	hi := new(big.Int).Rsh(v, 64).Uint64()
	return p.U64(lo).U64(hi)
}

func (p *Payload) Bytes() []byte {
	return p.buf.Bytes()
}

// Base58 encodes the payload as instruction data.
func (p *Payload) Base58() string {
	return base58.Encode(p.buf.Bytes())
}

// Base64 encodes the payload as a program data log message.
func (p *Payload) Base64() string {
	return base64.StdEncoding.EncodeToString(p.buf.Bytes())
}

// SwapEvent encodes a SwapEvent.
func SwapEvent(pool, sender solana.PublicKey, amount0, amount1 uint64, zeroForOne bool, sqrtPriceX64, liquidity *big.Int, tick int32) *Payload {
	return Event("SwapEvent").
		Key(pool).Key(sender).Key(Key(0xa0)).Key(Key(0xa1)).
		U64(amount0).U64(0).U64(amount1).U64(0).
		Bool(zeroForOne).U128(sqrtPriceX64).U128(liquidity).I32(tick)
}

// CreatePool encodes create_pool instruction data.
func CreatePool(sqrtPriceX64 *big.Int, openTime uint64) *Payload {
	return Instruction("create_pool").U128(sqrtPriceX64).U64(openTime)
}
