package dex

import (
	"math/big"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// fieldReader reads borsh fields in order and keeps the first error.
type fieldReader struct {
	dec *bin.Decoder
	err error
}

func newFieldReader(data []byte) *fieldReader {
	return &fieldReader{dec: bin.NewBorshDecoder(data)}
}

func (r *fieldReader) pubkey() string {
	if r.err != nil {
		return ""
	}
	b, err := r.dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		r.err = err
		return ""
	}
	return solana.PublicKeyFromBytes(b).String()
}

func (r *fieldReader) u8() uint8 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.ReadUint8()
	r.err = err
	return v
}

func (r *fieldReader) u16() uint16 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.ReadUint16(bin.LE)
	r.err = err
	return v
}

func (r *fieldReader) u32() uint32 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.ReadUint32(bin.LE)
	r.err = err
	return v
}

func (r *fieldReader) u64() uint64 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.ReadUint64(bin.LE)
	r.err = err
	return v
}

func (r *fieldReader) i32() int32 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.ReadInt32(bin.LE)
	r.err = err
	return v
}

// u128 reads a little-endian unsigned 128-bit integer.
func (r *fieldReader) u128() *big.Int {
	lo := r.u64()
	hi := r.u64()
	if r.err != nil {
		return nil
	}
	v := new(big.Int).SetUint64(hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(lo))
}

func (r *fieldReader) boolean() bool {
	if r.err != nil {
		return false
	}
	v, err := r.dec.ReadBool()
	r.err = err
	return v
}

// optionalBool reads Option<bool>; a missing trailing option is None.
func (r *fieldReader) optionalBool() *bool {
	if r.err != nil || r.dec.Remaining() == 0 {
		return nil
	}
	if r.u8() == 0 {
		return nil
	}
	v := r.boolean()
	if r.err != nil {
		return nil
	}
	return &v
}

func (r *fieldReader) skip(n int) {
	if r.err != nil {
		return
	}
	_, r.err = r.dec.ReadNBytes(n)
}

// borshString reads a u32 length-prefixed string, trimming fixed-width padding.
func (r *fieldReader) borshString() string {
	n := r.u32()
	if r.err != nil {
		return ""
	}
	b, err := r.dec.ReadNBytes(int(n))
	if err != nil {
		r.err = err
		return ""
	}
	return strings.TrimRight(string(b), "\x00 ")
}
