package dex

import "crypto/sha256"

// DiscriminatorSize is the length of an Anchor discriminator.
const DiscriminatorSize = 8

// Discriminator is the Anchor prefix identifying an instruction or event layout.
type Discriminator [DiscriminatorSize]byte

// InstructionDiscriminator returns sha256("global:<name>")[:8].
func InstructionDiscriminator(name string) Discriminator {
	return hashDiscriminator("global:" + name)
}

// EventDiscriminator returns sha256("event:<Name>")[:8].
func EventDiscriminator(name string) Discriminator {
	return hashDiscriminator("event:" + name)
}

func hashDiscriminator(preimage string) Discriminator {
	sum := sha256.Sum256([]byte(preimage))
	var d Discriminator
	copy(d[:], sum[:DiscriminatorSize])
	return d
}

func discriminatorOf(data []byte) (Discriminator, bool) {
	var d Discriminator
	if len(data) < DiscriminatorSize {
		return d, false
	}
	copy(d[:], data[:DiscriminatorSize])
	return d, true
}
