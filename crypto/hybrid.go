package crypto

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/cloudflare/circl/sign/dilithium/mode3"
)

// Sentinel errors per spec.md §7's authentication taxonomy.
var (
	ErrInvalidPublicKey = errors.New("crypto: invalid public key")
	ErrInvalidSignature = errors.New("crypto: invalid signature")
	ErrDecryptionError  = errors.New("crypto: decryption error")
)

// HybridPublicKey is [classical pubkey || lattice pubkey] per spec.md §6.
type HybridPublicKey struct {
	Classical *btcec.PublicKey
	Lattice   *mode3.PublicKey
}

// HybridSecretKey holds both halves of a participant's signing
// material (ECDSA and Dilithium). KEM material is a separate
// HybridKEMSecretKey (kem.go); this key is not used for ECDH.
type HybridSecretKey struct {
	Classical *btcec.PrivateKey
	Lattice   *mode3.PrivateKey
}

// Bytes encodes the hybrid public key as [classical || lattice], the
// wire form named in spec.md §6.
func (pk *HybridPublicKey) Bytes() []byte {
	out := make([]byte, 0, 33+mode3.PublicKeySize)
	out = append(out, pk.Classical.SerializeCompressed()...)
	latBytes, _ := pk.Lattice.MarshalBinary()
	out = append(out, latBytes...)
	return out
}

// ParseHybridPublicKey decodes the [classical || lattice] wire form.
func ParseHybridPublicKey(b []byte) (*HybridPublicKey, error) {
	if len(b) != 33+mode3.PublicKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPublicKey, 33+mode3.PublicKeySize, len(b))
	}
	classical, err := btcec.ParsePubKey(b[:33])
	if err != nil {
		return nil, fmt.Errorf("%w: classical component: %v", ErrInvalidPublicKey, err)
	}
	lattice := new(mode3.PublicKey)
	if err := lattice.UnmarshalBinary(b[33:]); err != nil {
		return nil, fmt.Errorf("%w: lattice component: %v", ErrInvalidPublicKey, err)
	}
	return &HybridPublicKey{Classical: classical, Lattice: lattice}, nil
}

// HybridSignature is the wire-encoded, length-prefixed concatenation of
// the classical and lattice signature components (spec.md §6):
//
//	[4B BE classical length || classical bytes || 4B BE lattice length || lattice bytes]
type HybridSignature []byte

func lengthPrefix(b []byte) []byte {
	var l [4]byte
	binary.BigEndian.PutUint32(l[:], uint32(len(b)))
	return append(l[:], b...)
}

// GenerateKeyPair creates a fresh hybrid keypair from a cryptographically
// secure source of randomness.
func GenerateKeyPair() (*HybridPublicKey, *HybridSecretKey, error) {
	classicalSk, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("crypto: generate classical key: %w", err)
	}
	latPk, latSk, err := mode3.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("crypto: generate lattice key: %w", err)
	}
	pub := &HybridPublicKey{Classical: classicalSk.PubKey(), Lattice: latPk}
	sec := &HybridSecretKey{Classical: classicalSk, Lattice: latSk}
	return pub, sec, nil
}

// Sign produces two independent signatures over identical message
// bytes (a classical ECDSA signature and a lattice-based Dilithium
// signature) and concatenates their length-prefixed wire forms
// (spec.md §4.1). There is no path that emits only one component.
func Sign(message []byte, sk *HybridSecretKey) (HybridSignature, error) {
	digest := Hash(DomainEntry, message)
	classicalSig := ecdsa.Sign(sk.Classical, digest[:])
	classicalBytes := classicalSig.Serialize()
	latticeBytes := mode3.Sign(sk.Lattice, message)

	out := make(HybridSignature, 0, 8+len(classicalBytes)+len(latticeBytes))
	out = append(out, lengthPrefix(classicalBytes)...)
	out = append(out, lengthPrefix(latticeBytes)...)
	return out, nil
}

// Verify requires BOTH the classical and the lattice component to
// validate; if either fails, verification fails. There is no fallback
// path that accepts a missing or malformed component (spec.md §4.1).
func Verify(message []byte, sig HybridSignature, pk *HybridPublicKey) bool {
	classicalBytes, latticeBytes, err := splitHybridSignature(sig)
	if err != nil {
		return false
	}
	classicalSig, err := ecdsa.ParseDERSignature(classicalBytes)
	if err != nil {
		return false
	}
	digest := Hash(DomainEntry, message)
	if !classicalSig.Verify(digest[:], pk.Classical) {
		return false
	}
	return mode3.Verify(pk.Lattice, message, latticeBytes)
}

// splitHybridSignature parses the length-prefixed wire form and
// rejects truncated or structurally invalid inputs (spec.md §4.1:
// "signatures are length-prefixed; truncated inputs are rejected").
func splitHybridSignature(sig HybridSignature) (classical, lattice []byte, err error) {
	if len(sig) < 8 {
		return nil, nil, ErrInvalidSignature
	}
	classicalLen := binary.BigEndian.Uint32(sig[0:4])
	if uint64(len(sig)) < 4+uint64(classicalLen)+4 {
		return nil, nil, ErrInvalidSignature
	}
	classical = sig[4 : 4+classicalLen]
	rest := sig[4+classicalLen:]
	if len(rest) < 4 {
		return nil, nil, ErrInvalidSignature
	}
	latticeLen := binary.BigEndian.Uint32(rest[0:4])
	if uint64(len(rest)) != 4+uint64(latticeLen) {
		return nil, nil, ErrInvalidSignature
	}
	lattice = rest[4:]
	if classicalLen == 0 || latticeLen == 0 {
		// An empty component must never be accepted as "missing but ok".
		return nil, nil, ErrInvalidSignature
	}
	return classical, lattice, nil
}
