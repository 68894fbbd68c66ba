package crypto

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/cloudflare/circl/kem/kyber/kyber768"
)

// kemScheme is the lattice KEM used for the post-quantum half of the
// hybrid encapsulation (spec.md §4.1: "a classical ECDH exchange and a
// lattice KEM, combined under a single keyed hash"). It is a distinct
// lattice keypair from the Dilithium signing key in HybridPublicKey:
// a KEM and a signature scheme are different algorithms and must not
// share key material.
var kemScheme = kyber768.Scheme()

// HybridKEMPublicKey is a recipient's encapsulation key: a classical
// secp256k1 point plus a kyber768 public key.
type HybridKEMPublicKey struct {
	Classical *btcec.PublicKey
	Lattice   kyber768.PublicKey
}

// HybridKEMSecretKey is the matching decapsulation key.
type HybridKEMSecretKey struct {
	Classical *btcec.PrivateKey
	Lattice   kyber768.PrivateKey
}

// Bytes encodes the hybrid KEM public key as [classical || lattice].
func (pk *HybridKEMPublicKey) Bytes() []byte {
	out := make([]byte, 0, 33+kemScheme.PublicKeySize())
	out = append(out, pk.Classical.SerializeCompressed()...)
	latBytes, _ := pk.Lattice.MarshalBinary()
	out = append(out, latBytes...)
	return out
}

// ParseHybridKEMPublicKey decodes the [classical || lattice] wire form.
func ParseHybridKEMPublicKey(b []byte) (*HybridKEMPublicKey, error) {
	if len(b) != 33+kemScheme.PublicKeySize() {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPublicKey, 33+kemScheme.PublicKeySize(), len(b))
	}
	classical, err := btcec.ParsePubKey(b[:33])
	if err != nil {
		return nil, fmt.Errorf("%w: classical component: %v", ErrInvalidPublicKey, err)
	}
	latPk, err := kemScheme.UnmarshalBinaryPublicKey(b[33:])
	if err != nil {
		return nil, fmt.Errorf("%w: lattice component: %v", ErrInvalidPublicKey, err)
	}
	lattice, ok := latPk.(*kyber768.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected lattice key type", ErrInvalidPublicKey)
	}
	return &HybridKEMPublicKey{Classical: classical, Lattice: *lattice}, nil
}

// GenerateKEMKeyPair creates a fresh hybrid encapsulation keypair,
// independent of any signing keypair held by the same participant.
func GenerateKEMKeyPair() (*HybridKEMPublicKey, *HybridKEMSecretKey, error) {
	classicalSk, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("crypto: generate classical key: %w", err)
	}
	latPk, latSk, err := kemScheme.GenerateKeyPair()
	if err != nil {
		return nil, nil, fmt.Errorf("crypto: generate lattice kem key: %w", err)
	}
	lPk, ok := latPk.(*kyber768.PublicKey)
	if !ok {
		return nil, nil, fmt.Errorf("crypto: unexpected lattice public key type")
	}
	lSk, ok := latSk.(*kyber768.PrivateKey)
	if !ok {
		return nil, nil, fmt.Errorf("crypto: unexpected lattice private key type")
	}
	pub := &HybridKEMPublicKey{Classical: classicalSk.PubKey(), Lattice: *lPk}
	sec := &HybridKEMSecretKey{Classical: classicalSk, Lattice: *lSk}
	return pub, sec, nil
}

// HybridCiphertext is the wire form of a hybrid encapsulation:
//
//	[33B classical ephemeral pubkey || lattice ciphertext]
type HybridCiphertext struct {
	EphemeralPublic *btcec.PublicKey
	LatticeCT       []byte
}

// Bytes encodes the ciphertext for network transmission.
func (c *HybridCiphertext) Bytes() []byte {
	out := make([]byte, 0, 33+len(c.LatticeCT))
	out = append(out, c.EphemeralPublic.SerializeCompressed()...)
	out = append(out, c.LatticeCT...)
	return out
}

// ParseHybridCiphertext decodes the wire form produced by Bytes.
func ParseHybridCiphertext(b []byte) (*HybridCiphertext, error) {
	if len(b) != 33+kemScheme.CiphertextSize() {
		return nil, fmt.Errorf("crypto: hybrid ciphertext must be %d bytes, got %d", 33+kemScheme.CiphertextSize(), len(b))
	}
	eph, err := btcec.ParsePubKey(b[:33])
	if err != nil {
		return nil, fmt.Errorf("%w: ephemeral component: %v", ErrDecryptionError, err)
	}
	ct := make([]byte, kemScheme.CiphertextSize())
	copy(ct, b[33:])
	return &HybridCiphertext{EphemeralPublic: eph, LatticeCT: ct}, nil
}

// Encapsulate derives a shared secret against the recipient's hybrid
// KEM public key, combining an ephemeral ECDH exchange with a lattice
// KEM encapsulation under a single keyed hash (spec.md §4.1). Both
// components contribute to the shared secret; recovering either alone
// does not recover it.
func Encapsulate(recipient *HybridKEMPublicKey) (*HybridCiphertext, []byte, error) {
	ephemeralSk, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("crypto: generate ephemeral key: %w", err)
	}
	classicalSecret := ecdhSharedSecret(ephemeralSk, recipient.Classical)

	latCT, latSecret, err := kemScheme.Encapsulate(&recipient.Lattice)
	if err != nil {
		return nil, nil, fmt.Errorf("crypto: lattice encapsulate: %w", err)
	}

	shared := combineSecrets(classicalSecret, latSecret)
	ct := &HybridCiphertext{EphemeralPublic: ephemeralSk.PubKey(), LatticeCT: latCT}
	return ct, shared, nil
}

// Decapsulate recovers the shared secret derived by Encapsulate. It
// requires the recipient's full hybrid secret key; there is no
// degraded path that recovers the secret from only one component.
func Decapsulate(ct *HybridCiphertext, sk *HybridKEMSecretKey) ([]byte, error) {
	classicalSecret := ecdhSharedSecret(sk.Classical, ct.EphemeralPublic)

	latSecret, err := kemScheme.Decapsulate(&sk.Lattice, ct.LatticeCT)
	if err != nil {
		return nil, fmt.Errorf("%w: lattice decapsulate: %v", ErrDecryptionError, err)
	}
	return combineSecrets(classicalSecret, latSecret), nil
}

// combineSecrets binds both KEM outputs into one 32-byte shared secret
// under a domain-separated keyed hash, so neither half alone determines
// the result.
func combineSecrets(classical, lattice []byte) []byte {
	out := KeyedHash(classical, "hybrid-kem", lattice)
	return out[:]
}

func ecdhSharedSecret(sk *btcec.PrivateKey, pk *btcec.PublicKey) []byte {
	var point btcec.JacobianPoint
	pk.AsJacobian(&point)

	var sk2 btcec.ModNScalar
	sk2.Set(&sk.Key)

	var shared btcec.JacobianPoint
	btcec.ScalarMultNonConst(&sk2, &point, &shared)
	shared.ToAffine()

	x := shared.X.Bytes()
	return x[:]
}
