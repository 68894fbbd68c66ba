package oes

import (
	"encoding/binary"
	"fmt"

	"github.com/cloudflare/circl/kem/kyber/kyber768"
	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/strandnet/strand/common"
	"github.com/strandnet/strand/crypto"
)

// Commitment is the value every participant broadcasts at the end of a
// generation's evolution step (spec.md §4.5 step 4): the hash binding
// the generation counter, the genome, and the post-step dynamics
// states, without exposing the genome itself on the wire.
type Commitment struct {
	Generation uint64
	Hash       common.Hash
}

// Participant is one node's own evolving OES state: a genome, the
// three dynamics' carried state, the current generation counter, and
// the keypairs derived from the current genome (spec.md §4.5's "state
// of a single participant").
type Participant struct {
	Genome     Genome
	Oscillator OscillatorState
	CA         CAState
	Walk       WalkState
	Generation uint64

	SigningPublic *crypto.HybridPublicKey
	SigningSecret *crypto.HybridSecretKey
	KEMPublic     *crypto.HybridKEMPublicKey
	KEMSecret     *crypto.HybridKEMSecretKey
}

// NewGenesisParticipant seeds generation 0 from seed (e.g. derived from
// the chain id, so the whole network starts from the same genome
// without an out-of-band distribution step) and derives its initial
// keypairs.
func NewGenesisParticipant(seed []byte) (*Participant, error) {
	p := &Participant{Genome: GenesisGenome(seed)}
	if err := p.deriveKeys(); err != nil {
		return nil, err
	}
	return p, nil
}

// Evolve advances every dynamic by one step, derives the next
// generation's genome and keypairs, and returns the commitment to
// broadcast (spec.md §4.5 steps 1-4). It does not itself wait for
// network agreement; callers drive that via Agreement.
func (p *Participant) Evolve() (Commitment, error) {
	nextOsc, oscOut := StepOscillator(p.Oscillator, p.Genome)
	nextCA, caOut := StepCA(p.CA, p.Genome)
	nextWalk, walkOut := StepWalk(p.Walk, p.Genome)

	combined := make([]byte, 0, len(oscOut)+len(caOut)+len(walkOut))
	combined = append(combined, oscOut...)
	combined = append(combined, caOut...)
	combined = append(combined, walkOut...)

	nextGenome := DeriveGenome(p.Genome, combined)
	nextGeneration := p.Generation + 1

	p.Genome = nextGenome
	p.Oscillator = nextOsc
	p.CA = nextCA
	p.Walk = nextWalk
	p.Generation = nextGeneration

	if err := p.deriveKeys(); err != nil {
		return Commitment{}, err
	}

	return Commitment{
		Generation: nextGeneration,
		Hash:       computeCommitment(nextGeneration, nextGenome, oscOut, caOut, walkOut),
	}, nil
}

// computeCommitment implements spec.md §4.5 step 4 exactly:
// H(generation || genome || dynamic_state_hashes).
func computeCommitment(generation uint64, genome Genome, oscOut, caOut, walkOut []byte) common.Hash {
	var gen [8]byte
	binary.BigEndian.PutUint64(gen[:], generation)
	oscHash := crypto.Hash(crypto.DomainCommitment, oscOut)
	caHash := crypto.Hash(crypto.DomainCommitment, caOut)
	walkHash := crypto.Hash(crypto.DomainCommitment, walkOut)
	return crypto.Hash(crypto.DomainCommitment, gen[:], genome[:], oscHash[:], caHash[:], walkHash[:])
}

// deriveKeys derives this generation's classical and lattice signing
// and KEM keypairs from the current genome (spec.md §4.5 step 3):
// lattice keys use the genome, stretched to the primitive's seed
// width, directly as the deterministic keygen seed; the classical
// scalar is derived the same way accountsigner-style code seeds a
// CSPRNG from a fixed-width buffer, reduced into the curve's scalar
// field.
func (p *Participant) deriveKeys() error {
	signSeed := expand(crypto.DomainOESGenome+"-sign-classical", 32, p.Genome[:])
	var signScalar btcec.ModNScalar
	signScalar.SetByteSlice(signSeed)
	classicalSignSk := btcec.PrivKeyFromBytes(signScalar.Bytes()[:])

	var latSignSeed [mode3.SeedSize]byte
	copy(latSignSeed[:], expand(crypto.DomainOESGenome+"-sign-lattice", mode3.SeedSize, p.Genome[:]))
	latSignPk, latSignSk := mode3.NewKeyFromSeed(&latSignSeed)

	p.SigningPublic = &crypto.HybridPublicKey{Classical: classicalSignSk.PubKey(), Lattice: latSignPk}
	p.SigningSecret = &crypto.HybridSecretKey{Classical: classicalSignSk, Lattice: latSignSk}

	kemSeed := expand(crypto.DomainOESGenome+"-kem-classical", 32, p.Genome[:])
	var kemScalar btcec.ModNScalar
	kemScalar.SetByteSlice(kemSeed)
	classicalKEMSk := btcec.PrivKeyFromBytes(kemScalar.Bytes()[:])

	scheme := kyber768.Scheme()
	latKEMSeed := expand(crypto.DomainOESGenome+"-kem-lattice", scheme.SeedSize(), p.Genome[:])
	latKEMPk, latKEMSk := scheme.DeriveKeyPair(latKEMSeed)
	kemPk, ok := latKEMPk.(*kyber768.PublicKey)
	if !ok {
		return fmt.Errorf("oes: unexpected kem public key type")
	}
	kemSk, ok := latKEMSk.(*kyber768.PrivateKey)
	if !ok {
		return fmt.Errorf("oes: unexpected kem private key type")
	}

	p.KEMPublic = &crypto.HybridKEMPublicKey{Classical: classicalKEMSk.PubKey(), Lattice: *kemPk}
	p.KEMSecret = &crypto.HybridKEMSecretKey{Classical: classicalKEMSk, Lattice: *kemSk}
	return nil
}
