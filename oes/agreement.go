package oes

import (
	"sync"

	"github.com/strandnet/strand/common"
	"github.com/strandnet/strand/crypto"
	"github.com/strandnet/strand/protoerr"
	"github.com/strandnet/strand/quorum"
)

// generationKeys is what the network-wide registry remembers about one
// creator's accepted generation: its signing public key, so
// entry.Graph.Admit can verify a signature under the epoch it claims
// (spec.md §3: "signature validates against creator's key material
// from generation oes_epoch").
type generationKeys struct {
	signing *crypto.HybridPublicKey
}

// Registry is the network-wide view of accepted OES generations: for
// each validator, the public keys it held at each generation that
// reached commitment quorum. It implements entry.KeyResolver and
// entry.EpochWindow so the entry graph can verify signatures and
// epoch-window membership without depending on this package directly.
type Registry struct {
	mu sync.RWMutex

	current uint64
	window  uint64

	byCreatorEpoch map[common.NodeID]map[uint64]generationKeys
	stalls         uint64
}

// NewRegistry creates a registry at generation 0 with the given
// acceptance window width (spec.md §4.5's W, default 10).
func NewRegistry(window uint64) *Registry {
	return &Registry{
		window:         window,
		byCreatorEpoch: make(map[common.NodeID]map[uint64]generationKeys),
	}
}

// RecordGeneration registers a validator's accepted public keys for a
// generation that has already reached commitment quorum (via Agreement
// below). It never advances Registry.current itself — that only
// happens once the network's own generation counter advances, which a
// node learns independently of any single validator's key record.
func (r *Registry) RecordGeneration(creator common.NodeID, epoch uint64, signing *crypto.HybridPublicKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byCreatorEpoch[creator] == nil {
		r.byCreatorEpoch[creator] = make(map[uint64]generationKeys)
	}
	r.byCreatorEpoch[creator][epoch] = generationKeys{signing: signing}
}

// AdvanceGeneration moves the registry's notion of "current" forward,
// called once this node's own Agreement has accepted generation
// epoch's commitment quorum.
func (r *Registry) AdvanceGeneration(epoch uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if epoch > r.current {
		r.current = epoch
	}
}

// PublicKeyAt implements entry.KeyResolver.
func (r *Registry) PublicKeyAt(creator common.NodeID, epoch uint64) (*crypto.HybridPublicKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gens, ok := r.byCreatorEpoch[creator]
	if !ok {
		return nil, protoerr.ErrNotFound
	}
	keys, ok := gens[epoch]
	if !ok {
		return nil, protoerr.ErrNotFound
	}
	return keys.signing, nil
}

// InWindow implements entry.EpochWindow: epoch must fall within
// [current-W, current] (spec.md §4.5).
func (r *Registry) InWindow(epoch uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if epoch > r.current {
		return false
	}
	if r.current-epoch > r.window {
		return false
	}
	return true
}

// Stalls reports the number of evolution-stall events recorded so far
// (spec.md §4.5: "persistent stalls are an operational alarm").
func (r *Registry) Stalls() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stalls
}

func (r *Registry) recordStall() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stalls++
}

// Agreement drives network commitment agreement for one evolution
// generation (spec.md §4.5): collect broadcast commitments into a
// quorum.Pool under PurposeOESCommitment, and adopt the generation only
// once 2f+1 matching commitments are observed. Failing to reach quorum
// in a bounded window leaves the previous generation active and
// records a stall rather than aborting the protocol.
type Agreement struct {
	pool     *quorum.Pool
	registry *Registry
}

// NewAgreement creates an Agreement over a validator set of the given
// total voting weight, feeding accepted generations into registry.
func NewAgreement(totalWeight uint64, registry *Registry) *Agreement {
	return &Agreement{pool: quorum.NewPool(totalWeight), registry: registry}
}

// SubmitCommitment records one validator's broadcast commitment for a
// generation. Once quorum.PurposeOESCommitment reaches 2f+1 weight on
// a single commitment hash, the generation is adopted: the registry's
// current generation advances to c.Generation. It records no public
// keys; those are added separately with Registry.RecordGeneration.
func (a *Agreement) SubmitCommitment(c Commitment, voter common.NodeID, weight uint64, signature []byte) (adopted bool, err error) {
	added, err := a.pool.AddVote(quorum.Vote{
		Purpose:   quorum.PurposeOESCommitment,
		Subject:   c.Hash,
		Voter:     voter,
		Weight:    weight,
		Signature: signature,
	})
	if err != nil {
		return false, err
	}
	if !added {
		return false, nil
	}
	if _, ok := a.pool.BuildCertificate(quorum.PurposeOESCommitment, c.Hash); ok {
		a.registry.AdvanceGeneration(c.Generation)
		return true, nil
	}
	return false, nil
}

// RecordStall marks a bounded agreement window that closed without
// reaching quorum on any single commitment (spec.md §4.5: "the network
// retains the previous generation ... and records an evolution-stall
// event").
func (a *Agreement) RecordStall() {
	a.registry.recordStall()
}
